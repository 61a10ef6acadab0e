package service

import (
	"context"

	"tgsentry/internal/metrics"
	"tgsentry/pkg/telegram/types"

	"github.com/sirupsen/logrus"
)

// Notifier delivers alerts to the master chat. Delivery is best effort: a
// failed send is logged and the caller proceeds regardless.
type Notifier interface {
	Notify(ctx context.Context, text string, attachmentPaths []string, includeAttachments bool)
}

type masterNotifier struct {
	client       types.Client
	masterChatID int64
	logger       *logrus.Logger
}

func NewNotifier(client types.Client, masterChatID int64, logger *logrus.Logger) Notifier {
	return &masterNotifier{
		client:       client,
		masterChatID: masterChatID,
		logger:       logger,
	}
}

// Notify sends the alert text plus, when requested, the referenced local
// files. A single attachment rides as the document caption; multiple
// attachments follow a standalone text message. Files that reach the
// master chat are deleted from disk.
func (n *masterNotifier) Notify(ctx context.Context, text string, attachmentPaths []string, includeAttachments bool) {
	var attachments []*Attachment
	if includeAttachments {
		for _, p := range attachmentPaths {
			attachments = append(attachments, NewAttachment(p))
		}
	}

	switch len(attachments) {
	case 0:
		if err := n.client.SendText(ctx, n.masterChatID, text); err != nil {
			n.logger.WithError(err).Error("Failed to send notification")
			metrics.IncrementCounter("notification_failures_total", nil, "Failed master chat notifications")
			return
		}
	case 1:
		n.sendAttachment(ctx, attachments[0], text)
	default:
		if err := n.client.SendText(ctx, n.masterChatID, text); err != nil {
			n.logger.WithError(err).Error("Failed to send notification")
			metrics.IncrementCounter("notification_failures_total", nil, "Failed master chat notifications")
		}
		for _, a := range attachments {
			n.sendAttachment(ctx, a, "")
		}
	}

	metrics.IncrementCounter("notifications_sent_total", nil, "Master chat notifications")
}

func (n *masterNotifier) sendAttachment(ctx context.Context, a *Attachment, caption string) {
	if err := n.client.SendDocument(ctx, n.masterChatID, a.Path(), caption); err != nil {
		n.logger.WithError(err).WithField("file", a.Path()).Error("Failed to send attachment")
		metrics.IncrementCounter("notification_failures_total", nil, "Failed master chat notifications")
		return
	}

	a.MarkDelivered()
	if err := a.Remove(); err != nil {
		n.logger.WithError(err).WithField("file", a.Path()).Warn("Failed to remove delivered attachment")
	}
}

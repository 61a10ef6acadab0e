package service

import (
	"context"
	"fmt"
	"strings"

	"tgsentry/internal/metrics"
	"tgsentry/internal/models"
	"tgsentry/internal/tracing"
	"tgsentry/pkg/telegram/types"

	"github.com/sirupsen/logrus"
)

// MessageStore is the persistence surface the monitor depends on.
type MessageStore interface {
	SaveMessage(ctx context.Context, msg *models.TrackedMessage) error
	GetMessage(ctx context.Context, chatID string, messageID int64) (*models.TrackedMessage, error)
	UpdateMessageText(ctx context.Context, chatID string, messageID int64, text string) error
	UpdateMessageSenderName(ctx context.Context, chatID string, messageID int64, senderName string) error
	DeleteMessage(ctx context.Context, chatID string, messageID int64) error
}

// AttachmentSource fetches a message's media to local files.
type AttachmentSource interface {
	ExtractAttachments(ctx context.Context, msg *types.BusinessMessage) []string
}

// Monitor tracks the lifecycle of business messages: it archives new ones,
// diffs edits against the stored copy, and reports deletions with the
// archived content.
type Monitor struct {
	store    MessageStore
	fetcher  AttachmentSource
	notifier Notifier
	logger   *logrus.Logger
}

func NewMonitor(store MessageStore, fetcher AttachmentSource, notifier Notifier, logger *logrus.Logger) *Monitor {
	return &Monitor{
		store:    store,
		fetcher:  fetcher,
		notifier: notifier,
		logger:   logger,
	}
}

// ProcessUpdate dispatches one update envelope to the matching handler.
// Envelopes without a business payload are ignored.
func (m *Monitor) ProcessUpdate(ctx context.Context, update types.Update) error {
	switch {
	case update.BusinessMessage != nil:
		ctx, span := tracing.StartSpan(ctx, "monitor.handle_new_message")
		defer span.End()
		metrics.IncrementCounter("events_processed_total", map[string]string{"type": "new"}, "Business events processed")
		return m.HandleNewMessage(ctx, update.BusinessMessage)
	case update.EditedBusinessMessage != nil:
		ctx, span := tracing.StartSpan(ctx, "monitor.handle_edited_message")
		defer span.End()
		metrics.IncrementCounter("events_processed_total", map[string]string{"type": "edit"}, "Business events processed")
		return m.HandleEditedMessage(ctx, update.EditedBusinessMessage)
	case update.DeletedBusinessMessages != nil:
		ctx, span := tracing.StartSpan(ctx, "monitor.handle_deleted_messages")
		defer span.End()
		metrics.IncrementCounter("events_processed_total", map[string]string{"type": "delete"}, "Business events processed")
		return m.HandleDeletedMessages(ctx, update.DeletedBusinessMessages)
	}
	return nil
}

// HandleNewMessage archives an inbound business message together with its
// fetched attachments. Self-destructing media is forwarded to the master
// chat immediately, before the platform withdraws it.
func (m *Monitor) HandleNewMessage(ctx context.Context, msg *types.BusinessMessage) error {
	paths := m.fetcher.ExtractAttachments(ctx, msg)

	tracked := &models.TrackedMessage{
		ChatID:          msg.BusinessConnectionID,
		MessageID:       msg.MessageID,
		Text:            msg.ContentText(),
		AttachmentPaths: paths,
		IsTemporary:     msg.HasMediaSpoiler,
	}
	if msg.From != nil {
		tracked.SenderID = msg.From.ID
		tracked.SenderName = msg.From.DisplayName()
		if msg.From.Username != "" {
			username := msg.From.Username
			tracked.SenderUsername = &username
		}
	}

	if err := m.store.SaveMessage(ctx, tracked); err != nil {
		return fmt.Errorf("failed to save message: %w", err)
	}

	m.logger.WithFields(logrus.Fields{
		"chatID":      SanitizeChatID(ctx, tracked.ChatID),
		"messageID":   tracked.MessageID,
		"attachments": len(paths),
		"temporary":   tracked.IsTemporary,
	}).Info("Archived business message")

	if tracked.IsTemporary && len(paths) > 0 {
		m.notifier.Notify(ctx, formatTemporaryAlert(tracked.SenderName, tracked.Text), paths, true)
	}

	return nil
}

// HandleEditedMessage diffs the edit against the archived copy. Messages
// never seen before and edits whose trimmed text is unchanged are dropped.
// The notification goes out before the archive is updated so the old text
// is still available if the update fails.
func (m *Monitor) HandleEditedMessage(ctx context.Context, msg *types.BusinessMessage) error {
	stored, err := m.store.GetMessage(ctx, msg.BusinessConnectionID, msg.MessageID)
	if err != nil {
		return fmt.Errorf("failed to load message: %w", err)
	}
	if stored == nil {
		m.logger.WithField("messageID", msg.MessageID).Debug("Edit for untracked message, ignoring")
		return nil
	}

	newText := msg.ContentText()
	if strings.TrimSpace(newText) == strings.TrimSpace(stored.Text) {
		m.logger.WithField("messageID", msg.MessageID).Debug("Edit with unchanged text, ignoring")
		return nil
	}

	senderName := stored.SenderName
	if msg.From != nil {
		senderName = msg.From.DisplayName()
	}

	// Attachments ride along only when nothing was archived for the
	// message; a non-empty stored list must survive on disk for a later
	// deletion alert.
	includeAttachments := len(stored.AttachmentPaths) == 0
	m.notifier.Notify(ctx, formatEditAlert(senderName, stored.Text, newText), stored.AttachmentPaths, includeAttachments)

	if senderName != stored.SenderName {
		if err := m.store.UpdateMessageSenderName(ctx, stored.ChatID, stored.MessageID, senderName); err != nil {
			m.logger.WithError(err).Error("Failed to update sender name")
		}
	}
	if err := m.store.UpdateMessageText(ctx, stored.ChatID, stored.MessageID, newText); err != nil {
		return fmt.Errorf("failed to update message text: %w", err)
	}

	m.logger.WithFields(logrus.Fields{
		"chatID":    SanitizeChatID(ctx, stored.ChatID),
		"messageID": stored.MessageID,
	}).Info("Reported edited message")

	return nil
}

// HandleDeletedMessages reports each deleted ID that has an archived copy
// and then drops the record. IDs never seen are skipped silently; each ID
// in the batch is handled independently.
func (m *Monitor) HandleDeletedMessages(ctx context.Context, deleted *types.DeletedBusinessMessages) error {
	for _, messageID := range deleted.MessageIDs {
		stored, err := m.store.GetMessage(ctx, deleted.BusinessConnectionID, messageID)
		if err != nil {
			m.logger.WithError(err).WithField("messageID", messageID).Error("Failed to load deleted message")
			continue
		}
		if stored == nil {
			continue
		}

		m.notifier.Notify(ctx, formatDeleteAlert(stored.SenderName, stored.Text), stored.AttachmentPaths, true)

		if err := m.store.DeleteMessage(ctx, stored.ChatID, stored.MessageID); err != nil {
			m.logger.WithError(err).WithField("messageID", messageID).Error("Failed to drop deleted message record")
			continue
		}

		m.logger.WithFields(logrus.Fields{
			"chatID":    SanitizeChatID(ctx, stored.ChatID),
			"messageID": stored.MessageID,
		}).Info("Reported deleted message")
	}

	return nil
}

func textOrPlaceholder(text string) string {
	if strings.TrimSpace(text) == "" {
		return "(no text)"
	}
	return text
}

func formatTemporaryAlert(senderName, text string) string {
	return fmt.Sprintf("⚠️ *Self-destructing message!*\n👤 %s\n📄 %s", senderName, textOrPlaceholder(text))
}

func formatEditAlert(senderName, oldText, newText string) string {
	return fmt.Sprintf("✏️ *Message edited!*\n👤 %s\n📄 *Was:* %s\n📄 *Now:* %s",
		senderName, textOrPlaceholder(oldText), textOrPlaceholder(newText))
}

func formatDeleteAlert(senderName, text string) string {
	return fmt.Sprintf("🗑 *Message deleted!*\n👤 %s\n📄 %s", senderName, textOrPlaceholder(text))
}

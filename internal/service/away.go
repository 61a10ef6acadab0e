package service

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"tgsentry/internal/metrics"
	"tgsentry/pkg/telegram/types"

	"github.com/sirupsen/logrus"
)

// ReplyClient is the slice of the Bot API the away responder needs.
type ReplyClient interface {
	SendReply(ctx context.Context, chatID, replyToMessageID int64, text string) error
	SendText(ctx context.Context, chatID int64, text string) error
}

// awaySession holds one away period. A fresh session starts on every /afk
// so each contact gets at most one auto reply per period.
type awaySession struct {
	mu       sync.Mutex
	active   bool
	reason   string
	since    time.Time
	notified map[int64]struct{}
}

func (s *awaySession) begin(reason string, now time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.active = true
	s.reason = reason
	s.since = now
	s.notified = make(map[int64]struct{})
}

func (s *awaySession) end() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	wasActive := s.active
	s.active = false
	s.notified = nil
	return wasActive
}

// claim reports whether an auto reply is due for the user and marks the
// user notified in the same step.
func (s *awaySession) claim(userID int64) (reason string, since time.Time, ok bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.active {
		return "", time.Time{}, false
	}
	if _, seen := s.notified[userID]; seen {
		return "", time.Time{}, false
	}
	s.notified[userID] = struct{}{}
	return s.reason, s.since, true
}

// AwayResponder answers private messages while the owner is marked away and
// handles the owner's /afk and /afk_off commands.
type AwayResponder struct {
	client  ReplyClient
	ownerID int64
	session *awaySession
	logger  *logrus.Logger
	now     func() time.Time
}

func NewAwayResponder(client ReplyClient, ownerID int64, logger *logrus.Logger) *AwayResponder {
	return &AwayResponder{
		client:  client,
		ownerID: ownerID,
		session: &awaySession{},
		logger:  logger,
		now:     time.Now,
	}
}

const defaultAwayReason = "I am away right now"

// HandleMessage routes one regular message: owner commands toggle the away
// state, anything else in a private chat may earn an auto reply.
func (a *AwayResponder) HandleMessage(ctx context.Context, msg *types.Message) {
	if msg.From == nil {
		return
	}

	if msg.From.ID == a.ownerID {
		a.handleOwnerCommand(ctx, msg)
		return
	}

	a.autoReply(ctx, msg)
}

func (a *AwayResponder) handleOwnerCommand(ctx context.Context, msg *types.Message) {
	fields := strings.Fields(msg.Text)
	if len(fields) == 0 {
		return
	}

	switch fields[0] {
	case "/afk":
		reason := defaultAwayReason
		if len(fields) > 1 {
			reason = strings.TrimSpace(strings.TrimPrefix(msg.Text, "/afk"))
		}
		a.session.begin(reason, a.now())
		a.logger.Info("Away mode enabled")
		a.confirm(ctx, msg.Chat.ID, fmt.Sprintf("Away mode on: %s", reason))
	case "/afk_off":
		if a.session.end() {
			a.logger.Info("Away mode disabled")
			a.confirm(ctx, msg.Chat.ID, "Away mode off")
		} else {
			a.confirm(ctx, msg.Chat.ID, "Away mode is not active")
		}
	}
}

func (a *AwayResponder) autoReply(ctx context.Context, msg *types.Message) {
	if msg.Chat.Type != "private" {
		return
	}

	reason, since, ok := a.session.claim(msg.From.ID)
	if !ok {
		return
	}

	text := fmt.Sprintf("%s (away for %s)", reason, formatDuration(a.now().Sub(since)))
	if err := a.client.SendReply(ctx, msg.Chat.ID, msg.MessageID, text); err != nil {
		a.logger.WithError(err).WithField("userID", msg.From.ID).Error("Failed to send away reply")
		return
	}

	metrics.IncrementCounter("away_replies_sent_total", nil, "Auto replies sent while away")
	a.logger.WithField("userID", msg.From.ID).Info("Sent away reply")
}

func (a *AwayResponder) confirm(ctx context.Context, chatID int64, text string) {
	if err := a.client.SendText(ctx, chatID, text); err != nil {
		a.logger.WithError(err).Error("Failed to confirm away command")
	}
}

// formatDuration renders a duration as 1h2m3s, dropping leading zero units.
func formatDuration(d time.Duration) string {
	total := int64(d.Seconds())
	if total < 0 {
		total = 0
	}

	hours := total / 3600
	minutes := (total % 3600) / 60
	seconds := total % 60

	switch {
	case hours > 0:
		return fmt.Sprintf("%dh%dm%ds", hours, minutes, seconds)
	case minutes > 0:
		return fmt.Sprintf("%dm%ds", minutes, seconds)
	default:
		return fmt.Sprintf("%ds", seconds)
	}
}

package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"tgsentry/internal/metrics"
	"tgsentry/internal/models"
	"tgsentry/internal/tracing"
	"tgsentry/pkg/telegram/types"

	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/attribute"
)

// UpdateHandler consumes one update from the feed.
type UpdateHandler interface {
	ProcessUpdate(ctx context.Context, update types.Update) error
}

// CommandHandler consumes regular (non-business) messages, used for the
// away responder's owner commands and auto replies.
type CommandHandler interface {
	HandleMessage(ctx context.Context, msg *types.Message)
}

// OffsetStore persists the update feed position across restarts.
type OffsetStore interface {
	GetUpdateOffset(ctx context.Context) (int64, error)
	SetUpdateOffset(ctx context.Context, offset int64) error
}

// UpdatePoller drives the long-poll loop against the Bot API. Updates in a
// batch are processed strictly in order; per-update failures are logged and
// the loop moves on, so one poisoned event never wedges the feed.
type UpdatePoller struct {
	client   types.Client
	monitor  UpdateHandler
	commands CommandHandler
	offsets  OffsetStore
	config   models.TelegramConfig
	logger   *logrus.Logger
	offset   int64
	ctx      context.Context
	cancel   context.CancelFunc
	wg       sync.WaitGroup
	running  bool
	mu       sync.RWMutex
}

// NewUpdatePoller creates the poller. commands may be nil when the away
// responder is disabled.
func NewUpdatePoller(client types.Client, monitor UpdateHandler, commands CommandHandler, offsets OffsetStore, config models.TelegramConfig, logger *logrus.Logger) *UpdatePoller {
	return &UpdatePoller{
		client:   client,
		monitor:  monitor,
		commands: commands,
		offsets:  offsets,
		config:   config,
		logger:   logger,
	}
}

// Start loads the persisted offset and begins the background polling loop.
func (up *UpdatePoller) Start(ctx context.Context) error {
	up.mu.Lock()
	defer up.mu.Unlock()

	if up.running {
		return fmt.Errorf("update poller is already running")
	}

	offset, err := up.offsets.GetUpdateOffset(ctx)
	if err != nil {
		return fmt.Errorf("failed to load update offset: %w", err)
	}
	up.offset = offset

	up.ctx, up.cancel = context.WithCancel(ctx)
	up.running = true

	up.wg.Add(1)
	go up.pollLoop()

	up.logger.WithFields(logrus.Fields{
		"offset":  offset,
		"timeout": up.config.PollTimeoutSec,
	}).Info("Update poller started")

	return nil
}

// Stop gracefully stops the polling loop.
func (up *UpdatePoller) Stop() {
	up.mu.Lock()
	defer up.mu.Unlock()

	if !up.running {
		return
	}

	up.logger.Info("Stopping update poller...")
	up.cancel()
	up.wg.Wait()
	up.running = false
	up.logger.Info("Update poller stopped")
}

// IsRunning returns whether the poller is currently active.
func (up *UpdatePoller) IsRunning() bool {
	up.mu.RLock()
	defer up.mu.RUnlock()
	return up.running
}

func (up *UpdatePoller) pollLoop() {
	defer up.wg.Done()

	for {
		select {
		case <-up.ctx.Done():
			return
		default:
			up.pollOnce()
		}
	}
}

// pollOnce runs one long-poll cycle. It must never escape a panic: the
// loop outlives any single bad update or transient API failure.
func (up *UpdatePoller) pollOnce() {
	defer func() {
		if r := recover(); r != nil {
			up.logger.WithField("panic", r).Error("Recovered from panic in poll loop")
			up.backoff()
		}
	}()

	updates, err := up.client.GetUpdates(up.ctx, up.offset, up.config.PollTimeoutSec)
	if err != nil {
		if up.ctx.Err() != nil {
			return
		}
		up.logger.WithError(err).Error("Failed to poll updates")
		metrics.IncrementCounter("poll_failures_total", nil, "Failed getUpdates calls")
		up.backoff()
		return
	}

	if len(updates) == 0 {
		return
	}

	ctx, span := tracing.StartSpan(up.ctx, "poller.process_batch", attribute.Int("batch.size", len(updates)))

	for _, update := range updates {
		up.handleUpdate(ctx, update)
		// Advance past the update even when handling failed; errors are
		// logged, not replayed.
		up.offset = update.UpdateID + 1
	}

	span.End()

	if err := up.offsets.SetUpdateOffset(up.ctx, up.offset); err != nil {
		up.logger.WithError(err).Error("Failed to persist update offset")
	}
}

func (up *UpdatePoller) handleUpdate(ctx context.Context, update types.Update) {
	if update.Message != nil {
		if up.commands != nil {
			up.commands.HandleMessage(ctx, update.Message)
		}
		return
	}

	if err := up.monitor.ProcessUpdate(ctx, update); err != nil {
		up.logger.WithError(err).WithField("updateID", update.UpdateID).Error("Failed to process update")
	}
}

func (up *UpdatePoller) backoff() {
	select {
	case <-up.ctx.Done():
	case <-time.After(time.Duration(up.config.PollBackoffSec) * time.Second):
	}
}

package service

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

// CleanupStore prunes aged message records.
type CleanupStore interface {
	CleanupOldRecords(retentionDays int) error
}

// CleanupScheduler periodically drops archived records and downloaded
// files older than the retention window.
type CleanupScheduler struct {
	store         CleanupStore
	downloadDir   string
	retentionDays int
	interval      time.Duration
	logger        *logrus.Logger
	cancel        context.CancelFunc
	wg            sync.WaitGroup
	mu            sync.Mutex
	running       bool
}

func NewCleanupScheduler(store CleanupStore, downloadDir string, retentionDays, intervalHours int, logger *logrus.Logger) *CleanupScheduler {
	return &CleanupScheduler{
		store:         store,
		downloadDir:   downloadDir,
		retentionDays: retentionDays,
		interval:      time.Duration(intervalHours) * time.Hour,
		logger:        logger,
	}
}

// Start runs one cleanup immediately and then repeats on the interval.
func (cs *CleanupScheduler) Start(ctx context.Context) {
	cs.mu.Lock()
	defer cs.mu.Unlock()

	if cs.running {
		return
	}

	ctx, cs.cancel = context.WithCancel(ctx)
	cs.running = true

	cs.wg.Add(1)
	go func() {
		defer cs.wg.Done()

		cs.runCleanup()

		ticker := time.NewTicker(cs.interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				cs.runCleanup()
			}
		}
	}()

	cs.logger.WithFields(logrus.Fields{
		"retentionDays": cs.retentionDays,
		"interval":      cs.interval,
	}).Info("Cleanup scheduler started")
}

// Stop halts the scheduler and waits for an in-flight cleanup to finish.
func (cs *CleanupScheduler) Stop() {
	cs.mu.Lock()
	defer cs.mu.Unlock()

	if !cs.running {
		return
	}

	cs.cancel()
	cs.wg.Wait()
	cs.running = false
	cs.logger.Info("Cleanup scheduler stopped")
}

func (cs *CleanupScheduler) runCleanup() {
	if err := cs.store.CleanupOldRecords(cs.retentionDays); err != nil {
		cs.logger.WithError(err).Error("Failed to clean up old records")
	}

	cs.sweepDownloadDir()
}

// sweepDownloadDir removes downloaded files past the retention window that
// were never delivered, so stranded media does not accumulate.
func (cs *CleanupScheduler) sweepDownloadDir() {
	cutoff := time.Now().AddDate(0, 0, -cs.retentionDays)

	entries, err := os.ReadDir(cs.downloadDir)
	if err != nil {
		cs.logger.WithError(err).Warn("Failed to read download directory")
		return
	}

	removed := 0
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		if info.ModTime().After(cutoff) {
			continue
		}
		if err := os.Remove(filepath.Join(cs.downloadDir, entry.Name())); err != nil {
			cs.logger.WithError(err).WithField("file", entry.Name()).Warn("Failed to remove stale file")
			continue
		}
		removed++
	}

	if removed > 0 {
		cs.logger.WithField("removed", removed).Info("Removed stale downloaded files")
	}
}

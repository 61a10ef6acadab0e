package service

import (
	"context"
	"fmt"
	"os"
	"path"
	"path/filepath"

	"tgsentry/internal/constants"
	"tgsentry/internal/errors"
	"tgsentry/internal/metrics"
	"tgsentry/internal/security"
	"tgsentry/pkg/telegram/types"

	"github.com/sirupsen/logrus"
)

// FileClient is the slice of the Bot API the fetcher needs.
type FileClient interface {
	GetFile(ctx context.Context, fileID string) (string, error)
	DownloadFile(ctx context.Context, remotePath string) ([]byte, error)
}

// AttachmentFetcher downloads the files referenced by a message's
// attachment slots into the local download directory.
type AttachmentFetcher struct {
	client         FileClient
	saveDir        string
	maxConcurrency int
	logger         *logrus.Logger
}

func NewAttachmentFetcher(client FileClient, saveDir string, maxConcurrency int, logger *logrus.Logger) (*AttachmentFetcher, error) {
	if err := os.MkdirAll(saveDir, 0750); err != nil {
		return nil, fmt.Errorf("failed to create download directory: %w", err)
	}

	if maxConcurrency <= 0 {
		maxConcurrency = constants.DefaultFetchConcurrency
	}

	return &AttachmentFetcher{
		client:         client,
		saveDir:        saveDir,
		maxConcurrency: maxConcurrency,
		logger:         logger,
	}, nil
}

// Fetch resolves a file reference, downloads it, and writes it to
// saveDir/nameStem.ext, inferring the extension from the remote path.
func (f *AttachmentFetcher) Fetch(ctx context.Context, fileID, nameStem string) (string, error) {
	remotePath, err := f.client.GetFile(ctx, fileID)
	if err != nil {
		return "", errors.Wrap(err, errors.ErrCodeTelegramAPI, "failed to resolve file reference")
	}

	ext := path.Ext(remotePath)
	if ext == "" {
		ext = constants.DefaultBinaryExtension
	}

	data, err := f.client.DownloadFile(ctx, remotePath)
	if err != nil {
		return "", errors.Wrap(err, errors.ErrCodeMediaDownload, "failed to download file")
	}

	savePath := filepath.Join(f.saveDir, security.SanitizeFileName(nameStem)+ext)
	if err := os.WriteFile(savePath, data, 0600); err != nil {
		return "", errors.Wrap(err, errors.ErrCodeMediaDownload, "failed to write file")
	}

	return savePath, nil
}

type fetchJob struct {
	fileID   string
	nameStem string
}

// ExtractAttachments fetches every attachment slot of the message through a
// bounded worker pool and returns the local paths of the successful
// downloads in completion order. A failed slot is logged and skipped; it
// never aborts the rest of the message.
func (f *AttachmentFetcher) ExtractAttachments(ctx context.Context, msg *types.BusinessMessage) []string {
	var jobs []fetchJob
	for _, slot := range msg.Slots() {
		files := slot.Files
		// Multi-valued kinds offer ascending quality variants of one
		// logical file; keep only the best one.
		if slot.Kind == types.MediaKindPhoto && len(files) > 1 {
			files = files[len(files)-1:]
		}
		for _, ref := range files {
			jobs = append(jobs, fetchJob{
				fileID:   ref.FileID,
				nameStem: fmt.Sprintf("%s_%d", slot.Kind, msg.MessageID),
			})
		}
	}

	if len(jobs) == 0 {
		return nil
	}

	semaphore := make(chan struct{}, f.maxConcurrency)
	results := make(chan string, len(jobs))

	for _, job := range jobs {
		go func(job fetchJob) {
			semaphore <- struct{}{}
			defer func() { <-semaphore }()

			savePath, err := f.Fetch(ctx, job.fileID, job.nameStem)
			if err != nil {
				f.logger.WithError(err).WithFields(logrus.Fields{
					"messageID": msg.MessageID,
					"stem":      job.nameStem,
				}).Error("Failed to fetch attachment")
				metrics.IncrementCounter("attachment_fetch_failures_total", nil, "Failed attachment downloads")
				results <- ""
				return
			}

			metrics.IncrementCounter("attachments_fetched_total", nil, "Successful attachment downloads")
			results <- savePath
		}(job)
	}

	var paths []string
	for range jobs {
		if savePath := <-results; savePath != "" {
			paths = append(paths, savePath)
		}
	}

	return paths
}

package service

import (
	"context"
	"sync"

	"tgsentry/internal/models"
	"tgsentry/pkg/telegram/types"

	"github.com/stretchr/testify/mock"
)

type mockStore struct {
	mock.Mock
}

func (m *mockStore) SaveMessage(ctx context.Context, msg *models.TrackedMessage) error {
	args := m.Called(ctx, msg)
	return args.Error(0)
}

func (m *mockStore) GetMessage(ctx context.Context, chatID string, messageID int64) (*models.TrackedMessage, error) {
	args := m.Called(ctx, chatID, messageID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.TrackedMessage), args.Error(1)
}

func (m *mockStore) UpdateMessageText(ctx context.Context, chatID string, messageID int64, text string) error {
	args := m.Called(ctx, chatID, messageID, text)
	return args.Error(0)
}

func (m *mockStore) UpdateMessageSenderName(ctx context.Context, chatID string, messageID int64, senderName string) error {
	args := m.Called(ctx, chatID, messageID, senderName)
	return args.Error(0)
}

func (m *mockStore) DeleteMessage(ctx context.Context, chatID string, messageID int64) error {
	args := m.Called(ctx, chatID, messageID)
	return args.Error(0)
}

type mockFetcher struct {
	mock.Mock
}

func (m *mockFetcher) ExtractAttachments(ctx context.Context, msg *types.BusinessMessage) []string {
	args := m.Called(ctx, msg)
	if args.Get(0) == nil {
		return nil
	}
	return args.Get(0).([]string)
}

// notification records one Notify call for assertions.
type notification struct {
	text               string
	attachmentPaths    []string
	includeAttachments bool
}

type recordingNotifier struct {
	mu    sync.Mutex
	calls []notification
}

func (n *recordingNotifier) Notify(ctx context.Context, text string, attachmentPaths []string, includeAttachments bool) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.calls = append(n.calls, notification{
		text:               text,
		attachmentPaths:    attachmentPaths,
		includeAttachments: includeAttachments,
	})
}

func (n *recordingNotifier) Calls() []notification {
	n.mu.Lock()
	defer n.mu.Unlock()
	out := make([]notification, len(n.calls))
	copy(out, n.calls)
	return out
}

type mockClient struct {
	mock.Mock
}

func (m *mockClient) GetUpdates(ctx context.Context, offset int64, timeoutSec int) ([]types.Update, error) {
	args := m.Called(ctx, offset, timeoutSec)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]types.Update), args.Error(1)
}

func (m *mockClient) GetFile(ctx context.Context, fileID string) (string, error) {
	args := m.Called(ctx, fileID)
	return args.String(0), args.Error(1)
}

func (m *mockClient) DownloadFile(ctx context.Context, remotePath string) ([]byte, error) {
	args := m.Called(ctx, remotePath)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}

func (m *mockClient) SendText(ctx context.Context, chatID int64, text string) error {
	args := m.Called(ctx, chatID, text)
	return args.Error(0)
}

func (m *mockClient) SendReply(ctx context.Context, chatID, replyToMessageID int64, text string) error {
	args := m.Called(ctx, chatID, replyToMessageID, text)
	return args.Error(0)
}

func (m *mockClient) SendDocument(ctx context.Context, chatID int64, filePath, caption string) error {
	args := m.Called(ctx, chatID, filePath, caption)
	return args.Error(0)
}

type mockOffsetStore struct {
	mock.Mock
}

func (m *mockOffsetStore) GetUpdateOffset(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

func (m *mockOffsetStore) SetUpdateOffset(ctx context.Context, offset int64) error {
	args := m.Called(ctx, offset)
	return args.Error(0)
}

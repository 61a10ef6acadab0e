package types

import "context"

// Client is the Bot API surface the service layer consumes.
type Client interface {
	// GetUpdates long-polls the update feed starting at offset.
	GetUpdates(ctx context.Context, offset int64, timeoutSec int) ([]Update, error)
	// GetFile resolves a file reference to its remote path.
	GetFile(ctx context.Context, fileID string) (string, error)
	// DownloadFile retrieves the bytes behind a remote path.
	DownloadFile(ctx context.Context, remotePath string) ([]byte, error)
	// SendText delivers a plain text message.
	SendText(ctx context.Context, chatID int64, text string) error
	// SendReply delivers a text message as a reply to another message.
	SendReply(ctx context.Context, chatID, replyToMessageID int64, text string) error
	// SendDocument uploads a local file as a document with an optional caption.
	SendDocument(ctx context.Context, chatID int64, filePath, caption string) error
}

package models

import (
	"strings"
	"time"
)

// TrackedMessage is one durable record per (ChatID, MessageID). It holds the
// last observed state of a business message so edits and deletions can be
// diffed and reported after the original content is gone.
type TrackedMessage struct {
	ChatID          string    `json:"chatId"`
	MessageID       int64     `json:"messageId"`
	SenderID        int64     `json:"senderId"`
	SenderUsername  *string   `json:"senderUsername,omitempty"`
	SenderName      string    `json:"senderName"`
	Text            string    `json:"text"`
	AttachmentPaths []string  `json:"attachmentPaths,omitempty"`
	IsTemporary     bool      `json:"isTemporary"`
	CreatedAt       time.Time `json:"createdAt"`
	UpdatedAt       time.Time `json:"updatedAt"`
}

// attachmentPathSeparator joins attachment paths into the single files
// column. Paths never contain commas because the fetcher names them.
const attachmentPathSeparator = ","

// JoinAttachmentPaths flattens the path list for storage. Empty list
// becomes the empty string.
func JoinAttachmentPaths(paths []string) string {
	return strings.Join(paths, attachmentPathSeparator)
}

// SplitAttachmentPaths reverses JoinAttachmentPaths. Empty input yields nil
// so "no attachments" round-trips without producing a [""] slice.
func SplitAttachmentPaths(joined string) []string {
	if joined == "" {
		return nil
	}
	return strings.Split(joined, attachmentPathSeparator)
}

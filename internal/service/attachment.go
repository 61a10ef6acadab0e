package service

import (
	"fmt"
	"os"
)

type attachmentState int

const (
	attachmentFetched attachmentState = iota
	attachmentDelivered
	attachmentDeleted
)

func (s attachmentState) String() string {
	switch s {
	case attachmentFetched:
		return "fetched"
	case attachmentDelivered:
		return "delivered"
	case attachmentDeleted:
		return "deleted"
	}
	return "unknown"
}

// Attachment is a local file owned by the pipeline from fetch until
// delivery. Removal is only legal once the file has been delivered, so a
// failed send can never strand the state between "on disk" and "gone".
type Attachment struct {
	path  string
	state attachmentState
}

func NewAttachment(path string) *Attachment {
	return &Attachment{path: path, state: attachmentFetched}
}

func (a *Attachment) Path() string {
	return a.path
}

func (a *Attachment) State() string {
	return a.state.String()
}

// MarkDelivered records a successful send of the file.
func (a *Attachment) MarkDelivered() {
	if a.state == attachmentFetched {
		a.state = attachmentDelivered
	}
}

// Remove deletes the local copy. Only a delivered attachment may be
// removed; anything else is a state error.
func (a *Attachment) Remove() error {
	if a.state != attachmentDelivered {
		return fmt.Errorf("cannot remove attachment in state %s", a.state)
	}

	if err := os.Remove(a.path); err != nil {
		return fmt.Errorf("failed to remove attachment: %w", err)
	}

	a.state = attachmentDeleted
	return nil
}

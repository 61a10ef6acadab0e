package types

import (
	"encoding/json"
	"fmt"
	"strings"
)

// MediaKind identifies an attachment slot on a business message.
type MediaKind string

const (
	MediaKindPhoto     MediaKind = "photo"
	MediaKindVideo     MediaKind = "video"
	MediaKindVoice     MediaKind = "voice"
	MediaKindAudio     MediaKind = "audio"
	MediaKindDocument  MediaKind = "document"
	MediaKindSticker   MediaKind = "sticker"
	MediaKindAnimation MediaKind = "animation"
	MediaKindVideoNote MediaKind = "video_note"
)

// KnownMediaKinds lists the attachment slots in their wire order.
var KnownMediaKinds = []MediaKind{
	MediaKindPhoto,
	MediaKindVideo,
	MediaKindVoice,
	MediaKindAudio,
	MediaKindDocument,
	MediaKindSticker,
	MediaKindAnimation,
	MediaKindVideoNote,
}

// User is the sender of a message.
type User struct {
	ID        int64  `json:"id"`
	Username  string `json:"username,omitempty"`
	FirstName string `json:"first_name,omitempty"`
	LastName  string `json:"last_name,omitempty"`
}

// DisplayName renders the human-readable sender label:
// "Full Name (@handle)" when a username exists, "Full Name (ID: n)" otherwise.
func (u *User) DisplayName() string {
	fullName := strings.TrimSpace(u.FirstName + " " + u.LastName)
	if u.Username != "" {
		return fmt.Sprintf("%s (@%s)", fullName, u.Username)
	}
	return fmt.Sprintf("%s (ID: %d)", fullName, u.ID)
}

// FileRef is a remote file reference carried by an attachment slot.
type FileRef struct {
	FileID       string `json:"file_id"`
	FileUniqueID string `json:"file_unique_id,omitempty"`
	FileSize     int64  `json:"file_size,omitempty"`
}

// AttachmentSlot is one typed media slot on a message. Multi-valued kinds
// (photo) carry every offered variant ordered worst to best.
type AttachmentSlot struct {
	Kind  MediaKind
	Files []FileRef
}

// Chat identifies where a regular (non-business) message was sent.
type Chat struct {
	ID   int64  `json:"id"`
	Type string `json:"type"`
}

// Message is a regular chat message, used by the away responder.
type Message struct {
	MessageID int64  `json:"message_id"`
	From      *User  `json:"from,omitempty"`
	Chat      Chat   `json:"chat"`
	Text      string `json:"text,omitempty"`
}

// BusinessMessage is a message on a business connection. Unknown
// file-bearing fields survive decoding in Extra so new media kinds are
// archived without a code change.
type BusinessMessage struct {
	BusinessConnectionID string  `json:"business_connection_id"`
	MessageID            int64   `json:"message_id"`
	From                 *User   `json:"from,omitempty"`
	Text                 string  `json:"text,omitempty"`
	Caption              string  `json:"caption,omitempty"`
	HasMediaSpoiler      bool    `json:"has_media_spoiler,omitempty"`

	Photo     []FileRef `json:"photo,omitempty"`
	Video     *FileRef  `json:"video,omitempty"`
	Voice     *FileRef  `json:"voice,omitempty"`
	Audio     *FileRef  `json:"audio,omitempty"`
	Document  *FileRef  `json:"document,omitempty"`
	Sticker   *FileRef  `json:"sticker,omitempty"`
	Animation *FileRef  `json:"animation,omitempty"`
	VideoNote *FileRef  `json:"video_note,omitempty"`

	// Extra holds file references found under keys outside the known kind
	// set, keyed by the wire field name.
	Extra map[string]FileRef `json:"-"`
}

// nonMediaKeys are message fields that are never attachment slots.
var nonMediaKeys = map[string]struct{}{
	"business_connection_id": {},
	"message_id":             {},
	"from":                   {},
	"chat":                   {},
	"date":                   {},
	"text":                   {},
	"caption":                {},
	"entities":               {},
	"caption_entities":       {},
	"has_media_spoiler":      {},
	"reply_to_message":       {},
}

func (m *BusinessMessage) UnmarshalJSON(data []byte) error {
	type alias BusinessMessage
	var decoded alias
	if err := json.Unmarshal(data, &decoded); err != nil {
		return err
	}

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	known := make(map[string]struct{}, len(KnownMediaKinds))
	for _, kind := range KnownMediaKinds {
		known[string(kind)] = struct{}{}
	}

	for key, value := range raw {
		if _, ok := known[key]; ok {
			continue
		}
		if _, ok := nonMediaKeys[key]; ok {
			continue
		}
		var ref FileRef
		if err := json.Unmarshal(value, &ref); err != nil {
			continue
		}
		if ref.FileID == "" {
			continue
		}
		if decoded.Extra == nil {
			decoded.Extra = make(map[string]FileRef)
		}
		decoded.Extra[key] = ref
	}

	*m = BusinessMessage(decoded)
	return nil
}

// ContentText returns the textual payload of the message, which lives in
// the caption field when media is attached.
func (m *BusinessMessage) ContentText() string {
	if m.Text != "" {
		return m.Text
	}
	return m.Caption
}

// Slots returns every populated attachment slot in wire order, known kinds
// first, then unknown file-bearing fields.
func (m *BusinessMessage) Slots() []AttachmentSlot {
	var slots []AttachmentSlot

	add := func(kind MediaKind, files []FileRef) {
		if len(files) > 0 {
			slots = append(slots, AttachmentSlot{Kind: kind, Files: files})
		}
	}
	single := func(kind MediaKind, ref *FileRef) {
		if ref != nil {
			add(kind, []FileRef{*ref})
		}
	}

	add(MediaKindPhoto, m.Photo)
	single(MediaKindVideo, m.Video)
	single(MediaKindVoice, m.Voice)
	single(MediaKindAudio, m.Audio)
	single(MediaKindDocument, m.Document)
	single(MediaKindSticker, m.Sticker)
	single(MediaKindAnimation, m.Animation)
	single(MediaKindVideoNote, m.VideoNote)

	for key, ref := range m.Extra {
		add(MediaKind(key), []FileRef{ref})
	}

	return slots
}

// DeletedBusinessMessages reports a batch of deleted message IDs on one
// business connection.
type DeletedBusinessMessages struct {
	BusinessConnectionID string  `json:"business_connection_id"`
	MessageIDs           []int64 `json:"message_ids"`
}

// Update is one envelope from the getUpdates feed. Exactly one of the
// payload pointers is expected to be set; unknown update kinds decode with
// all of them nil and are skipped.
type Update struct {
	UpdateID                int64                    `json:"update_id"`
	Message                 *Message                 `json:"message,omitempty"`
	BusinessMessage         *BusinessMessage         `json:"business_message,omitempty"`
	EditedBusinessMessage   *BusinessMessage         `json:"edited_business_message,omitempty"`
	DeletedBusinessMessages *DeletedBusinessMessages `json:"deleted_business_messages,omitempty"`
}

// File is the getFile metadata result.
type File struct {
	FileID   string `json:"file_id"`
	FilePath string `json:"file_path"`
}

// UpdatesResponse is the Bot API envelope for getUpdates.
type UpdatesResponse struct {
	OK          bool     `json:"ok"`
	Result      []Update `json:"result"`
	Description string   `json:"description,omitempty"`
	ErrorCode   int      `json:"error_code,omitempty"`
}

// FileResponse is the Bot API envelope for getFile.
type FileResponse struct {
	OK          bool   `json:"ok"`
	Result      File   `json:"result"`
	Description string `json:"description,omitempty"`
	ErrorCode   int    `json:"error_code,omitempty"`
}

// SendResponse is the Bot API envelope for sendMessage and sendDocument.
type SendResponse struct {
	OK          bool    `json:"ok"`
	Result      Message `json:"result"`
	Description string  `json:"description,omitempty"`
	ErrorCode   int     `json:"error_code,omitempty"`
}

package conversation

import (
	"time"

	"claridx/internal/common"
)

// Sender is a message's author relative to whoever is looking at it.
type Sender string

const (
	SenderSelf  Sender = "self"
	SenderOther Sender = "other"
)

type Attachment struct {
	Name string                `json:"name"`
	URL  string                `json:"url"`
	Type string                `json:"type"`
	Kind common.AttachmentKind `json:"kind"`
}

// ProjectedMessage is a stored message as one viewer sees it. It is derived
// per request and never persisted.
type ProjectedMessage struct {
	ID         uint64      `json:"id"`
	Sender     Sender      `json:"sender"`
	SenderID   string      `json:"sender_id"`
	Text       string      `json:"text"`
	Attachment *Attachment `json:"attachment,omitempty"`
	CreatedAt  time.Time   `json:"created_at"`
}

// Upload is an attachment on its way to blob storage.
type Upload struct {
	Name        string
	ContentType string
	Data        []byte
}

type SendRequest struct {
	ConversationID string
	DoctorID       *string
	SenderID       string
	Text           string
	Attachment     *Upload
}

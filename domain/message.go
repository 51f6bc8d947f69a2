// Package domain contains core concepts of the conversation system.
// This file defines Message events and related rules.
// Messages are immutable once appended to a timeline.
package domain

import (
	"time"

	"github.com/google/uuid"
)

// MessageType mirrors what the compose surface can produce.
type MessageType string

const (
	TypeText  MessageType = "text"
	TypeFile  MessageType = "file"
	TypeImage MessageType = "image"
	TypeVideo MessageType = "video"
)

// Message represents an immutable chat event. The Parent snapshot, when
// present, is the only source for rendering the quoted message: it is never
// re-resolved against the live timeline.
type Message struct {
	ID           uuid.UUID
	Conversation ConversationID
	SenderID     string
	SenderName   string
	SenderAvatar string
	Body         string
	Type         MessageType
	Attachments  []AttachmentMeta
	Lang         string // ISO 639-3 hint, empty when detection is unreliable
	Parent       *ParentSnapshot
	CreatedAt    time.Time
}

// ParentSnapshot is an immutable copy of a parent message's display fields,
// frozen at reply-compose time (id, sender, body - not a live reference).
type ParentSnapshot struct {
	ID           uuid.UUID
	SenderID     string
	SenderName   string
	SenderAvatar string
	Body         string
}

// ComposeSnapshot freezes the parent reference of a reply. It is invoked
// exactly once, at send time; later changes to the original message by any
// other subsystem never reach the snapshot.
func ComposeSnapshot(parent Message) ParentSnapshot {
	return ParentSnapshot{
		ID:           parent.ID,
		SenderID:     parent.SenderID,
		SenderName:   parent.SenderName,
		SenderAvatar: parent.SenderAvatar,
		Body:         parent.Body,
	}
}

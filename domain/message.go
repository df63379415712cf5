// Package domain contains core concepts of the chat system.
// This file defines Message entities and their validation rules.
// Messages are immutable once persisted, except for deletion by sender.
package domain

import (
	"time"

	"github.com/google/uuid"
)

type MessageKind string

const (
	KindText MessageKind = "text"
	KindFile MessageKind = "file"
)

// FileDescriptor references an uploaded file attached to a message.
// The upload itself is handled by the storage layer; the message only
// carries the pointer.
type FileDescriptor struct {
	URL  string `json:"url"`
	Name string `json:"name"`
	Size int64  `json:"size"`
}

// Message represents one chat entry inside a conversation.
// ID and At are assigned by the store on persist; callers must use the
// persisted value for fan-out since only it carries the canonical id.
type Message struct {
	ID     uuid.UUID       `json:"id"`
	Sender Identity        `json:"sender"`
	Body   string          `json:"body,omitempty"`
	File   *FileDescriptor `json:"file,omitempty"`
	Kind   MessageKind     `json:"kind"`
	At     time.Time       `json:"at"`
}

// HasContent reports whether the message carries a body or a file.
// A message with neither is invalid and must never be persisted.
func (m Message) HasContent() bool {
	return m.Body != "" || m.File != nil
}

// ResolveKind infers the message kind when the sender did not set it.
func (m Message) ResolveKind() MessageKind {
	if m.Kind != "" {
		return m.Kind
	}
	if m.File != nil {
		return KindFile
	}
	return KindText
}

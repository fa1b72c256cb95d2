// Package domain contains core concepts of the chat system.
// This file defines Message events and related rules.
// Messages are immutable and validated by the domain.
package domain

import (
	"time"

	"github.com/google/uuid"
)

// BroadcastTarget is the reserved recipient name addressing every participant.
const BroadcastTarget = "everyone"

type MessageType string

const (
	Broadcast MessageType = "broadcast"
	Private   MessageType = "private"
)

// Message represents an immutable chat event.
// From and At are stamped by the server at write time, never client-supplied.
type Message struct {
	ID   uuid.UUID // unique identifier
	From string
	To   string
	Text string
	Type MessageType
	At   time.Time
}

// VisibleTo reports whether the given participant may read the message:
// broadcasts, messages addressed to them, and messages they sent themselves.
func (m Message) VisibleTo(user string) bool {
	return m.To == BroadcastTarget || m.To == user || m.From == user
}

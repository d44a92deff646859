// Package domain contains core concepts of the chat room.
// This file defines Message records, kinds, and the visibility rule.
package domain

import (
	"time"

	"github.com/google/uuid"
)

// Message kinds. Status is reserved for system join/leave notices and is
// never accepted from clients.
const (
	KindPublic  = "message"
	KindPrivate = "private_message"
	KindStatus  = "status"
)

// Broadcast is the recipient marker addressing every participant.
const Broadcast = "Todos"

// Texts of the system notices emitted on registration and eviction.
const (
	JoinedRoomText = "entra na sala..."
	LeftRoomText   = "sai da sala..."
)

// Message is a chat record. From is taken from the authenticated requester,
// never from a client body. At is the wall-clock stamp assigned on write and
// re-assigned on edit; the storage slot keeps the original insertion order.
type Message struct {
	ID   uuid.UUID
	From string
	To   string
	Text string
	Type string
	At   time.Time
}

// VisibleTo reports whether user may see the message: own messages, messages
// addressed to the user, and every public or status message. Private
// messages stay between sender and recipient.
func (m Message) VisibleTo(user string) bool {
	return m.From == user || m.To == user || m.Type == KindPublic || m.Type == KindStatus
}

// Clock renders the wall-clock stamp the way clients display it.
func (m Message) Clock() string {
	return m.At.Format("15:04:05")
}

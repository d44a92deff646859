// Package domain contains core concepts of the chat room.
// This file defines Participant identities and their liveness rules.
// No runtime, network, or UI logic should be added here.
package domain

import "time"

// Participant is a registered chat identity. LastStatus moves forward on
// registration and on every status ping; the reaper deletes participants
// whose LastStatus fell behind the staleness window.
type Participant struct {
	Name       string
	LastStatus time.Time
}

// StaleBefore reports whether the participant went silent before threshold.
func (p Participant) StaleBefore(threshold time.Time) bool {
	return p.LastStatus.Before(threshold)
}

// Package domain contains core concepts of the chat system.
// This file defines Participant entities and related invariants.
// No runtime, network, or UI logic should be added here.
package domain

import "time"

// Participant represents an online chat user.
// Liveness is signaled by LastHeartbeat; a participant whose heartbeat is
// older than the inactivity threshold is evicted by the sweeper.
type Participant struct {
	Name          string
	LastHeartbeat time.Time
}

// Alive reports whether the participant heartbeat is still within the
// threshold at the given instant. A heartbeat exactly at the threshold
// is still alive.
func (p Participant) Alive(now time.Time, threshold time.Duration) bool {
	return now.Sub(p.LastHeartbeat) <= threshold
}

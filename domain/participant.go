// Package domain contains core concepts of the reward ledger.
// This file defines Participant entities and related invariants.
// No runtime, network, or UI logic should be added here.
package domain

import "time"

// ParticipantID is the opaque session handle of a connected participant.
type ParticipantID string

// Participant is a connected user session in the hosted experience.
// The ledger references participants by identifier only; it does not
// own their lifecycle.
type Participant struct {
	ID          ParticipantID
	DisplayName string
	JoinedAt    time.Time
}

package domain

import "time"

// GateState is the temporal access-control state of a room for one viewer.
type GateState string

const (
	// GateOpen allows messaging for both participants.
	GateOpen GateState = "open"
	// GateAwaitingDecision is shown only to the decision-maker
	// (Participants[0]): the room expired and they must extend or decline.
	GateAwaitingDecision GateState = "awaiting_decision"
	// GateLocked disallows sending until the decision-maker extends.
	GateLocked GateState = "locked"
)

// EvaluateGate computes the gate state of a room for one viewing
// participant. A room whose creation timestamp has not resolved yet is
// treated as open so a brand-new room is never spuriously locked. Once a
// room is extended it stays open regardless of further time passing.
func EvaluateGate(room *Room, viewerID string, now time.Time, ttl time.Duration) GateState {
	if room.CreatedAt.IsZero() {
		return GateOpen
	}
	if room.Extended || now.Sub(room.CreatedAt) < ttl {
		return GateOpen
	}
	if viewerID == room.Participants[0].UserID {
		return GateAwaitingDecision
	}
	return GateLocked
}

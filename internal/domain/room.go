package domain

import "time"

// RoomKey derives the canonical room id for a pair of users: the two ids
// sorted lexicographically and joined with "_". Commutative and
// deterministic; user ids are opaque tokens that never contain the
// separator, so the key is unique per unordered pair.
func RoomKey(a, b string) string {
	if a > b {
		a, b = b, a
	}
	return a + "_" + b
}

// LastMessage is a denormalized summary of the newest message in a room,
// kept for list views. Derived, never authoritative.
type LastMessage struct {
	Text     string    `json:"text"`
	SenderID string    `json:"sender_id"`
	At       time.Time `json:"at"`
}

// Room is a persisted 1:1 pairing. Participants holds identity snapshots
// captured at creation time; index 0 is the original inviter, the only
// party allowed to extend the room once it expires.
type Room struct {
	ID           string       `json:"id"`
	Participants [2]Identity  `json:"participants"`
	Extended     bool         `json:"extended"`
	LastMessage  *LastMessage `json:"last_message,omitempty"`
	CreatedAt    time.Time    `json:"created_at"`
	UpdatedAt    time.Time    `json:"updated_at"`
}

// Participant returns the stored identity snapshot for the given user id.
func (r *Room) Participant(userID string) (Identity, bool) {
	for _, p := range r.Participants {
		if p.UserID == userID {
			return p, true
		}
	}
	return Identity{}, false
}

// Other returns the participant that is not the given user.
func (r *Room) Other(userID string) (Identity, bool) {
	if !r.hasParticipant(userID) {
		return Identity{}, false
	}
	if r.Participants[0].UserID == userID {
		return r.Participants[1], true
	}
	return r.Participants[0], true
}

func (r *Room) hasParticipant(userID string) bool {
	_, ok := r.Participant(userID)
	return ok
}

package domain

import (
	"time"

	"github.com/google/uuid"
)

// Message is one entry in a room's append-only log. Messages are never
// edited or deleted. CreatedAt is assigned by the server at append time and
// defines the total order within a room; Seq is the store's insertion
// counter and breaks timestamp ties.
type Message struct {
	ID        uuid.UUID `json:"id"`
	RoomID    string    `json:"room_id"`
	Seq       int64     `json:"-"`
	Sender    Identity  `json:"sender"`
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"created_at"`
}

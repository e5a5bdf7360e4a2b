package repository

import (
	"context"
	"errors"
	"time"

	"pairchat/internal/domain"
)

// ErrDuplicate is returned by creates that lost a uniqueness race, so
// services can map it without knowing the store's error types.
var ErrDuplicate = errors.New("row already exists")

type IdentityRepository interface {
	Create(ctx context.Context, identity *domain.Identity) error
	GetByID(ctx context.Context, id string) (*domain.Identity, error)
	GetByUsername(ctx context.Context, username string) (*domain.Identity, error)
}

// RoomRepository owns the room document. Every mutation is a named
// field-level patch touching only the columns it is about, so concurrent
// writers (one device extending while the other sends) never clobber each
// other's fields.
type RoomRepository interface {
	// CreateIfAbsent atomically creates the room unless a row with the
	// same id already exists. Reports whether this call created it.
	CreateIfAbsent(ctx context.Context, room *domain.Room) (bool, error)
	GetByID(ctx context.Context, id string) (*domain.Room, error)
	ListByUser(ctx context.Context, userID string) ([]domain.Room, error)
	TouchActivity(ctx context.Context, id string, at time.Time) error
	// SetExtended flips the one-way extension flag. Idempotent.
	SetExtended(ctx context.Context, id string, at time.Time) error
	// SetLastMessage overwrites the denormalized summary and refreshes
	// the activity timestamp in one patch.
	SetLastMessage(ctx context.Context, id string, last domain.LastMessage, at time.Time) error
}

type MessageRepository interface {
	// Append stores the message and fills in its insertion sequence.
	Append(ctx context.Context, msg *domain.Message) error
	// ListByRoom returns the full log in ascending (created_at, seq) order.
	ListByRoom(ctx context.Context, roomID string) ([]domain.Message, error)
}

type MailboxRepository interface {
	Put(ctx context.Context, userID string, entry *domain.MailboxEntry) error
	// Get returns nil when no entry exists.
	Get(ctx context.Context, userID string) (*domain.MailboxEntry, error)
	Delete(ctx context.Context, userID string) error
}

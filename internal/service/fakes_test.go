package service

import (
	"context"
	"sort"
	"sync"
	"time"

	"pairchat/internal/domain"
	"pairchat/internal/repository"
)

// In-memory repo fakes mirroring the postgres/redis semantics: atomic
// conditional creation, field-level patches, insertion-order sequencing.

type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func newFakeClock(start time.Time) *fakeClock {
	return &fakeClock{t: start}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(d)
}

type fakeRoomRepo struct {
	mu    sync.Mutex
	rooms map[string]*domain.Room
}

func newFakeRoomRepo() *fakeRoomRepo {
	return &fakeRoomRepo{rooms: make(map[string]*domain.Room)}
}

func (r *fakeRoomRepo) CreateIfAbsent(_ context.Context, room *domain.Room) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.rooms[room.ID]; ok {
		return false, nil
	}
	cp := *room
	r.rooms[room.ID] = &cp
	return true, nil
}

func (r *fakeRoomRepo) GetByID(_ context.Context, id string) (*domain.Room, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	room, ok := r.rooms[id]
	if !ok {
		return nil, nil
	}
	cp := *room
	if room.LastMessage != nil {
		last := *room.LastMessage
		cp.LastMessage = &last
	}
	return &cp, nil
}

func (r *fakeRoomRepo) ListByUser(ctx context.Context, userID string) ([]domain.Room, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var rooms []domain.Room
	for _, room := range r.rooms {
		if _, ok := room.Participant(userID); ok {
			rooms = append(rooms, *room)
		}
	}
	sort.Slice(rooms, func(i, j int) bool {
		return rooms[i].UpdatedAt.After(rooms[j].UpdatedAt)
	})
	return rooms, nil
}

func (r *fakeRoomRepo) TouchActivity(_ context.Context, id string, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if room, ok := r.rooms[id]; ok {
		room.UpdatedAt = at
	}
	return nil
}

func (r *fakeRoomRepo) SetExtended(_ context.Context, id string, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if room, ok := r.rooms[id]; ok {
		room.Extended = true
		room.UpdatedAt = at
	}
	return nil
}

func (r *fakeRoomRepo) SetLastMessage(_ context.Context, id string, last domain.LastMessage, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if room, ok := r.rooms[id]; ok {
		room.LastMessage = &last
		room.UpdatedAt = at
	}
	return nil
}

func (r *fakeRoomRepo) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.rooms)
}

type fakeMessageRepo struct {
	mu       sync.Mutex
	messages []domain.Message
	seq      int64
}

func newFakeMessageRepo() *fakeMessageRepo {
	return &fakeMessageRepo{}
}

func (r *fakeMessageRepo) Append(_ context.Context, msg *domain.Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seq++
	msg.Seq = r.seq
	r.messages = append(r.messages, *msg)
	return nil
}

func (r *fakeMessageRepo) ListByRoom(_ context.Context, roomID string) ([]domain.Message, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.Message
	for _, msg := range r.messages {
		if msg.RoomID == roomID {
			out = append(out, msg)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].Seq < out[j].Seq
	})
	return out, nil
}

func (r *fakeMessageRepo) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.messages)
}

type fakeMailboxRepo struct {
	mu        sync.Mutex
	entries   map[string]*domain.MailboxEntry
	deleteErr error
}

func newFakeMailboxRepo() *fakeMailboxRepo {
	return &fakeMailboxRepo{entries: make(map[string]*domain.MailboxEntry)}
}

func (r *fakeMailboxRepo) Put(_ context.Context, userID string, entry *domain.MailboxEntry) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *entry
	r.entries[userID] = &cp
	return nil
}

func (r *fakeMailboxRepo) Get(_ context.Context, userID string) (*domain.MailboxEntry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	entry, ok := r.entries[userID]
	if !ok {
		return nil, nil
	}
	cp := *entry
	return &cp, nil
}

func (r *fakeMailboxRepo) Delete(_ context.Context, userID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.deleteErr != nil {
		return r.deleteErr
	}
	delete(r.entries, userID)
	return nil
}

type fakeIdentityRepo struct {
	mu         sync.Mutex
	identities map[string]*domain.Identity
}

func newFakeIdentityRepo() *fakeIdentityRepo {
	return &fakeIdentityRepo{identities: make(map[string]*domain.Identity)}
}

func (r *fakeIdentityRepo) Create(_ context.Context, identity *domain.Identity) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.identities {
		if existing.Username == identity.Username {
			return repository.ErrDuplicate
		}
	}
	cp := *identity
	r.identities[identity.UserID] = &cp
	return nil
}

func (r *fakeIdentityRepo) GetByID(_ context.Context, id string) (*domain.Identity, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	identity, ok := r.identities[id]
	if !ok {
		return nil, nil
	}
	cp := *identity
	return &cp, nil
}

func (r *fakeIdentityRepo) GetByUsername(_ context.Context, username string) (*domain.Identity, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, identity := range r.identities {
		if identity.Username == username {
			cp := *identity
			return &cp, nil
		}
	}
	return nil, nil
}

package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"pairchat/internal/domain"
	"pairchat/internal/livequery"
	"pairchat/internal/repository"
)

var (
	ErrInvalidQrPayload = errors.New("invalid qr payload")
	ErrCannotPairSelf   = errors.New("cannot pair with yourself")
	ErrRoomNotFound     = errors.New("room not found")
	ErrNotParticipant   = errors.New("you are not a participant of this room")
	ErrNotDecisionMaker = errors.New("only the inviter can extend this room")
)

// JoinPayloadType is the only QR payload type the scanner accepts.
const JoinPayloadType = "joinRoom"

// JoinPayload is the decoded QR code: the inviter's identity and nothing
// else. No room exists until someone scans it.
type JoinPayload struct {
	Type    string          `json:"type"`
	Inviter domain.Identity `json:"inviter"`
}

// RoomService owns the room lifecycle: idempotent creation on scan, the
// inviter mailbox side effect, the activity timestamp, and the time-boxed
// extension gate.
type RoomService struct {
	roomRepo    repository.RoomRepository
	mailboxRepo repository.MailboxRepository
	bus         livequery.Bus
	ttl         time.Duration
	now         func() time.Time
}

func NewRoomService(roomRepo repository.RoomRepository, mailboxRepo repository.MailboxRepository, bus livequery.Bus, ttl time.Duration) *RoomService {
	return &RoomService{
		roomRepo:    roomRepo,
		mailboxRepo: mailboxRepo,
		bus:         bus,
		ttl:         ttl,
		now:         time.Now,
	}
}

// Join validates a scanned QR payload and runs the pairing. Called by the
// joiner's device after a scan.
func (s *RoomService) Join(ctx context.Context, payload JoinPayload, joiner domain.Identity) (*domain.Room, error) {
	if payload.Type != JoinPayloadType || !payload.Inviter.Valid() {
		return nil, ErrInvalidQrPayload
	}
	return s.GetOrCreateRoom(ctx, payload.Inviter, joiner)
}

// GetOrCreateRoom establishes the room for a pair, or reuses it if the pair
// already has one. Safe to call from both devices near-simultaneously: the
// repo's conditional write makes both calls converge on one row. Whether or
// not the room is new, the inviter's mailbox is (re)written so their
// already-open screen discovers the pairing.
func (s *RoomService) GetOrCreateRoom(ctx context.Context, inviter, joiner domain.Identity) (*domain.Room, error) {
	if !inviter.Valid() || !joiner.Valid() {
		return nil, ErrInvalidIdentity
	}
	if inviter.UserID == joiner.UserID {
		return nil, ErrCannotPairSelf
	}

	now := s.now()
	room := &domain.Room{
		ID:           domain.RoomKey(inviter.UserID, joiner.UserID),
		Participants: [2]domain.Identity{inviter, joiner},
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	created, err := s.roomRepo.CreateIfAbsent(ctx, room)
	if err != nil {
		return nil, fmt.Errorf("creating room: %w", err)
	}
	if !created {
		// Reuse: touch activity only, never overwrite participants or
		// the extension flag, and return the authoritative document.
		if err := s.roomRepo.TouchActivity(ctx, room.ID, now); err != nil {
			return nil, fmt.Errorf("touching room: %w", err)
		}
		room, err = s.roomRepo.GetByID(ctx, room.ID)
		if err != nil {
			return nil, err
		}
		if room == nil {
			return nil, ErrRoomNotFound
		}
	}

	// The mailbox write happens strictly after the room exists, so an
	// entry always points at a live room. The counterpart is taken from
	// the stored snapshot, which is authoritative on reuse.
	other, ok := room.Other(inviter.UserID)
	if !ok {
		return nil, ErrNotParticipant
	}
	entry := &domain.MailboxEntry{RoomID: room.ID, Other: other, At: now}
	if err := s.mailboxRepo.Put(ctx, inviter.UserID, entry); err != nil {
		return nil, fmt.Errorf("writing pairing mailbox: %w", err)
	}
	s.bus.Publish(ctx, livequery.MailboxKey(inviter.UserID))
	s.bus.Publish(ctx, livequery.RoomKey(room.ID))

	return room, nil
}

// GetRoom returns the room and the gate state as seen by the viewer.
func (s *RoomService) GetRoom(ctx context.Context, roomID, viewerID string) (*domain.Room, domain.GateState, error) {
	room, err := s.roomRepo.GetByID(ctx, roomID)
	if err != nil {
		return nil, "", err
	}
	if room == nil {
		return nil, "", ErrRoomNotFound
	}
	if _, ok := room.Participant(viewerID); !ok {
		return nil, "", ErrNotParticipant
	}
	return room, domain.EvaluateGate(room, viewerID, s.now(), s.ttl), nil
}

func (s *RoomService) ListRooms(ctx context.Context, userID string) ([]domain.Room, error) {
	rooms, err := s.roomRepo.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if rooms == nil {
		rooms = []domain.Room{}
	}
	return rooms, nil
}

// Extend flips the one-way extension flag. Only the original inviter
// (Participants[0]) may do this; extending an already-extended room is a
// no-op. Declining is deliberately not persisted anywhere: it only locks
// the decision-maker's own open screen.
func (s *RoomService) Extend(ctx context.Context, roomID, viewerID string) (*domain.Room, error) {
	room, err := s.roomRepo.GetByID(ctx, roomID)
	if err != nil {
		return nil, err
	}
	if room == nil {
		return nil, ErrRoomNotFound
	}
	if _, ok := room.Participant(viewerID); !ok {
		return nil, ErrNotParticipant
	}
	if room.Participants[0].UserID != viewerID {
		return nil, ErrNotDecisionMaker
	}

	if !room.Extended {
		now := s.now()
		if err := s.roomRepo.SetExtended(ctx, roomID, now); err != nil {
			return nil, fmt.Errorf("extending room: %w", err)
		}
		room.Extended = true
		room.UpdatedAt = now
		s.bus.Publish(ctx, livequery.RoomKey(roomID))
	}
	return room, nil
}

// WatchRoom delivers the room document and the viewer's gate state now and
// again on every change, so an extension by the other side unlocks a live
// screen without a reload. The returned cancel must be called on teardown.
func (s *RoomService) WatchRoom(ctx context.Context, roomID, viewerID string, fn func(*domain.Room, domain.GateState)) (func(), error) {
	room, gate, err := s.GetRoom(ctx, roomID, viewerID)
	if err != nil {
		return nil, err
	}
	fn(room, gate)

	cancel := s.bus.Subscribe(livequery.RoomKey(roomID), func() {
		room, gate, err := s.GetRoom(ctx, roomID, viewerID)
		if err != nil {
			return
		}
		fn(room, gate)
	})
	return cancel, nil
}

package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"pairchat/internal/domain"
	"pairchat/internal/livequery"
	"pairchat/internal/repository"
)

var (
	ErrEmptyMessage = errors.New("message is empty after trimming")
	ErrGateClosed   = errors.New("room is locked until the inviter extends it")
)

// MessageService is the append-only, time-ordered message log per room.
// Sends also refresh the room's activity timestamp and last-message
// summary; subscriptions always deliver the full ordered list, never a
// delta.
type MessageService struct {
	messageRepo repository.MessageRepository
	roomRepo    repository.RoomRepository
	bus         livequery.Bus
	ttl         time.Duration
	now         func() time.Time
}

func NewMessageService(messageRepo repository.MessageRepository, roomRepo repository.RoomRepository, bus livequery.Bus, ttl time.Duration) *MessageService {
	return &MessageService{
		messageRepo: messageRepo,
		roomRepo:    roomRepo,
		bus:         bus,
		ttl:         ttl,
		now:         time.Now,
	}
}

// Send appends a message. Empty-after-trim text is rejected before any
// store write. The gate check here is a backstop: a locked client already
// has its input disabled, so ErrGateClosed should be unreachable in
// practice. Sends are not safe to blindly retry after an ambiguous
// failure; callers surface the error instead.
func (s *MessageService) Send(ctx context.Context, roomID, senderID, text string) (*domain.Message, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, ErrEmptyMessage
	}

	room, err := s.roomRepo.GetByID(ctx, roomID)
	if err != nil {
		return nil, err
	}
	if room == nil {
		return nil, ErrRoomNotFound
	}
	sender, ok := room.Participant(senderID)
	if !ok {
		return nil, ErrNotParticipant
	}

	now := s.now()
	if domain.EvaluateGate(room, senderID, now, s.ttl) == domain.GateLocked {
		return nil, ErrGateClosed
	}

	msg := &domain.Message{
		ID:        uuid.New(),
		RoomID:    roomID,
		Sender:    sender,
		Text:      text,
		CreatedAt: now,
	}
	if err := s.messageRepo.Append(ctx, msg); err != nil {
		return nil, fmt.Errorf("appending message: %w", err)
	}

	last := domain.LastMessage{Text: msg.Text, SenderID: sender.UserID, At: now}
	if err := s.roomRepo.SetLastMessage(ctx, roomID, last, now); err != nil {
		return nil, fmt.Errorf("updating room summary: %w", err)
	}

	s.bus.Publish(ctx, livequery.MessagesKey(roomID))
	s.bus.Publish(ctx, livequery.RoomKey(roomID))

	return msg, nil
}

// List returns the room's full log in ascending send order.
func (s *MessageService) List(ctx context.Context, roomID, viewerID string) ([]domain.Message, error) {
	if err := s.checkParticipant(ctx, roomID, viewerID); err != nil {
		return nil, err
	}
	messages, err := s.messageRepo.ListByRoom(ctx, roomID)
	if err != nil {
		return nil, err
	}
	if messages == nil {
		messages = []domain.Message{}
	}
	return messages, nil
}

// Subscribe delivers the full ordered message list to fn immediately and
// again on every change. Each invocation is the authoritative complete
// state; consumers decide themselves whether the newest entry is incoming.
func (s *MessageService) Subscribe(ctx context.Context, roomID, viewerID string, fn func([]domain.Message)) (func(), error) {
	messages, err := s.List(ctx, roomID, viewerID)
	if err != nil {
		return nil, err
	}
	fn(messages)

	cancel := s.bus.Subscribe(livequery.MessagesKey(roomID), func() {
		messages, err := s.List(ctx, roomID, viewerID)
		if err != nil {
			return
		}
		fn(messages)
	})
	return cancel, nil
}

func (s *MessageService) checkParticipant(ctx context.Context, roomID, viewerID string) error {
	room, err := s.roomRepo.GetByID(ctx, roomID)
	if err != nil {
		return err
	}
	if room == nil {
		return ErrRoomNotFound
	}
	if _, ok := room.Participant(viewerID); !ok {
		return ErrNotParticipant
	}
	return nil
}

package ws

import (
	"encoding/json"
	"time"

	"pairchat/internal/domain"
)

// Event types - Client → Server
const (
	EventTypePairingWatch    = "pairing.watch"
	EventTypePairingClear    = "pairing.clear"
	EventTypeRoomSubscribe   = "room.subscribe"
	EventTypeRoomUnsubscribe = "room.unsubscribe"
	EventTypeRoomDecline     = "room.decline"
	EventTypeMessageSend     = "message.send"
	EventTypePing            = "ping"
)

// Event types - Server → Client
const (
	EventTypePairingMatched   = "pairing.matched"
	EventTypePairingCleared   = "pairing.cleared"
	EventTypeRoomUpdate       = "room.update"
	EventTypeMessagesSnapshot = "messages.snapshot"
	EventTypePong             = "pong"
	EventTypeError            = "error"
)

// Event is the base envelope for all WebSocket messages.
type Event struct {
	Type      string          `json:"type"`
	RoomID    string          `json:"room_id,omitempty"`
	Payload   json.RawMessage `json:"payload,omitempty"`
	Timestamp int64           `json:"ts,omitempty"`
}

// --- Client → Server payloads ---

type MessageSendPayload struct {
	Text string `json:"text"`
}

// --- Server → Client payloads ---

type PairingMatchedPayload struct {
	domain.MailboxEntry
}

// RoomUpdatePayload carries the room document plus the gate state as seen
// by this connection (a declined extension locks only locally).
type RoomUpdatePayload struct {
	Room *domain.Room     `json:"room"`
	Gate domain.GateState `json:"gate"`
}

// MessagesSnapshotPayload is always the complete ordered log, never a
// diff. Each snapshot replaces the previous one wholesale.
type MessagesSnapshotPayload struct {
	Messages []domain.Message `json:"messages"`
}

type ErrorPayload struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// NewEvent creates a server→client event with the current timestamp.
func NewEvent(eventType, roomID string, payload any) (*Event, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return &Event{
		Type:      eventType,
		RoomID:    roomID,
		Payload:   data,
		Timestamp: time.Now().Unix(),
	}, nil
}

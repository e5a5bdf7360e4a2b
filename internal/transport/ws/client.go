package ws

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"sync"
	"time"

	"nhooyr.io/websocket"
	"nhooyr.io/websocket/wsjson"

	"pairchat/internal/domain"
	"pairchat/internal/service"
)

const (
	writeWait    = 10 * time.Second
	pingInterval = 30 * time.Second
	sendBufSize  = 256
)

// Client represents a single WebSocket connection. All live watches the
// connection opens (pairing mailbox, room document, message log) are held
// here so teardown cancels every one of them; a dead connection never
// keeps receiving callbacks.
type Client struct {
	hub    *Hub
	conn   *websocket.Conn
	userID string

	roomService    *service.RoomService
	messageService *service.MessageService
	pairingService *service.PairingService

	// mu guards cancels and localLocks.
	mu      sync.Mutex
	cancels map[string]func()
	// localLocks marks rooms this viewer declined to extend. Never
	// persisted: reopening the room drops the lock and re-prompts.
	localLocks map[string]bool

	send     chan []byte
	done     chan struct{}
	shutdown sync.Once
}

func NewClient(hub *Hub, conn *websocket.Conn, userID string, roomService *service.RoomService, messageService *service.MessageService, pairingService *service.PairingService) *Client {
	return &Client{
		hub:            hub,
		conn:           conn,
		userID:         userID,
		roomService:    roomService,
		messageService: messageService,
		pairingService: pairingService,
		cancels:        make(map[string]func()),
		localLocks:     make(map[string]bool),
		send:           make(chan []byte, sendBufSize),
		done:           make(chan struct{}),
	}
}

// ReadPump reads events from the WebSocket and dispatches them.
func (c *Client) ReadPump() {
	defer func() {
		c.hub.unregister <- c
		c.conn.Close(websocket.StatusNormalClosure, "")
	}()

	for {
		var event Event
		err := wsjson.Read(context.Background(), c.conn, &event)
		if err != nil {
			if websocket.CloseStatus(err) != -1 {
				log.Printf("ws: client %s disconnected", c.userID)
			} else {
				log.Printf("ws: read error from %s: %v", c.userID, err)
			}
			return
		}

		c.handleEvent(&event)
	}
}

// WritePump writes queued events to the WebSocket.
func (c *Client) WritePump() {
	ticker := time.NewTicker(pingInterval)
	defer func() {
		ticker.Stop()
		c.conn.Close(websocket.StatusNormalClosure, "")
	}()

	for {
		select {
		case message := <-c.send:
			ctx, cancel := context.WithTimeout(context.Background(), writeWait)
			err := c.conn.Write(ctx, websocket.MessageText, message)
			cancel()
			if err != nil {
				log.Printf("ws: write error to %s: %v", c.userID, err)
				return
			}

		case <-ticker.C:
			ctx, cancel := context.WithTimeout(context.Background(), writeWait)
			err := c.conn.Ping(ctx)
			cancel()
			if err != nil {
				log.Printf("ws: ping error to %s: %v", c.userID, err)
				return
			}

		case <-c.done:
			return
		}
	}
}

// handleEvent routes an incoming client event.
func (c *Client) handleEvent(event *Event) {
	switch event.Type {
	case EventTypePairingWatch:
		c.watchPairing()

	case EventTypePairingClear:
		c.pairingService.Clear(context.Background(), c.userID)

	case EventTypeRoomSubscribe:
		if event.RoomID == "" {
			c.sendError("INVALID_PAYLOAD", "room_id required")
			return
		}
		c.subscribeRoom(event.RoomID)

	case EventTypeRoomUnsubscribe:
		c.cancelSub("room:" + event.RoomID)

	case EventTypeRoomDecline:
		if event.RoomID == "" {
			c.sendError("INVALID_PAYLOAD", "room_id required")
			return
		}
		c.declineRoom(event.RoomID)

	case EventTypeMessageSend:
		c.sendMessage(event)

	case EventTypePing:
		c.sendPong()

	default:
		c.sendError("UNKNOWN_EVENT", "unknown event type: "+event.Type)
	}
}

// watchPairing streams the pairing mailbox: the current entry right away,
// then every change. Used by the screen showing the QR code.
func (c *Client) watchPairing() {
	c.cancelSub("pairing")

	cancel, err := c.pairingService.Subscribe(context.Background(), c.userID, func(entry *domain.MailboxEntry) {
		if entry == nil {
			c.enqueueEvent(EventTypePairingCleared, "", struct{}{})
			return
		}
		c.enqueueEvent(EventTypePairingMatched, entry.RoomID, PairingMatchedPayload{MailboxEntry: *entry})
	})
	if err != nil {
		c.sendError("INTERNAL", "could not watch pairing mailbox")
		return
	}
	c.storeCancel("pairing", cancel)
}

// subscribeRoom opens both live views of a room: the document watch that
// re-evaluates the gate on every change, and the full-list message feed.
// Re-subscribing drops any local decline lock, which re-prompts the
// decision-maker.
func (c *Client) subscribeRoom(roomID string) {
	c.cancelSub("room:" + roomID)
	c.mu.Lock()
	delete(c.localLocks, roomID)
	c.mu.Unlock()

	cancelRoom, err := c.roomService.WatchRoom(context.Background(), roomID, c.userID, func(room *domain.Room, gate domain.GateState) {
		gate = c.applyLocalLock(roomID, gate)
		c.enqueueEvent(EventTypeRoomUpdate, roomID, RoomUpdatePayload{Room: room, Gate: gate})
	})
	if err != nil {
		c.sendRoomError(err)
		return
	}

	cancelMessages, err := c.messageService.Subscribe(context.Background(), roomID, c.userID, func(messages []domain.Message) {
		c.enqueueEvent(EventTypeMessagesSnapshot, roomID, MessagesSnapshotPayload{Messages: messages})
	})
	if err != nil {
		cancelRoom()
		c.sendRoomError(err)
		return
	}

	c.storeCancel("room:"+roomID, func() {
		cancelRoom()
		cancelMessages()
	})
}

// declineRoom records the decision-maker's refusal for this connection
// only and reflects it back as a locked gate. Nothing is persisted; the
// other participant's state is unaffected. Only valid while this viewer's
// gate actually awaits a decision, so a stray decline on an open room
// cannot wedge the connection.
func (c *Client) declineRoom(roomID string) {
	room, gate, err := c.roomService.GetRoom(context.Background(), roomID, c.userID)
	if err != nil {
		c.sendRoomError(err)
		return
	}
	if gate != domain.GateAwaitingDecision {
		c.sendError("INVALID_STATE", "room is not awaiting your decision")
		return
	}

	c.mu.Lock()
	c.localLocks[roomID] = true
	c.mu.Unlock()
	c.enqueueEvent(EventTypeRoomUpdate, roomID, RoomUpdatePayload{Room: room, Gate: domain.GateLocked})
}

func (c *Client) sendMessage(event *Event) {
	if event.RoomID == "" {
		c.sendError("INVALID_PAYLOAD", "room_id required")
		return
	}
	var p MessageSendPayload
	if err := json.Unmarshal(event.Payload, &p); err != nil {
		c.sendError("INVALID_PAYLOAD", "invalid message.send payload")
		return
	}
	if c.isLocked(event.RoomID) {
		// A local decline only closes the gate while it still awaits this
		// viewer's decision; if the room was extended meanwhile the stale
		// lock must not block sends.
		_, gate, err := c.roomService.GetRoom(context.Background(), event.RoomID, c.userID)
		if err != nil {
			c.sendRoomError(err)
			return
		}
		if c.applyLocalLock(event.RoomID, gate) == domain.GateLocked {
			c.sendError("GATE_CLOSED", "room is locked")
			return
		}
	}

	_, err := c.messageService.Send(context.Background(), event.RoomID, c.userID, p.Text)
	switch {
	case err == nil:
	case errors.Is(err, service.ErrEmptyMessage):
		// Dropped quietly; nothing is stored and no error is surfaced.
	default:
		c.sendRoomError(err)
	}
}

func (c *Client) applyLocalLock(roomID string, gate domain.GateState) domain.GateState {
	if gate == domain.GateAwaitingDecision && c.isLocked(roomID) {
		return domain.GateLocked
	}
	return gate
}

func (c *Client) isLocked(roomID string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.localLocks[roomID]
}

func (c *Client) storeCancel(key string, cancel func()) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cancels[key] = cancel
}

func (c *Client) cancelSub(key string) {
	c.mu.Lock()
	cancel := c.cancels[key]
	delete(c.cancels, key)
	c.mu.Unlock()
	if cancel != nil {
		cancel()
	}
}

// teardown cancels every live subscription and signals shutdown. The send
// queue is never closed: a subscription callback can be mid-delivery while
// the cancel returns, so late enqueues must drop instead of panicking.
// Called by the hub exactly once per connection.
func (c *Client) teardown() {
	c.shutdown.Do(func() {
		c.mu.Lock()
		cancels := make([]func(), 0, len(c.cancels))
		for _, cancel := range c.cancels {
			cancels = append(cancels, cancel)
		}
		c.cancels = make(map[string]func())
		c.mu.Unlock()

		for _, cancel := range cancels {
			cancel()
		}
		close(c.done)
	})
}

func (c *Client) enqueueEvent(eventType, roomID string, payload any) {
	evt, err := NewEvent(eventType, roomID, payload)
	if err != nil {
		return
	}
	data, err := json.Marshal(evt)
	if err != nil {
		return
	}
	select {
	case <-c.done:
		return
	default:
	}
	select {
	case c.send <- data:
	case <-c.done:
	default:
	}
}

func (c *Client) sendRoomError(err error) {
	switch {
	case errors.Is(err, service.ErrRoomNotFound):
		c.sendError("NOT_FOUND", "room not found")
	case errors.Is(err, service.ErrNotParticipant):
		c.sendError("FORBIDDEN", "you are not a participant of this room")
	case errors.Is(err, service.ErrGateClosed):
		c.sendError("GATE_CLOSED", "room is locked")
	default:
		log.Printf("ws: client %s: %v", c.userID, err)
		c.sendError("INTERNAL", "something went wrong")
	}
}

func (c *Client) sendPong() {
	data, _ := json.Marshal(Event{Type: EventTypePong})
	select {
	case c.send <- data:
	default:
	}
}

func (c *Client) sendError(code, message string) {
	c.enqueueEvent(EventTypeError, "", ErrorPayload{Code: code, Message: message})
}

package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"

	"pairchat/internal/domain"
	"pairchat/internal/service"
	"pairchat/internal/transport/http/middleware"
)

type RoomHandler struct {
	roomService     *service.RoomService
	identityService *service.IdentityService
}

func NewRoomHandler(roomService *service.RoomService, identityService *service.IdentityService) *RoomHandler {
	return &RoomHandler{roomService: roomService, identityService: identityService}
}

// Join is called by the scanning device with the raw QR payload as body.
// A malformed or wrong-type payload gets a 400 so the scanner can re-arm.
func (h *RoomHandler) Join(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	var payload service.JoinPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_QR_PAYLOAD", "Scanned code is not a join payload")
		return
	}

	joiner, err := h.identityService.Get(r.Context(), userID)
	if err != nil {
		if errors.Is(err, service.ErrIdentityNotFound) {
			writeError(w, http.StatusNotFound, "NOT_FOUND", "Identity not found")
		} else {
			log.Printf("ERROR join room: %v", err)
			writeError(w, http.StatusInternalServerError, "INTERNAL", "Something went wrong")
		}
		return
	}

	room, err := h.roomService.Join(r.Context(), payload, *joiner)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidQrPayload):
			writeError(w, http.StatusBadRequest, "INVALID_QR_PAYLOAD", "Scanned code is not a join payload")
		case errors.Is(err, service.ErrInvalidIdentity):
			writeError(w, http.StatusBadRequest, "INVALID_IDENTITY", "Inviter identity is incomplete")
		case errors.Is(err, service.ErrCannotPairSelf):
			writeError(w, http.StatusBadRequest, "CANNOT_PAIR_SELF", "Cannot pair with yourself")
		default:
			log.Printf("ERROR join room: %v", err)
			writeError(w, http.StatusInternalServerError, "INTERNAL", "Something went wrong")
		}
		return
	}

	writeJSON(w, http.StatusOK, room)
}

func (h *RoomHandler) List(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	rooms, err := h.roomService.ListRooms(r.Context(), userID)
	if err != nil {
		log.Printf("ERROR list rooms: %v", err)
		writeError(w, http.StatusInternalServerError, "INTERNAL", "Something went wrong")
		return
	}

	writeJSON(w, http.StatusOK, rooms)
}

type roomResponse struct {
	Room *domain.Room     `json:"room"`
	Gate domain.GateState `json:"gate"`
}

func (h *RoomHandler) Get(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	roomID := chi.URLParam(r, "id")

	room, gate, err := h.roomService.GetRoom(r.Context(), roomID, userID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrRoomNotFound):
			writeError(w, http.StatusNotFound, "NOT_FOUND", "Room not found")
		case errors.Is(err, service.ErrNotParticipant):
			writeError(w, http.StatusForbidden, "FORBIDDEN", "You are not a participant of this room")
		default:
			log.Printf("ERROR get room: %v", err)
			writeError(w, http.StatusInternalServerError, "INTERNAL", "Something went wrong")
		}
		return
	}

	writeJSON(w, http.StatusOK, roomResponse{Room: room, Gate: gate})
}

func (h *RoomHandler) Extend(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	roomID := chi.URLParam(r, "id")

	room, err := h.roomService.Extend(r.Context(), roomID, userID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrRoomNotFound):
			writeError(w, http.StatusNotFound, "NOT_FOUND", "Room not found")
		case errors.Is(err, service.ErrNotParticipant):
			writeError(w, http.StatusForbidden, "FORBIDDEN", "You are not a participant of this room")
		case errors.Is(err, service.ErrNotDecisionMaker):
			writeError(w, http.StatusForbidden, "NOT_DECISION_MAKER", "Only the inviter can extend this room")
		default:
			log.Printf("ERROR extend room: %v", err)
			writeError(w, http.StatusInternalServerError, "INTERNAL", "Something went wrong")
		}
		return
	}

	writeJSON(w, http.StatusOK, room)
}

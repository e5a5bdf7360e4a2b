package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"pairchat/internal/service"
	"pairchat/internal/transport/http/middleware"
	"pairchat/pkg/validator"
)

type IdentityHandler struct {
	identityService *service.IdentityService
}

func NewIdentityHandler(identityService *service.IdentityService) *IdentityHandler {
	return &IdentityHandler{identityService: identityService}
}

func (h *IdentityHandler) Register(w http.ResponseWriter, r *http.Request) {
	var input struct {
		Username string `json:"username"`
	}
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_JSON", "Invalid request body")
		return
	}

	if errs := validator.ValidateUsername(input.Username); errs.HasErrors() {
		writeValidationErrors(w, errs)
		return
	}

	resp, err := h.identityService.Register(r.Context(), input.Username)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrUsernameTaken):
			writeError(w, http.StatusConflict, "USERNAME_TAKEN", "Username is already taken")
		case errors.Is(err, service.ErrInvalidIdentity):
			writeError(w, http.StatusBadRequest, "INVALID_IDENTITY", "Username and user ID are required")
		default:
			log.Printf("ERROR register identity: %v", err)
			writeError(w, http.StatusInternalServerError, "INTERNAL", "Something went wrong")
		}
		return
	}

	writeJSON(w, http.StatusCreated, resp)
}

func (h *IdentityHandler) Me(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	identity, err := h.identityService.Get(r.Context(), userID)
	if err != nil {
		if errors.Is(err, service.ErrIdentityNotFound) {
			writeError(w, http.StatusNotFound, "NOT_FOUND", "Identity not found")
		} else {
			log.Printf("ERROR get identity: %v", err)
			writeError(w, http.StatusInternalServerError, "INTERNAL", "Something went wrong")
		}
		return
	}

	writeJSON(w, http.StatusOK, identity)
}

// QRPayload returns the exact document the client encodes into its QR
// code. No room is created at this point; the payload carries only the
// inviter's identity.
func (h *IdentityHandler) QRPayload(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	identity, err := h.identityService.Get(r.Context(), userID)
	if err != nil {
		if errors.Is(err, service.ErrIdentityNotFound) {
			writeError(w, http.StatusNotFound, "NOT_FOUND", "Identity not found")
		} else {
			log.Printf("ERROR get qr payload: %v", err)
			writeError(w, http.StatusInternalServerError, "INTERNAL", "Something went wrong")
		}
		return
	}

	writeJSON(w, http.StatusOK, service.JoinPayload{
		Type:    service.JoinPayloadType,
		Inviter: *identity,
	})
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, code string, message string) {
	writeJSON(w, status, map[string]any{
		"error": map[string]string{
			"code":    code,
			"message": message,
		},
	})
}

func writeValidationErrors(w http.ResponseWriter, errs validator.ValidationErrors) {
	writeJSON(w, http.StatusBadRequest, map[string]any{
		"error": map[string]any{
			"code":   "VALIDATION_ERROR",
			"fields": errs,
		},
	})
}

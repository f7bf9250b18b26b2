// internal/server/handlers/community.go

package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"zonechat/internal/domain/chat"
	"zonechat/internal/domain/session"
	"zonechat/internal/domain/zone"
)

// SessionManager is the session surface the community handler exposes
type SessionManager interface {
	Enter(ctx context.Context, userID string, coord zone.Coordinate, age int) (*session.Descriptor, error)
	Revalidate(ctx context.Context, userID, sessionID string, coord zone.Coordinate) (bool, error)
}

// ChatService is the messaging surface the community handler exposes. Every
// session-scoped operation carries the acting user so ownership is enforced
// below the transport.
type ChatService interface {
	Send(ctx context.Context, userID, sessionID string, contentType chat.ContentType, content string, durationSeconds int) (*chat.Receipt, error)
	Fetch(ctx context.Context, userID, zoneID, sessionID string) (*chat.Feed, error)
	Report(ctx context.Context, userID, reporterSessionID, targetSessionID string) error
}

// CommunityHandler handles community chat HTTP requests
type CommunityHandler struct {
	sessions SessionManager
	chat     ChatService
}

// NewCommunityHandler creates a new community handler
func NewCommunityHandler(sessions SessionManager, chatService ChatService) *CommunityHandler {
	return &CommunityHandler{
		sessions: sessions,
		chat:     chatService,
	}
}

// Enter admits the authenticated user into the zone containing the supplied
// coordinate
func (h *CommunityHandler) Enter(w http.ResponseWriter, r *http.Request) {
	type enterRequest struct {
		Lat float64 `json:"lat"`
		Lng float64 `json:"lng"`
		Age int     `json:"age"`
	}

	var req enterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid_request_body", err)
		return
	}

	user := userFrom(r.Context())
	if user == nil {
		respondWithError(w, http.StatusUnauthorized, "missing_token", nil)
		return
	}

	descriptor, err := h.sessions.Enter(r.Context(), user.ID, zone.Coordinate{
		Latitude:  req.Lat,
		Longitude: req.Lng,
	}, req.Age)
	if err != nil {
		respondWithDomainError(w, err)
		return
	}

	respondWithJSON(w, http.StatusCreated, descriptor)
}

// CheckLocation revalidates that the session's device is still inside its
// zone. An invalid result means the client must tear down and re-enter.
func (h *CommunityHandler) CheckLocation(w http.ResponseWriter, r *http.Request) {
	type locationRequest struct {
		Lat float64 `json:"lat"`
		Lng float64 `json:"lng"`
	}

	var req locationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid_request_body", err)
		return
	}

	user := userFrom(r.Context())
	if user == nil {
		respondWithError(w, http.StatusUnauthorized, "missing_token", nil)
		return
	}

	sessionID := chi.URLParam(r, "id")
	valid, err := h.sessions.Revalidate(r.Context(), user.ID, sessionID, zone.Coordinate{
		Latitude:  req.Lat,
		Longitude: req.Lng,
	})
	if err != nil {
		respondWithDomainError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]bool{"valid": valid})
}

// SendMessage runs the send pipeline for the authenticated user's session
func (h *CommunityHandler) SendMessage(w http.ResponseWriter, r *http.Request) {
	type sendRequest struct {
		Type            string `json:"type"`
		Content         string `json:"content"`
		DurationSeconds int    `json:"duration_seconds"`
	}

	var req sendRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid_request_body", err)
		return
	}

	user := userFrom(r.Context())
	if user == nil {
		respondWithError(w, http.StatusUnauthorized, "missing_token", nil)
		return
	}

	sessionID := chi.URLParam(r, "id")
	receipt, err := h.chat.Send(r.Context(), user.ID, sessionID, chat.ContentType(req.Type), req.Content, req.DurationSeconds)
	if err != nil {
		respondWithDomainError(w, err)
		return
	}

	respondWithJSON(w, http.StatusCreated, receipt)
}

// GetMessages returns the zone's visible messages for the caller's session
func (h *CommunityHandler) GetMessages(w http.ResponseWriter, r *http.Request) {
	zoneID := chi.URLParam(r, "id")
	sessionID := r.URL.Query().Get("session")
	if sessionID == "" {
		respondWithError(w, http.StatusBadRequest, "missing_session", nil)
		return
	}

	user := userFrom(r.Context())
	if user == nil {
		respondWithError(w, http.StatusUnauthorized, "missing_token", nil)
		return
	}

	feed, err := h.chat.Fetch(r.Context(), user.ID, zoneID, sessionID)
	if err != nil {
		respondWithDomainError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, feed)
}

// Report registers the caller's session blocking the target session
func (h *CommunityHandler) Report(w http.ResponseWriter, r *http.Request) {
	type reportRequest struct {
		ReporterSessionID string `json:"reporter_session_id"`
	}

	var req reportRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid_request_body", err)
		return
	}

	user := userFrom(r.Context())
	if user == nil {
		respondWithError(w, http.StatusUnauthorized, "missing_token", nil)
		return
	}

	targetSessionID := chi.URLParam(r, "id")
	if err := h.chat.Report(r.Context(), user.ID, req.ReporterSessionID, targetSessionID); err != nil {
		respondWithDomainError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]string{"status": "reported"})
}

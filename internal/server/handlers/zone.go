// internal/server/handlers/zone.go

package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"zonechat/internal/common/clock"
	"zonechat/internal/domain/zone"
)

// AdminChatService is the privileged chat surface for staff
type AdminChatService interface {
	Delete(ctx context.Context, messageID string) error
	Reset(ctx context.Context) error
}

// ZoneHandler handles administrative zone and moderation requests
type ZoneHandler struct {
	zones zone.Store
	chat  AdminChatService
	clock clock.Clock
}

// NewZoneHandler creates a new zone handler
func NewZoneHandler(zones zone.Store, chatService AdminChatService, clk clock.Clock) *ZoneHandler {
	return &ZoneHandler{
		zones: zones,
		chat:  chatService,
		clock: clk,
	}
}

type zoneRequest struct {
	Name         string  `json:"name"`
	Lat          float64 `json:"lat"`
	Lng          float64 `json:"lng"`
	RadiusMeters float64 `json:"radius_meters"`
	Category     string  `json:"category"`
	Active       *bool   `json:"active"`
}

// ListZones returns all zones, active or not
func (h *ZoneHandler) ListZones(w http.ResponseWriter, r *http.Request) {
	zones, err := h.zones.ListZones(r.Context())
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, "internal_error", err)
		return
	}

	respondWithJSON(w, http.StatusOK, zones)
}

// CreateZone creates a new geofenced zone
func (h *ZoneHandler) CreateZone(w http.ResponseWriter, r *http.Request) {
	var req zoneRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid_request_body", err)
		return
	}

	z := zone.Zone{
		ID:           uuid.New().String(),
		Name:         req.Name,
		Center:       zone.Coordinate{Latitude: req.Lat, Longitude: req.Lng},
		RadiusMeters: req.RadiusMeters,
		Category:     zone.Category(req.Category),
		Active:       true,
		CreatedAt:    h.clock.Now(),
	}
	if req.Active != nil {
		z.Active = *req.Active
	}

	if err := z.Validate(); err != nil {
		respondWithDomainError(w, err)
		return
	}

	if err := h.zones.SaveZone(r.Context(), &z); err != nil {
		respondWithError(w, http.StatusInternalServerError, "internal_error", err)
		return
	}

	respondWithJSON(w, http.StatusCreated, z)
}

// UpdateZone updates an existing zone. Creation time and storage order are
// preserved.
func (h *ZoneHandler) UpdateZone(w http.ResponseWriter, r *http.Request) {
	var req zoneRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid_request_body", err)
		return
	}

	existing, err := h.zones.GetZone(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respondWithDomainError(w, err)
		return
	}

	z := zone.Zone{
		ID:           existing.ID,
		Name:         req.Name,
		Center:       zone.Coordinate{Latitude: req.Lat, Longitude: req.Lng},
		RadiusMeters: req.RadiusMeters,
		Category:     zone.Category(req.Category),
		Active:       existing.Active,
		CreatedAt:    existing.CreatedAt,
	}
	if req.Active != nil {
		z.Active = *req.Active
	}

	if err := z.Validate(); err != nil {
		respondWithDomainError(w, err)
		return
	}

	if err := h.zones.SaveZone(r.Context(), &z); err != nil {
		respondWithError(w, http.StatusInternalServerError, "internal_error", err)
		return
	}

	respondWithJSON(w, http.StatusOK, z)
}

// DeleteZone removes a zone
func (h *ZoneHandler) DeleteZone(w http.ResponseWriter, r *http.Request) {
	if err := h.zones.DeleteZone(r.Context(), chi.URLParam(r, "id")); err != nil {
		respondWithDomainError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

// DeleteMessage removes a single community message
func (h *ZoneHandler) DeleteMessage(w http.ResponseWriter, r *http.Request) {
	if err := h.chat.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		respondWithDomainError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

// Reset purges all community messages and sessions. This is the full purge,
// not the janitor's per-row eviction.
func (h *ZoneHandler) Reset(w http.ResponseWriter, r *http.Request) {
	if err := h.chat.Reset(r.Context()); err != nil {
		respondWithError(w, http.StatusInternalServerError, "internal_error", err)
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"status":   "reset",
		"reset_at": h.clock.Now().Format(time.RFC3339),
	})
}

// internal/server/handlers/respond.go

package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"

	"zonechat/internal/domain/chat"
	"zonechat/internal/domain/session"
	"zonechat/internal/domain/zone"
	"zonechat/internal/service/geo"
)

// respondWithJSON writes a JSON response
func respondWithJSON(w http.ResponseWriter, code int, payload interface{}) {
	response, err := json.Marshal(payload)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, "internal_error", err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	w.Write(response)
}

// respondWithError writes a JSON error response with a coarse reason code.
// The matched pattern or underlying error never reaches the client.
func respondWithError(w http.ResponseWriter, code int, reason string, err error) {
	if err != nil && code >= 500 {
		log.Printf("HTTP %d %s: %v", code, reason, err)
	}

	respondWithJSON(w, code, map[string]string{"error": reason})
}

// respondWithDomainError maps domain errors to HTTP responses
func respondWithDomainError(w http.ResponseWriter, err error) {
	var (
		rateLimited *chat.RateLimitedError
		silenced    *chat.SilencedError
		expelled    *chat.ExpelledError
		blocked     *chat.BlockedError
	)

	switch {
	case errors.As(err, &rateLimited):
		w.Header().Set("Retry-After", strconv.Itoa(rateLimited.WaitSeconds))
		respondWithJSON(w, http.StatusTooManyRequests, map[string]interface{}{
			"error":        "rate_limited",
			"wait_seconds": rateLimited.WaitSeconds,
		})
	case errors.As(err, &silenced):
		respondWithJSON(w, http.StatusForbidden, map[string]interface{}{
			"error": "silenced",
			"until": silenced.Until,
		})
	case errors.As(err, &expelled):
		respondWithJSON(w, http.StatusForbidden, map[string]interface{}{
			"error": "expelled",
			"until": expelled.Until,
		})
	case errors.As(err, &blocked):
		respondWithJSON(w, http.StatusUnprocessableEntity, map[string]interface{}{
			"error":  "content_blocked",
			"reason": blocked.Reason,
		})
	case errors.Is(err, chat.ErrMessageLimitReached):
		respondWithError(w, http.StatusTooManyRequests, "message_limit_reached", nil)
	case errors.Is(err, chat.ErrAudioTooLong):
		respondWithError(w, http.StatusBadRequest, "audio_too_long", nil)
	case errors.Is(err, chat.ErrInvalidContentType):
		respondWithError(w, http.StatusBadRequest, "invalid_content_type", nil)
	case errors.Is(err, chat.ErrEmptyContent):
		respondWithError(w, http.StatusBadRequest, "empty_content", nil)
	case errors.Is(err, chat.ErrWrongZone):
		respondWithError(w, http.StatusForbidden, "wrong_zone", nil)
	case errors.Is(err, geo.ErrNoZoneNearby):
		respondWithError(w, http.StatusNotFound, "no_zone_nearby", nil)
	case errors.Is(err, geo.ErrInvalidCoordinate):
		respondWithError(w, http.StatusBadRequest, "invalid_coordinate", nil)
	case errors.Is(err, session.ErrNotOwner):
		respondWithError(w, http.StatusForbidden, "not_session_owner", nil)
	case errors.Is(err, session.ErrExpelled):
		respondWithError(w, http.StatusForbidden, "expelled", nil)
	case errors.Is(err, session.ErrExpired):
		respondWithError(w, http.StatusUnauthorized, "session_expired", nil)
	case errors.Is(err, session.ErrInvalidAge):
		respondWithError(w, http.StatusBadRequest, "invalid_age", nil)
	case errors.Is(err, session.ErrSelfReport):
		respondWithError(w, http.StatusBadRequest, "self_report", nil)
	case errors.Is(err, session.ErrNotFound):
		respondWithError(w, http.StatusNotFound, "session_not_found", nil)
	case errors.Is(err, zone.ErrNotFound):
		respondWithError(w, http.StatusNotFound, "zone_not_found", nil)
	case errors.Is(err, zone.ErrInvalidZone):
		respondWithError(w, http.StatusBadRequest, "invalid_zone", nil)
	case errors.Is(err, chat.ErrNotFound):
		respondWithError(w, http.StatusNotFound, "message_not_found", nil)
	default:
		respondWithError(w, http.StatusInternalServerError, "internal_error", err)
	}
}

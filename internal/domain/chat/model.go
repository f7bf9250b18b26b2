package chat

import (
	"context"
	"time"
)

// ContentType defines the kind of community message
type ContentType string

const (
	TypeText    ContentType = "text"
	TypeAudio   ContentType = "audio"
	TypeSticker ContentType = "sticker"
	TypeGif     ContentType = "gif"
)

// Valid reports whether the content type is one of the known values
func (t ContentType) Valid() bool {
	switch t {
	case TypeText, TypeAudio, TypeSticker, TypeGif:
		return true
	}
	return false
}

// Message is a community message. The author is identified only by the
// session's pseudonym; the underlying user ID never appears on the wire.
type Message struct {
	ID              string      `json:"id"`
	SessionID       string      `json:"session_id"`
	ZoneID          string      `json:"zone_id"`
	Pseudonym       string      `json:"pseudonym"`
	AvatarSeed      string      `json:"avatar_seed"`
	Type            ContentType `json:"type"`
	Content         string      `json:"content"`
	DurationSeconds int         `json:"duration_seconds,omitempty"`
	IsExplicit      bool        `json:"is_explicit"`
	CreatedAt       time.Time   `json:"created_at"`
	ExpiresAt       time.Time   `json:"expires_at"`
}

// Receipt is returned on a successful send
type Receipt struct {
	MessageID string `json:"message_id"`
	Remaining int    `json:"remaining"`
}

// Feed is what a zone fetch returns: filtered messages plus the caller's own
// pseudonym
type Feed struct {
	Pseudonym string    `json:"pseudonym"`
	Messages  []Message `json:"messages"`
}

// Store defines persistence for community messages
type Store interface {
	// SaveMessage persists a message with its expiry set
	SaveMessage(ctx context.Context, m *Message) error

	// GetMessage retrieves a message by ID
	GetMessage(ctx context.Context, id string) (*Message, error)

	// ListByZone returns non-expired messages for a zone in creation order.
	// When includeExplicit is false, messages flagged explicit are excluded.
	ListByZone(ctx context.Context, zoneID string, now time.Time, includeExplicit bool, limit int) ([]Message, error)

	// LastSentAt returns the creation time of the session's most recent
	// message of the given type, or nil if none exists
	LastSentAt(ctx context.Context, sessionID string, t ContentType) (*time.Time, error)

	// DeleteMessage removes a single message
	DeleteMessage(ctx context.Context, id string) error

	// DeleteExpired removes messages whose expiry has passed
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)

	// PurgeAll removes every community message
	PurgeAll(ctx context.Context) error
}

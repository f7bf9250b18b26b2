package session

import (
	"context"
	"errors"
	"time"
)

// Session is an ephemeral, pseudonymous participation record for one user in
// one zone. It lives for 24 hours from creation; the visible author of every
// message is the pseudonym, never the user ID.
type Session struct {
	ID                string     `json:"id"`
	UserID            string     `json:"-"`
	ZoneID            string     `json:"zone_id"`
	Pseudonym         string     `json:"pseudonym"`
	AvatarSeed        string     `json:"avatar_seed"`
	Age               int        `json:"-"`
	MessageCount      int        `json:"message_count"`
	BlockCount        int        `json:"-"`
	SilencedUntil     *time.Time `json:"silenced_until,omitempty"`
	ExpelledUntil     *time.Time `json:"-"`
	LastLocationCheck time.Time  `json:"-"`
	CreatedAt         time.Time  `json:"created_at"`
	ExpiresAt         time.Time  `json:"expires_at"`
}

// StateKind names a participation state
type StateKind string

const (
	StateActive   StateKind = "active"
	StateSilenced StateKind = "silenced"
	StateExpelled StateKind = "expelled"
	StateExpired  StateKind = "expired"
)

// ParticipationState is the tagged state derived from a session's penalty
// timestamps. Callers branch on Kind; Until is set for Silenced and Expelled.
type ParticipationState struct {
	Kind  StateKind
	Until time.Time
}

// State derives the participation state at the given instant. Expiry wins
// over expulsion, expulsion over silence.
func (s *Session) State(now time.Time) ParticipationState {
	if !now.Before(s.ExpiresAt) {
		return ParticipationState{Kind: StateExpired}
	}
	if s.ExpelledUntil != nil && now.Before(*s.ExpelledUntil) {
		return ParticipationState{Kind: StateExpelled, Until: *s.ExpelledUntil}
	}
	if s.SilencedUntil != nil && now.Before(*s.SilencedUntil) {
		return ParticipationState{Kind: StateSilenced, Until: *s.SilencedUntil}
	}
	return ParticipationState{Kind: StateActive}
}

// IsUnder16 reports whether explicit content must be filtered for this session
func (s *Session) IsUnder16() bool {
	return s.Age < 16
}

// Descriptor is what admission returns to the client
type Descriptor struct {
	SessionID     string     `json:"session_id"`
	ZoneID        string     `json:"zone_id"`
	ZoneName      string     `json:"zone_name"`
	Pseudonym     string     `json:"pseudonym"`
	AvatarSeed    string     `json:"avatar_seed"`
	IsUnder16     bool       `json:"is_under_16"`
	MessageCount  int        `json:"message_count"`
	SilencedUntil *time.Time `json:"silenced_until,omitempty"`
	ExpiresAt     time.Time  `json:"expires_at"`
}

// Store defines persistence for sessions.
//
// IncrementBlockCount and IncrementMessageCount add one atomically in the
// store and return the new value; the decisions taken on those values
// (silencing, quota) are read-modify-write without a transaction, so
// concurrent callers can race by small margins. That is accepted behavior.
type Store interface {
	// SaveSession inserts or updates a session
	SaveSession(ctx context.Context, s *Session) error

	// GetSession retrieves a session by ID
	GetSession(ctx context.Context, id string) (*Session, error)

	// GetActiveSession returns the non-expired session for (user, zone), or
	// ErrNotFound
	GetActiveSession(ctx context.Context, userID, zoneID string, now time.Time) (*Session, error)

	// Touch updates the last-location-check timestamp
	Touch(ctx context.Context, id string, at time.Time) error

	// IncrementMessageCount adds one and returns the new count
	IncrementMessageCount(ctx context.Context, id string) (int, error)

	// IncrementBlockCount adds one and returns the new count
	IncrementBlockCount(ctx context.Context, id string) (int, error)

	// SetPenalties writes the silence/expulsion timestamps
	SetPenalties(ctx context.Context, id string, silencedUntil, expelledUntil *time.Time) error

	// DeleteExpired removes sessions whose expiry has passed
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)

	// PurgeAll removes every session
	PurgeAll(ctx context.Context) error
}

var (
	ErrNotFound   = errors.New("session not found")
	ErrExpired    = errors.New("session expired")
	ErrExpelled   = errors.New("session expelled")
	ErrNotOwner   = errors.New("session belongs to another user")
	ErrInvalidAge = errors.New("invalid age")
	ErrSelfReport = errors.New("cannot report own session")
)

// internal/adapter/storage/session_store.go

package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"zonechat/internal/domain/session"
)

// SessionStore implements storage for sessions
type SessionStore struct {
	db *pgxpool.Pool
}

// NewSessionStore creates a new session store
func NewSessionStore(db *pgxpool.Pool) *SessionStore {
	return &SessionStore{
		db: db,
	}
}

// SaveSession saves a session to storage
func (s *SessionStore) SaveSession(ctx context.Context, sess *session.Session) error {
	query := `
		INSERT INTO sessions (
			id, user_id, zone_id, pseudonym, avatar_seed, age,
			message_count, block_count, silenced_until, expelled_until,
			last_location_check, created_at, expires_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13
		)
		ON CONFLICT (id) DO UPDATE
		SET
			message_count = $7,
			block_count = $8,
			silenced_until = $9,
			expelled_until = $10,
			last_location_check = $11
	`

	_, err := s.db.Exec(ctx, query,
		sess.ID,
		sess.UserID,
		sess.ZoneID,
		sess.Pseudonym,
		sess.AvatarSeed,
		sess.Age,
		sess.MessageCount,
		sess.BlockCount,
		sess.SilencedUntil,
		sess.ExpelledUntil,
		sess.LastLocationCheck,
		sess.CreatedAt,
		sess.ExpiresAt,
	)
	if err != nil {
		return fmt.Errorf("error saving session: %w", err)
	}

	return nil
}

// GetSession retrieves a session by ID
func (s *SessionStore) GetSession(ctx context.Context, id string) (*session.Session, error) {
	query := sessionSelect + ` WHERE id = $1`

	sess, err := scanSession(s.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, session.ErrNotFound
		}
		return nil, fmt.Errorf("error querying session: %w", err)
	}

	return sess, nil
}

// GetActiveSession returns the non-expired session for a user in a zone
func (s *SessionStore) GetActiveSession(ctx context.Context, userID, zoneID string, now time.Time) (*session.Session, error) {
	query := sessionSelect + `
		WHERE user_id = $1 AND zone_id = $2 AND expires_at > $3
		ORDER BY created_at DESC
		LIMIT 1
	`

	sess, err := scanSession(s.db.QueryRow(ctx, query, userID, zoneID, now))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, session.ErrNotFound
		}
		return nil, fmt.Errorf("error querying active session: %w", err)
	}

	return sess, nil
}

// Touch updates the last location check timestamp
func (s *SessionStore) Touch(ctx context.Context, id string, at time.Time) error {
	tag, err := s.db.Exec(ctx,
		`UPDATE sessions SET last_location_check = $2 WHERE id = $1`, id, at)
	if err != nil {
		return fmt.Errorf("error touching session: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return session.ErrNotFound
	}
	return nil
}

// IncrementMessageCount adds one to the session's message count
func (s *SessionStore) IncrementMessageCount(ctx context.Context, id string) (int, error) {
	return s.increment(ctx, id, "message_count")
}

// IncrementBlockCount adds one to the session's block count
func (s *SessionStore) IncrementBlockCount(ctx context.Context, id string) (int, error) {
	return s.increment(ctx, id, "block_count")
}

func (s *SessionStore) increment(ctx context.Context, id, column string) (int, error) {
	// column is one of two fixed names, never user input
	query := fmt.Sprintf(
		`UPDATE sessions SET %s = %s + 1 WHERE id = $1 RETURNING %s`,
		column, column, column)

	var count int
	err := s.db.QueryRow(ctx, query, id).Scan(&count)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, session.ErrNotFound
		}
		return 0, fmt.Errorf("error incrementing %s: %w", column, err)
	}

	return count, nil
}

// SetPenalties writes the silence and expulsion timestamps
func (s *SessionStore) SetPenalties(ctx context.Context, id string, silencedUntil, expelledUntil *time.Time) error {
	tag, err := s.db.Exec(ctx,
		`UPDATE sessions SET silenced_until = $2, expelled_until = $3 WHERE id = $1`,
		id, silencedUntil, expelledUntil)
	if err != nil {
		return fmt.Errorf("error setting penalties: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return session.ErrNotFound
	}
	return nil
}

// DeleteExpired removes sessions whose expiry has passed
func (s *SessionStore) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	tag, err := s.db.Exec(ctx, `DELETE FROM sessions WHERE expires_at <= $1`, now)
	if err != nil {
		return 0, fmt.Errorf("error deleting expired sessions: %w", err)
	}
	return tag.RowsAffected(), nil
}

// PurgeAll removes every session
func (s *SessionStore) PurgeAll(ctx context.Context) error {
	if _, err := s.db.Exec(ctx, `DELETE FROM sessions`); err != nil {
		return fmt.Errorf("error purging sessions: %w", err)
	}
	return nil
}

const sessionSelect = `
	SELECT id, user_id, zone_id, pseudonym, avatar_seed, age,
		message_count, block_count, silenced_until, expelled_until,
		last_location_check, created_at, expires_at
	FROM sessions`

func scanSession(row pgx.Row) (*session.Session, error) {
	var sess session.Session

	err := row.Scan(
		&sess.ID,
		&sess.UserID,
		&sess.ZoneID,
		&sess.Pseudonym,
		&sess.AvatarSeed,
		&sess.Age,
		&sess.MessageCount,
		&sess.BlockCount,
		&sess.SilencedUntil,
		&sess.ExpelledUntil,
		&sess.LastLocationCheck,
		&sess.CreatedAt,
		&sess.ExpiresAt,
	)
	if err != nil {
		return nil, err
	}

	return &sess, nil
}

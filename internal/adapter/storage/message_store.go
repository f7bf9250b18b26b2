// internal/adapter/storage/message_store.go

package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"zonechat/internal/domain/chat"
)

// MessageStore implements storage for community messages
type MessageStore struct {
	db *pgxpool.Pool
}

// NewMessageStore creates a new message store
func NewMessageStore(db *pgxpool.Pool) *MessageStore {
	return &MessageStore{
		db: db,
	}
}

// SaveMessage saves a message to storage
func (s *MessageStore) SaveMessage(ctx context.Context, m *chat.Message) error {
	query := `
		INSERT INTO messages (
			id, session_id, zone_id, pseudonym, avatar_seed,
			type, content, duration_seconds, is_explicit,
			created_at, expires_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11
		)
	`

	_, err := s.db.Exec(ctx, query,
		m.ID,
		m.SessionID,
		m.ZoneID,
		m.Pseudonym,
		m.AvatarSeed,
		string(m.Type),
		m.Content,
		m.DurationSeconds,
		m.IsExplicit,
		m.CreatedAt,
		m.ExpiresAt,
	)
	if err != nil {
		return fmt.Errorf("error saving message: %w", err)
	}

	return nil
}

// GetMessage retrieves a message by ID
func (s *MessageStore) GetMessage(ctx context.Context, id string) (*chat.Message, error) {
	query := messageSelect + ` WHERE id = $1`

	var m chat.Message
	var contentType string

	err := s.db.QueryRow(ctx, query, id).Scan(
		&m.ID,
		&m.SessionID,
		&m.ZoneID,
		&m.Pseudonym,
		&m.AvatarSeed,
		&contentType,
		&m.Content,
		&m.DurationSeconds,
		&m.IsExplicit,
		&m.CreatedAt,
		&m.ExpiresAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, chat.ErrNotFound
		}
		return nil, fmt.Errorf("error querying message: %w", err)
	}

	m.Type = chat.ContentType(contentType)
	return &m, nil
}

// ListByZone returns the zone's non-expired messages in creation order.
// Explicit messages are excluded unless includeExplicit is set.
func (s *MessageStore) ListByZone(ctx context.Context, zoneID string, now time.Time, includeExplicit bool, limit int) ([]chat.Message, error) {
	query := messageSelect + `
		WHERE zone_id = $1
		  AND expires_at > $2
		  AND (is_explicit = false OR $3)
		ORDER BY created_at ASC
		LIMIT $4
	`

	rows, err := s.db.Query(ctx, query, zoneID, now, includeExplicit, limit)
	if err != nil {
		return nil, fmt.Errorf("error querying messages: %w", err)
	}
	defer rows.Close()

	var messages []chat.Message
	for rows.Next() {
		var m chat.Message
		var contentType string

		err := rows.Scan(
			&m.ID,
			&m.SessionID,
			&m.ZoneID,
			&m.Pseudonym,
			&m.AvatarSeed,
			&contentType,
			&m.Content,
			&m.DurationSeconds,
			&m.IsExplicit,
			&m.CreatedAt,
			&m.ExpiresAt,
		)
		if err != nil {
			return nil, fmt.Errorf("error scanning message: %w", err)
		}

		m.Type = chat.ContentType(contentType)
		messages = append(messages, m)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating messages: %w", err)
	}

	return messages, nil
}

// LastSentAt returns when the session last sent a message of the given type
func (s *MessageStore) LastSentAt(ctx context.Context, sessionID string, t chat.ContentType) (*time.Time, error) {
	query := `
		SELECT created_at
		FROM messages
		WHERE session_id = $1 AND type = $2
		ORDER BY created_at DESC
		LIMIT 1
	`

	var at time.Time
	err := s.db.QueryRow(ctx, query, sessionID, string(t)).Scan(&at)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("error querying last send time: %w", err)
	}

	return &at, nil
}

// DeleteMessage removes a single message
func (s *MessageStore) DeleteMessage(ctx context.Context, id string) error {
	tag, err := s.db.Exec(ctx, `DELETE FROM messages WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("error deleting message: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return chat.ErrNotFound
	}
	return nil
}

// DeleteExpired removes messages whose expiry has passed
func (s *MessageStore) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	tag, err := s.db.Exec(ctx, `DELETE FROM messages WHERE expires_at <= $1`, now)
	if err != nil {
		return 0, fmt.Errorf("error deleting expired messages: %w", err)
	}
	return tag.RowsAffected(), nil
}

// PurgeAll removes every message
func (s *MessageStore) PurgeAll(ctx context.Context) error {
	if _, err := s.db.Exec(ctx, `DELETE FROM messages`); err != nil {
		return fmt.Errorf("error purging messages: %w", err)
	}
	return nil
}

const messageSelect = `
	SELECT id, session_id, zone_id, pseudonym, avatar_seed,
		type, content, duration_seconds, is_explicit,
		created_at, expires_at
	FROM messages`

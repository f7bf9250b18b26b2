// internal/service/chat/service.go

package chat

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"zonechat/internal/common/clock"
	"zonechat/internal/domain/chat"
	"zonechat/internal/domain/moderation"
	"zonechat/internal/domain/session"
)

// SessionManager is the slice of the session lifecycle manager the chat
// service depends on
type SessionManager interface {
	Get(ctx context.Context, sessionID string) (*session.Session, error)
	Report(ctx context.Context, userID, reporterSessionID, targetSessionID string) error
	RecordStrike(ctx context.Context, sessionID string) error
	IncrementMessageCount(ctx context.Context, sessionID string) (int, error)
	DeleteExpired(ctx context.Context) (int64, error)
	PurgeAll(ctx context.Context) error
}

// EventBus publishes zone events for the delivery relay
type EventBus interface {
	Publish(subject string, data []byte) error
}

// Config contains configuration for the chat service
type Config struct {
	MessageLimit    int
	Cooldowns       map[chat.ContentType]time.Duration
	MaxAudioSeconds int
	MessageTTL      time.Duration
	FetchLimit      int
}

// Service implements the community send/fetch/report pipeline over the
// ephemeral message store
type Service struct {
	messages  chat.Store
	sessions  SessionManager
	moderator moderation.Moderator
	events    EventBus
	clock     clock.Clock
	config    Config
}

// NewService creates a new chat service
func NewService(
	messages chat.Store,
	sessions SessionManager,
	moderator moderation.Moderator,
	events EventBus,
	clk clock.Clock,
	config Config,
) *Service {
	if config.FetchLimit <= 0 {
		config.FetchLimit = 200
	}
	return &Service{
		messages:  messages,
		sessions:  sessions,
		moderator: moderator,
		events:    events,
		clock:     clk,
		config:    config,
	}
}

// Send runs the full outbound pipeline: session ownership and validity,
// audio duration, lifetime quota, per-type cooldown, moderation, persist,
// then fan-out. A message is either fully persisted with its expiry set or
// not created at all.
//
// Two rapid sends can both read the same last-message time and both pass the
// cooldown check; that race is accepted rather than serialized.
func (s *Service) Send(ctx context.Context, userID, sessionID string, contentType chat.ContentType, content string, durationSeconds int) (*chat.Receipt, error) {
	if !contentType.Valid() {
		return nil, chat.ErrInvalidContentType
	}
	if content == "" {
		return nil, chat.ErrEmptyContent
	}

	sess, err := s.sessions.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if sess.UserID != userID {
		return nil, session.ErrNotOwner
	}

	now := s.clock.Now()
	switch state := sess.State(now); state.Kind {
	case session.StateExpired:
		return nil, session.ErrExpired
	case session.StateExpelled:
		return nil, &chat.ExpelledError{Until: state.Until}
	case session.StateSilenced:
		return nil, &chat.SilencedError{Until: state.Until}
	}

	if contentType == chat.TypeAudio && durationSeconds > s.config.MaxAudioSeconds {
		return nil, chat.ErrAudioTooLong
	}
	if contentType != chat.TypeAudio {
		durationSeconds = 0
	}

	// Quota is evaluated before the per-type cooldown
	if sess.MessageCount >= s.config.MessageLimit {
		return nil, chat.ErrMessageLimitReached
	}

	if wait, limited, err := s.cooldownRemaining(ctx, sess.ID, contentType, now); err != nil {
		return nil, err
	} else if limited {
		return nil, &chat.RateLimitedError{WaitSeconds: wait}
	}

	verdict := s.moderator.Review(ctx, moderation.ReviewInput{
		ContentType: string(contentType),
		Content:     content,
	})
	if !verdict.Allowed {
		// Blocked content silently counts as a strike; repeated evasion
		// cascades into silence and expulsion
		if err := s.sessions.RecordStrike(ctx, sess.ID); err != nil {
			log.Printf("Error recording strike for session %s: %v", sess.ID, err)
		}
		return nil, &chat.BlockedError{Reason: verdict.Reason}
	}

	msg := &chat.Message{
		ID:              uuid.New().String(),
		SessionID:       sess.ID,
		ZoneID:          sess.ZoneID,
		Pseudonym:       sess.Pseudonym,
		AvatarSeed:      sess.AvatarSeed,
		Type:            contentType,
		Content:         content,
		DurationSeconds: durationSeconds,
		IsExplicit:      verdict.IsExplicit,
		CreatedAt:       now,
		ExpiresAt:       now.Add(s.config.MessageTTL),
	}

	if err := s.messages.SaveMessage(ctx, msg); err != nil {
		return nil, fmt.Errorf("error saving message: %w", err)
	}

	count, err := s.sessions.IncrementMessageCount(ctx, sess.ID)
	if err != nil {
		return nil, fmt.Errorf("error updating message count: %w", err)
	}

	s.publish(fmt.Sprintf("zone.%s.messages", msg.ZoneID), messageEvent{
		Type:    "message",
		Message: msg,
	})

	return &chat.Receipt{
		MessageID: msg.ID,
		Remaining: s.config.MessageLimit - count,
	}, nil
}

// cooldownRemaining reports whether the session is still inside the cooldown
// window for the content type, and if so the remaining wait in whole seconds
// (rounded up)
func (s *Service) cooldownRemaining(ctx context.Context, sessionID string, t chat.ContentType, now time.Time) (int, bool, error) {
	window, ok := s.config.Cooldowns[t]
	if !ok {
		return 0, false, nil
	}

	last, err := s.messages.LastSentAt(ctx, sessionID, t)
	if err != nil {
		return 0, false, fmt.Errorf("error reading last send time: %w", err)
	}
	if last == nil {
		return 0, false, nil
	}

	remaining := window - now.Sub(*last)
	if remaining <= 0 {
		return 0, false, nil
	}

	return ceilSeconds(remaining), true, nil
}

func ceilSeconds(d time.Duration) int {
	secs := int(d / time.Second)
	if d%time.Second != 0 {
		secs++
	}
	if secs < 1 {
		secs = 1
	}
	return secs
}

// Fetch returns the zone's visible messages for the calling session:
// expired rows never, explicit rows only for sessions aged 16 and over.
// The session must belong to the acting user, otherwise a minor could read
// through an adult's session.
func (s *Service) Fetch(ctx context.Context, userID, zoneID, sessionID string) (*chat.Feed, error) {
	sess, err := s.sessions.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if sess.UserID != userID {
		return nil, session.ErrNotOwner
	}

	now := s.clock.Now()
	if sess.State(now).Kind == session.StateExpired {
		return nil, session.ErrExpired
	}
	if sess.ZoneID != zoneID {
		return nil, chat.ErrWrongZone
	}

	messages, err := s.messages.ListByZone(ctx, zoneID, now, !sess.IsUnder16(), s.config.FetchLimit)
	if err != nil {
		return nil, fmt.Errorf("error listing messages: %w", err)
	}

	return &chat.Feed{
		Pseudonym: sess.Pseudonym,
		Messages:  messages,
	}, nil
}

// Report delegates to the session manager's escalation ladder
func (s *Service) Report(ctx context.Context, userID, reporterSessionID, targetSessionID string) error {
	return s.sessions.Report(ctx, userID, reporterSessionID, targetSessionID)
}

// Delete removes a single message. Privileged: intended for designated human
// moderators, not the automated pipeline.
func (s *Service) Delete(ctx context.Context, messageID string) error {
	msg, err := s.messages.GetMessage(ctx, messageID)
	if err != nil {
		return err
	}

	if err := s.messages.DeleteMessage(ctx, messageID); err != nil {
		return fmt.Errorf("error deleting message: %w", err)
	}

	s.publish(fmt.Sprintf("zone.%s.moderation", msg.ZoneID), messageEvent{
		Type:      "message_removed",
		MessageID: msg.ID,
	})

	return nil
}

// DeleteExpired evicts expired messages and sessions. Idempotent; safe to
// run on any schedule.
func (s *Service) DeleteExpired(ctx context.Context) (messages, sessions int64, err error) {
	now := s.clock.Now()

	messages, err = s.messages.DeleteExpired(ctx, now)
	if err != nil {
		return 0, 0, fmt.Errorf("error evicting messages: %w", err)
	}

	sessions, err = s.sessions.DeleteExpired(ctx)
	if err != nil {
		return messages, 0, fmt.Errorf("error evicting sessions: %w", err)
	}

	return messages, sessions, nil
}

// Reset purges all community messages and sessions unconditionally. This is
// the explicit administrative full reset, distinct from the janitor's
// per-row eviction.
func (s *Service) Reset(ctx context.Context) error {
	if err := s.messages.PurgeAll(ctx); err != nil {
		return fmt.Errorf("error purging messages: %w", err)
	}
	if err := s.sessions.PurgeAll(ctx); err != nil {
		return fmt.Errorf("error purging sessions: %w", err)
	}
	return nil
}

type messageEvent struct {
	Type      string        `json:"type"`
	MessageID string        `json:"message_id,omitempty"`
	Message   *chat.Message `json:"message,omitempty"`
}

func (s *Service) publish(subject string, event messageEvent) {
	if s.events == nil {
		return
	}

	data, err := json.Marshal(event)
	if err != nil {
		log.Printf("Error marshaling event: %v", err)
		return
	}

	if err := s.events.Publish(subject, data); err != nil {
		log.Printf("Error publishing to %s: %v", subject, err)
	}
}

// internal/service/session/manager.go

package session

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/google/uuid"

	"zonechat/internal/common/clock"
	"zonechat/internal/domain/session"
	"zonechat/internal/domain/zone"
	"zonechat/internal/service/geo"
)

// Locator resolves coordinates to zones
type Locator interface {
	Locate(ctx context.Context, coord zone.Coordinate) (*zone.Zone, error)
}

// ReportRegistry remembers which reporters already reported which targets,
// so a report counts at most once per reporter/target pair
type ReportRegistry interface {
	// Remember records the pair and reports whether it was new
	Remember(ctx context.Context, targetID, reporterID string, ttl time.Duration) (bool, error)
}

// Config contains configuration for the session manager
type Config struct {
	TTL             time.Duration
	BlockThreshold  int
	SilenceDuration time.Duration
	MinAge          int
	MaxAge          int
}

// Manager implements the session lifecycle: geofenced admission, pseudonym
// issuance, location revalidation, and the report escalation state machine.
type Manager struct {
	sessions session.Store
	locator  Locator
	reports  ReportRegistry
	clock    clock.Clock
	config   Config

	mu  sync.Mutex
	rng *rand.Rand
}

// NewManager creates a new session manager
func NewManager(
	sessions session.Store,
	locator Locator,
	reports ReportRegistry,
	clk clock.Clock,
	config Config,
) *Manager {
	return &Manager{
		sessions: sessions,
		locator:  locator,
		reports:  reports,
		clock:    clk,
		config:   config,
		rng:      rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// Enter admits a user into the zone containing the coordinate. An active
// session for (user, zone) is reused with its location check refreshed;
// otherwise a fresh session is created with a generated pseudonym, a random
// avatar seed, the supplied age and a 24h expiry. Validation happens before
// any state mutation.
func (m *Manager) Enter(ctx context.Context, userID string, coord zone.Coordinate, age int) (*session.Descriptor, error) {
	if userID == "" {
		return nil, session.ErrNotFound
	}
	if age < m.config.MinAge || age > m.config.MaxAge {
		return nil, session.ErrInvalidAge
	}

	z, err := m.locator.Locate(ctx, coord)
	if err != nil {
		return nil, err
	}

	now := m.clock.Now()

	existing, err := m.sessions.GetActiveSession(ctx, userID, z.ID, now)
	if err != nil && !errors.Is(err, session.ErrNotFound) {
		return nil, fmt.Errorf("error looking up session: %w", err)
	}

	if existing != nil {
		if existing.State(now).Kind == session.StateExpelled {
			return nil, session.ErrExpelled
		}
		if err := m.sessions.Touch(ctx, existing.ID, now); err != nil {
			return nil, fmt.Errorf("error refreshing session: %w", err)
		}
		existing.LastLocationCheck = now
		return m.describe(existing, z, now), nil
	}

	m.mu.Lock()
	pseudonym := newPseudonym(m.rng)
	avatarSeed := newAvatarSeed(m.rng)
	m.mu.Unlock()

	s := &session.Session{
		ID:                uuid.New().String(),
		UserID:            userID,
		ZoneID:            z.ID,
		Pseudonym:         pseudonym,
		AvatarSeed:        avatarSeed,
		Age:               age,
		LastLocationCheck: now,
		CreatedAt:         now,
		ExpiresAt:         now.Add(m.config.TTL),
	}

	if err := m.sessions.SaveSession(ctx, s); err != nil {
		return nil, fmt.Errorf("error saving session: %w", err)
	}

	return m.describe(s, z, now), nil
}

// Revalidate checks that the coordinate still resolves to the session's
// zone. Invalid means the client must tear down and re-enter; the session
// row itself is left alone and simply fails its next validity check.
func (m *Manager) Revalidate(ctx context.Context, userID, sessionID string, coord zone.Coordinate) (bool, error) {
	s, err := m.sessions.GetSession(ctx, sessionID)
	if err != nil {
		return false, err
	}
	if s.UserID != userID {
		return false, session.ErrNotOwner
	}

	now := m.clock.Now()
	if s.State(now).Kind == session.StateExpired {
		return false, nil
	}

	z, err := m.locator.Locate(ctx, coord)
	if err != nil {
		if errors.Is(err, geo.ErrNoZoneNearby) {
			return false, nil
		}
		return false, err
	}
	if z.ID != s.ZoneID {
		return false, nil
	}

	if err := m.sessions.Touch(ctx, s.ID, now); err != nil {
		return false, fmt.Errorf("error refreshing session: %w", err)
	}
	return true, nil
}

// Get returns a session by ID
func (m *Manager) Get(ctx context.Context, sessionID string) (*session.Session, error) {
	return m.sessions.GetSession(ctx, sessionID)
}

// IncrementMessageCount charges one message against the session's lifetime
// quota and returns the new count
func (m *Manager) IncrementMessageCount(ctx context.Context, sessionID string) (int, error) {
	return m.sessions.IncrementMessageCount(ctx, sessionID)
}

// PurgeAll removes every session regardless of expiry
func (m *Manager) PurgeAll(ctx context.Context) error {
	return m.sessions.PurgeAll(ctx)
}

// Report registers one session blocking another. The reporter session must
// belong to the acting user; each reporter counts at most once per target.
// Crossing the block threshold silences the target, and crossing it again
// while already silenced expels it for the remainder of its lifetime.
func (m *Manager) Report(ctx context.Context, userID, reporterSessionID, targetSessionID string) error {
	if reporterSessionID == targetSessionID {
		return session.ErrSelfReport
	}

	reporter, err := m.sessions.GetSession(ctx, reporterSessionID)
	if err != nil {
		return err
	}
	if reporter.UserID != userID {
		return session.ErrNotOwner
	}

	target, err := m.sessions.GetSession(ctx, targetSessionID)
	if err != nil {
		return err
	}

	now := m.clock.Now()
	if reporter.State(now).Kind == session.StateExpired {
		return session.ErrExpired
	}
	if reporter.UserID == target.UserID {
		return session.ErrSelfReport
	}

	ttl := target.ExpiresAt.Sub(now)
	if ttl <= 0 {
		return session.ErrExpired
	}

	first, err := m.reports.Remember(ctx, target.ID, reporter.ID, ttl)
	if err != nil {
		return fmt.Errorf("error recording reporter: %w", err)
	}
	if !first {
		return nil
	}

	return m.RecordStrike(ctx, targetSessionID)
}

// RecordStrike increments a session's block count and applies escalation on
// each threshold crossing. The send pipeline calls this directly when the
// moderator blocks content, so filter evasion feeds the same ladder as peer
// reports.
//
// The count increment is atomic in the store but the escalation decision is
// a separate read, so concurrent strikes can over- or under-escalate by a
// small margin. Acceptable for an abuse-deterrence feature.
func (m *Manager) RecordStrike(ctx context.Context, sessionID string) error {
	s, err := m.sessions.GetSession(ctx, sessionID)
	if err != nil {
		return err
	}

	count, err := m.sessions.IncrementBlockCount(ctx, s.ID)
	if err != nil {
		return fmt.Errorf("error incrementing block count: %w", err)
	}

	if count%m.config.BlockThreshold != 0 {
		return nil
	}

	now := m.clock.Now()
	state := s.State(now)

	if state.Kind == session.StateExpelled || state.Kind == session.StateExpired {
		return nil
	}

	if state.Kind == session.StateSilenced {
		// Second crossing while silenced: expelled for the rest of the
		// session's natural lifetime
		expelledUntil := s.ExpiresAt
		if err := m.sessions.SetPenalties(ctx, s.ID, s.SilencedUntil, &expelledUntil); err != nil {
			return fmt.Errorf("error expelling session: %w", err)
		}
		return nil
	}

	silencedUntil := now.Add(m.config.SilenceDuration)
	if err := m.sessions.SetPenalties(ctx, s.ID, &silencedUntil, s.ExpelledUntil); err != nil {
		return fmt.Errorf("error silencing session: %w", err)
	}
	return nil
}

// DeleteExpired evicts sessions whose expiry has passed. Idempotent.
func (m *Manager) DeleteExpired(ctx context.Context) (int64, error) {
	return m.sessions.DeleteExpired(ctx, m.clock.Now())
}

func (m *Manager) describe(s *session.Session, z *zone.Zone, now time.Time) *session.Descriptor {
	d := &session.Descriptor{
		SessionID:    s.ID,
		ZoneID:       z.ID,
		ZoneName:     z.Name,
		Pseudonym:    s.Pseudonym,
		AvatarSeed:   s.AvatarSeed,
		IsUnder16:    s.IsUnder16(),
		MessageCount: s.MessageCount,
		ExpiresAt:    s.ExpiresAt,
	}
	if s.SilencedUntil != nil && now.Before(*s.SilencedUntil) {
		d.SilencedUntil = s.SilencedUntil
	}
	return d
}

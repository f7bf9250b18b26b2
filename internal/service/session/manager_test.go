package session

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"zonechat/internal/domain/session"
	"zonechat/internal/domain/zone"
	"zonechat/internal/service/geo"
)

// fixedClock pins time for the suite and can be advanced by tests
type fixedClock struct {
	now time.Time
}

func (c *fixedClock) Now() time.Time {
	return c.now
}

// memSessionStore is an in-memory session.Store
type memSessionStore struct {
	sessions map[string]*session.Session
}

func newMemSessionStore() *memSessionStore {
	return &memSessionStore{sessions: map[string]*session.Session{}}
}

func (s *memSessionStore) SaveSession(ctx context.Context, sess *session.Session) error {
	cp := *sess
	s.sessions[sess.ID] = &cp
	return nil
}

func (s *memSessionStore) GetSession(ctx context.Context, id string) (*session.Session, error) {
	sess, ok := s.sessions[id]
	if !ok {
		return nil, session.ErrNotFound
	}
	cp := *sess
	return &cp, nil
}

func (s *memSessionStore) GetActiveSession(ctx context.Context, userID, zoneID string, now time.Time) (*session.Session, error) {
	for _, sess := range s.sessions {
		if sess.UserID == userID && sess.ZoneID == zoneID && now.Before(sess.ExpiresAt) {
			cp := *sess
			return &cp, nil
		}
	}
	return nil, session.ErrNotFound
}

func (s *memSessionStore) Touch(ctx context.Context, id string, at time.Time) error {
	sess, ok := s.sessions[id]
	if !ok {
		return session.ErrNotFound
	}
	sess.LastLocationCheck = at
	return nil
}

func (s *memSessionStore) IncrementMessageCount(ctx context.Context, id string) (int, error) {
	sess, ok := s.sessions[id]
	if !ok {
		return 0, session.ErrNotFound
	}
	sess.MessageCount++
	return sess.MessageCount, nil
}

func (s *memSessionStore) IncrementBlockCount(ctx context.Context, id string) (int, error) {
	sess, ok := s.sessions[id]
	if !ok {
		return 0, session.ErrNotFound
	}
	sess.BlockCount++
	return sess.BlockCount, nil
}

func (s *memSessionStore) SetPenalties(ctx context.Context, id string, silencedUntil, expelledUntil *time.Time) error {
	sess, ok := s.sessions[id]
	if !ok {
		return session.ErrNotFound
	}
	sess.SilencedUntil = silencedUntil
	sess.ExpelledUntil = expelledUntil
	return nil
}

func (s *memSessionStore) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	var n int64
	for id, sess := range s.sessions {
		if !now.Before(sess.ExpiresAt) {
			delete(s.sessions, id)
			n++
		}
	}
	return n, nil
}

func (s *memSessionStore) PurgeAll(ctx context.Context) error {
	s.sessions = map[string]*session.Session{}
	return nil
}

// staticLocator resolves every coordinate inside the zone's radius
type staticLocator struct {
	zone zone.Zone
}

func (l *staticLocator) Locate(ctx context.Context, coord zone.Coordinate) (*zone.Zone, error) {
	if geo.Distance(coord, l.zone.Center) <= l.zone.RadiusMeters+10 {
		z := l.zone
		return &z, nil
	}
	return nil, geo.ErrNoZoneNearby
}

// memReportRegistry is an in-memory ReportRegistry
type memReportRegistry struct {
	seen map[string]bool
}

func (r *memReportRegistry) Remember(ctx context.Context, targetID, reporterID string, ttl time.Duration) (bool, error) {
	key := targetID + "/" + reporterID
	if r.seen[key] {
		return false, nil
	}
	r.seen[key] = true
	return true, nil
}

type ManagerTestSuite struct {
	suite.Suite
	store   *memSessionStore
	clock   *fixedClock
	manager *Manager
	zone    zone.Zone
	inside  zone.Coordinate
}

func (s *ManagerTestSuite) SetupTest() {
	s.zone = zone.Zone{
		ID:           "zone-parque",
		Name:         "Parque Central",
		Center:       zone.Coordinate{Latitude: 18.47186, Longitude: -69.89232},
		RadiusMeters: 100,
		Category:     zone.CategoryPark,
		Active:       true,
	}
	s.inside = s.zone.Center

	s.store = newMemSessionStore()
	s.clock = &fixedClock{now: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)}

	s.manager = NewManager(
		s.store,
		&staticLocator{zone: s.zone},
		&memReportRegistry{seen: map[string]bool{}},
		s.clock,
		Config{
			TTL:             24 * time.Hour,
			BlockThreshold:  5,
			SilenceDuration: time.Hour,
			MinAge:          13,
			MaxAge:          120,
		},
	)
}

func TestManagerTestSuite(t *testing.T) {
	suite.Run(t, new(ManagerTestSuite))
}

func (s *ManagerTestSuite) enter(userID string, age int) *session.Descriptor {
	d, err := s.manager.Enter(context.Background(), userID, s.inside, age)
	s.Require().NoError(err)
	return d
}

func (s *ManagerTestSuite) TestEnterCreatesSession() {
	d := s.enter("user-1", 30)

	s.Equal("zone-parque", d.ZoneID)
	s.Equal("Parque Central", d.ZoneName)
	s.NotEmpty(d.SessionID)
	s.NotEmpty(d.Pseudonym)
	s.NotEmpty(d.AvatarSeed)
	s.False(d.IsUnder16)
	s.Zero(d.MessageCount)
	s.Equal(s.clock.now.Add(24*time.Hour), d.ExpiresAt)

	stored, err := s.manager.Get(context.Background(), d.SessionID)
	s.Require().NoError(err)
	s.Equal(30, stored.Age)
	s.Equal("user-1", stored.UserID)
}

func (s *ManagerTestSuite) TestEnterUnder16() {
	d := s.enter("user-1", 15)
	s.True(d.IsUnder16)
}

func (s *ManagerTestSuite) TestEnterRejectsInvalidAge() {
	_, err := s.manager.Enter(context.Background(), "user-1", s.inside, 7)
	s.ErrorIs(err, session.ErrInvalidAge)

	_, err = s.manager.Enter(context.Background(), "user-1", s.inside, 300)
	s.ErrorIs(err, session.ErrInvalidAge)
}

func (s *ManagerTestSuite) TestEnterOutsideAnyZone() {
	far := zone.Coordinate{Latitude: 40.0, Longitude: -3.7}
	_, err := s.manager.Enter(context.Background(), "user-1", far, 30)
	s.ErrorIs(err, geo.ErrNoZoneNearby)
}

func (s *ManagerTestSuite) TestEnterReusesActiveSession() {
	first := s.enter("user-1", 30)

	s.clock.now = s.clock.now.Add(10 * time.Minute)
	second := s.enter("user-1", 30)

	s.Equal(first.SessionID, second.SessionID)
	s.Equal(first.Pseudonym, second.Pseudonym)

	stored, err := s.manager.Get(context.Background(), first.SessionID)
	s.Require().NoError(err)
	s.Equal(s.clock.now, stored.LastLocationCheck)
}

func (s *ManagerTestSuite) TestEnterAfterExpiryCreatesFreshSession() {
	first := s.enter("user-1", 30)

	s.clock.now = s.clock.now.Add(25 * time.Hour)
	second := s.enter("user-1", 30)

	s.NotEqual(first.SessionID, second.SessionID)
}

func (s *ManagerTestSuite) TestEnterWhileExpelledRejected() {
	d := s.enter("user-1", 30)
	s.expel(d.SessionID)

	_, err := s.manager.Enter(context.Background(), "user-1", s.inside, 30)
	s.ErrorIs(err, session.ErrExpelled)
}

// expel drives a session through silence and into expulsion via reports
func (s *ManagerTestSuite) expel(sessionID string) {
	s.silence(sessionID, 0)
	s.silence(sessionID, 5)

	stored, err := s.manager.Get(context.Background(), sessionID)
	s.Require().NoError(err)
	s.Require().Equal(session.StateExpelled, stored.State(s.clock.now).Kind)
}

// silence files five distinct reports against the target
func (s *ManagerTestSuite) silence(sessionID string, reporterOffset int) {
	for i := 0; i < 5; i++ {
		userID := fmt.Sprintf("reporter-%d", reporterOffset+i)
		reporter := s.enter(userID, 30)
		s.Require().NoError(s.manager.Report(context.Background(), userID, reporter.SessionID, sessionID))
	}
}

func (s *ManagerTestSuite) TestReportThresholdSilences() {
	target := s.enter("target", 30)
	s.silence(target.SessionID, 0)

	stored, err := s.manager.Get(context.Background(), target.SessionID)
	s.Require().NoError(err)

	state := stored.State(s.clock.now)
	s.Equal(session.StateSilenced, state.Kind)
	s.Equal(s.clock.now.Add(time.Hour), state.Until)
}

func (s *ManagerTestSuite) TestSilenceExpiresAfterConfiguredDuration() {
	target := s.enter("target", 30)
	s.silence(target.SessionID, 0)

	stored, err := s.manager.Get(context.Background(), target.SessionID)
	s.Require().NoError(err)

	s.Equal(session.StateSilenced, stored.State(s.clock.now).Kind)
	s.Equal(session.StateActive, stored.State(s.clock.now.Add(time.Hour+time.Second)).Kind)
}

func (s *ManagerTestSuite) TestSecondThresholdWhileSilencedExpels() {
	target := s.enter("target", 30)
	s.silence(target.SessionID, 0)
	s.silence(target.SessionID, 5)

	stored, err := s.manager.Get(context.Background(), target.SessionID)
	s.Require().NoError(err)

	state := stored.State(s.clock.now)
	s.Equal(session.StateExpelled, state.Kind)
	s.Equal(stored.ExpiresAt, state.Until)
}

func (s *ManagerTestSuite) TestReportIdempotentPerReporter() {
	target := s.enter("target", 30)
	reporter := s.enter("reporter", 30)

	for i := 0; i < 10; i++ {
		s.Require().NoError(s.manager.Report(context.Background(), "reporter", reporter.SessionID, target.SessionID))
	}

	stored, err := s.manager.Get(context.Background(), target.SessionID)
	s.Require().NoError(err)
	s.Equal(1, stored.BlockCount)
	s.Equal(session.StateActive, stored.State(s.clock.now).Kind)
}

func (s *ManagerTestSuite) TestSelfReportRejected() {
	target := s.enter("target", 30)

	err := s.manager.Report(context.Background(), "target", target.SessionID, target.SessionID)
	s.ErrorIs(err, session.ErrSelfReport)
}

func (s *ManagerTestSuite) TestReportRejectsForgedReporterSession() {
	target := s.enter("target", 30)
	victim := s.enter("victim", 30)

	// "attacker" tries to file a report through someone else's session
	err := s.manager.Report(context.Background(), "attacker", victim.SessionID, target.SessionID)
	s.ErrorIs(err, session.ErrNotOwner)

	stored, err := s.manager.Get(context.Background(), target.SessionID)
	s.Require().NoError(err)
	s.Zero(stored.BlockCount)
}

func (s *ManagerTestSuite) TestBlockCountIsMonotonic() {
	target := s.enter("target", 30)

	last := 0
	for i := 0; i < 7; i++ {
		s.Require().NoError(s.manager.RecordStrike(context.Background(), target.SessionID))
		stored, err := s.manager.Get(context.Background(), target.SessionID)
		s.Require().NoError(err)
		s.Greater(stored.BlockCount, last)
		last = stored.BlockCount
	}
}

func (s *ManagerTestSuite) TestRevalidate() {
	d := s.enter("user-1", 30)

	ok, err := s.manager.Revalidate(context.Background(), "user-1", d.SessionID, s.inside)
	s.Require().NoError(err)
	s.True(ok)

	far := zone.Coordinate{Latitude: 40.0, Longitude: -3.7}
	ok, err = s.manager.Revalidate(context.Background(), "user-1", d.SessionID, far)
	s.Require().NoError(err)
	s.False(ok)
}

func (s *ManagerTestSuite) TestRevalidateExpiredSession() {
	d := s.enter("user-1", 30)

	s.clock.now = s.clock.now.Add(25 * time.Hour)
	ok, err := s.manager.Revalidate(context.Background(), "user-1", d.SessionID, s.inside)
	s.Require().NoError(err)
	s.False(ok)
}

func (s *ManagerTestSuite) TestRevalidateRejectsForeignSession() {
	d := s.enter("user-1", 30)

	_, err := s.manager.Revalidate(context.Background(), "user-2", d.SessionID, s.inside)
	s.ErrorIs(err, session.ErrNotOwner)
}

func (s *ManagerTestSuite) TestDeleteExpired() {
	s.enter("user-1", 30)
	s.enter("user-2", 30)

	n, err := s.manager.DeleteExpired(context.Background())
	s.Require().NoError(err)
	s.Zero(n)

	s.clock.now = s.clock.now.Add(25 * time.Hour)
	n, err = s.manager.DeleteExpired(context.Background())
	s.Require().NoError(err)
	s.Equal(int64(2), n)
}

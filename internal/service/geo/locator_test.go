package geo

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"zonechat/internal/domain/zone"
)

type staticZoneSource struct {
	zones []zone.Zone
}

func (s *staticZoneSource) ListActiveZones(ctx context.Context) ([]zone.Zone, error) {
	return s.zones, nil
}

// Parque Central in Santo Domingo, radius 100m.
var parqueCentral = zone.Zone{
	ID:           "zone-parque",
	Name:         "Parque Central",
	Center:       zone.Coordinate{Latitude: 18.47186, Longitude: -69.89232},
	RadiusMeters: 100,
	Category:     zone.CategoryPark,
	Active:       true,
}

func newTestLocator(zones ...zone.Zone) *Locator {
	return NewLocator(&staticZoneSource{zones: zones}, Config{ToleranceMeters: 10})
}

func TestLocateInsideZone(t *testing.T) {
	l := newTestLocator(parqueCentral)

	// ~30m north of center
	z, err := l.Locate(context.Background(), zone.Coordinate{
		Latitude:  parqueCentral.Center.Latitude + 0.00027,
		Longitude: parqueCentral.Center.Longitude,
	})
	require.NoError(t, err)
	assert.Equal(t, "zone-parque", z.ID)
}

func TestLocateWithinTolerance(t *testing.T) {
	l := newTestLocator(parqueCentral)

	// ~105m north of center: outside the radius but inside radius + 10m
	z, err := l.Locate(context.Background(), zone.Coordinate{
		Latitude:  parqueCentral.Center.Latitude + 0.000944,
		Longitude: parqueCentral.Center.Longitude,
	})
	require.NoError(t, err)
	assert.Equal(t, "zone-parque", z.ID)
}

func TestLocateNoZoneNearby(t *testing.T) {
	l := newTestLocator(parqueCentral)

	// ~1km away
	_, err := l.Locate(context.Background(), zone.Coordinate{
		Latitude:  parqueCentral.Center.Latitude + 0.009,
		Longitude: parqueCentral.Center.Longitude,
	})
	assert.ErrorIs(t, err, ErrNoZoneNearby)
}

func TestLocateOverlappingZonesFirstMatchWins(t *testing.T) {
	// Second zone is closer to the queried point but listed after the first;
	// storage order decides, not distance.
	further := parqueCentral
	further.ID = "zone-a"
	further.RadiusMeters = 500

	closer := parqueCentral
	closer.ID = "zone-b"
	closer.RadiusMeters = 100

	l := newTestLocator(further, closer)

	z, err := l.Locate(context.Background(), zone.Coordinate{
		Latitude:  parqueCentral.Center.Latitude + 0.0002,
		Longitude: parqueCentral.Center.Longitude,
	})
	require.NoError(t, err)
	assert.Equal(t, "zone-a", z.ID)
}

func TestLocateInvalidCoordinate(t *testing.T) {
	l := newTestLocator(parqueCentral)

	_, err := l.Locate(context.Background(), zone.Coordinate{Latitude: 91, Longitude: 0})
	assert.ErrorIs(t, err, ErrInvalidCoordinate)

	_, err = l.Locate(context.Background(), zone.Coordinate{Latitude: 0, Longitude: -190})
	assert.ErrorIs(t, err, ErrInvalidCoordinate)
}

func TestDistance(t *testing.T) {
	// One degree of latitude is ~111.19km on a 6371km sphere
	a := zone.Coordinate{Latitude: 18.0, Longitude: -69.0}
	b := zone.Coordinate{Latitude: 19.0, Longitude: -69.0}

	d := Distance(a, b)
	assert.InDelta(t, 111195, d, 100)

	assert.Zero(t, Distance(a, a))
}

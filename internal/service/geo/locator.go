// internal/service/geo/locator.go

package geo

import (
	"context"
	"errors"
	"math"

	"zonechat/internal/domain/zone"
)

var (
	ErrNoZoneNearby      = errors.New("no zone nearby")
	ErrInvalidCoordinate = errors.New("invalid coordinate")
)

// ZoneSource lists the active zones to match against. Satisfied by the zone
// store directly or by the Redis cache wrapped around it.
type ZoneSource interface {
	ListActiveZones(ctx context.Context) ([]zone.Zone, error)
}

// Config contains configuration for the locator
type Config struct {
	// ToleranceMeters widens every zone's radius to avoid boundary flapping
	ToleranceMeters float64
}

// Locator resolves coordinates to the zone containing them
type Locator struct {
	zones  ZoneSource
	config Config
}

// NewLocator creates a new locator
func NewLocator(zones ZoneSource, config Config) *Locator {
	return &Locator{
		zones:  zones,
		config: config,
	}
}

// Locate returns the first zone (in storage order) whose great-circle
// distance from the coordinate is within its radius plus the configured
// tolerance. Overlapping zones resolve to the first match, not the nearest.
func (l *Locator) Locate(ctx context.Context, coord zone.Coordinate) (*zone.Zone, error) {
	if !coord.Valid() {
		return nil, ErrInvalidCoordinate
	}

	zones, err := l.zones.ListActiveZones(ctx)
	if err != nil {
		return nil, err
	}

	for i := range zones {
		z := &zones[i]
		if Distance(coord, z.Center) <= z.RadiusMeters+l.config.ToleranceMeters {
			return z, nil
		}
	}

	return nil, ErrNoZoneNearby
}

const earthRadiusMeters = 6371000.0

// Distance returns the great-circle distance between two coordinates in
// meters, using the haversine formula.
func Distance(a, b zone.Coordinate) float64 {
	phi1 := a.Latitude * math.Pi / 180
	phi2 := b.Latitude * math.Pi / 180
	deltaPhi := (b.Latitude - a.Latitude) * math.Pi / 180
	deltaLambda := (b.Longitude - a.Longitude) * math.Pi / 180

	h := math.Sin(deltaPhi/2)*math.Sin(deltaPhi/2) +
		math.Cos(phi1)*math.Cos(phi2)*
			math.Sin(deltaLambda/2)*math.Sin(deltaLambda/2)
	c := 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))

	return earthRadiusMeters * c
}

package zone

import (
	"context"
	"errors"
	"time"
)

// Category classifies the kind of place a zone covers
type Category string

const (
	CategoryNeighborhood Category = "neighborhood"
	CategorySupermarket  Category = "supermarket"
	CategoryPark         Category = "park"
	CategorySchool       Category = "school"
	CategoryUniversity   Category = "university"
	CategoryOther        Category = "other"
)

// Valid reports whether the category is one of the known values
func (c Category) Valid() bool {
	switch c {
	case CategoryNeighborhood, CategorySupermarket, CategoryPark,
		CategorySchool, CategoryUniversity, CategoryOther:
		return true
	}
	return false
}

// Radius bounds for zones in meters
const (
	MinRadiusMeters = 50.0
	MaxRadiusMeters = 500.0
)

// Coordinate is a WGS84 point
type Coordinate struct {
	Latitude  float64 `json:"lat"`
	Longitude float64 `json:"lng"`
}

// Valid reports whether the coordinate is within the WGS84 range
func (c Coordinate) Valid() bool {
	return c.Latitude >= -90 && c.Latitude <= 90 &&
		c.Longitude >= -180 && c.Longitude <= 180
}

// Zone is an administrator-defined circular geofence that gates a community
// chat room. Zones may overlap; resolution picks the first match in storage
// order.
type Zone struct {
	ID           string     `json:"id"`
	Name         string     `json:"name"`
	Center       Coordinate `json:"center"`
	RadiusMeters float64    `json:"radius_meters"`
	Category     Category   `json:"category"`
	Active       bool       `json:"active"`
	CreatedAt    time.Time  `json:"created_at"`
}

// Validate checks the invariants enforced on admin writes
func (z Zone) Validate() error {
	if z.Name == "" {
		return ErrInvalidZone
	}
	if !z.Center.Valid() {
		return ErrInvalidZone
	}
	if z.RadiusMeters < MinRadiusMeters || z.RadiusMeters > MaxRadiusMeters {
		return ErrInvalidZone
	}
	if !z.Category.Valid() {
		return ErrInvalidZone
	}
	return nil
}

// Store defines persistence for zones
type Store interface {
	// SaveZone inserts or updates a zone
	SaveZone(ctx context.Context, z *Zone) error

	// GetZone retrieves a zone by ID
	GetZone(ctx context.Context, id string) (*Zone, error)

	// ListZones returns all zones in storage order
	ListZones(ctx context.Context) ([]Zone, error)

	// ListActiveZones returns active zones in storage order
	ListActiveZones(ctx context.Context) ([]Zone, error)

	// DeleteZone removes a zone
	DeleteZone(ctx context.Context, id string) error
}

var (
	ErrNotFound    = errors.New("zone not found")
	ErrInvalidZone = errors.New("invalid zone definition")
)

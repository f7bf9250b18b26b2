// internal/adapter/storage/zone_store.go

package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"zonechat/internal/domain/zone"
)

// ZoneStore implements storage for zones
type ZoneStore struct {
	db *pgxpool.Pool
}

// NewZoneStore creates a new zone store
func NewZoneStore(db *pgxpool.Pool) *ZoneStore {
	return &ZoneStore{
		db: db,
	}
}

// SaveZone saves a zone to storage
func (s *ZoneStore) SaveZone(ctx context.Context, z *zone.Zone) error {
	query := `
		INSERT INTO zones (
			id, name, center_lat, center_lng, radius_meters, category, active, created_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8
		)
		ON CONFLICT (id) DO UPDATE
		SET
			name = $2,
			center_lat = $3,
			center_lng = $4,
			radius_meters = $5,
			category = $6,
			active = $7
	`

	_, err := s.db.Exec(ctx, query,
		z.ID,
		z.Name,
		z.Center.Latitude,
		z.Center.Longitude,
		z.RadiusMeters,
		string(z.Category),
		z.Active,
		z.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("error saving zone: %w", err)
	}

	return nil
}

// GetZone retrieves a zone by ID
func (s *ZoneStore) GetZone(ctx context.Context, id string) (*zone.Zone, error) {
	query := `
		SELECT id, name, center_lat, center_lng, radius_meters, category, active, created_at
		FROM zones
		WHERE id = $1
	`

	z, err := scanZone(s.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, zone.ErrNotFound
		}
		return nil, fmt.Errorf("error querying zone: %w", err)
	}

	return z, nil
}

// ListZones returns all zones in creation order
func (s *ZoneStore) ListZones(ctx context.Context) ([]zone.Zone, error) {
	return s.listZones(ctx, `
		SELECT id, name, center_lat, center_lng, radius_meters, category, active, created_at
		FROM zones
		ORDER BY created_at ASC
	`)
}

// ListActiveZones returns active zones in creation order. Creation order is
// what makes overlapping zone resolution deterministic.
func (s *ZoneStore) ListActiveZones(ctx context.Context) ([]zone.Zone, error) {
	return s.listZones(ctx, `
		SELECT id, name, center_lat, center_lng, radius_meters, category, active, created_at
		FROM zones
		WHERE active = true
		ORDER BY created_at ASC
	`)
}

func (s *ZoneStore) listZones(ctx context.Context, query string) ([]zone.Zone, error) {
	rows, err := s.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("error querying zones: %w", err)
	}
	defer rows.Close()

	var zones []zone.Zone
	for rows.Next() {
		z, err := scanZone(rows)
		if err != nil {
			return nil, fmt.Errorf("error scanning zone: %w", err)
		}
		zones = append(zones, *z)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating zones: %w", err)
	}

	return zones, nil
}

// DeleteZone removes a zone
func (s *ZoneStore) DeleteZone(ctx context.Context, id string) error {
	tag, err := s.db.Exec(ctx, `DELETE FROM zones WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("error deleting zone: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return zone.ErrNotFound
	}
	return nil
}

func scanZone(row pgx.Row) (*zone.Zone, error) {
	var z zone.Zone
	var category string

	err := row.Scan(
		&z.ID,
		&z.Name,
		&z.Center.Latitude,
		&z.Center.Longitude,
		&z.RadiusMeters,
		&category,
		&z.Active,
		&z.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	z.Category = zone.Category(category)
	return &z, nil
}

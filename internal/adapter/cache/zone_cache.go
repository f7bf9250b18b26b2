// internal/adapter/cache/zone_cache.go

package cache

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"time"

	"github.com/redis/go-redis/v9"

	"zonechat/internal/domain/zone"
)

const activeZonesKey = "zones:active"

// ZoneCache wraps a zone store with a Redis read cache for the active zone
// list. Admission resolves zones on every enter and location check, so the
// list is the hottest read in the system.
type ZoneCache struct {
	store  zone.Store
	client *redis.Client
	ttl    time.Duration
}

// NewZoneCache creates a new zone cache around the given store
func NewZoneCache(store zone.Store, client *redis.Client, ttl time.Duration) *ZoneCache {
	return &ZoneCache{
		store:  store,
		client: client,
		ttl:    ttl,
	}
}

// ListActiveZones returns the cached active zone list, falling back to the
// store on a miss. Cache failures degrade to store reads.
func (c *ZoneCache) ListActiveZones(ctx context.Context) ([]zone.Zone, error) {
	data, err := c.client.Get(ctx, activeZonesKey).Bytes()
	if err == nil {
		var zones []zone.Zone
		if err := json.Unmarshal(data, &zones); err == nil {
			return zones, nil
		}
		log.Printf("Error decoding cached zones, falling back to store")
	} else if !errors.Is(err, redis.Nil) {
		log.Printf("Error reading zone cache: %v", err)
	}

	zones, err := c.store.ListActiveZones(ctx)
	if err != nil {
		return nil, err
	}

	if encoded, err := json.Marshal(zones); err == nil {
		if err := c.client.Set(ctx, activeZonesKey, encoded, c.ttl).Err(); err != nil {
			log.Printf("Error writing zone cache: %v", err)
		}
	}

	return zones, nil
}

// SaveZone writes through to the store and invalidates the cache
func (c *ZoneCache) SaveZone(ctx context.Context, z *zone.Zone) error {
	if err := c.store.SaveZone(ctx, z); err != nil {
		return err
	}
	c.invalidate(ctx)
	return nil
}

// DeleteZone deletes from the store and invalidates the cache
func (c *ZoneCache) DeleteZone(ctx context.Context, id string) error {
	if err := c.store.DeleteZone(ctx, id); err != nil {
		return err
	}
	c.invalidate(ctx)
	return nil
}

// GetZone reads through to the store
func (c *ZoneCache) GetZone(ctx context.Context, id string) (*zone.Zone, error) {
	return c.store.GetZone(ctx, id)
}

// ListZones reads through to the store
func (c *ZoneCache) ListZones(ctx context.Context) ([]zone.Zone, error) {
	return c.store.ListZones(ctx)
}

func (c *ZoneCache) invalidate(ctx context.Context) {
	if err := c.client.Del(ctx, activeZonesKey).Err(); err != nil {
		log.Printf("Error invalidating zone cache: %v", err)
	}
}

var _ zone.Store = (*ZoneCache)(nil)

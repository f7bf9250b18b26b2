// internal/adapter/cache/report_registry.go

package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// ReportRegistry tracks which sessions have reported which targets, so each
// reporter can count at most once per target. Entries live only as long as
// the target session does.
type ReportRegistry struct {
	client *redis.Client
}

// NewReportRegistry creates a new report registry
func NewReportRegistry(client *redis.Client) *ReportRegistry {
	return &ReportRegistry{
		client: client,
	}
}

// Remember records that reporter reported target and returns true if this is
// the reporter's first report against that target
func (r *ReportRegistry) Remember(ctx context.Context, targetSessionID, reporterSessionID string, ttl time.Duration) (bool, error) {
	key := reportKey(targetSessionID)

	added, err := r.client.SAdd(ctx, key, reporterSessionID).Result()
	if err != nil {
		return false, fmt.Errorf("error recording report: %w", err)
	}

	if ttl > 0 {
		if err := r.client.Expire(ctx, key, ttl).Err(); err != nil {
			return false, fmt.Errorf("error setting report expiry: %w", err)
		}
	}

	return added == 1, nil
}

func reportKey(targetSessionID string) string {
	return fmt.Sprintf("reports:%s", targetSessionID)
}

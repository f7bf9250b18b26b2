// internal/service/chat/janitor.go

package chat

import (
	"context"
	"log"
	"time"
)

// Janitor periodically evicts expired messages and sessions row by row.
// It never touches live rows; the full purge is a separate administrative
// operation.
type Janitor struct {
	service  *Service
	interval time.Duration
}

// NewJanitor creates a new janitor
func NewJanitor(service *Service, interval time.Duration) *Janitor {
	if interval <= 0 {
		interval = 10 * time.Minute
	}
	return &Janitor{
		service:  service,
		interval: interval,
	}
}

// Run sweeps on the configured interval until the context is cancelled
func (j *Janitor) Run(ctx context.Context) {
	ticker := time.NewTicker(j.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			j.sweep(ctx)
		}
	}
}

func (j *Janitor) sweep(ctx context.Context) {
	messages, sessions, err := j.service.DeleteExpired(ctx)
	if err != nil {
		log.Printf("Error evicting expired rows: %v", err)
		return
	}
	if messages > 0 || sessions > 0 {
		log.Printf("Evicted %d expired messages, %d expired sessions", messages, sessions)
	}
}

// internal/server/handlers/registry.go

package handlers

import (
	"fmt"
	"log"
	"sync"

	"github.com/nats-io/nats.go"
)

// ConnectionRegistry tracks live websocket clients per zone and hands each
// one the bytes published for that zone
type ConnectionRegistry interface {
	// Register adds a client and returns its registration ID
	Register(zoneID string, send chan []byte) (string, error)

	// Unregister removes a client
	Unregister(zoneID, clientID string)

	// Broadcast delivers data to every client in the zone
	Broadcast(zoneID string, data []byte)
}

// zoneSubscription holds the clients and NATS bridge for one zone
type zoneSubscription struct {
	clients map[string]chan []byte
	sub     *nats.Subscription
}

// NatsRegistry is a ConnectionRegistry bridged over NATS. The first client
// of a zone opens one subscription covering that zone's subjects; the last
// one out closes it.
type NatsRegistry struct {
	natsConn *nats.Conn

	mu     sync.Mutex
	zones  map[string]*zoneSubscription
	nextID int
}

// NewNatsRegistry creates a new NATS-bridged connection registry
func NewNatsRegistry(natsConn *nats.Conn) *NatsRegistry {
	return &NatsRegistry{
		natsConn: natsConn,
		zones:    map[string]*zoneSubscription{},
	}
}

// Register adds a client to the zone, opening the zone's NATS subscription
// if it is the first one
func (r *NatsRegistry) Register(zoneID string, send chan []byte) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	zs, ok := r.zones[zoneID]
	if !ok {
		sub, err := r.natsConn.Subscribe(fmt.Sprintf("zone.%s.>", zoneID), func(msg *nats.Msg) {
			r.Broadcast(zoneID, msg.Data)
		})
		if err != nil {
			return "", fmt.Errorf("error subscribing to zone events: %w", err)
		}

		zs = &zoneSubscription{clients: map[string]chan []byte{}, sub: sub}
		r.zones[zoneID] = zs
	}

	r.nextID++
	clientID := fmt.Sprintf("client-%d", r.nextID)
	zs.clients[clientID] = send

	return clientID, nil
}

// Unregister removes a client, closing the zone's NATS subscription when no
// clients remain
func (r *NatsRegistry) Unregister(zoneID, clientID string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	zs, ok := r.zones[zoneID]
	if !ok {
		return
	}

	delete(zs.clients, clientID)
	if len(zs.clients) == 0 {
		if err := zs.sub.Unsubscribe(); err != nil {
			log.Printf("Error unsubscribing from zone %s: %v", zoneID, err)
		}
		delete(r.zones, zoneID)
	}
}

// Broadcast delivers data to every client in the zone. Clients with a full
// send buffer are skipped rather than blocked on.
func (r *NatsRegistry) Broadcast(zoneID string, data []byte) {
	r.mu.Lock()
	defer r.mu.Unlock()

	zs, ok := r.zones[zoneID]
	if !ok {
		return
	}

	for clientID, send := range zs.clients {
		select {
		case send <- data:
		default:
			log.Printf("Dropping event for slow client %s in zone %s", clientID, zoneID)
		}
	}
}

var _ ConnectionRegistry = (*NatsRegistry)(nil)

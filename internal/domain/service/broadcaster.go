package service

import "time"

// Broadcast event types pushed to connected real-time clients.
const (
	BroadcastTypeNewDeals = "new_deals"
)

// BroadcastEvent is the lightweight message pushed to every connected
// real-time client after a cycle that found new deals.
type BroadcastEvent struct {
	Type      string    `json:"type"`
	Count     int       `json:"count"`
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
}

// Broadcaster pushes events to currently connected clients, best effort.
// There is no delivery guarantee and no queuing for offline clients; a send
// failure must never surface to the caller.
type Broadcaster interface {
	Broadcast(event BroadcastEvent)
}

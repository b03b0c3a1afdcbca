package service

import (
	"context"
	"time"
)

// CycleEvent summarizes one completed ingestion cycle for downstream
// consumers on the message bus.
type CycleEvent struct {
	RequestID    string    `json:"request_id,omitempty"` // For distributed tracing
	CompletedAt  time.Time `json:"completed_at"`
	NewDeals     int       `json:"new_deals"`
	ChangedDeals int       `json:"changed_deals"`
	StoresSeen   int       `json:"stores_seen"`
	Localities   []string  `json:"localities"`
}

// EventPublisher defines the interface for publishing events to a message queue
type EventPublisher interface {
	// PublishCycleEvent publishes a cycle summary for async processing.
	PublishCycleEvent(ctx context.Context, event *CycleEvent) error

	// Close releases any resources held by the publisher
	Close() error
}

// Package pubsub provides a generic publish/subscribe event system used to fan out
// activation progress to whoever is displaying it.
package pubsub

import (
	"context"
	"time"
)

// EventType represents the type of event being published.
type EventType string

const (
	TransitionEvent EventType = "transition" // an artifact changed activation state
	BatchDoneEvent  EventType = "batch_done" // an activation batch finished
)

// Event represents a published event with a typed payload.
type Event[T any] struct {
	Type      EventType
	Payload   T
	Timestamp time.Time
}

// Subscriber provides a subscription channel for events.
type Subscriber[T any] interface {
	Subscribe(ctx context.Context) <-chan Event[T]
}

// Publisher allows publishing events with a typed payload.
type Publisher[T any] interface {
	Publish(eventType EventType, payload T)
}

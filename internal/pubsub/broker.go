package pubsub

import (
	"context"
	"sync"
	"sync/atomic"
	"time"
)

const defaultBufferSize = 64

// Broker fans events out to subscribers. Publish never blocks; an event for a
// subscriber whose buffer is full is dropped and counted.
type Broker[T any] struct {
	mu      sync.RWMutex
	subs    map[*subscription[T]]struct{}
	closed  bool
	buffer  int
	dropped atomic.Int64
}

type subscription[T any] struct {
	ch   chan Event[T]
	stop func() bool // detaches the context watch
}

var (
	_ Publisher[int]  = (*Broker[int])(nil)
	_ Subscriber[int] = (*Broker[int])(nil)
)

// NewBroker creates a broker whose subscribers buffer 64 events.
func NewBroker[T any]() *Broker[T] {
	return NewBrokerWithBuffer[T](defaultBufferSize)
}

// NewBrokerWithBuffer creates a broker whose subscribers buffer size events.
func NewBrokerWithBuffer[T any](size int) *Broker[T] {
	return &Broker[T]{subs: make(map[*subscription[T]]struct{}), buffer: size}
}

// Subscribe returns a channel of events published from now on. It is closed when
// ctx is done or the broker is closed; after Close it is returned already closed.
func (b *Broker[T]) Subscribe(ctx context.Context) <-chan Event[T] {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		ch := make(chan Event[T])
		close(ch)
		return ch
	}

	sub := &subscription[T]{ch: make(chan Event[T], b.buffer)}
	b.subs[sub] = struct{}{}
	sub.stop = context.AfterFunc(ctx, func() { b.unsubscribe(sub) })
	return sub.ch
}

func (b *Broker[T]) unsubscribe(sub *subscription[T]) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, ok := b.subs[sub]; !ok {
		return
	}
	delete(b.subs, sub)
	close(sub.ch)
}

// Publish delivers an event to every subscriber with room for it.
func (b *Broker[T]) Publish(eventType EventType, payload T) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.closed {
		return
	}

	event := Event[T]{Type: eventType, Payload: payload, Timestamp: time.Now()}
	for sub := range b.subs {
		select {
		case sub.ch <- event:
		default:
			b.dropped.Add(1)
		}
	}
}

// Close closes every subscription. Later calls do nothing.
func (b *Broker[T]) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return
	}
	b.closed = true
	for sub := range b.subs {
		sub.stop()
		close(sub.ch)
	}
	b.subs = nil
}

// SubscriberCount returns the number of open subscriptions.
func (b *Broker[T]) SubscriberCount() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subs)
}

// Dropped returns how many deliveries were skipped because a subscriber was full.
func (b *Broker[T]) Dropped() int64 {
	return b.dropped.Load()
}

package eventbus

import (
	"context"
	"log/slog"
	"slices"
	"sync"
	"sync/atomic"

	"agentchat/internal/domain"
)

// subscription is one registered handler. An empty topic matches every event.
type subscription struct {
	id    uint64
	topic domain.EventType
	fn    domain.EventHandler
}

func (s subscription) matches(t domain.EventType) bool {
	return s.topic == "" || s.topic == t
}

// Bus is an in-process, goroutine-safe event bus. The chat store publishes a
// state.changed event per applied action; the TUI program and every gateway
// connection subscribe to it.
type Bus struct {
	logger *slog.Logger

	mu     sync.RWMutex
	subs   []subscription
	nextID uint64

	inflight sync.WaitGroup
	closed   atomic.Bool

	published atomic.Int64
	rejected  atomic.Int64
	delivered atomic.Int64
	panics    atomic.Int64
}

var _ domain.EventBus = (*Bus)(nil)

// New creates an event bus. A nil logger falls back to slog.Default.
func New(logger *slog.Logger) *Bus {
	if logger == nil {
		logger = slog.Default()
	}
	return &Bus{logger: logger}
}

// Publish hands event to every matching handler, each on its own goroutine.
// Delivery order across handlers and events is not guaranteed. After Close
// events are counted as rejected and dropped.
func (b *Bus) Publish(ctx context.Context, event domain.Event) {
	if b.closed.Load() {
		b.rejected.Add(1)
		return
	}
	b.published.Add(1)

	b.mu.RLock()
	var targets []subscription
	for _, s := range b.subs {
		if s.matches(event.Type) {
			targets = append(targets, s)
		}
	}
	b.mu.RUnlock()

	for _, s := range targets {
		b.inflight.Add(1)
		go b.deliver(ctx, event, s)
	}
}

func (b *Bus) deliver(ctx context.Context, event domain.Event, s subscription) {
	defer b.inflight.Done()
	defer func() {
		if r := recover(); r != nil {
			b.panics.Add(1)
			b.logger.Error("event handler panicked",
				"event", string(event.Type),
				"subscription", s.id,
				"panic", r,
			)
		}
	}()
	s.fn(ctx, event)
	b.delivered.Add(1)
}

// Subscribe registers handler for one event type and returns a func that
// removes it.
func (b *Bus) Subscribe(eventType domain.EventType, handler domain.EventHandler) func() {
	return b.add(eventType, handler)
}

// SubscribeAll registers handler for every event and returns a func that
// removes it.
func (b *Bus) SubscribeAll(handler domain.EventHandler) func() {
	return b.add("", handler)
}

func (b *Bus) add(topic domain.EventType, fn domain.EventHandler) func() {
	b.mu.Lock()
	b.nextID++
	id := b.nextID
	b.subs = append(b.subs, subscription{id: id, topic: topic, fn: fn})
	b.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			b.mu.Lock()
			defer b.mu.Unlock()
			b.subs = slices.DeleteFunc(slices.Clone(b.subs), func(s subscription) bool {
				return s.id == id
			})
		})
	}
}

// Stats reports counters since the bus was created.
func (b *Bus) Stats() domain.BusStats {
	b.mu.RLock()
	n := len(b.subs)
	b.mu.RUnlock()
	return domain.BusStats{
		Published:   b.published.Load(),
		Rejected:    b.rejected.Load(),
		Delivered:   b.delivered.Load(),
		Panics:      b.panics.Load(),
		Subscribers: n,
	}
}

// Wait blocks until every handler dispatched so far has returned. The bus
// stays open.
func (b *Bus) Wait() {
	b.inflight.Wait()
}

// Close stops accepting events and waits for in-flight handlers. It is
// idempotent.
func (b *Bus) Close() {
	if b.closed.Swap(true) {
		return
	}
	b.inflight.Wait()
}

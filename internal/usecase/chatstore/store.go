package chatstore

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"agentchat/internal/domain"
)

// Observer sees every applied action and the state it produced. Observers
// run while the store lock is held and must not call back into the Store.
type Observer func(act domain.Action, next domain.ChatState)

// Store owns the ChatState and applies actions to it through Reduce.
// It is safe for concurrent use. Every applied action publishes one
// EventStateChanged on the bus.
type Store struct {
	mu        sync.Mutex
	state     domain.ChatState
	seq       uint64
	observers []Observer

	bus    domain.EventBus
	logger *slog.Logger
	now    func() time.Time
}

// Option configures a Store.
type Option func(*Store)

// WithObserver registers an observer at construction time.
func WithObserver(o Observer) Option {
	return func(s *Store) { s.observers = append(s.observers, o) }
}

// WithInitialState seeds the store. Stores otherwise start empty.
func WithInitialState(state domain.ChatState) Option {
	return func(s *Store) { s.state = state }
}

// WithClock overrides the clock used to timestamp events.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// New creates a Store. bus may be nil when nothing needs change notifications.
func New(bus domain.EventBus, logger *slog.Logger, opts ...Option) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Store{
		bus:    bus,
		logger: logger,
		now:    time.Now,
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// State returns a snapshot. Reduce never mutates shared backing arrays, so
// the snapshot is stable but callers must treat its slices as read-only.
func (s *Store) State() domain.ChatState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Dispatch applies the actions in order as one atomic step.
func (s *Store) Dispatch(ctx context.Context, actions ...domain.Action) {
	s.Update(ctx, func(domain.ChatState) []domain.Action { return actions })
}

// Update calls fn with the current state and applies the actions it returns,
// without letting another dispatch interleave. Deferred engine phases use it
// to append to the lists as they are when the phase fires.
func (s *Store) Update(ctx context.Context, fn func(domain.ChatState) []domain.Action) {
	s.mu.Lock()
	actions := fn(s.state)
	events := make([]domain.Event, 0, len(actions))
	for _, act := range actions {
		if act == nil {
			continue
		}
		s.state = Reduce(s.state, act)
		s.seq++
		for _, o := range s.observers {
			o(act, s.state)
		}
		events = append(events, domain.NewEvent(domain.EventStateChanged, s.now(),
			domain.StateChangedPayload{Action: act.Type(), Seq: s.seq}))
		s.logger.Debug("action applied", "action", string(act.Type()), "seq", s.seq)
	}
	s.mu.Unlock()

	if s.bus == nil {
		return
	}
	for _, ev := range events {
		s.bus.Publish(ctx, ev)
	}
}

// Seq returns the number of actions applied so far.
func (s *Store) Seq() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.seq
}

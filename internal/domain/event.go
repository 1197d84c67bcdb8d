package domain

import (
	"context"
	"encoding/json"
	"time"
)

// EventType identifies the kind of event being published.
type EventType string

const (
	// EventStateChanged fires once per action applied by the chat store.
	EventStateChanged EventType = "state.changed"

	// Engine lifecycle events.
	EventTeamCreated   EventType = "team.created"
	EventReplyAppended EventType = "reply.appended"
	EventTaskScheduled EventType = "task.scheduled"
	EventTaskCancelled EventType = "task.cancelled"
)

// StateChangedPayload is the payload of EventStateChanged.
type StateChangedPayload struct {
	Action ActionType `json:"action"`
	Seq    uint64     `json:"seq"`
}

// TeamCreatedPayload is the payload of EventTeamCreated.
type TeamCreatedPayload struct {
	PrimaryID   string   `json:"primaryId"`
	SubAgentIDs []string `json:"subAgentIds"`
}

// TaskPayload is the payload of the task lifecycle events.
type TaskPayload struct {
	Kind  string `json:"kind"`
	Delay string `json:"delay,omitempty"`
}

// Event is the envelope published on the event bus.
type Event struct {
	Type      EventType       `json:"type"`
	Timestamp time.Time       `json:"timestamp"`
	Payload   json.RawMessage `json:"payload,omitempty"`
}

// NewEvent builds an event with a JSON-encoded payload. A payload that fails
// to encode is dropped and the event is still returned.
func NewEvent(t EventType, at time.Time, payload any) Event {
	ev := Event{Type: t, Timestamp: at}
	if payload != nil {
		if raw, err := json.Marshal(payload); err == nil {
			ev.Payload = raw
		}
	}
	return ev
}

// EventHandler is a callback invoked when an event is received.
type EventHandler func(ctx context.Context, event Event)

// EventBus provides a publish/subscribe mechanism for domain events.
type EventBus interface {
	// Publish sends an event to all matching subscribers.
	Publish(ctx context.Context, event Event)
	// Subscribe registers a handler for a specific event type.
	// Returns an unsubscribe function.
	Subscribe(eventType EventType, handler EventHandler) func()
	// SubscribeAll registers a handler that receives every event.
	// Returns an unsubscribe function.
	SubscribeAll(handler EventHandler) func()
	// Close drains in-flight handlers and prevents new publishes.
	Close()
}

// BusStats is a point-in-time view of event bus activity.
type BusStats struct {
	Published   int64 // events accepted for delivery
	Rejected    int64 // events published after Close
	Delivered   int64 // handler calls that returned
	Panics      int64 // handler calls that panicked
	Subscribers int
}

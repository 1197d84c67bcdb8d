// Package engine implements the simulated agent runtime: team creation from
// a prompt, echo replies, and conversation bookkeeping. Every response is
// deterministic and delivered through a cancellable scheduled task.
package engine

import (
	"context"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"agentchat/internal/domain"
	"agentchat/internal/infra/tracer"
	"agentchat/internal/usecase/chatstore"
	"agentchat/internal/usecase/simulate"
)

// Config holds the engine's tunables.
type Config struct {
	AgentCreationDelay time.Duration
	ReplyDelay         time.Duration
	// GateBaseSubAgents makes Data Analyst and Report Generator depend on
	// their own keywords instead of always being created.
	GateBaseSubAgents bool
}

// DefaultConfig returns the stock delays: two seconds to build a team and
// one second to reply.
func DefaultConfig() Config {
	return Config{
		AgentCreationDelay: 2 * time.Second,
		ReplyDelay:         time.Second,
	}
}

// Engine drives the store on behalf of the views.
type Engine struct {
	store   *chatstore.Store
	sched   simulate.Scheduler
	pending *simulate.Group
	cfg     Config
	ids     *idSource
	bus     domain.EventBus
	logger  *slog.Logger
	now     func() time.Time
}

// Option configures an Engine.
type Option func(*Engine)

// WithClock overrides the clock used for timestamps and id namespaces.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

// WithBus publishes engine lifecycle events on bus.
func WithBus(bus domain.EventBus) Option {
	return func(e *Engine) { e.bus = bus }
}

// New creates an Engine. sched nil means real timers.
func New(store *chatstore.Store, sched simulate.Scheduler, cfg Config, logger *slog.Logger, opts ...Option) *Engine {
	if sched == nil {
		sched = simulate.NewTimerScheduler()
	}
	if logger == nil {
		logger = slog.Default()
	}
	e := &Engine{
		store:   store,
		sched:   sched,
		pending: simulate.NewGroup(),
		cfg:     cfg,
		logger:  logger,
		now:     time.Now,
	}
	for _, o := range opts {
		o(e)
	}
	e.ids = newIDSource(e.now())
	return e
}

// Store returns the store the engine drives.
func (e *Engine) Store() *chatstore.Store { return e.store }

// CreateAgentFromPrompt records the prompt and schedules creation of a team
// of agents for it. The returned task completes once the team, its
// conversation and the summary message are in the store.
func (e *Engine) CreateAgentFromPrompt(ctx context.Context, prompt string) (*simulate.Task, error) {
	ctx, span := tracer.StartSpan(ctx, "engine.create_agent_from_prompt")
	defer span.End()

	if strings.TrimSpace(prompt) == "" {
		err := domain.NewSubSystemError("prompt", "Engine.CreateAgentFromPrompt", domain.ErrInvalidInput, "blank prompt")
		tracer.RecordError(span, err)
		return nil, err
	}

	e.store.Dispatch(ctx,
		domain.AddMessage{Message: e.message(domain.RoleUser, prompt, domain.SystemAgentID)},
		domain.SetLoading{Loading: true},
	)

	task := e.schedule(ctx, "create_agent", e.cfg.AgentCreationDelay, func(ctx context.Context) {
		e.completeTeam(ctx, prompt)
	})
	tracer.SetOK(span)
	return task, nil
}

func (e *Engine) completeTeam(ctx context.Context, prompt string) {
	ctx, span := tracer.StartSpan(ctx, "engine.create_agent_from_prompt.complete")
	defer span.End()

	now := e.now()
	ts := e.ids.batch(now)
	team := BuildTeam(prompt, ts, e.cfg.GateBaseSubAgents)
	primaryID := team.Primary.ID

	e.store.Update(ctx, func(cur domain.ChatState) []domain.Action {
		agents := make([]domain.Agent, 0, len(cur.Agents)+1+len(team.SubAgents))
		agents = append(agents, cur.Agents...)
		agents = append(agents, team.Agents()...)
		return []domain.Action{
			domain.SetAgents{Agents: agents},
			domain.SetActiveAgent{ID: primaryID},
			domain.AddMessage{Message: e.message(domain.RoleUser, prompt, primaryID)},
			domain.CreateConversation{Conversation: domain.Conversation{
				ID:           "conv_" + strconv.FormatInt(ts, 10),
				AgentID:      primaryID,
				Title:        TaskTitle(prompt),
				LastMessage:  prompt,
				Timestamp:    now,
				MessageCount: 1,
			}},
			domain.AddMessage{Message: e.message(domain.RoleAssistant, TeamSummary(team), primaryID)},
			domain.SetLoading{Loading: false},
		}
	})

	subIDs := make([]string, len(team.SubAgents))
	for i, a := range team.SubAgents {
		subIDs[i] = a.ID
	}
	e.publish(ctx, domain.EventTeamCreated, domain.TeamCreatedPayload{PrimaryID: primaryID, SubAgentIDs: subIDs})
	e.logger.Info("agent team created", "primary", primaryID, "sub_agents", len(subIDs))
	span.SetAttributes(tracer.StringAttr("agent.primary", primaryID), tracer.IntAttr("agent.sub_agents", len(subIDs)))
	tracer.SetOK(span)
}

// SendMessage posts content to the active agent and schedules its reply.
// Without an active agent it does nothing and returns a nil task. When no
// conversation is active, one is opened for the agent first.
func (e *Engine) SendMessage(ctx context.Context, content string) (*simulate.Task, error) {
	ctx, span := tracer.StartSpan(ctx, "engine.send_message")
	defer span.End()

	var agentID string
	e.store.Update(ctx, func(cur domain.ChatState) []domain.Action {
		if cur.ActiveAgentID == "" {
			return nil
		}
		agentID = cur.ActiveAgentID

		var acts []domain.Action
		if cur.ActiveConversationID == "" {
			if agent, ok := chatstore.FindAgent(cur, agentID); ok {
				acts = append(acts, domain.CreateConversation{Conversation: e.conversation(agentID, ChatTitle(agent.Name))})
			}
		}
		return append(acts,
			domain.AddMessage{Message: e.message(domain.RoleUser, content, agentID)},
			domain.SetLoading{Loading: true},
		)
	})
	if agentID == "" {
		e.logger.Debug("send ignored: no active agent")
		return nil, nil
	}
	span.SetAttributes(tracer.StringAttr("agent.id", agentID))

	task := e.schedule(ctx, "reply", e.cfg.ReplyDelay, func(ctx context.Context) {
		e.completeReply(ctx, agentID, content)
	})
	tracer.SetOK(span)
	return task, nil
}

// completeReply appends the reply for the agent that was active when the
// message was sent, even if the user has switched agents since.
func (e *Engine) completeReply(ctx context.Context, agentID, content string) {
	ctx, span := tracer.StartSpan(ctx, "engine.send_message.complete")
	defer span.End()

	e.store.Update(ctx, func(cur domain.ChatState) []domain.Action {
		acts := []domain.Action{
			domain.AddMessage{Message: e.message(domain.RoleAssistant, EchoReply(content), agentID)},
			domain.SetLoading{Loading: false},
		}
		if c, ok := chatstore.ActiveConversation(cur); ok {
			c.LastMessage = content
			c.Timestamp = e.now()
			c.MessageCount++
			acts = append(acts, domain.UpdateConversation{Conversation: c})
		}
		return acts
	})

	e.publish(ctx, domain.EventReplyAppended, nil)
	tracer.SetOK(span)
}

// CreateNewConversation opens an empty conversation with agentID and makes
// both the conversation and the agent active.
func (e *Engine) CreateNewConversation(ctx context.Context, agentID, title string) domain.Conversation {
	_, span := tracer.StartSpan(ctx, "engine.create_new_conversation")
	defer span.End()

	c := e.conversation(agentID, title)
	e.store.Dispatch(ctx,
		domain.CreateConversation{Conversation: c},
		domain.SetActiveAgent{ID: agentID},
	)
	tracer.SetOK(span)
	return c
}

// NewChat clears the selection and the transcript.
func (e *Engine) NewChat(ctx context.Context) {
	e.store.Dispatch(ctx,
		domain.SetActiveAgent{ID: ""},
		domain.SetActiveConversation{ID: ""},
		domain.SetMessages{Messages: []domain.Message{}},
	)
}

// SelectAgent makes id the active agent. Unknown ids are rejected.
func (e *Engine) SelectAgent(ctx context.Context, id string) error {
	if _, ok := chatstore.FindAgent(e.store.State(), id); !ok {
		return domain.NewSubSystemError("agent", "Engine.SelectAgent", domain.ErrNotFound, id)
	}
	e.store.Dispatch(ctx, domain.SetActiveAgent{ID: id})
	return nil
}

// CancelPending cancels every deferred phase that has not fired yet and
// clears the loading flag if anything was cancelled.
func (e *Engine) CancelPending(ctx context.Context) int {
	n := e.pending.CancelAll()
	if n > 0 {
		e.store.Dispatch(ctx, domain.SetLoading{Loading: false})
		e.publish(ctx, domain.EventTaskCancelled, domain.TaskPayload{Kind: "all"})
		e.logger.Info("pending tasks cancelled", "count", n)
	}
	return n
}

// Pending returns the number of deferred phases still waiting to fire.
func (e *Engine) Pending() int { return e.pending.Len() }

// Close cancels pending work. The store keeps its state.
func (e *Engine) Close() {
	e.pending.Close()
}

// schedule runs fn after d on a context detached from ctx's cancellation, so
// a finished request does not abort the deferred phase.
func (e *Engine) schedule(ctx context.Context, kind string, d time.Duration, fn func(context.Context)) *simulate.Task {
	fireCtx := context.WithoutCancel(ctx)
	task := e.pending.Track(e.sched.Schedule(d, func() { fn(fireCtx) }))
	e.publish(ctx, domain.EventTaskScheduled, domain.TaskPayload{Kind: kind, Delay: d.String()})
	return task
}

func (e *Engine) publish(ctx context.Context, t domain.EventType, payload any) {
	if e.bus == nil {
		return
	}
	e.bus.Publish(ctx, domain.NewEvent(t, e.now(), payload))
}

func (e *Engine) message(role, content, agentID string) domain.Message {
	now := e.now()
	return domain.Message{
		ID:        e.ids.next("msg", now),
		Content:   content,
		Role:      role,
		Timestamp: now,
		AgentID:   agentID,
	}
}

func (e *Engine) conversation(agentID, title string) domain.Conversation {
	now := e.now()
	return domain.Conversation{
		ID:        e.ids.next("conv", now),
		AgentID:   agentID,
		Title:     title,
		Timestamp: now,
	}
}

package main

import (
	"context"
	"log/slog"
	"time"

	"agentchat/internal/infra/config"
	"agentchat/internal/usecase/chatstore"
	"agentchat/internal/usecase/engine"
	"agentchat/internal/usecase/eventbus"
	"agentchat/internal/usecase/seed"
	"agentchat/internal/usecase/simulate"
)

// runtime is the composed application: one bus, one store scope and the
// engine driving it.
type runtime struct {
	ctx    context.Context
	log    *slog.Logger
	bus    *eventbus.Bus
	store  *chatstore.Store
	engine *engine.Engine
}

// initRuntime builds the store scope and the engine. sched nil means real
// timers; the clock follows a ManualScheduler when one is given.
func initRuntime(ctx context.Context, cfg *config.Config, log *slog.Logger, sched *simulate.ManualScheduler) *runtime {
	now := time.Now
	var scheduler simulate.Scheduler
	if sched != nil {
		now = sched.Now
		scheduler = sched
	}

	bus := eventbus.New(log)
	ctx = chatstore.WithStore(ctx, chatstore.New(bus, log, chatstore.WithClock(now)))
	store := chatstore.MustFromContext(ctx)

	if cfg.Engine.SeedSamples {
		seed.Load(ctx, store, now())
	}

	eng := engine.New(store, scheduler, engine.Config{
		AgentCreationDelay: cfg.Engine.AgentCreationDelay,
		ReplyDelay:         cfg.Engine.ReplyDelay,
		GateBaseSubAgents:  cfg.Engine.GateBaseSubAgents,
	}, log, engine.WithClock(now), engine.WithBus(bus))

	return &runtime{ctx: ctx, log: log, bus: bus, store: store, engine: eng}
}

// Close cancels pending engine work and drains the bus.
func (r *runtime) Close() {
	r.engine.Close()
	r.bus.Close()
}

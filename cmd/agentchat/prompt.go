package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"agentchat/internal/domain"
	"agentchat/internal/infra/config"
	"agentchat/internal/infra/logger"
	"agentchat/internal/usecase/chatstore"
	"agentchat/internal/usecase/simulate"
)

// runPrompt builds a team for prompt without waiting out the creation delay
// and writes the team and the assistant summary to w.
func runPrompt(w io.Writer, prompt string) error {
	cfg, err := config.Load(configPath())
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}
	log, logCloser, err := logger.New(cfg.Logger)
	if err != nil {
		return fmt.Errorf("logger: %w", err)
	}
	defer logCloser()

	return promptOnce(context.Background(), w, cfg, prompt, time.Now(), log)
}

func promptOnce(ctx context.Context, w io.Writer, cfg *config.Config, prompt string, start time.Time, log *slog.Logger) error {
	sched := simulate.NewManualScheduler(start)
	run := *cfg
	run.Engine.SeedSamples = false
	rt := initRuntime(ctx, &run, logger.Discard(), sched)
	defer rt.Close()

	if _, err := rt.engine.CreateAgentFromPrompt(rt.ctx, prompt); err != nil {
		return err
	}
	sched.FlushAll()

	state := rt.store.State()
	primary, ok := chatstore.ActiveAgent(state)
	if !ok {
		return domain.NewSubSystemError("agent", "prompt", domain.ErrNotFound, "no team was created")
	}
	log.Info("agent team created", "primary", primary.ID, "agents", len(state.Agents))

	var b strings.Builder
	fmt.Fprintf(&b, "%s %s\n", primary.Avatar, primary.Name)
	for _, sub := range chatstore.SubAgents(state, primary.ID) {
		fmt.Fprintf(&b, "  %s %s\n", sub.Avatar, sub.Name)
	}
	if c, ok := chatstore.ActiveConversation(state); ok {
		fmt.Fprintf(&b, "\nConversation: %s\n", c.Title)
	}
	if n := len(state.Messages); n > 0 && state.Messages[n-1].Role == domain.RoleAssistant {
		fmt.Fprintf(&b, "\n%s\n", state.Messages[n-1].Content)
	}
	_, err := io.WriteString(w, b.String())
	return err
}

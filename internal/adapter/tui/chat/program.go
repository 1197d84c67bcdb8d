package chat

import (
	"context"
	"encoding/json"
	"log/slog"

	tea "github.com/charmbracelet/bubbletea"

	"agentchat/internal/domain"
)

// Options tunes the terminal program.
type Options struct {
	AltScreen bool
	Mouse     bool
}

// App runs the root model as a Bubble Tea program and repaints it on
// every state.changed event from the bus.
type App struct {
	deps    Deps
	bus     domain.EventBus
	opts    Options
	logger  *slog.Logger
	program *tea.Program
}

// NewApp creates a terminal app. bus may be nil, in which case the view
// only repaints after its own actions.
func NewApp(deps Deps, bus domain.EventBus, opts Options) *App {
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &App{deps: deps, bus: bus, opts: opts, logger: logger}
}

// Run blocks until the user quits or ctx is cancelled.
func (a *App) Run(ctx context.Context) error {
	var popts []tea.ProgramOption
	if a.opts.AltScreen {
		popts = append(popts, tea.WithAltScreen())
	}
	if a.opts.Mouse {
		popts = append(popts, tea.WithMouseCellMotion())
	}
	a.program = tea.NewProgram(NewModel(a.deps), popts...)

	if a.bus != nil {
		unsub := a.bus.Subscribe(domain.EventStateChanged, func(_ context.Context, ev domain.Event) {
			var p domain.StateChangedPayload
			if len(ev.Payload) > 0 {
				if err := json.Unmarshal(ev.Payload, &p); err != nil {
					a.logger.Debug("state.changed payload", "error", err)
				}
			}
			a.program.Send(StateChangedMsg{Seq: p.Seq})
		})
		defer unsub()
	}

	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			a.program.Send(QuitMsg{})
		case <-done:
		}
	}()

	a.logger.Info("terminal ui started")
	_, err := a.program.Run()
	return err
}

// Stop asks a running program to quit.
func (a *App) Stop() {
	if a.program != nil {
		a.program.Send(QuitMsg{})
	}
}

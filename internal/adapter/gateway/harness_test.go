package gateway

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"agentchat/internal/domain"
	"agentchat/internal/usecase/chatstore"
	"agentchat/internal/usecase/engine"
	"agentchat/internal/usecase/eventbus"
	"agentchat/internal/usecase/seed"
	"agentchat/internal/usecase/simulate"
)

const testToken = "test-token"

var testStart = time.Date(2025, 5, 1, 8, 0, 42, 0, time.UTC)

type fixture struct {
	srv   *Server
	bus   *eventbus.Bus
	store *chatstore.Store
	eng   *engine.Engine
	sched *simulate.ManualScheduler
	deps  HandlerDeps
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newFixture(t *testing.T, opts ...Option) *fixture {
	t.Helper()
	log := discardLogger()
	f := &fixture{
		bus:   eventbus.New(log),
		sched: simulate.NewManualScheduler(testStart),
	}
	f.store = chatstore.New(f.bus, log, chatstore.WithClock(f.sched.Now))
	seed.Load(context.Background(), f.store, testStart)
	f.eng = engine.New(f.store, f.sched, engine.DefaultConfig(), log, engine.WithClock(f.sched.Now), engine.WithBus(f.bus))
	f.deps = HandlerDeps{Engine: f.eng, Store: f.store, Logger: log}

	auth := NewStaticTokenAuth([]Token{{Token: testToken, Name: "tester"}})
	f.srv = NewServer(f.bus, auth, "127.0.0.1:0", log, opts...)
	require.NoError(t, RegisterDefaultHandlers(f.srv, f.deps))
	RegisterRESTHandlers(f.srv, f.deps)

	t.Cleanup(func() {
		f.eng.Close()
		f.bus.Close()
	})
	return f
}

// rpc invokes method in-process, bypassing the WebSocket transport.
func (f *fixture) rpc(t *testing.T, method string, payload any) (json.RawMessage, error) {
	t.Helper()
	var raw json.RawMessage
	if payload != nil {
		b, err := json.Marshal(payload)
		require.NoError(t, err)
		raw = b
	}
	return f.srv.call(context.Background(), &ClientInfo{Name: "tester"}, method, raw)
}

func (f *fixture) mustRPC(t *testing.T, method string, payload any, out any) {
	t.Helper()
	raw, err := f.rpc(t, method, payload)
	require.NoError(t, err, method)
	if out != nil {
		require.NoError(t, json.Unmarshal(raw, out))
	}
}

func primaryByName(state domain.ChatState, name string) (domain.Agent, bool) {
	for _, a := range chatstore.PrimaryAgents(state) {
		if a.Name == name {
			return a, true
		}
	}
	return domain.Agent{}, false
}

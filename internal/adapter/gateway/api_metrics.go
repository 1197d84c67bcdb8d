package gateway

import (
	"fmt"
	"net/http"
	"runtime"
	"sync/atomic"
	"time"

	"agentchat/internal/domain"
)

// Metrics counts gateway and engine activity for /api/v1/status and /metrics.
type Metrics struct {
	RPCCalls        atomic.Int64
	RPCErrors       atomic.Int64
	StateChanges    atomic.Int64
	TeamsCreated    atomic.Int64
	RepliesAppended atomic.Int64
	TasksCancelled  atomic.Int64
	EventsForwarded atomic.Int64
	EventsDropped   atomic.Int64
}

func (m *Metrics) observeEvent(t domain.EventType) {
	switch t {
	case domain.EventStateChanged:
		m.StateChanges.Add(1)
	case domain.EventTeamCreated:
		m.TeamsCreated.Add(1)
	case domain.EventReplyAppended:
		m.RepliesAppended.Add(1)
	case domain.EventTaskCancelled:
		m.TasksCancelled.Add(1)
	}
}

// busStatser is implemented by buses that count their traffic.
type busStatser interface {
	Stats() domain.BusStats
}

// metricsHandler serves GET /metrics in the Prometheus text format.
func metricsHandler(deps HandlerDeps, s *Server, startTime time.Time) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		w.Header().Set("Content-Type", "text/plain; version=0.0.4; charset=utf-8")

		m := s.Metrics()
		state := deps.Store.State()
		loading := 0
		if state.IsLoading {
			loading = 1
		}

		gauge := func(name, help string, v any) {
			fmt.Fprintf(w, "# HELP %s %s\n# TYPE %s gauge\n%s %v\n", name, help, name, name, v)
		}
		counter := func(name, help string, v int64) {
			fmt.Fprintf(w, "# HELP %s %s\n# TYPE %s counter\n%s %d\n", name, help, name, name, v)
		}

		counter("agentchat_rpc_calls_total", "Gateway RPC calls.", m.RPCCalls.Load())
		counter("agentchat_rpc_errors_total", "Gateway RPC calls that returned an error.", m.RPCErrors.Load())
		counter("agentchat_state_changes_total", "Actions applied by the chat store.", m.StateChanges.Load())
		counter("agentchat_teams_created_total", "Agent teams created from prompts.", m.TeamsCreated.Load())
		counter("agentchat_replies_total", "Simulated replies appended.", m.RepliesAppended.Load())
		counter("agentchat_events_dropped_total", "Events dropped for slow clients.", m.EventsDropped.Load())

		if bs, ok := s.bus.(busStatser); ok {
			st := bs.Stats()
			counter("agentchat_bus_events_published_total", "Events accepted by the event bus.", st.Published)
			counter("agentchat_bus_events_rejected_total", "Events published after the bus closed.", st.Rejected)
			counter("agentchat_bus_deliveries_total", "Event handler calls that returned.", st.Delivered)
			counter("agentchat_bus_handler_panics_total", "Event handler calls that panicked.", st.Panics)
			gauge("agentchat_bus_subscribers", "Registered event bus handlers.", st.Subscribers)
		}

		gauge("agentchat_clients", "Connected WebSocket clients.", s.ClientCount())
		gauge("agentchat_agents", "Agents in the store.", len(state.Agents))
		gauge("agentchat_conversations", "Conversations in the store.", len(state.Conversations))
		gauge("agentchat_messages", "Messages in the transcript.", len(state.Messages))
		gauge("agentchat_loading", "Whether a simulated phase is in flight.", loading)
		gauge("agentchat_pending_tasks", "Deferred engine phases waiting to fire.", deps.Engine.Pending())
		gauge("agentchat_uptime_seconds", "Seconds since the gateway started.", int64(time.Since(startTime).Seconds()))
		gauge("go_goroutines", "Number of goroutines.", runtime.NumGoroutine())
	}
}

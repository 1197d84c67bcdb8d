package gateway

import (
	"encoding/json"
	"net/http"
	"time"
)

// Version is reported by GET /api/v1/status. Overridden at build time.
var Version = "dev"

// StatusResponse is the JSON body returned by GET /api/v1/status.
type StatusResponse struct {
	Name          string        `json:"name"`
	Version       string        `json:"version"`
	UptimeSeconds int64         `json:"uptime_seconds"`
	Seq           uint64        `json:"seq"`
	Store         StoreStatus   `json:"store"`
	Gateway       GatewayStatus `json:"gateway"`
}

// StoreStatus summarises the chat state.
type StoreStatus struct {
	Agents        int    `json:"agents"`
	Conversations int    `json:"conversations"`
	Messages      int    `json:"messages"`
	ActiveAgentID string `json:"active_agent_id,omitempty"`
	Loading       bool   `json:"loading"`
	PendingTasks  int    `json:"pending_tasks"`
}

// GatewayStatus holds connection and RPC counters.
type GatewayStatus struct {
	Clients   int   `json:"clients"`
	Methods   int   `json:"methods"`
	RPCCalls  int64 `json:"rpc_calls"`
	RPCErrors int64 `json:"rpc_errors"`
}

func statusHandler(deps HandlerDeps, s *Server, startTime time.Time) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}

		seq := deps.Store.Seq()
		state := deps.Store.State()
		m := s.Metrics()
		resp := StatusResponse{
			Name:          "agentchat",
			Version:       Version,
			UptimeSeconds: int64(time.Since(startTime).Seconds()),
			Seq:           seq,
			Store: StoreStatus{
				Agents:        len(state.Agents),
				Conversations: len(state.Conversations),
				Messages:      len(state.Messages),
				ActiveAgentID: state.ActiveAgentID,
				Loading:       state.IsLoading,
				PendingTasks:  deps.Engine.Pending(),
			},
			Gateway: GatewayStatus{
				Clients:   s.ClientCount(),
				Methods:   len(s.Methods()),
				RPCCalls:  m.RPCCalls.Load(),
				RPCErrors: m.RPCErrors.Load(),
			},
		}
		writeJSON(w, resp)
	}
}

func stateHandler(deps HandlerDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		writeJSON(w, snapshot(deps.Store))
	}
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(v)
}

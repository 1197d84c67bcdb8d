package gateway

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"agentchat/internal/infra/middleware"
)

func get(t *testing.T, h http.Handler, path, token string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func TestRESTRequiresToken(t *testing.T) {
	f := newFixture(t)
	h := f.srv.Handler()
	for _, path := range []string{"/api/v1/status", "/api/v1/state", "/metrics"} {
		assert.Equal(t, http.StatusUnauthorized, get(t, h, path, "").Code, path)
		assert.Equal(t, http.StatusUnauthorized, get(t, h, path, "wrong").Code, path)
	}
}

func TestStatusEndpoint(t *testing.T) {
	f := newFixture(t)
	f.mustRPC(t, "agent.select", map[string]string{"agentId": "agent_1"}, nil)
	f.mustRPC(t, "chat.send", map[string]string{"content": "hi"}, nil)

	w := get(t, f.srv.Handler(), "/api/v1/status", testToken)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))

	var resp StatusResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
	assert.Equal(t, "agentchat", resp.Name)
	assert.Equal(t, 4, resp.Store.Agents)
	assert.Equal(t, 3, resp.Store.Conversations, "send opened a conversation")
	assert.Equal(t, 1, resp.Store.Messages)
	assert.Equal(t, "agent_1", resp.Store.ActiveAgentID)
	assert.True(t, resp.Store.Loading)
	assert.Equal(t, 1, resp.Store.PendingTasks)
	assert.Equal(t, 12, resp.Gateway.Methods)
	assert.Equal(t, int64(2), resp.Gateway.RPCCalls)
}

func TestStateEndpoint(t *testing.T) {
	f := newFixture(t)
	w := get(t, f.srv.Handler(), "/api/v1/state?token="+testToken, "")
	require.Equal(t, http.StatusOK, w.Code)

	var snap StateSnapshot
	require.NoError(t, json.NewDecoder(w.Body).Decode(&snap))
	assert.Equal(t, uint64(2), snap.Seq)
	assert.Len(t, snap.State.Agents, 4)
	assert.Equal(t, "Q4 Sales Analysis", snap.State.Conversations[0].Title)
}

func TestRESTMethodNotAllowed(t *testing.T) {
	f := newFixture(t)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/state", nil)
	req.Header.Set("Authorization", "Bearer "+testToken)
	w := httptest.NewRecorder()
	f.srv.Handler().ServeHTTP(w, req)
	assert.Equal(t, http.StatusMethodNotAllowed, w.Code)
}

func TestMetricsEndpoint(t *testing.T) {
	f := newFixture(t)
	f.mustRPC(t, "state.get", nil, nil)

	w := get(t, f.srv.Handler(), "/metrics", testToken)
	require.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	for _, line := range []string{
		"agentchat_rpc_calls_total 1",
		"agentchat_agents 4",
		"agentchat_conversations 2",
		"agentchat_loading 0",
		"# TYPE agentchat_clients gauge",
		"# TYPE agentchat_bus_events_published_total counter",
		"agentchat_bus_handler_panics_total 0",
		"agentchat_bus_events_rejected_total 0",
	} {
		assert.True(t, strings.Contains(body, line), "missing %q in\n%s", line, body)
	}
}

func TestMiddlewareWrapsHandler(t *testing.T) {
	f := newFixture(t, WithMiddleware(middleware.SecurityHeaders))
	w := get(t, f.srv.Handler(), "/api/v1/status", testToken)
	assert.Equal(t, "DENY", w.Header().Get("X-Frame-Options"))
}

func TestWithAllowedOrigins(t *testing.T) {
	s := NewServer(nil, AnonymousAuth{}, "127.0.0.1:0", discardLogger(),
		WithAllowedOrigins("https://chat.example.com", "*.internal.test"))
	assert.Contains(t, s.origins, "chat.example.com")
	assert.Contains(t, s.origins, "*.internal.test")
	assert.Contains(t, s.origins, "localhost")
}

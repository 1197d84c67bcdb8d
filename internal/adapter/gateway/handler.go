package gateway

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"agentchat/internal/domain"
	"agentchat/internal/usecase/chatstore"
	"agentchat/internal/usecase/engine"
	"agentchat/internal/usecase/simulate"
)

// HandlerDeps holds dependencies needed by RPC and REST handlers.
type HandlerDeps struct {
	Engine *engine.Engine
	Store  *chatstore.Store
	Logger *slog.Logger
}

// Payload schemas, one per method that takes parameters.
const (
	schemaEmpty = `{"type": "object"}`

	schemaAgentID = `{
		"type": "object",
		"properties": {"agentId": {"type": "string", "minLength": 1}},
		"required": ["agentId"]
	}`

	schemaPrompt = `{
		"type": "object",
		"properties": {"prompt": {"type": "string", "minLength": 1}},
		"required": ["prompt"]
	}`

	schemaSend = `{
		"type": "object",
		"properties": {"content": {"type": "string", "minLength": 1}},
		"required": ["content"]
	}`

	schemaConversationCreate = `{
		"type": "object",
		"properties": {
			"agentId": {"type": "string", "minLength": 1},
			"title": {"type": "string"}
		},
		"required": ["agentId"]
	}`

	schemaActionDispatch = `{
		"type": "object",
		"properties": {
			"type": {"type": "string", "minLength": 1},
			"payload": {}
		},
		"required": ["type"]
	}`
)

// Request and response bodies.
type (
	agentIDRequest struct {
		AgentID string `json:"agentId"`
	}
	promptRequest struct {
		Prompt string `json:"prompt"`
	}
	sendRequest struct {
		Content string `json:"content"`
	}
	conversationCreateRequest struct {
		AgentID string `json:"agentId"`
		Title   string `json:"title,omitempty"`
	}
	actionDispatchRequest struct {
		Type    domain.ActionType `json:"type"`
		Payload json.RawMessage   `json:"payload,omitempty"`
	}

	// StateSnapshot is the body of state.get and GET /api/v1/state.
	StateSnapshot struct {
		Seq   uint64           `json:"seq"`
		State domain.ChatState `json:"state"`
	}

	// ScheduledResponse reports a deferred engine phase.
	ScheduledResponse struct {
		Scheduled bool       `json:"scheduled"`
		Due       *time.Time `json:"due,omitempty"`
	}
)

// RegisterDefaultHandlers registers every built-in RPC method on s.
func RegisterDefaultHandlers(s *Server, deps HandlerDeps) error {
	methods := []struct {
		name    string
		schema  string
		handler RPCHandler
	}{
		{"state.get", schemaEmpty, stateGetHandler(deps)},
		{"agent.active", schemaEmpty, agentActiveHandler(deps)},
		{"conversation.active", schemaEmpty, conversationActiveHandler(deps)},
		{"agent.subagents", schemaAgentID, subAgentsHandler(deps)},
		{"agent.resources", schemaAgentID, resourcesHandler(deps)},
		{"agent.select", schemaAgentID, agentSelectHandler(deps)},
		{"chat.prompt", schemaPrompt, chatPromptHandler(deps)},
		{"chat.send", schemaSend, chatSendHandler(deps)},
		{"chat.new", schemaEmpty, chatNewHandler(deps)},
		{"chat.cancel", schemaEmpty, chatCancelHandler(deps)},
		{"conversation.create", schemaConversationCreate, conversationCreateHandler(deps)},
		{"action.dispatch", schemaActionDispatch, actionDispatchHandler(deps)},
	}
	for _, m := range methods {
		if err := s.RegisterMethod(m.name, m.schema, m.handler); err != nil {
			return err
		}
	}
	return nil
}

// RegisterRESTHandlers registers the HTTP endpoints, all behind token auth.
func RegisterRESTHandlers(s *Server, deps HandlerDeps) {
	startTime := time.Now()

	authed := func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			if _, err := s.auth.Authenticate(tokenFromRequest(r)); err != nil {
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}
			next(w, r)
		}
	}

	s.RegisterHTTPRoute("/api/v1/status", authed(statusHandler(deps, s, startTime)))
	s.RegisterHTTPRoute("/api/v1/state", authed(stateHandler(deps)))
	s.RegisterHTTPRoute("/metrics", authed(metricsHandler(deps, s, startTime)))
}

func decode[T any](method string, payload json.RawMessage) (T, error) {
	var req T
	if len(payload) == 0 {
		return req, nil
	}
	if err := json.Unmarshal(payload, &req); err != nil {
		return req, domain.NewDomainError("gateway."+method, domain.ErrRPCInvalidPayload, err.Error())
	}
	return req, nil
}

func encode(v any) (json.RawMessage, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encode response: %w", err)
	}
	return raw, nil
}

func snapshot(store *chatstore.Store) StateSnapshot {
	// Seq first: a concurrent dispatch can only make State newer than Seq.
	seq := store.Seq()
	return StateSnapshot{Seq: seq, State: store.State()}
}

func stateGetHandler(deps HandlerDeps) RPCHandler {
	return func(_ context.Context, _ *ClientInfo, _ json.RawMessage) (json.RawMessage, error) {
		return encode(snapshot(deps.Store))
	}
}

func agentActiveHandler(deps HandlerDeps) RPCHandler {
	return func(_ context.Context, _ *ClientInfo, _ json.RawMessage) (json.RawMessage, error) {
		var resp struct {
			Agent *domain.Agent `json:"agent"`
		}
		if a, ok := chatstore.ActiveAgent(deps.Store.State()); ok {
			resp.Agent = &a
		}
		return encode(resp)
	}
}

func conversationActiveHandler(deps HandlerDeps) RPCHandler {
	return func(_ context.Context, _ *ClientInfo, _ json.RawMessage) (json.RawMessage, error) {
		var resp struct {
			Conversation *domain.Conversation `json:"conversation"`
		}
		if c, ok := chatstore.ActiveConversation(deps.Store.State()); ok {
			resp.Conversation = &c
		}
		return encode(resp)
	}
}

func subAgentsHandler(deps HandlerDeps) RPCHandler {
	return func(_ context.Context, _ *ClientInfo, payload json.RawMessage) (json.RawMessage, error) {
		req, err := decode[agentIDRequest]("agent.subagents", payload)
		if err != nil {
			return nil, err
		}
		return encode(chatstore.SubAgents(deps.Store.State(), req.AgentID))
	}
}

func resourcesHandler(deps HandlerDeps) RPCHandler {
	return func(_ context.Context, _ *ClientInfo, payload json.RawMessage) (json.RawMessage, error) {
		req, err := decode[agentIDRequest]("agent.resources", payload)
		if err != nil {
			return nil, err
		}
		return encode(chatstore.AgentResources(deps.Store.State(), req.AgentID))
	}
}

func agentSelectHandler(deps HandlerDeps) RPCHandler {
	return func(ctx context.Context, _ *ClientInfo, payload json.RawMessage) (json.RawMessage, error) {
		req, err := decode[agentIDRequest]("agent.select", payload)
		if err != nil {
			return nil, err
		}
		if err := deps.Engine.SelectAgent(ctx, req.AgentID); err != nil {
			return nil, err
		}
		return encode(map[string]string{"status": "ok"})
	}
}

func scheduled(t *simulate.Task) ScheduledResponse {
	due := t.Due
	return ScheduledResponse{Scheduled: true, Due: &due}
}

func chatPromptHandler(deps HandlerDeps) RPCHandler {
	return func(ctx context.Context, _ *ClientInfo, payload json.RawMessage) (json.RawMessage, error) {
		req, err := decode[promptRequest]("chat.prompt", payload)
		if err != nil {
			return nil, err
		}
		task, err := deps.Engine.CreateAgentFromPrompt(ctx, req.Prompt)
		if err != nil {
			return nil, err
		}
		return encode(scheduled(task))
	}
}

func chatSendHandler(deps HandlerDeps) RPCHandler {
	return func(ctx context.Context, _ *ClientInfo, payload json.RawMessage) (json.RawMessage, error) {
		req, err := decode[sendRequest]("chat.send", payload)
		if err != nil {
			return nil, err
		}
		task, err := deps.Engine.SendMessage(ctx, req.Content)
		if err != nil {
			return nil, err
		}
		if task == nil {
			return encode(ScheduledResponse{Scheduled: false})
		}
		return encode(scheduled(task))
	}
}

func chatNewHandler(deps HandlerDeps) RPCHandler {
	return func(ctx context.Context, _ *ClientInfo, _ json.RawMessage) (json.RawMessage, error) {
		deps.Engine.NewChat(ctx)
		return encode(map[string]string{"status": "ok"})
	}
}

func chatCancelHandler(deps HandlerDeps) RPCHandler {
	return func(ctx context.Context, _ *ClientInfo, _ json.RawMessage) (json.RawMessage, error) {
		n := deps.Engine.CancelPending(ctx)
		return encode(map[string]int{"cancelled": n})
	}
}

func conversationCreateHandler(deps HandlerDeps) RPCHandler {
	return func(ctx context.Context, _ *ClientInfo, payload json.RawMessage) (json.RawMessage, error) {
		req, err := decode[conversationCreateRequest]("conversation.create", payload)
		if err != nil {
			return nil, err
		}
		agent, ok := chatstore.FindAgent(deps.Store.State(), req.AgentID)
		if !ok {
			return nil, domain.NewSubSystemError("agent", "gateway.conversation.create", domain.ErrNotFound, req.AgentID)
		}
		title := req.Title
		if title == "" {
			title = engine.NewChatTitle(agent.Name)
		}
		return encode(deps.Engine.CreateNewConversation(ctx, agent.ID, title))
	}
}

// actionDispatchHandler applies a raw action. Unlike agent.select it does not
// check that referenced ids exist; the reducer accepts any action verbatim.
func actionDispatchHandler(deps HandlerDeps) RPCHandler {
	return func(ctx context.Context, client *ClientInfo, payload json.RawMessage) (json.RawMessage, error) {
		req, err := decode[actionDispatchRequest]("action.dispatch", payload)
		if err != nil {
			return nil, err
		}
		act, err := domain.DecodeAction(req.Type, req.Payload)
		if err != nil {
			return nil, err
		}
		deps.Store.Dispatch(ctx, act)
		if deps.Logger != nil {
			deps.Logger.Debug("raw action dispatched", "action", act.Type(), "client", client.Name)
		}
		return encode(map[string]uint64{"seq": deps.Store.Seq()})
	}
}

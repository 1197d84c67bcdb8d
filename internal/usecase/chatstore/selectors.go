package chatstore

import (
	"slices"

	"agentchat/internal/domain"
)

// ActiveAgent returns the first agent whose ID equals state.ActiveAgentID.
func ActiveAgent(state domain.ChatState) (domain.Agent, bool) {
	return FindAgent(state, state.ActiveAgentID)
}

// ActiveConversation returns the first conversation whose ID equals
// state.ActiveConversationID.
func ActiveConversation(state domain.ChatState) (domain.Conversation, bool) {
	if state.ActiveConversationID == "" {
		return domain.Conversation{}, false
	}
	for _, c := range state.Conversations {
		if c.ID == state.ActiveConversationID {
			return c, true
		}
	}
	return domain.Conversation{}, false
}

// FindAgent returns the first agent with the given ID.
func FindAgent(state domain.ChatState, id string) (domain.Agent, bool) {
	if id == "" {
		return domain.Agent{}, false
	}
	for _, a := range state.Agents {
		if a.ID == id {
			return a, true
		}
	}
	return domain.Agent{}, false
}

// SubAgents returns the agents whose ParentID equals parentID, in store order.
// The result is never nil.
func SubAgents(state domain.ChatState, parentID string) []domain.Agent {
	out := []domain.Agent{}
	if parentID == "" {
		return out
	}
	for _, a := range state.Agents {
		if a.ParentID == parentID {
			out = append(out, a)
		}
	}
	return out
}

// AgentResources returns the resources of the agent with the given ID, or an
// empty list when the agent is absent.
func AgentResources(state domain.ChatState, agentID string) []domain.Resource {
	a, ok := FindAgent(state, agentID)
	if !ok || a.Resources == nil {
		return []domain.Resource{}
	}
	return a.Resources
}

// PrimaryAgents returns the top-level agents in store order.
func PrimaryAgents(state domain.ChatState) []domain.Agent {
	out := []domain.Agent{}
	for _, a := range state.Agents {
		if a.IsPrimary() {
			out = append(out, a)
		}
	}
	return out
}

// ConversationsFor returns the conversations owned by agentID, newest first.
// Conversations with equal timestamps keep their store order.
func ConversationsFor(state domain.ChatState, agentID string) []domain.Conversation {
	out := []domain.Conversation{}
	for _, c := range state.Conversations {
		if c.AgentID == agentID {
			out = append(out, c)
		}
	}
	slices.SortStableFunc(out, func(a, b domain.Conversation) int {
		return b.Timestamp.Compare(a.Timestamp)
	})
	return out
}

package chatstore

import "agentchat/internal/domain"

// Reduce returns the state that results from applying act to state.
//
// Reduce is pure: it never writes to the backing arrays of the input, so a
// snapshot taken before the call stays valid after it. Any slice it changes
// is copied first. Action types it does not recognise return state unchanged.
func Reduce(state domain.ChatState, act domain.Action) domain.ChatState {
	switch a := act.(type) {
	case domain.SetAgents:
		state.Agents = a.Agents
	case domain.SetConversations:
		state.Conversations = a.Conversations
	case domain.SetActiveConversation:
		state.ActiveConversationID = a.ID
	case domain.SetActiveAgent:
		state.ActiveAgentID = a.ID
	case domain.AddMessage:
		state.Messages = appendCopy(state.Messages, a.Message)
	case domain.SetMessages:
		state.Messages = a.Messages
	case domain.SetLoading:
		state.IsLoading = a.Loading
	case domain.CreateConversation:
		convs := make([]domain.Conversation, 0, len(state.Conversations)+1)
		convs = append(convs, a.Conversation)
		state.Conversations = append(convs, state.Conversations...)
		state.ActiveConversationID = a.Conversation.ID
	case domain.UpdateConversation:
		state.Conversations = replaceConversation(state.Conversations, a.Conversation)
	}
	return state
}

// appendCopy appends v to a fresh copy of s.
func appendCopy[T any](s []T, v ...T) []T {
	out := make([]T, 0, len(s)+len(v))
	out = append(out, s...)
	return append(out, v...)
}

// replaceConversation swaps every entry whose ID matches c. Without a match
// the input slice is returned as is.
func replaceConversation(convs []domain.Conversation, c domain.Conversation) []domain.Conversation {
	var out []domain.Conversation
	for i := range convs {
		if convs[i].ID != c.ID {
			continue
		}
		if out == nil {
			out = make([]domain.Conversation, len(convs))
			copy(out, convs)
		}
		out[i] = c
	}
	if out == nil {
		return convs
	}
	return out
}

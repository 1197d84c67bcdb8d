package domain

import (
	"encoding/json"
	"fmt"
)

// ActionType names a state transition.
type ActionType string

const (
	ActionSetAgents             ActionType = "SET_AGENTS"
	ActionSetConversations      ActionType = "SET_CONVERSATIONS"
	ActionSetActiveConversation ActionType = "SET_ACTIVE_CONVERSATION"
	ActionSetActiveAgent        ActionType = "SET_ACTIVE_AGENT"
	ActionAddMessage            ActionType = "ADD_MESSAGE"
	ActionSetMessages           ActionType = "SET_MESSAGES"
	ActionSetLoading            ActionType = "SET_LOADING"
	ActionCreateConversation    ActionType = "CREATE_CONVERSATION"
	ActionUpdateConversation    ActionType = "UPDATE_CONVERSATION"
)

// Action is a request to transition ChatState. Reducers ignore action
// types they do not know.
type Action interface {
	Type() ActionType
}

// SetAgents replaces the agent list.
type SetAgents struct {
	Agents []Agent `json:"agents"`
}

// SetConversations replaces the conversation list.
type SetConversations struct {
	Conversations []Conversation `json:"conversations"`
}

// SetActiveConversation selects a conversation. An empty ID clears the selection.
type SetActiveConversation struct {
	ID string `json:"id"`
}

// SetActiveAgent selects an agent. An empty ID clears the selection.
type SetActiveAgent struct {
	ID string `json:"id"`
}

// AddMessage appends to the transcript.
type AddMessage struct {
	Message Message `json:"message"`
}

// SetMessages replaces the transcript.
type SetMessages struct {
	Messages []Message `json:"messages"`
}

// SetLoading sets the global in-flight flag.
type SetLoading struct {
	Loading bool `json:"loading"`
}

// CreateConversation prepends a conversation and makes it active.
type CreateConversation struct {
	Conversation Conversation `json:"conversation"`
}

// UpdateConversation replaces the conversation with the same ID.
type UpdateConversation struct {
	Conversation Conversation `json:"conversation"`
}

func (SetAgents) Type() ActionType             { return ActionSetAgents }
func (SetConversations) Type() ActionType      { return ActionSetConversations }
func (SetActiveConversation) Type() ActionType { return ActionSetActiveConversation }
func (SetActiveAgent) Type() ActionType        { return ActionSetActiveAgent }
func (AddMessage) Type() ActionType            { return ActionAddMessage }
func (SetMessages) Type() ActionType           { return ActionSetMessages }
func (SetLoading) Type() ActionType            { return ActionSetLoading }
func (CreateConversation) Type() ActionType    { return ActionCreateConversation }
func (UpdateConversation) Type() ActionType    { return ActionUpdateConversation }

// DecodeAction builds an Action from its type name and JSON payload.
// Unknown type names return ErrNotFound; malformed payloads return ErrInvalidInput.
func DecodeAction(typ ActionType, payload json.RawMessage) (Action, error) {
	var act Action
	switch typ {
	case ActionSetAgents:
		act = &SetAgents{}
	case ActionSetConversations:
		act = &SetConversations{}
	case ActionSetActiveConversation:
		act = &SetActiveConversation{}
	case ActionSetActiveAgent:
		act = &SetActiveAgent{}
	case ActionAddMessage:
		act = &AddMessage{}
	case ActionSetMessages:
		act = &SetMessages{}
	case ActionSetLoading:
		act = &SetLoading{}
	case ActionCreateConversation:
		act = &CreateConversation{}
	case ActionUpdateConversation:
		act = &UpdateConversation{}
	default:
		return nil, NewSubSystemError("action", "DecodeAction", ErrNotFound, string(typ))
	}

	if len(payload) > 0 && string(payload) != "null" {
		if err := json.Unmarshal(payload, act); err != nil {
			return nil, NewDomainError("DecodeAction", ErrInvalidInput, fmt.Sprintf("%s: %v", typ, err))
		}
	}
	return deref(act), nil
}

// deref returns the value form of a decoded action so reducers can switch
// on value types only.
func deref(act Action) Action {
	switch a := act.(type) {
	case *SetAgents:
		return *a
	case *SetConversations:
		return *a
	case *SetActiveConversation:
		return *a
	case *SetActiveAgent:
		return *a
	case *AddMessage:
		return *a
	case *SetMessages:
		return *a
	case *SetLoading:
		return *a
	case *CreateConversation:
		return *a
	case *UpdateConversation:
		return *a
	}
	return act
}

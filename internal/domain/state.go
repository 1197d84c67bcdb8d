package domain

// ChatState is the whole of the application state.
//
// Optional ids use the empty string for "none". Messages is a single flat
// transcript shared by every agent; switching agents does not filter it.
type ChatState struct {
	Agents               []Agent        `json:"agents"`
	Conversations        []Conversation `json:"conversations"`
	ActiveConversationID string         `json:"activeConversationId"`
	ActiveAgentID        string         `json:"activeAgentId"`
	Messages             []Message      `json:"messages"`
	IsLoading            bool           `json:"isLoading"`
}

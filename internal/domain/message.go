package domain

import "time"

// Role constants for message roles.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// SystemAgentID owns the first prompt message, before any agent exists.
// It is a sentinel and never names a real agent.
const SystemAgentID = "system"

// Message is one entry in the global chat transcript.
type Message struct {
	ID        string    `json:"id"`
	Content   string    `json:"content"`
	Role      string    `json:"role"`
	Timestamp time.Time `json:"timestamp"`
	AgentID   string    `json:"agentId"`
}

// Conversation is the metadata of a chat thread with one agent.
// AgentID may reference an agent that is not loaded.
type Conversation struct {
	ID           string    `json:"id"`
	AgentID      string    `json:"agentId"`
	Title        string    `json:"title"`
	LastMessage  string    `json:"lastMessage"`
	Timestamp    time.Time `json:"timestamp"`
	MessageCount int       `json:"messageCount"`
}

// Package seed provides the sample agents and conversations loaded at startup.
package seed

import (
	"context"
	"time"

	"agentchat/internal/domain"
	"agentchat/internal/usecase/chatstore"
)

// Agents returns the sample agent roster.
func Agents() []domain.Agent {
	return []domain.Agent{
		{
			ID:           "agent_1",
			Name:         "Data Analyst Agent",
			Avatar:       "🤖",
			Type:         domain.AgentPrimary,
			Capabilities: []string{"Data Analysis", "Excel Processing", "Report Generation"},
			Resources: []domain.Resource{
				{ID: "excel_1", Name: "Sales Data Q4.xlsx", Type: domain.ResourceExcel, Icon: "📊",
					Description: "Quarterly sales data", Permissions: []string{"read", "write"}},
				{ID: "db_1", Name: "Analytics Database", Type: domain.ResourceDatabase, Icon: "🗄️",
					Description: "Main analytics database", Permissions: []string{"read"}},
			},
			IsActive: true,
		},
		{
			ID:           "agent_2",
			Name:         "Customer Support Agent",
			Avatar:       "🎧",
			Type:         domain.AgentPrimary,
			Capabilities: []string{"Customer Service", "Ticket Management", "Knowledge Base"},
			Resources: []domain.Resource{
				{ID: "kb_1", Name: "Knowledge Base", Type: domain.ResourceDatabase, Icon: "📚",
					Description: "Customer support knowledge base", Permissions: []string{"read"}},
				{ID: "api_1", Name: "CRM API", Type: domain.ResourceAPI, Icon: "🔗",
					Description: "Customer relationship management API", Permissions: []string{"read", "write"}},
			},
			IsActive: false,
		},
		{
			ID:           "agent_3",
			Name:         "Excel Processor",
			Avatar:       "📊",
			Type:         domain.AgentSubAgent,
			ParentID:     "agent_1",
			Capabilities: []string{"Excel Processing", "Data Validation"},
			Resources: []domain.Resource{
				{ID: "excel_2", Name: "Template Library", Type: domain.ResourceFile, Icon: "📁",
					Description: "Excel templates and macros", Permissions: []string{"read"}},
			},
			IsActive: false,
		},
		{
			ID:           "agent_4",
			Name:         "Report Generator",
			Avatar:       "📈",
			Type:         domain.AgentSubAgent,
			ParentID:     "agent_1",
			Capabilities: []string{"Report Generation", "Visualization"},
			Resources: []domain.Resource{
				{ID: "tool_1", Name: "Charting Tools", Type: domain.ResourceAPI, Icon: "📊",
					Description: "Chart and visualization tools", Permissions: []string{"read", "write"}},
			},
			IsActive: false,
		},
	}
}

// Conversations returns the sample conversations, timestamped relative to now.
func Conversations(now time.Time) []domain.Conversation {
	return []domain.Conversation{
		{
			ID:           "conv_1",
			AgentID:      "agent_1",
			Title:        "Q4 Sales Analysis",
			LastMessage:  "Can you analyze the sales trends?",
			Timestamp:    now.Add(-2 * time.Hour),
			MessageCount: 15,
		},
		{
			ID:           "conv_2",
			AgentID:      "agent_2",
			Title:        "Customer Issue #1234",
			LastMessage:  "The customer is asking about refund policy",
			Timestamp:    now.Add(-30 * time.Minute),
			MessageCount: 8,
		},
	}
}

// Load replaces the store's agents and conversations with the samples.
func Load(ctx context.Context, store *chatstore.Store, now time.Time) {
	store.Dispatch(ctx,
		domain.SetAgents{Agents: Agents()},
		domain.SetConversations{Conversations: Conversations(now)},
	)
}

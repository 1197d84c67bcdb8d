package chatstore

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"agentchat/internal/domain"
)

func sampleAgents() []domain.Agent {
	return []domain.Agent{
		{ID: "p1", Name: "Lead", Type: domain.AgentPrimary, Resources: []domain.Resource{{ID: "r1", Name: "DB"}}},
		{ID: "s1", Name: "Helper A", Type: domain.AgentSubAgent, ParentID: "p1"},
		{ID: "p2", Name: "Other", Type: domain.AgentPrimary},
		{ID: "s2", Name: "Helper B", Type: domain.AgentSubAgent, ParentID: "p1"},
		{ID: "s3", Name: "Helper C", Type: domain.AgentSubAgent, ParentID: "p2"},
	}
}

func TestActiveAgentScenario(t *testing.T) {
	agentA := domain.Agent{ID: "a1", Type: domain.AgentPrimary}
	state := Reduce(domain.ChatState{}, domain.SetAgents{Agents: []domain.Agent{agentA}})
	state = Reduce(state, domain.SetActiveAgent{ID: "a1"})

	got, ok := ActiveAgent(state)
	require.True(t, ok)
	assert.Equal(t, agentA.ID, got.ID)

	state = Reduce(state, domain.SetActiveAgent{ID: "zz"})
	_, ok = ActiveAgent(state)
	assert.False(t, ok)
}

func TestActiveConversation_None(t *testing.T) {
	_, ok := ActiveConversation(domain.ChatState{Conversations: []domain.Conversation{{ID: ""}}})
	assert.False(t, ok)
}

func TestSubAgents(t *testing.T) {
	state := domain.ChatState{Agents: sampleAgents()}

	subs := SubAgents(state, "p1")
	require.Len(t, subs, 2)
	assert.Equal(t, "s1", subs[0].ID)
	assert.Equal(t, "s2", subs[1].ID)

	assert.Empty(t, SubAgents(state, "s1"))
	assert.Empty(t, SubAgents(state, "unknown"))
	assert.NotNil(t, SubAgents(state, "unknown"))
	assert.Empty(t, SubAgents(state, ""))
}

func TestAgentResources(t *testing.T) {
	state := domain.ChatState{Agents: sampleAgents()}

	res := AgentResources(state, "p1")
	require.Len(t, res, 1)
	assert.Equal(t, "r1", res[0].ID)

	assert.Empty(t, AgentResources(state, "p2"))
	assert.NotNil(t, AgentResources(state, "missing"))
}

func TestPrimaryAgents(t *testing.T) {
	primaries := PrimaryAgents(domain.ChatState{Agents: sampleAgents()})
	require.Len(t, primaries, 2)
	assert.Equal(t, "p1", primaries[0].ID)
	assert.Equal(t, "p2", primaries[1].ID)
}

func TestConversationsFor_NewestFirst(t *testing.T) {
	base := time.Date(2025, 1, 1, 10, 0, 0, 0, time.UTC)
	state := domain.ChatState{Conversations: []domain.Conversation{
		{ID: "old", AgentID: "p1", Timestamp: base},
		{ID: "other", AgentID: "p2", Timestamp: base.Add(time.Hour)},
		{ID: "new", AgentID: "p1", Timestamp: base.Add(2 * time.Hour)},
		{ID: "tie", AgentID: "p1", Timestamp: base},
	}}

	got := ConversationsFor(state, "p1")
	ids := make([]string, len(got))
	for i, c := range got {
		ids[i] = c.ID
	}
	assert.Equal(t, []string{"new", "old", "tie"}, ids)
	assert.Equal(t, "old", state.Conversations[0].ID, "input must not be reordered")
}

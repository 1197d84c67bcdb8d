package components

import (
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"agentchat/internal/adapter/tui/theme"
	"agentchat/internal/domain"
	"agentchat/internal/usecase/seed"
)

var now = time.Date(2025, 5, 1, 8, 0, 42, 0, time.UTC)

func seededState() domain.ChatState {
	return domain.ChatState{
		Agents:        seed.Agents(),
		Conversations: seed.Conversations(now),
	}
}

func key(s string) tea.KeyMsg {
	switch s {
	case "up":
		return tea.KeyMsg{Type: tea.KeyUp}
	case "down":
		return tea.KeyMsg{Type: tea.KeyDown}
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case " ":
		return tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func newAgentList(state domain.ChatState) AgentListModel {
	m := NewAgentList()
	m.SetSize(40, 100)
	m.SetState(state)
	return m
}

func TestAgentListView(t *testing.T) {
	m := newAgentList(seededState())
	view := m.View()

	assert.Contains(t, view, "Agents & Conversations")
	assert.Contains(t, view, "Data Analyst Agent")
	assert.Contains(t, view, "Excel Processor")
	assert.Contains(t, view, "Report Generator")
	assert.Contains(t, view, "Customer Support Agent")
	assert.Contains(t, view, "Q4 Sales Analysis")
	assert.Contains(t, view, "06:00:42")
	assert.Contains(t, view, "15 messages")
	assert.Contains(t, view, "8 messages")
}

func TestAgentListCursorSkipsConversations(t *testing.T) {
	m := newAgentList(seededState())
	assert.Equal(t, "agent_1", m.Selected())

	m, _ = m.Update(key("down"))
	assert.Equal(t, "agent_3", m.Selected())
	m, _ = m.Update(key("down"))
	assert.Equal(t, "agent_4", m.Selected())
	m, _ = m.Update(key("down"))
	assert.Equal(t, "agent_2", m.Selected())
	m, _ = m.Update(key("down"))
	assert.Equal(t, "agent_2", m.Selected(), "cursor stops at the last agent")

	m, _ = m.Update(key("up"))
	assert.Equal(t, "agent_4", m.Selected())
}

func TestAgentListEnterSelects(t *testing.T) {
	m := newAgentList(seededState())
	m, _ = m.Update(key("down"))

	_, cmd := m.Update(key("enter"))
	require.NotNil(t, cmd)
	assert.Equal(t, AgentSelectedMsg{AgentID: "agent_3"}, cmd())
}

func TestAgentListNewConversationUsesSection(t *testing.T) {
	m := newAgentList(seededState())
	m, _ = m.Update(key("down")) // Excel Processor, under agent_1

	_, cmd := m.Update(key("n"))
	require.NotNil(t, cmd)
	assert.Equal(t, NewConversationMsg{AgentID: "agent_1"}, cmd())
}

func TestAgentListSpaceFolds(t *testing.T) {
	m := newAgentList(seededState())
	m, _ = m.Update(key("down"))
	m, _ = m.Update(key(" "))

	assert.False(t, m.Expanded("agent_1"))
	assert.Equal(t, "agent_1", m.Selected(), "cursor returns to the section head")
	assert.NotContains(t, m.View(), "Excel Processor")

	m, _ = m.Update(key("down"))
	assert.Equal(t, "agent_2", m.Selected())

	m, _ = m.Update(key("up"))
	m, _ = m.Update(key(" "))
	assert.True(t, m.Expanded("agent_1"))
	assert.Contains(t, m.View(), "Excel Processor")
}

func TestAgentListKeepsCursorAcrossStates(t *testing.T) {
	state := seededState()
	m := newAgentList(state)
	for range 3 {
		m, _ = m.Update(key("down"))
	}
	require.Equal(t, "agent_2", m.Selected())

	state.Agents = append([]domain.Agent{{ID: "agent_0", Name: "Newcomer", Type: domain.AgentPrimary}}, state.Agents...)
	m.SetState(state)
	assert.Equal(t, "agent_2", m.Selected())
}

func TestAgentListConversationsNewestFirst(t *testing.T) {
	state := seededState()
	state.Conversations = append(state.Conversations, domain.Conversation{
		ID: "conv_9", AgentID: "agent_1", Title: "Fresh Thread", Timestamp: now, MessageCount: 0,
	})
	view := newAgentList(state).View()

	fresh := strings.Index(view, "Fresh Thread")
	old := strings.Index(view, "Q4 Sales Analysis")
	require.True(t, fresh >= 0 && old >= 0)
	assert.Less(t, fresh, old)
}

func TestAgentListMarksActiveAgent(t *testing.T) {
	state := seededState()
	state.ActiveAgentID = "agent_2"
	view := newAgentList(state).View()

	for _, line := range strings.Split(view, "\n") {
		if strings.Contains(line, "Customer Support Agent") {
			assert.Contains(t, line, theme.SymbolInfo)
			return
		}
	}
	t.Fatal("active agent line not rendered")
}

func TestAgentListEmpty(t *testing.T) {
	m := newAgentList(domain.ChatState{})
	assert.Equal(t, "", m.Selected())
	assert.Contains(t, m.View(), "No agents yet")

	m2, cmd := m.Update(key("enter"))
	assert.Nil(t, cmd)
	assert.Equal(t, "", m2.Selected())
}

package chat

import (
	"context"
	"log/slog"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"agentchat/internal/adapter/tui/components"
	"agentchat/internal/domain"
	"agentchat/internal/usecase/chatstore"
	"agentchat/internal/usecase/engine"
	"agentchat/internal/usecase/seed"
	"agentchat/internal/usecase/simulate"
)

var start = time.Date(2025, 5, 1, 8, 0, 42, 0, time.UTC)

type harness struct {
	eng   *engine.Engine
	store *chatstore.Store
	sched *simulate.ManualScheduler
	m     Model
}

func newHarness(t *testing.T, typingDelay time.Duration) *harness {
	t.Helper()
	h := &harness{sched: simulate.NewManualScheduler(start)}
	h.store = chatstore.New(nil, slog.Default(), chatstore.WithClock(h.sched.Now))
	seed.Load(context.Background(), h.store, start)
	h.eng = engine.New(h.store, h.sched, engine.DefaultConfig(), slog.Default(), engine.WithClock(h.sched.Now))
	t.Cleanup(h.eng.Close)

	h.m = NewModel(Deps{Engine: h.eng, TypingDelay: typingDelay, Now: h.sched.Now})
	h.send(tea.WindowSizeMsg{Width: 180, Height: 50})
	return h
}

// send feeds msg to the model and returns the resulting command.
func (h *harness) send(msg tea.Msg) tea.Cmd {
	next, cmd := h.m.Update(msg)
	h.m = next.(Model)
	return cmd
}

// flush fires every scheduled phase and delivers the change notification.
func (h *harness) flush() {
	h.sched.FlushAll()
	h.send(StateChangedMsg{Seq: h.store.Seq()})
}

func (h *harness) notes() []string {
	var out []string
	for _, n := range h.m.chatView.Messages.Notes {
		out = append(out, n.Content)
	}
	return out
}

func TestModelInitialView(t *testing.T) {
	h := newHarness(t, 0)
	view := h.m.View()

	assert.Contains(t, view, "Agents & Conversations")
	assert.Contains(t, view, "Data Analyst Agent")
	assert.Contains(t, view, "AI Assistant")
	assert.Contains(t, view, "Welcome to AI Agent System")
	assert.Contains(t, view, "No Agent Selected")
	assert.Equal(t, components.PaneChat, h.m.Focused())
	assert.Equal(t, h.store.Seq(), h.m.Seq())
}

func TestModelBeforeWindowSize(t *testing.T) {
	h := newHarness(t, 0)
	m := NewModel(Deps{Engine: h.eng})
	assert.Equal(t, "  Initializing...", m.View())
}

func TestModelPromptCreatesTeam(t *testing.T) {
	h := newHarness(t, 0)

	cmd := h.send(components.InputSubmitMsg{Value: "Organize my week"})
	assert.Nil(t, cmd)
	assert.True(t, h.m.State().IsLoading)
	assert.Contains(t, h.m.View(), "Creating agents...")
	assert.Equal(t, 1, h.eng.Pending())

	h.flush()
	state := h.m.State()
	assert.False(t, state.IsLoading)
	active, ok := chatstore.ActiveAgent(state)
	require.True(t, ok)
	assert.Equal(t, "Task Coordinator 44", active.Name)

	view := h.m.View()
	assert.Contains(t, view, "Task Coordinator 44")
	assert.Contains(t, view, "Task Management System")
	assert.NotContains(t, view, "Creating agents...")
}

func TestModelStaleStateChangeIgnored(t *testing.T) {
	h := newHarness(t, 0)
	seq := h.m.Seq()

	h.store.Dispatch(context.Background(), domain.SetLoading{Loading: true})
	h.send(StateChangedMsg{Seq: seq})
	assert.False(t, h.m.State().IsLoading, "an old sequence does not repaint")

	h.send(StateChangedMsg{Seq: h.store.Seq()})
	assert.True(t, h.m.State().IsLoading)
}

func TestModelBusyGuard(t *testing.T) {
	h := newHarness(t, 0)
	h.send(components.InputSubmitMsg{Value: "analyze sales"})
	h.send(components.InputSubmitMsg{Value: "and again"})

	assert.Equal(t, 1, h.eng.Pending())
	assert.Contains(t, h.notes(), "Still working on the previous message. Use /cancel to stop it.")
	assert.Len(t, h.store.State().Messages, 1)
}

func TestModelTypingLock(t *testing.T) {
	h := newHarness(t, 500*time.Millisecond)
	h.send(components.AgentSelectedMsg{AgentID: "agent_2"})

	cmd := h.send(components.InputSubmitMsg{Value: "hello"})
	require.NotNil(t, cmd)
	assert.True(t, h.m.Typing())

	h.flush()
	h.send(components.InputSubmitMsg{Value: "too soon"})
	assert.Contains(t, h.notes(), "Still working on the previous message. Use /cancel to stop it.")

	h.send(TypingDoneMsg{Gen: 0})
	assert.True(t, h.m.Typing(), "a stale timer does not unlock")
	h.send(TypingDoneMsg{Gen: 1})
	assert.False(t, h.m.Typing())

	h.send(components.InputSubmitMsg{Value: "now"})
	assert.Equal(t, 1, h.eng.Pending())
}

func TestModelSendToActiveAgent(t *testing.T) {
	h := newHarness(t, 0)
	h.send(components.AgentSelectedMsg{AgentID: "agent_2"})
	assert.Equal(t, "agent_2", h.m.State().ActiveAgentID)
	assert.Contains(t, h.m.View(), "Start a conversation with Customer Support Agent")

	h.send(components.InputSubmitMsg{Value: "my order is late"})
	assert.Contains(t, h.m.View(), "Thinking...")
	h.flush()

	state := h.m.State()
	require.Len(t, state.Messages, 2)
	assert.Equal(t, engine.EchoReply("my order is late"), state.Messages[1].Content)
	view := h.m.View()
	assert.Contains(t, view, "my order is late")
	assert.Contains(t, view, "Knowledge Base")
}

func TestModelSelectUnknownAgent(t *testing.T) {
	h := newHarness(t, 0)
	h.send(components.AgentSelectedMsg{AgentID: "ghost"})

	assert.Empty(t, h.m.State().ActiveAgentID)
	require.Len(t, h.m.chatView.Messages.Notes, 1)
	assert.Equal(t, components.RoleError, h.m.chatView.Messages.Notes[0].Role)
	assert.Contains(t, h.notes()[0], "Agent Not Found")
}

func TestModelNewConversationFromAgentList(t *testing.T) {
	h := newHarness(t, 0)
	h.send(components.NewConversationMsg{AgentID: "agent_2"})

	state := h.m.State()
	assert.Equal(t, "agent_2", state.ActiveAgentID)
	conv, ok := chatstore.ActiveConversation(state)
	require.True(t, ok)
	assert.Equal(t, engine.NewChatTitle("Customer Support Agent"), conv.Title)
	assert.Equal(t, components.PaneChat, h.m.Focused())
}

func TestModelSlashCommands(t *testing.T) {
	h := newHarness(t, 0)
	h.send(components.AgentSelectedMsg{AgentID: "agent_1"})

	h.send(components.InputSubmitMsg{Value: "/help"})
	require.Len(t, h.notes(), 1)
	assert.Contains(t, h.notes()[0], "/cancel")

	h.send(components.InputSubmitMsg{Value: "/bogus"})
	assert.Contains(t, h.notes(), "Unknown command: /bogus. Type /help for available commands.")

	h.send(components.InputSubmitMsg{Value: "/cancel"})
	assert.Contains(t, h.notes(), "Nothing to cancel.")

	h.send(components.InputSubmitMsg{Value: "/clear"})
	assert.Empty(t, h.notes())

	h.send(components.InputSubmitMsg{Value: "/new"})
	state := h.m.State()
	assert.Empty(t, state.ActiveAgentID)
	assert.Empty(t, state.Messages)
	assert.Contains(t, h.m.View(), "Welcome to AI Agent System")

	cmd := h.send(components.InputSubmitMsg{Value: "/quit"})
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
	assert.Equal(t, "Goodbye!\n", h.m.View())
}

func TestModelCancelCommand(t *testing.T) {
	h := newHarness(t, 0)
	h.send(components.InputSubmitMsg{Value: "analyze data"})
	require.Equal(t, 1, h.eng.Pending())

	h.send(components.InputSubmitMsg{Value: "/cancel"})
	assert.Zero(t, h.eng.Pending())
	assert.False(t, h.m.State().IsLoading)
	require.NotEmpty(t, h.notes())
	assert.Contains(t, h.notes()[len(h.notes())-1], "Cancelled 1 pending task(s).")

	h.sched.FlushAll()
	assert.Len(t, h.store.State().Agents, 4, "a cancelled team is never created")
}

func TestModelCtrlC(t *testing.T) {
	h := newHarness(t, 0)
	h.send(components.InputSubmitMsg{Value: "analyze data"})

	cmd := h.send(tea.KeyMsg{Type: tea.KeyCtrlC})
	assert.Nil(t, cmd, "first Ctrl+C cancels pending work")
	assert.Zero(t, h.eng.Pending())

	cmd = h.send(tea.KeyMsg{Type: tea.KeyCtrlC})
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
}

func TestModelTypingSubmits(t *testing.T) {
	h := newHarness(t, 0)
	h.send(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("hi there")})

	cmd := h.send(tea.KeyMsg{Type: tea.KeyEnter})
	require.NotNil(t, cmd)
	assert.Equal(t, components.InputSubmitMsg{Value: "hi there"}, cmd())
}

func TestModelPaneFocus(t *testing.T) {
	h := newHarness(t, 0)

	h.send(tea.KeyMsg{Type: tea.KeyTab})
	assert.Equal(t, components.PaneResources, h.m.Focused())
	h.send(tea.KeyMsg{Type: tea.KeyTab})
	assert.Equal(t, components.PaneAgents, h.m.Focused())
	assert.False(t, h.m.input.Enabled)

	for range 3 {
		h.send(tea.KeyMsg{Type: tea.KeyDown})
	}
	cmd := h.send(tea.KeyMsg{Type: tea.KeyEnter})
	require.NotNil(t, cmd)
	msg := cmd()
	assert.Equal(t, components.AgentSelectedMsg{AgentID: "agent_2"}, msg)

	h.send(msg)
	view := h.m.View()
	assert.Contains(t, view, "Knowledge Base")
	assert.Contains(t, view, "CRM API")

	h.send(tea.KeyMsg{Type: tea.KeyEsc})
	assert.Equal(t, components.PaneChat, h.m.Focused())
	assert.True(t, h.m.input.Enabled)

	h.send(tea.KeyMsg{Type: tea.KeyShiftTab})
	assert.Equal(t, components.PaneAgents, h.m.Focused())
}

func TestModelNarrowLayout(t *testing.T) {
	h := newHarness(t, 0)
	h.send(tea.WindowSizeMsg{Width: 80, Height: 30})

	h.send(tea.KeyMsg{Type: tea.KeyTab})
	assert.Equal(t, components.PaneChat, h.m.Focused())

	view := h.m.View()
	assert.Contains(t, view, "AI Assistant")
	assert.NotContains(t, view, "Agents & Conversations")
	assert.NotContains(t, view, "Resources & Permissions")
}

func TestModelQuitMsg(t *testing.T) {
	h := newHarness(t, 0)
	cmd := h.send(QuitMsg{})
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
}

package chat

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"agentchat/internal/adapter/tui/components"
	"agentchat/internal/adapter/tui/theme"
	"agentchat/internal/adapter/tui/uxerror"
	"agentchat/internal/domain"
	"agentchat/internal/usecase/chatstore"
	"agentchat/internal/usecase/engine"
)

// DefaultTypingDelay is how long input stays locked after a submit.
const DefaultTypingDelay = 500 * time.Millisecond

// Deps are the collaborators of the root model.
type Deps struct {
	Engine *engine.Engine
	Logger *slog.Logger
	// TypingDelay locks input after each submit. Zero disables the lock.
	TypingDelay time.Duration
	// Now stamps local notices. Defaults to time.Now.
	Now func() time.Time
}

// Model is the root Bubble Tea model.
type Model struct {
	deps  Deps
	store *chatstore.Store
	state domain.ChatState
	seq   uint64

	agents    components.AgentListModel
	chatView  components.ChatViewModel
	resources components.ResourceListModel
	input     components.InputAreaModel
	statusBar components.StatusBarModel
	panes     components.PanesModel
	spinner   spinner.Model

	typing    bool
	typingGen uint64
	width     int
	height    int
	quitting  bool
}

// NewModel creates the root model and reads the current store snapshot.
func NewModel(deps Deps) Model {
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}
	if deps.Now == nil {
		deps.Now = time.Now
	}

	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(theme.ColorInfo)

	input := components.NewInputArea()
	input.Autocomplete = components.NewAutocomplete([]components.CommandDef{
		{Name: "/help", Description: "Show commands and keys"},
		{Name: "/new", Description: "Start a new chat"},
		{Name: "/cancel", Description: "Cancel pending agent work"},
		{Name: "/clear", Description: "Clear notices"},
		{Name: "/quit", Description: "Exit agentchat"},
	})

	sb := components.NewStatusBar()
	sb.Hints = defaultHints()

	m := Model{
		deps:      deps,
		store:     deps.Engine.Store(),
		agents:    components.NewAgentList(),
		chatView:  components.NewChatView(),
		resources: components.NewResourceList(),
		input:     input,
		statusBar: sb,
		panes:     components.NewPanes(),
		spinner:   s,
	}
	m.refresh()
	return m
}

// State returns the snapshot the model last rendered.
func (m Model) State() domain.ChatState { return m.state }

// Seq returns the store sequence of the rendered snapshot.
func (m Model) Seq() uint64 { return m.seq }

// Focused returns the pane with keyboard focus.
func (m Model) Focused() components.Pane { return m.panes.Focused }

// Typing reports whether input is locked after a submit.
func (m Model) Typing() bool { return m.typing }

// Init starts the spinner.
func (m Model) Init() tea.Cmd {
	return m.spinner.Tick
}

// Update handles all incoming messages.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.layout()
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case components.InputSubmitMsg:
		return m.handleSubmit(msg.Value)

	case components.AgentSelectedMsg:
		if err := m.deps.Engine.SelectAgent(context.Background(), msg.AgentID); err != nil {
			m.showError(err)
		}
		m.refresh()
		return m, nil

	case components.NewConversationMsg:
		agent, ok := chatstore.FindAgent(m.state, msg.AgentID)
		if !ok {
			m.showError(domain.NewSubSystemError("agent", "chat.NewConversation", domain.ErrNotFound, msg.AgentID))
			return m, nil
		}
		m.deps.Engine.CreateNewConversation(context.Background(), agent.ID, engine.NewChatTitle(agent.Name))
		m.focus(components.PaneChat)
		m.refresh()
		return m, nil

	case StateChangedMsg:
		if msg.Seq != 0 && msg.Seq <= m.seq {
			return m, nil
		}
		m.refresh()
		return m, nil

	case TypingDoneMsg:
		if msg.Gen == m.typingGen {
			m.typing = false
			m.refresh()
		}
		return m, nil

	case QuitMsg:
		m.quitting = true
		return m, tea.Quit

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.MouseMsg:
		var cmd tea.Cmd
		m.chatView, cmd = m.chatView.Update(msg)
		return m, cmd
	}

	return m, nil
}

// View renders the three panels and the status bar.
func (m Model) View() string {
	if m.quitting {
		return "Goodbye!\n"
	}
	if m.width == 0 {
		return "  Initializing..."
	}
	body := m.panes.Render(m.agents.View(), m.chatPanel(), m.resources.View())
	return lipgloss.JoinVertical(lipgloss.Left, body, m.statusBar.View())
}

func (m Model) chatPanel() string {
	w := m.panes.InnerWidth(components.PaneChat)
	title, subtitle := m.chatHeader()

	indicator := ""
	if m.busy() {
		label := "Thinking..."
		if m.state.IsLoading && !m.hasActiveAgent() {
			label = "Creating agents..."
		}
		indicator = m.spinner.View() + " " + theme.TextMuted.Render(label)
	}

	return strings.Join([]string{
		theme.PanelTitle.Render(title),
		theme.PanelSubtitle.Render(components.Truncate(subtitle, max(w-2, 1))),
		components.Divider(w),
		m.chatView.View(),
		indicator,
		components.Divider(w),
		m.input.View(),
	}, "\n")
}

func (m Model) chatHeader() (title, subtitle string) {
	if agent, ok := chatstore.ActiveAgent(m.state); ok {
		return agent.Avatar + " " + agent.Name, strings.Join(agent.Capabilities, ", ")
	}
	if len(m.state.Messages) == 0 {
		return "AI Assistant", "Describe your task and I'll create the right agents for you"
	}
	return "Select an Agent", "Choose an agent from the left panel to start chatting"
}

func (m Model) hasActiveAgent() bool {
	_, ok := chatstore.ActiveAgent(m.state)
	return ok
}

// busy reports whether a submit must wait.
func (m Model) busy() bool {
	return m.state.IsLoading || m.typing
}

// refresh re-reads the store and pushes the snapshot into every panel.
// Seq is read first so a racing action can only make it lag the state.
func (m *Model) refresh() {
	m.seq = m.store.Seq()
	m.state = m.store.State()

	m.agents.SetState(m.state)
	m.resources.SetState(m.state)

	agent, ok := chatstore.ActiveAgent(m.state)
	if ok {
		m.chatView.SetTranscript(components.FromTranscript(m.state.Messages, m.authorName))
		m.chatView.SetEmpty(conversationStart(agent))
		m.input.SetPlaceholder("Message " + agent.Name + "...")
		m.statusBar.AgentName = agent.Avatar + " " + agent.Name
	} else {
		// The transcript stays hidden until an agent is active.
		m.chatView.SetTranscript(nil)
		m.chatView.SetEmpty(welcome())
		m.input.SetPlaceholder("Describe your task...")
		m.statusBar.AgentName = ""
	}

	m.statusBar.Conversation = ""
	if c, ok := chatstore.ActiveConversation(m.state); ok {
		m.statusBar.Conversation = c.Title
	}
	m.statusBar.Extra = ""
	if p := m.deps.Engine.Pending(); p > 0 {
		m.statusBar.Extra = fmt.Sprintf("%d pending", p)
	}
}

func (m Model) authorName(agentID string) string {
	if a, ok := chatstore.FindAgent(m.state, agentID); ok {
		return a.Avatar + " " + a.Name
	}
	return ""
}

// layout recalculates sizes for all sub-models.
func (m *Model) layout() {
	const statusH = 1
	m.panes.SetSize(m.width, m.height-statusH)
	m.statusBar.SetWidth(m.width)

	h := m.panes.InnerHeight()
	m.agents.SetSize(m.panes.InnerWidth(components.PaneAgents), h)
	m.resources.SetSize(m.panes.InnerWidth(components.PaneResources), h)

	chatW := m.panes.InnerWidth(components.PaneChat)
	m.input.SetWidth(chatW)
	// header(2) + dividers(2) + indicator(1) + input
	inputH := 2 + m.input.Autocomplete.Height()
	m.chatView.SetSize(chatW, max(h-5-inputH, 3))
}

// handleKey processes keyboard input.
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyCtrlC:
		if m.deps.Engine.Pending() > 0 && m.cancelPending() {
			return m, nil
		}
		m.quitting = true
		return m, tea.Quit

	case tea.KeyCtrlN:
		return m.handleSlashCommand("/new", nil)

	case tea.KeyTab:
		if m.panes.Focused == components.PaneChat && m.input.Autocomplete.Visible {
			break
		}
		m.panes.Next()
		m.focus(m.panes.Focused)
		return m, nil

	case tea.KeyShiftTab:
		if m.panes.Focused == components.PaneChat && m.input.Autocomplete.Visible {
			break
		}
		m.panes.Prev()
		m.focus(m.panes.Focused)
		return m, nil

	case tea.KeyEsc:
		if m.panes.Focused != components.PaneChat {
			m.focus(components.PaneChat)
			return m, nil
		}

	case tea.KeyPgUp, tea.KeyPgDown:
		var cmd tea.Cmd
		m.chatView, cmd = m.chatView.Update(msg)
		return m, cmd
	}

	var cmd tea.Cmd
	switch m.panes.Focused {
	case components.PaneAgents:
		m.agents, cmd = m.agents.Update(msg)
	case components.PaneResources:
		m.resources, cmd = m.resources.Update(msg)
	default:
		popup := m.input.Autocomplete.Visible
		m.input, cmd = m.input.Update(msg)
		if popup != m.input.Autocomplete.Visible {
			m.layout()
		}
	}
	return m, cmd
}

// focus moves keyboard focus to p. Only the chat pane owns the cursor.
func (m *Model) focus(p components.Pane) {
	m.panes.Focused = p
	m.input.SetEnabled(p == components.PaneChat)
	switch p {
	case components.PaneAgents:
		m.statusBar.Hints = agentHints()
	case components.PaneResources:
		m.statusBar.Hints = resourceHints()
	default:
		m.statusBar.Hints = defaultHints()
	}
}

// handleSubmit routes input: slash commands run immediately, text goes to
// the active agent or, with none active, becomes a task prompt.
func (m Model) handleSubmit(value string) (tea.Model, tea.Cmd) {
	if cmd, args, ok := components.ParseSlashCommand(value); ok {
		return m.handleSlashCommand(cmd, args)
	}

	value = strings.TrimSpace(value)
	if value == "" {
		return m, nil
	}
	if m.busy() {
		m.note("Still working on the previous message. Use /cancel to stop it.")
		return m, nil
	}

	ctx := context.Background()
	var err error
	if m.hasActiveAgent() {
		_, err = m.deps.Engine.SendMessage(ctx, value)
	} else {
		_, err = m.deps.Engine.CreateAgentFromPrompt(ctx, value)
	}
	if err != nil {
		m.showError(err)
		return m, nil
	}

	var cmd tea.Cmd
	if m.deps.TypingDelay > 0 {
		m.typing = true
		m.typingGen++
		cmd = typingDoneCmd(m.deps.TypingDelay, m.typingGen)
	}
	m.refresh()
	return m, cmd
}

// handleSlashCommand processes a slash command.
func (m Model) handleSlashCommand(cmd string, _ []string) (tea.Model, tea.Cmd) {
	switch cmd {
	case "/help":
		m.note(helpText)
		return m, nil

	case "/new":
		m.deps.Engine.NewChat(context.Background())
		m.chatView.ClearNotes()
		m.focus(components.PaneChat)
		m.refresh()
		return m, nil

	case "/cancel":
		if !m.cancelPending() {
			m.note("Nothing to cancel.")
		}
		return m, nil

	case "/clear":
		m.chatView.ClearNotes()
		return m, nil

	case "/quit", "/exit":
		m.quitting = true
		return m, tea.Quit

	default:
		m.note(fmt.Sprintf("Unknown command: %s. Type /help for available commands.", cmd))
		return m, nil
	}
}

// cancelPending cancels deferred engine work and reports whether any was pending.
func (m *Model) cancelPending() bool {
	n := m.deps.Engine.CancelPending(context.Background())
	m.typing = false
	m.refresh()
	if n == 0 {
		return false
	}
	m.note(fmt.Sprintf("%s Cancelled %d pending task(s).", theme.SymbolSuccess, n))
	m.deps.Logger.Info("pending work cancelled from the terminal", "count", n)
	return true
}

func (m *Model) note(text string) {
	m.chatView.AddNote(components.ChatMessage{
		Role:      components.RoleSystem,
		Content:   text,
		Timestamp: m.deps.Now(),
	})
}

func (m *Model) showError(err error) {
	m.deps.Logger.Warn("terminal action failed", "error", err)
	m.chatView.AddNote(components.ChatMessage{
		Role:      components.RoleError,
		Content:   uxerror.Humanize(err).Render(),
		Timestamp: m.deps.Now(),
	})
}

func welcome() string {
	return strings.Join([]string{
		theme.Bold.Render("Welcome to AI Agent System"),
		"",
		"Describe what you want to accomplish and I'll automatically create the right AI agents",
		"with the necessary tools and permissions to help you.",
		"",
		theme.TextMuted.Render(`Example: "I need to analyze sales data and create a report"`),
	}, "\n")
}

func conversationStart(a domain.Agent) string {
	return strings.Join([]string{
		a.Avatar,
		theme.Bold.Render("Start a conversation with " + a.Name),
		theme.TextMuted.Render("Ask me anything about " + strings.ToLower(strings.Join(a.Capabilities, ", "))),
	}, "\n")
}

const helpText = `Commands:
  /help      Show this help
  /new       Start a new chat
  /cancel    Cancel pending agent work
  /clear     Clear notices
  /quit      Exit agentchat

Keys:
  Enter      Send
  Tab        Next panel
  Shift+Tab  Previous panel
  Esc        Back to chat
  Ctrl+N     New chat
  Ctrl+C     Cancel pending work, or quit
  PgUp/PgDn  Scroll chat

Agents panel:
  Up/Down    Move
  Enter      Select agent
  n          New conversation
  Space      Show or hide sub-agents`

func defaultHints() []components.KeyHint {
	return []components.KeyHint{
		{Key: "Enter", Desc: "Send"},
		{Key: "Tab", Desc: "Panels"},
		{Key: "Ctrl+N", Desc: "New chat"},
		{Key: "/help", Desc: "Help"},
		{Key: "Ctrl+C", Desc: "Quit"},
	}
}

func agentHints() []components.KeyHint {
	return []components.KeyHint{
		{Key: "↑/↓", Desc: "Move"},
		{Key: "Enter", Desc: "Select"},
		{Key: "n", Desc: "New conversation"},
		{Key: "Space", Desc: "Fold"},
		{Key: "Esc", Desc: "Chat"},
	}
}

func resourceHints() []components.KeyHint {
	return []components.KeyHint{
		{Key: "↑/↓", Desc: "Scroll"},
		{Key: "Tab", Desc: "Panels"},
		{Key: "Esc", Desc: "Chat"},
	}
}

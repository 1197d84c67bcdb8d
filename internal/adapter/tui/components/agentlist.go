package components

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"agentchat/internal/adapter/tui/theme"
	"agentchat/internal/domain"
	"agentchat/internal/usecase/chatstore"
)

// AgentSelectedMsg asks the root model to make an agent active.
type AgentSelectedMsg struct {
	AgentID string
}

// NewConversationMsg asks the root model to open a conversation with an agent.
type NewConversationMsg struct {
	AgentID string
}

// agentRow is one selectable line of the list.
type agentRow struct {
	agent     domain.Agent
	primaryID string // owning section
	line      int    // index into the rendered lines
}

// AgentListModel is the left column: each primary agent with its sub-agents
// and its conversations, newest first. The cursor moves over agents only.
type AgentListModel struct {
	state     domain.ChatState
	rows      []agentRow
	lines     []string
	cursor    int
	collapsed map[string]bool // primary id -> sub-agents hidden
	offset    int
	width     int
	height    int
}

// NewAgentList creates an empty list. Every section starts expanded.
func NewAgentList() AgentListModel {
	return AgentListModel{collapsed: make(map[string]bool)}
}

// SetSize updates the inner dimensions.
func (m *AgentListModel) SetSize(w, h int) {
	m.width = w
	m.height = h
	m.rebuild()
	m.clampCursor()
}

// SetState re-reads the store snapshot, keeping the cursor on the same agent.
func (m *AgentListModel) SetState(state domain.ChatState) {
	prev := m.Selected()
	m.state = state
	m.rebuild()
	for i, r := range m.rows {
		if r.agent.ID == prev {
			m.cursor = i
			break
		}
	}
	m.clampCursor()
}

// Selected returns the agent id under the cursor, or "".
func (m AgentListModel) Selected() string {
	if m.cursor < 0 || m.cursor >= len(m.rows) {
		return ""
	}
	return m.rows[m.cursor].agent.ID
}

// Expanded reports whether the section of primaryID shows its sub-agents.
func (m AgentListModel) Expanded(primaryID string) bool {
	return !m.collapsed[primaryID]
}

// Update handles navigation keys. It is only called while the column has focus.
func (m AgentListModel) Update(msg tea.Msg) (AgentListModel, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok || len(m.rows) == 0 {
		return m, nil
	}
	row := m.rows[m.cursor]

	switch key.String() {
	case "up", "k":
		m.cursor--
		m.clampCursor()
	case "down", "j":
		m.cursor++
		m.clampCursor()
	case "home", "g":
		m.cursor = 0
		m.clampCursor()
	case "end", "G":
		m.cursor = len(m.rows) - 1
		m.clampCursor()
	case "enter":
		id := row.agent.ID
		return m, func() tea.Msg { return AgentSelectedMsg{AgentID: id} }
	case "n":
		id := row.primaryID
		return m, func() tea.Msg { return NewConversationMsg{AgentID: id} }
	case " ":
		m.collapsed[row.primaryID] = !m.collapsed[row.primaryID]
		m.rebuild()
		for i, r := range m.rows {
			if r.agent.ID == row.primaryID {
				m.cursor = i
				break
			}
		}
		m.clampCursor()
	}
	return m, nil
}

// View renders the header and the visible window of the list.
func (m AgentListModel) View() string {
	header := theme.PanelTitle.Render("Agents & Conversations")
	if len(m.lines) == 0 {
		return header + "\n\n" + theme.EmptyBody.Width(m.width).Render("No agents yet")
	}
	body := m.lines
	offset := 0
	if m.height > 2 {
		offset = theme.Clamp(m.offset, 0, len(body))
		body = body[offset:min(offset+m.height-2, len(body))]
	}
	out := make([]string, len(body))
	cursorLine := -1
	if m.cursor < len(m.rows) {
		cursorLine = m.rows[m.cursor].line - offset
	}
	for i, l := range body {
		if i == cursorLine {
			l = theme.AgentSelected.Render(l)
		}
		out[i] = l
	}
	return header + "\n\n" + strings.Join(out, "\n")
}

func (m *AgentListModel) rebuild() {
	m.rows = nil
	m.lines = nil
	if m.collapsed == nil {
		m.collapsed = make(map[string]bool)
	}
	w := max(m.width, 20)

	for _, a := range chatstore.PrimaryAgents(m.state) {
		subs := chatstore.SubAgents(m.state, a.ID)

		mark := "  "
		if a.ID == m.state.ActiveAgentID {
			mark = theme.AgentActiveMark.Render(theme.SymbolInfo) + " "
		}
		fold := ""
		if len(subs) > 0 {
			fold = " " + theme.SymbolExpanded
			if m.collapsed[a.ID] {
				fold = " " + theme.SymbolFolded
			}
		}
		m.rows = append(m.rows, agentRow{agent: a, primaryID: a.ID, line: len(m.lines)})
		m.lines = append(m.lines,
			mark+a.Avatar+" "+theme.AgentName.Render(Truncate(a.Name, w-8))+fold,
			"     "+theme.TextMuted.Render(Truncate(strings.Join(a.Capabilities, ", "), w-6)),
		)

		if !m.collapsed[a.ID] {
			for _, s := range subs {
				smark := "    "
				if s.ID == m.state.ActiveAgentID {
					smark = "  " + theme.AgentActiveMark.Render(theme.SymbolInfo) + " "
				}
				m.rows = append(m.rows, agentRow{agent: s, primaryID: a.ID, line: len(m.lines)})
				m.lines = append(m.lines,
					smark+"│ "+s.Avatar+" "+theme.SubAgentName.Render(Truncate(s.Name, w-10)),
				)
			}
		}

		for _, c := range chatstore.ConversationsFor(m.state, a.ID) {
			m.lines = append(m.lines,
				"    "+theme.SymbolChat+" "+theme.ConversationTitle.Render(Truncate(c.Title, w-8)),
				"       "+theme.TextMuted.Render(Truncate(c.LastMessage, w-8)),
				"       "+theme.Timestamp.Render(fmt.Sprintf("%s %s %d messages", Clock(c.Timestamp), theme.SymbolBullet, c.MessageCount)),
			)
		}
		m.lines = append(m.lines, "")
	}
}

func (m *AgentListModel) clampCursor() {
	m.cursor = theme.Clamp(m.cursor, 0, max(len(m.rows)-1, 0))
	if len(m.rows) == 0 || m.height <= 2 {
		m.offset = 0
		return
	}
	visible := m.height - 2
	line := m.rows[m.cursor].line
	if line < m.offset {
		m.offset = line
	}
	if line+1 >= m.offset+visible {
		m.offset = line + 2 - visible
	}
	m.offset = theme.Clamp(m.offset, 0, max(len(m.lines)-visible, 0))
}

package components

import (
	"github.com/charmbracelet/lipgloss"

	"agentchat/internal/adapter/tui/theme"
)

// Pane identifies one of the three columns.
type Pane int

const (
	PaneAgents Pane = iota
	PaneChat
	PaneResources
	paneCount
)

// String names the pane for hints and logs.
func (p Pane) String() string {
	switch p {
	case PaneAgents:
		return "agents"
	case PaneChat:
		return "chat"
	case PaneResources:
		return "resources"
	default:
		return "unknown"
	}
}

// PanesModel lays out the agents, chat and resources columns and tracks
// which one has keyboard focus. Narrow terminals collapse to the chat
// column alone.
type PanesModel struct {
	Focused Pane
	width   int
	height  int
}

// NewPanes creates a layout focused on the chat column.
func NewPanes() PanesModel {
	return PanesModel{Focused: PaneChat}
}

// SetSize updates the available dimensions.
func (m *PanesModel) SetSize(w, h int) {
	m.width = w
	m.height = h
	if !m.ShowSides() {
		m.Focused = PaneChat
	}
}

// ShowSides reports whether the side columns fit.
func (m PanesModel) ShowSides() bool {
	return m.width >= theme.MinThreePaneWidth
}

// Next moves focus to the following visible pane.
func (m *PanesModel) Next() {
	if !m.ShowSides() {
		m.Focused = PaneChat
		return
	}
	m.Focused = (m.Focused + 1) % paneCount
}

// Prev moves focus to the preceding visible pane.
func (m *PanesModel) Prev() {
	if !m.ShowSides() {
		m.Focused = PaneChat
		return
	}
	m.Focused = (m.Focused + paneCount - 1) % paneCount
}

// Width returns the outer width of pane p, border included. Side columns
// take a quarter of the terminal each, at least 24 columns.
func (m PanesModel) Width(p Pane) int {
	if !m.ShowSides() {
		if p == PaneChat {
			return m.width
		}
		return 0
	}
	side := max(m.width/4, 24)
	if p == PaneChat {
		return m.width - 2*side
	}
	return side
}

// InnerWidth is Width minus the border.
func (m PanesModel) InnerWidth(p Pane) int {
	return max(m.Width(p)-2, 0)
}

// InnerHeight is the content height inside a bordered pane.
func (m PanesModel) InnerHeight() int {
	return max(m.height-2, 0)
}

// Render draws the visible panes side by side, highlighting the focused one.
func (m PanesModel) Render(agents, chat, resources string) string {
	frame := func(p Pane, content string) string {
		style := theme.UnfocusedBorder
		if p == m.Focused {
			style = theme.FocusBorder
		}
		return style.
			Width(m.InnerWidth(p)).
			Height(m.InnerHeight()).
			MaxHeight(m.height).
			Render(content)
	}
	if !m.ShowSides() {
		return frame(PaneChat, chat)
	}
	return lipgloss.JoinHorizontal(lipgloss.Top,
		frame(PaneAgents, agents),
		frame(PaneChat, chat),
		frame(PaneResources, resources),
	)
}

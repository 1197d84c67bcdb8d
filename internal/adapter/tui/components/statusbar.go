package components

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"

	"agentchat/internal/adapter/tui/theme"
)

// KeyHint is one keybinding shown in the status bar.
type KeyHint struct {
	Key  string // e.g. "Enter"
	Desc string // e.g. "Send"
}

// StatusBarModel renders the bottom line: key hints on the left, the
// active agent and conversation on the right.
type StatusBarModel struct {
	Hints        []KeyHint
	AgentName    string
	Conversation string
	Extra        string // transient status, e.g. "Creating agents..."
	width        int
}

// NewStatusBar creates an empty status bar.
func NewStatusBar() StatusBarModel {
	return StatusBarModel{}
}

// SetWidth updates the available width.
func (m *StatusBarModel) SetWidth(w int) {
	m.width = w
}

// View renders the status bar as a single line.
func (m StatusBarModel) View() string {
	hints := make([]string, 0, len(m.Hints))
	for _, h := range m.Hints {
		hints = append(hints, theme.StatusKey.Render(h.Key)+": "+h.Desc)
	}
	left := strings.Join(hints, "  "+theme.Dim.Render("|")+"  ")

	var parts []string
	if m.AgentName != "" {
		parts = append(parts, m.AgentName)
	}
	if m.Conversation != "" {
		parts = append(parts, m.Conversation)
	}
	right := theme.TextMuted.Render(strings.Join(parts, " "+theme.SymbolBullet+" "))
	if m.Extra != "" {
		if right != "" {
			right += "  "
		}
		right += theme.TextInfo.Render(m.Extra)
	}

	if m.width <= 0 {
		return theme.StatusBar.Render(left + "  " + right)
	}

	// The bar's padding eats into the width, so size the line to what is left.
	inner := max(m.width-theme.StatusBar.GetHorizontalFrameSize(), 0)
	gap := inner - lipgloss.Width(left) - lipgloss.Width(right)
	if gap < 1 {
		// Hints go first when the agent and status do not fit beside them.
		left = ""
		gap = inner - lipgloss.Width(right)
	}
	line := left + strings.Repeat(" ", max(gap, 0)) + right
	return theme.StatusBar.Width(m.width).Render(ansi.Truncate(line, inner, theme.SymbolEllipsis))
}

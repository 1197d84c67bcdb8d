package components

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"agentchat/internal/adapter/tui/theme"
)

// CommandDef is one slash command offered while typing.
type CommandDef struct {
	Name        string // e.g. "/new"
	Description string
}

// AutocompleteModel suggests slash commands for a "/word" being typed. The
// command set is small, so every match is listed and nothing is clipped.
type AutocompleteModel struct {
	Commands []CommandDef
	Filtered []CommandDef
	Selected int
	Visible  bool
	nameW    int
}

// NewAutocomplete creates a popup over commands.
func NewAutocomplete(commands []CommandDef) AutocompleteModel {
	m := AutocompleteModel{Commands: commands}
	for _, c := range commands {
		m.nameW = max(m.nameW, lipgloss.Width(c.Name))
	}
	return m
}

// Suggest refreshes the matches for the current input. Only a lone slash
// word is completed; anything else closes the popup.
func (m *AutocompleteModel) Suggest(input string) {
	if !strings.HasPrefix(input, "/") || strings.ContainsAny(input, " \n") {
		m.Hide()
		return
	}
	word := strings.ToLower(input)
	m.Filtered = nil
	for _, c := range m.Commands {
		if strings.HasPrefix(c.Name, word) {
			m.Filtered = append(m.Filtered, c)
		}
	}
	m.Visible = len(m.Filtered) > 0
	if m.Selected >= len(m.Filtered) {
		m.Selected = 0
	}
}

// HandleKey drives the open popup. Tab and the arrows cycle, Enter accepts
// and Esc closes. handled is false for keys the popup leaves to the input.
func (m *AutocompleteModel) HandleKey(k tea.KeyMsg) (accepted string, handled bool) {
	if !m.Visible {
		return "", false
	}
	n := len(m.Filtered)
	switch k.Type {
	case tea.KeyTab, tea.KeyDown:
		m.Selected = (m.Selected + 1) % n
	case tea.KeyShiftTab, tea.KeyUp:
		m.Selected = (m.Selected + n - 1) % n
	case tea.KeyEnter:
		accepted = m.Filtered[m.Selected].Name
		m.Hide()
	case tea.KeyEsc:
		m.Hide()
	default:
		return "", false
	}
	return accepted, true
}

// Hide closes the popup.
func (m *AutocompleteModel) Hide() {
	m.Visible = false
	m.Filtered = nil
	m.Selected = 0
}

// Height is the number of rows the popup takes, border included.
func (m AutocompleteModel) Height() int {
	if !m.Visible {
		return 0
	}
	return len(m.Filtered) + 2
}

// View renders the matches with names in an aligned column.
func (m AutocompleteModel) View() string {
	if !m.Visible {
		return ""
	}
	arrow := theme.SymbolArrowR + " "
	blank := strings.Repeat(" ", lipgloss.Width(arrow))
	rows := make([]string, len(m.Filtered))
	for i, c := range m.Filtered {
		mark := blank
		if i == m.Selected {
			mark = theme.TextInfo.Render(arrow)
		}
		pad := strings.Repeat(" ", m.nameW-lipgloss.Width(c.Name))
		rows[i] = mark + c.Name + pad + "  " + theme.TextMuted.Render(c.Description)
	}
	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(theme.ColorBorderActive).
		Padding(0, 1).
		Render(strings.Join(rows, "\n"))
}

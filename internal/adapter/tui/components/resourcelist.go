package components

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"agentchat/internal/adapter/tui/theme"
	"agentchat/internal/domain"
	"agentchat/internal/usecase/chatstore"
)

// ResourceListModel is the right column: the resources and permission
// labels of the active agent.
type ResourceListModel struct {
	agent    domain.Agent
	hasAgent bool
	offset   int
	width    int
	height   int
}

// NewResourceList creates an empty resource column.
func NewResourceList() ResourceListModel {
	return ResourceListModel{}
}

// SetSize updates the inner dimensions.
func (m *ResourceListModel) SetSize(w, h int) {
	m.width = w
	m.height = h
}

// SetState shows the active agent of state, if any.
func (m *ResourceListModel) SetState(state domain.ChatState) {
	agent, ok := chatstore.ActiveAgent(state)
	if agent.ID != m.agent.ID {
		m.offset = 0
	}
	m.agent, m.hasAgent = agent, ok
}

// Update scrolls the cards while the column has focus.
func (m ResourceListModel) Update(msg tea.Msg) (ResourceListModel, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}
	switch key.String() {
	case "up", "k":
		m.offset = max(m.offset-1, 0)
	case "down", "j":
		m.offset++
	case "home", "g":
		m.offset = 0
	}
	return m, nil
}

// View renders the header and either a placeholder or one card per resource.
func (m ResourceListModel) View() string {
	var b strings.Builder
	b.WriteString(theme.PanelTitle.Render("Resources & Permissions"))
	if m.hasAgent {
		b.WriteString("\n" + theme.PanelSubtitle.Render(Truncate("Resources available to "+m.agent.Name, max(m.width-2, 1))))
	}
	b.WriteString("\n\n")

	w := max(m.width, 20)
	switch {
	case !m.hasAgent:
		b.WriteString(emptyBlock(w, "No Agent Selected", "Select an agent to view their resources and permissions"))
		return b.String()
	case len(m.agent.Resources) == 0:
		b.WriteString(emptyBlock(w, "No Resources", "This agent doesn't have any assigned resources"))
		return b.String()
	}

	cards := make([]string, 0, len(m.agent.Resources))
	for _, r := range m.agent.Resources {
		cards = append(cards, ResourceCard(r, w))
	}
	lines := strings.Split(strings.Join(cards, "\n"), "\n")
	offset := theme.Clamp(m.offset, 0, max(len(lines)-1, 0))
	b.WriteString(strings.Join(lines[offset:], "\n"))
	return b.String()
}

// ResourceCard renders one resource: type label, name, icon, description
// and a mark per permission label.
func ResourceCard(r domain.Resource, width int) string {
	inner := max(width-4, 10)
	title := ResourceTypeLabel(r.Type) + " " + theme.Bold.Render(Truncate(r.Name, inner-8)) + " " + r.Icon
	perms := make([]string, 0, len(r.Permissions))
	for _, p := range r.Permissions {
		perms = append(perms, PermissionBadge(p))
	}
	body := []string{
		title,
		theme.TextMuted.Render(wrapText(r.Description, inner)),
		theme.Dim.Render("Permissions:"),
		strings.Join(perms, "  "),
	}
	return theme.ResourceCard.Width(inner).Render(strings.Join(body, "\n"))
}

// ResourceTypeLabel returns the colored tag for a resource type.
func ResourceTypeLabel(t domain.ResourceType) string {
	var (
		label string
		color lipgloss.TerminalColor
	)
	switch t {
	case domain.ResourceExcel:
		label, color = "XLS", theme.ColorSuccess
	case domain.ResourceDatabase:
		label, color = "DB", theme.ColorInfo
	case domain.ResourceAPI:
		label, color = "API", theme.ColorAccent
	case domain.ResourceFile:
		label, color = "FILE", theme.ColorWarning
	case domain.ResourcePermission:
		label, color = "PERM", theme.ColorError
	default:
		label, color = "RES", theme.ColorMuted
	}
	return lipgloss.NewStyle().Foreground(color).Bold(true).Render("[" + label + "]")
}

// PermissionBadge renders a permission label with a check for read or
// write and a cross for anything else.
func PermissionBadge(p string) string {
	label := capitalize(p)
	if domain.PermissionGranted(p) {
		return theme.PermissionGranted.Render(theme.SymbolSuccess) + " " + label
	}
	return theme.PermissionRevoked.Render(theme.SymbolError) + " " + label
}

func capitalize(s string) string {
	r := []rune(s)
	if len(r) == 0 {
		return s
	}
	return strings.ToUpper(string(r[0])) + string(r[1:])
}

func emptyBlock(width int, title, body string) string {
	return theme.EmptyTitle.Width(width).Render(title) + "\n" +
		theme.EmptyBody.Width(width).Render(body)
}

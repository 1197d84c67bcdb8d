package components

import (
	"sort"
	"strings"
	"time"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"

	"agentchat/internal/adapter/tui/theme"
	"agentchat/internal/domain"
)

// MessageRole identifies the sender of a rendered message.
type MessageRole string

const (
	RoleUser      MessageRole = "user"
	RoleAssistant MessageRole = "assistant"
	RoleSystem    MessageRole = "system" // local notice, never stored
	RoleError     MessageRole = "error"  // local error card, never stored
)

// ChatMessage is one rendered entry of the chat panel.
type ChatMessage struct {
	ID        string
	Role      MessageRole
	Content   string
	Author    string // display name for assistant messages
	Rendered  string // cached glamour output; empty means not yet rendered
	Timestamp time.Time
}

// FromTranscript converts store messages for display. name resolves an
// agent id to a label; unknown ids fall back to the generic bot label.
func FromTranscript(msgs []domain.Message, name func(agentID string) string) []ChatMessage {
	out := make([]ChatMessage, 0, len(msgs))
	for _, m := range msgs {
		cm := ChatMessage{
			ID:        m.ID,
			Role:      RoleUser,
			Content:   m.Content,
			Timestamp: m.Timestamp,
		}
		if m.Role == domain.RoleAssistant {
			cm.Role = RoleAssistant
			if name != nil {
				cm.Author = name(m.AgentID)
			}
		}
		out = append(out, cm)
	}
	return out
}

// MessageListModel renders the store transcript interleaved with local
// notices. Notices are bounded by MaxNotes.
type MessageListModel struct {
	Transcript []ChatMessage
	Notes      []ChatMessage
	MaxNotes   int
	width      int
	mdRenderer *glamour.TermRenderer
	cache      map[string]string // message id -> glamour output at width
}

// NewMessageList creates an empty message list.
func NewMessageList() MessageListModel {
	return MessageListModel{MaxNotes: 50, cache: make(map[string]string)}
}

// SetWidth updates the rendering width and drops cached renders.
func (m *MessageListModel) SetWidth(w int) {
	if w == m.width {
		return
	}
	m.width = w
	m.mdRenderer = nil
	m.cache = make(map[string]string)
}

// SetTranscript replaces the store messages. Cached markdown survives for
// messages whose id is unchanged.
func (m *MessageListModel) SetTranscript(msgs []ChatMessage) {
	m.Transcript = msgs
}

// AddNote appends a local notice.
func (m *MessageListModel) AddNote(msg ChatMessage) {
	if msg.Timestamp.IsZero() {
		msg.Timestamp = time.Now()
	}
	m.Notes = append(m.Notes, msg)
	if m.MaxNotes > 0 && len(m.Notes) > m.MaxNotes {
		m.Notes = m.Notes[len(m.Notes)-m.MaxNotes:]
	}
}

// ClearNotes removes every local notice.
func (m *MessageListModel) ClearNotes() {
	m.Notes = nil
}

// Len returns how many entries View renders.
func (m *MessageListModel) Len() int {
	return len(m.Transcript) + len(m.Notes)
}

// Entries returns transcript and notes merged by timestamp. Entries with
// equal timestamps keep transcript-before-notes order.
func (m *MessageListModel) Entries() []ChatMessage {
	all := make([]ChatMessage, 0, m.Len())
	all = append(all, m.Transcript...)
	all = append(all, m.Notes...)
	sort.SliceStable(all, func(i, j int) bool {
		return all[i].Timestamp.Before(all[j].Timestamp)
	})
	return all
}

// View renders every entry as a single string.
func (m *MessageListModel) View() string {
	entries := m.Entries()
	if len(entries) == 0 {
		return ""
	}
	width := ContentWidth(m.width)

	var sb strings.Builder
	for i := range entries {
		if i > 0 {
			sb.WriteString("\n\n")
		}
		sb.WriteString(m.renderMessage(&entries[i], width))
	}
	return sb.String()
}

func (m *MessageListModel) renderMessage(msg *ChatMessage, width int) string {
	header := m.roleLabel(msg) + " " + theme.Timestamp.Render(Clock(msg.Timestamp))

	var body string
	switch msg.Role {
	case RoleAssistant:
		body = strings.TrimSpace(m.markdown(msg, width))
	case RoleError:
		body = theme.TextError.Render(wrapText(msg.Content, width-2))
	default:
		body = "  " + wrapText(msg.Content, width-2)
	}
	if body == "" {
		return header
	}
	return header + "\n" + body
}

func (m *MessageListModel) roleLabel(msg *ChatMessage) string {
	switch msg.Role {
	case RoleUser:
		return theme.UserLabel.Render(theme.SymbolUser)
	case RoleAssistant:
		name := msg.Author
		if name == "" {
			name = theme.SymbolBot
		}
		return theme.BotLabel.Render(name)
	case RoleSystem:
		return theme.SystemLabel.Render("System")
	case RoleError:
		return theme.ErrorLabel.Render(theme.SymbolError + " Error")
	default:
		return theme.TextMuted.Render(string(msg.Role))
	}
}

// markdown renders assistant content with glamour, caching by message id.
func (m *MessageListModel) markdown(msg *ChatMessage, width int) string {
	if msg.Rendered != "" {
		return msg.Rendered
	}
	if m.cache == nil {
		m.cache = make(map[string]string)
	}
	if out, ok := m.cache[msg.ID]; ok && msg.ID != "" {
		return out
	}
	if m.mdRenderer == nil {
		r, err := glamour.NewTermRenderer(
			glamour.WithAutoStyle(),
			glamour.WithWordWrap(width),
		)
		if err != nil {
			return "  " + msg.Content
		}
		m.mdRenderer = r
	}
	out, err := m.mdRenderer.Render(msg.Content)
	if err != nil {
		return "  " + msg.Content
	}
	if msg.ID != "" {
		m.cache[msg.ID] = out
	}
	return out
}

// Clock formats t as a wall-clock time, HH:MM:SS.
func Clock(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format("15:04:05")
}

// wrapText wraps s to width runes, indenting continuation lines by two spaces.
func wrapText(s string, width int) string {
	if width <= 0 {
		return s
	}
	var out []string
	for _, para := range strings.Split(s, "\n") {
		runes := []rune(para)
		for len(runes) > width {
			idx := -1
			for i := width - 1; i > 0; i-- {
				if runes[i] == ' ' {
					idx = i
					break
				}
			}
			if idx <= 0 {
				idx = width
			}
			out = append(out, string(runes[:idx]))
			runes = runes[idx:]
			for len(runes) > 0 && runes[0] == ' ' {
				runes = runes[1:]
			}
		}
		out = append(out, string(runes))
	}
	return strings.Join(out, "\n  ")
}

// Truncate shortens s to max runes, ending with an ellipsis when cut.
func Truncate(s string, max int) string {
	r := []rune(s)
	if max <= 0 || len(r) <= max {
		return s
	}
	if max == 1 {
		return theme.SymbolEllipsis
	}
	return string(r[:max-1]) + theme.SymbolEllipsis
}

// ContentWidth returns the body width for a panel w columns wide.
func ContentWidth(w int) int {
	return theme.Clamp(w-4, 20, theme.MaxContentWidth)
}

// Divider renders a horizontal line at the given width.
func Divider(width int) string {
	if width < 0 {
		width = 0
	}
	return lipgloss.NewStyle().
		Foreground(theme.ColorBorder).
		Render(strings.Repeat("─", width))
}

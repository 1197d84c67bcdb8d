package components

import (
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
)

// ChatViewModel wraps a viewport around the message list. It follows the
// bottom while the user is there and holds position once they scroll up.
type ChatViewModel struct {
	Viewport viewport.Model
	Messages MessageListModel
	Empty    string // shown instead of the list when it has no entries
	ready    bool
	atBottom bool
}

// NewChatView creates a chat view. The viewport is sized on the first SetSize.
func NewChatView() ChatViewModel {
	return ChatViewModel{
		Messages: NewMessageList(),
		atBottom: true,
	}
}

// SetSize sets the viewport dimensions and re-renders.
func (m *ChatViewModel) SetSize(w, h int) {
	m.Messages.SetWidth(w)
	if !m.ready {
		m.Viewport = viewport.New(w, h)
		m.Viewport.MouseWheelEnabled = true
		m.Viewport.MouseWheelDelta = 3
		m.ready = true
	} else {
		m.Viewport.Width = w
		m.Viewport.Height = h
	}
	m.refresh()
}

// SetTranscript replaces the store messages.
func (m *ChatViewModel) SetTranscript(msgs []ChatMessage) {
	m.Messages.SetTranscript(msgs)
	m.refresh()
}

// SetEmpty sets the placeholder drawn while there is nothing to list.
func (m *ChatViewModel) SetEmpty(s string) {
	if s == m.Empty {
		return
	}
	m.Empty = s
	m.refresh()
}

// AddNote appends a local notice.
func (m *ChatViewModel) AddNote(msg ChatMessage) {
	m.Messages.AddNote(msg)
	m.refresh()
}

// ClearNotes drops local notices and returns to the bottom.
func (m *ChatViewModel) ClearNotes() {
	m.Messages.ClearNotes()
	m.atBottom = true
	m.refresh()
}

// Update handles viewport scrolling and tracks the follow state.
func (m ChatViewModel) Update(msg tea.Msg) (ChatViewModel, tea.Cmd) {
	if !m.ready {
		return m, nil
	}
	var cmd tea.Cmd
	m.Viewport, cmd = m.Viewport.Update(msg)
	m.atBottom = m.Viewport.AtBottom()
	return m, cmd
}

// View renders the viewport.
func (m ChatViewModel) View() string {
	if !m.ready {
		return "  Initializing..."
	}
	return m.Viewport.View()
}

func (m *ChatViewModel) refresh() {
	if !m.ready {
		return
	}
	if m.Messages.Len() == 0 {
		m.Viewport.SetContent(m.Empty)
		m.Viewport.GotoTop()
		return
	}
	m.Viewport.SetContent(m.Messages.View())
	if m.atBottom {
		m.Viewport.GotoBottom()
	}
}

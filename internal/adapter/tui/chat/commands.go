package chat

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

// typingDoneCmd fires TypingDoneMsg after d.
func typingDoneCmd(d time.Duration, gen uint64) tea.Cmd {
	return tea.Tick(d, func(time.Time) tea.Msg {
		return TypingDoneMsg{Gen: gen}
	})
}

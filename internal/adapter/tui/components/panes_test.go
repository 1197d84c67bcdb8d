package components

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPanesWide(t *testing.T) {
	p := NewPanes()
	p.SetSize(160, 40)

	assert.True(t, p.ShowSides())
	assert.Equal(t, 40, p.Width(PaneAgents))
	assert.Equal(t, 80, p.Width(PaneChat))
	assert.Equal(t, 40, p.Width(PaneResources))
	assert.Equal(t, 78, p.InnerWidth(PaneChat))
	assert.Equal(t, 38, p.InnerHeight())
}

func TestPanesFocusCycle(t *testing.T) {
	p := NewPanes()
	p.SetSize(160, 40)
	assert.Equal(t, PaneChat, p.Focused)

	p.Next()
	assert.Equal(t, PaneResources, p.Focused)
	p.Next()
	assert.Equal(t, PaneAgents, p.Focused)
	p.Prev()
	assert.Equal(t, PaneResources, p.Focused)
}

func TestPanesNarrowShowsChatOnly(t *testing.T) {
	p := NewPanes()
	p.SetSize(160, 40)
	p.Next()
	p.SetSize(80, 40)

	assert.False(t, p.ShowSides())
	assert.Equal(t, PaneChat, p.Focused)
	assert.Equal(t, 80, p.Width(PaneChat))
	assert.Zero(t, p.Width(PaneAgents))

	p.Next()
	assert.Equal(t, PaneChat, p.Focused)

	out := p.Render("AGENTS", "CHAT", "RESOURCES")
	assert.Contains(t, out, "CHAT")
	assert.NotContains(t, out, "AGENTS")
}

func TestPanesRenderAll(t *testing.T) {
	p := NewPanes()
	p.SetSize(160, 10)
	out := p.Render("AGENTS", "CHAT", "RESOURCES")
	assert.Contains(t, out, "AGENTS")
	assert.Contains(t, out, "CHAT")
	assert.Contains(t, out, "RESOURCES")
}

func TestPaneString(t *testing.T) {
	assert.Equal(t, "agents", PaneAgents.String())
	assert.Equal(t, "chat", PaneChat.String())
	assert.Equal(t, "resources", PaneResources.String())
}

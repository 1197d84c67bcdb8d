package theme

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClamp(t *testing.T) {
	assert.Equal(t, 5, Clamp(1, 5, 10))
	assert.Equal(t, 10, Clamp(99, 5, 10))
	assert.Equal(t, 7, Clamp(7, 5, 10))
}

func TestInitSymbolsASCII(t *testing.T) {
	t.Setenv("AGENTCHAT_ASCII_SYMBOLS", "1")
	InitSymbols()

	assert.Equal(t, "[OK]", SymbolSuccess)
	assert.Equal(t, "[X]", SymbolError)
	assert.Equal(t, ">", SymbolFolded)
}

func TestInitSymbolsUnicode(t *testing.T) {
	t.Setenv("AGENTCHAT_ASCII_SYMBOLS", "")
	t.Setenv("LANG", "en_US.UTF-8")
	InitSymbols()

	assert.True(t, DetectUnicodeSupport())
	assert.Equal(t, "✓", SymbolSuccess)
	assert.Equal(t, "▾", SymbolExpanded)
}

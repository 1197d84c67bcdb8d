// Package theme holds the colors, symbols and styles shared by the panels.
// Colors are adaptive so both light and dark terminals stay readable.
//
// NO_COLOR (https://no-color.org/) is honored by lipgloss's color profile
// detection.
package theme

import (
	"github.com/charmbracelet/lipgloss"
)

// --- Adaptive palette ---

var (
	ColorSuccess = lipgloss.AdaptiveColor{Light: "#2e7d32", Dark: "#66bb6a"}
	ColorError   = lipgloss.AdaptiveColor{Light: "#c62828", Dark: "#ef5350"}
	ColorWarning = lipgloss.AdaptiveColor{Light: "#e65100", Dark: "#ffa726"}
	ColorInfo    = lipgloss.AdaptiveColor{Light: "#0277bd", Dark: "#4fc3f7"}
	ColorAccent  = lipgloss.AdaptiveColor{Light: "#6a1b9a", Dark: "#ce93d8"}
	ColorMuted   = lipgloss.AdaptiveColor{Light: "#757575", Dark: "#9e9e9e"}

	ColorBorder       = lipgloss.AdaptiveColor{Light: "#bdbdbd", Dark: "#616161"}
	ColorBorderActive = lipgloss.AdaptiveColor{Light: "#1565c0", Dark: "#42a5f5"}

	ColorBgAlt      = lipgloss.AdaptiveColor{Light: "#f5f5f5", Dark: "#2d2d2d"}
	ColorFgDim      = lipgloss.AdaptiveColor{Light: "#9e9e9e", Dark: "#757575"}
	ColorSelectedBg = lipgloss.AdaptiveColor{Light: "#e3f2fd", Dark: "#1a3a5c"}
)

// --- Symbols (reassigned by InitSymbols) ---

var (
	SymbolSuccess  = "✓"
	SymbolError    = "✗"
	SymbolWarning  = "⚠"
	SymbolInfo     = "●"
	SymbolArrowR   = "→"
	SymbolBullet   = "•"
	SymbolEllipsis = "…"
	SymbolExpanded = "▾"
	SymbolFolded   = "▸"
	SymbolChat     = "💬"
	SymbolUser     = "You"
	SymbolBot      = "Assistant"
)

// --- Base styles ---

var (
	Bold = lipgloss.NewStyle().Bold(true)
	Dim  = lipgloss.NewStyle().Faint(true)

	TextSuccess = lipgloss.NewStyle().Foreground(ColorSuccess).Bold(true)
	TextError   = lipgloss.NewStyle().Foreground(ColorError).Bold(true)
	TextWarning = lipgloss.NewStyle().Foreground(ColorWarning).Bold(true)
	TextInfo    = lipgloss.NewStyle().Foreground(ColorInfo)
	TextAccent  = lipgloss.NewStyle().Foreground(ColorAccent)
	TextMuted   = lipgloss.NewStyle().Foreground(ColorMuted)
)

// --- Panel styles ---

var (
	// Focus-aware borders for the three columns.
	FocusBorder = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(ColorBorderActive)

	UnfocusedBorder = lipgloss.NewStyle().
			Border(lipgloss.NormalBorder()).
			BorderForeground(ColorBorder)

	PanelTitle = lipgloss.NewStyle().
			Bold(true).
			Padding(0, 1)

	PanelSubtitle = lipgloss.NewStyle().
			Foreground(ColorMuted).
			Padding(0, 1)

	// Placeholder blocks shown when a panel has nothing to list.
	EmptyTitle = lipgloss.NewStyle().
			Bold(true).
			Align(lipgloss.Center)

	EmptyBody = lipgloss.NewStyle().
			Foreground(ColorMuted).
			Align(lipgloss.Center)
)

// --- Agent list ---

var (
	AgentName = lipgloss.NewStyle().Bold(true)

	AgentSelected = lipgloss.NewStyle().
			Background(ColorSelectedBg)

	AgentActiveMark = lipgloss.NewStyle().
			Foreground(ColorBorderActive).
			Bold(true)

	SubAgentName = lipgloss.NewStyle().Foreground(ColorMuted)

	ConversationTitle = lipgloss.NewStyle().Foreground(ColorInfo)
)

// --- Resource cards ---

var (
	ResourceCard = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(ColorBorder).
			Padding(0, 1)

	PermissionGranted = lipgloss.NewStyle().Foreground(ColorSuccess)
	PermissionRevoked = lipgloss.NewStyle().Foreground(ColorError)
)

// --- Message role styles ---

var (
	UserLabel = lipgloss.NewStyle().
			Foreground(ColorInfo).
			Bold(true)

	BotLabel = lipgloss.NewStyle().
			Foreground(ColorAccent).
			Bold(true)

	SystemLabel = lipgloss.NewStyle().
			Foreground(ColorMuted).
			Bold(true)

	ErrorLabel = lipgloss.NewStyle().
			Foreground(ColorError).
			Bold(true)

	Timestamp = lipgloss.NewStyle().
			Foreground(ColorFgDim).
			Faint(true)
)

// --- Status bar ---

var (
	StatusBar = lipgloss.NewStyle().
			Foreground(ColorFgDim).
			Background(ColorBgAlt).
			Padding(0, 1)

	StatusKey = lipgloss.NewStyle().
			Foreground(ColorInfo).
			Bold(true)
)

// --- Input area ---

var (
	InputPrompt = lipgloss.NewStyle().
			Foreground(ColorInfo).
			Bold(true)

	InputPlaceholder = lipgloss.NewStyle().
				Foreground(ColorFgDim)
)

// MaxContentWidth caps the width of rendered message bodies.
const MaxContentWidth = 100

// MinThreePaneWidth is the narrowest terminal that shows all three panels.
// Below it only the chat panel is drawn.
const MinThreePaneWidth = 100

// Clamp returns v clamped to [lo, hi].
func Clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

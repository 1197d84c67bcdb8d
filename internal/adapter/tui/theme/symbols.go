package theme

import (
	"os"
	"strings"
)

// SymbolSet is one complete set of UI glyphs.
type SymbolSet struct {
	Success  string
	Error    string
	Warning  string
	Info     string
	ArrowR   string
	Bullet   string
	Ellipsis string
	Expanded string
	Folded   string
	Chat     string
}

var unicodeSymbols = SymbolSet{
	Success:  "✓", // ✓
	Error:    "✗", // ✗
	Warning:  "⚠", // ⚠
	Info:     "●", // ●
	ArrowR:   "→", // →
	Bullet:   "•", // •
	Ellipsis: "…", // …
	Expanded: "▾", // ▾
	Folded:   "▸", // ▸
	Chat:     "\U0001F4AC",
}

var asciiSymbols = SymbolSet{
	Success:  "[OK]",
	Error:    "[X]",
	Warning:  "[!]",
	Info:     "[i]",
	ArrowR:   "->",
	Bullet:   "*",
	Ellipsis: "...",
	Expanded: "v",
	Folded:   ">",
	Chat:     "#",
}

// DetectUnicodeSupport reports whether the terminal likely renders Unicode.
// AGENTCHAT_ASCII_SYMBOLS=1 forces ASCII.
func DetectUnicodeSupport() bool {
	if v := os.Getenv("AGENTCHAT_ASCII_SYMBOLS"); v == "1" || strings.EqualFold(v, "true") {
		return false
	}
	for _, key := range []string{"LC_ALL", "LC_CTYPE", "LANG"} {
		val := strings.ToLower(os.Getenv(key))
		if strings.Contains(val, "utf-8") || strings.Contains(val, "utf8") {
			return true
		}
	}
	return true
}

// InitSymbols picks the symbol set for the current terminal. It runs from
// init and may be called again after changing the environment.
func InitSymbols() {
	set := unicodeSymbols
	if !DetectUnicodeSupport() {
		set = asciiSymbols
	}

	SymbolSuccess = set.Success
	SymbolError = set.Error
	SymbolWarning = set.Warning
	SymbolInfo = set.Info
	SymbolArrowR = set.ArrowR
	SymbolBullet = set.Bullet
	SymbolEllipsis = set.Ellipsis
	SymbolExpanded = set.Expanded
	SymbolFolded = set.Folded
	SymbolChat = set.Chat
}

func init() {
	InitSymbols()
}

package tui

import (
	"os"
	"strings"
	"sync"
)

// Some terminal fonts render the decorative glyphs poorly; TASKDECK_TUI_GLYPHS=ascii swaps
// them for plain characters.

type glyphSet int

const (
	glyphSetUnicode glyphSet = iota
	glyphSetASCII
)

var (
	glyphsMu      sync.RWMutex
	currentGlyphs = glyphSetUnicode
)

func applyGlyphPreference() {
	switch strings.ToLower(strings.TrimSpace(os.Getenv("TASKDECK_TUI_GLYPHS"))) {
	case "", "unicode", "utf8":
		setGlyphs(glyphSetUnicode)
	case "ascii":
		setGlyphs(glyphSetASCII)
	}
}

func setGlyphs(gs glyphSet) {
	glyphsMu.Lock()
	currentGlyphs = gs
	glyphsMu.Unlock()
}

func glyphs() glyphSet {
	glyphsMu.RLock()
	defer glyphsMu.RUnlock()
	return currentGlyphs
}

func pick(unicode, ascii string) string {
	if glyphs() == glyphSetASCII {
		return ascii
	}
	return unicode
}

func glyphPin() string       { return pick("★", "*") }
func glyphRecurring() string { return pick("↻", "~") }
func glyphDue() string       { return pick("•", "*") }
func glyphOnline() string    { return pick("●", "+") }
func glyphOffline() string   { return pick("○", "-") }
func glyphEllipsis() string  { return pick("…", "...") }

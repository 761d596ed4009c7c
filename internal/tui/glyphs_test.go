package tui

import "testing"

func TestGlyphs_FromEnv(t *testing.T) {
	t.Setenv("TASKDECK_TUI_GLYPHS", "")
	setGlyphs(glyphSetUnicode)
	applyGlyphPreference()
	if got := glyphPin(); got != "★" {
		t.Fatalf("expected unicode pin by default; got %q", got)
	}

	t.Setenv("TASKDECK_TUI_GLYPHS", "ascii")
	applyGlyphPreference()
	if got := glyphRecurring(); got != "~" {
		t.Fatalf("expected ascii recurrence glyph; got %q", got)
	}

	// Unknown values keep the current set.
	t.Setenv("TASKDECK_TUI_GLYPHS", "bogus")
	applyGlyphPreference()
	if got := glyphs(); got != glyphSetASCII {
		t.Fatalf("expected unknown value to be ignored; got %v", got)
	}

	setGlyphs(glyphSetUnicode)
}

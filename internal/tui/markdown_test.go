package tui

import (
	"strings"
	"testing"

	xansi "github.com/charmbracelet/x/ansi"
)

func TestMarkdownStyle_FollowsTheme(t *testing.T) {
	t.Setenv("COLORFGBG", "")

	t.Setenv("TASKDECK_TUI_THEME", "light")
	if got := markdownStyle(); got != "light" {
		t.Fatalf("expected light; got %q", got)
	}

	t.Setenv("TASKDECK_TUI_THEME", "dark")
	if got := markdownStyle(); got != "dark" {
		t.Fatalf("expected dark; got %q", got)
	}

	t.Setenv("TASKDECK_TUI_THEME", "")
	t.Setenv("COLORFGBG", "0;15")
	if got := markdownStyle(); got != "light" {
		t.Fatalf("expected light from COLORFGBG; got %q", got)
	}
}

func TestMarkdownStyleConfig_UsesPaletteForText(t *testing.T) {
	cfg := markdownStyleConfig("light")
	if cfg.Text.Color == nil || *cfg.Text.Color != colorSurfaceFg.Light {
		t.Fatalf("expected light surface color for text; got %v", cfg.Text.Color)
	}
	if cfg.Link.Underline == nil || !*cfg.Link.Underline {
		t.Fatalf("expected underlined links")
	}
}

func TestRenderMarkdown_KeepsContent(t *testing.T) {
	t.Setenv("TASKDECK_TUI_THEME", "dark")

	out := xansi.Strip(renderMarkdown("You have **2** pending tasks.", 40))
	if !strings.Contains(out, "pending tasks") {
		t.Fatalf("rendered output lost the text: %q", out)
	}
	if renderMarkdown("   ", 40) != "" {
		t.Fatalf("blank input should render empty")
	}
}

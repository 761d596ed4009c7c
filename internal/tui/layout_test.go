package tui

import (
	"strings"
	"testing"
	"time"

	xansi "github.com/charmbracelet/x/ansi"
)

func TestNormalizePane_PadsAndTruncates(t *testing.T) {
	t.Parallel()

	out := normalizePane("short\nthis line is far too long", 10, 3)
	lines := strings.Split(out, "\n")
	if len(lines) != 3 {
		t.Fatalf("expected 3 lines, got %d", len(lines))
	}
	for i, ln := range lines {
		if w := xansi.StringWidth(ln); w != 10 {
			t.Fatalf("line %d width=%d, want 10: %q", i, w, ln)
		}
	}
	if !strings.HasSuffix(lines[1], "…") {
		t.Fatalf("expected ellipsis on truncated line, got %q", lines[1])
	}
}

func TestFitLine_ZeroWidth(t *testing.T) {
	t.Parallel()

	if got := fitLine("abc", 0); got != "" {
		t.Fatalf("expected empty, got %q", got)
	}
}

func TestCalendarMode_Shift(t *testing.T) {
	t.Parallel()

	ref := time.Date(2025, time.January, 31, 0, 0, 0, 0, time.UTC)
	cases := []struct {
		mode calendarMode
		dir  int
		want string
	}{
		{calendarMonth, 1, "2025-02-01"},
		{calendarMonth, -1, "2024-12-01"},
		{calendarWeek, 1, "2025-02-07"},
		{calendarWeek, -1, "2025-01-24"},
	}
	for _, tc := range cases {
		if got := tc.mode.shift(ref, tc.dir).Format("2006-01-02"); got != tc.want {
			t.Fatalf("%s shift %d = %s, want %s", tc.mode, tc.dir, got, tc.want)
		}
	}
}

func TestParseView_DefaultsToDashboard(t *testing.T) {
	t.Parallel()

	if parseView("notes") != viewNotes || parseView("login") != viewDashboard || parseView("") != viewDashboard {
		t.Fatalf("unexpected parseView results")
	}
}

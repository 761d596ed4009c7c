package logging

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestNew_NoSinksIsNop(t *testing.T) {
	t.Parallel()

	l, err := New(Options{})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	l.Info("dropped")
	if err := Sync(l); err != nil {
		t.Fatalf("Sync: %v", err)
	}
	if err := Sync(nil); err != nil {
		t.Fatalf("Sync(nil): %v", err)
	}
}

func TestNew_FileSinkWritesJSON(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "logs", "taskdeck.log")
	l, err := New(Options{File: path, Debug: true})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	l.Debug("api request")
	_ = l.Sync()

	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	if !strings.Contains(string(b), `"msg":"api request"`) || !strings.Contains(string(b), `"level":"debug"`) {
		t.Fatalf("unexpected log contents: %s", b)
	}
}

func TestSanitizeString(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   string
		max  int
		want string
	}{
		{name: "empty", in: "", max: 10, want: ""},
		{name: "control chars removed", in: "a\x00b\nc", max: 10, want: "abc"},
		{name: "truncated", in: "abcdefghij", max: 4, want: "abcd..."},
		{name: "multibyte cut on rune boundary", in: "héllo", max: 2, want: "h..."},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := SanitizeString(tt.in, tt.max); got != tt.want {
				t.Fatalf("SanitizeString(%q, %d) = %q, want %q", tt.in, tt.max, got, tt.want)
			}
		})
	}

	if got := SanitizeError(errors.New("boom")); got != "boom" {
		t.Fatalf("SanitizeError: %q", got)
	}
}

func TestMaskToken(t *testing.T) {
	t.Parallel()

	if got := MaskToken(""); got != "" {
		t.Fatalf("MaskToken(empty) = %q", got)
	}
	if got := MaskToken("short"); got != "****" {
		t.Fatalf("MaskToken(short) = %q", got)
	}
	if got := MaskToken("abcdefghijklmnop"); got != "abcd…mnop" {
		t.Fatalf("MaskToken(long) = %q", got)
	}
}

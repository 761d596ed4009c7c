package store

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

func TestTUIState_SaveLoad_RoundTrip(t *testing.T) {
	t.Parallel()

	s := Store{Dir: t.TempDir()}

	// Missing file => default state.
	st0, err := s.LoadTUIState()
	if err != nil {
		t.Fatalf("LoadTUIState: %v", err)
	}
	if st0 == nil || st0.Version != 1 {
		t.Fatalf("expected default Version=1; got %#v", st0)
	}

	want := &TUIState{
		Version:        1,
		View:           "calendar",
		TaskFilter:     "due_today",
		CalendarMode:   "week",
		ChatOpen:       true,
		SelectedTaskID: 42,
	}
	if err := s.SaveTUIState(want); err != nil {
		t.Fatalf("SaveTUIState: %v", err)
	}

	got, err := s.LoadTUIState()
	if err != nil {
		t.Fatalf("LoadTUIState (after save): %v", err)
	}
	if !reflect.DeepEqual(want, got) {
		t.Fatalf("roundtrip mismatch:\nwant: %#v\ngot:  %#v", want, got)
	}
}

func TestTUIState_CorruptFileIsIgnored(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, tuiStateFileName), []byte("{not json"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	st, err := Store{Dir: dir}.LoadTUIState()
	if err != nil {
		t.Fatalf("LoadTUIState: %v", err)
	}
	if st.Version != 1 || st.View != "" {
		t.Fatalf("expected default state, got %#v", st)
	}
}

func TestTUIState_SaveLeavesNoTempFiles(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	s := Store{Dir: dir}
	in := &TUIState{View: "notes"}
	for i := 0; i < 3; i++ {
		if err := s.SaveTUIState(in); err != nil {
			t.Fatalf("SaveTUIState: %v", err)
		}
	}
	if in.Version != 0 {
		t.Fatalf("save must not modify the caller's state; got %#v", in)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("ReadDir: %v", err)
	}
	if len(entries) != 1 || entries[0].Name() != tuiStateFileName {
		names := make([]string, 0, len(entries))
		for _, e := range entries {
			names = append(names, e.Name())
		}
		t.Fatalf("expected only %s, got %v", tuiStateFileName, names)
	}

	got, err := s.LoadTUIState()
	if err != nil || got.Version != tuiStateVersion || got.View != "notes" {
		t.Fatalf("unexpected state %#v err=%v", got, err)
	}
}

func TestTUIState_NoDirIsNoop(t *testing.T) {
	t.Parallel()

	s := Store{}
	if err := s.SaveTUIState(&TUIState{View: "tasks"}); err != nil {
		t.Fatalf("SaveTUIState without dir: %v", err)
	}
	st, err := s.LoadTUIState()
	if err != nil || st.Version != tuiStateVersion || st.View != "" {
		t.Fatalf("expected defaults, got %#v err=%v", st, err)
	}
}

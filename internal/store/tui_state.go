package store

import "encoding/json"

const (
	tuiStateFileName = "tui_state.json"
	tuiStateVersion  = 1
)

// TUIState is what the TUI restores on relaunch: last screen, filter, calendar mode, chat
// panel and task cursor. Missing or unreadable state falls back to defaults.
type TUIState struct {
	Version int `json:"version"`

	View           string `json:"view,omitempty"`         // dashboard|tasks|notes|calendar
	TaskFilter     string `json:"taskFilter,omitempty"`   // all|pending|completed|due_today
	CalendarMode   string `json:"calendarMode,omitempty"` // month|week
	ChatOpen       bool   `json:"chatOpen,omitempty"`
	SelectedTaskID int    `json:"selectedTaskId,omitempty"`
}

func defaultTUIState() *TUIState { return &TUIState{Version: tuiStateVersion} }

// LoadTUIState only fails on I/O errors; an absent or corrupt file yields the defaults.
func (s Store) LoadTUIState() (*TUIState, error) {
	if !s.configured() {
		return defaultTUIState(), nil
	}
	b, err := s.readFile(tuiStateFileName)
	if err != nil {
		return nil, err
	}
	st := defaultTUIState()
	if b == nil || json.Unmarshal(b, st) != nil {
		return defaultTUIState(), nil
	}
	if st.Version == 0 {
		st.Version = tuiStateVersion
	}
	return st, nil
}

// SaveTUIState is a no-op without a state dir.
func (s Store) SaveTUIState(st *TUIState) error {
	if st == nil || !s.configured() {
		return nil
	}
	out := *st
	if out.Version == 0 {
		out.Version = tuiStateVersion
	}
	b, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return err
	}
	return s.writeFile(tuiStateFileName, b)
}

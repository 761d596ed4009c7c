package store

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
)

const sqliteFileName = "state.sqlite"

// Store owns the client's local state directory: the sqlite kv file and tui_state.json.
type Store struct {
	Dir string
}

var errNoDir = errors.New("store: no state directory configured")

func (s Store) Ensure() error {
	if !s.configured() {
		return errNoDir
	}
	return os.MkdirAll(s.Dir, 0o755)
}

func (s Store) configured() bool { return strings.TrimSpace(s.Dir) != "" }

func (s Store) path(name string) string { return filepath.Join(s.Dir, name) }

func (s Store) sqlitePath() string { return s.path(sqliteFileName) }

// readFile returns the contents of name in the state dir. A missing file is (nil, nil).
func (s Store) readFile(name string) ([]byte, error) {
	b, err := os.ReadFile(s.path(name))
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	return b, err
}

// writeFile replaces name through a temp file and rename, so readers never see a partial file.
func (s Store) writeFile(name string, data []byte) error {
	if err := s.Ensure(); err != nil {
		return err
	}
	f, err := os.CreateTemp(s.Dir, name+".*.tmp")
	if err != nil {
		return err
	}
	tmp := f.Name()
	if _, err := f.Write(data); err != nil {
		_ = f.Close()
		_ = os.Remove(tmp)
		return err
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(tmp)
		return err
	}
	if err := os.Chmod(tmp, 0o644); err != nil {
		_ = os.Remove(tmp)
		return err
	}
	if err := os.Rename(tmp, s.path(name)); err != nil {
		_ = os.Remove(tmp)
		return err
	}
	return nil
}

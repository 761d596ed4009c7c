package tui

import (
	"context"

	"taskdeck/internal/api"
	"taskdeck/internal/chat"
	"taskdeck/internal/model"
	"taskdeck/internal/session"
	"taskdeck/internal/store"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"
)

// Backend is everything the TUI asks of the network. *api.Client implements it.
type Backend interface {
	session.Backend
	chat.Agent

	GetTasks(ctx context.Context) ([]model.Task, error)
	CreateTask(ctx context.Context, draft model.TaskDraft) (model.Task, error)
	UpdateTask(ctx context.Context, id int, patch model.TaskPatch) (model.Task, error)
	DeleteTask(ctx context.Context, id int) error

	GetNotes(ctx context.Context) ([]model.Note, error)
	CreateNote(ctx context.Context, draft model.NoteDraft) (model.Note, error)
	UpdateNote(ctx context.Context, id int, patch model.NotePatch) (model.Note, error)
	DeleteNote(ctx context.Context, id int) error
}

var _ Backend = (*api.Client)(nil)

type Options struct {
	Store       store.Store
	Client      Backend
	Logger      *zap.Logger
	MaxMessages int
}

func Run(ctx context.Context, opts Options) error {
	applyThemePreference()
	applyColorProfilePreference()
	applyGlyphPreference()

	m := newAppModel(ctx, opts)
	final, err := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx)).Run()
	if fm, ok := final.(appModel); ok {
		fm.saveState()
	}
	return err
}

package tui

import (
	"context"
	"sync"

	"taskdeck/internal/chat"
	"taskdeck/internal/collections"
	"taskdeck/internal/model"
	"taskdeck/internal/session"

	tea "github.com/charmbracelet/bubbletea"
)

// routeRecorder is the session's Navigator. Session calls run inside tea.Cmd goroutines, so
// the last route is parked here and picked up when the result message reaches Update.
type routeRecorder struct {
	mu   sync.Mutex
	last session.Route
}

func (r *routeRecorder) Navigate(route session.Route) {
	r.mu.Lock()
	r.last = route
	r.mu.Unlock()
}

func (r *routeRecorder) take() session.Route {
	r.mu.Lock()
	defer r.mu.Unlock()
	route := r.last
	r.last = ""
	return route
}

type sessionMsg struct {
	route session.Route
	err   error
}

type tasksLoadedMsg struct {
	tasks []model.Task
	err   error
}

type notesLoadedMsg struct {
	notes []model.Note
	err   error
}

type taskChangedMsg struct {
	op   collections.Op
	task model.Task
	err  error
}

type noteChangedMsg struct {
	op   collections.Op
	note model.Note
	err  error
}

type chatStartedMsg struct{ available bool }

type chatDoneMsg struct {
	outcome chat.Outcome
	task    *model.Task
	err     error
}

func restoreCmd(ctx context.Context, s *session.Session, nav *routeRecorder) tea.Cmd {
	return func() tea.Msg {
		err := s.Restore(ctx)
		return sessionMsg{route: nav.take(), err: err}
	}
}

func loginCmd(ctx context.Context, s *session.Session, nav *routeRecorder, username, password string) tea.Cmd {
	return func() tea.Msg {
		err := s.Login(ctx, username, password)
		return sessionMsg{route: nav.take(), err: err}
	}
}

func signupCmd(ctx context.Context, s *session.Session, nav *routeRecorder, username, email, password string) tea.Cmd {
	return func() tea.Msg {
		err := s.Signup(ctx, username, email, password)
		return sessionMsg{route: nav.take(), err: err}
	}
}

func logoutCmd(ctx context.Context, s *session.Session, nav *routeRecorder) tea.Cmd {
	return func() tea.Msg {
		err := s.Logout(ctx)
		return sessionMsg{route: nav.take(), err: err}
	}
}

func loadTasksCmd(ctx context.Context, b Backend) tea.Cmd {
	return func() tea.Msg {
		tasks, err := b.GetTasks(ctx)
		return tasksLoadedMsg{tasks: tasks, err: err}
	}
}

func loadNotesCmd(ctx context.Context, b Backend) tea.Cmd {
	return func() tea.Msg {
		notes, err := b.GetNotes(ctx)
		return notesLoadedMsg{notes: notes, err: err}
	}
}

func createTaskCmd(ctx context.Context, b Backend, draft model.TaskDraft) tea.Cmd {
	return func() tea.Msg {
		t, err := b.CreateTask(ctx, draft)
		return taskChangedMsg{op: collections.OpCreate, task: t, err: err}
	}
}

func updateTaskCmd(ctx context.Context, b Backend, id int, patch model.TaskPatch) tea.Cmd {
	return func() tea.Msg {
		t, err := b.UpdateTask(ctx, id, patch)
		return taskChangedMsg{op: collections.OpUpdate, task: t, err: err}
	}
}

func deleteTaskCmd(ctx context.Context, b Backend, id int) tea.Cmd {
	return func() tea.Msg {
		err := b.DeleteTask(ctx, id)
		return taskChangedMsg{op: collections.OpDelete, task: model.Task{ID: id}, err: err}
	}
}

func createNoteCmd(ctx context.Context, b Backend, draft model.NoteDraft) tea.Cmd {
	return func() tea.Msg {
		n, err := b.CreateNote(ctx, draft)
		return noteChangedMsg{op: collections.OpCreate, note: n, err: err}
	}
}

func updateNoteCmd(ctx context.Context, b Backend, id int, patch model.NotePatch) tea.Cmd {
	return func() tea.Msg {
		n, err := b.UpdateNote(ctx, id, patch)
		return noteChangedMsg{op: collections.OpUpdate, note: n, err: err}
	}
}

func deleteNoteCmd(ctx context.Context, b Backend, id int) tea.Cmd {
	return func() tea.Msg {
		err := b.DeleteNote(ctx, id)
		return noteChangedMsg{op: collections.OpDelete, note: model.Note{ID: id}, err: err}
	}
}

func chatStartCmd(ctx context.Context, core *chat.Core) tea.Cmd {
	return func() tea.Msg {
		return chatStartedMsg{available: core.Start(ctx)}
	}
}

func chatSendCmd(ctx context.Context, core *chat.Core, text string) tea.Cmd {
	return func() tea.Msg {
		out, err := core.Send(ctx, text)
		return chatDoneMsg{outcome: out, err: err}
	}
}

func chatConfirmCmd(ctx context.Context, core *chat.Core) tea.Cmd {
	return func() tea.Msg {
		t, err := core.ConfirmPreview(ctx)
		if err != nil {
			return chatDoneMsg{err: err}
		}
		return chatDoneMsg{task: &t}
	}
}

func chatFormCmd(ctx context.Context, core *chat.Core, draft model.TaskDraft) tea.Cmd {
	return func() tea.Msg {
		t, err := core.SubmitTaskForm(ctx, draft)
		if err != nil {
			return chatDoneMsg{err: err}
		}
		return chatDoneMsg{task: &t}
	}
}

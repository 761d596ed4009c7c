package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"taskdeck/internal/api"
	"taskdeck/internal/chat"
	"taskdeck/internal/collections"
	"taskdeck/internal/logging"
	"taskdeck/internal/model"
	"taskdeck/internal/session"
	"taskdeck/internal/store"

	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"
)

type view int

const (
	viewLogin view = iota
	viewDashboard
	viewTasks
	viewNotes
	viewCalendar
)

// navViews is the sidebar order; digits 1-4 jump to the matching entry.
var navViews = []view{viewDashboard, viewTasks, viewNotes, viewCalendar}

func (v view) String() string {
	switch v {
	case viewDashboard:
		return "dashboard"
	case viewTasks:
		return "tasks"
	case viewNotes:
		return "notes"
	case viewCalendar:
		return "calendar"
	default:
		return "login"
	}
}

func (v view) title() string {
	switch v {
	case viewDashboard:
		return "Dashboard"
	case viewTasks:
		return "Tasks"
	case viewNotes:
		return "Notes"
	case viewCalendar:
		return "Calendar"
	default:
		return "Sign in"
	}
}

func parseView(s string) view {
	for _, v := range navViews {
		if v.String() == s {
			return v
		}
	}
	return viewDashboard
}

const (
	sidebarWidth = 18
	chatWidth    = 46
)

type appModel struct {
	ctx     context.Context
	store   store.Store
	backend Backend
	log     *zap.Logger
	session *session.Session
	nav     *routeRecorder
	clock   collections.Clock

	width  int
	height int

	view        view
	resumeView  view
	checking    bool
	sidebarOpen bool

	login loginModel

	tasks      *collections.Tasks
	notes      *collections.Notes
	taskFilter collections.Filter
	taskList   list.Model
	noteList   list.Model
	selectID   int

	calMode calendarMode
	calRef  time.Time

	chat    chatPanel
	form    *form
	confirm *confirmModal

	status    string
	statusErr bool
}

func newAppModel(ctx context.Context, opts Options) appModel {
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}
	nav := &routeRecorder{}
	sess := session.New(session.Options{
		Tokens:    opts.Store,
		Backend:   opts.Client,
		Navigator: nav,
		Logger:    log,
	})
	core := chat.New(chat.Options{
		Agent:       opts.Client,
		Tasks:       opts.Client,
		Owner:       sess,
		MaxMessages: opts.MaxMessages,
		Logger:      log,
	})
	clock := collections.SystemClock{}

	m := appModel{
		ctx:         ctx,
		store:       opts.Store,
		backend:     opts.Client,
		log:         log,
		session:     sess,
		nav:         nav,
		clock:       clock,
		view:        viewLogin,
		resumeView:  viewDashboard,
		checking:    true,
		sidebarOpen: true,
		login:       newLoginModel(),
		tasks:       collections.NewTasks(clock),
		notes:       collections.NewNotes(),
		taskFilter:  collections.FilterAll,
		taskList:    newRowList(),
		noteList:    newRowList(),
		calMode:     calendarMonth,
		calRef:      clock.Now(),
		chat:        newChatPanel(core),
	}
	m.loadState()
	return m
}

func (m *appModel) loadState() {
	if open, err := m.store.SidebarOpen(m.ctx); err == nil {
		m.sidebarOpen = open
	}
	st, err := m.store.LoadTUIState()
	if err != nil || st == nil {
		return
	}
	m.resumeView = parseView(st.View)
	if f, err := collections.ParseFilter(st.TaskFilter); err == nil {
		m.taskFilter = f
	}
	m.calMode = parseCalendarMode(st.CalendarMode)
	m.chat.open = st.ChatOpen
	m.selectID = st.SelectedTaskID
}

func (m appModel) saveState() {
	st := &store.TUIState{
		Version:      1,
		View:         m.resumeView.String(),
		TaskFilter:   string(m.taskFilter),
		CalendarMode: string(m.calMode),
		ChatOpen:     m.chat.open,
	}
	if m.view != viewLogin {
		st.View = m.view.String()
	}
	if it, ok := m.taskList.SelectedItem().(taskItem); ok {
		st.SelectedTaskID = it.task.ID
	}
	if err := m.store.SaveTUIState(st); err != nil {
		m.log.Warn("save tui state failed", zap.Error(err))
	}
}

func (m appModel) Init() tea.Cmd {
	return restoreCmd(m.ctx, m.session, m.nav)
}

func errText(err error) string {
	if err == nil {
		return ""
	}
	var ae *api.Error
	if errors.As(err, &ae) {
		return ae.Message()
	}
	if errors.Is(err, session.ErrLoginInFlight) {
		return "A login is already in progress"
	}
	return err.Error()
}

func (m *appModel) setStatus(s string, isErr bool) {
	m.status = s
	m.statusErr = isErr
}

func (m *appModel) fail(what string, err error) {
	m.log.Warn(what+" failed", zap.String("kind", string(api.KindOf(err))), zap.String("error", logging.SanitizeError(err)))
	m.setStatus(errText(err), true)
}

func (m appModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.resize()
		return m, nil

	case sessionMsg:
		return m.onSession(msg)

	case tasksLoadedMsg:
		if msg.err != nil {
			m.fail("load tasks", msg.err)
			return m, nil
		}
		m.tasks.Replace(msg.tasks)
		m.refreshTasks()
		return m, nil

	case notesLoadedMsg:
		if msg.err != nil {
			m.fail("load notes", msg.err)
			return m, nil
		}
		m.notes.Replace(msg.notes)
		m.refreshNotes()
		return m, nil

	case taskChangedMsg:
		if msg.err != nil {
			m.fail("save task", msg.err)
			return m, nil
		}
		m.tasks.Apply(msg.op, msg.task)
		m.refreshTasks()
		m.setStatus(taskStatusText(msg.op, msg.task), false)
		return m, nil

	case noteChangedMsg:
		if msg.err != nil {
			m.fail("save note", msg.err)
			return m, nil
		}
		m.notes.Apply(msg.op, msg.note)
		m.refreshNotes()
		return m, nil

	case chatStartedMsg:
		m.chat.started = true
		m.chat.refresh()
		if !msg.available {
			m.setStatus("Assistant unavailable; chat answers locally", false)
		}
		return m, nil

	case chatDoneMsg:
		return m.onChatDone(msg)

	case spinner.TickMsg:
		if !m.chat.busy {
			return m, nil
		}
		var cmd tea.Cmd
		m.chat.spinner, cmd = m.chat.spinner.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		return m.onKey(msg)
	}
	return m, nil
}

func taskStatusText(op collections.Op, t model.Task) string {
	switch op {
	case collections.OpCreate:
		return fmt.Sprintf("Created %q", t.Title)
	case collections.OpDelete:
		return "Task deleted"
	default:
		if t.IsCompleted() {
			return fmt.Sprintf("Completed %q", t.Title)
		}
		return fmt.Sprintf("Updated %q", t.Title)
	}
}

func (m appModel) onSession(msg sessionMsg) (tea.Model, tea.Cmd) {
	m.checking = false
	m.login.busy = false

	if m.session.IsAuthenticated() {
		if msg.route == session.RouteDashboard {
			m.resumeView = viewDashboard
		}
		if m.view == viewLogin {
			m.view = m.resumeView
		}
		m.login = newLoginModel()
		m.setStatus("", false)
		m.resize()
		return m, tea.Batch(
			loadTasksCmd(m.ctx, m.backend),
			loadNotesCmd(m.ctx, m.backend),
			chatStartCmd(m.ctx, m.chat.core),
		)
	}

	if msg.route == session.RouteLanding || m.view != viewLogin {
		if m.view != viewLogin {
			m.resumeView = m.view
		}
		m.view = viewLogin
		m.tasks.Replace(nil)
		m.notes.Replace(nil)
		m.refreshTasks()
		m.refreshNotes()
		m.form, m.confirm = nil, nil
		m.chat.core.Reset()
		m.chat.started, m.chat.busy = false, false
		m.chat.refresh()
	}
	if msg.err != nil {
		m.login.err = errText(msg.err)
	}
	return m, nil
}

func (m appModel) onChatDone(msg chatDoneMsg) (tea.Model, tea.Cmd) {
	m.chat.busy = m.chat.core.Phase() != chat.PhaseIdle
	if msg.task != nil {
		m.tasks.Apply(collections.OpCreate, *msg.task)
		m.refreshTasks()
	}
	if errors.Is(msg.err, chat.ErrBusy) {
		m.setStatus("The assistant is still working on the previous request", true)
	}
	m.chat.refresh()

	if msg.outcome.OpenForm || (m.chat.core.FormOpen() && m.form == nil) {
		f := newTaskForm(formChatTask)
		m.form = &f
		return m, nil
	}
	if p, ok := m.chat.core.Preview(); ok && m.confirm == nil {
		m.confirm = previewModal(p)
	}
	return m, nil
}

func previewModal(p model.TaskPreview) *confirmModal {
	d := p.Draft
	lines := []string{d.Title}
	if d.Description != "" {
		lines = append(lines, d.Description)
	}
	meta := []string{}
	if d.Priority != "" {
		meta = append(meta, "priority "+string(d.Priority))
	}
	if d.DueDate != nil {
		meta = append(meta, "due "+*d.DueDate)
	}
	if d.Category != nil {
		meta = append(meta, "#"+*d.Category)
	}
	if len(meta) > 0 {
		lines = append(lines, strings.Join(meta, "  "))
	}
	return &confirmModal{
		title:        "Create this task?",
		body:         strings.Join(lines, "\n"),
		confirmLabel: "Create",
		cancelLabel:  "Discard",
		kind:         confirmCreatePreview,
	}
}

func (m *appModel) resize() {
	mainW, mainH := m.mainSize()
	m.taskList.SetSize(mainW, max(mainH-2, 1))
	m.noteList.SetSize(mainW, max(mainH-2, 1))
	m.chat.setSize(chatWidth, max(m.height-2, 5))
}

// mainSize is the area left for the current screen after header, footer and side panels.
func (m appModel) mainSize() (int, int) {
	w := m.width
	if m.sidebarOpen {
		w -= sidebarWidth
	}
	if m.chat.open {
		w -= chatWidth
	}
	return max(w, 10), max(m.height-2, 3)
}

func (m *appModel) refreshTasks() {
	visible := m.taskFilter.Apply(m.tasks.All(), m.clock)
	items := make([]list.Item, 0, len(visible))
	sel := -1
	for i, t := range visible {
		items = append(items, taskItem{task: t})
		if m.selectID != 0 && t.ID == m.selectID {
			sel = i
		}
	}
	idx := m.taskList.Index()
	m.taskList.SetItems(items)
	switch {
	case sel >= 0:
		m.taskList.Select(sel)
		m.selectID = 0
	case idx >= len(items) && len(items) > 0:
		m.taskList.Select(len(items) - 1)
	}
}

func (m *appModel) refreshNotes() {
	all := m.notes.All()
	items := make([]list.Item, 0, len(all))
	for _, n := range all {
		if n.IsPinned {
			items = append(items, noteItem{note: n})
		}
	}
	for _, n := range all {
		if !n.IsPinned {
			items = append(items, noteItem{note: n})
		}
	}
	idx := m.noteList.Index()
	m.noteList.SetItems(items)
	if idx >= len(items) && len(items) > 0 {
		m.noteList.Select(len(items) - 1)
	}
}

func (m appModel) selectedTask() (model.Task, bool) {
	it, ok := m.taskList.SelectedItem().(taskItem)
	return it.task, ok
}

func (m appModel) selectedNote() (model.Note, bool) {
	it, ok := m.noteList.SelectedItem().(noteItem)
	return it.note, ok
}

func (m appModel) onKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "ctrl+c" {
		return m, tea.Quit
	}
	if m.confirm != nil {
		return m.onConfirmKey(msg)
	}
	if m.form != nil {
		return m.onFormKey(msg)
	}
	if m.view == viewLogin {
		if m.checking {
			return m, nil
		}
		var (
			cmd    tea.Cmd
			submit bool
		)
		m.login, cmd, submit = m.login.update(msg)
		if !submit {
			return m, cmd
		}
		u, e, p := m.login.value(loginUsername), m.login.value(loginEmail), m.login.inputs[loginPassword].Value()
		if m.login.signup {
			return m, signupCmd(m.ctx, m.session, m.nav, u, e, p)
		}
		return m, loginCmd(m.ctx, m.session, m.nav, u, p)
	}
	if m.chat.open && m.chat.input.Focused() {
		return m.onChatKey(msg)
	}
	return m.onMainKey(msg)
}

func (m appModel) onConfirmKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	c := m.confirm
	switch msg.String() {
	case "tab", "shift+tab", "left", "right", "h", "l":
		c.focus = c.focus.toggle()
		return m, nil
	case "y":
		return m.acceptConfirm()
	case "n", "esc", "ctrl+g":
		return m.cancelConfirm()
	case "enter":
		if c.focus == confirmFocusConfirm {
			return m.acceptConfirm()
		}
		return m.cancelConfirm()
	}
	return m, nil
}

func (m appModel) acceptConfirm() (tea.Model, tea.Cmd) {
	c := m.confirm
	m.confirm = nil
	switch c.kind {
	case confirmDeleteTask:
		return m, deleteTaskCmd(m.ctx, m.backend, c.targetID)
	case confirmDeleteNote:
		return m, deleteNoteCmd(m.ctx, m.backend, c.targetID)
	case confirmCreatePreview:
		m.chat.busy = true
		return m, tea.Batch(chatConfirmCmd(m.ctx, m.chat.core), m.chat.spinner.Tick)
	}
	return m, nil
}

func (m appModel) cancelConfirm() (tea.Model, tea.Cmd) {
	c := m.confirm
	m.confirm = nil
	if c.kind == confirmCreatePreview {
		_ = m.chat.core.CancelPreview()
		m.chat.refresh()
	}
	return m, nil
}

func (m appModel) onFormKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	f, cmd, res := m.form.update(msg)
	m.form = &f
	switch res {
	case formCancel:
		if f.kind == formChatTask {
			m.chat.core.CloseForm()
		}
		m.form = nil
		return m, nil
	case formSubmit:
		return m.submitForm(f)
	}
	return m, cmd
}

func (m appModel) submitForm(f form) (tea.Model, tea.Cmd) {
	switch f.kind {
	case formNewNote:
		d, err := f.noteDraft()
		if err != nil {
			f.err = errText(err)
			m.form = &f
			return m, nil
		}
		m.form = nil
		return m, createNoteCmd(m.ctx, m.backend, d)
	default:
		d, err := f.taskDraft()
		if err != nil {
			f.err = errText(err)
			m.form = &f
			return m, nil
		}
		m.form = nil
		if f.kind == formChatTask {
			m.chat.busy = true
			return m, tea.Batch(chatFormCmd(m.ctx, m.chat.core, d), m.chat.spinner.Tick)
		}
		owner, ok := m.session.OwnerID()
		if !ok {
			m.setStatus("Please login first", true)
			return m, nil
		}
		d.OwnerID = owner
		return m, createTaskCmd(m.ctx, m.backend, d)
	}
}

func (m appModel) onChatKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.chat.input.Blur()
		return m, nil
	case "ctrl+r":
		m.chat.core.Retry()
		return m, nil
	case "alt+1", "alt+2", "alt+3":
		if !m.chat.canSend() {
			return m, nil
		}
		i := int(msg.String()[len("alt+")] - '1')
		return m.sendChat(chat.QuickReplies[i].Prompt)
	case "enter":
		if !m.chat.canSend() {
			return m, nil
		}
		text := m.chat.input.Value()
		if strings.TrimSpace(text) == "" {
			return m, nil
		}
		m.chat.input.SetValue("")
		return m.sendChat(text)
	}
	var cmd tea.Cmd
	m.chat.input, cmd = m.chat.input.Update(msg)
	return m, cmd
}

func (m appModel) sendChat(text string) (tea.Model, tea.Cmd) {
	if chat.IsTaskCommand(text) {
		return m, chatSendCmd(m.ctx, m.chat.core, text)
	}
	m.chat.busy = true
	m.setStatus("", false)
	return m, tea.Batch(chatSendCmd(m.ctx, m.chat.core, text), m.chat.spinner.Tick)
}

func (m *appModel) setView(v view) {
	m.view = v
	m.resumeView = v
}

func (m appModel) onMainKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch key := msg.String(); key {
	case "q":
		return m, tea.Quit
	case "1", "2", "3", "4":
		m.setView(navViews[key[0]-'1'])
		return m, nil
	case "tab":
		m.setView(navViews[(indexOfView(m.view)+1)%len(navViews)])
		return m, nil
	case "b":
		m.sidebarOpen = !m.sidebarOpen
		m.resize()
		return m, saveSidebarCmd(m.ctx, m.store, m.log, m.sidebarOpen)
	case "c":
		if !m.chat.open {
			m.chat.open = true
			m.resize()
		}
		cmd := m.chat.input.Focus()
		return m, cmd
	case "C":
		m.chat.open = false
		m.chat.input.Blur()
		m.resize()
		return m, nil
	case "r":
		return m, tea.Batch(loadTasksCmd(m.ctx, m.backend), loadNotesCmd(m.ctx, m.backend))
	case "L":
		return m, logoutCmd(m.ctx, m.session, m.nav)
	}

	switch m.view {
	case viewTasks:
		return m.onTasksKey(msg)
	case viewNotes:
		return m.onNotesKey(msg)
	case viewCalendar:
		return m.onCalendarKey(msg)
	}
	return m, nil
}

func indexOfView(v view) int {
	for i, nv := range navViews {
		if nv == v {
			return i
		}
	}
	return 0
}

func saveSidebarCmd(ctx context.Context, st store.Store, log *zap.Logger, open bool) tea.Cmd {
	return func() tea.Msg {
		if err := st.SetSidebarOpen(ctx, open); err != nil {
			log.Warn("save sidebar state failed", zap.Error(err))
		}
		return nil
	}
}

func (m appModel) onTasksKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "f":
		i := 0
		for j, f := range collections.Filters {
			if f == m.taskFilter {
				i = j
			}
		}
		m.taskFilter = collections.Filters[(i+1)%len(collections.Filters)]
		m.taskList.Select(0)
		m.refreshTasks()
		return m, nil
	case "n":
		f := newTaskForm(formNewTask)
		m.form = &f
		return m, nil
	case " ", "x":
		t, ok := m.selectedTask()
		if !ok {
			return m, nil
		}
		return m, updateTaskCmd(m.ctx, m.backend, t.ID, collections.ToggleStatus(t))
	case "d":
		t, ok := m.selectedTask()
		if !ok {
			return m, nil
		}
		m.confirm = &confirmModal{
			title:        "Delete task?",
			body:         fmt.Sprintf("%q will be removed permanently.", t.Title),
			confirmLabel: "Delete",
			cancelLabel:  "Keep",
			focus:        confirmFocusCancel,
			kind:         confirmDeleteTask,
			targetID:     t.ID,
		}
		return m, nil
	}
	var cmd tea.Cmd
	m.taskList, cmd = m.taskList.Update(msg)
	return m, cmd
}

func (m appModel) onNotesKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "n":
		f := newNoteForm()
		m.form = &f
		return m, nil
	case "p":
		n, ok := m.selectedNote()
		if !ok {
			return m, nil
		}
		pinned := !n.IsPinned
		return m, updateNoteCmd(m.ctx, m.backend, n.ID, model.NotePatch{IsPinned: &pinned})
	case "d":
		n, ok := m.selectedNote()
		if !ok {
			return m, nil
		}
		m.confirm = &confirmModal{
			title:        "Delete note?",
			body:         fmt.Sprintf("%q will be removed permanently.", n.Title),
			confirmLabel: "Delete",
			cancelLabel:  "Keep",
			focus:        confirmFocusCancel,
			kind:         confirmDeleteNote,
			targetID:     n.ID,
		}
		return m, nil
	}
	var cmd tea.Cmd
	m.noteList, cmd = m.noteList.Update(msg)
	return m, cmd
}

func (m appModel) onCalendarKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "m":
		if m.calMode == calendarMonth {
			m.calMode = calendarWeek
		} else {
			m.calMode = calendarMonth
		}
	case "h", "left":
		m.calRef = m.calMode.shift(m.calRef, -1)
	case "l", "right":
		m.calRef = m.calMode.shift(m.calRef, 1)
	case "t":
		m.calRef = m.clock.Now()
	}
	return m, nil
}

func (m appModel) View() string {
	if m.width == 0 {
		return ""
	}
	if m.view == viewLogin {
		if m.checking {
			return overlay(m.width, m.height, styleMuted().Render("Checking session…"))
		}
		return m.login.view(m.width, m.height)
	}

	mainW, mainH := m.mainSize()
	panes := []string{}
	if m.sidebarOpen {
		panes = append(panes, m.sidebarView(mainH))
	}
	panes = append(panes, normalizePane(m.mainView(mainW, mainH), mainW, mainH))
	if m.chat.open {
		panes = append(panes, m.chat.view())
	}
	body := lipgloss.JoinHorizontal(lipgloss.Top, panes...)
	screen := lipgloss.JoinVertical(lipgloss.Left, m.headerView(), body, m.footerView())

	switch {
	case m.confirm != nil:
		return overlay(m.width, m.height, m.confirm.view(m.width))
	case m.form != nil:
		return overlay(m.width, m.height, m.form.view(m.width))
	}
	return screen
}

func (m appModel) headerView() string {
	name := ""
	if u, ok := m.session.User(); ok {
		name = u.Username
	}
	left := styleTitle().Render("taskdeck") + styleMuted().Render(" / "+m.view.title())
	right := styleMuted().Render(name)
	gap := max(m.width-lipgloss.Width(left)-lipgloss.Width(right), 1)
	return left + strings.Repeat(" ", gap) + right
}

func (m appModel) footerView() string {
	if m.status != "" {
		st := styleMuted()
		if m.statusErr {
			st = styleError()
		}
		return fitLine(st.Render(m.status), m.width)
	}
	keys := "1-4: views  b: sidebar  c: chat  r: reload  L: logout  q: quit"
	switch m.view {
	case viewTasks:
		keys = "n: new  space: toggle  d: delete  f: filter  " + keys
	case viewNotes:
		keys = "n: new  p: pin  d: delete  " + keys
	case viewCalendar:
		keys = "m: month/week  h/l: prev/next  t: today  " + keys
	}
	return styleMuted().Render(fitLine(keys, m.width))
}

func (m appModel) sidebarView(height int) string {
	lines := []string{""}
	for i, v := range navViews {
		label := fmt.Sprintf("%d %s", i+1, v.title())
		lines = append(lines, styleTab(v == m.view).Render(label))
	}
	return lipgloss.NewStyle().
		Border(lipgloss.NormalBorder(), false, true, false, false).
		BorderForeground(colorBorder).
		Render(normalizePane(strings.Join(lines, "\n"), sidebarWidth-1, height))
}

func (m appModel) mainView(width, height int) string {
	switch m.view {
	case viewTasks:
		head := styleTitle().Render("Tasks") + styleMuted().Render(fmt.Sprintf("  %s · %d", m.taskFilter.Label(), len(m.taskList.Items())))
		if len(m.taskList.Items()) == 0 {
			return head + "\n\n" + styleMuted().Render("No tasks here. Press n to add one.")
		}
		return head + "\n\n" + m.taskList.View()
	case viewNotes:
		head := styleTitle().Render("Notes") + styleMuted().Render(fmt.Sprintf("  %d", len(m.noteList.Items())))
		if len(m.noteList.Items()) == 0 {
			return head + "\n\n" + styleMuted().Render("No notes yet. Press n to write one.")
		}
		return head + "\n\n" + m.noteList.View()
	case viewCalendar:
		if m.calMode == calendarWeek {
			return renderWeek(m.tasks.All(), m.calRef, m.clock.Now(), width)
		}
		return renderMonth(m.tasks.All(), m.calRef, m.clock.Now(), width)
	default:
		name := ""
		if u, ok := m.session.User(); ok {
			name = u.Username
		}
		return renderDashboard(name, m.tasks.All(), m.clock, width)
	}
}

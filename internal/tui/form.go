package tui

import (
	"strings"

	"taskdeck/internal/api"
	"taskdeck/internal/collections"
	"taskdeck/internal/model"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

type formKind int

const (
	formNewTask formKind = iota
	formChatTask
	formNewNote
)

type formResult int

const (
	formContinue formResult = iota
	formSubmit
	formCancel
)

type formField struct {
	label string
	input textinput.Model
}

// form is a small stack of single-line inputs shown in a modal.
type form struct {
	kind   formKind
	title  string
	fields []formField
	focus  int
	err    string
}

func newInput(placeholder string, limit int) textinput.Model {
	in := textinput.New()
	in.Placeholder = placeholder
	in.Prompt = ""
	in.CharLimit = limit
	return in
}

func newTaskForm(kind formKind) form {
	f := form{
		kind:  kind,
		title: "New task",
		fields: []formField{
			{label: "Title", input: newInput("What needs doing?", 200)},
			{label: "Description", input: newInput("optional", 2000)},
			{label: "Priority", input: newInput("low | medium | high", 10)},
			{label: "Due date", input: newInput("YYYY-MM-DD", 32)},
			{label: "Category", input: newInput("optional", 60)},
		},
	}
	f.fields[2].input.SetValue(string(model.PriorityMedium))
	f.fields[0].input.Focus()
	return f
}

func newNoteForm() form {
	f := form{
		kind:  formNewNote,
		title: "New note",
		fields: []formField{
			{label: "Title", input: newInput("Note title", 200)},
			{label: "Content", input: newInput("optional", 4000)},
			{label: "Category", input: newInput("optional", 60)},
		},
	}
	f.fields[0].input.Focus()
	return f
}

func (f form) value(i int) string {
	return strings.TrimSpace(f.fields[i].input.Value())
}

func (f *form) setFocus(i int) {
	n := len(f.fields)
	i = ((i % n) + n) % n
	for j := range f.fields {
		f.fields[j].input.Blur()
	}
	f.focus = i
	f.fields[i].input.Focus()
}

func (f form) update(msg tea.KeyMsg) (form, tea.Cmd, formResult) {
	switch msg.String() {
	case "esc", "ctrl+g":
		return f, nil, formCancel
	case "tab", "down":
		f.setFocus(f.focus + 1)
		return f, nil, formContinue
	case "shift+tab", "up":
		f.setFocus(f.focus - 1)
		return f, nil, formContinue
	case "enter":
		if f.focus < len(f.fields)-1 {
			f.setFocus(f.focus + 1)
			return f, nil, formContinue
		}
		return f, nil, formSubmit
	case "ctrl+s":
		return f, nil, formSubmit
	}
	var cmd tea.Cmd
	f.fields[f.focus].input, cmd = f.fields[f.focus].input.Update(msg)
	return f, cmd, formContinue
}

// taskDraft builds and validates the task form's draft.
func (f form) taskDraft() (model.TaskDraft, error) {
	d := model.TaskDraft{
		Title:       f.value(0),
		Description: f.value(1),
		DueDate:     model.OptionalString(f.value(3)),
		Category:    model.OptionalString(f.value(4)),
	}
	if raw := f.value(2); raw != "" {
		p, ok := model.ParsePriority(raw)
		if !ok {
			return d, api.ValidationError("Priority must be one of low, medium, high")
		}
		d.Priority = p
	}
	return d, collections.ValidateTaskDraft(d)
}

func (f form) noteDraft() (model.NoteDraft, error) {
	d := model.NoteDraft{
		Title:    f.value(0),
		Content:  model.OptionalString(f.value(1)),
		Category: model.OptionalString(f.value(2)),
	}
	return d, collections.ValidateNoteDraft(d)
}

func (f form) view(width int) string {
	bodyW := modalBodyWidth(width)
	var b strings.Builder
	for i, fld := range f.fields {
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString(renderField(bodyW, fld.label, i == f.focus, fld.input.View()))
		b.WriteString("\n")
	}
	if f.err != "" {
		b.WriteString("\n" + styleError().Width(bodyW).Render(f.err) + "\n")
	}
	b.WriteString("\n" + styleMuted().Width(bodyW).Render("tab: next field   enter/ctrl+s: save   esc: cancel"))
	return renderModalBox(width, f.title, b.String())
}

package tui

import (
	"fmt"
	"io"
	"strings"

	"taskdeck/internal/model"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	xansi "github.com/charmbracelet/x/ansi"
)

type taskItem struct{ task model.Task }

func (i taskItem) FilterValue() string { return i.task.Title }

type noteItem struct{ note model.Note }

func (i noteItem) FilterValue() string { return i.note.Title }

// rowDelegate draws one-line rows padded to the list width.
type rowDelegate struct {
	normal   lipgloss.Style
	selected lipgloss.Style
}

func newRowDelegate() rowDelegate {
	return rowDelegate{
		normal:   lipgloss.NewStyle(),
		selected: styleSelected(),
	}
}

func (d rowDelegate) Height() int                             { return 1 }
func (d rowDelegate) Spacing() int                            { return 0 }
func (d rowDelegate) Update(_ tea.Msg, _ *list.Model) tea.Cmd { return nil }

func (d rowDelegate) Render(w io.Writer, m list.Model, index int, item list.Item) {
	contentW := m.Width()
	if contentW < 4 {
		return
	}

	style := d.normal
	if index == m.Index() {
		style = d.selected
	}

	var line string
	switch it := item.(type) {
	case taskItem:
		line = taskRow(it.task)
	case noteItem:
		line = noteRow(it.note)
	default:
		line = fmt.Sprint(item)
	}

	lineW := xansi.StringWidth(line)
	if lineW < contentW {
		line += strings.Repeat(" ", contentW-lineW)
	} else if lineW > contentW {
		line = xansi.Cut(line, 0, contentW)
	}
	fmt.Fprint(w, style.Render(line))
}

func taskRow(t model.Task) string {
	mark := "[ ]"
	if t.IsCompleted() {
		mark = "[x]"
	}
	parts := []string{mark, priorityBadge(t.Priority), t.Title}
	if d := t.DueDay(); d != "" {
		parts = append(parts, "due "+d)
	}
	if c := t.CategoryLabel(); c != "" {
		parts = append(parts, "#"+c)
	}
	if t.IsRecurring && t.RecurrencePattern != nil {
		parts = append(parts, glyphRecurring()+" "+string(*t.RecurrencePattern))
	}
	return " " + strings.Join(parts, "  ")
}

func priorityBadge(p model.Priority) string {
	switch p {
	case model.PriorityHigh:
		return "!!!"
	case model.PriorityLow:
		return "!  "
	default:
		return "!! "
	}
}

func priorityColor(p model.Priority) lipgloss.AdaptiveColor {
	switch p {
	case model.PriorityHigh:
		return colorPriorityHigh
	case model.PriorityLow:
		return colorPriorityLow
	default:
		return colorPriorityMedium
	}
}

func noteRow(n model.Note) string {
	pin := "  "
	if n.IsPinned {
		pin = glyphPin() + " "
	}
	line := " " + pin + n.Title
	if n.Category != nil && strings.TrimSpace(*n.Category) != "" {
		line += "  #" + strings.TrimSpace(*n.Category)
	}
	if body := firstLine(n.ContentText()); body != "" {
		line += "  " + body
	}
	return line
}

func firstLine(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		s = s[:i]
	}
	return s
}

func newRowList() list.Model {
	l := list.New(nil, newRowDelegate(), 0, 0)
	l.SetShowTitle(false)
	l.SetShowHelp(false)
	l.SetShowStatusBar(false)
	l.SetFilteringEnabled(false)
	l.DisableQuitKeybindings()
	return l
}

package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

type confirmFocus int

const (
	confirmFocusConfirm confirmFocus = iota
	confirmFocusCancel
)

func (f confirmFocus) toggle() confirmFocus {
	if f == confirmFocusConfirm {
		return confirmFocusCancel
	}
	return confirmFocusConfirm
}

// confirmModal asks one yes/no question. kind and targetID say what acceptance acts on.
type confirmModal struct {
	title        string
	body         string
	confirmLabel string
	cancelLabel  string
	focus        confirmFocus
	kind         confirmKind
	targetID     int
}

type confirmKind int

const (
	confirmDeleteTask confirmKind = iota
	confirmDeleteNote
	confirmCreatePreview
)

func (m confirmModal) view(width int) string {
	btnBase := lipgloss.NewStyle().
		Padding(0, 1).
		Foreground(colorSurfaceFg).
		Background(colorControlBg)
	btnActive := btnBase.
		Foreground(colorSelectedFg).
		Background(colorSelectedBg).
		Bold(true)

	confirm := btnBase.Render(m.confirmLabel)
	cancel := btnBase.Render(m.cancelLabel)
	if m.focus == confirmFocusConfirm {
		confirm = btnActive.Render(m.confirmLabel)
	} else {
		cancel = btnActive.Render(m.cancelLabel)
	}
	controls := lipgloss.JoinHorizontal(lipgloss.Top, confirm, " ", cancel)

	bodyW := modalBodyWidth(width)
	help := styleMuted().Width(bodyW).Render("tab: focus   enter: select   y/n   esc: cancel")

	content := strings.Join([]string{
		lipgloss.NewStyle().Width(bodyW).Render(m.body),
		"",
		controls,
		"",
		help,
	}, "\n")
	return renderModalBox(width, m.title, content)
}

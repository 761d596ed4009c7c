package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

const (
	loginUsername = iota
	loginEmail
	loginPassword
)

// loginModel is the landing screen. Signup mode adds the email field.
type loginModel struct {
	signup bool
	inputs []textinput.Model
	focus  int
	busy   bool
	err    string
}

func newLoginModel() loginModel {
	user := newInput("username", 150)
	email := newInput("you@example.com", 254)
	pass := newInput("password", 256)
	pass.EchoMode = textinput.EchoPassword
	pass.EchoCharacter = '•'
	user.Focus()
	return loginModel{inputs: []textinput.Model{user, email, pass}}
}

func (l loginModel) order() []int {
	if l.signup {
		return []int{loginUsername, loginEmail, loginPassword}
	}
	return []int{loginUsername, loginPassword}
}

func (l *loginModel) move(delta int) {
	order := l.order()
	pos := 0
	for i, idx := range order {
		if idx == l.focus {
			pos = i
		}
	}
	pos = ((pos+delta)%len(order) + len(order)) % len(order)
	for i := range l.inputs {
		l.inputs[i].Blur()
	}
	l.focus = order[pos]
	l.inputs[l.focus].Focus()
}

func (l loginModel) value(i int) string { return strings.TrimSpace(l.inputs[i].Value()) }

// update returns submit=true when the form is complete and should be sent.
func (l loginModel) update(msg tea.KeyMsg) (loginModel, tea.Cmd, bool) {
	if l.busy {
		return l, nil, false
	}
	switch msg.String() {
	case "ctrl+t":
		l.signup = !l.signup
		l.err = ""
		if !l.signup && l.focus == loginEmail {
			l.move(1)
		}
		return l, nil, false
	case "tab", "down":
		l.move(1)
		return l, nil, false
	case "shift+tab", "up":
		l.move(-1)
		return l, nil, false
	case "enter":
		order := l.order()
		if l.focus != order[len(order)-1] {
			l.move(1)
			return l, nil, false
		}
		if problem := l.missing(); problem != "" {
			l.err = problem
			return l, nil, false
		}
		l.err = ""
		l.busy = true
		return l, nil, true
	}
	var cmd tea.Cmd
	l.inputs[l.focus], cmd = l.inputs[l.focus].Update(msg)
	return l, cmd, false
}

func (l loginModel) missing() string {
	if l.value(loginUsername) == "" || l.inputs[loginPassword].Value() == "" {
		return "Username and password are required"
	}
	if l.signup && l.value(loginEmail) == "" {
		return "Email is required"
	}
	return ""
}

func (l loginModel) view(width, height int) string {
	bodyW := modalBodyWidth(width)
	title := "Sign in"
	if l.signup {
		title = "Create account"
	}

	var b strings.Builder
	labels := map[int]string{loginUsername: "Username", loginEmail: "Email", loginPassword: "Password"}
	for i, idx := range l.order() {
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString(renderField(bodyW, labels[idx], idx == l.focus, l.inputs[idx].View()))
		b.WriteString("\n")
	}
	switch {
	case l.busy:
		b.WriteString("\n" + styleMuted().Render("Signing in…") + "\n")
	case l.err != "":
		b.WriteString("\n" + styleError().Width(bodyW).Render(l.err) + "\n")
	}
	toggle := "ctrl+t: create an account"
	if l.signup {
		toggle = "ctrl+t: back to sign in"
	}
	b.WriteString("\n" + styleMuted().Width(bodyW).Render("enter: submit   "+toggle+"   ctrl+c: quit"))

	box := renderModalBox(width, title, b.String())
	banner := lipgloss.NewStyle().Bold(true).Foreground(colorAccent).Render("taskdeck")
	return overlay(width, height, lipgloss.JoinVertical(lipgloss.Center, banner, "", box))
}

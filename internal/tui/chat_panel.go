package tui

import (
	"fmt"
	"strings"

	"taskdeck/internal/chat"
	"taskdeck/internal/model"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	"github.com/charmbracelet/lipgloss"
)

// chatPanel renders the assistant thread owned by chat.Core. The panel holds view state only.
type chatPanel struct {
	core     *chat.Core
	open     bool
	busy     bool
	started  bool
	input    textinput.Model
	viewport viewport.Model
	spinner  spinner.Model
	width    int
	height   int
}

func newChatPanel(core *chat.Core) chatPanel {
	in := newInput("Ask the assistant, or /task to open the task form", 2000)
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(colorAccent)
	return chatPanel{
		core:     core,
		input:    in,
		viewport: viewport.New(0, 0),
		spinner:  sp,
	}
}

// chromeLines is everything in the panel that is not the message viewport.
const chromeLines = 7

func (p *chatPanel) setSize(w, h int) {
	p.width, p.height = w, h
	p.viewport.Width = max(w-2, 10)
	p.viewport.Height = max(h-chromeLines, 3)
	p.input.Width = max(w-6, 10)
	p.refresh()
}

func (p *chatPanel) refresh() {
	msgs := p.core.Messages()
	parts := make([]string, 0, len(msgs))
	for _, m := range msgs {
		parts = append(parts, renderChatMessage(m, p.viewport.Width))
	}
	p.viewport.SetContent(strings.Join(parts, "\n\n"))
	p.viewport.GotoBottom()
}

func renderChatMessage(m model.ChatMessage, width int) string {
	label := lipgloss.NewStyle().Bold(true).Foreground(colorAccent).Render("Assistant")
	if m.Sender == model.SenderUser {
		label = lipgloss.NewStyle().Bold(true).Foreground(colorSurfaceFg).Render("You")
	}
	label += styleMuted().Render(" " + m.Timestamp.Local().Format("15:04"))

	body := m.Content
	switch {
	case m.Kind == model.MessageError:
		body = styleError().Width(width).Render(body)
	case m.Kind == model.MessageInfo:
		body = lipgloss.NewStyle().Foreground(colorInfo).Width(width).Render(body)
	case m.Kind == model.MessageConfirmation:
		body = lipgloss.NewStyle().Foreground(colorSuccess).Width(width).Render(body)
	case m.Sender == model.SenderAI:
		body = renderMarkdown(body, width)
	default:
		body = lipgloss.NewStyle().Width(width).Render(body)
	}

	var tags []string
	if m.Priority != nil {
		tags = append(tags, lipgloss.NewStyle().Foreground(priorityColor(*m.Priority)).Render("priority "+string(*m.Priority)))
	}
	if m.Category != nil && *m.Category != "" {
		tags = append(tags, "#"+*m.Category)
	}
	if m.DueDate != nil && *m.DueDate != "" {
		tags = append(tags, "due "+*m.DueDate)
	}
	out := label + "\n" + body
	if len(tags) > 0 {
		out += "\n" + styleMuted().Render(strings.Join(tags, "  "))
	}
	return out
}

// canSend is false until the health check has seeded the thread and while a reply is pending.
func (p chatPanel) canSend() bool {
	return p.started && !p.busy && !p.core.Busy(chat.ActionSend)
}

func phaseLabel(p chat.Phase) string {
	switch p {
	case chat.PhaseContactingAgent:
		return "Contacting assistant" + glyphEllipsis()
	case chat.PhaseExecutingTask:
		return "Working on your task" + glyphEllipsis()
	case chat.PhaseContactingBackend:
		return "Saving task" + glyphEllipsis()
	default:
		return ""
	}
}

func (p chatPanel) view() string {
	w := max(p.width-2, 10)

	status := lipgloss.NewStyle().Foreground(colorSuccess).Render(glyphOnline() + " online")
	if !p.core.AgentAvailable() {
		status = styleMuted().Render(glyphOffline() + " offline, basic mode")
	}
	header := styleTitle().Render("Assistant") + "  " + status

	var statusLine string
	switch {
	case p.busy:
		statusLine = p.spinner.View() + " " + styleMuted().Render(phaseLabel(p.core.Phase()))
	default:
		if n, ok := p.core.Notice(); ok {
			statusLine = styleError().Render(n.Message) + "  " +
				styleMuted().Render(n.Guidance+" ctrl+r: "+n.RetryLabel)
		}
	}

	replies := make([]string, 0, len(chat.QuickReplies))
	for i, q := range chat.QuickReplies {
		replies = append(replies, fmt.Sprintf("alt+%d %s", i+1, q.Label))
	}

	lines := []string{
		header,
		p.viewport.View(),
		fitLine(statusLine, w),
		p.inputView(w),
		styleMuted().Render(fitLine(strings.Join(replies, "   "), w)),
		styleMuted().Render(fitLine("enter: send   esc: close", w)),
	}
	return lipgloss.NewStyle().
		Border(lipgloss.NormalBorder(), false, false, false, true).
		BorderForeground(colorBorder).
		PaddingLeft(1).
		Render(normalizePane(strings.Join(lines, "\n"), w, p.height))
}

// inputView greys the input out while sending is blocked. Typed text is kept.
func (p chatPanel) inputView(w int) string {
	if p.canSend() {
		return renderInputLine(w, p.input.View())
	}
	text := p.input.Value()
	if text == "" {
		text = "waiting for the assistant" + glyphEllipsis()
	}
	return renderInputLine(w, styleMuted().Render(text))
}

package tui

import (
	"fmt"
	"strings"
	"time"

	"taskdeck/internal/collections"
	"taskdeck/internal/model"

	"github.com/charmbracelet/lipgloss"
)

type calendarMode string

const (
	calendarMonth calendarMode = "month"
	calendarWeek  calendarMode = "week"
)

func parseCalendarMode(s string) calendarMode {
	if calendarMode(s) == calendarWeek {
		return calendarWeek
	}
	return calendarMonth
}

// shift moves ref by one page in mode.
func (c calendarMode) shift(ref time.Time, dir int) time.Time {
	if c == calendarWeek {
		return ref.AddDate(0, 0, 7*dir)
	}
	first := time.Date(ref.Year(), ref.Month(), 1, 0, 0, 0, 0, ref.Location())
	return first.AddDate(0, dir, 0)
}

var weekdayHeaders = []string{"Sun", "Mon", "Tue", "Wed", "Thu", "Fri", "Sat"}

func renderMonth(tasks []model.Task, ref, today time.Time, width int) string {
	grid := collections.MonthGrid(tasks, ref.Year(), ref.Month(), ref.Location())
	cellW := max(width/7, 5)

	var b strings.Builder
	b.WriteString(styleTitle().Render(ref.Format("January 2006")) + "\n\n")
	for _, h := range weekdayHeaders {
		b.WriteString(styleMuted().Render(fitLine(h, cellW)))
	}
	b.WriteString("\n")

	todayKey := today.Format("2006-01-02")
	for _, week := range grid {
		for _, d := range week {
			cell := fmt.Sprintf("%2d", d.Date.Day())
			if n := len(d.Tasks); n > 0 {
				cell += fmt.Sprintf(" %s%d", glyphDue(), n)
			}
			st := lipgloss.NewStyle()
			switch {
			case d.Key() == todayKey:
				st = styleSelected()
			case !d.InMonth:
				st = styleMuted()
			}
			b.WriteString(st.Render(fitLine(cell, cellW)))
		}
		b.WriteString("\n")
	}

	due := collections.ForDay(tasks, today)
	b.WriteString("\n" + styleTitle().Render("Today") + "\n")
	b.WriteString(renderTaskLines(due, width))
	return b.String()
}

func renderWeek(tasks []model.Task, ref, today time.Time, width int) string {
	start := collections.WeekStart(ref)
	days := collections.Week(tasks, start)

	var b strings.Builder
	end := start.AddDate(0, 0, 6)
	b.WriteString(styleTitle().Render(fmt.Sprintf("Week of %s – %s", start.Format("Jan 2"), end.Format("Jan 2, 2006"))) + "\n\n")
	todayKey := today.Format("2006-01-02")
	for _, d := range days {
		head := d.Date.Format("Mon Jan 2")
		if d.Key() == todayKey {
			head = styleSelected().Render(head)
		} else {
			head = lipgloss.NewStyle().Bold(true).Render(head)
		}
		b.WriteString(head + "\n")
		b.WriteString(renderTaskLines(d.Tasks, width))
	}
	return b.String()
}

func renderTaskLines(tasks []model.Task, width int) string {
	if len(tasks) == 0 {
		return styleMuted().Render("  nothing due") + "\n"
	}
	var b strings.Builder
	for _, t := range tasks {
		b.WriteString(fitLine(" "+taskRow(t), width) + "\n")
	}
	return b.String()
}

func renderDashboard(user string, tasks []model.Task, clock collections.Clock, width int) string {
	stats := collections.ComputeStats(tasks, clock)

	stat := func(label string, n int, c lipgloss.AdaptiveColor) string {
		return lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorBorder).
			Padding(0, 2).
			Render(lipgloss.NewStyle().Bold(true).Foreground(c).Render(fmt.Sprint(n)) + "\n" + styleMuted().Render(label))
	}

	var b strings.Builder
	greeting := "Welcome back"
	if user != "" {
		greeting += ", " + user
	}
	b.WriteString(styleTitle().Render(greeting) + "\n\n")
	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top,
		stat("Total", stats.Total, colorSurfaceFg), " ",
		stat("Pending", stats.Pending, colorPriorityMedium), " ",
		stat("Completed", stats.Completed, colorSuccess), " ",
		stat("Due today", stats.DueToday, colorInfo), " ",
		stat("Overdue", stats.Overdue, colorError),
	))
	b.WriteString("\n\n" + styleTitle().Render("Due today") + "\n")
	b.WriteString(renderTaskLines(collections.FilterDueToday.Apply(tasks, clock), width))
	return b.String()
}

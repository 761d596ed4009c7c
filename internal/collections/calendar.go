package collections

import (
	"time"

	"taskdeck/internal/model"
)

const dayLayout = "2006-01-02"

type Day struct {
	Date time.Time
	// InMonth is false for leading/trailing days shown to fill a month grid.
	InMonth bool
	Tasks   []model.Task
}

func (d Day) Key() string { return d.Date.Format(dayLayout) }

// ForDay returns tasks due on the calendar day of date.
func ForDay(tasks []model.Task, date time.Time) []model.Task {
	key := date.Format(dayLayout)
	return where(tasks, func(t model.Task) bool { return t.DueDay() == key })
}

// WeekStart returns the Sunday on or before t, at midnight in t's location.
func WeekStart(t time.Time) time.Time {
	d := midnight(t)
	return d.AddDate(0, 0, -int(d.Weekday()))
}

// Week returns seven consecutive day buckets beginning at start.
func Week(tasks []model.Task, start time.Time) []Day {
	byDay := indexByDay(tasks)
	start = midnight(start)
	out := make([]Day, 7)
	for i := range out {
		d := start.AddDate(0, 0, i)
		out[i] = Day{Date: d, InMonth: true, Tasks: byDay[d.Format(dayLayout)]}
	}
	return out
}

// MonthGrid returns Sunday-start weeks covering every day of the month, padded with days
// from the neighbouring months.
func MonthGrid(tasks []model.Task, year int, month time.Month, loc *time.Location) [][]Day {
	if loc == nil {
		loc = time.Local
	}
	byDay := indexByDay(tasks)
	first := time.Date(year, month, 1, 0, 0, 0, 0, loc)
	last := first.AddDate(0, 1, -1)
	start := first.AddDate(0, 0, -int(first.Weekday()))
	end := last.AddDate(0, 0, 6-int(last.Weekday()))

	var weeks [][]Day
	for cur := start; !cur.After(end); cur = cur.AddDate(0, 0, 7) {
		week := make([]Day, 7)
		for i := range week {
			d := cur.AddDate(0, 0, i)
			week[i] = Day{Date: d, InMonth: d.Month() == month, Tasks: byDay[d.Format(dayLayout)]}
		}
		weeks = append(weeks, week)
	}
	return weeks
}

type Stats struct {
	Total     int `json:"total"`
	Pending   int `json:"pending"`
	Completed int `json:"completed"`
	DueToday  int `json:"dueToday"`
	Overdue   int `json:"overdue"`
}

// ComputeStats counts tasks for the dashboard header. Overdue means pending with a due day
// before today.
func ComputeStats(tasks []model.Task, clock Clock) Stats {
	if clock == nil {
		clock = SystemClock{}
	}
	today := clock.Now().Format(dayLayout)
	var s Stats
	for _, t := range tasks {
		s.Total++
		if t.Status == model.StatusCompleted {
			s.Completed++
			continue
		}
		s.Pending++
		switch d := t.DueDay(); {
		case d == today:
			s.DueToday++
		case d != "" && d < today:
			s.Overdue++
		}
	}
	return s
}

func indexByDay(tasks []model.Task) map[string][]model.Task {
	out := map[string][]model.Task{}
	for _, t := range tasks {
		if d := t.DueDay(); d != "" {
			out[d] = append(out[d], t)
		}
	}
	return out
}

func midnight(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

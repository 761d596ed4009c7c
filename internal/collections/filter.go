package collections

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"taskdeck/internal/model"
)

// Clock supplies "now". Its location decides which calendar day counts as today.
type Clock interface {
	Now() time.Time
}

type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now() }

type FixedClock time.Time

func (c FixedClock) Now() time.Time { return time.Time(c) }

type Filter string

const (
	FilterAll       Filter = "all"
	FilterPending   Filter = "pending"
	FilterCompleted Filter = "completed"
	FilterDueToday  Filter = "due_today"
)

var Filters = []Filter{FilterAll, FilterPending, FilterCompleted, FilterDueToday}

func ParseFilter(s string) (Filter, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	s = strings.ReplaceAll(s, "-", "_")
	if s == "" {
		return FilterAll, nil
	}
	for _, f := range Filters {
		if string(f) == s {
			return f, nil
		}
	}
	return "", fmt.Errorf("unknown filter: %q (want all|pending|completed|due_today)", s)
}

func (f Filter) Label() string {
	switch f {
	case FilterPending:
		return "Pending"
	case FilterCompleted:
		return "Completed"
	case FilterDueToday:
		return "Due today"
	default:
		return "All"
	}
}

// Apply returns the tasks matching f. The input slice is never modified.
func (f Filter) Apply(tasks []model.Task, clock Clock) []model.Task {
	switch f {
	case FilterPending:
		return where(tasks, func(t model.Task) bool { return t.Status == model.StatusPending })
	case FilterCompleted:
		return where(tasks, func(t model.Task) bool { return t.Status == model.StatusCompleted })
	case FilterDueToday:
		if clock == nil {
			clock = SystemClock{}
		}
		today := clock.Now().Format(dayLayout)
		return where(tasks, func(t model.Task) bool {
			return t.Status == model.StatusPending && t.DueDay() == today
		})
	default:
		return where(tasks, func(model.Task) bool { return true })
	}
}

// DueBetween returns tasks due on a day in [from, to], both inclusive, ordered by due date.
func DueBetween(tasks []model.Task, from, to time.Time) []model.Task {
	lo, hi := from.Format(dayLayout), to.Format(dayLayout)
	out := where(tasks, func(t model.Task) bool {
		d := t.DueDay()
		return d != "" && d >= lo && d <= hi
	})
	sort.SliceStable(out, func(i, j int) bool { return out[i].DueDay() < out[j].DueDay() })
	return out
}

// ByCategory matches case-insensitively. An empty category selects uncategorized tasks.
func ByCategory(tasks []model.Task, category string) []model.Task {
	category = strings.TrimSpace(category)
	return where(tasks, func(t model.Task) bool { return strings.EqualFold(t.CategoryLabel(), category) })
}

// Categories lists distinct non-empty categories in first-seen order.
func Categories(tasks []model.Task) []string {
	seen := map[string]bool{}
	var out []string
	for _, t := range tasks {
		c := t.CategoryLabel()
		key := strings.ToLower(c)
		if c == "" || seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, c)
	}
	return out
}

func where(tasks []model.Task, keep func(model.Task) bool) []model.Task {
	out := make([]model.Task, 0, len(tasks))
	for _, t := range tasks {
		if keep(t) {
			out = append(out, t)
		}
	}
	return out
}

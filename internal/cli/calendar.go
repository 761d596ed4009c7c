package cli

import (
	"fmt"
	"strings"
	"time"

	"taskdeck/internal/collections"
	"taskdeck/internal/format"
	"taskdeck/internal/model"

	"github.com/spf13/cobra"
)

type dayView struct {
	Date    string       `json:"date"`
	InMonth bool         `json:"inMonth"`
	Tasks   []model.Task `json:"tasks"`
}

func toDayView(d collections.Day) dayView {
	tasks := d.Tasks
	if tasks == nil {
		tasks = []model.Task{}
	}
	return dayView{Date: d.Key(), InMonth: d.InMonth, Tasks: tasks}
}

func newCalendarCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "calendar",
		Aliases: []string{"cal"},
		Short:   "Tasks laid out by due date",
	}
	cmd.AddCommand(newCalendarMonthCmd(app))
	cmd.AddCommand(newCalendarWeekCmd(app))
	cmd.AddCommand(newCalendarDayCmd(app))
	return cmd
}

func newCalendarMonthCmd(app *App) *cobra.Command {
	var month string

	cmd := &cobra.Command{
		Use:   "month",
		Short: "Month grid (weeks start on Sunday)",
		RunE: func(cmd *cobra.Command, args []string) error {
			ref := time.Now()
			if month != "" {
				t, err := time.ParseInLocation("2006-01", month, time.Local)
				if err != nil {
					return writeErr(cmd, errInvalidValue("month", month, "YYYY-MM"))
				}
				ref = t
			}
			all, err := app.client.GetTasks(cmd.Context())
			if err != nil {
				return writeErr(cmd, err)
			}

			grid := collections.MonthGrid(all, ref.Year(), ref.Month(), time.Local)
			weeks := make([][]dayView, 0, len(grid))
			rows := make([][]string, 0, len(grid))
			for _, week := range grid {
				wv := make([]dayView, 0, len(week))
				row := make([]string, 0, len(week))
				for _, d := range week {
					wv = append(wv, toDayView(d))
					row = append(row, monthCell(d))
				}
				weeks = append(weeks, wv)
				rows = append(rows, row)
			}
			return writeOut(cmd, app, format.Table{
				Columns: []string{"SUN", "MON", "TUE", "WED", "THU", "FRI", "SAT"},
				Body:    rows,
				Data: map[string]any{
					"month": ref.Format("2006-01"),
					"weeks": weeks,
				},
			})
		},
	}

	cmd.Flags().StringVar(&month, "month", "", "Month to show (YYYY-MM, default current)")
	return cmd
}

// monthCell is "DD" or "DD(n)" with n due tasks; days outside the month are bracketed.
func monthCell(d collections.Day) string {
	s := fmt.Sprintf("%02d", d.Date.Day())
	if n := len(d.Tasks); n > 0 {
		s += fmt.Sprintf("(%d)", n)
	}
	if !d.InMonth {
		s = "[" + s + "]"
	}
	return s
}

func newCalendarWeekCmd(app *App) *cobra.Command {
	var start string

	cmd := &cobra.Command{
		Use:   "week",
		Short: "Seven days of tasks",
		RunE: func(cmd *cobra.Command, args []string) error {
			from := collections.WeekStart(time.Now())
			if start != "" {
				t, err := time.ParseInLocation("2006-01-02", start, time.Local)
				if err != nil {
					return writeErr(cmd, errInvalidValue("start", start, "YYYY-MM-DD"))
				}
				from = t
			}
			all, err := app.client.GetTasks(cmd.Context())
			if err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, daysTable(collections.Week(all, from)))
		},
	}

	cmd.Flags().StringVar(&start, "start", "", "First day (YYYY-MM-DD, default this week's Sunday)")
	return cmd
}

func newCalendarDayCmd(app *App) *cobra.Command {
	var date string

	cmd := &cobra.Command{
		Use:   "day",
		Short: "Tasks due on one day",
		RunE: func(cmd *cobra.Command, args []string) error {
			day := time.Now()
			if date != "" {
				t, err := time.ParseInLocation("2006-01-02", date, time.Local)
				if err != nil {
					return writeErr(cmd, errInvalidValue("date", date, "YYYY-MM-DD"))
				}
				day = t
			}
			all, err := app.client.GetTasks(cmd.Context())
			if err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, taskTable(collections.ForDay(all, day)))
		},
	}

	cmd.Flags().StringVar(&date, "date", "", "Day to show (YYYY-MM-DD, default today)")
	return cmd
}

func daysTable(days []collections.Day) format.Table {
	views := make([]dayView, 0, len(days))
	rows := make([][]string, 0, len(days))
	for _, d := range days {
		views = append(views, toDayView(d))
		titles := make([]string, 0, len(d.Tasks))
		for _, t := range d.Tasks {
			titles = append(titles, statusMark(t)+" "+t.Title)
		}
		rows = append(rows, []string{d.Key(), d.Date.Weekday().String()[:3], orDash(strings.Join(titles, ", "))})
	}
	return format.Table{
		Columns: []string{"DATE", "DAY", "TASKS"},
		Body:    rows,
		Data:    map[string]any{"data": views},
	}
}

func newDashboardCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "dashboard",
		Short: "Task counts and what is due today",
		RunE: func(cmd *cobra.Command, args []string) error {
			all, err := app.client.GetTasks(cmd.Context())
			if err != nil {
				return writeErr(cmd, err)
			}
			clock := collections.SystemClock{}
			return writeOut(cmd, app, map[string]any{
				"stats":    collections.ComputeStats(all, clock),
				"dueToday": collections.FilterDueToday.Apply(all, clock),
			})
		},
	}
}

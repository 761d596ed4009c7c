package cli

import (
	"strconv"
	"strings"
	"time"

	"taskdeck/internal/collections"
	"taskdeck/internal/format"
	"taskdeck/internal/model"

	"github.com/spf13/cobra"
)

func newTasksCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "tasks",
		Aliases: []string{"task"},
		Short:   "Task commands",
	}
	cmd.AddCommand(newTasksListCmd(app))
	cmd.AddCommand(newTasksShowCmd(app))
	cmd.AddCommand(newTasksCreateCmd(app))
	cmd.AddCommand(newTasksUpdateCmd(app))
	cmd.AddCommand(newTasksStatusCmd(app, "complete", "Mark a task completed", func(model.Task) model.TaskPatch {
		return collections.StatusPatch(model.StatusCompleted)
	}))
	cmd.AddCommand(newTasksStatusCmd(app, "reopen", "Mark a task pending again", func(model.Task) model.TaskPatch {
		return collections.StatusPatch(model.StatusPending)
	}))
	cmd.AddCommand(newTasksStatusCmd(app, "toggle", "Flip a task between pending and completed", collections.ToggleStatus))
	cmd.AddCommand(newTasksDeleteCmd(app))
	return cmd
}

func taskTable(tasks []model.Task) format.Table {
	rows := make([][]string, 0, len(tasks))
	for _, t := range tasks {
		rows = append(rows, []string{
			strconv.Itoa(t.ID),
			statusMark(t),
			string(t.Priority),
			orDash(t.DueDay()),
			orDash(t.CategoryLabel()),
			t.Title,
		})
	}
	return format.Table{
		Columns: []string{"ID", "DONE", "PRIORITY", "DUE", "CATEGORY", "TITLE"},
		Body:    rows,
		Data:    map[string]any{"data": tasks},
	}
}

func statusMark(t model.Task) string {
	if t.IsCompleted() {
		return "[x]"
	}
	return "[ ]"
}

func orDash(s string) string {
	if strings.TrimSpace(s) == "" {
		return "-"
	}
	return s
}

func newTasksListCmd(app *App) *cobra.Command {
	var (
		filter   string
		category string
		from     string
		to       string
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List tasks",
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := collections.ParseFilter(filter)
			if err != nil {
				return writeErr(cmd, err)
			}
			all, err := app.client.GetTasks(cmd.Context())
			if err != nil {
				return writeErr(cmd, err)
			}

			clock := collections.SystemClock{}
			tasks := collections.NewTasks(clock)
			tasks.Replace(all)
			out := f.Apply(tasks.All(), clock)
			if strings.TrimSpace(category) != "" {
				out = collections.ByCategory(out, category)
			}
			if from != "" || to != "" {
				start, end, err := parseRange(from, to)
				if err != nil {
					return writeErr(cmd, err)
				}
				out = collections.DueBetween(out, start, end)
			}
			return writeOut(cmd, app, taskTable(out))
		},
	}

	cmd.Flags().StringVar(&filter, "filter", "all", "all|pending|completed|due_today")
	cmd.Flags().StringVar(&category, "category", "", "Only tasks in this category")
	cmd.Flags().StringVar(&from, "from", "", "Only tasks due on or after this date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&to, "to", "", "Only tasks due on or before this date (YYYY-MM-DD)")
	return cmd
}

// parseRange parses inclusive day bounds. Missing bounds are open.
func parseRange(from, to string) (time.Time, time.Time, error) {
	start := time.Date(1, 1, 1, 0, 0, 0, 0, time.Local)
	end := time.Date(9999, 12, 31, 0, 0, 0, 0, time.Local)
	if from != "" {
		d, err := time.ParseInLocation("2006-01-02", from, time.Local)
		if err != nil {
			return start, end, errInvalidValue("from", from, "YYYY-MM-DD")
		}
		start = d
	}
	if to != "" {
		d, err := time.ParseInLocation("2006-01-02", to, time.Local)
		if err != nil {
			return start, end, errInvalidValue("to", to, "YYYY-MM-DD")
		}
		end = d
	}
	return start, end, nil
}

func newTasksShowCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "show <task-id>",
		Short: "Show a task",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID("task", args[0])
			if err != nil {
				return writeErr(cmd, err)
			}
			t, err := app.client.GetTask(cmd.Context(), id)
			if err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{"data": t})
		},
	}
}

type taskFlags struct {
	title       string
	description string
	priority    string
	due         string
	category    string
	recurring   string
}

func (f *taskFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.title, "title", "", "Title")
	cmd.Flags().StringVar(&f.description, "description", "", "Description")
	cmd.Flags().StringVar(&f.priority, "priority", "", "low|medium|high")
	cmd.Flags().StringVar(&f.due, "due", "", "Due date (YYYY-MM-DD or ISO-8601)")
	cmd.Flags().StringVar(&f.category, "category", "", "Category")
	cmd.Flags().StringVar(&f.recurring, "recurring", "", "daily|weekly|monthly|yearly (none to stop repeating)")
}

func parsePriorityFlag(raw string) (model.Priority, error) {
	p, ok := model.ParsePriority(raw)
	if !ok {
		return "", errInvalidValue("priority", raw, "low|medium|high")
	}
	return p, nil
}

// parseRecurringFlag returns nil for "none".
func parseRecurringFlag(raw string) (*model.Recurrence, error) {
	if strings.EqualFold(strings.TrimSpace(raw), "none") {
		return nil, nil
	}
	r, ok := model.ParseRecurrence(raw)
	if !ok {
		return nil, errInvalidValue("recurring", raw, "daily|weekly|monthly|yearly|none")
	}
	return &r, nil
}

func newTasksCreateCmd(app *App) *cobra.Command {
	var f taskFlags

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a task",
		RunE: func(cmd *cobra.Command, args []string) error {
			draft := model.TaskDraft{
				Title:       strings.TrimSpace(f.title),
				Description: strings.TrimSpace(f.description),
				DueDate:     model.OptionalString(f.due),
				Category:    model.OptionalString(f.category),
			}
			if f.priority != "" {
				p, err := parsePriorityFlag(f.priority)
				if err != nil {
					return writeErr(cmd, err)
				}
				draft.Priority = p
			}
			if f.recurring != "" {
				r, err := parseRecurringFlag(f.recurring)
				if err != nil {
					return writeErr(cmd, err)
				}
				draft.IsRecurring = r != nil
				draft.RecurrencePattern = r
			}
			if err := collections.ValidateTaskDraft(draft); err != nil {
				return writeErr(cmd, err)
			}

			u, err := requireUser(cmd.Context(), app)
			if err != nil {
				return writeErr(cmd, err)
			}
			draft.OwnerID = u.ID

			t, err := app.client.CreateTask(cmd.Context(), draft)
			if err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{"data": t})
		},
	}

	f.register(cmd)
	_ = cmd.MarkFlagRequired("title")
	return cmd
}

func newTasksUpdateCmd(app *App) *cobra.Command {
	var (
		f      taskFlags
		status string
	)

	cmd := &cobra.Command{
		Use:   "update <task-id>",
		Short: "Update the given fields of a task",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID("task", args[0])
			if err != nil {
				return writeErr(cmd, err)
			}

			var patch model.TaskPatch
			changed := cmd.Flags().Changed
			if changed("title") {
				v := strings.TrimSpace(f.title)
				patch.Title = &v
			}
			if changed("description") {
				v := f.description
				patch.Description = &v
			}
			if changed("priority") {
				p, err := parsePriorityFlag(f.priority)
				if err != nil {
					return writeErr(cmd, err)
				}
				patch.Priority = &p
			}
			if changed("due") {
				v := strings.TrimSpace(f.due)
				patch.DueDate = &v
			}
			if changed("category") {
				v := strings.TrimSpace(f.category)
				patch.Category = &v
			}
			if changed("recurring") {
				r, err := parseRecurringFlag(f.recurring)
				if err != nil {
					return writeErr(cmd, err)
				}
				rec := collections.SetRecurrence(r)
				patch.IsRecurring, patch.RecurrencePattern = rec.IsRecurring, rec.RecurrencePattern
			}
			if changed("status") {
				s, ok := model.ParseStatus(status)
				if !ok {
					return writeErr(cmd, errInvalidValue("status", status, "pending|completed"))
				}
				patch.Status = &s
			}
			if patch.IsEmpty() {
				return writeErr(cmd, errNoChanges("task"))
			}
			if err := collections.ValidateTaskPatch(patch); err != nil {
				return writeErr(cmd, err)
			}

			t, err := app.client.UpdateTask(cmd.Context(), id, patch)
			if err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{"data": t})
		},
	}

	f.register(cmd)
	cmd.Flags().StringVar(&status, "status", "", "pending|completed")
	return cmd
}

func newTasksStatusCmd(app *App, use, short string, patchFor func(model.Task) model.TaskPatch) *cobra.Command {
	return &cobra.Command{
		Use:   use + " <task-id>",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID("task", args[0])
			if err != nil {
				return writeErr(cmd, err)
			}
			cur, err := app.client.GetTask(cmd.Context(), id)
			if err != nil {
				return writeErr(cmd, err)
			}
			t, err := app.client.UpdateTask(cmd.Context(), id, patchFor(cur))
			if err != nil {
				return writeErr(cmd, err)
			}
			t.Normalize(time.Now())
			return writeOut(cmd, app, map[string]any{"data": t})
		},
	}
}

func newTasksDeleteCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <task-id>",
		Short: "Delete a task",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID("task", args[0])
			if err != nil {
				return writeErr(cmd, err)
			}
			if err := app.client.DeleteTask(cmd.Context(), id); err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{"data": map[string]any{"id": id, "deleted": true}})
		},
	}
}

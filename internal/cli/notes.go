package cli

import (
	"sort"
	"strconv"
	"strings"

	"taskdeck/internal/collections"
	"taskdeck/internal/format"
	"taskdeck/internal/model"

	"github.com/spf13/cobra"
)

func newNotesCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "notes",
		Aliases: []string{"note"},
		Short:   "Note commands",
	}
	cmd.AddCommand(newNotesListCmd(app))
	cmd.AddCommand(newNotesShowCmd(app))
	cmd.AddCommand(newNotesCreateCmd(app))
	cmd.AddCommand(newNotesUpdateCmd(app))
	cmd.AddCommand(newNotesPinCmd(app, "pin", true))
	cmd.AddCommand(newNotesPinCmd(app, "unpin", false))
	cmd.AddCommand(newNotesDeleteCmd(app))
	return cmd
}

func noteTable(notes []model.Note) format.Table {
	rows := make([][]string, 0, len(notes))
	for _, n := range notes {
		pin := ""
		if n.IsPinned {
			pin = "*"
		}
		rows = append(rows, []string{strconv.Itoa(n.ID), pin, orDash(deref(n.Category)), n.Title})
	}
	return format.Table{
		Columns: []string{"ID", "PIN", "CATEGORY", "TITLE"},
		Body:    rows,
		Data:    map[string]any{"data": notes},
	}
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return strings.TrimSpace(*s)
}

func newNotesListCmd(app *App) *cobra.Command {
	var (
		category   string
		pinnedOnly bool
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List notes (pinned first)",
		RunE: func(cmd *cobra.Command, args []string) error {
			all, err := app.client.GetNotes(cmd.Context())
			if err != nil {
				return writeErr(cmd, err)
			}
			notes := collections.NewNotes()
			notes.Replace(all)

			out := make([]model.Note, 0, notes.Len())
			for _, n := range notes.All() {
				if pinnedOnly && !n.IsPinned {
					continue
				}
				if category != "" && !strings.EqualFold(deref(n.Category), strings.TrimSpace(category)) {
					continue
				}
				out = append(out, n)
			}
			sort.SliceStable(out, func(i, j int) bool { return out[i].IsPinned && !out[j].IsPinned })
			return writeOut(cmd, app, noteTable(out))
		},
	}

	cmd.Flags().StringVar(&category, "category", "", "Only notes in this category")
	cmd.Flags().BoolVar(&pinnedOnly, "pinned", false, "Only pinned notes")
	return cmd
}

func newNotesShowCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "show <note-id>",
		Short: "Show a note",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID("note", args[0])
			if err != nil {
				return writeErr(cmd, err)
			}
			n, err := app.client.GetNote(cmd.Context(), id)
			if err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{"data": n})
		},
	}
}

func newNotesCreateCmd(app *App) *cobra.Command {
	var (
		title    string
		content  string
		category string
		pinned   bool
	)

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a note",
		RunE: func(cmd *cobra.Command, args []string) error {
			draft := model.NoteDraft{
				Title:    strings.TrimSpace(title),
				Content:  model.OptionalString(content),
				Category: model.OptionalString(category),
				IsPinned: pinned,
			}
			if err := collections.ValidateNoteDraft(draft); err != nil {
				return writeErr(cmd, err)
			}
			n, err := app.client.CreateNote(cmd.Context(), draft)
			if err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{"data": n})
		},
	}

	cmd.Flags().StringVar(&title, "title", "", "Title")
	cmd.Flags().StringVar(&content, "content", "", "Body text")
	cmd.Flags().StringVar(&category, "category", "", "Category")
	cmd.Flags().BoolVar(&pinned, "pinned", false, "Pin the note")
	_ = cmd.MarkFlagRequired("title")
	return cmd
}

func newNotesUpdateCmd(app *App) *cobra.Command {
	var (
		title    string
		content  string
		category string
	)

	cmd := &cobra.Command{
		Use:   "update <note-id>",
		Short: "Update the given fields of a note",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID("note", args[0])
			if err != nil {
				return writeErr(cmd, err)
			}
			var patch model.NotePatch
			if cmd.Flags().Changed("title") {
				v := strings.TrimSpace(title)
				patch.Title = &v
			}
			if cmd.Flags().Changed("content") {
				v := content
				patch.Content = &v
			}
			if cmd.Flags().Changed("category") {
				v := strings.TrimSpace(category)
				patch.Category = &v
			}
			if patch.IsEmpty() {
				return writeErr(cmd, errNoChanges("note"))
			}
			return updateNote(cmd, app, id, patch)
		},
	}

	cmd.Flags().StringVar(&title, "title", "", "Title")
	cmd.Flags().StringVar(&content, "content", "", "Body text")
	cmd.Flags().StringVar(&category, "category", "", "Category")
	return cmd
}

func newNotesPinCmd(app *App, use string, pinned bool) *cobra.Command {
	short := "Pin a note"
	if !pinned {
		short = "Unpin a note"
	}
	return &cobra.Command{
		Use:   use + " <note-id>",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID("note", args[0])
			if err != nil {
				return writeErr(cmd, err)
			}
			return updateNote(cmd, app, id, model.NotePatch{IsPinned: &pinned})
		},
	}
}

func updateNote(cmd *cobra.Command, app *App, id int, patch model.NotePatch) error {
	if err := collections.ValidateNotePatch(patch); err != nil {
		return writeErr(cmd, err)
	}
	n, err := app.client.UpdateNote(cmd.Context(), id, patch)
	if err != nil {
		return writeErr(cmd, err)
	}
	return writeOut(cmd, app, map[string]any{"data": n})
}

func newNotesDeleteCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <note-id>",
		Short: "Delete a note",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID("note", args[0])
			if err != nil {
				return writeErr(cmd, err)
			}
			if err := app.client.DeleteNote(cmd.Context(), id); err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{"data": map[string]any{"id": id, "deleted": true}})
		},
	}
}

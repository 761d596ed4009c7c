package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"taskdeck/internal/chat"
	"taskdeck/internal/model"

	"github.com/spf13/cobra"
)

func newChatCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "chat",
		Short: "Talk to the AI assistant",
	}
	cmd.AddCommand(newChatSendCmd(app))
	cmd.AddCommand(newChatActionCmd(app))
	return cmd
}

type chatResult struct {
	Agent    string              `json:"agent"`
	Messages []model.ChatMessage `json:"messages"`
	Preview  *model.TaskDraft    `json:"preview,omitempty"`
	Task     *model.Task         `json:"task,omitempty"`
	OpenForm bool                `json:"openForm,omitempty"`
}

// newChatCore signs in from the stored token and seeds the thread. The returned id is the
// welcome message's; everything after it belongs to the command.
func newChatCore(ctx context.Context, app *App) (*chat.Core, string, error) {
	if _, err := requireUser(ctx, app); err != nil {
		return nil, "", err
	}
	core := chat.New(chat.Options{
		Agent:       app.client,
		Tasks:       app.client,
		Owner:       app.session,
		MaxMessages: app.cfg.MaxMessages,
		Logger:      app.log,
	})
	core.Start(ctx)
	seeded := core.Messages()
	if len(seeded) == 0 {
		return core, "", nil
	}
	return core, seeded[len(seeded)-1].ID, nil
}

func agentState(core *chat.Core) string {
	if core.AgentAvailable() {
		return "available"
	}
	return "unavailable"
}

func newChatSendCmd(app *App) *cobra.Command {
	var confirm string

	cmd := &cobra.Command{
		Use:   "send <message...>",
		Short: "Send one message; task proposals are confirmed before anything is created",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			switch confirm {
			case "ask", "yes", "no":
			default:
				return writeErr(cmd, errInvalidValue("confirm", confirm, "ask|yes|no"))
			}
			ctx := cmd.Context()
			core, welcomeID, err := newChatCore(ctx, app)
			if err != nil {
				return writeErr(cmd, err)
			}

			text := strings.Join(args, " ")
			out, err := core.Send(ctx, text)
			if errors.Is(err, chat.ErrBusy) {
				return writeErr(cmd, err)
			}
			res := chatResult{Agent: agentState(core), OpenForm: out.OpenForm}

			if p, ok := core.Preview(); ok {
				draft := p.Draft
				res.Preview = &draft
				yes := confirm == "yes"
				if confirm == "ask" {
					yes = askYesNo(cmd.InOrStdin(), cmd.ErrOrStderr(), fmt.Sprintf("Create task %q? [y/N] ", draft.Title))
				}
				if yes {
					t, cerr := core.ConfirmPreview(ctx)
					if cerr == nil {
						res.Task = &t
					}
					err = cerr
				} else {
					_ = core.CancelPreview()
				}
			}

			res.Messages = messagesAfter(core, welcomeID)
			if werr := writeOut(cmd, app, map[string]any{"data": res}); werr != nil {
				return werr
			}
			if err != nil {
				return writeErr(cmd, err)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&confirm, "confirm", "ask", "What to do with a proposed task: ask|yes|no")
	return cmd
}

func newChatActionCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "action <name>",
		Short: "Invoke a named assistant action",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			core, welcomeID, err := newChatCore(ctx, app)
			if err != nil {
				return writeErr(cmd, err)
			}
			_, err = core.InvokeAction(ctx, args[0])
			res := chatResult{Agent: agentState(core), Messages: messagesAfter(core, welcomeID)}
			if p, ok := core.Preview(); ok {
				draft := p.Draft
				res.Preview = &draft
			}
			if werr := writeOut(cmd, app, map[string]any{"data": res}); werr != nil {
				return werr
			}
			if err != nil {
				return writeErr(cmd, err)
			}
			return nil
		},
	}
}

// messagesAfter returns the messages following the one with id. When that message has been
// evicted every remaining message is newer, so all of them are returned.
func messagesAfter(core *chat.Core, id string) []model.ChatMessage {
	msgs := core.Messages()
	for i, m := range msgs {
		if m.ID == id {
			return msgs[i+1:]
		}
	}
	return msgs
}

func askYesNo(in io.Reader, prompt io.Writer, question string) bool {
	fmt.Fprint(prompt, question)
	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && line == "" {
		return false
	}
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "y", "yes":
		return true
	}
	return false
}

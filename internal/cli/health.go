package cli

import (
	"taskdeck/internal/api"

	"github.com/spf13/cobra"
)

func newHealthCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "health",
		Short: "Check that the AI agent is reachable",
		RunE: func(cmd *cobra.Command, args []string) error {
			h, err := app.client.HealthCheck(cmd.Context())
			if err != nil {
				_ = writeOut(cmd, app, map[string]any{"data": map[string]any{
					"agent":    "unavailable",
					"agentUrl": app.client.AgentURL(),
					"kind":     api.KindOf(err),
				}})
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{"data": map[string]any{
				"agent":    h.Status,
				"agentUrl": app.client.AgentURL(),
				"apiUrl":   app.client.BaseURL(),
			}})
		},
	}
}

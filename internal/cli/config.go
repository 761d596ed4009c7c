package cli

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"taskdeck/internal/config"

	"github.com/spf13/cobra"
)

func newConfigCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Show or change settings",
	}
	cmd.AddCommand(newConfigShowCmd(app))
	cmd.AddCommand(newConfigSetCmd(app))
	return cmd
}

func newConfigShowCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show the resolved configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			c := app.cfg
			return writeOut(cmd, app, map[string]any{"data": map[string]any{
				"dir":          c.Dir,
				"configFile":   config.FilePath(c.Dir),
				"apiUrl":       c.APIURL,
				"agentUrl":     c.AgentURL,
				"timeout":      c.Timeout.String(),
				"maxMessages":  c.MaxMessages,
				"logFile":      c.LogFile,
				"debug":        c.Debug,
				"otelEnabled":  c.OTELEnabled,
				"otelEndpoint": c.OTELEndpoint,
				"format":       c.Format,
			}})
		},
	}
}

var configKeys = []string{"api_url", "agent_url", "timeout", "max_messages", "log_file", "debug", "otel_enabled", "otel_endpoint", "format"}

func newConfigSetCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "set <key> <value>",
		Short: "Write a setting to config.yaml (" + strings.Join(configKeys, ", ") + ")",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := config.FilePath(app.cfg.Dir)
			f, err := config.ReadFile(path)
			if err != nil {
				return writeErr(cmd, err)
			}
			if err := setConfigKey(&f, args[0], args[1]); err != nil {
				return writeErr(cmd, err)
			}
			if err := config.WriteFile(path, f); err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{"data": f})
		},
	}
}

func setConfigKey(f *config.File, key, value string) error {
	value = strings.TrimSpace(value)
	parseFlag := func() (bool, error) {
		b, err := strconv.ParseBool(value)
		if err != nil {
			return false, errInvalidValue(key, value, "true|false")
		}
		return b, nil
	}

	switch key {
	case "api_url":
		f.APIURL = value
	case "agent_url":
		f.AgentURL = value
	case "timeout":
		if _, err := time.ParseDuration(value); err != nil {
			return errInvalidValue(key, value, "a duration like 30s")
		}
		f.Timeout = value
	case "max_messages":
		n, err := strconv.Atoi(value)
		if err != nil || n <= 0 {
			return errInvalidValue(key, value, "a positive integer")
		}
		f.MaxMessages = n
	case "log_file":
		f.LogFile = value
	case "debug":
		b, err := parseFlag()
		if err != nil {
			return err
		}
		f.Debug = b
	case "otel_enabled":
		b, err := parseFlag()
		if err != nil {
			return err
		}
		f.OTELEnabled = b
	case "otel_endpoint":
		f.OTELEndpoint = value
	case "format":
		if value != "json" && value != "text" {
			return errInvalidValue(key, value, "json|text")
		}
		f.Format = value
	default:
		return fmt.Errorf("unknown config key %q (want one of %s)", key, strings.Join(configKeys, ", "))
	}
	return nil
}

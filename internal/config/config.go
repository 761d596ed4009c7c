package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	DefaultAPIURL      = "http://localhost:8000/api"
	DefaultAgentURL    = "http://localhost:8001"
	DefaultTimeout     = 30 * time.Second
	DefaultMaxMessages = 50

	configFileName = "config.yaml"
	envFileName    = ".env"
)

// Config holds resolved client configuration.
type Config struct {
	Dir          string
	APIURL       string
	AgentURL     string
	Timeout      time.Duration
	MaxMessages  int
	LogFile      string
	Debug        bool
	OTELEnabled  bool
	OTELEndpoint string
	Format       string
}

// Overrides are explicit runtime values (CLI flags). Zero values mean "not set".
type Overrides struct {
	Dir         string
	APIURL      string
	AgentURL    string
	Timeout     time.Duration
	MaxMessages int
	LogFile     string
	Debug       bool
	Format      string
}

// File is the on-disk config.yaml shape.
type File struct {
	APIURL       string `yaml:"api_url,omitempty" json:"api_url,omitempty"`
	AgentURL     string `yaml:"agent_url,omitempty" json:"agent_url,omitempty"`
	Timeout      string `yaml:"timeout,omitempty" json:"timeout,omitempty"`
	MaxMessages  int    `yaml:"max_messages,omitempty" json:"max_messages,omitempty"`
	LogFile      string `yaml:"log_file,omitempty" json:"log_file,omitempty"`
	Debug        bool   `yaml:"debug,omitempty" json:"debug,omitempty"`
	OTELEnabled  bool   `yaml:"otel_enabled,omitempty" json:"otel_enabled,omitempty"`
	OTELEndpoint string `yaml:"otel_endpoint,omitempty" json:"otel_endpoint,omitempty"`
	Format       string `yaml:"format,omitempty" json:"format,omitempty"`
}

// Dir returns the config/state directory. TASKDECK_CONFIG_DIR keeps tests away from $HOME.
func Dir() (string, error) {
	if v := strings.TrimSpace(os.Getenv("TASKDECK_CONFIG_DIR")); v != "" {
		return v, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".taskdeck"), nil
}

// Load resolves each setting from, in order: explicit override, process environment,
// .env files (working directory, then config dir), config.yaml, built-in default.
func Load(o Overrides) (*Config, error) {
	dir := strings.TrimSpace(o.Dir)
	if dir == "" {
		d, err := Dir()
		if err != nil {
			return nil, err
		}
		dir = d
	}

	l := layers{env: os.Getenv}
	dotenv, err := readDotEnv(envFileName, filepath.Join(dir, envFileName))
	if err != nil {
		return nil, err
	}
	l.dotenv = dotenv

	f, err := ReadFile(filepath.Join(dir, configFileName))
	if err != nil {
		return nil, err
	}

	cfg := &Config{Dir: dir}
	cfg.APIURL = firstNonEmpty(o.APIURL, l.lookup("TASKDECK_API_URL", "NEXT_PUBLIC_API_URL"), f.APIURL, DefaultAPIURL)
	cfg.AgentURL = firstNonEmpty(o.AgentURL, l.lookup("TASKDECK_AGENT_URL", "NEXT_PUBLIC_AI_AGENT_URL", "CHATKIT_API_URL"), f.AgentURL, DefaultAgentURL)
	cfg.LogFile = firstNonEmpty(o.LogFile, l.lookup("TASKDECK_LOG_FILE"), f.LogFile, filepath.Join(dir, "taskdeck.log"))
	cfg.Format = firstNonEmpty(o.Format, l.lookup("TASKDECK_FORMAT"), f.Format, "json")
	cfg.OTELEndpoint = firstNonEmpty(l.lookup("OTEL_EXPORTER_OTLP_ENDPOINT"), f.OTELEndpoint)

	cfg.Debug = o.Debug || parseBool(l.lookup("TASKDECK_DEBUG"), f.Debug)
	cfg.OTELEnabled = parseBool(l.lookup("TASKDECK_OTEL_ENABLED"), f.OTELEnabled)

	cfg.Timeout = o.Timeout
	if cfg.Timeout <= 0 {
		raw := firstNonEmpty(l.lookup("TASKDECK_TIMEOUT"), f.Timeout)
		if raw != "" {
			d, err := time.ParseDuration(raw)
			if err != nil {
				return nil, fmt.Errorf("invalid timeout %q: %w", raw, err)
			}
			cfg.Timeout = d
		}
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}

	cfg.MaxMessages = o.MaxMessages
	if cfg.MaxMessages <= 0 {
		if raw := l.lookup("TASKDECK_MAX_MESSAGES"); raw != "" {
			n, err := strconv.Atoi(raw)
			if err != nil {
				return nil, fmt.Errorf("invalid TASKDECK_MAX_MESSAGES %q: %w", raw, err)
			}
			cfg.MaxMessages = n
		}
	}
	if cfg.MaxMessages <= 0 {
		cfg.MaxMessages = f.MaxMessages
	}
	if cfg.MaxMessages <= 0 {
		cfg.MaxMessages = DefaultMaxMessages
	}

	switch cfg.Format {
	case "json", "text":
	default:
		return nil, fmt.Errorf("unknown format: %s", cfg.Format)
	}
	return cfg, nil
}

// ReadFile loads config.yaml; a missing file yields an empty File.
func ReadFile(path string) (File, error) {
	var f File
	b, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return f, nil
		}
		return f, err
	}
	if err := yaml.Unmarshal(b, &f); err != nil {
		return f, fmt.Errorf("parse %s: %w", path, err)
	}
	return f, nil
}

// WriteFile persists config.yaml atomically.
func WriteFile(path string, f File) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	b, err := yaml.Marshal(f)
	if err != nil {
		return err
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, b, 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}

func FilePath(dir string) string { return filepath.Join(dir, configFileName) }

type layers struct {
	env    func(string) string
	dotenv map[string]string
}

// lookup returns the first key set in the process env, then the first set in .env.
func (l layers) lookup(keys ...string) string {
	for _, k := range keys {
		if v := strings.TrimSpace(l.env(k)); v != "" {
			return v
		}
	}
	for _, k := range keys {
		if v := strings.TrimSpace(l.dotenv[k]); v != "" {
			return v
		}
	}
	return ""
}

func readDotEnv(paths ...string) (map[string]string, error) {
	out := map[string]string{}
	for _, p := range paths {
		if _, err := os.Stat(p); err != nil {
			continue
		}
		vals, err := godotenv.Read(p)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", p, err)
		}
		for k, v := range vals {
			if _, seen := out[k]; !seen {
				out[k] = v
			}
		}
	}
	return out, nil
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if s := strings.TrimSpace(v); s != "" {
			return s
		}
	}
	return ""
}

func parseBool(raw string, fallback bool) bool {
	if raw == "" {
		return fallback
	}
	switch strings.ToLower(raw) {
	case "1", "true", "yes", "on":
		return true
	}
	return false
}

package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"

	"github.com/hpungsan/diary/internal/logging"
)

// Environment variables that override file values.
const (
	EnvHome      = "DIARY_HOME"
	EnvBackend   = "DIARY_BACKEND"
	EnvDBFile    = "DIARY_DB_FILE"
	EnvLogLevel  = "DIARY_LOG_LEVEL"
	EnvLogFormat = "DIARY_LOG_FORMAT"
	EnvViews     = "DIARY_VIEWS"
)

// Backend names accepted in config.
const (
	BackendMemory = "memory"
	BackendSQLite = "sqlite"
)

// Config holds application configuration.
type Config struct {
	// Backend selects the record store: "memory" or "sqlite".
	Backend string `json:"backend,omitempty"`

	// DBFile is the SQLite database file. Relative paths resolve against the
	// base directory.
	DBFile string `json:"db_file,omitempty"`

	// Views says which derived views are offered. Unset flags inherit.
	Views Views `json:"views"`

	LogLevel  string `json:"log_level,omitempty"`
	LogFormat string `json:"log_format,omitempty"`

	// DisabledTools is a list of MCP tool names to exclude from registration.
	// Unknown tool names are logged as warnings.
	DisabledTools []string `json:"disabled_tools,omitempty"`
}

// Views holds the view flags. Pointers distinguish "unset" from false so a
// file can turn a default-on view off.
type Views struct {
	List    *bool `json:"list,omitempty"`
	Summary *bool `json:"summary,omitempty"`
}

// ListEnabled reports whether the entries list view is offered.
func (c *Config) ListEnabled() bool {
	return c.Views.List != nil && *c.Views.List
}

// SummaryEnabled reports whether the summary view is offered.
func (c *Config) SummaryEnabled() bool {
	return c.Views.Summary != nil && *c.Views.Summary
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Backend:   BackendSQLite,
		DBFile:    "records.db",
		Views:     Views{List: boolPtr(true), Summary: boolPtr(true)},
		LogLevel:  "info",
		LogFormat: logging.FormatText,
	}
}

// BaseDir returns $DIARY_HOME, or ~/.diary when unset.
func BaseDir() (string, error) {
	if dir := os.Getenv(EnvHome); dir != "" {
		return dir, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to resolve home directory: %w", err)
	}
	return filepath.Join(home, ".diary"), nil
}

// DBPath returns the database file, resolved against baseDir when relative.
func (c *Config) DBPath(baseDir string) string {
	if filepath.IsAbs(c.DBFile) {
		return c.DBFile
	}
	return filepath.Join(baseDir, c.DBFile)
}

// Load loads configuration from baseDir/config.json, then applies
// environment overrides. Variables in baseDir/.env apply unless the process
// environment already sets them.
// The baseDir parameter allows tests to use t.TempDir() instead of ~/.diary.
func Load(baseDir string) (*Config, error) {
	cfg, err := loadFile(filepath.Join(baseDir, "config.json"))
	if err != nil {
		return nil, err
	}
	return applyEnv(cfg, baseDir)
}

// LoadWithRepo loads configuration from both global (~/.diary) and repo (.diary) directories.
// Repo config is found by walking upward from startDir to find the nearest .diary/config.json.
// Repo config takes precedence for scalar values; arrays are merged (deduplicated).
// Environment overrides apply last.
func LoadWithRepo(globalDir, startDir string) (*Config, error) {
	global, err := loadFileRaw(filepath.Join(globalDir, "config.json"))
	if err != nil {
		return nil, err
	}

	repo, err := loadFileRaw(FindRepoConfig(startDir))
	if err != nil {
		return nil, err
	}

	return applyEnv(Merge(Merge(DefaultConfig(), global), repo), globalDir)
}

// FindRepoConfig walks upward from startDir to find the nearest .diary/config.json.
// Returns the path if found, or empty string if not found.
func FindRepoConfig(startDir string) string {
	dir := startDir
	for {
		configPath := filepath.Join(dir, ".diary", "config.json")
		if _, err := os.Stat(configPath); err == nil {
			return configPath
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return ""
		}
		dir = parent
	}
}

// loadFileRaw loads configuration from a specific file path.
// Returns zero-valued config if the file doesn't exist (not defaults).
func loadFileRaw(configPath string) (*Config, error) {
	if configPath == "" {
		return &Config{}, nil
	}
	data, err := os.ReadFile(configPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return &Config{}, nil
		}
		return nil, err
	}

	cfg := &Config{}
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", configPath, err)
	}

	return cfg, nil
}

// loadFile loads configuration from a specific file path.
// Returns default config if the file doesn't exist.
func loadFile(configPath string) (*Config, error) {
	cfg, err := loadFileRaw(configPath)
	if err != nil {
		return nil, err
	}
	return Merge(DefaultConfig(), cfg), nil
}

// applyEnv overrides cfg from the environment and baseDir/.env.
func applyEnv(cfg *Config, baseDir string) (*Config, error) {
	dotenv, err := godotenv.Read(filepath.Join(baseDir, ".env"))
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("invalid .env: %w", err)
	}
	lookup := func(key string) string {
		if v, ok := os.LookupEnv(key); ok {
			return v
		}
		return dotenv[key]
	}

	if v := lookup(EnvBackend); v != "" {
		cfg.Backend = v
	}
	if v := lookup(EnvDBFile); v != "" {
		cfg.DBFile = v
	}
	if v := lookup(EnvLogLevel); v != "" {
		cfg.LogLevel = v
	}
	if v := lookup(EnvLogFormat); v != "" {
		cfg.LogFormat = v
	}
	if v := lookup(EnvViews); v != "" {
		views, err := parseViews(v)
		if err != nil {
			return nil, err
		}
		cfg.Views = views
	}

	return cfg, nil
}

// parseViews reads a comma list such as "list,summary".
func parseViews(s string) (Views, error) {
	views := Views{List: boolPtr(false), Summary: boolPtr(false)}
	for _, name := range strings.Split(s, ",") {
		switch strings.TrimSpace(name) {
		case "list":
			views.List = boolPtr(true)
		case "summary":
			views.Summary = boolPtr(true)
		case "":
		default:
			return Views{}, fmt.Errorf("invalid %s entry %q: want list or summary", EnvViews, name)
		}
	}
	return views, nil
}

// Validate reports every problem with the configuration at once.
func (c *Config) Validate() error {
	var problems []string

	switch c.Backend {
	case BackendMemory:
	case BackendSQLite:
		if c.DBFile == "" {
			problems = append(problems, "db_file cannot be empty when using sqlite backend")
		}
	default:
		problems = append(problems, fmt.Sprintf("invalid backend '%s': must be one of [memory sqlite]", c.Backend))
	}

	if !c.ListEnabled() && !c.SummaryEnabled() {
		problems = append(problems, "at least one of views.list and views.summary must be enabled")
	}

	if _, err := logging.ParseLevel(c.LogLevel); err != nil {
		problems = append(problems, err.Error())
	}
	switch strings.ToLower(c.LogFormat) {
	case "", logging.FormatText, logging.FormatJSON:
	default:
		problems = append(problems, fmt.Sprintf("invalid log_format '%s': must be text or json", c.LogFormat))
	}

	if len(problems) > 0 {
		return fmt.Errorf("configuration validation failed:\n- %s", strings.Join(problems, "\n- "))
	}
	return nil
}

// Merge combines base and overlay configs.
// Overlay values take precedence for scalars; arrays are merged and deduplicated.
func Merge(base, overlay *Config) *Config {
	result := &Config{
		Backend:   pick(overlay.Backend, base.Backend),
		DBFile:    pick(overlay.DBFile, base.DBFile),
		LogLevel:  pick(overlay.LogLevel, base.LogLevel),
		LogFormat: pick(overlay.LogFormat, base.LogFormat),
	}

	// View flags: overlay wins if set, else base
	result.Views.List = base.Views.List
	if overlay.Views.List != nil {
		result.Views.List = overlay.Views.List
	}
	result.Views.Summary = base.Views.Summary
	if overlay.Views.Summary != nil {
		result.Views.Summary = overlay.Views.Summary
	}

	result.DisabledTools = mergeStringSlice(base.DisabledTools, overlay.DisabledTools)

	return result
}

func pick(overlay, base string) string {
	if overlay != "" {
		return overlay
	}
	return base
}

func boolPtr(b bool) *bool {
	return &b
}

// mergeStringSlice combines two slices, trims whitespace, and removes duplicates.
func mergeStringSlice(a, b []string) []string {
	seen := make(map[string]bool)
	result := make([]string, 0, len(a)+len(b))

	for _, s := range append(append([]string{}, a...), b...) {
		s = strings.TrimSpace(s)
		if s != "" && !seen[s] {
			seen[s] = true
			result = append(result, s)
		}
	}

	if len(result) == 0 {
		return nil
	}
	return result
}

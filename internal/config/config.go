package config

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config represents the complete sync tool configuration
type Config struct {
	Storage  StorageConfig  `mapstructure:"storage"`
	Adapter  AdapterConfig  `mapstructure:"adapter"`
	Resolver ResolverConfig `mapstructure:"resolver"`
	Hooks    HooksConfig    `mapstructure:"hooks"`
	Sync     SyncConfig     `mapstructure:"sync"`
	Logging  LoggingConfig  `mapstructure:"logging"`
}

// StorageConfig controls where tasks and conflict records are persisted
type StorageConfig struct {
	// Root is the data directory. Empty means ~/.critical-claude.
	// Supports ~ for home directory expansion.
	Root string `mapstructure:"root"`
}

// AdapterConfig controls the peer integration strategy chain
type AdapterConfig struct {
	// DirectTimeoutSeconds bounds a single direct tool invocation (default: 5)
	DirectTimeoutSeconds int `mapstructure:"direct_timeout_seconds"`
	// HandoffWritePaths overrides the handoff file locations (full file
	// paths, mirrored on every push). Empty means the defaults under the
	// system temp dir and ~/.critical-claude.
	HandoffWritePaths []string `mapstructure:"handoff_write_paths"`
	// HandoffReadPaths overrides the candidate files scanned for incoming
	// todos. Empty means the defaults, including ~/.claude/todos.json.
	HandoffReadPaths []string `mapstructure:"handoff_read_paths"`
	// ProcessCommand is the subprocess fallback, argv style (e.g. ["claude-code", "todos"]).
	// Empty disables the subprocess strategy.
	ProcessCommand []string `mapstructure:"process_command"`
	// ProcessTimeoutSeconds is the hard deadline for the subprocess strategy (default: 12)
	ProcessTimeoutSeconds int `mapstructure:"process_timeout_seconds"`
	// WatchDebounceMs coalesces bursts of file change events in watch mode (default: 200)
	WatchDebounceMs int `mapstructure:"watch_debounce_ms"`
}

// ResolverConfig controls conflict resolution policy
type ResolverConfig struct {
	// DefaultStrategy applies to conflict types without a specific resolver.
	// Options: "last_write_wins", "priority_wins", "manual_merge",
	// "claude_code_wins", "critical_claude_wins" (default: "last_write_wins")
	DefaultStrategy string `mapstructure:"default_strategy"`
	// AutoResolveTypes lists conflict types resolved without human input.
	// Options: "status_mismatch", "priority_mismatch", "missing_in_source", "missing_in_target"
	AutoResolveTypes []string `mapstructure:"auto_resolve_types"`
	// ManualReviewRequired lists conflict types that always go to a human.
	// Takes precedence over AutoResolveTypes.
	ManualReviewRequired []string `mapstructure:"manual_review_required"`
}

// HooksConfig controls the automatic transition engine
type HooksConfig struct {
	// HistoryLimit caps how many applied transitions are remembered (default: 100)
	HistoryLimit int `mapstructure:"history_limit"`
	// HistoryMaxAgeMinutes prunes transition history older than this (default: 60)
	HistoryMaxAgeMinutes int `mapstructure:"history_max_age_minutes"`
}

// SyncConfig controls sync pass behavior
type SyncConfig struct {
	// Direction is the default sync direction: "both", "push", or "pull" (default: "both")
	Direction string `mapstructure:"direction"`
	// ConflictRetentionDays is how long resolved conflicts are kept before
	// cleanup removes them (default: 30)
	ConflictRetentionDays int `mapstructure:"conflict_retention_days"`
}

// LoggingConfig controls structured logging behavior
type LoggingConfig struct {
	// Enabled controls whether file logging is enabled (default: true)
	Enabled bool `mapstructure:"enabled"`
	// Level is the log level: "debug", "info", "warn", "error" (default: "info")
	Level string `mapstructure:"level"`
	// Dir is where the log file is written. Empty means the storage root.
	Dir string `mapstructure:"dir"`
}

// ResolveRoot returns the resolved storage root. If Root is empty it
// falls back to defaultRoot; a leading ~ expands to the home directory.
func (s *StorageConfig) ResolveRoot(defaultRoot string) string {
	if s.Root == "" {
		return defaultRoot
	}

	path := s.Root
	if strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err == nil {
			path = filepath.Join(home, path[2:])
		}
	}
	if abs, err := filepath.Abs(path); err == nil {
		return abs
	}
	return path
}

// DirectTimeout returns the direct strategy timeout as a time.Duration
func (a *AdapterConfig) DirectTimeout() time.Duration {
	return time.Duration(a.DirectTimeoutSeconds) * time.Second
}

// ProcessTimeout returns the subprocess deadline as a time.Duration
func (a *AdapterConfig) ProcessTimeout() time.Duration {
	return time.Duration(a.ProcessTimeoutSeconds) * time.Second
}

// WatchDebounce returns the watch debounce window as a time.Duration
func (a *AdapterConfig) WatchDebounce() time.Duration {
	return time.Duration(a.WatchDebounceMs) * time.Millisecond
}

// HistoryMaxAge returns the hook history window as a time.Duration
func (h *HooksConfig) HistoryMaxAge() time.Duration {
	return time.Duration(h.HistoryMaxAgeMinutes) * time.Minute
}

// ConflictRetention returns the conflict retention window as a time.Duration
func (s *SyncConfig) ConflictRetention() time.Duration {
	return time.Duration(s.ConflictRetentionDays) * 24 * time.Hour
}

func Default() *Config {
	return &Config{
		Storage: StorageConfig{
			Root: "", // Empty means ~/.critical-claude
		},
		Adapter: AdapterConfig{
			DirectTimeoutSeconds:  5,
			HandoffWritePaths:     []string{},
			HandoffReadPaths:      []string{},
			ProcessCommand:        []string{},
			ProcessTimeoutSeconds: 12,
			WatchDebounceMs:       200,
		},
		Resolver: ResolverConfig{
			DefaultStrategy: "last_write_wins",
			AutoResolveTypes: []string{
				"status_mismatch",
				"priority_mismatch",
				"missing_in_source",
				"missing_in_target",
			},
			ManualReviewRequired: []string{},
		},
		Hooks: HooksConfig{
			HistoryLimit:         100,
			HistoryMaxAgeMinutes: 60,
		},
		Sync: SyncConfig{
			Direction:             "both",
			ConflictRetentionDays: 30,
		},
		Logging: LoggingConfig{
			Enabled: true,
			Level:   "info",
			Dir:     "", // Empty means the storage root
		},
	}
}

// SetDefaults registers default values with viper
func SetDefaults() {
	defaults := Default()

	// Storage defaults
	viper.SetDefault("storage.root", defaults.Storage.Root)

	// Adapter defaults
	viper.SetDefault("adapter.direct_timeout_seconds", defaults.Adapter.DirectTimeoutSeconds)
	viper.SetDefault("adapter.handoff_write_paths", defaults.Adapter.HandoffWritePaths)
	viper.SetDefault("adapter.handoff_read_paths", defaults.Adapter.HandoffReadPaths)
	viper.SetDefault("adapter.process_command", defaults.Adapter.ProcessCommand)
	viper.SetDefault("adapter.process_timeout_seconds", defaults.Adapter.ProcessTimeoutSeconds)
	viper.SetDefault("adapter.watch_debounce_ms", defaults.Adapter.WatchDebounceMs)

	// Resolver defaults
	viper.SetDefault("resolver.default_strategy", defaults.Resolver.DefaultStrategy)
	viper.SetDefault("resolver.auto_resolve_types", defaults.Resolver.AutoResolveTypes)
	viper.SetDefault("resolver.manual_review_required", defaults.Resolver.ManualReviewRequired)

	// Hooks defaults
	viper.SetDefault("hooks.history_limit", defaults.Hooks.HistoryLimit)
	viper.SetDefault("hooks.history_max_age_minutes", defaults.Hooks.HistoryMaxAgeMinutes)

	// Sync defaults
	viper.SetDefault("sync.direction", defaults.Sync.Direction)
	viper.SetDefault("sync.conflict_retention_days", defaults.Sync.ConflictRetentionDays)

	// Logging defaults
	viper.SetDefault("logging.enabled", defaults.Logging.Enabled)
	viper.SetDefault("logging.level", defaults.Logging.Level)
	viper.SetDefault("logging.dir", defaults.Logging.Dir)
}

// Load reads the configuration from viper into a Config struct and validates it
func Load() (*Config, error) {
	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	if errs := cfg.Validate(); len(errs) > 0 {
		return nil, ValidationErrors(errs)
	}

	return &cfg, nil
}

// Get returns the current configuration (convenience function)
func Get() *Config {
	cfg, err := Load()
	if err != nil {
		// Fall back to defaults if unmarshaling fails
		return Default()
	}
	return cfg
}

// ConfigDir returns the path to the user's config directory
func ConfigDir() string {
	// Check XDG_CONFIG_HOME first
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "critical-claude")
	}
	// Fall back to ~/.config/critical-claude
	home, err := os.UserHomeDir()
	if err != nil {
		return ".critical-claude"
	}
	return filepath.Join(home, ".config", "critical-claude")
}

// ConfigFile returns the path to the config file
func ConfigFile() string {
	return filepath.Join(ConfigDir(), "config.yaml")
}

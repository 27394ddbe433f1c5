package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	if cfg == nil {
		t.Fatal("Default() returned nil")
	}

	if cfg.Adapter.ProcessTimeoutSeconds != 12 {
		t.Errorf("Adapter.ProcessTimeoutSeconds = %d, want 12", cfg.Adapter.ProcessTimeoutSeconds)
	}
	if cfg.Adapter.DirectTimeoutSeconds != 5 {
		t.Errorf("Adapter.DirectTimeoutSeconds = %d, want 5", cfg.Adapter.DirectTimeoutSeconds)
	}
	if cfg.Adapter.WatchDebounceMs != 200 {
		t.Errorf("Adapter.WatchDebounceMs = %d, want 200", cfg.Adapter.WatchDebounceMs)
	}

	if cfg.Resolver.DefaultStrategy != "last_write_wins" {
		t.Errorf("Resolver.DefaultStrategy = %q, want last_write_wins", cfg.Resolver.DefaultStrategy)
	}
	if len(cfg.Resolver.AutoResolveTypes) != 4 {
		t.Errorf("expected all 4 conflict types auto-resolved by default, got %v", cfg.Resolver.AutoResolveTypes)
	}

	if cfg.Hooks.HistoryLimit != 100 {
		t.Errorf("Hooks.HistoryLimit = %d, want 100", cfg.Hooks.HistoryLimit)
	}
	if cfg.Sync.Direction != "both" {
		t.Errorf("Sync.Direction = %q, want both", cfg.Sync.Direction)
	}
	if cfg.Sync.ConflictRetentionDays != 30 {
		t.Errorf("Sync.ConflictRetentionDays = %d, want 30", cfg.Sync.ConflictRetentionDays)
	}
	if cfg.Logging.Level != "info" {
		t.Errorf("Logging.Level = %q, want info", cfg.Logging.Level)
	}
}

func TestDurationHelpers(t *testing.T) {
	cfg := Default()

	if got := cfg.Adapter.ProcessTimeout(); got != 12*time.Second {
		t.Errorf("ProcessTimeout() = %v, want 12s", got)
	}
	if got := cfg.Adapter.DirectTimeout(); got != 5*time.Second {
		t.Errorf("DirectTimeout() = %v, want 5s", got)
	}
	if got := cfg.Adapter.WatchDebounce(); got != 200*time.Millisecond {
		t.Errorf("WatchDebounce() = %v, want 200ms", got)
	}
	if got := cfg.Hooks.HistoryMaxAge(); got != time.Hour {
		t.Errorf("HistoryMaxAge() = %v, want 1h", got)
	}
	if got := cfg.Sync.ConflictRetention(); got != 30*24*time.Hour {
		t.Errorf("ConflictRetention() = %v, want 720h", got)
	}
}

func TestResolveRoot(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skipf("no home directory: %v", err)
	}

	t.Run("empty uses default", func(t *testing.T) {
		s := StorageConfig{Root: ""}
		if got := s.ResolveRoot("/data/default"); got != "/data/default" {
			t.Errorf("ResolveRoot() = %q, want /data/default", got)
		}
	})

	t.Run("tilde expands to home", func(t *testing.T) {
		s := StorageConfig{Root: "~/tasks"}
		want := filepath.Join(home, "tasks")
		if got := s.ResolveRoot("/unused"); got != want {
			t.Errorf("ResolveRoot() = %q, want %q", got, want)
		}
	})

	t.Run("absolute path kept", func(t *testing.T) {
		s := StorageConfig{Root: "/var/lib/tasks"}
		if got := s.ResolveRoot("/unused"); got != "/var/lib/tasks" {
			t.Errorf("ResolveRoot() = %q, want /var/lib/tasks", got)
		}
	})
}

func TestConfigDir(t *testing.T) {
	t.Run("respects XDG_CONFIG_HOME", func(t *testing.T) {
		t.Setenv("XDG_CONFIG_HOME", "/custom/config")
		want := filepath.Join("/custom/config", "critical-claude")
		if got := ConfigDir(); got != want {
			t.Errorf("ConfigDir() = %q, want %q", got, want)
		}
	})

	t.Run("falls back to home config", func(t *testing.T) {
		t.Setenv("XDG_CONFIG_HOME", "")
		home, err := os.UserHomeDir()
		if err != nil {
			t.Skipf("no home directory: %v", err)
		}
		want := filepath.Join(home, ".config", "critical-claude")
		if got := ConfigDir(); got != want {
			t.Errorf("ConfigDir() = %q, want %q", got, want)
		}
	})
}

package config

import (
	"strings"
	"testing"
)

func TestValidationError_Error(t *testing.T) {
	err := ValidationError{
		Field:   "sync.direction",
		Value:   "sideways",
		Message: "must be one of: both, push, pull",
	}

	expected := "sync.direction: must be one of: both, push, pull (got: sideways)"
	if err.Error() != expected {
		t.Errorf("Error() = %q, want %q", err.Error(), expected)
	}
}

func TestValidationErrors_Error(t *testing.T) {
	t.Run("empty errors", func(t *testing.T) {
		var errs ValidationErrors
		if errs.Error() != "" {
			t.Errorf("Error() for empty = %q, want empty string", errs.Error())
		}
	})

	t.Run("single error", func(t *testing.T) {
		errs := ValidationErrors{
			{Field: "hooks.history_limit", Value: 0, Message: "must be at least 1"},
		}
		expected := "hooks.history_limit: must be at least 1 (got: 0)"
		if errs.Error() != expected {
			t.Errorf("Error() = %q, want %q", errs.Error(), expected)
		}
	})

	t.Run("multiple errors", func(t *testing.T) {
		errs := ValidationErrors{
			{Field: "field1", Value: "bad", Message: "is invalid"},
			{Field: "field2", Value: -1, Message: "must be positive"},
		}
		result := errs.Error()
		if !strings.Contains(result, "2 validation errors") {
			t.Errorf("Error() should mention 2 errors: %s", result)
		}
		if !strings.Contains(result, "field1") || !strings.Contains(result, "field2") {
			t.Errorf("Error() should mention both fields: %s", result)
		}
	})
}

func TestConfig_Validate_DefaultConfig(t *testing.T) {
	cfg := Default()
	errs := cfg.Validate()
	if len(errs) != 0 {
		t.Errorf("Default config should be valid, got %d errors: %v", len(errs), errs)
	}
}

func TestConfig_Validate_Resolver(t *testing.T) {
	tests := []struct {
		name     string
		strategy string
		hasError bool
	}{
		{"valid last_write_wins", "last_write_wins", false},
		{"valid priority_wins", "priority_wins", false},
		{"valid manual_merge", "manual_merge", false},
		{"valid claude_code_wins", "claude_code_wins", false},
		{"valid critical_claude_wins", "critical_claude_wins", false},
		{"empty is valid", "", false},
		{"invalid strategy", "coin_flip", true},
		{"case sensitive", "LAST_WRITE_WINS", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			cfg.Resolver.DefaultStrategy = tt.strategy
			errs := cfg.Validate()
			if tt.hasError && len(errs) == 0 {
				t.Errorf("expected validation error for strategy %q", tt.strategy)
			}
			if !tt.hasError && len(errs) != 0 {
				t.Errorf("unexpected errors for strategy %q: %v", tt.strategy, errs)
			}
		})
	}

	t.Run("unknown conflict type in auto_resolve_types", func(t *testing.T) {
		cfg := Default()
		cfg.Resolver.AutoResolveTypes = []string{"status_mismatch", "vibe_mismatch"}
		errs := cfg.Validate()
		if len(errs) != 1 {
			t.Fatalf("expected 1 error, got %v", errs)
		}
		if errs[0].Field != "resolver.auto_resolve_types" {
			t.Errorf("error on wrong field: %s", errs[0].Field)
		}
	})

	t.Run("unknown conflict type in manual_review_required", func(t *testing.T) {
		cfg := Default()
		cfg.Resolver.ManualReviewRequired = []string{"everything"}
		errs := cfg.Validate()
		if len(errs) != 1 {
			t.Fatalf("expected 1 error, got %v", errs)
		}
	})
}

func TestConfig_Validate_Sync(t *testing.T) {
	tests := []struct {
		name      string
		direction string
		retention int
		wantErrs  int
	}{
		{"defaults", "both", 30, 0},
		{"push", "push", 30, 0},
		{"pull", "pull", 30, 0},
		{"bad direction", "sideways", 30, 1},
		{"negative retention", "both", -1, 1},
		{"both wrong", "sideways", -1, 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			cfg.Sync.Direction = tt.direction
			cfg.Sync.ConflictRetentionDays = tt.retention
			if errs := cfg.Validate(); len(errs) != tt.wantErrs {
				t.Errorf("Validate() returned %d errors, want %d: %v", len(errs), tt.wantErrs, errs)
			}
		})
	}
}

func TestConfig_Validate_Hooks(t *testing.T) {
	cfg := Default()
	cfg.Hooks.HistoryLimit = 0
	cfg.Hooks.HistoryMaxAgeMinutes = 0
	errs := cfg.Validate()
	if len(errs) != 2 {
		t.Errorf("expected 2 errors, got %v", errs)
	}
}

func TestConfig_Validate_Adapter(t *testing.T) {
	cfg := Default()
	cfg.Adapter.DirectTimeoutSeconds = -1
	cfg.Adapter.ProcessTimeoutSeconds = -2
	cfg.Adapter.WatchDebounceMs = -3
	errs := cfg.Validate()
	if len(errs) != 3 {
		t.Errorf("expected 3 errors, got %v", errs)
	}
}

func TestConfig_Validate_Logging(t *testing.T) {
	cfg := Default()
	cfg.Logging.Level = "loud"
	errs := cfg.Validate()
	if len(errs) != 1 {
		t.Fatalf("expected 1 error, got %v", errs)
	}
	if errs[0].Field != "logging.level" {
		t.Errorf("error on wrong field: %s", errs[0].Field)
	}
}

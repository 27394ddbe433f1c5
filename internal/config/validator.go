package config

import (
	"fmt"
	"slices"
	"strings"
)

// ValidationError represents a single validation failure
type ValidationError struct {
	Field   string // The config field path (e.g., "sync.direction")
	Value   any    // The invalid value
	Message string // Human-readable error description
}

// Error implements the error interface for ValidationError
func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s (got: %v)", e.Field, e.Message, e.Value)
}

// ValidationErrors is a collection of validation errors
type ValidationErrors []ValidationError

// Error implements the error interface for ValidationErrors
func (e ValidationErrors) Error() string {
	if len(e) == 0 {
		return ""
	}
	if len(e) == 1 {
		return e[0].Error()
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("%d validation errors:\n", len(e)))
	for i, err := range e {
		sb.WriteString(fmt.Sprintf("  %d. %s\n", i+1, err.Error()))
	}
	return sb.String()
}

// ValidLogLevels returns the list of valid log levels
func ValidLogLevels() []string {
	return []string{"debug", "info", "warn", "error"}
}

// ValidStrategies returns the list of valid resolution strategy names
func ValidStrategies() []string {
	return []string{"last_write_wins", "priority_wins", "manual_merge", "claude_code_wins", "critical_claude_wins"}
}

// ValidConflictTypes returns the list of valid conflict type names
func ValidConflictTypes() []string {
	return []string{"status_mismatch", "priority_mismatch", "missing_in_source", "missing_in_target"}
}

// ValidDirections returns the list of valid sync directions
func ValidDirections() []string {
	return []string{"both", "push", "pull"}
}

// Validate checks the Config for invalid values and returns all validation errors found
func (c *Config) Validate() []ValidationError {
	var errors []ValidationError

	errors = append(errors, c.validateAdapter()...)
	errors = append(errors, c.validateResolver()...)
	errors = append(errors, c.validateHooks()...)
	errors = append(errors, c.validateSync()...)
	errors = append(errors, c.validateLogging()...)

	return errors
}

// validateAdapter validates the AdapterConfig
func (c *Config) validateAdapter() []ValidationError {
	var errors []ValidationError

	if c.Adapter.DirectTimeoutSeconds < 0 {
		errors = append(errors, ValidationError{
			Field:   "adapter.direct_timeout_seconds",
			Value:   c.Adapter.DirectTimeoutSeconds,
			Message: "must be non-negative",
		})
	}
	if c.Adapter.ProcessTimeoutSeconds < 0 {
		errors = append(errors, ValidationError{
			Field:   "adapter.process_timeout_seconds",
			Value:   c.Adapter.ProcessTimeoutSeconds,
			Message: "must be non-negative",
		})
	}
	if c.Adapter.WatchDebounceMs < 0 {
		errors = append(errors, ValidationError{
			Field:   "adapter.watch_debounce_ms",
			Value:   c.Adapter.WatchDebounceMs,
			Message: "must be non-negative",
		})
	}

	return errors
}

// validateResolver validates the ResolverConfig
func (c *Config) validateResolver() []ValidationError {
	var errors []ValidationError

	if c.Resolver.DefaultStrategy != "" && !slices.Contains(ValidStrategies(), c.Resolver.DefaultStrategy) {
		errors = append(errors, ValidationError{
			Field:   "resolver.default_strategy",
			Value:   c.Resolver.DefaultStrategy,
			Message: fmt.Sprintf("must be one of: %s", strings.Join(ValidStrategies(), ", ")),
		})
	}

	for _, t := range c.Resolver.AutoResolveTypes {
		if !slices.Contains(ValidConflictTypes(), t) {
			errors = append(errors, ValidationError{
				Field:   "resolver.auto_resolve_types",
				Value:   t,
				Message: fmt.Sprintf("must be one of: %s", strings.Join(ValidConflictTypes(), ", ")),
			})
		}
	}
	for _, t := range c.Resolver.ManualReviewRequired {
		if !slices.Contains(ValidConflictTypes(), t) {
			errors = append(errors, ValidationError{
				Field:   "resolver.manual_review_required",
				Value:   t,
				Message: fmt.Sprintf("must be one of: %s", strings.Join(ValidConflictTypes(), ", ")),
			})
		}
	}

	return errors
}

// validateHooks validates the HooksConfig
func (c *Config) validateHooks() []ValidationError {
	var errors []ValidationError

	if c.Hooks.HistoryLimit < 1 {
		errors = append(errors, ValidationError{
			Field:   "hooks.history_limit",
			Value:   c.Hooks.HistoryLimit,
			Message: "must be at least 1",
		})
	}
	if c.Hooks.HistoryMaxAgeMinutes < 1 {
		errors = append(errors, ValidationError{
			Field:   "hooks.history_max_age_minutes",
			Value:   c.Hooks.HistoryMaxAgeMinutes,
			Message: "must be at least 1",
		})
	}

	return errors
}

// validateSync validates the SyncConfig
func (c *Config) validateSync() []ValidationError {
	var errors []ValidationError

	if c.Sync.Direction != "" && !slices.Contains(ValidDirections(), c.Sync.Direction) {
		errors = append(errors, ValidationError{
			Field:   "sync.direction",
			Value:   c.Sync.Direction,
			Message: fmt.Sprintf("must be one of: %s", strings.Join(ValidDirections(), ", ")),
		})
	}
	if c.Sync.ConflictRetentionDays < 0 {
		errors = append(errors, ValidationError{
			Field:   "sync.conflict_retention_days",
			Value:   c.Sync.ConflictRetentionDays,
			Message: "must be non-negative",
		})
	}

	return errors
}

// validateLogging validates the LoggingConfig
func (c *Config) validateLogging() []ValidationError {
	var errors []ValidationError

	if c.Logging.Level != "" && !slices.Contains(ValidLogLevels(), c.Logging.Level) {
		errors = append(errors, ValidationError{
			Field:   "logging.level",
			Value:   c.Logging.Level,
			Message: fmt.Sprintf("must be one of: %s", strings.Join(ValidLogLevels(), ", ")),
		})
	}

	return errors
}

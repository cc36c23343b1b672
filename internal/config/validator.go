package config

import (
	"fmt"
	"slices"
	"strings"

	"github.com/gobwas/glob"
)

// ValidationError represents a single validation failure
type ValidationError struct {
	Field   string // The config field path (e.g., "teams.count")
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
	fmt.Fprintf(&sb, "%d validation errors:\n", len(e))
	for i, err := range e {
		fmt.Fprintf(&sb, "  %d. %s\n", i+1, err.Error())
	}
	return sb.String()
}

// ValidLogLevels returns the list of valid log levels
func ValidLogLevels() []string {
	return []string{"debug", "info", "warn", "error"}
}

// ValidOutputFormats returns the list of valid output formats
func ValidOutputFormats() []string {
	return []string{"text", "csv", "yaml", "json"}
}

const (
	maxTeams     = 1000
	maxIteration = 10000
	maxLogSizeMB = 1000
)

// Validate checks the Config for invalid values and returns all validation errors found
func (c *Config) Validate() []ValidationError {
	var errors []ValidationError
	errors = append(errors, c.validateTeams()...)
	errors = append(errors, c.validateBalance()...)
	errors = append(errors, c.validatePins()...)
	errors = append(errors, c.validateColumns()...)
	errors = append(errors, c.validateOutput()...)
	errors = append(errors, c.validateLogging()...)
	errors = append(errors, c.validateWatch()...)
	errors = append(errors, c.validateStore()...)
	return errors
}

func (c *Config) validateTeams() []ValidationError {
	if c.Teams.Count < 1 || c.Teams.Count > maxTeams {
		return []ValidationError{{
			Field:   "teams.count",
			Value:   c.Teams.Count,
			Message: fmt.Sprintf("must be between 1 and %d", maxTeams),
		}}
	}
	return nil
}

func (c *Config) validateBalance() []ValidationError {
	var errors []ValidationError
	ceilings := []struct {
		field string
		value int
	}{
		{"balance.category_passes", c.Balance.CategoryPasses},
		{"balance.cleanup_passes", c.Balance.CleanupPasses},
		{"balance.size_iterations", c.Balance.SizeIterations},
		{"balance.language_iterations", c.Balance.LanguageIterations},
	}
	for _, ceiling := range ceilings {
		if ceiling.value < 0 || ceiling.value > maxIteration {
			errors = append(errors, ValidationError{
				Field:   ceiling.field,
				Value:   ceiling.value,
				Message: fmt.Sprintf("must be between 0 and %d", maxIteration),
			})
		}
	}
	return errors
}

func (c *Config) validatePins() []ValidationError {
	var errors []ValidationError
	for i, pin := range c.Pins {
		field := fmt.Sprintf("pins[%d]", i)
		switch {
		case pin.Cluster == "" || pin.With == "":
			errors = append(errors, ValidationError{
				Field:   field,
				Value:   pin,
				Message: "both cluster and with are required",
			})
		case pin.Cluster == pin.With:
			errors = append(errors, ValidationError{
				Field:   field,
				Value:   pin,
				Message: "a cluster cannot be pinned to itself",
			})
		}
	}
	return errors
}

func (c *Config) validateColumns() []ValidationError {
	var errors []ValidationError
	if strings.TrimSpace(c.Columns.Cluster) == "" {
		errors = append(errors, ValidationError{
			Field:   "columns.cluster",
			Value:   c.Columns.Cluster,
			Message: "cluster column pattern is required",
		})
	}
	patterns := []struct {
		field   string
		pattern string
	}{
		{"columns.cluster", c.Columns.Cluster},
		{"columns.name", c.Columns.Name},
		{"columns.languages", c.Columns.Languages},
		{"columns.english", c.Columns.English},
		{"columns.translator", c.Columns.Translator},
		{"columns.leader", c.Columns.Leader},
		{"columns.status_a", c.Columns.StatusA},
		{"columns.status_b", c.Columns.StatusB},
	}
	for _, p := range patterns {
		if p.pattern == "" {
			continue
		}
		if _, err := glob.Compile(strings.ToLower(p.pattern)); err != nil {
			errors = append(errors, ValidationError{
				Field:   p.field,
				Value:   p.pattern,
				Message: fmt.Sprintf("invalid glob pattern: %v", err),
			})
		}
	}
	return errors
}

func (c *Config) validateOutput() []ValidationError {
	if !slices.Contains(ValidOutputFormats(), c.Output.Format) {
		return []ValidationError{{
			Field:   "output.format",
			Value:   c.Output.Format,
			Message: fmt.Sprintf("must be one of: %s", strings.Join(ValidOutputFormats(), ", ")),
		}}
	}
	return nil
}

func (c *Config) validateLogging() []ValidationError {
	var errors []ValidationError

	if c.Logging.Level != "" && !slices.Contains(ValidLogLevels(), c.Logging.Level) {
		errors = append(errors, ValidationError{
			Field:   "logging.level",
			Value:   c.Logging.Level,
			Message: fmt.Sprintf("must be one of: %s", strings.Join(ValidLogLevels(), ", ")),
		})
	}

	if c.Logging.MaxSizeMB < 0 {
		errors = append(errors, ValidationError{
			Field:   "logging.max_size_mb",
			Value:   c.Logging.MaxSizeMB,
			Message: "must be non-negative (0 disables rotation)",
		})
	}
	if c.Logging.MaxSizeMB > maxLogSizeMB {
		errors = append(errors, ValidationError{
			Field:   "logging.max_size_mb",
			Value:   c.Logging.MaxSizeMB,
			Message: fmt.Sprintf("exceeds maximum of %dMB", maxLogSizeMB),
		})
	}

	if c.Logging.MaxBackups < 0 {
		errors = append(errors, ValidationError{
			Field:   "logging.max_backups",
			Value:   c.Logging.MaxBackups,
			Message: "must be non-negative",
		})
	}

	return errors
}

func (c *Config) validateWatch() []ValidationError {
	if c.Watch.DebounceMs < 0 {
		return []ValidationError{{
			Field:   "watch.debounce_ms",
			Value:   c.Watch.DebounceMs,
			Message: "must be non-negative",
		}}
	}
	return nil
}

func (c *Config) validateStore() []ValidationError {
	if strings.ContainsRune(c.Store.Path, '\x00') {
		return []ValidationError{{
			Field:   "store.path",
			Value:   c.Store.Path,
			Message: "path contains invalid null character",
		}}
	}
	return nil
}

package config

import (
	"strings"
	"testing"

	"github.com/Iron-Ham/teamforge/internal/pipeline"
)

func TestValidationError_Error(t *testing.T) {
	err := ValidationError{
		Field:   "test.field",
		Value:   123,
		Message: "must be greater than zero",
	}

	expected := "test.field: must be greater than zero (got: 123)"
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
			{Field: "test.field", Value: 123, Message: "is invalid"},
		}
		expected := "test.field: is invalid (got: 123)"
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

// fields returns the Field of each error, for compact assertions.
func fields(errs []ValidationError) []string {
	out := make([]string, len(errs))
	for i, e := range errs {
		out[i] = e.Field
	}
	return out
}

func TestConfig_Validate_Teams(t *testing.T) {
	tests := []struct {
		name     string
		count    int
		hasError bool
	}{
		{"one team", 1, false},
		{"default", 42, false},
		{"upper bound", maxTeams, false},
		{"zero", 0, true},
		{"negative", -3, true},
		{"too many", maxTeams + 1, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			cfg.Teams.Count = tt.count
			errs := cfg.validateTeams()
			if (len(errs) > 0) != tt.hasError {
				t.Errorf("validateTeams() errors = %v, hasError want %v", errs, tt.hasError)
			}
		})
	}
}

func TestConfig_Validate_Balance(t *testing.T) {
	cfg := Default()
	cfg.Balance.CategoryPasses = 0
	cfg.Balance.CleanupPasses = -1
	cfg.Balance.SizeIterations = maxIteration + 1
	cfg.Balance.LanguageIterations = 3

	got := fields(cfg.validateBalance())
	want := []string{"balance.cleanup_passes", "balance.size_iterations"}
	if strings.Join(got, ",") != strings.Join(want, ",") {
		t.Errorf("validateBalance() fields = %v, want %v", got, want)
	}
}

func TestConfig_Validate_Pins(t *testing.T) {
	tests := []struct {
		name     string
		pins     []pipeline.Pin
		hasError bool
	}{
		{"none", nil, false},
		{"valid", []pipeline.Pin{{Cluster: "soBR8", With: "byUS1"}}, false},
		{"missing with", []pipeline.Pin{{Cluster: "soBR8"}}, true},
		{"missing cluster", []pipeline.Pin{{With: "byUS1"}}, true},
		{"self pin", []pipeline.Pin{{Cluster: "byUS1", With: "byUS1"}}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			cfg.Pins = tt.pins
			errs := cfg.validatePins()
			if (len(errs) > 0) != tt.hasError {
				t.Errorf("validatePins() errors = %v, hasError want %v", errs, tt.hasError)
			}
		})
	}
}

func TestConfig_Validate_Columns(t *testing.T) {
	tests := []struct {
		name      string
		mutate    func(*ColumnsConfig)
		wantField string
	}{
		{"defaults", func(*ColumnsConfig) {}, ""},
		{"disabled optional column", func(c *ColumnsConfig) { c.Leader = "" }, ""},
		{"literal header", func(c *ColumnsConfig) { c.StatusA = "Paid" }, ""},
		{"missing cluster", func(c *ColumnsConfig) { c.Cluster = " " }, "columns.cluster"},
		{"unclosed class", func(c *ColumnsConfig) { c.Languages = "[lang" }, "columns.languages"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(&cfg.Columns)
			errs := cfg.validateColumns()
			if tt.wantField == "" {
				if len(errs) != 0 {
					t.Errorf("validateColumns() = %v, want no errors", errs)
				}
				return
			}
			if len(errs) == 0 || errs[0].Field != tt.wantField {
				t.Errorf("validateColumns() = %v, want error on %s", errs, tt.wantField)
			}
		})
	}
}

func TestConfig_Validate_Output(t *testing.T) {
	for _, format := range ValidOutputFormats() {
		cfg := Default()
		cfg.Output.Format = format
		if errs := cfg.validateOutput(); len(errs) != 0 {
			t.Errorf("format %q should be valid, got %v", format, errs)
		}
	}
	for _, format := range []string{"", "xml", "CSV"} {
		cfg := Default()
		cfg.Output.Format = format
		if errs := cfg.validateOutput(); len(errs) != 1 {
			t.Errorf("format %q should be rejected, got %v", format, errs)
		}
	}
}

func TestConfig_Validate_Logging(t *testing.T) {
	tests := []struct {
		name       string
		level      string
		maxSizeMB  int
		maxBackups int
		errCount   int
	}{
		{"defaults", "info", 10, 3, 0},
		{"empty level", "", 10, 3, 0},
		{"rotation disabled", "debug", 0, 0, 0},
		{"bad level", "verbose", 10, 3, 1},
		{"negative size", "info", -1, 3, 1},
		{"oversized", "info", maxLogSizeMB + 1, 3, 1},
		{"negative backups", "info", 10, -1, 1},
		{"everything wrong", "loud", -5, -2, 3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			cfg.Logging.Level = tt.level
			cfg.Logging.MaxSizeMB = tt.maxSizeMB
			cfg.Logging.MaxBackups = tt.maxBackups
			if errs := cfg.validateLogging(); len(errs) != tt.errCount {
				t.Errorf("validateLogging() = %v, want %d errors", errs, tt.errCount)
			}
		})
	}
}

func TestConfig_Validate_WatchAndStore(t *testing.T) {
	cfg := Default()
	cfg.Watch.DebounceMs = -10
	cfg.Store.Path = "runs\x00.db"

	got := fields(cfg.Validate())
	want := []string{"watch.debounce_ms", "store.path"}
	if strings.Join(got, ",") != strings.Join(want, ",") {
		t.Errorf("Validate() fields = %v, want %v", got, want)
	}
}

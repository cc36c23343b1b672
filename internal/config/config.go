package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/Iron-Ham/teamforge/internal/logging"
	"github.com/Iron-Ham/teamforge/internal/pipeline"
)

// Config represents the complete teamforge configuration
type Config struct {
	Teams    TeamsConfig    `mapstructure:"teams"`
	Balance  BalanceConfig  `mapstructure:"balance"`
	Pins     []pipeline.Pin `mapstructure:"pins"`
	PinsFile string         `mapstructure:"pins_file"`
	Columns  ColumnsConfig  `mapstructure:"columns"`
	Output   OutputConfig   `mapstructure:"output"`
	Logging  LoggingConfig  `mapstructure:"logging"`
	Store    StoreConfig    `mapstructure:"store"`
	Metrics  MetricsConfig  `mapstructure:"metrics"`
	Watch    WatchConfig    `mapstructure:"watch"`
}

// TeamsConfig controls the partition shape
type TeamsConfig struct {
	// Count is the number of teams to form (default: 42)
	Count int `mapstructure:"count"`
}

// BalanceConfig holds the iteration ceilings of the balancing passes
type BalanceConfig struct {
	CategoryPasses     int `mapstructure:"category_passes"`
	CleanupPasses      int `mapstructure:"cleanup_passes"`
	SizeIterations     int `mapstructure:"size_iterations"`
	LanguageIterations int `mapstructure:"language_iterations"`
	// Seed drives relocation choices in category cleanup. 0 picks the
	// lowest-index eligible team instead of drawing at random.
	Seed uint64 `mapstructure:"seed"`
}

// ColumnsConfig maps registrant sheet headers to fields. Each value is a
// glob pattern matched case-insensitively against header names; an empty
// pattern disables the field. Only Cluster is required.
type ColumnsConfig struct {
	Cluster    string `mapstructure:"cluster"`
	Name       string `mapstructure:"name"`
	Languages  string `mapstructure:"languages"`
	English    string `mapstructure:"english"`
	Translator string `mapstructure:"translator"`
	Leader     string `mapstructure:"leader"`
	StatusA    string `mapstructure:"status_a"`
	StatusB    string `mapstructure:"status_b"`
}

// OutputConfig controls how results are written
type OutputConfig struct {
	// Format is one of text, csv, yaml, json (default: text)
	Format string `mapstructure:"format"`
	// Dir receives teams.<ext> and, for csv, summary.csv. Empty writes to stdout.
	Dir string `mapstructure:"dir"`
	// Summary adds the per-team summary table to csv output (default: true)
	Summary bool `mapstructure:"summary"`
}

// LoggingConfig controls debug logging
type LoggingConfig struct {
	Level string `mapstructure:"level"`
	// Dir holds teamforge.log. Empty logs to stderr.
	Dir        string `mapstructure:"dir"`
	MaxSizeMB  int    `mapstructure:"max_size_mb"`
	MaxBackups int    `mapstructure:"max_backups"`
	Compress   bool   `mapstructure:"compress"`
}

// StoreConfig controls the run history database
type StoreConfig struct {
	Enabled bool `mapstructure:"enabled"`
	// Path of the SQLite file. Empty uses DataDir()/runs.db.
	Path string `mapstructure:"path"`
}

// MetricsConfig controls Prometheus textfile export
type MetricsConfig struct {
	// File receives metrics in the node_exporter textfile format after each run.
	File string `mapstructure:"file"`
}

// WatchConfig controls `form --watch`
type WatchConfig struct {
	// DebounceMs coalesces bursts of file events (default: 500)
	DebounceMs int `mapstructure:"debounce_ms"`
}

// Default returns a Config with sensible default values
func Default() *Config {
	p := pipeline.DefaultConfig()
	return &Config{
		Teams: TeamsConfig{
			Count: p.Teams,
		},
		Balance: BalanceConfig{
			CategoryPasses:     p.CategoryPasses,
			CleanupPasses:      p.CleanupPasses,
			SizeIterations:     p.SizeIterations,
			LanguageIterations: p.LanguageIterations,
			Seed:               0,
		},
		Pins: []pipeline.Pin{},
		Columns: ColumnsConfig{
			Cluster:    "*cluster*",
			Name:       "*name*",
			Languages:  "*language*",
			English:    "*english*",
			Translator: "*translat*",
			Leader:     "*leader*",
		},
		Output: OutputConfig{
			Format:  "text",
			Summary: true,
		},
		Logging: LoggingConfig{
			Level:      "info",
			MaxSizeMB:  10,
			MaxBackups: 3,
		},
		Store: StoreConfig{
			Enabled: false,
		},
		Watch: WatchConfig{
			DebounceMs: 500,
		},
	}
}

// SetDefaultsOn registers every default on v.
func SetDefaultsOn(v *viper.Viper) {
	defaults := Default()

	v.SetDefault("teams.count", defaults.Teams.Count)

	v.SetDefault("balance.category_passes", defaults.Balance.CategoryPasses)
	v.SetDefault("balance.cleanup_passes", defaults.Balance.CleanupPasses)
	v.SetDefault("balance.size_iterations", defaults.Balance.SizeIterations)
	v.SetDefault("balance.language_iterations", defaults.Balance.LanguageIterations)
	v.SetDefault("balance.seed", defaults.Balance.Seed)

	v.SetDefault("pins", defaults.Pins)
	v.SetDefault("pins_file", defaults.PinsFile)

	v.SetDefault("columns.cluster", defaults.Columns.Cluster)
	v.SetDefault("columns.name", defaults.Columns.Name)
	v.SetDefault("columns.languages", defaults.Columns.Languages)
	v.SetDefault("columns.english", defaults.Columns.English)
	v.SetDefault("columns.translator", defaults.Columns.Translator)
	v.SetDefault("columns.leader", defaults.Columns.Leader)
	v.SetDefault("columns.status_a", defaults.Columns.StatusA)
	v.SetDefault("columns.status_b", defaults.Columns.StatusB)

	v.SetDefault("output.format", defaults.Output.Format)
	v.SetDefault("output.dir", defaults.Output.Dir)
	v.SetDefault("output.summary", defaults.Output.Summary)

	v.SetDefault("logging.level", defaults.Logging.Level)
	v.SetDefault("logging.dir", defaults.Logging.Dir)
	v.SetDefault("logging.max_size_mb", defaults.Logging.MaxSizeMB)
	v.SetDefault("logging.max_backups", defaults.Logging.MaxBackups)
	v.SetDefault("logging.compress", defaults.Logging.Compress)

	v.SetDefault("store.enabled", defaults.Store.Enabled)
	v.SetDefault("store.path", defaults.Store.Path)

	v.SetDefault("metrics.file", defaults.Metrics.File)

	v.SetDefault("watch.debounce_ms", defaults.Watch.DebounceMs)
}

// LoadFrom reads the configuration from v into a Config, merges the pins
// file if one is set, and validates the result.
func LoadFrom(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	if cfg.PinsFile != "" {
		pins, err := LoadPinsFile(cfg.PinsFile)
		if err != nil {
			return nil, err
		}
		cfg.Pins = append(cfg.Pins, pins...)
	}

	if errs := cfg.Validate(); len(errs) > 0 {
		return nil, ValidationErrors(errs)
	}

	return &cfg, nil
}

// pinsFile is the on-disk shape of a pins file:
//
//	pins:
//	  - cluster: soBR8
//	    with: byUS1
type pinsFile struct {
	Pins []pipeline.Pin `yaml:"pins"`
}

// LoadPinsFile reads pins from a YAML file.
func LoadPinsFile(path string) ([]pipeline.Pin, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading pins file: %w", err)
	}
	var f pinsFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parsing pins file %s: %w", path, err)
	}
	return f.Pins, nil
}

// PipelineConfig converts the balance, teams and pins sections for the
// pipeline.
func (c *Config) PipelineConfig() pipeline.Config {
	return pipeline.Config{
		Teams:              c.Teams.Count,
		CategoryPasses:     c.Balance.CategoryPasses,
		CleanupPasses:      c.Balance.CleanupPasses,
		SizeIterations:     c.Balance.SizeIterations,
		LanguageIterations: c.Balance.LanguageIterations,
		Seed:               c.Balance.Seed,
		Pins:               c.Pins,
	}
}

// Rotation returns the log rotation settings.
func (c *LoggingConfig) Rotation() logging.RotationConfig {
	return logging.RotationConfig{
		MaxSizeMB:  c.MaxSizeMB,
		MaxBackups: c.MaxBackups,
		Compress:   c.Compress,
	}
}

// Debounce returns the watch debounce as a time.Duration
func (c *WatchConfig) Debounce() time.Duration {
	return time.Duration(c.DebounceMs) * time.Millisecond
}

// ResolvePath returns the store path, defaulting to DataDir()/runs.db.
func (c *StoreConfig) ResolvePath() string {
	if c.Path != "" {
		return c.Path
	}
	return filepath.Join(DataDir(), "runs.db")
}

// ConfigDir returns the path to the user's config directory
func ConfigDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "teamforge")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ".teamforge"
	}
	return filepath.Join(home, ".config", "teamforge")
}

// ConfigFile returns the path to the config file
func ConfigFile() string {
	return filepath.Join(ConfigDir(), "teamforge.yaml")
}

// DataDir returns the directory for the run history database
func DataDir() string {
	if xdg := os.Getenv("XDG_DATA_HOME"); xdg != "" {
		return filepath.Join(xdg, "teamforge")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ".teamforge"
	}
	return filepath.Join(home, ".local", "share", "teamforge")
}

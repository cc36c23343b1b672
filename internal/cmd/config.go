package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/Iron-Ham/teamforge/internal/config"
)

func newConfigCmd(a *app) *cobra.Command {
	configCmd := &cobra.Command{
		Use:   "config",
		Short: "View or create teamforge configuration",
		Long: `View or create teamforge configuration.

Without arguments, displays the effective configuration: defaults, then the
config file, then TEAMFORGE_* environment variables, then flags.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConfigShow(cmd, a)
		},
	}

	configCmd.AddCommand(
		&cobra.Command{
			Use:   "show",
			Short: "Show current configuration",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				return runConfigShow(cmd, a)
			},
		},
		&cobra.Command{
			Use:   "init",
			Short: "Create a default config file",
			Long:  `Create a commented default config file at $XDG_CONFIG_HOME/teamforge/teamforge.yaml.`,
			Args:  cobra.NoArgs,
			RunE:  runConfigInit,
		},
		&cobra.Command{
			Use:   "path",
			Short: "Show the config file path",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				path := a.v.ConfigFileUsed()
				if path == "" {
					path = config.ConfigFile()
				}
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), path)
				return nil
			},
		},
	)
	return configCmd
}

// shownConfig mirrors config.Config with yaml tags for display.
type shownConfig struct {
	Teams struct {
		Count int `yaml:"count"`
	} `yaml:"teams"`
	Balance struct {
		CategoryPasses     int    `yaml:"category_passes"`
		CleanupPasses      int    `yaml:"cleanup_passes"`
		SizeIterations     int    `yaml:"size_iterations"`
		LanguageIterations int    `yaml:"language_iterations"`
		Seed               uint64 `yaml:"seed"`
	} `yaml:"balance"`
	Pins     []map[string]string `yaml:"pins"`
	PinsFile string              `yaml:"pins_file"`
	Columns  map[string]string   `yaml:"columns"`
	Output   struct {
		Format  string `yaml:"format"`
		Dir     string `yaml:"dir"`
		Summary bool   `yaml:"summary"`
	} `yaml:"output"`
	Logging struct {
		Level      string `yaml:"level"`
		Dir        string `yaml:"dir"`
		MaxSizeMB  int    `yaml:"max_size_mb"`
		MaxBackups int    `yaml:"max_backups"`
		Compress   bool   `yaml:"compress"`
	} `yaml:"logging"`
	Store struct {
		Enabled bool   `yaml:"enabled"`
		Path    string `yaml:"path"`
	} `yaml:"store"`
	Metrics struct {
		File string `yaml:"file"`
	} `yaml:"metrics"`
	Watch struct {
		DebounceMs int `yaml:"debounce_ms"`
	} `yaml:"watch"`
}

func toShown(cfg *config.Config) shownConfig {
	var s shownConfig
	s.Teams.Count = cfg.Teams.Count
	s.Balance.CategoryPasses = cfg.Balance.CategoryPasses
	s.Balance.CleanupPasses = cfg.Balance.CleanupPasses
	s.Balance.SizeIterations = cfg.Balance.SizeIterations
	s.Balance.LanguageIterations = cfg.Balance.LanguageIterations
	s.Balance.Seed = cfg.Balance.Seed
	s.Pins = make([]map[string]string, 0, len(cfg.Pins))
	for _, p := range cfg.Pins {
		s.Pins = append(s.Pins, map[string]string{"cluster": p.Cluster, "with": p.With})
	}
	s.PinsFile = cfg.PinsFile
	s.Columns = map[string]string{
		"cluster":    cfg.Columns.Cluster,
		"name":       cfg.Columns.Name,
		"languages":  cfg.Columns.Languages,
		"english":    cfg.Columns.English,
		"translator": cfg.Columns.Translator,
		"leader":     cfg.Columns.Leader,
		"status_a":   cfg.Columns.StatusA,
		"status_b":   cfg.Columns.StatusB,
	}
	s.Output.Format = cfg.Output.Format
	s.Output.Dir = cfg.Output.Dir
	s.Output.Summary = cfg.Output.Summary
	s.Logging.Level = cfg.Logging.Level
	s.Logging.Dir = cfg.Logging.Dir
	s.Logging.MaxSizeMB = cfg.Logging.MaxSizeMB
	s.Logging.MaxBackups = cfg.Logging.MaxBackups
	s.Logging.Compress = cfg.Logging.Compress
	s.Store.Enabled = cfg.Store.Enabled
	s.Store.Path = cfg.Store.ResolvePath()
	s.Metrics.File = cfg.Metrics.File
	s.Watch.DebounceMs = cfg.Watch.DebounceMs
	return s
}

func runConfigShow(cmd *cobra.Command, a *app) error {
	cfg, err := a.load()
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	// Show where config is being read from
	if used := a.v.ConfigFileUsed(); used != "" {
		_, _ = fmt.Fprintf(out, "# Config file: %s\n", used)
	} else {
		_, _ = fmt.Fprintln(out, "# Config file: (none - using defaults)")
	}

	enc := yaml.NewEncoder(out)
	enc.SetIndent(2)
	if err := enc.Encode(toShown(cfg)); err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}
	return enc.Close()
}

const defaultConfigFile = `# teamforge configuration

teams:
  # Number of teams to form
  count: 42

# Iteration ceilings of the balancing passes (0 = default)
balance:
  category_passes: 40
  cleanup_passes: 20
  size_iterations: 20
  language_iterations: 10
  # Seed for category cleanup relocation; 0 keeps runs deterministic
  seed: 0

# Keep a cluster in the same team as another one
pins: []
#  - cluster: soBR8
#    with: byUS1
pins_file: ""

# Header glob patterns, matched case-insensitively. Empty disables a field.
columns:
  cluster: "*cluster*"
  name: "*name*"
  languages: "*language*"
  english: "*english*"
  translator: "*translat*"
  leader: "*leader*"
  status_a: ""
  status_b: ""

output:
  # text, csv, yaml or json
  format: text
  # Directory for teams.<ext>; empty prints to stdout
  dir: ""
  # Add summary.csv next to teams.csv
  summary: true

logging:
  # debug, info, warn or error
  level: info
  # Directory for teamforge.log; empty logs to stderr
  dir: ""
  max_size_mb: 10
  max_backups: 3
  compress: false

# Run history
store:
  enabled: false
  # Empty uses $XDG_DATA_HOME/teamforge/runs.db
  path: ""

metrics:
  # Prometheus textfile written after each run
  file: ""

watch:
  debounce_ms: 500
`

func runConfigInit(cmd *cobra.Command, args []string) error {
	configFile := config.ConfigFile()

	// Check if config file already exists
	if _, err := os.Stat(configFile); err == nil {
		return fmt.Errorf("config file already exists at %s", configFile)
	}
	if err := os.MkdirAll(filepath.Dir(configFile), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if err := os.WriteFile(configFile, []byte(defaultConfigFile), 0o644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Created config file: %s\n", configFile)
	return nil
}

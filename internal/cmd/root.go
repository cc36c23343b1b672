// Package cmd implements the teamforge command line.
package cmd

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/Iron-Ham/teamforge/internal/config"
	tferrors "github.com/Iron-Ham/teamforge/internal/errors"
	"github.com/Iron-Ham/teamforge/internal/logging"
)

// app is the state shared by every command of one root.
type app struct {
	v       *viper.Viper
	cfgFile string
	logger  *logging.Logger
}

// NewRootCmd builds the command tree. Each call gets its own viper
// instance, so flags and config from one invocation never leak into
// another.
func NewRootCmd() *cobra.Command {
	a := &app{v: viper.New()}

	root := &cobra.Command{
		Use:   "teamforge",
		Short: "Form balanced teams from registrant clusters",
		Long: `teamforge reads a registrant sheet, groups registrants into clusters by
their cluster code and assigns the clusters to teams so that categories,
team sizes, spoken languages and potential leaders are spread evenly.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.initConfig()
		},
	}

	pf := root.PersistentFlags()
	pf.StringVarP(&a.cfgFile, "config", "c", "", "config file (default is $XDG_CONFIG_HOME/teamforge/teamforge.yaml)")
	pf.String("log-level", config.Default().Logging.Level, "log level: "+strings.Join(config.ValidLogLevels(), ", "))
	pf.String("log-dir", "", "write logs to teamforge.log in this directory instead of stderr")
	a.bindFlags(pf, map[string]string{
		"logging.level": "log-level",
		"logging.dir":   "log-dir",
	})

	root.AddCommand(
		newFormCmd(a),
		newCheckCmd(a),
		newHistoryCmd(a),
		newShowCmd(a),
		newBrowseCmd(a),
		newConfigCmd(a),
		newLogsCmd(a),
	)
	return root
}

// Execute runs the root command
func Execute() error {
	return NewRootCmd().Execute()
}

func (a *app) initConfig() error {
	// Set defaults first so they're available even without a config file
	config.SetDefaultsOn(a.v)

	if a.cfgFile != "" {
		a.v.SetConfigFile(a.cfgFile)
	} else {
		a.v.SetConfigName("teamforge")
		a.v.SetConfigType("yaml")
		a.v.AddConfigPath(config.ConfigDir())
		a.v.AddConfigPath(".")
	}

	// TEAMFORGE_TEAMS_COUNT for teams.count
	a.v.SetEnvPrefix("TEAMFORGE")
	a.v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	a.v.AutomaticEnv()

	if err := a.v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if a.cfgFile != "" || !errors.As(err, &notFound) {
			return fmt.Errorf("%w: reading config: %w", tferrors.ErrInvalidConfig, err)
		}
	}
	return nil
}

// load returns the validated configuration.
func (a *app) load() (*config.Config, error) {
	cfg, err := config.LoadFrom(a.v)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", tferrors.ErrInvalidConfig, err)
	}
	return cfg, nil
}

// openLogger creates the logger for this invocation. Callers defer
// a.close().
func (a *app) openLogger(cmd *cobra.Command, cfg *config.Config) (*logging.Logger, error) {
	if a.logger != nil {
		return a.logger, nil
	}
	if cfg.Logging.Dir == "" {
		a.logger = logging.NewWriterLogger(cmd.ErrOrStderr(), cfg.Logging.Level)
		return a.logger, nil
	}
	l, err := logging.NewLogger(cfg.Logging.Dir, cfg.Logging.Level, cfg.Logging.Rotation())
	if err != nil {
		return nil, err
	}
	a.logger = l
	return l, nil
}

func (a *app) close() error {
	if a.logger == nil {
		return nil
	}
	err := a.logger.Close()
	a.logger = nil
	return err
}

// bindFlags binds config keys to flags of fs so flag values outrank the
// config file and environment once set.
func (a *app) bindFlags(fs *pflag.FlagSet, keys map[string]string) {
	for key, name := range keys {
		if f := fs.Lookup(name); f != nil {
			_ = a.v.BindPFlag(key, f)
		}
	}
}

package cmd

import (
	"errors"
	"fmt"

	"github.com/jzelinskie/cobrautil/v2"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/kubev2v/task-scheduler/internal/config"
)

const envPrefix = "SCHEDULER"

func NewRootCommand() *cobra.Command {
	cfg := config.NewConfigurationWithDefaults()
	var configFile string

	root := &cobra.Command{
		Use:           "task-scheduler",
		Short:         "Named worker pools with futures, statistics and an HTTP API",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: cobrautil.CommandStack(
			cobrautil.SyncViperPreRunE(envPrefix),
			func(cmd *cobra.Command, _ []string) error {
				return loadConfigFile(cmd, configFile)
			},
			func(*cobra.Command, []string) error {
				return setupLogger(cfg.LogFormat, cfg.LogLevel)
			},
		),
		PersistentPostRun: func(*cobra.Command, []string) {
			_ = zap.L().Sync()
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&configFile, "config", "", "Path to a YAML, JSON or TOML configuration file")
	flags.StringVar(&cfg.LogFormat, "log-format", cfg.LogFormat, "Log format: console or json")
	flags.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "Log level: debug, info, warn or error")
	flags.StringVar(&cfg.Store.DataFolder, "data-folder", cfg.Store.DataFolder, "Folder of the statistics database, empty keeps it in memory")

	root.AddCommand(
		NewRunCommand(cfg),
		NewStatsCommand(),
		NewReportCommand(cfg),
	)
	return root
}

// loadConfigFile sets every flag the user did not pass explicitly from the
// configuration file. Keys are flag names.
func loadConfigFile(cmd *cobra.Command, path string) error {
	if path == "" {
		return nil
	}

	v := viper.New()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return fmt.Errorf("failed to read config file %q: %w", path, err)
	}

	var errs []error
	cmd.Flags().VisitAll(func(f *pflag.Flag) {
		if f.Changed || !v.IsSet(f.Name) {
			return
		}
		if err := f.Value.Set(v.GetString(f.Name)); err != nil {
			errs = append(errs, fmt.Errorf("invalid value for %q in %s: %w", f.Name, path, err))
		}
	})
	return errors.Join(errs...)
}

func setupLogger(format, level string) error {
	lvl, err := zap.ParseAtomicLevel(level)
	if err != nil {
		return fmt.Errorf("invalid log level %q: %w", level, err)
	}

	var zc zap.Config
	if format == "json" {
		zc = zap.NewProductionConfig()
	} else {
		zc = zap.NewDevelopmentConfig()
	}
	zc.Level = lvl

	logger, err := zc.Build()
	if err != nil {
		return err
	}
	zap.ReplaceGlobals(logger)
	return nil
}

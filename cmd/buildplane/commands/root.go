package commands

import (
	"context"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/thediveo/enumflag/v2"

	"github.com/tracefront/build-plane/internal/config"
	"github.com/tracefront/build-plane/internal/logging"
)

var (
	configFiles []string
	overrides   []string
	logLevel    = logging.LevelInfo
)

var logLevelIds = map[logging.Level][]string{
	logging.LevelError: {"error"},
	logging.LevelWarn:  {"warn", "warning"},
	logging.LevelInfo:  {"info"},
	logging.LevelDebug: {"debug"},
}

// Execute runs the root command.
func Execute(ctx context.Context) error {
	return newRootCommand().ExecuteContext(ctx)
}

func newRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   "buildplane",
		Short: "Tracefront build-plane CLI",
		Long: `The build plane wraps an application's bundler configuration with
Tracefront instrumentation: init-file entry injection, hidden source maps and
the artifact upload plugin. The CLI drives the same transform from declarative
configuration files, without user build scripts.`,
		SilenceUsage:  true,
		SilenceErrors: false,
	}

	// Accept underscore spellings for flags, matching the configuration keys.
	root.PersistentFlags().SetNormalizeFunc(func(f *pflag.FlagSet, name string) pflag.NormalizedName {
		return pflag.NormalizedName(strings.ReplaceAll(name, "_", "-"))
	})

	root.PersistentFlags().StringSliceVarP(&configFiles, "config", "c", []string{"buildplane.yml"}, "configuration file or directory (repeatable, merged in order)")
	root.PersistentFlags().StringArrayVar(&overrides, "set", nil, "override a configuration value, e.g. --set build.dev=true")
	root.PersistentFlags().Var(
		enumflag.New(&logLevel, "level", logLevelIds, enumflag.EnumCaseInsensitive),
		"log-level", "log verbosity; one of error, warn, info, debug")

	root.AddCommand(newRunCommand())
	root.AddCommand(newResolveCommand())
	root.AddCommand(newUploadCommand())
	root.AddCommand(newValidateCommand())
	root.AddCommand(newSchemaCommand())

	return root
}

func newLogger() *logging.Logger {
	return logging.NewLogger(logging.Config{Level: logLevel})
}

// loadConfig merges the configured files, applies --set overrides and
// validates the result.
func loadConfig() (*config.Root, error) {
	bs, err := config.Merge(configFiles, false)
	if err != nil {
		return nil, err
	}

	if len(overrides) > 0 {
		bs, err = applyOverrides(bs, overrides)
		if err != nil {
			return nil, err
		}
	}

	return config.Parse(bs)
}

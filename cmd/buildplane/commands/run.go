package commands

import (
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/tracefront/build-plane/internal/service"
)

func newRunCommand() *cobra.Command {
	var (
		projectDir string
		watch      bool
		interval   time.Duration
		noProgress bool
	)

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Build all configured targets and upload artifacts",
		Long: `Run builds every configured target: the declared build configuration is
wrapped, the instrumentation transform applied, and the artifacts the plugin
collects from the dist directory are uploaded to the configured storage.

By default every target builds once and the command exits. With --watch,
targets rebuild on an interval until interrupted.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			root, err := loadConfig()
			if err != nil {
				return err
			}

			runner := service.New().
				WithConfig(root).
				WithProjectDir(projectDir).
				WithLogger(newLogger()).
				WithSingleShot(!watch).
				WithInterval(interval)

			if !noProgress {
				runner = runner.WithProgressOutput(os.Stderr)
			}

			return runner.Run(cmd.Context())
		},
	}

	cmd.Flags().StringVar(&projectDir, "project-dir", ".", "directory searched for Tracefront init files")
	cmd.Flags().BoolVar(&watch, "watch", false, "keep rebuilding targets on an interval")
	cmd.Flags().DurationVar(&interval, "interval", 30*time.Second, "rebuild interval in watch mode")
	cmd.Flags().BoolVar(&noProgress, "no-progress", false, "disable the progress bar")

	return cmd
}

package commands

import (
	"cmp"
	"os"

	"github.com/spf13/cobra"

	"github.com/tracefront/build-plane/internal/progress"
	"github.com/tracefront/build-plane/internal/s3"
	"github.com/tracefront/build-plane/internal/service"
	"github.com/tracefront/build-plane/pkg/artifact"
)

func newUploadCommand() *cobra.Command {
	var (
		distDir    string
		dryRun     bool
		noProgress bool
	)

	cmd := &cobra.Command{
		Use:   "upload",
		Short: "Upload build artifacts from the dist directory",
		Long: `Upload scans the dist directory with the configured include and ignore
patterns and stores every matching artifact in the configured object storage.
It is the standalone form of the upload the run command performs after each
target build.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			log := newLogger()

			root, err := loadConfig()
			if err != nil {
				return err
			}
			if err := root.Storage.Validate(); err != nil {
				return err
			}

			opts := root.PluginOptions()
			opts.DryRun = opts.DryRun || dryRun
			opts.Release = cmp.Or(opts.Release, service.DetectRelease())
			if opts.Release == "" && root.Build != nil {
				opts.Release = root.Build.BuildID
			}

			plugin := artifact.New(opts)

			if !root.Storage.Empty() {
				storage, err := s3.New(ctx, root.Storage)
				if err != nil {
					return err
				}
				plugin.WithUploader(storage)
			}

			if !noProgress {
				bar := progress.New(os.Stderr, "uploading artifacts", -1)
				defer bar.Finish()
				plugin.WithOnUpload(func(string) { bar.Add(1) })
			}

			if distDir == "" {
				distDir = "dist"
				if root.Build != nil && root.Build.DistDir != "" {
					distDir = root.Build.DistDir
				}
			}

			if err := plugin.AddDir(distDir); err != nil {
				return err
			}

			n, err := plugin.Upload(ctx)
			if err != nil {
				return err
			}

			log.Infof("uploaded %d artifacts from %q", n, distDir)
			return nil
		},
	}

	cmd.Flags().StringVar(&distDir, "dist", "", "bundler output directory (defaults to the configured dist_dir)")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "scan artifacts without storing them")
	cmd.Flags().BoolVar(&noProgress, "no-progress", false, "disable the progress bar")

	return cmd
}

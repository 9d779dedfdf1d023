package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tracefront/build-plane/internal/config"
)

func newValidateCommand() *cobra.Command {
	var conflictError bool

	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Validate configuration files",
		Long: `Validate merges the configuration files, applies any --set overrides and
checks the result against the configuration schema plus the semantic rules
the build plane enforces (storage provider exclusivity, known build targets,
secret references).`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			bs, err := config.Merge(configFiles, conflictError)
			if err != nil {
				return err
			}

			if len(overrides) > 0 {
				if bs, err = applyOverrides(bs, overrides); err != nil {
					return err
				}
			}

			root, err := config.Parse(bs)
			if err != nil {
				return err
			}

			if err := root.Storage.Validate(); err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), "configuration is valid")
			return nil
		},
	}

	cmd.Flags().BoolVar(&conflictError, "conflict-error", false, "treat conflicting values across files as errors")

	return cmd
}

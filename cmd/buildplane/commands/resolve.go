package commands

import (
	"encoding/json"
	"fmt"
	"maps"
	"os"
	"slices"
	"strings"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
	"github.com/thediveo/enumflag/v2"

	"github.com/tracefront/build-plane/pkg/buildcfg"
)

type target enumflag.Flag

const (
	targetBoth target = iota
	targetClient
	targetServer
)

var targetIds = map[target][]string{
	targetBoth:   {"both"},
	targetClient: {"client"},
	targetServer: {"server"},
}

type resolvedTarget struct {
	Target  string            `json:"target"`
	Devtool string            `json:"devtool"`
	Plugins []string          `json:"plugins"`
	Entries buildcfg.EntryMap `json:"entries"`
}

func newResolveCommand() *cobra.Command {
	var (
		sel        = targetBoth
		projectDir string
		jsonOut    bool
	)

	cmd := &cobra.Command{
		Use:   "resolve",
		Short: "Show the transformed bundler configuration per target",
		Long: `Resolve materializes the bundler configuration for each selected target
the way the host tool would see it after wrapping: injected entries, forced
devtool and appended plugins.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			root, err := loadConfig()
			if err != nil {
				return err
			}

			targets := root.BuildTargets()
			switch sel {
			case targetClient:
				targets = []string{"client"}
			case targetServer:
				targets = []string{"server"}
			}

			wrapped := buildcfg.NewWrapper(root.PluginOptions()).
				WithProjectDir(projectDir).
				Wrap(root.Build.Config())

			resolved := make([]resolvedTarget, 0, len(targets))
			for _, t := range targets {
				cfg := wrapped.BundlerHook(root.Build.BundlerConfig(t), root.Build.Context(t))

				entries, err := cfg.Entry.Resolve(cmd.Context())
				if err != nil {
					return fmt.Errorf("failed to resolve entries for target %q: %w", t, err)
				}

				plugins := make([]string, 0, len(cfg.Plugins))
				for _, p := range cfg.Plugins {
					plugins = append(plugins, p.Name())
				}

				resolved = append(resolved, resolvedTarget{
					Target:  t,
					Devtool: cfg.Devtool,
					Plugins: plugins,
					Entries: entries,
				})
			}

			if jsonOut {
				enc := json.NewEncoder(os.Stdout)
				enc.SetIndent("", "  ")
				return enc.Encode(resolved)
			}

			table := tablewriter.NewWriter(os.Stdout)
			table.Header("TARGET", "DEVTOOL", "ENTRY", "MODULES")
			for _, r := range resolved {
				for _, key := range slices.Sorted(maps.Keys(r.Entries)) {
					if err := table.Append(r.Target, r.Devtool, key, strings.Join(r.Entries[key].Modules(), ", ")); err != nil {
						return err
					}
				}
			}
			return table.Render()
		},
	}

	cmd.Flags().Var(
		enumflag.New(&sel, "target", targetIds, enumflag.EnumCaseInsensitive),
		"target", "target to resolve; one of client, server, both")
	cmd.Flags().StringVar(&projectDir, "project-dir", ".", "directory searched for Tracefront init files")
	cmd.Flags().BoolVar(&jsonOut, "json", false, "output in JSON format")

	return cmd
}

package main

import (
	"fmt"
	"os"

	"github.com/mitchellh/go-homedir"
	"github.com/spf13/cobra"

	"github.com/chess10kp/tuck/internal/config"
)

func addInitConfig(topLevel *cobra.Command, configPath *string) {
	force := false
	cmd := &cobra.Command{
		Use:   "init-config",
		Short: "Write the default config file.",
		Example: `
tuck init-config
tuck init-config --config ./tuck.toml --force
`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			path, err := homedir.Expand(*configPath)
			if err != nil {
				return err
			}
			if _, err := os.Stat(path); err == nil && !force {
				return fmt.Errorf("%s already exists (use --force to overwrite)", path)
			}

			cfg := config.DefaultConfig
			if err := config.SaveConfig(&cfg, path); err != nil {
				return fmt.Errorf("failed to write config: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", path)
			return nil
		},
	}

	cmd.Flags().BoolVarP(&force, "force", "f", false, "Overwrite an existing file.")
	topLevel.AddCommand(cmd)
}

package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/chess10kp/tuck/internal/config"
	"github.com/chess10kp/tuck/internal/ipc"
)

func addCtl(topLevel *cobra.Command, configPath *string) {
	var b strings.Builder
	for _, c := range ipc.Commands {
		fmt.Fprintf(&b, "  %-9s %s\n", c.Name, c.Help)
	}

	cmd := &cobra.Command{
		Use:   "ctl <command> [args]",
		Short: "Send a command to the running tuck.",
		Long:  "Send a command to the running tuck over its control socket.\n\nCommands:\n" + b.String(),
		Example: `
tuck ctl toggle
tuck ctl autohide off
tuck ctl delay 10
`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadConfig(*configPath)
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}

			reply, err := ipc.Send(cfg.SocketPath, strings.Join(args, " "))
			if err != nil {
				if errors.Is(err, ipc.ErrNotRunning) {
					return fmt.Errorf("%w (socket %s)", ipc.ErrNotRunning, cfg.SocketPath)
				}
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), reply)
			return nil
		},
	}

	topLevel.AddCommand(cmd)
}

package main

import (
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/chess10kp/tuck/internal/config"
	"github.com/chess10kp/tuck/internal/core"
)

// Set at build time with -ldflags "-X main.version=...".
var (
	version = "0.1.0"
	commit  = "none"
	date    = "unknown"
)

func newRootCmd() *cobra.Command {
	var (
		configPath  string
		showVersion bool
		selfTest    bool
	)

	cmd := &cobra.Command{
		Use:   "tuck",
		Short: "Hide status bar icons behind a separator",
		Long: `tuck puts a chevron and a separator on your bar. Icons left of the
separator disappear when you collapse it and come back when you expand it.

Drag icons to the LEFT of the separator to hide them, click the chevron or
press the toggle chord to switch, and press Ctrl+C to exit.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			switch {
			case showVersion:
				fmt.Fprintf(cmd.OutOrStdout(), "tuck v%s\n", version)
				return nil
			case selfTest:
				fmt.Fprintln(cmd.OutOrStdout(), "tuck compiled successfully")
				return nil
			}
			return run(configPath)
		},
	}

	cmd.Flags().BoolVar(&showVersion, "version", false, "Print the version and exit.")
	cmd.Flags().BoolVar(&selfTest, "test", false, "Check the binary starts and exit.")
	cmd.PersistentFlags().StringVarP(&configPath, "config", "c", config.DefaultPath, "Path to the config file.")

	addVersion(cmd)
	addCtl(cmd, &configPath)
	addInitConfig(cmd, &configPath)
	return cmd
}

func run(configPath string) error {
	cfg, err := config.LoadAndValidateConfig(configPath)
	if err != nil {
		return err
	}

	if logFile, err := openLog(cfg.LogFile); err == nil {
		log.SetOutput(logFile)
		defer logFile.Close()
	}

	app, err := core.NewApp(cfg)
	if err != nil {
		log.Printf("Failed to create application: %v", err)
		return err
	}

	if err := app.Run(); err != nil {
		log.Printf("Application error: %v", err)
		if errors.Is(err, core.ErrAlreadyRunning) {
			return fmt.Errorf("%w (%s)", err, cfg.PidFile)
		}
		return err
	}
	return nil
}

func openLog(path string) (*os.File, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, err
	}
	return os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
}

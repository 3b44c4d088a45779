package main

import (
	"os"

	"github.com/spf13/cobra"

	"attachbridge/internal/config"
)

type rootOptions struct {
	configPath string
}

func (o *rootOptions) load() (*config.AppConfig, error) {
	cfg, err := config.LoadFile(o.configPath)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	rootCmd := &cobra.Command{
		Use:   "attachbridge",
		Short: "Local bridge that opens Outlook drafts with a file attached",
		Long: `attachbridge listens on localhost for POST /attach requests carrying a
file path, copies the file into the drop folder under a unique,
classification-based name and opens a new Outlook message with the copy
attached.

It can run as:
  - The bridge server (serve, default)
  - A probe for an already running bridge (status)`,
		SilenceUsage: true,
		Version:      version,
	}
	rootCmd.SetVersionTemplate(`{{printf "attachbridge version %s\n" .Version}}`)

	rootCmd.PersistentFlags().StringVar(&opts.configPath, "config", os.Getenv("CONFIG_PATH"),
		"YAML config file; environment variables override its values")

	serveCmd := newServeCmd(opts)
	// Without a subcommand the root behaves like serve, flags included.
	rootCmd.Flags().AddFlagSet(serveCmd.Flags())
	rootCmd.Args = cobra.NoArgs
	rootCmd.RunE = serveCmd.RunE

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(newStatusCmd(opts))
	rootCmd.AddCommand(newVersionCmd())
	return rootCmd
}

// Execute is the main entry point for the CLI application. With no
// subcommand it runs the bridge.
func Execute() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

package main

import (
	"authcore/config"

	"github.com/spf13/cobra"
)

// Global flags available to all subcommands.
var configDir string

// NewRootCmd creates the root command for the authcore CLI.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "authcore",
		Short: "authcore - email/password credential service",
		Long: `authcore registers users with an email and password, logs them in
and issues signed bearer tokens.`,
		SilenceUsage: true,
	}

	cmd.PersistentFlags().StringVar(&configDir, "config", "", "directory containing config.yaml")

	cmd.AddCommand(NewServeCmd())
	cmd.AddCommand(NewMigrateCmd())

	return cmd
}

// loadConfig reads config.yaml from --config, falling back to the default search path.
func loadConfig() (*config.Config, error) {
	if configDir == "" {
		return config.Load()
	}

	return config.Load(configDir)
}

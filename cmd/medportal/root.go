package main

import (
	"os"

	"github.com/spf13/cobra"

	"medportal/internal/app"
	"medportal/internal/config"
	"medportal/internal/logger"
)

// NewRootCmd creates the root command. Running it without a subcommand
// starts the API server.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:          "medportal",
		Short:        "MedPortal clinical portal API",
		SilenceUsage: true,
		RunE:         runServe,
	}

	cmd.AddCommand(NewServeCmd())
	cmd.AddCommand(NewCreateAdminCmd())
	cmd.AddCommand(NewCreateDoctorCmd())

	return cmd
}

func NewServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API server",
		RunE:  runServe,
	}
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	application, err := app.New(cmd.Context(), cfg)
	if err != nil {
		return err
	}

	return application.Run()
}

// loadConfig reads configuration and installs the process logger.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	logger.Setup(os.Stderr, cfg.LogLevel, cfg.LogFormat)
	return cfg, nil
}

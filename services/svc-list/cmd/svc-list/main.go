package main

import (
	"os"

	"github.com/architeacher/device-list/services/svc-list/internal/config"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:           "svc-list",
	Short:         "Device list service",
	Long:          `svc-list serves the device list over HTTP and offers one-shot commands to export, import and inspect the configured storage backend.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServe()
	},
}

var rootBackend string

func init() {
	output := zerolog.ConsoleWriter{Out: os.Stderr}
	log.Logger = zerolog.New(output).With().Timestamp().Logger()

	rootCmd.PersistentFlags().StringVar(&rootBackend, "backend", "", "storage backend, overrides STORAGE_BACKEND")
	rootCmd.AddCommand(
		newServeCmd(),
		newExportCmd(),
		newImportCmd(),
		newBackendsCmd(),
	)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		log.Fatal().Err(err).Msg("svc-list command failed")
	}
}

func configOverrides() []func(*config.ServiceConfig) {
	if rootBackend == "" {
		return nil
	}

	backend := rootBackend

	return []func(*config.ServiceConfig){
		func(cfg *config.ServiceConfig) {
			cfg.Storage.Backend = backend
		},
	}
}

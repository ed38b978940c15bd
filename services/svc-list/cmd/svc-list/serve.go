package main

import (
	"github.com/architeacher/device-list/services/svc-list/internal/runtime"
	"github.com/spf13/cobra"
)

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API until SIGINT or SIGTERM",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe()
		},
	}
}

func runServe() error {
	opts := make([]runtime.ServiceOption, 0, 1)
	for _, override := range configOverrides() {
		opts = append(opts, runtime.WithConfigOverride(override))
	}

	return runtime.New(opts...).Run()
}

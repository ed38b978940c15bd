package main

import (
	"fmt"
	"os"

	"github.com/architeacher/device-list/services/svc-list/internal/adapters/backends"
	"github.com/architeacher/device-list/services/svc-list/internal/runtime"
	"github.com/architeacher/device-list/services/svc-list/internal/usecases/commands"
	"github.com/spf13/cobra"
)

func newImportCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "import <file>",
		Short: "Replace the stored list with the contents of a data.json document",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			data, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("reading %s: %w", args[0], err)
			}

			list, err := backends.DecodeFileDocument(data)
			if err != nil {
				return err
			}

			session, err := runtime.OpenSession(ctx, configOverrides()...)
			if err != nil {
				return err
			}
			defer session.Close(ctx)

			stored, err := session.App().Commands.ReplaceList.Handle(ctx, commands.ReplaceListCommand{Candidates: list})
			if err != nil {
				return err
			}

			log := session.Logger()
			log.Info().
				Str("backend", session.BackendName()).
				Int("records", len(stored)).
				Msg("list imported")

			return nil
		},
	}
}

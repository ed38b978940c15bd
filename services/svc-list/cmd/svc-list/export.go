package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/architeacher/device-list/services/svc-list/internal/adapters/backends"
	"github.com/architeacher/device-list/services/svc-list/internal/runtime"
	"github.com/architeacher/device-list/services/svc-list/internal/usecases/queries"
	"github.com/spf13/cobra"
)

var errDegradedSnapshot = errors.New("storage backend is degraded, refusing to export an empty snapshot")

func newExportCmd() *cobra.Command {
	var out string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write the stored list as a data.json document",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			session, err := runtime.OpenSession(ctx, configOverrides()...)
			if err != nil {
				return err
			}
			defer session.Close(ctx)

			snapshot, err := session.App().Queries.ListRecords.Execute(ctx, queries.ListRecordsQuery{})
			if err != nil {
				return err
			}

			if snapshot.Degraded {
				return errDegradedSnapshot
			}

			data, err := backends.EncodeFileDocument(snapshot.List)
			if err != nil {
				return err
			}

			if out == "" {
				_, err = cmd.OutOrStdout().Write(data)

				return err
			}

			if err := os.WriteFile(out, data, 0o644); err != nil {
				return fmt.Errorf("writing %s: %w", out, err)
			}

			log := session.Logger()
			log.Info().
				Str("backend", session.BackendName()).
				Str("path", out).
				Int("records", len(snapshot.List)).
				Msg("list exported")

			return nil
		},
	}

	cmd.Flags().StringVarP(&out, "out", "o", "", "destination file, stdout when empty")

	return cmd
}

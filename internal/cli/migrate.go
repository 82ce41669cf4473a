package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"resumerefresh/internal/bootstrap"
)

// NewMigrateCommand applies the embedded Postgres migrations.
func NewMigrateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the submissions table",
		RunE: func(cmd *cobra.Command, _ []string) error {
			rt, err := getRuntime(cmd)
			if err != nil {
				return err
			}
			app, err := rt.open(cmd.Context(), bootstrap.Options{WithStore: true, Migrate: true})
			if err != nil {
				return err
			}
			defer app.Close()
			if app.DB == nil {
				return errors.New("migrate requires STORE_BACKEND=postgres")
			}
			_, err = fmt.Fprintln(rt.writer, "migrations applied")
			return err
		},
	}
}

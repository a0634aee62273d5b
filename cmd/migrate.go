package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/m04kA/SMC-BookingEngine/internal/infra/storage/migrations"
)

func newMigrateCmd(configPath *string) *cobra.Command {
	var list bool

	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending database migrations",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if list {
				names, err := migrations.List()
				if err != nil {
					return err
				}
				for _, name := range names {
					fmt.Fprintln(cmd.OutOrStdout(), name)
				}
				return nil
			}

			a, err := newApp(cmd.Context(), *configPath)
			if err != nil {
				return err
			}
			defer a.Close()

			applied, err := migrations.Up(cmd.Context(), a.db, a.txManager, a.log)
			if err != nil {
				return err
			}
			if len(applied) == 0 {
				a.log.Info("Database schema is up to date")
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&list, "list", false, "print embedded migrations and exit")

	return cmd
}

package main

import (
	"github.com/spf13/cobra"
)

func newMigrateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create the collections' indexes",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}
			defer a.close()

			if a.server.DB == nil {
				a.server.Logger.Info().Msg("memory driver has nothing to migrate")
				return nil
			}
			if err := a.server.DB.EnsureIndexes(cmd.Context()); err != nil {
				return err
			}
			a.server.Logger.Info().Msg("indexes are up to date")
			return nil
		},
	}
}

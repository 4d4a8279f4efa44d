package main

import (
	"github.com/deppfellow/tours-api/internal/model"
	"github.com/spf13/cobra"
)

func newPromoteCommand() *cobra.Command {
	var email, role string

	cmd := &cobra.Command{
		Use:   "promote",
		Short: "Change a user's role",
		RunE: func(cmd *cobra.Command, _ []string) error {
			parsed, err := model.ParseRole(role)
			if err != nil {
				return err
			}

			a, err := newApp()
			if err != nil {
				return err
			}
			defer a.close()

			user, err := a.services.Users.Promote(cmd.Context(), email, parsed)
			if err != nil {
				return err
			}
			a.server.Logger.Info().
				Str("email", user.Email).
				Str("role", string(user.Role)).
				Msg("user role updated")
			return nil
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "email of the user to promote")
	cmd.Flags().StringVar(&role, "role", string(model.RoleAdmin), "new role: user, guide, lead-guide or admin")
	_ = cmd.MarkFlagRequired("email")
	return cmd
}

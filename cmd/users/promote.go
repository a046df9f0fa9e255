package users

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/focusflow/focusapi/cmd/cmdutil"
	"github.com/focusflow/focusapi/internal/config"
	"github.com/focusflow/focusapi/internal/db/models"
	"github.com/focusflow/focusapi/internal/repository"
)

var promoteEmailFlag string

var promoteCmd = &cobra.Command{
	Use:   "promote",
	Short: "Grant the admin role to an existing user",
	RunE: func(cmd *cobra.Command, args []string) error {
		if promoteEmailFlag == "" {
			return fmt.Errorf("--email flag is required")
		}

		cfg, err := config.Load()
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		store, err := cmdutil.OpenStore(cmd.Context(), cfg)
		if err != nil {
			return err
		}
		defer store.Close()

		user, err := store.Users.GetByEmail(cmd.Context(), promoteEmailFlag)
		if errors.Is(err, repository.ErrNotFound) {
			return fmt.Errorf("user %s not found", promoteEmailFlag)
		}
		if err != nil {
			return fmt.Errorf("failed to look up user: %w", err)
		}
		if user.IsAdmin() {
			fmt.Fprintf(cmd.OutOrStdout(), "%s is already an admin\n", user.Email)
			return nil
		}

		user.Role = models.RoleAdmin
		if err := store.Users.Update(cmd.Context(), user); err != nil {
			return fmt.Errorf("failed to promote user: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Promoted %s to admin\n", user.Email)
		return nil
	},
}

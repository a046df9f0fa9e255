package admin

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/focusflow/focusapi/cmd/cmdutil"
	"github.com/focusflow/focusapi/internal/config"
)

// AdminCmd is the parent command for administrator account operations
var AdminCmd = &cobra.Command{
	Use:   "admin",
	Short: "Manage the administrator account",
}

var bootstrapCmd = &cobra.Command{
	Use:   "bootstrap",
	Short: "Create the configured administrator account",
	Long: `Creates the administrator account from FOCUS_ADMIN_EMAIL and FOCUS_ADMIN_PASSWORD
(default admin@admin.com / admin123456) with the pro tier and admin role.

Running it again is safe: an existing account keeps its password and is
promoted to admin if necessary.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		store, err := cmdutil.OpenStore(cmd.Context(), cfg)
		if err != nil {
			return err
		}
		defer store.Close()

		user, created, err := cmdutil.EnsureAdmin(cmd.Context(), store.Users, store.Hasher, cfg.Admin.Email, cfg.Admin.Password)
		if err != nil {
			return err
		}
		if created {
			fmt.Fprintf(cmd.OutOrStdout(), "Created admin %s (%s)\n", user.Email, user.ID)
			if cfg.Admin.Password == config.DefaultAdminPassword {
				fmt.Fprintln(cmd.ErrOrStderr(), "WARNING: admin uses the default password, change it before going to production")
			}
			return nil
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Admin %s already exists\n", user.Email)
		return nil
	},
}

func init() {
	AdminCmd.AddCommand(bootstrapCmd)
}

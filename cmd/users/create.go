package users

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/focusflow/focusapi/cmd/cmdutil"
	"github.com/focusflow/focusapi/internal/config"
	"github.com/focusflow/focusapi/internal/db/models"
)

var (
	emailFlag    string
	nameFlag     string
	passwordFlag string
	stdinFlag    bool
	adminFlag    bool
	tierFlag     string
)

var createCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a new user account",
	RunE: func(cmd *cobra.Command, args []string) error {
		if emailFlag == "" {
			return fmt.Errorf("--email flag is required")
		}

		if stdinFlag {
			fmt.Fprint(cmd.ErrOrStderr(), "Enter password: ")
		}
		password, err := cmdutil.ReadPassword(os.Stdin, passwordFlag, stdinFlag)
		if err != nil {
			return err
		}
		if password == "" {
			return fmt.Errorf("password is required (use --password or --stdin)")
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

		role := models.RoleUser
		if adminFlag {
			role = models.RoleAdmin
		}
		user, err := cmdutil.CreateUser(cmd.Context(), store.Users, store.Hasher, cmdutil.UserSpec{
			Email:    emailFlag,
			Name:     nameFlag,
			Password: password,
			Role:     role,
			Tier:     tierFlag,
		})
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		fmt.Fprintln(out, "User created successfully!")
		fmt.Fprintln(out, "----------------------------------------")
		fmt.Fprintf(out, "User ID: %s\n", user.ID)
		fmt.Fprintf(out, "Email: %s\n", user.Email)
		fmt.Fprintf(out, "Name: %s\n", user.Name)
		fmt.Fprintf(out, "Role: %s\n", user.Role)
		fmt.Fprintf(out, "Tier: %s\n", user.SubscriptionTier)
		fmt.Fprintln(out, "----------------------------------------")
		return nil
	},
}

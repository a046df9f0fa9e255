package users

import "github.com/spf13/cobra"

// UsersCmd is the parent command for user management operations
var UsersCmd = &cobra.Command{
	Use:   "users",
	Short: "Manage user accounts",
	Long:  `Commands for managing user accounts directly against the database.`,
}

func init() {
	createCmd.Flags().StringVar(&emailFlag, "email", "", "Email address of the user")
	createCmd.Flags().StringVar(&nameFlag, "name", "", "Display name of the user")
	createCmd.Flags().StringVar(&passwordFlag, "password", "", "Password for the user (use --stdin to avoid shell history)")
	createCmd.Flags().BoolVar(&stdinFlag, "stdin", false, "Read password from stdin instead of --password flag")
	createCmd.Flags().BoolVar(&adminFlag, "admin", false, "Grant the admin role")
	createCmd.Flags().StringVar(&tierFlag, "tier", "free", "Subscription tier (free, premium, pro)")

	listCmd.Flags().IntVar(&skipFlag, "skip", 0, "Number of users to skip")
	listCmd.Flags().IntVar(&limitFlag, "limit", 50, "Maximum number of users to list")

	promoteCmd.Flags().StringVar(&promoteEmailFlag, "email", "", "Email address of the user to promote")

	UsersCmd.AddCommand(createCmd, listCmd, promoteCmd)
}

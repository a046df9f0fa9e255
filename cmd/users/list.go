package users

import (
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/focusflow/focusapi/cmd/cmdutil"
	"github.com/focusflow/focusapi/internal/config"
	"github.com/focusflow/focusapi/internal/repository"
)

var (
	skipFlag  int
	limitFlag int
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List user accounts",
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

		list, err := store.Users.List(cmd.Context(), repository.Page{Skip: skipFlag, Limit: limitFlag})
		if err != nil {
			return fmt.Errorf("failed to list users: %w", err)
		}

		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tEMAIL\tNAME\tROLE\tTIER\tCREATED")
		for _, u := range list {
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n",
				u.ID, u.Email, u.Name, u.Role, u.SubscriptionTier, u.CreatedAt.Format(time.RFC3339))
		}
		return w.Flush()
	},
}

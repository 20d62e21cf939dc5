package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/sincro/backoffice/app/services"
	"github.com/sincro/backoffice/internal/bootstrap"
)

var (
	reconcileDryRun bool
	reconcileMinAge time.Duration
)

// backoffice users:reconcile
var usersReconcileCmd = &cobra.Command{
	Use:   "users:reconcile",
	Short: "Delete identities that have no store membership",
	Long: "Finds identities left behind when a user was created but the membership row was not,\n" +
		"and deletes them. Identities younger than --min-age are skipped so users being created\n" +
		"right now are left alone. Use --dry-run to only list them.",
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := bootstrap.New(cmd.Context())
		if err != nil {
			return err
		}
		defer closeApp(app)

		ids, err := app.Services.Users.Reconcile(cmd.Context(), services.ReconcileOptions{
			DryRun: reconcileDryRun,
			MinAge: reconcileMinAge,
		})
		out := cmd.OutOrStdout()
		for _, id := range ids {
			fmt.Fprintln(out, id)
		}
		verb := "Deleted"
		if reconcileDryRun {
			verb = "Found"
		}
		fmt.Fprintf(out, "%s %d orphaned identities.\n", verb, len(ids))
		return err
	},
}

func init() {
	usersReconcileCmd.Flags().BoolVar(&reconcileDryRun, "dry-run", false, "list orphans without deleting them")
	usersReconcileCmd.Flags().DurationVar(&reconcileMinAge, "min-age", 10*time.Minute, "skip identities created more recently than this")
}

package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"gorm.io/gorm"

	"github.com/sincro/backoffice/config"
	"github.com/sincro/backoffice/database/seeders"
	"github.com/sincro/backoffice/internal/bootstrap"
	"github.com/sincro/backoffice/pkg/migration"
)

// bootDB loads config and opens the SQL connection. The returned func
// closes it.
func bootDB() (*gorm.DB, func(), error) {
	if err := config.Load(); err != nil {
		return nil, nil, err
	}
	if _, err := bootstrap.Logging(); err != nil {
		return nil, nil, err
	}
	db, err := bootstrap.OpenDB()
	if err != nil {
		return nil, nil, err
	}
	return db, func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	}, nil
}

// backoffice migrate
var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Run all pending database migrations",
	RunE: func(cmd *cobra.Command, args []string) error {
		db, done, err := bootDB()
		if err != nil {
			return err
		}
		defer done()

		n, err := migration.New(db, cmd.OutOrStdout()).Run(cmd.Context())
		if err != nil {
			return err
		}
		if n == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "Nothing to migrate.")
		}
		return nil
	},
}

// backoffice migrate:rollback
var migrateRollbackCmd = &cobra.Command{
	Use:   "migrate:rollback",
	Short: "Roll back the last batch of migrations",
	RunE: func(cmd *cobra.Command, args []string) error {
		db, done, err := bootDB()
		if err != nil {
			return err
		}
		defer done()

		n, err := migration.New(db, cmd.OutOrStdout()).Rollback(cmd.Context())
		if err != nil {
			return err
		}
		if n == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "Nothing to roll back.")
		}
		return nil
	},
}

// backoffice migrate:status
var migrateStatusCmd = &cobra.Command{
	Use:   "migrate:status",
	Short: "Show the status of each migration",
	RunE: func(cmd *cobra.Command, args []string) error {
		db, done, err := bootDB()
		if err != nil {
			return err
		}
		defer done()

		states, err := migration.New(db, nil).Status(cmd.Context())
		if err != nil {
			return err
		}
		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 3, ' ', 0)
		fmt.Fprintln(w, "RAN\tBATCH\tMIGRATION")
		for _, s := range states {
			ran, batch := "No", "-"
			if s.Ran {
				ran, batch = "Yes", fmt.Sprint(s.Batch)
			}
			fmt.Fprintf(w, "%s\t%s\t%s\n", ran, batch, s.Name)
		}
		return w.Flush()
	},
}

// backoffice seed
var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Fill an empty database with reference data",
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := bootstrap.New(cmd.Context())
		if err != nil {
			return err
		}
		defer closeApp(app)

		return seeders.RunAll(cmd.Context(), seeders.Env{
			Store:         app.Store,
			Users:         app.Services.Users,
			AdminEmail:    config.AdminEmail(),
			AdminPassword: config.AdminPassword(),
		}, cmd.OutOrStdout())
	},
}

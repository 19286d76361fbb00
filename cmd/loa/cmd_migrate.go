package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/yungbote/lo-analysis-backend/internal/app"
	"github.com/yungbote/lo-analysis-backend/internal/data/db"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or update the database schema",
	RunE: func(cmd *cobra.Command, _ []string) error {
		return withApp(cmd, app.Options{SkipMigrate: true}, func(_ context.Context, a *app.App) error {
			if err := db.AutoMigrateAll(a.DB); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Schema up to date (%s)\n", a.DB.Dialector.Name())
			return nil
		})
	},
}

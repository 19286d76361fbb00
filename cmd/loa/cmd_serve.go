package main

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/yungbote/lo-analysis-backend/internal/app"
)

var serveFlags struct {
	noWorker bool
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the HTTP API and run the job worker",
	RunE: func(cmd *cobra.Command, _ []string) error {
		return withApp(cmd, app.Options{}, func(ctx context.Context, a *app.App) error {
			if !serveFlags.noWorker {
				a.StartWorker(ctx)
			}
			return a.Run(ctx)
		})
	},
}

var workerCmd = &cobra.Command{
	Use:   "worker",
	Short: "Run the job worker without the HTTP API",
	RunE: func(cmd *cobra.Command, _ []string) error {
		return withApp(cmd, app.Options{}, func(ctx context.Context, a *app.App) error {
			a.StartWorker(ctx)
			a.Log.Info("Worker running", "job_types", a.Services.JobRegistry.Types())
			<-ctx.Done()
			return nil
		})
	},
}

func init() {
	serveCmd.Flags().BoolVar(&serveFlags.noWorker, "no-worker", false, "Serve HTTP only; jobs are left for a separate worker")
}

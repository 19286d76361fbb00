package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/yungbote/lo-analysis-backend/internal/app"
	types "github.com/yungbote/lo-analysis-backend/internal/domain"
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Follow job lifecycle events published on Redis",
	RunE: func(cmd *cobra.Command, _ []string) error {
		return withApp(cmd, app.Options{SkipMigrate: true}, func(ctx context.Context, a *app.App) error {
			if a.Clients.JobBus == nil {
				return fmt.Errorf("watch needs REDIS_ADDR")
			}
			out := cmd.OutOrStdout()
			err := a.Clients.JobBus.Subscribe(ctx, func(ev *types.JobRunEvent) {
				fmt.Fprintf(out, "%s %-18s %-9s %-10s %3d%% %s %s\n",
					ev.CreatedAt.Format("15:04:05"), ev.JobType, ev.Kind, ev.Stage, ev.Progress, ev.JobID, ev.Message)
			})
			if err != nil {
				return err
			}
			<-ctx.Done()
			return nil
		})
	},
}

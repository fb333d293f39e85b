package cli

import (
	"tms-cli/internal/controller"

	"github.com/spf13/cobra"
)

func newDashboardCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:         "dashboard",
		Short:       "Show the most recent tasks and status counts",
		Annotations: map[string]string{annotAuth: authRequired},
		RunE: func(cmd *cobra.Command, args []string) error {
			d := controller.NewDashboard(app.client, app.logger)
			if err := d.Load(ctxOf(cmd)); err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{"data": dashboardOut{
				Recent: taskRows(d.Recent()),
				Stats:  d.Stats(),
			}})
		},
	}
}

package cli

import (
	"tms-cli/internal/model"
	"tms-cli/internal/publish"
	"tms-cli/internal/statusutil"

	"github.com/spf13/cobra"
)

func newPublishCmd(app *App) *cobra.Command {
	var toDir string
	var overwrite bool

	cmd := &cobra.Command{
		Use:         "publish",
		Short:       "Export tasks as Markdown files",
		Annotations: map[string]string{annotAuth: authRequired},
	}

	taskCmd := &cobra.Command{
		Use:   "task <task-id>",
		Short: "Publish a single task as Markdown",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			td, err := loadTaskDetail(cmd, app, args[0])
			if err != nil {
				return writeErr(cmd, err)
			}
			v := td.Entity()
			res, err := publish.WriteTask(toDir, v.Task, v.Assignments, publish.WriteOptions{Overwrite: overwrite})
			if err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{"data": res})
		},
	}

	var search, status, priority, sort string
	tasksCmd := &cobra.Command{
		Use:   "tasks",
		Short: "Publish an index plus one page per task for a filtered list",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			q := model.TaskQuery{Search: search, PerPage: app.cfg.PerPage}
			var err error
			if q.Status, err = statusutil.ParseStatus(status); err != nil {
				return writeErr(cmd, err)
			}
			if q.Priority, err = statusutil.ParsePriority(priority); err != nil {
				return writeErr(cmd, err)
			}
			if q.Sort, err = statusutil.ParseSort(sort); err != nil {
				return writeErr(cmd, err)
			}
			res, err := publish.WriteTasks(ctxOf(cmd), app.client, q, toDir, publish.WriteOptions{Overwrite: overwrite})
			if err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{
				"data": res,
				"meta": map[string]any{"tasks": len(res.Written) - 1},
			})
		},
	}
	tasksCmd.Flags().StringVar(&search, "search", "", "Search title/description")
	tasksCmd.Flags().StringVar(&status, "status", "", "Filter by status (pending|in_progress|completed)")
	tasksCmd.Flags().StringVar(&priority, "priority", "", "Filter by priority (low|medium|high)")
	tasksCmd.Flags().StringVar(&sort, "sort", "", "Sort key (created_at|due_date|priority)")

	cmd.PersistentFlags().StringVar(&toDir, "to", "", "Output directory")
	_ = cmd.MarkPersistentFlagRequired("to")
	cmd.PersistentFlags().BoolVar(&overwrite, "overwrite", true, "Overwrite existing files")

	cmd.AddCommand(taskCmd)
	cmd.AddCommand(tasksCmd)
	return cmd
}

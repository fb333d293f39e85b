package cli

import (
	"strconv"
	"strings"

	"tms-cli/internal/api"
	"tms-cli/internal/controller"
	"tms-cli/internal/model"
	"tms-cli/internal/route"
	"tms-cli/internal/statusutil"
	"tms-cli/internal/validate"

	"github.com/spf13/cobra"
)

func newTasksCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:         "tasks",
		Short:       "Task commands",
		Annotations: map[string]string{annotAuth: authRequired},
	}

	cmd.AddCommand(newTasksListCmd(app))
	cmd.AddCommand(newTasksShowCmd(app))
	cmd.AddCommand(newTasksCreateCmd(app))
	cmd.AddCommand(newTasksUpdateCmd(app))
	cmd.AddCommand(newTasksAssignCmd(app))
	cmd.AddCommand(newTasksUnassignCmd(app))
	cmd.AddCommand(newTasksAssignmentsCmd(app))

	return cmd
}

func parseID(kind, s string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil || id <= 0 {
		return 0, errInvalidID(kind, s)
	}
	return id, nil
}

func newTasksListCmd(app *App) *cobra.Command {
	var page, perPage int
	var search, status, priority, sort string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List tasks (paginated, filterable)",
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := statusutil.ParseStatus(status)
			if err != nil {
				return writeErr(cmd, err)
			}
			pr, err := statusutil.ParsePriority(priority)
			if err != nil {
				return writeErr(cmd, err)
			}
			so, err := statusutil.ParseSort(sort)
			if err != nil {
				return writeErr(cmd, err)
			}
			if perPage <= 0 {
				perPage = app.cfg.PerPage
			}

			l := controller.NewTaskList(app.client, perPage, app.logger)
			l.SetSearch(search)
			l.SetStatus(st)
			l.SetPriority(pr)
			l.SetSort(so)
			if err := l.Run(ctxOf(cmd), l.SetPage(page)); err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{
				"data": taskRows(l.Items()),
				"meta": l.Pagination(),
			})
		},
	}
	cmd.Flags().IntVar(&page, "page", 1, "Page number (1-based)")
	cmd.Flags().IntVar(&perPage, "per-page", 0, "Tasks per page (default from config)")
	cmd.Flags().StringVar(&search, "search", "", "Search title/description")
	cmd.Flags().StringVar(&status, "status", "", "Filter by status (pending|in_progress|completed)")
	cmd.Flags().StringVar(&priority, "priority", "", "Filter by priority (low|medium|high)")
	cmd.Flags().StringVar(&sort, "sort", "", "Sort key (created_at|due_date|priority)")
	return cmd
}

// loadTaskDetail loads a task with its assignments and the member roster.
func loadTaskDetail(cmd *cobra.Command, app *App, arg string) (*controller.TaskDetail, error) {
	id, err := parseID("task", arg)
	if err != nil {
		return nil, err
	}
	td := controller.NewTaskDetail(id, app.client, app.client, app.logger)
	if err := td.Load(ctxOf(cmd)); err != nil {
		if api.IsNotFound(err) {
			return nil, errNotFound("task", arg)
		}
		return nil, err
	}
	return td, nil
}

func taskOut(td *controller.TaskDetail) taskDetailOut {
	v := td.Entity()
	return taskDetailOut{Task: v.Task, Assignments: v.Assignments}
}

func newTasksShowCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "show <task-id>",
		Short: "Show a task and its assignees",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			td, err := loadTaskDetail(cmd, app, args[0])
			if err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{"data": taskOut(td)})
		},
	}
}

type taskFlags struct {
	title, description, status, priority, due string
}

func (f *taskFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.title, "title", "", "Task title")
	cmd.Flags().StringVar(&f.description, "description", "", "Task description (markdown)")
	cmd.Flags().StringVar(&f.status, "status", "", "Status (pending|in_progress|completed)")
	cmd.Flags().StringVar(&f.priority, "priority", "", "Priority (low|medium|high)")
	cmd.Flags().StringVar(&f.due, "due", "", "Due date (YYYY-MM-DD)")
}

// apply copies the flags that were set onto form. Unparseable enum values
// are kept verbatim so validation reports them per field.
func (f *taskFlags) apply(cmd *cobra.Command, form *validate.TaskForm) {
	if cmd.Flags().Changed("title") {
		form.Title = f.title
	}
	if cmd.Flags().Changed("description") {
		form.Description = f.description
	}
	if cmd.Flags().Changed("status") {
		if s, err := statusutil.ParseStatus(f.status); err == nil {
			form.Status = s
		} else {
			form.Status = model.TaskStatus(f.status)
		}
	}
	if cmd.Flags().Changed("priority") {
		if p, err := statusutil.ParsePriority(f.priority); err == nil {
			form.Priority = p
		} else {
			form.Priority = model.TaskPriority(f.priority)
		}
	}
	if cmd.Flags().Changed("due") {
		form.DueDate = f.due
	}
}

func newTasksCreateCmd(app *App) *cobra.Command {
	var flags taskFlags

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a task",
		RunE: func(cmd *cobra.Command, args []string) error {
			c := controller.NewTaskCreate(app.client, route.Nowhere, app.logger)
			form := c.Form()
			flags.apply(cmd, &form)
			if err := c.Submit(ctxOf(cmd), form); err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{"data": map[string]any{"id": c.CreatedID()}})
		},
	}
	flags.register(cmd)
	return cmd
}

func newTasksUpdateCmd(app *App) *cobra.Command {
	var flags taskFlags

	cmd := &cobra.Command{
		Use:   "update <task-id>",
		Short: "Update a task (only the flags given are changed)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			td, err := loadTaskDetail(cmd, app, args[0])
			if err != nil {
				return writeErr(cmd, err)
			}
			td.Edit()
			form := td.Form()
			flags.apply(cmd, &form)
			if err := td.Submit(ctxOf(cmd), form); err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{"data": taskOut(td)})
		},
	}
	flags.register(cmd)
	return cmd
}

func newTasksAssignCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "assign <task-id> <member-id>",
		Short: "Assign a member to a task",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			td, err := loadTaskDetail(cmd, app, args[0])
			if err != nil {
				return writeErr(cmd, err)
			}
			memberID, err := parseID("member", args[1])
			if err != nil {
				return writeErr(cmd, err)
			}
			if err := td.Assign(ctxOf(cmd), memberID); err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{"data": taskOut(td)})
		},
	}
}

func newTasksUnassignCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "unassign <task-id> <member-id>",
		Short: "Remove a member from a task",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			td, err := loadTaskDetail(cmd, app, args[0])
			if err != nil {
				return writeErr(cmd, err)
			}
			memberID, err := parseID("member", args[1])
			if err != nil {
				return writeErr(cmd, err)
			}
			if err := td.Unassign(ctxOf(cmd), memberID); err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{"data": taskOut(td)})
		},
	}
}

func newTasksAssignmentsCmd(app *App) *cobra.Command {
	var candidates bool

	cmd := &cobra.Command{
		Use:   "assignments <task-id>",
		Short: "List members assigned to a task",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			td, err := loadTaskDetail(cmd, app, args[0])
			if err != nil {
				return writeErr(cmd, err)
			}
			out := td.Entity().Assignments
			if candidates {
				out = td.AssignCandidates()
			}
			return writeOut(cmd, app, map[string]any{"data": memberRows(out)})
		},
	}
	cmd.Flags().BoolVar(&candidates, "candidates", false, "List members that can still be assigned instead")
	return cmd
}

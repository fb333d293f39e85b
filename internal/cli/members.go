package cli

import (
	"errors"
	"strings"

	"tms-cli/internal/api"
	"tms-cli/internal/controller"
	"tms-cli/internal/model"
	"tms-cli/internal/route"
	"tms-cli/internal/statusutil"

	"github.com/spf13/cobra"
)

func newMembersCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:         "members",
		Short:       "Team member commands (admins only)",
		Annotations: map[string]string{annotAuth: authAdmin},
	}

	cmd.AddCommand(newMembersListCmd(app))
	cmd.AddCommand(newMembersShowCmd(app))
	cmd.AddCommand(newMembersCreateCmd(app))
	cmd.AddCommand(newMembersUpdateCmd(app))
	cmd.AddCommand(newMembersDeleteCmd(app))

	return cmd
}

func newMembersListCmd(app *App) *cobra.Command {
	var page, perPage int
	var search string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List members (paginated)",
		RunE: func(cmd *cobra.Command, args []string) error {
			if perPage <= 0 {
				perPage = app.cfg.PerPage
			}
			l := controller.NewMemberList(app.client, perPage, app.logger)
			l.SetSearch(search)
			if err := l.Run(ctxOf(cmd), l.SetPage(page)); err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{
				"data": memberRows(l.Items()),
				"meta": l.Pagination(),
			})
		},
	}
	cmd.Flags().IntVar(&page, "page", 1, "Page number (1-based)")
	cmd.Flags().IntVar(&perPage, "per-page", 0, "Members per page (default from config)")
	cmd.Flags().StringVar(&search, "search", "", "Search name/email")
	return cmd
}

func loadMemberDetail(cmd *cobra.Command, app *App, arg string) (*controller.MemberDetail, error) {
	id, err := parseID("member", arg)
	if err != nil {
		return nil, err
	}
	md := controller.NewMemberDetail(id, app.client, route.Nowhere, app.logger)
	if err := md.Load(ctxOf(cmd)); err != nil {
		if api.IsNotFound(err) {
			return nil, errNotFound("member", arg)
		}
		return nil, err
	}
	return md, nil
}

func newMembersShowCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "show <member-id>",
		Short: "Show a member",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			md, err := loadMemberDetail(cmd, app, args[0])
			if err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{"data": memberOut(md.Entity())})
		},
	}
}

// roleFlag keeps unknown roles verbatim so validation reports them.
func roleFlag(s string) model.Role {
	if r, err := statusutil.ParseRole(s); err == nil {
		return r
	}
	return model.Role(strings.TrimSpace(s))
}

func newMembersCreateCmd(app *App) *cobra.Command {
	var name, email, password, role string

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a member",
		RunE: func(cmd *cobra.Command, args []string) error {
			c := controller.NewMemberCreate(app.client, route.Nowhere, app.logger)
			form := c.Form()
			form.Name = strings.TrimSpace(name)
			form.Email = strings.TrimSpace(email)
			form.Password = password
			if cmd.Flags().Changed("role") {
				form.RoleName = roleFlag(role)
			}
			if err := c.Submit(ctxOf(cmd), form); err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{"data": map[string]any{"id": c.CreatedID()}})
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "Full name")
	cmd.Flags().StringVar(&email, "email", "", "Email")
	cmd.Flags().StringVar(&password, "password", "", "Initial password (at least 6 characters)")
	cmd.Flags().StringVar(&role, "role", string(model.RoleUser), "Role (admin|user)")
	return cmd
}

func newMembersUpdateCmd(app *App) *cobra.Command {
	var name, email, role string

	cmd := &cobra.Command{
		Use:   "update <member-id>",
		Short: "Update a member (only the flags given are changed)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			md, err := loadMemberDetail(cmd, app, args[0])
			if err != nil {
				return writeErr(cmd, err)
			}
			md.Edit()
			form := md.Form()
			if cmd.Flags().Changed("name") {
				form.Name = name
			}
			if cmd.Flags().Changed("email") {
				form.Email = email
			}
			if cmd.Flags().Changed("role") {
				form.Role = roleFlag(role)
			}
			if err := md.Submit(ctxOf(cmd), form); err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{"data": memberOut(md.Entity())})
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "Full name")
	cmd.Flags().StringVar(&email, "email", "", "Email")
	cmd.Flags().StringVar(&role, "role", "", "Role (admin|user)")
	return cmd
}

func newMembersDeleteCmd(app *App) *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "delete <member-id>",
		Short: "Delete a member (requires --yes)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID("member", args[0])
			if err != nil {
				return writeErr(cmd, err)
			}
			md := controller.NewMemberDetail(id, app.client, route.Nowhere, app.logger)
			md.RequestDelete()
			if !yes {
				md.CancelDelete()
				return writeErr(cmd, errors.New("refusing to delete without --yes"))
			}
			if err := md.ConfirmDelete(ctxOf(cmd)); err != nil {
				if api.IsNotFound(err) {
					return writeErr(cmd, errNotFound("member", args[0]))
				}
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{"data": map[string]any{"id": id, "deleted": true}})
		},
	}
	cmd.Flags().BoolVar(&yes, "yes", false, "Confirm the deletion")
	return cmd
}

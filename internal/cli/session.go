package cli

import (
	"strings"

	"tms-cli/internal/model"
	"tms-cli/internal/statusutil"
	"tms-cli/internal/validate"

	"github.com/spf13/cobra"
)

func newLoginCmd(app *App) *cobra.Command {
	var email, password string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in and store the session",
		RunE: func(cmd *cobra.Command, args []string) error {
			req := model.LoginRequest{Email: strings.TrimSpace(email), Password: password}
			if err := validate.Login(req).Err(); err != nil {
				return writeErr(cmd, err)
			}
			u, err := app.auth.Login(ctxOf(cmd), req)
			if err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{"data": memberOut(u)})
		},
	}
	cmd.Flags().StringVar(&email, "email", envOr("TMS_EMAIL", ""), "Account email")
	cmd.Flags().StringVar(&password, "password", envOr("TMS_PASSWORD", ""), "Account password (or TMS_PASSWORD)")
	return cmd
}

func newRegisterCmd(app *App) *cobra.Command {
	var name, email, password, role string

	cmd := &cobra.Command{
		Use:   "register",
		Short: "Create an account and sign in",
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := statusutil.ParseRole(role)
			if err != nil {
				return writeErr(cmd, validate.Errors{"role_name": "Invalid role"})
			}
			req := model.RegisterRequest{
				Name:     strings.TrimSpace(name),
				Email:    strings.TrimSpace(email),
				Password: password,
				RoleName: r,
			}
			if err := validate.Register(req).Err(); err != nil {
				return writeErr(cmd, err)
			}
			u, err := app.auth.Register(ctxOf(cmd), req)
			if err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{"data": memberOut(u)})
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "Full name")
	cmd.Flags().StringVar(&email, "email", "", "Account email")
	cmd.Flags().StringVar(&password, "password", envOr("TMS_PASSWORD", ""), "Password, at least 6 characters (or TMS_PASSWORD)")
	cmd.Flags().StringVar(&role, "role", string(model.RoleUser), "Role (admin|user)")
	return cmd
}

func newLogoutCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Clear the stored session",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.auth.Logout(); err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{"data": map[string]any{"loggedOut": true}})
		},
	}
}

func newWhoamiCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:         "whoami",
		Short:       "Show the signed-in user",
		Annotations: map[string]string{annotAuth: authRequired},
		RunE: func(cmd *cobra.Command, args []string) error {
			return writeOut(cmd, app, map[string]any{"data": memberOut(*app.auth.User())})
		},
	}
}

package tui

import (
	"log/slog"
	"strings"

	"tms-cli/internal/api"
	"tms-cli/internal/model"
	"tms-cli/internal/route"
	"tms-cli/internal/validate"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

type authDoneMsg struct {
	owner *authScreen
	err   error
}

// authScreen is the login form, or the sign-up form when register is set.
type authScreen struct {
	env      *env
	register bool

	form    form
	errs    validate.Errors
	message string
	busy    bool
}

func newLoginScreen(e *env) *authScreen {
	return &authScreen{
		env: e,
		form: newForm(
			textField("email", "Email", ""),
			passwordField("password", "Password"),
		),
	}
}

func newRegisterScreen(e *env) *authScreen {
	return &authScreen{
		env:      e,
		register: true,
		form: newForm(
			textField("name", "Name", ""),
			textField("email", "Email", ""),
			passwordField("password", "Password"),
			roleField("role_name", string(model.RoleUser)),
		),
	}
}

func (s *authScreen) init() tea.Cmd   { return s.form.focused().focus() }
func (s *authScreen) capturing() bool { return true }

func (s *authScreen) help() string {
	if s.register {
		return "tab: next field   enter: sign up   esc: back to sign in"
	}
	return "tab: next field   enter: sign in   ctrl+r: create an account"
}

func (s *authScreen) update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case authDoneMsg:
		if msg.owner != s {
			return nil
		}
		s.busy = false
		if msg.err != nil {
			s.message = api.Message(msg.err)
			return nil
		}
		s.env.nav.Navigate(route.To(route.Dashboard))
		return nil

	case tea.KeyMsg:
		if s.busy {
			return nil
		}
		switch msg.String() {
		case "ctrl+r":
			if !s.register {
				s.env.nav.Navigate(route.To(route.Register))
				return nil
			}
		case "esc":
			if s.register {
				s.env.nav.Navigate(route.To(route.Login))
				return nil
			}
		case "ctrl+s":
			return s.submit()
		case "enter":
			if s.form.onLast() {
				return s.submit()
			}
		}
	}
	return s.form.update(msg)
}

func (s *authScreen) submit() tea.Cmd {
	email := strings.TrimSpace(s.form.value("email"))
	password := s.form.value("password")
	e := s.env

	if !s.register {
		req := model.LoginRequest{Email: email, Password: password}
		s.errs = validate.Login(req)
		if len(s.errs) > 0 {
			return nil
		}
		s.busy, s.message = true, ""
		return func() tea.Msg {
			_, err := e.auth.Login(e.ctx, req)
			if err != nil {
				e.logger.Info("login failed", slog.String("error", err.Error()))
			}
			return authDoneMsg{owner: s, err: err}
		}
	}

	req := model.RegisterRequest{
		Name:     strings.TrimSpace(s.form.value("name")),
		Email:    email,
		Password: password,
		RoleName: model.Role(s.form.value("role_name")),
	}
	s.errs = validate.Register(req)
	if len(s.errs) > 0 {
		return nil
	}
	s.busy, s.message = true, ""
	return func() tea.Msg {
		_, err := e.auth.Register(e.ctx, req)
		if err != nil {
			e.logger.Info("register failed", slog.String("error", err.Error()))
		}
		return authDoneMsg{owner: s, err: err}
	}
}

func (s *authScreen) view(f frame) string {
	title := "Sign in"
	if s.register {
		title = "Create an account"
	}
	parts := []string{styleTitle().Render(title), "", s.form.view(f.width-4, s.errs)}
	if s.busy {
		parts = append(parts, "", f.spin+" Signing in…")
	}
	if s.message != "" {
		parts = append(parts, "", styleError().Render(s.message))
	}
	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(colorBorder).
		Padding(1, 2).
		Render(strings.Join(parts, "\n"))
}

func roleField(key, value string) field {
	return choiceField(key, "Role",
		[]string{string(model.RoleUser), string(model.RoleAdmin)},
		[]string{"User", "Admin"},
		value)
}

package tui

import (
	"strings"

	"tms-cli/internal/controller"
	"tms-cli/internal/model"
	"tms-cli/internal/route"
	"tms-cli/internal/validate"

	tea "github.com/charmbracelet/bubbletea"
)

type createDoneMsg struct {
	owner any
	err   error
}

// createScreen is the "new task" and "new member" form. On success the
// controller navigates back to the list.
type createScreen[F any] struct {
	env   *env
	title string
	back  route.Name
	c     *controller.Create[F]
	check func(F) validate.Errors
	read  func(*form) F
	form  form
	errs  validate.Errors
	busy  bool
}

func newTaskCreateScreen(e *env) *createScreen[validate.TaskForm] {
	c := controller.NewTaskCreate(e.client, e.nav, e.logger)
	return &createScreen[validate.TaskForm]{
		env:   e,
		title: "New task",
		back:  route.Tasks,
		c:     c,
		check: validate.Task,
		read:  readTaskForm,
		form:  taskForm(c.Form()),
	}
}

func newMemberCreateScreen(e *env) *createScreen[model.CreateMemberRequest] {
	c := controller.NewMemberCreate(e.client, e.nav, e.logger)
	return &createScreen[model.CreateMemberRequest]{
		env:   e,
		title: "New member",
		back:  route.Members,
		c:     c,
		check: validate.MemberCreate,
		read:  readMemberCreateForm,
		form:  memberCreateForm(c.Form()),
	}
}

func (s *createScreen[F]) init() tea.Cmd   { return s.form.focused().focus() }
func (s *createScreen[F]) capturing() bool { return true }

func (s *createScreen[F]) help() string {
	return "tab: next field   ←/→: change choice   ctrl+s: create   esc: cancel"
}

func (s *createScreen[F]) update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case createDoneMsg:
		if msg.owner == s.c {
			s.busy = false
			s.errs = s.c.FieldErrors()
		}
		return nil
	case tea.KeyMsg:
		if s.busy {
			return nil
		}
		switch msg.String() {
		case "esc":
			s.env.nav.Navigate(route.To(s.back))
			return nil
		case "ctrl+s":
			return s.submit()
		}
	}
	return s.form.update(msg)
}

// submit validates in place; only a valid form starts the create command.
func (s *createScreen[F]) submit() tea.Cmd {
	f := s.read(&s.form)
	if errs := s.check(f); len(errs) > 0 {
		s.errs = errs
		return nil
	}
	s.errs = nil
	s.busy = true
	c, ctx := s.c, s.env.ctx
	return func() tea.Msg {
		return createDoneMsg{owner: c, err: c.Submit(ctx, f)}
	}
}

func (s *createScreen[F]) view(f frame) string {
	var b strings.Builder
	b.WriteString(styleTitle().Render(s.title) + "\n\n")
	b.WriteString(s.form.view(f.width, s.errs))
	if s.busy {
		b.WriteString("\n\n" + f.spin + " Creating…")
	}
	if msg := s.c.Message(); msg != "" && !s.busy {
		b.WriteString("\n\n" + styleError().Render(msg))
	}
	return b.String()
}

package tui

import (
	"fmt"
	"strings"

	"tms-cli/internal/controller"
	"tms-cli/internal/model"
	"tms-cli/internal/route"
	"tms-cli/internal/validate"

	tea "github.com/charmbracelet/bubbletea"
)

type taskLoadMsg struct {
	owner *controller.TaskDetail
	res   controller.LoadResult[controller.TaskView]
}

// taskOpMsg reports a finished submit, assign or unassign. The controller
// has already reloaded; the screen only redraws.
type taskOpMsg struct {
	owner *controller.TaskDetail
	err   error
}

// memberPicker chooses one member for assign or unassign.
type memberPicker struct {
	title   string
	assign  bool
	members []model.Member
	cursor  int
}

type taskDetailScreen struct {
	env  *env
	td   *controller.TaskDetail
	form form
	busy bool

	picker *memberPicker
}

func newTaskDetailScreen(e *env, id int64) *taskDetailScreen {
	return &taskDetailScreen{env: e, td: controller.NewTaskDetail(id, e.client, e.client, e.logger)}
}

func (s *taskDetailScreen) init() tea.Cmd { return s.load() }

func (s *taskDetailScreen) load() tea.Cmd {
	td, ctx := s.td, s.env.ctx
	seq := td.BeginLoad()
	return func() tea.Msg {
		return taskLoadMsg{owner: td, res: td.FetchLoad(ctx, seq)}
	}
}

func (s *taskDetailScreen) capturing() bool {
	return s.td.Mode() == controller.Editing || s.picker != nil
}

func (s *taskDetailScreen) help() string {
	switch {
	case s.picker != nil:
		return "j/k: move   enter: select   esc: close"
	case s.td.Mode() == controller.Editing:
		return "tab: next field   ←/→: change choice   ctrl+s: save   esc: cancel"
	}
	return "e: edit   a: assign   u: unassign   r: reload   esc: back to tasks"
}

func (s *taskDetailScreen) update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case taskLoadMsg:
		if msg.owner == s.td {
			s.td.ApplyLoad(msg.res)
		}
		return nil
	case taskOpMsg:
		if msg.owner == s.td {
			s.busy = false
		}
		return nil
	case tea.KeyMsg:
		if s.busy {
			return nil
		}
		if s.picker != nil {
			return s.updatePicker(msg)
		}
		if s.td.Mode() == controller.Editing {
			return s.updateEditing(msg)
		}
		return s.updateViewing(msg)
	}
	if s.td.Mode() == controller.Editing {
		return s.form.update(msg)
	}
	return nil
}

func (s *taskDetailScreen) updateViewing(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "esc", "backspace":
		s.env.nav.Navigate(route.To(route.Tasks))
	case "r":
		return s.load()
	case "e":
		if s.td.Edit() {
			s.form = taskForm(s.td.Form())
			return s.form.focused().focus()
		}
	case "a":
		if s.td.State() != controller.DetailLoaded {
			return nil
		}
		c := s.td.AssignCandidates()
		if len(c) == 0 {
			s.td.SetMessage("Every member is already assigned")
			return nil
		}
		s.picker = &memberPicker{title: "Assign member", assign: true, members: c}
	case "u":
		if s.td.State() != controller.DetailLoaded {
			return nil
		}
		a := s.td.Entity().Assignments
		if len(a) == 0 {
			s.td.SetMessage("No one is assigned")
			return nil
		}
		s.picker = &memberPicker{title: "Unassign member", members: a}
	}
	return nil
}

func (s *taskDetailScreen) updateEditing(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "esc":
		s.td.Cancel()
		return nil
	case "ctrl+s":
		f := readTaskForm(&s.form)
		if errs := validate.Task(f); len(errs) > 0 {
			// Records the field errors without a request.
			_ = s.td.Submit(s.env.ctx, f)
			return nil
		}
		s.busy = true
		td, ctx := s.td, s.env.ctx
		return func() tea.Msg {
			return taskOpMsg{owner: td, err: td.Submit(ctx, f)}
		}
	}
	return s.form.update(msg)
}

func (s *taskDetailScreen) updatePicker(msg tea.KeyMsg) tea.Cmd {
	p := s.picker
	switch msg.String() {
	case "esc", "q":
		s.picker = nil
	case "down", "j":
		p.cursor = clampIndex(p.cursor+1, len(p.members))
	case "up", "k":
		p.cursor = clampIndex(p.cursor-1, len(p.members))
	case "enter":
		if p.cursor >= len(p.members) {
			return nil
		}
		memberID := p.members[p.cursor].ID
		assign := p.assign
		s.picker = nil
		s.busy = true
		td, ctx := s.td, s.env.ctx
		return func() tea.Msg {
			var err error
			if assign {
				err = td.Assign(ctx, memberID)
			} else {
				err = td.Unassign(ctx, memberID)
			}
			return taskOpMsg{owner: td, err: err}
		}
	}
	return nil
}

func (s *taskDetailScreen) view(f frame) string {
	switch s.td.State() {
	case controller.DetailLoading:
		return f.loading("task")
	case controller.DetailNotFound:
		return styleTitle().Render("Task not found") + "\n\n" + styleMuted().Render("esc: back to tasks")
	case controller.DetailError:
		return styleError().Render(s.td.Message()) + "\n\n" + styleMuted().Render("r: retry   esc: back to tasks")
	}

	if s.td.Mode() == controller.Editing {
		return s.viewEditing(f)
	}

	v := s.td.Entity()
	t := v.Task
	var b strings.Builder
	b.WriteString(styleTitle().Render(t.Title) + "\n")
	due := validate.DateOnly(t.DueDate)
	if due == "" {
		due = "-"
	}
	b.WriteString(fmt.Sprintf("%s  %s  Due %s\n", statusBadge(t.Status), priorityBadge(t.Priority), due))
	b.WriteString(hrule(f.width) + "\n")
	if d := renderMarkdown(t.Description, f.width); d != "" {
		b.WriteString(d + "\n")
	} else {
		b.WriteString(styleMuted().Render("No description") + "\n")
	}
	b.WriteString("\n" + styleTitle().Render("Assigned to") + "\n")
	if len(v.Assignments) == 0 {
		b.WriteString(styleMuted().Render("Nobody yet. Press a to assign.") + "\n")
	}
	for _, m := range v.Assignments {
		b.WriteString(fmt.Sprintf("%s %s  %s\n", glyphBullet(), m.Name, styleMuted().Render(m.Email)))
	}
	if s.busy {
		b.WriteString("\n" + f.spin + " Saving…")
	}
	if msg := s.td.Message(); msg != "" {
		b.WriteString("\n" + styleError().Render(msg))
	}
	if s.picker != nil {
		b.WriteString("\n\n" + s.picker.view(f.width))
	}
	return b.String()
}

func (s *taskDetailScreen) viewEditing(f frame) string {
	var b strings.Builder
	b.WriteString(styleTitle().Render("Edit task") + "\n\n")
	b.WriteString(s.form.view(f.width, s.td.FieldErrors()))
	if s.busy || s.td.Submitting() {
		b.WriteString("\n\n" + f.spin + " Saving…")
	}
	if msg := s.td.Message(); msg != "" {
		b.WriteString("\n\n" + styleError().Render(msg))
	}
	return b.String()
}

func (p *memberPicker) view(width int) string {
	var b strings.Builder
	for i, m := range p.members {
		line := fmt.Sprintf("%s  %s", m.Name, m.Email)
		if i == p.cursor {
			b.WriteString(styleSelected().Render(glyphCursor()+" "+line) + "\n")
		} else {
			b.WriteString("  " + line + "\n")
		}
	}
	return renderModalBox(width, p.title, strings.TrimRight(b.String(), "\n"))
}

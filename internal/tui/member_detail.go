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

type memberLoadMsg struct {
	owner *controller.MemberDetail
	res   controller.LoadResult[model.Member]
}

type memberOpMsg struct {
	owner *controller.MemberDetail
	err   error
}

type memberDetailScreen struct {
	env  *env
	md   *controller.MemberDetail
	form form
	busy bool

	confirm *confirmModal
}

func newMemberDetailScreen(e *env, id int64) *memberDetailScreen {
	return &memberDetailScreen{env: e, md: controller.NewMemberDetail(id, e.client, e.nav, e.logger)}
}

func (s *memberDetailScreen) init() tea.Cmd { return s.load() }

func (s *memberDetailScreen) load() tea.Cmd {
	md, ctx := s.md, s.env.ctx
	seq := md.BeginLoad()
	return func() tea.Msg {
		return memberLoadMsg{owner: md, res: md.FetchLoad(ctx, seq)}
	}
}

func (s *memberDetailScreen) capturing() bool {
	return s.md.Mode() == controller.Editing || s.confirm != nil
}

func (s *memberDetailScreen) help() string {
	switch {
	case s.confirm != nil:
		return "tab: focus   enter: select   esc: cancel"
	case s.md.Mode() == controller.Editing:
		return "tab: next field   ←/→: change role   ctrl+s: save   esc: cancel"
	}
	return "e: edit   d: delete   r: reload   esc: back to members"
}

func (s *memberDetailScreen) update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case memberLoadMsg:
		if msg.owner == s.md {
			s.md.ApplyLoad(msg.res)
		}
		return nil
	case memberOpMsg:
		if msg.owner == s.md {
			s.busy = false
		}
		return nil
	case tea.KeyMsg:
		if s.busy {
			return nil
		}
		if s.confirm != nil {
			return s.updateConfirm(msg)
		}
		if s.md.Mode() == controller.Editing {
			return s.updateEditing(msg)
		}
		return s.updateViewing(msg)
	}
	if s.md.Mode() == controller.Editing {
		return s.form.update(msg)
	}
	return nil
}

func (s *memberDetailScreen) updateViewing(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "esc", "backspace":
		s.env.nav.Navigate(route.To(route.Members))
	case "r":
		return s.load()
	case "e":
		if s.md.Edit() {
			s.form = memberEditForm(s.md.Form())
			return s.form.focused().focus()
		}
	case "d":
		if s.md.State() != controller.DetailLoaded {
			return nil
		}
		s.md.RequestDelete()
		m := newConfirmModal("Delete member",
			fmt.Sprintf("Delete %s (%s)? This cannot be undone.", s.md.Entity().Name, s.md.Entity().Email),
			"Delete")
		s.confirm = &m
	}
	return nil
}

func (s *memberDetailScreen) updateConfirm(msg tea.KeyMsg) tea.Cmd {
	switch s.confirm.update(msg) {
	case confirmRejected:
		s.confirm = nil
		s.md.CancelDelete()
	case confirmAccepted:
		s.confirm = nil
		s.busy = true
		md, ctx := s.md, s.env.ctx
		return func() tea.Msg {
			return memberOpMsg{owner: md, err: md.ConfirmDelete(ctx)}
		}
	}
	return nil
}

func (s *memberDetailScreen) updateEditing(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "esc":
		s.md.Cancel()
		return nil
	case "ctrl+s":
		f := readMemberEditForm(&s.form)
		if errs := validate.Member(f); len(errs) > 0 {
			_ = s.md.Submit(s.env.ctx, f)
			return nil
		}
		s.busy = true
		md, ctx := s.md, s.env.ctx
		return func() tea.Msg {
			return memberOpMsg{owner: md, err: md.Submit(ctx, f)}
		}
	}
	return s.form.update(msg)
}

func (s *memberDetailScreen) view(f frame) string {
	switch s.md.State() {
	case controller.DetailLoading:
		return f.loading("member")
	case controller.DetailNotFound:
		return styleTitle().Render("Member not found") + "\n\n" + styleMuted().Render("esc: back to members")
	case controller.DetailError:
		return styleError().Render(s.md.Message()) + "\n\n" + styleMuted().Render("r: retry   esc: back to members")
	}

	var b strings.Builder
	if s.md.Mode() == controller.Editing {
		b.WriteString(styleTitle().Render("Edit member") + "\n\n")
		b.WriteString(s.form.view(f.width, s.md.FieldErrors()))
		if s.busy || s.md.Submitting() {
			b.WriteString("\n\n" + f.spin + " Saving…")
		}
	} else {
		m := s.md.Entity()
		b.WriteString(styleTitle().Render(m.Name) + "\n")
		b.WriteString(hrule(f.width) + "\n")
		b.WriteString(fmt.Sprintf("%-8s %s\n", "Email", m.Email))
		b.WriteString(fmt.Sprintf("%-8s %s\n", "Role", m.Role))
		if !m.CreatedAt.IsZero() {
			b.WriteString(fmt.Sprintf("%-8s %s\n", "Joined", m.CreatedAt.Format("2006-01-02")))
		}
		if s.busy {
			b.WriteString("\n" + f.spin + " Deleting…")
		}
	}
	if msg := s.md.Message(); msg != "" {
		b.WriteString("\n\n" + styleError().Render(msg))
	}
	if s.confirm != nil {
		b.WriteString("\n\n" + s.confirm.view(f.width))
	}
	return b.String()
}

package tui

import (
	"strings"
	"testing"

	"tms-cli/internal/model"
	"tms-cli/internal/validate"

	tea "github.com/charmbracelet/bubbletea"
	xansi "github.com/charmbracelet/x/ansi"
)

func TestForm_TabCyclesFocus(t *testing.T) {
	t.Parallel()

	f := memberCreateForm(model.CreateMemberRequest{RoleName: model.RoleUser})
	if f.focused().key != "name" {
		t.Fatalf("expected name focused, got %s", f.focused().key)
	}
	for _, want := range []string{"email", "password", "role_name", "name"} {
		f.update(keyMsg("tab"))
		if got := f.focused().key; got != want {
			t.Fatalf("expected %s focused, got %s", want, got)
		}
	}
	f.update(tea.KeyMsg{Type: tea.KeyShiftTab})
	if got := f.focused().key; got != "role_name" {
		t.Fatalf("expected shift+tab to wrap to role_name, got %s", got)
	}
}

func TestForm_ChoiceCycles(t *testing.T) {
	t.Parallel()

	f := taskForm(validate.NewTaskForm())
	f.move(2)
	if f.focused().key != "status" {
		t.Fatalf("expected status focused, got %s", f.focused().key)
	}
	f.update(keyMsg("right"))
	if got := f.value("status"); got != string(model.StatusInProgress) {
		t.Fatalf("expected in_progress, got %s", got)
	}
	f.update(keyMsg("left"))
	f.update(keyMsg("left"))
	if got := f.value("status"); got != string(model.StatusCompleted) {
		t.Fatalf("expected wrap to completed, got %s", got)
	}
	if got := f.value("priority"); got != string(model.PriorityMedium) {
		t.Fatalf("expected default priority medium, got %s", got)
	}
}

func TestForm_EnterInsideDescriptionAddsLine(t *testing.T) {
	t.Parallel()

	f := taskForm(validate.TaskForm{Description: "one"})
	f.move(1)
	f.update(keyMsg("enter"))
	f.update(keyMsg("two"))
	if f.focused().key != "description" {
		t.Fatalf("enter should stay in the description")
	}
	if got := f.value("description"); got != "one\ntwo" {
		t.Fatalf("expected two lines, got %q", got)
	}
}

func TestForm_ReadTrimsText(t *testing.T) {
	t.Parallel()

	f := taskForm(validate.TaskForm{Title: "  Spaced  ", DueDate: " 2026-01-31 ", Status: model.StatusPending, Priority: model.PriorityHigh})
	got := readTaskForm(&f)
	if got.Title != "Spaced" || got.DueDate != "2026-01-31" || got.Priority != model.PriorityHigh {
		t.Fatalf("unexpected form read: %#v", got)
	}
}

func TestForm_ViewShowsFieldErrors(t *testing.T) {
	t.Parallel()

	f := memberEditForm(validate.MemberForm{Name: "Ann", Email: "bad", Role: model.RoleAdmin})
	v := xansi.Strip(f.view(60, validate.Errors{"email": "Invalid email address"}))
	for _, want := range []string{"Name", "Email", "Role", "Invalid email address", "Admin"} {
		if !strings.Contains(v, want) {
			t.Fatalf("expected %q in:\n%s", want, v)
		}
	}
	if strings.Contains(v, "Name is required") {
		t.Fatalf("unexpected error shown")
	}
}

func TestConfirmModal_DefaultsToCancel(t *testing.T) {
	t.Parallel()

	c := newConfirmModal("Delete member", "Sure?", "Delete")
	if got := c.update(keyMsg("enter")); got != confirmRejected {
		t.Fatalf("enter on the default focus should reject, got %v", got)
	}

	c = newConfirmModal("Delete member", "Sure?", "Delete")
	if got := c.update(keyMsg("tab")); got != confirmPending {
		t.Fatalf("tab should only move focus, got %v", got)
	}
	if got := c.update(keyMsg("enter")); got != confirmAccepted {
		t.Fatalf("enter on the confirm button should accept, got %v", got)
	}

	c = newConfirmModal("Delete member", "Sure?", "Delete")
	if got := c.update(keyMsg("x")); got != confirmPending {
		t.Fatalf("unrelated key should be ignored, got %v", got)
	}
}

func TestNormalizePane_ExactSize(t *testing.T) {
	t.Parallel()

	got := normalizePane("short\na much longer line than fits", 10, 3)
	lines := strings.Split(got, "\n")
	if len(lines) != 3 {
		t.Fatalf("expected 3 lines, got %d", len(lines))
	}
	for i, ln := range lines {
		if w := xansi.StringWidth(ln); w != 10 {
			t.Fatalf("line %d: expected width 10, got %d (%q)", i, w, ln)
		}
	}
	if !strings.HasSuffix(lines[1], "…") {
		t.Fatalf("expected truncation marker, got %q", lines[1])
	}
}

func TestClampIndexAndCountLabel(t *testing.T) {
	t.Parallel()

	if got := clampIndex(5, 3); got != 2 {
		t.Fatalf("clampIndex(5,3)=%d", got)
	}
	if got := clampIndex(-1, 3); got != 0 {
		t.Fatalf("clampIndex(-1,3)=%d", got)
	}
	if got := countLabel(1, "task"); got != "1 task" {
		t.Fatalf("countLabel(1)=%q", got)
	}
	if got := countLabel(3, "member"); got != "3 members" {
		t.Fatalf("countLabel(3)=%q", got)
	}
}

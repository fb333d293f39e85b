package publish

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"tms-cli/internal/api"
	"tms-cli/internal/apitest"
	"tms-cli/internal/model"
	"tms-cli/internal/session"
)

func TestRenderTaskMarkdown_IncludesFieldsAndAssignees(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	md := RenderTaskMarkdown(model.Task{
		ID:          7,
		Title:       "Hello",
		Description: "Some **markdown**.",
		Status:      model.StatusInProgress,
		Priority:    model.PriorityHigh,
		DueDate:     "2026-02-03T00:00:00Z",
		CreatedAt:   now,
	}, []model.Member{{ID: 1, Name: "Ann", Email: "ann@example.com"}})

	for _, want := range []string{
		"# Hello",
		"- **Status:** In Progress",
		"- **Priority:** High",
		"- **Due:** 2026-02-03",
		"- **Created:** 2026-01-02",
		"- Ann <ann@example.com>",
		"## Description\n\nSome **markdown**.",
	} {
		if !strings.Contains(md, want) {
			t.Fatalf("expected %q in:\n%s", want, md)
		}
	}
}

func TestRenderTaskMarkdown_NobodyAssigned(t *testing.T) {
	t.Parallel()

	md := RenderTaskMarkdown(model.Task{ID: 3, Status: model.StatusPending, Priority: model.PriorityLow}, nil)
	if !strings.Contains(md, "# Task 3") || !strings.Contains(md, "_Nobody_") {
		t.Fatalf("unexpected markdown:\n%s", md)
	}
	if strings.Contains(md, "## Description") {
		t.Fatalf("empty description should be omitted:\n%s", md)
	}
}

func TestRenderIndexMarkdown_EscapesAndDescribesFilters(t *testing.T) {
	t.Parallel()

	md := RenderIndexMarkdown(
		model.TaskQuery{Status: model.StatusPending, Search: "a|b"},
		[]model.Task{{ID: 4, Title: "a|b", Status: model.StatusPending, Priority: model.PriorityLow, DueDate: "2026-03-01"}},
	)
	for _, want := range []string{
		`Filters: search "a|b", status Pending`,
		`| [4](tasks/4.md) | a\|b | Pending | Low | 2026-03-01 |`,
		"1 tasks",
	} {
		if !strings.Contains(md, want) {
			t.Fatalf("expected %q in:\n%s", want, md)
		}
	}
}

func TestWriteTasks_WalksPagesAndWritesFiles(t *testing.T) {
	t.Parallel()

	srv := apitest.New(t)
	ann := srv.AddUser("Ann", "ann@example.com", "secret1", model.RoleUser)
	var first model.Task
	for i := 0; i < 3; i++ {
		tk := srv.AddTask(model.Task{Title: "Task", Status: model.StatusPending, Priority: model.PriorityLow, DueDate: "2026-03-01"})
		if i == 0 {
			first = tk
		}
	}
	srv.AddTask(model.Task{Title: "Done", Status: model.StatusCompleted, Priority: model.PriorityLow})
	srv.Assign(first.ID, ann.ID)

	client := api.New(srv.URL, &session.Memory{})
	dir := t.TempDir()
	res, err := WriteTasks(context.Background(), client,
		model.TaskQuery{PerPage: 2, Status: model.StatusPending}, dir, WriteOptions{Overwrite: true})
	if err != nil {
		t.Fatalf("WriteTasks: %v", err)
	}
	if len(res.Written) != 4 {
		t.Fatalf("expected index + 3 pages, got %v", res.Written)
	}

	index, err := os.ReadFile(filepath.Join(dir, "index.md"))
	if err != nil {
		t.Fatalf("read index: %v", err)
	}
	if strings.Contains(string(index), "Done") || !strings.Contains(string(index), "3 tasks") {
		t.Fatalf("unexpected index:\n%s", index)
	}

	page, err := os.ReadFile(taskPath(dir, first.ID))
	if err != nil {
		t.Fatalf("read task page: %v", err)
	}
	if !strings.Contains(string(page), "Ann <ann@example.com>") {
		t.Fatalf("expected assignee on task page:\n%s", page)
	}
	if n := srv.Count("GET", "/tasks"); n != 2 {
		t.Fatalf("expected 2 list pages fetched, got %d", n)
	}
}

func TestWriteTask_RefusesOverwrite(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	tk := model.Task{ID: 9, Title: "Once", Status: model.StatusPending, Priority: model.PriorityLow}
	if _, err := WriteTask(dir, tk, nil, WriteOptions{}); err != nil {
		t.Fatalf("first write: %v", err)
	}
	if _, err := WriteTask(dir, tk, nil, WriteOptions{}); err == nil || !strings.Contains(err.Error(), "file exists") {
		t.Fatalf("expected file exists error, got %v", err)
	}
	if _, err := WriteTask(dir, tk, nil, WriteOptions{Overwrite: true}); err != nil {
		t.Fatalf("overwrite: %v", err)
	}
	if _, err := WriteTask("  ", tk, nil, WriteOptions{}); err == nil {
		t.Fatalf("expected missing --to error")
	}
}

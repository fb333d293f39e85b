package controller

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"

	"tms-cli/internal/api"
	"tms-cli/internal/apitest"
	"tms-cli/internal/model"
	"tms-cli/internal/route"
	"tms-cli/internal/validate"
)

func seedTask(srv *apitest.Server) model.Task {
	return srv.AddTask(model.Task{
		Title: "Write docs", Description: "All of them", Status: model.StatusPending,
		Priority: model.PriorityMedium, DueDate: "2026-04-01",
	})
}

func TestTaskDetail_LoadAndNotFound(t *testing.T) {
	t.Parallel()

	srv := apitest.New(t)
	task := seedTask(srv)
	client := api.New(srv.URL, nil)

	td := NewTaskDetail(task.ID, client, client, nil)
	if td.State() != DetailLoading {
		t.Fatalf("expected loading initially")
	}
	if err := td.Load(context.Background()); err != nil {
		t.Fatalf("load: %v", err)
	}
	if td.State() != DetailLoaded || td.Mode() != Viewing {
		t.Fatalf("unexpected state %s", td.State())
	}
	if f := td.Form(); f.Title != "Write docs" || f.DueDate != "2026-04-01" {
		t.Fatalf("expected form seeded from task, got %#v", f)
	}
	if q := srv.Requests(); len(q) != 3 {
		t.Fatalf("expected task, assignments and roster fetched, got %d requests", len(q))
	}
	var rosterQuery string
	for _, r := range srv.Requests() {
		if r.Path == "/members" {
			rosterQuery = r.RawQuery
		}
	}
	if rosterQuery != "page=1&per_page=100" {
		t.Fatalf("unexpected roster query %q", rosterQuery)
	}

	missing := NewTaskDetail(9999, client, client, nil)
	if err := missing.Load(context.Background()); !api.IsNotFound(err) {
		t.Fatalf("expected not found, got %v", err)
	}
	if missing.State() != DetailNotFound || missing.Message() != "Task not found" {
		t.Fatalf("unexpected state %s %q", missing.State(), missing.Message())
	}
}

func TestTaskDetail_LoadError(t *testing.T) {
	t.Parallel()

	srv := apitest.New(t)
	task := seedTask(srv)
	srv.FailNext(http.MethodGet, "/members", http.StatusInternalServerError, "db down")
	client := api.New(srv.URL, nil)

	td := NewTaskDetail(task.ID, client, client, nil)
	if err := td.Load(context.Background()); err == nil {
		t.Fatalf("expected error")
	}
	if td.State() != DetailError || td.Message() != "Failed to load task" {
		t.Fatalf("unexpected state %s %q", td.State(), td.Message())
	}
}

func TestTaskDetail_EditCancelSubmit(t *testing.T) {
	t.Parallel()

	srv := apitest.New(t)
	task := seedTask(srv)
	client := api.New(srv.URL, nil)
	td := NewTaskDetail(task.ID, client, client, nil)
	ctx := context.Background()
	_ = td.Load(ctx)

	if err := td.Submit(ctx, td.Form()); !errors.Is(err, ErrNotEditing) {
		t.Fatalf("expected submit outside edit mode to fail, got %v", err)
	}

	if !td.Edit() || td.Mode() != Editing {
		t.Fatalf("expected editing")
	}
	srv.ResetRequests()

	bad := td.Form()
	bad.Title = ""
	err := td.Submit(ctx, bad)
	var ve validate.Errors
	if !errors.As(err, &ve) || ve.Field("title") != "Title is required" {
		t.Fatalf("expected field error, got %v", err)
	}
	if len(srv.Requests()) != 0 {
		t.Fatalf("invalid submit must not hit the network")
	}
	if td.Mode() != Editing || td.Form().Title != "" {
		t.Fatalf("expected to stay editing with in-progress values")
	}

	td.Cancel()
	if td.Mode() != Viewing || td.Form().Title != "Write docs" || td.FieldErrors() != nil {
		t.Fatalf("expected form restored after cancel, got %#v", td.Form())
	}

	td.Edit()
	good := td.Form()
	good.Title = "Write better docs"
	good.Status = model.StatusInProgress
	if err := td.Submit(ctx, good); err != nil {
		t.Fatalf("submit: %v", err)
	}
	if td.Mode() != Viewing || td.Entity().Task.Title != "Write better docs" {
		t.Fatalf("expected reloaded task in viewing mode, got %#v", td.Entity().Task)
	}
	if srv.Count(http.MethodPatch, fmt.Sprintf("/tasks/%d", task.ID)) != 1 || srv.Count(http.MethodGet, fmt.Sprintf("/tasks/%d", task.ID)) != 1 {
		t.Fatalf("expected one update and one reload")
	}
}

func TestTaskDetail_SubmitServerFailureKeepsValues(t *testing.T) {
	t.Parallel()

	srv := apitest.New(t)
	task := seedTask(srv)
	client := api.New(srv.URL, nil)
	td := NewTaskDetail(task.ID, client, client, nil)
	ctx := context.Background()
	_ = td.Load(ctx)
	td.Edit()

	srv.FailNext(http.MethodPatch, fmt.Sprintf("/tasks/%d", task.ID), http.StatusBadRequest, "Due date in the past")
	f := td.Form()
	f.Title = "Changed"
	if err := td.Submit(ctx, f); err == nil {
		t.Fatalf("expected error")
	}
	if td.Mode() != Editing || td.Form().Title != "Changed" || td.Message() != "Due date in the past" {
		t.Fatalf("expected editing with kept values and message, got %v %q %q", td.Mode(), td.Form().Title, td.Message())
	}
	if td.Submitting() {
		t.Fatalf("expected submitting cleared")
	}
}

func TestTaskDetail_AssignmentFlow(t *testing.T) {
	t.Parallel()

	srv := apitest.New(t)
	m1 := srv.AddUser("M1", "m1@example.com", "secret1", model.RoleUser)
	m2 := srv.AddUser("M2", "m2@example.com", "secret1", model.RoleUser)
	m3 := srv.AddUser("M3", "m3@example.com", "secret1", model.RoleUser)
	task := seedTask(srv)
	srv.Assign(task.ID, m1.ID)
	srv.Assign(task.ID, m2.ID)

	client := api.New(srv.URL, nil)
	td := NewTaskDetail(task.ID, client, client, nil)
	ctx := context.Background()
	_ = td.Load(ctx)

	cands := td.AssignCandidates()
	if len(cands) != 1 || cands[0].ID != m3.ID {
		t.Fatalf("expected only M3 as candidate, got %#v", cands)
	}

	if err := td.Assign(ctx, m3.ID); err != nil {
		t.Fatalf("assign: %v", err)
	}
	got := map[int64]bool{}
	for _, m := range td.Entity().Assignments {
		got[m.ID] = true
	}
	if len(got) != 3 || !got[m1.ID] || !got[m2.ID] || !got[m3.ID] {
		t.Fatalf("expected all three assigned, got %#v", td.Entity().Assignments)
	}
	if len(td.AssignCandidates()) != 0 {
		t.Fatalf("expected no candidates left")
	}

	if err := td.Unassign(ctx, m2.ID); err != nil {
		t.Fatalf("unassign: %v", err)
	}
	if srv.Count(http.MethodDelete, fmt.Sprintf("/tasks/%d/unassign/%d", task.ID, m2.ID)) != 1 {
		t.Fatalf("expected unassign keyed by task and member")
	}
	if c := td.AssignCandidates(); len(c) != 1 || c[0].ID != m2.ID {
		t.Fatalf("expected M2 back as a candidate, got %#v", c)
	}

	if err := td.Assign(ctx, m1.ID); err == nil || td.Message() != "Member already assigned" {
		t.Fatalf("expected server failure surfaced, got %v %q", err, td.Message())
	}
}

func TestTaskDetail_AssignmentBlockedWhileEditing(t *testing.T) {
	t.Parallel()

	srv := apitest.New(t)
	m1 := srv.AddUser("M1", "m1@example.com", "secret1", model.RoleUser)
	task := seedTask(srv)
	srv.Assign(task.ID, m1.ID)

	client := api.New(srv.URL, nil)
	td := NewTaskDetail(task.ID, client, client, nil)
	ctx := context.Background()
	_ = td.Load(ctx)
	if !td.Edit() {
		t.Fatalf("expected edit mode")
	}
	draft := td.Form()
	draft.Title = ""
	if err := td.Submit(ctx, draft); err == nil {
		t.Fatalf("expected field errors for an empty title")
	}

	srv.ResetRequests()
	if err := td.Assign(ctx, m1.ID); !errors.Is(err, ErrEditing) {
		t.Fatalf("expected ErrEditing from assign, got %v", err)
	}
	if err := td.Unassign(ctx, m1.ID); !errors.Is(err, ErrEditing) {
		t.Fatalf("expected ErrEditing from unassign, got %v", err)
	}
	if n := len(srv.Requests()); n != 0 {
		t.Fatalf("expected no requests while editing, got %d", n)
	}

	if err := td.Load(ctx); err != nil {
		t.Fatalf("reload: %v", err)
	}
	if td.Mode() != Editing || td.Form().Title != "" {
		t.Fatalf("expected the open edit kept across a reload, got mode %v title %q", td.Mode(), td.Form().Title)
	}
	if td.FieldErrors().Field("title") == "" {
		t.Fatalf("expected field errors kept across a reload")
	}

	td.Cancel()
	if td.Form().Title != task.Title {
		t.Fatalf("expected cancel to restore the loaded title, got %q", td.Form().Title)
	}
}

func TestDetail_StaleLoadIgnored(t *testing.T) {
	t.Parallel()

	n := 0
	d := NewDetail(DetailSource[int, int]{
		Noun:     "thing",
		Load:     func(context.Context) (int, error) { n++; return n, nil },
		FormOf:   func(v int) int { return v },
		Validate: func(int) validate.Errors { return nil },
		Update:   func(context.Context, int) error { return nil },
	}, nil)

	ctx := context.Background()
	old := d.BeginLoad()
	latest := d.BeginLoad()
	resOld := d.FetchLoad(ctx, old)
	resLatest := d.FetchLoad(ctx, latest)

	if !d.ApplyLoad(resLatest) || d.ApplyLoad(resOld) {
		t.Fatalf("only the latest load may apply")
	}
	if d.Entity() != resLatest.Entity {
		t.Fatalf("expected latest entity, got %d", d.Entity())
	}
}

func TestMemberDetail_EditAndDelete(t *testing.T) {
	t.Parallel()

	srv := apitest.New(t)
	m := srv.AddUser("Ann", "ann@example.com", "secret1", model.RoleUser)
	client := api.New(srv.URL, nil)
	rec := &route.Recorder{}
	md := NewMemberDetail(m.ID, client, rec, nil)
	ctx := context.Background()

	if err := md.Load(ctx); err != nil {
		t.Fatalf("load: %v", err)
	}
	md.Edit()
	srv.ResetRequests()
	f := md.Form()
	f.Email = "not-an-email"
	if err := md.Submit(ctx, f); err == nil || len(srv.Requests()) != 0 {
		t.Fatalf("invalid email must not issue a request")
	}
	f.Email = "ann@corp.io"
	f.Role = model.RoleAdmin
	if err := md.Submit(ctx, f); err != nil {
		t.Fatalf("submit: %v", err)
	}
	if e := md.Entity(); e.Email != "ann@corp.io" || !e.IsAdmin() {
		t.Fatalf("expected reloaded member, got %#v", e)
	}

	md.RequestDelete()
	if !md.Confirming() {
		t.Fatalf("expected confirmation open")
	}
	md.CancelDelete()
	if md.Confirming() || srv.Count(http.MethodDelete, fmt.Sprintf("/members/%d", m.ID)) != 0 {
		t.Fatalf("cancel must not delete")
	}

	md.RequestDelete()
	srv.FailNext(http.MethodDelete, fmt.Sprintf("/members/%d", m.ID), http.StatusForbidden, "Cannot delete yourself")
	if err := md.ConfirmDelete(ctx); err == nil {
		t.Fatalf("expected failure")
	}
	if md.Confirming() || md.Message() != "Cannot delete yourself" || len(rec.Routes()) != 0 {
		t.Fatalf("expected confirmation dismissed with inline error, got %v %q", md.Confirming(), md.Message())
	}

	md.RequestDelete()
	if err := md.ConfirmDelete(ctx); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if rec.Last() != route.To(route.Members) {
		t.Fatalf("expected navigation to member list, got %v", rec.Routes())
	}
	if _, ok := srv.Member(m.ID); ok {
		t.Fatalf("expected member deleted")
	}
}

func TestMemberDetail_NotFound(t *testing.T) {
	t.Parallel()

	srv := apitest.New(t)
	md := NewMemberDetail(42, api.New(srv.URL, nil), nil, nil)
	_ = md.Load(context.Background())
	if md.State() != DetailNotFound || md.Message() != "Member not found" {
		t.Fatalf("unexpected state %s %q", md.State(), md.Message())
	}
	if md.Edit() {
		t.Fatalf("cannot edit a missing member")
	}
}

func TestDetailStateString(t *testing.T) {
	t.Parallel()

	for s, want := range map[DetailState]string{DetailLoading: "loading", DetailLoaded: "loaded", DetailNotFound: "not_found", DetailError: "error"} {
		if s.String() != want {
			t.Fatalf("got %q want %q", s.String(), want)
		}
	}
}

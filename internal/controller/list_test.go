package controller

import (
	"context"
	"errors"
	"sync"
	"testing"

	"tms-cli/internal/api"
	"tms-cli/internal/apitest"
	"tms-cli/internal/model"
)

type recordingFetch struct {
	mu      sync.Mutex
	queries []Query
	pages   int
	items   int
	err     error
}

func (r *recordingFetch) fetch(_ context.Context, q Query) (model.Page[int], error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.queries = append(r.queries, q)
	if r.err != nil {
		return model.Page[int]{}, r.err
	}
	items := make([]int, r.items)
	for i := range items {
		items[i] = (q.Page-1)*q.PerPage + i
	}
	return model.Page[int]{Items: items, Pagination: model.Pagination{CurrentPage: q.Page, TotalPages: r.pages, PerPage: q.PerPage}}, nil
}

func (r *recordingFetch) last() Query {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.queries[len(r.queries)-1]
}

func TestList_SearchResetsPageBeforeFetch(t *testing.T) {
	t.Parallel()

	f := &recordingFetch{pages: 5, items: 10}
	l := NewList("things", 10, f.fetch, nil)
	ctx := context.Background()

	if err := l.Load(ctx); err != nil {
		t.Fatalf("load: %v", err)
	}
	if err := l.Run(ctx, l.SetPage(3)); err != nil {
		t.Fatalf("page 3: %v", err)
	}
	if l.Query().Page != 3 || f.last().Page != 3 {
		t.Fatalf("expected page 3, got %d", l.Query().Page)
	}

	req := l.SetSearch("abc")
	if req.Query.Page != 1 || req.Query.Search != "abc" {
		t.Fatalf("expected page 1 in the issued request, got %#v", req.Query)
	}
	if err := l.Run(ctx, req); err != nil {
		t.Fatalf("search: %v", err)
	}
	if got := f.last(); got.Page != 1 || got.Search != "abc" {
		t.Fatalf("fetch saw %#v", got)
	}
}

func TestList_FiltersResetPage(t *testing.T) {
	t.Parallel()

	f := &recordingFetch{pages: 4, items: 1}
	l := NewList("things", 0, f.fetch, nil)
	ctx := context.Background()
	_ = l.Load(ctx)

	for _, change := range []func() Request{
		func() Request { return l.SetStatus(model.StatusCompleted) },
		func() Request { return l.SetPriority(model.PriorityHigh) },
		func() Request { return l.SetSort(model.SortDueDate) },
	} {
		_ = l.Run(ctx, l.SetPage(4))
		req := change()
		if req.Query.Page != 1 {
			t.Fatalf("expected page reset, got %d", req.Query.Page)
		}
		_ = l.Run(ctx, req)
	}
	q := f.last()
	if q.Status != model.StatusCompleted || q.Priority != model.PriorityHigh || q.Sort != model.SortDueDate || q.PerPage != DefaultPerPage {
		t.Fatalf("expected all filters combined, got %#v", q)
	}
}

func TestList_RenderStates(t *testing.T) {
	t.Parallel()

	f := &recordingFetch{pages: 1, items: 0}
	l := NewList("things", 10, f.fetch, nil)
	if l.State() != RenderLoading {
		t.Fatalf("expected loading before the first fetch")
	}

	req := l.Refresh()
	if l.State() != RenderLoading || !l.Loading() {
		t.Fatalf("expected loading while in flight")
	}
	_ = l.Run(context.Background(), req)
	if l.State() != RenderEmpty {
		t.Fatalf("expected empty for zero items and one page, got %s", l.State())
	}
	if l.ShowPagination() {
		t.Fatalf("pagination hidden for a single page")
	}

	f.items, f.pages = 3, 2
	_ = l.Load(context.Background())
	if l.State() != RenderPopulated || len(l.Items()) != 3 || !l.ShowPagination() {
		t.Fatalf("expected populated with pagination, got %s %d", l.State(), len(l.Items()))
	}

	f.items, f.pages = 0, 2
	_ = l.Load(context.Background())
	if l.State() != RenderEmpty {
		t.Fatalf("expected empty for zero items on a multi-page result, got %s", l.State())
	}
	if !l.ShowPagination() {
		t.Fatalf("pagination should stay visible so earlier pages are reachable")
	}
}

func TestList_StartingFetchDiscardsResults(t *testing.T) {
	t.Parallel()

	f := &recordingFetch{pages: 2, items: 4}
	l := NewList("things", 10, f.fetch, nil)
	_ = l.Load(context.Background())
	if len(l.Items()) != 4 {
		t.Fatalf("expected items")
	}
	l.SetSearch("x")
	if len(l.Items()) != 0 {
		t.Fatalf("expected previous results discarded")
	}
}

func TestList_StaleResultsIgnored(t *testing.T) {
	t.Parallel()

	f := &recordingFetch{pages: 3, items: 2}
	l := NewList("things", 10, f.fetch, nil)
	ctx := context.Background()

	first := l.SetSearch("a")
	second := l.SetSearch("ab")
	resFirst := l.Fetch(ctx, first)
	f.items = 5
	resSecond := l.Fetch(ctx, second)

	if l.Apply(resFirst) {
		t.Fatalf("older result must not apply")
	}
	if !l.Loading() {
		t.Fatalf("still loading until the latest result arrives")
	}
	if !l.Apply(resSecond) {
		t.Fatalf("latest result must apply")
	}
	if l.Apply(resFirst) {
		t.Fatalf("older result must not apply after the latest")
	}
	if len(l.Items()) != 5 || l.Query().Search != "ab" {
		t.Fatalf("expected latest state, got %d items search %q", len(l.Items()), l.Query().Search)
	}
	if err := l.Run(ctx, first); err != nil {
		t.Fatalf("stale run should be a silent no-op, got %v", err)
	}
}

func TestList_FailureEmptiesResults(t *testing.T) {
	t.Parallel()

	f := &recordingFetch{pages: 3, items: 2}
	l := NewList("things", 10, f.fetch, nil)
	_ = l.Load(context.Background())

	f.err = errors.New("boom")
	if err := l.Load(context.Background()); err == nil {
		t.Fatalf("expected error")
	}
	if l.Err() == nil || len(l.Items()) != 0 || l.Pagination().TotalPages != 0 {
		t.Fatalf("expected empty results with zero pages after failure")
	}
	if l.State() != RenderEmpty {
		t.Fatalf("expected empty state, got %s", l.State())
	}
	if n := len(f.queries); n != 2 {
		t.Fatalf("expected no retry, got %d fetches", n)
	}
}

func TestList_PageNavigationClamps(t *testing.T) {
	t.Parallel()

	f := &recordingFetch{pages: 2, items: 1}
	l := NewList("things", 10, f.fetch, nil)
	ctx := context.Background()
	_ = l.Load(ctx)

	if _, ok := l.PrevPage(); ok {
		t.Fatalf("no previous page from page 1")
	}
	req, ok := l.NextPage()
	if !ok || req.Query.Page != 2 {
		t.Fatalf("expected page 2, got %#v", req)
	}
	if _, ok := l.NextPage(); ok {
		t.Fatalf("clamped at the last page even while loading")
	}
	_ = l.Run(ctx, req)
	if _, ok := l.NextPage(); ok {
		t.Fatalf("no page after the last")
	}
	if req := l.SetPage(99); req.Query.Page != 2 {
		t.Fatalf("expected clamp to 2, got %d", req.Query.Page)
	}
	if req := l.SetPage(-1); req.Query.Page != 1 {
		t.Fatalf("expected clamp to 1, got %d", req.Query.Page)
	}
}

func TestTaskList_AgainstAPI(t *testing.T) {
	t.Parallel()

	srv := apitest.New(t)
	for _, title := range []string{"alpha", "beta", "alphabet"} {
		srv.AddTask(model.Task{Title: title, Status: model.StatusPending, Priority: model.PriorityLow})
	}
	l := NewTaskList(api.New(srv.URL, nil), 2, nil)
	ctx := context.Background()

	if err := l.Run(ctx, l.SetSearch("alpha")); err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(l.Items()) != 2 || l.Pagination().TotalCount != 2 {
		t.Fatalf("unexpected result %#v", l.Items())
	}
	if err := l.Run(ctx, l.SetStatus(model.StatusCompleted)); err != nil {
		t.Fatalf("status: %v", err)
	}
	if l.State() != RenderEmpty {
		t.Fatalf("expected no completed tasks")
	}
}

func TestMemberList_AgainstAPI(t *testing.T) {
	t.Parallel()

	srv := apitest.New(t)
	srv.AddUser("Ann", "ann@example.com", "secret1", model.RoleAdmin)
	srv.AddUser("Bob", "bob@example.com", "secret1", model.RoleUser)
	l := NewMemberList(api.New(srv.URL, nil), 10, nil)

	if err := l.Run(context.Background(), l.SetSearch("bob")); err != nil {
		t.Fatalf("search: %v", err)
	}
	if items := l.Items(); len(items) != 1 || items[0].Name != "Bob" {
		t.Fatalf("unexpected members %#v", items)
	}
}

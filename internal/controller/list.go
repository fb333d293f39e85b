package controller

import (
	"context"
	"log/slog"
	"strings"
	"sync"

	"tms-cli/internal/logging"
	"tms-cli/internal/model"
)

const DefaultPerPage = 10

type RenderState int

const (
	RenderLoading RenderState = iota
	RenderEmpty
	RenderPopulated
)

func (r RenderState) String() string {
	switch r {
	case RenderLoading:
		return "loading"
	case RenderEmpty:
		return "empty"
	default:
		return "populated"
	}
}

// Query is the full state combination a list fetch is built from.
type Query struct {
	Page     int
	PerPage  int
	Search   string
	Status   model.TaskStatus
	Priority model.TaskPriority
	Sort     string
}

// Request is an issued fetch. Only the latest Request may be applied.
type Request struct {
	Seq   uint64
	Query Query
}

type Result[T any] struct {
	Seq  uint64
	Page model.Page[T]
	Err  error
}

type FetchFunc[T any] func(ctx context.Context, q Query) (model.Page[T], error)

// List is the paginated, filterable list behind the task and member screens.
type List[T any] struct {
	name   string
	fetch  FetchFunc[T]
	logger *slog.Logger

	mu      sync.Mutex
	query   Query
	seq     uint64
	loading bool
	page    model.Page[T]
	err     error

	// knownPages survives a refetch so page moves stay clamped while loading.
	knownPages int
}

func NewList[T any](name string, perPage int, fetch FetchFunc[T], logger *slog.Logger) *List[T] {
	if perPage <= 0 {
		perPage = DefaultPerPage
	}
	return &List[T]{
		name:    name,
		fetch:   fetch,
		logger:  logging.OrDiscard(logger),
		query:   Query{Page: 1, PerPage: perPage},
		loading: true,
	}
}

func NewTaskList(client TaskAPI, perPage int, logger *slog.Logger) *List[model.Task] {
	return NewList("tasks", perPage, func(ctx context.Context, q Query) (model.Page[model.Task], error) {
		return client.ListTasks(ctx, model.TaskQuery{
			Page: q.Page, PerPage: q.PerPage, Search: q.Search,
			Status: q.Status, Priority: q.Priority, Sort: q.Sort,
		})
	}, logger)
}

func NewMemberList(client MemberAPI, perPage int, logger *slog.Logger) *List[model.Member] {
	return NewList("members", perPage, func(ctx context.Context, q Query) (model.Page[model.Member], error) {
		return client.ListMembers(ctx, model.MemberQuery{Page: q.Page, PerPage: q.PerPage, Search: q.Search})
	}, logger)
}

// beginLocked discards the current results and issues a new sequence number.
func (l *List[T]) beginLocked() Request {
	l.seq++
	l.loading = true
	l.page = model.Page[T]{}
	l.err = nil
	return Request{Seq: l.seq, Query: l.query}
}

// Refresh issues a fetch of the current state unchanged.
func (l *List[T]) Refresh() Request {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.beginLocked()
}

// SetPage moves to page p, clamped to the known page range.
func (l *List[T]) SetPage(p int) Request {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.query.Page = l.clampLocked(p)
	return l.beginLocked()
}

// NextPage advances one page; ok is false when already on the last page.
func (l *List[T]) NextPage() (req Request, ok bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	next := l.clampLocked(l.query.Page + 1)
	if next == l.query.Page {
		return Request{}, false
	}
	l.query.Page = next
	return l.beginLocked(), true
}

// PrevPage goes back one page; ok is false on the first page.
func (l *List[T]) PrevPage() (req Request, ok bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	prev := l.clampLocked(l.query.Page - 1)
	if prev == l.query.Page {
		return Request{}, false
	}
	l.query.Page = prev
	return l.beginLocked(), true
}

func (l *List[T]) clampLocked(p int) int {
	if total := l.knownPages; total > 0 && p > total {
		p = total
	}
	if p < 1 {
		p = 1
	}
	return p
}

// SetSearch changes the search text and goes back to page 1.
func (l *List[T]) SetSearch(s string) Request {
	return l.filter(func(q *Query) { q.Search = strings.TrimSpace(s) })
}

func (l *List[T]) SetStatus(s model.TaskStatus) Request {
	return l.filter(func(q *Query) { q.Status = s })
}

func (l *List[T]) SetPriority(p model.TaskPriority) Request {
	return l.filter(func(q *Query) { q.Priority = p })
}

func (l *List[T]) SetSort(s string) Request {
	return l.filter(func(q *Query) { q.Sort = s })
}

func (l *List[T]) filter(change func(*Query)) Request {
	l.mu.Lock()
	defer l.mu.Unlock()
	change(&l.query)
	l.query.Page = 1
	l.knownPages = 0
	return l.beginLocked()
}

// Fetch performs req without touching list state.
func (l *List[T]) Fetch(ctx context.Context, req Request) Result[T] {
	page, err := l.fetch(ctx, req.Query)
	return Result[T]{Seq: req.Seq, Page: page, Err: err}
}

// Apply stores res if it belongs to the latest request and reports whether
// it did.
func (l *List[T]) Apply(res Result[T]) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	if res.Seq != l.seq {
		l.logger.Debug("dropping superseded list result",
			slog.String("list", l.name),
			slog.Uint64("seq", res.Seq),
			slog.Uint64("latest", l.seq),
		)
		return false
	}
	l.loading = false
	if res.Err != nil {
		l.logger.Error("failed to load "+l.name, slog.String("error", res.Err.Error()))
		l.page = model.Page[T]{Items: []T{}}
		l.err = res.Err
		l.knownPages = 0
		return true
	}
	if res.Page.Items == nil {
		res.Page.Items = []T{}
	}
	l.page = res.Page
	l.err = nil
	l.knownPages = res.Page.Pagination.TotalPages
	return true
}

// Run fetches req and applies it, returning the fetch error if the result
// was applied.
func (l *List[T]) Run(ctx context.Context, req Request) error {
	res := l.Fetch(ctx, req)
	if !l.Apply(res) {
		return nil
	}
	return res.Err
}

// Load fetches the current state synchronously.
func (l *List[T]) Load(ctx context.Context) error {
	return l.Run(ctx, l.Refresh())
}

func (l *List[T]) Query() Query {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.query
}

func (l *List[T]) Items() []T {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]T(nil), l.page.Items...)
}

func (l *List[T]) Pagination() model.Pagination {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.page.Pagination
}

func (l *List[T]) Loading() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.loading
}

func (l *List[T]) Err() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.err
}

func (l *List[T]) State() RenderState {
	l.mu.Lock()
	defer l.mu.Unlock()
	switch {
	case l.loading:
		return RenderLoading
	case l.page.Empty():
		return RenderEmpty
	default:
		return RenderPopulated
	}
}

// ShowPagination reports whether page controls should be rendered.
func (l *List[T]) ShowPagination() bool {
	return l.Pagination().TotalPages > 1
}

package controller

import (
	"context"
	"log/slog"
	"sync"

	"tms-cli/internal/logging"
	"tms-cli/internal/model"
)

const DashboardRecent = 5

// Stats counts tasks by status over the recent page.
type Stats struct {
	Total      int `json:"total"`
	Pending    int `json:"pending"`
	InProgress int `json:"in_progress"`
	Completed  int `json:"completed"`
}

func CountStats(tasks []model.Task) Stats {
	s := Stats{Total: len(tasks)}
	for _, t := range tasks {
		switch t.Status {
		case model.StatusPending:
			s.Pending++
		case model.StatusInProgress:
			s.InProgress++
		case model.StatusCompleted:
			s.Completed++
		}
	}
	return s
}

type Dashboard struct {
	client TaskAPI
	logger *slog.Logger

	mu      sync.Mutex
	seq     uint64
	loading bool
	recent  []model.Task
	stats   Stats
	err     error
}

func NewDashboard(client TaskAPI, logger *slog.Logger) *Dashboard {
	return &Dashboard{client: client, logger: logging.OrDiscard(logger), loading: true}
}

type DashboardResult struct {
	Seq   uint64
	Tasks []model.Task
	Err   error
}

func (d *Dashboard) Begin() uint64 {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.seq++
	d.loading = true
	return d.seq
}

func (d *Dashboard) Fetch(ctx context.Context, seq uint64) DashboardResult {
	p, err := d.client.ListTasks(ctx, model.TaskQuery{Page: 1, PerPage: DashboardRecent})
	return DashboardResult{Seq: seq, Tasks: p.Items, Err: err}
}

func (d *Dashboard) Apply(res DashboardResult) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	if res.Seq != d.seq {
		return false
	}
	d.loading = false
	d.err = res.Err
	if res.Err != nil {
		d.logger.Error("failed to load dashboard data", slog.String("error", res.Err.Error()))
		d.recent = nil
		d.stats = Stats{}
		return true
	}
	tasks := res.Tasks
	if len(tasks) > DashboardRecent {
		tasks = tasks[:DashboardRecent]
	}
	d.recent = append([]model.Task{}, tasks...)
	d.stats = CountStats(res.Tasks)
	return true
}

func (d *Dashboard) Load(ctx context.Context) error {
	res := d.Fetch(ctx, d.Begin())
	if !d.Apply(res) {
		return nil
	}
	return res.Err
}

func (d *Dashboard) Loading() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.loading
}

func (d *Dashboard) Recent() []model.Task {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]model.Task(nil), d.recent...)
}

func (d *Dashboard) Stats() Stats {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.stats
}

func (d *Dashboard) Err() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.err
}

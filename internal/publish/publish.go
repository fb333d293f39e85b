// Package publish exports tasks as Markdown files: one page per task plus an
// index for a filtered task list.
package publish

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"tms-cli/internal/model"

	"golang.org/x/sync/errgroup"
)

// Source is the subset of the API client needed to publish a task list.
type Source interface {
	ListTasks(ctx context.Context, q model.TaskQuery) (model.Page[model.Task], error)
	TaskAssignments(ctx context.Context, taskID int64) ([]model.Member, error)
}

type WriteOptions struct {
	Overwrite bool
}

type WriteResult struct {
	Written []string `json:"written"`
}

// fetchLimit bounds concurrent assignment lookups while publishing a list.
const fetchLimit = 4

// maxPages stops a runaway walk if the server keeps reporting more pages.
const maxPages = 1000

func WriteTask(toDir string, t model.Task, assigned []model.Member, opt WriteOptions) (WriteResult, error) {
	toDir, err := cleanDir(toDir)
	if err != nil {
		return WriteResult{}, err
	}
	outDir := filepath.Join(toDir, "tasks")
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return WriteResult{}, err
	}
	p := taskPath(toDir, t.ID)
	if err := writeFile(p, []byte(RenderTaskMarkdown(t, assigned)), opt.Overwrite); err != nil {
		return WriteResult{}, err
	}
	return WriteResult{Written: []string{p}}, nil
}

// WriteTasks walks every page matching q (starting at page 1) and writes
// index.md plus one page per task.
func WriteTasks(ctx context.Context, src Source, q model.TaskQuery, toDir string, opt WriteOptions) (WriteResult, error) {
	if src == nil {
		return WriteResult{}, errors.New("missing task source")
	}
	toDir, err := cleanDir(toDir)
	if err != nil {
		return WriteResult{}, err
	}

	tasks, err := allTasks(ctx, src, q)
	if err != nil {
		return WriteResult{}, err
	}

	assigned := make([][]model.Member, len(tasks))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(fetchLimit)
	for i := range tasks {
		g.Go(func() error {
			a, err := src.TaskAssignments(gctx, tasks[i].ID)
			if err != nil {
				return fmt.Errorf("assignments for task %d: %w", tasks[i].ID, err)
			}
			assigned[i] = a
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return WriteResult{}, err
	}

	if err := os.MkdirAll(filepath.Join(toDir, "tasks"), 0o755); err != nil {
		return WriteResult{}, err
	}
	written := make([]string, 0, len(tasks)+1)

	indexPath := filepath.Join(toDir, "index.md")
	if err := writeFile(indexPath, []byte(RenderIndexMarkdown(q, tasks)), opt.Overwrite); err != nil {
		return WriteResult{}, err
	}
	written = append(written, indexPath)

	for i, t := range tasks {
		p := taskPath(toDir, t.ID)
		if err := writeFile(p, []byte(RenderTaskMarkdown(t, assigned[i])), opt.Overwrite); err != nil {
			return WriteResult{}, err
		}
		written = append(written, p)
	}
	return WriteResult{Written: written}, nil
}

func allTasks(ctx context.Context, src Source, q model.TaskQuery) ([]model.Task, error) {
	var out []model.Task
	for page := 1; page <= maxPages; page++ {
		q.Page = page
		res, err := src.ListTasks(ctx, q)
		if err != nil {
			return nil, err
		}
		out = append(out, res.Items...)
		if len(res.Items) == 0 || page >= res.Pagination.TotalPages {
			break
		}
	}
	return out, nil
}

func cleanDir(dir string) (string, error) {
	dir = strings.TrimSpace(dir)
	if dir == "" {
		return "", errors.New("missing --to")
	}
	return filepath.Clean(dir), nil
}

func taskPath(dir string, id int64) string {
	return filepath.Join(dir, "tasks", fmt.Sprintf("%d.md", id))
}

func writeFile(path string, b []byte, overwrite bool) error {
	if !overwrite {
		if _, err := os.Stat(path); err == nil {
			return errors.New("file exists (use --overwrite): " + path)
		}
	}
	return os.WriteFile(path, b, 0o644)
}

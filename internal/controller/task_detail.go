package controller

import (
	"context"
	"log/slog"

	"tms-cli/internal/model"
	"tms-cli/internal/validate"

	"golang.org/x/sync/errgroup"
)

// TaskView is everything the task detail screen shows.
type TaskView struct {
	Task        model.Task
	Assignments []model.Member
	Roster      []model.Member
}

// TaskDetail adds the assignment flow to a task's Detail.
type TaskDetail struct {
	*Detail[TaskView, validate.TaskForm]

	id      int64
	tasks   TaskAPI
	members MemberAPI
}

func NewTaskDetail(id int64, tasks TaskAPI, members MemberAPI, logger *slog.Logger) *TaskDetail {
	td := &TaskDetail{id: id, tasks: tasks, members: members}
	td.Detail = NewDetail(DetailSource[TaskView, validate.TaskForm]{
		Noun:     "task",
		Load:     td.load,
		FormOf:   func(v TaskView) validate.TaskForm { return validate.TaskFormFrom(v.Task) },
		Validate: validate.Task,
		Update: func(ctx context.Context, f validate.TaskForm) error {
			_, err := tasks.UpdateTask(ctx, id, f.UpdateRequest())
			return err
		},
	}, logger)
	return td
}

func (td *TaskDetail) ID() int64 { return td.id }

// load fetches the task, its assignments and the member roster together.
func (td *TaskDetail) load(ctx context.Context) (TaskView, error) {
	var v TaskView
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		t, err := td.tasks.GetTask(gctx, td.id)
		v.Task = t
		return err
	})
	g.Go(func() error {
		a, err := td.tasks.TaskAssignments(gctx, td.id)
		v.Assignments = a
		return err
	})
	g.Go(func() error {
		p, err := td.members.ListMembers(gctx, model.MemberQuery{Page: 1, PerPage: RosterPerPage})
		v.Roster = p.Items
		return err
	})
	if err := g.Wait(); err != nil {
		return TaskView{}, err
	}
	return v, nil
}

// AssignCandidates is the roster minus members already assigned.
func (td *TaskDetail) AssignCandidates() []model.Member {
	v := td.Entity()
	assigned := make(map[int64]bool, len(v.Assignments))
	for _, m := range v.Assignments {
		assigned[m.ID] = true
	}
	out := make([]model.Member, 0, len(v.Roster))
	for _, m := range v.Roster {
		if !assigned[m.ID] {
			out = append(out, m)
		}
	}
	return out
}

// Assign adds memberID to the task and reloads.
func (td *TaskDetail) Assign(ctx context.Context, memberID int64) error {
	if memberID == 0 {
		return nil
	}
	if td.Mode() == Editing {
		return ErrEditing
	}
	if err := td.tasks.AssignTask(ctx, td.id, memberID); err != nil {
		td.SetMessage(failureMessage(err, "Failed to assign member"))
		return err
	}
	return td.Load(ctx)
}

// Unassign removes memberID from the task and reloads.
func (td *TaskDetail) Unassign(ctx context.Context, memberID int64) error {
	if td.Mode() == Editing {
		return ErrEditing
	}
	if err := td.tasks.UnassignTask(ctx, td.id, memberID); err != nil {
		td.SetMessage(failureMessage(err, "Failed to unassign member"))
		return err
	}
	return td.Load(ctx)
}

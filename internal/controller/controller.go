// Package controller holds the view state behind each screen: paginated
// lists, entity detail with edit and delete flows, create forms and the
// dashboard summary.
//
// Controllers are safe for concurrent use. Every fetch is tagged with a
// sequence number and only the most recently issued one may update state,
// so a slow response can never overwrite a newer one.
package controller

import (
	"context"
	"errors"

	"tms-cli/internal/model"
)

// ErrBusy rejects a submit while the previous one is still in flight.
var ErrBusy = errors.New("a request is already in progress")

var ErrNotEditing = errors.New("not in edit mode")

// ErrEditing rejects an assignment change while the task form is open.
var ErrEditing = errors.New("finish or cancel the edit first")

type TaskAPI interface {
	ListTasks(ctx context.Context, q model.TaskQuery) (model.Page[model.Task], error)
	GetTask(ctx context.Context, id int64) (model.Task, error)
	CreateTask(ctx context.Context, req model.CreateTaskRequest) (model.Task, error)
	UpdateTask(ctx context.Context, id int64, req model.UpdateTaskRequest) (model.Task, error)
	AssignTask(ctx context.Context, taskID, memberID int64) error
	UnassignTask(ctx context.Context, taskID, memberID int64) error
	TaskAssignments(ctx context.Context, taskID int64) ([]model.Member, error)
}

type MemberAPI interface {
	ListMembers(ctx context.Context, q model.MemberQuery) (model.Page[model.Member], error)
	GetMember(ctx context.Context, id int64) (model.Member, error)
	CreateMember(ctx context.Context, req model.CreateMemberRequest) (model.Member, error)
	UpdateMember(ctx context.Context, id int64, req model.UpdateMemberRequest) (model.Member, error)
	DeleteMember(ctx context.Context, id int64) error
}

// RosterPerPage is how many members the assign picker offers.
const RosterPerPage = 100

package api

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"tms-cli/internal/model"
)

const (
	defaultPage    = 1
	defaultPerPage = 10
)

func pageParams(page, perPage int) url.Values {
	if page < 1 {
		page = defaultPage
	}
	if perPage < 1 {
		perPage = defaultPerPage
	}
	q := url.Values{}
	q.Set("page", strconv.Itoa(page))
	q.Set("per_page", strconv.Itoa(perPage))
	return q
}

func (c *Client) Login(ctx context.Context, req model.LoginRequest) (model.AuthResponse, error) {
	var out model.AuthResponse
	err := c.do(ctx, http.MethodPost, "/auth/login", nil, req, &out)
	return out, err
}

func (c *Client) Register(ctx context.Context, req model.RegisterRequest) (model.AuthResponse, error) {
	var out model.AuthResponse
	err := c.do(ctx, http.MethodPost, "/auth/register", nil, req, &out)
	return out, err
}

func (c *Client) ListMembers(ctx context.Context, q model.MemberQuery) (model.Page[model.Member], error) {
	params := pageParams(q.Page, q.PerPage)
	if s := strings.TrimSpace(q.Search); s != "" {
		params.Set("search", s)
	}
	var out model.MemberList
	if err := c.do(ctx, http.MethodGet, "/members", params, nil, &out); err != nil {
		return model.Page[model.Member]{}, err
	}
	if out.Members == nil {
		out.Members = []model.Member{}
	}
	return model.Page[model.Member]{Items: out.Members, Pagination: out.Pagination}, nil
}

func (c *Client) GetMember(ctx context.Context, id int64) (model.Member, error) {
	var out model.Member
	err := c.do(ctx, http.MethodGet, fmt.Sprintf("/members/%d", id), nil, nil, &out)
	return out, err
}

func (c *Client) CreateMember(ctx context.Context, req model.CreateMemberRequest) (model.Member, error) {
	var out model.Member
	err := c.do(ctx, http.MethodPost, "/members", nil, req, &out)
	return out, err
}

func (c *Client) UpdateMember(ctx context.Context, id int64, req model.UpdateMemberRequest) (model.Member, error) {
	var out model.Member
	err := c.do(ctx, http.MethodPatch, fmt.Sprintf("/members/%d", id), nil, req, &out)
	return out, err
}

func (c *Client) DeleteMember(ctx context.Context, id int64) error {
	return c.do(ctx, http.MethodDelete, fmt.Sprintf("/members/%d", id), nil, nil, nil)
}

func (c *Client) ListTasks(ctx context.Context, q model.TaskQuery) (model.Page[model.Task], error) {
	params := pageParams(q.Page, q.PerPage)
	if s := strings.TrimSpace(q.Search); s != "" {
		params.Set("search", s)
	}
	if q.Status != "" {
		params.Set("status", string(q.Status))
	}
	if q.Priority != "" {
		params.Set("priority", string(q.Priority))
	}
	if s := strings.TrimSpace(q.Sort); s != "" {
		params.Set("sort", s)
	}
	var out model.TaskList
	if err := c.do(ctx, http.MethodGet, "/tasks", params, nil, &out); err != nil {
		return model.Page[model.Task]{}, err
	}
	if out.Tasks == nil {
		out.Tasks = []model.Task{}
	}
	return model.Page[model.Task]{Items: out.Tasks, Pagination: out.Pagination}, nil
}

func (c *Client) GetTask(ctx context.Context, id int64) (model.Task, error) {
	var out model.Task
	err := c.do(ctx, http.MethodGet, fmt.Sprintf("/tasks/%d", id), nil, nil, &out)
	return out, err
}

func (c *Client) CreateTask(ctx context.Context, req model.CreateTaskRequest) (model.Task, error) {
	var out model.Task
	err := c.do(ctx, http.MethodPost, "/tasks", nil, req, &out)
	return out, err
}

func (c *Client) UpdateTask(ctx context.Context, id int64, req model.UpdateTaskRequest) (model.Task, error) {
	var out model.Task
	err := c.do(ctx, http.MethodPatch, fmt.Sprintf("/tasks/%d", id), nil, req, &out)
	return out, err
}

func (c *Client) AssignTask(ctx context.Context, taskID, memberID int64) error {
	return c.do(ctx, http.MethodPost, fmt.Sprintf("/tasks/%d/assign", taskID), nil, model.AssignRequest{MemberID: memberID}, nil)
}

func (c *Client) UnassignTask(ctx context.Context, taskID, memberID int64) error {
	return c.do(ctx, http.MethodDelete, fmt.Sprintf("/tasks/%d/unassign/%d", taskID, memberID), nil, nil, nil)
}

func (c *Client) TaskAssignments(ctx context.Context, taskID int64) ([]model.Member, error) {
	var out []model.Member
	if err := c.do(ctx, http.MethodGet, fmt.Sprintf("/tasks/%d/assignments", taskID), nil, nil, &out); err != nil {
		return nil, err
	}
	if out == nil {
		out = []model.Member{}
	}
	return out, nil
}

package model

import (
	"fmt"
	"time"
)

type Role string

const (
	RoleAdmin Role = "admin"
	RoleUser  Role = "user"
)

type TaskStatus string

const (
	StatusPending    TaskStatus = "pending"
	StatusInProgress TaskStatus = "in_progress"
	StatusCompleted  TaskStatus = "completed"
)

type TaskPriority string

const (
	PriorityLow    TaskPriority = "low"
	PriorityMedium TaskPriority = "medium"
	PriorityHigh   TaskPriority = "high"
)

type User struct {
	ID        int64     `json:"id"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	Role      Role      `json:"role"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (u User) IsAdmin() bool { return u.Role == RoleAdmin }

// Member is a User seen through the team-management screens.
type Member = User

type Task struct {
	ID          int64        `json:"id"`
	Title       string       `json:"title"`
	Description string       `json:"description"`
	Status      TaskStatus   `json:"status"`
	Priority    TaskPriority `json:"priority"`

	// DueDate is kept as the server sends it (YYYY-MM-DD or RFC 3339).
	DueDate   string    `json:"due_date"`
	CreatedBy int64     `json:"created_by"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// AssignedTo is only populated by some server responses; assignments are
	// loaded separately via /tasks/:id/assignments.
	AssignedTo []User `json:"assigned_to,omitempty"`
}

type Pagination struct {
	CurrentPage int `json:"current_page"`
	TotalPages  int `json:"total_pages"`
	TotalCount  int `json:"total_count"`
	PerPage     int `json:"per_page"`
}

func (p Pagination) String() string {
	if p.TotalPages == 0 {
		return fmt.Sprintf("%d total", p.TotalCount)
	}
	return fmt.Sprintf("page %d of %d (%d total)", p.CurrentPage, p.TotalPages, p.TotalCount)
}

// Page is a decoded paginated list response.
type Page[T any] struct {
	Items      []T
	Pagination Pagination
}

// Empty reports the "no results" state. A page past the last one after
// deletions still reports more pages, so only the items count.
func (p Page[T]) Empty() bool {
	return len(p.Items) == 0
}

type TaskList struct {
	Tasks      []Task     `json:"tasks"`
	Pagination Pagination `json:"pagination"`
}

type MemberList struct {
	Members    []Member   `json:"members"`
	Pagination Pagination `json:"pagination"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type RegisterRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	RoleName Role   `json:"role_name"`
}

type AuthResponse struct {
	Token   string `json:"token"`
	User    User   `json:"user"`
	Message string `json:"message,omitempty"`
}

type CreateMemberRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	RoleName Role   `json:"role_name"`
}

// UpdateMemberRequest is a partial update; nil fields are not sent.
type UpdateMemberRequest struct {
	Name     *string `json:"name,omitempty"`
	Email    *string `json:"email,omitempty"`
	Password *string `json:"password,omitempty"`
	RoleName *Role   `json:"role_name,omitempty"`
}

type CreateTaskRequest struct {
	Title       string       `json:"title"`
	Description string       `json:"description"`
	Status      TaskStatus   `json:"status"`
	Priority    TaskPriority `json:"priority"`
	DueDate     string       `json:"due_date"`
}

// UpdateTaskRequest is a partial update; nil fields are not sent.
type UpdateTaskRequest struct {
	Title       *string       `json:"title,omitempty"`
	Description *string       `json:"description,omitempty"`
	Status      *TaskStatus   `json:"status,omitempty"`
	Priority    *TaskPriority `json:"priority,omitempty"`
	DueDate     *string       `json:"due_date,omitempty"`
}

type AssignRequest struct {
	MemberID int64 `json:"member_id"`
}

type TaskQuery struct {
	Page     int
	PerPage  int
	Search   string
	Status   TaskStatus
	Priority TaskPriority
	Sort     string
}

type MemberQuery struct {
	Page    int
	PerPage int
	Search  string
}

// Sort keys accepted by GET /tasks.
const (
	SortCreatedAt = "created_at"
	SortDueDate   = "due_date"
	SortPriority  = "priority"
)

var (
	TaskStatuses   = []TaskStatus{StatusPending, StatusInProgress, StatusCompleted}
	TaskPriorities = []TaskPriority{PriorityLow, PriorityMedium, PriorityHigh}
	Roles          = []Role{RoleAdmin, RoleUser}
	SortKeys       = []string{SortCreatedAt, SortDueDate, SortPriority}
)

func Ptr[T any](v T) *T { return &v }

// Package validate checks form input before anything is sent to the server.
//
// Every check returns Errors keyed by the wire field name; the first failing
// rule for a field wins.
package validate

import (
	"fmt"
	"regexp"
	"sort"
	"strings"
	"time"
	"unicode/utf8"

	"tms-cli/internal/model"
	"tms-cli/internal/statusutil"
)

const MinPasswordLength = 6

const dueDateLayout = "2006-01-02"

var emailRegexp = regexp.MustCompile(`(?i)^[A-Z0-9._%+-]+@[A-Z0-9.-]+\.[A-Z]{2,}$`)

// Errors maps a field name to its message.
type Errors map[string]string

func (e Errors) Error() string {
	keys := make([]string, 0, len(e))
	for k := range e {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s: %s", k, e[k]))
	}
	return "invalid input: " + strings.Join(parts, "; ")
}

// Err returns nil when there are no field errors.
func (e Errors) Err() error {
	if len(e) == 0 {
		return nil
	}
	return e
}

func (e Errors) Field(name string) string { return e[name] }

// Fields returns field names in a stable order.
func (e Errors) Fields() []string {
	keys := make([]string, 0, len(e))
	for k := range e {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func (e Errors) check(ok bool, key, msg string) {
	if ok {
		return
	}
	if _, exists := e[key]; !exists {
		e[key] = msg
	}
}

func blank(s string) bool { return strings.TrimSpace(s) == "" }

func (e Errors) required(value, key, msg string) {
	e.check(!blank(value), key, msg)
}

func (e Errors) email(value string) {
	e.required(value, "email", "Email is required")
	e.check(emailRegexp.MatchString(strings.TrimSpace(value)), "email", "Invalid email address")
}

func (e Errors) password(value string) {
	e.check(value != "", "password", "Password is required")
	e.check(utf8.RuneCountInString(value) >= MinPasswordLength, "password", fmt.Sprintf("Password must be at least %d characters", MinPasswordLength))
}

func (e Errors) role(value model.Role) {
	e.required(string(value), "role_name", "Role is required")
	e.check(statusutil.ValidRole(value), "role_name", "Invalid role")
}

func ValidEmail(s string) bool { return emailRegexp.MatchString(strings.TrimSpace(s)) }

func Login(in model.LoginRequest) Errors {
	e := Errors{}
	e.email(in.Email)
	e.password(in.Password)
	return e
}

func Register(in model.RegisterRequest) Errors {
	e := Errors{}
	e.required(in.Name, "name", "Name is required")
	e.email(in.Email)
	e.password(in.Password)
	e.role(in.RoleName)
	return e
}

func MemberCreate(in model.CreateMemberRequest) Errors {
	return Register(model.RegisterRequest(in))
}

// MemberForm is the editable part of a member.
type MemberForm struct {
	Name  string
	Email string
	Role  model.Role
}

func MemberFormFrom(m model.Member) MemberForm {
	return MemberForm{Name: m.Name, Email: m.Email, Role: m.Role}
}

func Member(f MemberForm) Errors {
	e := Errors{}
	e.required(f.Name, "name", "Name is required")
	e.email(f.Email)
	e.role(f.Role)
	return e
}

func (f MemberForm) UpdateRequest() model.UpdateMemberRequest {
	return model.UpdateMemberRequest{
		Name:     model.Ptr(strings.TrimSpace(f.Name)),
		Email:    model.Ptr(strings.TrimSpace(f.Email)),
		RoleName: model.Ptr(f.Role),
	}
}

// TaskForm is the editable part of a task, shared by create and edit.
type TaskForm struct {
	Title       string
	Description string
	Status      model.TaskStatus
	Priority    model.TaskPriority
	DueDate     string
}

// NewTaskForm holds the defaults of an empty create form.
func NewTaskForm() TaskForm {
	return TaskForm{Status: model.StatusPending, Priority: model.PriorityMedium}
}

func TaskFormFrom(t model.Task) TaskForm {
	return TaskForm{
		Title:       t.Title,
		Description: t.Description,
		Status:      t.Status,
		Priority:    t.Priority,
		DueDate:     DateOnly(t.DueDate),
	}
}

func Task(f TaskForm) Errors {
	e := Errors{}
	e.required(f.Title, "title", "Title is required")
	e.required(f.Description, "description", "Description is required")
	e.required(string(f.Status), "status", "Status is required")
	e.check(statusutil.ValidStatus(f.Status), "status", "Invalid status")
	e.required(string(f.Priority), "priority", "Priority is required")
	e.check(statusutil.ValidPriority(f.Priority), "priority", "Invalid priority")
	e.required(f.DueDate, "due_date", "Due date is required")
	_, err := time.Parse(dueDateLayout, strings.TrimSpace(f.DueDate))
	e.check(err == nil, "due_date", "Due date must be YYYY-MM-DD")
	return e
}

func (f TaskForm) CreateRequest() model.CreateTaskRequest {
	return model.CreateTaskRequest{
		Title:       strings.TrimSpace(f.Title),
		Description: f.Description,
		Status:      f.Status,
		Priority:    f.Priority,
		DueDate:     strings.TrimSpace(f.DueDate),
	}
}

func (f TaskForm) UpdateRequest() model.UpdateTaskRequest {
	c := f.CreateRequest()
	return model.UpdateTaskRequest{
		Title:       &c.Title,
		Description: &c.Description,
		Status:      &c.Status,
		Priority:    &c.Priority,
		DueDate:     &c.DueDate,
	}
}

// DateOnly reduces an RFC 3339 timestamp to its YYYY-MM-DD date; other
// values are returned unchanged.
func DateOnly(s string) string {
	s = strings.TrimSpace(s)
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t.Format(dueDateLayout)
	}
	return s
}

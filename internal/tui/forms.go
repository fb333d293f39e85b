package tui

import (
	"strings"

	"tms-cli/internal/model"
	"tms-cli/internal/statusutil"
	"tms-cli/internal/validate"
)

func statusField(v model.TaskStatus) field {
	values := make([]string, 0, len(model.TaskStatuses))
	labels := make([]string, 0, len(model.TaskStatuses))
	for _, s := range model.TaskStatuses {
		values = append(values, string(s))
		labels = append(labels, statusutil.StatusLabel(s))
	}
	return choiceField("status", "Status", values, labels, string(v))
}

func priorityField(v model.TaskPriority) field {
	values := make([]string, 0, len(model.TaskPriorities))
	labels := make([]string, 0, len(model.TaskPriorities))
	for _, p := range model.TaskPriorities {
		values = append(values, string(p))
		labels = append(labels, statusutil.PriorityLabel(p))
	}
	return choiceField("priority", "Priority", values, labels, string(v))
}

func taskForm(f validate.TaskForm) form {
	return newForm(
		textField("title", "Title", f.Title),
		areaField("description", "Description (markdown)", f.Description),
		statusField(f.Status),
		priorityField(f.Priority),
		textField("due_date", "Due date (YYYY-MM-DD)", f.DueDate),
	)
}

func readTaskForm(f *form) validate.TaskForm {
	return validate.TaskForm{
		Title:       strings.TrimSpace(f.value("title")),
		Description: f.value("description"),
		Status:      model.TaskStatus(f.value("status")),
		Priority:    model.TaskPriority(f.value("priority")),
		DueDate:     strings.TrimSpace(f.value("due_date")),
	}
}

func memberEditForm(f validate.MemberForm) form {
	return newForm(
		textField("name", "Name", f.Name),
		textField("email", "Email", f.Email),
		roleField("role_name", string(f.Role)),
	)
}

func readMemberEditForm(f *form) validate.MemberForm {
	return validate.MemberForm{
		Name:  strings.TrimSpace(f.value("name")),
		Email: strings.TrimSpace(f.value("email")),
		Role:  model.Role(f.value("role_name")),
	}
}

func memberCreateForm(f model.CreateMemberRequest) form {
	return newForm(
		textField("name", "Name", f.Name),
		textField("email", "Email", f.Email),
		passwordField("password", "Initial password"),
		roleField("role_name", string(f.RoleName)),
	)
}

func readMemberCreateForm(f *form) model.CreateMemberRequest {
	return model.CreateMemberRequest{
		Name:     strings.TrimSpace(f.value("name")),
		Email:    strings.TrimSpace(f.value("email")),
		Password: f.value("password"),
		RoleName: model.Role(f.value("role_name")),
	}
}

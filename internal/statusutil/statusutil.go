package statusutil

import (
	"fmt"
	"strings"

	"tms-cli/internal/model"
)

func normalizeToken(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	s = strings.ReplaceAll(s, "-", "_")
	return strings.Join(strings.Fields(s), "_")
}

// ParseStatus accepts the wire value or a human spelling ("In Progress", "in-progress").
// The empty string means "no filter" and is returned as-is.
func ParseStatus(s string) (model.TaskStatus, error) {
	v := normalizeToken(s)
	switch v {
	case "":
		return "", nil
	case "pending", "todo":
		return model.StatusPending, nil
	case "in_progress", "inprogress", "doing":
		return model.StatusInProgress, nil
	case "completed", "done", "complete":
		return model.StatusCompleted, nil
	default:
		return "", fmt.Errorf("invalid status: %s (expected pending|in_progress|completed)", strings.TrimSpace(s))
	}
}

func ParsePriority(s string) (model.TaskPriority, error) {
	switch normalizeToken(s) {
	case "":
		return "", nil
	case "low":
		return model.PriorityLow, nil
	case "medium", "med":
		return model.PriorityMedium, nil
	case "high":
		return model.PriorityHigh, nil
	default:
		return "", fmt.Errorf("invalid priority: %s (expected low|medium|high)", strings.TrimSpace(s))
	}
}

func ParseRole(s string) (model.Role, error) {
	switch normalizeToken(s) {
	case "":
		return "", nil
	case "admin":
		return model.RoleAdmin, nil
	case "user":
		return model.RoleUser, nil
	default:
		return "", fmt.Errorf("invalid role: %s (expected admin|user)", strings.TrimSpace(s))
	}
}

func ParseSort(s string) (string, error) {
	v := normalizeToken(s)
	if v == "" {
		return "", nil
	}
	for _, k := range model.SortKeys {
		if v == k {
			return k, nil
		}
	}
	return "", fmt.Errorf("invalid sort: %s (expected created_at|due_date|priority)", strings.TrimSpace(s))
}

func ValidStatus(s model.TaskStatus) bool {
	for _, v := range model.TaskStatuses {
		if v == s {
			return true
		}
	}
	return false
}

func ValidPriority(p model.TaskPriority) bool {
	for _, v := range model.TaskPriorities {
		if v == p {
			return true
		}
	}
	return false
}

func ValidRole(r model.Role) bool {
	return r == model.RoleAdmin || r == model.RoleUser
}

func StatusLabel(s model.TaskStatus) string {
	switch s {
	case model.StatusPending:
		return "Pending"
	case model.StatusInProgress:
		return "In Progress"
	case model.StatusCompleted:
		return "Completed"
	default:
		return string(s)
	}
}

func PriorityLabel(p model.TaskPriority) string {
	switch p {
	case model.PriorityLow:
		return "Low"
	case model.PriorityMedium:
		return "Medium"
	case model.PriorityHigh:
		return "High"
	default:
		return string(p)
	}
}

// NextStatus cycles through "" (all) and every status; used by filter toggles.
func NextStatus(cur model.TaskStatus) model.TaskStatus {
	if cur == "" {
		return model.TaskStatuses[0]
	}
	for i, s := range model.TaskStatuses {
		if s == cur {
			if i+1 < len(model.TaskStatuses) {
				return model.TaskStatuses[i+1]
			}
			return ""
		}
	}
	return ""
}

func NextPriority(cur model.TaskPriority) model.TaskPriority {
	if cur == "" {
		return model.TaskPriorities[0]
	}
	for i, p := range model.TaskPriorities {
		if p == cur {
			if i+1 < len(model.TaskPriorities) {
				return model.TaskPriorities[i+1]
			}
			return ""
		}
	}
	return ""
}

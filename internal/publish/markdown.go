package publish

import (
	"bytes"
	"fmt"
	"strings"

	"tms-cli/internal/model"
	"tms-cli/internal/statusutil"
	"tms-cli/internal/validate"
)

func RenderTaskMarkdown(t model.Task, assigned []model.Member) string {
	var buf bytes.Buffer
	title := strings.TrimSpace(t.Title)
	if title == "" {
		title = fmt.Sprintf("Task %d", t.ID)
	}
	fmt.Fprintf(&buf, "# %s\n\n", title)

	fmt.Fprintf(&buf, "- **ID:** %d\n", t.ID)
	fmt.Fprintf(&buf, "- **Status:** %s\n", statusutil.StatusLabel(t.Status))
	fmt.Fprintf(&buf, "- **Priority:** %s\n", statusutil.PriorityLabel(t.Priority))
	if due := validate.DateOnly(t.DueDate); due != "" {
		fmt.Fprintf(&buf, "- **Due:** %s\n", due)
	}
	if !t.CreatedAt.IsZero() {
		fmt.Fprintf(&buf, "- **Created:** %s\n", t.CreatedAt.UTC().Format("2006-01-02"))
	}
	if !t.UpdatedAt.IsZero() {
		fmt.Fprintf(&buf, "- **Updated:** %s\n", t.UpdatedAt.UTC().Format("2006-01-02"))
	}

	buf.WriteString("\n## Assigned to\n\n")
	if len(assigned) == 0 {
		buf.WriteString("_Nobody_\n")
	}
	for _, m := range assigned {
		fmt.Fprintf(&buf, "- %s <%s>\n", m.Name, m.Email)
	}

	if d := strings.TrimSpace(t.Description); d != "" {
		buf.WriteString("\n## Description\n\n")
		buf.WriteString(d)
		buf.WriteString("\n")
	}
	return buf.String()
}

// RenderIndexMarkdown renders a linked table of tasks, headed by the filters
// that selected them.
func RenderIndexMarkdown(q model.TaskQuery, tasks []model.Task) string {
	var buf bytes.Buffer
	buf.WriteString("# Tasks\n\n")
	if f := describeFilters(q); f != "" {
		fmt.Fprintf(&buf, "Filters: %s\n\n", f)
	}
	if len(tasks) == 0 {
		buf.WriteString("_No tasks found_\n")
		return buf.String()
	}
	buf.WriteString("| ID | Title | Status | Priority | Due |\n")
	buf.WriteString("|---|---|---|---|---|\n")
	for _, t := range tasks {
		fmt.Fprintf(&buf, "| [%d](tasks/%d.md) | %s | %s | %s | %s |\n",
			t.ID, t.ID,
			escapeCell(t.Title),
			statusutil.StatusLabel(t.Status),
			statusutil.PriorityLabel(t.Priority),
			validate.DateOnly(t.DueDate))
	}
	fmt.Fprintf(&buf, "\n%d tasks\n", len(tasks))
	return buf.String()
}

func describeFilters(q model.TaskQuery) string {
	var parts []string
	if q.Search != "" {
		parts = append(parts, fmt.Sprintf("search %q", q.Search))
	}
	if q.Status != "" {
		parts = append(parts, "status "+statusutil.StatusLabel(q.Status))
	}
	if q.Priority != "" {
		parts = append(parts, "priority "+statusutil.PriorityLabel(q.Priority))
	}
	if q.Sort != "" {
		parts = append(parts, "sorted by "+q.Sort)
	}
	return strings.Join(parts, ", ")
}

func escapeCell(s string) string {
	s = strings.ReplaceAll(s, "|", `\|`)
	return strings.ReplaceAll(s, "\n", " ")
}

package tui

import (
	"fmt"
	"io"
	"strings"

	"tms-cli/internal/model"
	"tms-cli/internal/statusutil"
	"tms-cli/internal/validate"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	xansi "github.com/charmbracelet/x/ansi"
)

type taskItem struct{ task model.Task }

func (i taskItem) FilterValue() string { return i.task.Title }

func (i taskItem) Title() string {
	due := validate.DateOnly(i.task.DueDate)
	if due == "" {
		due = "-"
	}
	return fmt.Sprintf("%-11s  %-6s  %-10s  %s",
		statusBadge(i.task.Status), priorityBadge(i.task.Priority), due, i.task.Title)
}

type memberItem struct{ member model.Member }

func (i memberItem) FilterValue() string { return i.member.Name }

func (i memberItem) Title() string {
	return fmt.Sprintf("%-6s  %-24s  %s", string(i.member.Role), i.member.Name, i.member.Email)
}

func taskItems(tasks []model.Task) []list.Item {
	out := make([]list.Item, 0, len(tasks))
	for _, t := range tasks {
		out = append(out, taskItem{task: t})
	}
	return out
}

func memberItems(members []model.Member) []list.Item {
	out := make([]list.Item, 0, len(members))
	for _, m := range members {
		out = append(out, memberItem{member: m})
	}
	return out
}

// statusBadge pads before styling so columns stay aligned under ANSI.
func statusBadge(s model.TaskStatus) string {
	label := fmt.Sprintf("%-11s", statusutil.StatusLabel(s))
	c := colorPending
	switch s {
	case model.StatusInProgress:
		c = colorInProgress
	case model.StatusCompleted:
		c = colorCompleted
	}
	return lipgloss.NewStyle().Foreground(c).Render(label)
}

func priorityBadge(p model.TaskPriority) string {
	label := fmt.Sprintf("%-6s", statusutil.PriorityLabel(p))
	c := colorMedium
	switch p {
	case model.PriorityLow:
		c = colorLow
	case model.PriorityHigh:
		c = colorHigh
	}
	return lipgloss.NewStyle().Foreground(c).Render(label)
}

// compactItemDelegate renders one line per row with a full-width selection bar.
type compactItemDelegate struct {
	normal   lipgloss.Style
	selected lipgloss.Style
}

func newCompactItemDelegate() compactItemDelegate {
	return compactItemDelegate{
		normal:   lipgloss.NewStyle(),
		selected: styleSelected(),
	}
}

func (d compactItemDelegate) Height() int  { return 1 }
func (d compactItemDelegate) Spacing() int { return 0 }
func (d compactItemDelegate) Update(_ tea.Msg, _ *list.Model) tea.Cmd {
	return nil
}

func (d compactItemDelegate) Render(w io.Writer, m list.Model, index int, item list.Item) {
	contentW := m.Width()
	if contentW < 4 {
		return
	}

	style := d.normal
	prefix := "  "
	if index == m.Index() {
		style = d.selected
		prefix = glyphCursor() + " "
	}

	txt := ""
	if t, ok := item.(interface{ Title() string }); ok {
		txt = t.Title()
	} else {
		txt = fmt.Sprint(item)
	}

	line := prefix + txt
	lineW := xansi.StringWidth(line)
	if lineW < contentW {
		line += strings.Repeat(" ", contentW-lineW)
	} else if lineW > contentW {
		line = xansi.Truncate(line, contentW-1, "…")
	}

	fmt.Fprint(w, style.Render(line))
}

// newResourceList builds a bubbles list with paging and filtering turned off;
// the server paginates and the screen owns search.
func newResourceList() list.Model {
	l := list.New(nil, newCompactItemDelegate(), 0, 0)
	l.SetShowTitle(false)
	l.SetShowStatusBar(false)
	l.SetShowHelp(false)
	l.SetShowPagination(false)
	l.SetFilteringEnabled(false)
	l.DisableQuitKeybindings()
	return l
}

package cli

import (
	"fmt"
	"strconv"
	"strings"

	"tms-cli/internal/controller"
	"tms-cli/internal/model"
	"tms-cli/internal/statusutil"
	"tms-cli/internal/validate"
)

type taskRows []model.Task

func (r taskRows) Table() ([]string, [][]string) {
	rows := make([][]string, 0, len(r))
	for _, t := range r {
		rows = append(rows, []string{
			strconv.FormatInt(t.ID, 10),
			t.Title,
			statusutil.StatusLabel(t.Status),
			statusutil.PriorityLabel(t.Priority),
			validate.DateOnly(t.DueDate),
		})
	}
	return []string{"ID", "Title", "Status", "Priority", "Due"}, rows
}

type memberRows []model.Member

func (r memberRows) Table() ([]string, [][]string) {
	rows := make([][]string, 0, len(r))
	for _, m := range r {
		rows = append(rows, []string{strconv.FormatInt(m.ID, 10), m.Name, m.Email, string(m.Role)})
	}
	return []string{"ID", "Name", "Email", "Role"}, rows
}

type taskDetailOut struct {
	Task        model.Task     `json:"task"`
	Assignments []model.Member `json:"assignments"`
}

func (o taskDetailOut) Table() ([]string, [][]string) {
	t := o.Task
	names := make([]string, 0, len(o.Assignments))
	for _, m := range o.Assignments {
		names = append(names, m.Name)
	}
	assigned := strings.Join(names, ", ")
	if assigned == "" {
		assigned = "-"
	}
	return []string{"Field", "Value"}, [][]string{
		{"ID", strconv.FormatInt(t.ID, 10)},
		{"Title", t.Title},
		{"Status", statusutil.StatusLabel(t.Status)},
		{"Priority", statusutil.PriorityLabel(t.Priority)},
		{"Due", validate.DateOnly(t.DueDate)},
		{"Assigned", assigned},
		{"Description", t.Description},
	}
}

type memberOut model.Member

func (m memberOut) Table() ([]string, [][]string) {
	return []string{"Field", "Value"}, [][]string{
		{"ID", strconv.FormatInt(m.ID, 10)},
		{"Name", m.Name},
		{"Email", m.Email},
		{"Role", string(m.Role)},
		{"Joined", m.CreatedAt.Format("Jan 02, 2006")},
	}
}

type dashboardOut struct {
	Recent taskRows         `json:"recent"`
	Stats  controller.Stats `json:"stats"`
}

func (d dashboardOut) Table() ([]string, [][]string) { return d.Recent.Table() }

func (d dashboardOut) String() string {
	s := d.Stats
	return fmt.Sprintf("total %d · pending %d · in progress %d · completed %d", s.Total, s.Pending, s.InProgress, s.Completed)
}

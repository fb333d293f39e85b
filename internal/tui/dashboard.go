package tui

import (
	"fmt"
	"strconv"
	"strings"

	"tms-cli/internal/api"
	"tms-cli/internal/controller"
	"tms-cli/internal/route"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

type dashboardMsg struct {
	owner *controller.Dashboard
	res   controller.DashboardResult
}

type dashboardScreen struct {
	env    *env
	d      *controller.Dashboard
	cursor int
}

func newDashboardScreen(e *env) *dashboardScreen {
	return &dashboardScreen{env: e, d: controller.NewDashboard(e.client, e.logger)}
}

func (s *dashboardScreen) init() tea.Cmd { return s.load() }

func (s *dashboardScreen) load() tea.Cmd {
	d, ctx := s.d, s.env.ctx
	seq := d.Begin()
	return func() tea.Msg {
		return dashboardMsg{owner: d, res: d.Fetch(ctx, seq)}
	}
}

func (s *dashboardScreen) capturing() bool { return false }

func (s *dashboardScreen) help() string {
	return "j/k: move   enter: open   n: new task   r: refresh   1-3: sections"
}

func (s *dashboardScreen) update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case dashboardMsg:
		if msg.owner == s.d && s.d.Apply(msg.res) {
			s.cursor = clampIndex(s.cursor, len(s.d.Recent()))
		}
	case tea.KeyMsg:
		recent := s.d.Recent()
		switch msg.String() {
		case "r":
			return s.load()
		case "n":
			s.env.nav.Navigate(route.To(route.TaskNew))
		case "down", "j":
			s.cursor = clampIndex(s.cursor+1, len(recent))
		case "up", "k":
			s.cursor = clampIndex(s.cursor-1, len(recent))
		case "enter":
			if s.cursor < len(recent) {
				s.env.nav.Navigate(route.Detail(route.TaskDetail, recent[s.cursor].ID))
			}
		}
	}
	return nil
}

func (s *dashboardScreen) view(f frame) string {
	if s.d.Loading() {
		return f.loading("dashboard")
	}
	var b strings.Builder
	if err := s.d.Err(); err != nil {
		b.WriteString(styleError().Render("Failed to load dashboard: "+api.Message(err)) + "\n\n")
	}

	st := s.d.Stats()
	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top,
		statCard("Total", st.Total, colorAccent),
		" ", statCard("Pending", st.Pending, colorPending),
		" ", statCard("In Progress", st.InProgress, colorInProgress),
		" ", statCard("Completed", st.Completed, colorCompleted),
	))
	b.WriteString("\n\n" + styleTitle().Render("Recent tasks") + "\n")

	recent := s.d.Recent()
	if len(recent) == 0 {
		b.WriteString(styleMuted().Render("No tasks yet. Press n to create one."))
		return b.String()
	}
	for i, t := range recent {
		line := taskItem{task: t}.Title()
		if i == s.cursor {
			b.WriteString(styleSelected().Render(glyphCursor()+" "+line) + "\n")
		} else {
			b.WriteString("  " + line + "\n")
		}
	}
	return b.String()
}

func statCard(label string, n int, c lipgloss.TerminalColor) string {
	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(colorBorder).
		Padding(0, 1).
		Width(15).
		Render(styleMuted().Render(label) + "\n" +
			lipgloss.NewStyle().Bold(true).Foreground(c).Render(strconv.Itoa(n)))
}

func clampIndex(i, n int) int {
	if n == 0 || i < 0 {
		return 0
	}
	if i >= n {
		return n - 1
	}
	return i
}

func countLabel(n int, noun string) string {
	if n == 1 {
		return fmt.Sprintf("1 %s", noun)
	}
	return fmt.Sprintf("%d %ss", n, noun)
}

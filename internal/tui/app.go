package tui

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"sync"

	"tms-cli/internal/api"
	"tms-cli/internal/auth"
	"tms-cli/internal/controller"
	"tms-cli/internal/docs"
	"tms-cli/internal/logging"
	"tms-cli/internal/perm"
	"tms-cli/internal/route"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

const sidebarWidth = 18

// navigator collects navigation requests made by controllers (which may run
// on command goroutines). The app applies the latest one after each Update.
type navigator struct {
	mu   sync.Mutex
	next *route.Route
}

func (n *navigator) Navigate(r route.Route) {
	n.mu.Lock()
	n.next = &r
	n.mu.Unlock()
}

func (n *navigator) take() (route.Route, bool) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.next == nil {
		return route.Route{}, false
	}
	r := *n.next
	n.next = nil
	return r, true
}

// env is shared by every screen.
type env struct {
	ctx     context.Context
	auth    *auth.Manager
	client  *api.Client
	nav     route.Navigator
	perPage int
	logger  *slog.Logger
}

// frame is the space and spinner a screen renders into.
type frame struct {
	width  int
	height int
	spin   string
}

func (f frame) loading(what string) string {
	return f.spin + " Loading " + what + "…"
}

type screen interface {
	init() tea.Cmd
	update(msg tea.Msg) tea.Cmd
	view(f frame) string
	// capturing reports that keys belong to a text field or modal, so the
	// single-key global shortcuts are off.
	capturing() bool
	help() string
}

type appModel struct {
	env *env
	nav *navigator

	width  int
	height int

	route   route.Route
	screen  screen
	spinner spinner.Model
	flash   string
	// showHelp replaces the content pane with the key reference.
	showHelp bool
}

func newAppModel(ctx context.Context, deps Deps) appModel {
	nav := &navigator{}
	deps.Auth.SetNavigator(nav)
	perPage := deps.PerPage
	if perPage <= 0 {
		perPage = controller.DefaultPerPage
	}

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = styleAccent()

	m := appModel{
		env: &env{
			ctx:     ctx,
			auth:    deps.Auth,
			client:  deps.Client,
			nav:     nav,
			perPage: perPage,
			logger:  logging.OrDiscard(deps.Logger),
		},
		nav:     nav,
		spinner: sp,
		width:   100,
		height:  30,
	}
	start := route.To(route.Login)
	if deps.Auth.IsAuthenticated() {
		start = route.To(route.Dashboard)
	}
	m.switchTo(start)
	return m
}

func (m appModel) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.screen.init())
}

func (m appModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		m.flash = ""
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
		if m.showHelp {
			m.showHelp = false
			return m, nil
		}
		if !m.screen.capturing() {
			if cmd, handled := m.globalKey(msg); handled {
				return m, cmd
			}
		}
		cmds = append(cmds, m.screen.update(msg))

	default:
		cmds = append(cmds, m.screen.update(msg))
	}

	if r, ok := m.nav.take(); ok {
		cmds = append(cmds, m.switchTo(r))
	}
	return m, tea.Batch(cmds...)
}

// globalKey handles quit, logout and the numbered navigation entries.
func (m *appModel) globalKey(msg tea.KeyMsg) (tea.Cmd, bool) {
	key := msg.String()
	switch key {
	case "q":
		return tea.Quit, true
	case "?":
		m.showHelp = true
		return nil, true
	case "L":
		if !m.env.auth.IsAuthenticated() {
			return nil, false
		}
		if err := m.env.auth.Logout(); err != nil {
			m.env.logger.Warn("logout", slog.String("error", err.Error()))
		}
		if r, ok := m.nav.take(); ok {
			return m.switchTo(r), true
		}
		return m.switchTo(route.To(route.Login)), true
	}
	if n, err := strconv.Atoi(key); err == nil {
		items := perm.Navigation(m.env.auth.User())
		if n >= 1 && n <= len(items) {
			return m.switchTo(route.To(items[n-1].Route)), true
		}
	}
	return nil, false
}

// switchTo is the route guard: signed-out users only reach login and
// register, signed-in users skip them, and the members area needs an admin.
// Every switch builds a fresh screen.
func (m *appModel) switchTo(r route.Route) tea.Cmd {
	a := m.env.auth
	public := r.Name == route.Login || r.Name == route.Register
	switch {
	case !a.IsAuthenticated() && !public:
		r = route.To(route.Login)
	case a.IsAuthenticated() && public:
		r = route.To(route.Dashboard)
	case !perm.CanSee(a.User(), r.Name):
		m.flash = "Members are only available to admins"
		r = route.To(route.Dashboard)
	}

	m.env.logger.Debug("navigate", slog.String("route", r.String()))
	m.showHelp = false
	m.route = r
	m.screen = m.build(r)
	return m.screen.init()
}

func (m *appModel) build(r route.Route) screen {
	e := m.env
	switch r.Name {
	case route.Login:
		return newLoginScreen(e)
	case route.Register:
		return newRegisterScreen(e)
	case route.Tasks:
		return newTasksScreen(e)
	case route.TaskNew:
		return newTaskCreateScreen(e)
	case route.TaskDetail:
		return newTaskDetailScreen(e, r.ID)
	case route.Members:
		return newMembersScreen(e)
	case route.MemberNew:
		return newMemberCreateScreen(e)
	case route.MemberDetail:
		return newMemberDetailScreen(e, r.ID)
	default:
		return newDashboardScreen(e)
	}
}

func (m appModel) View() string {
	f := frame{width: m.width, height: m.height, spin: m.spinner.View()}

	if m.route.Name == route.Login || m.route.Name == route.Register {
		body := m.screen.view(frame{width: min(m.width-4, 64), height: m.height - 2, spin: f.spin})
		footer := styleMuted().Render(m.screen.help() + "   ctrl+c: quit")
		return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, body+"\n\n"+footer)
	}

	header := m.header()
	footer := m.footer()
	bodyH := m.height - lipgloss.Height(header) - lipgloss.Height(footer)
	if bodyH < 5 {
		bodyH = 5
	}
	contentW := m.width - sidebarWidth - 1
	if contentW < 30 {
		contentW = 30
	}

	side := normalizePane(m.sidebar(), sidebarWidth, bodyH)
	gap := normalizePane("", 1, bodyH)
	var content string
	if m.showHelp {
		content = normalizePane(m.helpView(contentW), contentW, bodyH)
	} else {
		content = normalizePane(m.screen.view(frame{width: contentW, height: bodyH, spin: f.spin}), contentW, bodyH)
	}
	body := lipgloss.JoinHorizontal(lipgloss.Top, side, gap, content)
	return strings.Join([]string{header, body, footer}, "\n")
}

func (m appModel) header() string {
	who := ""
	if u := m.env.auth.User(); u != nil {
		who = fmt.Sprintf("%s (%s)", u.Name, u.Role)
	}
	left := styleAccent().Render("tms")
	gap := m.width - lipgloss.Width(left) - lipgloss.Width(who)
	if gap < 1 {
		gap = 1
	}
	return left + strings.Repeat(" ", gap) + styleMuted().Render(who) + "\n" + hrule(m.width)
}

func (m appModel) sidebar() string {
	var b strings.Builder
	for i, it := range perm.Navigation(m.env.auth.User()) {
		line := fmt.Sprintf("%d %s", i+1, it.Label)
		if section(m.route.Name) == it.Route {
			b.WriteString(styleSelected().Width(sidebarWidth).Render(glyphCursor() + line))
		} else {
			b.WriteString(" " + line)
		}
		b.WriteString("\n")
	}
	b.WriteString("\n " + styleMuted().Render("L logout"))
	return b.String()
}

func (m appModel) footer() string {
	line := ""
	if m.flash != "" {
		line = styleError().Render(m.flash) + "\n"
	}
	help := m.screen.help() + "   ?: keys   q: quit"
	if m.showHelp {
		help = "any key: close help"
	}
	return line + hrule(m.width) + "\n" + styleMuted().Render(help)
}

func (m appModel) helpView(width int) string {
	body, ok := docs.Get("keys")
	if !ok {
		return styleMuted().Render("No key reference available")
	}
	return renderMarkdown(body, width)
}

// section maps a screen to its navigation entry.
func section(n route.Name) route.Name {
	switch n {
	case route.Tasks, route.TaskNew, route.TaskDetail:
		return route.Tasks
	case route.Members, route.MemberNew, route.MemberDetail:
		return route.Members
	default:
		return route.Dashboard
	}
}

package tui

import (
	"fmt"
	"strings"

	"tms-cli/internal/api"
	"tms-cli/internal/controller"
	"tms-cli/internal/model"
	"tms-cli/internal/route"
	"tms-cli/internal/statusutil"

	"github.com/charmbracelet/bubbles/cursor"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

type pageMsg[T any] struct {
	owner *controller.List[T]
	res   controller.Result[T]
}

// listScreen is the paginated list behind the tasks and members screens.
type listScreen[T any] struct {
	env    *env
	noun   string // singular, lower case
	header string
	facets bool // status/priority/sort filters (tasks only)
	items  func([]T) []list.Item
	open   func(list.Item) (route.Route, bool)
	create route.Name

	l         *controller.List[T]
	rows      list.Model
	search    textinput.Model
	searching bool
}

func newTasksScreen(e *env) *listScreen[model.Task] {
	return newListScreen(e, controller.NewTaskList(e.client, e.perPage, e.logger), "task",
		fmt.Sprintf("  %-11s  %-6s  %-10s  %s", "Status", "Prio", "Due", "Title"),
		true, taskItems,
		func(it list.Item) (route.Route, bool) {
			ti, ok := it.(taskItem)
			return route.Detail(route.TaskDetail, ti.task.ID), ok
		},
		route.TaskNew)
}

func newMembersScreen(e *env) *listScreen[model.Member] {
	return newListScreen(e, controller.NewMemberList(e.client, e.perPage, e.logger), "member",
		fmt.Sprintf("  %-6s  %-24s  %s", "Role", "Name", "Email"),
		false, memberItems,
		func(it list.Item) (route.Route, bool) {
			mi, ok := it.(memberItem)
			return route.Detail(route.MemberDetail, mi.member.ID), ok
		},
		route.MemberNew)
}

func newListScreen[T any](e *env, l *controller.List[T], noun, header string, facets bool,
	items func([]T) []list.Item, open func(list.Item) (route.Route, bool), create route.Name) *listScreen[T] {
	in := textinput.New()
	in.Prompt = "/ "
	in.Placeholder = "search"
	in.CharLimit = 128
	in.Cursor.SetMode(cursor.CursorStatic)
	return &listScreen[T]{
		env:    e,
		noun:   noun,
		header: header,
		facets: facets,
		items:  items,
		open:   open,
		create: create,
		l:      l,
		rows:   newResourceList(),
		search: in,
	}
}

func (s *listScreen[T]) init() tea.Cmd { return s.fetch(s.l.Refresh()) }

// fetch runs req on a command goroutine. The rows are cleared right away
// because a started fetch discards the previous results.
func (s *listScreen[T]) fetch(req controller.Request) tea.Cmd {
	s.rows.SetItems(nil)
	l, ctx := s.l, s.env.ctx
	return func() tea.Msg {
		return pageMsg[T]{owner: l, res: l.Fetch(ctx, req)}
	}
}

func (s *listScreen[T]) capturing() bool { return s.searching }

func (s *listScreen[T]) help() string {
	if s.searching {
		return "enter: search   esc: cancel"
	}
	h := "/: search   [ ]: page   enter: open   n: new   r: refresh"
	if s.facets {
		h += "   s/p/o: filters   c: clear"
	}
	return h
}

func (s *listScreen[T]) update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case pageMsg[T]:
		if msg.owner == s.l && s.l.Apply(msg.res) {
			s.rows.SetItems(s.items(s.l.Items()))
			s.rows.Select(0)
		}
		return nil
	case tea.KeyMsg:
		if s.searching {
			return s.updateSearch(msg)
		}
		return s.updateKeys(msg)
	}
	return nil
}

func (s *listScreen[T]) updateSearch(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "enter":
		s.searching = false
		s.search.Blur()
		return s.fetch(s.l.SetSearch(s.search.Value()))
	case "esc":
		s.searching = false
		s.search.Blur()
		s.search.SetValue(s.l.Query().Search)
		return nil
	}
	var cmd tea.Cmd
	s.search, cmd = s.search.Update(msg)
	return cmd
}

func (s *listScreen[T]) updateKeys(msg tea.KeyMsg) tea.Cmd {
	q := s.l.Query()
	switch msg.String() {
	case "/":
		s.searching = true
		return s.search.Focus()
	case "r":
		return s.fetch(s.l.Refresh())
	case "]", "right":
		if req, ok := s.l.NextPage(); ok {
			return s.fetch(req)
		}
		return nil
	case "[", "left":
		if req, ok := s.l.PrevPage(); ok {
			return s.fetch(req)
		}
		return nil
	case "n":
		s.env.nav.Navigate(route.To(s.create))
		return nil
	case "enter":
		if it := s.rows.SelectedItem(); it != nil {
			if r, ok := s.open(it); ok {
				s.env.nav.Navigate(r)
			}
		}
		return nil
	}
	if s.facets {
		switch msg.String() {
		case "s":
			return s.fetch(s.l.SetStatus(statusutil.NextStatus(q.Status)))
		case "p":
			return s.fetch(s.l.SetPriority(statusutil.NextPriority(q.Priority)))
		case "o":
			return s.fetch(s.l.SetSort(nextSort(q.Sort)))
		case "c":
			s.search.SetValue("")
			s.l.SetSearch("")
			s.l.SetStatus("")
			s.l.SetSort("")
			return s.fetch(s.l.SetPriority(""))
		}
	}
	var cmd tea.Cmd
	s.rows, cmd = s.rows.Update(msg)
	return cmd
}

func nextSort(cur string) string {
	if cur == "" {
		return model.SortKeys[0]
	}
	for i, k := range model.SortKeys {
		if k == cur && i+1 < len(model.SortKeys) {
			return model.SortKeys[i+1]
		}
	}
	return ""
}

func (s *listScreen[T]) view(f frame) string {
	var b strings.Builder
	b.WriteString(s.filterBar(f.width) + "\n\n")

	switch s.l.State() {
	case controller.RenderLoading:
		b.WriteString(f.loading(s.noun + "s"))
		return b.String()
	case controller.RenderEmpty:
		b.WriteString(styleMuted().Render("No " + s.noun + "s found"))
		if err := s.l.Err(); err != nil {
			b.WriteString("\n" + styleError().Render(fmt.Sprintf("Failed to load %ss: %s", s.noun, api.Message(err))))
		}
		b.WriteString(s.pageFooter())
		return b.String()
	}

	b.WriteString(styleMuted().Render(s.header) + "\n")
	rowsH := f.height - 6
	if rowsH < 3 {
		rowsH = 3
	}
	s.rows.SetSize(f.width, rowsH)
	b.WriteString(s.rows.View())
	b.WriteString(s.pageFooter())
	return b.String()
}

func (s *listScreen[T]) pageFooter() string {
	if !s.l.ShowPagination() {
		return ""
	}
	p := s.l.Pagination()
	return "\n" + styleMuted().Render(fmt.Sprintf("Page %d of %d  %s  %s  [ prev  ] next",
		p.CurrentPage, p.TotalPages, glyphBullet(), countLabel(p.TotalCount, s.noun)))
}

func (s *listScreen[T]) filterBar(width int) string {
	q := s.l.Query()
	var search string
	switch {
	case s.searching:
		search = renderInputLine(min(width, 40), s.search.View())
	case q.Search != "":
		search = "Search: " + styleAccent().Render(q.Search)
	default:
		search = styleMuted().Render("/ to search")
	}
	if !s.facets {
		return search
	}
	status := "All"
	if q.Status != "" {
		status = statusutil.StatusLabel(q.Status)
	}
	prio := "All"
	if q.Priority != "" {
		prio = statusutil.PriorityLabel(q.Priority)
	}
	sort := "Default"
	if q.Sort != "" {
		sort = q.Sort
	}
	return fmt.Sprintf("%s   Status: %s   Priority: %s   Sort: %s", search,
		styleAccent().Render(status), styleAccent().Render(prio), styleAccent().Render(sort))
}

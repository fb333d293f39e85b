// Package route names the screens of the client and the navigation hook that
// switches between them.
package route

import (
	"fmt"
	"sync"
)

type Name string

const (
	Login        Name = "login"
	Register     Name = "register"
	Dashboard    Name = "dashboard"
	Tasks        Name = "tasks"
	TaskNew      Name = "tasks/new"
	TaskDetail   Name = "tasks/detail"
	Members      Name = "members"
	MemberNew    Name = "members/new"
	MemberDetail Name = "members/detail"
)

// Route is a screen plus the entity it shows, if any.
type Route struct {
	Name Name
	ID   int64
}

func To(name Name) Route { return Route{Name: name} }

func Detail(name Name, id int64) Route { return Route{Name: name, ID: id} }

func (r Route) String() string {
	if r.ID != 0 {
		return fmt.Sprintf("/%s/%d", r.Name, r.ID)
	}
	return "/" + string(r.Name)
}

type Navigator interface {
	Navigate(r Route)
}

type NavigatorFunc func(Route)

func (f NavigatorFunc) Navigate(r Route) {
	if f != nil {
		f(r)
	}
}

// Nowhere discards navigation.
var Nowhere Navigator = NavigatorFunc(nil)

// Recorder remembers every navigation, in order.
type Recorder struct {
	mu     sync.Mutex
	routes []Route
}

func (r *Recorder) Navigate(to Route) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.routes = append(r.routes, to)
}

func (r *Recorder) Routes() []Route {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Route(nil), r.routes...)
}

// Last returns the most recent route, or the zero Route.
func (r *Recorder) Last() Route {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.routes) == 0 {
		return Route{}
	}
	return r.routes[len(r.routes)-1]
}

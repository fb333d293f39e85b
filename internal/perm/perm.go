package perm

import (
	"tms-cli/internal/model"
	"tms-cli/internal/route"
)

// NavItem is an entry of the main navigation.
type NavItem struct {
	Label string
	Route route.Name
	Roles []model.Role
}

var navItems = []NavItem{
	{Label: "Dashboard", Route: route.Dashboard, Roles: []model.Role{model.RoleAdmin, model.RoleUser}},
	{Label: "Tasks", Route: route.Tasks, Roles: []model.Role{model.RoleAdmin, model.RoleUser}},
	{Label: "Members", Route: route.Members, Roles: []model.Role{model.RoleAdmin}},
}

// Navigation returns the entries visible to u.
//
// Visibility is presentation only: the server enforces its own
// authorization on every request.
func Navigation(u *model.User) []NavItem {
	if u == nil {
		return nil
	}
	var out []NavItem
	for _, it := range navItems {
		if allowed(it.Roles, u.Role) {
			out = append(out, it)
		}
	}
	return out
}

// CanSee reports whether the screen r is shown to u. Screens outside the
// main navigation inherit from their section.
func CanSee(u *model.User, r route.Name) bool {
	if u == nil {
		return r == route.Login || r == route.Register
	}
	switch r {
	case route.Members, route.MemberNew, route.MemberDetail:
		return u.IsAdmin()
	default:
		return true
	}
}

func CanManageMembers(u *model.User) bool { return CanSee(u, route.Members) }

func allowed(roles []model.Role, r model.Role) bool {
	for _, x := range roles {
		if x == r {
			return true
		}
	}
	return false
}

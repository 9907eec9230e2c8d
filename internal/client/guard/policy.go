// Package guard decides whether a view may render for the current session:
// render it, defer while the session is loading, or redirect elsewhere.
//
// Access is declared per route pattern and resolved through an explicit
// (role, access) policy table; redirect targets never depend on string
// comparison with caller-supplied paths.
package guard

import (
	"github.com/dmitrijs2005/meetscribe/internal/client/models"
)

// Access is what a route demands from the session.
type Access int

const (
	// Public routes render for everyone, whatever the session state.
	Public Access = iota
	// Authenticated routes render for any signed-in role.
	Authenticated
	// UserOnly routes belong to regular users; admins are sent home.
	UserOnly
	// AdminOnly routes belong to admins; everyone else is sent home.
	AdminOnly
	// Shared routes render for any signed-in role and are exempt from role
	// redirection.
	Shared
)

func (a Access) String() string {
	switch a {
	case Public:
		return "public"
	case Authenticated:
		return "authenticated"
	case UserOnly:
		return "user-only"
	case AdminOnly:
		return "admin-only"
	case Shared:
		return "shared"
	}
	return "unknown"
}

const (
	LoginPath = "/login"
	UserHome  = "/dashboard"
	AdminHome = "/admin/dashboard"
)

// Home is the landing view for role.
func Home(role models.Role) string {
	if role.IsAdmin() {
		return AdminHome
	}
	return UserHome
}

// policy lists which roles may see each protected access level. Anything
// not listed redirects to the role's home.
var policy = map[Access]map[models.Role]bool{
	Authenticated: {models.RoleUser: true, models.RoleAdmin: true},
	Shared:        {models.RoleUser: true, models.RoleAdmin: true},
	UserOnly:      {models.RoleUser: true},
	AdminOnly:     {models.RoleAdmin: true},
}

// Allowed reports whether role may render a route with access a. Unknown
// roles are treated as regular users.
func Allowed(role models.Role, a Access) bool {
	if a == Public {
		return true
	}
	if !role.IsAdmin() {
		role = models.RoleUser
	}
	return policy[a][role]
}

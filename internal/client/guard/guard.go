package guard

import (
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/dmitrijs2005/meetscribe/internal/client/session"
)

// Route declares a view pattern (chi syntax, e.g. /transcriptions/{id}) and
// what it demands from the session.
type Route struct {
	Pattern string
	Access  Access
	// LoginPath overrides where anonymous visitors are sent; "" means
	// LoginPath.
	LoginPath string
	// ReturnTo appends ?next=<requested path> to the login redirect.
	ReturnTo bool
}

// Kind is the outcome of a guard decision.
type Kind int

const (
	Render Kind = iota
	Loading
	Redirect
	NotFound
)

func (k Kind) String() string {
	switch k {
	case Render:
		return "render"
	case Loading:
		return "loading"
	case Redirect:
		return "redirect"
	case NotFound:
		return "not-found"
	}
	return "unknown"
}

// Decision is the verdict for one navigation.
type Decision struct {
	Kind Kind
	// Target is set for Redirect.
	Target string
	// Route and Params describe the matched route.
	Route  Route
	Params map[string]string
}

// Param returns the named URL parameter of the matched route.
func (d Decision) Param(name string) string {
	return d.Params[name]
}

// Table maps paths to routes. Matching is done by a chi router that is used
// purely as a pattern matcher.
type Table struct {
	mux    *chi.Mux
	routes map[string]Route
}

var noop = http.HandlerFunc(func(http.ResponseWriter, *http.Request) {})

// NewTable builds a table from routes. It panics on duplicate or malformed
// patterns, like chi itself.
func NewTable(routes ...Route) *Table {
	t := &Table{mux: chi.NewRouter(), routes: make(map[string]Route, len(routes))}
	for _, r := range routes {
		if _, dup := t.routes[r.Pattern]; dup {
			panic(fmt.Sprintf("guard: duplicate route %q", r.Pattern))
		}
		t.routes[r.Pattern] = r
		t.mux.Get(r.Pattern, noop)
	}
	return t
}

// Routes is the client's route table.
func Routes() *Table {
	return NewTable(
		Route{Pattern: "/", Access: Public},
		Route{Pattern: "/features", Access: Public},
		Route{Pattern: "/pricing", Access: Public},
		Route{Pattern: "/login", Access: Public},
		Route{Pattern: "/register", Access: Public},
		Route{Pattern: "/verify/{token}", Access: Public},
		Route{Pattern: "/auth/callback", Access: Public},

		Route{Pattern: "/dashboard", Access: UserOnly},
		Route{Pattern: "/transcriptions", Access: UserOnly},
		Route{Pattern: "/summary", Access: UserOnly},

		Route{Pattern: "/transcriptions/{id}", Access: Authenticated, ReturnTo: true},
		Route{Pattern: "/meetings/{id}", Access: Authenticated, ReturnTo: true},

		Route{Pattern: "/admin/dashboard", Access: AdminOnly},
		Route{Pattern: "/admin/users", Access: AdminOnly},
		Route{Pattern: "/admin/users/{id}", Access: AdminOnly},

		Route{Pattern: "/profile", Access: Shared},
	)
}

// Match finds the route for path (query string ignored).
func (t *Table) Match(path string) (Route, map[string]string, bool) {
	p, _, _ := strings.Cut(path, "?")
	if p == "" {
		p = "/"
	}

	rctx := chi.NewRouteContext()
	pattern := t.mux.Find(rctx, http.MethodGet, p)
	if pattern == "" {
		return Route{}, nil, false
	}

	r, ok := t.routes[pattern]
	if !ok {
		return Route{}, nil, false
	}

	var params map[string]string
	if n := len(rctx.URLParams.Keys); n > 0 {
		params = make(map[string]string, n)
		for i, k := range rctx.URLParams.Keys {
			params[k] = rctx.URLParams.Values[i]
		}
	}
	return r, params, true
}

// Decide evaluates path against the session state.
func (t *Table) Decide(st session.State, path string) Decision {
	r, params, ok := t.Match(path)
	if !ok {
		return Decision{Kind: NotFound}
	}
	d := Decision{Route: r, Params: params}

	switch {
	case r.Access == Public:
		d.Kind = Render
	case st.Loading:
		d.Kind = Loading
	case !st.Authenticated():
		d.Kind = Redirect
		d.Target = loginTarget(r, path)
	case Allowed(st.User.Role, r.Access):
		d.Kind = Render
	default:
		d.Kind = Redirect
		d.Target = Home(st.User.Role)
	}
	return d
}

func loginTarget(r Route, path string) string {
	target := r.LoginPath
	if target == "" {
		target = LoginPath
	}
	if !r.ReturnTo {
		return target
	}
	sep := "?"
	if strings.Contains(target, "?") {
		sep = "&"
	}
	return target + sep + "next=" + url.QueryEscape(path)
}

// OAuthCallbackTarget is where the federated login callback lands: the
// dashboard on success, otherwise the login view with an error code.
func OAuthCallbackTarget(tokenPresent, ok bool) string {
	switch {
	case !tokenPresent:
		return LoginPath + "?error=no_token"
	case !ok:
		return LoginPath + "?error=google_login_failed"
	}
	return UserHome
}

// ABOUTME: Route table and access policies for the interactive screens
// ABOUTME: Decides wait, grant, or redirect from a session snapshot

package guard

import "github.com/arizayilmaz/voteverse/internal/session"

// Route names a navigable screen
type Route int

const (
	Home Route = iota
	PollDetail
	Login
	Register
	CreatePoll
	EditPoll
	MyPolls
)

var routeNames = map[Route]string{
	Home:       "home",
	PollDetail: "poll",
	Login:      "login",
	Register:   "register",
	CreatePoll: "create",
	EditPoll:   "edit",
	MyPolls:    "my-polls",
}

func (r Route) String() string {
	if name, ok := routeNames[r]; ok {
		return name
	}
	return routeNames[Home]
}

// ParseRoute resolves a route name; unknown names resolve to Home
func ParseRoute(name string) Route {
	for r, n := range routeNames {
		if n == name {
			return r
		}
	}
	return Home
}

// Policy is the access rule attached to a route
type Policy int

const (
	Public Policy = iota
	AuthenticatedOnly
	AnonymousOnly
)

// PolicyFor returns the policy of r
func PolicyFor(r Route) Policy {
	switch r {
	case CreatePoll, EditPoll, MyPolls:
		return AuthenticatedOnly
	case Login, Register:
		return AnonymousOnly
	}
	return Public
}

// Kind is the outcome of a guard
type Kind int

const (
	Wait Kind = iota
	Grant
	Redirect
)

// Decision is what the navigator should do. Target is set for Redirect.
type Decision struct {
	Kind   Kind
	Target Route
}

// RequireAuth admits only an authenticated session
func RequireAuth(st session.State) Decision {
	if st.Loading {
		return Decision{Kind: Wait}
	}
	if !st.IsAuthenticated() {
		return Decision{Kind: Redirect, Target: Login}
	}
	return Decision{Kind: Grant}
}

// RequireAnonymous admits only a signed-out session
func RequireAnonymous(st session.State) Decision {
	if st.Loading {
		return Decision{Kind: Wait}
	}
	if st.IsAuthenticated() {
		return Decision{Kind: Redirect, Target: Home}
	}
	return Decision{Kind: Grant}
}

// Evaluate applies the policy of r to st
func Evaluate(r Route, st session.State) Decision {
	switch PolicyFor(r) {
	case AuthenticatedOnly:
		return RequireAuth(st)
	case AnonymousOnly:
		return RequireAnonymous(st)
	}
	return Decision{Kind: Grant}
}

// Resolve follows redirects until a route is granted. Public routes never
// wait, so the chain is at most two hops.
func Resolve(r Route, st session.State) (Route, Decision) {
	for range len(routeNames) {
		d := Evaluate(r, st)
		if d.Kind != Redirect {
			return r, d
		}
		r = d.Target
	}
	return Home, Decision{Kind: Grant}
}

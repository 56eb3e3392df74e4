package guard

import (
	"testing"

	"github.com/arizayilmaz/voteverse/internal/client"
	"github.com/arizayilmaz/voteverse/internal/session"
	"github.com/stretchr/testify/assert"
)

var (
	loading   = session.State{Loading: true}
	anonymous = session.State{}
	signedIn  = session.State{Token: "t", User: &client.User{ID: 1, Username: "alice"}}
)

func TestRequireAuth(t *testing.T) {
	assert.Equal(t, Decision{Kind: Wait}, RequireAuth(loading))
	assert.Equal(t, Decision{Kind: Redirect, Target: Login}, RequireAuth(anonymous))
	assert.Equal(t, Decision{Kind: Grant}, RequireAuth(signedIn))
}

func TestRequireAnonymous(t *testing.T) {
	assert.Equal(t, Decision{Kind: Wait}, RequireAnonymous(loading))
	assert.Equal(t, Decision{Kind: Grant}, RequireAnonymous(anonymous))
	assert.Equal(t, Decision{Kind: Redirect, Target: Home}, RequireAnonymous(signedIn))
}

func TestEvaluate_Table(t *testing.T) {
	tests := []struct {
		route Route
		state session.State
		want  Decision
	}{
		{Home, loading, Decision{Kind: Grant}},
		{PollDetail, anonymous, Decision{Kind: Grant}},
		{CreatePoll, anonymous, Decision{Kind: Redirect, Target: Login}},
		{EditPoll, anonymous, Decision{Kind: Redirect, Target: Login}},
		{MyPolls, loading, Decision{Kind: Wait}},
		{MyPolls, signedIn, Decision{Kind: Grant}},
		{Login, signedIn, Decision{Kind: Redirect, Target: Home}},
		{Register, signedIn, Decision{Kind: Redirect, Target: Home}},
		{Register, anonymous, Decision{Kind: Grant}},
	}
	for _, tt := range tests {
		t.Run(tt.route.String(), func(t *testing.T) {
			assert.Equal(t, tt.want, Evaluate(tt.route, tt.state))
		})
	}
}

func TestResolve(t *testing.T) {
	r, d := Resolve(MyPolls, anonymous)
	assert.Equal(t, Login, r)
	assert.Equal(t, Grant, d.Kind)

	r, d = Resolve(Login, signedIn)
	assert.Equal(t, Home, r)
	assert.Equal(t, Grant, d.Kind)

	r, d = Resolve(CreatePoll, loading)
	assert.Equal(t, CreatePoll, r)
	assert.Equal(t, Wait, d.Kind)
}

func TestParseRoute(t *testing.T) {
	assert.Equal(t, MyPolls, ParseRoute("my-polls"))
	assert.Equal(t, Home, ParseRoute("nowhere"))
	assert.Equal(t, "home", Route(42).String())
}

// ABOUTME: Tests for the login, register, logout, and whoami commands
// ABOUTME: Runs against the fake backend with a non-interactive environment

package cmd

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/arizayilmaz/voteverse/internal/client"
	"github.com/arizayilmaz/voteverse/internal/forms"
	"github.com/arizayilmaz/voteverse/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunLogin_Success(t *testing.T) {
	c := newCLI(t)
	c.backend.AddUser("carol", "secret")

	code := runLogin(context.Background(), c.env, forms.LoginForm{UsernameOrEmail: "carol", Password: "secret"})

	require.Equal(t, exitOK, code, c.errOut.String())
	assert.Equal(t, "Logged in as carol.\n", c.out.String())
	assert.True(t, c.env.session.IsAuthenticated())

	token, user, err := c.store.Load()
	require.NoError(t, err)
	assert.NotEmpty(t, token)
	assert.Contains(t, string(user), `"username":"carol"`)
}

func TestRunLogin_BadCredentials(t *testing.T) {
	c := newCLI(t)
	c.backend.AddUser("carol", "secret")

	code := runLogin(context.Background(), c.env, forms.LoginForm{UsernameOrEmail: "carol", Password: "nope"})

	assert.Equal(t, exitFailure, code)
	assert.Contains(t, c.errOut.String(), client.MsgInvalidCredentials)
	assert.False(t, c.env.session.IsAuthenticated())
}

func TestRunLogin_MissingFieldsNotSent(t *testing.T) {
	c := newCLI(t)

	code := runLogin(context.Background(), c.env, forms.LoginForm{Password: "secret"})

	assert.Equal(t, exitFailure, code)
	assert.Contains(t, c.errOut.String(), "Username is required")
	assert.Zero(t, c.backend.Count("POST", "/api/auth/login"))
}

func TestRunLogin_Unreachable(t *testing.T) {
	c := newCLIAt(t, testutil.NewBackend(t), "http://127.0.0.1:1/api")

	code := runLogin(context.Background(), c.env, forms.LoginForm{UsernameOrEmail: "carol", Password: "secret"})

	assert.Equal(t, exitUnreachable, code)
	assert.Contains(t, c.errOut.String(), client.MsgBackendUnreachable)
}

func TestRunRegister_JSON(t *testing.T) {
	c := newCLI(t)
	c.env.json = true

	code := runRegister(context.Background(), c.env, forms.RegisterForm{
		Username: "dave",
		Email:    "dave@example.com",
		Password: "secret1",
		FullName: "Dave D",
	})

	require.Equal(t, exitOK, code, c.errOut.String())
	var user client.User
	require.NoError(t, json.Unmarshal(c.out.Bytes(), &user))
	assert.Equal(t, "dave", user.Username)
	assert.Equal(t, "Dave D", user.FullName)
	assert.True(t, c.env.session.IsAuthenticated())
}

func TestRunRegister_InvalidEmail(t *testing.T) {
	c := newCLI(t)

	code := runRegister(context.Background(), c.env, forms.RegisterForm{
		Username: "dave",
		Email:    "not-an-email",
		Password: "secret1",
	})

	assert.Equal(t, exitFailure, code)
	assert.Contains(t, c.errOut.String(), "Enter a valid email address")
	assert.Zero(t, c.backend.Count("POST", "/api/auth/register"))
}

func TestRunRegister_ServerRejects(t *testing.T) {
	c := newCLI(t)
	c.backend.Fail("POST", "/api/auth/register", 400, "Username is already taken!")

	code := runRegister(context.Background(), c.env, forms.RegisterForm{
		Username: "dave",
		Email:    "dave@example.com",
		Password: "secret1",
	})

	assert.Equal(t, exitFailure, code)
	assert.Contains(t, c.errOut.String(), "Username is already taken!")
	assert.False(t, c.env.session.IsAuthenticated())
}

func TestRunLogout(t *testing.T) {
	c := newCLI(t)
	c.signIn(t, "alice")

	assert.Equal(t, exitOK, runLogout(c.env))
	assert.Equal(t, "Logged out.\n", c.out.String())
	assert.False(t, c.env.session.IsAuthenticated())

	c.reset()
	assert.Equal(t, exitOK, runLogout(c.env))
	assert.Equal(t, "Not logged in.\n", c.out.String())
}

func TestRunWhoami(t *testing.T) {
	c := newCLI(t)
	assert.Equal(t, exitAuth, runWhoami(c.env))

	c.signIn(t, "alice")
	c.reset()
	assert.Equal(t, exitOK, runWhoami(c.env))
	assert.Contains(t, c.out.String(), "Username:  alice")
	assert.Contains(t, c.out.String(), "alice@example.com")
}

// ABOUTME: Shared test harness for the command tests
// ABOUTME: Builds an environment over a fake backend and an in-memory session

package cmd

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/arizayilmaz/voteverse/internal/client"
	"github.com/arizayilmaz/voteverse/internal/config"
	"github.com/arizayilmaz/voteverse/internal/session"
	"github.com/arizayilmaz/voteverse/internal/testutil"
	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2026, 1, 3, 12, 0, 0, 0, time.UTC)

type cli struct {
	backend *testutil.Backend
	store   *session.MemoryStore
	env     *environment
	out     bytes.Buffer
	errOut  bytes.Buffer
}

func newCLI(t *testing.T) *cli {
	t.Helper()
	backend := testutil.NewBackend(t)
	return newCLIAt(t, backend, backend.URL())
}

func newCLIAt(t *testing.T, backend *testutil.Backend, apiURL string) *cli {
	t.Helper()
	c := &cli{backend: backend, store: session.NewMemoryStore()}
	cfg := &config.Config{APIURL: apiURL, Timeout: 2 * time.Second}
	c.env = newEnvironment(cfg, c.store, &c.out, &c.errOut)
	c.env.now = func() time.Time { return testNow }
	return c
}

// signIn logs username in through the backend and adopts the session
func (c *cli) signIn(t *testing.T, username string) {
	t.Helper()
	c.backend.AddUser(username, "secret")
	resp, err := c.env.client.Auth.Login(context.Background(), &client.LoginRequest{UsernameOrEmail: username, Password: "secret"})
	require.NoError(t, err)
	require.NoError(t, c.env.session.Login(resp))
}

func (c *cli) reset() {
	c.out.Reset()
	c.errOut.Reset()
}

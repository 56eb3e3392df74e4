// ABOUTME: Tests for the poll commands
// ABOUTME: Covers listing, showing, creating, editing, and deleting polls

package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"
	"time"

	"github.com/arizayilmaz/voteverse/internal/client"
	"github.com/arizayilmaz/voteverse/internal/forms"
	"github.com/arizayilmaz/voteverse/internal/polls"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsePollID(t *testing.T) {
	c := newCLI(t)

	id, code := parsePollID(c.env, "42")
	assert.Equal(t, exitOK, code)
	assert.Equal(t, int64(42), id)

	for _, bad := range []string{"abc", "0", "-3"} {
		_, code := parsePollID(c.env, bad)
		assert.Equal(t, exitFailure, code, bad)
	}
	assert.Contains(t, c.errOut.String(), `invalid poll id "abc"`)
}

func TestRunPollsList_Human(t *testing.T) {
	c := newCLI(t)
	c.backend.AddPoll("owner", "Lunch?", "Pizza", "Sushi")
	c.backend.AddPoll("owner", "Dinner?", "Soup", "Salad")

	code := runPollsList(context.Background(), c.env, polls.NewPublicList(c.env.client), 0, false)

	require.Equal(t, exitOK, code, c.errOut.String())
	out := c.out.String()
	assert.Contains(t, out, "Lunch?")
	assert.Contains(t, out, "Dinner?")
	assert.Contains(t, out, "by owner")
	assert.NotContains(t, out, "More polls available")
}

func TestRunPollsList_Empty(t *testing.T) {
	c := newCLI(t)

	code := runPollsList(context.Background(), c.env, polls.NewPublicList(c.env.client), 0, false)

	assert.Equal(t, exitOK, code)
	assert.Equal(t, "No polls yet.\n", c.out.String())
}

func TestRunPollsList_AllPagesJSON(t *testing.T) {
	c := newCLI(t)
	c.env.json = true
	total := client.DefaultPageSize + 3
	for i := range total {
		c.backend.AddPoll("owner", fmt.Sprintf("Poll %d", i), "a", "b")
	}

	code := runPollsList(context.Background(), c.env, polls.NewPublicList(c.env.client), 0, true)

	require.Equal(t, exitOK, code, c.errOut.String())
	var got pollListJSON
	require.NoError(t, json.Unmarshal(c.out.Bytes(), &got))
	assert.Len(t, got.Polls, total)
	assert.False(t, got.HasMore)
	assert.Equal(t, 2, c.backend.Count("GET", "/api/polls/public"))
}

func TestRunPollsList_FirstPageHasMore(t *testing.T) {
	c := newCLI(t)
	for i := range client.DefaultPageSize + 1 {
		c.backend.AddPoll("owner", fmt.Sprintf("Poll %d", i), "a", "b")
	}

	code := runPollsList(context.Background(), c.env, polls.NewPublicList(c.env.client), 0, false)

	require.Equal(t, exitOK, code)
	assert.Contains(t, c.out.String(), "More polls available")
}

func TestRunPollsList_Mine(t *testing.T) {
	c := newCLI(t)
	c.signIn(t, "alice")
	c.backend.AddPoll("alice", "Mine", "a", "b")
	c.backend.AddPoll("owner", "Theirs", "a", "b")

	code := runPollsList(context.Background(), c.env, polls.NewMyList(c.env.client), 0, false)

	require.Equal(t, exitOK, code, c.errOut.String())
	assert.Contains(t, c.out.String(), "Mine")
	assert.NotContains(t, c.out.String(), "Theirs")
}

func TestRunPollsList_Unreachable(t *testing.T) {
	c := newCLIAt(t, nil, "http://127.0.0.1:1/api")

	code := runPollsList(context.Background(), c.env, polls.NewPublicList(c.env.client), 0, false)

	assert.Equal(t, exitUnreachable, code)
	assert.Contains(t, c.errOut.String(), client.MsgBackendUnreachable)
}

func TestRunPollsShow(t *testing.T) {
	c := newCLI(t)
	p := c.backend.AddPoll("owner", "Lunch?", "Pizza", "Sushi")

	code := runPollsShow(context.Background(), c.env, p.ID)

	require.Equal(t, exitOK, code, c.errOut.String())
	out := c.out.String()
	assert.Contains(t, out, "Lunch? [active]")
	assert.Contains(t, out, "Pizza")
	assert.Contains(t, out, "Log in to vote.")

	c.signIn(t, "alice")
	c.reset()
	require.Equal(t, exitOK, runPollsShow(context.Background(), c.env, p.ID))
	assert.Contains(t, c.out.String(), fmt.Sprintf("voteverse vote %d --option ID", p.ID))
}

func TestRunPollsShow_NotFound(t *testing.T) {
	c := newCLI(t)

	code := runPollsShow(context.Background(), c.env, 999)

	assert.Equal(t, exitFailure, code)
	assert.NotEmpty(t, c.errOut.String())
}

func TestRunPollsCreate(t *testing.T) {
	c := newCLI(t)
	c.signIn(t, "alice")

	code := runPollsCreate(context.Background(), c.env, &forms.PollForm{
		Title:   "  Lunch?  ",
		Options: []string{"Pizza", " ", "Sushi"},
	})

	require.Equal(t, exitOK, code, c.errOut.String())
	assert.Regexp(t, `^Created poll #\d+: Lunch\?\n$`, c.out.String())
	assert.Equal(t, 1, c.backend.Count("POST", "/api/polls"))
}

func TestRunPollsCreate_NotLoggedIn(t *testing.T) {
	c := newCLI(t)

	code := runPollsCreate(context.Background(), c.env, &forms.PollForm{Title: "Lunch?", Options: []string{"a", "b"}})

	assert.Equal(t, exitAuth, code)
	assert.Zero(t, c.backend.Count("POST", "/api/polls"))
}

func TestRunPollsCreate_Invalid(t *testing.T) {
	c := newCLI(t)
	c.signIn(t, "alice")

	code := runPollsCreate(context.Background(), c.env, &forms.PollForm{Title: "ab", Options: []string{"a", "b"}})

	assert.Equal(t, exitFailure, code)
	assert.Contains(t, c.errOut.String(), "Title must be at least 3 characters")
	assert.Zero(t, c.backend.Count("POST", "/api/polls"))
}

func TestRunPollsCreate_SessionExpired(t *testing.T) {
	c := newCLI(t)
	c.signIn(t, "alice")
	c.backend.RevokeTokens()

	code := runPollsCreate(context.Background(), c.env, &forms.PollForm{Title: "Lunch?", Options: []string{"a", "b"}})

	assert.Equal(t, exitAuth, code)
	assert.Contains(t, c.errOut.String(), "session has expired")
	assert.False(t, c.env.session.IsAuthenticated())
}

func TestRunPollsEdit(t *testing.T) {
	c := newCLI(t)
	c.signIn(t, "alice")
	p := c.backend.AddPoll("alice", "Lunch?", "Pizza", "Sushi")

	code := runPollsEdit(context.Background(), c.env, p.ID, func(f *forms.PollForm) {
		f.Title = "Lunch today?"
	})

	require.Equal(t, exitOK, code, c.errOut.String())
	assert.Equal(t, fmt.Sprintf("Updated poll #%d: Lunch today?\n", p.ID), c.out.String())
	assert.Equal(t, 1, c.backend.Count("PUT", fmt.Sprintf("/api/polls/%d", p.ID)))
}

func TestRunPollsEdit_TitleKeepsVotes(t *testing.T) {
	c := newCLI(t)
	c.signIn(t, "alice")
	p := c.backend.AddPoll("alice", "Lunch?", "Pizza", "Sushi")
	require.Equal(t, exitOK, runVote(context.Background(), c.env, p.ID, p.Options[0].ID))

	c.reset()
	c.env.json = true
	code := runPollsEdit(context.Background(), c.env, p.ID, func(f *forms.PollForm) {
		f.Title = "Lunch today?"
	})

	require.Equal(t, exitOK, code, c.errOut.String())
	var got client.Poll
	require.NoError(t, json.Unmarshal(c.out.Bytes(), &got))
	assert.Equal(t, "Lunch today?", got.Title)
	assert.Equal(t, int64(1), got.TotalVotes)
	assert.True(t, got.HasUserVoted)
}

func TestRunPollsEdit_ExpiredPollTitle(t *testing.T) {
	c := newCLI(t)
	c.signIn(t, "alice")
	p := c.backend.AddPoll("alice", "Lunch?", "Pizza", "Sushi")
	c.backend.SetExpiry(p.ID, time.Now().Add(-time.Hour))

	code := runPollsEdit(context.Background(), c.env, p.ID, func(f *forms.PollForm) {
		f.Title = "Lunch yesterday?"
	})

	require.Equal(t, exitOK, code, c.errOut.String())
	assert.Equal(t, fmt.Sprintf("Updated poll #%d: Lunch yesterday?\n", p.ID), c.out.String())
}

func TestRunPollsEdit_Invalid(t *testing.T) {
	c := newCLI(t)
	c.signIn(t, "alice")
	p := c.backend.AddPoll("alice", "Lunch?", "Pizza", "Sushi")

	code := runPollsEdit(context.Background(), c.env, p.ID, func(f *forms.PollForm) {
		f.Options = []string{"only one"}
	})

	assert.Equal(t, exitFailure, code)
	assert.Contains(t, c.errOut.String(), "Add at least 2 options")
	assert.Zero(t, c.backend.Count("PUT", fmt.Sprintf("/api/polls/%d", p.ID)))
}

func TestRunPollsDelete(t *testing.T) {
	c := newCLI(t)
	c.signIn(t, "alice")
	p := c.backend.AddPoll("alice", "Lunch?", "Pizza", "Sushi")
	path := fmt.Sprintf("/api/polls/%d", p.ID)

	t.Run("refuses without confirmation", func(t *testing.T) {
		c.reset()
		assert.Equal(t, exitFailure, runPollsDelete(context.Background(), c.env, p.ID, false, nil))
		assert.Contains(t, c.errOut.String(), "--yes")
		assert.Zero(t, c.backend.Count("DELETE", path))
	})

	t.Run("declined prompt", func(t *testing.T) {
		c.reset()
		c.env.interactive = true
		defer func() { c.env.interactive = false }()

		var asked string
		code := runPollsDelete(context.Background(), c.env, p.ID, false, func(title string) (bool, error) {
			asked = title
			return false, nil
		})
		assert.Equal(t, exitOK, code)
		assert.Equal(t, "Lunch?", asked)
		assert.Equal(t, "Canceled.\n", c.out.String())
		assert.Zero(t, c.backend.Count("DELETE", path))
	})

	t.Run("with --yes", func(t *testing.T) {
		c.reset()
		assert.Equal(t, exitOK, runPollsDelete(context.Background(), c.env, p.ID, true, nil))
		assert.Equal(t, fmt.Sprintf("Deleted poll #%d.\n", p.ID), c.out.String())
		assert.Equal(t, 1, c.backend.Count("DELETE", path))
	})
}

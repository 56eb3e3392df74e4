package polls

import (
	"context"
	"net/http"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/arizayilmaz/voteverse/internal/client"
	"github.com/arizayilmaz/voteverse/internal/session"
	"github.com/arizayilmaz/voteverse/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixture struct {
	backend *testutil.Backend
	session *session.Service
	client  *client.Client
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	backend := testutil.NewBackend(t)
	sess := session.New(session.NewMemoryStore())
	sess.Rehydrate()
	return &fixture{
		backend: backend,
		session: sess,
		client:  client.New(backend.URL(), client.WithTokenSource(sess)),
	}
}

func (f *fixture) signIn(t *testing.T, username string) {
	t.Helper()
	f.backend.AddUser(username, "secret")
	resp, err := f.client.Auth.Login(context.Background(), &client.LoginRequest{UsernameOrEmail: username, Password: "secret"})
	require.NoError(t, err)
	require.NoError(t, f.session.Login(resp))
}

func TestModeOf(t *testing.T) {
	tests := []struct {
		name string
		poll client.Poll
		auth bool
		want Mode
	}{
		{"anonymous", client.Poll{}, false, ModeReadOnly},
		{"signed in", client.Poll{}, true, ModeCanVote},
		{"expired", client.Poll{IsExpired: true}, true, ModeReadOnly},
		{"voted", client.Poll{HasUserVoted: true}, true, ModeHasVoted},
		{"voted and expired", client.Poll{HasUserVoted: true, IsExpired: true}, true, ModeHasVoted},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ModeOf(&tt.poll, tt.auth))
		})
	}
}

func TestCanRemoveVote(t *testing.T) {
	assert.False(t, CanRemoveVote(&client.Poll{HasUserVoted: true}))
	assert.False(t, CanRemoveVote(&client.Poll{AllowMultipleVotes: true}))
	assert.True(t, CanRemoveVote(&client.Poll{AllowMultipleVotes: true, HasUserVoted: true}))
}

func TestDetail_VoteRefetchesAndFlipsState(t *testing.T) {
	f := newFixture(t)
	poll := f.backend.AddPoll("owner", "Lunch?", "Pizza", "Sushi")
	f.signIn(t, "alice")
	ctx := context.Background()

	d := NewDetail(f.client, f.session, poll.ID)
	_, err := d.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, ModeCanVote, d.Mode())

	updated, err := d.Vote(ctx, poll.Options[1].ID)
	require.NoError(t, err)
	assert.True(t, updated.HasUserVoted)
	assert.Equal(t, int64(1), updated.TotalVotes)
	assert.Equal(t, int64(1), updated.Options[1].VoteCount)
	assert.Equal(t, ModeHasVoted, d.Mode())
	assert.False(t, d.CanRemoveVote())

	path := "/api/polls/public/" + itoa(poll.ID)
	assert.Equal(t, 2, f.backend.Count(http.MethodGet, path))

	_, err = d.Vote(ctx, poll.Options[0].ID)
	assert.ErrorIs(t, err, ErrVoteNotAllowed)
}

func TestDetail_VoteRejectedWhenAnonymousOrExpired(t *testing.T) {
	f := newFixture(t)
	poll := f.backend.AddPoll("owner", "Old", "A", "B")
	ctx := context.Background()

	d := NewDetail(f.client, f.session, poll.ID)
	_, err := d.Vote(ctx, poll.Options[0].ID)
	assert.ErrorIs(t, err, ErrNotLoaded)

	_, err = d.Load(ctx)
	require.NoError(t, err)
	_, err = d.Vote(ctx, poll.Options[0].ID)
	assert.ErrorIs(t, err, ErrVoteNotAllowed)

	f.signIn(t, "alice")
	f.backend.SetExpiry(poll.ID, time.Now().Add(-time.Hour))
	_, err = d.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, ModeReadOnly, d.Mode())
	_, err = d.Vote(ctx, poll.Options[0].ID)
	assert.ErrorIs(t, err, ErrVoteNotAllowed)

	assert.Zero(t, f.backend.Count(http.MethodPost, "/api/votes/polls/"+itoa(poll.ID)))
}

func TestDetail_UnknownOption(t *testing.T) {
	f := newFixture(t)
	poll := f.backend.AddPoll("owner", "Lunch?", "Pizza", "Sushi")
	f.signIn(t, "alice")
	ctx := context.Background()

	d := NewDetail(f.client, f.session, poll.ID)
	_, err := d.Load(ctx)
	require.NoError(t, err)

	_, err = d.Vote(ctx, 9999)
	assert.ErrorIs(t, err, ErrUnknownOption)
}

func TestDetail_RemoveVote(t *testing.T) {
	f := newFixture(t)
	poll := f.backend.AddPoll("owner", "Colours", "Red", "Blue")
	f.backend.SetMultipleVotes(poll.ID, true)
	f.signIn(t, "alice")
	ctx := context.Background()

	d := NewDetail(f.client, f.session, poll.ID)
	_, err := d.Load(ctx)
	require.NoError(t, err)

	_, err = d.RemoveVote(ctx)
	assert.ErrorIs(t, err, ErrRemoveNotAllowed)

	_, err = d.Vote(ctx, poll.Options[0].ID)
	require.NoError(t, err)
	assert.True(t, d.CanRemoveVote())

	updated, err := d.RemoveVote(ctx)
	require.NoError(t, err)
	assert.False(t, updated.HasUserVoted)
	assert.Zero(t, updated.TotalVotes)
	assert.Equal(t, ModeCanVote, d.Mode())
}

func TestDetail_VoteErrorLeavesPollUnchanged(t *testing.T) {
	f := newFixture(t)
	poll := f.backend.AddPoll("owner", "Lunch?", "Pizza", "Sushi")
	f.signIn(t, "alice")
	ctx := context.Background()

	d := NewDetail(f.client, f.session, poll.ID)
	_, err := d.Load(ctx)
	require.NoError(t, err)

	f.backend.Fail(http.MethodPost, "/api/votes/polls/"+itoa(poll.ID), http.StatusBadRequest, "You have already voted on this poll")
	_, err = d.Vote(ctx, poll.Options[0].ID)
	require.Error(t, err)
	assert.Equal(t, "You have already voted on this poll", client.UserMessage(err, "Failed to vote"))
	assert.False(t, d.Poll().HasUserVoted)
}

func TestDetail_UnauthorizedReachesSessionHandler(t *testing.T) {
	f := newFixture(t)
	poll := f.backend.AddPoll("owner", "Lunch?", "Pizza", "Sushi")
	f.signIn(t, "alice")
	ctx := context.Background()

	d := NewDetail(f.client, f.session, poll.ID)
	_, err := d.Load(ctx)
	require.NoError(t, err)

	f.backend.RevokeTokens()
	_, err = d.Vote(ctx, poll.Options[0].ID)
	require.ErrorIs(t, err, client.ErrUnauthorized)
	assert.True(t, f.session.HandleError(err))
	assert.False(t, f.session.IsAuthenticated())
}

func TestDetail_ConcurrentVotesCollapse(t *testing.T) {
	f := newFixture(t)
	poll := f.backend.AddPoll("owner", "Lunch?", "Pizza", "Sushi")
	f.signIn(t, "alice")
	ctx := context.Background()

	d := NewDetail(f.client, f.session, poll.ID)
	_, err := d.Load(ctx)
	require.NoError(t, err)

	var wg sync.WaitGroup
	errs := make([]error, 5)
	for i := range errs {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, errs[i] = d.Vote(ctx, poll.Options[0].ID)
		}()
	}
	wg.Wait()

	// every caller either joined the single request or saw the voted state
	posts := f.backend.Count(http.MethodPost, "/api/votes/polls/"+itoa(poll.ID))
	assert.Equal(t, 1, posts)
	for _, err := range errs {
		if err != nil {
			assert.ErrorIs(t, err, ErrVoteNotAllowed)
		}
	}
}

type hookTransport struct {
	hook func(*http.Request)
}

func (h *hookTransport) RoundTrip(r *http.Request) (*http.Response, error) {
	if h.hook != nil {
		h.hook(r)
	}
	return http.DefaultTransport.RoundTrip(r)
}

func TestDetail_VoteSucceedsWhenRefreshIsSuperseded(t *testing.T) {
	f := newFixture(t)
	poll := f.backend.AddPoll("owner", "Lunch?", "Pizza", "Sushi")
	f.signIn(t, "alice")
	ctx := context.Background()

	tr := &hookTransport{}
	c := client.New(f.backend.URL(), client.WithTokenSource(f.session), client.WithHTTPClient(&http.Client{Transport: tr}))
	d := NewDetail(c, f.session, poll.ID)
	_, err := d.Load(ctx)
	require.NoError(t, err)

	// a newer load starts while the post-vote refresh is in flight
	tr.hook = func(r *http.Request) {
		if r.Method == http.MethodGet {
			d.gen.Next()
		}
	}
	p, err := d.Vote(ctx, poll.Options[0].ID)
	require.NoError(t, err)
	require.NotNil(t, p)
	assert.Equal(t, poll.ID, p.ID)
	assert.Equal(t, 1, f.backend.Count(http.MethodPost, "/api/votes/polls/"+itoa(poll.ID)))
}

func TestLists_LoadMoreAndDelete(t *testing.T) {
	f := newFixture(t)
	f.signIn(t, "alice")
	for i := range 12 {
		f.backend.AddPoll("alice", "Poll "+itoa(int64(i+1)), "A", "B")
	}
	f.backend.AddPoll("bob", "Not mine", "A", "B")
	ctx := context.Background()

	mine := NewMyList(f.client)
	require.NoError(t, mine.Reload(ctx))
	assert.Len(t, mine.Items(), 10)
	assert.Equal(t, "Poll 12", mine.Items()[0].Title)
	require.NoError(t, mine.LoadMore(ctx))
	assert.Len(t, mine.Items(), 12)
	assert.False(t, mine.HasMore())

	target := mine.Items()[3]
	require.NoError(t, DeletePoll(ctx, f.client, mine, target.ID))
	items := mine.Items()
	assert.Len(t, items, 11)
	for _, p := range items {
		assert.NotEqual(t, target.ID, p.ID)
	}
	assert.Equal(t, "Poll 12", items[0].Title)
	assert.Equal(t, "Poll 10", items[2].Title)
	assert.Equal(t, "Poll 8", items[3].Title)

	public := NewPublicList(f.client)
	require.NoError(t, LoadAll(ctx, public))
	assert.Len(t, public.Items(), 12)
}

func TestDeletePoll_ForbiddenKeepsItem(t *testing.T) {
	f := newFixture(t)
	poll := f.backend.AddPoll("bob", "Bob's", "A", "B")
	f.signIn(t, "alice")
	ctx := context.Background()

	public := NewPublicList(f.client)
	require.NoError(t, public.Reload(ctx))

	err := DeletePoll(ctx, f.client, public, poll.ID)
	assert.ErrorIs(t, err, client.ErrForbidden)
	assert.Len(t, public.Items(), 1)
}

func itoa(n int64) string {
	return strconv.FormatInt(n, 10)
}

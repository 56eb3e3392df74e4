// ABOUTME: Single-poll view state: load, vote, and vote removal
// ABOUTME: Every successful mutation re-fetches the poll so counts come from the server

package polls

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/arizayilmaz/voteverse/internal/client"
	"github.com/arizayilmaz/voteverse/internal/inflight"
	"github.com/arizayilmaz/voteverse/internal/session"
)

var (
	ErrNotLoaded         = errors.New("poll not loaded")
	ErrVoteNotAllowed    = errors.New("voting is not available for this poll")
	ErrUnknownOption     = errors.New("option does not belong to this poll")
	ErrRemoveNotAllowed  = errors.New("this vote cannot be removed")
	ErrStaleDetail       = errors.New("poll response superseded by a newer load")
	errUnexpectedPayload = errors.New("unexpected result type")
)

// Mode is the interaction state of a poll for the current viewer
type Mode int

const (
	ModeReadOnly Mode = iota
	ModeCanVote
	ModeHasVoted
)

func (m Mode) String() string {
	switch m {
	case ModeCanVote:
		return "can-vote"
	case ModeHasVoted:
		return "has-voted"
	}
	return "read-only"
}

// ModeOf derives the mode from server flags and whether the viewer is signed in
func ModeOf(p *client.Poll, authenticated bool) Mode {
	switch {
	case p.HasUserVoted:
		return ModeHasVoted
	case authenticated && !p.IsExpired:
		return ModeCanVote
	}
	return ModeReadOnly
}

// CanRemoveVote is true only when the poll allows changing votes and the
// viewer has already voted
func CanRemoveVote(p *client.Poll) bool {
	return p.AllowMultipleVotes && p.HasUserVoted
}

// Detail holds one poll and the actions available on it
type Detail struct {
	c       *client.Client
	session *session.Service
	id      int64

	gen     inflight.Generation
	actions inflight.Group

	mu   sync.Mutex
	poll *client.Poll
}

// NewDetail creates the view state for poll id
func NewDetail(c *client.Client, sess *session.Service, id int64) *Detail {
	return &Detail{c: c, session: sess, id: id}
}

// ID is the poll id
func (d *Detail) ID() int64 { return d.id }

// Poll returns the last loaded poll or nil
func (d *Detail) Poll() *client.Poll {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.poll == nil {
		return nil
	}
	p := *d.poll
	return &p
}

// Mode is the current interaction mode; ModeReadOnly before the first load
func (d *Detail) Mode() Mode {
	p := d.Poll()
	if p == nil {
		return ModeReadOnly
	}
	return ModeOf(p, d.session.IsAuthenticated())
}

// CanRemoveVote reports whether RemoveVote is available
func (d *Detail) CanRemoveVote() bool {
	p := d.Poll()
	return p != nil && CanRemoveVote(p)
}

// Busy reports whether a vote or removal is running
func (d *Detail) Busy() bool {
	return d.actions.Busy(actionKey)
}

// Load fetches the poll. A response overtaken by a later Load is discarded.
func (d *Detail) Load(ctx context.Context) (*client.Poll, error) {
	ticket := d.gen.Next()
	p, err := d.c.Polls.Get(ctx, d.id)
	if !d.gen.Current(ticket) {
		return nil, ErrStaleDetail
	}
	if err != nil {
		return nil, err
	}

	d.mu.Lock()
	d.poll = p
	d.mu.Unlock()
	return d.Poll(), nil
}

// one key for both mutations: a vote and a removal never overlap
const actionKey = "vote"

// Vote casts a vote for optionID and returns the refreshed poll
func (d *Detail) Vote(ctx context.Context, optionID int64) (*client.Poll, error) {
	check := func(p *client.Poll) error {
		if ModeOf(p, d.session.IsAuthenticated()) != ModeCanVote {
			return ErrVoteNotAllowed
		}
		if _, ok := p.Option(optionID); !ok {
			return fmt.Errorf("%w: %d", ErrUnknownOption, optionID)
		}
		return nil
	}

	return d.mutate(ctx, check, func(ctx context.Context) error {
		_, err := d.c.Votes.Cast(ctx, d.id, optionID)
		if err == nil {
			slog.Info("Vote cast", "poll_id", d.id, "option_id", optionID)
		}
		return err
	})
}

// RemoveVote withdraws the viewer's vote and returns the refreshed poll
func (d *Detail) RemoveVote(ctx context.Context) (*client.Poll, error) {
	check := func(p *client.Poll) error {
		if !CanRemoveVote(p) {
			return ErrRemoveNotAllowed
		}
		return nil
	}

	return d.mutate(ctx, check, func(ctx context.Context) error {
		err := d.c.Votes.Remove(ctx, d.id)
		if err == nil {
			slog.Info("Vote removed", "poll_id", d.id)
		}
		return err
	})
}

// mutate runs action once per burst of identical requests. check runs before
// joining and again inside, so a caller that saw the poll before an earlier
// action finished does not repeat it.
func (d *Detail) mutate(ctx context.Context, check func(*client.Poll) error, action func(context.Context) error) (*client.Poll, error) {
	verify := func() error {
		p := d.Poll()
		if p == nil {
			return ErrNotLoaded
		}
		return check(p)
	}
	if err := verify(); err != nil {
		return nil, err
	}

	v, _, err := d.actions.Do(ctx, actionKey, func(ctx context.Context) (any, error) {
		if err := verify(); err != nil {
			return nil, err
		}
		if err := action(ctx); err != nil {
			return nil, err
		}
		p, err := d.Load(ctx)
		if errors.Is(err, ErrStaleDetail) {
			// the action landed; a newer load owns the refresh
			return d.Poll(), nil
		}
		return p, err
	})
	if err != nil {
		return nil, err
	}
	p, ok := v.(*client.Poll)
	if !ok {
		return nil, errUnexpectedPayload
	}
	return p, nil
}

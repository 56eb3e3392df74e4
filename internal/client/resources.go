// ABOUTME: Resource groups of the Voteverse API: auth, polls, votes
// ABOUTME: Each method is a direct request/response mapping with no retry or caching

package client

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
)

// AuthAPI groups the credential endpoints
type AuthAPI struct {
	c *Client
}

// Login calls POST /auth/login
func (a *AuthAPI) Login(ctx context.Context, in *LoginRequest) (*AuthResponse, error) {
	var out AuthResponse
	if err := a.c.do(ctx, http.MethodPost, "/auth/login", nil, in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Register calls POST /auth/register
func (a *AuthAPI) Register(ctx context.Context, in *RegisterRequest) (*AuthResponse, error) {
	var out AuthResponse
	if err := a.c.do(ctx, http.MethodPost, "/auth/register", nil, in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// PollsAPI groups the poll endpoints
type PollsAPI struct {
	c *Client
}

// List calls GET /polls/public
func (p *PollsAPI) List(ctx context.Context, page PageRequest) (*Page[Poll], error) {
	var out Page[Poll]
	if err := p.c.do(ctx, http.MethodGet, "/polls/public", page.query(), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Get calls GET /polls/public/{id}
func (p *PollsAPI) Get(ctx context.Context, id int64) (*Poll, error) {
	var out Poll
	if err := p.c.do(ctx, http.MethodGet, pollPath("/polls/public/", id), nil, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ListMine calls GET /polls/my
func (p *PollsAPI) ListMine(ctx context.Context, page PageRequest) (*Page[Poll], error) {
	var out Page[Poll]
	if err := p.c.do(ctx, http.MethodGet, "/polls/my", page.query(), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Create calls POST /polls
func (p *PollsAPI) Create(ctx context.Context, in *CreatePollRequest) (*Poll, error) {
	var out Poll
	if err := p.c.do(ctx, http.MethodPost, "/polls", nil, in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Update calls PUT /polls/{id}
func (p *PollsAPI) Update(ctx context.Context, id int64, in *UpdatePollRequest) (*Poll, error) {
	var out Poll
	if err := p.c.do(ctx, http.MethodPut, pollPath("/polls/", id), nil, in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Delete calls DELETE /polls/{id}
func (p *PollsAPI) Delete(ctx context.Context, id int64) error {
	return p.c.do(ctx, http.MethodDelete, pollPath("/polls/", id), nil, nil, nil)
}

// VotesAPI groups the vote endpoints
type VotesAPI struct {
	c *Client
}

// Cast calls POST /votes/polls/{id}; a second vote replaces the first
func (v *VotesAPI) Cast(ctx context.Context, pollID, optionID int64) (*Vote, error) {
	var out Vote
	in := &VoteRequest{OptionID: optionID}
	if err := v.c.do(ctx, http.MethodPost, pollPath("/votes/polls/", pollID), nil, in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ListMine calls GET /votes/my
func (v *VotesAPI) ListMine(ctx context.Context) ([]Vote, error) {
	var out []Vote
	if err := v.c.do(ctx, http.MethodGet, "/votes/my", nil, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Remove calls DELETE /votes/polls/{id}
func (v *VotesAPI) Remove(ctx context.Context, pollID int64) error {
	return v.c.do(ctx, http.MethodDelete, pollPath("/votes/polls/", pollID), nil, nil, nil)
}

func pollPath(prefix string, id int64) string {
	return prefix + strconv.FormatInt(id, 10)
}

func (r PageRequest) query() url.Values {
	q := url.Values{}
	q.Set("page", strconv.Itoa(r.Page))
	size := r.Size
	if size <= 0 {
		size = DefaultPageSize
	}
	q.Set("size", strconv.Itoa(size))
	if r.SortBy != "" {
		q.Set("sortBy", r.SortBy)
	}
	if r.SortDir != "" {
		q.Set("sortDir", r.SortDir)
	}
	return q
}

// String is used in log lines
func (r PageRequest) String() string {
	return fmt.Sprintf("page=%d size=%d sort=%s,%s", r.Page, r.Size, r.SortBy, r.SortDir)
}

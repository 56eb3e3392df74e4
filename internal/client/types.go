// ABOUTME: Wire types mirrored from the Voteverse REST backend
// ABOUTME: Includes a tolerant Timestamp for zone-less server date-times

package client

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"
)

// User is the identity projection returned by the backend
type User struct {
	ID        int64     `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	FullName  string    `json:"fullName,omitempty"`
	Active    bool      `json:"active"`
	CreatedAt Timestamp `json:"createdAt"`
}

// DisplayName prefers the full name and falls back to the username
func (u *User) DisplayName() string {
	if u.FullName != "" {
		return u.FullName
	}
	return u.Username
}

// LoginRequest is the body of POST /auth/login
type LoginRequest struct {
	UsernameOrEmail string `json:"usernameOrEmail"`
	Password        string `json:"password"`
}

// RegisterRequest is the body of POST /auth/register
type RegisterRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
	FullName string `json:"fullName,omitempty"`
}

// AuthResponse is returned by login and register
type AuthResponse struct {
	Token    string `json:"token"`
	Type     string `json:"type"`
	ID       int64  `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
	FullName string `json:"fullName,omitempty"`
}

// PollOption is one answer of a poll; counts and percentages are server-computed
type PollOption struct {
	ID             int64   `json:"id"`
	Text           string  `json:"text"`
	DisplayOrder   int     `json:"displayOrder"`
	VoteCount      int64   `json:"voteCount"`
	VotePercentage float64 `json:"votePercentage"`
}

// Poll as returned by the public and owner endpoints
type Poll struct {
	ID                 int64        `json:"id"`
	Title              string       `json:"title"`
	Description        string       `json:"description,omitempty"`
	Creator            User         `json:"creator"`
	Options            []PollOption `json:"options"`
	Active             bool         `json:"active"`
	AllowMultipleVotes bool         `json:"allowMultipleVotes"`
	ExpiresAt          *Timestamp   `json:"expiresAt,omitempty"`
	CreatedAt          Timestamp    `json:"createdAt"`
	UpdatedAt          Timestamp    `json:"updatedAt"`
	TotalVotes         int64        `json:"totalVotes"`
	HasUserVoted       bool         `json:"hasUserVoted"`
	IsExpired          bool         `json:"isExpired"`
}

// Option returns the option with the given id
func (p *Poll) Option(id int64) (PollOption, bool) {
	for _, o := range p.Options {
		if o.ID == id {
			return o, true
		}
	}
	return PollOption{}, false
}

// CreatePollRequest is the body of POST /polls
type CreatePollRequest struct {
	Title              string     `json:"title"`
	Description        string     `json:"description,omitempty"`
	Options            []string   `json:"options"`
	AllowMultipleVotes bool       `json:"allowMultipleVotes"`
	ExpiresAt          *Timestamp `json:"expiresAt,omitempty"`
}

// UpdatePollRequest is the body of PUT /polls/{id}; nil fields are left unchanged
type UpdatePollRequest struct {
	Title              *string    `json:"title,omitempty"`
	Description        *string    `json:"description,omitempty"`
	Options            []string   `json:"options,omitempty"`
	AllowMultipleVotes *bool      `json:"allowMultipleVotes,omitempty"`
	ExpiresAt          *Timestamp `json:"expiresAt,omitempty"`
}

// VoteRequest is the body of POST /votes/polls/{id}
type VoteRequest struct {
	OptionID int64 `json:"optionId"`
}

// Vote joins a user, a poll, and the chosen option
type Vote struct {
	ID         int64     `json:"id"`
	PollID     int64     `json:"pollId"`
	PollTitle  string    `json:"pollTitle"`
	OptionID   int64     `json:"optionId"`
	OptionText string    `json:"optionText"`
	CreatedAt  Timestamp `json:"createdAt"`
}

// Page is one slice of a paginated listing
type Page[T any] struct {
	Content       []T   `json:"content"`
	TotalElements int64 `json:"totalElements"`
	TotalPages    int   `json:"totalPages"`
	Size          int   `json:"size"`
	Number        int   `json:"number"`
	First         bool  `json:"first"`
	Last          bool  `json:"last"`
}

// Listing defaults shared by every paginated view
const (
	DefaultPageSize = 10
	DefaultSortBy   = "createdAt"
	DefaultSortDir  = "desc"
)

// PageRequest selects a page of a listing
type PageRequest struct {
	Page    int
	Size    int
	SortBy  string
	SortDir string
}

// NewPageRequest returns the default request (size 10, newest first) for page
func NewPageRequest(page int) PageRequest {
	return PageRequest{
		Page:    page,
		Size:    DefaultPageSize,
		SortBy:  DefaultSortBy,
		SortDir: DefaultSortDir,
	}
}

// Timestamp is a time.Time that also decodes zone-less ISO-8601 date-times
type Timestamp struct {
	time.Time
}

var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
}

// NewTimestamp wraps t
func NewTimestamp(t time.Time) Timestamp {
	return Timestamp{Time: t}
}

// UnmarshalJSON implements json.Unmarshaler
func (ts *Timestamp) UnmarshalJSON(data []byte) error {
	if bytes.Equal(data, []byte("null")) {
		ts.Time = time.Time{}
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("timestamp must be a string: %w", err)
	}
	if s == "" {
		ts.Time = time.Time{}
		return nil
	}
	for i, layout := range timestampLayouts {
		var (
			t   time.Time
			err error
		)
		if i == 0 {
			t, err = time.Parse(layout, s)
		} else {
			t, err = time.ParseInLocation(layout, s, time.Local)
		}
		if err == nil {
			ts.Time = t
			return nil
		}
	}
	return fmt.Errorf("unrecognized timestamp %q", s)
}

// MarshalJSON implements json.Marshaler
func (ts Timestamp) MarshalJSON() ([]byte, error) {
	if ts.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(ts.UTC().Format(time.RFC3339Nano))
}

// ABOUTME: Poll create/edit form state and its conversion into API requests
// ABOUTME: Validation happens locally; an invalid form never reaches the network

package forms

import (
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/arizayilmaz/voteverse/internal/client"
)

// Option and length bounds of a poll
const (
	MinOptions        = 2
	MaxOptions        = 10
	MaxTitleLen       = 200
	MaxDescriptionLen = 1000
	MaxOptionLen      = 500
)

// Layouts accepted for an absolute expiry, besides RFC 3339
var expiryLayouts = []string{
	"2006-01-02T15:04",
	"2006-01-02 15:04",
}

// PollForm is the editable state of the create and edit screens
type PollForm struct {
	Title              string
	Description        string
	Options            []string
	AllowMultipleVotes bool
	// ExpiresAt is free text: an absolute date-time or a duration such as "48h"
	ExpiresAt string

	// values loaded by PollFormFrom; unchanged ones are left out of updates
	loaded      bool
	origOptions []string
	origExpiry  string
}

// NewPollForm returns an empty form with the minimum number of option slots
func NewPollForm() *PollForm {
	return &PollForm{Options: make([]string, MinOptions)}
}

// PollFormFrom prefills a form from an existing poll
func PollFormFrom(p *client.Poll) *PollForm {
	f := &PollForm{
		Title:              p.Title,
		Description:        p.Description,
		AllowMultipleVotes: p.AllowMultipleVotes,
	}
	for _, o := range p.Options {
		f.Options = append(f.Options, o.Text)
		f.origOptions = append(f.origOptions, strings.TrimSpace(o.Text))
	}
	for len(f.Options) < MinOptions {
		f.Options = append(f.Options, "")
	}
	if p.ExpiresAt != nil && !p.ExpiresAt.IsZero() {
		f.ExpiresAt = p.ExpiresAt.Local().Format(expiryLayouts[0])
	}
	f.loaded = true
	f.origExpiry = f.ExpiresAt
	return f
}

func (f *PollForm) CanAddOption() bool {
	return len(f.Options) < MaxOptions
}

func (f *PollForm) CanRemoveOption() bool {
	return len(f.Options) > MinOptions
}

// AddOption appends an empty option slot; it reports false at the upper bound
func (f *PollForm) AddOption() bool {
	if !f.CanAddOption() {
		return false
	}
	f.Options = append(f.Options, "")
	return true
}

// RemoveOption deletes slot i; it reports false at the lower bound or for a bad index
func (f *PollForm) RemoveOption(i int) bool {
	if !f.CanRemoveOption() || i < 0 || i >= len(f.Options) {
		return false
	}
	f.Options = append(f.Options[:i], f.Options[i+1:]...)
	return true
}

type pollInput struct {
	Title       string   `json:"title" validate:"required,min=3,max=200"`
	Description string   `json:"description" validate:"max=1000"`
	Options     []string `json:"options" validate:"min=2,max=10,dive,max=500"`
}

// normalize trims text and drops blank options
func (f *PollForm) normalize() pollInput {
	in := pollInput{
		Title:       strings.TrimSpace(f.Title),
		Description: strings.TrimSpace(f.Description),
		Options:     []string{},
	}
	for _, o := range f.Options {
		if o = strings.TrimSpace(o); o != "" {
			in.Options = append(in.Options, o)
		}
	}
	return in
}

func (f *PollForm) validate(now time.Time) (pollInput, *client.Timestamp, error) {
	in := f.normalize()
	if err := check(&in); err != nil {
		return in, nil, err
	}
	expiry, err := ParseExpiry(f.ExpiresAt, now)
	if err != nil {
		return in, nil, err
	}
	return in, expiry, nil
}

// Build validates the form against now and returns the create request
func (f *PollForm) Build(now time.Time) (*client.CreatePollRequest, error) {
	in, expiry, err := f.validate(now)
	if err != nil {
		return nil, err
	}
	return &client.CreatePollRequest{
		Title:              in.Title,
		Description:        in.Description,
		Options:            in.Options,
		AllowMultipleVotes: f.AllowMultipleVotes,
		ExpiresAt:          expiry,
	}, nil
}

// BuildUpdate validates like Build and returns the update request. For a
// form from PollFormFrom, options are sent only when they changed, since the
// server resets votes on new options. An untouched expiry is neither checked
// nor sent, so an expired poll stays editable.
func (f *PollForm) BuildUpdate(now time.Time) (*client.UpdatePollRequest, error) {
	in := f.normalize()
	if err := check(&in); err != nil {
		return nil, err
	}

	var expiry *client.Timestamp
	if !f.loaded || strings.TrimSpace(f.ExpiresAt) != f.origExpiry {
		var err error
		if expiry, err = ParseExpiry(f.ExpiresAt, now); err != nil {
			return nil, err
		}
	}

	var options []string
	if !f.loaded || !slices.Equal(in.Options, f.origOptions) {
		options = in.Options
	}

	allow := f.AllowMultipleVotes
	return &client.UpdatePollRequest{
		Title:              &in.Title,
		Description:        &in.Description,
		Options:            options,
		AllowMultipleVotes: &allow,
		ExpiresAt:          expiry,
	}, nil
}

// CheckTitle validates a title on its own, for inline feedback while typing
func CheckTitle(s string) error {
	return checkVar("title", strings.TrimSpace(s), "required,min=3,max=200")
}

func CheckDescription(s string) error {
	return checkVar("description", strings.TrimSpace(s), "max=1000")
}

func CheckOption(s string) error {
	return checkVar("option", strings.TrimSpace(s), "max=500")
}

// ParseExpiry reads an expiry as RFC 3339, a local date-time, or a duration
// from now. Empty means no expiry. The result must lie strictly after now.
func ParseExpiry(s string, now time.Time) (*client.Timestamp, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}

	at, ok := parseExpiryTime(s, now)
	if !ok {
		return nil, &ValidationError{
			Field:   "expiresAt",
			Message: fmt.Sprintf("Unrecognized expiry %q; use 2006-01-02 15:04 or a duration like 48h", s),
		}
	}
	if !at.After(now) {
		return nil, &ValidationError{Field: "expiresAt", Message: "Expiry must be in the future"}
	}
	ts := client.NewTimestamp(at.UTC())
	return &ts, nil
}

func parseExpiryTime(s string, now time.Time) (time.Time, bool) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, true
	}
	for _, layout := range expiryLayouts {
		if t, err := time.ParseInLocation(layout, s, time.Local); err == nil {
			return t, true
		}
	}
	if d, err := time.ParseDuration(s); err == nil {
		return now.Add(d), true
	}
	return time.Time{}, false
}

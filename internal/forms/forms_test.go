package forms

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/arizayilmaz/voteverse/internal/client"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var now = time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)

func validForm() *PollForm {
	return &PollForm{
		Title:   "  Where to eat?  ",
		Options: []string{"Pizza", "  ", "Sushi", ""},
	}
}

func requireValidation(t *testing.T, err error, field string) *ValidationError {
	t.Helper()
	var ve *ValidationError
	require.True(t, errors.As(err, &ve), "expected ValidationError, got %v", err)
	assert.Equal(t, field, ve.Field)
	assert.True(t, IsValidation(err))
	return ve
}

func TestNewPollForm(t *testing.T) {
	f := NewPollForm()
	assert.Equal(t, []string{"", ""}, f.Options)
	assert.False(t, f.CanRemoveOption())
	assert.True(t, f.CanAddOption())
}

func TestOptionBounds(t *testing.T) {
	f := NewPollForm()
	for f.CanAddOption() {
		require.True(t, f.AddOption())
	}
	assert.Len(t, f.Options, MaxOptions)
	assert.False(t, f.AddOption())

	f.Options[3] = "keep"
	require.True(t, f.RemoveOption(2))
	assert.Equal(t, "keep", f.Options[2])
	assert.False(t, f.RemoveOption(-1))
	assert.False(t, f.RemoveOption(len(f.Options)))

	for f.CanRemoveOption() {
		require.True(t, f.RemoveOption(0))
	}
	assert.Len(t, f.Options, MinOptions)
	assert.False(t, f.RemoveOption(0))
}

func TestBuild_Valid(t *testing.T) {
	req, err := validForm().Build(now)
	require.NoError(t, err)
	assert.Equal(t, "Where to eat?", req.Title)
	assert.Equal(t, []string{"Pizza", "Sushi"}, req.Options)
	assert.Nil(t, req.ExpiresAt)
}

func TestBuild_TitleTooShort(t *testing.T) {
	f := validForm()
	f.Title = " ab "
	_, err := f.Build(now)
	ve := requireValidation(t, err, "title")
	assert.Equal(t, "Title must be at least 3 characters", ve.Message)
}

func TestBuild_TitleTooLong(t *testing.T) {
	f := validForm()
	f.Title = strings.Repeat("x", MaxTitleLen+1)
	_, err := f.Build(now)
	requireValidation(t, err, "title")
}

func TestBuild_DescriptionTooLong(t *testing.T) {
	f := validForm()
	f.Description = strings.Repeat("d", MaxDescriptionLen+1)
	_, err := f.Build(now)
	requireValidation(t, err, "description")
}

func TestBuild_BlankOptionsDoNotCount(t *testing.T) {
	f := validForm()
	f.Options = []string{"A", "", "  "}
	_, err := f.Build(now)
	ve := requireValidation(t, err, "options")
	assert.Equal(t, "Add at least 2 options", ve.Message)
}

func TestBuild_OptionTooLong(t *testing.T) {
	f := validForm()
	f.Options = []string{"A", strings.Repeat("o", MaxOptionLen+1)}
	_, err := f.Build(now)
	requireValidation(t, err, "options")
}

func TestBuild_Expiry(t *testing.T) {
	tests := []struct {
		name  string
		in    string
		want  time.Time
		field string
	}{
		{"rfc3339", "2026-05-02T08:00:00Z", time.Date(2026, 5, 2, 8, 0, 0, 0, time.UTC), ""},
		{"duration", "48h", now.Add(48 * time.Hour), ""},
		{"past", "2026-04-30T08:00:00Z", time.Time{}, "expiresAt"},
		{"exactly now", now.Format(time.RFC3339), time.Time{}, "expiresAt"},
		{"negative duration", "-1h", time.Time{}, "expiresAt"},
		{"garbage", "next tuesday", time.Time{}, "expiresAt"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := validForm()
			f.ExpiresAt = tt.in
			req, err := f.Build(now)
			if tt.field != "" {
				requireValidation(t, err, tt.field)
				return
			}
			require.NoError(t, err)
			require.NotNil(t, req.ExpiresAt)
			assert.True(t, req.ExpiresAt.Equal(tt.want), "got %v", req.ExpiresAt.Time)
			assert.Equal(t, time.UTC, req.ExpiresAt.Location())
		})
	}
}

func TestParseExpiry_LocalLayouts(t *testing.T) {
	future := time.Now().Add(72 * time.Hour).In(time.Local)
	for _, layout := range expiryLayouts {
		ts, err := ParseExpiry(future.Format(layout), time.Now())
		require.NoError(t, err)
		assert.Equal(t, future.Truncate(time.Minute).Unix(), ts.Unix())
	}
}

func TestBuildUpdate(t *testing.T) {
	f := validForm()
	f.AllowMultipleVotes = true
	req, err := f.BuildUpdate(now)
	require.NoError(t, err)
	require.NotNil(t, req.Title)
	assert.Equal(t, "Where to eat?", *req.Title)
	require.NotNil(t, req.AllowMultipleVotes)
	assert.True(t, *req.AllowMultipleVotes)

	f.Title = "x"
	_, err = f.BuildUpdate(now)
	requireValidation(t, err, "title")
}

func TestBuildUpdate_LoadedPollSendsOnlyChanges(t *testing.T) {
	past := client.NewTimestamp(now.Add(-time.Hour))
	p := &client.Poll{
		Title:     "Where to eat?",
		Options:   []client.PollOption{{ID: 1, Text: "Pizza"}, {ID: 2, Text: "Sushi"}},
		ExpiresAt: &past,
	}

	f := PollFormFrom(p)
	f.Title = "Where to eat tonight?"
	req, err := f.BuildUpdate(now)
	require.NoError(t, err, "an expired poll keeps its expiry and stays editable")
	assert.Equal(t, "Where to eat tonight?", *req.Title)
	assert.Nil(t, req.Options)
	assert.Nil(t, req.ExpiresAt)

	f = PollFormFrom(p)
	f.Options[1] = "Tacos"
	req, err = f.BuildUpdate(now)
	require.NoError(t, err)
	assert.Equal(t, []string{"Pizza", "Tacos"}, req.Options)

	f = PollFormFrom(p)
	f.ExpiresAt = "48h"
	req, err = f.BuildUpdate(now)
	require.NoError(t, err)
	require.NotNil(t, req.ExpiresAt)
	assert.True(t, req.ExpiresAt.Equal(now.Add(48*time.Hour)))

	f = PollFormFrom(p)
	f.ExpiresAt = "2020-01-01 10:00"
	_, err = f.BuildUpdate(now)
	requireValidation(t, err, "expiresAt")
}

func TestPollFormFrom(t *testing.T) {
	exp := client.NewTimestamp(time.Date(2026, 6, 1, 10, 30, 0, 0, time.UTC))
	p := &client.Poll{
		Title:              "Colour",
		Description:        "Pick one",
		Options:            []client.PollOption{{ID: 1, Text: "Red"}},
		AllowMultipleVotes: true,
		ExpiresAt:          &exp,
	}
	f := PollFormFrom(p)
	assert.Equal(t, "Colour", f.Title)
	assert.Equal(t, []string{"Red", ""}, f.Options)
	assert.True(t, f.AllowMultipleVotes)
	assert.Equal(t, exp.Local().Format("2006-01-02T15:04"), f.ExpiresAt)
}

func TestLoginForm(t *testing.T) {
	_, err := (&LoginForm{UsernameOrEmail: "  ", Password: "pw"}).Build()
	requireValidation(t, err, "username")

	_, err = (&LoginForm{UsernameOrEmail: "alice"}).Build()
	requireValidation(t, err, "password")

	req, err := (&LoginForm{UsernameOrEmail: " alice ", Password: "pw"}).Build()
	require.NoError(t, err)
	assert.Equal(t, "alice", req.UsernameOrEmail)
}

func TestRegisterForm(t *testing.T) {
	base := RegisterForm{Username: "alice", Email: "alice@example.com", Password: "secret1"}

	req, err := base.Build()
	require.NoError(t, err)
	assert.Equal(t, "alice", req.Username)

	bad := base
	bad.Email = "not-an-email"
	_, err = bad.Build()
	ve := requireValidation(t, err, "email")
	assert.Equal(t, "Enter a valid email address", ve.Message)

	bad = base
	bad.Username = "al"
	_, err = bad.Build()
	requireValidation(t, err, "username")

	bad = base
	bad.Password = "123"
	_, err = bad.Build()
	ve = requireValidation(t, err, "password")
	assert.NotEmpty(t, ve.Message)
}

func TestFieldChecks(t *testing.T) {
	require.NoError(t, CheckTitle("  Lunch?  "))
	ve := requireValidation(t, CheckTitle(" ab "), "title")
	assert.Equal(t, "Title must be at least 3 characters", ve.Message)
	requireValidation(t, CheckTitle(""), "title")

	require.NoError(t, CheckDescription(""))
	requireValidation(t, CheckDescription(strings.Repeat("d", MaxDescriptionLen+1)), "description")

	require.NoError(t, CheckOption(""))
	ve = requireValidation(t, CheckOption(strings.Repeat("o", MaxOptionLen+1)), "option")
	assert.Equal(t, "Option must be at most 500 characters", ve.Message)
}

func TestFieldCheckMessages(t *testing.T) {
	tests := []struct {
		name  string
		err   error
		field string
		want  string
	}{
		{"empty title", CheckTitle("   "), "title", "Title must be at least 3 characters"},
		{"short title", CheckTitle("ab"), "title", "Title must be at least 3 characters"},
		{"long title", CheckTitle(strings.Repeat("t", 201)), "title", "Title must be at most 200 characters"},
		{"long description", CheckDescription(strings.Repeat("d", 1001)), "description", "Description must be at most 1000 characters"},
		{"long option", CheckOption(strings.Repeat("o", 501)), "option", "Option must be at most 500 characters"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ve := requireValidation(t, tt.err, tt.field)
			assert.Equal(t, tt.want, ve.Message)
		})
	}
}

func TestCheckVarUnmappedTag(t *testing.T) {
	ve := requireValidation(t, checkVar("code", "abc", "numeric"), "code")
	assert.Equal(t, "code is invalid (numeric)", ve.Message)
}

// ABOUTME: Tests for badges and vote bars
// ABOUTME: Checks poll classification and bar widths

package widgets

import (
	"strings"
	"testing"

	"github.com/arizayilmaz/voteverse/internal/client"
	"github.com/arizayilmaz/voteverse/internal/polls"
	"github.com/charmbracelet/lipgloss"
)

func TestPollLevel(t *testing.T) {
	tests := []struct {
		poll  client.Poll
		text  string
		level StatusLevel
	}{
		{client.Poll{Active: true}, "ACTIVE", StatusOK},
		{client.Poll{Active: false}, "INACTIVE", StatusNeutral},
		{client.Poll{Active: true, IsExpired: true}, "EXPIRED", StatusCritical},
	}
	for _, tc := range tests {
		text, level := PollLevel(&tc.poll)
		if text != tc.text || level != tc.level {
			t.Errorf("expected %s/%d, got %s/%d", tc.text, tc.level, text, level)
		}
	}
}

func TestModeBadge(t *testing.T) {
	for mode, want := range map[polls.Mode]string{
		polls.ModeCanVote:  "CAN VOTE",
		polls.ModeHasVoted: "VOTED",
		polls.ModeReadOnly: "READ ONLY",
	} {
		if got := ModeBadge(mode); !strings.Contains(got, want) {
			t.Errorf("expected %q in badge, got %q", want, got)
		}
	}
}

func TestVoteBarWidth(t *testing.T) {
	cfg := DefaultVoteBarConfig()
	for _, pct := range []float64{-5, 0, 33.3, 100, 250} {
		if w := lipgloss.Width(VoteBar(pct, false, cfg)); w != cfg.Width {
			t.Errorf("percent %.1f: expected width %d, got %d", pct, cfg.Width, w)
		}
	}

	full := VoteBar(100, true, VoteBarConfig{Width: 4})
	if !strings.Contains(full, "████") {
		t.Errorf("expected a full bar, got %q", full)
	}
}

func TestVoteBarWithLabel(t *testing.T) {
	got := VoteBarWithLabel(62.5, 5, true, DefaultVoteBarConfig())
	if !strings.Contains(got, " 62.5% (5)") {
		t.Errorf("expected label, got %q", got)
	}
}

func TestStatusText(t *testing.T) {
	got := StatusText("Vote recorded.", StatusOK)
	if !strings.Contains(got, "Vote recorded.") {
		t.Errorf("expected text in %q", got)
	}
}

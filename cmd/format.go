// ABOUTME: Human-readable and JSON renderings shared by the CLI commands
// ABOUTME: Relative dates and counts go through go-humanize

package cmd

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/arizayilmaz/voteverse/internal/client"
	"github.com/arizayilmaz/voteverse/internal/polls"
	"github.com/dustin/go-humanize"
)

const barWidth = 20

// formatJSON renders v as indented JSON
func formatJSON(v any) string {
	data, _ := json.MarshalIndent(v, "", "  ")
	return string(data)
}

// pollStatus is the badge shown next to a poll
func pollStatus(p *client.Poll) string {
	switch {
	case p.IsExpired:
		return "expired"
	case !p.Active:
		return "inactive"
	}
	return "active"
}

func relTime(t time.Time, now time.Time) string {
	return humanize.RelTime(t, now, "ago", "from now")
}

func formatUserHuman(u *client.User) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Username:  %s\n", u.Username)
	fmt.Fprintf(&b, "Email:     %s\n", u.Email)
	if u.FullName != "" {
		fmt.Fprintf(&b, "Name:      %s\n", u.FullName)
	}
	fmt.Fprintf(&b, "User ID:   %d", u.ID)
	return b.String()
}

// formatPollListHuman renders one line per poll
func formatPollListHuman(items []client.Poll, hasMore bool, now time.Time) string {
	if len(items) == 0 {
		return "No polls yet."
	}

	var b strings.Builder
	for _, p := range items {
		fmt.Fprintf(&b, "#%-5d %s [%s]\n", p.ID, p.Title, pollStatus(&p))
		fmt.Fprintf(&b, "       by %s, %s, %d options, %s votes",
			p.Creator.DisplayName(), relTime(p.CreatedAt.Time, now), len(p.Options), humanize.Comma(p.TotalVotes))
		if p.ExpiresAt != nil && !p.ExpiresAt.IsZero() && !p.IsExpired {
			fmt.Fprintf(&b, ", closes %s", relTime(p.ExpiresAt.Time, now))
		}
		b.WriteString("\n")
	}
	if hasMore {
		b.WriteString("\nMore polls available (use --page or --all).")
	}
	return strings.TrimRight(b.String(), "\n")
}

// formatPollHuman renders a poll with its results
func formatPollHuman(p *client.Poll, mode polls.Mode, now time.Time) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s [%s]\n", p.Title, pollStatus(p))
	if p.Description != "" {
		fmt.Fprintf(&b, "%s\n", p.Description)
	}
	fmt.Fprintf(&b, "Created by %s %s", p.Creator.DisplayName(), relTime(p.CreatedAt.Time, now))
	if p.ExpiresAt != nil && !p.ExpiresAt.IsZero() {
		verb := "Closes"
		if p.IsExpired {
			verb = "Closed"
		}
		fmt.Fprintf(&b, "\n%s %s (%s)", verb, relTime(p.ExpiresAt.Time, now), p.ExpiresAt.Local().Format("2006-01-02 15:04"))
	}
	if p.AllowMultipleVotes {
		b.WriteString("\nVotes can be changed")
	}
	b.WriteString("\n\n")

	for _, o := range p.Options {
		fmt.Fprintf(&b, "  [%d] %-24s %s %5.1f%%  (%s)\n",
			o.ID, o.Text, bar(o.VotePercentage), o.VotePercentage, humanize.Comma(o.VoteCount))
	}
	fmt.Fprintf(&b, "\nTotal votes: %s\n", humanize.Comma(p.TotalVotes))

	switch mode {
	case polls.ModeHasVoted:
		b.WriteString("You have voted on this poll.")
		if polls.CanRemoveVote(p) {
			fmt.Fprintf(&b, " Remove it with 'voteverse unvote %d'.", p.ID)
		}
	case polls.ModeCanVote:
		fmt.Fprintf(&b, "Vote with 'voteverse vote %d --option ID'.", p.ID)
	default:
		if p.IsExpired {
			b.WriteString("This poll has closed.")
		} else {
			b.WriteString("Log in to vote.")
		}
	}
	return b.String()
}

func formatVotesHuman(votes []client.Vote, now time.Time) string {
	if len(votes) == 0 {
		return "You have not voted yet."
	}
	var b strings.Builder
	for _, v := range votes {
		fmt.Fprintf(&b, "#%-5d %s: %s (%s)\n", v.PollID, v.PollTitle, v.OptionText, relTime(v.CreatedAt.Time, now))
	}
	return strings.TrimRight(b.String(), "\n")
}

// bar draws a fixed-width percentage bar
func bar(percent float64) string {
	filled := int(percent/100*barWidth + 0.5)
	filled = max(0, min(filled, barWidth))
	return strings.Repeat("█", filled) + strings.Repeat("░", barWidth-filled)
}

// pollListJSON is the --json shape of the list commands
type pollListJSON struct {
	Polls   []client.Poll `json:"polls"`
	Page    int           `json:"page"`
	HasMore bool          `json:"hasMore"`
}

// ABOUTME: Poll detail screen body with results and an option cursor
// ABOUTME: The cursor is only drawn when the viewer can vote

package detailview

import (
	"fmt"
	"strings"

	"github.com/arizayilmaz/voteverse/internal/client"
	"github.com/arizayilmaz/voteverse/internal/polls"
	"github.com/arizayilmaz/voteverse/internal/tui/icons"
	"github.com/arizayilmaz/voteverse/internal/tui/styles"
	"github.com/arizayilmaz/voteverse/internal/tui/widgets"
	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"
)

// DetailView displays a poll and its results
type DetailView struct {
	poll      *client.Poll
	mode      polls.Mode
	canRemove bool
	cursor    int
	width     int
}

// New creates an empty detail view
func New(width int) *DetailView {
	return &DetailView{width: width}
}

// SetPoll shows p. The cursor follows the previously selected option id
// when it still exists.
func (d *DetailView) SetPoll(p *client.Poll, mode polls.Mode, canRemove bool) {
	var keep int64
	if opt, ok := d.SelectedOption(); ok {
		keep = opt.ID
	}

	d.poll = p
	d.mode = mode
	d.canRemove = canRemove
	d.cursor = 0
	if p == nil {
		return
	}
	for i, o := range p.Options {
		if o.ID == keep {
			d.cursor = i
		}
	}
}

func (d *DetailView) SetWidth(width int) {
	d.width = width
}

func (d *DetailView) MoveUp() {
	if d.cursor > 0 {
		d.cursor--
	}
}

func (d *DetailView) MoveDown() {
	if d.poll != nil && d.cursor < len(d.poll.Options)-1 {
		d.cursor++
	}
}

// SelectedOption returns the option under the cursor
func (d *DetailView) SelectedOption() (client.PollOption, bool) {
	if d.poll == nil || len(d.poll.Options) == 0 {
		return client.PollOption{}, false
	}
	return d.poll.Options[d.cursor], true
}

// View renders the poll
func (d *DetailView) View() string {
	if d.poll == nil {
		return "Loading poll..."
	}
	p := d.poll

	var sb strings.Builder
	sb.WriteString(styles.Title.Render(p.Title))
	sb.WriteString("\n")
	sb.WriteString(widgets.PollBadge(p) + " " + widgets.ModeBadge(d.mode))
	sb.WriteString("\n\n")

	if p.Description != "" {
		sb.WriteString(p.Description)
		sb.WriteString("\n\n")
	}

	muted := lipgloss.NewStyle().Foreground(styles.Muted)
	sb.WriteString(muted.Render(fmt.Sprintf("%s %s · created %s",
		icons.User.String(), p.Creator.DisplayName(), humanize.Time(p.CreatedAt.Time))))
	sb.WriteString("\n")
	if p.ExpiresAt != nil && !p.ExpiresAt.IsZero() {
		verb := "Closes"
		if p.IsExpired {
			verb = "Closed"
		}
		sb.WriteString(muted.Render(fmt.Sprintf("%s %s %s (%s)",
			icons.Clock.String(), verb, humanize.Time(p.ExpiresAt.Time), p.ExpiresAt.Local().Format("2006-01-02 15:04"))))
		sb.WriteString("\n")
	}
	if p.AllowMultipleVotes {
		sb.WriteString(muted.Render("Votes can be changed"))
		sb.WriteString("\n")
	}
	sb.WriteString("\n")

	sb.WriteString(d.renderOptions())
	sb.WriteString("\n")
	sb.WriteString(fmt.Sprintf("Total votes: %s\n", styles.ValueStyle.Render(humanize.Comma(p.TotalVotes))))
	sb.WriteString(styles.Help.Render(d.hint()))

	return lipgloss.NewStyle().Width(d.width).Render(sb.String())
}

func (d *DetailView) renderOptions() string {
	p := d.poll
	var lead int64
	for _, o := range p.Options {
		lead = max(lead, o.VoteCount)
	}

	labelWidth := 0
	for _, o := range p.Options {
		labelWidth = max(labelWidth, lipgloss.Width(o.Text))
	}
	labelWidth = min(labelWidth, 32)

	config := widgets.DefaultVoteBarConfig()
	var sb strings.Builder
	for i, o := range p.Options {
		marker := "  "
		label := truncate(o.Text, labelWidth)
		if d.mode == polls.ModeCanVote {
			marker = icons.Option.String() + " "
			if i == d.cursor {
				marker = styles.Selected.Render("> ")
				label = styles.Selected.Render(label)
			}
		}
		pad := strings.Repeat(" ", max(0, labelWidth-lipgloss.Width(truncate(o.Text, labelWidth))))
		leader := lead > 0 && o.VoteCount == lead
		sb.WriteString(fmt.Sprintf("%s%s%s  %s\n", marker, label, pad,
			widgets.VoteBarWithLabel(o.VotePercentage, o.VoteCount, leader, config)))
	}
	return sb.String()
}

func (d *DetailView) hint() string {
	switch d.mode {
	case polls.ModeCanVote:
		return "Choose an option and press Enter to vote."
	case polls.ModeHasVoted:
		if d.canRemove {
			return icons.Voted.String() + " You have voted. Press x to remove your vote."
		}
		return icons.Voted.String() + " You have voted on this poll."
	}
	if d.poll.IsExpired {
		return "This poll has closed."
	}
	return "Log in to vote."
}

func truncate(s string, width int) string {
	if lipgloss.Width(s) <= width {
		return s
	}
	r := []rune(s)
	if width <= 1 || len(r) <= 1 {
		return string(r[:min(len(r), width)])
	}
	return string(r[:width-1]) + "…"
}

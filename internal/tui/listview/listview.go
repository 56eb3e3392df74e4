// ABOUTME: Poll list screen body: one two-line row per poll with a cursor
// ABOUTME: Renders loading, empty, and load-more states of a paged listing

package listview

import (
	"fmt"
	"strings"

	"github.com/arizayilmaz/voteverse/internal/client"
	"github.com/arizayilmaz/voteverse/internal/tui/icons"
	"github.com/arizayilmaz/voteverse/internal/tui/styles"
	"github.com/arizayilmaz/voteverse/internal/tui/widgets"
	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"
)

const rowHeight = 2

// ListView displays a page-accumulated list of polls
type ListView struct {
	title   string
	polls   []client.Poll
	cursor  int
	hasMore bool
	loading bool
	loaded  bool
	width   int
	height  int
}

// New creates an empty list view
func New(title string, width, height int) *ListView {
	return &ListView{title: title, width: width, height: height}
}

// Update replaces the rows and listing state. The cursor stays on the same
// index, clamped to the new length.
func (l *ListView) Update(items []client.Poll, hasMore, loading, loaded bool) {
	l.polls = items
	l.hasMore = hasMore
	l.loading = loading
	l.loaded = loaded
	l.cursor = max(0, min(l.cursor, len(items)-1))
}

// SetSize updates the view dimensions
func (l *ListView) SetSize(width, height int) {
	l.width = width
	l.height = height
}

func (l *ListView) MoveUp() {
	if l.cursor > 0 {
		l.cursor--
	}
}

func (l *ListView) MoveDown() {
	if l.cursor < len(l.polls)-1 {
		l.cursor++
	}
}

// AtEnd reports whether the cursor is on the last loaded row
func (l *ListView) AtEnd() bool {
	return len(l.polls) == 0 || l.cursor == len(l.polls)-1
}

// Selected returns the poll under the cursor
func (l *ListView) Selected() (client.Poll, bool) {
	if len(l.polls) == 0 {
		return client.Poll{}, false
	}
	return l.polls[l.cursor], true
}

// View renders the list
func (l *ListView) View() string {
	var sb strings.Builder

	sb.WriteString(styles.Title.Render(icons.Poll.String() + " " + l.title))
	sb.WriteString("\n")

	switch {
	case !l.loaded && l.loading:
		sb.WriteString("Loading polls...")
	case l.loaded && len(l.polls) == 0:
		sb.WriteString(styles.Subtitle.Render("No polls yet."))
	default:
		first, last := l.window()
		for i := first; i < last; i++ {
			sb.WriteString(l.renderRow(&l.polls[i], i == l.cursor))
			sb.WriteString("\n")
		}
		switch {
		case l.loading:
			sb.WriteString(styles.Help.Render("Loading more..."))
		case l.hasMore:
			sb.WriteString(styles.Help.Render(fmt.Sprintf("%d shown, more available (n to load more)", len(l.polls))))
		}
	}

	return lipgloss.NewStyle().
		Width(l.width).
		Render(strings.TrimRight(sb.String(), "\n"))
}

// window returns the row range that keeps the cursor visible
func (l *ListView) window() (int, int) {
	visible := max(1, (l.height-4)/rowHeight)
	first := 0
	if l.cursor >= visible {
		first = l.cursor - visible + 1
	}
	last := min(len(l.polls), first+visible)
	return first, last
}

func (l *ListView) renderRow(p *client.Poll, selected bool) string {
	title := fmt.Sprintf("#%d %s", p.ID, p.Title)
	marker := "  "
	if selected {
		marker = "> "
		title = styles.Selected.Render(title)
	}

	meta := fmt.Sprintf("by %s · %d options · %s votes · %s",
		p.Creator.DisplayName(), len(p.Options), humanize.Comma(p.TotalVotes), humanize.Time(p.CreatedAt.Time))
	if p.ExpiresAt != nil && !p.ExpiresAt.IsZero() && !p.IsExpired {
		meta += " · closes " + humanize.Time(p.ExpiresAt.Time)
	}
	if p.HasUserVoted {
		meta += " · " + icons.Voted.String() + " voted"
	}

	return marker + title + " " + widgets.PollBadge(p) + "\n    " + lipgloss.NewStyle().Foreground(styles.Muted).Render(meta)
}

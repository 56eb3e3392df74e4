// ABOUTME: Navigation menu shown from every screen with the m key
// ABOUTME: Entries depend on whether a user is logged in

package menu

import (
	"strings"

	"github.com/arizayilmaz/voteverse/internal/guard"
	"github.com/arizayilmaz/voteverse/internal/tui/icons"
	"github.com/arizayilmaz/voteverse/internal/tui/styles"
)

// Action is what choosing an entry does
type Action int

const (
	ActionNavigate Action = iota
	ActionLogout
	ActionQuit
)

// Item is one menu entry
type Item struct {
	Label  string
	Icon   icons.Icon
	Action Action
	// Route is the destination of an ActionNavigate entry
	Route guard.Route
}

// Menu is a vertical list of entries with a cursor
type Menu struct {
	items  []Item
	cursor int
}

// New builds the menu for the given auth state
func New(authenticated bool) *Menu {
	items := []Item{
		{Label: "Browse polls", Icon: icons.Poll, Route: guard.Home},
	}
	if authenticated {
		items = append(items,
			Item{Label: "My polls", Icon: icons.User, Route: guard.MyPolls},
			Item{Label: "Create poll", Icon: icons.Create, Route: guard.CreatePoll},
			Item{Label: "Log out", Icon: icons.Logout, Action: ActionLogout},
		)
	} else {
		items = append(items,
			Item{Label: "Log in", Icon: icons.Login, Route: guard.Login},
			Item{Label: "Register", Icon: icons.User, Route: guard.Register},
		)
	}
	items = append(items, Item{Label: "Quit", Icon: icons.Quit, Action: ActionQuit})
	return &Menu{items: items}
}

// Items returns the entries in display order
func (m *Menu) Items() []Item {
	return m.items
}

func (m *Menu) MoveUp() {
	if m.cursor > 0 {
		m.cursor--
	}
}

func (m *Menu) MoveDown() {
	if m.cursor < len(m.items)-1 {
		m.cursor++
	}
}

// Selected returns the entry under the cursor
func (m *Menu) Selected() Item {
	return m.items[m.cursor]
}

// View renders the menu
func (m *Menu) View() string {
	var sb strings.Builder
	sb.WriteString(styles.Title.Render("Menu"))
	sb.WriteString("\n")
	for i, item := range m.items {
		line := item.Icon.String() + " " + item.Label
		if i == m.cursor {
			sb.WriteString(styles.Selected.Render("> " + line))
		} else {
			sb.WriteString("  " + line)
		}
		sb.WriteString("\n")
	}
	return styles.Panel.Render(strings.TrimRight(sb.String(), "\n"))
}

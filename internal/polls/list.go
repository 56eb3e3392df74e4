// ABOUTME: Poll listings (public and owned) built on the accumulating pager
// ABOUTME: Deleting a poll removes it server-side, then from the loaded list

package polls

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/arizayilmaz/voteverse/internal/client"
	"github.com/arizayilmaz/voteverse/internal/listing"
)

// List is a pager over polls
type List = listing.Pager[client.Poll]

// NewPublicList pages through every poll, newest first
func NewPublicList(c *client.Client) *List {
	return listing.New("public", func(ctx context.Context, page int) (*client.Page[client.Poll], error) {
		return c.Polls.List(ctx, client.NewPageRequest(page))
	})
}

// NewMyList pages through the signed-in user's polls, newest first
func NewMyList(c *client.Client) *List {
	return listing.New("mine", func(ctx context.Context, page int) (*client.Page[client.Poll], error) {
		return c.Polls.ListMine(ctx, client.NewPageRequest(page))
	})
}

// DeletePoll deletes id on the server and drops it from list. The list is
// not reloaded; list may be nil when nothing is displayed.
func DeletePoll(ctx context.Context, c *client.Client, list *List, id int64) error {
	if err := c.Polls.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete poll %d: %w", id, err)
	}
	slog.Info("Poll deleted", "poll_id", id)
	if list != nil {
		list.RemoveFunc(func(p client.Poll) bool { return p.ID == id })
	}
	return nil
}

// LoadAll walks every page of list until the server reports the last one
func LoadAll(ctx context.Context, list *List) error {
	if err := list.Reload(ctx); err != nil {
		return err
	}
	for list.HasMore() {
		if err := list.LoadMore(ctx); err != nil {
			return err
		}
	}
	return nil
}

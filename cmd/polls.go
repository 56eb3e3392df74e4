// ABOUTME: Poll commands: list, show, mine, create, edit, delete
// ABOUTME: Listing walks the backend pages; writes require a session

package cmd

import (
	"context"
	"fmt"
	"strconv"

	"github.com/arizayilmaz/voteverse/internal/client"
	"github.com/arizayilmaz/voteverse/internal/forms"
	"github.com/arizayilmaz/voteverse/internal/polls"
	"github.com/spf13/cobra"
)

var (
	listPage int
	listAll  bool

	pollTitle       string
	pollDescription string
	pollOptions     []string
	pollMultiple    bool
	pollExpires     string

	deleteYes bool
)

var pollsCmd = &cobra.Command{
	Use:   "polls",
	Short: "Browse and manage polls",
}

var pollsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List public polls, newest first",
	Args:  cobra.NoArgs,
	Run: withEnvironment(func(ctx context.Context, env *environment, _ *cobra.Command, _ []string) int {
		return runPollsList(ctx, env, polls.NewPublicList(env.client), listPage, listAll)
	}),
}

var pollsMineCmd = &cobra.Command{
	Use:   "mine",
	Short: "List the polls you created",
	Args:  cobra.NoArgs,
	Run: withEnvironment(func(ctx context.Context, env *environment, _ *cobra.Command, _ []string) int {
		if code := env.requireLogin(); code != exitOK {
			return code
		}
		return runPollsList(ctx, env, polls.NewMyList(env.client), listPage, listAll)
	}),
}

var pollsShowCmd = &cobra.Command{
	Use:   "show POLL_ID",
	Short: "Show a poll and its results",
	Args:  cobra.ExactArgs(1),
	Run: withEnvironment(func(ctx context.Context, env *environment, _ *cobra.Command, args []string) int {
		id, code := parsePollID(env, args[0])
		if code != exitOK {
			return code
		}
		return runPollsShow(ctx, env, id)
	}),
}

var pollsCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a poll",
	Long: `Create a poll with between 2 and 10 options.

Example:
  voteverse polls create --title "Lunch?" --option Pizza --option Sushi --expires 48h`,
	Args: cobra.NoArgs,
	Run: withEnvironment(func(ctx context.Context, env *environment, _ *cobra.Command, _ []string) int {
		form := &forms.PollForm{
			Title:              pollTitle,
			Description:        pollDescription,
			Options:            pollOptions,
			AllowMultipleVotes: pollMultiple,
			ExpiresAt:          pollExpires,
		}
		return runPollsCreate(ctx, env, form)
	}),
}

var pollsEditCmd = &cobra.Command{
	Use:   "edit POLL_ID",
	Short: "Edit one of your polls",
	Long: `Edit one of your polls. Only the flags you pass are changed.

Replacing the options (--option) resets the poll's votes on the server.`,
	Args: cobra.ExactArgs(1),
	Run: withEnvironment(func(ctx context.Context, env *environment, cmd *cobra.Command, args []string) int {
		id, code := parsePollID(env, args[0])
		if code != exitOK {
			return code
		}
		return runPollsEdit(ctx, env, id, func(f *forms.PollForm) {
			flags := cmd.Flags()
			if flags.Changed("title") {
				f.Title = pollTitle
			}
			if flags.Changed("description") {
				f.Description = pollDescription
			}
			if flags.Changed("option") {
				f.Options = pollOptions
			}
			if flags.Changed("multiple") {
				f.AllowMultipleVotes = pollMultiple
			}
			if flags.Changed("expires") {
				f.ExpiresAt = pollExpires
			}
		})
	}),
}

var pollsDeleteCmd = &cobra.Command{
	Use:   "delete POLL_ID",
	Short: "Delete one of your polls",
	Args:  cobra.ExactArgs(1),
	Run: withEnvironment(func(ctx context.Context, env *environment, _ *cobra.Command, args []string) int {
		id, code := parsePollID(env, args[0])
		if code != exitOK {
			return code
		}
		return runPollsDelete(ctx, env, id, deleteYes, confirmDelete)
	}),
}

func init() {
	rootCmd.AddCommand(pollsCmd)
	pollsCmd.AddCommand(pollsListCmd, pollsMineCmd, pollsShowCmd, pollsCreateCmd, pollsEditCmd, pollsDeleteCmd)

	for _, c := range []*cobra.Command{pollsListCmd, pollsMineCmd} {
		c.Flags().IntVar(&listPage, "page", 0, "Page to show (0-based)")
		c.Flags().BoolVar(&listAll, "all", false, "Fetch every page")
	}

	for _, c := range []*cobra.Command{pollsCreateCmd, pollsEditCmd} {
		c.Flags().StringVar(&pollTitle, "title", "", "Poll title (3-200 characters)")
		c.Flags().StringVar(&pollDescription, "description", "", "Optional description (up to 1000 characters)")
		c.Flags().StringArrayVar(&pollOptions, "option", nil, "An answer option; repeat for each option")
		c.Flags().BoolVar(&pollMultiple, "multiple", false, "Allow voters to change or remove their vote")
		c.Flags().StringVar(&pollExpires, "expires", "", "Expiry as 2006-01-02 15:04, RFC 3339, or a duration like 48h")
	}

	pollsDeleteCmd.Flags().BoolVarP(&deleteYes, "yes", "y", false, "Delete without asking")
}

func parsePollID(env *environment, arg string) (int64, int) {
	id, err := strconv.ParseInt(arg, 10, 64)
	if err != nil || id <= 0 {
		fmt.Fprintf(env.errOut, "Error: invalid poll id %q\n", arg)
		return 0, exitFailure
	}
	return id, exitOK
}

// runPollsList prints one page of list, or all of them
func runPollsList(ctx context.Context, env *environment, list *polls.List, page int, all bool) int {
	var err error
	if all {
		err = polls.LoadAll(ctx, list)
	} else {
		err = list.Load(ctx, max(page, 0))
	}
	if err != nil {
		return env.fail(err, "Failed to load polls.")
	}

	if env.json {
		fmt.Fprintln(env.out, formatJSON(pollListJSON{Polls: list.Items(), Page: list.Page(), HasMore: list.HasMore()}))
	} else {
		fmt.Fprintln(env.out, formatPollListHuman(list.Items(), list.HasMore(), env.now()))
	}
	return exitOK
}

func runPollsShow(ctx context.Context, env *environment, id int64) int {
	detail := polls.NewDetail(env.client, env.session, id)
	p, err := detail.Load(ctx)
	if err != nil {
		return env.fail(err, "Failed to load poll.")
	}
	printPoll(env, p, detail.Mode())
	return exitOK
}

func printPoll(env *environment, p *client.Poll, mode polls.Mode) {
	if env.json {
		fmt.Fprintln(env.out, formatJSON(p))
		return
	}
	fmt.Fprintln(env.out, formatPollHuman(p, mode, env.now()))
}

func runPollsCreate(ctx context.Context, env *environment, form *forms.PollForm) int {
	if code := env.requireLogin(); code != exitOK {
		return code
	}

	req, err := form.Build(env.now())
	if err != nil {
		return env.fail(err, "")
	}

	p, err := env.client.Polls.Create(ctx, req)
	if err != nil {
		return env.fail(err, "Failed to create poll.")
	}

	if env.json {
		fmt.Fprintln(env.out, formatJSON(p))
	} else {
		fmt.Fprintf(env.out, "Created poll #%d: %s\n", p.ID, p.Title)
	}
	return exitOK
}

// runPollsEdit loads the poll, lets apply overwrite fields, and sends the update
func runPollsEdit(ctx context.Context, env *environment, id int64, apply func(*forms.PollForm)) int {
	if code := env.requireLogin(); code != exitOK {
		return code
	}

	current, err := env.client.Polls.Get(ctx, id)
	if err != nil {
		return env.fail(err, "Failed to load poll.")
	}

	form := forms.PollFormFrom(current)
	apply(form)

	req, err := form.BuildUpdate(env.now())
	if err != nil {
		return env.fail(err, "")
	}

	p, err := env.client.Polls.Update(ctx, id, req)
	if err != nil {
		return env.fail(err, "Failed to update poll.")
	}

	if env.json {
		fmt.Fprintln(env.out, formatJSON(p))
	} else {
		fmt.Fprintf(env.out, "Updated poll #%d: %s\n", p.ID, p.Title)
	}
	return exitOK
}

func runPollsDelete(ctx context.Context, env *environment, id int64, yes bool, confirm func(title string) (bool, error)) int {
	if code := env.requireLogin(); code != exitOK {
		return code
	}

	if !yes {
		if !env.interactive {
			fmt.Fprintln(env.errOut, "Error: refusing to delete without confirmation; pass --yes")
			return exitFailure
		}
		p, err := env.client.Polls.Get(ctx, id)
		if err != nil {
			return env.fail(err, "Failed to load poll.")
		}
		ok, err := confirm(p.Title)
		if err != nil {
			return env.fail(err, "")
		}
		if !ok {
			fmt.Fprintln(env.out, "Canceled.")
			return exitOK
		}
	}

	if err := polls.DeletePoll(ctx, env.client, nil, id); err != nil {
		return env.fail(err, "Failed to delete poll.")
	}

	if env.json {
		fmt.Fprintln(env.out, formatJSON(map[string]int64{"deleted": id}))
	} else {
		fmt.Fprintf(env.out, "Deleted poll #%d.\n", id)
	}
	return exitOK
}

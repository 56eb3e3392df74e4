// ABOUTME: Voting commands: vote, unvote, votes
// ABOUTME: Each mutation prints the poll as re-fetched from the backend

package cmd

import (
	"context"
	"fmt"

	"github.com/arizayilmaz/voteverse/internal/polls"
	"github.com/spf13/cobra"
)

var voteOption int64

var voteCmd = &cobra.Command{
	Use:   "vote POLL_ID --option OPTION_ID",
	Short: "Vote on a poll",
	Long: `Vote for one option of a poll. Option ids are listed by 'voteverse polls show'.

Example:
  voteverse vote 12 --option 31`,
	Args: cobra.ExactArgs(1),
	Run: withEnvironment(func(ctx context.Context, env *environment, _ *cobra.Command, args []string) int {
		id, code := parsePollID(env, args[0])
		if code != exitOK {
			return code
		}
		return runVote(ctx, env, id, voteOption)
	}),
}

var unvoteCmd = &cobra.Command{
	Use:   "unvote POLL_ID",
	Short: "Remove your vote from a poll that allows it",
	Args:  cobra.ExactArgs(1),
	Run: withEnvironment(func(ctx context.Context, env *environment, _ *cobra.Command, args []string) int {
		id, code := parsePollID(env, args[0])
		if code != exitOK {
			return code
		}
		return runUnvote(ctx, env, id)
	}),
}

var votesCmd = &cobra.Command{
	Use:   "votes",
	Short: "List your votes",
	Args:  cobra.NoArgs,
	Run: withEnvironment(func(ctx context.Context, env *environment, _ *cobra.Command, _ []string) int {
		return runVotes(ctx, env)
	}),
}

func init() {
	rootCmd.AddCommand(voteCmd, unvoteCmd, votesCmd)
	voteCmd.Flags().Int64Var(&voteOption, "option", 0, "Id of the option to vote for")
	_ = voteCmd.MarkFlagRequired("option")
}

func runVote(ctx context.Context, env *environment, pollID, optionID int64) int {
	if code := env.requireLogin(); code != exitOK {
		return code
	}

	detail := polls.NewDetail(env.client, env.session, pollID)
	if _, err := detail.Load(ctx); err != nil {
		return env.fail(err, "Failed to load poll.")
	}

	p, err := detail.Vote(ctx, optionID)
	if err != nil {
		return env.fail(err, "Failed to vote.")
	}
	printPoll(env, p, detail.Mode())
	return exitOK
}

func runUnvote(ctx context.Context, env *environment, pollID int64) int {
	if code := env.requireLogin(); code != exitOK {
		return code
	}

	detail := polls.NewDetail(env.client, env.session, pollID)
	if _, err := detail.Load(ctx); err != nil {
		return env.fail(err, "Failed to load poll.")
	}

	p, err := detail.RemoveVote(ctx)
	if err != nil {
		return env.fail(err, "Failed to remove vote.")
	}
	printPoll(env, p, detail.Mode())
	return exitOK
}

func runVotes(ctx context.Context, env *environment) int {
	if code := env.requireLogin(); code != exitOK {
		return code
	}

	votes, err := env.client.Votes.ListMine(ctx)
	if err != nil {
		return env.fail(err, "Failed to load your votes.")
	}

	if env.json {
		fmt.Fprintln(env.out, formatJSON(votes))
	} else {
		fmt.Fprintln(env.out, formatVotesHuman(votes, env.now()))
	}
	return exitOK
}

// ABOUTME: Interactive terminal UI command
// ABOUTME: Launches the bubbletea app at the requested route

package cmd

import (
	"context"
	"fmt"

	"github.com/arizayilmaz/voteverse/internal/guard"
	"github.com/arizayilmaz/voteverse/internal/tui"
	"github.com/spf13/cobra"
)

var tuiPollID int64

var tuiCmd = &cobra.Command{
	Use:   "tui [ROUTE]",
	Short: "Browse and vote in an interactive terminal UI",
	Long: `Start the interactive terminal UI.

ROUTE is one of home, poll, login, register, create, edit, my-polls.
The poll and edit routes need --poll. Routes that need a session send you
to the login screen first; logs go to the config directory.`,
	Args: cobra.MaximumNArgs(1),
	Run: withEnvironmentOpts(true, func(ctx context.Context, env *environment, _ *cobra.Command, args []string) int {
		route := guard.Home
		if len(args) == 1 {
			route = guard.ParseRoute(args[0])
		}
		return runTUI(ctx, env, route, tuiPollID)
	}),
}

func init() {
	rootCmd.AddCommand(tuiCmd)
	tuiCmd.Flags().Int64Var(&tuiPollID, "poll", 0, "Poll id for the poll and edit routes")
}

func runTUI(ctx context.Context, env *environment, route guard.Route, pollID int64) int {
	if err := tui.Run(ctx, env.client, route, pollID); err != nil {
		fmt.Fprintf(env.errOut, "Error: %v\n", err)
		return exitFailure
	}
	return exitOK
}

// ABOUTME: Root command for the voteverse CLI
// ABOUTME: Handles global flags, configuration, and the per-command environment

package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/arizayilmaz/voteverse/internal/client"
	"github.com/arizayilmaz/voteverse/internal/config"
	"github.com/arizayilmaz/voteverse/internal/logger"
	"github.com/arizayilmaz/voteverse/internal/session"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
)

var jsonOutput bool

// Exit codes
const (
	exitOK          = 0
	exitFailure     = 1 // validation or backend rejection
	exitUnreachable = 2 // backend unreachable or timed out
	exitAuth        = 3 // not logged in or session expired
)

// rootCmd is the base command
var rootCmd = &cobra.Command{
	Use:   "voteverse",
	Short: "Command-line client for the Voteverse polling service",
	Long: `voteverse browses, creates, and votes on polls hosted by a Voteverse backend.

The session from 'voteverse login' is kept in the config directory and reused
by later commands until you log out or the backend rejects it.

Environment Variables:
  VOTEVERSE_API_URL     Backend API URL (default: http://localhost:8080/api)
  VOTEVERSE_TIMEOUT     Request timeout (default: 30s)
  VOTEVERSE_CONFIG_DIR  Session and log directory (default: ~/.config/voteverse)
  VOTEVERSE_LOG_LEVEL   debug, info, warn, error (default: warn)`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.String(config.KeyAPIURL, config.DefaultAPIURL, "Backend API URL (overrides VOTEVERSE_API_URL)")
	pf.BoolVar(&jsonOutput, "json", false, "Output JSON instead of human-readable text")
	pf.String(config.KeyConfigDir, "", "Directory for the session store and logs")
	pf.Duration(config.KeyTimeout, config.DefaultTimeout, "Per-request timeout")
	pf.String(config.KeyLogLevel, config.DefaultLogLevel, "Log level: debug, info, warn, error")
	pf.String(config.KeyLogFormat, config.DefaultLogFormat, "Log format: text, json")
}

// IsJSONOutput returns whether JSON output is requested
func IsJSONOutput() bool {
	return jsonOutput
}

// environment is everything a command needs, built once per invocation
type environment struct {
	cfg     *config.Config
	store   session.Store
	session *session.Service
	client  *client.Client

	out    io.Writer
	errOut io.Writer

	json        bool
	interactive bool
	now         func() time.Time

	logCloser io.Closer
}

func newEnvironment(cfg *config.Config, store session.Store, out, errOut io.Writer) *environment {
	sess := session.New(store)
	sess.Rehydrate()
	return &environment{
		cfg:     cfg,
		store:   store,
		session: sess,
		client:  client.New(cfg.APIURL, client.WithTokenSource(sess), client.WithTimeout(cfg.Timeout)),
		out:     out,
		errOut:  errOut,
		now:     time.Now,
	}
}

// openEnvironment loads configuration, installs the logger, and restores the
// saved session. The TUI logs to a file; every other command logs to stderr.
func openEnvironment(cmd *cobra.Command, logToFile bool) (*environment, error) {
	cfg, err := config.Load(cmd.Flags())
	if err != nil {
		return nil, err
	}

	var closer io.Closer
	if logToFile {
		closer, err = logger.InitFile(cfg.LogPath(), cfg.LogLevel, cfg.LogFormat)
		if err != nil {
			return nil, err
		}
	} else {
		logger.Init(os.Stderr, cfg.LogLevel, cfg.LogFormat)
	}

	store, err := session.OpenBoltStore(cfg.SessionPath())
	if err != nil {
		if closer != nil {
			closer.Close()
		}
		return nil, fmt.Errorf("%w (is another voteverse process running?)", err)
	}

	env := newEnvironment(cfg, store, os.Stdout, os.Stderr)
	env.json = IsJSONOutput()
	env.interactive = !env.json && isTerminal(os.Stdin) && isTerminal(os.Stdout)
	env.logCloser = closer
	return env, nil
}

func isTerminal(f *os.File) bool {
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// Close releases the session store and the log file
func (e *environment) Close() error {
	err := e.store.Close()
	if e.logCloser != nil {
		e.logCloser.Close()
	}
	return err
}

// runFunc is the shape of every command body: it reports through env and
// returns the process exit code
type runFunc func(ctx context.Context, env *environment, cmd *cobra.Command, args []string) int

// withEnvironment adapts fn into a cobra Run function
func withEnvironment(fn runFunc) func(*cobra.Command, []string) {
	return withEnvironmentOpts(false, fn)
}

func withEnvironmentOpts(logToFile bool, fn runFunc) func(*cobra.Command, []string) {
	return func(cmd *cobra.Command, args []string) {
		ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer cancel()

		env, err := openEnvironment(cmd, logToFile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(exitFailure)
		}

		ctx = session.NewContext(ctx, env.session)
		exitCode := fn(ctx, env, cmd, args)
		env.Close()
		if exitCode != exitOK {
			os.Exit(exitCode)
		}
	}
}

var errNotLoggedIn = errors.New("not logged in; run 'voteverse login' first")

// requireLogin reports exitAuth when no session is present
func (e *environment) requireLogin() int {
	if e.session.IsAuthenticated() {
		return exitOK
	}
	fmt.Fprintf(e.errOut, "Error: %v\n", errNotLoggedIn)
	return exitAuth
}

// fail prints err for the user and maps it to an exit code. An unauthorized
// response goes through the session handler, which ends the session.
func (e *environment) fail(err error, fallback string) int {
	if e.session.HandleError(err) {
		fmt.Fprintln(e.errOut, "Error: your session has expired; run 'voteverse login' again")
		return exitAuth
	}
	fmt.Fprintf(e.errOut, "Error: %s\n", errorMessage(err, fallback))
	if client.IsConnectivity(err) {
		return exitUnreachable
	}
	return exitFailure
}

// errorMessage prefers the backend's wording for API failures and the error
// text itself for local ones
func errorMessage(err error, fallback string) string {
	var apiErr *client.APIError
	if errors.As(err, &apiErr) || client.IsConnectivity(err) {
		return client.UserMessage(err, fallback)
	}
	if err != nil {
		return err.Error()
	}
	return fallback
}

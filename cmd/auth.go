// ABOUTME: Account commands: login, register, logout, whoami
// ABOUTME: Successful login or register replaces the stored session

package cmd

import (
	"context"
	"fmt"

	"github.com/arizayilmaz/voteverse/internal/client"
	"github.com/arizayilmaz/voteverse/internal/forms"
	"github.com/spf13/cobra"
)

var (
	loginUser     string
	loginPassword string

	registerForm forms.RegisterForm
)

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Log in and remember the session",
	Long: `Log in with a username (or email) and password.

Missing credentials are prompted for when running in a terminal.`,
	Args: cobra.NoArgs,
	Run: withEnvironment(func(ctx context.Context, env *environment, _ *cobra.Command, _ []string) int {
		return runLogin(ctx, env, forms.LoginForm{UsernameOrEmail: loginUser, Password: loginPassword})
	}),
}

var registerCmd = &cobra.Command{
	Use:   "register",
	Short: "Create an account and log in",
	Args:  cobra.NoArgs,
	Run: withEnvironment(func(ctx context.Context, env *environment, _ *cobra.Command, _ []string) int {
		return runRegister(ctx, env, registerForm)
	}),
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Forget the stored session",
	Args:  cobra.NoArgs,
	Run: withEnvironment(func(_ context.Context, env *environment, _ *cobra.Command, _ []string) int {
		return runLogout(env)
	}),
}

var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show the logged-in user",
	Args:  cobra.NoArgs,
	Run: withEnvironment(func(_ context.Context, env *environment, _ *cobra.Command, _ []string) int {
		return runWhoami(env)
	}),
}

func init() {
	rootCmd.AddCommand(loginCmd, registerCmd, logoutCmd, whoamiCmd)

	loginCmd.Flags().StringVarP(&loginUser, "user", "u", "", "Username or email")
	loginCmd.Flags().StringVarP(&loginPassword, "password", "p", "", "Password")

	registerCmd.Flags().StringVar(&registerForm.Username, "username", "", "Username")
	registerCmd.Flags().StringVar(&registerForm.Email, "email", "", "Email address")
	registerCmd.Flags().StringVar(&registerForm.Password, "password", "", "Password")
	registerCmd.Flags().StringVar(&registerForm.FullName, "full-name", "", "Full name (optional)")
}

func runLogin(ctx context.Context, env *environment, form forms.LoginForm) int {
	if env.interactive && (form.UsernameOrEmail == "" || form.Password == "") {
		if err := promptLogin(&form); err != nil {
			return env.fail(err, "")
		}
	}

	req, err := form.Build()
	if err != nil {
		return env.fail(err, "")
	}

	resp, err := env.client.Auth.Login(ctx, req)
	if err != nil {
		// a 401 here means bad credentials; any stale session goes with it
		env.session.HandleError(err)
		fmt.Fprintf(env.errOut, "Error: %s\n", client.LoginFailureMessage(err))
		if client.IsConnectivity(err) {
			return exitUnreachable
		}
		return exitFailure
	}

	return adoptSession(env, resp, "Logged in")
}

func runRegister(ctx context.Context, env *environment, form forms.RegisterForm) int {
	if env.interactive && (form.Username == "" || form.Email == "" || form.Password == "") {
		if err := promptRegister(&form); err != nil {
			return env.fail(err, "")
		}
	}

	req, err := form.Build()
	if err != nil {
		return env.fail(err, "")
	}

	resp, err := env.client.Auth.Register(ctx, req)
	if err != nil {
		return env.fail(err, "Registration failed.")
	}

	return adoptSession(env, resp, "Account created. Logged in")
}

func adoptSession(env *environment, resp *client.AuthResponse, verb string) int {
	if err := env.session.Login(resp); err != nil {
		return env.fail(err, "")
	}

	user := env.session.User()
	if env.json {
		fmt.Fprintln(env.out, formatJSON(user))
	} else {
		fmt.Fprintf(env.out, "%s as %s.\n", verb, user.DisplayName())
	}
	return exitOK
}

func runLogout(env *environment) int {
	wasAuthenticated := env.session.IsAuthenticated()
	env.session.Logout()
	if env.json {
		fmt.Fprintln(env.out, formatJSON(map[string]bool{"loggedOut": wasAuthenticated}))
		return exitOK
	}
	if wasAuthenticated {
		fmt.Fprintln(env.out, "Logged out.")
	} else {
		fmt.Fprintln(env.out, "Not logged in.")
	}
	return exitOK
}

func runWhoami(env *environment) int {
	if code := env.requireLogin(); code != exitOK {
		return code
	}
	user := env.session.User()
	if env.json {
		fmt.Fprintln(env.out, formatJSON(user))
	} else {
		fmt.Fprintln(env.out, formatUserHuman(user))
	}
	return exitOK
}

// ABOUTME: Interactive prompts for commands run from a terminal
// ABOUTME: Built with huh; only used when stdin and stdout are TTYs

package cmd

import (
	"fmt"

	"github.com/arizayilmaz/voteverse/internal/forms"
	"github.com/charmbracelet/huh"
)

func promptLogin(f *forms.LoginForm) error {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Username or email").
				Value(&f.UsernameOrEmail),
			huh.NewInput().
				Title("Password").
				EchoMode(huh.EchoModePassword).
				Value(&f.Password),
		),
	).WithTheme(huh.ThemeBase()).Run()
}

func promptRegister(f *forms.RegisterForm) error {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().Title("Username").Value(&f.Username),
			huh.NewInput().Title("Email").Value(&f.Email),
			huh.NewInput().Title("Full name").Description("Optional").Value(&f.FullName),
			huh.NewInput().
				Title("Password").
				EchoMode(huh.EchoModePassword).
				Value(&f.Password),
		),
	).WithTheme(huh.ThemeBase()).Run()
}

// confirmDelete asks before a poll is deleted
func confirmDelete(title string) (bool, error) {
	var ok bool
	err := huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title(fmt.Sprintf("Delete %q?", title)).
				Description("This cannot be undone.").
				Affirmative("Delete").
				Negative("Cancel").
				Value(&ok),
		),
	).WithTheme(huh.ThemeBase()).Run()
	return ok, err
}

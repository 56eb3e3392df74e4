// ABOUTME: Login and registration screens as bubbletea models
// ABOUTME: A completed form is validated locally before a request message is emitted

package authform

import (
	"github.com/arizayilmaz/voteverse/internal/client"
	"github.com/arizayilmaz/voteverse/internal/forms"
	"github.com/arizayilmaz/voteverse/internal/tui/icons"
	"github.com/arizayilmaz/voteverse/internal/tui/styles"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
)

// Kind selects which form is shown
type Kind int

const (
	KindLogin Kind = iota
	KindRegister
)

// LoginMsg is sent with a valid login request
type LoginMsg struct {
	Request *client.LoginRequest
}

// RegisterMsg is sent with a valid registration request
type RegisterMsg struct {
	Request *client.RegisterRequest
}

// CancelledMsg is sent when the user leaves with esc
type CancelledMsg struct{}

// Form is the login or registration screen
type Form struct {
	kind     Kind
	login    forms.LoginForm
	register forms.RegisterForm
	form     *huh.Form
	err      string
}

func NewLogin() *Form {
	f := &Form{kind: KindLogin}
	f.form = f.build()
	return f
}

func NewRegister() *Form {
	f := &Form{kind: KindRegister}
	f.form = f.build()
	return f
}

// Kind reports which form this is
func (f *Form) Kind() Kind {
	return f.kind
}

// Retry shows message and asks again; the password is cleared
func (f *Form) Retry(message string) tea.Cmd {
	f.err = message
	f.login.Password = ""
	f.register.Password = ""
	f.form = f.build()
	return f.form.Init()
}

func (f *Form) build() *huh.Form {
	var group *huh.Group
	switch f.kind {
	case KindRegister:
		group = huh.NewGroup(
			huh.NewInput().Title("Username").Description("3 to 50 characters").Value(&f.register.Username),
			huh.NewInput().Title("Email").Value(&f.register.Email),
			huh.NewInput().Title("Full name").Description("Optional").Value(&f.register.FullName),
			huh.NewInput().
				Title("Password").
				Description("At least 6 characters").
				EchoMode(huh.EchoModePassword).
				Value(&f.register.Password),
		).Title("Create an account")
	default:
		group = huh.NewGroup(
			huh.NewInput().Title("Username or email").Value(&f.login.UsernameOrEmail),
			huh.NewInput().
				Title("Password").
				EchoMode(huh.EchoModePassword).
				Value(&f.login.Password),
		).Title("Log in")
	}
	return huh.NewForm(group).WithTheme(styles.FormTheme())
}

// Init implements tea.Model
func (f *Form) Init() tea.Cmd {
	return f.form.Init()
}

// Update implements tea.Model
func (f *Form) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if key, ok := msg.(tea.KeyMsg); ok && key.String() == "esc" {
		return f, func() tea.Msg { return CancelledMsg{} }
	}

	form, cmd := f.form.Update(msg)
	if hf, ok := form.(*huh.Form); ok {
		f.form = hf
	}
	if f.form.State == huh.StateCompleted {
		return f, f.submit()
	}
	return f, cmd
}

func (f *Form) submit() tea.Cmd {
	switch f.kind {
	case KindRegister:
		req, err := f.register.Build()
		if err != nil {
			return f.Retry(err.Error())
		}
		f.err = ""
		return func() tea.Msg { return RegisterMsg{Request: req} }
	default:
		req, err := f.login.Build()
		if err != nil {
			return f.Retry(err.Error())
		}
		f.err = ""
		return func() tea.Msg { return LoginMsg{Request: req} }
	}
}

// View implements tea.Model
func (f *Form) View() string {
	heading := icons.Login.String() + " Log in"
	hint := "No account? Press esc and choose Register."
	if f.kind == KindRegister {
		heading = icons.User.String() + " Register"
		hint = "Already registered? Press esc and choose Log in."
	}

	out := styles.Title.Render(heading) + "\n"
	if f.err != "" {
		out += styles.Error.Render(icons.Critical.String()+" "+f.err) + "\n\n"
	}
	out += f.form.View() + "\n" + styles.Help.Render(hint)
	return out
}

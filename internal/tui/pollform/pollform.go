// ABOUTME: Poll create/edit editor as a bubbletea model
// ABOUTME: Uses huh forms with a step progress panel; emits a validated request

package pollform

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/arizayilmaz/voteverse/internal/client"
	"github.com/arizayilmaz/voteverse/internal/forms"
	"github.com/arizayilmaz/voteverse/internal/tui/icons"
	"github.com/arizayilmaz/voteverse/internal/tui/styles"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
)

// SubmitMsg carries a locally valid request. Exactly one of Create and
// Update is set; PollID is the edited poll.
type SubmitMsg struct {
	PollID int64
	Create *client.CreatePollRequest
	Update *client.UpdatePollRequest
}

// CancelledMsg is sent when the user leaves the editor with esc
type CancelledMsg struct{}

const (
	stepDetails = iota + 1
	stepCount
	stepOptions
	stepSettings
)

var stepNames = []string{"Details", "Option Count", "Options", "Settings"}

// Editor walks the user through a poll form one step at a time
type Editor struct {
	poll        *forms.PollForm
	pollID      int64
	optionCount int
	form        *huh.Form
	step        int
	width       int
	err         string
	now         func() time.Time
}

// New creates an editor for a new poll
func New() *Editor {
	return newEditor(forms.NewPollForm(), 0)
}

// NewEdit creates an editor prefilled from an existing poll
func NewEdit(p *client.Poll) *Editor {
	return newEditor(forms.PollFormFrom(p), p.ID)
}

func newEditor(f *forms.PollForm, id int64) *Editor {
	e := &Editor{
		poll:        f,
		pollID:      id,
		optionCount: max(forms.MinOptions, min(len(f.Options), forms.MaxOptions)),
		now:         time.Now,
	}
	e.goTo(stepDetails)
	return e
}

// Editing reports whether the editor updates an existing poll
func (e *Editor) Editing() bool {
	return e.pollID != 0
}

// Retry shows a message from a rejected submission and restarts at the
// first step with every value kept.
func (e *Editor) Retry(message string) tea.Cmd {
	e.err = message
	return e.goTo(stepDetails)
}

func (e *Editor) goTo(step int) tea.Cmd {
	e.step = step
	switch step {
	case stepDetails:
		e.form = e.detailsForm()
	case stepCount:
		e.form = e.countForm()
	case stepOptions:
		e.resizeOptions()
		e.form = e.optionsForm()
	case stepSettings:
		e.form = e.settingsForm()
	}
	return e.form.Init()
}

// resizeOptions makes the option slots match the chosen count
func (e *Editor) resizeOptions() {
	opts := make([]string, e.optionCount)
	copy(opts, e.poll.Options)
	e.poll.Options = opts
}

func counter(s string, limit int) string {
	return fmt.Sprintf("%d/%d characters", len([]rune(s)), limit)
}

func (e *Editor) detailsForm() *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Title").
				DescriptionFunc(func() string { return counter(e.poll.Title, forms.MaxTitleLen) }, &e.poll.Title).
				Placeholder("What should we ask?").
				CharLimit(forms.MaxTitleLen).
				Value(&e.poll.Title).
				Validate(forms.CheckTitle),
			huh.NewText().
				Title("Description").
				DescriptionFunc(func() string { return counter(e.poll.Description, forms.MaxDescriptionLen) }, &e.poll.Description).
				CharLimit(forms.MaxDescriptionLen).
				Lines(4).
				Value(&e.poll.Description).
				Validate(forms.CheckDescription),
		).Title("Step 1: Details").
			Description("Give the poll a title and an optional description"),
	).WithTheme(styles.FormTheme())
}

func (e *Editor) countForm() *huh.Form {
	var counts []huh.Option[int]
	for n := forms.MinOptions; n <= forms.MaxOptions; n++ {
		counts = append(counts, huh.NewOption(fmt.Sprintf("%d options", n), n))
	}
	return huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[int]().
				Title("Number of options").
				Description("Use ↑/↓ to select, Enter to confirm").
				Options(counts...).
				Value(&e.optionCount),
		).Title("Step 2: Option Count").
			Description(fmt.Sprintf("A poll has between %d and %d options", forms.MinOptions, forms.MaxOptions)),
	).WithTheme(styles.FormTheme())
}

func (e *Editor) optionsForm() *huh.Form {
	var fields []huh.Field
	for i := range e.poll.Options {
		fields = append(fields, huh.NewInput().
			Title(fmt.Sprintf("Option %d", i+1)).
			CharLimit(forms.MaxOptionLen).
			Value(&e.poll.Options[i]).
			Validate(forms.CheckOption))
	}
	desc := "Blank options are dropped"
	if e.Editing() {
		desc += ". Saving new options resets the poll's votes"
	}
	return huh.NewForm(
		huh.NewGroup(fields...).
			Title("Step 3: Options").
			Description(desc),
	).WithTheme(styles.FormTheme())
}

func (e *Editor) settingsForm() *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title("Allow multiple votes").
				Description("Voters may change or remove their vote").
				Value(&e.poll.AllowMultipleVotes),
			huh.NewInput().
				Title("Expires").
				Description("2006-01-02 15:04, RFC 3339, or a duration like 48h; blank for never").
				Value(&e.poll.ExpiresAt).
				Validate(func(s string) error {
					_, err := forms.ParseExpiry(s, e.now())
					return err
				}),
		).Title("Step 4: Settings"),
	).WithTheme(styles.FormTheme())
}

// Init implements tea.Model
func (e *Editor) Init() tea.Cmd {
	return e.form.Init()
}

// Update implements tea.Model
func (e *Editor) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		e.width = msg.Width
	case tea.KeyMsg:
		if msg.String() == "esc" {
			return e, func() tea.Msg { return CancelledMsg{} }
		}
	}

	form, cmd := e.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		e.form = f
	}

	if e.form.State == huh.StateCompleted {
		return e, e.advanceStep()
	}
	return e, cmd
}

func (e *Editor) advanceStep() tea.Cmd {
	if e.step < stepSettings {
		return e.goTo(e.step + 1)
	}
	return e.submit()
}

// submit validates the whole form; a failure sends the user back to the
// step holding the offending field
func (e *Editor) submit() tea.Cmd {
	var msg SubmitMsg
	var err error
	if e.Editing() {
		msg.PollID = e.pollID
		msg.Update, err = e.poll.BuildUpdate(e.now())
	} else {
		msg.Create, err = e.poll.Build(e.now())
	}
	if err != nil {
		e.err = err.Error()
		var ve *forms.ValidationError
		step := stepDetails
		if errors.As(err, &ve) {
			switch ve.Field {
			case "options":
				step = stepCount
			case "expiresAt":
				step = stepSettings
			}
		}
		return e.goTo(step)
	}

	e.err = ""
	return func() tea.Msg { return msg }
}

// SetWidth sets the editor width for proper rendering
func (e *Editor) SetWidth(width int) {
	e.width = width
}

// View implements tea.Model
func (e *Editor) View() string {
	var sb strings.Builder

	heading := icons.Create.String() + " New poll"
	if e.Editing() {
		heading = fmt.Sprintf("%s Edit poll #%d", icons.Edit.String(), e.pollID)
	}
	sb.WriteString(styles.Title.Render(heading))
	sb.WriteString("\n")
	sb.WriteString(e.renderProgress())
	sb.WriteString("\n\n")

	if e.err != "" {
		sb.WriteString(styles.Error.Render(icons.Critical.String() + " " + e.err))
		sb.WriteString("\n\n")
	}

	sb.WriteString(e.form.View())
	return sb.String()
}

// renderProgress renders the step progress panel
func (e *Editor) renderProgress() string {
	width := max(e.width-1, 60)

	borderStyle := lipgloss.NewStyle().Foreground(styles.Muted)
	titleStyle := lipgloss.NewStyle().Foreground(styles.Primary)

	var steps []string
	for i, name := range stepNames {
		n := i + 1
		var indicator string
		var nameStyle lipgloss.Style
		switch {
		case n < e.step:
			indicator = lipgloss.NewStyle().Foreground(styles.Secondary).Render(icons.CheckOK.String())
			nameStyle = lipgloss.NewStyle().Foreground(styles.Muted)
		case n == e.step:
			indicator = lipgloss.NewStyle().Foreground(styles.Primary).Bold(true).Render("●")
			nameStyle = lipgloss.NewStyle().Foreground(styles.Primary).Bold(true)
		default:
			indicator = lipgloss.NewStyle().Foreground(styles.Muted).Render("○")
			nameStyle = lipgloss.NewStyle().Foreground(styles.Muted)
		}
		steps = append(steps, indicator+" "+nameStyle.Render(name))
	}
	stepsLine := strings.Join(steps, "    ")

	// "│  " + bar + " │"
	barWidth := width - 5
	filled := (e.step * barWidth) / len(stepNames)
	bar := lipgloss.NewStyle().Foreground(styles.Primary).Render(strings.Repeat("━", filled)) +
		lipgloss.NewStyle().Foreground(styles.Surface).Render(strings.Repeat("─", barWidth-filled))

	label := "Progress"
	top := "┌─ " + titleStyle.Render(label) + " " + strings.Repeat("─", max(0, width-5-lipgloss.Width(label))) + "┐"
	middle := "│ " + stepsLine + strings.Repeat(" ", max(0, width-4-lipgloss.Width(stepsLine))) + " │"
	progress := "│  " + bar + " │"
	bottom := "└" + strings.Repeat("─", width-2) + "┘"

	return borderStyle.Render(strings.Join([]string{top, middle, progress, bottom}, "\n"))
}

// ABOUTME: Root bubbletea model for the TUI application
// ABOUTME: Resolves routes through the guards and routes keyboard input to screens

package tui

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/arizayilmaz/voteverse/internal/client"
	"github.com/arizayilmaz/voteverse/internal/guard"
	"github.com/arizayilmaz/voteverse/internal/listing"
	"github.com/arizayilmaz/voteverse/internal/polls"
	"github.com/arizayilmaz/voteverse/internal/session"
	"github.com/arizayilmaz/voteverse/internal/tui/authform"
	"github.com/arizayilmaz/voteverse/internal/tui/detailview"
	"github.com/arizayilmaz/voteverse/internal/tui/icons"
	"github.com/arizayilmaz/voteverse/internal/tui/listview"
	"github.com/arizayilmaz/voteverse/internal/tui/menu"
	"github.com/arizayilmaz/voteverse/internal/tui/pollform"
	"github.com/arizayilmaz/voteverse/internal/tui/styles"
	"github.com/arizayilmaz/voteverse/internal/tui/widgets"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// Screen represents the current TUI screen
type Screen int

const (
	ScreenList Screen = iota
	ScreenDetail
	ScreenAuth
	ScreenEditor
)

// Layout constants
const (
	minTerminalWidth = 80
	panelPadding     = 4
)

// Messages shown when a request fails without a server message
const (
	msgLoadPollsFailed  = "Failed to load polls."
	msgLoadPollFailed   = "Failed to load poll."
	msgVoteFailed       = "Failed to vote."
	msgRemoveFailed     = "Failed to remove vote."
	msgCreateFailed     = "Failed to create poll."
	msgUpdateFailed     = "Failed to update poll."
	msgDeleteFailed     = "Failed to delete poll."
	msgRegisterFailed   = "Registration failed."
	msgSessionExpired   = "Your session has expired. Please log in again."
	msgNotAllowedToVote = "You cannot vote on this poll."
)

// screenFor maps a route to the screen that renders it
func screenFor(r guard.Route) Screen {
	switch r {
	case guard.PollDetail:
		return ScreenDetail
	case guard.Login, guard.Register:
		return ScreenAuth
	case guard.CreatePoll, guard.EditPoll:
		return ScreenEditor
	}
	return ScreenList
}

// location is a route plus the poll it is about
type location struct {
	route  guard.Route
	pollID int64
}

// Results of background commands. seq ties a result to the navigation that
// started it; results from an earlier screen are dropped.
type (
	sessionReadyMsg struct{}

	listLoadedMsg struct {
		seq uint64
		err error
	}

	detailLoadedMsg struct {
		seq uint64
		err error
	}

	voteDoneMsg struct {
		seq     uint64
		removal bool
		err     error
	}

	authDoneMsg struct {
		seq      uint64
		register bool
		resp     *client.AuthResponse
		err      error
	}

	editLoadedMsg struct {
		seq  uint64
		poll *client.Poll
		err  error
	}

	pollSavedMsg struct {
		seq     uint64
		created bool
		poll    *client.Poll
		err     error
	}

	pollDeletedMsg struct {
		seq uint64
		id  int64
		err error
	}
)

// App is the root model for the TUI
type App struct {
	ctx     context.Context
	client  *client.Client
	session *session.Service

	unsubscribe func()
	eventsMu    sync.Mutex
	events      []session.Event
	// authenticated is the session state the screens were last built for
	authenticated bool

	screen  Screen
	loc     location
	back    location
	waiting bool
	seq     uint64

	width  int
	height int

	flash    string
	flashErr bool
	busy     bool
	spinner  spinner.Model

	showMenu bool
	menu     *menu.Menu
	confirm  *client.Poll

	// Child models
	list       *polls.List
	listView   *listview.ListView
	detail     *polls.Detail
	detailView *detailview.DetailView
	auth       *authform.Form
	editor     *pollform.Editor
}

// New creates the TUI application. The session may still be loading; the
// first screen waits for it.
func New(ctx context.Context, apiClient *client.Client, sess *session.Service, start guard.Route, pollID int64) *App {
	a := &App{
		ctx:           ctx,
		client:        apiClient,
		session:       sess,
		authenticated: sess.IsAuthenticated(),
		loc:           location{route: start, pollID: pollID},
		back:          location{route: guard.Home},
		spinner:       spinner.New(spinner.WithSpinner(spinner.Dot), spinner.WithStyle(lipgloss.NewStyle().Foreground(styles.Accent))),
		menu:          menu.New(sess.IsAuthenticated()),
	}
	a.unsubscribe = sess.Subscribe(a.onSessionEvent)
	return a
}

// onSessionEvent queues ev for the next reconcile. It may run on a command
// goroutine, so it only records.
func (a *App) onSessionEvent(ev session.Event) {
	a.eventsMu.Lock()
	a.events = append(a.events, ev)
	a.eventsMu.Unlock()
}

func (a *App) drainEvents() []session.Event {
	a.eventsMu.Lock()
	defer a.eventsMu.Unlock()
	evs := a.events
	a.events = nil
	return evs
}

// Close stops listening to the session
func (a *App) Close() {
	if a.unsubscribe != nil {
		a.unsubscribe()
	}
}

// Init implements tea.Model
func (a *App) Init() tea.Cmd {
	cmds := []tea.Cmd{a.spinner.Tick, a.navigate(a.loc.route, a.loc.pollID)}
	if a.session.IsLoading() {
		sess := a.session
		cmds = append(cmds, func() tea.Msg {
			sess.Rehydrate()
			return sessionReadyMsg{}
		})
	}
	return tea.Batch(cmds...)
}

// Update implements tea.Model
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	cmd := a.update(msg)
	return a, tea.Batch(cmd, a.reconcile())
}

func (a *App) update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		if a.listView != nil {
			a.listView.SetSize(a.contentWidth(), a.contentHeight())
		}
		if a.detailView != nil {
			a.detailView.SetWidth(a.contentWidth())
		}
		return a.forward(msg)

	case spinner.TickMsg:
		var cmd tea.Cmd
		a.spinner, cmd = a.spinner.Update(msg)
		return cmd

	case tea.KeyMsg:
		return a.handleKey(msg)

	case sessionReadyMsg:
		if a.waiting {
			return a.navigate(a.loc.route, a.loc.pollID)
		}
		return nil

	case listLoadedMsg:
		return a.handleListLoaded(msg)
	case detailLoadedMsg:
		return a.handleDetailLoaded(msg)
	case voteDoneMsg:
		return a.handleVoteDone(msg)
	case authDoneMsg:
		return a.handleAuthDone(msg)
	case editLoadedMsg:
		return a.handleEditLoaded(msg)
	case pollSavedMsg:
		return a.handlePollSaved(msg)
	case pollDeletedMsg:
		return a.handlePollDeleted(msg)

	case authform.LoginMsg:
		return a.submitLogin(msg.Request)
	case authform.RegisterMsg:
		return a.submitRegister(msg.Request)
	case authform.CancelledMsg:
		cmd := a.navigate(guard.Home, 0)
		a.showMenu = true
		return cmd

	case pollform.SubmitMsg:
		return a.submitPoll(msg)
	case pollform.CancelledMsg:
		return a.navigate(a.back.route, a.back.pollID)
	}

	return a.forward(msg)
}

// forward hands a message to the form on screen, if any
func (a *App) forward(msg tea.Msg) tea.Cmd {
	switch a.screen {
	case ScreenAuth:
		if a.auth != nil {
			_, cmd := a.auth.Update(msg)
			return cmd
		}
	case ScreenEditor:
		if a.editor != nil {
			_, cmd := a.editor.Update(msg)
			return cmd
		}
	}
	return nil
}

// reconcile applies queued session events: the menu is rebuilt and the
// current route is evaluated again so a lost session leaves guarded screens.
func (a *App) reconcile() tea.Cmd {
	evs := a.drainEvents()
	if len(evs) == 0 {
		return nil
	}

	expired := false
	for _, ev := range evs {
		slog.Debug("Session changed", "reason", ev.Reason.String())
		if ev.Reason == session.ReasonUnauthorized && a.authenticated {
			expired = true
		}
	}
	a.authenticated = a.session.IsAuthenticated()
	a.menu = menu.New(a.authenticated)

	if expired {
		a.setError(msgSessionExpired)
		return a.navigate(guard.Login, 0)
	}
	if a.waiting {
		return nil
	}
	if target, _ := guard.Resolve(a.loc.route, a.session.Snapshot()); target != a.loc.route {
		return a.navigate(target, 0)
	}
	return nil
}

// navigate moves to r after the guards have had their say
func (a *App) navigate(r guard.Route, pollID int64) tea.Cmd {
	if (r == guard.PollDetail || r == guard.EditPoll) && pollID == 0 {
		r = guard.Home
	}

	target, decision := guard.Resolve(r, a.session.Snapshot())
	a.seq++
	a.showMenu = false
	a.confirm = nil
	a.busy = false

	if decision.Kind == guard.Wait {
		a.waiting = true
		a.loc = location{route: r, pollID: pollID}
		return nil
	}
	a.waiting = false

	if target != r {
		slog.Debug("Route redirected", "from", r.String(), "to", target.String())
		pollID = 0
	}
	a.loc = location{route: target, pollID: pollID}
	a.screen = screenFor(target)
	return a.enter()
}

// open navigates and remembers the current location for going back
func (a *App) open(r guard.Route, pollID int64) tea.Cmd {
	a.back = a.loc
	return a.navigate(r, pollID)
}

// enter builds the screen for the current location
func (a *App) enter() tea.Cmd {
	switch a.loc.route {
	case guard.Home, guard.MyPolls:
		title := "Polls"
		a.list = polls.NewPublicList(a.client)
		if a.loc.route == guard.MyPolls {
			title = "My polls"
			a.list = polls.NewMyList(a.client)
		}
		a.listView = listview.New(title, a.contentWidth(), a.contentHeight())
		a.listView.Update(nil, false, true, false)
		return a.loadList(false)

	case guard.PollDetail:
		a.detail = polls.NewDetail(a.client, a.session, a.loc.pollID)
		a.detailView = detailview.New(a.contentWidth())
		return a.loadDetail()

	case guard.Login:
		a.auth = authform.NewLogin()
		return a.auth.Init()

	case guard.Register:
		a.auth = authform.NewRegister()
		return a.auth.Init()

	case guard.CreatePoll:
		a.editor = pollform.New()
		a.editor.SetWidth(a.contentWidth())
		return a.editor.Init()

	case guard.EditPoll:
		a.editor = nil
		return a.loadForEdit()
	}
	return nil
}

func (a *App) setError(msg string) {
	a.flash = msg
	a.flashErr = true
}

func (a *App) setInfo(msg string) {
	a.flash = msg
	a.flashErr = false
}

// handleError routes unauthorized errors to the session and shows the rest
func (a *App) handleError(err error, fallback string) {
	if a.session.HandleError(err) {
		return
	}
	slog.Warn("Request failed", "route", a.loc.route.String(), "error", err)
	a.setError(client.UserMessage(err, fallback))
}

// owns reports whether the signed-in user created p
func (a *App) owns(p *client.Poll) bool {
	u := a.session.User()
	return u != nil && p != nil && (p.Creator.ID == u.ID || p.Creator.Username == u.Username)
}

// Key handling

func (a *App) handleKey(msg tea.KeyMsg) tea.Cmd {
	key := msg.String()
	if key == "ctrl+c" {
		return tea.Quit
	}

	if a.confirm != nil {
		return a.updateConfirm(key)
	}
	if a.showMenu {
		return a.updateMenu(key)
	}

	// forms own the keyboard; esc leaves them
	if a.screen == ScreenAuth || (a.screen == ScreenEditor && a.editor != nil) {
		a.flash = ""
		return a.forward(msg)
	}

	switch key {
	case "q":
		return tea.Quit
	case "m":
		a.showMenu = true
		return nil
	}

	if a.waiting {
		return nil
	}
	a.flash = ""

	switch a.screen {
	case ScreenList:
		return a.updateList(key)
	case ScreenDetail:
		return a.updateDetail(key)
	case ScreenEditor:
		if key == "esc" || key == "b" {
			return a.navigate(a.back.route, a.back.pollID)
		}
	}
	return nil
}

func (a *App) updateMenu(key string) tea.Cmd {
	switch key {
	case "up", "k":
		a.menu.MoveUp()
	case "down", "j":
		a.menu.MoveDown()
	case "esc", "m":
		a.showMenu = false
	case "q":
		return tea.Quit
	case "enter":
		item := a.menu.Selected()
		a.showMenu = false
		switch item.Action {
		case menu.ActionQuit:
			return tea.Quit
		case menu.ActionLogout:
			a.session.Logout()
			a.setInfo("Logged out.")
			return nil
		default:
			return a.open(item.Route, 0)
		}
	}
	return nil
}

func (a *App) updateConfirm(key string) tea.Cmd {
	switch key {
	case "y", "enter":
		p := a.confirm
		a.confirm = nil
		return a.deletePoll(p.ID)
	case "n", "esc", "q":
		a.confirm = nil
	}
	return nil
}

func (a *App) updateList(key string) tea.Cmd {
	switch key {
	case "up", "k":
		a.listView.MoveUp()
	case "down", "j":
		a.listView.MoveDown()
	case "enter":
		if p, ok := a.listView.Selected(); ok {
			return a.open(guard.PollDetail, p.ID)
		}
	case "n":
		return a.loadList(true)
	case "r":
		return a.loadList(false)
	case "c":
		return a.open(guard.CreatePoll, 0)
	case "e":
		if p, ok := a.listView.Selected(); ok && a.owns(&p) {
			return a.open(guard.EditPoll, p.ID)
		}
	case "d":
		if p, ok := a.listView.Selected(); ok && a.owns(&p) && !a.busy {
			a.confirm = &p
		}
	case "b", "esc":
		if a.loc.route != guard.Home {
			return a.navigate(guard.Home, 0)
		}
	}
	return nil
}

func (a *App) updateDetail(key string) tea.Cmd {
	p := a.detail.Poll()
	switch key {
	case "up", "k":
		a.detailView.MoveUp()
	case "down", "j":
		a.detailView.MoveDown()
	case "enter":
		if opt, ok := a.detailView.SelectedOption(); ok && a.detail.Mode() == polls.ModeCanVote {
			return a.vote(opt.ID)
		}
	case "x":
		if a.detail.CanRemoveVote() {
			return a.removeVote()
		}
	case "r":
		return a.loadDetail()
	case "e":
		if a.owns(p) {
			return a.open(guard.EditPoll, p.ID)
		}
	case "d":
		if a.owns(p) && !a.busy {
			a.confirm = p
		}
	case "b", "esc":
		back := a.back
		if back.route == guard.PollDetail || back.route == guard.EditPoll {
			back = location{route: guard.Home}
		}
		return a.navigate(back.route, back.pollID)
	}
	return nil
}

// Commands

// loadList fetches the first page, or the next one when more is set
func (a *App) loadList(more bool) tea.Cmd {
	list, seq, ctx := a.list, a.seq, a.ctx
	if more && (!list.HasMore() || list.Loading()) {
		return nil
	}
	a.listView.Update(list.Items(), list.HasMore(), true, list.Loaded())
	return func() tea.Msg {
		var err error
		if more {
			err = list.LoadMore(ctx)
		} else {
			err = list.Reload(ctx)
		}
		return listLoadedMsg{seq: seq, err: err}
	}
}

func (a *App) handleListLoaded(msg listLoadedMsg) tea.Cmd {
	if msg.seq != a.seq || a.screen != ScreenList {
		return nil
	}
	if msg.err != nil && !errors.Is(msg.err, listing.ErrStale) &&
		!errors.Is(msg.err, listing.ErrBusy) && !errors.Is(msg.err, listing.ErrNoMorePages) {
		a.handleError(msg.err, msgLoadPollsFailed)
	}
	a.refreshList()
	return nil
}

func (a *App) refreshList() {
	a.listView.Update(a.list.Items(), a.list.HasMore(), a.list.Loading(), a.list.Loaded())
}

func (a *App) loadDetail() tea.Cmd {
	detail, seq, ctx := a.detail, a.seq, a.ctx
	return func() tea.Msg {
		_, err := detail.Load(ctx)
		return detailLoadedMsg{seq: seq, err: err}
	}
}

func (a *App) handleDetailLoaded(msg detailLoadedMsg) tea.Cmd {
	if msg.seq != a.seq || a.screen != ScreenDetail {
		return nil
	}
	if msg.err != nil {
		if !errors.Is(msg.err, polls.ErrStaleDetail) {
			a.handleError(msg.err, msgLoadPollFailed)
		}
		return nil
	}
	a.refreshDetail()
	return nil
}

func (a *App) refreshDetail() {
	a.detailView.SetPoll(a.detail.Poll(), a.detail.Mode(), a.detail.CanRemoveVote())
}

func (a *App) vote(optionID int64) tea.Cmd {
	if a.busy || a.detail.Busy() {
		return nil
	}
	a.busy = true
	detail, seq, ctx := a.detail, a.seq, a.ctx
	return func() tea.Msg {
		_, err := detail.Vote(ctx, optionID)
		return voteDoneMsg{seq: seq, err: err}
	}
}

func (a *App) removeVote() tea.Cmd {
	if a.busy || a.detail.Busy() {
		return nil
	}
	a.busy = true
	detail, seq, ctx := a.detail, a.seq, a.ctx
	return func() tea.Msg {
		_, err := detail.RemoveVote(ctx)
		return voteDoneMsg{seq: seq, removal: true, err: err}
	}
}

func (a *App) handleVoteDone(msg voteDoneMsg) tea.Cmd {
	if msg.seq != a.seq {
		return nil
	}
	a.busy = false

	switch {
	case msg.err == nil:
		if msg.removal {
			a.setInfo("Vote removed.")
		} else {
			a.setInfo("Vote recorded.")
		}
	case errors.Is(msg.err, polls.ErrVoteNotAllowed), errors.Is(msg.err, polls.ErrRemoveNotAllowed):
		a.setError(msgNotAllowedToVote)
	case msg.removal:
		a.handleError(msg.err, msgRemoveFailed)
	default:
		a.handleError(msg.err, msgVoteFailed)
	}
	a.refreshDetail()
	return nil
}

func (a *App) submitLogin(req *client.LoginRequest) tea.Cmd {
	if a.busy {
		return nil
	}
	a.busy = true
	c, seq, ctx := a.client, a.seq, a.ctx
	return func() tea.Msg {
		resp, err := c.Auth.Login(ctx, req)
		return authDoneMsg{seq: seq, resp: resp, err: err}
	}
}

func (a *App) submitRegister(req *client.RegisterRequest) tea.Cmd {
	if a.busy {
		return nil
	}
	a.busy = true
	c, seq, ctx := a.client, a.seq, a.ctx
	return func() tea.Msg {
		resp, err := c.Auth.Register(ctx, req)
		return authDoneMsg{seq: seq, register: true, resp: resp, err: err}
	}
}

func (a *App) handleAuthDone(msg authDoneMsg) tea.Cmd {
	if msg.seq != a.seq || a.screen != ScreenAuth {
		return nil
	}
	a.busy = false

	if msg.err != nil {
		if msg.register {
			return a.auth.Retry(client.UserMessage(msg.err, msgRegisterFailed))
		}
		// a 401 here means bad credentials; any stale session goes with it
		a.session.HandleError(msg.err)
		return a.auth.Retry(client.LoginFailureMessage(msg.err))
	}

	if err := a.session.Login(msg.resp); err != nil {
		if !a.session.IsAuthenticated() {
			slog.Warn("Auth response carried no session", "error", err)
			fallback := client.MsgLoginFailed
			if msg.register {
				fallback = msgRegisterFailed
			}
			return a.auth.Retry(client.UserMessage(err, fallback))
		}
		slog.Warn("Session could not be saved", "error", err)
	}
	a.setInfo(fmt.Sprintf("Welcome, %s!", a.session.User().DisplayName()))
	return nil
}

func (a *App) loadForEdit() tea.Cmd {
	c, seq, ctx, id := a.client, a.seq, a.ctx, a.loc.pollID
	return func() tea.Msg {
		p, err := c.Polls.Get(ctx, id)
		return editLoadedMsg{seq: seq, poll: p, err: err}
	}
}

func (a *App) handleEditLoaded(msg editLoadedMsg) tea.Cmd {
	if msg.seq != a.seq || a.loc.route != guard.EditPoll {
		return nil
	}
	if msg.err != nil {
		a.handleError(msg.err, msgLoadPollFailed)
		return nil
	}
	if !a.owns(msg.poll) {
		a.setError("You can only edit your own polls.")
		return a.navigate(guard.PollDetail, msg.poll.ID)
	}
	a.editor = pollform.NewEdit(msg.poll)
	a.editor.SetWidth(a.contentWidth())
	return a.editor.Init()
}

func (a *App) submitPoll(msg pollform.SubmitMsg) tea.Cmd {
	if a.busy {
		return nil
	}
	a.busy = true
	c, seq, ctx := a.client, a.seq, a.ctx
	return func() tea.Msg {
		if msg.Create != nil {
			p, err := c.Polls.Create(ctx, msg.Create)
			return pollSavedMsg{seq: seq, created: true, poll: p, err: err}
		}
		p, err := c.Polls.Update(ctx, msg.PollID, msg.Update)
		return pollSavedMsg{seq: seq, poll: p, err: err}
	}
}

func (a *App) handlePollSaved(msg pollSavedMsg) tea.Cmd {
	if msg.seq != a.seq || a.screen != ScreenEditor {
		return nil
	}
	a.busy = false

	if msg.err != nil {
		if a.session.HandleError(msg.err) {
			return nil
		}
		fallback := msgUpdateFailed
		if msg.created {
			fallback = msgCreateFailed
		}
		return a.editor.Retry(client.UserMessage(msg.err, fallback))
	}

	if msg.created {
		a.setInfo(fmt.Sprintf("Created poll #%d.", msg.poll.ID))
	} else {
		a.setInfo(fmt.Sprintf("Updated poll #%d.", msg.poll.ID))
	}
	a.back = location{route: guard.MyPolls}
	return a.navigate(guard.PollDetail, msg.poll.ID)
}

func (a *App) deletePoll(id int64) tea.Cmd {
	if a.busy {
		return nil
	}
	a.busy = true
	var list *polls.List
	if a.screen == ScreenList {
		list = a.list
	}
	c, seq, ctx := a.client, a.seq, a.ctx
	return func() tea.Msg {
		return pollDeletedMsg{seq: seq, id: id, err: polls.DeletePoll(ctx, c, list, id)}
	}
}

func (a *App) handlePollDeleted(msg pollDeletedMsg) tea.Cmd {
	if msg.seq != a.seq {
		return nil
	}
	a.busy = false

	if msg.err != nil {
		a.handleError(msg.err, msgDeleteFailed)
		return nil
	}
	a.setInfo(fmt.Sprintf("Deleted poll #%d.", msg.id))
	if a.screen == ScreenList {
		a.refreshList()
		return nil
	}
	return a.navigate(guard.MyPolls, 0)
}

// Rendering

// View implements tea.Model
func (a *App) View() string {
	var content string
	switch {
	case a.waiting:
		content = a.spinner.View() + " Checking session..."
	case a.confirm != nil:
		content = a.viewConfirm()
	case a.showMenu:
		content = a.menu.View()
	default:
		content = a.viewScreen()
	}

	if a.flash != "" {
		level := widgets.StatusOK
		if a.flashErr {
			level = widgets.StatusCritical
		}
		content += "\n\n" + widgets.StatusText(a.flash, level)
	}
	return a.wrapWithFrame(content)
}

func (a *App) viewScreen() string {
	switch a.screen {
	case ScreenList:
		if a.listView != nil {
			return a.listView.View()
		}
	case ScreenDetail:
		if a.detailView != nil {
			return a.detailView.View()
		}
	case ScreenAuth:
		if a.auth != nil {
			return a.auth.View()
		}
	case ScreenEditor:
		if a.editor == nil {
			return a.spinner.View() + " Loading poll..."
		}
		return a.editor.View()
	}
	return ""
}

func (a *App) viewConfirm() string {
	body := fmt.Sprintf("%s Delete %q?\n\nThis cannot be undone.\n\n%s Delete   %s Cancel",
		icons.Delete.String(), a.confirm.Title,
		styles.KeyStyle.Render("y"), styles.KeyStyle.Render("n"))
	return styles.ActivePanel.BorderForeground(styles.Danger).Render(body)
}

func (a *App) contentWidth() int {
	return max(a.width, minTerminalWidth) - panelPadding
}

func (a *App) contentHeight() int {
	// header, footer and the flash line
	return max(a.height-4, 10)
}

// renderHeader creates the top border with the app title and greeting
func (a *App) renderHeader() string {
	width := max(a.width, minTerminalWidth)

	borderStyle := lipgloss.NewStyle().Foreground(styles.Muted)
	titleStyle := lipgloss.NewStyle().Foreground(styles.Primary).Bold(true)
	contextStyle := lipgloss.NewStyle().Foreground(styles.Secondary)

	left := fmt.Sprintf(" %s %s ", icons.App.String(), titleStyle.Render("Voteverse"))

	right := lipgloss.NewStyle().Foreground(styles.Muted).Render(" Not logged in ")
	if u := a.session.User(); u != nil {
		right = contextStyle.Render(fmt.Sprintf(" %s Hello, %s ", icons.User.String(), u.DisplayName()))
	}

	fill := max(0, width-4-lipgloss.Width(left)-lipgloss.Width(right))
	return borderStyle.Render("╭─" + left + strings.Repeat("─", fill) + right + "─╮")
}

// shortcuts lists the keys of the current screen
func (a *App) shortcuts() []string {
	switch {
	case a.confirm != nil:
		return []string{"y Delete", "n Cancel"}
	case a.showMenu:
		return []string{"↑↓ Navigate", "Enter Select", "Esc Close"}
	}

	switch a.screen {
	case ScreenList:
		keys := []string{"↑↓ Move", "Enter Open", "n More", "r Refresh"}
		if a.authenticated {
			keys = append(keys, "c Create")
		}
		if a.loc.route == guard.MyPolls {
			keys = append(keys, "e Edit", "d Delete")
		}
		return append(keys, "m Menu", "q Quit")
	case ScreenDetail:
		var keys []string
		switch a.detail.Mode() {
		case polls.ModeCanVote:
			keys = append(keys, "↑↓ Choose", "Enter Vote")
		case polls.ModeHasVoted:
			if a.detail.CanRemoveVote() {
				keys = append(keys, "x Remove vote")
			}
		}
		if a.owns(a.detail.Poll()) {
			keys = append(keys, "e Edit", "d Delete")
		}
		return append(keys, "r Refresh", "b Back", "m Menu")
	case ScreenAuth:
		return []string{"Tab Next", "Enter Submit", "Esc Cancel"}
	case ScreenEditor:
		return []string{"Enter Next", "Esc Cancel"}
	}
	return nil
}

// renderFooter creates the bottom border with keyboard shortcuts and status
func (a *App) renderFooter() string {
	width := max(a.width, minTerminalWidth)

	borderStyle := lipgloss.NewStyle().Foreground(styles.Muted)
	keyStyle := lipgloss.NewStyle().Foreground(styles.Primary)
	labelStyle := lipgloss.NewStyle().Foreground(styles.Muted)

	shortcuts := a.shortcuts()
	styled := make([]string, 0, len(shortcuts))
	for _, s := range shortcuts {
		if k, label, ok := strings.Cut(s, " "); ok {
			styled = append(styled, keyStyle.Render(k)+" "+labelStyle.Render(label))
		} else {
			styled = append(styled, s)
		}
	}
	left := " " + strings.Join(styled, "  ") + " "

	right := ""
	if a.busy || (a.screen == ScreenList && a.list != nil && a.list.Loading()) {
		right = " " + a.spinner.View() + " Working... "
	}

	fill := max(0, width-4-lipgloss.Width(left)-lipgloss.Width(right))
	return borderStyle.Render("╰─" + left + strings.Repeat("─", fill) + right + "─╯")
}

// wrapWithFrame wraps content with header and footer
func (a *App) wrapWithFrame(content string) string {
	var sb strings.Builder
	sb.WriteString(a.renderHeader())
	sb.WriteString("\n")
	sb.WriteString(content)
	sb.WriteString("\n")
	sb.WriteString(a.renderFooter())
	return sb.String()
}

// Run starts the TUI at route and blocks until the user quits. ctx must
// carry the session service.
func Run(ctx context.Context, apiClient *client.Client, start guard.Route, pollID int64) error {
	app := New(ctx, apiClient, session.FromContext(ctx), start, pollID)
	defer app.Close()

	p := tea.NewProgram(app, tea.WithAltScreen(), tea.WithContext(ctx))
	_, err := p.Run()
	if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		return nil
	}
	return err
}

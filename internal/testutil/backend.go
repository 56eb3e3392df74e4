// ABOUTME: In-memory fake of the Voteverse REST backend for tests
// ABOUTME: Routes with chi, records requests, and can inject failures per route

package testutil

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sort"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/arizayilmaz/voteverse/internal/client"
	"github.com/go-chi/chi/v5"
)

// Request is one recorded call
type Request struct {
	Method string
	Path   string
	Query  string
	Auth   string
}

type account struct {
	user     client.User
	password string
}

type pollRecord struct {
	poll  client.Poll
	owner int64
	votes map[int64]int64 // user id -> option id
}

type failure struct {
	status  int
	message string
}

// Backend is a fake Voteverse API served by httptest
type Backend struct {
	Server *httptest.Server

	mu       sync.Mutex
	accounts map[string]*account
	tokens   map[string]int64
	polls    map[int64]*pollRecord
	requests []Request
	failures map[string]failure
	nextID   int64
	base     time.Time
	now      func() time.Time
}

// NewBackend starts a fake backend that is closed with the test
func NewBackend(t *testing.T) *Backend {
	t.Helper()

	b := &Backend{
		accounts: make(map[string]*account),
		tokens:   make(map[string]int64),
		polls:    make(map[int64]*pollRecord),
		failures: make(map[string]failure),
		base:     time.Date(2026, 1, 1, 9, 0, 0, 0, time.UTC),
		now:      time.Now,
	}

	r := chi.NewRouter()
	r.Use(b.record)
	r.Route("/api", func(r chi.Router) {
		r.Post("/auth/login", b.login)
		r.Post("/auth/register", b.register)
		r.Get("/polls/public", b.listPublic)
		r.Get("/polls/public/{id}", b.getPoll)
		r.Get("/polls/my", b.listMine)
		r.Post("/polls", b.createPoll)
		r.Put("/polls/{id}", b.updatePoll)
		r.Delete("/polls/{id}", b.deletePoll)
		r.Post("/votes/polls/{id}", b.castVote)
		r.Get("/votes/my", b.listVotes)
		r.Delete("/votes/polls/{id}", b.removeVote)
	})

	b.Server = httptest.NewServer(r)
	t.Cleanup(b.Server.Close)
	return b
}

// URL is the API base URL to hand to client.New
func (b *Backend) URL() string {
	return b.Server.URL + "/api"
}

// AddUser registers an account and returns a valid bearer token for it
func (b *Backend) AddUser(username, password string) string {
	b.mu.Lock()
	defer b.mu.Unlock()
	acct, ok := b.accounts[username]
	if ok {
		acct.password = password
	} else {
		acct = b.addAccountLocked(username, username+"@example.com", password, "")
	}
	return b.issueTokenLocked(acct.user.ID)
}

// AddPoll creates a poll owned by username with the given options
func (b *Backend) AddPoll(username, title string, options ...string) client.Poll {
	b.mu.Lock()
	defer b.mu.Unlock()
	acct, ok := b.accounts[username]
	if !ok {
		acct = b.addAccountLocked(username, username+"@example.com", "secret", "")
	}
	rec := b.addPollLocked(acct, client.CreatePollRequest{Title: title, Options: options})
	return b.viewLocked(rec, 0)
}

// SetMultipleVotes toggles allowMultipleVotes on a poll
func (b *Backend) SetMultipleVotes(pollID int64, allow bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if rec, ok := b.polls[pollID]; ok {
		rec.poll.AllowMultipleVotes = allow
	}
}

// SetExpiry moves a poll's expiry
func (b *Backend) SetExpiry(pollID int64, at time.Time) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if rec, ok := b.polls[pollID]; ok {
		ts := client.NewTimestamp(at)
		rec.poll.ExpiresAt = &ts
	}
}

// Fail makes every request matching method and path (e.g. "/api/polls/3")
// answer with status and an {"error": message} body.
func (b *Backend) Fail(method, path string, status int, message string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.failures[method+" "+path] = failure{status: status, message: message}
}

// RevokeTokens invalidates every issued token so the next call returns 401
func (b *Backend) RevokeTokens() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.tokens = make(map[string]int64)
}

// Requests returns a copy of the recorded requests
func (b *Backend) Requests() []Request {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]Request, len(b.requests))
	copy(out, b.requests)
	return out
}

// Count returns how many recorded requests match method and path
func (b *Backend) Count(method, path string) int {
	n := 0
	for _, r := range b.Requests() {
		if r.Method == method && r.Path == path {
			n++
		}
	}
	return n
}

func (b *Backend) record(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b.mu.Lock()
		b.requests = append(b.requests, Request{
			Method: r.Method,
			Path:   r.URL.Path,
			Query:  r.URL.RawQuery,
			Auth:   r.Header.Get("Authorization"),
		})
		f, failing := b.failures[r.Method+" "+r.URL.Path]
		b.mu.Unlock()

		if failing {
			writeError(w, f.status, f.message)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// caller resolves the bearer token; ok is false when a token was sent but is invalid
func (b *Backend) caller(r *http.Request) (userID int64, ok bool) {
	header := r.Header.Get("Authorization")
	if header == "" {
		return 0, true
	}
	token := strings.TrimPrefix(header, "Bearer ")
	b.mu.Lock()
	defer b.mu.Unlock()
	id, found := b.tokens[token]
	return id, found
}

func (b *Backend) requireUser(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, ok := b.caller(r)
	if !ok || id == 0 {
		writeError(w, http.StatusUnauthorized, "Full authentication is required")
		return 0, false
	}
	return id, true
}

func (b *Backend) login(w http.ResponseWriter, r *http.Request) {
	var in client.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeError(w, http.StatusBadRequest, "malformed request")
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	for _, acct := range b.accounts {
		if (acct.user.Username == in.UsernameOrEmail || acct.user.Email == in.UsernameOrEmail) && acct.password == in.Password {
			writeJSON(w, http.StatusOK, b.authResponseLocked(acct))
			return
		}
	}
	writeError(w, http.StatusUnauthorized, "Bad credentials")
}

func (b *Backend) register(w http.ResponseWriter, r *http.Request) {
	var in client.RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeError(w, http.StatusBadRequest, "malformed request")
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	if _, exists := b.accounts[in.Username]; exists {
		writeError(w, http.StatusBadRequest, "Username is already taken")
		return
	}
	acct := b.addAccountLocked(in.Username, in.Email, in.Password, in.FullName)
	writeJSON(w, http.StatusOK, b.authResponseLocked(acct))
}

func (b *Backend) listPublic(w http.ResponseWriter, r *http.Request) {
	userID, ok := b.caller(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "Invalid token")
		return
	}
	b.writePage(w, r, userID, func(*pollRecord) bool { return true })
}

func (b *Backend) listMine(w http.ResponseWriter, r *http.Request) {
	userID, ok := b.requireUser(w, r)
	if !ok {
		return
	}
	b.writePage(w, r, userID, func(rec *pollRecord) bool { return rec.owner == userID })
}

func (b *Backend) writePage(w http.ResponseWriter, r *http.Request, userID int64, keep func(*pollRecord) bool) {
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	size, _ := strconv.Atoi(r.URL.Query().Get("size"))
	if size <= 0 {
		size = client.DefaultPageSize
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	var recs []*pollRecord
	for _, rec := range b.polls {
		if keep(rec) {
			recs = append(recs, rec)
		}
	}
	// createdAt desc == id desc
	sort.Slice(recs, func(i, j int) bool { return recs[i].poll.ID > recs[j].poll.ID })

	total := len(recs)
	totalPages := (total + size - 1) / size
	start := page * size
	end := start + size
	if start > total {
		start = total
	}
	if end > total {
		end = total
	}

	content := make([]client.Poll, 0, end-start)
	for _, rec := range recs[start:end] {
		content = append(content, b.viewLocked(rec, userID))
	}

	writeJSON(w, http.StatusOK, client.Page[client.Poll]{
		Content:       content,
		TotalElements: int64(total),
		TotalPages:    totalPages,
		Size:          size,
		Number:        page,
		First:         page == 0,
		Last:          end >= total,
	})
}

func (b *Backend) getPoll(w http.ResponseWriter, r *http.Request) {
	userID, ok := b.caller(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "Invalid token")
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	rec, found := b.pollLocked(r)
	if !found {
		writeError(w, http.StatusNotFound, "Poll not found")
		return
	}
	writeJSON(w, http.StatusOK, b.viewLocked(rec, userID))
}

func (b *Backend) createPoll(w http.ResponseWriter, r *http.Request) {
	userID, ok := b.requireUser(w, r)
	if !ok {
		return
	}
	var in client.CreatePollRequest
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeError(w, http.StatusBadRequest, "malformed request")
		return
	}
	if len(in.Options) < 2 {
		writeError(w, http.StatusBadRequest, "A poll needs at least 2 options")
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	rec := b.addPollLocked(b.accountByIDLocked(userID), in)
	writeJSON(w, http.StatusCreated, b.viewLocked(rec, userID))
}

func (b *Backend) updatePoll(w http.ResponseWriter, r *http.Request) {
	userID, ok := b.requireUser(w, r)
	if !ok {
		return
	}
	var in client.UpdatePollRequest
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeError(w, http.StatusBadRequest, "malformed request")
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	rec, found := b.pollLocked(r)
	if !found {
		writeError(w, http.StatusNotFound, "Poll not found")
		return
	}
	if rec.owner != userID {
		writeError(w, http.StatusForbidden, "You can only edit your own polls")
		return
	}
	if in.Title != nil {
		rec.poll.Title = *in.Title
	}
	if in.Description != nil {
		rec.poll.Description = *in.Description
	}
	if in.AllowMultipleVotes != nil {
		rec.poll.AllowMultipleVotes = *in.AllowMultipleVotes
	}
	if in.ExpiresAt != nil {
		rec.poll.ExpiresAt = in.ExpiresAt
	}
	if len(in.Options) > 0 {
		rec.poll.Options = b.optionsLocked(in.Options)
		rec.votes = make(map[int64]int64)
	}
	rec.poll.UpdatedAt = client.NewTimestamp(b.now())
	writeJSON(w, http.StatusOK, b.viewLocked(rec, userID))
}

func (b *Backend) deletePoll(w http.ResponseWriter, r *http.Request) {
	userID, ok := b.requireUser(w, r)
	if !ok {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	rec, found := b.pollLocked(r)
	if !found {
		writeError(w, http.StatusNotFound, "Poll not found")
		return
	}
	if rec.owner != userID {
		writeError(w, http.StatusForbidden, "You can only delete your own polls")
		return
	}
	delete(b.polls, rec.poll.ID)
	w.WriteHeader(http.StatusNoContent)
}

func (b *Backend) castVote(w http.ResponseWriter, r *http.Request) {
	userID, ok := b.requireUser(w, r)
	if !ok {
		return
	}
	var in client.VoteRequest
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeError(w, http.StatusBadRequest, "malformed request")
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	rec, found := b.pollLocked(r)
	if !found {
		writeError(w, http.StatusNotFound, "Poll not found")
		return
	}
	if b.expiredLocked(rec) {
		writeError(w, http.StatusBadRequest, "This poll has expired")
		return
	}
	option, exists := rec.poll.Option(in.OptionID)
	if !exists {
		writeError(w, http.StatusBadRequest, "Option does not belong to this poll")
		return
	}
	if _, voted := rec.votes[userID]; voted && !rec.poll.AllowMultipleVotes {
		writeError(w, http.StatusBadRequest, "You have already voted on this poll")
		return
	}
	rec.votes[userID] = option.ID

	writeJSON(w, http.StatusOK, client.Vote{
		ID:         b.nextIDLocked(),
		PollID:     rec.poll.ID,
		PollTitle:  rec.poll.Title,
		OptionID:   option.ID,
		OptionText: option.Text,
		CreatedAt:  client.NewTimestamp(b.now()),
	})
}

func (b *Backend) listVotes(w http.ResponseWriter, r *http.Request) {
	userID, ok := b.requireUser(w, r)
	if !ok {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()

	ids := make([]int64, 0, len(b.polls))
	for id := range b.polls {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	votes := []client.Vote{}
	for _, id := range ids {
		rec := b.polls[id]
		optionID, voted := rec.votes[userID]
		if !voted {
			continue
		}
		option, _ := rec.poll.Option(optionID)
		votes = append(votes, client.Vote{
			ID:         id*1000 + userID,
			PollID:     rec.poll.ID,
			PollTitle:  rec.poll.Title,
			OptionID:   option.ID,
			OptionText: option.Text,
			CreatedAt:  rec.poll.CreatedAt,
		})
	}
	writeJSON(w, http.StatusOK, votes)
}

func (b *Backend) removeVote(w http.ResponseWriter, r *http.Request) {
	userID, ok := b.requireUser(w, r)
	if !ok {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	rec, found := b.pollLocked(r)
	if !found {
		writeError(w, http.StatusNotFound, "Poll not found")
		return
	}
	if _, voted := rec.votes[userID]; !voted {
		writeError(w, http.StatusBadRequest, "You have not voted on this poll")
		return
	}
	delete(rec.votes, userID)
	w.WriteHeader(http.StatusNoContent)
}

func (b *Backend) addAccountLocked(username, email, password, fullName string) *account {
	acct := &account{
		user: client.User{
			ID:        b.nextIDLocked(),
			Username:  username,
			Email:     email,
			FullName:  fullName,
			Active:    true,
			CreatedAt: client.NewTimestamp(b.base),
		},
		password: password,
	}
	b.accounts[username] = acct
	return acct
}

func (b *Backend) accountByIDLocked(id int64) *account {
	for _, acct := range b.accounts {
		if acct.user.ID == id {
			return acct
		}
	}
	return nil
}

func (b *Backend) issueTokenLocked(userID int64) string {
	token := fmt.Sprintf("token-%d-%d", userID, b.nextIDLocked())
	b.tokens[token] = userID
	return token
}

func (b *Backend) authResponseLocked(acct *account) client.AuthResponse {
	return client.AuthResponse{
		Token:    b.issueTokenLocked(acct.user.ID),
		Type:     "Bearer",
		ID:       acct.user.ID,
		Username: acct.user.Username,
		Email:    acct.user.Email,
		FullName: acct.user.FullName,
	}
}

func (b *Backend) addPollLocked(owner *account, in client.CreatePollRequest) *pollRecord {
	id := b.nextIDLocked()
	created := client.NewTimestamp(b.base.Add(time.Duration(id) * time.Minute))
	rec := &pollRecord{
		poll: client.Poll{
			ID:                 id,
			Title:              in.Title,
			Description:        in.Description,
			Creator:            owner.user,
			Options:            b.optionsLocked(in.Options),
			Active:             true,
			AllowMultipleVotes: in.AllowMultipleVotes,
			ExpiresAt:          in.ExpiresAt,
			CreatedAt:          created,
			UpdatedAt:          created,
		},
		owner: owner.user.ID,
		votes: make(map[int64]int64),
	}
	b.polls[id] = rec
	return rec
}

func (b *Backend) optionsLocked(texts []string) []client.PollOption {
	options := make([]client.PollOption, len(texts))
	for i, text := range texts {
		options[i] = client.PollOption{ID: b.nextIDLocked(), Text: text, DisplayOrder: i}
	}
	return options
}

func (b *Backend) pollLocked(r *http.Request) (*pollRecord, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		return nil, false
	}
	rec, ok := b.polls[id]
	return rec, ok
}

func (b *Backend) expiredLocked(rec *pollRecord) bool {
	return rec.poll.ExpiresAt != nil && !rec.poll.ExpiresAt.IsZero() && rec.poll.ExpiresAt.Before(b.now())
}

// viewLocked renders a poll as seen by userID (0 = anonymous)
func (b *Backend) viewLocked(rec *pollRecord, userID int64) client.Poll {
	p := rec.poll
	p.Options = make([]client.PollOption, len(rec.poll.Options))
	copy(p.Options, rec.poll.Options)

	counts := make(map[int64]int64)
	for _, optionID := range rec.votes {
		counts[optionID]++
	}
	p.TotalVotes = int64(len(rec.votes))
	for i := range p.Options {
		p.Options[i].VoteCount = counts[p.Options[i].ID]
		if p.TotalVotes > 0 {
			p.Options[i].VotePercentage = float64(p.Options[i].VoteCount) * 100 / float64(p.TotalVotes)
		}
	}
	_, p.HasUserVoted = rec.votes[userID]
	p.IsExpired = b.expiredLocked(rec)
	return p
}

func (b *Backend) nextIDLocked() int64 {
	b.nextID++
	return b.nextID
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, client.ErrorResponse{Error: message})
}

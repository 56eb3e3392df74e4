// ABOUTME: Process-wide authentication state: token plus user projection
// ABOUTME: Owns rehydration, login, logout, and the single unauthorized handler

package session

import (
	"encoding/json"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/arizayilmaz/voteverse/internal/client"
)

// Reason says why the session changed
type Reason int

const (
	ReasonRehydrated Reason = iota
	ReasonLogin
	ReasonLogout
	ReasonUnauthorized
)

func (r Reason) String() string {
	switch r {
	case ReasonRehydrated:
		return "rehydrated"
	case ReasonLogin:
		return "login"
	case ReasonLogout:
		return "logout"
	case ReasonUnauthorized:
		return "unauthorized"
	}
	return "unknown"
}

// State is an immutable snapshot. Token and User are both set or both absent.
type State struct {
	Token   string
	User    *client.User
	Loading bool
}

// IsAuthenticated reports whether a token is present
func (s State) IsAuthenticated() bool {
	return s.Token != ""
}

// Event is delivered to subscribers after each session write
type Event struct {
	State  State
	Reason Reason
}

// Service is the session state container. Create one per process and pass it
// explicitly or through NewContext to everything that needs it.
type Service struct {
	store Store
	now   func() time.Time

	mu    sync.RWMutex
	state State

	subMu  sync.Mutex
	nextID int
	subs   map[int]func(Event)
}

// New creates a service over store. The service reports Loading until
// Rehydrate has run.
func New(store Store) *Service {
	if store == nil {
		panic("session: nil store")
	}
	return &Service{
		store: store,
		now:   time.Now,
		state: State{Loading: true},
		subs:  make(map[int]func(Event)),
	}
}

// Rehydrate restores the session from storage. It never fails: unreadable or
// inconsistent entries are cleared and the session starts anonymous.
func (s *Service) Rehydrate() State {
	next := State{}

	token, raw, err := s.store.Load()
	switch {
	case err != nil:
		slog.Warn("Session storage unreadable, starting anonymous", "error", err)
	case token == "" && len(raw) == 0:
		// nothing stored
	case token == "" || len(raw) == 0:
		slog.Warn("Incomplete session in storage, clearing it")
		s.clearStore()
	default:
		var user client.User
		if err := json.Unmarshal(raw, &user); err != nil {
			slog.Warn("Stored user is malformed, clearing session", "error", err)
			s.clearStore()
			break
		}
		if user.ID == 0 && user.Username == "" {
			slog.Warn("Stored user is empty, clearing session")
			s.clearStore()
			break
		}
		next = State{Token: token, User: &user}
	}

	s.set(next, ReasonRehydrated)
	return next
}

// Login adopts the credentials from a successful login or register response
func (s *Service) Login(resp *client.AuthResponse) error {
	if resp == nil || resp.Token == "" {
		return errors.New("session: empty auth response")
	}

	user := &client.User{
		ID:        resp.ID,
		Username:  resp.Username,
		Email:     resp.Email,
		FullName:  resp.FullName,
		Active:    true,
		CreatedAt: client.NewTimestamp(s.now()),
	}
	raw, err := json.Marshal(user)
	if err != nil {
		return err
	}

	// Memory first so the next request already carries the new token.
	s.set(State{Token: resp.Token, User: user}, ReasonLogin)

	if err := s.store.Save(resp.Token, raw); err != nil {
		slog.Warn("Session could not be persisted", "error", err)
		return err
	}
	slog.Debug("Session established", "user", user.Username)
	return nil
}

// Logout clears memory and storage. Calling it while logged out is harmless.
func (s *Service) Logout() {
	s.clearStore()
	s.set(State{}, ReasonLogout)
}

// HandleError is the one place that reacts to an unauthorized response. It
// tears the session down and reports true for client.ErrUnauthorized; every
// other error is left to the caller.
func (s *Service) HandleError(err error) bool {
	if !errors.Is(err, client.ErrUnauthorized) {
		return false
	}
	slog.Info("Backend rejected the session token, logging out")
	s.clearStore()
	s.set(State{}, ReasonUnauthorized)
	return true
}

// Snapshot returns the current state
func (s *Service) Snapshot() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// Token implements client.TokenSource
func (s *Service) Token() string {
	return s.Snapshot().Token
}

// User returns the signed-in user or nil
func (s *Service) User() *client.User {
	return s.Snapshot().User
}

func (s *Service) IsAuthenticated() bool {
	return s.Snapshot().IsAuthenticated()
}

func (s *Service) IsLoading() bool {
	return s.Snapshot().Loading
}

// Subscribe registers fn for every later change and returns a function that
// removes it. Callbacks run synchronously on the writer's goroutine.
func (s *Service) Subscribe(fn func(Event)) (unsubscribe func()) {
	s.subMu.Lock()
	defer s.subMu.Unlock()
	id := s.nextID
	s.nextID++
	s.subs[id] = fn

	var once sync.Once
	return func() {
		once.Do(func() {
			s.subMu.Lock()
			defer s.subMu.Unlock()
			delete(s.subs, id)
		})
	}
}

func (s *Service) set(next State, reason Reason) {
	s.mu.Lock()
	s.state = next
	s.mu.Unlock()

	s.subMu.Lock()
	subs := make([]func(Event), 0, len(s.subs))
	for _, fn := range s.subs {
		subs = append(subs, fn)
	}
	s.subMu.Unlock()

	ev := Event{State: next, Reason: reason}
	for _, fn := range subs {
		fn(ev)
	}
}

func (s *Service) clearStore() {
	if err := s.store.Clear(); err != nil {
		slog.Warn("Session storage could not be cleared", "error", err)
	}
}

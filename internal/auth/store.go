// Copyright (c) 2025 Sessionctl
// Licensed under the MIT License. See LICENSE file in the project root for details.

package auth

import (
	"context"
	"sync"

	"github.com/pterm/pterm"

	"sessionctl/cli/internal/backend"
	apperrors "sessionctl/cli/internal/errors"
	"sessionctl/cli/internal/logging"
	"sessionctl/cli/internal/notify"
)

// DefaultFallbackMessage is shown when a failed request carries no server message.
const DefaultFallbackMessage = "An error occurred"

// Notification texts.
const (
	MsgPasswordMismatch = "Passwords do not match"
	MsgSignupSuccess    = "Signup successful"
	MsgLoginSuccess     = "Login successful"
	MsgLogoutSuccess    = "Logout successful"
)

// SignupInput is what the user enters to create an account.
type SignupInput struct {
	Name            string
	Email           string
	Password        string
	ConfirmPassword string
}

// Store owns the Session and runs the auth flows that change it.
// It is safe for concurrent use.
type Store struct {
	api      backend.API
	notifier notify.Notifier
	fallback string
	log      *pterm.Logger

	mu        sync.Mutex
	state     Session
	listeners map[int]func(Session)
	nextID    int
}

// Option customizes a Store.
type Option func(*Store)

// WithLogger sets the debug logger.
func WithLogger(l *pterm.Logger) Option {
	return func(s *Store) { s.log = l }
}

// WithFallbackMessage overrides DefaultFallbackMessage.
func WithFallbackMessage(msg string) Option {
	return func(s *Store) { s.fallback = msg }
}

// NewStore returns a logged-out store.
func NewStore(api backend.API, n notify.Notifier, opts ...Option) *Store {
	s := &Store{
		api:       api,
		notifier:  n,
		fallback:  DefaultFallbackMessage,
		log:       logging.Discard(),
		listeners: map[int]func(Session){},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// State returns a copy of the current session.
func (s *Store) State() Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.clone()
}

// Subscribe registers fn to be called with the new state after every change.
// Listeners run on the goroutine that made the change, outside the store lock.
// The returned func removes the listener.
func (s *Store) Subscribe(fn func(Session)) (unsubscribe func()) {
	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.listeners[id] = fn
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		delete(s.listeners, id)
		s.mu.Unlock()
	}
}

// update applies fn under the lock and then notifies listeners.
func (s *Store) update(fn func(*Session)) {
	s.mu.Lock()
	fn(&s.state)
	s.publishLocked()
}

// publishLocked releases the lock taken by the caller and calls the listeners.
func (s *Store) publishLocked() {
	st := s.state.clone()
	fns := make([]func(Session), 0, len(s.listeners))
	for _, fn := range s.listeners {
		fns = append(fns, fn)
	}
	s.mu.Unlock()

	s.log.Trace("session changed", s.log.Args(
		"authenticated", st.Authenticated(),
		"loading", st.Loading,
		"checking_auth", st.CheckingAuth,
	))
	for _, fn := range fns {
		fn(st)
	}
}

// fail clears the busy flag, reports err and returns it.
func (s *Store) fail(action string, err error) error {
	s.update(func(st *Session) { st.Loading = false })
	msg := apperrors.MessageOr(err, s.fallback)
	s.log.Debug(action+" failed", s.log.Args("status", apperrors.StatusOf(err), "error", logging.Mask(err.Error())))
	s.notifier.Error(msg)
	return err
}

// Signup creates an account and logs it in. A password mismatch is rejected
// locally without contacting the server.
func (s *Store) Signup(ctx context.Context, in SignupInput) error {
	s.update(func(st *Session) { st.Loading = true })

	if in.Password != in.ConfirmPassword {
		s.update(func(st *Session) { st.Loading = false })
		s.notifier.Error(MsgPasswordMismatch)
		return apperrors.New(apperrors.Validation, MsgPasswordMismatch)
	}

	user, err := s.api.Signup(ctx, backend.SignupRequest{
		Name:     in.Name,
		Email:    in.Email,
		Password: in.Password,
	})
	if err != nil {
		return s.fail("signup", err)
	}

	s.update(func(st *Session) {
		st.User = user
		st.Loading = false
	})
	s.log.Debug("signed up", s.log.Args("user", user.Identifier()))
	s.notifier.Success(MsgSignupSuccess)
	return nil
}

// Login starts a session for email.
func (s *Store) Login(ctx context.Context, email, password string) error {
	s.update(func(st *Session) { st.Loading = true })

	user, err := s.api.Login(ctx, backend.LoginRequest{Email: email, Password: password})
	if err != nil {
		return s.fail("login", err)
	}

	s.update(func(st *Session) {
		st.User = user
		st.Loading = false
	})
	s.log.Debug("logged in", s.log.Args("user", user.Identifier()))
	s.notifier.Success(MsgLoginSuccess)
	return nil
}

// Logout ends the session on the server. The user is cleared only when the
// server call succeeds; after a failed logout the user stays set.
func (s *Store) Logout(ctx context.Context) error {
	s.update(func(st *Session) { st.Loading = true })

	if err := s.api.Logout(ctx); err != nil {
		return s.fail("logout", err)
	}

	s.update(func(st *Session) {
		st.User = nil
		st.Loading = false
	})
	s.log.Debug("logged out")
	s.notifier.Success(MsgLogoutSuccess)
	return nil
}

// CheckAuth loads the profile for the current cookies. Failure means logged
// out and is not reported to the user; the error is still returned.
func (s *Store) CheckAuth(ctx context.Context) error {
	s.update(func(st *Session) { st.CheckingAuth = true })

	user, err := s.api.Profile(ctx)
	if err != nil {
		s.update(func(st *Session) {
			st.User = nil
			st.CheckingAuth = false
		})
		s.log.Debug("auth check failed", s.log.Args("status", apperrors.StatusOf(err)))
		return err
	}

	s.update(func(st *Session) {
		st.User = user
		st.CheckingAuth = false
	})
	return nil
}

// RefreshToken asks the server for a new access cookie and returns the token
// metadata it sends back. While a check or refresh is already in progress it
// returns (nil, nil) without calling the server. Failures clear the user and
// are returned, never reported through the notifier.
func (s *Store) RefreshToken(ctx context.Context) (map[string]any, error) {
	s.mu.Lock()
	if s.state.CheckingAuth {
		s.mu.Unlock()
		s.log.Debug("refresh skipped, auth check in progress")
		return nil, nil
	}
	s.state.CheckingAuth = true
	s.publishLocked()

	meta, err := s.api.RefreshToken(ctx)
	if err != nil {
		s.update(func(st *Session) {
			st.User = nil
			st.CheckingAuth = false
		})
		s.log.Debug("refresh failed", s.log.Args("status", apperrors.StatusOf(err)))
		return nil, err
	}

	s.update(func(st *Session) { st.CheckingAuth = false })
	return meta, nil
}

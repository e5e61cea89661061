// Copyright (c) 2025 Sessionctl
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package interceptor refreshes an expired session transparently. It wraps the
// HTTP client: a 401 triggers exactly one token refresh, shared by every
// request that fails while it is pending, after which the original request is
// replayed once. When the refresh fails the session is logged out and the
// refresh error is returned to the caller.
package interceptor

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/pterm/pterm"

	"sessionctl/cli/internal/logging"
)

// Doer sends a single HTTP request. *http.Client and *Interceptor implement it.
type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

// SessionActions is the part of the session store the interceptor drives.
type SessionActions interface {
	RefreshToken(ctx context.Context) (map[string]any, error)
	Logout(ctx context.Context) error
}

// Options configures an Interceptor.
type Options struct {
	// Gate coalesces concurrent refreshes. A new one is created when nil;
	// pass a shared Gate to coalesce across several interceptors.
	Gate *Gate
	// Skip lists URL path suffixes whose 401 responses are passed through
	// untouched. The refresh and logout endpoints belong here: a refresh
	// triggered by either of them would wait on itself or loop.
	Skip []string
	// RefreshTimeout bounds one shared refresh and the forced logout that
	// may follow it. Defaults to DefaultRefreshTimeout.
	RefreshTimeout time.Duration
	// Logger receives debug lines about refresh decisions.
	Logger *pterm.Logger
}

// DefaultRefreshTimeout is used when Options.RefreshTimeout is zero.
const DefaultRefreshTimeout = 30 * time.Second

// Interceptor is a Doer that refreshes the session on 401 responses.
type Interceptor struct {
	next    Doer
	gate    *Gate
	skip    []string
	timeout time.Duration
	log     *pterm.Logger

	mu      sync.RWMutex
	session SessionActions
}

// New wraps next. The session store is bound later with Bind, because the
// store's backend normally sends its own requests through this interceptor.
func New(next Doer, opts Options) *Interceptor {
	i := &Interceptor{
		next:    next,
		gate:    opts.Gate,
		timeout: opts.RefreshTimeout,
		log:     opts.Logger,
	}
	if i.timeout <= 0 {
		i.timeout = DefaultRefreshTimeout
	}
	if i.gate == nil {
		i.gate = NewGate()
	}
	if i.log == nil {
		i.log = logging.Discard()
	}
	for _, p := range opts.Skip {
		if p = strings.TrimSpace(p); p != "" {
			i.skip = append(i.skip, p)
		}
	}
	return i
}

// Bind sets the session the interceptor refreshes and logs out. Until a
// session is bound, 401 responses pass through.
func (i *Interceptor) Bind(s SessionActions) {
	i.mu.Lock()
	defer i.mu.Unlock()
	i.session = s
}

// Gate returns the gate used to coalesce refreshes.
func (i *Interceptor) Gate() *Gate {
	return i.gate
}

func (i *Interceptor) bound() SessionActions {
	i.mu.RLock()
	defer i.mu.RUnlock()
	return i.session
}

func (i *Interceptor) skipped(path string) bool {
	for _, s := range i.skip {
		if strings.HasSuffix(path, s) {
			return true
		}
	}
	return false
}

// Do sends req and, on a first 401, refreshes the session and replays req.
func (i *Interceptor) Do(req *http.Request) (*http.Response, error) {
	orig, err := capture(req)
	if err != nil {
		return nil, err
	}

	resp, err := i.next.Do(req)
	if err != nil || resp.StatusCode != http.StatusUnauthorized {
		return resp, err
	}

	ctx := req.Context()
	path := req.URL.Path
	if Retried(ctx) || i.skipped(path) {
		return resp, nil
	}
	session := i.bound()
	if session == nil {
		return resp, nil
	}

	_, _ = io.Copy(io.Discard, resp.Body)
	_ = resp.Body.Close()

	i.log.Debug("unauthorized response, waiting for refresh", i.log.Args(
		"method", req.Method,
		"path", path,
		"pending", i.gate.InFlight(),
	))

	// The flight outlives the request that started it: callers joining it
	// must not inherit that request's cancellation.
	flightCtx := context.WithoutCancel(ctx)
	shared, err := i.gate.Do(ctx, func() error {
		fctx, cancel := context.WithTimeout(flightCtx, i.timeout)
		defer cancel()
		return i.refresh(fctx, session)
	})
	if err != nil {
		i.log.Debug("refresh failed, not replaying", i.log.Args("path", path, "error", logging.Mask(err.Error())))
		return nil, err
	}

	replay, err := orig.replay(WithRetried(ctx))
	if err != nil {
		return nil, err
	}
	i.log.Debug("replaying request", i.log.Args("method", replay.Method, "path", path, "shared_refresh", shared))
	return i.Do(replay)
}

// refresh is the body of one flight. A failed refresh forces a logout here,
// inside the flight, so waiters sharing the failure do not log out again.
// A cancelled refresh says nothing about the session and keeps it.
func (i *Interceptor) refresh(ctx context.Context, s SessionActions) error {
	i.log.Debug("refreshing session")
	_, err := s.RefreshToken(ctx)
	switch {
	case err == nil:
		return nil
	case errors.Is(err, context.Canceled):
		i.log.Debug("session refresh cancelled", i.log.Args("error", logging.Mask(err.Error())))
		return err
	}
	i.log.Warn("session refresh failed, logging out", i.log.Args("error", logging.Mask(err.Error())))
	_ = s.Logout(context.WithoutCancel(ctx))
	return err
}

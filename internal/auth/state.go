// Copyright (c) 2025 Sessionctl
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package auth holds the client-side session: who is logged in and which
// auth operation is in progress. The Store runs the signup, login, logout,
// check and refresh flows against the backend, reports their outcome through
// a notifier, and lets observers subscribe to state changes. The cookies that
// make up the server session live in a Jar and can be persisted to the OS
// keychain between CLI invocations.
package auth

import (
	"maps"

	"sessionctl/cli/internal/backend"
)

// Session is a snapshot of the store state.
type Session struct {
	// User is the profile of the logged-in user, nil when logged out.
	User backend.Profile
	// Loading is true while signup, login or logout is in progress.
	Loading bool
	// CheckingAuth is true while a profile check or token refresh is in progress.
	CheckingAuth bool
}

// Authenticated reports whether a user is present.
func (s Session) Authenticated() bool {
	return s.User != nil
}

func (s Session) clone() Session {
	if s.User != nil {
		s.User = maps.Clone(s.User)
	}
	return s
}

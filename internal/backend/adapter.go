// Copyright (c) 2025 Sessionctl
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package backend is the HTTP client for the auth server. It defines the API
// contract the session store depends on and an implementation that sends every
// request through a Doer, which is normally the unauthorized-response
// interceptor wrapping an *http.Client with a cookie jar.
package backend

import (
	"context"
	"net/http"
	"strconv"
)

// API defines backend operations the session store depends on.
// Implementations may call real HTTP endpoints or provide fakes for tests.
type API interface {
	Signup(ctx context.Context, req SignupRequest) (Profile, error)
	Login(ctx context.Context, req LoginRequest) (Profile, error)
	// Logout invalidates the session cookies on the server.
	Logout(ctx context.Context) error
	// Profile returns the profile of the user the current cookies belong to.
	Profile(ctx context.Context) (Profile, error)
	// RefreshToken exchanges the refresh cookie for a new access cookie and
	// returns whatever token metadata the server sends back.
	RefreshToken(ctx context.Context) (map[string]any, error)
}

// Doer sends a single HTTP request. *http.Client implements it.
type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

// SignupRequest is the body of POST /auth/signup.
type SignupRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginRequest is the body of POST /auth/login.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Profile is the user record returned by the server. Its shape belongs to the
// server; the client only reads a few well-known fields for display.
type Profile map[string]any

// Identifier returns the first non-empty display field of the profile.
func (p Profile) Identifier() string {
	for _, key := range []string{"email", "name", "_id", "id", "user_id"} {
		switch v := p[key].(type) {
		case string:
			if v != "" {
				return v
			}
		case float64:
			return strconv.FormatFloat(v, 'f', -1, 64)
		}
	}
	return ""
}

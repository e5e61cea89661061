// Copyright (c) 2025 Sessionctl
// Licensed under the MIT License. See LICENSE file in the project root for details.

package backend

import (
	"context"
	"net/http"
)

// Signup calls POST /auth/signup and returns the created user's profile.
// The server sets the session cookies on success.
func (h *HTTP) Signup(ctx context.Context, in SignupRequest) (Profile, error) {
	data, err := h.send(ctx, http.MethodPost, h.endpoints.Signup, in)
	if err != nil {
		return nil, err
	}
	rec, err := decodeRecord(data)
	if err != nil {
		return nil, err
	}
	return Profile(rec), nil
}

// Login calls POST /auth/login and returns the user's profile.
func (h *HTTP) Login(ctx context.Context, in LoginRequest) (Profile, error) {
	data, err := h.send(ctx, http.MethodPost, h.endpoints.Login, in)
	if err != nil {
		return nil, err
	}
	rec, err := decodeRecord(data)
	if err != nil {
		return nil, err
	}
	return Profile(rec), nil
}

// Logout calls POST /auth/logout. The response body is ignored.
func (h *HTTP) Logout(ctx context.Context) error {
	_, err := h.send(ctx, http.MethodPost, h.endpoints.Logout, nil)
	return err
}

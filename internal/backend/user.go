// Copyright (c) 2025 Sessionctl
// Licensed under the MIT License. See LICENSE file in the project root for details.

package backend

import (
	"context"
	"net/http"
)

// Profile calls GET /auth/profile with the current session cookies.
func (h *HTTP) Profile(ctx context.Context) (Profile, error) {
	data, err := h.send(ctx, http.MethodGet, h.endpoints.Profile, nil)
	if err != nil {
		return nil, err
	}
	rec, err := decodeRecord(data)
	if err != nil {
		return nil, err
	}
	return Profile(rec), nil
}

// Copyright (c) 2025 Sessionctl
// Licensed under the MIT License. See LICENSE file in the project root for details.

package backend

import (
	"context"
	"net/http"
)

// RefreshToken calls POST /auth/refresh-token. The refresh credential travels
// in a cookie and the new access credential comes back as one, so the request
// has no body. The decoded response (e.g. {"message": "...", "expiresIn": 900})
// is returned unchanged.
func (h *HTTP) RefreshToken(ctx context.Context) (map[string]any, error) {
	data, err := h.send(ctx, http.MethodPost, h.endpoints.Refresh, nil)
	if err != nil {
		return nil, err
	}
	return decodeRecord(data)
}

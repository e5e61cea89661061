// Copyright (c) 2025 Sessionctl
// Licensed under the MIT License. See LICENSE file in the project root for details.

package backend

import (
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/pterm/pterm"

	"sessionctl/cli/internal/endpoints"
	"sessionctl/cli/internal/logging"
)

// DefaultUserAgent is sent with every request.
const DefaultUserAgent = "sessionctl/1.0"

// HTTP implements API over REST endpoints.
type HTTP struct {
	// baseURL is prepended to every endpoint path (e.g., "http://localhost:5000/api")
	baseURL string
	// endpoints contains the URL paths for the auth endpoints
	endpoints endpoints.HTTPEndpoints
	// doer sends the requests, normally through the refresh interceptor
	doer      Doer
	userAgent string
	log       *pterm.Logger
}

// Option customizes an HTTP client.
type Option func(*HTTP)

// WithLogger sets the debug logger.
func WithLogger(l *pterm.Logger) Option {
	return func(h *HTTP) { h.log = l }
}

// WithUserAgent overrides DefaultUserAgent.
func WithUserAgent(ua string) Option {
	return func(h *HTTP) { h.userAgent = ua }
}

// New creates an HTTP backend. Empty endpoint paths fall back to the defaults.
func New(baseURL string, eps endpoints.HTTPEndpoints, doer Doer, opts ...Option) *HTTP {
	h := &HTTP{
		baseURL:   strings.TrimRight(baseURL, "/"),
		endpoints: eps.Merge(endpoints.Defaults()),
		doer:      doer,
		userAgent: DefaultUserAgent,
		log:       logging.Discard(),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// BaseURL returns the base URL requests are sent to.
func (h *HTTP) BaseURL() string { return h.baseURL }

// Endpoints returns the resolved endpoint paths.
func (h *HTTP) Endpoints() endpoints.HTTPEndpoints { return h.endpoints }

// setStandardHeaders applies headers shared by every request.
func (h *HTTP) setStandardHeaders(req *http.Request) {
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", h.userAgent)
	if req.Header.Get("X-Request-ID") == "" {
		req.Header.Set("X-Request-ID", uuid.NewString())
	}
}

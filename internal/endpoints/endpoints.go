// Copyright (c) 2025 Sessionctl
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package endpoints holds the auth server's REST paths.
package endpoints

import (
	"net/url"
	"strings"
)

// HTTPEndpoints contains REST API endpoint paths.
type HTTPEndpoints struct {
	Signup  string `json:"signup,omitempty"`        // e.g., "/auth/signup"
	Login   string `json:"login,omitempty"`         // e.g., "/auth/login"
	Logout  string `json:"logout,omitempty"`        // e.g., "/auth/logout"
	Profile string `json:"profile,omitempty"`       // e.g., "/auth/profile"
	Refresh string `json:"refresh_token,omitempty"` // e.g., "/auth/refresh-token"
}

// Defaults returns the paths served by the stock auth backend.
func Defaults() HTTPEndpoints {
	return HTTPEndpoints{
		Signup:  "/auth/signup",
		Login:   "/auth/login",
		Logout:  "/auth/logout",
		Profile: "/auth/profile",
		Refresh: "/auth/refresh-token",
	}
}

// Merge returns e with every empty path taken from fallback.
func (e HTTPEndpoints) Merge(fallback HTTPEndpoints) HTTPEndpoints {
	pick := func(v, d string) string {
		if strings.TrimSpace(v) == "" {
			return d
		}
		return normalizePath(v)
	}
	return HTTPEndpoints{
		Signup:  pick(e.Signup, fallback.Signup),
		Login:   pick(e.Login, fallback.Login),
		Logout:  pick(e.Logout, fallback.Logout),
		Profile: pick(e.Profile, fallback.Profile),
		Refresh: pick(e.Refresh, fallback.Refresh),
	}
}

// Unintercepted lists the paths a refresh must never be attempted for:
// the refresh call itself and the logout forced after a failed refresh.
func (e HTTPEndpoints) Unintercepted() []string {
	return []string{e.Refresh, e.Logout}
}

// BaseURL normalizes a server address into scheme://host[:port][/prefix]
// without a trailing slash. A missing scheme defaults to https.
func BaseURL(server string) (string, error) {
	s := strings.TrimSpace(server)
	if !strings.Contains(s, "://") {
		s = "https://" + s
	}
	u, err := url.Parse(s)
	if err != nil {
		return "", err
	}
	u.RawQuery = ""
	u.Fragment = ""
	return strings.TrimRight(u.String(), "/"), nil
}

func normalizePath(p string) string {
	p = strings.TrimSpace(p)
	if !strings.HasPrefix(p, "/") {
		p = "/" + p
	}
	return p
}

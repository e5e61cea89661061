// Copyright (c) 2025 Sessionctl
// Licensed under the MIT License. See LICENSE file in the project root for details.

package auth

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"sort"
	"strings"
	"sync"
	"time"

	"golang.org/x/net/publicsuffix"

	"sessionctl/cli/internal/keychain"
)

// StoredCookie is a cookie as persisted in the snapshot.
type StoredCookie struct {
	// Origin is the scheme and host the cookie was set by, e.g. "http://localhost:5000".
	Origin   string    `json:"origin"`
	Name     string    `json:"name"`
	Value    string    `json:"value"`
	Path     string    `json:"path"`
	Expires  time.Time `json:"expires,omitempty"`
	Secure   bool      `json:"secure,omitempty"`
	HttpOnly bool      `json:"http_only,omitempty"`
}

// Expired reports whether the cookie has an expiry at or before now.
// Session cookies never expire here.
func (c StoredCookie) Expired(now time.Time) bool {
	return !c.Expires.IsZero() && !c.Expires.After(now)
}

// Snapshot is the persisted form of the session cookies.
type Snapshot struct {
	SavedAt time.Time      `json:"saved_at"`
	Cookies []StoredCookie `json:"cookies"`
}

type cookieKey struct {
	origin, path, name string
}

// Jar is an http.CookieJar that remembers the attributes of the cookies it
// accepts so they can be written to a Snapshot. The standard jar only reports
// names and values.
type Jar struct {
	jar *cookiejar.Jar
	now func() time.Time

	mu   sync.Mutex
	kept map[cookieKey]StoredCookie
}

// NewJar returns an empty Jar.
func NewJar() (*Jar, error) {
	j, err := cookiejar.New(&cookiejar.Options{PublicSuffixList: publicsuffix.List})
	if err != nil {
		return nil, err
	}
	return &Jar{jar: j, now: time.Now, kept: map[cookieKey]StoredCookie{}}, nil
}

// SetCookies implements http.CookieJar.
func (j *Jar) SetCookies(u *url.URL, cookies []*http.Cookie) {
	origin := originOf(u)
	now := j.now()

	j.mu.Lock()
	defer j.mu.Unlock()
	j.jar.SetCookies(u, cookies)
	for _, c := range cookies {
		path := c.Path
		if path == "" || path[0] != '/' {
			path = defaultPath(u.Path)
		}
		key := cookieKey{origin: origin, path: path, name: c.Name}

		expires := c.Expires
		switch {
		case c.MaxAge < 0:
			delete(j.kept, key)
			continue
		case c.MaxAge > 0:
			expires = now.Add(time.Duration(c.MaxAge) * time.Second)
		}
		if !expires.IsZero() && !expires.After(now) {
			delete(j.kept, key)
			continue
		}

		j.kept[key] = StoredCookie{
			Origin:   origin,
			Name:     c.Name,
			Value:    c.Value,
			Path:     path,
			Expires:  expires.UTC(),
			Secure:   c.Secure,
			HttpOnly: c.HttpOnly,
		}
	}
}

// Cookies implements http.CookieJar.
func (j *Jar) Cookies(u *url.URL) []*http.Cookie {
	j.mu.Lock()
	inner := j.jar
	j.mu.Unlock()
	return inner.Cookies(u)
}

// Stored returns the unexpired cookies the jar holds, in a stable order.
func (j *Jar) Stored() []StoredCookie {
	now := j.now()

	j.mu.Lock()
	out := make([]StoredCookie, 0, len(j.kept))
	for _, c := range j.kept {
		if !c.Expired(now) {
			out = append(out, c)
		}
	}
	j.mu.Unlock()

	sort.Slice(out, func(a, b int) bool {
		if out[a].Origin != out[b].Origin {
			return out[a].Origin < out[b].Origin
		}
		if out[a].Path != out[b].Path {
			return out[a].Path < out[b].Path
		}
		return out[a].Name < out[b].Name
	})
	return out
}

// Load puts stored cookies back into the jar, skipping expired ones and those
// with an unusable origin. It returns how many were loaded.
func (j *Jar) Load(cookies []StoredCookie) int {
	now := j.now()
	n := 0
	for _, c := range cookies {
		if c.Expired(now) || c.Name == "" {
			continue
		}
		u, err := url.Parse(c.Origin)
		if err != nil || u.Host == "" {
			continue
		}
		u.Path = c.Path
		j.SetCookies(u, []*http.Cookie{{
			Name:     c.Name,
			Value:    c.Value,
			Path:     c.Path,
			Expires:  c.Expires,
			Secure:   c.Secure,
			HttpOnly: c.HttpOnly,
		}})
		n++
	}
	return n
}

// Clear drops every cookie.
func (j *Jar) Clear() {
	fresh, err := cookiejar.New(&cookiejar.Options{PublicSuffixList: publicsuffix.List})
	if err != nil {
		return
	}
	j.mu.Lock()
	defer j.mu.Unlock()
	j.jar = fresh
	j.kept = map[cookieKey]StoredCookie{}
}

func originOf(u *url.URL) string {
	return strings.ToLower(u.Scheme) + "://" + strings.ToLower(u.Host)
}

// defaultPath is the RFC 6265 section 5.1.4 default cookie path.
func defaultPath(p string) string {
	if p == "" || p[0] != '/' {
		return "/"
	}
	i := strings.LastIndex(p, "/")
	if i == 0 {
		return "/"
	}
	return p[:i]
}

// SaveSnapshot writes the jar's cookies to the keychain. An empty jar removes
// the stored snapshot instead.
func SaveSnapshot(km *keychain.Manager, jar *Jar) error {
	cookies := jar.Stored()
	if len(cookies) == 0 {
		return ClearSnapshot(km)
	}
	b, err := json.Marshal(Snapshot{SavedAt: jar.now().UTC(), Cookies: cookies})
	if err != nil {
		return fmt.Errorf("encode session snapshot: %w", err)
	}
	if err := km.SaveSession(b); err != nil {
		return fmt.Errorf("save session snapshot: %w", err)
	}
	return nil
}

// RestoreSnapshot loads the stored cookies into jar and returns how many were
// restored. A missing snapshot restores nothing.
func RestoreSnapshot(km *keychain.Manager, jar *Jar) (int, error) {
	b, err := km.LoadSession()
	if err != nil {
		return 0, fmt.Errorf("load session snapshot: %w", err)
	}
	if len(b) == 0 {
		return 0, nil
	}
	var snap Snapshot
	if err := json.Unmarshal(b, &snap); err != nil {
		return 0, fmt.Errorf("decode session snapshot: %w", err)
	}
	return jar.Load(snap.Cookies), nil
}

// ClearSnapshot removes the stored cookies.
func ClearSnapshot(km *keychain.Manager) error {
	return km.ClearSession()
}

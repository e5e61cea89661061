// Copyright (c) 2025 Sessionctl
// Licensed under the MIT License. See LICENSE file in the project root for details.

package backend

import (
	"context"
	"io"
	"net/http"
	"net/http/cookiejar"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sessionctl/cli/internal/authtest"
	"sessionctl/cli/internal/endpoints"
	apperrors "sessionctl/cli/internal/errors"
)

func newClient(t *testing.T, srv *authtest.Server) *HTTP {
	t.Helper()
	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	return New(srv.URL, endpoints.HTTPEndpoints{}, &http.Client{Jar: jar})
}

func TestLoginThenProfile(t *testing.T) {
	srv := authtest.New(t)
	srv.AddUser("A", "a@example.com", "secret")
	c := newClient(t, srv)
	ctx := context.Background()

	p, err := c.Login(ctx, LoginRequest{Email: "a@example.com", Password: "secret"})
	require.NoError(t, err)
	assert.Equal(t, "A", p["name"])
	assert.Equal(t, "a@example.com", p.Identifier())

	me, err := c.Profile(ctx)
	require.NoError(t, err)
	assert.Equal(t, p, me)
}

func TestSignupSetsSession(t *testing.T) {
	srv := authtest.New(t)
	c := newClient(t, srv)
	ctx := context.Background()

	p, err := c.Signup(ctx, SignupRequest{Name: "B", Email: "b@example.com", Password: "pw"})
	require.NoError(t, err)
	assert.Equal(t, "b@example.com", p["email"])

	_, err = c.Profile(ctx)
	require.NoError(t, err)

	_, err = c.Signup(ctx, SignupRequest{Name: "B", Email: "b@example.com", Password: "pw"})
	require.Error(t, err)
	assert.Equal(t, "User already exists", apperrors.MessageOr(err, "fallback"))
	assert.Equal(t, http.StatusBadRequest, apperrors.StatusOf(err))
}

func TestErrorsCarryServerMessage(t *testing.T) {
	srv := authtest.New(t)
	c := newClient(t, srv)
	ctx := context.Background()

	_, err := c.Login(ctx, LoginRequest{Email: "nobody@example.com", Password: "x"})
	require.Error(t, err)
	assert.True(t, apperrors.IsKind(err, apperrors.Request))
	assert.Equal(t, "Invalid email or password", apperrors.MessageOr(err, "fallback"))

	_, err = c.Profile(ctx)
	require.Error(t, err)
	assert.Equal(t, http.StatusUnauthorized, apperrors.StatusOf(err))

	_, err = c.RefreshToken(ctx)
	require.Error(t, err)
	assert.Equal(t, "No refresh token provided", apperrors.MessageOr(err, "fallback"))
}

func TestRefreshAndLogout(t *testing.T) {
	srv := authtest.New(t)
	srv.AddUser("A", "a@example.com", "secret")
	c := newClient(t, srv)
	ctx := context.Background()

	_, err := c.Login(ctx, LoginRequest{Email: "a@example.com", Password: "secret"})
	require.NoError(t, err)

	srv.ExpireAccess()
	_, err = c.Profile(ctx)
	require.Error(t, err)

	meta, err := c.RefreshToken(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Token refreshed successfully", meta["message"])
	assert.EqualValues(t, 900, meta["expiresIn"])

	_, err = c.Profile(ctx)
	require.NoError(t, err)

	require.NoError(t, c.Logout(ctx))
	_, err = c.Profile(ctx)
	require.Error(t, err)
	_, err = c.RefreshToken(ctx)
	require.Error(t, err, "logout revokes the refresh token")
}

func TestCall(t *testing.T) {
	srv := authtest.New(t)
	srv.AddUser("A", "a@example.com", "secret")
	c := newClient(t, srv)
	ctx := context.Background()

	_, err := c.Call(ctx, "get", "orders", nil)
	require.Error(t, err)

	_, err = c.Login(ctx, LoginRequest{Email: "a@example.com", Password: "secret"})
	require.NoError(t, err)

	raw, err := c.Call(ctx, "get", "orders", nil)
	require.NoError(t, err)
	assert.JSONEq(t, `{"user":"a@example.com","orders":[{"id":"o-1","total":42}]}`, string(raw))
}

// recordingDoer captures the last request and answers with a canned response.
type recordingDoer struct {
	last   *http.Request
	body   string
	status int
	resp   string
}

func (d *recordingDoer) Do(r *http.Request) (*http.Response, error) {
	d.last = r
	if r.Body != nil {
		b, _ := io.ReadAll(r.Body)
		d.body = string(b)
	}
	return &http.Response{
		StatusCode: d.status,
		Body:       io.NopCloser(strings.NewReader(d.resp)),
		Header:     http.Header{},
	}, nil
}

func TestStandardHeaders(t *testing.T) {
	d := &recordingDoer{status: http.StatusOK, resp: `{}`}
	c := New("http://api.test/api/", endpoints.HTTPEndpoints{}, d, WithUserAgent("tests/1"))

	_, err := c.Login(context.Background(), LoginRequest{Email: "a@example.com", Password: "pw"})
	require.NoError(t, err)

	assert.Equal(t, "http://api.test/api/auth/login", d.last.URL.String())
	assert.Equal(t, "application/json", d.last.Header.Get("Accept"))
	assert.Equal(t, "application/json", d.last.Header.Get("Content-Type"))
	assert.Equal(t, "tests/1", d.last.Header.Get("User-Agent"))
	assert.NotEmpty(t, d.last.Header.Get("X-Request-ID"))
	assert.JSONEq(t, `{"email":"a@example.com","password":"pw"}`, d.body)
	assert.NotNil(t, d.last.GetBody, "bodies must be replayable")
}

func TestResponseBodies(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		resp    string
		message string
		record  map[string]any
	}{
		{name: "empty body", status: http.StatusOK, resp: "", record: map[string]any{}},
		{name: "null body", status: http.StatusOK, resp: "null", record: map[string]any{}},
		{name: "error field", status: http.StatusForbidden, resp: `{"error":"forbidden"}`, message: "forbidden"},
		{name: "message wins", status: http.StatusBadRequest, resp: `{"message":"bad","error":"worse"}`, message: "bad"},
		{name: "non json error", status: http.StatusBadGateway, resp: "<html>", message: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := &recordingDoer{status: tt.status, resp: tt.resp}
			c := New("http://api.test", endpoints.HTTPEndpoints{}, d)

			rec, err := c.RefreshToken(context.Background())
			if tt.record != nil {
				require.NoError(t, err)
				assert.Equal(t, tt.record, rec)
				return
			}
			require.Error(t, err)
			assert.Equal(t, tt.status, apperrors.StatusOf(err))
			assert.Equal(t, tt.message, apperrors.MessageOr(err, ""))
		})
	}
}

func TestTypedTransportErrorIsKept(t *testing.T) {
	refreshErr := apperrors.RequestFailed(http.StatusUnauthorized, "Invalid refresh token")
	c := New("http://api.test", endpoints.HTTPEndpoints{}, doerFunc(func(*http.Request) (*http.Response, error) {
		return nil, refreshErr
	}))

	_, err := c.Profile(context.Background())
	assert.Same(t, refreshErr, err)
}

type doerFunc func(*http.Request) (*http.Response, error)

func (f doerFunc) Do(r *http.Request) (*http.Response, error) { return f(r) }

func TestProfileIdentifier(t *testing.T) {
	tests := []struct {
		name string
		p    Profile
		want string
	}{
		{name: "email", p: Profile{"email": "a@x", "name": "A"}, want: "a@x"},
		{name: "name", p: Profile{"name": "A", "_id": "1"}, want: "A"},
		{name: "numeric id", p: Profile{"id": float64(1)}, want: "1"},
		{name: "empty", p: Profile{}, want: ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.p.Identifier())
		})
	}
}

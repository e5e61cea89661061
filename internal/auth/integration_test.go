// Copyright (c) 2025 Sessionctl
// Licensed under the MIT License. See LICENSE file in the project root for details.

package auth

import (
	"context"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sessionctl/cli/internal/authtest"
	"sessionctl/cli/internal/backend"
	"sessionctl/cli/internal/endpoints"
	"sessionctl/cli/internal/interceptor"
	"sessionctl/cli/internal/keychain"
	"sessionctl/cli/internal/notify"
)

type harness struct {
	srv   *authtest.Server
	jar   *Jar
	icp   *interceptor.Interceptor
	api   *backend.HTTP
	store *Store
	rec   *notify.Recorder
}

func newHarness(t *testing.T, srv *authtest.Server) *harness {
	t.Helper()
	jar, err := NewJar()
	require.NoError(t, err)

	eps := endpoints.Defaults()
	icp := interceptor.New(&http.Client{Jar: jar, Timeout: 5 * time.Second}, interceptor.Options{
		Skip: eps.Unintercepted(),
	})
	api := backend.New(srv.URL, eps, icp)
	rec := &notify.Recorder{}
	store := NewStore(api, rec)
	icp.Bind(store)

	return &harness{srv: srv, jar: jar, icp: icp, api: api, store: store, rec: rec}
}

func (h *harness) login(t *testing.T) {
	t.Helper()
	h.srv.AddUser("A", "a@b.com", "pw")
	require.NoError(t, h.store.Login(context.Background(), "a@b.com", "pw"))
	h.rec.Reset()
}

func TestLoginAgainstServer(t *testing.T) {
	h := newHarness(t, authtest.New(t))
	h.login(t)

	st := h.store.State()
	assert.Equal(t, "A", st.User["name"])
	assert.Equal(t, "1", st.User["_id"])
	assert.False(t, st.Loading)

	require.NoError(t, h.store.CheckAuth(context.Background()))
	assert.Equal(t, "a@b.com", h.store.State().User.Identifier())
}

func TestParallelUnauthorizedRequestsShareOneRefresh(t *testing.T) {
	h := newHarness(t, authtest.New(t))
	h.login(t)
	h.srv.ExpireAccess()
	release := h.srv.HoldRefresh()
	defer release()

	const n = 2
	errs := make([]error, n)
	var wg sync.WaitGroup
	for k := 0; k < n; k++ {
		wg.Add(1)
		go func(k int) {
			defer wg.Done()
			_, errs[k] = h.api.Call(context.Background(), http.MethodGet, authtest.PathOrders, nil)
		}(k)
	}

	require.Eventually(t, func() bool { return h.icp.Gate().Waiters() == n }, 5*time.Second, 5*time.Millisecond)
	release()
	wg.Wait()

	for _, err := range errs {
		require.NoError(t, err)
	}
	assert.Equal(t, 1, h.srv.Calls(authtest.PathRefresh))
	assert.Equal(t, n, h.srv.Denied(authtest.PathOrders))

	issued := h.srv.IssuedTokens()
	require.Len(t, issued, 2, "one token at login, one from the refresh")
	seen := h.srv.SeenTokens(authtest.PathOrders)
	require.Len(t, seen, 2*n)
	for _, tok := range seen[:n] {
		assert.Equal(t, issued[0], tok, "first attempts carry the expired token")
	}
	for _, tok := range seen[n:] {
		assert.Equal(t, issued[1], tok, "replays carry the refreshed token")
	}

	assert.True(t, h.store.State().Authenticated())
	assert.Empty(t, h.rec.All())
}

func TestRefreshFailureLogsOutOnce(t *testing.T) {
	h := newHarness(t, authtest.New(t))
	h.login(t)
	h.srv.ExpireAccess()
	h.srv.FailRefresh(true)
	release := h.srv.HoldRefresh()
	defer release()

	const n = 3
	errs := make([]error, n)
	var wg sync.WaitGroup
	for k := 0; k < n; k++ {
		wg.Add(1)
		go func(k int) {
			defer wg.Done()
			_, errs[k] = h.api.Call(context.Background(), http.MethodGet, authtest.PathOrders, nil)
		}(k)
	}

	require.Eventually(t, func() bool { return h.icp.Gate().Waiters() == n }, 5*time.Second, 5*time.Millisecond)
	release()
	wg.Wait()

	for _, err := range errs {
		require.Error(t, err)
	}
	assert.Equal(t, 1, h.srv.Calls(authtest.PathRefresh))
	assert.Equal(t, 1, h.srv.Calls(authtest.PathLogout))
	assert.False(t, h.store.State().Authenticated())
	assert.Equal(t, []notify.Notification{{Kind: notify.KindSuccess, Text: MsgLogoutSuccess}}, h.rec.All())
	assert.Empty(t, h.jar.Stored(), "the server cleared the session cookies")
}

func TestReplayThatFailsAgainIsNotRetried(t *testing.T) {
	srv := authtest.New(t)
	h := newHarness(t, srv)
	h.login(t)

	// The refresh answers 200 but mints a token that is already expired.
	srv.ExpireAccess()
	srv.AccessTTL = 0

	_, err := h.api.Call(context.Background(), http.MethodGet, authtest.PathOrders, nil)
	require.Error(t, err)
	assert.Equal(t, 1, srv.Calls(authtest.PathRefresh))
	assert.Equal(t, 2, srv.Calls(authtest.PathOrders))
	assert.Equal(t, 0, srv.Calls(authtest.PathLogout))
}

func TestCheckAuthDoesNotRefresh(t *testing.T) {
	h := newHarness(t, authtest.New(t))
	h.login(t)
	h.srv.ExpireAccess()

	require.Error(t, h.store.CheckAuth(context.Background()))
	assert.Equal(t, 0, h.srv.Calls(authtest.PathRefresh), "refresh is guarded while the check runs")
	assert.False(t, h.store.State().Authenticated())
	assert.Empty(t, h.rec.All())

	// An explicit refresh afterwards recovers the session.
	_, err := h.store.RefreshToken(context.Background())
	require.NoError(t, err)
	require.NoError(t, h.store.CheckAuth(context.Background()))
	assert.True(t, h.store.State().Authenticated())
}

func TestLogoutFailureKeepsUser(t *testing.T) {
	h := newHarness(t, authtest.New(t))
	h.login(t)
	h.srv.FailLogout(true)

	require.Error(t, h.store.Logout(context.Background()))
	assert.True(t, h.store.State().Authenticated())
	assert.Equal(t, []notify.Notification{{Kind: notify.KindError, Text: "Logout failed"}}, h.rec.All())
}

func TestSessionSurvivesRestart(t *testing.T) {
	srv := authtest.New(t)
	km := keychain.NewMemoryManager()

	first := newHarness(t, srv)
	first.login(t)
	require.NoError(t, SaveSnapshot(km, first.jar))

	second := newHarness(t, srv)
	n, err := RestoreSnapshot(km, second.jar)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	require.NoError(t, second.store.CheckAuth(context.Background()))
	assert.Equal(t, "a@b.com", second.store.State().User.Identifier())

	require.NoError(t, second.store.Logout(context.Background()))
	require.NoError(t, SaveSnapshot(km, second.jar))
	data, err := km.LoadSession()
	require.NoError(t, err)
	assert.Nil(t, data, "logout leaves nothing to persist")
}

// Copyright (c) 2025 Sessionctl
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package authtest runs an in-process auth server with the same surface as the
// production backend: cookie sessions, a short-lived JWT access cookie and an
// opaque refresh cookie. Its clock is controllable so tests can expire the
// access token deterministically, and it counts calls per path so tests can
// assert how many refreshes were issued.
package authtest

import (
	"crypto/rand"
	"encoding/hex"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

// Cookie names and paths, matching the production server.
const (
	AccessCookie  = "accessToken"
	RefreshCookie = "refreshToken"
	RefreshPath   = "/auth"
)

// Paths served by the fake.
const (
	PathSignup  = "/auth/signup"
	PathLogin   = "/auth/login"
	PathLogout  = "/auth/logout"
	PathProfile = "/auth/profile"
	PathRefresh = "/auth/refresh-token"
	PathOrders  = "/orders"
)

type account struct {
	ID       int
	Name     string
	Email    string
	Password string
}

func (a *account) profile() gin.H {
	return gin.H{"_id": strconv.Itoa(a.ID), "name": a.Name, "email": a.Email, "role": "customer"}
}

type refreshEntry struct {
	email   string
	expires time.Time
}

// Server is the fake auth server. The zero value is not usable; call New.
type Server struct {
	*httptest.Server

	// AccessTTL and RefreshTTL bound token lifetimes on the fake clock.
	AccessTTL  time.Duration
	RefreshTTL time.Duration

	mu          sync.Mutex
	key         []byte
	now         time.Time
	accounts    map[string]*account
	refresh     map[string]refreshEntry
	calls       map[string]int
	denied      map[string]int
	seen        map[string][]string
	issued      []string
	nextID      int
	nextJTI     int
	holdRefresh chan struct{}
	failRefresh bool
	failLogout  bool
}

// New starts a fake server and stops it when the test ends.
func New(t testing.TB) *Server {
	t.Helper()
	gin.SetMode(gin.TestMode)

	s := &Server{
		AccessTTL:  15 * time.Minute,
		RefreshTTL: 7 * 24 * time.Hour,
		key:        []byte("authtest-signing-key"),
		now:        time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC),
		accounts:   map[string]*account{},
		refresh:    map[string]refreshEntry{},
		calls:      map[string]int{},
		denied:     map[string]int{},
		seen:       map[string][]string{},
	}
	s.Server = httptest.NewServer(s.routes())
	t.Cleanup(s.Close)
	return s
}

func (s *Server) routes() http.Handler {
	r := gin.New()
	r.Use(s.count)
	r.POST(PathSignup, s.handleSignup)
	r.POST(PathLogin, s.handleLogin)
	r.POST(PathLogout, s.handleLogout)
	r.GET(PathProfile, s.requireAccess, s.handleProfile)
	r.POST(PathRefresh, s.handleRefresh)
	r.GET(PathOrders, s.requireAccess, s.handleOrders)
	return r
}

// AddUser registers an account directly.
func (s *Server) AddUser(name, email, password string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.addLocked(name, email, password)
}

func (s *Server) addLocked(name, email, password string) *account {
	s.nextID++
	a := &account{ID: s.nextID, Name: name, Email: email, Password: password}
	s.accounts[email] = a
	return a
}

// Advance moves the fake clock forward.
func (s *Server) Advance(d time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.now = s.now.Add(d)
}

// ExpireAccess moves the clock past the access token lifetime while keeping
// refresh tokens valid.
func (s *Server) ExpireAccess() {
	s.Advance(s.AccessTTL + time.Second)
}

// FailRefresh makes every refresh call answer 401.
func (s *Server) FailRefresh(fail bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failRefresh = fail
}

// FailLogout makes every logout call answer 500.
func (s *Server) FailLogout(fail bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failLogout = fail
}

// HoldRefresh blocks refresh handlers until the returned release func is called.
func (s *Server) HoldRefresh() (release func()) {
	ch := make(chan struct{})
	s.mu.Lock()
	s.holdRefresh = ch
	s.mu.Unlock()
	var once sync.Once
	return func() { once.Do(func() { close(ch) }) }
}

// Calls returns how many requests reached path.
func (s *Server) Calls(path string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls[path]
}

// Denied returns how many requests to path were answered 401.
func (s *Server) Denied(path string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.denied[path]
}

// SeenTokens returns the access tokens presented to path, in arrival order.
func (s *Server) SeenTokens(path string) []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.seen[path]...)
}

// IssuedTokens returns every access token minted so far, in order.
func (s *Server) IssuedTokens() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.issued...)
}

func (s *Server) clock() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.now
}

func (s *Server) count(c *gin.Context) {
	s.mu.Lock()
	s.calls[c.Request.URL.Path]++
	s.mu.Unlock()
	c.Next()
	if c.Writer.Status() == http.StatusUnauthorized {
		s.mu.Lock()
		s.denied[c.Request.URL.Path]++
		s.mu.Unlock()
	}
}

func (s *Server) handleSignup(c *gin.Context) {
	var in struct {
		Name     string `json:"name"`
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := c.ShouldBindJSON(&in); err != nil || in.Name == "" || in.Email == "" || in.Password == "" {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"message": "All fields are required"})
		return
	}

	s.mu.Lock()
	if _, exists := s.accounts[in.Email]; exists {
		s.mu.Unlock()
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"message": "User already exists"})
		return
	}
	a := s.addLocked(in.Name, in.Email, in.Password)
	s.mu.Unlock()

	s.startSession(c, a.Email)
	c.JSON(http.StatusCreated, a.profile())
}

func (s *Server) handleLogin(c *gin.Context) {
	var in struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := c.ShouldBindJSON(&in); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"message": "Invalid request body"})
		return
	}

	s.mu.Lock()
	a, ok := s.accounts[in.Email]
	s.mu.Unlock()
	if !ok || a.Password != in.Password {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"message": "Invalid email or password"})
		return
	}

	s.startSession(c, a.Email)
	c.JSON(http.StatusOK, a.profile())
}

func (s *Server) handleLogout(c *gin.Context) {
	s.mu.Lock()
	fail := s.failLogout
	s.mu.Unlock()
	if fail {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"message": "Logout failed"})
		return
	}

	if opaque, err := c.Cookie(RefreshCookie); err == nil {
		s.mu.Lock()
		delete(s.refresh, opaque)
		s.mu.Unlock()
	}
	c.SetCookie(AccessCookie, "", -1, "/", "", false, true)
	c.SetCookie(RefreshCookie, "", -1, RefreshPath, "", false, true)
	c.JSON(http.StatusOK, gin.H{"message": "Logged out successfully"})
}

func (s *Server) handleRefresh(c *gin.Context) {
	s.mu.Lock()
	hold := s.holdRefresh
	fail := s.failRefresh
	s.mu.Unlock()
	if hold != nil {
		<-hold
	}
	if fail {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "Invalid refresh token"})
		return
	}

	opaque, err := c.Cookie(RefreshCookie)
	if err != nil || opaque == "" {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "No refresh token provided"})
		return
	}
	s.mu.Lock()
	entry, ok := s.refresh[opaque]
	now := s.now
	s.mu.Unlock()
	if !ok || now.After(entry.expires) {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "Invalid refresh token"})
		return
	}

	token, err := s.mintAccess(entry.email)
	if err != nil {
		c.AbortWithStatus(http.StatusInternalServerError)
		return
	}
	c.SetCookie(AccessCookie, token, int(s.AccessTTL.Seconds()), "/", "", false, true)
	c.JSON(http.StatusOK, gin.H{"message": "Token refreshed successfully", "expiresIn": int(s.AccessTTL.Seconds())})
}

func (s *Server) handleProfile(c *gin.Context) {
	a := c.MustGet("account").(*account)
	c.JSON(http.StatusOK, a.profile())
}

func (s *Server) handleOrders(c *gin.Context) {
	a := c.MustGet("account").(*account)
	c.JSON(http.StatusOK, gin.H{"user": a.Email, "orders": []gin.H{{"id": "o-1", "total": 42}}})
}

// requireAccess validates the access cookie and stores the account in the context.
func (s *Server) requireAccess(c *gin.Context) {
	token, err := c.Cookie(AccessCookie)

	s.mu.Lock()
	s.seen[c.Request.URL.Path] = append(s.seen[c.Request.URL.Path], token)
	s.mu.Unlock()

	if err != nil || token == "" {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "Unauthorized - No access token provided"})
		return
	}
	claims := &jwt.RegisteredClaims{}
	_, err = jwt.ParseWithClaims(token, claims, func(*jwt.Token) (any, error) {
		return s.key, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithTimeFunc(s.clock))
	if err != nil {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "Unauthorized - Invalid access token"})
		return
	}

	s.mu.Lock()
	a, ok := s.accounts[claims.Subject]
	s.mu.Unlock()
	if !ok {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "User not found"})
		return
	}
	c.Set("account", a)
	c.Next()
}

func (s *Server) startSession(c *gin.Context, email string) {
	token, err := s.mintAccess(email)
	if err != nil {
		c.AbortWithStatus(http.StatusInternalServerError)
		return
	}
	opaque := randomHex(16)
	s.mu.Lock()
	s.refresh[opaque] = refreshEntry{email: email, expires: s.now.Add(s.RefreshTTL)}
	s.mu.Unlock()

	c.SetCookie(AccessCookie, token, int(s.AccessTTL.Seconds()), "/", "", false, true)
	c.SetCookie(RefreshCookie, opaque, int(s.RefreshTTL.Seconds()), RefreshPath, "", false, true)
}

func (s *Server) mintAccess(email string) (string, error) {
	s.mu.Lock()
	s.nextJTI++
	now := s.now
	jti := strconv.Itoa(s.nextJTI)
	s.mu.Unlock()

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   email,
		ID:        jti,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(s.AccessTTL)),
	}).SignedString(s.key)
	if err != nil {
		return "", err
	}

	s.mu.Lock()
	s.issued = append(s.issued, token)
	s.mu.Unlock()
	return token, nil
}

func randomHex(n int) string {
	b := make([]byte, n)
	_, _ = rand.Read(b)
	return hex.EncodeToString(b)
}

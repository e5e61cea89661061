// Copyright (c) 2025 Sessionctl
// Licensed under the MIT License. See LICENSE file in the project root for details.

package interceptor

import (
	"context"
	"sync"

	"golang.org/x/sync/singleflight"
)

const flightKey = "refresh"

// Gate is a single-slot registry for the in-flight refresh. The first caller
// starts the flight; callers arriving while it is pending wait for the same
// outcome. The slot is cleared as soon as the flight finishes, whether it
// succeeded or not.
type Gate struct {
	mu      sync.Mutex
	group   singleflight.Group
	waiters int
}

// NewGate returns an empty Gate.
func NewGate() *Gate {
	return &Gate{}
}

// Do runs fn as the pending flight, or joins the flight already pending.
// shared reports whether the outcome was delivered to more than one caller.
// A caller whose ctx is done stops waiting and gets ctx.Err(); the flight
// itself keeps running.
func (g *Gate) Do(ctx context.Context, fn func() error) (shared bool, err error) {
	// Joining and counting happen under one lock so a caller counted by
	// Waiters is always attached to the pending flight.
	g.mu.Lock()
	g.waiters++
	ch := g.group.DoChan(flightKey, func() (any, error) {
		return nil, fn()
	})
	g.mu.Unlock()

	defer func() {
		g.mu.Lock()
		g.waiters--
		g.mu.Unlock()
	}()

	select {
	case res := <-ch:
		return res.Shared, res.Err
	case <-ctx.Done():
		return false, ctx.Err()
	}
}

// Waiters returns how many callers are currently attached to a flight.
func (g *Gate) Waiters() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.waiters
}

// InFlight reports whether a refresh is pending.
func (g *Gate) InFlight() bool {
	return g.Waiters() > 0
}

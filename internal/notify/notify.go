// Copyright (c) 2025 Sessionctl
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package notify is the user-visible notification channel of the session store.
package notify

import (
	"sync"

	"github.com/pterm/pterm"
)

// Notifier shows short success and error messages to the user.
type Notifier interface {
	Success(text string)
	Error(text string)
}

// Terminal prints notifications with pterm's prefix printers.
type Terminal struct {
	// Quiet suppresses success lines; errors are always shown.
	Quiet bool
}

func (t Terminal) Success(text string) {
	if t.Quiet {
		return
	}
	pterm.Success.Println(text)
}

func (t Terminal) Error(text string) {
	pterm.Error.Println(text)
}

// Kind tells a success notification from an error one.
type Kind string

const (
	KindSuccess Kind = "success"
	KindError   Kind = "error"
)

// Notification is one recorded message.
type Notification struct {
	Kind Kind
	Text string
}

// Recorder keeps notifications in memory. It is safe for concurrent use.
type Recorder struct {
	mu    sync.Mutex
	items []Notification
}

func (r *Recorder) Success(text string) { r.add(KindSuccess, text) }
func (r *Recorder) Error(text string)   { r.add(KindError, text) }

func (r *Recorder) add(kind Kind, text string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items = append(r.items, Notification{Kind: kind, Text: text})
}

// All returns a copy of everything recorded so far.
func (r *Recorder) All() []Notification {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Notification(nil), r.items...)
}

// Reset drops everything recorded so far.
func (r *Recorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items = nil
}

// Copyright (c) 2025 Sessionctl
// Licensed under the MIT License. See LICENSE file in the project root for details.

package notify

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRecorderConcurrent(t *testing.T) {
	var r Recorder
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			if i%2 == 0 {
				r.Success("ok")
			} else {
				r.Error("fail")
			}
		}(i)
	}
	wg.Wait()

	assert.Len(t, r.All(), 20)
	r.Reset()
	assert.Empty(t, r.All())
}

func TestRecorderOrder(t *testing.T) {
	var r Recorder
	r.Success("Login successful")
	r.Error("Invalid credentials")

	assert.Equal(t, []Notification{
		{Kind: KindSuccess, Text: "Login successful"},
		{Kind: KindError, Text: "Invalid credentials"},
	}, r.All())
}

func TestTerminalImplementsNotifier(t *testing.T) {
	var _ Notifier = Terminal{}
	var _ Notifier = &Recorder{}
}

package cmd

import (
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"atomicgo.dev/cursor"
	"golang.org/x/term"

	"sessionctl/cli/internal/auth"
)

var spinnerFrames = []string{"|", "/", "-", "\\"}

// startInlineSpinner starts a simple inline spinner animation on a single line.
// It displays rotating animation frames followed by the provided text, updating
// the same line in the terminal. The spinner runs in a separate goroutine and
// can be stopped by calling the returned function, which clears the line.
func startInlineSpinner(w io.Writer, text string, frames []string, interval time.Duration) func() {
	stop := make(chan struct{})
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		i := 0
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-stop:
				line := fmt.Sprintf("%s %s", frames[i%len(frames)], text)
				fmt.Fprintf(w, "\r%*s\r", len(line), "")
				return
			case <-ticker.C:
				fmt.Fprintf(w, "\r%s %s", frames[i%len(frames)], text)
				i++
			}
		}
	}()
	var once sync.Once
	return func() {
		once.Do(func() {
			close(stop)
			wg.Wait()
		})
	}
}

// spinWhileBusy shows a spinner on stderr for as long as the store reports
// Loading or CheckingAuth. Nothing is drawn when stderr is not a terminal.
// The returned func detaches it and clears the line.
func spinWhileBusy(store *auth.Store, text string) func() {
	if quietFlag || !term.IsTerminal(int(os.Stderr.Fd())) {
		return func() {}
	}

	var (
		mu   sync.Mutex
		stop func()
	)
	halt := func() {
		if stop != nil {
			stop()
			stop = nil
			cursor.Show()
		}
	}
	unsubscribe := store.Subscribe(func(s auth.Session) {
		mu.Lock()
		defer mu.Unlock()
		busy := s.Loading || s.CheckingAuth
		switch {
		case busy && stop == nil:
			cursor.Hide()
			stop = startInlineSpinner(os.Stderr, text, spinnerFrames, 120*time.Millisecond)
		case !busy:
			halt()
		}
	})
	return func() {
		unsubscribe()
		mu.Lock()
		defer mu.Unlock()
		halt()
	}
}

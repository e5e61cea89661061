// Copyright (c) 2025 Sessionctl
// Licensed under the MIT License. See LICENSE file in the project root for details.

package logging

import (
	"io"
	"os"

	"github.com/pterm/pterm"
)

// New returns the structured logger used across the CLI. Debug output is only
// emitted when verbose is set; warnings and errors always are.
func New(verbose bool) *pterm.Logger {
	return NewWithWriter(os.Stderr, verbose)
}

// NewWithWriter is New with an explicit destination.
func NewWithWriter(w io.Writer, verbose bool) *pterm.Logger {
	level := pterm.LogLevelWarn
	if verbose {
		level = pterm.LogLevelDebug
	}
	return pterm.DefaultLogger.WithLevel(level).WithWriter(w)
}

// Discard returns a logger that drops everything.
func Discard() *pterm.Logger {
	return pterm.DefaultLogger.WithLevel(pterm.LogLevelDisabled).WithWriter(io.Discard)
}

// Copyright (c) 2025 Sessionctl
// Licensed under the MIT License. See LICENSE file in the project root for details.

package httperrors

import (
	"context"
	"errors"
	"fmt"
	"net"
	"syscall"
	"testing"

	apperrors "sessionctl/cli/internal/errors"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected Category
	}{
		{name: "nil", err: nil, expected: None},
		{name: "validation", err: apperrors.New(apperrors.Validation, "Passwords do not match"), expected: None},
		{name: "client error response", err: apperrors.RequestFailed(401, "Unauthorized"), expected: None},
		{name: "server error response", err: apperrors.RequestFailed(503, ""), expected: Server},
		{name: "deadline", err: apperrors.Wrap(apperrors.Request, "", context.DeadlineExceeded), expected: Timeout},
		{name: "dns", err: fmt.Errorf("dial: %w", &net.DNSError{Err: "no such host", Name: "nope.invalid"}), expected: DNS},
		{name: "refused", err: &net.OpError{Op: "dial", Net: "tcp", Err: syscall.ECONNREFUSED}, expected: ConnectionRefused},
		{name: "tls", err: errors.New("tls: failed to verify certificate: x509: unknown authority"), expected: TLS},
		{name: "other", err: errors.New("unexpected EOF"), expected: Other},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Classify(tt.err); got != tt.expected {
				t.Errorf("Classify() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestExtractHostFromURL(t *testing.T) {
	if got := ExtractHostFromURL("http://localhost:5000/api"); got != "localhost:5000" {
		t.Errorf("ExtractHostFromURL() = %q", got)
	}
	if got := ExtractHostFromURL("::bad"); got != "server" {
		t.Errorf("ExtractHostFromURL() = %q", got)
	}
}

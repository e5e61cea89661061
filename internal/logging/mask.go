// Copyright (c) 2025 Sessionctl
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package logging provides the debug logger and utilities for keeping secrets
// out of it. Request and response lines pass through Mask before they are
// logged so that passwords, cookies and tokens never reach the terminal.
package logging

import (
	"context"
	"errors"
	"regexp"
	"strings"
)

var (
	rePassword   = regexp.MustCompile(`(?i)(password=)([^\s;&]+)`)
	reJSONSecret = regexp.MustCompile(`(?i)("(?:password|confirmPassword|accessToken|refreshToken|access_token|refresh_token|token)"\s*:\s*")([^"]*)(")`)
	reToken      = regexp.MustCompile(`(?i)(token=|bearer\s+)([A-Za-z0-9._-]+)`)
	reCookie     = regexp.MustCompile(`(?i)((?:^|[\s;,])(?:cookie:\s*)?[A-Za-z0-9_-]*(?:token|session|jwt|sid)[A-Za-z0-9_-]*=)([^\s;,]+)`)
	reAPIKey     = regexp.MustCompile(`(?i)(apikey=|api_key=)([^\s;]+)`)
)

// Mask replaces sensitive values in the input string with "***".
func Mask(s string) string {
	out := s
	out = rePassword.ReplaceAllString(out, "$1***")
	out = reJSONSecret.ReplaceAllString(out, "$1***$3")
	out = reCookie.ReplaceAllString(out, "$1***")
	out = reToken.ReplaceAllString(out, "$1***")
	out = reAPIKey.ReplaceAllString(out, "$1***")
	for _, k := range []string{"SESSIONCTL_KEYRING_PASSWORD"} {
		out = strings.ReplaceAll(out, k+"=", k+"=***")
	}
	return out
}

// PresentError formats a command failure for the terminal. Secrets are masked
// and an interrupted command is reported as such instead of by its raw error.
func PresentError(command string, err error) string {
	if err == nil {
		return ""
	}
	msg := Mask(err.Error())
	if errors.Is(err, context.Canceled) {
		msg = "interrupted"
	}
	if command == "" {
		return msg
	}
	return command + ": " + msg
}

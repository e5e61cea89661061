// Copyright (c) 2025 Sessionctl
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package httperrors classifies network-level failures and prints
// troubleshooting hints for them.
package httperrors

import (
	"context"
	"errors"
	"net"
	"net/url"
	"strings"
	"syscall"

	"github.com/pterm/pterm"

	apperrors "sessionctl/cli/internal/errors"
)

// Category names the broad reason a request never got a usable response.
type Category int

const (
	// None means err is nil or carries a server response below 500.
	None Category = iota
	Timeout
	DNS
	ConnectionRefused
	TLS
	Server
	Other
)

// Classify inspects err and returns its Category.
func Classify(err error) Category {
	if err == nil || apperrors.IsKind(err, apperrors.Validation) {
		return None
	}
	if status := apperrors.StatusOf(err); status != 0 {
		if status >= 500 {
			return Server
		}
		return None
	}
	switch {
	case isTimeoutError(err):
		return Timeout
	case isDNSError(err):
		return DNS
	case isConnectionRefusedError(err):
		return ConnectionRefused
	case isSSLError(err):
		return TLS
	}
	return Other
}

// isTimeoutError checks if the error is a timeout error.
func isTimeoutError(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}

	errStr := strings.ToLower(err.Error())
	return strings.Contains(errStr, "timeout") ||
		strings.Contains(errStr, "deadline exceeded")
}

// isDNSError checks if the error is a DNS resolution error.
func isDNSError(err error) bool {
	var dnsErr *net.DNSError
	return errors.As(err, &dnsErr)
}

// isConnectionRefusedError checks if the error is a connection refused error.
func isConnectionRefusedError(err error) bool {
	if errors.Is(err, syscall.ECONNREFUSED) {
		return true
	}
	return strings.Contains(strings.ToLower(err.Error()), "connection refused")
}

// isSSLError checks if the error is an SSL/TLS error.
func isSSLError(err error) bool {
	errStr := strings.ToLower(err.Error())
	return strings.Contains(errStr, "tls") ||
		strings.Contains(errStr, "x509") ||
		strings.Contains(errStr, "certificate") ||
		strings.Contains(errStr, "handshake")
}

// PrintHints shows a troubleshooting block for network-level failures.
// It prints nothing for errors that carry an ordinary server response; those
// were already reported through the notifier.
func PrintHints(err error, context string, server string) {
	host := ExtractHostFromURL(server)
	switch Classify(err) {
	case Timeout:
		pterm.Warning.Printfln("Connection timeout while %s", context)
		printList("The server took too long to respond. This could mean:",
			"Slow internet connection",
			"Server is under heavy load",
			"Network firewall is blocking the connection")
	case DNS:
		pterm.Warning.Printfln("Cannot resolve %s while %s", host, context)
		printList("Please check:",
			"Your internet connection is working",
			"The --server address is spelled correctly",
			"DNS settings are correct")
	case ConnectionRefused:
		pterm.Warning.Printfln("Connection refused by %s while %s", host, context)
		printList("The server is not accepting connections. This could mean:",
			"The auth server is not running",
			"Wrong server address or port")
	case TLS:
		pterm.Warning.Printfln("Secure connection to %s failed while %s", host, context)
		printList("Try:",
			"Check your system date and time",
			"Use http:// for a local development server")
	case Server:
		pterm.Warning.Printfln("Server error while %s", context)
		printList("The auth server encountered an internal error.",
			"Please try again in a few minutes")
	case Other:
		pterm.Warning.Printfln("Cannot reach %s while %s", host, context)
		pterm.Debug.Printfln("Technical details: %s", shorten(err.Error(), 100))
	}
}

func printList(title string, items ...string) {
	pterm.Println(title)
	for _, it := range items {
		pterm.Println("  • " + it)
	}
	pterm.Println()
}

func shorten(s string, n int) string {
	if len(s) > n {
		return s[:n] + "..."
	}
	return s
}

// ExtractHostFromURL extracts the hostname from a URL for error messages.
func ExtractHostFromURL(urlStr string) string {
	u, err := url.Parse(urlStr)
	if err != nil || u.Host == "" {
		return "server"
	}
	return u.Host
}

// Copyright (c) 2025 Sessionctl
// Licensed under the MIT License. See LICENSE file in the project root for details.

package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"sessionctl/cli/internal/auth"
	apperrors "sessionctl/cli/internal/errors"
)

var requestData string

// requestCmd sends an arbitrary authenticated call to the server.
var requestCmd = &cobra.Command{
	Use:   "request METHOD PATH",
	Short: "Send an authenticated JSON request",
	Long: `The request command sends METHOD PATH to the auth server with the saved session
cookies and prints the JSON response. PATH is relative to the server base URL.

An expired access cookie is refreshed and the request replayed once. If the
refresh is rejected you are logged out and the command fails.`,
	Example: `  sessionctl request GET /orders
  sessionctl request POST /cart --data '{"productId":"p-1","quantity":2}'`,
	Args: cobra.ExactArgs(2),
	RunE: runE(func(ctx context.Context, a *app, args []string) error {
		body, err := requestBody(requestData)
		if err != nil {
			return err
		}

		raw, err := a.api.Call(ctx, args[0], args[1], body)
		if err != nil {
			pterm.Error.Println(apperrors.MessageOr(err, auth.DefaultFallbackMessage))
			a.hints(err, "sending the request")
			return reported(err)
		}
		if len(raw) == 0 {
			return nil
		}

		var out bytes.Buffer
		if err := json.Indent(&out, raw, "", "  "); err != nil {
			fmt.Println(string(raw))
			return nil
		}
		fmt.Println(out.String())
		return nil
	}),
}

// requestBody validates --data. An empty value sends no body.
func requestBody(data string) (any, error) {
	data = strings.TrimSpace(data)
	if data == "" {
		return nil, nil
	}
	if !json.Valid([]byte(data)) {
		return nil, fmt.Errorf("--data is not valid JSON")
	}
	return json.RawMessage(data), nil
}

func init() {
	rootCmd.AddCommand(requestCmd)
	requestCmd.Flags().StringVarP(&requestData, "data", "d", "", "JSON request body")
}

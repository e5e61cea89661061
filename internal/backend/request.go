// Copyright (c) 2025 Sessionctl
// Licensed under the MIT License. See LICENSE file in the project root for details.

package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"

	apperrors "sessionctl/cli/internal/errors"
	"sessionctl/cli/internal/logging"
)

// maxBodyBytes bounds how much of a response body is read.
const maxBodyBytes = 4 << 20

// Call sends an arbitrary JSON request to path through the same interceptor
// as the auth endpoints and returns the raw response body. A nil body sends
// no payload.
func (h *HTTP) Call(ctx context.Context, method, path string, body any) (json.RawMessage, error) {
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	data, err := h.send(ctx, strings.ToUpper(method), path, body)
	if err != nil {
		return nil, err
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, nil
	}
	return json.RawMessage(data), nil
}

// send performs one request and returns the body of a 2xx response.
// Any other outcome is returned as a Request error.
func (h *HTTP) send(ctx context.Context, method, path string, body any) ([]byte, error) {
	var (
		payload []byte
		reader  io.Reader
	)
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return nil, apperrors.Wrap(apperrors.Request, "", err)
		}
		payload = b
		reader = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, h.baseURL+path, reader)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.Request, "", err)
	}
	h.setStandardHeaders(req)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	h.log.Debug("request", h.log.Args(
		"method", method,
		"path", path,
		"request_id", req.Header.Get("X-Request-ID"),
		"body", logging.Mask(string(payload)),
	))

	resp, err := h.doer.Do(req)
	if err != nil {
		h.log.Debug("request failed", h.log.Args("method", method, "path", path, "error", logging.Mask(err.Error())))
		return nil, asRequestError(err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, apperrors.Wrap(apperrors.Request, "", err)
	}

	h.log.Debug("response", h.log.Args("method", method, "path", path, "status", resp.StatusCode))

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, apperrors.RequestFailed(resp.StatusCode, serverMessage(data))
	}
	return data, nil
}

// asRequestError keeps errors that are already typed (the interceptor returns
// the refresh failure as-is) and wraps everything else.
func asRequestError(err error) error {
	var typed *apperrors.E
	if apperrors.As(err, &typed) {
		return err
	}
	return apperrors.Wrap(apperrors.Request, "", err)
}

// serverMessage extracts the user-facing message from an error body.
func serverMessage(data []byte) string {
	var out struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	if err := json.Unmarshal(data, &out); err != nil {
		return ""
	}
	if m := strings.TrimSpace(out.Message); m != "" {
		return m
	}
	return strings.TrimSpace(out.Error)
}

// decodeRecord decodes a JSON object body. Empty and null bodies yield an
// empty record.
func decodeRecord(data []byte) (map[string]any, error) {
	out := map[string]any{}
	if len(bytes.TrimSpace(data)) == 0 {
		return out, nil
	}
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, apperrors.Wrap(apperrors.Request, "", err)
	}
	if out == nil {
		out = map[string]any{}
	}
	return out, nil
}

// Copyright (c) 2025 Sessionctl
// Licensed under the MIT License. See LICENSE file in the project root for details.

package interceptor

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/url"
)

type retryKey struct{}

// WithRetried marks ctx as belonging to a request that was already replayed
// once after a refresh. A 401 for such a request is final.
func WithRetried(ctx context.Context) context.Context {
	return context.WithValue(ctx, retryKey{}, true)
}

// Retried reports whether ctx carries the retry marker.
func Retried(ctx context.Context) bool {
	v, _ := ctx.Value(retryKey{}).(bool)
	return v
}

// originalRequest is what is needed to send a request again after the first
// attempt consumed its body.
type originalRequest struct {
	method string
	url    *url.URL
	header http.Header
	body   []byte
}

// capture records req before it is sent. When req has a body without GetBody
// the body is buffered and req is rewired to read from the buffer.
func capture(req *http.Request) (*originalRequest, error) {
	u := *req.URL
	o := &originalRequest{
		method: req.Method,
		url:    &u,
		header: req.Header.Clone(),
	}
	if req.Body == nil || req.Body == http.NoBody {
		return o, nil
	}

	if req.GetBody != nil {
		rc, err := req.GetBody()
		if err != nil {
			return nil, err
		}
		defer rc.Close()
		b, err := io.ReadAll(rc)
		if err != nil {
			return nil, err
		}
		o.body = b
		return o, nil
	}

	b, err := io.ReadAll(req.Body)
	_ = req.Body.Close()
	if err != nil {
		return nil, err
	}
	o.body = b
	req.Body = io.NopCloser(bytes.NewReader(b))
	req.GetBody = func() (io.ReadCloser, error) {
		return io.NopCloser(bytes.NewReader(b)), nil
	}
	return o, nil
}

// replay builds a fresh request with the same method, URL, headers and body.
// The Cookie header is dropped so the client's jar supplies the cookies set
// by the refresh.
func (o *originalRequest) replay(ctx context.Context) (*http.Request, error) {
	var body io.Reader
	if o.body != nil {
		body = bytes.NewReader(o.body)
	}
	req, err := http.NewRequestWithContext(ctx, o.method, o.url.String(), body)
	if err != nil {
		return nil, err
	}
	req.Header = o.header.Clone()
	req.Header.Del("Cookie")
	return req, nil
}

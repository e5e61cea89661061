// Copyright (c) 2025 Sessionctl
// Licensed under the MIT License. See LICENSE file in the project root for details.

package endpoints

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMerge(t *testing.T) {
	got := HTTPEndpoints{Profile: "api/me", Login: " "}.Merge(Defaults())

	assert.Equal(t, "/api/me", got.Profile)
	assert.Equal(t, "/auth/login", got.Login)
	assert.Equal(t, "/auth/refresh-token", got.Refresh)
	assert.Equal(t, []string{"/auth/refresh-token", "/auth/logout"}, got.Unintercepted())
}

func TestBaseURL(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{name: "bare host", input: "shop.example.com", expected: "https://shop.example.com"},
		{name: "trailing slash", input: "http://localhost:5000/", expected: "http://localhost:5000"},
		{name: "api prefix", input: "http://localhost:5000/api/", expected: "http://localhost:5000/api"},
		{name: "query dropped", input: "https://example.com/api?x=1", expected: "https://example.com/api"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := BaseURL(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}
}

package store

import (
	"testing"

	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
)

func TestRejectionErrorMessage(t *testing.T) {
	tests := []struct {
		name     string
		body     string
		expected string
	}{
		{name: "detail key", body: `{"detail": "A market area with this name already exists."}`, expected: "A market area with this name already exists."},
		{name: "message key", body: `{"message": "validation failed"}`, expected: "validation failed"},
		{name: "error key", body: `{"error": "quota exceeded"}`, expected: "quota exceeded"},
		{name: "detail wins over message", body: `{"detail": "d", "message": "m"}`, expected: "d"},
		{name: "plain text body", body: "upstream timed out", expected: "upstream timed out"},
		{name: "json without known keys", body: `{"name": ["This field is required."]}`, expected: `{"name": ["This field is required."]}`},
		{name: "empty body falls back to status", body: "", expected: "store: create rejected (status 400)"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			re := &RejectionError{Status: 400, Body: tt.body}
			assert.Equal(t, tt.expected, re.Message())
		})
	}
}

func TestRejectionMessage(t *testing.T) {
	re := &RejectionError{Status: 409, Body: `{"detail": "duplicate"}`}
	assert.Equal(t, "duplicate", RejectionMessage(re))

	wrapped := eris.Wrap(re, "persist draft")
	assert.Equal(t, "duplicate", RejectionMessage(wrapped))

	plain := eris.New("connection refused")
	assert.Contains(t, RejectionMessage(plain), "connection refused")
}

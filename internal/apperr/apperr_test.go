package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStatusAndMessage(t *testing.T) {
	cause := errors.New("pq: duplicate key value violates unique constraint")
	tests := []struct {
		name    string
		err     error
		status  int
		message string
		is      error
	}{
		{"validation", Validation("Missing required fields"), http.StatusBadRequest, "Missing required fields", ErrValidation},
		{"conflict", Conflict("Email already in use", cause), http.StatusBadRequest, "Email already in use", ErrConflict},
		{"not found", NotFound("User not found"), http.StatusNotFound, "User not found", ErrNotFound},
		{"auth", Auth("Invalid password", nil), http.StatusUnauthorized, "Invalid password", ErrAuth},
		{"unexpected", Unexpected(cause), http.StatusInternalServerError, UnexpectedMessage, ErrUnexpected},
		{"plain error", cause, http.StatusInternalServerError, UnexpectedMessage, nil},
		{"wrapped", fmt.Errorf("login: %w", NotFound("User not found")), http.StatusNotFound, "User not found", ErrNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.status, Status(tt.err))
			assert.Equal(t, tt.message, Message(tt.err))
			if tt.is != nil {
				assert.ErrorIs(t, tt.err, tt.is)
			}
		})
	}
}

func TestUnexpectedHidesCause(t *testing.T) {
	err := Unexpected(errors.New("connection refused on 10.0.0.3:5432"))
	assert.NotContains(t, Message(err), "10.0.0.3")
	assert.Contains(t, err.Error(), "10.0.0.3", "cause stays available for logs")
}

func TestKindsDoNotCrossMatch(t *testing.T) {
	err := NotFound("User not found")
	assert.False(t, errors.Is(err, ErrAuth))
	assert.False(t, errors.Is(err, ErrValidation))
}

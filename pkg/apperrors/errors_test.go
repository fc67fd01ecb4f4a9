package apperrors

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFactoriesCarryCodeAndStatus(t *testing.T) {
	tests := []struct {
		name     string
		err      *AppError
		code     ErrorCode
		httpCode int
	}{
		{"validation", ValidationError("thread", "Title is required"), CodeValidationFailed, http.StatusBadRequest},
		{"not found", NotFound("thread", "Thread not found"), CodeNotFound, http.StatusNotFound},
		{"conflict", ConstraintViolation(errors.New("dup"), "user", "Already exists"), CodeConflict, http.StatusConflict},
		{"transient", TransientError(errors.New("refused"), "users"), CodeUnavailable, http.StatusServiceUnavailable},
		{"unauthorized", Unauthorized("Invalid email or password"), CodeUnauthorized, http.StatusUnauthorized},
		{"invalid status", InvalidStatus("alert", "Bad move"), CodeInvalidStatus, http.StatusBadRequest},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.code, tc.err.Code)
			assert.Equal(t, tc.httpCode, tc.err.HTTPCode)
		})
	}
}

func TestUnwrapPreservesCause(t *testing.T) {
	cause := errors.New("connection refused")
	err := TransientError(cause, "users")

	assert.ErrorIs(t, err, cause)

	wrapped := fmt.Errorf("fetching user: %w", err)
	appErr, ok := AsAppError(wrapped)
	require.True(t, ok)
	assert.Equal(t, CodeUnavailable, appErr.Code)
}

func TestIsRetryable(t *testing.T) {
	assert.True(t, IsRetryable(TransientError(errors.New("refused"), "users")))
	assert.False(t, IsRetryable(ValidationError("thread", "bad")))
	assert.False(t, IsRetryable(NotFound("thread", "missing")))
	assert.False(t, IsRetryable(errors.New("plain")))
	assert.False(t, IsRetryable(nil))
}

func TestMarshalJSONHidesInternals(t *testing.T) {
	err := ConstraintViolation(errors.New("pq: duplicate key"), "user", "Already exists").
		WithDetails(map[string]string{"field": "email"})

	data, marshalErr := json.Marshal(err)
	require.NoError(t, marshalErr)

	var out map[string]any
	require.NoError(t, json.Unmarshal(data, &out))
	assert.Equal(t, "CONFLICT", out["code"])
	assert.Equal(t, "user", out["domain"])
	assert.Contains(t, out, "details")
	assert.NotContains(t, out, "HTTPCode")
	assert.NotContains(t, string(data), "pq: duplicate key")
}

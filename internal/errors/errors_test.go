package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConstructorsStatus(t *testing.T) {
	tests := []struct {
		name   string
		err    *ServiceError
		status int
		code   ErrorCode
	}{
		{"validation", Validation("bad"), http.StatusBadRequest, CodeValidation},
		{"unauthorized", Unauthorized(""), http.StatusUnauthorized, CodeUnauthorized},
		{"invalid token", InvalidToken(nil), http.StatusForbidden, CodeInvalidToken},
		{"conflict", Conflict("User already exists"), http.StatusConflict, CodeConflict},
		{"not found", NotFound("session"), http.StatusNotFound, CodeNotFound},
		{"rate limited", RateLimitExceeded(5, "1s"), http.StatusTooManyRequests, CodeRateLimited},
		{"store", Store("insert", stderrors.New("boom")), http.StatusInternalServerError, CodeStore},
		{"internal", Internal("", nil), http.StatusInternalServerError, CodeInternal},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.status, tt.err.HTTPStatus)
			assert.Equal(t, tt.code, tt.err.Code)
			assert.Equal(t, tt.status, HTTPStatus(tt.err))
		})
	}
}

func TestStoreErrorHidesCause(t *testing.T) {
	cause := stderrors.New("pq: relation \"sessions\" does not exist")
	err := Store("list sessions", cause)

	assert.Equal(t, "Database error", err.Message)
	assert.True(t, stderrors.Is(err, cause))
	assert.Equal(t, "list sessions", err.Details["op"])
}

func TestGetServiceErrorThroughWrapping(t *testing.T) {
	wrapped := fmt.Errorf("record session: %w", Validation("Duration is required"))

	se := GetServiceError(wrapped)
	require.NotNil(t, se)
	assert.Equal(t, "Duration is required", se.Message)
	assert.True(t, IsValidation(wrapped))
	assert.False(t, IsConflict(wrapped))

	assert.Nil(t, GetServiceError(stderrors.New("plain")))
	assert.Equal(t, http.StatusInternalServerError, HTTPStatus(stderrors.New("plain")))
}

func TestIsAuth(t *testing.T) {
	assert.True(t, IsAuth(Unauthorized("Access token required")))
	assert.True(t, IsAuth(InvalidToken(nil)))
	assert.False(t, IsAuth(Validation("x")))
}

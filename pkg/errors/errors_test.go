package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConstructors(t *testing.T) {
	tests := []struct {
		name     string
		err      *AppError
		wantType ErrorType
		status   int
		message  string
	}{
		{"validation", NewValidationError("node id is required"), ErrorTypeValidation, http.StatusBadRequest, "node id is required"},
		{"not found", NewNotFoundError("graph node"), ErrorTypeNotFound, http.StatusNotFound, "graph node not found"},
		{"conflict", NewConflictError("generation already running"), ErrorTypeConflict, http.StatusConflict, "generation already running"},
		{"unauthorized default", NewUnauthorizedError(""), ErrorTypeUnauthorized, http.StatusUnauthorized, "unauthorized"},
		{"rate limit", NewRateLimitError(time.Minute), ErrorTypeRateLimit, http.StatusTooManyRequests, "too many requests"},
		{"unprocessable", NewUnprocessableError("cannot parse \"Hezekiah 1:1\""), ErrorTypeUnprocessable, http.StatusUnprocessableEntity, "cannot parse \"Hezekiah 1:1\""},
		{"internal", NewInternalError("panic: boom"), ErrorTypeInternal, http.StatusInternalServerError, "panic: boom"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.wantType, tt.err.Type)
			assert.Equal(t, tt.status, tt.err.HTTPStatus)
			assert.Equal(t, tt.message, tt.err.Message)
			assert.Contains(t, tt.err.StackTrace, "TestConstructors")
		})
	}
}

func TestCodesOnAuthErrors(t *testing.T) {
	assert.Equal(t, CodeUnauthorized, NewUnauthorizedError("token expired").Code)

	limited := NewRateLimitError(30 * time.Second)
	assert.Equal(t, CodeRateLimited, limited.Code)
	assert.Equal(t, 30*time.Second, limited.RetryAfter)
}

func TestDatabaseErrorUnwraps(t *testing.T) {
	cause := stderrors.New("disk I/O error")
	err := NewDatabaseError("save node", cause)

	assert.True(t, stderrors.Is(err, cause))
	assert.Equal(t, "DATABASE: database operation 'save node' failed (caused by: disk I/O error)", err.Error())
}

func TestTypePredicatesFollowWrapping(t *testing.T) {
	wrapped := fmt.Errorf("update node: %w", NewNotFoundError("graph node").WithCode(CodeGraphNodeNotFound))

	assert.True(t, IsNotFound(wrapped))
	assert.False(t, IsValidation(wrapped))
	assert.False(t, IsConflict(wrapped))

	appErr := GetAppError(wrapped)
	require.NotNil(t, appErr)
	assert.Equal(t, CodeGraphNodeNotFound, appErr.Code)

	assert.Nil(t, GetAppError(stderrors.New("plain")))
	assert.False(t, IsType(nil, ErrorTypeNotFound))
}

package domain

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestHTTPStatus(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"validation", ErrValidation("bad field %q", "x;"), http.StatusBadRequest},
		{"not found", ErrNotFound("dataset %d not found", 3), http.StatusNotFound},
		{"denied", ErrPermissionDenied("no access"), http.StatusForbidden},
		{"auth", ErrAuth("invalid credentials"), http.StatusUnauthorized},
		{"locked", &LockedError{Username: "bob", RetryAfter: time.Minute}, http.StatusTooManyRequests},
		{"conflict", ErrConflict("exists"), http.StatusConflict},
		{"translation", &TranslationError{Message: "model failed"}, http.StatusBadGateway},
		{"execution", &QueryExecutionError{Op: "query", Err: errors.New("boom")}, http.StatusInternalServerError},
		{"wrapped validation", fmt.Errorf("chart 4: %w", ErrValidation("bad")), http.StatusBadRequest},
		{"unknown", errors.New("whatever"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, HTTPStatus(tt.err))
		})
	}
}

func TestPublicMessageHidesDriverDetails(t *testing.T) {
	err := &QueryExecutionError{Op: "query", Err: errors.New(`syntax error near "SELECT secret FROM x"`)}

	assert.Equal(t, "failed to execute query", PublicMessage(err))
	assert.Equal(t, "internal server error", PublicMessage(errors.New("pq: connection refused")))
	assert.Equal(t, "bad field", PublicMessage(ErrValidation("bad field")))
}

func TestQueryExecutionErrorUnwraps(t *testing.T) {
	cause := errors.New("timeout")
	err := fmt.Errorf("chart data: %w", &QueryExecutionError{Op: "connect", Err: cause})

	assert.ErrorIs(t, err, cause)
	var execErr *QueryExecutionError
	assert.True(t, errors.As(err, &execErr))
	assert.Equal(t, "connect", execErr.Op)
}

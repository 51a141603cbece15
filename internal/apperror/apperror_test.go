package apperror

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStatusMapping(t *testing.T) {
	cases := []struct {
		err  *Error
		want int
	}{
		{Validation("bad"), http.StatusBadRequest},
		{Unauthorized("who"), http.StatusUnauthorized},
		{Forbidden("no"), http.StatusForbidden},
		{NotFound("gone"), http.StatusNotFound},
		{Conflict("dup"), http.StatusConflict},
		{Internal(errors.New("db down")), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, tc.err.Status(), tc.err.Message)
	}
}

func TestAsWrapsUnknownErrorsAsInternal(t *testing.T) {
	cause := errors.New("dial tcp 127.0.0.1:3306: connection refused")
	got := As(cause)

	assert.Equal(t, KindInternal, got.Kind)
	assert.Equal(t, InternalMessage, got.Message)
	assert.NotContains(t, got.Message, "3306")
	assert.ErrorIs(t, got, cause)
}

func TestAsFindsWrappedAppError(t *testing.T) {
	wrapped := fmt.Errorf("service: %w", NotFound("视频不存在"))

	got := As(wrapped)
	assert.Equal(t, KindNotFound, got.Kind)
	assert.True(t, IsKind(wrapped, KindNotFound))
	assert.False(t, IsKind(wrapped, KindConflict))
}

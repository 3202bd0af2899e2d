package apierror

import (
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestUpstreamEchoesStatus(t *testing.T) {
	err := Upstream(http.StatusTooManyRequests, "rate limited upstream")
	require.Equal(t, http.StatusTooManyRequests, err.Status())
	require.Equal(t, "api_error", err.ToEnvelope().Error.Type)
}

func TestNewLooksUpTableStatus(t *testing.T) {
	err := New(MissingRequiredField, "model is required")
	require.Equal(t, http.StatusBadRequest, err.Status())
	require.Equal(t, "missing_field", err.ToEnvelope().Error.Code)
}

func TestWrapPreservesCauseForUnwrap(t *testing.T) {
	cause := errors.New("dial tcp: timeout")
	err := Wrap(NetworkTimeout, "upstream request timed out", cause)
	require.ErrorIs(t, err, cause)
}

func TestAsNormalizesForeignError(t *testing.T) {
	foreign := errors.New("something broke")
	got := As(foreign)
	require.Equal(t, Serde, got.Kind)
	require.Equal(t, http.StatusInternalServerError, got.Status())
}

func TestAsPassesThroughExistingError(t *testing.T) {
	original := New(NotFound, "unknown model: foo")
	require.Same(t, original, As(original))
}

func TestRateLimitFoldsRetryAfterIntoMessage(t *testing.T) {
	retryAfter := 30
	err := RateLimit(&retryAfter, "upstream rate limited")
	require.Equal(t, RateLimited, err.Kind)
	require.Equal(t, http.StatusTooManyRequests, err.Status())
	env := err.ToEnvelope()
	require.Equal(t, "rate_limit_error", env.Error.Type)
	require.Contains(t, env.Error.Message, "retry after 30s")
}

func TestRateLimitWithoutRetryAfterOmitsSuffix(t *testing.T) {
	err := RateLimit(nil, "upstream rate limited")
	require.NotContains(t, err.ToEnvelope().Error.Message, "retry after")
}

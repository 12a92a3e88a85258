package types

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// --- ErrorCode Tests ---

func TestErrorCode_HTTPStatus(t *testing.T) {
	tests := []struct {
		code ErrorCode
		want int
	}{
		{ErrCodeValidationInvalidPayload, http.StatusBadRequest},
		{ErrCodeValidationInvalidEvent, http.StatusBadRequest},
		{ErrCodeValidationBodyTooLarge, http.StatusBadRequest},
		{ErrCodeAuthTokenMissing, http.StatusUnauthorized},
		{ErrCodeAuthTokenInvalid, http.StatusUnauthorized},
		{ErrCodeUpstreamDiscordUnavailable, http.StatusBadGateway},
		{ErrCodeUpstreamDiscordRejected, http.StatusBadGateway},
		{ErrCodeInternalUnexpected, http.StatusInternalServerError},
		{ErrorCode("something_else"), http.StatusInternalServerError},
	}

	for _, tc := range tests {
		t.Run(string(tc.code), func(t *testing.T) {
			assert.Equal(t, tc.want, tc.code.HTTPStatus())
		})
	}
}

// --- AppError Tests ---

func TestAppError_ErrorAndUnwrap(t *testing.T) {
	cause := fmt.Errorf("connection reset")
	err := NewAppError(ErrCodeUpstreamDiscordUnavailable, "discord delivery failed", cause)

	assert.Equal(t, "upstream_discord_unavailable: discord delivery failed", err.Error())
	assert.Equal(t, cause, errors.Unwrap(err))
	assert.Equal(t, http.StatusBadGateway, err.HTTPStatus())
}

func TestAppError_ErrorsAsThroughWrapping(t *testing.T) {
	inner := NewAppError(ErrCodeAuthTokenInvalid, "bad token", nil)
	wrapped := fmt.Errorf("handler: %w", inner)

	var appErr *AppError
	require.True(t, errors.As(wrapped, &appErr))
	assert.Equal(t, ErrCodeAuthTokenInvalid, appErr.Code)
}

func TestAppError_WithDetails(t *testing.T) {
	base := NewAppErrorWithDetails(ErrCodeValidationInvalidPayload, "bad payload", nil, map[string]any{
		"field": "Event",
	})

	enriched := base.WithDetails(map[string]any{"reason": "empty"})

	assert.Equal(t, map[string]any{"field": "Event", "reason": "empty"}, enriched.Details)
	// The original is untouched.
	assert.Equal(t, map[string]any{"field": "Event"}, base.Details)
}

// --- SecretString Tests ---

func TestSecretString_Redaction(t *testing.T) {
	secret := SecretString("hunter2")

	assert.Equal(t, "***REDACTED***", secret.String())
	assert.Equal(t, "***REDACTED***", fmt.Sprintf("%v", secret))
	assert.Equal(t, "hunter2", secret.Unmask())
	assert.True(t, secret.IsSet())
	assert.False(t, SecretString("").IsSet())
}

func TestSecretString_MarshalJSON(t *testing.T) {
	data, err := SecretString("hunter2").MarshalJSON()

	require.NoError(t, err)
	assert.Equal(t, `"***REDACTED***"`, string(data))
}

package batchrouter

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMapStatus(t *testing.T) {
	tests := []struct {
		status int
		want   error
	}{
		{401, ErrAuthentication},
		{404, ErrNotFound},
		{422, ErrValidation},
		{500, ErrServer},
		{502, ErrServer},
		{503, ErrServer},
		{400, nil},
		{418, nil},
		{429, nil},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, mapStatus(tt.status), "status %d", tt.status)
	}
}

func TestAPIError_DefaultMessages(t *testing.T) {
	tests := []struct {
		status  int
		message string
	}{
		{401, "Invalid or missing API key"},
		{404, "Resource not found"},
		{422, "Validation failed"},
		{500, "Server error"},
		{503, "Server error"},
		{418, "HTTP 418"},
	}

	for _, tt := range tests {
		err := apiError(tt.status, "")
		assert.Equal(t, tt.message, err.Message, "status %d", tt.status)
	}
}

func TestAPIError_ServerErrorsCarryCanonicalStatus(t *testing.T) {
	err := apiError(502, "upstream exploded")

	assert.Equal(t, 500, err.StatusCode)
	assert.Equal(t, "upstream exploded", err.Message)
	assert.ErrorIs(t, err, ErrServer)
}

func TestAPIError_UnclassifiedCarriesLiteralStatus(t *testing.T) {
	err := apiError(418, "")

	assert.Equal(t, 418, err.StatusCode)
	assert.Equal(t, "HTTP 418", err.Message)
	assert.Nil(t, err.Err)
}

func TestError_Format(t *testing.T) {
	withStatus := apiError(404, "Dataset not found")
	assert.Equal(t, "[NotFoundError] Dataset not found (status=404)", withStatus.Error())

	noKind := &Error{StatusCode: 418, Message: "HTTP 418"}
	assert.Equal(t, "[BatchRouterError] HTTP 418 (status=418)", noKind.Error())

	noStatus := &Error{Message: "boom", Err: ErrValidation}
	assert.Equal(t, "[ValidationError] boom", noStatus.Error())
}

func TestError_Unwrap(t *testing.T) {
	wrapped := fmt.Errorf("fetch dataset: %w", apiError(404, ""))

	assert.ErrorIs(t, wrapped, ErrNotFound)

	var apiErr *Error
	require.True(t, errors.As(wrapped, &apiErr))
	assert.Equal(t, 404, apiErr.StatusCode)
	assert.Equal(t, "Resource not found", apiErr.Message)
}

func TestAuthError(t *testing.T) {
	err := authError("API key is required.")

	assert.ErrorIs(t, err, ErrAuthentication)
	assert.Equal(t, 401, err.StatusCode)
	assert.Contains(t, err.Error(), "API key is required.")
}

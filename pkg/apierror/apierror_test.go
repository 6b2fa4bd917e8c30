package apierror

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAPIError_Error(t *testing.T) {
	assert.Equal(t, "BAD_REQUEST: age must be between 0 and 120 (age)", BadRequest("age must be between 0 and 120", "age").Error())
	assert.Equal(t, "UNAUTHORIZED: Invalid ID or password", Unauthorized("Invalid ID or password").Error())

	var nilErr *APIError
	assert.Equal(t, "", nilErr.Error())
}

func TestAPIError_SurvivesWrapping(t *testing.T) {
	wrapped := fmt.Errorf("login: %w", Unauthorized("Invalid ID or password"))

	var apiErr *APIError
	require.True(t, errors.As(wrapped, &apiErr))
	assert.Equal(t, http.StatusUnauthorized, apiErr.HTTPStatus)
	assert.Equal(t, CodeUnauthorized, apiErr.Code)
}

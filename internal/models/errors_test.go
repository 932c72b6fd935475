package models_test

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/Lllllllleong/geminiscribe/internal/models"
)

func TestHTTPStatus(t *testing.T) {
	tests := []struct {
		code models.ErrorCode
		want int
	}{
		{models.ErrInvalidInput, http.StatusBadRequest},
		{models.ErrNotFound, http.StatusNotFound},
		{models.ErrAccessDenied, http.StatusForbidden},
		{models.ErrUnsupportedDocument, http.StatusUnprocessableEntity},
		{models.ErrExtractionFailed, http.StatusBadGateway},
		{models.ErrTimeout, http.StatusGatewayTimeout},
		{models.ErrInternal, http.StatusInternalServerError},
		{models.ErrorCode("something_new"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		require.Equal(t, tt.want, tt.code.HTTPStatus(), "code %s", tt.code)
	}
}

func TestCodeOf(t *testing.T) {
	cause := errors.New("boom")
	classified := models.NewError(models.ErrNotFound, "object missing", cause)

	require.Equal(t, models.ErrNotFound, models.CodeOf(classified))
	require.Equal(t, models.ErrNotFound, models.CodeOf(fmt.Errorf("page 3: %w", classified)))
	require.Equal(t, models.ErrInternal, models.CodeOf(errors.New("unclassified")))
}

func TestMessageOf(t *testing.T) {
	classified := models.Errorf(models.ErrInvalidInput, "uri %q is bad", "foo")

	require.Equal(t, `uri "foo" is bad`, models.MessageOf(classified))
	require.Equal(t, `uri "foo" is bad`, models.MessageOf(fmt.Errorf("wrapped: %w", classified)))
	require.Equal(t, "internal server error", models.MessageOf(errors.New("secret detail")))
}

func TestErrorUnwrap(t *testing.T) {
	cause := errors.New("root cause")
	err := models.NewError(models.ErrTimeout, "deadline", cause)

	require.ErrorIs(t, err, cause)
	require.Contains(t, err.Error(), "timeout")
	require.Contains(t, err.Error(), "root cause")
}

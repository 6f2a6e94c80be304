package errors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConstructors(t *testing.T) {
	cause := errors.New("boom")

	tests := []struct {
		name       string
		err        *Error
		wantType   ErrorType
		wantStatus int
		wantCause  error
	}{
		{"validation", ValidationError("bad input"), TypeValidation, http.StatusBadRequest, nil},
		{"not found", NotFoundError("email not found"), TypeNotFound, http.StatusNotFound, nil},
		{"internal", InternalError("failed", cause), TypeInternal, http.StatusInternalServerError, cause},
		{"external", ExternalError("upstream", cause), TypeExternal, http.StatusBadGateway, cause},
		{"unavailable", UnavailableError("store down", cause), TypeUnavailable, http.StatusServiceUnavailable, cause},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.wantType, tt.err.Type)
			assert.Equal(t, tt.wantStatus, tt.err.HTTPStatus())
			assert.Equal(t, tt.wantCause, tt.err.Cause)
			assert.NotNil(t, tt.err.Context)
			assert.Contains(t, tt.err.Error(), string(tt.wantType))
		})
	}
}

func TestErrorMessageIncludesCause(t *testing.T) {
	err := InternalError("failed to save email", fmt.Errorf("connection reset"))

	assert.Equal(t, "internal: failed to save email: connection reset", err.Error())
}

func TestUnwrap(t *testing.T) {
	sentinel := errors.New("sentinel")
	err := UnavailableError("store down", fmt.Errorf("ping: %w", sentinel))

	assert.ErrorIs(t, err, sentinel)
}

func TestWithField(t *testing.T) {
	err := NotFoundError("email not found").WithField("email_id", "abc").WithField("attempt", 2)

	assert.Equal(t, "abc", err.Context["email_id"])
	assert.Equal(t, 2, err.Context["attempt"])
}

func TestWithField_NilContext(t *testing.T) {
	err := (&Error{Type: TypeValidation, Message: "bad"}).WithField("k", "v")

	assert.Equal(t, "v", err.Context["k"])
}

func TestToResponse(t *testing.T) {
	resp := ValidationError("subject is required").WithField("field", "subject").ToResponse()

	assert.Equal(t, "subject is required", resp.Error)
	assert.Equal(t, TypeValidation, resp.Type)
	assert.Equal(t, "subject", resp.Context["field"])
}

func TestAsStructuredError(t *testing.T) {
	assert.Nil(t, AsStructuredError(nil))

	original := NotFoundError("missing")
	wrapped := fmt.Errorf("handler: %w", original)
	require.Same(t, original, AsStructuredError(wrapped))

	plain := errors.New("plain")
	converted := AsStructuredError(plain)
	assert.Equal(t, TypeInternal, converted.Type)
	assert.Equal(t, plain, converted.Cause)
}

func TestWithCause(t *testing.T) {
	sentinel := errors.New("invalid email")
	err := ValidationError("body is required").WithCause(sentinel)

	assert.ErrorIs(t, err, sentinel)
	assert.Equal(t, http.StatusBadRequest, err.HTTPStatus())
}

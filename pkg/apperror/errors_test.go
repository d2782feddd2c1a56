package apperror

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMapErrorToStatus(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want int
	}{
		{"not found", fmt.Errorf("course not found: %w", ErrNotFound), http.StatusNotFound},
		{"forbidden", fmt.Errorf("%w: not the owner", ErrForbidden), http.StatusForbidden},
		{"invalid input", fmt.Errorf("bad payload: %w", ErrInvalidInput), http.StatusBadRequest},
		{"conflict", fmt.Errorf("already enrolled: %w", ErrConflict), http.StatusConflict},
		{"payment", ErrPaymentRequired, http.StatusPaymentRequired},
		{"app error code wins", New(http.StatusTeapot, "teapot", ErrNotFound), http.StatusTeapot},
		{"unknown", errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, MapErrorToStatus(tc.err))
		})
	}
}

func TestAppErrorMessage(t *testing.T) {
	err := New(http.StatusBadRequest, "lesson payload is invalid", ErrInvalidInput)
	assert.Equal(t, "lesson payload is invalid", err.Error())
	assert.ErrorIs(t, err, ErrInvalidInput)

	bare := New(http.StatusConflict, "", nil)
	assert.Equal(t, http.StatusText(http.StatusConflict), bare.Error())
}

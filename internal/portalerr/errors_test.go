package portalerr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestHTTPStatus(t *testing.T) {
	cases := []struct {
		err  error
		want int
	}{
		{ErrValidation, http.StatusBadRequest},
		{ErrForbidden, http.StatusForbidden},
		{ErrNotFound, http.StatusNotFound},
		{ErrSlotConflict, http.StatusConflict},
		{ErrAlreadyCancelled, http.StatusConflict},
		{ErrAlreadyDispensed, http.StatusConflict},
		{ErrAlreadyCompleted, http.StatusConflict},
		{ErrNotReferred, http.StatusUnprocessableEntity},
		{errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		if got := HTTPStatus(tc.err); got != tc.want {
			t.Errorf("HTTPStatus(%v) = %d, want %d", tc.err, got, tc.want)
		}
	}
}

func TestHTTPStatus_Wrapped(t *testing.T) {
	err := fmt.Errorf("%w: time 09:00 taken", ErrSlotConflict)
	if got := HTTPStatus(err); got != http.StatusConflict {
		t.Errorf("wrapped slot conflict = %d, want 409", got)
	}
}

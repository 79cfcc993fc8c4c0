package goerror

import (
	"errors"
	"net/http"
	"testing"
)

func TestStatusCodeMapping(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"internal", NewServer(errors.New("boom")), http.StatusInternalServerError},
		{"unavailable", NewUnavailable(errors.New("dial tcp: refused")), http.StatusServiceUnavailable},
		{"not provisioned", NewBusiness("Unknown database", CodeNotProvisioned), http.StatusBadRequest},
		{"not found", NewBusiness("Unknown row", CodeNotFound), http.StatusNotFound},
		{"unauthorized", NewBusiness("Authentication Required", CodeUnauthorized), http.StatusUnauthorized},
		{"forbidden", NewBusiness("Permission Denied", CodeForbidden), http.StatusForbidden},
		{"invalid format", NewInvalidFormat(), http.StatusBadRequest},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			var ge *Error
			if !errors.As(tc.err, &ge) {
				t.Fatalf("error is not a *Error: %v", tc.err)
			}
			if got := ge.StatusCode(); got != tc.want {
				t.Fatalf("StatusCode() = %d, want %d", got, tc.want)
			}
		})
	}
}

func TestUnwrapKeepsUnderlyingError(t *testing.T) {
	underlying := errors.New("connection reset")
	err := NewUnavailable(underlying)

	if !errors.Is(err, underlying) {
		t.Fatalf("errors.Is failed to find the wrapped error")
	}
}

func TestBusinessErrorMessage(t *testing.T) {
	err := NewBusiness("Permission Denied", CodeForbidden)

	var ge *Error
	if !errors.As(err, &ge) {
		t.Fatalf("error is not a *Error: %v", err)
	}
	if ge.Error() != "Permission Denied" {
		t.Fatalf("Error() = %q, want %q", ge.Error(), "Permission Denied")
	}
	if ge.Code().String() != "ERROR_CODE_FORBIDDEN" {
		t.Fatalf("Code().String() = %q", ge.Code().String())
	}
}

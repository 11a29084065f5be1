package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
	"testing"
)

func TestStatusMapping(t *testing.T) {
	cases := []struct {
		err    *ServiceError
		status int
	}{
		{BadRequest("bad"), http.StatusBadRequest},
		{Unauthorized("no"), http.StatusUnauthorized},
		{InvalidToken(nil), http.StatusUnauthorized},
		{NotFound("gone"), http.StatusNotFound},
		{Conflict("dup"), http.StatusConflict},
		{RateLimitExceeded(10, "1s"), http.StatusTooManyRequests},
		{Internal("boom", nil), http.StatusInternalServerError},
	}
	for _, c := range cases {
		if got := HTTPStatus(c.err); got != c.status {
			t.Fatalf("%s: expected %d, got %d", c.err.Code, c.status, got)
		}
	}
}

func TestGetServiceErrorThroughWrap(t *testing.T) {
	se := Conflict("username already exists")
	wrapped := fmt.Errorf("create user: %w", se)

	got := GetServiceError(wrapped)
	if got == nil || got.Code != CodeConflict {
		t.Fatalf("expected conflict through wrap, got %v", got)
	}
}

func TestHTTPStatusDefaultsToInternal(t *testing.T) {
	if got := HTTPStatus(stderrors.New("plain")); got != http.StatusInternalServerError {
		t.Fatalf("expected 500 for plain error, got %d", got)
	}
}

func TestUnwrapKeepsCause(t *testing.T) {
	cause := stderrors.New("disk full")
	se := Internal("write failed", cause)
	if !stderrors.Is(se, cause) {
		t.Fatal("expected errors.Is to find the cause")
	}
	if se.Error() != "write failed: disk full" {
		t.Fatalf("unexpected message: %s", se.Error())
	}
}

func TestWithDetails(t *testing.T) {
	se := BadRequest("missing field").WithDetails("field", "username")
	if se.Details["field"] != "username" {
		t.Fatalf("details not attached: %v", se.Details)
	}
}

package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestKindOfWrapped(t *testing.T) {
	base := New(InvalidState, "leave request has already been approved")
	wrapped := fmt.Errorf("review: %w", base)

	if KindOf(wrapped) != InvalidState {
		t.Fatalf("expected InvalidState, got %v", KindOf(wrapped))
	}
	if ClientMessage(wrapped) != "leave request has already been approved" {
		t.Fatalf("unexpected message %q", ClientMessage(wrapped))
	}
}

func TestKindOfUntyped(t *testing.T) {
	err := errors.New("connection reset")
	if KindOf(err) != Internal {
		t.Fatalf("untyped errors must classify as Internal")
	}
	if ClientMessage(err) != "internal server error" {
		t.Fatalf("untyped errors must not leak details, got %q", ClientMessage(err))
	}
}

func TestHTTPStatus(t *testing.T) {
	cases := map[Kind]int{
		Validation:    http.StatusBadRequest,
		InvalidState:  http.StatusBadRequest,
		Authorization: http.StatusForbidden,
		NotFound:      http.StatusNotFound,
		Conflict:      http.StatusConflict,
		Internal:      http.StatusInternalServerError,
	}
	for kind, want := range cases {
		if got := HTTPStatus(New(kind, "x")); got != want {
			t.Fatalf("kind %v: expected %d, got %d", kind, want, got)
		}
	}
}

func TestWrapKeepsCause(t *testing.T) {
	cause := errors.New("pgx: broken pipe")
	err := Wrap(Internal, "error fetching leaves", cause)
	if !errors.Is(err, cause) {
		t.Fatal("expected wrapped cause to be reachable")
	}
	if Wrap(Internal, "x", nil) != nil {
		t.Fatal("wrapping nil must return nil")
	}
}

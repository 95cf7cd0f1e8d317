package session

import (
	"errors"
	"fmt"
	"testing"
)

func TestWrapUnwrap(t *testing.T) {
	cause := errors.New("boom")
	err := Wrap(BadFile, cause)
	if !errors.Is(err, cause) {
		t.Fatal("Wrap should preserve the cause for errors.Is")
	}
	if err.Error() == "" {
		t.Fatal("Error() should not be empty")
	}
}

func TestClassifyError(t *testing.T) {
	err := Wrap(ServerError, errors.New("disk full"))
	wrapped := fmt.Errorf("session failed: %w", err)

	kind, ok := ClassifyError(wrapped)
	if !ok {
		t.Fatal("ClassifyError should find a wrapped *session.Error")
	}
	if kind != ServerError {
		t.Fatalf("ClassifyError kind = %v, want %v", kind, ServerError)
	}
}

func TestClassifyErrorOnPlainError(t *testing.T) {
	if _, ok := ClassifyError(errors.New("plain")); ok {
		t.Fatal("ClassifyError should report false for a non-session error")
	}
}

func TestKindString(t *testing.T) {
	cases := map[Kind]string{
		NoConnection: "NoConnection",
		BadRequest:   "BadRequest",
		ServerError:  "ServerError",
		BadFile:      "BadFile",
	}
	for k, want := range cases {
		if got := k.String(); got != want {
			t.Fatalf("Kind(%d).String() = %q, want %q", k, got, want)
		}
	}
}

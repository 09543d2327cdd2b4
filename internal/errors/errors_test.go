package errors

import (
	stderrors "errors"
	"fmt"
	"testing"
)

func TestLinkError_Error(t *testing.T) {
	err := &LinkError{
		Code:    ErrInvalidRequest,
		Status:  400,
		Message: "url is required",
	}

	expected := "INVALID_REQUEST: url is required"
	if err.Error() != expected {
		t.Errorf("Error() = %q, want %q", err.Error(), expected)
	}
}

func TestNewInvalidRequest(t *testing.T) {
	err := NewInvalidRequest("url is required")

	if err.Code != ErrInvalidRequest {
		t.Errorf("Code = %q, want %q", err.Code, ErrInvalidRequest)
	}
	if err.Status != 400 {
		t.Errorf("Status = %d, want 400", err.Status)
	}
	if err.Message != "url is required" {
		t.Errorf("Message = %q, want %q", err.Message, "url is required")
	}
}

func TestNewFetchInProgress(t *testing.T) {
	err := NewFetchInProgress()

	if err.Code != ErrFetchInProgress {
		t.Errorf("Code = %q, want %q", err.Code, ErrFetchInProgress)
	}
	if err.Status != 409 {
		t.Errorf("Status = %d, want 409", err.Status)
	}
}

func TestNewFetchFailed(t *testing.T) {
	cause := fmt.Errorf("dial tcp: connection refused")
	err := NewFetchFailed("https://example.com", cause)

	if err.Code != ErrFetchFailed {
		t.Errorf("Code = %q, want %q", err.Code, ErrFetchFailed)
	}
	if err.Status != 502 {
		t.Errorf("Status = %d, want 502", err.Status)
	}
	if err.Message != cause.Error() {
		t.Errorf("Message = %q, want %q", err.Message, cause.Error())
	}
	if err.Details["url"] != "https://example.com" {
		t.Errorf("Details[url] = %v, want %q", err.Details["url"], "https://example.com")
	}
	if !stderrors.Is(err, cause) {
		t.Error("expected NewFetchFailed to wrap its cause")
	}
}

func TestNewFetchFailed_NilCause(t *testing.T) {
	err := NewFetchFailed("https://example.com", nil)
	if err.Message != "fetch failed" {
		t.Errorf("Message = %q, want %q", err.Message, "fetch failed")
	}
}

func TestNewCorruptState(t *testing.T) {
	err := NewCorruptState("URL_LINKS", fmt.Errorf("unexpected end of JSON input"))

	if err.Code != ErrCorruptState {
		t.Errorf("Code = %q, want %q", err.Code, ErrCorruptState)
	}
	if err.Details["key"] != "URL_LINKS" {
		t.Errorf("Details[key] = %v, want URL_LINKS", err.Details["key"])
	}
	expected := "persisted URL_LINKS is corrupt: unexpected end of JSON input"
	if err.Message != expected {
		t.Errorf("Message = %q, want %q", err.Message, expected)
	}
}

func TestNewInternal(t *testing.T) {
	err := NewInternal(fmt.Errorf("disk full"))
	if err.Code != ErrInternal {
		t.Errorf("Code = %q, want %q", err.Code, ErrInternal)
	}
	if err.Message != "disk full" {
		t.Errorf("Message = %q, want %q", err.Message, "disk full")
	}

	err = NewInternal(nil)
	if err.Message != "internal error" {
		t.Errorf("Message = %q, want %q", err.Message, "internal error")
	}
}

func TestIs(t *testing.T) {
	tests := []struct {
		name string
		err  error
		code ErrorCode
		want bool
	}{
		{"matching code", NewInvalidRequest("x"), ErrInvalidRequest, true},
		{"different code", NewInvalidRequest("x"), ErrFetchFailed, false},
		{"wrapped", fmt.Errorf("outer: %w", NewFetchInProgress()), ErrFetchInProgress, true},
		{"plain error", fmt.Errorf("boom"), ErrInternal, false},
		{"nil", nil, ErrInternal, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Is(tt.err, tt.code); got != tt.want {
				t.Errorf("Is() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestAs(t *testing.T) {
	orig := NewFetchFailed("https://a", fmt.Errorf("timeout"))
	if got := As(orig); got != orig {
		t.Errorf("As() should return the same LinkError")
	}

	got := As(fmt.Errorf("boom"))
	if got.Code != ErrInternal {
		t.Errorf("As(plain).Code = %q, want %q", got.Code, ErrInternal)
	}
}

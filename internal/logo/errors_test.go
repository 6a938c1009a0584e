package logo

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
)

// TestHTTPError_Error verifies error message formatting
func TestHTTPError_Error(t *testing.T) {
	err := &HTTPError{URL: "https://example.test/x.png", StatusCode: 404, Status: "404 Not Found"}

	expected := "404 Not Found for url: https://example.test/x.png"
	if err.Error() != expected {
		t.Errorf("Error() = %q, want %q", err.Error(), expected)
	}
}

// TestPageError_Unwrap verifies error chain traversal
func TestPageError_Unwrap(t *testing.T) {
	cause := &HTTPError{URL: "u", StatusCode: http.StatusInternalServerError, Status: "500 Internal Server Error"}
	err := &PageError{Country: "england", Page: 2, Err: cause}

	wrapped := fmt.Errorf("context: %w", err)
	if !errors.Is(wrapped, cause) {
		t.Error("errors.Is() should find cause in wrapped chain")
	}

	if !IsStatus(wrapped, http.StatusInternalServerError) {
		t.Error("IsStatus() should see the wrapped HTTPError")
	}

	if IsStatus(wrapped, http.StatusNotFound) {
		t.Error("IsStatus() matched the wrong status")
	}
}

// TestRateLimitError_As verifies programmatic error type detection
func TestRateLimitError_As(t *testing.T) {
	wrapped := fmt.Errorf("png: %w", &RateLimitError{URL: "u", Attempts: 3})

	var target *RateLimitError
	if !errors.As(wrapped, &target) {
		t.Fatal("errors.As() should extract RateLimitError from wrapped chain")
	}

	if target.Attempts != 3 {
		t.Errorf("Attempts = %d, want 3", target.Attempts)
	}
}

package logo

import (
	"errors"
	"fmt"
)

// ErrNoVector is returned when a team page does not publish an SVG logo.
// Many teams legitimately have none, so callers treat it as low severity.
var ErrNoVector = errors.New("no svg available")

// HTTPError represents a non-success response from the catalogue or its asset hosts.
type HTTPError struct {
	URL        string // Requested URL
	StatusCode int    // HTTP status code returned
	Status     string // Status line text, e.g. "404 Not Found"
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("%s for url: %s", e.Status, e.URL)
}

// RateLimitError is returned once every allowed attempt was answered with 429.
type RateLimitError struct {
	URL      string
	Attempts int
}

func (e *RateLimitError) Error() string {
	return fmt.Sprintf("too many requests (429) after %d attempts: %s", e.Attempts, e.URL)
}

// PageError wraps a failure while paginating a country listing.
type PageError struct {
	Country string // Country display name
	Page    int    // 1-based page number
	Err     error  // Underlying error
}

func (e *PageError) Error() string {
	return fmt.Sprintf("error fetching page %d for %s: %v", e.Page, e.Country, e.Err)
}

func (e *PageError) Unwrap() error {
	return e.Err
}

// IsStatus reports whether err carries an HTTPError with the given status code.
func IsStatus(err error, code int) bool {
	var httpErr *HTTPError
	if errors.As(err, &httpErr) {
		return httpErr.StatusCode == code
	}

	return false
}

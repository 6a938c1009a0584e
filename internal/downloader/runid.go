package downloader

import "github.com/google/uuid"

// NewRunID returns a unique identifier for one downloader invocation. It tags
// log lines and journal records.
func NewRunID() string {
	return uuid.NewString()
}

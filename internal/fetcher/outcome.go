package fetcher

import "github.com/italolelis/football_logos/internal/logo"

// Result classifies how a single variant fetch ended.
type Result string

const (
	ResultDownloaded  Result = "downloaded"
	ResultSkipped     Result = "skipped"
	ResultFailed      Result = "failed"
	ResultRateLimited Result = "rate_limited"
	ResultNoVector    Result = "no_vector"
)

// Outcome is the result of fetching one variant of one asset. It is owned by
// the goroutine that produced it until handed to the dispatcher.
type Outcome struct {
	Variant logo.Variant
	Result  Result
	Path    string
	Detail  string // human-readable line for the console report
	Err     error
}

// Success reports whether the file is present on disk after the fetch.
func (o Outcome) Success() bool {
	return o.Result == ResultDownloaded || o.Result == ResultSkipped
}

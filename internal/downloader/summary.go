package downloader

import (
	"github.com/italolelis/football_logos/internal/fetcher"
	"github.com/italolelis/football_logos/internal/logo"
)

// Counts tallies outcomes for one variant.
type Counts struct {
	New     int
	Skipped int
	Failed  int
}

// Summary is the aggregate of a run. It is only mutated by the dispatcher.
type Summary struct {
	RunID     string
	OutputDir string
	Total     int // assets discovered
	Processed int // assets whose fetches completed
	PNG       Counts
	SVG       Counts
}

// Add classifies an outcome. Missing vectors and exhausted rate limits both
// count as failures.
func (s *Summary) Add(o fetcher.Outcome) {
	c := &s.PNG
	if o.Variant == logo.SVG {
		c = &s.SVG
	}

	switch o.Result {
	case fetcher.ResultDownloaded:
		c.New++
	case fetcher.ResultSkipped:
		c.Skipped++
	default:
		c.Failed++
	}
}

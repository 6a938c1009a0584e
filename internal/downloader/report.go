package downloader

import (
	"fmt"
	"io"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/italolelis/football_logos/internal/catalogue"
	"github.com/italolelis/football_logos/internal/fetcher"
	"github.com/italolelis/football_logos/internal/logo"
	"github.com/italolelis/football_logos/internal/storage"
)

const progressEvery = 50

var (
	ruleHeavy = strings.Repeat("=", 50)
	ruleLight = strings.Repeat("-", 50)
)

// Reporter writes the human-facing run report. Structured logs go elsewhere.
type Reporter struct {
	w      io.Writer
	format logo.Format
	size   int
}

func NewReporter(w io.Writer, format logo.Format, size int) *Reporter {
	return &Reporter{w: w, format: format, size: size}
}

func (r *Reporter) printf(format string, args ...any) {
	fmt.Fprintf(r.w, format, args...)
}

func (r *Reporter) FetchingCountries() {
	r.printf("Fetching country list...\n")
}

func (r *Reporter) CountriesResolved(n int) {
	r.printf("Found %d countries\n", n)
}

func (r *Reporter) UnknownCountry(slug string) {
	r.printf("Country '%s' not found.\n", slug)
	r.printf("Use --list-countries to see available options.\n")
}

func (r *Reporter) ScanStart(n int) {
	r.printf("\nScanning %d countries for logos...\n", n)
	r.printf("%s\n", ruleHeavy)
}

func (r *Reporter) ScanCountry(i, n int, c logo.Country) {
	r.printf("[%d/%d] %s (%s)... ", i, n, c.Name, c.Slug)
}

func (r *Reporter) ScanResult(found int, err error) {
	r.printf("found %d logos\n", found)

	if err != nil {
		r.printf("  Error: %v\n", err)
	}
}

func (r *Reporter) ScanDone(total int) {
	r.printf("%s\n", ruleHeavy)
	r.printf("Total logos found: %d\n", total)
}

func (r *Reporter) NothingToDownload() {
	r.printf("No logos found to download.\n")
}

func (r *Reporter) ManifestSaved(path string) {
	r.printf("\nSaved metadata to %s\n", path)
}

func (r *Reporter) DownloadStart(total int) {
	var desc string

	switch r.format {
	case logo.FormatBoth:
		desc = fmt.Sprintf("PNG (%dx%d) + SVG", r.size, r.size)
	case logo.FormatPNG:
		desc = fmt.Sprintf("PNG (%dx%d)", r.size, r.size)
	default:
		desc = "SVG"
	}

	r.printf("\nDownloading %d logos (%s)...\n", total, desc)
	r.printf("%s\n", ruleLight)
}

// Outcome prints failures as they arrive. Missing vectors are common and
// stay quiet.
func (r *Reporter) Outcome(o fetcher.Outcome) {
	switch o.Result {
	case fetcher.ResultFailed, fetcher.ResultRateLimited:
		r.printf("  ✗ %s\n", o.Detail)
	}
}

// Progress prints every 50 assets and at the last one.
func (r *Reporter) Progress(s Summary) {
	if s.Processed%progressEvery != 0 && s.Processed != s.Total {
		return
	}

	switch r.format {
	case logo.FormatBoth:
		r.printf("  Progress: %d/%d logos | PNG: %d new, %d exist, %d fail | SVG: %d new, %d exist, %d fail\n",
			s.Processed, s.Total,
			s.PNG.New, s.PNG.Skipped, s.PNG.Failed,
			s.SVG.New, s.SVG.Skipped, s.SVG.Failed)
	case logo.FormatPNG:
		r.printf("  Progress: %d/%d | %d new, %d exist, %d failed\n",
			s.Processed, s.Total, s.PNG.New, s.PNG.Skipped, s.PNG.Failed)
	default:
		r.printf("  Progress: %d/%d | %d new, %d exist, %d failed\n",
			s.Processed, s.Total, s.SVG.New, s.SVG.Skipped, s.SVG.Failed)
	}
}

func (r *Reporter) Complete(s Summary, outputDir, absOutputDir string) {
	r.printf("%s\n", ruleLight)
	r.printf("\n✓ Download complete!\n")

	if r.format.Includes(logo.PNG) {
		r.printf("  PNG: %d new, %d existed, %d failed\n", s.PNG.New, s.PNG.Skipped, s.PNG.Failed)
	}

	if r.format.Includes(logo.SVG) {
		r.printf("  SVG: %d new, %d existed, %d failed\n", s.SVG.New, s.SVG.Skipped, s.SVG.Failed)
	}

	r.printf("\n  Output directory: %s\n", absOutputDir)
	r.printf("  Structure: %s/[country]/png/ and %s/[country]/svg/\n", outputDir, outputDir)
}

// NotificationText renders the summary sent to the webhook.
func (r *Reporter) NotificationText(s Summary, absOutputDir string) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Football logos download complete (%d logos)\n", s.Total)

	if r.format.Includes(logo.PNG) {
		fmt.Fprintf(&b, "PNG: %d new, %d existed, %d failed\n", s.PNG.New, s.PNG.Skipped, s.PNG.Failed)
	}

	if r.format.Includes(logo.SVG) {
		fmt.Fprintf(&b, "SVG: %d new, %d existed, %d failed\n", s.SVG.New, s.SVG.Skipped, s.SVG.Failed)
	}

	fmt.Fprintf(&b, "Output: %s", absOutputDir)

	return b.String()
}

// PrintCountryTable lists the built-in country table, as shown by
// --list-countries.
func PrintCountryTable(w io.Writer, countries []catalogue.KnownCountry) {
	total := 0

	fmt.Fprintf(w, "\nAvailable countries/categories:\n")
	fmt.Fprintf(w, "%s\n", ruleLight)

	for _, c := range countries {
		fmt.Fprintf(w, "  %-25s %-30s (%d logos)\n", c.Slug, c.Name, c.Count)

		total += c.Count
	}

	fmt.Fprintf(w, "%s\n", ruleLight)
	fmt.Fprintf(w, "Total: %s logos across %d categories\n", humanize.Comma(int64(total)), len(countries))
}

// PrintHistory renders journaled runs, newest first.
func PrintHistory(w io.Writer, runs []storage.RunSummary) {
	if len(runs) == 0 {
		fmt.Fprintf(w, "No runs recorded.\n")

		return
	}

	for _, run := range runs {
		fmt.Fprintf(w, "%s  started %s (%s), %d fetches\n",
			run.RunID,
			run.StartedAt.Local().Format("2006-01-02 15:04:05"),
			humanize.Time(run.StartedAt),
			run.Total)
		fmt.Fprintf(w, "  downloaded: %d, skipped: %d, failed: %d, rate_limited: %d, no_vector: %d\n",
			run.Counts[string(fetcher.ResultDownloaded)],
			run.Counts[string(fetcher.ResultSkipped)],
			run.Counts[string(fetcher.ResultFailed)],
			run.Counts[string(fetcher.ResultRateLimited)],
			run.Counts[string(fetcher.ResultNoVector)])
	}
}

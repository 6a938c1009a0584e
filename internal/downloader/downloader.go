// Package downloader drives a full run: discover countries and their logos,
// persist the manifest, then fetch every asset on a bounded worker pool while
// a single dispatcher aggregates and reports the outcomes.
package downloader

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/italolelis/football_logos/internal/catalogue"
	"github.com/italolelis/football_logos/internal/fetcher"
	"github.com/italolelis/football_logos/internal/logctx"
	"github.com/italolelis/football_logos/internal/logo"
	"github.com/italolelis/football_logos/internal/manifest"
	"github.com/italolelis/football_logos/internal/notifier"
	"github.com/italolelis/football_logos/internal/site"
	"github.com/italolelis/football_logos/internal/storage"
	"github.com/italolelis/football_logos/internal/telemetry"
	"golang.org/x/sync/errgroup"
)

const (
	dirPerm = 0755
)

// Catalogue discovers countries and the assets listed under them.
type Catalogue interface {
	ResolveCountries(ctx context.Context) (catalogue.Countries, error)
	EnumerateAssets(ctx context.Context, country logo.Country) ([]logo.Asset, error)
}

// Fetcher downloads every requested variant of one asset.
type Fetcher interface {
	FetchAll(ctx context.Context, asset logo.Asset, format logo.Format) []fetcher.Outcome
}

type Options struct {
	OutputDir string
	Format    logo.Format
	Size      int
	Country   string // optional slug filter
	Workers   int
	Delay     time.Duration // pause between country listings
	RunID     string        // generated when empty
}

type Downloader struct {
	catalogue Catalogue
	fetcher   Fetcher
	journal   storage.JournalWriteRepository
	notifier  notifier.Notifier
	telemetry *telemetry.Telemetry
	report    *Reporter
	opts      Options
}

type assetResult struct {
	asset    logo.Asset
	outcomes []fetcher.Outcome
}

// NewDownloader wires a run. journal and n may be nil to disable journaling
// and notifications.
func NewDownloader(
	cat Catalogue,
	f Fetcher,
	journal storage.JournalWriteRepository,
	n notifier.Notifier,
	tel *telemetry.Telemetry,
	out io.Writer,
	opts Options,
) *Downloader {
	if journal == nil {
		journal = storage.NoopJournal{}
	}

	if opts.Workers < 1 {
		opts.Workers = 1
	}

	if opts.RunID == "" {
		opts.RunID = NewRunID()
	}

	return &Downloader{
		catalogue: cat,
		fetcher:   f,
		journal:   journal,
		notifier:  n,
		telemetry: tel,
		report:    NewReporter(out, opts.Format, opts.Size),
		opts:      opts,
	}
}

// RunID identifies this run in logs and the journal.
func (d *Downloader) RunID() string {
	return d.opts.RunID
}

// Run executes the whole sequence. An unknown country filter returns an
// error wrapping catalogue.ErrUnknownCountry. Individual fetch failures never
// fail the run; they are reported and counted. When ctx is cancelled during
// downloads, the outcomes gathered so far are still summarised and the
// context error is returned.
func (d *Downloader) Run(ctx context.Context) (Summary, error) {
	ctx = logctx.WithRunID(ctx, d.opts.RunID)
	logger := logctx.LoggerFromContext(ctx)

	summary := Summary{RunID: d.opts.RunID, OutputDir: d.opts.OutputDir}

	d.report.FetchingCountries()

	countries, err := d.catalogue.ResolveCountries(ctx)
	if err != nil {
		return summary, fmt.Errorf("failed to resolve countries: %w", err)
	}

	d.report.CountriesResolved(len(countries))

	if d.opts.Country != "" {
		countries, err = countries.Filter(d.opts.Country)
		if err != nil {
			d.report.UnknownCountry(d.opts.Country)

			return summary, err
		}
	}

	if err := os.MkdirAll(d.opts.OutputDir, dirPerm); err != nil {
		return summary, fmt.Errorf("failed to create output directory: %w", err)
	}

	assets, err := d.scan(ctx, countries)
	if err != nil {
		return summary, err
	}

	summary.Total = len(assets)

	if len(assets) == 0 {
		d.report.NothingToDownload()

		return summary, nil
	}

	path, err := manifest.Write(d.opts.OutputDir, manifest.New(countries.Slugs(), assets, d.opts.Format, d.opts.Size))
	if err != nil {
		return summary, err
	}

	d.report.ManifestSaved(path)

	logger.Info("starting downloads",
		"assets", len(assets),
		"expected_fetches", len(assets)*len(d.opts.Format.Variants()),
		"workers", d.opts.Workers)

	d.report.DownloadStart(len(assets))

	results := make(chan assetResult)

	go d.fetchAll(ctx, assets, results)

	d.dispatch(ctx, results, &summary)

	abs, err := filepath.Abs(d.opts.OutputDir)
	if err != nil {
		abs = d.opts.OutputDir
	}

	d.report.Complete(summary, d.opts.OutputDir, abs)

	d.notify(ctx, summary, abs)

	logger.Info("run finished",
		"processed", summary.Processed,
		"png_new", summary.PNG.New, "png_skipped", summary.PNG.Skipped, "png_failed", summary.PNG.Failed,
		"svg_new", summary.SVG.New, "svg_skipped", summary.SVG.Skipped, "svg_failed", summary.SVG.Failed)

	if err := ctx.Err(); err != nil {
		return summary, fmt.Errorf("run interrupted: %w", err)
	}

	return summary, nil
}

// scan enumerates countries sequentially in slug order. A failing country
// keeps whatever was collected before the error.
func (d *Downloader) scan(ctx context.Context, countries catalogue.Countries) ([]logo.Asset, error) {
	logger := logctx.LoggerFromContext(ctx)
	sorted := countries.Sorted()

	d.report.ScanStart(len(sorted))

	var all []logo.Asset

	for i, country := range sorted {
		d.report.ScanCountry(i+1, len(sorted), country)

		var found []logo.Asset

		err := d.telemetry.InstrumentOperation(ctx, "enumerate_country", "downloader", func(ctx context.Context) error {
			var err error

			found, err = d.catalogue.EnumerateAssets(ctx, country)

			return err
		})
		if err != nil {
			logger.Warn("country enumeration stopped early", "country", country.Slug, "found", len(found), "err", err)
		}

		d.report.ScanResult(len(found), err)
		d.telemetry.RecordLogosFound(ctx, len(found))

		all = append(all, found...)

		if err := site.Sleep(ctx, d.opts.Delay); err != nil {
			return nil, fmt.Errorf("scan interrupted: %w", err)
		}
	}

	d.report.ScanDone(len(all))

	return all, nil
}

// fetchAll runs one unit of work per asset on the bounded pool and closes
// results once every submitted unit finished. Units never return errors, so
// a failing asset cannot cancel its siblings.
func (d *Downloader) fetchAll(ctx context.Context, assets []logo.Asset, results chan<- assetResult) {
	var g errgroup.Group

	g.SetLimit(d.opts.Workers)

	for _, asset := range assets {
		if ctx.Err() != nil {
			break
		}

		g.Go(func() error {
			results <- assetResult{asset: asset, outcomes: d.fetcher.FetchAll(ctx, asset, d.opts.Format)}

			return nil
		})
	}

	_ = g.Wait()

	close(results)
}

// dispatch is the only place counters, journal writes and console output
// happen during downloads.
func (d *Downloader) dispatch(ctx context.Context, results <-chan assetResult, summary *Summary) {
	logger := logctx.LoggerFromContext(ctx)

	for res := range results {
		summary.Processed++

		for _, o := range res.outcomes {
			summary.Add(o)
			d.report.Outcome(o)

			rec := storage.FetchRecord{
				RunID:       d.opts.RunID,
				CountrySlug: res.asset.CountrySlug,
				TeamSlug:    res.asset.TeamSlug,
				Variant:     string(o.Variant),
				Result:      string(o.Result),
				Path:        o.Path,
				Detail:      o.Detail,
				RecordedAt:  time.Now(),
			}

			// journaling must survive a cancelled run
			if err := d.journal.RecordFetch(context.WithoutCancel(ctx), rec); err != nil {
				logger.Warn("failed to journal fetch outcome", "team", res.asset.TeamSlug, "err", err)
			}
		}

		d.report.Progress(*summary)
	}
}

func (d *Downloader) notify(ctx context.Context, summary Summary, absOutputDir string) {
	if d.notifier == nil {
		return
	}

	logger := logctx.LoggerFromContext(ctx)

	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 10*time.Second)
	defer cancel()

	if err := d.notifier.Notify(ctx, d.report.NotificationText(summary, absOutputDir)); err != nil {
		logger.Warn("failed to send notification", "err", err)
	}
}

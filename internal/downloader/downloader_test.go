package downloader

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/italolelis/football_logos/internal/catalogue"
	"github.com/italolelis/football_logos/internal/fetcher"
	"github.com/italolelis/football_logos/internal/logo"
	"github.com/italolelis/football_logos/internal/manifest"
	"github.com/italolelis/football_logos/internal/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeCatalogue struct {
	countries catalogue.Countries
	assets    map[string][]logo.Asset
	errs      map[string]error
	order     []string
}

func (c *fakeCatalogue) ResolveCountries(context.Context) (catalogue.Countries, error) {
	return c.countries, nil
}

func (c *fakeCatalogue) EnumerateAssets(_ context.Context, country logo.Country) ([]logo.Asset, error) {
	c.order = append(c.order, country.Slug)

	return c.assets[country.Slug], c.errs[country.Slug]
}

type fakeFetcher struct {
	mu      sync.Mutex
	calls   int
	results func(logo.Asset, logo.Variant) fetcher.Result
}

func (f *fakeFetcher) FetchAll(_ context.Context, asset logo.Asset, format logo.Format) []fetcher.Outcome {
	f.mu.Lock()
	f.calls++
	f.mu.Unlock()

	var outs []fetcher.Outcome

	for _, v := range format.Variants() {
		r := fetcher.ResultDownloaded
		if f.results != nil {
			r = f.results(asset, v)
		}

		outs = append(outs, fetcher.Outcome{
			Variant: v,
			Result:  r,
			Detail:  fmt.Sprintf("%s %s %s", r, v.Label(), asset.TeamName),
		})
	}

	return outs
}

type recordingJournal struct {
	records []storage.FetchRecord
}

func (j *recordingJournal) RecordFetch(_ context.Context, rec storage.FetchRecord) error {
	j.records = append(j.records, rec)

	return nil
}

type recordingNotifier struct {
	messages []string
}

func (n *recordingNotifier) Notify(_ context.Context, content string) error {
	n.messages = append(n.messages, content)

	return nil
}

func makeAssets(country string, n int) []logo.Asset {
	assets := make([]logo.Asset, n)
	for i := range assets {
		slug := fmt.Sprintf("team-%d", i)
		assets[i] = logo.Asset{
			TeamName:    fmt.Sprintf("Team %d", i),
			TeamSlug:    slug,
			BaseName:    slug,
			PNGHash:     "abc",
			CountrySlug: country,
		}
	}

	return assets
}

func TestRun_FullSequence(t *testing.T) {
	out := t.TempDir()

	cat := &fakeCatalogue{
		countries: catalogue.Countries{"sweden": "Sweden", "england": "England"},
		assets: map[string][]logo.Asset{
			"england": makeAssets("england", 2),
			"sweden":  makeAssets("sweden", 1),
		},
	}

	f := &fakeFetcher{results: func(a logo.Asset, v logo.Variant) fetcher.Result {
		switch {
		case v == logo.SVG && a.TeamSlug == "team-1":
			return fetcher.ResultNoVector
		case v == logo.PNG && a.CountrySlug == "sweden":
			return fetcher.ResultFailed
		case v == logo.PNG && a.TeamSlug == "team-0":
			return fetcher.ResultSkipped
		}

		return fetcher.ResultDownloaded
	}}

	journal := &recordingJournal{}
	n := &recordingNotifier{}

	var console bytes.Buffer

	d := NewDownloader(cat, f, journal, n, nil, &console, Options{
		OutputDir: out,
		Format:    logo.FormatBoth,
		Size:      512,
		Workers:   2,
		RunID:     "run-1",
	})

	summary, err := d.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []string{"england", "sweden"}, cat.order, "countries scanned in slug order")
	assert.Equal(t, 3, f.calls)
	assert.Equal(t, 3, summary.Total)
	assert.Equal(t, 3, summary.Processed)
	assert.Equal(t, Counts{New: 1, Skipped: 1, Failed: 1}, summary.PNG)
	assert.Equal(t, Counts{New: 2, Skipped: 0, Failed: 1}, summary.SVG)

	require.Len(t, journal.records, 6)
	for _, rec := range journal.records {
		assert.Equal(t, "run-1", rec.RunID)
	}

	m, err := manifest.Read(filepath.Join(out, manifest.FileName))
	require.NoError(t, err)
	assert.Equal(t, 3, m.TotalLogos)
	assert.ElementsMatch(t, []string{"england", "sweden"}, m.Countries)
	assert.Equal(t, manifest.Settings{Format: logo.FormatBoth, Size: 512}, m.Settings)

	text := console.String()
	assert.Contains(t, text, "[1/2] England (england)... found 2 logos")
	assert.Contains(t, text, "[2/2] Sweden (sweden)... found 1 logos")
	assert.Contains(t, text, "Total logos found: 3")
	assert.Contains(t, text, "Downloading 3 logos (PNG (512x512) + SVG)...")
	assert.Contains(t, text, "  ✗ failed PNG Team 0")
	assert.NotContains(t, text, "no_vector", "missing vectors are not printed")
	assert.Contains(t, text, "  Progress: 3/3 logos | PNG: 1 new, 1 exist, 1 fail | SVG: 2 new, 0 exist, 1 fail")
	assert.Contains(t, text, "  PNG: 1 new, 1 existed, 1 failed")
	assert.Contains(t, text, "  SVG: 2 new, 0 existed, 1 failed")

	require.Len(t, n.messages, 1)
	assert.Contains(t, n.messages[0], "PNG: 1 new, 1 existed, 1 failed")
}

func TestRun_UnknownCountry(t *testing.T) {
	cat := &fakeCatalogue{countries: catalogue.Countries{"sweden": "Sweden"}}

	var console bytes.Buffer

	d := NewDownloader(cat, &fakeFetcher{}, nil, nil, nil, &console, Options{
		OutputDir: t.TempDir(),
		Format:    logo.FormatPNG,
		Size:      256,
		Country:   "atlantis",
	})

	_, err := d.Run(context.Background())
	require.ErrorIs(t, err, catalogue.ErrUnknownCountry)
	assert.Contains(t, console.String(), "Country 'atlantis' not found.")
	assert.Contains(t, console.String(), "--list-countries")
}

func TestRun_CountryFilterAndEmptyResult(t *testing.T) {
	out := filepath.Join(t.TempDir(), "nested", "out")

	cat := &fakeCatalogue{countries: catalogue.Countries{"sweden": "Sweden", "england": "England"}}
	f := &fakeFetcher{}

	var console bytes.Buffer

	d := NewDownloader(cat, f, nil, nil, nil, &console, Options{
		OutputDir: out,
		Format:    logo.FormatSVG,
		Size:      512,
		Country:   "sweden",
	})

	summary, err := d.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []string{"sweden"}, cat.order)
	assert.Zero(t, summary.Total)
	assert.Zero(t, f.calls)
	assert.Contains(t, console.String(), "No logos found to download.")
	assert.DirExists(t, out)
	assert.NoFileExists(t, filepath.Join(out, manifest.FileName))
}

func TestRun_PageErrorKeepsPartialResults(t *testing.T) {
	cat := &fakeCatalogue{
		countries: catalogue.Countries{"england": "England"},
		assets:    map[string][]logo.Asset{"england": makeAssets("england", 2)},
		errs:      map[string]error{"england": &logo.PageError{Country: "England", Page: 2, Err: errors.New("boom")}},
	}
	f := &fakeFetcher{}

	var console bytes.Buffer

	d := NewDownloader(cat, f, nil, nil, nil, &console, Options{
		OutputDir: t.TempDir(),
		Format:    logo.FormatPNG,
		Size:      64,
	})

	summary, err := d.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, summary.Total)
	assert.Equal(t, 2, summary.PNG.New)
	assert.Contains(t, console.String(), "error fetching page 2 for England")
}

func TestRun_ProgressEveryFifty(t *testing.T) {
	cat := &fakeCatalogue{
		countries: catalogue.Countries{"england": "England"},
		assets:    map[string][]logo.Asset{"england": makeAssets("england", 120)},
	}

	var console bytes.Buffer

	d := NewDownloader(cat, &fakeFetcher{}, nil, nil, nil, &console, Options{
		OutputDir: t.TempDir(),
		Format:    logo.FormatPNG,
		Size:      128,
		Workers:   5,
	})

	_, err := d.Run(context.Background())
	require.NoError(t, err)

	var lines []string
	for _, l := range strings.Split(console.String(), "\n") {
		if strings.HasPrefix(l, "  Progress:") {
			lines = append(lines, l)
		}
	}

	assert.Equal(t, []string{
		"  Progress: 50/120 | 50 new, 0 exist, 0 failed",
		"  Progress: 100/120 | 100 new, 0 exist, 0 failed",
		"  Progress: 120/120 | 120 new, 0 exist, 0 failed",
	}, lines)
}

func TestRun_CancelledBeforeDownloads(t *testing.T) {
	cat := &fakeCatalogue{
		countries: catalogue.Countries{"england": "England"},
		assets:    map[string][]logo.Asset{"england": makeAssets("england", 3)},
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var console bytes.Buffer

	d := NewDownloader(cat, &fakeFetcher{}, nil, nil, nil, &console, Options{
		OutputDir: t.TempDir(),
		Format:    logo.FormatPNG,
		Size:      128,
	})

	_, err := d.Run(ctx)
	require.ErrorIs(t, err, context.Canceled)
}

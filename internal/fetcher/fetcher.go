// Package fetcher downloads individual logo files with bounded retries on
// rate limiting. A file that already exists on disk is never requested again,
// which is what makes interrupted runs resumable.
package fetcher

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/italolelis/football_logos/internal/fetcher/progress"
	"github.com/italolelis/football_logos/internal/logctx"
	"github.com/italolelis/football_logos/internal/logo"
	"github.com/italolelis/football_logos/internal/site"
	"github.com/italolelis/football_logos/internal/telemetry"
)

const (
	DefaultAssetsBaseURL = "https://assets.football-logos.cc/logos"
	DefaultVectorBaseURL = "https://images.football-logos.cc"

	DefaultMaxAttempts  = 3
	DefaultBackoffBase  = 2 * time.Second
	DefaultFetchTimeout = 30 * time.Second

	progressInterval = 256 * 1024
	partSuffix       = ".part"
	filePerm         = 0o644
)

// VectorResolver looks up the SVG hash for an asset whose listing did not
// carry one. An empty string means no vector is published.
type VectorResolver interface {
	ResolveVectorHash(ctx context.Context, asset logo.Asset) string
}

type Options struct {
	Root          string
	Size          int
	MaxAttempts   int
	BackoffBase   time.Duration
	Timeout       time.Duration
	Delay         time.Duration // politeness pause after each variant in FetchAll
	AssetsBaseURL string
	VectorBaseURL string
}

// Fetcher is safe for concurrent use; each call owns only its outcome.
type Fetcher struct {
	client    *site.Client
	vectors   VectorResolver
	telemetry *telemetry.Telemetry
	opts      Options

	backoff func(ctx context.Context, d time.Duration) error
}

func New(client *site.Client, vectors VectorResolver, tel *telemetry.Telemetry, opts Options) *Fetcher {
	if opts.MaxAttempts <= 0 {
		opts.MaxAttempts = DefaultMaxAttempts
	}

	if opts.BackoffBase <= 0 {
		opts.BackoffBase = DefaultBackoffBase
	}

	if opts.Timeout <= 0 {
		opts.Timeout = DefaultFetchTimeout
	}

	if opts.AssetsBaseURL == "" {
		opts.AssetsBaseURL = DefaultAssetsBaseURL
	}

	if opts.VectorBaseURL == "" {
		opts.VectorBaseURL = DefaultVectorBaseURL
	}

	opts.AssetsBaseURL = strings.TrimRight(opts.AssetsBaseURL, "/")
	opts.VectorBaseURL = strings.TrimRight(opts.VectorBaseURL, "/")

	return &Fetcher{client: client, vectors: vectors, telemetry: tel, opts: opts, backoff: site.Sleep}
}

// Path returns the deterministic destination of a variant under the root.
func (f *Fetcher) Path(asset logo.Asset, variant logo.Variant) string {
	name := logo.SanitizeFilename(asset.TeamName)
	if name == "" {
		name = asset.TeamSlug
	}

	return filepath.Join(
		f.opts.Root,
		logo.SanitizeFilename(asset.CountrySlug),
		string(variant),
		name+"."+variant.Ext(),
	)
}

// RasterURL returns the PNG URL for the configured size.
func (f *Fetcher) RasterURL(asset logo.Asset) string {
	return fmt.Sprintf("%s/%s/%dx%d/%s.%s.png",
		f.opts.AssetsBaseURL, asset.CountrySlug, f.opts.Size, f.opts.Size, asset.BaseName, asset.PNGHash)
}

// VectorURL returns the SVG URL for the given hash.
func (f *Fetcher) VectorURL(asset logo.Asset, hash string) string {
	return fmt.Sprintf("%s/%s/%s.%s.svg", f.opts.VectorBaseURL, asset.CountrySlug, asset.BaseName, hash)
}

// FetchAll fetches every variant the format includes, PNG first, pausing for
// the configured delay after each one.
func (f *Fetcher) FetchAll(ctx context.Context, asset logo.Asset, format logo.Format) []Outcome {
	variants := format.Variants()
	outcomes := make([]Outcome, 0, len(variants))

	f.telemetry.IncrementActiveFetches(ctx)
	defer f.telemetry.DecrementActiveFetches(ctx)

	for _, v := range variants {
		outcomes = append(outcomes, f.Fetch(ctx, asset, v))

		if err := site.Sleep(ctx, f.opts.Delay); err != nil {
			break
		}
	}

	return outcomes
}

// Fetch downloads a single variant, skipping the network when the
// destination already exists.
func (f *Fetcher) Fetch(ctx context.Context, asset logo.Asset, variant logo.Variant) Outcome {
	start := time.Now()

	var out Outcome

	_ = f.telemetry.InstrumentOperation(ctx, "fetch_"+string(variant), "fetcher", func(ctx context.Context) error {
		out = f.fetch(ctx, asset, variant)

		if out.Result == ResultFailed || out.Result == ResultRateLimited {
			return out.Err
		}

		return nil
	})

	f.telemetry.RecordFetch(ctx, string(variant), string(out.Result), time.Since(start))

	return out
}

func (f *Fetcher) fetch(ctx context.Context, asset logo.Asset, variant logo.Variant) Outcome {
	logger := logctx.LoggerFromContext(ctx).With("team", asset.TeamSlug, "variant", variant)
	path := f.Path(asset, variant)

	if _, err := os.Stat(path); err == nil {
		logger.Debug("logo already present", "path", path)

		return Outcome{
			Variant: variant,
			Result:  ResultSkipped,
			Path:    path,
			Detail:  "Skipped (exists): " + path,
		}
	}

	var url string

	switch variant {
	case logo.PNG:
		url = f.RasterURL(asset)
	case logo.SVG:
		hash := asset.VectorHash()
		if hash == "" && f.vectors != nil {
			hash = f.vectors.ResolveVectorHash(ctx, asset)
		}

		if hash == "" {
			return Outcome{
				Variant: variant,
				Result:  ResultNoVector,
				Path:    path,
				Detail:  "No SVG available for " + asset.TeamName,
				Err:     logo.ErrNoVector,
			}
		}

		url = f.VectorURL(asset, hash)
	default:
		return f.failure(variant, asset, path, fmt.Errorf("unknown variant %q", variant))
	}

	for attempt := 0; attempt < f.opts.MaxAttempts; attempt++ {
		resp, cancel, err := f.client.Get(ctx, url, f.opts.Timeout)
		if err != nil {
			return f.failure(variant, asset, path, err)
		}

		if resp.StatusCode == http.StatusTooManyRequests {
			_, _ = io.Copy(io.Discard, resp.Body)
			resp.Body.Close()
			cancel()

			if attempt < f.opts.MaxAttempts-1 {
				wait := f.opts.BackoffBase << attempt

				logger.Debug("rate limited, backing off", "attempt", attempt+1, "wait", wait)
				f.telemetry.RecordRetry(ctx, string(variant))

				if err := f.backoff(ctx, wait); err != nil {
					return f.failure(variant, asset, path, err)
				}

				continue
			}

			return Outcome{
				Variant: variant,
				Result:  ResultRateLimited,
				Path:    path,
				Detail:  fmt.Sprintf("Rate limited %s %s: Too Many Requests (429)", variant.Label(), asset.TeamName),
				Err:     &logo.RateLimitError{URL: url, Attempts: f.opts.MaxAttempts},
			}
		}

		if resp.StatusCode < 200 || resp.StatusCode > 299 {
			resp.Body.Close()
			cancel()

			return f.failure(variant, asset, path, &logo.HTTPError{URL: url, StatusCode: resp.StatusCode, Status: resp.Status})
		}

		n, err := f.write(ctx, resp, path, variant)

		resp.Body.Close()
		cancel()

		if err != nil {
			return f.failure(variant, asset, path, err)
		}

		logger.Debug("logo downloaded", "path", path, "size", humanize.Bytes(uint64(n)))

		return Outcome{
			Variant: variant,
			Result:  ResultDownloaded,
			Path:    path,
			Detail:  "Downloaded: " + path,
		}
	}

	// only reached when MaxAttempts was forced to zero after New
	return f.failure(variant, asset, path, errors.New("no attempts allowed"))
}

func (f *Fetcher) failure(variant logo.Variant, asset logo.Asset, path string, err error) Outcome {
	return Outcome{
		Variant: variant,
		Result:  ResultFailed,
		Path:    path,
		Detail:  fmt.Sprintf("Failed %s %s: %v", variant.Label(), asset.TeamName, err),
		Err:     err,
	}
}

// write streams the body into a uniquely named sibling .part file and renames
// it into place so a crash never leaves a truncated file under the final name.
func (f *Fetcher) write(ctx context.Context, resp *http.Response, path string, variant logo.Variant) (int64, error) {
	logger := logctx.LoggerFromContext(ctx)

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return 0, fmt.Errorf("failed to create directory: %w", err)
	}

	// distinct teams can sanitize to the same name, so each writer gets its own part file
	file, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".*"+partSuffix)
	if err != nil {
		return 0, fmt.Errorf("failed to create file: %w", err)
	}

	tmp := file.Name()

	if err := file.Chmod(filePerm); err != nil {
		file.Close()
		os.Remove(tmp)

		return 0, fmt.Errorf("failed to set file mode: %w", err)
	}

	pr := progress.NewReader(resp.Body, resp.ContentLength, progressInterval, func(read, total int64) {
		if total > 0 {
			logger.Debug("download progress",
				"path", path,
				"read", humanize.Bytes(uint64(read)),
				"total", humanize.Bytes(uint64(total)),
				"percent", humanize.FtoaWithDigits(float64(read)*100/float64(total), 2))
		}
	})

	n, err := io.Copy(file, pr)
	if cerr := file.Close(); err == nil {
		err = cerr
	}

	if err != nil {
		os.Remove(tmp)

		return 0, fmt.Errorf("failed to write file: %w", err)
	}

	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)

		return 0, fmt.Errorf("failed to move file into place: %w", err)
	}

	f.telemetry.RecordBytes(ctx, string(variant), n)

	return n, nil
}

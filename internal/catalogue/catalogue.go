// Package catalogue scrapes the country listings and team pages of the logo
// catalogue.
package catalogue

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"
	"unicode"

	"github.com/PuerkitoBio/goquery"
	"github.com/italolelis/football_logos/internal/logctx"
	"github.com/italolelis/football_logos/internal/site"
	"github.com/italolelis/football_logos/internal/telemetry"
)

const (
	DefaultBaseURL        = "https://football-logos.cc"
	DefaultListingTimeout = 15 * time.Second
	DefaultPageDelay      = 300 * time.Millisecond
)

var (
	countryHrefRe = regexp.MustCompile(`^/[a-z-]+/$`)
	flagEmojiRe   = regexp.MustCompile(`[\x{1F1E0}-\x{1F1FF}\x{1F3F4}\x{E0020}-\x{E007F}]+`)
	digitsRe      = regexp.MustCompile(`\d+`)

	nonCountryPaths = map[string]bool{
		"/":             true,
		"/all/":         true,
		"/collections/": true,
		"/map/":         true,
		"/new/":         true,
		"/countries/":   true,
	}
)

// Options configures a Catalogue.
type Options struct {
	BaseURL        string
	ListingTimeout time.Duration // root listing and team pages
	PageTimeout    time.Duration // country listing pages
	PageDelay      time.Duration // pause between listing pages, zero for none
}

// Catalogue discovers countries and logos by scraping the catalogue's HTML.
type Catalogue struct {
	client    *site.Client
	telemetry *telemetry.Telemetry
	opts      Options
}

func New(client *site.Client, tel *telemetry.Telemetry, opts Options) *Catalogue {
	if opts.BaseURL == "" {
		opts.BaseURL = DefaultBaseURL
	}

	if opts.ListingTimeout <= 0 {
		opts.ListingTimeout = DefaultListingTimeout
	}

	if opts.PageTimeout <= 0 {
		opts.PageTimeout = DefaultListingTimeout
	}

	opts.BaseURL = strings.TrimRight(opts.BaseURL, "/")

	return &Catalogue{client: client, telemetry: tel, opts: opts}
}

// ResolveCountries scrapes the root listing for country links. When the
// listing cannot be fetched or contains no countries, the built-in table is
// returned instead. An error is only returned if the built-in table is unusable.
func (c *Catalogue) ResolveCountries(ctx context.Context) (Countries, error) {
	logger := logctx.LoggerFromContext(ctx)

	countries, err := c.scrapeCountries(ctx)
	if err != nil {
		logger.WarnContext(ctx, "could not fetch country list from website", "url", c.opts.BaseURL, "err", err)
	} else if len(countries) > 0 {
		logger.InfoContext(ctx, "found countries from website", "country_count", len(countries))

		return countries, nil
	}

	fallback, err := fallbackCountries()
	if err != nil {
		return nil, err
	}

	logger.InfoContext(ctx, "using pre-populated country list", "country_count", len(fallback))

	return fallback, nil
}

func (c *Catalogue) scrapeCountries(ctx context.Context) (Countries, error) {
	doc, err := c.client.GetDocument(ctx, c.opts.BaseURL+"/", c.opts.ListingTimeout)
	if err != nil {
		return nil, err
	}

	countries := make(Countries)

	doc.Find("a[href]").Each(func(_ int, link *goquery.Selection) {
		href, _ := link.Attr("href")
		if !countryHrefRe.MatchString(href) || nonCountryPaths[href] {
			return
		}

		slug := strings.Trim(href, "/")
		if _, seen := countries[slug]; seen {
			return
		}

		if name := cleanCountryName(link.Text()); name != "" {
			countries[slug] = name
		}
	})

	return countries, nil
}

// cleanCountryName drops flag emoji and logo counts from a country link label.
func cleanCountryName(text string) string {
	text = flagEmojiRe.ReplaceAllString(text, "")
	text = digitsRe.ReplaceAllString(text, "")

	return strings.Join(strings.Fields(text), " ")
}

// titleFromSlug turns "west-ham-united" into "West Ham United". A letter is
// upper-cased when it follows a non-letter and lower-cased otherwise.
func titleFromSlug(slug string) string {
	var b strings.Builder

	prevLetter := false

	for _, r := range strings.ReplaceAll(slug, "-", " ") {
		if unicode.IsLetter(r) {
			if prevLetter {
				r = unicode.ToLower(r)
			} else {
				r = unicode.ToUpper(r)
			}

			prevLetter = true
		} else {
			prevLetter = false
		}

		b.WriteRune(r)
	}

	return b.String()
}

func (c *Catalogue) pageURL(country string, page int) string {
	if page == 1 {
		return fmt.Sprintf("%s/%s/", c.opts.BaseURL, country)
	}

	return fmt.Sprintf("%s/%s/page/%d/", c.opts.BaseURL, country, page)
}

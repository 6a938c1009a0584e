package catalogue

import (
	"context"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/italolelis/football_logos/internal/logctx"
	"github.com/italolelis/football_logos/internal/logo"
)

// ResolveVectorHash looks up the SVG content hash on the team's detail page.
// It returns "" when the page has no SVG link or cannot be fetched; errors are
// logged and never returned.
func (c *Catalogue) ResolveVectorHash(ctx context.Context, asset logo.Asset) string {
	logger := logctx.LoggerFromContext(ctx).With("country", asset.CountrySlug, "team", asset.TeamSlug)

	doc, err := c.client.GetDocument(ctx, asset.TeamURL, c.opts.ListingTimeout)
	if err != nil {
		logger.DebugContext(ctx, "failed to fetch team page", "url", asset.TeamURL, "err", err)

		return ""
	}

	svgRe := regexp.MustCompile(regexp.QuoteMeta(asset.CountrySlug) + `/([^/]+)\.([a-f0-9]+)\.svg`)

	var hash string

	doc.Find("a[href]").EachWithBreak(func(_ int, link *goquery.Selection) bool {
		href, _ := link.Attr("href")
		if !strings.Contains(href, ".svg") {
			return true
		}

		if m := svgRe.FindStringSubmatch(href); m != nil {
			hash = m[2]

			return false
		}

		return true
	})

	return hash
}

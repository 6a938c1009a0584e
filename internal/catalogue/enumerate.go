package catalogue

import (
	"context"
	"net/http"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/italolelis/football_logos/internal/logctx"
	"github.com/italolelis/football_logos/internal/logo"
	"github.com/italolelis/football_logos/internal/site"
)

// EnumerateAssets walks the paginated listing of one country and returns every
// logo found. Pagination stops at the first 404 or at the first page that adds
// no new team. Any other failure stops the walk early: the assets collected so
// far are returned together with a *logo.PageError.
func (c *Catalogue) EnumerateAssets(ctx context.Context, country logo.Country) ([]logo.Asset, error) {
	logger := logctx.LoggerFromContext(ctx).With("country", country.Slug)

	teamHrefRe := regexp.MustCompile(`^/` + regexp.QuoteMeta(country.Slug) + `/[a-z0-9-]+/$`)
	pngSrcRe := regexp.MustCompile(regexp.QuoteMeta(country.Slug) + `/\d+x\d+/([^/]+)\.([a-f0-9]+)\.png`)

	var assets []logo.Asset

	seen := make(map[string]struct{})

	for page := 1; ; page++ {
		url := c.pageURL(country.Slug, page)

		doc, err := c.client.GetDocument(ctx, url, c.opts.PageTimeout)
		if err != nil {
			if logo.IsStatus(err, http.StatusNotFound) {
				c.telemetry.RecordPageFetch(ctx, "not_found")
				logger.DebugContext(ctx, "listing exhausted", "page", page)

				break
			}

			c.telemetry.RecordPageFetch(ctx, "error")

			return assets, &logo.PageError{Country: country.Name, Page: page, Err: err}
		}

		c.telemetry.RecordPageFetch(ctx, "ok")

		added := 0

		doc.Find("a[href]").Each(func(_ int, link *goquery.Selection) {
			href, _ := link.Attr("href")
			if !teamHrefRe.MatchString(href) {
				return
			}

			segments := strings.Split(strings.Trim(href, "/"), "/")
			teamSlug := segments[len(segments)-1]

			src, ok := link.Find("img").First().Attr("src")
			if !ok || src == "" {
				return
			}

			m := pngSrcRe.FindStringSubmatch(src)
			if m == nil {
				return
			}

			if _, dup := seen[teamSlug]; dup {
				return
			}

			seen[teamSlug] = struct{}{}
			added++

			assets = append(assets, logo.Asset{
				TeamName:    teamName(link, teamSlug),
				TeamSlug:    teamSlug,
				BaseName:    m[1],
				PNGHash:     m[2],
				CountrySlug: country.Slug,
				TeamURL:     c.opts.BaseURL + href,
			})
		})

		logger.DebugContext(ctx, "listing page scanned", "page", page, "new_logos", added)

		if added == 0 {
			break
		}

		if err := site.Sleep(ctx, c.opts.PageDelay); err != nil {
			return assets, &logo.PageError{Country: country.Name, Page: page + 1, Err: err}
		}
	}

	return assets, nil
}

func teamName(link *goquery.Selection, slug string) string {
	if h3 := link.Find("h3").First(); h3.Length() > 0 {
		return strings.TrimSpace(h3.Text())
	}

	return titleFromSlug(slug)
}

package catalogue

import (
	"errors"
	"fmt"
	"slices"

	"github.com/italolelis/football_logos/internal/logo"
)

// ErrUnknownCountry is returned when a country filter matches no known slug.
var ErrUnknownCountry = errors.New("country not found")

// Countries maps a country slug to its display name.
type Countries map[string]string

// Sorted returns the countries ordered by slug.
func (c Countries) Sorted() []logo.Country {
	slugs := make([]string, 0, len(c))
	for slug := range c {
		slugs = append(slugs, slug)
	}

	slices.Sort(slugs)

	out := make([]logo.Country, 0, len(slugs))
	for _, slug := range slugs {
		out = append(out, logo.Country{Slug: slug, Name: c[slug]})
	}

	return out
}

// Slugs returns the country slugs ordered by slug.
func (c Countries) Slugs() []string {
	sorted := c.Sorted()

	slugs := make([]string, len(sorted))
	for i, country := range sorted {
		slugs[i] = country.Slug
	}

	return slugs
}

// Filter narrows the mapping to a single slug.
func (c Countries) Filter(slug string) (Countries, error) {
	name, ok := c[slug]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownCountry, slug)
	}

	return Countries{slug: name}, nil
}

package catalogue

import (
	_ "embed"
	"fmt"
	"slices"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
)

//go:embed countries.yaml
var countriesYAML []byte

// KnownCountry is an entry of the built-in fallback table.
type KnownCountry struct {
	Slug  string `yaml:"slug"`
	Name  string `yaml:"name"`
	Count int    `yaml:"count"`
}

var loadKnownCountries = sync.OnceValues(func() ([]KnownCountry, error) {
	var known []KnownCountry
	if err := yaml.Unmarshal(countriesYAML, &known); err != nil {
		return nil, fmt.Errorf("failed to parse embedded country table: %w", err)
	}

	return known, nil
})

// KnownCountries returns a copy of the fallback table in its declared order.
// The table is parsed once per process and never mutated afterwards.
func KnownCountries() ([]KnownCountry, error) {
	known, err := loadKnownCountries()
	if err != nil {
		return nil, err
	}

	return slices.Clone(known), nil
}

// KnownCountriesByName returns the fallback table sorted by display name.
func KnownCountriesByName() ([]KnownCountry, error) {
	known, err := KnownCountries()
	if err != nil {
		return nil, err
	}

	slices.SortStableFunc(known, func(a, b KnownCountry) int {
		return strings.Compare(a.Name, b.Name)
	})

	return known, nil
}

func fallbackCountries() (Countries, error) {
	known, err := KnownCountries()
	if err != nil {
		return nil, err
	}

	countries := make(Countries, len(known))
	for _, k := range known {
		countries[k.Slug] = k.Name
	}

	return countries, nil
}

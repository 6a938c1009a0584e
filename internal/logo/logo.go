package logo

import (
	"fmt"
	"strings"
)

// Variant is one of the two image formats published for a logo.
type Variant string

const (
	PNG Variant = "png"
	SVG Variant = "svg"
)

// Ext returns the file extension for the variant, without the dot.
func (v Variant) Ext() string {
	return string(v)
}

// Label returns the upper-case name used in console messages.
func (v Variant) Label() string {
	return strings.ToUpper(string(v))
}

// Format is the user-facing selection of variants to download.
type Format string

const (
	FormatPNG  Format = "png"
	FormatSVG  Format = "svg"
	FormatBoth Format = "both"
)

// ParseFormat validates a format string.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(s)); f {
	case FormatPNG, FormatSVG, FormatBoth:
		return f, nil
	}

	return "", fmt.Errorf("invalid format %q: must be one of png, svg, both", s)
}

// Variants lists the variants requested by the format, in download order.
func (f Format) Variants() []Variant {
	switch f {
	case FormatPNG:
		return []Variant{PNG}
	case FormatSVG:
		return []Variant{SVG}
	default:
		return []Variant{PNG, SVG}
	}
}

// Includes reports whether the variant is requested by the format.
func (f Format) Includes(v Variant) bool {
	for _, fv := range f.Variants() {
		if fv == v {
			return true
		}
	}

	return false
}

// ValidSizes are the PNG edge lengths published by the catalogue.
var ValidSizes = []int{64, 128, 256, 512, 700, 1500, 3000}

// ValidateSize checks that size is one of ValidSizes.
func ValidateSize(size int) error {
	for _, s := range ValidSizes {
		if s == size {
			return nil
		}
	}

	return fmt.Errorf("invalid size %d: must be one of %v", size, ValidSizes)
}

// Country is a catalogue section, keyed by slug.
type Country struct {
	Slug string
	Name string
}

// Asset describes one team logo discovered on a country listing. The JSON
// names are the manifest's wire format.
type Asset struct {
	TeamName    string  `json:"team_name"`
	TeamSlug    string  `json:"team_slug"`
	BaseName    string  `json:"base_name"`
	PNGHash     string  `json:"png_hash"`
	SVGHash     *string `json:"svg_hash"`
	CountrySlug string  `json:"country_slug"`
	TeamURL     string  `json:"team_url"`
}

// VectorHash returns the SVG content hash, or "" when it has not been resolved.
func (a *Asset) VectorHash() string {
	if a.SVGHash == nil {
		return ""
	}

	return *a.SVGHash
}

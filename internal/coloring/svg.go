package coloring

import (
	"regexp"
	"strings"
)

var (
	viewBoxRe  = regexp.MustCompile(`viewBox="0 0 ([\d.]+) ([\d.]+)"`)
	widthPtRe  = regexp.MustCompile(`width="[\d.]+pt"`)
	heightPtRe = regexp.MustCompile(`height="[\d.]+pt"`)
	doctypeRe  = regexp.MustCompile(`<!DOCTYPE[^>]+>`)
	tracedRe   = regexp.MustCompile(`(<g transform="[^"]+"\s*fill="#000000" stroke="none">)`)
)

const whiteBackground = `<rect width="100%" height="100%" fill="white"/>`

// CleanSVG patches potrace output for printing: point units become unitless
// viewBox dimensions, the DOCTYPE is dropped and a white rectangle is placed
// behind the traced paths.
func CleanSVG(svg string) string {
	width, height := "1000", "1000"

	if m := viewBoxRe.FindStringSubmatch(svg); m != nil {
		width = strings.ReplaceAll(m[1], ".000000", "")
		height = strings.ReplaceAll(m[2], ".000000", "")
	}

	svg = widthPtRe.ReplaceAllLiteralString(svg, `width="`+width+`"`)
	svg = heightPtRe.ReplaceAllLiteralString(svg, `height="`+height+`"`)
	svg = doctypeRe.ReplaceAllLiteralString(svg, "")
	svg = tracedRe.ReplaceAllString(svg, whiteBackground+"${1}")

	return svg
}

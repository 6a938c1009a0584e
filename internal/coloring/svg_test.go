package coloring

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

const potraceOutput = `<?xml version="1.0" standalone="no"?>
<!DOCTYPE svg PUBLIC "-//W3C//DTD SVG 20010904//EN"
 "http://www.w3.org/TR/2001/REC-SVG-20010904/DTD/svg10.dtd">
<svg version="1.0" xmlns="http://www.w3.org/2000/svg"
 width="1060.000000pt" height="860.000000pt" viewBox="0 0 1060.000000 860.000000"
 preserveAspectRatio="xMidYMid meet">
<g transform="translate(0.000000,860.000000) scale(0.100000,-0.100000)"
fill="#000000" stroke="none">
<path d="M10 10 l20 0"/>
</g>
</svg>
`

func TestCleanSVG(t *testing.T) {
	out := CleanSVG(potraceOutput)

	assert.NotContains(t, out, "<!DOCTYPE")
	assert.Contains(t, out, `width="1060" height="860"`)
	assert.NotContains(t, out, `pt"`)
	assert.Contains(t, out, `<rect width="100%" height="100%" fill="white"/><g transform="translate(0.000000,860.000000)`)
	assert.Equal(t, 1, strings.Count(out, "<rect"))
}

func TestCleanSVG_NoViewBoxDefaultsTo1000(t *testing.T) {
	out := CleanSVG(`<svg width="12.5pt" height="3pt"></svg>`)

	assert.Equal(t, `<svg width="1000" height="1000"></svg>`, out)
}

func TestCleanSVG_FractionalDimensionsKept(t *testing.T) {
	out := CleanSVG(`<svg width="10.5pt" height="20pt" viewBox="0 0 10.500000 20.000000"></svg>`)

	assert.Contains(t, out, `width="10.500000"`)
	assert.Contains(t, out, `height="20"`)
}

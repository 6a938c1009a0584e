// Package coloring turns a colored logo into black-and-white line art for
// coloring pages. Raster work is delegated to ImageMagick, vector work to
// Inkscape and potrace.
package coloring

import (
	"context"
	"errors"
	"fmt"
	"image"
	_ "image/gif" // decoders for every raster format ImageMagick is handed
	_ "image/jpeg"
	_ "image/png"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/italolelis/football_logos/internal/logctx"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/webp"
)

// Options tunes the conversion. Zero values are not defaults; start from
// DefaultOptions.
type Options struct {
	Padding   int     // white border in pixels
	CannyLow  int     // 0-255
	CannyHigh int     // 0-255
	Dilate    int     // square kernel size, 0 disables
	TurdSize  int     // potrace speck removal
	AlphaMax  float64 // potrace corner threshold
	Width     int     // rasterization width for SVG input
}

func DefaultOptions() Options {
	return Options{
		Padding:   30,
		CannyLow:  50,
		CannyHigh: 150,
		Dilate:    2,
		TurdSize:  5,
		AlphaMax:  0.8,
		Width:     1000,
	}
}

// Result describes the files produced by a conversion.
type Result struct {
	SVGPath     string
	PreviewPath string // empty when the preview could not be rendered
	Width       int    // source raster width
	Height      int
}

// Converter runs the pipeline. Intermediates live in a fixed directory that
// every run overwrites, so concurrent conversions must use distinct
// converters with distinct temp dirs.
type Converter struct {
	runner  Runner
	tools   Tools
	tempDir string
	out     io.Writer
}

// NewConverter creates a converter. Progress lines are written to out.
func NewConverter(runner Runner, tools Tools, tempDir string, out io.Writer) *Converter {
	if tempDir == "" {
		tempDir = filepath.Join(os.TempDir(), "coloring_page")
	}

	if out == nil {
		out = io.Discard
	}

	return &Converter{runner: runner, tools: tools, tempDir: tempDir, out: out}
}

func (c *Converter) tmp(name string) string {
	return filepath.Join(c.tempDir, name)
}

// Convert turns input (SVG or raster) into a coloring page SVG at output,
// plus a best-effort PNG preview next to it.
func (c *Converter) Convert(ctx context.Context, input, output string, opts Options) (Result, error) {
	logger := logctx.LoggerFromContext(ctx)

	var res Result

	if err := os.MkdirAll(c.tempDir, 0o755); err != nil {
		return res, fmt.Errorf("failed to create temp directory: %w", err)
	}

	raster := input

	if strings.EqualFold(filepath.Ext(input), ".svg") {
		fmt.Fprintln(c.out, "Converting SVG to PNG...")

		raster = c.tmp("input.png")
		if err := c.produce(ctx, StepRasterize, raster, c.tools.Inkscape,
			input,
			"--export-type=png",
			"--export-filename="+raster,
			"--export-width="+strconv.Itoa(opts.Width),
			"--export-background=white",
		); err != nil {
			return res, err
		}
	}

	fmt.Fprintln(c.out, "Loading image...")

	w, h, err := imageSize(raster)
	if err != nil {
		return res, &StepError{Step: StepLoad, Err: err}
	}

	res.Width, res.Height = w, h

	fmt.Fprintf(c.out, "  Image size: %dx%d\n", w, h)
	fmt.Fprintf(c.out, "Adding %dpx padding...\n", opts.Padding)

	blurred := c.tmp("blurred.png")
	if err := c.produce(ctx, StepBlur, blurred, c.tools.Magick,
		raster,
		"-bordercolor", "white", "-border", strconv.Itoa(opts.Padding),
		"-background", "white", "-alpha", "remove", "-alpha", "off",
		"-colorspace", "Gray",
		"-gaussian-blur", "1x0.8",
		blurred,
	); err != nil {
		return res, err
	}

	fmt.Fprintf(c.out, "Detecting edges (Canny %d-%d)...\n", opts.CannyLow, opts.CannyHigh)

	edges := c.tmp("edges.png")
	if err := c.produce(ctx, StepEdges, edges, c.tools.Magick,
		blurred,
		"-canny", cannyArg(opts.CannyLow, opts.CannyHigh),
		edges,
	); err != nil {
		return res, err
	}

	if opts.Dilate > 0 {
		dilated := c.tmp("dilated.png")
		kernel := fmt.Sprintf("Rectangle:%dx%d", opts.Dilate, opts.Dilate)

		if err := c.produce(ctx, StepDilate, dilated, c.tools.Magick,
			edges, "-morphology", "Dilate", kernel, dilated,
		); err != nil {
			return res, err
		}

		edges = dilated
	}

	inverted := c.tmp("inverted.png")
	if err := c.produce(ctx, StepInvert, inverted, c.tools.Magick, edges, "-negate", inverted); err != nil {
		return res, err
	}

	pbm := c.tmp("edges.pbm")
	if err := c.produce(ctx, StepThreshold, pbm, c.tools.Magick, inverted, "-threshold", "50%", pbm); err != nil {
		return res, err
	}

	alpha := strconv.FormatFloat(opts.AlphaMax, 'g', -1, 64)
	fmt.Fprintf(c.out, "Tracing to vector (turdsize=%d, alphamax=%s)...\n", opts.TurdSize, alpha)

	traced := c.tmp("traced.svg")
	if err := c.produce(ctx, StepTrace, traced, c.tools.Potrace,
		pbm, "-s", "-o", traced, "--flat",
		"--turdsize="+strconv.Itoa(opts.TurdSize),
		"--alphamax="+alpha,
	); err != nil {
		return res, err
	}

	fmt.Fprintln(c.out, "Cleaning up SVG...")

	if err := writeCleaned(traced, output); err != nil {
		return res, &StepError{Step: StepCleanup, Err: err}
	}

	res.SVGPath = output
	fmt.Fprintf(c.out, "✓ Created: %s\n", output)

	preview := strings.TrimSuffix(output, filepath.Ext(output)) + ".png"
	if err := c.produce(ctx, StepPreview, preview, c.tools.Inkscape,
		output,
		"--export-type=png",
		"--export-filename="+preview,
		"--export-width="+strconv.Itoa(w+2*opts.Padding),
	); err != nil {
		logger.Warn("failed to render preview", "path", preview, "err", err)

		return res, nil
	}

	res.PreviewPath = preview
	fmt.Fprintf(c.out, "✓ Created: %s\n", preview)

	return res, nil
}

// produce runs a tool and treats the step as failed unless want exists
// afterwards. Some tools exit zero without writing anything.
func (c *Converter) produce(ctx context.Context, step Step, want, name string, args ...string) error {
	logger := logctx.LoggerFromContext(ctx)

	// a stale intermediate from a previous run must not mask a failure
	if err := os.Remove(want); err != nil && !errors.Is(err, os.ErrNotExist) {
		return &StepError{Step: step, Err: err}
	}

	logger.Debug("running pipeline step", "step", step, "tool", name, "args", args)

	if _, err := c.runner.Run(ctx, name, args...); err != nil {
		return &StepError{Step: step, Err: err}
	}

	if _, err := os.Stat(want); err != nil {
		return &StepError{Step: step, Err: fmt.Errorf("%s did not produce %s", name, want)}
	}

	return nil
}

// cannyArg converts 0-255 thresholds to ImageMagick's percent form.
func cannyArg(low, high int) string {
	pct := func(v int) string {
		return strconv.FormatFloat(float64(v)/2.55, 'f', 2, 64) + "%"
	}

	return "0x1+" + pct(low) + "+" + pct(high)
}

func imageSize(path string) (int, int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, 0, fmt.Errorf("could not load image %s: %w", path, err)
	}
	defer f.Close()

	cfg, _, err := image.DecodeConfig(f)
	if err != nil {
		return 0, 0, fmt.Errorf("could not load image %s: %w", path, err)
	}

	return cfg.Width, cfg.Height, nil
}

func writeCleaned(traced, output string) error {
	data, err := os.ReadFile(traced)
	if err != nil {
		return err
	}

	if dir := filepath.Dir(output); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}

	return os.WriteFile(output, []byte(CleanSVG(string(data))), 0o644)
}

package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/italolelis/football_logos/internal/coloring"
	"github.com/italolelis/football_logos/internal/config"
	"github.com/italolelis/football_logos/internal/logctx"
)

func main() {
	cfg, err := config.LoadColoringConfig()
	if err != nil {
		slog.Error("config error", "err", err)
		os.Exit(1)
	}

	logger := logctx.NewLogger(os.Stderr, cfg.LogFormat, cfg.SlogLevel())
	slog.SetDefault(logger)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	runner := coloring.ExecRunner{}

	if err := newRootCmd(cfg, runner).ExecuteContext(logctx.WithLogger(ctx, logger)); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)

		cancel()
		os.Exit(1)
	}
}

func newRootCmd(cfg *config.ColoringConfig, runner coloring.Runner) *cobra.Command {
	opts := coloring.DefaultOptions()

	cmd := &cobra.Command{
		Use:   "coloring_page <input> <output>",
		Short: "Convert a logo (SVG or PNG) into black-and-white line art for coloring",
		Example: `  coloring_page logo.svg coloring_page.svg
  coloring_page logo.png coloring_page.svg --padding 50
  coloring_page logo.svg output.svg --canny-low 30 --canny-high 100`,
		Args:          cobra.ExactArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			input, output := args[0], args[1]

			if _, err := os.Stat(input); err != nil {
				if errors.Is(err, fs.ErrNotExist) {
					return fmt.Errorf("input file not found: %s", input)
				}

				return err
			}

			tools := coloring.Tools{
				Inkscape: cfg.InkscapeBin,
				Magick:   coloring.ResolveMagick(cfg.MagickBin),
				Potrace:  cfg.PotraceBin,
			}

			c := coloring.NewConverter(runner, tools, cfg.TempDir, cmd.OutOrStdout())

			_, err := c.Convert(cmd.Context(), input, output, opts)

			return err
		},
	}

	flags := cmd.Flags()
	flags.IntVar(&opts.Padding, "padding", opts.Padding, "white padding around the logo in pixels")
	flags.IntVar(&opts.CannyLow, "canny-low", opts.CannyLow, "edge detection low threshold (0-255)")
	flags.IntVar(&opts.CannyHigh, "canny-high", opts.CannyHigh, "edge detection high threshold (0-255)")
	flags.IntVar(&opts.Dilate, "dilate", opts.Dilate, "edge dilation size, 0 to disable")
	flags.IntVar(&opts.TurdSize, "turdsize", opts.TurdSize, "potrace speck removal size")
	flags.Float64Var(&opts.AlphaMax, "alphamax", opts.AlphaMax, "potrace corner threshold")
	flags.IntVar(&opts.Width, "width", opts.Width, "width for SVG to PNG conversion")

	return cmd
}

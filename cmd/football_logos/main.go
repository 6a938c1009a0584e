package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/italolelis/football_logos/internal/catalogue"
	"github.com/italolelis/football_logos/internal/cleanup"
	"github.com/italolelis/football_logos/internal/config"
	"github.com/italolelis/football_logos/internal/downloader"
	"github.com/italolelis/football_logos/internal/fetcher"
	"github.com/italolelis/football_logos/internal/logctx"
	"github.com/italolelis/football_logos/internal/notifier"
	"github.com/italolelis/football_logos/internal/site"
	"github.com/italolelis/football_logos/internal/storage"
	"github.com/italolelis/football_logos/internal/storage/sqlite"
	"github.com/italolelis/football_logos/internal/telemetry"
)

const serviceName = "football_logos"

var version = "dev"

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		slog.Error("config error", "err", err)
		os.Exit(1)
	}

	logger := logctx.NewLogger(os.Stderr, cfg.LogFormat, cfg.SlogLevel())
	slog.SetDefault(logger)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := newRootCmd(cfg).ExecuteContext(logctx.WithLogger(ctx, logger)); err != nil {
		if !errors.Is(err, catalogue.ErrUnknownCountry) {
			logger.Error("fatal error", "err", err)
		}

		cancel()
		os.Exit(1)
	}
}

func newRootCmd(cfg *config.Config) *cobra.Command {
	var listCountries bool

	root := &cobra.Command{
		Use:           serviceName,
		Short:         "Download football club logos from football-logos.cc",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		Example: `  football_logos                            # all logos, PNG + SVG
  football_logos --country sweden           # only Swedish clubs
  football_logos -c sweden --size 1500      # Swedish clubs at 1500x1500
  football_logos --format png               # PNG only
  football_logos --list-countries           # show available countries`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if listCountries {
				return printCountries(cmd.OutOrStdout())
			}

			if err := cfg.Validate(); err != nil {
				return err
			}

			return run(cmd.Context(), cfg, cmd.OutOrStdout())
		},
	}

	flags := root.Flags()
	flags.StringVarP(&cfg.OutputDir, "output-dir", "o", cfg.OutputDir, "output directory")
	flags.StringVarP(&cfg.Format, "format", "f", cfg.Format, "image format: png, svg or both")
	flags.IntVarP(&cfg.Size, "size", "s", cfg.Size, "PNG size in pixels (64, 128, 256, 512, 700, 1500, 3000)")
	flags.StringVarP(&cfg.Country, "country", "c", cfg.Country, `download only one country, by slug (e.g. "england")`)
	flags.IntVarP(&cfg.Workers, "workers", "w", cfg.Workers, "number of parallel download workers")
	flags.Float64VarP(&cfg.Delay, "delay", "d", cfg.Delay, "delay between requests in seconds")
	flags.BoolVar(&listCountries, "list-countries", false, "list the built-in countries and exit")
	flags.StringVar(&cfg.JournalPath, "journal", cfg.JournalPath, "record fetch outcomes in this SQLite file")
	flags.StringVar(&cfg.MetricsAddr, "metrics-addr", cfg.MetricsAddr, "serve Prometheus metrics on this address during the run")

	root.AddCommand(newHistoryCmd(cfg))

	return root
}

func printCountries(w io.Writer) error {
	countries, err := catalogue.KnownCountriesByName()
	if err != nil {
		return err
	}

	downloader.PrintCountryTable(w, countries)

	return nil
}

func run(ctx context.Context, cfg *config.Config, out io.Writer) error {
	logger := logctx.LoggerFromContext(ctx)

	// =========================================================================
	// Start Telemetry
	tel, err := telemetry.New(ctx, telemetry.Config{
		Enabled:        cfg.MetricsAddr != "" || cfg.OTLPEndpoint != "",
		ServiceName:    serviceName,
		ServiceVersion: version,
		OTLPEndpoint:   cfg.OTLPEndpoint,
	})
	if err != nil {
		return fmt.Errorf("failed to set up telemetry: %w", err)
	}

	if h := tel.LogHandler(); h != nil {
		logger = logctx.NewLogger(os.Stderr, cfg.LogFormat, cfg.SlogLevel(), h)
		ctx = logctx.WithLogger(ctx, logger)
	}

	defer func() {
		ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), cfg.Web.ShutdownTimeout)
		defer cancel()

		if err := tel.Shutdown(ctx); err != nil {
			logger.Error("failed to shutdown telemetry", "err", err)
		}
	}()

	// =========================================================================
	// Start Metrics Server
	if cfg.MetricsAddr != "" {
		server := setupServer(ctx, tel, cfg)

		go func() {
			logger.Info("serving metrics", "host", cfg.MetricsAddr)

			if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Error("metrics server error", "err", err)
			}
		}()

		defer shutdownServer(ctx, server, cfg)
	}

	// =========================================================================
	// Start Cleanup
	if removed, err := cleanup.RemoveStalePartials(ctx, cfg.OutputDir, cfg.StalePartAge); err != nil {
		logger.Warn("failed to remove stale partial files", "err", err)
	} else if removed > 0 {
		logger.Info("removed stale partial files", "count", removed)
	}

	// =========================================================================
	// Start Journal
	var journal storage.JournalWriteRepository

	if cfg.JournalPath != "" {
		database, err := sqlite.InitDB(cfg.JournalPath)
		if err != nil {
			return fmt.Errorf("failed to open journal: %w", err)
		}
		defer database.Close()

		journal = sqlite.NewInstrumentedJournalRepository(database, tel)
	}

	// =========================================================================
	// Start Notification
	var notif notifier.Notifier
	if cfg.DiscordWebhookURL != "" {
		notif = &notifier.DiscordNotifier{WebhookURL: cfg.DiscordWebhookURL}
	}

	// =========================================================================
	// Start Downloader
	client := site.NewClient(cfg.BaseURL+"/", "")

	cat := catalogue.New(client, tel, catalogue.Options{
		BaseURL:   cfg.BaseURL,
		PageDelay: catalogue.DefaultPageDelay,
	})

	f := fetcher.New(client, cat, tel, fetcher.Options{
		Root:        cfg.OutputDir,
		Size:        cfg.Size,
		MaxAttempts: cfg.MaxAttempts,
		BackoffBase: cfg.BackoffBase,
		Delay:       cfg.DelayDuration(),
	})

	d := downloader.NewDownloader(cat, f, journal, notif, tel, out, downloader.Options{
		OutputDir: cfg.OutputDir,
		Format:    cfg.LogoFormat(),
		Size:      cfg.Size,
		Country:   cfg.Country,
		Workers:   cfg.Workers,
		Delay:     cfg.DelayDuration(),
	})

	logger.Info("football logos downloader starting...",
		"run_id", d.RunID(),
		"output_dir", cfg.OutputDir,
		"format", cfg.Format,
		"size", cfg.Size,
		"workers", cfg.Workers,
		"journal", cfg.JournalPath != "",
	)

	_, err = d.Run(ctx)

	return err
}

// setupServer prepares the metrics and health endpoints.
func setupServer(ctx context.Context, tel *telemetry.Telemetry, cfg *config.Config) *http.Server {
	return &http.Server{
		Addr:         cfg.MetricsAddr,
		ReadTimeout:  cfg.Web.ReadTimeout,
		WriteTimeout: cfg.Web.WriteTimeout,
		IdleTimeout:  cfg.Web.IdleTimeout,
		Handler:      tel.Routes(),
		BaseContext: func(net.Listener) context.Context {
			return ctx
		},
	}
}

func shutdownServer(ctx context.Context, server *http.Server, cfg *config.Config) {
	logger := logctx.LoggerFromContext(ctx)

	// Give outstanding scrapes a deadline for completion.
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), cfg.Web.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Error("failed to gracefully shutdown the server", "err", err)

		if err = server.Close(); err != nil {
			logger.Error("could not stop server", "err", err)
		}
	}
}

package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"

	"github.com/italolelis/football_logos/internal/logo"
)

// Config struct for environment variables. Command-line flags override
// these values after loading.
type Config struct {
	OutputDir   string  `envconfig:"OUTPUT_DIR" default:"./football_logos"`
	Format      string  `envconfig:"FORMAT" default:"both"`
	Size        int     `envconfig:"SIZE" default:"512"`
	Country     string  `envconfig:"COUNTRY"`
	Workers     int     `envconfig:"WORKERS" default:"5"`
	Delay       float64 `envconfig:"DELAY" default:"0.5"` // seconds

	BaseURL      string        `envconfig:"BASE_URL" default:"https://football-logos.cc"`
	MaxAttempts  int           `envconfig:"MAX_ATTEMPTS" default:"3"`
	BackoffBase  time.Duration `envconfig:"BACKOFF_BASE" default:"2s"`
	StalePartAge time.Duration `envconfig:"STALE_PART_AGE" default:"1h"`

	JournalPath       string `envconfig:"JOURNAL_PATH"`
	MetricsAddr       string `envconfig:"METRICS_ADDR"`
	DiscordWebhookURL string `envconfig:"DISCORD_WEBHOOK_URL"`
	OTLPEndpoint      string `envconfig:"OTEL_EXPORTER_OTLP_ENDPOINT"`

	LogLevel  string `envconfig:"LOG_LEVEL" default:"INFO"`
	LogFormat string `envconfig:"LOG_FORMAT" default:"json"`

	Web struct {
		ReadTimeout     time.Duration `split_words:"true" default:"30s"`
		WriteTimeout    time.Duration `split_words:"true" default:"30s"`
		IdleTimeout     time.Duration `split_words:"true" default:"5s"`
		ShutdownTimeout time.Duration `split_words:"true" default:"5s"`
	}
}

// ColoringConfig configures the coloring page converter.
type ColoringConfig struct {
	TempDir     string `envconfig:"COLORING_TEMP_DIR"`
	InkscapeBin string `envconfig:"INKSCAPE_BIN" default:"inkscape"`
	MagickBin   string `envconfig:"MAGICK_BIN"` // empty probes for magick, then convert
	PotraceBin  string `envconfig:"POTRACE_BIN" default:"potrace"`
	LogLevel    string `envconfig:"LOG_LEVEL" default:"INFO"`
	LogFormat   string `envconfig:"LOG_FORMAT" default:"text"`
}

// LoadConfig reads environment variables and populates the Config struct.
// A .env file in the working directory is applied first when present.
func LoadConfig() (*Config, error) {
	if err := loadDotEnv(); err != nil {
		return nil, err
	}

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("error processing env: %w", err)
	}

	return &cfg, nil
}

func LoadColoringConfig() (*ColoringConfig, error) {
	if err := loadDotEnv(); err != nil {
		return nil, err
	}

	var cfg ColoringConfig
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("error processing env: %w", err)
	}

	return &cfg, nil
}

func loadDotEnv() error {
	// existing environment variables take precedence over the file
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("error loading .env: %w", err)
	}

	return nil
}

// Validate checks settings that envconfig and flag parsing cannot.
func (c *Config) Validate() error {
	if _, err := logo.ParseFormat(c.Format); err != nil {
		return err
	}

	if err := logo.ValidateSize(c.Size); err != nil {
		return err
	}

	if c.Workers < 1 {
		return fmt.Errorf("workers must be at least 1, got %d", c.Workers)
	}

	if c.MaxAttempts < 1 {
		return fmt.Errorf("max attempts must be at least 1, got %d", c.MaxAttempts)
	}

	if c.Delay < 0 {
		return fmt.Errorf("delay must not be negative, got %v", c.Delay)
	}

	if c.OutputDir == "" {
		return errors.New("output directory must be set")
	}

	return nil
}

// LogoFormat returns the parsed format. Call Validate first.
func (c *Config) LogoFormat() logo.Format {
	f, _ := logo.ParseFormat(c.Format)

	return f
}

// DelayDuration converts the fractional-second delay.
func (c *Config) DelayDuration() time.Duration {
	return time.Duration(c.Delay * float64(time.Second))
}

func (c *Config) SlogLevel() slog.Level {
	return parseLevel(c.LogLevel)
}

func (c *ColoringConfig) SlogLevel() slog.Level {
	return parseLevel(c.LogLevel)
}

func parseLevel(level string) slog.Level {
	switch strings.ToUpper(level) {
	case "DEBUG":
		return slog.LevelDebug
	case "INFO":
		return slog.LevelInfo
	case "WARN":
		return slog.LevelWarn
	case "ERROR":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// Package config loads runtime settings from flags, environment, an optional
// config.yaml and a .env file.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/alecthomas/kong"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// ErrMissingTMDBKey is returned when no TMDB credential is configured.
var ErrMissingTMDBKey = errors.New("TMDB_API_KEY environment variable is required")

// TMDBConfig holds metadata client settings
type TMDBConfig struct {
	APIKey       string
	BaseURL      string
	ImageBaseURL string
	Language     string
	Region       string
	RateLimit    int
}

// GeminiConfig holds query interpreter settings
type GeminiConfig struct {
	APIKey    string
	BaseURL   string
	Model     string
	RateLimit int
}

// Config is the resolved application configuration
type Config struct {
	Addr                string
	DBPath              string
	LogLevel            slog.Level
	TMDB                TMDBConfig
	Gemini              GeminiConfig
	CacheTTL            time.Duration
	SessionTTL          time.Duration
	SearchLogRetention  time.Duration
	MaintenanceInterval time.Duration
}

// CLI lists the flags accepted on the command line. Unset flags fall back
// to config.yaml, then the environment, then the defaults.
type CLI struct {
	Config     string `help:"Path to a YAML config file" type:"path"`
	Addr       string `help:"HTTP listen address (default :8080)"`
	DB         string `help:"Path to the SQLite database file (default cinefinder.db)"`
	LogLevel   string `help:"Log level: debug, info, warn or error"`
	Region     string `help:"Region used for streaming providers (default ES)"`
	Language   string `help:"Language sent to TMDB (default es-ES)"`
	Model      string `help:"Gemini model used to interpret queries"`
	CacheTTL   string `help:"TMDB response cache time-to-live, 0 disables (default 24h)" name:"cache-ttl"`
	SessionTTL string `help:"Idle time after which a browser session is dropped (default 2h)" name:"session-ttl"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("addr", ":8080")
	v.SetDefault("db", "cinefinder.db")
	v.SetDefault("log_level", "info")

	v.SetDefault("tmdb.base_url", "https://api.themoviedb.org/3")
	v.SetDefault("tmdb.image_base_url", "https://image.tmdb.org/t/p")
	v.SetDefault("tmdb.language", "es-ES")
	v.SetDefault("tmdb.region", "ES")
	v.SetDefault("tmdb.rate_limit", 40)

	v.SetDefault("gemini.base_url", "https://generativelanguage.googleapis.com/v1beta")
	v.SetDefault("gemini.model", "gemini-2.5-flash")
	v.SetDefault("gemini.rate_limit", 5)

	v.SetDefault("cache.ttl", "24h")
	v.SetDefault("session.ttl", "2h")
	v.SetDefault("search_log.retention", "720h") // 30 days, 0 keeps everything
	v.SetDefault("maintenance.interval", "10m")
}

// Load resolves the configuration for the given command-line arguments
// (without the program name).
func Load(args []string) (*Config, error) {
	if err := godotenv.Load(); err != nil {
		slog.Debug("No .env file loaded", "error", err)
	}

	var cli CLI
	parser, err := kong.New(&cli,
		kong.Name("cinefinder"),
		kong.Description("Spanish-language film and series discovery front end."),
		kong.UsageOnError(),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to build flag parser: %w", err)
	}
	if _, err := parser.Parse(args); err != nil {
		return nil, fmt.Errorf("failed to parse flags: %w", err)
	}

	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix("CINEFINDER")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	if err := v.BindEnv("tmdb.api_key", "TMDB_API_KEY"); err != nil {
		return nil, fmt.Errorf("failed to bind TMDB_API_KEY: %w", err)
	}
	if err := v.BindEnv("gemini.api_key", "GEMINI_API_KEY", "API_KEY"); err != nil {
		return nil, fmt.Errorf("failed to bind GEMINI_API_KEY: %w", err)
	}

	if err := readConfigFile(v, cli.Config); err != nil {
		return nil, err
	}

	applyFlags(v, &cli)

	return fromViper(v)
}

func readConfigFile(v *viper.Viper, path string) error {
	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return fmt.Errorf("failed to read config file %s: %w", path, err)
		}
		return nil
	}

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			slog.Debug("No config file found, using defaults and environment")
			return nil
		}
		return fmt.Errorf("failed to read config file: %w", err)
	}
	slog.Debug("Loaded config file", "path", v.ConfigFileUsed())
	return nil
}

func applyFlags(v *viper.Viper, cli *CLI) {
	overrides := map[string]string{
		"addr":          cli.Addr,
		"db":            cli.DB,
		"log_level":     cli.LogLevel,
		"tmdb.region":   cli.Region,
		"tmdb.language": cli.Language,
		"gemini.model":  cli.Model,
		"cache.ttl":     cli.CacheTTL,
		"session.ttl":   cli.SessionTTL,
	}
	for key, value := range overrides {
		if value != "" {
			v.Set(key, value)
		}
	}
}

func fromViper(v *viper.Viper) (*Config, error) {
	cfg := &Config{
		Addr:   v.GetString("addr"),
		DBPath: v.GetString("db"),
		TMDB: TMDBConfig{
			APIKey:       strings.TrimSpace(v.GetString("tmdb.api_key")),
			BaseURL:      v.GetString("tmdb.base_url"),
			ImageBaseURL: v.GetString("tmdb.image_base_url"),
			Language:     v.GetString("tmdb.language"),
			Region:       strings.ToUpper(v.GetString("tmdb.region")),
			RateLimit:    v.GetInt("tmdb.rate_limit"),
		},
		Gemini: GeminiConfig{
			APIKey:    strings.TrimSpace(v.GetString("gemini.api_key")),
			BaseURL:   v.GetString("gemini.base_url"),
			Model:     v.GetString("gemini.model"),
			RateLimit: v.GetInt("gemini.rate_limit"),
		},
	}

	if err := cfg.LogLevel.UnmarshalText([]byte(v.GetString("log_level"))); err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", v.GetString("log_level"), err)
	}

	durations := []struct {
		key    string
		target *time.Duration
	}{
		{"cache.ttl", &cfg.CacheTTL},
		{"session.ttl", &cfg.SessionTTL},
		{"search_log.retention", &cfg.SearchLogRetention},
		{"maintenance.interval", &cfg.MaintenanceInterval},
	}
	for _, d := range durations {
		parsed, err := parseDuration(v.GetString(d.key))
		if err != nil {
			return nil, fmt.Errorf("invalid %s: %w", d.key, err)
		}
		*d.target = parsed
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// parseDuration accepts Go durations and a bare "0".
func parseDuration(raw string) (time.Duration, error) {
	raw = strings.TrimSpace(raw)
	if raw == "0" {
		return 0, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, err
	}
	if d < 0 {
		return 0, fmt.Errorf("negative duration %s", raw)
	}
	return d, nil
}

// Validate checks the settings the server cannot start without.
func (c *Config) Validate() error {
	if c.TMDB.APIKey == "" {
		return ErrMissingTMDBKey
	}
	if c.Addr == "" {
		return errors.New("listen address must not be empty")
	}
	if c.TMDB.RateLimit < 0 || c.Gemini.RateLimit < 0 {
		return errors.New("rate limits must not be negative")
	}
	return nil
}

// GeminiConfigured reports whether query interpretation is available.
func (c *Config) GeminiConfigured() bool {
	return c.Gemini.APIKey != ""
}

package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/MimeLyc/artwork-curator/internal/library"
)

// Config holds all application configuration
// Supports environment variables with sensible defaults
//
// Environment Variables:
// Provider Configuration:
// - TMDB_API_KEY: API key for themoviedb.org (at least one provider key required)
// - FANART_API_KEY: API key for fanart.tv
// - PROVIDER_CONCURRENCY: Parallel provider queries per item (default: 4)
//
// Library Configuration:
// - MOVIE_DIR: Movie directory (default: /movies)
// - SHOW_DIR: Show directory (default: /shows)
// - ANIMATION_DIR: Animation directory (default: /animations)
// - METADATA_LANGUAGE: Default metadata language for sources (default: en)
//
// Refresh Configuration:
// - CRON_EXPR: Schedule for the library-wide refresh (default: 0 3 * * *)
// - REFRESH_WORKERS: Parallel refresh jobs (default: 2)
// - CANDIDATE_CACHE_TTL_MIN: Provider response cache TTL in minutes (default: 15)
// - TEXT_LANG_FALLBACK: Statistical title-language detection fallback (default: false)
//
// System Configuration:
// - DATA_DIR: Directory for the sqlite database (default: /app/data)
// - LOG_LEVEL: Logging level (default: info)
//
// HTTP Configuration:
// - HTTP_ADDR: Listen address (default: :8080)

type Config struct {
	// Provider Configuration
	Providers ProviderConfig `json:"providers"`

	// Library Configuration
	Library LibraryConfig `json:"library"`

	// Refresh Configuration
	Refresh RefreshConfig `json:"refresh"`

	// System Configuration
	System SystemConfig `json:"system"`

	// HTTP Configuration
	HTTP HTTPConfig `json:"http"`
}

// ProviderConfig holds the credentials for the remote artwork sources.
type ProviderConfig struct {
	TMDBAPIKey   string `json:"tmdb_api_key"`
	FanartAPIKey string `json:"fanart_api_key"`
	Concurrency  int    `json:"concurrency"`
}

// LibraryConfig holds the configuration for media directories
type LibraryConfig struct {
	MovieDir         string `json:"movie_dir"`
	ShowDir          string `json:"show_dir"`
	AnimationDir     string `json:"animation_dir"`
	MetadataLanguage string `json:"metadata_language"`
}

// Sources converts the configured directories into scanner sources,
// skipping directories that are not set.
func (c LibraryConfig) Sources() []library.SourceConfig {
	ret := make([]library.SourceConfig, 0)
	if c.MovieDir != "" {
		ret = append(ret, library.SourceConfig{ID: "movies", Name: "Movies", Path: c.MovieDir, MetadataLanguage: c.MetadataLanguage})
	}
	if c.ShowDir != "" {
		ret = append(ret, library.SourceConfig{ID: "shows", Name: "Shows", Path: c.ShowDir, MetadataLanguage: c.MetadataLanguage})
	}
	if c.AnimationDir != "" {
		ret = append(ret, library.SourceConfig{ID: "animations", Name: "Animations", Path: c.AnimationDir, MetadataLanguage: c.MetadataLanguage})
	}
	return ret
}

type RefreshConfig struct {
	CronExpr        string `json:"cron_expr"`
	Workers         int    `json:"workers"`
	CacheTTLMinutes int    `json:"cache_ttl_minutes"`
	TextFallback    bool   `json:"text_fallback"`
}

// SystemConfig holds the system configuration
type SystemConfig struct {
	DataDir  string `json:"data_dir"`
	LogLevel string `json:"log_level"`
}

// HTTPConfig holds the HTTP server configuration
type HTTPConfig struct {
	Addr string `json:"addr"`
}

func (c *Config) DBPath() string {
	return filepath.Join(c.System.DataDir, "curator.db")
}

// Option is a function type for configuring Config
type Option func(*Config)

// NewFromEnv creates a new Config instance with values from environment variables and options
func NewFromEnv(opts ...Option) (*Config, error) {
	config := &Config{
		Providers: ProviderConfig{
			TMDBAPIKey:   getEnvString("TMDB_API_KEY", ""),
			FanartAPIKey: getEnvString("FANART_API_KEY", ""),
			Concurrency:  getEnvInt("PROVIDER_CONCURRENCY", 4),
		},
		Library: LibraryConfig{
			MovieDir:         getEnvString("MOVIE_DIR", "/movies"),
			ShowDir:          getEnvString("SHOW_DIR", "/shows"),
			AnimationDir:     getEnvString("ANIMATION_DIR", "/animations"),
			MetadataLanguage: getEnvString("METADATA_LANGUAGE", "en"),
		},
		Refresh: RefreshConfig{
			CronExpr:        getEnvString("CRON_EXPR", "0 3 * * *"),
			Workers:         getEnvInt("REFRESH_WORKERS", 2),
			CacheTTLMinutes: getEnvInt("CANDIDATE_CACHE_TTL_MIN", 15),
			TextFallback:    getEnvBool("TEXT_LANG_FALLBACK", false),
		},
		System: SystemConfig{
			DataDir:  getEnvString("DATA_DIR", "/app/data"),
			LogLevel: getEnvString("LOG_LEVEL", "info"),
		},
		HTTP: HTTPConfig{
			Addr: getEnvString("HTTP_ADDR", ":8080"),
		},
	}

	// Apply custom options
	for _, opt := range opts {
		opt(config)
	}

	// Validate required configuration
	if err := config.validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// validate checks if all required configuration is properly set
func (c *Config) validate() error {
	if c.Providers.TMDBAPIKey == "" && c.Providers.FanartAPIKey == "" {
		return fmt.Errorf("at least one of TMDB_API_KEY or FANART_API_KEY is required")
	}
	if len(c.Library.Sources()) == 0 {
		return fmt.Errorf("at least one library directory is required")
	}
	return nil
}

// getEnvString gets a string value from environment variables with default
func getEnvString(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvInt gets an integer value from environment variables with default
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

// getEnvBool gets a boolean value from environment variables with default
func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(strings.TrimSpace(value)); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

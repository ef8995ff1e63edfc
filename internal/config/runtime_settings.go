package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/robfig/cron/v3"
	"golang.org/x/text/language"
)

const DefaultRuntimeSettingsFile = "/app/config/settings.json"

// RuntimeSettings is the subset of configuration that can change
// without a restart.
type RuntimeSettings struct {
	TMDBAPIKey       string `json:"tmdb_api_key"`
	FanartAPIKey     string `json:"fanart_api_key"`
	CronExpr         string `json:"cron_expr"`
	MetadataLanguage string `json:"metadata_language"`
}

func RuntimeSettingsFilePath() string {
	return getEnvString("SETTINGS_FILE", DefaultRuntimeSettingsFile)
}

func (s RuntimeSettings) Validate() error {
	if strings.TrimSpace(s.TMDBAPIKey) == "" && strings.TrimSpace(s.FanartAPIKey) == "" {
		return fmt.Errorf("at least one of tmdb_api_key or fanart_api_key is required")
	}
	if strings.TrimSpace(s.CronExpr) == "" {
		return fmt.Errorf("cron_expr is required")
	}
	if _, err := cron.ParseStandard(s.CronExpr); err != nil {
		return fmt.Errorf("invalid cron_expr: %w", err)
	}
	if strings.TrimSpace(s.MetadataLanguage) == "" {
		return fmt.Errorf("metadata_language is required")
	}
	if _, err := language.Parse(s.MetadataLanguage); err != nil {
		return fmt.Errorf("invalid metadata_language: %w", err)
	}
	return nil
}

func (c *Config) RuntimeSettings() RuntimeSettings {
	return RuntimeSettings{
		TMDBAPIKey:       c.Providers.TMDBAPIKey,
		FanartAPIKey:     c.Providers.FanartAPIKey,
		CronExpr:         c.Refresh.CronExpr,
		MetadataLanguage: c.Library.MetadataLanguage,
	}
}

func WithRuntimeSettings(settings RuntimeSettings) Option {
	return func(c *Config) {
		if strings.TrimSpace(settings.TMDBAPIKey) != "" {
			c.Providers.TMDBAPIKey = settings.TMDBAPIKey
		}
		if strings.TrimSpace(settings.FanartAPIKey) != "" {
			c.Providers.FanartAPIKey = settings.FanartAPIKey
		}
		if strings.TrimSpace(settings.CronExpr) != "" {
			c.Refresh.CronExpr = settings.CronExpr
		}
		if _, err := language.Parse(settings.MetadataLanguage); err == nil {
			c.Library.MetadataLanguage = settings.MetadataLanguage
		}
	}
}

func LoadRuntimeSettingsFile(path string) (RuntimeSettings, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return RuntimeSettings{}, err
	}
	var settings RuntimeSettings
	if err := json.Unmarshal(data, &settings); err != nil {
		return RuntimeSettings{}, fmt.Errorf("invalid settings file: %w", err)
	}
	return settings, nil
}

func WriteRuntimeSettingsFile(path string, settings RuntimeSettings) error {
	if err := settings.Validate(); err != nil {
		return err
	}

	dir := filepath.Dir(path)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}

	content, err := json.MarshalIndent(settings, "", "  ")
	if err != nil {
		return err
	}
	content = append(content, '\n')

	tmpPath := path + ".tmp"
	if err := os.WriteFile(tmpPath, content, 0o600); err != nil {
		return err
	}
	return os.Rename(tmpPath, path)
}

type RuntimeSettingsStore struct {
	path string

	mu      sync.RWMutex
	current RuntimeSettings
}

func NewRuntimeSettingsStore(path string, initial RuntimeSettings) (*RuntimeSettingsStore, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("settings file path is required")
	}
	if err := initial.Validate(); err != nil {
		return nil, err
	}
	return &RuntimeSettingsStore{
		path:    path,
		current: initial,
	}, nil
}

func (s *RuntimeSettingsStore) GetRuntimeSettings() (RuntimeSettings, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current, nil
}

func (s *RuntimeSettingsStore) UpdateRuntimeSettings(next RuntimeSettings) (RuntimeSettings, error) {
	if err := next.Validate(); err != nil {
		return RuntimeSettings{}, err
	}
	if err := WriteRuntimeSettingsFile(s.path, next); err != nil {
		return RuntimeSettings{}, err
	}

	s.mu.Lock()
	s.current = next
	s.mu.Unlock()
	return next, nil
}

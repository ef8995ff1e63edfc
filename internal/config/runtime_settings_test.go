package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRuntimeSettings_Validate(t *testing.T) {
	valid := RuntimeSettings{
		TMDBAPIKey:       "tmdb-test",
		CronExpr:         "*/5 * * * *",
		MetadataLanguage: "en",
	}
	require.NoError(t, valid.Validate())

	invalid := valid
	invalid.CronExpr = "bad cron"
	require.Error(t, invalid.Validate())

	invalidLang := valid
	invalidLang.MetadataLanguage = "not-a-language!"
	require.Error(t, invalidLang.Validate())

	noKeys := valid
	noKeys.TMDBAPIKey = ""
	require.Error(t, noKeys.Validate())

	fanartOnly := valid
	fanartOnly.TMDBAPIKey = ""
	fanartOnly.FanartAPIKey = "fanart-test"
	require.NoError(t, fanartOnly.Validate())
}

func TestRuntimeSettingsFile_RoundTrip(t *testing.T) {
	tmp := t.TempDir()
	filePath := filepath.Join(tmp, "settings", "runtime.json")
	input := RuntimeSettings{
		TMDBAPIKey:       "tmdb-test",
		FanartAPIKey:     "fanart-test",
		CronExpr:         "0 0 * * *",
		MetadataLanguage: "ja",
	}

	require.NoError(t, WriteRuntimeSettingsFile(filePath, input))

	got, err := LoadRuntimeSettingsFile(filePath)
	require.NoError(t, err)
	assert.Equal(t, input, got)

	info, err := os.Stat(filePath)
	require.NoError(t, err)
	assert.False(t, info.IsDir())
}

func TestWithRuntimeSettings_OverridesConfig(t *testing.T) {
	t.Setenv("TMDB_API_KEY", "env-key")
	t.Setenv("CRON_EXPR", "0 1 * * *")
	t.Setenv("METADATA_LANGUAGE", "en")

	override := RuntimeSettings{
		TMDBAPIKey:       "file-key",
		FanartAPIKey:     "file-fanart-key",
		CronExpr:         "*/30 * * * *",
		MetadataLanguage: "ja",
	}

	cfg, err := NewFromEnv(WithRuntimeSettings(override))
	require.NoError(t, err)
	assert.Equal(t, override.TMDBAPIKey, cfg.Providers.TMDBAPIKey)
	assert.Equal(t, override.FanartAPIKey, cfg.Providers.FanartAPIKey)
	assert.Equal(t, override.CronExpr, cfg.Refresh.CronExpr)
	assert.Equal(t, "ja", cfg.Library.MetadataLanguage)
}

func TestRuntimeSettingsStore_UpdatePersistsFile(t *testing.T) {
	tmp := t.TempDir()
	filePath := filepath.Join(tmp, "runtime-settings.json")
	initial := RuntimeSettings{
		TMDBAPIKey:       "old-key",
		CronExpr:         "0 0 * * *",
		MetadataLanguage: "en",
	}

	store, err := NewRuntimeSettingsStore(filePath, initial)
	require.NoError(t, err)

	next := RuntimeSettings{
		TMDBAPIKey:       "new-key",
		CronExpr:         "*/10 * * * *",
		MetadataLanguage: "ko",
	}
	got, err := store.UpdateRuntimeSettings(next)
	require.NoError(t, err)
	assert.Equal(t, next, got)

	loaded, err := LoadRuntimeSettingsFile(filePath)
	require.NoError(t, err)
	assert.Equal(t, next, loaded)

	current, err := store.GetRuntimeSettings()
	require.NoError(t, err)
	assert.Equal(t, next, current)
}

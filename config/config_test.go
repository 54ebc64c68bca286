package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitConfig(t *testing.T) {
	t.Setenv("GOOGLE_GEMINI_API_KEY", "gemini-key")
	t.Setenv("GOOGLE_PLACES_API_KEY", "places-key")
	t.Setenv("GOOGLE_MAPS_API_KEY", "")
	t.Setenv("APP_ENV", "production")

	cfg, err := InitConfig()
	require.NoError(t, err)

	assert.Equal(t, "production", cfg.Mode)
	assert.Equal(t, "gemini-key", cfg.Providers.Narrative.GeminiAPIKey)
	assert.Equal(t, "places-key", cfg.Providers.Places.APIKey)
	assert.Empty(t, cfg.Providers.Maps.APIKey)
	assert.Equal(t, "gemini", cfg.Providers.Narrative.Provider)
	assert.Equal(t, "8000", cfg.Server.HTTPPort)
	assert.Equal(t, "9090", cfg.Handlers.Prometheus.Port)

	assert.Equal(t, 12, cfg.Search.DefaultLimit)
	assert.Equal(t, 20, cfg.Search.MaxLimit)
	assert.Equal(t, 20*time.Second, cfg.Search.InfoTimeout)
	assert.Equal(t, 25*time.Second, cfg.Search.EnhanceTimeout)
	assert.Equal(t, 60*time.Minute, cfg.Cache.PlacesTTL)
	assert.Equal(t, 10*time.Minute, cfg.Cache.SuggestTTL)
	assert.False(t, cfg.Search.StrictMode)
}

package config

import (
	"bytes"
	_ "embed"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

//go:embed config.yml
var embeddedConfig []byte

type Config struct {
	Mode     string `mapstructure:"mode"`
	Handlers struct {
		Prometheus struct {
			Port string `mapstructure:"port"`
		} `mapstructure:"prometheus"`
	} `mapstructure:"handlers"`
	Server struct {
		HTTPPort     string        `mapstructure:"HTTPPort"`
		Timeout      time.Duration `mapstructure:"HTTPTimeout"`
		RateLimit    int           `mapstructure:"rateLimit"`
		AllowOrigins []string      `mapstructure:"allowOrigins"`
	} `mapstructure:"server"`
	Providers struct {
		Narrative struct {
			Provider     string `mapstructure:"provider"`
			Model        string `mapstructure:"model"`
			GeminiAPIKey string `mapstructure:"geminiAPIKey"`
			OpenAIAPIKey string `mapstructure:"openaiAPIKey"`
			Workers      int    `mapstructure:"workers"`
		} `mapstructure:"narrative"`
		Places struct {
			APIKey        string        `mapstructure:"apiKey"`
			BaseURL       string        `mapstructure:"baseURL"`
			Timeout       time.Duration `mapstructure:"timeout"`
			DetailWorkers int           `mapstructure:"detailWorkers"`
		} `mapstructure:"places"`
		Maps struct {
			APIKey string `mapstructure:"apiKey"`
		} `mapstructure:"maps"`
	} `mapstructure:"providers"`
	Cache struct {
		DefaultTTL    time.Duration `mapstructure:"defaultTTL"`
		SweepInterval time.Duration `mapstructure:"sweepInterval"`
		SearchTTL     time.Duration `mapstructure:"searchTTL"`
		InfoTTL       time.Duration `mapstructure:"infoTTL"`
		PlacesTTL     time.Duration `mapstructure:"placesTTL"`
		SuggestTTL    time.Duration `mapstructure:"suggestTTL"`
		RedisURL      string        `mapstructure:"redisURL"`
	} `mapstructure:"cache"`
	Search struct {
		DefaultLimit   int           `mapstructure:"defaultLimit"`
		MaxLimit       int           `mapstructure:"maxLimit"`
		InfoTimeout    time.Duration `mapstructure:"infoTimeout"`
		PointsTimeout  time.Duration `mapstructure:"pointsTimeout"`
		EnhanceTimeout time.Duration `mapstructure:"enhanceTimeout"`
		StrictMode     bool          `mapstructure:"strictMode"`
	} `mapstructure:"search"`
}

// credentials are never kept in config.yml.
var envBindings = map[string]string{
	"providers.narrative.geminiAPIKey": "GOOGLE_GEMINI_API_KEY",
	"providers.narrative.openaiAPIKey": "OPENAI_API_KEY",
	"providers.places.apiKey":          "GOOGLE_PLACES_API_KEY",
	"providers.maps.apiKey":            "GOOGLE_MAPS_API_KEY",
	"cache.redisURL":                   "REDIS_URL",
	"mode":                             "APP_ENV",
}

func InitConfig() (Config, error) {
	var config Config
	v := viper.New()

	// Add file-based config paths
	v.AddConfigPath(".")
	v.AddConfigPath("config")
	v.AddConfigPath("/app/config")

	v.SetConfigName("config")
	v.SetConfigType("yml")

	// Try to load file-based config
	err := v.ReadInConfig()
	if err != nil {
		fmt.Printf("Warning: Failed to find file-based config: %s. Falling back to embedded config.\n", err)
		if err = v.ReadConfig(bytes.NewReader(embeddedConfig)); err != nil {
			return Config{}, fmt.Errorf("failed to read embedded config: %w", err)
		}
	}

	if err = bindEnv(v); err != nil {
		return Config{}, err
	}

	// Unmarshal the config into the Config struct
	if err = v.Unmarshal(&config); err != nil {
		return Config{}, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	config.Providers.Narrative.Provider = strings.ToLower(strings.TrimSpace(config.Providers.Narrative.Provider))
	fmt.Println("Successfully loaded app configs...")
	return config, nil
}

func bindEnv(v *viper.Viper) error {
	for key, env := range envBindings {
		if err := v.BindEnv(key, env); err != nil {
			return fmt.Errorf("binding %s to %s: %w", key, env, err)
		}
	}
	return nil
}

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

type ServerConfig struct {
	Port      string `mapstructure:"port"`
	CertFile  string `mapstructure:"certFile"`
	KeyFile   string `mapstructure:"keyFile"`
	EnableTLS bool   `mapstructure:"enableTLS"`
}

// SchedulingConfig overrides the engine's layout tunables. Zero values keep the
// built-in defaults.
type SchedulingConfig struct {
	DayStart               string             `mapstructure:"dayStart"`
	LunchTime              string             `mapstructure:"lunchTime"`
	DinnerTime             string             `mapstructure:"dinnerTime"`
	Durations              map[string]int     `mapstructure:"durations"`
	MealDuration           int                `mapstructure:"mealDuration"`
	BaseFatigue            map[string]float64 `mapstructure:"baseFatigue"`
	RestThreshold          float64            `mapstructure:"restThreshold"`
	RestDuration           int                `mapstructure:"restDuration"`
	BalanceVariance        float64            `mapstructure:"balanceVariance"`
	ArrivalMultiplier      float64            `mapstructure:"arrivalMultiplier"`
	BudgetRatios           map[string]float64 `mapstructure:"budgetRatios"`
	DefaultCosts           map[string]float64 `mapstructure:"defaultCosts"`
	DefaultCurrency        string             `mapstructure:"defaultCurrency"`
	RecommendationRadiusKm float64            `mapstructure:"recommendationRadiusKm"`
	FallbackDays           int                `mapstructure:"fallbackDays"`
	MaxDays                int                `mapstructure:"maxDays"`
}

type ResearchConfig struct {
	// gemini, openai or none
	Provider string `mapstructure:"provider"`
	// memory, postgres, redis or sqlite
	CacheBackend  string        `mapstructure:"cacheBackend"`
	TTL           time.Duration `mapstructure:"ttl"`
	SchemaVersion int           `mapstructure:"schemaVersion"`
	Delay         time.Duration `mapstructure:"delay"`
	Model         string        `mapstructure:"model"`
	EnrichFromWeb bool          `mapstructure:"enrichFromWeb"`
	WikipediaURL  string        `mapstructure:"wikipediaURL"`
	OpenAIBaseURL string        `mapstructure:"openaiBaseURL"`
	GeminiAPIKey  string        `mapstructure:"geminiApiKey"`
	OpenAIAPIKey  string        `mapstructure:"openaiApiKey"`
}

type Config struct {
	Mode     string `mapstructure:"mode"`
	Dotenv   string `mapstructure:"dotenv"`
	Handlers struct {
		ExternalAPI ServerConfig `mapstructure:"externalAPI"`
		Prometheus  ServerConfig `mapstructure:"prometheus"`
	} `mapstructure:"handlers"`
	Repositories struct {
		Postgres struct {
			Host     string `mapstructure:"host"`
			Password string `mapstructure:"password"`
			Port     string `mapstructure:"port"`
			Username string `mapstructure:"username"`
			DB       string `mapstructure:"db"`
			SSLMode  string `mapstructure:"sslMode"`
			MaxConns int32  `mapstructure:"maxConns"`
		} `mapstructure:"postgres"`
		Redis struct {
			Addr     string `mapstructure:"addr"`
			Password string `mapstructure:"password"`
			DB       int    `mapstructure:"db"`
			Prefix   string `mapstructure:"prefix"`
		} `mapstructure:"redis"`
		SQLite struct {
			Path string `mapstructure:"path"`
		} `mapstructure:"sqlite"`
	} `mapstructure:"repositories"`
	Server struct {
		HTTPPort string        `mapstructure:"HTTPPort"`
		Timeout  time.Duration `mapstructure:"HTTPTimeout"`
	} `mapstructure:"server"`
	Research   ResearchConfig   `mapstructure:"research"`
	Scheduling SchedulingConfig `mapstructure:"scheduling"`
	Auth       struct {
		JWTSecret string `mapstructure:"jwtSecret"`
	} `mapstructure:"auth"`
}

// InitConfig reads config.yml from the usual locations, falling back to the
// embedded copy. ITINERARY_* environment variables override file values, e.g.
// ITINERARY_RESEARCH_PROVIDER=openai.
func InitConfig() (Config, error) {
	var config Config
	v := viper.New()

	v.AddConfigPath(".")
	v.AddConfigPath("config")
	v.AddConfigPath("/app/config")
	v.AddConfigPath("/usr/local/bin")

	v.SetConfigName("config")
	v.SetConfigType("yml")

	v.SetEnvPrefix("ITINERARY")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	for key, env := range map[string]string{
		"research.geminiApiKey":          "GOOGLE_GEMINI_API_KEY",
		"research.openaiApiKey":          "OPENAI_API_KEY",
		"auth.jwtSecret":                 "JWT_SECRET_KEY",
		"repositories.postgres.password": "POSTGRES_PASSWORD",
		"repositories.redis.password":    "REDIS_PASSWORD",
	} {
		if err := v.BindEnv(key, "ITINERARY_"+strings.ToUpper(strings.ReplaceAll(key, ".", "_")), env); err != nil {
			return Config{}, fmt.Errorf("failed to bind env for %s: %w", key, err)
		}
	}

	err := v.ReadInConfig()
	if err != nil {
		fmt.Printf("Warning: Failed to find file-based config: %s. Falling back to embedded config.\n", err)
		if err = v.ReadConfig(bytes.NewReader(embeddedConfig)); err != nil {
			return Config{}, fmt.Errorf("failed to read embedded config: %w", err)
		}
	}

	if err = v.Unmarshal(&config); err != nil {
		return Config{}, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	return config, nil
}

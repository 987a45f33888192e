package config

import (
	"strings"

	"github.com/spf13/viper"
)

type Config struct {
	App        AppConfig
	Auth       AuthConfig
	CORS       CORSConfig
	RateLimit  RateLimitConfig
	Classifier ClassifierConfig
	Platforms  PlatformConfig
}

type AppConfig struct {
	Env         string
	Port        string
	LogLevel    string
	MaxUploadMB int64
}

type AuthConfig struct {
	// PasswordHash is a bcrypt hash. Empty disables the access gate.
	PasswordHash string
}

type CORSConfig struct {
	AllowedOrigins []string
}

type RateLimitConfig struct {
	Enabled       bool
	MaxRequests   int64
	WindowSeconds int64
	RedisAddress  string
}

type ClassifierConfig struct {
	// Strict requires every signature marker instead of the default threshold.
	Strict bool
}

type PlatformConfig struct {
	// Enabled lists platform keys offered to callers, e.g. "xiaohongshu".
	Enabled []string
}

// Load reads an optional .env file and the process environment.
// Environment variables win over the file.
func Load() *Config {
	v := viper.New()
	v.SetConfigFile(".env")
	v.SetConfigType("env")
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		GetLogger().WithField("field", "config").Debug(".env file not found, using environment variables: " + err.Error())
	}

	v.SetDefault("GO_ENV", "development")
	v.SetDefault("APP_PORT", "8080")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("MAX_UPLOAD_MB", 20)
	v.SetDefault("ACCESS_PASSWORD_HASH", "")
	v.SetDefault("CORS_ALLOWED_ORIGINS", "")
	v.SetDefault("RATE_LIMIT_ENABLED", false)
	v.SetDefault("RATE_LIMIT_MAX_REQUESTS", 60)
	v.SetDefault("RATE_LIMIT_WINDOW_SECONDS", 60)
	v.SetDefault("REDIS_ADDRESS", "localhost:6379")
	v.SetDefault("CLASSIFIER_STRICT", false)
	v.SetDefault("PLATFORMS_ENABLED", PlatformXiaohongshu)

	port := strings.TrimSpace(v.GetString("API_PORT"))
	if port == "" {
		// Cloud Run standard env var.
		port = strings.TrimSpace(v.GetString("PORT"))
	}
	if port == "" {
		port = v.GetString("APP_PORT")
	}

	return &Config{
		App: AppConfig{
			Env:         v.GetString("GO_ENV"),
			Port:        port,
			LogLevel:    v.GetString("LOG_LEVEL"),
			MaxUploadMB: v.GetInt64("MAX_UPLOAD_MB"),
		},
		Auth: AuthConfig{
			PasswordHash: strings.TrimSpace(v.GetString("ACCESS_PASSWORD_HASH")),
		},
		CORS: CORSConfig{
			AllowedOrigins: SplitAndTrim(v.GetString("CORS_ALLOWED_ORIGINS")),
		},
		RateLimit: RateLimitConfig{
			Enabled:       v.GetBool("RATE_LIMIT_ENABLED"),
			MaxRequests:   v.GetInt64("RATE_LIMIT_MAX_REQUESTS"),
			WindowSeconds: v.GetInt64("RATE_LIMIT_WINDOW_SECONDS"),
			RedisAddress:  v.GetString("REDIS_ADDRESS"),
		},
		Classifier: ClassifierConfig{
			Strict: v.GetBool("CLASSIFIER_STRICT"),
		},
		Platforms: PlatformConfig{
			Enabled: SplitAndTrim(v.GetString("PLATFORMS_ENABLED")),
		},
	}
}

func (c *Config) IsProduction() bool {
	return strings.EqualFold(strings.TrimSpace(c.App.Env), "production")
}

func SplitAndTrim(csv string) []string {
	if strings.TrimSpace(csv) == "" {
		return nil
	}
	parts := strings.Split(csv, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

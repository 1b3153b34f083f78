package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	DatabaseURL string
	HTTPAddress string

	SecretKey       string
	AccessTokenTTL  time.Duration
	RefreshTokenTTL time.Duration
	EmailTokenTTL   time.Duration
	ResetTokenTTL   time.Duration

	RedisAddress  string
	RedisPassword string
	RedisDB       int
	CacheUserTTL  time.Duration

	RateLimitMeCalls  int
	RateLimitMeWindow time.Duration

	CORSAllowOrigins []string
	AllowCredentials bool

	SMTPHost     string
	SMTPPort     int
	SMTPUser     string
	SMTPPassword string
	SMTPFrom     string

	CloudinaryURL    string
	DefaultAvatarURL string
}

// Load reads configuration from the environment (optionally seeded by a
// config.json in the working directory). Only DATABASE_URL and SECRET_KEY are
// required; everything else defaults so the service still runs with the cache
// degraded to pass-through and mail falling back to logged links.
func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("json")
	v.AddConfigPath(".")
	v.AutomaticEnv()

	for _, key := range []string{
		"DATABASE_URL", "HTTP_ADDRESS", "SECRET_KEY",
		"ACCESS_TOKEN_TTL", "REFRESH_TOKEN_TTL", "EMAIL_TOKEN_TTL", "RESET_TOKEN_TTL",
		"REDIS_ADDRESS", "REDIS_PASSWORD", "REDIS_DB", "CACHE_USER_TTL",
		"RATE_LIMIT_ME_CALLS", "RATE_LIMIT_ME_WINDOW",
		"CORS_ALLOW_ORIGINS", "ALLOW_CREDENTIALS",
		"SMTP_HOST", "SMTP_PORT", "SMTP_USER", "SMTP_PASSWORD", "SMTP_FROM",
		"CLOUDINARY_URL", "DEFAULT_AVATAR_URL",
	} {
		if err := v.BindEnv(key); err != nil {
			return nil, err
		}
	}

	v.SetDefault("HTTP_ADDRESS", ":8000")
	v.SetDefault("ACCESS_TOKEN_TTL", "60m")
	v.SetDefault("REFRESH_TOKEN_TTL", "168h")
	v.SetDefault("EMAIL_TOKEN_TTL", "24h")
	v.SetDefault("RESET_TOKEN_TTL", "1h")
	v.SetDefault("CACHE_USER_TTL", "300s")
	v.SetDefault("RATE_LIMIT_ME_CALLS", 5)
	v.SetDefault("RATE_LIMIT_ME_WINDOW", "60s")
	v.SetDefault("CORS_ALLOW_ORIGINS", "*")
	v.SetDefault("SMTP_PORT", 587)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("read config file: %w", err)
		}
	}

	cfg := &Config{
		DatabaseURL:       v.GetString("DATABASE_URL"),
		HTTPAddress:       v.GetString("HTTP_ADDRESS"),
		SecretKey:         v.GetString("SECRET_KEY"),
		AccessTokenTTL:    v.GetDuration("ACCESS_TOKEN_TTL"),
		RefreshTokenTTL:   v.GetDuration("REFRESH_TOKEN_TTL"),
		EmailTokenTTL:     v.GetDuration("EMAIL_TOKEN_TTL"),
		ResetTokenTTL:     v.GetDuration("RESET_TOKEN_TTL"),
		RedisAddress:      v.GetString("REDIS_ADDRESS"),
		RedisPassword:     v.GetString("REDIS_PASSWORD"),
		RedisDB:           v.GetInt("REDIS_DB"),
		CacheUserTTL:      v.GetDuration("CACHE_USER_TTL"),
		RateLimitMeCalls:  v.GetInt("RATE_LIMIT_ME_CALLS"),
		RateLimitMeWindow: v.GetDuration("RATE_LIMIT_ME_WINDOW"),
		CORSAllowOrigins:  splitOrigins(v.GetString("CORS_ALLOW_ORIGINS")),
		AllowCredentials:  v.GetBool("ALLOW_CREDENTIALS"),
		SMTPHost:          v.GetString("SMTP_HOST"),
		SMTPPort:          v.GetInt("SMTP_PORT"),
		SMTPUser:          v.GetString("SMTP_USER"),
		SMTPPassword:      v.GetString("SMTP_PASSWORD"),
		SMTPFrom:          v.GetString("SMTP_FROM"),
		CloudinaryURL:     v.GetString("CLOUDINARY_URL"),
		DefaultAvatarURL:  v.GetString("DEFAULT_AVATAR_URL"),
	}

	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}
	if cfg.SecretKey == "" {
		return nil, fmt.Errorf("SECRET_KEY is required")
	}
	return cfg, nil
}

func splitOrigins(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if s := strings.TrimSpace(part); s != "" {
			out = append(out, s)
		}
	}
	if len(out) == 0 {
		return []string{"*"}
	}
	return out
}

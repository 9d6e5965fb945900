package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Database DatabaseConfig `yaml:"database"`
	Redis    RedisConfig    `yaml:"redis"`
	Auth     AuthConfig     `yaml:"auth"`
	Identity IdentityConfig `yaml:"identity"`
	Paging   PagingConfig   `yaml:"paging"`
	Jobs     JobsConfig     `yaml:"jobs"`
}

type ServerConfig struct {
	Port            string        `yaml:"port"`
	Mode            string        `yaml:"mode"`
	LogLevel        string        `yaml:"log_level"`
	CORSOrigins     string        `yaml:"cors_origins"`
	ReadTimeout     time.Duration `yaml:"read_timeout"`
	WriteTimeout    time.Duration `yaml:"write_timeout"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

type DatabaseConfig struct {
	URL             string        `yaml:"url"`
	MaxOpenConns    int           `yaml:"max_open_conns"`
	MaxIdleConns    int           `yaml:"max_idle_conns"`
	ConnMaxLifetime time.Duration `yaml:"conn_max_lifetime"`
}

// RedisConfig is optional; an empty URL keeps the profile cache in-process only.
type RedisConfig struct {
	URL string `yaml:"url"`
}

type AuthConfig struct {
	JWTSecret     string `yaml:"jwt_secret"`
	SessionSecret string `yaml:"session_secret"`
}

type IdentityConfig struct {
	BaseURL         string        `yaml:"base_url"`
	APIKey          string        `yaml:"api_key"`
	Timeout         time.Duration `yaml:"timeout"`
	ProfileCacheTTL time.Duration `yaml:"profile_cache_ttl"`
	ProfileCacheLen int           `yaml:"profile_cache_size"`
}

type PagingConfig struct {
	DefaultLimit int `yaml:"default_limit"`
	MaxLimit     int `yaml:"max_limit"`
}

type JobsConfig struct {
	CleanupCron string `yaml:"cleanup_cron"`
}

// Default returns the configuration used when neither file nor environment override a value.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port:            "8080",
			Mode:            "debug",
			LogLevel:        "info",
			CORSOrigins:     "*",
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    30 * time.Second,
			ShutdownTimeout: 10 * time.Second,
		},
		Database: DatabaseConfig{
			URL:             "host=localhost user=postgres password=postgres dbname=upscoverflow port=5432 sslmode=disable",
			MaxOpenConns:    25,
			MaxIdleConns:    5,
			ConnMaxLifetime: 30 * time.Minute,
		},
		Auth: AuthConfig{
			SessionSecret: "secret_key_change_me",
		},
		Identity: IdentityConfig{
			Timeout:         3 * time.Second,
			ProfileCacheTTL: 5 * time.Minute,
			ProfileCacheLen: 500,
		},
		Paging: PagingConfig{
			DefaultLimit: 10,
			MaxLimit:     100,
		},
		Jobs: JobsConfig{
			CleanupCron: "0 3 * * *",
		},
	}
}

// Load reads defaults, then the yaml file at path (if present), then .env and the environment.
func Load(path string) (*Config, error) {
	cfg := Default()

	if data, err := os.ReadFile(path); err == nil {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, err
		}
	}

	// .env is optional; real environment variables win over it
	_ = godotenv.Load()

	applyEnv(cfg)
	return cfg, nil
}

func applyEnv(cfg *Config) {
	if v := os.Getenv("PORT"); v != "" {
		cfg.Server.Port = v
	}
	if v := os.Getenv("GIN_MODE"); v != "" {
		cfg.Server.Mode = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.Server.LogLevel = strings.ToLower(v)
	}
	if v := os.Getenv("CORS_ORIGINS"); v != "" {
		cfg.Server.CORSOrigins = v
	}
	if v := os.Getenv("DATABASE_URL"); v != "" {
		cfg.Database.URL = v
	}
	if v := os.Getenv("REDIS_URL"); v != "" {
		cfg.Redis.URL = v
	}
	if v := os.Getenv("AUTH_JWT_SECRET"); v != "" {
		cfg.Auth.JWTSecret = v
	}
	if v := os.Getenv("SESSION_SECRET"); v != "" {
		cfg.Auth.SessionSecret = v
	}
	if v := os.Getenv("IDENTITY_API_URL"); v != "" {
		cfg.Identity.BaseURL = v
	}
	if v := os.Getenv("IDENTITY_API_KEY"); v != "" {
		cfg.Identity.APIKey = v
	}
	if v := os.Getenv("PROFILE_CACHE_TTL"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.Identity.ProfileCacheTTL = d
		}
	}
	if v := os.Getenv("PAGE_MAX_LIMIT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.Paging.MaxLimit = n
		}
	}
	if v := os.Getenv("CLEANUP_CRON"); v != "" {
		cfg.Jobs.CleanupCron = v
	}
}

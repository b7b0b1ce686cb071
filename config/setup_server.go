package config

import (
	"errors"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/joho/godotenv"
	"github.com/rs/cors"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

type AppConfig struct {
	Server         ServerConfig   `yaml:"server"`
	DatabaseConfig DatabaseConfig `yaml:"database"`
	RedisConfig    RedisConfig    `yaml:"redis"`
	S3Config       S3Config       `yaml:"s3"`
	JWT            JWTConfig      `yaml:"jwt"`
	Admin          AdminConfig    `yaml:"admin"`
	CORS           CORSConfig     `yaml:"cors"`
	Log            LogConfig      `yaml:"log"`
	TTL            TTL            `yaml:"ttl"`
	Upload         UploadConfig   `yaml:"upload"`
}

// LoadConfig : reads the yaml file (optional), then applies PORTAL_* environment overrides and defaults
func LoadConfig(path string) (*AppConfig, error) {
	_ = godotenv.Load()

	var cfg AppConfig

	file, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(file, &cfg); err != nil {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
	case errors.Is(err, os.ErrNotExist):
	default:
		return nil, err
	}

	applyEnv(&cfg)
	applyDefaults(&cfg)

	if cfg.JWT.SecretKey == "" {
		return nil, errors.New("jwt.secret_key is required (set PORTAL_JWT_SECRET_KEY)")
	}

	return &cfg, nil
}

func applyEnv(cfg *AppConfig) {
	v := viper.New()
	v.SetEnvPrefix("PORTAL")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	overrideString(v, "server.addr", &cfg.Server.Addr)
	overrideString(v, "database.dsn", &cfg.DatabaseConfig.DSN)
	overrideString(v, "redis.addr", &cfg.RedisConfig.Addr)
	overrideString(v, "redis.password", &cfg.RedisConfig.Password)
	overrideString(v, "s3.bucket", &cfg.S3Config.Bucket)
	overrideString(v, "s3.region", &cfg.S3Config.Region)
	overrideString(v, "s3.endpoint", &cfg.S3Config.Endpoint)
	overrideString(v, "s3.access_key", &cfg.S3Config.AccessKey)
	overrideString(v, "s3.secret_key", &cfg.S3Config.SecretKey)
	overrideString(v, "jwt.secret_key", &cfg.JWT.SecretKey)
	overrideString(v, "admin.email", &cfg.Admin.Email)
	overrideString(v, "admin.password", &cfg.Admin.Password)
	overrideString(v, "log.level", &cfg.Log.Level)
	overrideString(v, "log.format", &cfg.Log.Format)

	if v.IsSet("s3.local") {
		cfg.S3Config.Local = v.GetBool("s3.local")
	}
	if v.IsSet("database.migrate") {
		cfg.DatabaseConfig.Migrate = v.GetBool("database.migrate")
	}
	if origins := v.GetString("cors.allowed_origins"); origins != "" {
		cfg.CORS.AllowedOrigins = splitAndTrim(origins)
	}
}

func overrideString(v *viper.Viper, key string, dst *string) {
	if value := v.GetString(key); value != "" {
		*dst = value
	}
}

func applyDefaults(cfg *AppConfig) {
	if cfg.Server.Addr == "" {
		cfg.Server.Addr = ":8080"
	}
	if cfg.Server.BasePath == "" {
		cfg.Server.BasePath = "/api/v1"
	}
	if cfg.Server.ShutdownTimeout == "" {
		cfg.Server.ShutdownTimeout = "5s"
	}
	if cfg.Server.RequestTimeout == "" {
		cfg.Server.RequestTimeout = "30s"
	}
	if cfg.DatabaseConfig.MaxOpenConns == 0 {
		cfg.DatabaseConfig.MaxOpenConns = 20
	}
	if cfg.DatabaseConfig.MaxIdleConns == 0 {
		cfg.DatabaseConfig.MaxIdleConns = 5
	}
	if cfg.RedisConfig.Addr == "" {
		cfg.RedisConfig.Addr = "localhost:6379"
	}
	if cfg.S3Config.Bucket == "" {
		cfg.S3Config.Bucket = "visa-documents"
	}
	if cfg.S3Config.Region == "" {
		cfg.S3Config.Region = "us-east-1"
	}
	if cfg.JWT.AccessTokenTTL == "" {
		cfg.JWT.AccessTokenTTL = "30m"
	}
	if cfg.JWT.RefreshTokenTTL == "" {
		cfg.JWT.RefreshTokenTTL = "168h"
	}
	if cfg.JWT.Issuer == "" {
		cfg.JWT.Issuer = "visa-advisory-portal"
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "json"
	}
	if cfg.TTL.Cache == 0 {
		cfg.TTL.Cache = 300
	}
	if cfg.TTL.Presigned == 0 {
		cfg.TTL.Presigned = 900
	}
	if cfg.Upload.MaxFileSize == 0 {
		cfg.Upload.MaxFileSize = 10 << 20
	}
}

func (c ServerConfig) Shutdown() time.Duration {
	return parseDuration(c.ShutdownTimeout, 5*time.Second)
}

func (c ServerConfig) Timeout() time.Duration {
	return parseDuration(c.RequestTimeout, 30*time.Second)
}

func (t TTL) CacheDuration() time.Duration {
	return time.Duration(t.Cache) * time.Second
}

func (t TTL) PresignedDuration() time.Duration {
	return time.Duration(t.Presigned) * time.Second
}

func parseDuration(value string, fallback time.Duration) time.Duration {
	d, err := time.ParseDuration(value)
	if err != nil || d <= 0 {
		return fallback
	}
	return d
}

func splitAndTrim(value string) []string {
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

// SetupServer : chi router wrapped with CORS
func SetupServer(cfg *AppConfig) (*http.Server, *chi.Mux) {
	router := chi.NewRouter()

	origins := cfg.CORS.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	corsHandler := cors.New(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Authorization", "Content-Type", "X-Request-Id"},
		ExposedHeaders:   []string{"Content-Disposition", "X-Request-Id"},
		AllowCredentials: true,
	})

	server := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           corsHandler.Handler(router),
		ReadHeaderTimeout: 10 * time.Second,
	}

	return server, router
}

func SetupDatabase(cfg *DatabaseConfig) (*Database, error) {
	return NewDatabaseConnection("postgres", cfg)
}

func SetupRedis(cfg *RedisConfig) (*RedisClient, error) {
	return NewRedisClient(cfg)
}

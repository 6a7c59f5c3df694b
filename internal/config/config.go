package config

import (
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"

	"chunkrelay/internal/domain"
)

// Config holds all application configuration.
type Config struct {
	Server ServerConfig
	S3     S3Config
	Upload UploadConfig
	CORS   CORSConfig
	Log    LogConfig
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port         string        `mapstructure:"port"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	Environment  string        `mapstructure:"environment"`
}

// S3Config holds object store settings. Credentials live here so the
// adapter receives them by injection rather than reading globals.
type S3Config struct {
	Region    string `mapstructure:"region"`
	Bucket    string `mapstructure:"bucket"`
	Endpoint  string `mapstructure:"endpoint"`
	AccessKey string `mapstructure:"access_key"`
	SecretKey string `mapstructure:"secret_key"`
}

// UploadConfig holds chunking and client retry settings.
type UploadConfig struct {
	ChunkSizeMB int64 `mapstructure:"chunk_size_mb"`
	PartRetries int   `mapstructure:"part_retries"`
}

// ChunkSize returns the configured chunk size in bytes, falling back to the
// shared default when unset.
func (u *UploadConfig) ChunkSize() int64 {
	if u.ChunkSizeMB <= 0 {
		return domain.DefaultChunkSize
	}
	return u.ChunkSizeMB * 1024 * 1024
}

// CORSConfig holds CORS settings.
type CORSConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// Load reads configuration from environment variables with the CHUNKRELAY_ prefix.
func Load() (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix("CHUNKRELAY")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Server defaults
	v.SetDefault("server.port", ":8080")
	v.SetDefault("server.read_timeout", "15m")
	v.SetDefault("server.write_timeout", "15m")
	v.SetDefault("server.environment", "development")

	// S3 defaults
	v.SetDefault("s3.region", "us-east-1")
	v.SetDefault("s3.bucket", "chunkrelay-uploads")
	v.SetDefault("s3.endpoint", "")

	// Upload defaults (10 MiB chunks, shared with the client)
	v.SetDefault("upload.chunk_size_mb", 10)
	v.SetDefault("upload.part_retries", 2)

	// Log defaults
	v.SetDefault("log.level", "debug")
	v.SetDefault("log.format", "console")

	// CORS defaults (localhost origins for development)
	v.SetDefault("cors.allowed_origins", "http://localhost:3000,http://127.0.0.1:3000")

	// Bind environment variables explicitly for nested keys
	envBindings := map[string]string{
		"server.port":          "CHUNKRELAY_SERVER_PORT",
		"server.read_timeout":  "CHUNKRELAY_SERVER_READ_TIMEOUT",
		"server.write_timeout": "CHUNKRELAY_SERVER_WRITE_TIMEOUT",
		"server.environment":   "CHUNKRELAY_SERVER_ENVIRONMENT",
		"s3.region":            "CHUNKRELAY_S3_REGION",
		"s3.bucket":            "CHUNKRELAY_S3_BUCKET",
		"s3.endpoint":          "CHUNKRELAY_S3_ENDPOINT",
		"s3.access_key":        "CHUNKRELAY_S3_ACCESS_KEY",
		"s3.secret_key":        "CHUNKRELAY_S3_SECRET_KEY",
		"upload.chunk_size_mb": "CHUNKRELAY_UPLOAD_CHUNK_SIZE_MB",
		"upload.part_retries":  "CHUNKRELAY_UPLOAD_PART_RETRIES",
		"log.level":            "CHUNKRELAY_LOG_LEVEL",
		"log.format":           "CHUNKRELAY_LOG_FORMAT",
		"cors.allowed_origins": "CHUNKRELAY_CORS_ALLOWED_ORIGINS",
	}
	for key, env := range envBindings {
		_ = v.BindEnv(key, env)
	}

	cfg := &Config{}

	// Railway/Heroku/Render set a PORT env var. Use it if CHUNKRELAY_SERVER_PORT is not explicitly set.
	serverPort := v.GetString("server.port")
	if port := os.Getenv("PORT"); port != "" && os.Getenv("CHUNKRELAY_SERVER_PORT") == "" {
		serverPort = ":" + port
	}

	cfg.Server = ServerConfig{
		Port:         serverPort,
		ReadTimeout:  v.GetDuration("server.read_timeout"),
		WriteTimeout: v.GetDuration("server.write_timeout"),
		Environment:  v.GetString("server.environment"),
	}
	cfg.S3 = S3Config{
		Region:    v.GetString("s3.region"),
		Bucket:    v.GetString("s3.bucket"),
		Endpoint:  v.GetString("s3.endpoint"),
		AccessKey: v.GetString("s3.access_key"),
		SecretKey: v.GetString("s3.secret_key"),
	}
	cfg.Upload = UploadConfig{
		ChunkSizeMB: v.GetInt64("upload.chunk_size_mb"),
		PartRetries: v.GetInt("upload.part_retries"),
	}
	cfg.Log = LogConfig{
		Level:  v.GetString("log.level"),
		Format: v.GetString("log.format"),
	}

	// Parse CORS allowed origins from comma-separated string
	var corsOrigins []string
	for _, o := range strings.Split(v.GetString("cors.allowed_origins"), ",") {
		o = strings.TrimSpace(o)
		if o != "" {
			corsOrigins = append(corsOrigins, o)
		}
	}
	cfg.CORS = CORSConfig{AllowedOrigins: corsOrigins}

	return cfg, nil
}

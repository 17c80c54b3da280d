package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration.
type Config struct {
	Server    ServerConfig
	DB        DBConfig
	S3        S3Config
	OCR       OCRConfig
	Typhoon   TyphoonConfig
	Upload    UploadConfig
	CORS      CORSConfig
	Retention RetentionConfig
	History   HistoryConfig
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port         string        `mapstructure:"port"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	Environment  string        `mapstructure:"environment"`
}

// DBConfig holds PostgreSQL connection settings.
type DBConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	Name     string `mapstructure:"name"`
	SSLMode  string `mapstructure:"sslmode"`
	MaxOpen  int    `mapstructure:"max_open"`
	MaxIdle  int    `mapstructure:"max_idle"`
}

// DSN returns the PostgreSQL connection string.
func (d *DBConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.Name, d.SSLMode,
	)
}

// S3Config holds settings for the processed-image archive bucket.
type S3Config struct {
	Region    string `mapstructure:"region"`
	Bucket    string `mapstructure:"bucket"`
	Endpoint  string `mapstructure:"endpoint"`
	AccessKey string `mapstructure:"access_key"`
	SecretKey string `mapstructure:"secret_key"`
	Enabled   bool   `mapstructure:"enabled"`
}

// OCRConfig holds recognition engine settings.
type OCRConfig struct {
	Languages     string  `mapstructure:"languages"`
	TessdataDir   string  `mapstructure:"tessdata_dir"`
	Concurrency   int     `mapstructure:"concurrency"`
	MinConfidence float64 `mapstructure:"min_confidence"`
}

// TyphoonConfig holds extraction service settings.
type TyphoonConfig struct {
	APIKey      string `mapstructure:"api_key"`
	APIURL      string `mapstructure:"api_url"`
	Model       string `mapstructure:"model"`
	TimeoutSecs int    `mapstructure:"timeout_secs"`
	MaxRetries  int    `mapstructure:"max_retries"`
	SendImage   bool   `mapstructure:"send_image"`
}

// UploadConfig holds upload validation settings.
type UploadConfig struct {
	MaxFileSizeMB int64 `mapstructure:"max_file_size_mb"`
}

// CORSConfig holds CORS settings.
type CORSConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// RetentionConfig holds archive retention settings.
type RetentionConfig struct {
	MaxAge        time.Duration `mapstructure:"max_age"`
	SweepInterval time.Duration `mapstructure:"sweep_interval"`
}

// HistoryConfig holds scan history settings.
type HistoryConfig struct {
	Enabled        bool `mapstructure:"enabled"`
	PreviewMaxLen  int  `mapstructure:"preview_max_len"`
	DefaultPageLen int  `mapstructure:"default_page_len"`
}

// Load reads configuration from environment variables with the PARCELSCAN_ prefix.
func Load() (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix("PARCELSCAN")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Server defaults
	v.SetDefault("server.port", ":8080")
	v.SetDefault("server.read_timeout", "30s")
	v.SetDefault("server.write_timeout", "120s")
	v.SetDefault("server.environment", "development")

	// DB defaults
	v.SetDefault("db.host", "localhost")
	v.SetDefault("db.port", 5432)
	v.SetDefault("db.user", "parcelscan")
	v.SetDefault("db.password", "parcelscan_secret")
	v.SetDefault("db.name", "parcelscan_db")
	v.SetDefault("db.sslmode", "disable")
	v.SetDefault("db.max_open", 25)
	v.SetDefault("db.max_idle", 10)

	// S3 archive defaults
	v.SetDefault("s3.region", "ap-southeast-1")
	v.SetDefault("s3.bucket", "parcelscan-archive")
	v.SetDefault("s3.endpoint", "")
	v.SetDefault("s3.access_key", "")
	v.SetDefault("s3.secret_key", "")
	v.SetDefault("s3.enabled", true)

	// OCR defaults. Thai plus English covers mixed parcel labels.
	v.SetDefault("ocr.languages", "tha+eng")
	v.SetDefault("ocr.tessdata_dir", "")
	v.SetDefault("ocr.concurrency", 2)
	v.SetDefault("ocr.min_confidence", 0.3)

	// Typhoon defaults
	v.SetDefault("typhoon.api_key", "")
	v.SetDefault("typhoon.api_url", "https://api.opentyphoon.ai/v1")
	v.SetDefault("typhoon.model", "typhoon-v2.5-30b-a3b-instruct")
	v.SetDefault("typhoon.timeout_secs", 30)
	v.SetDefault("typhoon.max_retries", 2)
	v.SetDefault("typhoon.send_image", true)

	// Upload defaults
	v.SetDefault("upload.max_file_size_mb", 16)

	// CORS defaults (localhost origins for development)
	v.SetDefault("cors.allowed_origins", "http://localhost:3000,http://127.0.0.1:3000,http://localhost:5000,http://127.0.0.1:5000")

	// Retention defaults
	v.SetDefault("retention.max_age", "720h")
	v.SetDefault("retention.sweep_interval", "1h")

	// History defaults
	v.SetDefault("history.enabled", true)
	v.SetDefault("history.preview_max_len", 200)
	v.SetDefault("history.default_page_len", 20)

	// Bind environment variables explicitly for nested keys
	envBindings := map[string]string{
		"server.port":              "PARCELSCAN_SERVER_PORT",
		"server.read_timeout":      "PARCELSCAN_SERVER_READ_TIMEOUT",
		"server.write_timeout":     "PARCELSCAN_SERVER_WRITE_TIMEOUT",
		"server.environment":       "PARCELSCAN_SERVER_ENVIRONMENT",
		"db.host":                  "PARCELSCAN_DB_HOST",
		"db.port":                  "PARCELSCAN_DB_PORT",
		"db.user":                  "PARCELSCAN_DB_USER",
		"db.password":              "PARCELSCAN_DB_PASSWORD",
		"db.name":                  "PARCELSCAN_DB_NAME",
		"db.sslmode":               "PARCELSCAN_DB_SSLMODE",
		"db.max_open":              "PARCELSCAN_DB_MAX_OPEN",
		"db.max_idle":              "PARCELSCAN_DB_MAX_IDLE",
		"s3.region":                "PARCELSCAN_S3_REGION",
		"s3.bucket":                "PARCELSCAN_S3_BUCKET",
		"s3.endpoint":              "PARCELSCAN_S3_ENDPOINT",
		"s3.access_key":            "PARCELSCAN_S3_ACCESS_KEY",
		"s3.secret_key":            "PARCELSCAN_S3_SECRET_KEY",
		"s3.enabled":               "PARCELSCAN_S3_ENABLED",
		"ocr.languages":            "PARCELSCAN_OCR_LANGUAGES",
		"ocr.tessdata_dir":         "PARCELSCAN_OCR_TESSDATA_DIR",
		"ocr.concurrency":          "PARCELSCAN_OCR_CONCURRENCY",
		"ocr.min_confidence":       "PARCELSCAN_OCR_MIN_CONFIDENCE",
		"typhoon.api_key":          "PARCELSCAN_TYPHOON_API_KEY",
		"typhoon.api_url":          "PARCELSCAN_TYPHOON_API_URL",
		"typhoon.model":            "PARCELSCAN_TYPHOON_MODEL",
		"typhoon.timeout_secs":     "PARCELSCAN_TYPHOON_TIMEOUT_SECS",
		"typhoon.max_retries":      "PARCELSCAN_TYPHOON_MAX_RETRIES",
		"typhoon.send_image":       "PARCELSCAN_TYPHOON_SEND_IMAGE",
		"upload.max_file_size_mb":  "PARCELSCAN_UPLOAD_MAX_FILE_SIZE_MB",
		"cors.allowed_origins":     "PARCELSCAN_CORS_ALLOWED_ORIGINS",
		"retention.max_age":        "PARCELSCAN_RETENTION_MAX_AGE",
		"retention.sweep_interval": "PARCELSCAN_RETENTION_SWEEP_INTERVAL",
		"history.enabled":          "PARCELSCAN_HISTORY_ENABLED",
		"history.preview_max_len":  "PARCELSCAN_HISTORY_PREVIEW_MAX_LEN",
		"history.default_page_len": "PARCELSCAN_HISTORY_DEFAULT_PAGE_LEN",
	}
	for key, env := range envBindings {
		if err := v.BindEnv(key, env); err != nil {
			return nil, fmt.Errorf("binding env %s: %w", env, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	// Comma-separated origins arrive as a single string through env vars.
	if len(cfg.CORS.AllowedOrigins) == 1 && strings.Contains(cfg.CORS.AllowedOrigins[0], ",") {
		cfg.CORS.AllowedOrigins = strings.Split(cfg.CORS.AllowedOrigins[0], ",")
		for i := range cfg.CORS.AllowedOrigins {
			cfg.CORS.AllowedOrigins[i] = strings.TrimSpace(cfg.CORS.AllowedOrigins[i])
		}
	}

	if cfg.Typhoon.APIKey == "" {
		fmt.Fprintln(os.Stderr, "warning: PARCELSCAN_TYPHOON_API_KEY not set; extraction requests will fail")
	}

	return &cfg, nil
}

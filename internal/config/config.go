package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const insecureJWTSecret = "supersecretkey"

type Config struct {
	Addr          string         `yaml:"addr"`
	JWTSecret     string         `yaml:"jwt_secret"`
	APITimeout    time.Duration  `yaml:"timeout"`
	TokenDuration time.Duration  `yaml:"token_duration"`
	PollInterval  time.Duration  `yaml:"poll_interval"`
	CORSOrigins   []string       `yaml:"cors_origins"`
	Database      DatabaseConfig `yaml:"database"`
	Blob          BlobConfig     `yaml:"blob"`
	Log           LogConfig      `yaml:"log"`
}

type DatabaseConfig struct {
	// Driver is "sqlite" or "postgres".
	Driver         string `yaml:"driver"`
	Path           string `yaml:"path"`
	URL            string `yaml:"url"`
	MaxConns       int32  `yaml:"max_conns"`
	SimpleProtocol bool   `yaml:"simple_protocol"`
	MigrateOnStart bool   `yaml:"migrate_on_start"`
}

type BlobConfig struct {
	// Driver is "local" or "s3".
	Driver string `yaml:"driver"`
	// Dir and BaseURL configure the local store. BaseURL is where the API serves /images/.
	Dir     string `yaml:"dir"`
	BaseURL string `yaml:"base_url"`

	Region        string `yaml:"region"`
	Bucket        string `yaml:"bucket"`
	Prefix        string `yaml:"prefix"`
	PublicBaseURL string `yaml:"public_base_url"`
	Endpoint      string `yaml:"endpoint"`
}

type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	// File enables rotation through lumberjack; empty logs to stdout.
	File       string `yaml:"file"`
	MaxSizeMB  int    `yaml:"max_size_mb"`
	MaxBackups int    `yaml:"max_backups"`
	MaxAgeDays int    `yaml:"max_age_days"`
}

// LoadConfig reads environment defaults (after loading a .env file when present) and then
// overlays the YAML file at path, if any.
func LoadConfig(path string) (*Config, error) {
	if err := loadDotEnv(getEnv("STUDYBUDDY_ENV_FILE", ".env")); err != nil {
		return nil, err
	}

	cfg := &Config{
		Addr:          getEnv("STUDYBUDDY_ADDR", ":8080"),
		JWTSecret:     getEnv("STUDYBUDDY_JWT_SECRET", insecureJWTSecret),
		APITimeout:    15 * time.Second,
		TokenDuration: getDuration("STUDYBUDDY_TOKEN_DURATION", 24*time.Hour),
		PollInterval:  getDuration("STUDYBUDDY_POLL_INTERVAL", time.Second),
		CORSOrigins:   splitList(getEnv("STUDYBUDDY_CORS_ORIGINS", "*")),
		Database: DatabaseConfig{
			Driver:         getEnv("STUDYBUDDY_DB_DRIVER", "sqlite"),
			Path:           getEnv("STUDYBUDDY_DB_PATH", "studybuddy.db"),
			URL:            getEnv("STUDYBUDDY_DATABASE_URL", ""),
			MaxConns:       5,
			MigrateOnStart: getBool("STUDYBUDDY_MIGRATE_ON_START", true),
		},
		Blob: BlobConfig{
			Driver:  getEnv("STUDYBUDDY_BLOB_DRIVER", "local"),
			Dir:     getEnv("STUDYBUDDY_BLOB_DIR", "images"),
			BaseURL: getEnv("STUDYBUDDY_PUBLIC_URL", "http://localhost:8080") + "/images",
			Region:  getEnv("AWS_REGION", ""),
			Bucket:  getEnv("STUDYBUDDY_S3_BUCKET", ""),
			Prefix:  getEnv("STUDYBUDDY_S3_PREFIX", "images"),
		},
		Log: LogConfig{
			Level:  getEnv("STUDYBUDDY_LOG_LEVEL", "info"),
			Format: getEnv("STUDYBUDDY_LOG_FORMAT", "json"),
			File:   getEnv("STUDYBUDDY_LOG_FILE", ""),
		},
	}
	if path != "" {
		f, err := os.Open(path)
		if err != nil {
			return nil, err
		}
		defer f.Close()

		dec := yaml.NewDecoder(f)
		if err := dec.Decode(cfg); err != nil {
			return nil, err
		}
	}

	return cfg, nil
}

// Validate fills unset values with defaults and rejects unusable settings.
func (c *Config) Validate() error {
	env := getEnv("STUDYBUDDY_ENV", "production")
	if c.JWTSecret == "" {
		return errors.New("jwt_secret is required")
	}
	if c.JWTSecret == insecureJWTSecret && env != "development" {
		return errors.New("jwt_secret uses the insecure default; set STUDYBUDDY_JWT_SECRET or STUDYBUDDY_ENV=development")
	}
	if c.Addr == "" {
		c.Addr = ":8080"
	}
	if c.APITimeout <= 0 {
		c.APITimeout = 15 * time.Second
	}
	if c.TokenDuration <= 0 {
		c.TokenDuration = 24 * time.Hour
	}
	if c.PollInterval < 0 {
		return fmt.Errorf("poll_interval must be positive, got %v", c.PollInterval)
	}
	if c.PollInterval == 0 {
		c.PollInterval = time.Second
	}

	switch c.Database.Driver {
	case "sqlite":
		if c.Database.Path == "" {
			return errors.New("database.path is required for sqlite")
		}
	case "postgres":
		if c.Database.URL == "" {
			return errors.New("database.url is required for postgres")
		}
		if c.Database.MaxConns <= 0 {
			c.Database.MaxConns = 5
		}
	default:
		return fmt.Errorf("unknown database driver %q", c.Database.Driver)
	}

	switch c.Blob.Driver {
	case "local":
		if c.Blob.Dir == "" {
			return errors.New("blob.dir is required for the local store")
		}
	case "s3":
		if c.Blob.Bucket == "" || c.Blob.Region == "" {
			return errors.New("blob.bucket and blob.region are required for s3")
		}
	default:
		return fmt.Errorf("unknown blob driver %q", c.Blob.Driver)
	}

	if c.Log.MaxSizeMB <= 0 {
		c.Log.MaxSizeMB = 100
	}
	if c.Log.MaxBackups <= 0 {
		c.Log.MaxBackups = 5
	}
	if c.Log.MaxAgeDays <= 0 {
		c.Log.MaxAgeDays = 30
	}

	return nil
}

func loadDotEnv(path string) error {
	if _, err := os.Stat(path); err != nil {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("load %s: %w", path, err)
	}
	return nil
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}

	return def
}

func getDuration(key string, def time.Duration) time.Duration {
	if d, err := time.ParseDuration(os.Getenv(key)); err == nil && d > 0 {
		return d
	}
	return def
}

func getBool(key string, def bool) bool {
	if b, err := strconv.ParseBool(os.Getenv(key)); err == nil {
		return b
	}
	return def
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

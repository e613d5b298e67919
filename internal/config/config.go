// Package config reads settings from the environment. A .env file is picked
// up by importing github.com/joho/godotenv/autoload; real variables win.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Record store backends.
const (
	BackendPostgres = "postgres"
	BackendBolt     = "bolt"
)

// DatabaseConfig holds the PostgreSQL connection and pool settings.
type DatabaseConfig struct {
	Host               string
	Port               string
	User               string
	Password           string
	Name               string
	SSLMode            string
	MaxOpenConns       int
	MaxIdleConns       int
	ConnMaxLifetimeSec int
}

// MinIOConfig points at the media store. It is optional; an empty Endpoint
// disables export and archiving.
type MinIOConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
}

// Enabled reports whether a media store is configured.
func (c MinIOConfig) Enabled() bool {
	return c.Endpoint != ""
}

// DataPostConfig controls how filenames resolve to records.
type DataPostConfig struct {
	// Collection scopes all records, like a custom post type.
	Collection string
	// MatchMode is "substring" or "exact".
	MatchMode string
	// Ambiguity is "first" or "error"; it applies when a lookup returns
	// more than one record.
	Ambiguity       string
	QueryLimit      int
	DefaultStatus   string
	ArchiveOnDelete bool
	ExportExpiry    time.Duration
}

// AppConfig is everything both binaries read at startup.
type AppConfig struct {
	AppHost  string
	Port     string
	Timezone string
	// APIKey guards write and delete actions when set.
	APIKey   string
	Backend  string
	BoltPath string
	Database DatabaseConfig
	MinIO    MinIOConfig
	DataPost DataPostConfig
}

// Load builds an AppConfig from the environment. Unset or unparsable values
// fall back to defaults; Validate reports values that are set but invalid.
func Load() *AppConfig {
	return &AppConfig{
		AppHost:  getEnv("APP_HOST", "localhost:8080"),
		Port:     getEnv("PORT", "8080"),
		Timezone: getEnv("APP_TIMEZONE", "UTC"),
		APIKey:   getEnv("API_KEY", ""),
		Backend:  getEnv("DATAPOST_BACKEND", BackendPostgres),
		BoltPath: getEnv("BOLT_PATH", "datapost.db"),
		Database: loadDatabase(),
		MinIO:    loadMinIO(),
		DataPost: loadDataPost(),
	}
}

func loadDatabase() DatabaseConfig {
	return DatabaseConfig{
		Host:               getEnv("DB_HOST", ""),
		Port:               getEnv("DB_PORT", "5432"),
		User:               getEnv("DB_USER", ""),
		Password:           getEnv("DB_PASSWORD", ""),
		Name:               getEnv("DB_NAME", ""),
		SSLMode:            getEnv("DB_SSLMODE", "disable"),
		MaxOpenConns:       getEnvInt("DB_MAX_OPEN_CONNS", 10),
		MaxIdleConns:       getEnvInt("DB_MAX_IDLE_CONNS", 5),
		ConnMaxLifetimeSec: getEnvInt("DB_CONN_MAX_LIFETIME_SEC", 300),
	}
}

func loadMinIO() MinIOConfig {
	return MinIOConfig{
		Endpoint:  getEnv("MINIO_ENDPOINT", ""),
		AccessKey: getEnv("MINIO_ACCESS_KEY", ""),
		SecretKey: getEnv("MINIO_SECRET_KEY", ""),
		Bucket:    getEnv("MINIO_BUCKET", ""),
		UseSSL:    getEnvBool("MINIO_USE_SSL", false),
	}
}

func loadDataPost() DataPostConfig {
	return DataPostConfig{
		Collection:      getEnv("DATAPOST_COLLECTION", "data"),
		MatchMode:       getEnv("DATAPOST_MATCH_MODE", "substring"),
		Ambiguity:       getEnv("DATAPOST_AMBIGUITY", "first"),
		QueryLimit:      getEnvInt("DATAPOST_QUERY_LIMIT", 2),
		DefaultStatus:   getEnv("DATAPOST_DEFAULT_STATUS", "publish"),
		ArchiveOnDelete: getEnvBool("DATAPOST_ARCHIVE_ON_DELETE", false),
		ExportExpiry:    getEnvDuration("DATAPOST_EXPORT_EXPIRY", 15*time.Minute),
	}
}

// Validate checks the enumerated settings.
func (c *AppConfig) Validate() error {
	switch c.Backend {
	case BackendPostgres, BackendBolt:
	default:
		return fmt.Errorf("DATAPOST_BACKEND: unknown backend %q", c.Backend)
	}
	switch c.DataPost.MatchMode {
	case "substring", "exact":
	default:
		return fmt.Errorf("DATAPOST_MATCH_MODE: want substring or exact, got %q", c.DataPost.MatchMode)
	}
	switch c.DataPost.Ambiguity {
	case "first", "error":
	default:
		return fmt.Errorf("DATAPOST_AMBIGUITY: want first or error, got %q", c.DataPost.Ambiguity)
	}
	if c.DataPost.QueryLimit < 1 {
		return fmt.Errorf("DATAPOST_QUERY_LIMIT: must be positive, got %d", c.DataPost.QueryLimit)
	}
	return nil
}

// Location resolves Timezone, falling back to UTC.
func (c *AppConfig) Location() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

func getEnv(key, def string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return def
}

// The typed getters ignore unparsable values.

func getEnvBool(key string, def bool) bool {
	if b, err := strconv.ParseBool(os.Getenv(key)); err == nil {
		return b
	}
	return def
}

func getEnvInt(key string, def int) int {
	if i, err := strconv.Atoi(os.Getenv(key)); err == nil {
		return i
	}
	return def
}

func getEnvDuration(key string, def time.Duration) time.Duration {
	if d, err := time.ParseDuration(os.Getenv(key)); err == nil {
		return d
	}
	return def
}

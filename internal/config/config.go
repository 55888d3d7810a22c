package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Source types understood by the loader factory.
const (
	SourceFile     = "file"
	SourceS3       = "s3"
	SourceDynamoDB = "dynamodb"
	SourcePostgres = "postgres"
	SourceHTTP     = "http"
)

// Config holds all configuration for the application
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Source    SourceConfig    `yaml:"source"`
	Cache     CacheConfig     `yaml:"cache"`
	Analytics AnalyticsConfig `yaml:"analytics"`
	Logging   LoggingConfig   `yaml:"logging"`
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Port                int      `yaml:"port"`
	Host                string   `yaml:"host"`
	ReadTimeoutSeconds  int      `yaml:"read_timeout_seconds"`
	WriteTimeoutSeconds int      `yaml:"write_timeout_seconds"`
	CORSOrigins         []string `yaml:"cors_origins"`
}

// GetHost returns the server host, with container detection
func (c ServerConfig) GetHost() string {
	// On ECS/container, listen on all interfaces
	if os.Getenv("ECS_CONTAINER_METADATA_URI") != "" || os.Getenv("AWS_EXECUTION_ENV") != "" {
		return "0.0.0.0"
	}
	if host := os.Getenv("SERVER_HOST"); host != "" {
		return host
	}
	return c.Host
}

// Addr returns host:port for http.Server.
func (c ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.GetHost(), c.Port)
}

// ReadTimeout returns the read timeout as a duration
func (c ServerConfig) ReadTimeout() time.Duration {
	return time.Duration(c.ReadTimeoutSeconds) * time.Second
}

// WriteTimeout returns the write timeout as a duration
func (c ServerConfig) WriteTimeout() time.Duration {
	return time.Duration(c.WriteTimeoutSeconds) * time.Second
}

// SourceConfig selects where raw conversation payloads are loaded from
type SourceConfig struct {
	Type           string         `yaml:"type"` // file, s3, dynamodb, postgres or http
	File           string         `yaml:"file"`
	S3             S3Config       `yaml:"s3"`
	DynamoDB       DynamoDBConfig `yaml:"dynamodb"`
	Postgres       PostgresConfig `yaml:"postgres"`
	HTTP           HTTPConfig     `yaml:"http"`
	TimeoutSeconds int            `yaml:"timeout_seconds"`
}

// Timeout returns the load timeout as a duration
func (c SourceConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// S3Config locates one JSON export object
type S3Config struct {
	Bucket    string `yaml:"bucket"`
	Key       string `yaml:"key"`
	Region    string `yaml:"region"`
	AccessKey string `yaml:"access_key"`
	SecretKey string `yaml:"secret_key"`
	Endpoint  string `yaml:"endpoint"` // for S3-compatible stores
}

// DynamoDBConfig names the thread and message tables
type DynamoDBConfig struct {
	Region        string `yaml:"region"`
	ThreadsTable  string `yaml:"threads_table"`
	MessagesTable string `yaml:"messages_table"`
	Endpoint      string `yaml:"endpoint"`
}

// PostgresConfig holds the conversations table location
type PostgresConfig struct {
	DatabaseURL string `yaml:"database_url"`
	Table       string `yaml:"table"`
}

// HTTPConfig points at an endpoint serving the conversation export
type HTTPConfig struct {
	URL        string `yaml:"url"`
	Token      string `yaml:"token"` // sent as a bearer token when set
	MaxRetries int    `yaml:"max_retries"`
}

// CacheConfig holds Redis snapshot cache settings
type CacheConfig struct {
	Enabled        bool   `yaml:"enabled"`
	RedisAddr      string `yaml:"redis_addr"`
	RedisPassword  string `yaml:"redis_password"`
	RedisDB        int    `yaml:"redis_db"`
	Key            string `yaml:"key"`
	TTLSeconds     int    `yaml:"ttl_seconds"`
	LockTTLSeconds int    `yaml:"lock_ttl_seconds"`
}

// TTL returns the snapshot TTL as a duration
func (c CacheConfig) TTL() time.Duration {
	return time.Duration(c.TTLSeconds) * time.Second
}

// LockTTL returns the refresh lock TTL as a duration
func (c CacheConfig) LockTTL() time.Duration {
	return time.Duration(c.LockTTLSeconds) * time.Second
}

// AnalyticsConfig holds dashboard computation settings
type AnalyticsConfig struct {
	WindowDays             int     `yaml:"window_days"`
	HighValueThreshold     float64 `yaml:"high_value_threshold"`
	RefreshIntervalSeconds int     `yaml:"refresh_interval_seconds"`
}

// RefreshInterval returns the dashboard refresh interval as a duration
func (c AnalyticsConfig) RefreshInterval() time.Duration {
	return time.Duration(c.RefreshIntervalSeconds) * time.Second
}

// LoggingConfig holds structured logger settings
type LoggingConfig struct {
	Level     string `yaml:"level"`
	RedactPII *bool  `yaml:"redact_pii"` // defaults to true
}

// Redact reports whether email-like values are masked in logs.
func (c LoggingConfig) Redact() bool {
	return c.RedactPII == nil || *c.RedactPII
}

// Load reads and parses the configuration file
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config %s: %w", path, err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}

	cfg.applyDefaults()
	return &cfg, nil
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	var cfg Config
	cfg.applyDefaults()
	return &cfg
}

func (cfg *Config) applyDefaults() {
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Server.Host == "" {
		cfg.Server.Host = "localhost"
	}
	if cfg.Server.ReadTimeoutSeconds == 0 {
		cfg.Server.ReadTimeoutSeconds = 15
	}
	if cfg.Server.WriteTimeoutSeconds == 0 {
		cfg.Server.WriteTimeoutSeconds = 30
	}
	if len(cfg.Server.CORSOrigins) == 0 {
		cfg.Server.CORSOrigins = []string{"*"}
	}
	if cfg.Source.Type == "" {
		cfg.Source.Type = SourceFile
	}
	if cfg.Source.File == "" {
		cfg.Source.File = "data/conversations.json"
	}
	if cfg.Source.TimeoutSeconds == 0 {
		cfg.Source.TimeoutSeconds = 30
	}
	if cfg.Source.S3.Region == "" {
		cfg.Source.S3.Region = "us-east-1"
	}
	if cfg.Source.DynamoDB.Region == "" {
		cfg.Source.DynamoDB.Region = cfg.Source.S3.Region
	}
	if cfg.Source.DynamoDB.ThreadsTable == "" {
		cfg.Source.DynamoDB.ThreadsTable = "Threads"
	}
	if cfg.Source.DynamoDB.MessagesTable == "" {
		cfg.Source.DynamoDB.MessagesTable = "Conversations"
	}
	if cfg.Source.Postgres.Table == "" {
		cfg.Source.Postgres.Table = "conversations"
	}
	if cfg.Source.HTTP.MaxRetries == 0 {
		cfg.Source.HTTP.MaxRetries = 3
	}
	if cfg.Cache.RedisAddr == "" {
		cfg.Cache.RedisAddr = "localhost:6379"
	}
	if cfg.Cache.Key == "" {
		cfg.Cache.Key = "dashboard:snapshot"
	}
	if cfg.Cache.TTLSeconds == 0 {
		cfg.Cache.TTLSeconds = 300
	}
	if cfg.Cache.LockTTLSeconds == 0 {
		cfg.Cache.LockTTLSeconds = 60
	}
	if cfg.Analytics.WindowDays == 0 {
		cfg.Analytics.WindowDays = 30
	}
	if cfg.Analytics.HighValueThreshold == 0 {
		cfg.Analytics.HighValueThreshold = 70
	}
	if cfg.Analytics.RefreshIntervalSeconds == 0 {
		cfg.Analytics.RefreshIntervalSeconds = 300
	}
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
}

// Validate checks the settings the selected source needs.
func (cfg *Config) Validate() error {
	switch cfg.Source.Type {
	case SourceFile:
		if cfg.Source.File == "" {
			return fmt.Errorf("source.file is required for source type %q", SourceFile)
		}
	case SourceS3:
		if cfg.Source.S3.Bucket == "" || cfg.Source.S3.Key == "" {
			return fmt.Errorf("source.s3.bucket and source.s3.key are required for source type %q", SourceS3)
		}
	case SourceDynamoDB:
		if cfg.Source.DynamoDB.ThreadsTable == "" {
			return fmt.Errorf("source.dynamodb.threads_table is required for source type %q", SourceDynamoDB)
		}
	case SourcePostgres:
		if cfg.Source.Postgres.DatabaseURL == "" {
			return fmt.Errorf("source.postgres.database_url is required for source type %q", SourcePostgres)
		}
	case SourceHTTP:
		if cfg.Source.HTTP.URL == "" {
			return fmt.Errorf("source.http.url is required for source type %q", SourceHTTP)
		}
	default:
		return fmt.Errorf("unknown source type %q", cfg.Source.Type)
	}
	if cfg.Analytics.WindowDays < 1 {
		return fmt.Errorf("analytics.window_days must be positive, got %d", cfg.Analytics.WindowDays)
	}
	return nil
}

// LoadFromEnv loads configuration with environment variable overrides.
// It automatically loads a .env file (if present) before reading env vars,
// so secrets can live in .env locally and in real env vars on ECS.
// An empty path starts from Default().
func LoadFromEnv(path string) (*Config, error) {
	// Load .env file if it exists (no error if missing)
	_ = godotenv.Load()

	cfg := Default()
	if path != "" {
		var err error
		if cfg, err = Load(path); err != nil {
			return nil, err
		}
	}

	cfg.applyEnv()
	return cfg, nil
}

func (cfg *Config) applyEnv() {
	if v := os.Getenv("PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil && port > 0 {
			cfg.Server.Port = port
		}
	}
	if v := os.Getenv("SOURCE_TYPE"); v != "" {
		cfg.Source.Type = v
	}
	if v := os.Getenv("SOURCE_FILE"); v != "" {
		cfg.Source.File = v
	}
	if v := os.Getenv("S3_BUCKET"); v != "" {
		cfg.Source.S3.Bucket = v
	}
	if v := os.Getenv("S3_KEY"); v != "" {
		cfg.Source.S3.Key = v
	}
	if v := os.Getenv("SOURCE_URL"); v != "" {
		cfg.Source.HTTP.URL = v
	}
	if v := os.Getenv("SOURCE_TOKEN"); v != "" {
		cfg.Source.HTTP.Token = v
	}
	if v := os.Getenv("AWS_REGION"); v != "" {
		cfg.Source.S3.Region = v
		cfg.Source.DynamoDB.Region = v
	}

	// Database override (critical for ECS deployment where config.yaml has local defaults)
	if v := os.Getenv("DATABASE_URL"); v != "" {
		cfg.Source.Postgres.DatabaseURL = v
	}

	if v := os.Getenv("REDIS_ADDR"); v != "" {
		cfg.Cache.RedisAddr = v
		cfg.Cache.Enabled = true
	}
	if v := os.Getenv("REDIS_PASSWORD"); v != "" {
		cfg.Cache.RedisPassword = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
}

package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Server ServerConfig `json:"server"`

	// Relational store (profiles, conversations, messages)
	Database DatabaseConfig `json:"database"`

	// MongoDB backs the GridFS blob store
	MongoDB MongoDBConfig `json:"mongodb"`

	Storage StorageConfig `json:"storage"`

	Redis RedisConfig `json:"redis"`

	Auth AuthConfig `json:"auth"`

	Copilot CopilotConfig `json:"copilot"`

	// Change notification hub
	Notification NotificationConfig `json:"notification"`

	Logging LoggingConfig `json:"logging"`
}

// ServerConfig contains server-related configuration
type ServerConfig struct {
	Host          string `json:"host"`
	HTTPPort      string `json:"http_port"`
	HealthPort    string `json:"health_port"` // gRPC health service
	MediaPort     string `json:"media_port"`
	ReadTimeout   int    `json:"read_timeout"`
	WriteTimeout  int    `json:"write_timeout"`
	Environment   string `json:"environment"` // development, staging, production
	MediaBaseURL  string `json:"media_base_url"`
	AllowedOrigin string `json:"allowed_origin"`
	MaxUploadMB   int    `json:"max_upload_mb"`
}

// DatabaseConfig contains database connection configuration
type DatabaseConfig struct {
	Driver       string `json:"driver"` // mysql, postgres, sqlite
	Host         string `json:"host"`
	Port         string `json:"port"`
	Username     string `json:"username"`
	Password     string `json:"password"`
	DatabaseName string `json:"database_name"`
	SSLMode      string `json:"ssl_mode"`
	MaxOpenConns int    `json:"max_open_conns"`
	MaxIdleConns int    `json:"max_idle_conns"`

	// Overrides the DSN built from the values above
	DSN string `json:"-"`
}

type MongoDBConfig struct {
	Host     string `json:"host"`
	Port     string `json:"port"`
	Username string `json:"username"`
	Password string `json:"password"`
	Database string `json:"database"`
	Bucket   string `json:"bucket"`
}

// StorageConfig selects where attachment bytes live.
type StorageConfig struct {
	Backend       string `json:"backend"` // gridfs, s3, memory
	Bucket        string `json:"bucket"`
	S3Region      string `json:"s3_region"`
	S3Endpoint    string `json:"s3_endpoint"`
	PublicBaseURL string `json:"public_base_url"`
}

type RedisConfig struct {
	Enabled       bool   `json:"enabled"`
	Addr          string `json:"addr"`
	Password      string `json:"password"`
	DB            int    `json:"db"`
	ChannelPrefix string `json:"channel_prefix"`
}

type AuthConfig struct {
	JWTSecret string        `json:"-"`
	Issuer    string        `json:"issuer"`
	TokenTTL  time.Duration `json:"token_ttl"`
}

// CopilotConfig configures the diagnostic summary model endpoint.
type CopilotConfig struct {
	APIKey             string        `json:"-"`
	BaseURL            string        `json:"base_url"`
	Model              string        `json:"model"`
	Referer            string        `json:"referer"`
	Title              string        `json:"title"`
	Timeout            time.Duration `json:"timeout"`
	MaxImageDimension  int           `json:"max_image_dimension"`
	BreakerMaxFailures int           `json:"breaker_max_failures"`
	BreakerTimeout     time.Duration `json:"breaker_timeout"`
	RatePerMinute      int           `json:"rate_per_minute"`
	RateBurst          int           `json:"rate_burst"`
}

// NotificationConfig contains change hub configuration
type NotificationConfig struct {
	Workers           int `json:"workers"`             // Number of worker goroutines
	ChannelBufferSize int `json:"channel_buffer_size"` // Channel buffer size
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level      string `json:"level"`       // debug, info, warn, error
	Format     string `json:"format"`      // json, console
	OutputPath string `json:"output_path"` // stdout, stderr, or file path
}

// LoadConfig reads .env (if present) and the process environment.
func LoadConfig() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment variables")
	}

	host := getEnv("SERVER_HOST", "localhost")
	mediaPort := getEnv("MEDIA_SERVER_PORT", "8081")

	cfg := &Config{
		Server: ServerConfig{
			Host:          host,
			HTTPPort:      getEnv("HTTP_PORT", "8080"),
			HealthPort:    getEnv("HEALTH_PORT", "7001"),
			MediaPort:     mediaPort,
			ReadTimeout:   getEnvAsInt("READ_TIMEOUT", 15),
			WriteTimeout:  getEnvAsInt("WRITE_TIMEOUT", 15),
			Environment:   getEnv("ENVIRONMENT", "development"),
			MediaBaseURL:  getEnv("MEDIA_BASE_URL", fmt.Sprintf("http://%s:%s/media", host, mediaPort)),
			AllowedOrigin: getEnv("ALLOWED_ORIGIN", "*"),
			MaxUploadMB:   getEnvAsInt("MAX_UPLOAD_MB", 10),
		},
		Database: DatabaseConfig{
			Driver:       strings.ToLower(getEnv("DB_DRIVER", "mysql")),
			Host:         getEnv("DB_HOST", "localhost"),
			Port:         getEnv("DB_PORT", "3306"),
			Username:     getEnv("DB_USERNAME", "claridx"),
			Password:     getEnv("DB_PASSWORD", "claridx123"),
			DatabaseName: getEnv("DB_NAME", "claridx"),
			SSLMode:      getEnv("DB_SSLMODE", "disable"),
			MaxOpenConns: getEnvAsInt("DB_MAX_OPEN_CONNS", 25),
			MaxIdleConns: getEnvAsInt("DB_MAX_IDLE_CONNS", 5),
			DSN:          getEnv("DB_DSN", ""),
		},
		MongoDB: MongoDBConfig{
			Host:     getEnv("MONGO_HOST", "localhost"),
			Port:     getEnv("MONGO_PORT", "27017"),
			Username: getEnv("MONGO_USERNAME", ""),
			Password: getEnv("MONGO_PASSWORD", ""),
			Database: getEnv("MONGO_DATABASE", "claridx"),
			Bucket:   getEnv("MONGO_GRIDFS_BUCKET", "chat-files"),
		},
		Storage: StorageConfig{
			Backend:       strings.ToLower(getEnv("STORAGE_BACKEND", "gridfs")),
			Bucket:        getEnv("STORAGE_BUCKET", "chat-files"),
			S3Region:      getEnv("S3_REGION", "us-east-1"),
			S3Endpoint:    getEnv("S3_ENDPOINT", ""),
			PublicBaseURL: getEnv("STORAGE_PUBLIC_BASE_URL", ""),
		},
		Redis: RedisConfig{
			Enabled:       getEnvAsBool("REDIS_ENABLED", false),
			Addr:          getEnv("REDIS_ADDR", "localhost:6379"),
			Password:      getEnv("REDIS_PASSWORD", ""),
			DB:            getEnvAsInt("REDIS_DB", 0),
			ChannelPrefix: getEnv("REDIS_CHANNEL_PREFIX", "claridx"),
		},
		Auth: AuthConfig{
			JWTSecret: getEnv("JWT_SECRET", ""),
			Issuer:    getEnv("JWT_ISSUER", "claridx"),
			TokenTTL:  getEnvAsDuration("JWT_TTL", 24*time.Hour),
		},
		Copilot: CopilotConfig{
			APIKey:             getEnv("OPENROUTER_API_KEY", ""),
			BaseURL:            getEnv("OPENROUTER_BASE_URL", "https://openrouter.ai/api/v1"),
			Model:              getEnv("COPILOT_MODEL", "nvidia/nemotron-nano-12b-v2-vl:free"),
			Referer:            getEnv("COPILOT_REFERER", "http://localhost:3000"),
			Title:              getEnv("COPILOT_TITLE", "ClariDx Diagnostic Co-pilot"),
			Timeout:            getEnvAsDuration("COPILOT_TIMEOUT", 60*time.Second),
			MaxImageDimension:  getEnvAsInt("COPILOT_MAX_IMAGE_DIMENSION", 1568),
			BreakerMaxFailures: getEnvAsInt("COPILOT_BREAKER_MAX_FAILURES", 5),
			BreakerTimeout:     getEnvAsDuration("COPILOT_BREAKER_TIMEOUT", 30*time.Second),
			RatePerMinute:      getEnvAsInt("COPILOT_RATE_PER_MINUTE", 6),
			RateBurst:          getEnvAsInt("COPILOT_RATE_BURST", 2),
		},
		Notification: NotificationConfig{
			Workers:           getEnvAsInt("NOTIF_WORKERS", 5),
			ChannelBufferSize: getEnvAsInt("NOTIF_BUFFER_SIZE", 1000),
		},
		Logging: LoggingConfig{
			Level:      getEnv("LOG_LEVEL", "info"),
			Format:     getEnv("LOG_FORMAT", "json"),
			OutputPath: getEnv("LOG_OUTPUT", "stdout"),
		},
	}

	return cfg
}

// Validate rejects settings the services cannot start with.
func (cfg *Config) Validate() error {
	switch cfg.Database.Driver {
	case "mysql", "postgres", "sqlite":
	default:
		return fmt.Errorf("unsupported database driver %q", cfg.Database.Driver)
	}

	switch cfg.Storage.Backend {
	case "gridfs", "s3", "memory":
	default:
		return fmt.Errorf("unsupported storage backend %q", cfg.Storage.Backend)
	}

	if cfg.Auth.JWTSecret == "" && cfg.Server.Environment != "development" {
		return fmt.Errorf("JWT_SECRET is required in %s", cfg.Server.Environment)
	}

	return nil
}

func (cfg *Config) IsDevelopment() bool {
	return cfg.Server.Environment == "development"
}

func (cfg *Config) DSN() string {
	if cfg.Database.DSN != "" {
		return cfg.Database.DSN
	}

	switch cfg.Database.Driver {
	case "postgres":
		port := cfg.Database.Port
		if port == "" {
			port = "5432"
		}
		sslMode := cfg.Database.SSLMode
		if sslMode == "" {
			sslMode = "disable"
		}
		return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
			defaultString(cfg.Database.Host, "localhost"),
			port,
			cfg.Database.Username,
			cfg.Database.Password,
			cfg.Database.DatabaseName,
			sslMode,
		)
	case "sqlite":
		return defaultString(cfg.Database.DatabaseName, "claridx") + ".db"
	}

	return fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=True&loc=Local",
		cfg.Database.Username,
		cfg.Database.Password,
		defaultString(cfg.Database.Host, "localhost"),
		defaultString(cfg.Database.Port, "3306"),
		cfg.Database.DatabaseName,
	)
}

func (cfg *Config) GetMongoURI() string {
	if cfg.MongoDB.Username == "" || cfg.MongoDB.Password == "" {
		return fmt.Sprintf("mongodb://%s:%s/%s", cfg.MongoDB.Host, cfg.MongoDB.Port, cfg.MongoDB.Database)
	}
	return fmt.Sprintf("mongodb://%s:%s@%s:%s/%s?authSource=admin",
		cfg.MongoDB.Username,
		cfg.MongoDB.Password,
		cfg.MongoDB.Host,
		cfg.MongoDB.Port,
		cfg.MongoDB.Database,
	)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	value, err := strconv.Atoi(getEnv(key, ""))
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvAsBool(key string, defaultValue bool) bool {
	value, err := strconv.ParseBool(getEnv(key, ""))
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	value, err := time.ParseDuration(getEnv(key, ""))
	if err != nil {
		return defaultValue
	}
	return value
}

func defaultString(value, fallback string) string {
	if value == "" {
		return fallback
	}
	return value
}

package config

import (
	"fmt"
	"log"
	"time"

	"catalog-service/internal/cache"
	"catalog-service/internal/catalog"

	"github.com/kelseyhightower/envconfig"
)

// Cache backends.
const (
	CacheBackendRedis  = "redis"
	CacheBackendMemory = "memory"
)

// Config holds the application's configuration values.
// Tags like `envconfig:"HTTP_SERVER_PORT"` specify the environment variable name.
// `default:""` provides a default value if the env var is not set.
// `required:"true"` makes an environment variable mandatory.
type Config struct {
	AppEnv     string `envconfig:"APP_ENV" default:"development"` // e.g., development, staging, production
	LogLevel   string `envconfig:"LOG_LEVEL" default:"info"`      // e.g., debug, info, warn, error
	HttpServer ServerConfig
	GrpcServer GrpcServerConfig
	Postgres   PostgresConfig
	Redis      RedisConfig
	Cache      CacheConfig
}

// ServerConfig holds HTTP server-specific configurations.
type ServerConfig struct {
	Port         string        `envconfig:"HTTP_SERVER_PORT" default:"8080"`
	TimeoutRead  time.Duration `envconfig:"HTTP_SERVER_TIMEOUT_READ" default:"15s"`
	TimeoutWrite time.Duration `envconfig:"HTTP_SERVER_TIMEOUT_WRITE" default:"15s"`
	TimeoutIdle  time.Duration `envconfig:"HTTP_SERVER_TIMEOUT_IDLE" default:"60s"`
}

// GrpcServerConfig holds gRPC server-specific configurations.
type GrpcServerConfig struct {
	Port string `envconfig:"GRPC_SERVER_PORT" default:"9090"`
}

// PostgresConfig holds PostgreSQL connection details and pool settings.
type PostgresConfig struct {
	Host            string        `envconfig:"POSTGRES_HOST" required:"true"`
	Port            string        `envconfig:"POSTGRES_PORT" default:"5432"`
	User            string        `envconfig:"POSTGRES_USER" required:"true"`
	Password        string        `envconfig:"POSTGRES_PASSWORD" required:"true"`
	DBName          string        `envconfig:"POSTGRES_DBNAME" required:"true"`
	SSLMode         string        `envconfig:"POSTGRES_SSLMODE" default:"disable"`
	MaxOpenConns    int           `envconfig:"POSTGRES_MAX_OPEN_CONNS" default:"25"`
	MaxIdleConns    int           `envconfig:"POSTGRES_MAX_IDLE_CONNS" default:"5"`
	ConnMaxLifetime time.Duration `envconfig:"POSTGRES_CONN_MAX_LIFETIME" default:"30m"`
}

// DSN constructs the Data Source Name string for connecting to PostgreSQL.
func (pc *PostgresConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		pc.Host, pc.Port, pc.User, pc.Password, pc.DBName, pc.SSLMode)
}

// RedisConfig holds the Redis connection used by the redis cache backend.
// More than one address selects a cluster client.
type RedisConfig struct {
	Addrs    []string `envconfig:"REDIS_ADDRS" default:"localhost:6379"`
	Password string   `envconfig:"REDIS_PASSWORD"`
	DB       int      `envconfig:"REDIS_DB" default:"0"`
}

// CacheConfig selects the read cache backend and its TTLs.
type CacheConfig struct {
	Backend          string        `envconfig:"CACHE_BACKEND" default:"redis"`
	CategoryTreeTTL  time.Duration `envconfig:"CACHE_TTL_CATEGORY_TREE" default:"2m"`
	CategoryPageTTL  time.Duration `envconfig:"CACHE_TTL_CATEGORY_PAGE" default:"5m"`
	ProductListTTL   time.Duration `envconfig:"CACHE_TTL_PRODUCT_LIST" default:"2m"`
	ProductDetailTTL time.Duration `envconfig:"CACHE_TTL_PRODUCT_DETAIL" default:"5m"`
	WriteTimeout     time.Duration `envconfig:"CACHE_WRITE_TIMEOUT" default:"2s"`

	MemoryCapacity           int `envconfig:"CACHE_MEMORY_CAPACITY" default:"10000"`
	MemoryShards             int `envconfig:"CACHE_MEMORY_SHARDS" default:"10"`
	MemoryEvictionPercentage int `envconfig:"CACHE_MEMORY_EVICTION_PERCENTAGE" default:"10"`
}

// TTLs returns the per-view cache lifetimes.
func (c CacheConfig) TTLs() catalog.TTLs {
	return catalog.TTLs{
		CategoryTree:  c.CategoryTreeTTL,
		CategoryPage:  c.CategoryPageTTL,
		ProductList:   c.ProductListTTL,
		ProductDetail: c.ProductDetailTTL,
	}
}

// Memory returns the sizing of the in-process store. Entries never outlive
// the longest configured TTL.
func (c CacheConfig) Memory() cache.MemoryConfig {
	maxTTL := c.CategoryTreeTTL
	for _, ttl := range []time.Duration{c.CategoryPageTTL, c.ProductListTTL, c.ProductDetailTTL} {
		if ttl > maxTTL {
			maxTTL = ttl
		}
	}
	return cache.MemoryConfig{
		Capacity:           c.MemoryCapacity,
		NumShards:          c.MemoryShards,
		MaxTTL:             maxTTL,
		EvictionPercentage: c.MemoryEvictionPercentage,
	}
}

// ConfigError represents a configuration validation error.
type ConfigError struct {
	Field   string
	Message string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("config error in field %s: %s", e.Field, e.Message)
}

// Validate checks the values envconfig cannot. Lists and pages are cached
// for less time than the views they link to.
func (c *Config) Validate() error {
	if c.Postgres.MaxOpenConns < 0 || c.Postgres.MaxIdleConns < 0 {
		return &ConfigError{Field: "Postgres", Message: "connection pool sizes must not be negative"}
	}

	switch c.Cache.Backend {
	case CacheBackendRedis:
		if len(c.Redis.Addrs) == 0 {
			return &ConfigError{Field: "Redis.Addrs", Message: "at least one address is required for the redis backend"}
		}
	case CacheBackendMemory:
		if err := c.Cache.Memory().Validate(); err != nil {
			return &ConfigError{Field: "Cache", Message: err.Error()}
		}
	default:
		return &ConfigError{Field: "Cache.Backend", Message: fmt.Sprintf("must be %q or %q, got %q", CacheBackendRedis, CacheBackendMemory, c.Cache.Backend)}
	}

	ttls := map[string]time.Duration{
		"Cache.CategoryTreeTTL":  c.Cache.CategoryTreeTTL,
		"Cache.CategoryPageTTL":  c.Cache.CategoryPageTTL,
		"Cache.ProductListTTL":   c.Cache.ProductListTTL,
		"Cache.ProductDetailTTL": c.Cache.ProductDetailTTL,
	}
	for field, ttl := range ttls {
		if ttl <= 0 {
			return &ConfigError{Field: field, Message: "must be greater than 0"}
		}
	}
	if c.Cache.CategoryTreeTTL >= c.Cache.CategoryPageTTL {
		return &ConfigError{Field: "Cache.CategoryTreeTTL", Message: "must be shorter than Cache.CategoryPageTTL"}
	}
	if c.Cache.ProductListTTL >= c.Cache.ProductDetailTTL {
		return &ConfigError{Field: "Cache.ProductListTTL", Message: "must be shorter than Cache.ProductDetailTTL"}
	}
	return nil
}

// Load reads the configuration from environment variables and validates it.
func Load() (*Config, error) {
	log.Println("Loading service configuration...")
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process configuration: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	log.Printf("Configuration loaded successfully for APP_ENV: %s", cfg.AppEnv)
	return &cfg, nil
}

package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"

	domainconfig "versegraph/domain/config"
)

// Storage drivers
const (
	StorageDynamoDB = "dynamodb"
	StorageSQLite   = "sqlite"
)

// DevJWTSecret signs and validates tokens when JWT_SECRET is unset outside
// production
const DevJWTSecret = "versegraph-development-secret"

// Config holds all application configuration
type Config struct {
	// Server configuration
	ServerAddress string `yaml:"server_address"`
	Environment   string `yaml:"environment"`

	// Storage
	StorageDriver string `yaml:"storage_driver"`
	SQLitePath    string `yaml:"sqlite_path"`

	// AWS configuration
	AWSRegion     string `yaml:"aws_region"`
	DynamoDBTable string `yaml:"table_name"`
	NodeIDIndex   string `yaml:"node_id_index"` // GSI1 - node id lookups
	EventBusName  string `yaml:"event_bus_name"`

	// WebSocket configuration
	WebSocketEndpoint string `yaml:"websocket_endpoint"`
	ConnectionsTable  string `yaml:"connections_table"`

	// Logging
	LogLevel string `yaml:"log_level"`

	// Authentication
	JWTSecret   string   `yaml:"jwt_secret"`
	JWTIssuer   string   `yaml:"jwt_issuer"`
	JWTAudience []string `yaml:"jwt_audience"`

	// Feature flags
	EnableMetrics bool `yaml:"enable_metrics"`
	EnableTracing bool `yaml:"enable_tracing"`
	EnableCORS    bool `yaml:"enable_cors"`

	// Graph generation
	EnableUserLock      bool          `yaml:"enable_user_lock"`
	LockTimeout         time.Duration `yaml:"lock_timeout"`
	LockLease           time.Duration `yaml:"lock_lease"`
	GenerationNoteLimit int           `yaml:"generation_note_limit"`
	GraphCacheTTL       time.Duration `yaml:"graph_cache_ttl"`
	RateLimitPerMinute  int           `yaml:"rate_limit_per_minute"`
}

func defaults() *Config {
	return &Config{
		ServerAddress: ":8080",
		Environment:   "development",

		StorageDriver: StorageDynamoDB,
		SQLitePath:    "versegraph.db",

		AWSRegion:     "us-west-2",
		DynamoDBTable: "versegraph",
		NodeIDIndex:   "GSI1",
		EventBusName:  "versegraph-events",

		ConnectionsTable: "versegraph-connections",

		LogLevel: "info",

		JWTIssuer: "versegraph",

		EnableCORS: true,

		EnableUserLock:      true,
		LockTimeout:         30 * time.Second,
		LockLease:           2 * time.Minute,
		GenerationNoteLimit: 100,
		GraphCacheTTL:       60 * time.Second,
		RateLimitPerMinute:  10,
	}
}

// LoadConfig builds the configuration from defaults, then the YAML file named
// by CONFIG_FILE, then environment variables.
func LoadConfig() (*Config, error) {
	cfg := defaults()

	if path := os.Getenv("CONFIG_FILE"); path != "" {
		if err := cfg.loadFile(path); err != nil {
			return nil, err
		}
	}

	cfg.applyEnv()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	return nil
}

func (c *Config) applyEnv() {
	c.ServerAddress = getEnv("SERVER_ADDRESS", c.ServerAddress)
	c.Environment = getEnv("ENVIRONMENT", c.Environment)

	c.StorageDriver = getEnv("STORAGE_DRIVER", c.StorageDriver)
	c.SQLitePath = getEnv("SQLITE_PATH", c.SQLitePath)

	c.AWSRegion = getEnv("AWS_REGION", c.AWSRegion)
	c.DynamoDBTable = getEnv("TABLE_NAME", c.DynamoDBTable)
	c.NodeIDIndex = getEnv("NODE_ID_INDEX", c.NodeIDIndex)
	c.EventBusName = getEnv("EVENT_BUS_NAME", c.EventBusName)

	c.WebSocketEndpoint = getEnv("WEBSOCKET_ENDPOINT", c.WebSocketEndpoint)
	c.ConnectionsTable = getEnv("CONNECTIONS_TABLE", c.ConnectionsTable)

	c.LogLevel = getEnv("LOG_LEVEL", c.LogLevel)

	c.JWTSecret = getEnv("JWT_SECRET", c.JWTSecret)
	c.JWTIssuer = getEnv("JWT_ISSUER", c.JWTIssuer)

	c.EnableMetrics = getEnvBool("ENABLE_METRICS", c.EnableMetrics)
	c.EnableTracing = getEnvBool("ENABLE_TRACING", c.EnableTracing)
	c.EnableCORS = getEnvBool("ENABLE_CORS", c.EnableCORS)

	c.EnableUserLock = getEnvBool("ENABLE_USER_LOCK", c.EnableUserLock)
	c.LockTimeout = getEnvDuration("LOCK_TIMEOUT", c.LockTimeout)
	c.LockLease = getEnvDuration("LOCK_LEASE", c.LockLease)
	c.GenerationNoteLimit = getEnvInt("GENERATION_NOTE_LIMIT", c.GenerationNoteLimit)
	c.GraphCacheTTL = getEnvDuration("GRAPH_CACHE_TTL", c.GraphCacheTTL)
	c.RateLimitPerMinute = getEnvInt("RATE_LIMIT_PER_MINUTE", c.RateLimitPerMinute)
}

// Validate checks if all required configuration is present
func (c *Config) Validate() error {
	switch c.StorageDriver {
	case StorageDynamoDB:
		if c.DynamoDBTable == "" {
			return fmt.Errorf("TABLE_NAME is required for the dynamodb driver")
		}
	case StorageSQLite:
		if c.SQLitePath == "" {
			return fmt.Errorf("SQLITE_PATH is required for the sqlite driver")
		}
	default:
		return fmt.Errorf("unknown STORAGE_DRIVER %q", c.StorageDriver)
	}

	if c.GenerationNoteLimit <= 0 {
		return fmt.Errorf("GENERATION_NOTE_LIMIT must be positive, got %d", c.GenerationNoteLimit)
	}

	if c.Environment == "production" {
		if c.JWTSecret == "" {
			return fmt.Errorf("JWT_SECRET is required in production")
		}
		if c.StorageDriver != StorageDynamoDB {
			return fmt.Errorf("production requires the dynamodb driver")
		}
		if c.EventBusName == "" {
			return fmt.Errorf("EVENT_BUS_NAME is required")
		}
	}

	return nil
}

// DomainConfig derives the domain limits from the environment profile and
// the generation settings
func (c *Config) DomainConfig() *domainconfig.DomainConfig {
	dc := domainconfig.LoadDomainConfig(c.Environment)
	dc.GenerationNoteLimit = c.GenerationNoteLimit
	dc.EnableUserLock = c.EnableUserLock
	dc.LockTimeout = c.LockTimeout
	if c.GraphCacheTTL > 0 {
		dc.GraphViewCacheTTL = c.GraphCacheTTL
	}
	return dc
}

// IsDevelopment checks if running in development mode
func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

// IsProduction checks if running in production mode
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// getEnv gets an environment variable with a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvBool gets a boolean environment variable with a default value
func getEnvBool(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value == "true" || value == "1" || value == "yes"
}

// getEnvInt gets an integer environment variable with a default value
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

// getEnvDuration parses values like "30s" or "2m"
func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}

package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	BackendMemory = "memory"
	BackendRedis  = "redis"
	BackendMongo  = "mongo"
)

var ErrInvalidConfig = errors.New("invalid config")

type Config struct {
	HTTPPort        string        `yaml:"http_port"`
	CatalogURL      string        `yaml:"catalog_url"`
	CatalogPort     string        `yaml:"catalog_port"`
	SlotBackend     string        `yaml:"slot_backend"`
	RedisAddr       string        `yaml:"redis_addr"`
	RedisPassword   string        `yaml:"redis_password"`
	MongoURI        string        `yaml:"mongo_uri"`
	MongoDBName     string        `yaml:"mongo_db_name"`
	CatalogDBDriver string        `yaml:"catalog_db_driver"`
	CatalogDBDSN    string        `yaml:"catalog_db_dsn"`
	KafkaBrokers    []string      `yaml:"kafka_brokers"`
	KafkaTopic      string        `yaml:"kafka_topic"`
	AMQPURL         string        `yaml:"amqp_url"`
	AMQPQueue       string        `yaml:"amqp_queue"`
	DuplicatePolicy string        `yaml:"duplicate_policy"`
	RequestTimeout  time.Duration `yaml:"request_timeout"`
	SessionIdleTTL  time.Duration `yaml:"session_idle_ttl"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
	LogLevel        string        `yaml:"log_level"`
	LogFormat       string        `yaml:"log_format"`
}

func defaults() *Config {
	return &Config{
		HTTPPort:        "8080",
		CatalogURL:      "http://localhost:8081",
		CatalogPort:     "8081",
		SlotBackend:     BackendMemory,
		RedisAddr:       "localhost:6379",
		MongoURI:        "mongodb://localhost:27017",
		MongoDBName:     "basketdb",
		CatalogDBDriver: "sqlite",
		CatalogDBDSN:    "file:catalog.db",
		KafkaTopic:      "cart-notifications",
		AMQPQueue:       "cart-notifications",
		DuplicatePolicy: "separate",
		RequestTimeout:  30 * time.Second,
		SessionIdleTTL:  30 * time.Minute,
		ShutdownTimeout: 10 * time.Second,
		LogLevel:        "info",
		LogFormat:       "json",
	}
}

// Load builds the config from defaults, then the optional YAML file at path,
// then environment variables.
func Load(path string) (*Config, error) {
	cfg := defaults()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	cfg.HTTPPort = getEnv("HTTP_PORT", cfg.HTTPPort)
	cfg.CatalogURL = getEnv("CATALOG_URL", cfg.CatalogURL)
	cfg.CatalogPort = getEnv("CATALOG_PORT", cfg.CatalogPort)
	cfg.SlotBackend = getEnv("SLOT_BACKEND", cfg.SlotBackend)
	cfg.RedisAddr = getEnv("REDIS_ADDR", cfg.RedisAddr)
	cfg.RedisPassword = getEnv("REDIS_PASSWORD", cfg.RedisPassword)
	cfg.MongoURI = getEnv("MONGO_URI", cfg.MongoURI)
	cfg.MongoDBName = getEnv("MONGO_DB_NAME", cfg.MongoDBName)
	cfg.CatalogDBDriver = getEnv("CATALOG_DB_DRIVER", cfg.CatalogDBDriver)
	cfg.CatalogDBDSN = getEnv("CATALOG_DB_DSN", cfg.CatalogDBDSN)
	cfg.KafkaTopic = getEnv("KAFKA_TOPIC", cfg.KafkaTopic)
	cfg.AMQPURL = getEnv("AMQP_URL", cfg.AMQPURL)
	cfg.AMQPQueue = getEnv("AMQP_QUEUE", cfg.AMQPQueue)
	cfg.DuplicatePolicy = getEnv("DUPLICATE_POLICY", cfg.DuplicatePolicy)
	cfg.LogLevel = getEnv("LOG_LEVEL", cfg.LogLevel)
	cfg.LogFormat = getEnv("LOG_FORMAT", cfg.LogFormat)

	if brokers := getEnv("KAFKA_BROKERS", ""); brokers != "" {
		cfg.KafkaBrokers = splitList(brokers)
	}
	if err := durationEnv("REQUEST_TIMEOUT", &cfg.RequestTimeout); err != nil {
		return nil, err
	}
	if err := durationEnv("SESSION_IDLE_TTL", &cfg.SessionIdleTTL); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) Validate() error {
	switch c.SlotBackend {
	case BackendMemory, BackendRedis, BackendMongo:
	default:
		return fmt.Errorf("%w: unknown slot backend %q", ErrInvalidConfig, c.SlotBackend)
	}
	if c.RequestTimeout <= 0 {
		return fmt.Errorf("%w: request timeout must be positive", ErrInvalidConfig)
	}
	if c.SessionIdleTTL <= 0 {
		return fmt.Errorf("%w: session idle ttl must be positive", ErrInvalidConfig)
	}
	if c.CatalogURL == "" {
		return fmt.Errorf("%w: catalog url is required", ErrInvalidConfig)
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func durationEnv(key string, dst *time.Duration) error {
	v := getEnv(key, "")
	if v == "" {
		return nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fmt.Errorf("%w: %s %q: %v", ErrInvalidConfig, key, v, err)
	}
	*dst = d
	return nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Env      string
	LogLevel string
	Server   ServerConfig
	Database DatabaseConfig
	Redis    RedisConfig
	Kafka    KafkaConfig
	Pricing  PricingConfig
	Features FeatureFlags
}

type ServerConfig struct {
	Port         int
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

type DatabaseConfig struct {
	Driver       string
	Host         string
	Port         int
	User         string
	Password     string
	Name         string
	SSLMode      string
	MaxOpenConns int
	MaxIdleConns int
	MaxLifetime  time.Duration
}

func (d DatabaseConfig) ConnectionString() string {
	return "host=" + d.Host +
		" port=" + strconv.Itoa(d.Port) +
		" user=" + d.User +
		" password=" + d.Password +
		" dbname=" + d.Name +
		" sslmode=" + d.SSLMode
}

type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
	TTL      time.Duration
}

type KafkaConfig struct {
	Brokers        []string
	OrdersTopic    string
	ApprovalsTopic string
	ConsumerGroup  string
}

type FeatureFlags struct {
	EnableOrderEvents   bool
	EnableApprovalFeed  bool
	EnableCatalogCache  bool
	EnableDebugEndpoint bool
}

// Load reads configuration from the environment. Outside production a .env
// file in the working directory is loaded first; variables already set in
// the process environment win.
func Load() (*Config, error) {
	env := getEnvString("ENV", "development")
	if env != "production" {
		_ = godotenv.Load(getEnvString("ENV_FILE", ".env"))
	}

	pricingCfg, err := LoadPricing(getEnvString("PRICING_CONFIG_PATH", "config/pricing.yaml"))
	if err != nil {
		return nil, err
	}

	return &Config{
		Env:      env,
		LogLevel: getEnvString("LOG_LEVEL", "info"),
		Server: ServerConfig{
			Port:         getEnvInt("SERVER_PORT", 8085),
			ReadTimeout:  time.Duration(getEnvInt("SERVER_READ_TIMEOUT", 30)) * time.Second,
			WriteTimeout: time.Duration(getEnvInt("SERVER_WRITE_TIMEOUT", 30)) * time.Second,
		},
		Database: DatabaseConfig{
			Driver:       getEnvString("DB_DRIVER", "postgres"),
			Host:         getEnvString("DB_HOST", "localhost"),
			Port:         getEnvInt("DB_PORT", 5432),
			User:         getEnvString("DB_USER", "penzflow"),
			Password:     getEnvString("DB_PASSWORD", "penzflow"),
			Name:         getEnvString("DB_NAME", "penzflow"),
			SSLMode:      getEnvString("DB_SSLMODE", "disable"),
			MaxOpenConns: getEnvInt("DB_MAX_OPEN_CONNS", 20),
			MaxIdleConns: getEnvInt("DB_MAX_IDLE_CONNS", 5),
			MaxLifetime:  getEnvDuration("DB_CONN_MAX_LIFETIME", 30*time.Minute),
		},
		Redis: RedisConfig{
			Host:     getEnvString("REDIS_HOST", "localhost"),
			Port:     getEnvInt("REDIS_PORT", 6379),
			Password: getEnvString("REDIS_PASSWORD", ""),
			DB:       getEnvInt("REDIS_DB", 0),
			TTL:      getEnvDuration("REDIS_CATALOG_TTL", 10*time.Minute),
		},
		Kafka: KafkaConfig{
			Brokers:        getEnvList("KAFKA_BROKERS", []string{"localhost:9092"}),
			OrdersTopic:    getEnvString("KAFKA_ORDERS_TOPIC", "sales.orders"),
			ApprovalsTopic: getEnvString("KAFKA_APPROVALS_TOPIC", "sales.order-approvals"),
			ConsumerGroup:  getEnvString("KAFKA_CONSUMER_GROUP", "sales-service"),
		},
		Pricing: pricingCfg,
		Features: FeatureFlags{
			EnableOrderEvents:   getEnvBool("FEATURE_ORDER_EVENTS", true),
			EnableApprovalFeed:  getEnvBool("FEATURE_APPROVAL_FEED", true),
			EnableCatalogCache:  getEnvBool("FEATURE_CATALOG_CACHE", true),
			EnableDebugEndpoint: getEnvBool("FEATURE_DEBUG_ENDPOINT", false),
		},
	}, nil
}

func getEnvString(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}

func getEnvList(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const defaultJWTSecret = "your-secret-key"

// Config holds all configuration for the application
type Config struct {
	Env       Environment     `mapstructure:"-"`
	Server    ServerConfig    `mapstructure:"server"`
	Database  DatabaseConfig  `mapstructure:"db"`
	Redis     RedisConfig     `mapstructure:"redis"`
	JWT       JWTConfig       `mapstructure:"jwt"`
	Recommend RecommendConfig `mapstructure:"recommend"`
	Detector  DetectorConfig  `mapstructure:"detector"`
	Storage   StorageConfig   `mapstructure:"s3"`
	RateLimit RateLimitConfig `mapstructure:"rate_limit"`
	Log       LogConfig       `mapstructure:"log"`
}

type ServerConfig struct {
	Host           string        `mapstructure:"host"`
	Port           string        `mapstructure:"port" validate:"required,numeric"`
	ReadTimeout    time.Duration `mapstructure:"read_timeout"`
	WriteTimeout   time.Duration `mapstructure:"write_timeout"`
	MaxBodyBytes   int64         `mapstructure:"max_body_bytes" validate:"gt=0"`
	AllowedOrigins []string      `mapstructure:"allowed_origins"`
}

// Addr returns the listen address for the HTTP server
func (s ServerConfig) Addr() string {
	return s.Host + ":" + s.Port
}

type DatabaseConfig struct {
	Driver   string `mapstructure:"driver" validate:"oneof=postgres sqlite"`
	Host     string `mapstructure:"host" validate:"required_if=Driver postgres"`
	Port     string `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	Name     string `mapstructure:"name" validate:"required"`
	SSLMode  string `mapstructure:"ssl_mode"`
}

// DSN builds the connection string for the configured driver.
// For sqlite the database name is used as the file path.
func (d DatabaseConfig) DSN() string {
	if d.Driver == "sqlite" {
		return d.Name
	}
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.Name, d.SSLMode,
	)
}

type RedisConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Host     string `mapstructure:"host"`
	Port     string `mapstructure:"port"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
	URL      string `mapstructure:"url"`
}

type JWTConfig struct {
	Secret string        `mapstructure:"secret" validate:"required"`
	TTL    time.Duration `mapstructure:"ttl" validate:"gt=0"`
}

// RecommendConfig controls the ranking endpoint
type RecommendConfig struct {
	MaxResults int           `mapstructure:"max_results" validate:"gt=0"`
	CacheTTL   time.Duration `mapstructure:"cache_ttl"`
	// VocabularyTTL is how long the ingredient suggestion vocabulary is kept
	VocabularyTTL time.Duration `mapstructure:"vocabulary_ttl"`
}

// DetectorConfig points at the object-detection inference server
type DetectorConfig struct {
	BaseURL          string        `mapstructure:"base_url" validate:"omitempty,url"`
	Timeout          time.Duration `mapstructure:"timeout" validate:"gt=0"`
	MinConfidence    float64       `mapstructure:"min_confidence" validate:"gte=0,lte=1"`
	RequestsPerSec   float64       `mapstructure:"requests_per_second" validate:"gt=0"`
	Burst            int           `mapstructure:"burst" validate:"gt=0"`
	FailureThreshold uint32        `mapstructure:"failure_threshold" validate:"gt=0"`
	OpenTimeout      time.Duration `mapstructure:"open_timeout"`
}

type StorageConfig struct {
	Bucket string `mapstructure:"bucket"`
	Region string `mapstructure:"region"`
	Prefix string `mapstructure:"prefix"`
}

type RateLimitConfig struct {
	ImageLimit     int           `mapstructure:"image_limit"`
	RecommendLimit int           `mapstructure:"recommend_limit"`
	Window         time.Duration `mapstructure:"window"`
}

type LogConfig struct {
	Level  string `mapstructure:"level" validate:"oneof=debug info warn error"`
	Format string `mapstructure:"format" validate:"oneof=json console"`
}

// LoadConfig creates a new Config instance with values from defaults,
// environment variables and Docker secrets, in increasing priority order
// for secrets and decreasing for everything else.
func LoadConfig() (*Config, error) {
	env := GetEnvironment()

	v := viper.New()
	setDefaults(v, env)
	if err := bindEnv(v); err != nil {
		return nil, fmt.Errorf("failed to bind environment: %w", err)
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	cfg.Env = env

	// Docker secrets fill anything the environment left empty
	switch env {
	case Development, Test, Production:
		applySecrets(cfg)
	case CI:
		// CI uses environment variables, not Docker secrets
	default:
		return nil, fmt.Errorf("unknown environment: %s", env)
	}

	if err := ValidateConfig(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper, env Environment) {
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.read_timeout", "15s")
	v.SetDefault("server.write_timeout", "30s")
	v.SetDefault("server.max_body_bytes", 10<<20)
	v.SetDefault("server.allowed_origins", []string{"http://localhost:5173", "http://frontend:5173"})

	v.SetDefault("db.driver", "postgres")
	v.SetDefault("db.host", "localhost")
	v.SetDefault("db.port", "5432")
	v.SetDefault("db.user", "postgres")
	v.SetDefault("db.password", "postgres")
	v.SetDefault("db.name", "pantrychef")
	v.SetDefault("db.ssl_mode", "disable")

	v.SetDefault("redis.enabled", true)
	v.SetDefault("redis.host", "localhost")
	v.SetDefault("redis.port", "6379")
	v.SetDefault("redis.db", 0)

	v.SetDefault("jwt.secret", defaultJWTSecret)
	v.SetDefault("jwt.ttl", "24h")

	v.SetDefault("recommend.max_results", 50)
	v.SetDefault("recommend.cache_ttl", "10m")
	v.SetDefault("recommend.vocabulary_ttl", "30m")

	v.SetDefault("detector.base_url", "http://localhost:5000")
	v.SetDefault("detector.timeout", "30s")
	v.SetDefault("detector.min_confidence", 0.25)
	v.SetDefault("detector.requests_per_second", 4)
	v.SetDefault("detector.burst", 8)
	v.SetDefault("detector.failure_threshold", 5)
	v.SetDefault("detector.open_timeout", "30s")

	v.SetDefault("s3.prefix", "uploads/")

	v.SetDefault("rate_limit.image_limit", 30)
	v.SetDefault("rate_limit.recommend_limit", 120)
	v.SetDefault("rate_limit.window", "1h")

	v.SetDefault("log.level", "info")
	if env == Production {
		v.SetDefault("log.format", "json")
	} else {
		v.SetDefault("log.format", "console")
	}
}

var envBindings = map[string]string{
	"server.host":                  "SERVER_HOST",
	"server.port":                  "SERVER_PORT",
	"server.max_body_bytes":        "SERVER_MAX_BODY_BYTES",
	"server.allowed_origins":       "CORS_ALLOWED_ORIGINS",
	"db.driver":                    "DB_DRIVER",
	"db.host":                      "DB_HOST",
	"db.port":                      "DB_PORT",
	"db.user":                      "DB_USER",
	"db.password":                  "DB_PASSWORD",
	"db.name":                      "DB_NAME",
	"db.ssl_mode":                  "DB_SSL_MODE",
	"redis.enabled":                "REDIS_ENABLED",
	"redis.host":                   "REDIS_HOST",
	"redis.port":                   "REDIS_PORT",
	"redis.password":               "REDIS_PASSWORD",
	"redis.url":                    "REDIS_URL",
	"jwt.secret":                   "JWT_SECRET",
	"jwt.ttl":                      "JWT_TTL",
	"recommend.max_results":        "RECOMMEND_MAX_RESULTS",
	"recommend.cache_ttl":          "RECOMMEND_CACHE_TTL",
	"recommend.vocabulary_ttl":     "RECOMMEND_VOCABULARY_TTL",
	"detector.base_url":            "DETECTOR_URL",
	"detector.timeout":             "DETECTOR_TIMEOUT",
	"detector.min_confidence":      "DETECTOR_MIN_CONFIDENCE",
	"detector.requests_per_second": "DETECTOR_RPS",
	"detector.burst":               "DETECTOR_BURST",
	"detector.failure_threshold":   "DETECTOR_FAILURE_THRESHOLD",
	"detector.open_timeout":        "DETECTOR_OPEN_TIMEOUT",
	"s3.bucket":                    "S3_BUCKET_NAME",
	"s3.region":                    "AWS_REGION",
	"s3.prefix":                    "S3_PREFIX",
	"rate_limit.image_limit":       "RATE_LIMIT_IMAGE",
	"rate_limit.recommend_limit":   "RATE_LIMIT_RECOMMEND",
	"rate_limit.window":            "RATE_LIMIT_WINDOW",
	"log.level":                    "LOG_LEVEL",
	"log.format":                   "LOG_FORMAT",
}

func bindEnv(v *viper.Viper) error {
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	for key, name := range envBindings {
		if err := v.BindEnv(key, name); err != nil {
			return err
		}
	}
	// CI secrets keep their dedicated names
	if GetEnvironment() == CI {
		if err := v.BindEnv("db.password", "TEST_DB_PASSWORD", "DB_PASSWORD"); err != nil {
			return err
		}
		if err := v.BindEnv("jwt.secret", "TEST_JWT_SECRET", "JWT_SECRET"); err != nil {
			return err
		}
		if err := v.BindEnv("redis.url", "TEST_REDIS_URL", "REDIS_URL"); err != nil {
			return err
		}
	}
	return nil
}

// applySecrets overrides sensitive values with Docker secrets when present
func applySecrets(cfg *Config) {
	if s := readSecret("db_password"); s != "" {
		cfg.Database.Password = s
	}
	if s := readSecret("db_user"); s != "" {
		cfg.Database.User = s
	}
	if s := readSecret("jwt_secret"); s != "" {
		cfg.JWT.Secret = s
	}
	if s := readSecret("redis_password"); s != "" {
		cfg.Redis.Password = s
	}
	if s := readSecret("redis_url"); s != "" {
		cfg.Redis.URL = s
	}
}

// readSecret reads a Docker secret from the secrets directory
func readSecret(name string) string {
	secretsDir := os.Getenv("SECRETS_DIR")
	if secretsDir == "" {
		secretsDir = "/run/secrets"
	}
	secretPath := filepath.Join(secretsDir, name)
	if data, err := os.ReadFile(secretPath); err == nil {
		return strings.TrimSpace(string(data))
	}
	return ""
}

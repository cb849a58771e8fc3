package config

import (
	"encoding/base64"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/ikbal-mondal/krishi-setu-BackEnd/internal/platform/logger"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

const (
	StoreDriverMongo  = "mongo"
	StoreDriverMemory = "memory"

	AuthModeFirebase = "firebase"
	AuthModeJWT      = "jwt"
)

// Config holds all configuration for the service.
type Config struct {
	ServiceName string `mapstructure:"SERVICE_NAME"`
	Port        string `mapstructure:"PORT"`

	StoreDriver   string        `mapstructure:"STORE_DRIVER"`
	MongoURI      string        `mapstructure:"MONGO_URI"`
	MongoHost     string        `mapstructure:"MONGO_HOST"`
	MongoDatabase string        `mapstructure:"MONGO_DATABASE"`
	DBUser        string        `mapstructure:"DB_USER"`
	DBPass        string        `mapstructure:"DB_PASS"`
	StoreTimeout  time.Duration `mapstructure:"STORE_TIMEOUT"`

	AuthMode           string        `mapstructure:"AUTH_MODE"`
	FirebaseServiceKey string        `mapstructure:"FB_SERVICE_KEY"` // base64-encoded service account JSON
	JWTSecret          string        `mapstructure:"JWT_SECRET"`
	AuthTimeout        time.Duration `mapstructure:"AUTH_TIMEOUT"`

	NATSURL string `mapstructure:"NATS_URL"`

	RedisAddress       string `mapstructure:"REDIS_ADDRESS"`
	RedisPassword      string `mapstructure:"REDIS_PASSWORD"`
	RedisDB            int    `mapstructure:"REDIS_DB"`
	RateLimitPerMinute int    `mapstructure:"RATE_LIMIT_PER_MINUTE"`

	MinIOEndpoint  string `mapstructure:"MINIO_ENDPOINT"`
	MinIOAccessKey string `mapstructure:"MINIO_ACCESS_KEY"`
	MinIOSecretKey string `mapstructure:"MINIO_SECRET_KEY"`
	MinIOBucket    string `mapstructure:"MINIO_BUCKET"`
	MinIOUseSSL    bool   `mapstructure:"MINIO_USE_SSL"`

	CORSAllowedOrigins     string `mapstructure:"CORS_ALLOWED_ORIGINS"`
	PrometheusMetricsPort  string `mapstructure:"PROMETHEUS_METRICS_PORT"`
	OTExporterOTLPEndpoint string `mapstructure:"OTEL_EXPORTER_OTLP_ENDPOINT"`
	LogLevel               string `mapstructure:"LOG_LEVEL"`
	LogFormat              string `mapstructure:"LOG_FORMAT"`
	LogOutputFile          string `mapstructure:"LOG_OUTPUT_FILE"`
}

var configKeys = []string{
	"SERVICE_NAME", "PORT",
	"STORE_DRIVER", "MONGO_URI", "MONGO_HOST", "MONGO_DATABASE", "DB_USER", "DB_PASS", "STORE_TIMEOUT",
	"AUTH_MODE", "FB_SERVICE_KEY", "JWT_SECRET", "AUTH_TIMEOUT",
	"NATS_URL",
	"REDIS_ADDRESS", "REDIS_PASSWORD", "REDIS_DB", "RATE_LIMIT_PER_MINUTE",
	"MINIO_ENDPOINT", "MINIO_ACCESS_KEY", "MINIO_SECRET_KEY", "MINIO_BUCKET", "MINIO_USE_SSL",
	"CORS_ALLOWED_ORIGINS", "PROMETHEUS_METRICS_PORT", "OTEL_EXPORTER_OTLP_ENDPOINT",
	"LOG_LEVEL", "LOG_FORMAT", "LOG_OUTPUT_FILE",
}

// LoadConfig reads configuration from environment variables. A .env file, if any, is loaded
// by main before this is called.
func LoadConfig(appLogger *logger.Logger) (*Config, error) {
	v := viper.New()

	v.SetDefault("SERVICE_NAME", "crop-service")
	v.SetDefault("PORT", "5000")
	v.SetDefault("STORE_DRIVER", StoreDriverMongo)
	v.SetDefault("MONGO_HOST", "cluster0.azkcydb.mongodb.net")
	v.SetDefault("MONGO_DATABASE", "Krishi-Setu")
	v.SetDefault("STORE_TIMEOUT", "5s")
	v.SetDefault("AUTH_MODE", AuthModeFirebase)
	v.SetDefault("AUTH_TIMEOUT", "5s")
	v.SetDefault("REDIS_DB", 0)
	v.SetDefault("RATE_LIMIT_PER_MINUTE", 60)
	v.SetDefault("MINIO_BUCKET", "crop-images")
	v.SetDefault("MINIO_USE_SSL", false)
	v.SetDefault("CORS_ALLOWED_ORIGINS", "*")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")
	v.SetDefault("LOG_OUTPUT_FILE", "stdout")

	v.AutomaticEnv()
	// Unmarshal only sees keys viper knows about; AutomaticEnv alone is not enough for keys
	// without a default.
	for _, key := range configKeys {
		if err := v.BindEnv(key); err != nil {
			return nil, fmt.Errorf("bind env %s: %w", key, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		appLogger.Error("Failed to unmarshal configuration", zap.Error(err))
		return nil, err
	}

	if cfg.StoreDriver == StoreDriverMongo && cfg.MongoURI == "" {
		uri, err := BuildMongoURI(cfg.DBUser, cfg.DBPass, cfg.MongoHost)
		if err != nil {
			return nil, err
		}
		cfg.MongoURI = uri
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	appLogger.Debug("Configuration loaded",
		zap.String("service_name", cfg.ServiceName),
		zap.String("port", cfg.Port),
		zap.String("store_driver", cfg.StoreDriver),
		zap.String("mongo_database", cfg.MongoDatabase),
		zap.String("auth_mode", cfg.AuthMode),
		zap.Bool("firebase_key_present", cfg.FirebaseServiceKey != ""),
		zap.Bool("jwt_secret_present", cfg.JWTSecret != ""),
		zap.String("nats_url", cfg.NATSURL),
		zap.String("redis_address", cfg.RedisAddress),
		zap.String("minio_endpoint", cfg.MinIOEndpoint),
		zap.String("prometheus_port", cfg.PrometheusMetricsPort),
		zap.String("otel_endpoint", cfg.OTExporterOTLPEndpoint),
	)

	return &cfg, nil
}

// Validate checks the combinations LoadConfig cannot default.
func (c *Config) Validate() error {
	var errs []error
	if c.Port == "" {
		errs = append(errs, errors.New("PORT is required"))
	}
	switch c.StoreDriver {
	case StoreDriverMongo:
		if c.MongoURI == "" {
			errs = append(errs, errors.New("MONGO_URI or DB_USER/DB_PASS is required for the mongo store"))
		}
		if c.MongoDatabase == "" {
			errs = append(errs, errors.New("MONGO_DATABASE is required"))
		}
	case StoreDriverMemory:
	default:
		errs = append(errs, fmt.Errorf("unknown STORE_DRIVER %q", c.StoreDriver))
	}
	switch c.AuthMode {
	case AuthModeFirebase:
		if c.FirebaseServiceKey == "" {
			errs = append(errs, errors.New("FB_SERVICE_KEY is required when AUTH_MODE=firebase"))
		}
	case AuthModeJWT:
		if c.JWTSecret == "" {
			errs = append(errs, errors.New("JWT_SECRET is required when AUTH_MODE=jwt"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown AUTH_MODE %q", c.AuthMode))
	}
	if c.StoreTimeout <= 0 {
		errs = append(errs, errors.New("STORE_TIMEOUT must be positive"))
	}
	if c.AuthTimeout <= 0 {
		errs = append(errs, errors.New("AUTH_TIMEOUT must be positive"))
	}
	if c.RateLimitPerMinute < 0 {
		errs = append(errs, errors.New("RATE_LIMIT_PER_MINUTE must not be negative"))
	}
	return errors.Join(errs...)
}

// FirebaseCredentialsJSON decodes the base64 service account credential.
func (c *Config) FirebaseCredentialsJSON() ([]byte, error) {
	raw, err := base64.StdEncoding.DecodeString(strings.TrimSpace(c.FirebaseServiceKey))
	if err != nil {
		return nil, fmt.Errorf("decode FB_SERVICE_KEY: %w", err)
	}
	return raw, nil
}

// LoggerConfig returns the logging settings carried by this configuration.
func (c *Config) LoggerConfig() *logger.LoggerConfig {
	return logger.NewLoggerConfig(c.LogLevel, c.LogFormat, c.LogOutputFile)
}

// AllowedOrigins splits CORS_ALLOWED_ORIGINS on commas.
func (c *Config) AllowedOrigins() []string {
	var out []string
	for _, o := range strings.Split(c.CORSAllowedOrigins, ",") {
		if o = strings.TrimSpace(o); o != "" {
			out = append(out, o)
		}
	}
	return out
}

// BuildMongoURI assembles the Atlas SRV connection string from credentials.
func BuildMongoURI(user, pass, host string) (string, error) {
	if user == "" || pass == "" {
		return "", nil
	}
	if host == "" {
		return "", errors.New("MONGO_HOST is required when building the URI from DB_USER/DB_PASS")
	}
	return fmt.Sprintf("mongodb+srv://%s@%s/?appName=Cluster0", url.UserPassword(user, pass).String(), host), nil
}

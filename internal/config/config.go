package config

import (
	"errors"
	"time"

	"github.com/Abdurahmanit/GroupProject/estate-service/internal/platform/logger"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

const insecureJWTSecret = "change-me-estate-service-secret"

// Config holds all configuration for the service.
type Config struct {
	ServiceName    string `mapstructure:"SERVICE_NAME"`
	ServiceVersion string `mapstructure:"SERVICE_VERSION"`
	Environment    string `mapstructure:"ENVIRONMENT"`
	Port           string `mapstructure:"PORT"`
	CORSOrigin     string `mapstructure:"CORS_ORIGIN"`

	MongoURI      string `mapstructure:"MONGO_URI"`
	MongoDatabase string `mapstructure:"MONGO_DATABASE"`

	JWTSecret    string        `mapstructure:"JWT_SECRET"`
	JWTTTL       time.Duration `mapstructure:"JWT_TTL"`
	CookieSecure bool          `mapstructure:"COOKIE_SECURE"`

	// S3-compatible image store.
	MediaEndpoint      string `mapstructure:"MEDIA_ENDPOINT"`
	MediaAccessKey     string `mapstructure:"MEDIA_ACCESS_KEY"`
	MediaSecretKey     string `mapstructure:"MEDIA_SECRET_KEY"`
	MediaBucket        string `mapstructure:"MEDIA_BUCKET"`
	MediaUseSSL        bool   `mapstructure:"MEDIA_USE_SSL"`
	MediaPublicBaseURL string `mapstructure:"MEDIA_PUBLIC_BASE_URL"`
	UploadTmpDir       string `mapstructure:"UPLOAD_TMP_DIR"`
	MaxUploadBytes     int64  `mapstructure:"MAX_UPLOAD_BYTES"`

	RedisAddr       string        `mapstructure:"REDIS_ADDR"`
	RedisPassword   string        `mapstructure:"REDIS_PASSWORD"`
	RedisDB         int           `mapstructure:"REDIS_DB"`
	ListingCacheTTL time.Duration `mapstructure:"LISTING_CACHE_TTL"`

	NATSURL string `mapstructure:"NATS_URL"`

	SMTPHost        string `mapstructure:"SMTP_HOST"`
	SMTPPort        int    `mapstructure:"SMTP_PORT"`
	SMTPUsername    string `mapstructure:"SMTP_USERNAME"`
	SMTPPassword    string `mapstructure:"SMTP_PASSWORD"`
	SMTPSenderEmail string `mapstructure:"SMTP_SENDER_EMAIL"`

	CleanupInterval    time.Duration `mapstructure:"CLEANUP_INTERVAL"`
	CleanupMaxAttempts int           `mapstructure:"CLEANUP_MAX_ATTEMPTS"`

	PrometheusMetricsPort  string  `mapstructure:"PROMETHEUS_METRICS_PORT"`
	OTExporterOTLPEndpoint string  `mapstructure:"OTEL_EXPORTER_OTLP_ENDPOINT"`
	TraceSampleRatio       float64 `mapstructure:"TRACE_SAMPLE_RATIO"`
	LogLevel               string  `mapstructure:"LOG_LEVEL"`
	LogFormat              string  `mapstructure:"LOG_FORMAT"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("SERVICE_NAME", "estate-service")
	v.SetDefault("SERVICE_VERSION", "dev")
	v.SetDefault("ENVIRONMENT", "development")
	v.SetDefault("PORT", "5000")
	v.SetDefault("CORS_ORIGIN", "http://localhost:5173")
	v.SetDefault("MONGO_URI", "mongodb://localhost:27017")
	v.SetDefault("MONGO_DATABASE", "estate")
	v.SetDefault("JWT_SECRET", insecureJWTSecret)
	v.SetDefault("JWT_TTL", "24h")
	v.SetDefault("COOKIE_SECURE", false)
	v.SetDefault("MEDIA_ENDPOINT", "localhost:9000")
	v.SetDefault("MEDIA_ACCESS_KEY", "minioadmin")
	v.SetDefault("MEDIA_SECRET_KEY", "minioadmin")
	v.SetDefault("MEDIA_BUCKET", "estate-media")
	v.SetDefault("MEDIA_USE_SSL", false)
	v.SetDefault("MEDIA_PUBLIC_BASE_URL", "")
	v.SetDefault("UPLOAD_TMP_DIR", "")
	v.SetDefault("MAX_UPLOAD_BYTES", 32<<20)
	v.SetDefault("REDIS_ADDR", "localhost:6379")
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)
	v.SetDefault("LISTING_CACHE_TTL", "10m")
	v.SetDefault("NATS_URL", "nats://localhost:4222")
	v.SetDefault("SMTP_HOST", "")
	v.SetDefault("SMTP_PORT", 587)
	v.SetDefault("SMTP_USERNAME", "")
	v.SetDefault("SMTP_PASSWORD", "")
	v.SetDefault("SMTP_SENDER_EMAIL", "")
	v.SetDefault("CLEANUP_INTERVAL", "5m")
	v.SetDefault("CLEANUP_MAX_ATTEMPTS", 5)
	v.SetDefault("PROMETHEUS_METRICS_PORT", "9095")
	v.SetDefault("OTEL_EXPORTER_OTLP_ENDPOINT", "")
	v.SetDefault("TRACE_SAMPLE_RATIO", 1.0)
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")
}

// LoadConfig reads configuration from environment variables and an optional
// config.env file in the working directory.
func LoadConfig(appLogger *logger.Logger) (*Config, error) {
	return load(viper.New(), appLogger)
}

func load(v *viper.Viper, appLogger *logger.Logger) (*Config, error) {
	setDefaults(v)

	v.SetConfigName("config")
	v.SetConfigType("env")
	v.AddConfigPath(".")
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			appLogger.Error("Failed to read config file", zap.Error(err))
			return nil, err
		}
		appLogger.Debug("No config.env file found, relying on environment variables")
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		appLogger.Error("Failed to unmarshal configuration", zap.Error(err))
		return nil, err
	}

	if err := cfg.validate(appLogger); err != nil {
		return nil, err
	}

	appLogger.Debug("Configuration loaded",
		zap.String("service_name", cfg.ServiceName),
		zap.String("port", cfg.Port),
		zap.String("cors_origin", cfg.CORSOrigin),
		zap.Bool("mongo_uri_present", cfg.MongoURI != ""),
		zap.String("mongo_database", cfg.MongoDatabase),
		zap.Duration("jwt_ttl", cfg.JWTTTL),
		zap.String("media_endpoint", cfg.MediaEndpoint),
		zap.String("media_bucket", cfg.MediaBucket),
		zap.String("redis_addr", cfg.RedisAddr),
		zap.String("nats_url", cfg.NATSURL),
		zap.String("prometheus_port", cfg.PrometheusMetricsPort),
		zap.String("otel_endpoint", cfg.OTExporterOTLPEndpoint),
		zap.Float64("trace_sample_ratio", cfg.TraceSampleRatio),
		zap.String("environment", cfg.Environment),
	)
	return &cfg, nil
}

func (c *Config) validate(appLogger *logger.Logger) error {
	if c.JWTSecret == insecureJWTSecret || c.JWTSecret == "" {
		appLogger.Warn("JWT_SECRET is empty or set to its default insecure value. Please set a strong secret in your environment.")
	}
	if c.MongoURI == "" {
		return errors.New("MONGO_URI is not set")
	}
	if c.MongoDatabase == "" {
		return errors.New("MONGO_DATABASE is not set")
	}
	if c.JWTTTL <= 0 {
		return errors.New("JWT_TTL must be positive")
	}
	if c.MaxUploadBytes <= 0 {
		return errors.New("MAX_UPLOAD_BYTES must be positive")
	}
	if c.TraceSampleRatio < 0 || c.TraceSampleRatio > 1 {
		return errors.New("TRACE_SAMPLE_RATIO must be between 0 and 1")
	}
	if c.CleanupMaxAttempts <= 0 {
		c.CleanupMaxAttempts = 5
	}
	return nil
}

// SMTPEnabled reports whether enough SMTP settings are present to send mail.
func (c *Config) SMTPEnabled() bool {
	return c.SMTPHost != "" && c.SMTPSenderEmail != ""
}

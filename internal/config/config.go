package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/flexprice/invoicegen/internal/types"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Configuration struct {
	Deployment DeploymentConfig `validate:"required"`
	Server     ServerConfig     `validate:"required"`
	Logging    LoggingConfig    `validate:"required"`
	Storage    StorageConfig    `validate:"required"`
	Postgres   PostgresConfig
	SQLite     SQLiteConfig     `mapstructure:"sqlite"`
	Extraction ExtractionConfig `validate:"required"`
	Artifacts  ArtifactsConfig  `validate:"required"`
	S3         S3Config         `mapstructure:"s3"`
	Sentry     SentryConfig
	Cache      CacheConfig
}

type DeploymentConfig struct {
	Mode types.RunMode `validate:"required,oneof=local api aws_lambda_api"`
}

type ServerConfig struct {
	Address string `validate:"required"`
}

type LoggingConfig struct {
	Level types.LogLevel `validate:"required"`
}

type StorageConfig struct {
	Driver types.StorageDriver `validate:"required,oneof=postgres sqlite memory"`
}

type PostgresConfig struct {
	Host            string
	Port            int
	User            string
	Password        string
	DBName          string
	SSLMode         string
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
}

type SQLiteConfig struct {
	Path string
}

type ExtractionConfig struct {
	APIKey        string                        `mapstructure:"api_key"`
	BaseURL       string                        `mapstructure:"base_url"`
	Model         string                        `validate:"required"`
	Temperature   float32                       `validate:"gte=0,lte=2"`
	Timeout       time.Duration                 `validate:"required"`
	FailurePolicy types.ExtractionFailurePolicy `mapstructure:"failure_policy" validate:"required,oneof=fallback fail"`
}

type ArtifactsConfig struct {
	Backend       types.ArtifactBackend `validate:"required,oneof=s3 local"`
	LocalDir      string                `mapstructure:"local_dir"`
	Async         bool
	Redirect      bool
	MaxRetries    uint64        `mapstructure:"max_retries"`
	RetryInterval time.Duration `mapstructure:"retry_interval"`
	Timeout       time.Duration `validate:"required"`
	PresignExpiry time.Duration `mapstructure:"presign_expiry"`
	PoolSize      int           `mapstructure:"pool_size"`
}

type S3Config struct {
	Region    string
	Bucket    string
	KeyPrefix string `mapstructure:"key_prefix"`
	// Endpoint overrides the resolved endpoint, used for minio and localstack
	Endpoint     string
	UsePathStyle bool `mapstructure:"use_path_style"`
}

type SentryConfig struct {
	Enabled     bool
	DSN         string
	Environment string
	SampleRate  float64 `mapstructure:"sample_rate"`
}

type CacheConfig struct {
	Enabled bool
}

func NewConfig() (*Configuration, error) {
	// .env is optional, real environment variables win over it
	_ = godotenv.Load()

	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("./internal/config")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")

	v.SetEnvPrefix("INVOICEGEN")
	v.SetEnvKeyReplacer(strings.NewReplacer(
		".", "_",
		"-", "_",
	))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		fmt.Printf("Error reading config file: %v\n", err)
		if !errors.As(err, &viper.ConfigFileNotFoundError{}) {
			return nil, err
		}
	} else {
		fmt.Printf("Using config file: %s\n", v.ConfigFileUsed())
	}

	var config Configuration
	if err := v.Unmarshal(&config); err != nil {
		return nil, err
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return &config, nil
}

// setDefaults registers every key so AutomaticEnv can override it even when
// the yaml file does not mention it.
func setDefaults(v *viper.Viper) {
	d := GetDefaultConfig()
	v.SetDefault("deployment.mode", d.Deployment.Mode)
	v.SetDefault("server.address", d.Server.Address)
	v.SetDefault("logging.level", d.Logging.Level)
	v.SetDefault("storage.driver", d.Storage.Driver)
	v.SetDefault("postgres.host", "localhost")
	v.SetDefault("postgres.port", 5432)
	v.SetDefault("postgres.user", "invoicegen")
	v.SetDefault("postgres.password", "")
	v.SetDefault("postgres.dbname", "invoicegen")
	v.SetDefault("postgres.sslmode", "disable")
	v.SetDefault("postgres.max_open_conns", 10)
	v.SetDefault("postgres.max_idle_conns", 5)
	v.SetDefault("postgres.conn_max_lifetime", time.Hour)
	v.SetDefault("sqlite.path", d.SQLite.Path)
	v.SetDefault("extraction.api_key", "")
	v.SetDefault("extraction.base_url", d.Extraction.BaseURL)
	v.SetDefault("extraction.model", d.Extraction.Model)
	v.SetDefault("extraction.temperature", d.Extraction.Temperature)
	v.SetDefault("extraction.timeout", d.Extraction.Timeout)
	v.SetDefault("extraction.failure_policy", d.Extraction.FailurePolicy)
	v.SetDefault("artifacts.backend", d.Artifacts.Backend)
	v.SetDefault("artifacts.local_dir", d.Artifacts.LocalDir)
	v.SetDefault("artifacts.async", d.Artifacts.Async)
	v.SetDefault("artifacts.redirect", d.Artifacts.Redirect)
	v.SetDefault("artifacts.max_retries", d.Artifacts.MaxRetries)
	v.SetDefault("artifacts.retry_interval", d.Artifacts.RetryInterval)
	v.SetDefault("artifacts.timeout", d.Artifacts.Timeout)
	v.SetDefault("artifacts.presign_expiry", d.Artifacts.PresignExpiry)
	v.SetDefault("artifacts.pool_size", d.Artifacts.PoolSize)
	v.SetDefault("s3.region", "us-east-1")
	v.SetDefault("s3.bucket", "")
	v.SetDefault("s3.key_prefix", "")
	v.SetDefault("s3.endpoint", "")
	v.SetDefault("s3.use_path_style", false)
	v.SetDefault("sentry.enabled", false)
	v.SetDefault("sentry.dsn", "")
	v.SetDefault("sentry.environment", "local")
	v.SetDefault("sentry.sample_rate", 1.0)
	v.SetDefault("cache.enabled", d.Cache.Enabled)
}

func (c Configuration) Validate() error {
	validate := validator.New()
	if err := validate.Struct(c); err != nil {
		return err
	}

	if c.Artifacts.Backend == types.ArtifactBackendS3 && c.S3.Bucket == "" {
		return errors.New("s3.bucket is required when artifacts.backend is s3")
	}
	if c.Artifacts.Backend == types.ArtifactBackendLocal && c.Artifacts.LocalDir == "" {
		return errors.New("artifacts.local_dir is required when artifacts.backend is local")
	}
	if c.Storage.Driver == types.StorageDriverSQLite && c.SQLite.Path == "" {
		return errors.New("sqlite.path is required when storage.driver is sqlite")
	}
	return nil
}

// GetDefaultConfig returns a default configuration for local development
// This is useful for running scripts and tests
func GetDefaultConfig() *Configuration {
	return &Configuration{
		Deployment: DeploymentConfig{Mode: types.ModeLocal},
		Server:     ServerConfig{Address: ":8080"},
		Logging:    LoggingConfig{Level: types.LogLevelDebug},
		Storage:    StorageConfig{Driver: types.StorageDriverSQLite},
		SQLite:     SQLiteConfig{Path: "invoicegen.db"},
		Extraction: ExtractionConfig{
			BaseURL:       "https://openrouter.ai/api/v1",
			Model:         "gpt-3.5-turbo",
			Temperature:   0.1,
			Timeout:       20 * time.Second,
			FailurePolicy: types.ExtractionFailurePolicyFallback,
		},
		Artifacts: ArtifactsConfig{
			Backend:       types.ArtifactBackendLocal,
			LocalDir:      "invoices",
			MaxRetries:    3,
			RetryInterval: 200 * time.Millisecond,
			Timeout:       30 * time.Second,
			PresignExpiry: 15 * time.Minute,
			PoolSize:      4,
		},
		Cache: CacheConfig{Enabled: true},
	}
}

func (c PostgresConfig) GetDSN() string {
	return fmt.Sprintf(
		"user=%s password=%s dbname=%s host=%s port=%d sslmode=%s",
		c.User,
		c.Password,
		c.DBName,
		c.Host,
		c.Port,
		c.SSLMode,
	)
}

package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration for the service
type Config struct {
	Server     ServerConfig
	Database   PostgresConfig `mapstructure:"postgres"`
	Redis      RedisConfig
	Auth       AuthConfig
	Push       PushConfig
	Images     ImageConfig
	Retention  RetentionConfig
	Monitoring MonitoringConfig
}

// ServerConfig carries no write timeout: the SSE and websocket endpoints
// hold their response open for the connection lifetime.
type ServerConfig struct {
	Port            int           `mapstructure:"port"`
	Host            string        `mapstructure:"host"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
	AllowedOrigins  []string      `mapstructure:"allowed_origins"`
}

type PostgresConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	DBName   string `mapstructure:"dbname"`
	SSLMode  string `mapstructure:"sslmode"`
}

type RedisConfig struct {
	Host     string        `mapstructure:"host"`
	Port     int           `mapstructure:"port"`
	Password string        `mapstructure:"password"`
	DB       int           `mapstructure:"db"`
	ImageTTL time.Duration `mapstructure:"image_ttl"`
}

type AuthConfig struct {
	JWTSecret  string        `mapstructure:"jwt_secret"`
	TokenTTL   time.Duration `mapstructure:"token_ttl"`
	BcryptCost int           `mapstructure:"bcrypt_cost"`
}

type PushConfig struct {
	VAPIDPublicKey  string `mapstructure:"vapid_public_key"`
	VAPIDPrivateKey string `mapstructure:"vapid_private_key"`
	Subject         string `mapstructure:"subject"`
	TTL             int    `mapstructure:"ttl"`
}

type ImageConfig struct {
	MaxUploadBytes int64 `mapstructure:"max_upload_bytes"`
	MaxDimension   int   `mapstructure:"max_dimension"`
	JPEGQuality    int   `mapstructure:"jpeg_quality"`
}

type RetentionConfig struct {
	MaxAge        time.Duration `mapstructure:"max_age"`
	CheckInterval time.Duration `mapstructure:"check_interval"`
}

type MonitoringConfig struct {
	LogLevel string `mapstructure:"log_level"`
}

// Load initializes configuration from environment variables and config file
func Load() (*Config, error) {
	viper.SetEnvPrefix("ESPVIEW")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "__"))
	viper.AutomaticEnv()

	// Set defaults
	setDefaults()

	// Load config file if exists
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath("./config")
	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	if err := validateConfig(&config); err != nil {
		return nil, fmt.Errorf("config validation error: %w", err)
	}

	return &config, nil
}

func setDefaults() {
	// Server defaults
	viper.SetDefault("server.port", 8080)
	viper.SetDefault("server.host", "0.0.0.0")
	viper.SetDefault("server.read_timeout", "15s")
	viper.SetDefault("server.shutdown_timeout", "30s")
	viper.SetDefault("server.allowed_origins", []string{"*"})

	// Database defaults
	viper.SetDefault("postgres.sslmode", "disable")

	// Redis defaults
	viper.SetDefault("redis.db", 0)
	viper.SetDefault("redis.image_ttl", "24h")

	// Auth defaults
	viper.SetDefault("auth.token_ttl", "1h")
	viper.SetDefault("auth.bcrypt_cost", 10)

	// Push defaults
	viper.SetDefault("push.ttl", 60)

	// Image defaults
	viper.SetDefault("images.max_upload_bytes", 10*1024*1024) // 10MB
	viper.SetDefault("images.max_dimension", 1280)
	viper.SetDefault("images.jpeg_quality", 80)

	// Retention defaults: max_age 0 keeps everything
	viper.SetDefault("retention.max_age", "0")
	viper.SetDefault("retention.check_interval", "1h")

	// Monitoring defaults
	viper.SetDefault("monitoring.log_level", "info")
}

func validateConfig(config *Config) error {
	if config.Database.Host == "" {
		return fmt.Errorf("postgres host is required")
	}
	if config.Auth.JWTSecret == "" {
		return fmt.Errorf("auth jwt_secret is required")
	}
	if config.Images.JPEGQuality < 1 || config.Images.JPEGQuality > 100 {
		return fmt.Errorf("images jpeg_quality must be between 1 and 100")
	}
	return nil
}

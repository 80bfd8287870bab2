package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Server    ServerConfig
	Mongo     MongoConfig
	Security  SecurityConfig
	RateLimit RateLimitConfig
	Events    EventsConfig
	Media     MediaConfig
	Logger    LoggerConfig
}

type ServerConfig struct {
	AppEnv         string
	Port           string
	RequestTimeout time.Duration
}

type MongoConfig struct {
	URI            string
	Database       string
	ConnectTimeout time.Duration
	EnsureIndexes  bool
}

type SecurityConfig struct {
	BodyLimitBytes int64
	CORSOrigins    []string
}

type RateLimitConfig struct {
	Max      int64
	Window   time.Duration
	RedisURL string
}

type EventsConfig struct {
	RabbitMQURL string
	Exchange    string
}

type MediaConfig struct {
	CloudinaryURL string
	Folder        string
}

type LoggerConfig struct {
	Level  string
	Format string
}

func (c *Config) IsDevelopment() bool {
	return c.Server.AppEnv == "development"
}

func (c *Config) IsProduction() bool {
	return c.Server.AppEnv == "production"
}

// Load reads configuration from the environment, after loading a .env file
// if one is present.
func Load() (*Config, error) {
	_ = godotenv.Load()
	return FromViper(newViper())
}

func newViper() *viper.Viper {
	v := viper.New()
	v.SetDefault("APP_ENV", "development")
	v.SetDefault("PORT", "8080")
	v.SetDefault("REQUEST_TIMEOUT", "10s")
	v.SetDefault("MONGO_URI", "mongodb://localhost:27017")
	v.SetDefault("MONGO_DB", "product_catalog")
	v.SetDefault("MONGO_CONNECT_TIMEOUT", "10s")
	v.SetDefault("MONGO_ENSURE_INDEXES", true)
	v.SetDefault("BODY_LIMIT_BYTES", 10*1024)
	v.SetDefault("CORS_ORIGINS", "*")
	v.SetDefault("API_LIMIT", 100)
	v.SetDefault("RATE_LIMIT_WINDOW_MS", 15*60*1000)
	v.SetDefault("REDIS_URL", "")
	v.SetDefault("RABBITMQ_URL", "")
	v.SetDefault("RABBITMQ_EXCHANGE", "catalog.events")
	v.SetDefault("CLOUDINARY_URL", "")
	v.SetDefault("CLOUDINARY_FOLDER", "catalog/products")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "")
	v.AutomaticEnv()
	return v
}

// FromViper builds a Config from an already populated viper instance.
func FromViper(v *viper.Viper) (*Config, error) {
	requestTimeout, err := time.ParseDuration(v.GetString("REQUEST_TIMEOUT"))
	if err != nil {
		return nil, fmt.Errorf("invalid REQUEST_TIMEOUT: %w", err)
	}
	connectTimeout, err := time.ParseDuration(v.GetString("MONGO_CONNECT_TIMEOUT"))
	if err != nil {
		return nil, fmt.Errorf("invalid MONGO_CONNECT_TIMEOUT: %w", err)
	}

	cfg := &Config{
		Server: ServerConfig{
			AppEnv:         v.GetString("APP_ENV"),
			Port:           strings.TrimPrefix(v.GetString("PORT"), ":"),
			RequestTimeout: requestTimeout,
		},
		Mongo: MongoConfig{
			URI:            v.GetString("MONGO_URI"),
			Database:       v.GetString("MONGO_DB"),
			ConnectTimeout: connectTimeout,
			EnsureIndexes:  v.GetBool("MONGO_ENSURE_INDEXES"),
		},
		Security: SecurityConfig{
			BodyLimitBytes: v.GetInt64("BODY_LIMIT_BYTES"),
			CORSOrigins:    splitList(v.GetString("CORS_ORIGINS")),
		},
		RateLimit: RateLimitConfig{
			Max:      v.GetInt64("API_LIMIT"),
			Window:   time.Duration(v.GetInt64("RATE_LIMIT_WINDOW_MS")) * time.Millisecond,
			RedisURL: v.GetString("REDIS_URL"),
		},
		Events: EventsConfig{
			RabbitMQURL: v.GetString("RABBITMQ_URL"),
			Exchange:    v.GetString("RABBITMQ_EXCHANGE"),
		},
		Media: MediaConfig{
			CloudinaryURL: v.GetString("CLOUDINARY_URL"),
			Folder:        v.GetString("CLOUDINARY_FOLDER"),
		},
		Logger: LoggerConfig{
			Level:  v.GetString("LOG_LEVEL"),
			Format: v.GetString("LOG_FORMAT"),
		},
	}
	if cfg.Logger.Format == "" {
		cfg.Logger.Format = "text"
		if cfg.IsProduction() {
			cfg.Logger.Format = "json"
		}
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	var errs []error
	if c.Server.Port == "" {
		errs = append(errs, errors.New("PORT must not be empty"))
	}
	if c.Server.RequestTimeout <= 0 {
		errs = append(errs, errors.New("REQUEST_TIMEOUT must be positive"))
	}
	if c.Mongo.URI == "" || c.Mongo.Database == "" {
		errs = append(errs, errors.New("MONGO_URI and MONGO_DB are required"))
	}
	if c.Security.BodyLimitBytes <= 0 {
		errs = append(errs, errors.New("BODY_LIMIT_BYTES must be positive"))
	}
	if c.RateLimit.Max <= 0 || c.RateLimit.Window <= 0 {
		errs = append(errs, errors.New("API_LIMIT and RATE_LIMIT_WINDOW_MS must be positive"))
	}
	return errors.Join(errs...)
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

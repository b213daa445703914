// config/config.go
package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// Config holds every setting the server reads from the environment
type Config struct {
	Server   ServerConfig   `koanf:"server"`
	Database DatabaseConfig `koanf:"database"`
	Auth     AuthConfig     `koanf:"auth"`
	Payment  PaymentConfig  `koanf:"payment"`
	Mail     MailConfig     `koanf:"mail"`
	Notify   NotifyConfig   `koanf:"notify"`
	Security SecurityConfig `koanf:"security"`
	Log      LogConfig      `koanf:"log"`
}

type ServerConfig struct {
	Port            string        `koanf:"port"`
	Environment     string        `koanf:"environment"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`
}

// DatabaseConfig describes the MongoDB deployment. When URI is empty and Host
// is set the Atlas connection string is assembled from User, Password and
// Host. With neither the server connects to a local mongod.
type DatabaseConfig struct {
	URI      string `koanf:"uri"`
	User     string `koanf:"user"`
	Password string `koanf:"password"`
	Host     string `koanf:"host"`
	Name     string `koanf:"name"`
}

type AuthConfig struct {
	TokenSecret string        `koanf:"token_secret"`
	TokenTTL    time.Duration `koanf:"token_ttl"`
}

type PaymentConfig struct {
	SecretKey string `koanf:"secret_key"`
	Currency  string `koanf:"currency"`
}

type MailConfig struct {
	Provider      string `koanf:"provider"` // postmark, sendgrid or log
	PostmarkToken string `koanf:"postmark_token"`
	SendgridKey   string `koanf:"sendgrid_key"`
	Sender        string `koanf:"sender"`
}

type NotifyConfig struct {
	Queue      string `koanf:"queue"` // memory or amqp
	AMQPURL    string `koanf:"amqp_url"`
	QueueName  string `koanf:"queue_name"`
	Workers    int    `koanf:"workers"`
	Buffer     int    `koanf:"buffer"`
	MaxRetries int    `koanf:"max_retries"`
}

type SecurityConfig struct {
	CORSOrigins       []string      `koanf:"cors_origins"`
	RateLimitRequests int           `koanf:"rate_limit_requests"`
	RateLimitWindow   time.Duration `koanf:"rate_limit_window"`
}

type LogConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
}

// IsProduction reports whether cookies must be issued for cross-site use
func (c *Config) IsProduction() bool {
	return strings.EqualFold(c.Server.Environment, "production")
}

const localMongoURI = "mongodb://localhost:27017"

// MongoURI returns the connection string for the database
func (c *Config) MongoURI() string {
	if c.Database.URI != "" {
		return c.Database.URI
	}
	if c.Database.Host == "" {
		return localMongoURI
	}
	return fmt.Sprintf("mongodb+srv://%s:%s@%s/?retryWrites=true&w=majority",
		url.QueryEscape(c.Database.User), url.QueryEscape(c.Database.Password), c.Database.Host)
}

func defaultConfig() Config {
	return Config{
		Server: ServerConfig{
			Port:            "9000",
			Environment:     "development",
			ShutdownTimeout: 10 * time.Second,
		},
		Database: DatabaseConfig{
			Name: "mediHub",
		},
		Auth: AuthConfig{
			TokenTTL: 365 * 24 * time.Hour,
		},
		Payment: PaymentConfig{
			Currency: "usd",
		},
		Mail: MailConfig{
			Provider: "log",
		},
		Notify: NotifyConfig{
			Queue:      "memory",
			QueueName:  "medihub_notifications",
			Workers:    2,
			Buffer:     256,
			MaxRetries: 3,
		},
		Security: SecurityConfig{
			CORSOrigins:       []string{"http://localhost:5173", "http://localhost:5174"},
			RateLimitRequests: 100,
			RateLimitWindow:   time.Minute,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "json",
		},
	}
}

// envKeys maps environment variable names to config paths. Unlisted
// variables are ignored.
var envKeys = map[string]string{
	"PORT":                "server.port",
	"NODE_ENV":            "server.environment",
	"SHUTDOWN_TIMEOUT":    "server.shutdown_timeout",
	"MONGODB_URI":         "database.uri",
	"DB_USER":             "database.user",
	"DB_PASS":             "database.password",
	"DB_HOST":             "database.host",
	"DB_NAME":             "database.name",
	"ACCESS_TOKEN_SECRET": "auth.token_secret",
	"TOKEN_TTL":           "auth.token_ttl",
	"STRIPE_SECRET_KEY":   "payment.secret_key",
	"PAYMENT_CURRENCY":    "payment.currency",
	"MAIL_PROVIDER":       "mail.provider",
	"POSTMARK_API_TOKEN":  "mail.postmark_token",
	"SENDGRID_API_KEY":    "mail.sendgrid_key",
	"EMAIL_SENDER":        "mail.sender",
	"NOTIFY_QUEUE":        "notify.queue",
	"AMQP_URL":            "notify.amqp_url",
	"NOTIFY_QUEUE_NAME":   "notify.queue_name",
	"NOTIFY_WORKERS":      "notify.workers",
	"NOTIFY_BUFFER":       "notify.buffer",
	"NOTIFY_MAX_RETRIES":  "notify.max_retries",
	"CORS_ORIGINS":        "security.cors_origins",
	"RATE_LIMIT_REQUESTS": "security.rate_limit_requests",
	"RATE_LIMIT_WINDOW":   "security.rate_limit_window",
	"LOG_LEVEL":           "log.level",
	"LOG_FORMAT":          "log.format",
}

func envTransform(key string) string {
	return envKeys[key]
}

// Load reads .env (if present) and the process environment on top of the
// built-in defaults. The returned bool reports whether a .env file was found.
func Load() (*Config, bool, error) {
	dotenv := godotenv.Load() == nil

	k := koanf.New(".")
	if err := k.Load(structs.Provider(defaultConfig(), "koanf"), nil); err != nil {
		return nil, dotenv, fmt.Errorf("failed to load defaults: %w", err)
	}
	if err := k.Load(env.Provider("", ".", envTransform), nil); err != nil {
		return nil, dotenv, fmt.Errorf("failed to load environment variables: %w", err)
	}

	// CORS_ORIGINS arrives as a comma separated string
	if raw, ok := k.Get("security.cors_origins").(string); ok {
		if err := k.Set("security.cors_origins", splitList(raw)); err != nil {
			return nil, dotenv, fmt.Errorf("failed to set cors origins: %w", err)
		}
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, dotenv, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, dotenv, fmt.Errorf("configuration validation failed: %w", err)
	}
	return cfg, dotenv, nil
}

func splitList(raw string) []string {
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// Validate checks the settings the server cannot start without
func (c *Config) Validate() error {
	var errs []error
	if c.Auth.TokenSecret == "" {
		errs = append(errs, errors.New("ACCESS_TOKEN_SECRET is required"))
	}
	if c.Auth.TokenTTL <= 0 {
		errs = append(errs, errors.New("TOKEN_TTL must be positive"))
	}
	if c.Database.URI == "" && c.Database.Host != "" && (c.Database.User == "" || c.Database.Password == "") {
		errs = append(errs, errors.New("DB_USER and DB_PASS are required with DB_HOST"))
	}
	switch c.Mail.Provider {
	case "log":
	case "postmark":
		if c.Mail.PostmarkToken == "" {
			errs = append(errs, errors.New("POSTMARK_API_TOKEN is required for the postmark provider"))
		}
	case "sendgrid":
		if c.Mail.SendgridKey == "" {
			errs = append(errs, errors.New("SENDGRID_API_KEY is required for the sendgrid provider"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown MAIL_PROVIDER %q", c.Mail.Provider))
	}
	switch c.Notify.Queue {
	case "memory":
	case "amqp":
		if c.Notify.AMQPURL == "" {
			errs = append(errs, errors.New("AMQP_URL is required for the amqp queue"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown NOTIFY_QUEUE %q", c.Notify.Queue))
	}
	if c.Notify.Workers < 1 {
		errs = append(errs, errors.New("NOTIFY_WORKERS must be at least 1"))
	}
	return errors.Join(errs...)
}

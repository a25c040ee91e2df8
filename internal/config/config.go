package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Store drivers.
const (
	StoreDriverMongo    = "mongo"
	StoreDriverPostgres = "postgres"
)

// Notification queue backends.
const (
	QueueInProcess = "inprocess"
	QueueRedis     = "redis"
)

// Config aggregates runtime configuration for the service.
type Config struct {
	App          AppConfig
	Store        StoreConfig
	Redis        RedisConfig
	Logger       LoggerConfig
	Auth         AuthConfig
	Mail         MailConfig
	Notification NotificationConfig
	Attachments  AttachmentConfig
}

// AppConfig controls server level behavior.
type AppConfig struct {
	Name                  string
	Env                   string
	Host                  string
	Port                  string
	Version               string
	RequestTimeoutSeconds int
	BodyLimitBytes        int
}

// StoreConfig selects and configures the document store.
type StoreConfig struct {
	Driver          string
	ConnectAttempts int
	Mongo           MongoConfig
	Postgres        PostgresConfig
}

// MongoConfig holds MongoDB connection values.
type MongoConfig struct {
	URI      string
	Database string
}

// PostgresConfig holds DB connection values.
type PostgresConfig struct {
	DSN            string
	MaxConns       int32
	MinConns       int32
	RunMigrations  bool
	MigrationsDir  string
	ConnMaxIdleSec int32
	ConnMaxLifeSec int32
}

// RedisConfig holds Redis connection values. An empty Addr disables Redis.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// LoggerConfig configures logging behavior.
type LoggerConfig struct {
	Level string
}

// AuthConfig defines authentication parameters.
type AuthConfig struct {
	JWTSecret             string
	AccessTokenTTLMinutes int
	BcryptCost            int
	EnforceRoles          bool
	LoginRatePerMinute    int
	BootstrapAdmin        BootstrapAdminConfig
}

// BootstrapAdminConfig describes the administrator created on first start.
type BootstrapAdminConfig struct {
	Username string
	Email    string
	Password string
}

// MailConfig holds SMTP relay settings. An empty Host selects the log-only mailer.
type MailConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
	TLS      string
}

// NotificationConfig controls asynchronous notification delivery.
type NotificationConfig struct {
	Queue              string
	QueueKey           string
	SendTimeoutSeconds int
}

// AttachmentConfig points at the local file area for uploads.
type AttachmentConfig struct {
	Dir string
}

// Load reads configuration from environment variables, applying defaults where possible.
func Load() (*Config, error) {
	_ = godotenv.Load()

	redisDB, err := strconv.Atoi(getEnv("REDIS_DB", "0"))
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_DB: %w", err)
	}

	cfg := &Config{
		App: AppConfig{
			Name:                  getEnv("APP_NAME", "helpdesk-service"),
			Env:                   getEnv("APP_ENV", "development"),
			Host:                  getEnv("APP_HOST", "0.0.0.0"),
			Port:                  getEnv("APP_PORT", "8000"),
			Version:               getEnv("APP_VERSION", "dev"),
			RequestTimeoutSeconds: getEnvAsInt("HTTP_REQUEST_TIMEOUT_SECONDS", 30),
			BodyLimitBytes:        getEnvAsInt("HTTP_BODY_LIMIT_BYTES", 20*1024*1024),
		},
		Store: StoreConfig{
			Driver:          strings.ToLower(getEnv("STORE_DRIVER", StoreDriverMongo)),
			ConnectAttempts: getEnvAsInt("STORE_CONNECT_ATTEMPTS", 5),
			Mongo: MongoConfig{
				URI:      getEnv("MONGO_URI", "mongodb://localhost:27017"),
				Database: getEnv("MONGO_DATABASE", "ticketing_system"),
			},
			Postgres: PostgresConfig{
				DSN:            os.Getenv("POSTGRES_DSN"),
				MaxConns:       int32(getEnvAsInt("POSTGRES_MAX_CONNS", 10)),
				MinConns:       int32(getEnvAsInt("POSTGRES_MIN_CONNS", 2)),
				RunMigrations:  getEnvAsBool("POSTGRES_RUN_MIGRATIONS", true),
				MigrationsDir:  getEnv("POSTGRES_MIGRATIONS_DIR", "migrations"),
				ConnMaxIdleSec: int32(getEnvAsInt("POSTGRES_CONN_MAX_IDLE_SECONDS", 30)),
				ConnMaxLifeSec: int32(getEnvAsInt("POSTGRES_CONN_MAX_LIFE_SECONDS", 300)),
			},
		},
		Redis: RedisConfig{
			Addr:     os.Getenv("REDIS_ADDR"),
			Password: os.Getenv("REDIS_PASSWORD"),
			DB:       redisDB,
		},
		Logger: LoggerConfig{
			Level: getEnv("LOG_LEVEL", "info"),
		},
		Auth: AuthConfig{
			JWTSecret:             os.Getenv("AUTH_JWT_SECRET"),
			AccessTokenTTLMinutes: getEnvAsInt("AUTH_ACCESS_TOKEN_TTL_MINUTES", 120),
			BcryptCost:            getEnvAsInt("AUTH_BCRYPT_COST", 12),
			EnforceRoles:          getEnvAsBool("AUTH_ENFORCE_ROLES", true),
			LoginRatePerMinute:    getEnvAsInt("AUTH_LOGIN_RATE_PER_MINUTE", 20),
			BootstrapAdmin: BootstrapAdminConfig{
				Username: getEnv("AUTH_BOOTSTRAP_ADMIN_USERNAME", "admin"),
				Email:    os.Getenv("AUTH_BOOTSTRAP_ADMIN_EMAIL"),
				Password: os.Getenv("AUTH_BOOTSTRAP_ADMIN_PASSWORD"),
			},
		},
		Mail: MailConfig{
			Host:     os.Getenv("SMTP_HOST"),
			Port:     getEnvAsInt("SMTP_PORT", 587),
			Username: os.Getenv("SMTP_USERNAME"),
			Password: os.Getenv("SMTP_PASSWORD"),
			From:     getEnv("SMTP_FROM", "noreply@example.com"),
			TLS:      strings.ToLower(getEnv("SMTP_TLS", "mandatory")),
		},
		Notification: NotificationConfig{
			Queue:              strings.ToLower(getEnv("NOTIFY_QUEUE", QueueInProcess)),
			QueueKey:           getEnv("NOTIFY_QUEUE_KEY", "helpdesk:events"),
			SendTimeoutSeconds: getEnvAsInt("NOTIFY_SEND_TIMEOUT_SECONDS", 30),
		},
		Attachments: AttachmentConfig{
			Dir: getEnv("ATTACHMENTS_DIR", "uploaded_files"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects configurations the service cannot start with.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Auth.JWTSecret) == "" {
		return errors.New("AUTH_JWT_SECRET is required")
	}
	switch c.Store.Driver {
	case StoreDriverMongo:
		if c.Store.Mongo.URI == "" {
			return errors.New("MONGO_URI is required for the mongo store")
		}
	case StoreDriverPostgres:
		if c.Store.Postgres.DSN == "" {
			return errors.New("POSTGRES_DSN is required for the postgres store")
		}
	default:
		return fmt.Errorf("unknown STORE_DRIVER %q", c.Store.Driver)
	}
	switch c.Notification.Queue {
	case QueueInProcess:
	case QueueRedis:
		if c.Redis.Addr == "" {
			return errors.New("NOTIFY_QUEUE=redis requires REDIS_ADDR")
		}
	default:
		return fmt.Errorf("unknown NOTIFY_QUEUE %q", c.Notification.Queue)
	}
	return nil
}

// Addr returns the HTTP bind address.
func (a AppConfig) Addr() string {
	return fmt.Sprintf("%s:%s", a.Host, a.Port)
}

// RequestTimeout returns the configured request timeout duration.
func (a AppConfig) RequestTimeout() time.Duration {
	if a.RequestTimeoutSeconds <= 0 {
		return 0
	}
	return time.Duration(a.RequestTimeoutSeconds) * time.Second
}

// AccessTokenTTL returns the lifetime of issued tokens.
func (a AuthConfig) AccessTokenTTL() time.Duration {
	return time.Duration(a.AccessTokenTTLMinutes) * time.Minute
}

// SendTimeout bounds a single email delivery attempt.
func (n NotificationConfig) SendTimeout() time.Duration {
	if n.SendTimeoutSeconds <= 0 {
		return 30 * time.Second
	}
	return time.Duration(n.SendTimeoutSeconds) * time.Second
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(val)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvAsBool(key string, fallback bool) bool {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(val)
	if err != nil {
		return fallback
	}
	return parsed
}

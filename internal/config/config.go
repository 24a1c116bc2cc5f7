package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
)

const (
	defaultSessionSecret = "dev-secret-change-in-production"
	defaultMongoDatabase = "student-course-registration"
)

// Store drivers.
const (
	DriverMongo  = "mongo"
	DriverMySQL  = "mysql"
	DriverMemory = "memory"
)

// Enrollment strategies.
const (
	StrategyAtomic     = "atomic"
	StrategySequential = "sequential"
)

var (
	ErrUnknownDriver       = errors.New("unknown STORE_DRIVER")
	ErrUnknownSessionStore = errors.New("unknown SESSION_STORE")
	ErrUnknownStrategy     = errors.New("unknown ENROLLMENT_STRATEGY")
	ErrDefaultSecret       = errors.New("SESSION_SECRET must be set in production environment")
	ErrSessionStoreDriver  = errors.New("SESSION_STORE=mongo requires STORE_DRIVER=mongo")
)

type Config struct {
	Port     string `env:"PORT" envDefault:"3000"`
	Env      string `env:"ENV" envDefault:"development"`
	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`

	StoreDriver   string `env:"STORE_DRIVER" envDefault:"mongo"`
	MongoURI      string `env:"MONGO_URI" envDefault:"mongodb://localhost:27017/student-course-registration"`
	MongoDatabase string `env:"MONGO_DATABASE"`
	MySQLDSN      string `env:"MYSQL_DSN" envDefault:"root:password@tcp(127.0.0.1:3306)/coursereg?parseTime=true"`

	Session    SessionConfig
	Enrollment EnrollmentConfig
	RateLimit  RateLimitConfig
	AMQP       AMQPConfig

	CORSOrigins []string `env:"CORS_ORIGINS" envDefault:"*" envSeparator:","`
}

type SessionConfig struct {
	Secret       string        `env:"SESSION_SECRET" envDefault:"dev-secret-change-in-production"`
	TTL          time.Duration `env:"SESSION_TTL" envDefault:"24h"`
	Store        string        `env:"SESSION_STORE" envDefault:"memory"`
	CookieName   string        `env:"SESSION_COOKIE" envDefault:"sid"`
	CookieSecure bool          `env:"COOKIE_SECURE" envDefault:"false"`
}

type EnrollmentConfig struct {
	Strategy string `env:"ENROLLMENT_STRATEGY" envDefault:"atomic"`
	Dedup    bool   `env:"ENROLLMENT_DEDUP" envDefault:"false"`
}

// RateLimitConfig limits POST /register and /login per client IP. RPS <= 0 disables it.
type RateLimitConfig struct {
	RPS   float64 `env:"RATE_LIMIT_RPS" envDefault:"0"`
	Burst int     `env:"RATE_LIMIT_BURST" envDefault:"10"`
}

// AMQPConfig points enrollment events at a RabbitMQ queue. An empty URL disables publishing.
type AMQPConfig struct {
	URL   string `env:"AMQP_URL"`
	Queue string `env:"AMQP_QUEUE" envDefault:"course.enrollments"`
}

// Load parses the process environment into a Config and validates it.
func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parsing environment: %w", err)
	}

	if cfg.MongoDatabase == "" {
		cfg.MongoDatabase = databaseFromURI(cfg.MongoURI)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks enumerated settings and production safety rules.
func (c Config) Validate() error {
	switch c.StoreDriver {
	case DriverMongo, DriverMySQL, DriverMemory:
	default:
		return fmt.Errorf("%w: %q", ErrUnknownDriver, c.StoreDriver)
	}

	switch c.Session.Store {
	case DriverMemory:
	case DriverMongo:
		if c.StoreDriver != DriverMongo {
			return ErrSessionStoreDriver
		}
	default:
		return fmt.Errorf("%w: %q", ErrUnknownSessionStore, c.Session.Store)
	}

	switch c.Enrollment.Strategy {
	case StrategyAtomic, StrategySequential:
	default:
		return fmt.Errorf("%w: %q", ErrUnknownStrategy, c.Enrollment.Strategy)
	}

	if c.IsProduction() && c.Session.Secret == defaultSessionSecret {
		return ErrDefaultSecret
	}
	return nil
}

func (c Config) IsProduction() bool {
	return c.Env == "production"
}

// databaseFromURI returns the database named in the path of a MongoDB URI.
func databaseFromURI(uri string) string {
	u, err := url.Parse(uri)
	if err != nil {
		return defaultMongoDatabase
	}
	name := strings.Trim(u.Path, "/")
	if name == "" {
		return defaultMongoDatabase
	}
	return name
}

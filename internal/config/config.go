package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joeshaw/envdecode"
	"github.com/joho/godotenv"
)

const (
	DriverMongo    = "mongo"
	DriverPostgres = "postgres"
	DriverMemory   = "memory"

	EnvProduction = "production"
)

type DatabaseConfig struct {
	Driver        string `env:"DB_DRIVER,default=mongo"` // "mongo", "postgres" или "memory"
	MongoURI      string `env:"MONGO_URI,default=mongodb://localhost:27017"`
	MongoDatabase string `env:"MONGO_DATABASE,default=taskmanager"`
	Host          string `env:"DB_HOST,default=localhost"`
	Port          string `env:"DB_PORT,default=5432"`
	User          string `env:"DB_USER,default=tasks_user"`
	Password      string `env:"DB_PASSWORD,default=tasks_pass"`
	DBName        string `env:"DB_NAME,default=tasks_db"`
	SSLMode       string `env:"DB_SSLMODE,default=disable"`
}

type AuthConfig struct {
	JWTSecret  string        `env:"JWT_SECRET"`
	TokenTTL   time.Duration `env:"TOKEN_TTL,default=720h"`
	BcryptCost int           `env:"BCRYPT_COST,default=10"`
}

type RateLimitConfig struct {
	RPS   float64 `env:"AUTH_RATE_LIMIT_RPS,default=5"`
	Burst int     `env:"AUTH_RATE_LIMIT_BURST,default=10"`
}

type CacheConfig struct {
	RedisAddr string        `env:"REDIS_ADDR"`
	TTL       time.Duration `env:"CACHE_TTL,default=1m"`
}

type Config struct {
	Port         string `env:"PORT,default=5000"`
	GRPCPort     string `env:"GRPC_PORT"`
	Env          string `env:"APP_ENV,default=development"`
	LogLevel     string `env:"LOG_LEVEL,default=info"`
	AllowOrigins string `env:"CORS_ALLOWED_ORIGINS,default=http://localhost:3000"`
	Auth         AuthConfig
	RateLimit    RateLimitConfig
	Cache        CacheConfig
	DB           DatabaseConfig
}

// Load читает .env (если есть) и переменные окружения
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to read .env: %w", err)
	}

	cfg := &Config{}
	if err := envdecode.Decode(cfg); err != nil && !errors.Is(err, envdecode.ErrNoTargetFieldsAreSet) {
		return nil, fmt.Errorf("failed to decode environment: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	switch c.DB.Driver {
	case DriverMongo, DriverPostgres, DriverMemory:
	default:
		return fmt.Errorf("unsupported database driver: %q", c.DB.Driver)
	}
	if strings.TrimSpace(c.Auth.JWTSecret) == "" {
		return errors.New("JWT_SECRET is required")
	}
	if c.Auth.TokenTTL <= 0 {
		return errors.New("TOKEN_TTL must be positive")
	}
	return nil
}

// IsProduction - в production детали внутренних ошибок клиенту не отдаются
func (c *Config) IsProduction() bool {
	return strings.EqualFold(c.Env, EnvProduction)
}

// AllowedOrigins разбирает CORS_ALLOWED_ORIGINS (через запятую)
func (c *Config) AllowedOrigins() []string {
	var out []string
	for _, o := range strings.Split(c.AllowOrigins, ",") {
		if o = strings.TrimSpace(o); o != "" {
			out = append(out, o)
		}
	}
	return out
}

func (db *DatabaseConfig) DSN() string {
	switch db.Driver {
	case DriverPostgres:
		return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
			db.Host, db.Port, db.User, db.Password, db.DBName, db.SSLMode)
	case DriverMongo:
		return db.MongoURI
	default:
		return ""
	}
}

package config

import (
	"errors"
	"fmt"
	"net"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/go-sql-driver/mysql"
	"github.com/joho/godotenv"
	"golang.org/x/crypto/bcrypt"
)

const (
	DriverMySQL    = "mysql"
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// Config is built once at startup and handed to every component that needs it.
type Config struct {
	HTTPAddr        string        `env:"HTTP_ADDR"        envDefault:":3002"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"10s"`

	DBDriver   string `env:"DB_DRIVER"   envDefault:"mysql"`
	DSN        string `env:"DSN"`
	DBHost     string `env:"DB_HOST"     envDefault:"localhost"`
	DBPort     int    `env:"DB_PORT"`
	DBName     string `env:"DB_NAME"     envDefault:"notes_db"`
	DBUser     string `env:"DB_USER"     envDefault:"notes_user"`
	DBPassword string `env:"DB_PASSWORD"`

	JWTSecret    string `env:"JWT_SECRET_KEY"`
	JWTAlgorithm string `env:"JWT_ALGORITHM"                   envDefault:"HS256"`
	TokenTTLMin  int    `env:"JWT_ACCESS_TOKEN_EXPIRE_MINUTES" envDefault:"1440"`
	BcryptCost   int    `env:"BCRYPT_COST"                     envDefault:"10"`

	CORSAllowOrigins []string `env:"CORS_ALLOW_ORIGINS" envSeparator:"," envDefault:"*"`

	LogLevel  string `env:"LOG_LEVEL"  envDefault:"info"`
	LogFormat string `env:"LOG_FORMAT" envDefault:"json"`
}

// Load reads envFile (if it exists) into the process environment and parses
// the result. Variables already set in the environment win over the file.
func Load(envFile string) (*Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("load %s: %w", envFile, err)
		}
	}
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	cfg.CORSAllowOrigins = cleanOrigins(cfg.CORSAllowOrigins)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) Validate() error {
	switch c.DBDriver {
	case DriverMySQL, DriverPostgres, DriverSQLite:
	default:
		return fmt.Errorf("unsupported DB_DRIVER %q", c.DBDriver)
	}
	if strings.TrimSpace(c.JWTSecret) == "" {
		return errors.New("JWT_SECRET_KEY is required")
	}
	switch c.JWTAlgorithm {
	case "HS256", "HS384", "HS512":
	default:
		return fmt.Errorf("unsupported JWT_ALGORITHM %q", c.JWTAlgorithm)
	}
	if c.TokenTTLMin <= 0 {
		return errors.New("JWT_ACCESS_TOKEN_EXPIRE_MINUTES must be positive")
	}
	if c.BcryptCost < bcrypt.MinCost || c.BcryptCost > bcrypt.MaxCost {
		return fmt.Errorf("BCRYPT_COST must be between %d and %d", bcrypt.MinCost, bcrypt.MaxCost)
	}
	return nil
}

func (c *Config) TokenTTL() time.Duration {
	return time.Duration(c.TokenTTLMin) * time.Minute
}

// DataSource returns the driver-specific connection string. DSN is used
// verbatim when set.
func (c *Config) DataSource() string {
	if c.DSN != "" {
		return c.DSN
	}
	switch c.DBDriver {
	case DriverPostgres:
		port := c.DBPort
		if port == 0 {
			port = 5432
		}
		u := url.URL{
			Scheme:   "postgres",
			User:     url.UserPassword(c.DBUser, c.DBPassword),
			Host:     net.JoinHostPort(c.DBHost, strconv.Itoa(port)),
			Path:     "/" + c.DBName,
			RawQuery: "sslmode=disable",
		}
		return u.String()
	case DriverSQLite:
		return "file:" + c.DBName + "?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)"
	default:
		port := c.DBPort
		if port == 0 {
			port = 3306
		}
		mc := mysql.NewConfig()
		mc.User = c.DBUser
		mc.Passwd = c.DBPassword
		mc.Net = "tcp"
		mc.Addr = net.JoinHostPort(c.DBHost, strconv.Itoa(port))
		mc.DBName = c.DBName
		mc.ParseTime = true
		return mc.FormatDSN()
	}
}

func cleanOrigins(raw []string) []string {
	var out []string
	for _, o := range raw {
		if o = strings.TrimSpace(o); o != "" {
			out = append(out, o)
		}
	}
	if len(out) == 0 {
		return []string{"*"}
	}
	return out
}

package config

import (
	"errors"
	"fmt"
	"net"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Env      string
	LogLevel string

	MySQLHost string
	MySQLPort string
	MySQLDB   string
	MySQLUser string
	MySQLPass string

	// Empty disables the summary cache and the idempotency store.
	RedisAddr string
	RedisDB   int

	SummaryCacheTTL time.Duration
	IdempotencyTTL  time.Duration

	// Lets a borrower's purse go negative on repayment.
	AllowOverdraft bool

	// Command metrics are pushed here after each run; empty disables.
	PushgatewayURL string
}

func getenv(k, d string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return d
}

func getSeconds(k string, d time.Duration) time.Duration {
	if v := os.Getenv(k); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			return time.Duration(n) * time.Second
		}
	}
	return d
}

// Load reads the environment, after merging any .env files given (or ./.env).
// Variables already set in the environment win over file values.
func Load(envFiles ...string) *Config {
	_ = godotenv.Load(envFiles...)

	c := &Config{
		Env:       getenv("APP_ENV", "development"),
		LogLevel:  getenv("LOG_LEVEL", "info"),
		MySQLHost: getenv("MYSQL_HOST", "mysql"),
		MySQLPort: getenv("MYSQL_PORT", "3306"),
		MySQLDB:   getenv("MYSQL_DB", "ledger"),
		MySQLUser: getenv("MYSQL_USER", "ledger"),
		MySQLPass: getenv("MYSQL_PASS", "ledger"),

		RedisAddr:       os.Getenv("REDIS_ADDR"),
		SummaryCacheTTL: getSeconds("SUMMARY_CACHE_TTL_SECONDS", time.Minute),
		IdempotencyTTL:  getSeconds("IDEMPOTENCY_TTL_SECONDS", 24*time.Hour),
		PushgatewayURL:  os.Getenv("PUSHGATEWAY_URL"),
	}
	if v := os.Getenv("REDIS_DB"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.RedisDB = n
		}
	}
	if v := os.Getenv("LEDGER_ALLOW_OVERDRAFT"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			c.AllowOverdraft = b
		}
	}
	return c
}

func (c *Config) Validate() error {
	if c.MySQLHost == "" || c.MySQLPort == "" || c.MySQLDB == "" || c.MySQLUser == "" {
		return errors.New("missing MySQL config (MYSQL_HOST/PORT/DB/USER)")
	}
	// ensure port is valid
	if _, err := net.LookupPort("tcp", c.MySQLPort); err != nil {
		return fmt.Errorf("invalid MYSQL_PORT %q: %w", c.MySQLPort, err)
	}
	if c.RedisAddr != "" && c.IdempotencyTTL <= 0 {
		return errors.New("IDEMPOTENCY_TTL_SECONDS must be positive when REDIS_ADDR is set")
	}
	return nil
}

func (c *Config) mysqlAddr() string { return net.JoinHostPort(c.MySQLHost, c.MySQLPort) }

func (c *Config) MySQLDSN() string {
	// parseTime needed for DATE/DATETIME columns
	return fmt.Sprintf("%s:%s@tcp(%s)/%s?parseTime=true&loc=UTC&charset=utf8mb4,utf8",
		c.MySQLUser, c.MySQLPass, c.mysqlAddr(), c.MySQLDB)
}

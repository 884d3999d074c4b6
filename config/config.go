package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/viper"
)

// Config holds all application configuration.
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	Redis    RedisConfig    `mapstructure:"redis"`
	JWT      JWTConfig      `mapstructure:"jwt"`
	Log      LogConfig      `mapstructure:"log"`
	Banking  BankingConfig  `mapstructure:"banking"`
}

type ServerConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	Mode            string        `mapstructure:"mode"` // debug, release, test
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

type DatabaseConfig struct {
	Driver          string        `mapstructure:"driver"` // postgres, memory
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	User            string        `mapstructure:"user"`
	Password        string        `mapstructure:"password"`
	DBName          string        `mapstructure:"dbname"`
	SSLMode         string        `mapstructure:"sslmode"`
	MaxConns        int32         `mapstructure:"max_conns"`
	MinConns        int32         `mapstructure:"min_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
	Migrate         bool          `mapstructure:"migrate"`
}

// DSN returns the PostgreSQL connection string.
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.DBName, d.SSLMode,
	)
}

type RedisConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
	PoolSize int    `mapstructure:"pool_size"`
	// Redis only backs best-effort features, so calls must give up quickly
	// rather than hold a transaction request open.
	DialTimeout  time.Duration `mapstructure:"dial_timeout"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
}

// Addr returns the Redis address string.
func (r RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", r.Host, r.Port)
}

type JWTConfig struct {
	Secret string        `mapstructure:"secret"`
	Expiry time.Duration `mapstructure:"expiry"`
	Issuer string        `mapstructure:"issuer"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`  // debug, info, warn, error
	Pretty bool   `mapstructure:"pretty"` // human-readable output (dev only)
}

// BankingConfig carries the tunables of the account and transaction core.
type BankingConfig struct {
	AccountNumber           AccountNumberConfig `mapstructure:"account_number"`
	MaxTransactionAmount    string              `mapstructure:"max_transaction_amount"`
	LockTimeout             time.Duration       `mapstructure:"lock_timeout"`
	NodeID                  int64               `mapstructure:"node_id"`
	ConcealAccountExistence bool                `mapstructure:"conceal_account_existence"`
	IdempotencyTTL          time.Duration       `mapstructure:"idempotency_ttl"`
}

// MaxAmount parses the per-transaction ceiling.
func (b BankingConfig) MaxAmount() (decimal.Decimal, error) {
	amount, err := decimal.NewFromString(b.MaxTransactionAmount)
	if err != nil {
		return decimal.Zero, fmt.Errorf("banking.max_transaction_amount: %w", err)
	}
	if !amount.IsPositive() || !amount.Equal(amount.Round(2)) {
		return decimal.Zero, fmt.Errorf("banking.max_transaction_amount must be positive with at most 2 decimals, got %s", b.MaxTransactionAmount)
	}
	return amount, nil
}

type AccountNumberConfig struct {
	Prefix      string `mapstructure:"prefix"`
	Digits      int    `mapstructure:"digits"`
	MaxAttempts int    `mapstructure:"max_attempts"`
}

// Load reads configuration from file and environment variables.
// Environment variables override file values. Prefix: EBA_ (Eagle Bank API).
// Nested keys use underscore: EBA_DATABASE_HOST, EBA_BANKING_LOCK_TIMEOUT, etc.
func Load(path string) (*Config, error) {
	v := viper.New()

	// Defaults
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.mode", "debug")
	v.SetDefault("server.shutdown_timeout", "10s")
	v.SetDefault("database.driver", "postgres")
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "postgres")
	v.SetDefault("database.password", "postgres")
	v.SetDefault("database.dbname", "eagle_bank")
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("database.max_conns", 20)
	v.SetDefault("database.min_conns", 5)
	v.SetDefault("database.conn_max_lifetime", "30m")
	v.SetDefault("database.migrate", true)
	v.SetDefault("redis.enabled", true)
	v.SetDefault("redis.host", "localhost")
	v.SetDefault("redis.port", 6379)
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.pool_size", 20)
	v.SetDefault("redis.dial_timeout", "500ms")
	v.SetDefault("redis.read_timeout", "200ms")
	v.SetDefault("redis.write_timeout", "200ms")
	v.SetDefault("jwt.secret", "")
	v.SetDefault("jwt.expiry", "1h")
	v.SetDefault("jwt.issuer", "eagle-bank-api")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.pretty", false)
	v.SetDefault("banking.account_number.prefix", "01")
	v.SetDefault("banking.account_number.digits", 6)
	v.SetDefault("banking.account_number.max_attempts", 10)
	v.SetDefault("banking.max_transaction_amount", "10000.00")
	v.SetDefault("banking.lock_timeout", "5s")
	v.SetDefault("banking.node_id", 1)
	v.SetDefault("banking.conceal_account_existence", false)
	v.SetDefault("banking.idempotency_ttl", "24h")

	// File config
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
	}

	// Environment variables: EBA_DATABASE_HOST -> database.host
	v.SetEnvPrefix("EBA")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Read config file (not required, env vars can suffice)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// accountNumberWidth is the size of accounts.account_number (VARCHAR(20)).
const accountNumberWidth = 20

// Validate rejects settings the banking core cannot run with.
func (c *Config) Validate() error {
	switch c.Server.Mode {
	case "debug", "release", "test":
	default:
		return fmt.Errorf("unsupported server mode %q", c.Server.Mode)
	}

	switch c.Database.Driver {
	case "postgres", "memory":
	default:
		return fmt.Errorf("unsupported database driver %q", c.Database.Driver)
	}

	an := c.Banking.AccountNumber
	if an.Digits < 1 || an.Digits > 18 {
		return fmt.Errorf("banking.account_number.digits must be between 1 and 18, got %d", an.Digits)
	}
	for _, r := range an.Prefix {
		if r < '0' || r > '9' {
			return fmt.Errorf("banking.account_number.prefix must be decimal digits, got %q", an.Prefix)
		}
	}
	if n := len(an.Prefix) + an.Digits; n > accountNumberWidth {
		return fmt.Errorf("banking.account_number prefix plus digits is %d characters, the accounts table holds %d",
			n, accountNumberWidth)
	}
	if an.MaxAttempts < 1 {
		return fmt.Errorf("banking.account_number.max_attempts must be positive, got %d", an.MaxAttempts)
	}
	if c.Banking.LockTimeout <= 0 {
		return fmt.Errorf("banking.lock_timeout must be positive")
	}
	if _, err := c.Banking.MaxAmount(); err != nil {
		return err
	}
	if c.Redis.Enabled && (c.Redis.DialTimeout <= 0 || c.Redis.ReadTimeout <= 0 || c.Redis.WriteTimeout <= 0) {
		return fmt.Errorf("redis timeouts must be positive")
	}
	if c.Banking.NodeID < 0 || c.Banking.NodeID > 1023 {
		return fmt.Errorf("banking.node_id must be between 0 and 1023, got %d", c.Banking.NodeID)
	}
	return nil
}

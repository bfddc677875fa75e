package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all application configuration.
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Redis     RedisConfig     `mapstructure:"redis"`
	JWT       JWTConfig       `mapstructure:"jwt"`
	Security  SecurityConfig  `mapstructure:"security"`
	RateLimit RateLimitConfig `mapstructure:"ratelimit"`
	Pricing   PricingConfig   `mapstructure:"pricing"`
	Sweeper   SweeperConfig   `mapstructure:"sweeper"`
	Signup    SignupConfig    `mapstructure:"signup"`
	Log       LogConfig       `mapstructure:"log"`
}

type ServerConfig struct {
	Host         string        `mapstructure:"host"`
	Port         int           `mapstructure:"port"`
	Mode         string        `mapstructure:"mode"` // debug, release, test
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	MaxBodyBytes int64         `mapstructure:"max_body_bytes"`
	CORSOrigins  []string      `mapstructure:"cors_origins"`
}

// Addr returns the listen address.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
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
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
	Enabled  bool   `mapstructure:"enabled"`
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

// SecurityConfig holds key material for private-key encryption and operator request signing.
type SecurityConfig struct {
	AESKey             string        `mapstructure:"aes_key"` // 32-byte hex-encoded key for AES-256
	OperatorKeyID      string        `mapstructure:"operator_key_id"`
	OperatorSecret     string        `mapstructure:"operator_secret"`
	SignatureMaxAge    time.Duration `mapstructure:"signature_max_age"`
	NonceTTL           time.Duration `mapstructure:"nonce_ttl"`
	PasswordMinLength  int           `mapstructure:"password_min_length"`
	ReferralRewardRate string        `mapstructure:"referral_reward_rate"`
}

type RateLimitConfig struct {
	Requests int           `mapstructure:"requests"`
	Window   time.Duration `mapstructure:"window"`
}

type PricingConfig struct {
	CoinGeckoURL string        `mapstructure:"coingecko_url"`
	FXProviders  []string      `mapstructure:"fx_providers"`
	Timeout      time.Duration `mapstructure:"timeout"`
	CacheTTL     time.Duration `mapstructure:"cache_ttl"`
}

type SweeperConfig struct {
	Enabled           bool          `mapstructure:"enabled"`
	StakeSchedule     string        `mapstructure:"stake_schedule"`
	DepositSchedule   string        `mapstructure:"deposit_schedule"`
	StaleDepositAfter time.Duration `mapstructure:"stale_deposit_after"`
	LockTTL           time.Duration `mapstructure:"lock_ttl"`
}

type SignupConfig struct {
	StartingFiatBalance string `mapstructure:"starting_fiat_balance"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`  // debug, info, warn, error
	Pretty bool   `mapstructure:"pretty"` // human-readable output (dev only)
}

// Load reads configuration from file and environment variables.
// A .env file in the working directory is loaded first if present.
// Environment variables override file values. Prefix: LEDGER_.
// Nested keys use underscore: LEDGER_DATABASE_HOST, LEDGER_JWT_SECRET, etc.
func Load(path string) (*Config, error) {
	_ = godotenv.Load() // .env is optional

	v := viper.New()

	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.mode", "debug")
	v.SetDefault("server.read_timeout", "15s")
	v.SetDefault("server.write_timeout", "30s")
	v.SetDefault("server.max_body_bytes", 1<<20)
	v.SetDefault("server.cors_origins", []string{"http://localhost:3001"})
	v.SetDefault("database.driver", "postgres")
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "postgres")
	v.SetDefault("database.password", "postgres")
	v.SetDefault("database.dbname", "investment_ledger")
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("database.max_conns", 20)
	v.SetDefault("database.min_conns", 5)
	v.SetDefault("database.conn_max_lifetime", "30m")
	v.SetDefault("database.migrate", true)
	v.SetDefault("redis.host", "localhost")
	v.SetDefault("redis.port", 6379)
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.enabled", true)
	v.SetDefault("jwt.secret", "")
	v.SetDefault("jwt.expiry", "24h")
	v.SetDefault("jwt.issuer", "investment-ledger")
	v.SetDefault("security.aes_key", "")
	v.SetDefault("security.operator_key_id", "operator")
	v.SetDefault("security.operator_secret", "")
	v.SetDefault("security.signature_max_age", "5m")
	v.SetDefault("security.nonce_ttl", "10m")
	v.SetDefault("security.password_min_length", 8)
	v.SetDefault("security.referral_reward_rate", "0.10")
	v.SetDefault("ratelimit.requests", 120)
	v.SetDefault("ratelimit.window", "1m")
	v.SetDefault("pricing.coingecko_url", "https://api.coingecko.com/api/v3")
	v.SetDefault("pricing.fx_providers", []string{
		"https://api.exchangerate-api.com/v4/latest/USD",
		"https://open.er-api.com/v6/latest/USD",
	})
	v.SetDefault("pricing.timeout", "10s")
	v.SetDefault("pricing.cache_ttl", "60s")
	v.SetDefault("sweeper.enabled", true)
	v.SetDefault("sweeper.stake_schedule", "0 */6 * * *")
	v.SetDefault("sweeper.deposit_schedule", "0 * * * *")
	v.SetDefault("sweeper.stale_deposit_after", "2h")
	v.SetDefault("sweeper.lock_ttl", "10m")
	v.SetDefault("signup.starting_fiat_balance", "1000.00")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.pretty", false)

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
	}

	// LEDGER_DATABASE_HOST -> database.host
	v.SetEnvPrefix("LEDGER")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	return &cfg, nil
}

// Validate checks settings that have no safe default outside development.
func (c *Config) Validate() error {
	if c.Database.Driver != "postgres" && c.Database.Driver != "memory" {
		return fmt.Errorf("unsupported database driver %q", c.Database.Driver)
	}
	if c.Server.Mode != "release" {
		return nil
	}
	var errs []error
	if c.JWT.Secret == "" {
		errs = append(errs, errors.New("jwt.secret is required in release mode"))
	}
	if c.Security.AESKey == "" {
		errs = append(errs, errors.New("security.aes_key is required in release mode"))
	}
	if c.Security.OperatorSecret == "" {
		errs = append(errs, errors.New("security.operator_secret is required in release mode"))
	}
	if c.Database.Driver == "memory" {
		errs = append(errs, errors.New("memory driver is not allowed in release mode"))
	}
	return errors.Join(errs...)
}

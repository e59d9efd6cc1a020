package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"golang.org/x/crypto/bcrypt"
	"gopkg.in/yaml.v3"
)

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
	DriverMongo    = "mongo"

	PendingStoreMemory = "memory"
	PendingStoreRedis  = "redis"

	defaultConfigPath = "config/config.yml"
	minJWTSecretLen   = 16
)

type AppConfig struct {
	Port    int    `yaml:"port" env:"PORT"`
	Env     string `yaml:"env" env:"APP_ENV"`
	GinMode string `yaml:"gin_mode" env:"GIN_MODE"`
}

type LogConfig struct {
	Level string `yaml:"level" env:"LOG_LEVEL"`
}

type DatabaseConfig struct {
	Driver string `yaml:"driver" env:"DRIVER"`
	DSN    string `yaml:"dsn" env:"DSN"`
}

type MongoConfig struct {
	URI string `yaml:"uri" env:"URI"`
	DB  string `yaml:"db" env:"DB"`
}

type RedisConfig struct {
	Addr     string `yaml:"addr" env:"ADDR"`
	Password string `yaml:"password" env:"PASSWORD"`
	DB       int    `yaml:"db" env:"DB"`
}

type JWTConfig struct {
	Secret    string        `yaml:"secret" env:"SECRET"`
	Issuer    string        `yaml:"issuer" env:"ISSUER"`
	AccessTTL time.Duration `yaml:"access_ttl" env:"ACCESS_TTL"`
}

type TOTPConfig struct {
	Issuer       string        `yaml:"issuer" env:"ISSUER"`
	PendingStore string        `yaml:"pending_store" env:"PENDING_STORE"`
	PendingTTL   time.Duration `yaml:"pending_ttl" env:"PENDING_TTL"`
}

type PasswordConfig struct {
	BcryptCost int `yaml:"bcrypt_cost" env:"BCRYPT_COST"`
}

// Config is the service configuration. Values come from defaults, then the
// YAML file, then environment variables.
type Config struct {
	App      AppConfig      `yaml:"app"`
	Log      LogConfig      `yaml:"log"`
	Database DatabaseConfig `yaml:"database" envPrefix:"DATABASE_"`
	Mongo    MongoConfig    `yaml:"mongo" envPrefix:"MONGO_"`
	Redis    RedisConfig    `yaml:"redis" envPrefix:"REDIS_"`
	JWT      JWTConfig      `yaml:"jwt" envPrefix:"JWT_"`
	TOTP     TOTPConfig     `yaml:"totp" envPrefix:"TOTP_"`
	Password PasswordConfig `yaml:"password"`
}

// Default returns the configuration used when nothing overrides it
func Default() *Config {
	return &Config{
		App:      AppConfig{Port: 8080, Env: "development", GinMode: "release"},
		Log:      LogConfig{Level: "info"},
		Database: DatabaseConfig{Driver: DriverPostgres},
		Mongo:    MongoConfig{DB: "giftcards"},
		JWT:      JWTConfig{Issuer: "GiftCardSystem", AccessTTL: time.Hour},
		TOTP: TOTPConfig{
			Issuer:       "GiftCardSystem",
			PendingStore: PendingStoreMemory,
			PendingTTL:   10 * time.Minute,
		},
		Password: PasswordConfig{BcryptCost: bcrypt.DefaultCost},
	}
}

// Load reads .env, the YAML file named by CONFIG_FILE (or config/config.yml
// when present) and the environment, then validates the result.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("could not load .env: %w", err)
	}

	cfg := Default()

	path, explicit := os.LookupEnv("CONFIG_FILE")
	if !explicit {
		path = defaultConfigPath
	}
	if err := loadConfigFile(path, cfg); err != nil {
		if explicit || !errors.Is(err, os.ErrNotExist) {
			return nil, err
		}
	}

	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse environment: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func loadConfigFile(path string, cfg *Config) error {
	bytes, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("could not read config file at %s: %w", path, err)
	}
	if err := yaml.Unmarshal(bytes, cfg); err != nil {
		return fmt.Errorf("could not parse config yaml: %w", err)
	}
	return nil
}

// Validate reports every invalid setting at once
func (c *Config) Validate() error {
	var errs []error

	if c.App.Port <= 0 || c.App.Port > 65535 {
		errs = append(errs, fmt.Errorf("app.port %d out of range", c.App.Port))
	}
	if len(c.JWT.Secret) < minJWTSecretLen {
		errs = append(errs, fmt.Errorf("jwt.secret must be at least %d characters", minJWTSecretLen))
	}
	if c.JWT.AccessTTL < time.Minute || c.JWT.AccessTTL > 24*time.Hour {
		errs = append(errs, fmt.Errorf("jwt.access_ttl %s must be between 1m and 24h", c.JWT.AccessTTL))
	}

	switch c.Database.Driver {
	case DriverPostgres, DriverSQLite:
		if c.Database.DSN == "" {
			errs = append(errs, fmt.Errorf("database.dsn is required for driver %q", c.Database.Driver))
		}
	case DriverMongo:
		if c.Mongo.URI == "" {
			errs = append(errs, errors.New("mongo.uri is required for driver \"mongo\""))
		}
		if c.Mongo.DB == "" {
			errs = append(errs, errors.New("mongo.db is required for driver \"mongo\""))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown database.driver %q", c.Database.Driver))
	}

	switch c.TOTP.PendingStore {
	case PendingStoreMemory:
	case PendingStoreRedis:
		if c.Redis.Addr == "" {
			errs = append(errs, errors.New("redis.addr is required for the redis pending store"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown totp.pending_store %q", c.TOTP.PendingStore))
	}
	if c.TOTP.PendingTTL < 0 {
		errs = append(errs, errors.New("totp.pending_ttl must not be negative"))
	}

	if c.Password.BcryptCost < bcrypt.MinCost || c.Password.BcryptCost > bcrypt.MaxCost {
		errs = append(errs, fmt.Errorf("password.bcrypt_cost must be between %d and %d", bcrypt.MinCost, bcrypt.MaxCost))
	}

	if len(errs) > 0 {
		return fmt.Errorf("invalid config: %w", errors.Join(errs...))
	}
	return nil
}

// Addr is the listen address for the HTTP server
func (c *Config) Addr() string {
	return fmt.Sprintf(":%d", c.App.Port)
}

// IsProduction reports whether the service runs with production settings
func (c *Config) IsProduction() bool {
	return c.App.Env == "production"
}

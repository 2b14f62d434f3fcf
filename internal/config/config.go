package config

import (
	"fmt"
	"strings"
	"time"

	"crabbox/internal/domain/model"

	"github.com/caarlos0/env/v10"
	"github.com/joho/godotenv"
)

// Configはアプリ全体の設定
type Config struct {
	Port  string `env:"PORT" envDefault:"8080"`         // サーバーポート
	GoEnv string `env:"GO_ENV" envDefault:"development"` // development/production
	FEURL string `env:"FE_URL" envDefault:"http://localhost:5173"`

	DB    DB
	Auth  Auth
	Chain Chain
	Redis Redis `envPrefix:"REDIS_"`
	Log   Log   `envPrefix:"LOG_"`
}

type DB struct {
	Driver      string `env:"DB_DRIVER" envDefault:"postgres"` // postgres/sqlite
	DatabaseURL string `env:"DATABASE_URL"`
	SQLitePath  string `env:"SQLITE_PATH" envDefault:"crabbox.db"`

	PostgresHost     string `env:"POSTGRES_HOST" envDefault:"localhost"`
	PostgresPort     int    `env:"POSTGRES_PORT" envDefault:"5432"`
	PostgresUser     string `env:"POSTGRES_USER" envDefault:"postgres"`
	PostgresPassword string `env:"POSTGRES_PASSWORD" envDefault:"postgres"`
	PostgresDB       string `env:"POSTGRES_DB" envDefault:"crabbox"`
	PostgresSSLMode  string `env:"POSTGRES_SSLMODE" envDefault:"disable"`
}

type Auth struct {
	JWTSecret      string        `env:"JWT_SECRET"`
	AccessTokenTTL time.Duration `env:"ACCESS_TOKEN_TTL" envDefault:"15m"`
	LoginNonceTTL  time.Duration `env:"LOGIN_NONCE_TTL" envDefault:"5m"`
}

// オーナーと預かり口座のアドレス
type Chain struct {
	OwnerAddress       string `env:"OWNER_ADDRESS"`
	ServiceAddress     string `env:"SERVICE_ADDRESS"`
	TokenFaucetEnabled bool   `env:"TOKEN_FAUCET_ENABLED" envDefault:"false"`
}

// Addrが空ならnonceはDBに置く
type Redis struct {
	Addr     string `env:"ADDR"`
	Password string `env:"PASSWORD"`
	DB       int    `env:"DB" envDefault:"0"`
}

type Log struct {
	Level      string `env:"LEVEL" envDefault:"info"`
	Format     string `env:"FORMAT" envDefault:"json"` // json/console
	File       string `env:"FILE"`
	MaxSizeMB  int    `env:"MAX_SIZE_MB" envDefault:"100"`
	MaxBackups int    `env:"MAX_BACKUPS" envDefault:"5"`
	MaxAgeDays int    `env:"MAX_AGE_DAYS" envDefault:"30"`
	Compress   bool   `env:"COMPRESS" envDefault:"true"`
}

// Loadは.envがあれば読み込んでから環境変数を解釈する
func Load() (Config, error) {
	// .envが無いのは本番では普通
	_ = godotenv.Load()

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.normalize(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// FromMapはテストなどで環境変数を使わずに組み立てる
func FromMap(vars map[string]string) (Config, error) {
	var cfg Config
	if err := env.ParseWithOptions(&cfg, env.Options{Environment: vars}); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.normalize(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) IsProduction() bool {
	return c.GoEnv == "production" || c.GoEnv == "prod"
}

//必須チェックとアドレスの正規化
func (c *Config) normalize() error {
	if c.Auth.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET is required")
	}
	if c.Auth.AccessTokenTTL <= 0 {
		return fmt.Errorf("ACCESS_TOKEN_TTL must be positive")
	}
	if c.Auth.LoginNonceTTL <= 0 {
		return fmt.Errorf("LOGIN_NONCE_TTL must be positive")
	}

	c.DB.Driver = strings.ToLower(strings.TrimSpace(c.DB.Driver))
	switch c.DB.Driver {
	case "postgres", "sqlite":
	default:
		return fmt.Errorf("DB_DRIVER must be postgres or sqlite: %q", c.DB.Driver)
	}

	owner, ok := model.NormalizeAddress(c.Chain.OwnerAddress)
	if !ok {
		return fmt.Errorf("OWNER_ADDRESS is required and must be an EVM address")
	}
	service, ok := model.NormalizeAddress(c.Chain.ServiceAddress)
	if !ok {
		return fmt.Errorf("SERVICE_ADDRESS is required and must be an EVM address")
	}
	if owner == service {
		return fmt.Errorf("OWNER_ADDRESS and SERVICE_ADDRESS must differ")
	}
	c.Chain.OwnerAddress = owner
	c.Chain.ServiceAddress = service

	c.Log.Format = strings.ToLower(c.Log.Format)
	return nil
}

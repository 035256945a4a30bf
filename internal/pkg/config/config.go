package config

import (
	"fmt"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

type Config struct {
	Server     Server     `yaml:"server"`
	Logger     Logger     `yaml:"logger"`
	Storage    Storage    `yaml:"storage"`
	PostgresDB PostgresDB `yaml:"db"`
	SQLite     SQLite     `yaml:"sqlite"`
	Auth       Auth       `yaml:"auth"`
	RedisCache RedisCache `yaml:"rdb"`
	Roles      Roles      `yaml:"roles"`
	Seed       Seed       `yaml:"seed"`
}

type Server struct {
	Addr         string        `env-default:":8080" yaml:"addr"`
	ReadTimeout  time.Duration `env-default:"5s"    yaml:"readTimeout"`
	IdleTimeout  time.Duration `env-default:"30s"   yaml:"idleTimeout"`
	WriteTimeout time.Duration `env-default:"5s"    yaml:"writeTimeout"`
}

type Logger struct {
	Level     string   `env-default:"info" yaml:"level"`
	Output    []string `yaml:"output"`
	ErrOutput []string `yaml:"errOutput"`
}

type Storage struct {
	Driver string `env:"STORAGE_DRIVER" env-default:"postgres" yaml:"driver"`
}

type PostgresDB struct {
	Addr     string `yaml:"addr"`
	Username string `env:"POSTGRES_USER"     yaml:"username"`
	Password string `env:"POSTGRES_PASSWORD" yaml:"password"`
	DB       string `env:"POSTGRES_DB"       yaml:"db"`
	SSLmode  string `env-default:"disable"   yaml:"sslmode"`
	MaxConns string `env-default:"10"        yaml:"maxConns"`
	Reload   bool   `yaml:"reload"`
	Version  int    `yaml:"version"`
}

// ConnString is the pgx connection string; pool options are only understood by pgxpool.
func (p PostgresDB) ConnString() string {
	return "postgres://" + p.Username + ":" + p.Password + "@" +
		p.Addr + "/" + p.DB + "?" + "sslmode=" + p.SSLmode
}

func (p PostgresDB) PoolConnString() string {
	return p.ConnString() + "&pool_max_conns=" + p.MaxConns
}

type SQLite struct {
	DSN string `env:"SQLITE_DSN" env-default:"file:usermodel?mode=memory&cache=shared&_foreign_keys=1" yaml:"dsn"`
}

type Auth struct {
	TTL    time.Duration `env-default:"1h"                        yaml:"ttl"`
	Secret string        `env:"SECRET"     env-required:"true" yaml:"secret"`
}

type RedisCache struct {
	Addr     string        `env:"REDIS_ADDR" yaml:"addr"`
	Password string        `yaml:"password"`
	DB       int           `yaml:"db"`
	ExpTime  time.Duration `env-default:"5m" yaml:"exp"`
}

// Enabled reports whether a redis address was configured.
func (rc RedisCache) Enabled() bool {
	return rc.Addr != ""
}

type Roles struct {
	DeletePolicy string `env:"ROLES_DELETE_POLICY" env-default:"restrict" yaml:"deletePolicy"`
}

type Seed struct {
	Enabled bool `env:"SEED_ENABLED" yaml:"enabled"`
}

func New(configPath string) (Config, error) {
	var cfg Config
	if err := cleanenv.ReadConfig(configPath, &cfg); err != nil {
		return Config{}, fmt.Errorf("read config error: %w", err)
	}

	switch cfg.Storage.Driver {
	case DriverPostgres, DriverSQLite:
	default:
		return Config{}, fmt.Errorf("unknown storage driver %q", cfg.Storage.Driver)
	}

	return cfg, nil
}

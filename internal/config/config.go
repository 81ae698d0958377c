package config

import (
	"errors"
	"io/fs"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all configuration for the application.
type Config struct {
	Server ServerConfig `mapstructure:"server"`
	DB     DBConfig     `mapstructure:"db"`
	Cache  CacheConfig  `mapstructure:"cache"`
	Redis  RedisConfig  `mapstructure:"redis"`
	Avatar AvatarConfig `mapstructure:"avatar"`
	Views  ViewsConfig  `mapstructure:"views"`
	Log    LogConfig    `mapstructure:"log"`
}

// ServerConfig holds server-specific configuration.
type ServerConfig struct {
	Port   string    `mapstructure:"port"`
	Debug  bool      `mapstructure:"debug"`
	Domain string    `mapstructure:"domain"`
	TLS    TLSConfig `mapstructure:"tls"`
	// AdminToken is the bearer token allowed to change settings and avatars.
	// Empty disables those routes.
	AdminToken string `mapstructure:"admin_token"`
}

// TLSConfig holds TLS-specific configuration.
type TLSConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	CertFile string `mapstructure:"certFile"`
	KeyFile  string `mapstructure:"keyFile"`
}

// DBConfig holds database-specific configuration.
type DBConfig struct {
	Driver string `mapstructure:"driver"` // "mysql" or "sqlite3"
	DSN    string `mapstructure:"dsn"`
}

// CacheConfig selects and configures the cache backend.
type CacheConfig struct {
	Driver    string `mapstructure:"driver"` // "memory", "sqlite" or "redis"
	FilePath  string `mapstructure:"file_path"`
	PurgeSpec string `mapstructure:"purge_spec"` // cron spec for dropping expired sqlite entries
}

// RedisConfig holds the redis connection used by the "redis" cache driver.
type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
	PoolSize int    `mapstructure:"pool_size"`
}

// AvatarConfig controls where downloaded avatars are written.
type AvatarConfig struct {
	Storage string        `mapstructure:"storage"` // "local" or "s3"
	Timeout time.Duration `mapstructure:"timeout"`
	S3      S3Config      `mapstructure:"s3"`
}

// S3Config holds the bucket used by the "s3" avatar storage.
type S3Config struct {
	Bucket string `mapstructure:"bucket"`
	Region string `mapstructure:"region"`
	Prefix string `mapstructure:"prefix"`
}

// ViewsConfig controls batching of article view counts.
type ViewsConfig struct {
	FlushSpec string `mapstructure:"flush_spec"` // cron spec, e.g. "@every 1m"
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level  string `mapstructure:"level"`  // e.g., "debug", "info", "warn", "error"
	Format string `mapstructure:"format"` // e.g., "json", "console"
}

// LoadConfig reads configuration from file and environment variables.
// An optional path overrides the config file search.
func LoadConfig(path string) (*Config, error) {
	// A missing .env is the normal case outside development.
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, err
	}

	v := viper.New()

	v.SetDefault("server.port", "8000")
	v.SetDefault("server.domain", "localhost:8000")
	v.SetDefault("server.admin_token", "")
	v.SetDefault("db.driver", "sqlite3")
	v.SetDefault("db.dsn", "blog.db")
	v.SetDefault("cache.driver", "memory")
	v.SetDefault("cache.file_path", "cache.db")
	v.SetDefault("cache.purge_spec", "@every 10m")
	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.pool_size", 10)
	v.SetDefault("avatar.storage", "local")
	v.SetDefault("avatar.timeout", 2*time.Second)
	v.SetDefault("views.flush_spec", "@every 1m")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yml")
		v.AddConfigPath(".")
		v.AddConfigPath("./configs")
		v.AddConfigPath("/etc/go-blog-app/")
		v.AddConfigPath("$HOME/.go-blog-app")
	}

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok || path != "" {
			return nil, err
		}
		// Config file not found; proceed with defaults and env vars
	}

	v.SetEnvPrefix("BLOG")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

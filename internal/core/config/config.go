package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/viper"
)

const defaultPath = "./configs/config.local.yaml"

type App struct {
	Name string `mapstructure:"name"`
	Env  string `mapstructure:"env"` // dev / prod
}

type HTTP struct {
	Host            string `mapstructure:"host"`
	Port            int    `mapstructure:"port"`
	ReadTimeoutSec  int    `mapstructure:"read_timeout_sec"`
	WriteTimeoutSec int    `mapstructure:"write_timeout_sec"`
	IdleTimeoutSec  int    `mapstructure:"idle_timeout_sec"`
}

type LogFile struct {
	Enable     bool   `mapstructure:"enable"`
	Filename   string `mapstructure:"filename"`
	MaxSizeMB  int    `mapstructure:"max_size_mb"`
	MaxBackups int    `mapstructure:"max_backups"`
	MaxAgeDays int    `mapstructure:"max_age_days"`
	Compress   bool   `mapstructure:"compress"`
}

type Log struct {
	Level string  `mapstructure:"level"`
	JSON  bool    `mapstructure:"json"`
	File  LogFile `mapstructure:"file"`
}

type Redis struct {
	Addr     string `mapstructure:"addr"` // empty disables the user cache
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
	TTLSec   int    `mapstructure:"ttl_sec"`
}

type DB struct {
	Driver             string `mapstructure:"driver"` // postgres / mysql / sqlite
	DSN                string `mapstructure:"dsn"`
	Username           string `mapstructure:"username"`
	Password           string `mapstructure:"password"`
	MaxOpenConns       int    `mapstructure:"max_open_conns"`
	MaxIdleConns       int    `mapstructure:"max_idle_conns"`
	ConnMaxLifetimeMin int    `mapstructure:"conn_max_lifetime_min"`
	Migrate            string `mapstructure:"migrate"` // auto / goose / none
	LogLevel           string `mapstructure:"log_level"`
}

type Limits struct {
	RatePerSec        float64 `mapstructure:"rate_per_sec"`
	RateBurst         int     `mapstructure:"rate_burst"`
	PerIPRatePerSec   float64 `mapstructure:"per_ip_rate_per_sec"`
	PerIPBurst        int     `mapstructure:"per_ip_burst"`
	MaxConcurrent     int64   `mapstructure:"max_concurrent"`
	MaxBodyBytes      int64   `mapstructure:"max_body_bytes"`
	RequestTimeoutSec int     `mapstructure:"request_timeout_sec"`
}

type Security struct {
	BcryptCost int `mapstructure:"bcrypt_cost"`
}

type Config struct {
	App      App      `mapstructure:"app"`
	HTTP     HTTP     `mapstructure:"http"`
	Log      Log      `mapstructure:"log"`
	DB       DB       `mapstructure:"db"`
	Redis    Redis    `mapstructure:"redis"`
	Limits   Limits   `mapstructure:"limits"`
	Security Security `mapstructure:"security"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "user-service")
	v.SetDefault("app.env", "dev")

	v.SetDefault("http.host", "0.0.0.0")
	v.SetDefault("http.port", 8080)
	v.SetDefault("http.read_timeout_sec", 5)
	v.SetDefault("http.write_timeout_sec", 10)
	v.SetDefault("http.idle_timeout_sec", 60)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.json", false)
	v.SetDefault("log.file.enable", false)
	v.SetDefault("log.file.filename", "logs/app.log")
	v.SetDefault("log.file.max_size_mb", 100)
	v.SetDefault("log.file.max_backups", 7)
	v.SetDefault("log.file.max_age_days", 30)
	v.SetDefault("log.file.compress", true)

	v.SetDefault("db.driver", "sqlite")
	v.SetDefault("db.dsn", "users.db")
	v.SetDefault("db.username", "")
	v.SetDefault("db.password", "")
	v.SetDefault("db.max_open_conns", 20)
	v.SetDefault("db.max_idle_conns", 10)
	v.SetDefault("db.conn_max_lifetime_min", 30)
	v.SetDefault("db.migrate", "auto")
	v.SetDefault("db.log_level", "warn")

	v.SetDefault("redis.addr", "")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.ttl_sec", 300)

	v.SetDefault("limits.rate_per_sec", 200)
	v.SetDefault("limits.rate_burst", 400)
	v.SetDefault("limits.per_ip_rate_per_sec", 0)
	v.SetDefault("limits.per_ip_burst", 0)
	v.SetDefault("limits.max_concurrent", 300)
	v.SetDefault("limits.max_body_bytes", 1<<20)
	v.SetDefault("limits.request_timeout_sec", 10)

	v.SetDefault("security.bcrypt_cost", 12)
}

// Load reads the YAML file at path (or CONFIG_PATH, or the local default) and
// applies APP_* environment overrides, e.g. APP_DB_DSN for db.dsn. A missing file
// is only an error when the path was given explicitly.
func Load(path string) (*Config, error) {
	explicit := true
	if path == "" {
		path = os.Getenv("CONFIG_PATH")
		if path == "" {
			path = defaultPath
			explicit = false
		}
	}

	v := viper.New()
	setDefaults(v)
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	v.SetEnvPrefix("APP")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if explicit || !(errors.As(err, &notFound) || errors.Is(err, os.ErrNotExist)) {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	return &c, nil
}

// IsProd reports whether the service runs with production settings.
func (c *Config) IsProd() bool {
	e := strings.ToLower(c.App.Env)
	return e == "prod" || e == "production"
}

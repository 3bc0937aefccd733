package config

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds application configuration
type Config struct {
	LastFM  LastFMConfig  `mapstructure:"lastfm"`
	Storage StorageConfig `mapstructure:"storage"`
	Server  ServerConfig  `mapstructure:"server"`
	Render  RenderConfig  `mapstructure:"render"`
	Chart   ChartConfig   `mapstructure:"chart"`
	Log     LogConfig     `mapstructure:"log"`
}

// LastFMConfig holds Last.fm specific configuration
type LastFMConfig struct {
	APIKey  string        `mapstructure:"api_key" validate:"required"`
	BaseURL string        `mapstructure:"base_url" validate:"omitempty,url"`
	Timeout time.Duration `mapstructure:"timeout" validate:"gt=0"`
}

// StorageConfig selects where snapshots are kept
type StorageConfig struct {
	Driver  string      `mapstructure:"driver" validate:"oneof=sqlite bolt file redis"`
	DataDir string      `mapstructure:"data_dir"`
	Redis   RedisConfig `mapstructure:"redis"`
}

// RedisConfig is used by the redis storage driver
type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db" validate:"gte=0"`
}

// ServerConfig configures `chartfm serve`
type ServerConfig struct {
	Addr          string        `mapstructure:"addr" validate:"required"`
	RedirectDelay time.Duration `mapstructure:"redirect_delay" validate:"gte=0"`
	ViewTTL       time.Duration `mapstructure:"view_ttl" validate:"gt=0"`
}

// RenderConfig configures image export
type RenderConfig struct {
	Scale       float64 `mapstructure:"scale" validate:"gte=1,lte=4"`
	Encoding    string  `mapstructure:"encoding" validate:"oneof=png jpeg jpg"`
	JPEGQuality int     `mapstructure:"jpeg_quality" validate:"gte=1,lte=100"`
	Workers     int     `mapstructure:"workers" validate:"gte=1,lte=32"`
}

// ChartConfig holds chart defaults
type ChartConfig struct {
	TableLimit int `mapstructure:"table_limit" validate:"gte=1,lte=1000"`
}

// LogConfig holds logging defaults; command line flags override them
type LogConfig struct {
	Level string `mapstructure:"level" validate:"oneof=debug info warn error"`
	File  string `mapstructure:"file"`
}

var defaults = map[string]any{
	"lastfm.api_key":         "",
	"lastfm.base_url":        "",
	"lastfm.timeout":         10 * time.Second,
	"storage.driver":         "sqlite",
	"storage.data_dir":       "",
	"storage.redis.addr":     "localhost:6379",
	"storage.redis.password": "",
	"storage.redis.db":       0,
	"server.addr":            ":8080",
	"server.redirect_delay":  3 * time.Second,
	"server.view_ttl":        10 * time.Minute,
	"render.scale":           2.33,
	"render.encoding":        "png",
	"render.jpeg_quality":    90,
	"render.workers":         8,
	"chart.table_limit":      16,
	"log.level":              "info",
	"log.file":               "",
}

// Load reads configuration from file and environment and validates it.
// An empty path searches the config directory and the working directory.
func Load(path string) (*Config, error) {
	cfg, err := Read(path)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Read is Load without validation.
func Read(path string) (*Config, error) {
	// .env is optional
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return nil, errors.Wrap(err, "failed to load .env")
	}

	v := viper.New()

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(getConfigDir())
		v.AddConfigPath(".")
	}

	for key, value := range defaults {
		v.SetDefault(key, value)
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, errors.Wrap(err, "failed to read config file")
		}
	}

	// CHARTFM_LASTFM_API_KEY, CHARTFM_SERVER_ADDR, ...
	v.SetEnvPrefix("CHARTFM")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, errors.Wrap(err, "failed to parse config")
	}

	if cfg.Storage.DataDir == "" {
		cfg.Storage.DataDir = filepath.Join(getConfigDir(), "data")
	}

	return &cfg, nil
}

// Validate checks every field against its constraints.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return errors.Wrap(err, "config validation failed")
	}
	return nil
}

// getConfigDir returns the configuration directory path
// Creates the directory if it doesn't exist
func getConfigDir() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "."
	}

	configDir := filepath.Join(homeDir, ".config", "chartfm")

	_ = os.MkdirAll(configDir, 0755)

	return configDir
}

// GetConfigDir returns the configuration directory path (public helper)
func GetConfigDir() string {
	return getConfigDir()
}

// Path returns the file Save writes to for path.
func Path(path string) string {
	if path == "" {
		return filepath.Join(getConfigDir(), "config.yaml")
	}
	return path
}

// Save writes every setting to path, or to config.yaml in the config
// directory when path is empty.
func (c *Config) Save(path string) error {
	v := viper.New()

	v.Set("lastfm.api_key", c.LastFM.APIKey)
	v.Set("lastfm.base_url", c.LastFM.BaseURL)
	v.Set("lastfm.timeout", c.LastFM.Timeout.String())
	v.Set("storage.driver", c.Storage.Driver)
	v.Set("storage.data_dir", c.Storage.DataDir)
	v.Set("storage.redis.addr", c.Storage.Redis.Addr)
	v.Set("storage.redis.password", c.Storage.Redis.Password)
	v.Set("storage.redis.db", c.Storage.Redis.DB)
	v.Set("server.addr", c.Server.Addr)
	v.Set("server.redirect_delay", c.Server.RedirectDelay.String())
	v.Set("server.view_ttl", c.Server.ViewTTL.String())
	v.Set("render.scale", c.Render.Scale)
	v.Set("render.encoding", c.Render.Encoding)
	v.Set("render.jpeg_quality", c.Render.JPEGQuality)
	v.Set("render.workers", c.Render.Workers)
	v.Set("chart.table_limit", c.Chart.TableLimit)
	v.Set("log.level", c.Log.Level)
	v.Set("log.file", c.Log.File)

	if err := v.WriteConfigAs(Path(path)); err != nil {
		return errors.Wrap(err, "failed to write config")
	}
	return nil
}

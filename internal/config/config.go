package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all runtime settings for the server and the data CLI.
type Config struct {
	Port   string `mapstructure:"port"`
	Host   string `mapstructure:"host"`
	DBPath string `mapstructure:"db_path"`
	Debug  bool   `mapstructure:"debug"`

	DataDir     string `mapstructure:"data_dir"`
	CatalogFile string `mapstructure:"catalog_file"`
	DropsFile   string `mapstructure:"drops_file"`

	ScryfallBaseURL  string        `mapstructure:"scryfall_base_url"`
	ScryfallBulkType string        `mapstructure:"scryfall_bulk_type"`
	CatalogMaxAge    time.Duration `mapstructure:"catalog_max_age"`
	DropTableURL     string        `mapstructure:"drop_table_url"`

	DefaultSetCode string `mapstructure:"default_set_code"`
	MaxRangeSpan   int    `mapstructure:"max_range_span"`

	RefreshInterval  time.Duration `mapstructure:"refresh_interval"`
	RefreshOnStartup bool          `mapstructure:"refresh_on_startup"`

	CORSAllowedOrigins []string `mapstructure:"cors_allowed_origins"`
	DropCacheSize      int      `mapstructure:"drop_cache_size"`
}

var keys = []string{
	"port", "host", "db_path", "debug",
	"data_dir", "catalog_file", "drops_file",
	"scryfall_base_url", "scryfall_bulk_type", "catalog_max_age", "drop_table_url",
	"default_set_code", "max_range_span",
	"refresh_interval", "refresh_on_startup",
	"cors_allowed_origins", "drop_cache_size",
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("port", "8080")
	v.SetDefault("host", "")
	v.SetDefault("db_path", "./sld_tracker.db")
	v.SetDefault("debug", false)

	v.SetDefault("data_dir", "./data")
	v.SetDefault("catalog_file", "scryfall_data.json")
	v.SetDefault("drops_file", "secret_lairs.json")

	v.SetDefault("scryfall_base_url", "https://api.scryfall.com")
	v.SetDefault("scryfall_bulk_type", "all_cards")
	v.SetDefault("catalog_max_age", "24h")
	v.SetDefault("drop_table_url", "https://mtg.wiki/page/Secret_Lair/Drop_Series")

	v.SetDefault("default_set_code", "SLD")
	v.SetDefault("max_range_span", 0) // no cap

	v.SetDefault("refresh_interval", "24h")
	v.SetDefault("refresh_on_startup", false)

	v.SetDefault("cors_allowed_origins", []string{"http://localhost:5173", "http://localhost:3000"})
	v.SetDefault("drop_cache_size", 256)
}

// Load reads configuration with priority: environment > config file > defaults.
// An empty configPath looks for sld-tracker.yaml in ./config and the working
// directory; a missing file is not an error.
func Load(configPath string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("sld-tracker")
		v.SetConfigType("yaml")
		v.AddConfigPath("./config")
		v.AddConfigPath(".")
	}

	// Env names match the key names upper-cased: DB_PATH, DATA_DIR, ...
	for _, key := range keys {
		if err := v.BindEnv(key, strings.ToUpper(key)); err != nil {
			return nil, fmt.Errorf("failed to bind env for %s: %w", key, err)
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	// CORS_ALLOWED_ORIGINS arrives as one comma separated string from env
	cfg.CORSAllowedOrigins = splitList(strings.Join(cfg.CORSAllowedOrigins, ","))
	cfg.DefaultSetCode = strings.ToUpper(strings.TrimSpace(cfg.DefaultSetCode))

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// Validate checks settings that would otherwise fail later in confusing ways.
func (c *Config) Validate() error {
	if c.Port == "" {
		return fmt.Errorf("port must be set")
	}
	if c.DataDir == "" {
		return fmt.Errorf("data_dir must be set")
	}
	if c.DefaultSetCode == "" {
		return fmt.Errorf("default_set_code must be set")
	}
	if c.MaxRangeSpan < 0 {
		return fmt.Errorf("max_range_span must not be negative, got %d", c.MaxRangeSpan)
	}
	if c.CatalogMaxAge < 0 {
		return fmt.Errorf("catalog_max_age must not be negative")
	}
	if c.RefreshInterval < 0 {
		return fmt.Errorf("refresh_interval must not be negative")
	}
	if c.DropCacheSize <= 0 {
		return fmt.Errorf("drop_cache_size must be positive, got %d", c.DropCacheSize)
	}
	return nil
}

// CatalogPath is where the Scryfall bulk file lives.
func (c *Config) CatalogPath() string {
	return filepath.Join(c.DataDir, c.CatalogFile)
}

// Addr is the listen address for the HTTP server.
func (c *Config) Addr() string {
	return c.Host + ":" + c.Port
}

func splitList(s string) []string {
	var out []string
	for _, item := range strings.Split(s, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}

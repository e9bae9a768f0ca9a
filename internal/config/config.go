package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds application configuration.
type Config struct {
	Database DatabaseConfig
	Rates    RatesConfig
}

// DatabaseConfig holds postgres connection settings.
type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Name     string
	SSLMode  string
}

// ConnString builds the lib/pq connection string.
func (d DatabaseConfig) ConnString() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.Name, d.SSLMode)
}

// RatesConfig holds exchange-rate provider settings.
type RatesConfig struct {
	Endpoint string
	CacheTTL time.Duration
}

// Load reads configuration from file and env. Env var overrides use prefix
// GOALFLOW_, e.g. GOALFLOW_DATABASE_HOST.
func Load() (Config, error) {
	v := viper.New()

	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "postgres")
	v.SetDefault("database.password", "postgres")
	v.SetDefault("database.name", "goalflow")
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("rates.endpoint", "")
	v.SetDefault("rates.cachettl", 10*time.Minute)

	v.SetConfigType("toml")
	v.SetConfigName("config")
	v.AddConfigPath("/etc/goalflow")
	v.AddConfigPath("$HOME/.config/goalflow")
	v.AddConfigPath(".")

	v.SetEnvPrefix("GOALFLOW")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// read config file if present
	_ = v.ReadInConfig()

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}
	return c, nil
}

package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config is the pizzamock configuration.
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Scenario ScenarioConfig `mapstructure:"scenario"`
	JWT      JWTConfig      `mapstructure:"jwt"`
	CORS     CORSConfig     `mapstructure:"cors"`
	Logging  LoggingConfig  `mapstructure:"logging"`
	Metrics  MetricsConfig  `mapstructure:"metrics"`
}

type ServerConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

type ScenarioConfig struct {
	Name  string `mapstructure:"name"`
	Dir   string `mapstructure:"dir"`
	Watch bool   `mapstructure:"watch"`
}

type JWTConfig struct {
	Secret string        `mapstructure:"secret"`
	TTL    time.Duration `mapstructure:"ttl"`
}

type CORSConfig struct {
	Enabled bool     `mapstructure:"enabled"`
	Origins []string `mapstructure:"origins"`
}

type LoggingConfig struct {
	Requests bool `mapstructure:"requests"`
}

type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Path    string `mapstructure:"path"`
}

// DefaultSecret is the development signing key.
const DefaultSecret = "pizzamock-dev-secret"

// New returns a viper instance with defaults and PIZZAMOCK_ environment
// overrides wired in. Callers may bind flags to it before Load.
func New() *viper.Viper {
	v := viper.New()
	v.SetDefault("server.host", "")
	v.SetDefault("server.port", 3000)
	v.SetDefault("server.shutdown_timeout", 5*time.Second)
	v.SetDefault("scenario.name", "purchase-with-login")
	v.SetDefault("scenario.dir", "")
	v.SetDefault("scenario.watch", false)
	v.SetDefault("jwt.secret", DefaultSecret)
	v.SetDefault("jwt.ttl", 24*time.Hour)
	v.SetDefault("cors.enabled", true)
	v.SetDefault("cors.origins", []string{"*"})
	v.SetDefault("logging.requests", true)
	v.SetDefault("metrics.enabled", true)
	v.SetDefault("metrics.path", "/metrics")

	v.SetEnvPrefix("PIZZAMOCK")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

// Load reads configFile when given, otherwise an optional pizzamock.yaml in
// the working directory, and unmarshals the result.
func Load(v *viper.Viper, configFile string) (*Config, error) {
	v.SetConfigType("yaml")
	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	} else {
		v.SetConfigName("pizzamock")
		v.AddConfigPath(".")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("failed to read config: %w", err)
			}
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if err := NewValidator(cfg).Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// GetServerAddr returns the listen address.
func (c *ServerConfig) GetServerAddr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

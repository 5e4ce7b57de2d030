package config

import (
	"fmt"

	"github.com/go-playground/validator"
	"github.com/spf13/viper"
)

type (
	app struct {
		Name     string `json:"name" mapstructure:"name"`
		Env      string `json:"env" mapstructure:"env"`
		Timezone string `json:"timezone" mapstructure:"timezone"`
	}

	influxDb struct {
		// Version selection - determines which InfluxDB implementation to use
		Version string `json:"version,omitempty" mapstructure:"version"` // "v1-oss", "v2-oss" or "v3-core"

		// v1-oss fields (InfluxDB v1, InfluxQL over the /query API)
		Username string `json:"username,omitempty" mapstructure:"username"`
		Password string `json:"password,omitempty" mapstructure:"password"`
		Database string `json:"database,omitempty" mapstructure:"database"`

		// v2-oss fields (InfluxDB v2 OSS)
		URL string `json:"url,omitempty" mapstructure:"url"` // Complete URL like http://localhost:8086
		Org string `json:"org,omitempty" mapstructure:"org"` // Organization name

		// Common fields
		Token  string `json:"token,omitempty" mapstructure:"token"`
		Bucket string `json:"bucket,omitempty" mapstructure:"bucket"`

		// v3-core fields
		Host       string `json:"host,omitempty" mapstructure:"host"`
		Port       int    `json:"port,omitempty" mapstructure:"port"`
		AuthScheme string `json:"auth_scheme,omitempty" mapstructure:"auth_scheme"`
	}

	Config struct {
		App      app      `json:"app" mapstructure:"app" validate:"required"`
		InfluxDB influxDb `json:"influxdb" mapstructure:"influxdb" validate:"required"`
	}
)

var cfg *Config

// Init loads configuration from .config file
func Init() error {
	viper.SetConfigName(".config")
	viper.SetConfigType("json")
	viper.AddConfigPath("./")

	if err := viper.ReadInConfig(); err != nil {
		return fmt.Errorf("failed to read config: %w", err)
	}

	cfg = &Config{}
	if err := viper.Unmarshal(cfg); err != nil {
		return fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := validator.New().Struct(cfg); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

// Get returns the current configuration instance
func Get() *Config {
	return cfg
}

// Set replaces the current configuration (used by tests and embedded callers)
func Set(c *Config) {
	cfg = c
}

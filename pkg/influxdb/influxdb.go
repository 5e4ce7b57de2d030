package influxdb

import (
	"fmt"
	"time"

	"github.com/benedict-erwin/influxmap/config"
	"github.com/benedict-erwin/influxmap/pkg/logger"
)

// Global client instance
var currentClient Client
var currentConfig *Config

// GetConfig returns the current InfluxDB configuration
func GetConfig() *Config {
	if currentConfig != nil {
		return currentConfig
	}

	cfg := config.Get().InfluxDB
	currentConfig = &Config{
		Username: cfg.Username,
		Password: cfg.Password,
		Database: cfg.Database,
		Token:    cfg.Token,
		Bucket:   cfg.Bucket,
	}

	// Determine version from config
	if cfg.Version != "" {
		switch cfg.Version {
		case "v1-oss":
			currentConfig.Version = VersionV1OSS
		case "v2-oss":
			currentConfig.Version = VersionV2OSS
		case "v3-core":
			currentConfig.Version = VersionV3Core
		default:
			logger.Warn().Str("version", cfg.Version).Msg("Unknown InfluxDB version, defaulting to v2-oss")
			currentConfig.Version = VersionV2OSS
		}
	} else {
		// Auto-detect version based on which config fields are set
		switch {
		case cfg.Database != "":
			currentConfig.Version = VersionV1OSS
		case cfg.URL != "" || cfg.Org != "":
			currentConfig.Version = VersionV2OSS
		case cfg.Host != "" && cfg.AuthScheme != "":
			currentConfig.Version = VersionV3Core
		default:
			currentConfig.Version = VersionV2OSS
		}
	}

	// Set version-specific fields
	switch currentConfig.Version {
	case VersionV1OSS, VersionV2OSS:
		if cfg.URL != "" {
			currentConfig.URL = cfg.URL
		} else {
			currentConfig.URL = fmt.Sprintf("http://%s:%d", cfg.Host, cfg.Port)
		}
		if cfg.Org != "" {
			currentConfig.Org = cfg.Org
		}
	case VersionV3Core:
		currentConfig.Host = cfg.Host
		currentConfig.Port = cfg.Port
		currentConfig.AuthScheme = cfg.AuthScheme
	}

	return currentConfig
}

// NewPoint creates a new Point for the active configuration
func NewPoint(measurement string, tags map[string]string, fields map[string]interface{}, timestamp time.Time) (interface{}, error) {
	return MakePoint(GetConfig().Version, measurement, tags, fields, timestamp)
}

// Init initializes the InfluxDB client based on configuration
func Init() error {
	cfg := GetConfig()

	logger.Info().
		Str("version", string(cfg.Version)).
		Msg("Initializing InfluxDB client")

	switch cfg.Version {
	case VersionV1OSS:
		currentClient = createV1OSSClient()
	case VersionV2OSS:
		currentClient = createV2OSSClient()
	case VersionV3Core:
		currentClient = createV3CoreClient()
	default:
		currentClient = createV2OSSClient()
		logger.Warn().Msg("Unknown InfluxDB version, defaulting to v2-oss")
	}

	return currentClient.Init()
}

// InitWith installs and initializes an explicit client and configuration,
// bypassing the config file (used by embedding callers and tests)
func InitWith(cfg *Config, client Client) error {
	currentConfig = cfg
	currentClient = client
	return currentClient.Init()
}

// Query executes a query and returns results as an iterator
func Query(query string) (QueryIterator, error) {
	if currentClient == nil {
		return nil, fmt.Errorf("InfluxDB client not initialized")
	}
	result, err := currentClient.Query(query)
	if err != nil {
		return nil, err
	}
	if qi, ok := result.(QueryIterator); ok {
		return qi, nil
	}
	return nil, fmt.Errorf("invalid query iterator type")
}

// GetClient returns the underlying InfluxDB client
func GetClient() interface{} {
	if currentClient == nil {
		return nil
	}
	return currentClient.GetClient()
}

// GetCurrentClient returns the current InfluxDB client instance
func GetCurrentClient() Client {
	return currentClient
}

// IsHealthy checks if client is initialized and ready
func IsHealthy() bool {
	if currentClient == nil {
		return false
	}
	return currentClient.IsHealthy()
}

// HealthCheck performs connectivity test
func HealthCheck() error {
	if currentClient == nil {
		return fmt.Errorf("InfluxDB client not initialized")
	}
	return currentClient.HealthCheck()
}

// Close shuts down the InfluxDB client
func Close() {
	if currentClient != nil {
		currentClient.Close()
		currentClient = nil
	}
	currentConfig = nil
}

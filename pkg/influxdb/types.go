package influxdb

import (
	"time"
)

// Point interface defines a generic point for time-series data
type Point interface {
	GetMeasurement() string
	GetTags() map[string]string
	GetFields() map[string]interface{}
	GetTime() time.Time
}

// QueryIterator interface defines a generic query result iterator.
// Record returns the current row as a flat column -> value map with the
// row timestamp under "time".
type QueryIterator interface {
	Next() bool
	Record() map[string]interface{}
	Err() error
	Close() error
}

// Client interface defines the InfluxDB client operations
type Client interface {
	// Initialization and cleanup
	Init() error
	Close()
	IsHealthy() bool
	HealthCheck() error

	// Write operations
	WritePoint(point interface{}) error
	WritePoints(points []interface{}) error

	// Query operations
	Query(query string) (interface{}, error)

	// Client access
	GetClient() interface{}
}

// Version represents supported InfluxDB server generations
type Version string

const (
	VersionV1OSS  Version = "v1-oss"
	VersionV2OSS  Version = "v2-oss"
	VersionV3Core Version = "v3-core"
)

// Config represents InfluxDB connection configuration
type Config struct {
	Version Version

	// v1-oss fields
	Username string
	Password string
	Database string

	// v2-oss fields
	URL string
	Org string

	// Common fields
	Token  string
	Bucket string

	// v3-core fields
	Host       string
	Port       int
	AuthScheme string
}

// DatabaseName returns the logical database the client reads and writes,
// whatever the server generation calls it.
func (c *Config) DatabaseName() string {
	if c.Version == VersionV1OSS {
		return c.Database
	}
	return c.Bucket
}

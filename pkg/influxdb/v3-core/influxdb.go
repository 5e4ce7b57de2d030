package v3core

import (
	"context"
	"fmt"
	"time"

	"github.com/InfluxCommunity/influxdb3-go/v2/influxdb3"

	"github.com/benedict-erwin/influxmap/pkg/logger"
)

// Config represents InfluxDB v3 Core configuration
type Config struct {
	Host       string
	Port       int
	Token      string
	AuthScheme string
	Bucket     string
}

// Client implements the InfluxDB v3 Core client speaking SQL
type Client struct {
	client *influxdb3.Client
	config *Config
}

// Point wraps influxdb3.Point
type Point struct {
	*influxdb3.Point
}

// QueryIterator wraps influxdb3.QueryIterator and implements the interface.
// The request context stays alive until Close so the Flight stream can keep
// producing rows after Query returns.
type QueryIterator struct {
	iterator *influxdb3.QueryIterator
	cancel   context.CancelFunc
}

// NewPoint creates a new Point
func NewPoint(measurement string, tags map[string]string, fields map[string]interface{}, timestamp time.Time) *Point {
	point := influxdb3.NewPoint(measurement, tags, fields, timestamp)
	return &Point{Point: point}
}

// Point interface implementation
func (p *Point) GetMeasurement() string {
	return p.Point.Values.MeasurementName
}

func (p *Point) GetTags() map[string]string {
	tags := make(map[string]string, len(p.Point.Values.Tags))
	for k, v := range p.Point.Values.Tags {
		tags[k] = v
	}
	return tags
}

func (p *Point) GetFields() map[string]interface{} {
	fields := make(map[string]interface{}, len(p.Point.Values.Fields))
	for k, v := range p.Point.Values.Fields {
		fields[k] = v
	}
	return fields
}

func (p *Point) GetTime() time.Time {
	return p.Point.Values.Timestamp
}

// QueryIterator interface implementation
func (qi *QueryIterator) Next() bool {
	if qi.iterator == nil {
		return false
	}
	return qi.iterator.Next()
}

func (qi *QueryIterator) Record() map[string]interface{} {
	if qi.iterator == nil || qi.iterator.Value() == nil {
		return nil
	}
	return copyRow(qi.iterator.Value())
}

// copyRow detaches a row from the iterator's reusable value map. SQL results
// already carry the timestamp under "time", so no renaming is needed.
func copyRow(values map[string]interface{}) map[string]interface{} {
	row := make(map[string]interface{}, len(values))
	for k, v := range values {
		row[k] = v
	}
	return row
}

func (qi *QueryIterator) Err() error {
	if qi.iterator == nil {
		return nil
	}
	return qi.iterator.Err()
}

func (qi *QueryIterator) Close() error {
	// influxdb3.QueryIterator has no close, releasing the context is enough
	qi.iterator = nil
	if qi.cancel != nil {
		qi.cancel()
		qi.cancel = nil
	}
	return nil
}

// SetConfig sets the configuration for the client
func (c *Client) SetConfig(host string, port int, token, authScheme, bucket string) {
	c.config = &Config{
		Host:       host,
		Port:       port,
		Token:      token,
		AuthScheme: authScheme,
		Bucket:     bucket,
	}
}

// Init initializes the InfluxDB v3 Core client
func (c *Client) Init() error {
	cfg := c.config
	if cfg == nil {
		return fmt.Errorf("v3-core client config not set")
	}

	if cfg.Host == "" || cfg.Token == "" || cfg.Bucket == "" {
		logger.Error().Msg("InfluxDB v3-core config missing host, token, or bucket")
		return fmt.Errorf("incomplete InfluxDB v3-core configuration")
	}

	if c.client != nil {
		c.client.Close()
	}

	url := fmt.Sprintf("http://%s:%d", cfg.Host, cfg.Port)
	client, err := influxdb3.New(influxdb3.ClientConfig{
		Host:       url,
		Token:      cfg.Token,
		AuthScheme: cfg.AuthScheme,
		Database:   cfg.Bucket,
	})
	if err != nil {
		return fmt.Errorf("failed to create v3-core client: %w", err)
	}
	c.client = client

	logger.Info().
		Str("host", url).
		Str("database", cfg.Bucket).
		Str("version", "v3-core").
		Msg("InfluxDB client initialized")
	return nil
}

func (c *Client) WritePoint(point interface{}) error {
	return c.WritePoints([]interface{}{point})
}

func (c *Client) WritePoints(points []interface{}) error {
	if c.client == nil {
		return fmt.Errorf("InfluxDB v3-core client not initialized")
	}

	v3Points := make([]*influxdb3.Point, len(points))
	for i, point := range points {
		p, ok := point.(*Point)
		if !ok {
			return fmt.Errorf("invalid point type for v3-core")
		}
		v3Points[i] = p.Point
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := c.client.WritePoints(ctx, v3Points); err != nil {
		logger.Error().Err(err).Int("count", len(points)).Msg("Failed to write points to InfluxDB v3-core")
		return fmt.Errorf("failed to write points: %w", err)
	}

	logger.Debug().Int("count", len(points)).Msg("Points written to InfluxDB v3-core")
	return nil
}

func (c *Client) Query(query string) (interface{}, error) {
	if c.client == nil {
		return nil, fmt.Errorf("InfluxDB v3-core client not initialized")
	}

	// The context must outlive this call: rows stream lazily and the caller
	// iterates after Query returns. The iterator's Close releases it.
	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)

	iterator, err := c.client.Query(ctx, query)
	if err != nil {
		cancel()
		logger.Error().Err(err).Str("query", query).Msg("Failed to execute InfluxDB v3-core query")
		return nil, fmt.Errorf("failed to execute query: %w", err)
	}
	return &QueryIterator{iterator: iterator, cancel: cancel}, nil
}

func (c *Client) GetClient() interface{} {
	return c.client
}

func (c *Client) IsHealthy() bool {
	return c.client != nil
}

func (c *Client) HealthCheck() error {
	if c.client == nil {
		return fmt.Errorf("InfluxDB v3-core client not initialized")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	iterator, err := c.client.Query(ctx, "SELECT 1")
	if err != nil {
		return fmt.Errorf("InfluxDB v3-core health check failed: %w", err)
	}
	for iterator.Next() {
		// drain
	}
	return iterator.Err()
}

func (c *Client) Close() {
	if c.client != nil {
		c.client.Close()
		logger.Info().Msg("InfluxDB v3-core client closed")
		c.client = nil
	}
}

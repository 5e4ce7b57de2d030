package v2oss

import (
	"context"
	"fmt"
	"time"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	"github.com/influxdata/influxdb-client-go/v2/api"
	"github.com/influxdata/influxdb-client-go/v2/api/query"
	"github.com/influxdata/influxdb-client-go/v2/api/write"

	"github.com/benedict-erwin/influxmap/pkg/logger"
)

// Config represents InfluxDB v2 OSS configuration
type Config struct {
	URL    string
	Token  string
	Org    string
	Bucket string
}

// Client implements the InfluxDB v2 OSS client speaking Flux
type Client struct {
	client   influxdb2.Client
	writeAPI api.WriteAPIBlocking
	queryAPI api.QueryAPI
	config   *Config
}

// Point wraps write.Point
type Point struct {
	*write.Point
}

// QueryIterator wraps api.QueryTableResult and implements the interface.
// The request context stays alive until Close so the result can keep
// streaming after Query returns.
type QueryIterator struct {
	result *api.QueryTableResult
	cancel context.CancelFunc
	closed bool
}

// NewPoint creates a new Point
func NewPoint(measurement string, tags map[string]string, fields map[string]interface{}, timestamp time.Time) *Point {
	point := write.NewPoint(measurement, tags, fields, timestamp)
	return &Point{Point: point}
}

// Point interface implementation
func (p *Point) GetMeasurement() string {
	return p.Point.Name()
}

func (p *Point) GetTags() map[string]string {
	tags := make(map[string]string)
	for _, tag := range p.Point.TagList() {
		tags[tag.Key] = tag.Value
	}
	return tags
}

func (p *Point) GetFields() map[string]interface{} {
	fields := make(map[string]interface{})
	for _, field := range p.Point.FieldList() {
		fields[field.Key] = field.Value
	}
	return fields
}

func (p *Point) GetTime() time.Time {
	return p.Point.Time()
}

// QueryIterator interface implementation
func (qi *QueryIterator) Next() bool {
	if qi.closed || qi.result == nil {
		return false
	}
	return qi.result.Next()
}

func (qi *QueryIterator) Record() map[string]interface{} {
	if qi.closed || qi.result == nil {
		return nil
	}

	record := qi.result.Record()
	if record == nil {
		return nil
	}
	return flattenRecord(record)
}

// flattenRecord converts a Flux record into a column -> value map. Pivoted
// queries carry field columns directly in Values; the row timestamp is
// exposed under "time" to match the v1 row shape.
func flattenRecord(record *query.FluxRecord) map[string]interface{} {
	row := make(map[string]interface{})
	for key, value := range record.Values() {
		switch key {
		case "result", "table", "_start", "_stop":
			// Internal Flux columns
		case "_time":
			row["time"] = value
		default:
			row[key] = value
		}
	}
	if record.Field() != "" {
		row[record.Field()] = record.Value()
	}
	return row
}

func (qi *QueryIterator) Err() error {
	if qi.result == nil {
		return nil
	}
	return qi.result.Err()
}

func (qi *QueryIterator) Close() error {
	qi.closed = true
	if qi.result != nil {
		qi.result.Close()
	}
	if qi.cancel != nil {
		qi.cancel()
		qi.cancel = nil
	}
	return nil
}

// SetConfig sets the configuration for the client
func (c *Client) SetConfig(url, token, org, bucket string) {
	c.config = &Config{
		URL:    url,
		Token:  token,
		Org:    org,
		Bucket: bucket,
	}
}

// Init initializes the InfluxDB v2 OSS client
func (c *Client) Init() error {
	cfg := c.config
	if cfg == nil {
		return fmt.Errorf("v2-oss client config not set")
	}

	if cfg.URL == "" || cfg.Token == "" || cfg.Bucket == "" || cfg.Org == "" {
		logger.Error().Msg("InfluxDB v2-oss config missing url, token, bucket, or org")
		return fmt.Errorf("incomplete InfluxDB v2-oss configuration")
	}

	// Close existing client
	if c.client != nil {
		c.client.Close()
	}

	c.client = influxdb2.NewClient(cfg.URL, cfg.Token)
	c.writeAPI = c.client.WriteAPIBlocking(cfg.Org, cfg.Bucket)
	c.queryAPI = c.client.QueryAPI(cfg.Org)

	logger.Info().
		Str("url", cfg.URL).
		Str("org", cfg.Org).
		Str("bucket", cfg.Bucket).
		Str("version", "v2-oss").
		Msg("InfluxDB client initialized")
	return nil
}

func (c *Client) WritePoint(point interface{}) error {
	return c.WritePoints([]interface{}{point})
}

func (c *Client) WritePoints(points []interface{}) error {
	if c.client == nil || c.writeAPI == nil {
		return fmt.Errorf("InfluxDB v2-oss client not initialized")
	}

	v2Points := make([]*write.Point, len(points))
	for i, point := range points {
		p, ok := point.(*Point)
		if !ok {
			return fmt.Errorf("invalid point type for v2-oss")
		}
		v2Points[i] = p.Point
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := c.writeAPI.WritePoint(ctx, v2Points...); err != nil {
		logger.Error().Err(err).Int("count", len(points)).Msg("Failed to write points to InfluxDB v2-oss")
		return fmt.Errorf("failed to write points: %w", err)
	}

	logger.Debug().Int("count", len(points)).Msg("Points written to InfluxDB v2-oss")
	return nil
}

func (c *Client) Query(query string) (interface{}, error) {
	if c.client == nil || c.queryAPI == nil {
		return nil, fmt.Errorf("InfluxDB v2-oss client not initialized")
	}

	// The context must outlive this call: the result streams lazily and the
	// caller iterates it after Query returns. The iterator's Close releases it.
	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)

	result, err := c.queryAPI.Query(ctx, query)
	if err != nil {
		cancel()
		logger.Error().Err(err).Str("query", query).Msg("Failed to execute InfluxDB v2-oss query")
		return nil, fmt.Errorf("failed to execute query: %w", err)
	}
	return &QueryIterator{result: result, cancel: cancel}, nil
}

func (c *Client) GetClient() interface{} {
	return c.client
}

func (c *Client) IsHealthy() bool {
	return c.client != nil && c.writeAPI != nil && c.queryAPI != nil
}

func (c *Client) HealthCheck() error {
	if c.client == nil {
		return fmt.Errorf("InfluxDB v2-oss client not initialized")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	health, err := c.client.Health(ctx)
	if err != nil {
		return fmt.Errorf("InfluxDB v2-oss health check failed: %w", err)
	}

	if health.Status != "pass" {
		return fmt.Errorf("InfluxDB v2-oss is not healthy: %s", health.Status)
	}

	return nil
}

func (c *Client) Close() {
	if c.client != nil {
		c.client.Close()
		logger.Info().Msg("InfluxDB v2-oss client closed")
		c.client = nil
		c.writeAPI = nil
		c.queryAPI = nil
	}
}

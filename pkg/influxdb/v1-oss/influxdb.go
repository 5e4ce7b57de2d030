package v1oss

import (
	"fmt"
	"time"

	_ "github.com/influxdata/influxdb1-client" // import required by the v2 sub-package module layout
	client "github.com/influxdata/influxdb1-client/v2"

	"github.com/benedict-erwin/influxmap/pkg/logger"
)

// Config represents InfluxDB v1 OSS configuration
type Config struct {
	Addr     string
	Username string
	Password string
	Database string
}

// Client implements the InfluxDB v1 OSS client speaking InfluxQL
type Client struct {
	client client.Client
	config *Config
}

// Point wraps client.Point
type Point struct {
	*client.Point
}

// QueryIterator walks the flattened rows of an InfluxQL response.
// Series tags and the time column are merged into each row map.
type QueryIterator struct {
	rows []map[string]interface{}
	pos  int
}

// NewPoint creates a new Point
func NewPoint(measurement string, tags map[string]string, fields map[string]interface{}, timestamp time.Time) (*Point, error) {
	point, err := client.NewPoint(measurement, tags, fields, timestamp)
	if err != nil {
		return nil, fmt.Errorf("failed to build v1-oss point: %w", err)
	}
	return &Point{Point: point}, nil
}

// Point interface implementation
func (p *Point) GetMeasurement() string {
	return p.Point.Name()
}

func (p *Point) GetTags() map[string]string {
	return p.Point.Tags()
}

func (p *Point) GetFields() map[string]interface{} {
	fields, err := p.Point.Fields()
	if err != nil {
		return map[string]interface{}{}
	}
	return fields
}

func (p *Point) GetTime() time.Time {
	return p.Point.Time()
}

// QueryIterator interface implementation
func (qi *QueryIterator) Next() bool {
	if qi.pos >= len(qi.rows) {
		return false
	}
	qi.pos++
	return true
}

func (qi *QueryIterator) Record() map[string]interface{} {
	if qi.pos == 0 || qi.pos > len(qi.rows) {
		return nil
	}
	return qi.rows[qi.pos-1]
}

func (qi *QueryIterator) Err() error {
	return nil
}

func (qi *QueryIterator) Close() error {
	qi.rows = nil
	return nil
}

// flattenResults converts []client.Result series into flat row maps,
// one map per value row with columns keyed by name and series tags merged in
func flattenResults(results []client.Result) []map[string]interface{} {
	var rows []map[string]interface{}
	for _, result := range results {
		if result.Err != "" {
			continue
		}
		for _, series := range result.Series {
			for _, values := range series.Values {
				row := make(map[string]interface{}, len(series.Columns)+len(series.Tags))
				for tagKey, tagValue := range series.Tags {
					row[tagKey] = tagValue
				}
				for i, column := range series.Columns {
					if i < len(values) {
						row[column] = values[i]
					}
				}
				rows = append(rows, row)
			}
		}
	}
	return rows
}

// SetConfig sets the configuration for the client
func (c *Client) SetConfig(addr, username, password, database string) {
	c.config = &Config{
		Addr:     addr,
		Username: username,
		Password: password,
		Database: database,
	}
}

// Init initializes the InfluxDB v1 OSS client
func (c *Client) Init() error {
	cfg := c.config
	if cfg == nil {
		return fmt.Errorf("v1-oss client config not set")
	}

	if cfg.Addr == "" || cfg.Database == "" {
		logger.Error().Msg("InfluxDB v1-oss config missing addr or database")
		return fmt.Errorf("incomplete InfluxDB v1-oss configuration")
	}

	if c.client != nil {
		c.client.Close()
	}

	cli, err := client.NewHTTPClient(client.HTTPConfig{
		Addr:     cfg.Addr,
		Username: cfg.Username,
		Password: cfg.Password,
	})
	if err != nil {
		return fmt.Errorf("failed to create v1-oss client: %w", err)
	}
	c.client = cli

	logger.Info().
		Str("addr", cfg.Addr).
		Str("database", cfg.Database).
		Str("version", "v1-oss").
		Msg("InfluxDB client initialized")
	return nil
}

func (c *Client) WritePoint(point interface{}) error {
	return c.WritePoints([]interface{}{point})
}

func (c *Client) WritePoints(points []interface{}) error {
	if c.client == nil {
		return fmt.Errorf("InfluxDB v1-oss client not initialized")
	}

	bp, err := client.NewBatchPoints(client.BatchPointsConfig{
		Database:  c.config.Database,
		Precision: "ns",
	})
	if err != nil {
		return fmt.Errorf("failed to create batch points: %w", err)
	}

	for _, point := range points {
		p, ok := point.(*Point)
		if !ok {
			return fmt.Errorf("invalid point type for v1-oss")
		}
		bp.AddPoint(p.Point)
	}

	if err := c.client.Write(bp); err != nil {
		logger.Error().Err(err).Int("count", len(points)).Msg("Failed to write points to InfluxDB v1-oss")
		return fmt.Errorf("failed to write points: %w", err)
	}

	logger.Debug().Int("count", len(points)).Msg("Points written to InfluxDB v1-oss")
	return nil
}

func (c *Client) Query(query string) (interface{}, error) {
	if c.client == nil {
		return nil, fmt.Errorf("InfluxDB v1-oss client not initialized")
	}

	response, err := c.client.Query(client.Query{
		Command:  query,
		Database: c.config.Database,
	})
	if err != nil {
		logger.Error().Err(err).Str("query", query).Msg("Failed to execute InfluxDB v1-oss query")
		return nil, fmt.Errorf("failed to execute query: %w", err)
	}
	if response.Error() != nil {
		return nil, fmt.Errorf("query returned error: %w", response.Error())
	}

	return &QueryIterator{rows: flattenResults(response.Results)}, nil
}

func (c *Client) GetClient() interface{} {
	return c.client
}

func (c *Client) IsHealthy() bool {
	return c.client != nil
}

func (c *Client) HealthCheck() error {
	if c.client == nil {
		return fmt.Errorf("InfluxDB v1-oss client not initialized")
	}

	if _, _, err := c.client.Ping(5 * time.Second); err != nil {
		return fmt.Errorf("InfluxDB v1-oss ping failed: %w", err)
	}
	return nil
}

func (c *Client) Close() {
	if c.client != nil {
		c.client.Close()
		logger.Info().Msg("InfluxDB v1-oss client closed")
		c.client = nil
	}
}

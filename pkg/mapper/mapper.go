package mapper

import (
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"github.com/benedict-erwin/influxmap/pkg/frame"
	"github.com/benedict-erwin/influxmap/pkg/influxdb"
	"github.com/benedict-erwin/influxmap/pkg/logger"
	"github.com/benedict-erwin/influxmap/pkg/schema"
)

// Client translates between schema points and the wrapped InfluxDB client:
// point writes, typed loads, aggregated field series and tag exploration.
// It holds no state beyond the connection and never caches results.
type Client struct {
	db      influxdb.Client
	cfg     *influxdb.Config
	builder queryBuilder
	log     *logger.ScopedLogger
}

// New binds a mapper to the globally initialized InfluxDB client
func New() (*Client, error) {
	db := influxdb.GetCurrentClient()
	if db == nil {
		return nil, fmt.Errorf("InfluxDB client not initialized")
	}
	return NewWith(db, influxdb.GetConfig())
}

// NewWith binds a mapper to an explicit client and configuration
func NewWith(db influxdb.Client, cfg *influxdb.Config) (*Client, error) {
	builder, err := newQueryBuilder(cfg)
	if err != nil {
		return nil, err
	}
	return &Client{
		db:      db,
		cfg:     cfg,
		builder: builder,
		log:     logger.WithScope("mapper"),
	}, nil
}

// HealthCheck verifies connectivity through the wrapped client
func (c *Client) HealthCheck() error {
	return c.db.HealthCheck()
}

// SavePoint writes a single point
func (c *Client) SavePoint(p *schema.Point) error {
	return c.SavePoints([]*schema.Point{p})
}

// SavePoints writes points in one batch. Every point must resolve its
// measurement name and carry at least one field value.
func (c *Client) SavePoints(points []*schema.Point) error {
	if len(points) == 0 {
		return nil
	}

	batch := make([]interface{}, 0, len(points))
	for i, p := range points {
		name, err := p.Name()
		if err != nil {
			return fmt.Errorf("point %d: %w", i, err)
		}
		fields := p.FieldValues()
		if len(fields) == 0 {
			return fmt.Errorf("point %d: measurement %q has no field values to write", i, name)
		}
		wp, err := influxdb.MakePoint(c.cfg.Version, name, p.TagValues(), fields, p.Time())
		if err != nil {
			return fmt.Errorf("point %d: %w", i, err)
		}
		batch = append(batch, wp)
	}

	if err := c.db.WritePoints(batch); err != nil {
		return err
	}
	c.log.Debug().Int("count", len(batch)).Msg("Points saved")
	return nil
}

// SaveFrame writes all rows of a frame
func (c *Client) SaveFrame(f *frame.Frame) error {
	points, err := f.ToPoints()
	if err != nil {
		return err
	}
	return c.SavePoints(points)
}

// LoadPoints queries points of a measurement back into schema points
func (c *Client) LoadPoints(m *schema.Measurement, opts LoadOptions) ([]*schema.Point, error) {
	query, err := c.builder.Load(m, opts)
	if err != nil {
		return nil, err
	}

	it, err := c.query(query)
	if err != nil {
		return nil, err
	}
	defer func() { _ = it.Close() }()

	var points []*schema.Point
	for it.Next() {
		record := it.Record()
		if record == nil {
			continue
		}
		p, err := m.FromRecord(record)
		if err != nil {
			return nil, fmt.Errorf("failed to decode query row: %w", err)
		}
		points = append(points, p)
	}
	if err := it.Err(); err != nil {
		return nil, err
	}

	c.log.Debug().Int("count", len(points)).Msg("Points loaded")
	return points, nil
}

// LoadFrame queries points of a measurement into a tabular frame
func (c *Client) LoadFrame(m *schema.Measurement, opts LoadOptions) (*frame.Frame, error) {
	points, err := c.LoadPoints(m, opts)
	if err != nil {
		return nil, err
	}
	return frame.FromPoints(points)
}

// FieldSeries runs an aggregated field-series query and returns one series
// per requested column, keyed "mean_temperature" style
func (c *Client) FieldSeries(m *schema.Measurement, req SeriesRequest) (map[string]*Series, error) {
	queries, err := c.builder.Series(m, req)
	if err != nil {
		return nil, err
	}

	loc := req.Location
	if loc == nil {
		loc = time.UTC
	}
	var interval Interval
	if req.GroupBy != "" {
		interval, _ = ParseInterval(req.GroupBy)
	}

	result := make(map[string]*Series)
	for _, q := range queries {
		for _, column := range q.Columns {
			if _, ok := result[column]; !ok {
				result[column] = &Series{}
			}
		}

		it, err := c.query(q.Query)
		if err != nil {
			return nil, err
		}
		for it.Next() {
			record := it.Record()
			if record == nil {
				continue
			}

			var ts time.Time
			if raw, ok := record["time"]; ok && raw != nil {
				ts, err = schema.ParseRecordTime(raw)
				if err != nil {
					_ = it.Close()
					return nil, err
				}
				if req.GroupBy != "" {
					ts = req.WindowIndex.Shift(ts, interval)
				}
			}
			ts = ts.In(loc)

			for rowKey, column := range q.Columns {
				result[column].append(ts, seriesValue(record[rowKey]))
			}
		}
		if err := it.Err(); err != nil {
			_ = it.Close()
			return nil, err
		}
		_ = it.Close()
	}

	return result, nil
}

// DistinctTagValues returns the distinct values a tag holds in the database,
// optionally scoped to one measurement. Dynamic measurement names resolve
// through nameTags.
func (c *Client) DistinctTagValues(tagName string, m *schema.Measurement, nameTags map[string]string) ([]string, error) {
	tq, err := c.builder.TagValues(tagName, m, nameTags)
	if err != nil {
		return nil, err
	}

	it, err := c.query(tq.Query)
	if err != nil {
		return nil, err
	}
	defer func() { _ = it.Close() }()

	seen := make(map[string]bool)
	var values []string
	for it.Next() {
		record := it.Record()
		if record == nil {
			continue
		}
		if s, ok := record[tq.ValueKey].(string); ok && !seen[s] {
			seen[s] = true
			values = append(values, s)
		}
	}
	if err := it.Err(); err != nil {
		return nil, err
	}

	sort.Strings(values)
	return values, nil
}

func (c *Client) query(query string) (influxdb.QueryIterator, error) {
	result, err := c.db.Query(query)
	if err != nil {
		return nil, err
	}
	it, ok := result.(influxdb.QueryIterator)
	if !ok {
		return nil, fmt.Errorf("invalid query iterator type")
	}
	return it, nil
}

// seriesValue unwraps json.Number values of v1 responses so series hold
// plain Go numbers
func seriesValue(value interface{}) interface{} {
	if n, ok := value.(json.Number); ok {
		if i, err := n.Int64(); err == nil {
			return i
		}
		if f, err := n.Float64(); err == nil {
			return f
		}
	}
	return value
}

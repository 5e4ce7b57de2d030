package mapper

import (
	"fmt"

	"github.com/benedict-erwin/influxmap/pkg/influxdb"
	"github.com/benedict-erwin/influxmap/pkg/schema"
)

// seriesQuery is one query of an aggregated-series request together with the
// mapping from result-row keys to the column names callers see
type seriesQuery struct {
	Query string
	// Columns maps row keys in the query result to result column names,
	// e.g. "temperature" -> "mean_temperature"
	Columns map[string]string
}

// tagValuesQuery wraps a distinct-tag-values query and the row key holding
// the values
type tagValuesQuery struct {
	Query    string
	ValueKey string
}

// queryBuilder emits dialect-specific queries for the mapper operations.
// One implementation exists per InfluxDB generation: InfluxQL (v1-oss),
// Flux (v2-oss) and SQL (v3-core).
type queryBuilder interface {
	Load(m *schema.Measurement, opts LoadOptions) (string, error)
	Series(m *schema.Measurement, req SeriesRequest) ([]seriesQuery, error)
	TagValues(tagName string, m *schema.Measurement, nameTags map[string]string) (tagValuesQuery, error)
}

// newQueryBuilder selects the builder for an InfluxDB generation
func newQueryBuilder(cfg *influxdb.Config) (queryBuilder, error) {
	switch cfg.Version {
	case influxdb.VersionV1OSS:
		return &influxQLBuilder{}, nil
	case influxdb.VersionV2OSS:
		return &fluxBuilder{bucket: cfg.Bucket}, nil
	case influxdb.VersionV3Core:
		return &sqlBuilder{}, nil
	default:
		return nil, fmt.Errorf("no query builder for InfluxDB version %q", cfg.Version)
	}
}

// resolveName resolves a possibly dynamic measurement name from the tag
// filters of a request
func resolveName(m *schema.Measurement, tags map[string]string) (string, error) {
	name, err := m.ResolveName(tags)
	if err != nil {
		return "", fmt.Errorf("cannot resolve measurement name from query tags: %w", err)
	}
	return name, nil
}

// checkSeriesFields verifies that every aggregated field is declared
func checkSeriesFields(m *schema.Measurement, req SeriesRequest) error {
	for field := range req.Aggregations {
		if _, ok := m.Field(field); !ok {
			return fmt.Errorf("field %q: %w", field, schema.ErrUnknownColumn)
		}
	}
	return nil
}

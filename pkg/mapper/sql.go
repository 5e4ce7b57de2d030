package mapper

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/benedict-erwin/influxmap/pkg/schema"
)

// sqlBuilder emits SQL for the v3-core client
type sqlBuilder struct{}

func (b *sqlBuilder) Load(m *schema.Measurement, opts LoadOptions) (string, error) {
	if err := opts.validate(); err != nil {
		return "", err
	}
	name, err := resolveName(m, opts.Tags)
	if err != nil {
		return "", err
	}

	var sb strings.Builder
	sb.WriteString("SELECT * FROM ")
	sb.WriteString(quoteIdent(name))
	if where := sqlConditions(opts); where != "" {
		sb.WriteString(" WHERE ")
		sb.WriteString(where)
	}
	sb.WriteString(" ORDER BY time")
	if opts.Limit > 0 {
		sb.WriteString(" LIMIT ")
		sb.WriteString(strconv.Itoa(opts.Limit))
	}

	return sb.String(), nil
}

func (b *sqlBuilder) Series(m *schema.Measurement, req SeriesRequest) ([]seriesQuery, error) {
	if err := req.validate(); err != nil {
		return nil, err
	}
	if err := checkSeriesFields(m, req); err != nil {
		return nil, err
	}
	// v3 SQL has no gap filling equivalent for empty windows
	if req.Fill != FillUnset && req.Fill != FillNone {
		return nil, fmt.Errorf("fill mode %q is not supported on InfluxDB v3", req.Fill)
	}
	name, err := resolveName(m, req.Tags)
	if err != nil {
		return nil, err
	}

	columns := make(map[string]string)
	var projections []string

	var grouped bool
	if req.GroupBy != "" {
		grouped = true
		interval, _ := ParseInterval(req.GroupBy)
		projections = append(projections,
			fmt.Sprintf("date_bin(INTERVAL '%s', time) AS time", sqlInterval(interval)))
	}

	for _, field := range sortedKeys(req.Aggregations) {
		modes := req.Aggregations[field]
		if len(modes) == 0 {
			modes = []AggregationMode{AggregateNone}
		}
		for _, mode := range modes {
			result := mode.ResultColumn(field)
			columns[result] = result
			expr, err := sqlAggregate(mode, field)
			if err != nil {
				return nil, err
			}
			if mode == AggregateNone {
				if grouped {
					return nil, fmt.Errorf("field %q: group-by interval needs an aggregation mode", field)
				}
				projections = append(projections, expr)
			} else {
				projections = append(projections, expr+" AS "+result)
			}
		}
	}

	var sb strings.Builder
	sb.WriteString("SELECT ")
	sb.WriteString(strings.Join(projections, ", "))
	sb.WriteString(" FROM ")
	sb.WriteString(quoteIdent(name))
	if where := sqlConditions(req.LoadOptions); where != "" {
		sb.WriteString(" WHERE ")
		sb.WriteString(where)
	}
	if grouped {
		sb.WriteString(" GROUP BY 1 ORDER BY 1")
	}
	if req.Limit > 0 {
		sb.WriteString(" LIMIT ")
		sb.WriteString(strconv.Itoa(req.Limit))
	}

	return []seriesQuery{{Query: sb.String(), Columns: columns}}, nil
}

func (b *sqlBuilder) TagValues(tagName string, m *schema.Measurement, nameTags map[string]string) (tagValuesQuery, error) {
	if m == nil {
		return tagValuesQuery{}, fmt.Errorf("distinct tag values on InfluxDB v3 need a measurement")
	}
	name, err := resolveName(m, nameTags)
	if err != nil {
		return tagValuesQuery{}, err
	}

	query := fmt.Sprintf("SELECT DISTINCT %s FROM %s WHERE %s IS NOT NULL",
		quoteIdent(tagName), quoteIdent(name), quoteIdent(tagName))
	return tagValuesQuery{Query: query, ValueKey: tagName}, nil
}

// sqlAggregate maps an aggregation mode onto the v3 SQL function set
func sqlAggregate(mode AggregationMode, field string) (string, error) {
	ident := quoteIdent(field)
	switch mode {
	case AggregateNone:
		return ident, nil
	case AggregateMean:
		return "avg(" + ident + ")", nil
	case AggregateMedian:
		return "median(" + ident + ")", nil
	case AggregateCount:
		return "count(" + ident + ")", nil
	case AggregateMin:
		return "min(" + ident + ")", nil
	case AggregateMax:
		return "max(" + ident + ")", nil
	case AggregateSum:
		return "sum(" + ident + ")", nil
	case AggregateStddev:
		return "stddev(" + ident + ")", nil
	case AggregateSpread:
		return "max(" + ident + ") - min(" + ident + ")", nil
	case AggregateFirst:
		return "selector_first(" + ident + ", time)['value']", nil
	case AggregateLast:
		return "selector_last(" + ident + ", time)['value']", nil
	default:
		return "", fmt.Errorf("aggregation mode %q is not supported on InfluxDB v3", mode)
	}
}

// sqlEscape escapes a v3 SQL single-quoted string literal by doubling
// embedded single quotes, per DataFusion/SQL semantics
func sqlEscape(s string) string {
	return strings.ReplaceAll(s, "'", "''")
}

func sqlConditions(opts LoadOptions) string {
	var conditions []string
	for _, tagName := range sortedTagKeys(opts.Tags) {
		conditions = append(conditions,
			fmt.Sprintf("%s = '%s'", quoteIdent(tagName), sqlEscape(opts.Tags[tagName])))
	}

	if opts.Day != nil {
		dayStart := opts.Day.UTC().Truncate(24 * time.Hour)
		conditions = append(conditions,
			fmt.Sprintf("time >= TIMESTAMP '%s' AND time < TIMESTAMP '%s'",
				dayStart.Format(time.RFC3339),
				dayStart.Add(24*time.Hour).Format(time.RFC3339)))
	} else {
		if opts.Start != nil {
			conditions = append(conditions,
				fmt.Sprintf("time >= TIMESTAMP '%s'", opts.Start.UTC().Format(time.RFC3339)))
		}
		if opts.End != nil {
			conditions = append(conditions,
				fmt.Sprintf("time <= TIMESTAMP '%s'", opts.End.UTC().Format(time.RFC3339)))
		}
	}

	return strings.Join(conditions, " AND ")
}

// sqlInterval renders an interval in the spelled-out SQL form
func sqlInterval(i Interval) string {
	unit := map[byte]string{'d': "day", 'h': "hour", 'm': "minute", 's': "second"}[i.Unit]
	if i.Value != 1 {
		unit += "s"
	}
	return fmt.Sprintf("%d %s", i.Value, unit)
}

package mapper

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/benedict-erwin/influxmap/pkg/schema"
)

// fluxBuilder emits Flux for the v2-oss client
type fluxBuilder struct {
	bucket string
}

func (b *fluxBuilder) Load(m *schema.Measurement, opts LoadOptions) (string, error) {
	if err := opts.validate(); err != nil {
		return "", err
	}
	name, err := resolveName(m, opts.Tags)
	if err != nil {
		return "", err
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "from(bucket: %q)\n", b.bucket)
	fmt.Fprintf(&sb, "  |> range(%s)\n", fluxRange(opts))
	fmt.Fprintf(&sb, "  |> filter(fn: (r) => r[\"_measurement\"] == %q)", name)
	sb.WriteString(fluxTagFilters(opts.Tags))
	sb.WriteString("\n  |> pivot(rowKey: [\"_time\"], columnKey: [\"_field\"], valueColumn: \"_value\")")
	sb.WriteString("\n  |> sort(columns: [\"_time\"])")
	if opts.Limit > 0 {
		fmt.Fprintf(&sb, "\n  |> limit(n: %d)", opts.Limit)
	}

	return sb.String(), nil
}

// Series builds one Flux query per aggregated column: Flux aggregates one
// field stream at a time, so unlike InfluxQL the modes cannot share a query
func (b *fluxBuilder) Series(m *schema.Measurement, req SeriesRequest) ([]seriesQuery, error) {
	if err := req.validate(); err != nil {
		return nil, err
	}
	if err := checkSeriesFields(m, req); err != nil {
		return nil, err
	}
	name, err := resolveName(m, req.Tags)
	if err != nil {
		return nil, err
	}

	var queries []seriesQuery
	for _, field := range sortedKeys(req.Aggregations) {
		modes := req.Aggregations[field]
		if len(modes) == 0 {
			modes = []AggregationMode{AggregateNone}
		}
		for _, mode := range modes {
			query, err := b.seriesColumn(name, field, mode, req)
			if err != nil {
				return nil, err
			}
			queries = append(queries, seriesQuery{
				Query:   query,
				Columns: map[string]string{field: mode.ResultColumn(field)},
			})
		}
	}
	return queries, nil
}

func (b *fluxBuilder) seriesColumn(name, field string, mode AggregationMode, req SeriesRequest) (string, error) {
	var sb strings.Builder
	if req.Fill == FillLinear {
		sb.WriteString("import \"interpolate\"\n")
	}
	fmt.Fprintf(&sb, "from(bucket: %q)\n", b.bucket)
	fmt.Fprintf(&sb, "  |> range(%s)\n", fluxRange(req.LoadOptions))
	fmt.Fprintf(&sb, "  |> filter(fn: (r) => r[\"_measurement\"] == %q)\n", name)
	fmt.Fprintf(&sb, "  |> filter(fn: (r) => r[\"_field\"] == %q)", field)
	sb.WriteString(fluxTagFilters(req.Tags))

	if req.GroupBy != "" {
		if mode == AggregateNone {
			return "", fmt.Errorf("field %q: group-by interval needs an aggregation mode", field)
		}
		createEmpty := req.Fill != FillNone && req.Fill != FillUnset
		fmt.Fprintf(&sb, "\n  |> aggregateWindow(every: %s, fn: %s, timeSrc: \"_start\", createEmpty: %t)",
			req.GroupBy, mode, createEmpty)
		switch req.Fill {
		case FillPrevious:
			sb.WriteString("\n  |> fill(usePrevious: true)")
		case FillNumber:
			fmt.Fprintf(&sb, "\n  |> fill(value: %s)", strconv.FormatFloat(*req.FillValue, 'g', -1, 64))
		case FillLinear:
			fmt.Fprintf(&sb, "\n  |> interpolate.linear(every: %s)", req.GroupBy)
		}
	} else if mode != AggregateNone {
		fmt.Fprintf(&sb, "\n  |> %s()", mode)
	}

	if req.Limit > 0 {
		fmt.Fprintf(&sb, "\n  |> limit(n: %d)", req.Limit)
	}

	return sb.String(), nil
}

func (b *fluxBuilder) TagValues(tagName string, m *schema.Measurement, nameTags map[string]string) (tagValuesQuery, error) {
	var sb strings.Builder
	sb.WriteString("import \"influxdata/influxdb/schema\"\n")
	if m != nil {
		name, err := resolveName(m, nameTags)
		if err != nil {
			return tagValuesQuery{}, err
		}
		fmt.Fprintf(&sb, "schema.measurementTagValues(bucket: %q, measurement: %q, tag: %q)",
			b.bucket, name, tagName)
	} else {
		fmt.Fprintf(&sb, "schema.tagValues(bucket: %q, tag: %q)", b.bucket, tagName)
	}

	return tagValuesQuery{Query: sb.String(), ValueKey: "_value"}, nil
}

// fluxRange renders the range() arguments; an unbounded load starts at the
// epoch because Flux requires a start
func fluxRange(opts LoadOptions) string {
	if opts.Day != nil {
		dayStart := opts.Day.UTC().Truncate(24 * time.Hour)
		return fmt.Sprintf("start: %s, stop: %s",
			dayStart.Format(time.RFC3339),
			dayStart.Add(24*time.Hour).Format(time.RFC3339))
	}

	start := "0"
	if opts.Start != nil {
		start = opts.Start.UTC().Format(time.RFC3339)
	}
	if opts.End != nil {
		// Flux stops are exclusive, the mapper's End is inclusive
		stop := opts.End.UTC().Add(time.Nanosecond).Format(time.RFC3339Nano)
		return fmt.Sprintf("start: %s, stop: %s", start, stop)
	}
	return "start: " + start
}

// fluxTagFilters renders exact-match tag filters, one filter call per tag
func fluxTagFilters(tags map[string]string) string {
	var sb strings.Builder
	for _, tagName := range sortedTagKeys(tags) {
		escaped := strings.ReplaceAll(tags[tagName], `\`, `\\`)
		escaped = strings.ReplaceAll(escaped, `"`, `\"`)
		fmt.Fprintf(&sb, "\n  |> filter(fn: (r) => r[\"%s\"] == \"%s\")", tagName, escaped)
	}
	return sb.String()
}

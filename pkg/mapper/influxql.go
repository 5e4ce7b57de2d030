package mapper

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/benedict-erwin/influxmap/pkg/schema"
)

// influxQLBuilder emits InfluxQL for the v1-oss client
type influxQLBuilder struct{}

func (b *influxQLBuilder) Load(m *schema.Measurement, opts LoadOptions) (string, error) {
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

	if where := influxQLConditions(opts); where != "" {
		sb.WriteString(" WHERE ")
		sb.WriteString(where)
	}
	if opts.Limit > 0 {
		sb.WriteString(" LIMIT ")
		sb.WriteString(strconv.Itoa(opts.Limit))
	}

	return sb.String(), nil
}

func (b *influxQLBuilder) Series(m *schema.Measurement, req SeriesRequest) ([]seriesQuery, error) {
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

	columns := make(map[string]string)
	var projections []string
	for _, field := range sortedKeys(req.Aggregations) {
		modes := req.Aggregations[field]
		if len(modes) == 0 {
			modes = []AggregationMode{AggregateNone}
		}
		for _, mode := range modes {
			result := mode.ResultColumn(field)
			columns[result] = result
			if mode == AggregateNone {
				if req.GroupBy != "" {
					return nil, fmt.Errorf("field %q: group-by interval needs an aggregation mode", field)
				}
				projections = append(projections, quoteIdent(field))
			} else {
				projections = append(projections,
					fmt.Sprintf("%s(%s) AS %s", mode, quoteIdent(field), result))
			}
		}
	}

	var sb strings.Builder
	sb.WriteString("SELECT ")
	sb.WriteString(strings.Join(projections, ", "))
	sb.WriteString(" FROM ")
	sb.WriteString(quoteIdent(name))

	if where := influxQLConditions(req.LoadOptions); where != "" {
		sb.WriteString(" WHERE ")
		sb.WriteString(where)
	}

	if req.GroupBy != "" {
		sb.WriteString(" GROUP BY time(")
		sb.WriteString(req.GroupBy)
		sb.WriteString(")")
		switch req.Fill {
		case FillNumber:
			sb.WriteString(" fill(" + strconv.FormatFloat(*req.FillValue, 'g', -1, 64) + ")")
		case FillNull, FillPrevious, FillNone, FillLinear:
			sb.WriteString(" fill(" + string(req.Fill) + ")")
		}
	}

	if req.Limit > 0 {
		sb.WriteString(" LIMIT ")
		sb.WriteString(strconv.Itoa(req.Limit))
	}

	return []seriesQuery{{Query: sb.String(), Columns: columns}}, nil
}

func (b *influxQLBuilder) TagValues(tagName string, m *schema.Measurement, nameTags map[string]string) (tagValuesQuery, error) {
	var sb strings.Builder
	sb.WriteString("SHOW TAG VALUES")
	if m != nil {
		name, err := resolveName(m, nameTags)
		if err != nil {
			return tagValuesQuery{}, err
		}
		sb.WriteString(" FROM ")
		sb.WriteString(quoteIdent(name))
	}
	sb.WriteString(" WITH KEY = ")
	sb.WriteString(quoteIdent(tagName))

	return tagValuesQuery{Query: sb.String(), ValueKey: "value"}, nil
}

// influxQLConditions renders the WHERE clause of a load: exact tag matches
// plus the time bounds
func influxQLConditions(opts LoadOptions) string {
	var conditions []string
	for _, tagName := range sortedTagKeys(opts.Tags) {
		conditions = append(conditions,
			fmt.Sprintf("%s = '%s'", quoteIdent(tagName), escapeStringLit(opts.Tags[tagName])))
	}

	if opts.Day != nil {
		dayStart := opts.Day.UTC().Truncate(24 * time.Hour)
		conditions = append(conditions,
			fmt.Sprintf("time >= '%s' AND time < '%s'",
				dayStart.Format(time.RFC3339),
				dayStart.Add(24*time.Hour).Format(time.RFC3339)))
	} else {
		if opts.Start != nil {
			conditions = append(conditions,
				fmt.Sprintf("time >= '%s'", opts.Start.UTC().Format(time.RFC3339)))
		}
		if opts.End != nil {
			conditions = append(conditions,
				fmt.Sprintf("time <= '%s'", opts.End.UTC().Format(time.RFC3339)))
		}
	}

	return strings.Join(conditions, " AND ")
}

// quoteIdent double-quotes an InfluxQL identifier
func quoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `\"`) + `"`
}

// escapeStringLit escapes a single-quoted InfluxQL string literal
func escapeStringLit(value string) string {
	value = strings.ReplaceAll(value, `\`, `\\`)
	return strings.ReplaceAll(value, `'`, `\'`)
}

func sortedKeys(m map[string][]AggregationMode) []string {
	keys := make([]string, 0, len(m))
	for key := range m {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

func sortedTagKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for key := range m {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

package frame

import (
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/goccy/go-json"
	"github.com/olekukonko/tablewriter"

	"github.com/benedict-erwin/influxmap/pkg/schema"
	"github.com/benedict-erwin/influxmap/pkg/utils"
)

// Frame is a time-indexed column table over points of a single measurement.
// Column order follows the schema declaration; exported column names use the
// camelCase form of the declared snake_case names.
type Frame struct {
	measurement *schema.Measurement

	// declared column names, fields first then tags
	columns []string
	index   []time.Time
	data    map[string][]interface{}
}

// ColumnName converts a declared column name to its exported frame form
func ColumnName(declared string) string {
	return utils.SnakeToCamel(declared)
}

// FromPoints builds a frame from points that all share one measurement schema
func FromPoints(points []*schema.Point) (*Frame, error) {
	if len(points) == 0 {
		return &Frame{data: map[string][]interface{}{}}, nil
	}

	m := points[0].Measurement()
	f := &Frame{
		measurement: m,
		columns:     append(m.FieldNames(), m.TagNames()...),
		data:        make(map[string][]interface{}, len(m.FieldNames())+len(m.TagNames())),
	}

	for _, p := range points {
		if p.Measurement() != m {
			return nil, fmt.Errorf("all points in a frame must share one measurement")
		}
		f.index = append(f.index, p.Time())
		for _, name := range m.FieldNames() {
			value, ok := p.Field(name)
			if !ok {
				value = nil
			}
			f.data[name] = append(f.data[name], value)
		}
		for _, name := range m.TagNames() {
			if value, ok := p.Tag(name); ok {
				f.data[name] = append(f.data[name], value)
			} else {
				f.data[name] = append(f.data[name], nil)
			}
		}
	}

	return f, nil
}

// Measurement returns the schema the frame is bound to, nil for an empty frame
func (f *Frame) Measurement() *schema.Measurement {
	return f.measurement
}

// Len returns the number of rows
func (f *Frame) Len() int {
	return len(f.index)
}

// Index returns the row timestamps
func (f *Frame) Index() []time.Time {
	return append([]time.Time(nil), f.index...)
}

// Columns returns the exported column names in declaration order
func (f *Frame) Columns() []string {
	names := make([]string, 0, len(f.columns))
	for _, name := range f.columns {
		names = append(names, ColumnName(name))
	}
	return names
}

// Column returns the values of a column by its declared or exported name
func (f *Frame) Column(name string) ([]interface{}, bool) {
	if values, ok := f.data[name]; ok {
		return append([]interface{}(nil), values...), true
	}
	if values, ok := f.data[utils.CamelToSnake(name)]; ok {
		return append([]interface{}(nil), values...), true
	}
	return nil, false
}

// ToPoints rebuilds the frame rows into validated points
func (f *Frame) ToPoints() ([]*schema.Point, error) {
	if f.measurement == nil || len(f.index) == 0 {
		return nil, nil
	}

	points := make([]*schema.Point, 0, len(f.index))
	for row, ts := range f.index {
		values := schema.Values{}
		for _, name := range f.columns {
			if value := f.data[name][row]; value != nil {
				values[name] = value
			}
		}
		p, err := f.measurement.NewPoint(ts, values)
		if err != nil {
			return nil, fmt.Errorf("frame row %d: %w", row, err)
		}
		points = append(points, p)
	}
	return points, nil
}

// Render writes the frame as an aligned text table
func (f *Frame) Render(w io.Writer) {
	table := tablewriter.NewWriter(w)
	table.Header(append([]string{"time"}, f.Columns()...))
	for row, ts := range f.index {
		line := make([]string, 0, len(f.columns)+1)
		line = append(line, ts.Format(time.RFC3339))
		for _, name := range f.columns {
			line = append(line, cellString(f.data[name][row]))
		}
		table.Append(line)
	}
	table.Render()
}

// MarshalJSON encodes the frame column-oriented, keyed by exported names
func (f *Frame) MarshalJSON() ([]byte, error) {
	doc := make(map[string]interface{}, len(f.columns)+1)
	times := make([]string, 0, len(f.index))
	for _, ts := range f.index {
		times = append(times, ts.Format(time.RFC3339Nano))
	}
	doc["time"] = times
	for _, name := range f.columns {
		doc[ColumnName(name)] = f.data[name]
	}
	return json.Marshal(doc)
}

func cellString(value interface{}) string {
	if value == nil {
		return ""
	}
	switch v := value.(type) {
	case float64:
		return strconv.FormatFloat(v, 'g', -1, 64)
	case int64:
		return strconv.FormatInt(v, 10)
	case bool:
		return strconv.FormatBool(v)
	case string:
		return v
	default:
		return fmt.Sprintf("%v", v)
	}
}

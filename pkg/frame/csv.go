package frame

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/benedict-erwin/influxmap/pkg/schema"
	"github.com/benedict-erwin/influxmap/pkg/utils"
)

// WriteCSV writes the frame with a header row of exported column names.
// Unset values become empty cells.
func (f *Frame) WriteCSV(w io.Writer) error {
	cw := csv.NewWriter(w)

	if err := cw.Write(append([]string{"time"}, f.Columns()...)); err != nil {
		return fmt.Errorf("failed to write csv header: %w", err)
	}
	for row, ts := range f.index {
		line := make([]string, 0, len(f.columns)+1)
		line = append(line, ts.Format(time.RFC3339Nano))
		for _, name := range f.columns {
			line = append(line, cellString(f.data[name][row]))
		}
		if err := cw.Write(line); err != nil {
			return fmt.Errorf("failed to write csv row %d: %w", row, err)
		}
	}

	cw.Flush()
	return cw.Error()
}

// ReadCSV parses a frame written by WriteCSV back against a measurement
// schema. Cell values are parsed according to the declared column types;
// empty cells stay unset.
func ReadCSV(m *schema.Measurement, r io.Reader) (*Frame, error) {
	cr := csv.NewReader(r)
	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read csv: %w", err)
	}
	if len(records) == 0 {
		return FromPoints(nil)
	}

	header := records[0]
	if len(header) == 0 || header[0] != "time" {
		return nil, fmt.Errorf("csv header must start with a time column")
	}
	declared := make([]string, len(header))
	for i := 1; i < len(header); i++ {
		name := utils.CamelToSnake(header[i])
		if !m.HasColumn(name) {
			return nil, fmt.Errorf("csv column %q: %w", header[i], schema.ErrUnknownColumn)
		}
		declared[i] = name
	}

	points := make([]*schema.Point, 0, len(records)-1)
	for rowNum, record := range records[1:] {
		if len(record) != len(header) {
			return nil, fmt.Errorf("csv row %d: expected %d cells, got %d", rowNum+1, len(header), len(record))
		}
		ts, err := time.Parse(time.RFC3339Nano, record[0])
		if err != nil {
			return nil, fmt.Errorf("csv row %d: invalid time %q: %w", rowNum+1, record[0], err)
		}

		values := schema.Values{}
		for i := 1; i < len(record); i++ {
			if record[i] == "" {
				continue
			}
			value, err := parseCell(m, declared[i], record[i])
			if err != nil {
				return nil, fmt.Errorf("csv row %d: %w", rowNum+1, err)
			}
			values[declared[i]] = value
		}

		p, err := m.NewPoint(ts, values)
		if err != nil {
			return nil, fmt.Errorf("csv row %d: %w", rowNum+1, err)
		}
		points = append(points, p)
	}

	return FromPoints(points)
}

// parseCell converts a csv cell into the Go type the column declares
func parseCell(m *schema.Measurement, name, cell string) (interface{}, error) {
	if _, ok := m.Tag(name); ok {
		return cell, nil
	}
	field, _ := m.Field(name)
	switch field.Type() {
	case schema.FieldTypeInteger:
		n, err := strconv.ParseInt(cell, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("column %q: invalid integer %q: %w", name, cell, schema.ErrTypeMismatch)
		}
		return n, nil
	case schema.FieldTypeFloat:
		x, err := strconv.ParseFloat(cell, 64)
		if err != nil {
			return nil, fmt.Errorf("column %q: invalid float %q: %w", name, cell, schema.ErrTypeMismatch)
		}
		return x, nil
	case schema.FieldTypeBoolean:
		b, err := strconv.ParseBool(cell)
		if err != nil {
			return nil, fmt.Errorf("column %q: invalid boolean %q: %w", name, cell, schema.ErrTypeMismatch)
		}
		return b, nil
	default:
		return cell, nil
	}
}

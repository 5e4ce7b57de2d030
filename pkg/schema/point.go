package schema

import (
	"encoding/json"
	"fmt"
	"time"
)

// Values carries tag and field values keyed by declared column name
type Values map[string]interface{}

// Point is an instance of a Measurement bound to a timestamp and concrete
// tag/field values. All values held by a point have passed validation.
type Point struct {
	measurement *Measurement
	time        time.Time
	tags        map[string]string
	fields      map[string]interface{}
}

// NewPoint builds a validated point. Every value must reference a declared
// tag or field, values must match the declared types, and every non-nullable
// tag and field must be present.
func (m *Measurement) NewPoint(ts time.Time, values Values) (*Point, error) {
	p := &Point{
		measurement: m,
		time:        ts,
		tags:        make(map[string]string),
		fields:      make(map[string]interface{}),
	}

	for name, value := range values {
		if err := p.set(name, value); err != nil {
			return nil, err
		}
	}

	for _, name := range m.tagOrder {
		tag := m.tags[name]
		if _, ok := p.tags[name]; !ok && !tag.Nullable() {
			return nil, fmt.Errorf("tag %q: %w", name, ErrNullValue)
		}
	}
	for _, name := range m.fieldOrder {
		field := m.fields[name]
		if _, ok := p.fields[name]; !ok && !field.Nullable() {
			return nil, fmt.Errorf("field %q: %w", name, ErrNullValue)
		}
	}

	return p, nil
}

func (p *Point) set(name string, value interface{}) error {
	if tag, ok := p.measurement.tags[name]; ok {
		if value == nil {
			if !tag.Nullable() {
				return fmt.Errorf("tag %q: %w", name, ErrNullValue)
			}
			delete(p.tags, name)
			return nil
		}
		s, err := tag.Validate(value)
		if err != nil {
			return err
		}
		p.tags[name] = s
		return nil
	}

	if field, ok := p.measurement.fields[name]; ok {
		if value == nil {
			if !field.Nullable() {
				return fmt.Errorf("field %q: %w", name, ErrNullValue)
			}
			delete(p.fields, name)
			return nil
		}
		normalized, err := field.Validate(value)
		if err != nil {
			return err
		}
		p.fields[name] = normalized
		return nil
	}

	return fmt.Errorf("column %q: %w", name, ErrUnknownColumn)
}

// Measurement returns the schema this point is bound to
func (p *Point) Measurement() *Measurement {
	return p.measurement
}

// Time returns the point timestamp
func (p *Point) Time() time.Time {
	return p.time
}

// SetTime rebinds the point timestamp
func (p *Point) SetTime(ts time.Time) {
	p.time = ts
}

// SetTag validates and assigns a tag value; nil clears a nullable tag
func (p *Point) SetTag(name string, value interface{}) error {
	if _, ok := p.measurement.tags[name]; !ok {
		return fmt.Errorf("tag %q: %w", name, ErrUnknownColumn)
	}
	return p.set(name, value)
}

// SetField validates and assigns a field value; nil clears a nullable field
func (p *Point) SetField(name string, value interface{}) error {
	if _, ok := p.measurement.fields[name]; !ok {
		return fmt.Errorf("field %q: %w", name, ErrUnknownColumn)
	}
	return p.set(name, value)
}

// Tag returns a tag value and whether it is set
func (p *Point) Tag(name string) (string, bool) {
	value, ok := p.tags[name]
	return value, ok
}

// Field returns a field value and whether it is set
func (p *Point) Field(name string) (interface{}, bool) {
	value, ok := p.fields[name]
	return value, ok
}

// TagValues returns a copy of the set tag values
func (p *Point) TagValues() map[string]string {
	tags := make(map[string]string, len(p.tags))
	for name, value := range p.tags {
		tags[name] = value
	}
	return tags
}

// FieldValues returns a copy of the set field values
func (p *Point) FieldValues() map[string]interface{} {
	fields := make(map[string]interface{}, len(p.fields))
	for name, value := range p.fields {
		fields[name] = value
	}
	return fields
}

// Name resolves the measurement name for this point, substituting tag values
// into the name template
func (p *Point) Name() (string, error) {
	return p.measurement.ResolveName(p.tags)
}

// FromRecord rebuilds a point from a flat query-result row. Unknown columns
// are ignored; declared columns are coerced leniently because the wire format
// loses the integer/float distinction.
func (m *Measurement) FromRecord(record map[string]interface{}) (*Point, error) {
	ts, err := ParseRecordTime(record["time"])
	if err != nil {
		return nil, err
	}

	p := &Point{
		measurement: m,
		time:        ts,
		tags:        make(map[string]string),
		fields:      make(map[string]interface{}),
	}

	for _, name := range m.tagOrder {
		value, ok := record[name]
		if !ok || value == nil {
			continue
		}
		s, err := m.tags[name].Validate(fmt.Sprintf("%v", value))
		if err != nil {
			return nil, err
		}
		p.tags[name] = s
	}
	for _, name := range m.fieldOrder {
		value, ok := record[name]
		if !ok || value == nil {
			continue
		}
		normalized, err := m.fields[name].Coerce(value)
		if err != nil {
			return nil, err
		}
		p.fields[name] = normalized
	}

	return p, nil
}

// ParseRecordTime interprets the "time" column of a query-result row.
// v1 responses carry RFC3339 strings or epoch json.Numbers, v2 and v3
// responses carry time.Time values.
func ParseRecordTime(value interface{}) (time.Time, error) {
	switch v := value.(type) {
	case time.Time:
		return v.UTC(), nil
	case string:
		ts, err := time.Parse(time.RFC3339Nano, v)
		if err != nil {
			return time.Time{}, fmt.Errorf("invalid time value %q: %w", v, err)
		}
		return ts.UTC(), nil
	case json.Number:
		ns, err := v.Int64()
		if err != nil {
			return time.Time{}, fmt.Errorf("invalid time value %q: %w", v.String(), err)
		}
		return time.Unix(0, ns).UTC(), nil
	case int64:
		return time.Unix(0, v).UTC(), nil
	case nil:
		return time.Time{}, fmt.Errorf("record has no time column")
	default:
		return time.Time{}, fmt.Errorf("unsupported time value type %T", value)
	}
}

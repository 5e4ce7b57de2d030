package schema

import (
	"encoding/json"
	"fmt"
	"math"
)

// FieldType enumerates the value types InfluxDB fields can hold
type FieldType int

const (
	FieldTypeInteger FieldType = iota
	FieldTypeFloat
	FieldTypeBoolean
	FieldTypeString
)

func (t FieldType) String() string {
	switch t {
	case FieldTypeInteger:
		return "integer"
	case FieldTypeFloat:
		return "float"
	case FieldTypeBoolean:
		return "boolean"
	case FieldTypeString:
		return "string"
	default:
		return "unknown"
	}
}

// Field declares a typed field of a measurement. Values are normalized to
// int64, float64, bool or string before they are stored on a point.
type Field struct {
	name     string
	ftype    FieldType
	nullable bool

	// choice constraints, nil when unconstrained
	stringOptions map[string]bool
	intOptions    map[int64]bool

	// declaration error, surfaced by NewMeasurement
	err error
}

// NewIntegerField declares a nullable integer field
func NewIntegerField(name string) Field {
	return Field{name: name, ftype: FieldTypeInteger, nullable: true}
}

// NewFloatField declares a nullable float field
func NewFloatField(name string) Field {
	return Field{name: name, ftype: FieldTypeFloat, nullable: true}
}

// NewBooleanField declares a nullable boolean field
func NewBooleanField(name string) Field {
	return Field{name: name, ftype: FieldTypeBoolean, nullable: true}
}

// NewStringField declares a nullable string field
func NewStringField(name string) Field {
	return Field{name: name, ftype: FieldTypeString, nullable: true}
}

// NewStringChoiceField declares a string field constrained to the given options
func NewStringChoiceField(name string, options ...string) Field {
	f := Field{name: name, ftype: FieldTypeString, nullable: true}
	if len(options) == 0 {
		f.err = fmt.Errorf("field %q: empty option set: %w", name, ErrInvalidOptions)
		return f
	}
	f.stringOptions = make(map[string]bool, len(options))
	for _, option := range options {
		if f.stringOptions[option] {
			f.err = fmt.Errorf("field %q: duplicate option %q: %w", name, option, ErrInvalidOptions)
			return f
		}
		f.stringOptions[option] = true
	}
	return f
}

// NewIntegerChoiceField declares an integer field constrained to the given options
func NewIntegerChoiceField(name string, options ...int64) Field {
	f := Field{name: name, ftype: FieldTypeInteger, nullable: true}
	if len(options) == 0 {
		f.err = fmt.Errorf("field %q: empty option set: %w", name, ErrInvalidOptions)
		return f
	}
	f.intOptions = make(map[int64]bool, len(options))
	for _, option := range options {
		if f.intOptions[option] {
			f.err = fmt.Errorf("field %q: duplicate option %d: %w", name, option, ErrInvalidOptions)
			return f
		}
		f.intOptions[option] = true
	}
	return f
}

// NotNull marks the field as required at write time
func (f Field) NotNull() Field {
	f.nullable = false
	return f
}

// Name returns the declared field name
func (f Field) Name() string { return f.name }

// Type returns the declared field type
func (f Field) Type() FieldType { return f.ftype }

// Nullable reports whether the field may be absent at write time
func (f Field) Nullable() bool { return f.nullable }

// Options returns the declared choice options, nil when unconstrained
func (f Field) Options() []interface{} {
	if f.stringOptions == nil && f.intOptions == nil {
		return nil
	}
	options := make([]interface{}, 0, len(f.stringOptions)+len(f.intOptions))
	for option := range f.stringOptions {
		options = append(options, option)
	}
	for option := range f.intOptions {
		options = append(options, option)
	}
	return options
}

// Validate checks and normalizes a caller-supplied value. Integer values are
// widened to int64, float32 to float64; cross-type coercion is rejected.
func (f Field) Validate(value interface{}) (interface{}, error) {
	return f.normalize(value, false)
}

// Coerce checks and normalizes a value read back from a query result, where
// the wire format loses the integer/float distinction (JSON numbers).
func (f Field) Coerce(value interface{}) (interface{}, error) {
	return f.normalize(value, true)
}

func (f Field) normalize(value interface{}, lenient bool) (interface{}, error) {
	if value == nil {
		if !f.nullable {
			return nil, fmt.Errorf("field %q: %w", f.name, ErrNullValue)
		}
		return nil, nil
	}

	switch f.ftype {
	case FieldTypeInteger:
		n, err := f.toInt64(value, lenient)
		if err != nil {
			return nil, err
		}
		if f.intOptions != nil && !f.intOptions[n] {
			return nil, fmt.Errorf("field %q: value %d: %w", f.name, n, ErrInvalidChoice)
		}
		return n, nil

	case FieldTypeFloat:
		x, err := f.toFloat64(value, lenient)
		if err != nil {
			return nil, err
		}
		return x, nil

	case FieldTypeBoolean:
		b, ok := value.(bool)
		if !ok {
			return nil, fmt.Errorf("field %q: expected boolean, got %T: %w", f.name, value, ErrTypeMismatch)
		}
		return b, nil

	case FieldTypeString:
		s, ok := value.(string)
		if !ok {
			return nil, fmt.Errorf("field %q: expected string, got %T: %w", f.name, value, ErrTypeMismatch)
		}
		if f.stringOptions != nil && !f.stringOptions[s] {
			return nil, fmt.Errorf("field %q: value %q: %w", f.name, s, ErrInvalidChoice)
		}
		return s, nil
	}
	return nil, fmt.Errorf("field %q: unsupported field type: %w", f.name, ErrTypeMismatch)
}

func (f Field) toInt64(value interface{}, lenient bool) (int64, error) {
	switch v := value.(type) {
	case int:
		return int64(v), nil
	case int8:
		return int64(v), nil
	case int16:
		return int64(v), nil
	case int32:
		return int64(v), nil
	case int64:
		return v, nil
	case uint:
		if uint64(v) > math.MaxInt64 {
			return 0, fmt.Errorf("field %q: value %d overflows int64: %w", f.name, v, ErrTypeMismatch)
		}
		return int64(v), nil
	case uint8:
		return int64(v), nil
	case uint16:
		return int64(v), nil
	case uint32:
		return int64(v), nil
	case uint64:
		if v > math.MaxInt64 {
			return 0, fmt.Errorf("field %q: value %d overflows int64: %w", f.name, v, ErrTypeMismatch)
		}
		return int64(v), nil
	case float64:
		if lenient && v == math.Trunc(v) {
			return int64(v), nil
		}
	case json.Number:
		if lenient {
			if n, err := v.Int64(); err == nil {
				return n, nil
			}
		}
	}
	return 0, fmt.Errorf("field %q: expected integer, got %T: %w", f.name, value, ErrTypeMismatch)
}

func (f Field) toFloat64(value interface{}, lenient bool) (float64, error) {
	switch v := value.(type) {
	case float32:
		return float64(v), nil
	case float64:
		return v, nil
	case int:
		if lenient {
			return float64(v), nil
		}
	case int64:
		if lenient {
			return float64(v), nil
		}
	case json.Number:
		if lenient {
			if x, err := v.Float64(); err == nil {
				return x, nil
			}
		}
	}
	return 0, fmt.Errorf("field %q: expected float, got %T: %w", f.name, value, ErrTypeMismatch)
}

package schema

import (
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/go-viper/mapstructure/v2"

	"github.com/benedict-erwin/influxmap/pkg/utils"
)

// Struct binding maps user structs onto measurement columns through the
// `influx` struct tag:
//
//	type Weather struct {
//	    City    string    `influx:"city,tag"`
//	    TempC   float64   `influx:"temperature"`
//	    Ts      time.Time `influx:"time"`
//	}
//
// Untagged exported fields bind to the snake_case form of their Go name.
// Pointer fields are optional: a nil pointer leaves the column unset.
// Fields tagged `influx:"-"` are skipped.

// FromStruct builds a validated point from a struct value. The timestamp is
// taken from the field tagged `influx:"time"` (or an untagged time.Time field
// named Time or Timestamp).
func (m *Measurement) FromStruct(v interface{}) (*Point, error) {
	rv := reflect.ValueOf(v)
	for rv.Kind() == reflect.Pointer {
		if rv.IsNil() {
			return nil, fmt.Errorf("cannot bind nil struct pointer")
		}
		rv = rv.Elem()
	}
	if rv.Kind() != reflect.Struct {
		return nil, fmt.Errorf("cannot bind %s, expected struct", rv.Kind())
	}

	rt := rv.Type()
	values := Values{}
	var ts time.Time
	var haveTime bool

	for i := 0; i < rt.NumField(); i++ {
		sf := rt.Field(i)
		if !sf.IsExported() {
			continue
		}
		name, isTime, skip := bindColumn(sf)
		if skip {
			continue
		}

		fv := rv.Field(i)
		if isTime {
			t, ok := fv.Interface().(time.Time)
			if !ok {
				return nil, fmt.Errorf("struct field %s: time column must be time.Time, got %s", sf.Name, sf.Type)
			}
			ts = t
			haveTime = true
			continue
		}

		if fv.Kind() == reflect.Pointer {
			if fv.IsNil() {
				continue
			}
			fv = fv.Elem()
		}
		values[name] = fv.Interface()
	}

	if !haveTime {
		return nil, fmt.Errorf("struct %s has no time column", rt.Name())
	}
	return m.NewPoint(ts, values)
}

// ScanStruct decodes a point into a struct using the same `influx` tags
func ScanStruct(p *Point, out interface{}) error {
	row := make(map[string]interface{}, len(p.tags)+len(p.fields)+1)
	row["time"] = p.time
	for name, value := range p.tags {
		row[name] = value
	}
	for name, value := range p.fields {
		row[name] = value
	}

	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		TagName:          "influx",
		Result:           out,
		WeaklyTypedInput: true,
		DecodeHook:       mapstructure.StringToTimeHookFunc(time.RFC3339Nano),
	})
	if err != nil {
		return fmt.Errorf("failed to build struct decoder: %w", err)
	}
	if err := decoder.Decode(row); err != nil {
		return fmt.Errorf("failed to decode point into struct: %w", err)
	}
	return nil
}

// bindColumn resolves the column name of a struct field
func bindColumn(sf reflect.StructField) (name string, isTime, skip bool) {
	tag := sf.Tag.Get("influx")
	if tag == "-" {
		return "", false, true
	}

	if tag != "" {
		name = strings.Split(tag, ",")[0]
	}
	if name == "" {
		name = utils.CamelToSnake(sf.Name)
	}
	if name == "time" {
		return name, true, false
	}
	if tag == "" && sf.Type == reflect.TypeOf(time.Time{}) &&
		(sf.Name == "Time" || sf.Name == "Timestamp") {
		return "time", true, false
	}
	return name, false, false
}

package schema

import (
	"errors"
	"testing"
	"time"
)

type meterReading struct {
	City         string    `influx:"city,tag"`
	Consumption  float64   `influx:"consumption"`
	ReadingCount *int64    `influx:"reading_count"`
	Unit         string    `influx:"unit"`
	Time         time.Time `influx:"time"`
	Internal     string    `influx:"-"`
}

func TestFromStruct(t *testing.T) {
	m := electricityMeter(t)
	count := int64(4)

	p, err := m.FromStruct(meterReading{
		City:         "berlin",
		Consumption:  9.75,
		ReadingCount: &count,
		Unit:         "kwh",
		Time:         pointTime,
		Internal:     "never stored",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if v, _ := p.Tag("city"); v != "berlin" {
		t.Errorf("city = %q", v)
	}
	if v, _ := p.Field("consumption"); v != 9.75 {
		t.Errorf("consumption = %v", v)
	}
	if v, _ := p.Field("reading_count"); v != int64(4) {
		t.Errorf("reading_count = %v", v)
	}
	if !p.Time().Equal(pointTime) {
		t.Errorf("time = %v", p.Time())
	}
}

func TestFromStructNilPointerLeavesColumnUnset(t *testing.T) {
	m := electricityMeter(t)

	p, err := m.FromStruct(&meterReading{
		City:        "berlin",
		Consumption: 1.0,
		Unit:        "kwh",
		Time:        pointTime,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, ok := p.Field("reading_count"); ok {
		t.Error("nil pointer field came back set")
	}
}

func TestFromStructUntaggedSnakeCase(t *testing.T) {
	m, err := NewMeasurement("weather",
		[]Tag{NewTag("city")},
		[]Field{NewFloatField("temp_celsius")})
	if err != nil {
		t.Fatal(err)
	}

	type weather struct {
		TempCelsius float64
		Timestamp   time.Time
	}

	p, err := m.FromStruct(weather{TempCelsius: 21.5, Timestamp: pointTime})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v, _ := p.Field("temp_celsius"); v != 21.5 {
		t.Errorf("temp_celsius = %v", v)
	}
}

func TestFromStructErrors(t *testing.T) {
	m := electricityMeter(t)

	if _, err := m.FromStruct(nil); err == nil {
		t.Error("expected error for nil value")
	}
	if _, err := m.FromStruct(42); err == nil {
		t.Error("expected error for non-struct value")
	}

	type noTime struct {
		City        string  `influx:"city,tag"`
		Consumption float64 `influx:"consumption"`
	}
	if _, err := m.FromStruct(noTime{City: "berlin", Consumption: 1.0}); err == nil {
		t.Error("expected error for struct without time column")
	}

	// validation still applies through the struct path
	bad := meterReading{City: "berlin", Consumption: 1.0, Unit: "gwh", Time: pointTime}
	if _, err := m.FromStruct(bad); !errors.Is(err, ErrInvalidChoice) {
		t.Errorf("expected ErrInvalidChoice, got %v", err)
	}
}

func TestScanStructRoundTrip(t *testing.T) {
	m := electricityMeter(t)
	count := int64(2)
	in := meterReading{
		City:         "hamburg",
		Consumption:  3.5,
		ReadingCount: &count,
		Unit:         "mwh",
		Time:         pointTime,
	}

	p, err := m.FromStruct(in)
	if err != nil {
		t.Fatal(err)
	}

	var out meterReading
	if err := ScanStruct(p, &out); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if out.City != in.City || out.Consumption != in.Consumption || out.Unit != in.Unit {
		t.Errorf("round trip mismatch: %+v", out)
	}
	if out.ReadingCount == nil || *out.ReadingCount != count {
		t.Errorf("reading_count = %v", out.ReadingCount)
	}
	if !out.Time.Equal(pointTime) {
		t.Errorf("time = %v", out.Time)
	}
}

package influxdb

import (
	"testing"
	"time"
)

func TestMakePoint(t *testing.T) {
	ts := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	tags := map[string]string{"city": "berlin"}
	fields := map[string]interface{}{"temperature": 21.5}

	for _, version := range []Version{VersionV1OSS, VersionV2OSS, VersionV3Core} {
		t.Run(string(version), func(t *testing.T) {
			raw, err := MakePoint(version, "weather", tags, fields, ts)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			p, ok := raw.(Point)
			if !ok {
				t.Fatalf("point does not implement Point: %T", raw)
			}
			if p.GetMeasurement() != "weather" {
				t.Errorf("measurement = %q", p.GetMeasurement())
			}
			if p.GetTags()["city"] != "berlin" {
				t.Errorf("tags = %v", p.GetTags())
			}
			if p.GetFields()["temperature"] != 21.5 {
				t.Errorf("fields = %v", p.GetFields())
			}
			if !p.GetTime().Equal(ts) {
				t.Errorf("time = %v", p.GetTime())
			}
		})
	}

	if _, err := MakePoint(Version("v9"), "weather", tags, fields, ts); err == nil {
		t.Error("expected error for unknown version")
	}

	// v1 line protocol rejects points without fields
	if _, err := MakePoint(VersionV1OSS, "weather", nil, nil, ts); err == nil {
		t.Error("expected error for v1 point without fields")
	}
}

func TestNewPointUsesActiveConfig(t *testing.T) {
	currentConfig = &Config{Version: VersionV2OSS}
	defer func() { currentConfig = nil }()

	raw, err := NewPoint("weather", nil, map[string]interface{}{"temperature": 21.5}, time.Now())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, ok := raw.(Point); !ok {
		t.Errorf("point does not implement Point: %T", raw)
	}
}

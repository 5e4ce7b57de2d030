package v3core

import (
	"testing"
	"time"
)

func TestCopyRow(t *testing.T) {
	ts := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	values := map[string]interface{}{
		"time":        ts,
		"city":        "berlin",
		"consumption": 1.5,
	}

	row := copyRow(values)
	if row["time"] != ts || row["city"] != "berlin" || row["consumption"] != 1.5 {
		t.Errorf("row = %v", row)
	}

	// The iterator reuses its value map between rows, the copy must not alias it
	values["consumption"] = 2.0
	if row["consumption"] != 1.5 {
		t.Error("row aliases the iterator's value map")
	}
}

func TestQueryIteratorNilIterator(t *testing.T) {
	it := &QueryIterator{}
	if it.Next() {
		t.Error("Next on nil iterator")
	}
	if it.Record() != nil {
		t.Error("Record on nil iterator must be nil")
	}
	if it.Err() != nil {
		t.Errorf("Err on nil iterator: %v", it.Err())
	}
}

func TestQueryIteratorCloseReleasesContext(t *testing.T) {
	var cancelled bool
	it := &QueryIterator{cancel: func() { cancelled = true }}

	if err := it.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	if !cancelled {
		t.Error("Close must cancel the request context")
	}
	if it.Record() != nil {
		t.Error("Record after Close must be nil")
	}

	// Close is idempotent
	if err := it.Close(); err != nil {
		t.Fatalf("second close: %v", err)
	}
}

func TestNewPoint(t *testing.T) {
	ts := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	p := NewPoint("weather",
		map[string]string{"city": "berlin"},
		map[string]interface{}{"temperature": 21.5},
		ts)

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
}

package v2oss

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/influxdata/influxdb-client-go/v2/api/query"
)

// The server streams the result in two flushes so rows keep arriving after
// Query has already returned. The iterator must be able to read all of them.
func TestQueryStreamsAfterReturn(t *testing.T) {
	header := "#datatype,string,long,dateTime:RFC3339,string,double\r\n" +
		"#group,false,false,false,true,false\r\n" +
		"#default,_result,,,,\r\n" +
		",result,table,_time,city,consumption\r\n"
	row1 := ",,0,2024-03-01T00:00:00Z,berlin,1.5\r\n"
	row2 := ",,0,2024-03-01T01:00:00Z,berlin,2.5\r\n"

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/csv")
		w.WriteHeader(http.StatusOK)
		_, _ = io.WriteString(w, header+row1)
		if f, ok := w.(http.Flusher); ok {
			f.Flush()
		}
		time.Sleep(50 * time.Millisecond)
		_, _ = io.WriteString(w, row2)
	}))
	defer srv.Close()

	c := &Client{}
	c.SetConfig(srv.URL, "token", "org", "bucket")
	if err := c.Init(); err != nil {
		t.Fatal(err)
	}
	defer c.Close()

	raw, err := c.Query(`from(bucket: "bucket")`)
	if err != nil {
		t.Fatal(err)
	}
	it := raw.(*QueryIterator)
	defer func() { _ = it.Close() }()

	var rows int
	for it.Next() {
		if it.Record() == nil {
			t.Fatal("nil record inside iteration")
		}
		rows++
	}
	if err := it.Err(); err != nil {
		t.Fatalf("iteration error: %v", err)
	}
	if rows != 2 {
		t.Errorf("rows = %d, want 2", rows)
	}
}

func TestFlattenRecordPivoted(t *testing.T) {
	ts := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	record := query.NewFluxRecord(0, map[string]interface{}{
		"result":       "_result",
		"table":        int64(0),
		"_start":       ts.Add(-time.Hour),
		"_stop":        ts.Add(time.Hour),
		"_time":        ts,
		"_measurement": "meter_berlin",
		"city":         "berlin",
		"consumption":  1.5,
	})

	row := flattenRecord(record)
	if row["time"] != ts {
		t.Errorf("time = %v", row["time"])
	}
	if row["consumption"] != 1.5 || row["city"] != "berlin" {
		t.Errorf("row = %v", row)
	}
	for _, dropped := range []string{"result", "table", "_start", "_stop", "_time"} {
		if _, ok := row[dropped]; ok {
			t.Errorf("column %q must be dropped", dropped)
		}
	}
}

func TestFlattenRecordUnpivoted(t *testing.T) {
	record := query.NewFluxRecord(0, map[string]interface{}{
		"_time":  time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
		"_field": "consumption",
		"_value": 1.5,
	})

	row := flattenRecord(record)
	if row["consumption"] != 1.5 {
		t.Errorf("field column not merged: %v", row)
	}
	if row["_value"] != 1.5 {
		t.Errorf("_value must stay available for aggregated reads: %v", row)
	}
}

func TestQueryIteratorNilResult(t *testing.T) {
	it := &QueryIterator{}
	if it.Next() {
		t.Error("Next on nil result")
	}
	if it.Record() != nil {
		t.Error("Record on nil result must be nil")
	}
	if it.Err() != nil {
		t.Errorf("Err on nil result: %v", it.Err())
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

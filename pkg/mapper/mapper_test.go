package mapper

import (
	"encoding/json"
	"fmt"
	"testing"
	"time"

	"github.com/benedict-erwin/influxmap/pkg/frame"
	"github.com/benedict-erwin/influxmap/pkg/influxdb"
	"github.com/benedict-erwin/influxmap/pkg/schema"
)

// fakeIterator replays canned rows as a query result
type fakeIterator struct {
	rows []map[string]interface{}
	pos  int
}

func (it *fakeIterator) Next() bool {
	if it.pos >= len(it.rows) {
		return false
	}
	it.pos++
	return true
}

func (it *fakeIterator) Record() map[string]interface{} {
	if it.pos == 0 || it.pos > len(it.rows) {
		return nil
	}
	return it.rows[it.pos-1]
}

func (it *fakeIterator) Err() error   { return nil }
func (it *fakeIterator) Close() error { return nil }

// fakeDB records writes and queries and replays canned result rows
type fakeDB struct {
	written  [][]interface{}
	queries  []string
	results  [][]map[string]interface{}
	queryErr error
}

func (db *fakeDB) Init() error        { return nil }
func (db *fakeDB) Close()             {}
func (db *fakeDB) IsHealthy() bool    { return true }
func (db *fakeDB) HealthCheck() error { return nil }

func (db *fakeDB) WritePoint(point interface{}) error {
	return db.WritePoints([]interface{}{point})
}

func (db *fakeDB) WritePoints(points []interface{}) error {
	db.written = append(db.written, points)
	return nil
}

func (db *fakeDB) Query(query string) (interface{}, error) {
	db.queries = append(db.queries, query)
	if db.queryErr != nil {
		return nil, db.queryErr
	}
	var rows []map[string]interface{}
	if len(db.results) > 0 {
		rows = db.results[0]
		db.results = db.results[1:]
	}
	return &fakeIterator{rows: rows}, nil
}

func (db *fakeDB) GetClient() interface{} { return nil }

func newTestClient(t *testing.T, version influxdb.Version) (*Client, *fakeDB) {
	t.Helper()
	db := &fakeDB{}
	c, err := NewWith(db, &influxdb.Config{Version: version, Bucket: "meters"})
	if err != nil {
		t.Fatal(err)
	}
	return c, db
}

func testPoints(t *testing.T, m *schema.Measurement) []*schema.Point {
	t.Helper()
	var points []*schema.Point
	for i, city := range []string{"berlin", "hamburg"} {
		p, err := m.NewPoint(rangeStart.Add(time.Duration(i)*time.Hour), schema.Values{
			"city":        city,
			"consumption": float64(i) + 1.5,
		})
		if err != nil {
			t.Fatal(err)
		}
		points = append(points, p)
	}
	return points
}

func TestSavePoints(t *testing.T) {
	c, db := newTestClient(t, influxdb.VersionV1OSS)
	m := meterSchema(t)

	if err := c.SavePoints(testPoints(t, m)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(db.written) != 1 {
		t.Fatalf("got %d batches, want 1", len(db.written))
	}
	batch := db.written[0]
	if len(batch) != 2 {
		t.Fatalf("got %d points, want 2", len(batch))
	}

	p, ok := batch[0].(influxdb.Point)
	if !ok {
		t.Fatalf("written value is %T", batch[0])
	}
	if p.GetMeasurement() != "meter_berlin" {
		t.Errorf("measurement = %q", p.GetMeasurement())
	}
	if p.GetTags()["city"] != "berlin" {
		t.Errorf("tags = %v", p.GetTags())
	}
	if p.GetFields()["consumption"] != 1.5 {
		t.Errorf("fields = %v", p.GetFields())
	}
}

func TestSavePointsEmptyBatch(t *testing.T) {
	c, db := newTestClient(t, influxdb.VersionV1OSS)
	if err := c.SavePoints(nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(db.written) != 0 {
		t.Errorf("empty batch reached the client")
	}
}

func TestSavePointsWithoutFields(t *testing.T) {
	c, _ := newTestClient(t, influxdb.VersionV1OSS)
	m, err := schema.NewMeasurement("weather",
		[]schema.Tag{schema.NewTag("city")},
		[]schema.Field{schema.NewFloatField("temperature")})
	if err != nil {
		t.Fatal(err)
	}
	p, err := m.NewPoint(rangeStart, schema.Values{"city": "berlin"})
	if err != nil {
		t.Fatal(err)
	}

	if err := c.SavePoints([]*schema.Point{p}); err == nil {
		t.Error("expected error for point without field values")
	}
}

func TestSaveFrame(t *testing.T) {
	c, db := newTestClient(t, influxdb.VersionV2OSS)
	m := meterSchema(t)

	f, err := frame.FromPoints(testPoints(t, m))
	if err != nil {
		t.Fatal(err)
	}
	if err := c.SaveFrame(f); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(db.written) != 1 || len(db.written[0]) != 2 {
		t.Errorf("written = %v", db.written)
	}
}

func TestLoadPoints(t *testing.T) {
	c, db := newTestClient(t, influxdb.VersionV1OSS)
	m := meterSchema(t)

	db.results = [][]map[string]interface{}{{
		{
			"time":        "2024-03-01T00:00:00Z",
			"city":        "berlin",
			"consumption": json.Number("1.5"),
		},
		{
			"time":        "2024-03-01T01:00:00Z",
			"city":        "berlin",
			"consumption": json.Number("2.5"),
			"voltage":     json.Number("230"),
		},
	}}

	points, err := c.LoadPoints(m, LoadOptions{Tags: map[string]string{"city": "berlin"}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(db.queries) != 1 {
		t.Fatalf("queries = %v", db.queries)
	}
	if want := `SELECT * FROM "meter_berlin" WHERE "city" = 'berlin'`; db.queries[0] != want {
		t.Errorf("query = %q, want %q", db.queries[0], want)
	}

	if len(points) != 2 {
		t.Fatalf("got %d points", len(points))
	}
	if v, _ := points[0].Field("consumption"); v != 1.5 {
		t.Errorf("consumption = %v", v)
	}
	if v, ok := points[1].Field("voltage"); !ok || v != 230.0 {
		t.Errorf("voltage = %v, %v", v, ok)
	}
	if !points[1].Time().Equal(rangeStart.Add(time.Hour)) {
		t.Errorf("time = %v", points[1].Time())
	}
}

func TestLoadFrame(t *testing.T) {
	c, db := newTestClient(t, influxdb.VersionV1OSS)
	m := meterSchema(t)

	db.results = [][]map[string]interface{}{{
		{"time": "2024-03-01T00:00:00Z", "city": "berlin", "consumption": json.Number("1.5")},
	}}

	f, err := c.LoadFrame(m, LoadOptions{Tags: map[string]string{"city": "berlin"}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if f.Len() != 1 {
		t.Fatalf("len = %d", f.Len())
	}
	values, ok := f.Column("consumption")
	if !ok || values[0] != 1.5 {
		t.Errorf("consumption = %v, %v", values, ok)
	}
}

func TestFieldSeries(t *testing.T) {
	c, db := newTestClient(t, influxdb.VersionV1OSS)
	m := meterSchema(t)

	db.results = [][]map[string]interface{}{{
		{"time": "2024-03-01T00:00:00Z", "mean_consumption": json.Number("1.5")},
		{"time": "2024-03-01T01:00:00Z", "mean_consumption": json.Number("2.5")},
	}}

	series, err := c.FieldSeries(m, SeriesRequest{
		Aggregations: map[string][]AggregationMode{"consumption": {AggregateMean}},
		GroupBy:      "1h",
		LoadOptions:  LoadOptions{Tags: map[string]string{"city": "berlin"}},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	s, ok := series["mean_consumption"]
	if !ok {
		t.Fatalf("series keys = %v", seriesKeys(series))
	}
	if s.Len() != 2 {
		t.Fatalf("len = %d", s.Len())
	}
	ts, value := s.At(0)
	if !ts.Equal(rangeStart) {
		t.Errorf("window time = %v", ts)
	}
	if value != 1.5 {
		t.Errorf("value = %v (%T)", value, value)
	}
}

func TestFieldSeriesWindowIndex(t *testing.T) {
	m := meterSchema(t)
	rows := []map[string]interface{}{
		{"time": "2024-03-01T00:00:00Z", "mean_consumption": json.Number("1.5")},
	}

	testCases := []struct {
		index WindowIndex
		want  time.Time
	}{
		{WindowStart, rangeStart},
		{WindowCenter, rangeStart.Add(30 * time.Minute)},
		{WindowEnd, rangeStart.Add(time.Hour)},
	}

	for _, tc := range testCases {
		c, db := newTestClient(t, influxdb.VersionV1OSS)
		db.results = [][]map[string]interface{}{rows}

		series, err := c.FieldSeries(m, SeriesRequest{
			Aggregations: map[string][]AggregationMode{"consumption": {AggregateMean}},
			GroupBy:      "1h",
			WindowIndex:  tc.index,
			LoadOptions:  LoadOptions{Tags: map[string]string{"city": "berlin"}},
		})
		if err != nil {
			t.Fatalf("index %d: %v", tc.index, err)
		}
		ts, _ := series["mean_consumption"].At(0)
		if !ts.Equal(tc.want) {
			t.Errorf("index %d: got %v, want %v", tc.index, ts, tc.want)
		}
	}
}

func TestFieldSeriesLocation(t *testing.T) {
	c, db := newTestClient(t, influxdb.VersionV1OSS)
	m := meterSchema(t)
	db.results = [][]map[string]interface{}{{
		{"time": "2024-03-01T00:00:00Z", "mean_consumption": json.Number("1.5")},
	}}

	loc := time.FixedZone("UTC+2", 2*3600)
	series, err := c.FieldSeries(m, SeriesRequest{
		Aggregations: map[string][]AggregationMode{"consumption": {AggregateMean}},
		GroupBy:      "1h",
		Location:     loc,
		LoadOptions:  LoadOptions{Tags: map[string]string{"city": "berlin"}},
	})
	if err != nil {
		t.Fatal(err)
	}

	ts, _ := series["mean_consumption"].At(0)
	if ts.Location() != loc {
		t.Errorf("location = %v", ts.Location())
	}
	if !ts.Equal(rangeStart) {
		t.Errorf("instant moved: %v", ts)
	}
}

func TestFieldSeriesEmptyResult(t *testing.T) {
	c, db := newTestClient(t, influxdb.VersionV1OSS)
	m := meterSchema(t)
	db.results = [][]map[string]interface{}{{}}

	series, err := c.FieldSeries(m, SeriesRequest{
		Aggregations: map[string][]AggregationMode{"consumption": {AggregateMean}},
		LoadOptions:  LoadOptions{Tags: map[string]string{"city": "berlin"}},
	})
	if err != nil {
		t.Fatal(err)
	}

	s, ok := series["mean_consumption"]
	if !ok {
		t.Fatal("empty result must still carry the requested column")
	}
	if s.Len() != 0 {
		t.Errorf("len = %d", s.Len())
	}
}

func TestFieldSeriesMultipleQueries(t *testing.T) {
	// Flux runs one query per aggregated column; rows of all queries must
	// land in their own series
	c, db := newTestClient(t, influxdb.VersionV2OSS)
	m := meterSchema(t)

	windowTime := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	db.results = [][]map[string]interface{}{
		{{"time": windowTime, "consumption": 1.5}},
		{{"time": windowTime, "consumption": 9.0}},
	}

	series, err := c.FieldSeries(m, SeriesRequest{
		Aggregations: map[string][]AggregationMode{"consumption": {AggregateMean, AggregateMax}},
		GroupBy:      "1h",
		LoadOptions:  LoadOptions{Tags: map[string]string{"city": "berlin"}},
	})
	if err != nil {
		t.Fatal(err)
	}

	if len(db.queries) != 2 {
		t.Fatalf("queries = %d", len(db.queries))
	}
	if _, mean := series["mean_consumption"].At(0); mean != 1.5 {
		t.Errorf("mean = %v", mean)
	}
	if _, max := series["max_consumption"].At(0); max != 9.0 {
		t.Errorf("max = %v", max)
	}
}

func TestDistinctTagValues(t *testing.T) {
	c, db := newTestClient(t, influxdb.VersionV1OSS)
	db.results = [][]map[string]interface{}{{
		{"key": "city", "value": "hamburg"},
		{"key": "city", "value": "berlin"},
		{"key": "city", "value": "hamburg"},
	}}

	values, err := c.DistinctTagValues("city", nil, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(values) != 2 || values[0] != "berlin" || values[1] != "hamburg" {
		t.Errorf("values = %v", values)
	}
	if want := `SHOW TAG VALUES WITH KEY = "city"`; db.queries[0] != want {
		t.Errorf("query = %q", db.queries[0])
	}
}

func TestQueryError(t *testing.T) {
	c, db := newTestClient(t, influxdb.VersionV1OSS)
	db.queryErr = fmt.Errorf("connection refused")

	if _, err := c.LoadPoints(meterSchema(t), LoadOptions{Tags: map[string]string{"city": "berlin"}}); err == nil {
		t.Error("expected query error to surface")
	}
}

func seriesKeys(series map[string]*Series) []string {
	keys := make([]string, 0, len(series))
	for key := range series {
		keys = append(keys, key)
	}
	return keys
}

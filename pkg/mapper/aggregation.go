package mapper

import (
	"fmt"
	"regexp"
	"strconv"
	"time"
)

// AggregationMode names an InfluxDB aggregation function applied to a field
type AggregationMode string

const (
	AggregateNone   AggregationMode = ""
	AggregateMean   AggregationMode = "mean"
	AggregateMedian AggregationMode = "median"
	AggregateCount  AggregationMode = "count"
	AggregateMin    AggregationMode = "min"
	AggregateMax    AggregationMode = "max"
	AggregateSum    AggregationMode = "sum"
	AggregateFirst  AggregationMode = "first"
	AggregateLast   AggregationMode = "last"
	AggregateSpread AggregationMode = "spread"
	AggregateStddev AggregationMode = "stddev"
)

var validAggregations = map[AggregationMode]bool{
	AggregateNone: true, AggregateMean: true, AggregateMedian: true,
	AggregateCount: true, AggregateMin: true, AggregateMax: true,
	AggregateSum: true, AggregateFirst: true, AggregateLast: true,
	AggregateSpread: true, AggregateStddev: true,
}

// ResultColumn returns the column name an aggregated field comes back under,
// "mean_temperature" style; unaggregated fields keep their own name
func (a AggregationMode) ResultColumn(field string) string {
	if a == AggregateNone {
		return field
	}
	return string(a) + "_" + field
}

// FillMode controls how empty aggregation windows are reported
type FillMode string

const (
	FillUnset    FillMode = ""
	FillNull     FillMode = "null"
	FillPrevious FillMode = "previous"
	FillNumber   FillMode = "number"
	FillNone     FillMode = "none"
	FillLinear   FillMode = "linear"
)

// WindowIndex selects which instant of an aggregation window is reported as
// the window timestamp
type WindowIndex int

const (
	WindowStart WindowIndex = iota
	WindowCenter
	WindowEnd
)

// Shift moves a window-start timestamp to the configured window instant
func (w WindowIndex) Shift(windowStart time.Time, interval Interval) time.Time {
	switch w {
	case WindowCenter:
		return windowStart.Add(interval.Duration() / 2)
	case WindowEnd:
		return windowStart.Add(interval.Duration())
	default:
		return windowStart
	}
}

// intervalPattern accepts a positive integer followed by a d/h/m/s unit
var intervalPattern = regexp.MustCompile(`^([1-9][0-9]*)([dhms])$`)

// Interval is a parsed group-by-time interval like "15m" or "1d"
type Interval struct {
	Value int
	Unit  byte
}

// ParseInterval validates and parses a group-by-time interval
func ParseInterval(s string) (Interval, error) {
	match := intervalPattern.FindStringSubmatch(s)
	if match == nil {
		return Interval{}, fmt.Errorf("invalid group-by interval %q, need a positive integer and one of d/h/m/s", s)
	}
	value, err := strconv.Atoi(match[1])
	if err != nil {
		return Interval{}, fmt.Errorf("invalid group-by interval %q: %w", s, err)
	}
	return Interval{Value: value, Unit: match[2][0]}, nil
}

// Duration returns the interval length
func (i Interval) Duration() time.Duration {
	switch i.Unit {
	case 'd':
		return time.Duration(i.Value) * 24 * time.Hour
	case 'h':
		return time.Duration(i.Value) * time.Hour
	case 'm':
		return time.Duration(i.Value) * time.Minute
	default:
		return time.Duration(i.Value) * time.Second
	}
}

func (i Interval) String() string {
	return strconv.Itoa(i.Value) + string(i.Unit)
}

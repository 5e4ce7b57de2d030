package mapper

import (
	"fmt"
	"time"
)

// LoadOptions narrows point loads. The zero value loads everything.
type LoadOptions struct {
	// Tags filters by exact tag values; for dynamic measurement names these
	// also resolve the name template
	Tags map[string]string

	// Start/End bound the time range inclusively; either may be nil
	Start *time.Time
	End   *time.Time

	// Day restricts the load to one whole calendar day (UTC); mutually
	// exclusive with Start/End
	Day *time.Time

	// Limit caps the number of rows, 0 means no limit
	Limit int
}

func (o LoadOptions) validate() error {
	if o.Day != nil && (o.Start != nil || o.End != nil) {
		return fmt.Errorf("load options: Day is mutually exclusive with Start/End")
	}
	if o.Limit < 0 {
		return fmt.Errorf("load options: negative limit %d", o.Limit)
	}
	return nil
}

// SeriesRequest describes an aggregated field-series query
type SeriesRequest struct {
	// Aggregations maps field names to the aggregation modes to apply.
	// A nil or empty mode list selects the raw field.
	Aggregations map[string][]AggregationMode

	// GroupBy windows the aggregation by a time interval like "15m";
	// empty aggregates the whole range
	GroupBy string

	// Fill controls empty windows; FillNumber requires FillValue,
	// all other modes reject one
	Fill      FillMode
	FillValue *float64

	// WindowIndex places the reported timestamp at the window start,
	// center or end
	WindowIndex WindowIndex

	// Location converts reported timestamps, nil means UTC
	Location *time.Location

	LoadOptions
}

func (r SeriesRequest) validate() error {
	if len(r.Aggregations) == 0 {
		return fmt.Errorf("series request: no field aggregations given")
	}
	for field, modes := range r.Aggregations {
		for _, mode := range modes {
			if !validAggregations[mode] {
				return fmt.Errorf("series request: field %q: invalid aggregation mode %q", field, mode)
			}
		}
	}

	if r.Fill != FillUnset && r.GroupBy == "" {
		return fmt.Errorf("series request: fill mode %q needs a group-by interval", r.Fill)
	}
	if r.Fill == FillNumber && r.FillValue == nil {
		return fmt.Errorf("series request: fill mode %q needs a fill value", FillNumber)
	}
	if r.Fill != FillNumber && r.FillValue != nil {
		return fmt.Errorf("series request: fill value given without fill mode %q", FillNumber)
	}

	if r.GroupBy != "" {
		if _, err := ParseInterval(r.GroupBy); err != nil {
			return fmt.Errorf("series request: %w", err)
		}
	}

	return r.LoadOptions.validate()
}

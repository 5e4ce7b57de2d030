package mapper

import (
	"time"
)

// Series is a time-indexed value sequence for one (possibly aggregated)
// field column
type Series struct {
	Times  []time.Time
	Values []interface{}
}

// Len returns the number of samples
func (s *Series) Len() int {
	return len(s.Times)
}

// At returns the sample at index i
func (s *Series) At(i int) (time.Time, interface{}) {
	return s.Times[i], s.Values[i]
}

func (s *Series) append(ts time.Time, value interface{}) {
	s.Times = append(s.Times, ts)
	s.Values = append(s.Values, value)
}

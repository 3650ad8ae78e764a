package domain

import (
	"time"
	_ "time/tzdata"
)

// ReadingLayout is the timestamp layout used by the GIOS data endpoint.
const ReadingLayout = "2006-01-02 15:04:05"

var warsaw = loadWarsaw()

func loadWarsaw() *time.Location {
	loc, err := time.LoadLocation("Europe/Warsaw")
	if err != nil {
		return time.UTC
	}
	return loc
}

// Reading is one entry of a sensor time series. Value is nil for hours
// without a measurement.
type Reading struct {
	Date  string   `json:"date"`
	Value *float64 `json:"value"`
}

// Time parses Date in the Europe/Warsaw zone the API reports in.
func (r Reading) Time() (time.Time, error) {
	return time.ParseInLocation(ReadingLayout, r.Date, warsaw)
}

// Series is the reading history of a sensor, newest first as served.
type Series struct {
	Key    string    `json:"key"`
	Values []Reading `json:"values"`
}

// FirstValid returns the first entry with a non-null value in series order.
func (s *Series) FirstValid() (Reading, bool) {
	if s == nil {
		return Reading{}, false
	}
	for _, r := range s.Values {
		if r.Value != nil {
			return r, true
		}
	}
	return Reading{}, false
}

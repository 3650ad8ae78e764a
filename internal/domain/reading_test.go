package domain

import (
	"encoding/json"
	"testing"
	"time"
)

func TestSeriesFirstValidSkipsNulls(t *testing.T) {
	var s Series
	raw := `{"key":"PM10","values":[{"date":"2024-03-01 12:00:00","value":null},{"date":"2024-03-01 11:00:00","value":3.14},{"date":"2024-03-01 10:00:00","value":2.0}]}`
	if err := json.Unmarshal([]byte(raw), &s); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	r, ok := s.FirstValid()
	if !ok {
		t.Fatalf("expected a valid reading")
	}
	if *r.Value != 3.14 {
		t.Fatalf("expected 3.14, got %v", *r.Value)
	}
	if r.Date != "2024-03-01 11:00:00" {
		t.Fatalf("unexpected date %s", r.Date)
	}
}

func TestSeriesFirstValidEmpty(t *testing.T) {
	if _, ok := (&Series{}).FirstValid(); ok {
		t.Fatalf("empty series must not yield a reading")
	}
	var nilSeries *Series
	if _, ok := nilSeries.FirstValid(); ok {
		t.Fatalf("nil series must not yield a reading")
	}
}

func TestReadingTimeUsesWarsawZone(t *testing.T) {
	r := Reading{Date: "2024-01-15 13:00:00"}
	ts, err := r.Time()
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if want := time.Date(2024, 1, 15, 12, 0, 0, 0, time.UTC); !ts.Equal(want) {
		t.Fatalf("expected %s, got %s", want, ts.UTC())
	}
}

// Package sensor holds the per-pollutant entity exposed for every GIOS
// sensor found during discovery.
package sensor

import (
	"context"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/ghalamif/giosaqi/internal/domain"
	"github.com/ghalamif/giosaqi/internal/logger"
	"github.com/ghalamif/giosaqi/internal/ports"
)

const (
	Unit        = "µg/m3"
	Icon        = "mdi:cloud"
	Attribution = "Data provided by the Polish Air Quality service (GIOS)."

	// StateUnknown is rendered when no reading is available.
	StateUnknown = "unknown"
)

// Sensor is one (station, parameter) entity. Its reading is only ever
// written by Refresh.
type Sensor struct {
	client  ports.Client
	uid     *int64
	info    domain.SensorInfo
	station domain.Station

	mu      sync.RWMutex
	data    *domain.Reading
	updated time.Time
}

func New(client ports.Client, info domain.SensorInfo, station domain.Station) *Sensor {
	s := &Sensor{
		client:  client,
		info:    info,
		station: station,
	}
	if info.ID != nil {
		id := *info.ID
		s.uid = &id
	}
	return s
}

// UniqueID returns the upstream sensor id, if the metadata carried one.
func (s *Sensor) UniqueID() (string, bool) {
	if s.uid == nil {
		return "", false
	}
	return strconv.FormatInt(*s.uid, 10), true
}

func (s *Sensor) Name() string {
	return s.station.Name + " " + s.info.Param.Code
}

func (s *Sensor) Unit() string        { return Unit }
func (s *Sensor) Icon() string        { return Icon }
func (s *Sensor) Attribution() string { return Attribution }

func (s *Sensor) Station() domain.Station { return s.station }
func (s *Sensor) Info() domain.SensorInfo { return s.info }

// State returns the last reading rounded to one decimal place.
func (s *Sensor) State() (float64, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.data == nil || s.data.Value == nil {
		return 0, false
	}
	return round1(*s.data.Value), true
}

func (s *Sensor) StateString() string {
	v, ok := s.State()
	if !ok {
		return StateUnknown
	}
	return strconv.FormatFloat(v, 'f', 1, 64)
}

// Reading returns a copy of the retained reading, or nil.
func (s *Sensor) Reading() *domain.Reading {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.data == nil {
		return nil
	}
	r := *s.data
	return &r
}

// LastRefresh is the time of the last completed Refresh call.
func (s *Sensor) LastRefresh() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.updated
}

func (s *Sensor) Attributes() map[string]any {
	attrs := map[string]any{
		"attribution":   Attribution,
		"station_id":    s.station.ID,
		"param_name":    s.info.Param.Name,
		"param_formula": s.info.Param.Formula,
	}
	if r := s.Reading(); r != nil {
		attrs["last_update"] = r.Date
	}
	return attrs
}

func (s *Sensor) Describe() domain.Entity {
	uid, _ := s.UniqueID()
	return domain.Entity{
		UniqueID:    uid,
		Name:        s.Name(),
		StationID:   s.station.ID,
		StationName: s.station.Name,
		ParamCode:   s.info.Param.Code,
		Unit:        Unit,
		Icon:        Icon,
	}
}

// Refresh fetches the series and keeps its first non-null entry. An absent
// or empty series clears the reading; a series of only null entries keeps
// it. A missing sensor id is still sent upstream. Connectivity and timeout
// failures clear the reading and are swallowed; other errors leave the
// state untouched.
func (s *Sensor) Refresh(ctx context.Context) error {
	series, err := s.client.SensorData(ctx, s.uid)
	if err != nil {
		if !ports.IsTransient(err) {
			return fmt.Errorf("refresh %s: %w", s.Name(), err)
		}
		logger.Error("gios_refresh_failed", "sensor", s.Name(), "error", err)
		s.set(nil)
		return nil
	}

	switch r, ok := series.FirstValid(); {
	case ok:
		s.set(&r)
	case series == nil || len(series.Values) == 0:
		s.set(nil)
	default:
		// only null entries: the previous reading stays current
		s.touch()
	}
	logger.Debug("gios_sensor_data", "sensor", s.Name(), "state", s.StateString())
	return nil
}

// Sample snapshots the current state for the sink pipeline. The timestamp
// is the reading's own date when known, the refresh time otherwise.
func (s *Sensor) Sample(seq uint64) *domain.Sample {
	id, ok := s.UniqueID()
	if !ok {
		id = s.Name()
	}
	out := &domain.Sample{
		SensorID:  id,
		StationID: s.station.ID,
		Name:      s.Name(),
		ParamCode: s.info.Param.Code,
		Unit:      Unit,
		Seq:       seq,
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	out.Timestamp = s.updated
	if s.data == nil || s.data.Value == nil {
		return out
	}
	out.Value = round1(*s.data.Value)
	out.Valid = true
	if ts, err := s.data.Time(); err == nil {
		out.Timestamp = ts
	}
	return out
}

func (s *Sensor) set(r *domain.Reading) {
	s.mu.Lock()
	s.data = r
	s.updated = time.Now()
	s.mu.Unlock()
}

func (s *Sensor) touch() {
	s.mu.Lock()
	s.updated = time.Now()
	s.mu.Unlock()
}

// round1 rounds the exact binary value half to even at one decimal, so
// 0.15 gives 0.1 and 2.25 gives 2.2.
func round1(v float64) float64 {
	r, err := strconv.ParseFloat(strconv.FormatFloat(v, 'f', 1, 64), 64)
	if err != nil {
		return v
	}
	return r
}

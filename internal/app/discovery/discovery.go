package discovery

import (
	"context"
	"errors"
	"fmt"

	"github.com/ghalamif/giosaqi/internal/ports"
	"github.com/ghalamif/giosaqi/internal/sensor"
)

// ErrNotReady signals that setup hit a transient upstream failure and
// should be attempted again later.
var ErrNotReady = errors.New("gios: platform not ready")

type NotReadyError struct {
	Station string
	Err     error
}

func (e *NotReadyError) Error() string {
	return fmt.Sprintf("gios: platform not ready (station %s): %v", e.Station, e.Err)
}

func (e *NotReadyError) Unwrap() []error { return []error{ErrNotReady, e.Err} }

// Discover builds one sensor per (station, sensor) pair reported by the
// client. Stations the API does not know contribute nothing. A transient
// failure anywhere discards the partial result and returns a
// *NotReadyError; an empty slice with a nil error is a successful setup
// without sensors.
func Discover(ctx context.Context, client ports.Client, stationIDs []string, obs ports.Observability) ([]*sensor.Sensor, error) {
	out := make([]*sensor.Sensor, 0)

	for _, stationID := range stationIDs {
		station, err := client.Station(ctx, stationID)
		if err != nil {
			return nil, wrap(stationID, err, obs)
		}
		if station == nil {
			obs.LogInfo("gios_station_not_found", ports.Field{Key: "station", Value: stationID})
			continue
		}

		infos, err := client.Sensors(ctx, stationID)
		if err != nil {
			return nil, wrap(stationID, err, obs)
		}
		obs.LogInfo("gios_sensors_discovered",
			ports.Field{Key: "station", Value: stationID},
			ports.Field{Key: "count", Value: len(infos)})

		for _, info := range infos {
			out = append(out, sensor.New(client, info, *station))
		}
	}

	obs.SetGauge("gios_sensors", float64(len(out)))
	return out, nil
}

func wrap(stationID string, err error, obs ports.Observability) error {
	if ports.IsTransient(err) {
		obs.LogError("gios_connect_failed", err, ports.Field{Key: "station", Value: stationID})
		return &NotReadyError{Station: stationID, Err: err}
	}
	return fmt.Errorf("discover station %s: %w", stationID, err)
}

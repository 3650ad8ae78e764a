package domain

import "time"

// Sample is the outcome of one sensor refresh as it travels to the sinks.
// Valid is false when the sensor state is unknown.
type Sample struct {
	SensorID  string    `json:"sensor_id"`
	StationID int64     `json:"station_id"`
	Name      string    `json:"name"`
	ParamCode string    `json:"param_code"`
	Unit      string    `json:"unit"`
	Timestamp time.Time `json:"ts"`
	Seq       uint64    `json:"seq"`
	Value     float64   `json:"value"`
	Valid     bool      `json:"valid"`
}

package giosaqi

import (
	"github.com/ghalamif/giosaqi/internal/adapters/hass"
	"github.com/ghalamif/giosaqi/internal/app/config"
	"github.com/ghalamif/giosaqi/internal/ports"
)

// Config re-exports the root configuration struct so downstream projects can
// construct or modify it programmatically.
type Config = config.Config

type (
	// Policy controls queue thresholds.
	Policy = ports.Policy
	// GIOSConfig holds API endpoint, timeout and refresh settings.
	GIOSConfig = config.GIOSConfig
	// StationList is the configured list of station ids.
	StationList = config.StationList
	// TimescaleConfig configures the history sink.
	TimescaleConfig = config.TimescaleConfig
	// MQTTConfig configures the Home Assistant MQTT sink.
	MQTTConfig = hass.Config
	// MetricsConfig configures the metrics HTTP server.
	MetricsConfig = config.MetricsConfig
	LogConfig     = config.LogConfig
)

// LoadConfig loads YAML from disk using the internal config reader.
func LoadConfig(path string) (*Config, error) {
	return config.Load(path)
}

// ParseConfig reads YAML from memory, applying defaults and validation.
func ParseConfig(raw []byte) (*Config, error) {
	return config.Parse(raw)
}

package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/ghalamif/giosaqi/internal/adapters/gios"
	"github.com/ghalamif/giosaqi/internal/adapters/hass"
	"github.com/ghalamif/giosaqi/internal/ports"
)

type Config struct {
	Stations  StationList     `yaml:"stations"`
	GIOS      GIOSConfig      `yaml:"gios"`
	Policy    ports.Policy    `yaml:"policy"`
	Timescale TimescaleConfig `yaml:"timescale"`
	MQTT      hass.Config     `yaml:"mqtt"`
	Metrics   MetricsConfig   `yaml:"metrics"`
	Log       LogConfig       `yaml:"log"`
}

type GIOSConfig struct {
	BaseURL      string        `yaml:"base_url"`
	Timeout      time.Duration `yaml:"timeout"`
	ScanInterval time.Duration `yaml:"scan_interval"`
	SetupRetry   time.Duration `yaml:"setup_retry"`
	Concurrency  int           `yaml:"concurrency"`
}

// TimescaleConfig enables the reading history sink when ConnString is set.
type TimescaleConfig struct {
	ConnString string `yaml:"conn_string"`
	Table      string `yaml:"table"`
}

type MetricsConfig struct {
	Addr string `yaml:"addr"`
}

type LogConfig struct {
	Level string `yaml:"level"`
}

// StationList accepts either a single station id or a list of ids, given
// as strings or integers.
type StationList []string

func (l *StationList) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.ScalarNode:
		if node.Tag == "!!null" {
			*l = nil
			return nil
		}
		*l = StationList{strings.TrimSpace(node.Value)}
		return nil
	case yaml.SequenceNode:
		out := make(StationList, 0, len(node.Content))
		for _, item := range node.Content {
			if item.Kind != yaml.ScalarNode {
				return fmt.Errorf("line %d: station id must be a scalar", item.Line)
			}
			out = append(out, strings.TrimSpace(item.Value))
		}
		*l = out
		return nil
	default:
		return fmt.Errorf("line %d: stations must be a scalar or a list", node.Line)
	}
}

func Load(path string) (*Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Parse(raw)
}

func Parse(raw []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return nil, err
	}

	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func (c *Config) ApplyDefaults() {
	if c.GIOS.BaseURL == "" {
		c.GIOS.BaseURL = gios.DefaultBaseURL
	}
	if c.GIOS.Timeout == 0 {
		c.GIOS.Timeout = gios.DefaultTimeout
	}
	if c.GIOS.ScanInterval == 0 {
		c.GIOS.ScanInterval = time.Minute
	}
	if c.GIOS.SetupRetry == 0 {
		c.GIOS.SetupRetry = 30 * time.Second
	}
	if c.GIOS.Concurrency == 0 {
		c.GIOS.Concurrency = 4
	}
	if c.Policy.MaxQueueLen == 0 {
		c.Policy.MaxQueueLen = 10_000
	}
	if c.Policy.MaxBatchSize == 0 {
		c.Policy.MaxBatchSize = 500
	}
	if c.Policy.IdleSleep == 0 {
		c.Policy.IdleSleep = 50 * time.Millisecond
	}
	if c.Policy.OnQueueFull == "" {
		c.Policy.OnQueueFull = "drop"
	}
	if c.Metrics.Addr == "" {
		c.Metrics.Addr = ":9100"
	}
	if c.Timescale.Table == "" {
		c.Timescale.Table = "gios_readings"
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}

	if c.MQTT.Enabled() {
		c.MQTT.ApplyDefaults()
	}
}

func (c *Config) Validate() error {
	if len(c.Stations) == 0 {
		return fmt.Errorf("stations: at least one station id is required")
	}
	for i, id := range c.Stations {
		if id == "" {
			return fmt.Errorf("stations[%d]: empty station id", i)
		}
	}
	if c.GIOS.Timeout < 0 || c.GIOS.ScanInterval < time.Second {
		return fmt.Errorf("gios: timeout must be >= 0 and scan_interval >= 1s")
	}
	switch c.Policy.OnQueueFull {
	case "block", "drop", "reject":
	default:
		return fmt.Errorf("policy.on_queue_full: unknown policy %q", c.Policy.OnQueueFull)
	}
	if c.Metrics.Addr == "" {
		return fmt.Errorf("metrics.addr is required")
	}
	if c.MQTT.Enabled() {
		if err := c.MQTT.Validate(); err != nil {
			return fmt.Errorf("mqtt config: %w", err)
		}
	}
	return nil
}

package giosaqi

import (
	"context"
	"time"

	base "github.com/ghalamif/giosaqi/pkg/giosaqi"
)

// Re-exported errors for convenience.
var (
	ErrNotReady          = base.ErrNotReady
	ErrConnectivity      = base.ErrConnectivity
	ErrTimeout           = base.ErrTimeout
	ErrChannelSinkClosed = base.ErrChannelSinkClosed
)

// Type aliases so consumers can import github.com/ghalamif/giosaqi directly.
type (
	Config          = base.Config
	Policy          = base.Policy
	GIOSConfig      = base.GIOSConfig
	StationList     = base.StationList
	TimescaleConfig = base.TimescaleConfig
	MQTTConfig      = base.MQTTConfig
	MetricsConfig   = base.MetricsConfig
	LogConfig       = base.LogConfig
	Flow            = base.Flow
	FlowOption      = base.FlowOption
	StreamInOption  = base.StreamInOption
	StreamOutOption = base.StreamOutOption
	Runtime         = base.Runtime
	RuntimeOption   = base.RuntimeOption
	EntityState     = base.EntityState
	Sample          = base.Sample
	SampleBatchSink = base.SampleBatchSink
	Client          = base.Client
	ClientError     = base.ClientError
	NotReadyError   = base.NotReadyError
	Sink            = base.Sink
	Announcer       = base.Announcer
	SampleQueue     = base.SampleQueue
	Observability   = base.Observability
	Station         = base.Station
	SensorInfo      = base.SensorInfo
	Series          = base.Series
	Reading         = base.Reading
	Entity          = base.Entity
	Sensor          = base.Sensor
)

// Config helpers.
func LoadConfig(path string) (*Config, error) {
	return base.LoadConfig(path)
}

func ParseConfig(raw []byte) (*Config, error) {
	return base.ParseConfig(raw)
}

// Flow builder helpers.
func Conf(path string, opts ...FlowOption) (*Flow, error) {
	return base.Conf(path, opts...)
}

func ConfFromConfig(cfg *Config, opts ...FlowOption) (*Flow, error) {
	return base.ConfFromConfig(cfg, opts...)
}

func WithFlowOptions(opts ...RuntimeOption) FlowOption {
	return base.WithFlowOptions(opts...)
}

func StreamInStations(ids ...string) StreamInOption {
	return base.StreamInStations(ids...)
}

func StreamInScanInterval(d time.Duration) StreamInOption {
	return base.StreamInScanInterval(d)
}

func StreamInClient(c Client) StreamInOption {
	return base.StreamInClient(c)
}

func StreamInQueue(q SampleQueue) StreamInOption {
	return base.StreamInQueue(q)
}

func StreamInObservability(obs Observability) StreamInOption {
	return base.StreamInObservability(obs)
}

func StreamOutSink(s Sink) StreamOutOption {
	return base.StreamOutSink(s)
}

func StreamOutObservability(obs Observability) StreamOutOption {
	return base.StreamOutObservability(obs)
}

func StreamOutCallback(name string, fn SampleBatchSink) StreamOutOption {
	return base.StreamOutCallback(name, fn)
}

// Runtime and options.
func NewRuntime(cfg *Config, opts ...RuntimeOption) (*Runtime, error) {
	return base.NewRuntime(cfg, opts...)
}

func WithClient(c Client) RuntimeOption {
	return base.WithClient(c)
}

func WithSink(s Sink) RuntimeOption {
	return base.WithSink(s)
}

func WithSampleQueue(q SampleQueue) RuntimeOption {
	return base.WithSampleQueue(q)
}

func WithObservability(obs Observability) RuntimeOption {
	return base.WithObservability(obs)
}

// One-shot helpers.
func NewClient(cfg GIOSConfig) Client {
	return base.NewClient(cfg)
}

func Discover(ctx context.Context, client Client, stationIDs []string, obs Observability) ([]*Sensor, error) {
	return base.Discover(ctx, client, stationIDs, obs)
}

func RefreshAll(ctx context.Context, sensors []*Sensor, concurrency int) error {
	return base.RefreshAll(ctx, sensors, concurrency)
}

// Sink adapters.
func NewCallbackSink(name string, fn SampleBatchSink) Sink {
	return base.NewCallbackSink(name, fn)
}

func NewChannelSink(name string, buffer int) (Sink, <-chan []Sample, func()) {
	return base.NewChannelSink(name, buffer)
}

package giosaqi

import (
	"context"
	"net/http"

	"github.com/ghalamif/giosaqi/internal/adapters/gios"
	"github.com/ghalamif/giosaqi/internal/app/discovery"
	"github.com/ghalamif/giosaqi/internal/app/scheduler"
	"github.com/ghalamif/giosaqi/internal/domain"
	"github.com/ghalamif/giosaqi/internal/ports"
	"github.com/ghalamif/giosaqi/internal/sensor"
)

// PipelineSample is the data structure that flows through the collector→queue→sink pipeline.
// It mirrors internal/domain.Sample but is exported so custom adapters can reference it.
type PipelineSample = domain.Sample

// Client fetches stations, sensor lists and reading series from GIOS.
type Client = ports.Client

// ClientError carries a connectivity or timeout failure from a Client.
type ClientError = ports.ClientError

// Collector streams samples into the pipeline. The default one is the refresh scheduler.
type Collector = ports.Collector

// SampleQueue is the bounded, in-memory queue that decouples the collector and sink.
type SampleQueue = ports.SampleQueue

// Sink consumes batches of samples and persists or forwards them.
type Sink = ports.Sink

// Announcer is implemented by sinks that want the entity list after discovery.
type Announcer = ports.Announcer

// Observability emits metrics/logs about refreshes, queueing and sinks.
type Observability = ports.Observability

// Field is a structured log/metric field used by Observability implementations.
type Field = ports.Field

type (
	Station    = domain.Station
	SensorInfo = domain.SensorInfo
	Param      = domain.Param
	Series     = domain.Series
	Reading    = domain.Reading
	Entity     = domain.Entity
	// Sensor is a per-pollutant entity created by discovery.
	Sensor = sensor.Sensor
)

const (
	FailureConnectivity = ports.FailureConnectivity
	FailureTimeout      = ports.FailureTimeout
)

var (
	ErrConnectivity = ports.ErrConnectivity
	ErrTimeout      = ports.ErrTimeout
)

// ErrNotReady is matched by setup errors caused by a transient GIOS failure.
var ErrNotReady = discovery.ErrNotReady

// NotReadyError carries the station and cause of an ErrNotReady failure.
type NotReadyError = discovery.NotReadyError

// Discover runs a single discovery pass without retries. It is what Runtime
// runs on startup; it is exported for one-shot tools.
func Discover(ctx context.Context, client Client, stationIDs []string, obs Observability) ([]*Sensor, error) {
	if obs == nil {
		obs = nopObservability{}
	}
	return discovery.Discover(ctx, client, stationIDs, obs)
}

// RefreshAll refreshes every sensor once, at most concurrency at a time.
func RefreshAll(ctx context.Context, sensors []*Sensor, concurrency int) error {
	return scheduler.RefreshAll(ctx, sensors, concurrency)
}

// NewClient returns the HTTP GIOS client configured from cfg.
func NewClient(cfg GIOSConfig) Client {
	return gios.NewClient(&http.Client{}, gios.WithBaseURL(cfg.BaseURL), gios.WithTimeout(cfg.Timeout))
}

type nopObservability struct{}

func (nopObservability) LogInfo(string, ...Field)            {}
func (nopObservability) LogError(string, error, ...Field)    {}
func (nopObservability) LogCritical(string, error, ...Field) {}
func (nopObservability) IncCounter(string, float64)          {}
func (nopObservability) ObserveLatency(string, float64)      {}
func (nopObservability) SetGauge(string, float64)            {}
func (nopObservability) RecordReading(*PipelineSample)       {}

package giosaqi

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"
	mqtt "github.com/eclipse/paho.mqtt.golang"
	_ "github.com/lib/pq"

	"github.com/ghalamif/giosaqi/internal/adapters/hass"
	"github.com/ghalamif/giosaqi/internal/adapters/observability"
	"github.com/ghalamif/giosaqi/internal/adapters/queue"
	"github.com/ghalamif/giosaqi/internal/adapters/sink"
	"github.com/ghalamif/giosaqi/internal/app/discovery"
	"github.com/ghalamif/giosaqi/internal/app/pipeline"
	"github.com/ghalamif/giosaqi/internal/app/scheduler"
	"github.com/ghalamif/giosaqi/internal/domain"
	"github.com/ghalamif/giosaqi/internal/logger"
	"github.com/ghalamif/giosaqi/internal/ports"
	"github.com/ghalamif/giosaqi/internal/sensor"
)

// MaxSetupRetry caps the delay between two discovery attempts.
const MaxSetupRetry = 5 * time.Minute

// RuntimeOption customizes the dependencies used by Runtime.
type RuntimeOption func(*runtimeOverrides)

type runtimeOverrides struct {
	client        Client
	sinks         []Sink
	queue         SampleQueue
	observability Observability
}

// WithClient injects a custom GIOS client (fixtures, caching proxies, etc.).
func WithClient(c Client) RuntimeOption {
	return func(o *runtimeOverrides) {
		o.client = c
	}
}

// WithSink adds a sink. When at least one is given the configured
// Timescale/MQTT sinks are not built.
func WithSink(s Sink) RuntimeOption {
	return func(o *runtimeOverrides) {
		if s != nil {
			o.sinks = append(o.sinks, s)
		}
	}
}

// WithSampleQueue injects a custom queue implementation.
func WithSampleQueue(q SampleQueue) RuntimeOption {
	return func(o *runtimeOverrides) {
		o.queue = q
	}
}

// WithObservability plugs in a custom observability backend.
func WithObservability(obs Observability) RuntimeOption {
	return func(o *runtimeOverrides) {
		o.observability = obs
	}
}

// Runtime wires discovery, the refresh scheduler and the queue → sink
// pipeline, and exposes lifecycle hooks for embedding inside any Go service.
type Runtime struct {
	cfg    *Config
	policy ports.Policy
	obs    ports.Observability
	client ports.Client
	queue  ports.SampleQueue
	sink   *sink.Multi
	db     *sql.DB
	mqtt   mqtt.Client

	mu         sync.RWMutex
	sensors    []*sensor.Sensor
	sched      *scheduler.Scheduler
	cancel     context.CancelFunc
	edgeDone   <-chan struct{}
	ingestDone chan struct{}
	httpSrv    *http.Server
}

// NewRuntime bootstraps the default adapters (HTTP GIOS client, in-memory
// queue, Prometheus observability and the sinks enabled in cfg). Callers can
// use RuntimeOption values to override any of them.
func NewRuntime(cfg *Config, opts ...RuntimeOption) (*Runtime, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is required")
	}

	var overrides runtimeOverrides
	for _, opt := range opts {
		if opt != nil {
			opt(&overrides)
		}
	}

	obs := overrides.observability
	if obs == nil {
		obs = observability.NewPromObs(nil)
	}

	client := overrides.client
	if client == nil {
		client = NewClient(cfg.GIOS)
	}

	q := overrides.queue
	if q == nil {
		q = queue.NewMemQueue(cfg.Policy.MaxQueueLen)
	}

	rt := &Runtime{
		cfg:    cfg,
		policy: cfg.Policy,
		obs:    obs,
		client: client,
		queue:  q,
	}

	sinks := overrides.sinks
	if len(sinks) == 0 {
		var err error
		if sinks, err = rt.configuredSinks(); err != nil {
			return nil, errors.Join(err, rt.closeBackends())
		}
	}
	rt.sink = sink.NewMulti(sinks...)
	if rt.sink.Len() == 0 {
		return nil, fmt.Errorf("no sink configured")
	}
	return rt, nil
}

func (e *Runtime) configuredSinks() ([]ports.Sink, error) {
	var sinks []ports.Sink
	if e.cfg.Timescale.ConnString != "" {
		db, err := sql.Open("postgres", e.cfg.Timescale.ConnString)
		if err != nil {
			return nil, err
		}
		e.db = db
		sinks = append(sinks, sink.NewTimescaleSink(db, e.cfg.Timescale.Table))
	}
	if e.cfg.MQTT.Enabled() {
		client, err := hass.Connect(e.cfg.MQTT)
		if err != nil {
			return nil, err
		}
		e.mqtt = client
		sinks = append(sinks, hass.NewStateSink(client, e.cfg.MQTT))
	}
	if len(sinks) == 0 {
		sinks = append(sinks, sink.LogSink{})
	}
	return sinks, nil
}

// Start serves the HTTP endpoints, discovers the configured stations
// (retrying while GIOS is unreachable), announces the entities and starts
// the refresh and ingest pipelines. It returns once everything is running.
func (e *Runtime) Start(ctx context.Context) error {
	if e == nil {
		return fmt.Errorf("runtime is nil")
	}
	if err := logger.SetLevel(e.cfg.Log.Level); err != nil {
		return err
	}

	runCtx, cancel := context.WithCancel(ctx)
	e.mu.Lock()
	e.cancel = cancel
	e.mu.Unlock()

	e.startHTTP()

	sensors, err := e.setup(runCtx)
	if err != nil {
		cancel()
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		return err
	}
	if len(sensors) == 0 {
		e.obs.LogInfo("gios_no_sensors", ports.Field{Key: "stations", Value: []string(e.cfg.Stations)})
	}
	e.announce(sensors)

	sched := scheduler.New(sensors, scheduler.Config{
		Interval:    e.cfg.GIOS.ScanInterval,
		Concurrency: e.cfg.GIOS.Concurrency,
	}, e.obs)

	ingestDone := make(chan struct{})
	go func() {
		defer close(ingestDone)
		pipeline.RunIngestPipeline(runCtx, e.queue, e.sink, e.policy, e.obs)
	}()

	// published before the first refresh pass so Shutdown can stop it
	e.mu.Lock()
	e.sensors = sensors
	e.sched = sched
	e.ingestDone = ingestDone
	e.mu.Unlock()

	edgeDone, err := pipeline.RunEdgePipeline(runCtx, sched, e.queue, e.policy, e.obs)

	e.mu.Lock()
	e.edgeDone = edgeDone
	e.mu.Unlock()

	if err != nil {
		cancel()
		return err
	}
	e.obs.LogInfo("runtime_started",
		ports.Field{Key: "sensors", Value: len(sensors)},
		ports.Field{Key: "sink", Value: e.sink.Name()})
	return nil
}

// setup runs discovery until it succeeds or fails for a reason other than
// ErrNotReady.
func (e *Runtime) setup(ctx context.Context) ([]*sensor.Sensor, error) {
	var sensors []*sensor.Sensor
	op := func() error {
		e.obs.IncCounter("gios_setup_attempts_total", 1)
		found, err := discovery.Discover(ctx, e.client, e.cfg.Stations, e.obs)
		if err != nil {
			if errors.Is(err, discovery.ErrNotReady) {
				return err
			}
			return backoff.Permanent(err)
		}
		sensors = found
		return nil
	}

	b := backoff.NewExponentialBackOff()
	b.InitialInterval = e.cfg.GIOS.SetupRetry
	b.MaxInterval = MaxSetupRetry
	b.MaxElapsedTime = 0

	notify := func(err error, next time.Duration) {
		e.obs.LogError("gios_setup_not_ready", err, ports.Field{Key: "retry_in", Value: next.String()})
	}
	if err := backoff.RetryNotify(op, backoff.WithContext(b, ctx), notify); err != nil {
		return nil, err
	}
	return sensors, nil
}

func (e *Runtime) announce(sensors []*sensor.Sensor) {
	entities := make([]domain.Entity, 0, len(sensors))
	for _, s := range sensors {
		entities = append(entities, s.Describe())
	}
	if err := e.sink.Announce(entities); err != nil {
		e.obs.LogError("entity_announce_failed", err, ports.Field{Key: "entities", Value: len(entities)})
	}
}

// Run starts the runtime and blocks until the provided context is cancelled.
// Upon cancellation it attempts a graceful shutdown.
func (e *Runtime) Run(ctx context.Context) error {
	if err := e.Start(ctx); err != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return errors.Join(err, e.Shutdown(shutdownCtx))
	}
	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return e.Shutdown(shutdownCtx)
}

// Shutdown stops refreshing, flushes the queue into the sinks and closes the
// HTTP server, the database and the MQTT connection.
func (e *Runtime) Shutdown(ctx context.Context) error {
	var errs []error

	e.mu.RLock()
	cancel, sched := e.cancel, e.sched
	edgeDone, ingestDone := e.edgeDone, e.ingestDone
	srv := e.httpSrv
	e.mu.RUnlock()

	if cancel != nil {
		cancel()
	}
	if sched != nil {
		if err := sched.Stop(); err != nil {
			errs = append(errs, err)
		}
	}
	for _, done := range []<-chan struct{}{edgeDone, ingestDone} {
		if done == nil {
			continue
		}
		select {
		case <-done:
		case <-ctx.Done():
			errs = append(errs, fmt.Errorf("waiting for pipeline: %w", ctx.Err()))
		}
	}

	if srv != nil {
		if err := srv.Shutdown(ctx); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errs = append(errs, err)
		}
	}

	if err := e.closeBackends(); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

func (e *Runtime) closeBackends() error {
	var errs []error
	if e.mqtt != nil {
		e.mqtt.Disconnect(250)
		e.mqtt = nil
	}
	if e.db != nil {
		if err := e.db.Close(); err != nil {
			errs = append(errs, err)
		}
		e.db = nil
	}
	return errors.Join(errs...)
}

// Sensors returns the entities created by the last successful discovery.
func (e *Runtime) Sensors() []*Sensor {
	e.mu.RLock()
	defer e.mu.RUnlock()
	out := make([]*Sensor, len(e.sensors))
	copy(out, e.sensors)
	return out
}

package scheduler

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/robfig/cron/v3"
	"golang.org/x/sync/errgroup"

	"github.com/ghalamif/giosaqi/internal/domain"
	"github.com/ghalamif/giosaqi/internal/logger"
	"github.com/ghalamif/giosaqi/internal/ports"
	"github.com/ghalamif/giosaqi/internal/sensor"
)

const DefaultInterval = time.Minute

type Config struct {
	Interval    time.Duration
	Concurrency int
}

func (c *Config) applyDefaults() {
	if c.Interval <= 0 {
		c.Interval = DefaultInterval
	}
	if c.Concurrency <= 0 {
		c.Concurrency = 4
	}
}

// Scheduler refreshes every sensor on its own fixed-interval job and emits
// a sample after each refresh. It is the collector of the edge pipeline.
type Scheduler struct {
	cfg     Config
	sensors []*sensor.Sensor
	obs     ports.Observability

	mu      sync.Mutex
	cron    *cron.Cron
	stopCh  chan struct{}
	started bool
}

func New(sensors []*sensor.Sensor, cfg Config, obs ports.Observability) *Scheduler {
	cfg.applyDefaults()
	return &Scheduler{cfg: cfg, sensors: sensors, obs: obs}
}

type refreshJob struct {
	ctx    context.Context
	stop   <-chan struct{}
	sensor *sensor.Sensor
	out    chan<- *domain.Sample
	obs    ports.Observability
	seq    atomic.Uint64
}

func (j *refreshJob) Run() {
	start := time.Now()
	j.obs.IncCounter("gios_refresh_total", 1)
	err := j.sensor.Refresh(j.ctx)
	j.obs.ObserveLatency("gios_refresh_latency_seconds", time.Since(start).Seconds())
	if err != nil {
		if j.ctx.Err() != nil {
			return
		}
		j.obs.IncCounter("gios_refresh_failures_total", 1)
		j.obs.LogError("gios_refresh_error", err, ports.Field{Key: "sensor", Value: j.sensor.Name()})
	}

	select {
	case j.out <- j.sensor.Sample(j.seq.Add(1)):
	case <-j.ctx.Done():
	case <-j.stop:
	}
}

// Start runs one refresh of every sensor before scheduling the periodic
// jobs, so the first samples do not wait a full interval. If ctx ends
// during that pass no jobs are scheduled and the context error is returned.
func (s *Scheduler) Start(ctx context.Context, out chan<- *domain.Sample) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.started {
		return fmt.Errorf("scheduler already started")
	}

	stopCh := make(chan struct{})
	jobs := make([]*refreshJob, len(s.sensors))
	for i, sn := range s.sensors {
		jobs[i] = &refreshJob{ctx: ctx, stop: stopCh, sensor: sn, out: out, obs: s.obs}
	}

	var g errgroup.Group
	g.SetLimit(s.cfg.Concurrency)
	for _, j := range jobs {
		j := j
		g.Go(func() error {
			j.Run()
			return nil
		})
	}
	_ = g.Wait()
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("scheduler start: %w", err)
	}

	c := cron.New(
		cron.WithLogger(logger.CronLogger{}),
		cron.WithChain(cron.Recover(logger.CronLogger{})),
	)
	every := cron.Every(s.cfg.Interval)
	for _, j := range jobs {
		c.Schedule(every, cron.NewChain(cron.SkipIfStillRunning(logger.CronLogger{})).Then(j))
	}
	c.Start()

	s.cron = c
	s.stopCh = stopCh
	s.started = true
	s.obs.LogInfo("gios_scheduler_started",
		ports.Field{Key: "sensors", Value: len(jobs)},
		ports.Field{Key: "interval", Value: s.cfg.Interval.String()})
	return nil
}

// Stop halts scheduling and waits for running refreshes to return.
func (s *Scheduler) Stop() error {
	s.mu.Lock()
	if !s.started {
		s.mu.Unlock()
		return nil
	}
	c, stopCh := s.cron, s.stopCh
	s.started = false
	s.cron = nil
	s.stopCh = nil
	s.mu.Unlock()

	close(stopCh)
	<-c.Stop().Done()
	return nil
}

// Entries reports how many periodic jobs are registered.
func (s *Scheduler) Entries() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cron == nil {
		return 0
	}
	return len(s.cron.Entries())
}

// RefreshAll refreshes every sensor once with bounded concurrency and
// returns the joined non-transient errors.
func RefreshAll(ctx context.Context, sensors []*sensor.Sensor, concurrency int) error {
	if concurrency <= 0 {
		concurrency = 4
	}
	var (
		mu   sync.Mutex
		errs []error
		g    errgroup.Group
	)
	g.SetLimit(concurrency)
	for _, sn := range sensors {
		sn := sn
		g.Go(func() error {
			if err := sn.Refresh(ctx); err != nil {
				mu.Lock()
				errs = append(errs, err)
				mu.Unlock()
			}
			return nil
		})
	}
	_ = g.Wait()
	return errors.Join(errs...)
}

var _ ports.Collector = (*Scheduler)(nil)

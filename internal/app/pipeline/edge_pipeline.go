package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/ghalamif/giosaqi/internal/domain"
	"github.com/ghalamif/giosaqi/internal/ports"
)

// RunEdgePipeline starts the collector and forwards its samples into the
// queue until ctx is done. The returned channel is closed once forwarding
// has stopped.
func RunEdgePipeline(ctx context.Context, col ports.Collector, q ports.SampleQueue, pol ports.Policy, obs ports.Observability) (<-chan struct{}, error) {
	ch := make(chan *domain.Sample, pol.MaxQueueLen)
	fwdCtx, cancel := context.WithCancel(ctx)

	// forwarding runs before Start: collectors may emit while starting
	done := make(chan struct{})
	go func() {
		defer close(done)
		defer cancel()
		for {
			select {
			case <-fwdCtx.Done():
				return
			case s := <-ch:
				if s == nil {
					continue
				}
				obs.RecordReading(s)
				if !enqueueWithPolicy(fwdCtx, q, s, pol, obs) {
					obs.IncCounter("gios_queue_dropped_total", 1)
				}
				obs.SetGauge("gios_queue_length", float64(q.Len()))
			}
		}
	}()

	if err := col.Start(ctx, ch); err != nil {
		cancel()
		<-done
		return nil, err
	}

	return done, nil
}

func enqueueWithPolicy(ctx context.Context, q ports.SampleQueue, s *domain.Sample, pol ports.Policy, obs ports.Observability) bool {
	sleep := pol.IdleSleep
	if sleep <= 0 {
		sleep = 5 * time.Millisecond
	}

	for {
		if ok := q.Enqueue(s); ok {
			return true
		}

		switch pol.OnQueueFull {
		case "block":
			select {
			case <-ctx.Done():
				return false
			case <-time.After(sleep):
			}
		case "drop", "reject":
			obs.LogError("queue_full_drop", fmt.Errorf("queue length exceeded capacity %d", pol.MaxQueueLen),
				ports.Field{Key: "sensor", Value: s.SensorID})
			return false
		default:
			obs.LogError("queue_policy_invalid", fmt.Errorf("policy=%s", pol.OnQueueFull))
			return false
		}
	}
}

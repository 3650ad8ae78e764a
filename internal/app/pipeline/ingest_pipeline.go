package pipeline

import (
	"context"
	"time"

	"github.com/ghalamif/giosaqi/internal/ports"
)

// RunIngestPipeline drains the queue into the sink in batches until ctx is
// done, then flushes whatever is still buffered.
func RunIngestPipeline(ctx context.Context, q ports.SampleQueue, sink ports.Sink, pol ports.Policy, obs ports.Observability) {
	idle := pol.IdleSleep
	if idle <= 0 {
		idle = 5 * time.Millisecond
	}

	for {
		if !ingestBatch(q, sink, pol, obs) {
			select {
			case <-ctx.Done():
				for ingestBatch(q, sink, pol, obs) {
				}
				return
			case <-time.After(idle):
			}
		}
	}
}

// ingestBatch writes one batch and reports whether anything was dequeued.
func ingestBatch(q ports.SampleQueue, sink ports.Sink, pol ports.Policy, obs ports.Observability) bool {
	batch := q.DequeueBatch(pol.MaxBatchSize)
	if len(batch) == 0 {
		return false
	}
	obs.SetGauge("gios_queue_length", float64(q.Len()))

	start := time.Now()
	if err := sink.WriteBatch(batch); err != nil {
		obs.IncCounter("gios_sink_failures_total", 1)
		obs.LogError("sink_write_failed", err,
			ports.Field{Key: "sink", Value: sink.Name()},
			ports.Field{Key: "samples", Value: len(batch)})
		return true
	}
	obs.ObserveLatency("gios_sink_latency_seconds", time.Since(start).Seconds())
	obs.IncCounter("gios_samples_published_total", float64(len(batch)))
	return true
}

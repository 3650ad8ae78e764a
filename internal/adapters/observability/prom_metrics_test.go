package observability

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/ghalamif/giosaqi/internal/domain"
)

func TestPromObsMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	obs := NewPromObs(reg)

	obs.IncCounter("gios_samples_published_total", 5)
	if got := testutil.ToFloat64(obs.counters["gios_samples_published_total"]); got != 5 {
		t.Fatalf("expected published counter 5, got %f", got)
	}

	obs.IncCounter("gios_queue_dropped_total", 2)
	if got := testutil.ToFloat64(obs.counters["gios_queue_dropped_total"]); got != 2 {
		t.Fatalf("expected queue drop counter 2, got %f", got)
	}

	obs.IncCounter("unknown_metric", 1)

	obs.SetGauge("gios_sensors", 7)
	if got := testutil.ToFloat64(obs.gauges["gios_sensors"]); got != 7 {
		t.Fatalf("expected sensors gauge 7, got %f", got)
	}

	obs.ObserveLatency("gios_refresh_latency_seconds", 0.5)
	hCollector := obs.histos["gios_refresh_latency_seconds"].(prometheus.Collector)
	if samples := testutil.CollectAndCount(hCollector); samples != 1 {
		t.Fatalf("expected latency histogram to record 1 sample, got %d", samples)
	}
}

func TestPromObsRecordReading(t *testing.T) {
	reg := prometheus.NewRegistry()
	obs := NewPromObs(reg)

	sample := &domain.Sample{SensorID: "642", StationID: 114, Name: "Wrocław - Bartnicza NO2", ParamCode: "NO2", Value: 21.7, Valid: true}
	obs.RecordReading(sample)

	gauge := obs.readings.WithLabelValues("642", "114", "NO2")
	if got := testutil.ToFloat64(gauge); got != 21.7 {
		t.Fatalf("expected reading gauge 21.7, got %f", got)
	}

	sample.Valid = false
	obs.RecordReading(sample)
	if n := testutil.CollectAndCount(obs.readings); n != 0 {
		t.Fatalf("expected unknown state to remove the series, got %d series", n)
	}

	obs.RecordReading(nil)
}

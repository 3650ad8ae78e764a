package observability

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/ghalamif/giosaqi/internal/domain"
	"github.com/ghalamif/giosaqi/internal/logger"
	"github.com/ghalamif/giosaqi/internal/ports"
)

type PromObs struct {
	counters map[string]prometheus.Counter
	gauges   map[string]prometheus.Gauge
	histos   map[string]prometheus.Observer
	readings *prometheus.GaugeVec
}

// NewPromObs registers the collectors on reg, or on the default registerer
// when reg is nil.
func NewPromObs(reg prometheus.Registerer) *PromObs {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}

	refreshes := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "gios_refresh_total",
		Help: "Sensor refreshes attempted.",
	})
	refreshFailures := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "gios_refresh_failures_total",
		Help: "Sensor refreshes that returned a non-transient error.",
	})
	published := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "gios_samples_published_total",
		Help: "Samples successfully written to the sinks.",
	})
	queueDrops := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "gios_queue_dropped_total",
		Help: "Samples lost due to queue backpressure policies.",
	})
	sinkFailures := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "gios_sink_failures_total",
		Help: "Batches a sink failed to write.",
	})
	setupAttempts := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "gios_setup_attempts_total",
		Help: "Discovery passes started, including retries after not-ready.",
	})
	sensors := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "gios_sensors",
		Help: "Sensor entities created by discovery.",
	})
	queueGauge := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "gios_queue_length",
		Help: "Current number of samples buffered in the in-memory queue.",
	})
	refreshLatency := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "gios_refresh_latency_seconds",
		Help:    "Duration of a single sensor refresh.",
		Buckets: prometheus.ExponentialBuckets(0.01, 2, 12),
	})
	sinkLatency := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "gios_sink_latency_seconds",
		Help:    "Time spent writing a batch to the sinks.",
		Buckets: prometheus.ExponentialBuckets(0.001, 2, 12),
	})
	readings := prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "gios_sensor_value",
		Help: "Last known reading per sensor in µg/m3.",
	}, []string{"sensor", "station", "param"})

	reg.MustRegister(refreshes, refreshFailures, published, queueDrops, sinkFailures, setupAttempts,
		sensors, queueGauge, refreshLatency, sinkLatency, readings)

	return &PromObs{
		counters: map[string]prometheus.Counter{
			"gios_refresh_total":           refreshes,
			"gios_refresh_failures_total":  refreshFailures,
			"gios_samples_published_total": published,
			"gios_queue_dropped_total":     queueDrops,
			"gios_sink_failures_total":     sinkFailures,
			"gios_setup_attempts_total":    setupAttempts,
		},
		gauges: map[string]prometheus.Gauge{
			"gios_sensors":      sensors,
			"gios_queue_length": queueGauge,
		},
		histos: map[string]prometheus.Observer{
			"gios_refresh_latency_seconds": refreshLatency,
			"gios_sink_latency_seconds":    sinkLatency,
		},
		readings: readings,
	}
}

func (p *PromObs) LogInfo(msg string, fields ...ports.Field) {
	logger.Info(msg, keyvals(fields)...)
}

func (p *PromObs) LogError(msg string, err error, fields ...ports.Field) {
	if err != nil {
		logger.Error(msg, append(keyvals(fields), "error", err)...)
	}
}

func (p *PromObs) LogCritical(msg string, err error, fields ...ports.Field) {
	if err != nil {
		logger.Error(msg, append(keyvals(fields), "error", err, "critical", true)...)
	}
}

func (p *PromObs) IncCounter(name string, v float64) {
	if c, ok := p.counters[name]; ok {
		c.Add(v)
	}
}

func (p *PromObs) ObserveLatency(name string, seconds float64) {
	if h, ok := p.histos[name]; ok {
		h.Observe(seconds)
	}
}

func (p *PromObs) SetGauge(name string, v float64) {
	if g, ok := p.gauges[name]; ok {
		g.Set(v)
	}
}

// RecordReading exports the sample's value, or drops the series while the
// sensor state is unknown.
func (p *PromObs) RecordReading(s *domain.Sample) {
	if s == nil {
		return
	}
	labels := prometheus.Labels{
		"sensor":  s.SensorID,
		"station": strconv.FormatInt(s.StationID, 10),
		"param":   s.ParamCode,
	}
	if !s.Valid {
		p.readings.Delete(labels)
		return
	}
	p.readings.With(labels).Set(s.Value)
}

func keyvals(fields []ports.Field) []interface{} {
	out := make([]interface{}, 0, len(fields)*2)
	for _, f := range fields {
		out = append(out, f.Key, f.Value)
	}
	return out
}

var _ ports.Observability = (*PromObs)(nil)

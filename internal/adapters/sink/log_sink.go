package sink

import (
	"github.com/ghalamif/giosaqi/internal/domain"
	"github.com/ghalamif/giosaqi/internal/logger"
	"github.com/ghalamif/giosaqi/internal/ports"
)

// LogSink writes every sample to the debug log. It is the fallback when no
// other sink is configured.
type LogSink struct{}

func (LogSink) Name() string { return "log" }

func (LogSink) WriteBatch(samples []*domain.Sample) error {
	for _, s := range samples {
		if s.Valid {
			logger.Debug("gios_sample", "sensor", s.Name, "value", s.Value, "unit", s.Unit, "ts", s.Timestamp, "seq", s.Seq)
			continue
		}
		logger.Debug("gios_sample", "sensor", s.Name, "state", "unknown", "seq", s.Seq)
	}
	return nil
}

var _ ports.Sink = LogSink{}

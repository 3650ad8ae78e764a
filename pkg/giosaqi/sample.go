package giosaqi

import (
	"time"

	"github.com/ghalamif/giosaqi/internal/domain"
)

// Sample mirrors the internal domain.Sample but is safe for external callers.
type Sample struct {
	SensorID  string
	StationID int64
	Name      string
	ParamCode string
	Unit      string
	Timestamp time.Time
	Seq       uint64
	Value     float64
	Valid     bool
}

// SampleBatchSink is invoked with ordered batches dequeued from the pipeline.
type SampleBatchSink func([]Sample) error

func (s Sample) toDomain() *domain.Sample {
	return &domain.Sample{
		SensorID:  s.SensorID,
		StationID: s.StationID,
		Name:      s.Name,
		ParamCode: s.ParamCode,
		Unit:      s.Unit,
		Timestamp: s.Timestamp,
		Seq:       s.Seq,
		Value:     s.Value,
		Valid:     s.Valid,
	}
}

func sampleFromDomain(s *domain.Sample) Sample {
	return Sample{
		SensorID:  s.SensorID,
		StationID: s.StationID,
		Name:      s.Name,
		ParamCode: s.ParamCode,
		Unit:      s.Unit,
		Timestamp: s.Timestamp,
		Seq:       s.Seq,
		Value:     s.Value,
		Valid:     s.Valid,
	}
}

func convertDomainBatch(samples []*domain.Sample) []Sample {
	if len(samples) == 0 {
		return nil
	}
	out := make([]Sample, len(samples))
	for i, sample := range samples {
		out[i] = sampleFromDomain(sample)
	}
	return out
}

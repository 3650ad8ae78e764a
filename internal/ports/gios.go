package ports

import (
	"context"
	"errors"
	"fmt"

	"github.com/ghalamif/giosaqi/internal/domain"
)

// Client is the GIOS data source consumed by discovery and by sensor
// refreshes. Implementations must be safe for concurrent use. A nil result
// with a nil error means the upstream had nothing for the given id.
type Client interface {
	Station(ctx context.Context, stationID string) (*domain.Station, error)
	Sensors(ctx context.Context, stationID string) ([]domain.SensorInfo, error)
	SensorData(ctx context.Context, sensorID *int64) (*domain.Series, error)
}

// FailureKind classifies transient client failures.
type FailureKind int

const (
	FailureConnectivity FailureKind = iota + 1
	FailureTimeout
)

var (
	ErrConnectivity = errors.New("gios: connectivity failure")
	ErrTimeout      = errors.New("gios: timeout")
)

func (k FailureKind) String() string {
	switch k {
	case FailureConnectivity:
		return "connectivity"
	case FailureTimeout:
		return "timeout"
	default:
		return "unknown"
	}
}

func (k FailureKind) sentinel() error {
	if k == FailureTimeout {
		return ErrTimeout
	}
	return ErrConnectivity
}

// ClientError is returned by Client implementations for transient failures.
// It matches ErrConnectivity or ErrTimeout with errors.Is.
type ClientError struct {
	Kind FailureKind
	Op   string
	Err  error
}

func (e *ClientError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("gios %s: %s failure", e.Op, e.Kind)
	}
	return fmt.Sprintf("gios %s: %s failure: %v", e.Op, e.Kind, e.Err)
}

func (e *ClientError) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind.sentinel()}
	}
	return []error{e.Kind.sentinel(), e.Err}
}

// IsTransient reports whether err is a connectivity or timeout failure.
func IsTransient(err error) bool {
	return errors.Is(err, ErrConnectivity) || errors.Is(err, ErrTimeout)
}

package sink

import (
	"errors"
	"fmt"
	"strings"

	"github.com/ghalamif/giosaqi/internal/domain"
	"github.com/ghalamif/giosaqi/internal/ports"
)

// Multi writes every batch to each of its sinks. A failing sink does not
// prevent the others from receiving the batch.
type Multi struct {
	sinks []ports.Sink
}

func NewMulti(sinks ...ports.Sink) *Multi {
	m := &Multi{}
	for _, s := range sinks {
		if s != nil {
			m.sinks = append(m.sinks, s)
		}
	}
	return m
}

func (m *Multi) Name() string {
	names := make([]string, len(m.sinks))
	for i, s := range m.sinks {
		names[i] = s.Name()
	}
	return strings.Join(names, "+")
}

func (m *Multi) WriteBatch(samples []*domain.Sample) error {
	var errs []error
	for _, s := range m.sinks {
		if err := s.WriteBatch(samples); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", s.Name(), err))
		}
	}
	return errors.Join(errs...)
}

// Announce forwards entity announcements to the sinks that accept them.
func (m *Multi) Announce(entities []domain.Entity) error {
	var errs []error
	for _, s := range m.sinks {
		a, ok := s.(ports.Announcer)
		if !ok {
			continue
		}
		if err := a.Announce(entities); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", s.Name(), err))
		}
	}
	return errors.Join(errs...)
}

func (m *Multi) Len() int { return len(m.sinks) }

var (
	_ ports.Sink      = (*Multi)(nil)
	_ ports.Announcer = (*Multi)(nil)
)

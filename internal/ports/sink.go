package ports

import "github.com/ghalamif/giosaqi/internal/domain"

type Sink interface {
	WriteBatch(samples []*domain.Sample) error
	Name() string
}

// Announcer is implemented by sinks that need the entity list up front,
// e.g. to publish discovery metadata.
type Announcer interface {
	Announce(entities []domain.Entity) error
}

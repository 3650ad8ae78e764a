package ports

import (
	"context"

	"github.com/ghalamif/giosaqi/internal/domain"
)

type Collector interface {
	Start(ctx context.Context, out chan<- *domain.Sample) error
	Stop() error
}

package ports

import (
	"context"

	"github.com/yozlet/event-sender/internal/domain"
)

// Sink delivers one batch of samples as a single unit. A batch is never
// split further downstream of the exporter.
type Sink interface {
	WriteBatch(ctx context.Context, samples []*domain.MetricSample) error
	Name() string
}

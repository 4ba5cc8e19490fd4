package buffer

import (
	"sync"

	"github.com/yozlet/event-sender/internal/domain"
	"github.com/yozlet/event-sender/internal/ports"
)

// MemBuffer is an in-memory FIFO accumulation of generated samples.
// It carries no size limit of its own: the exporter's soft cap forces a
// flush before the buffer can grow without bound. The mutex keeps it
// safe for a single-producer/single-consumer split (walker appends,
// exporter drains).
type MemBuffer struct {
	mu   sync.Mutex
	data []*domain.MetricSample
}

func NewMemBuffer(capacityHint int) *MemBuffer {
	if capacityHint < 0 {
		capacityHint = 0
	}
	return &MemBuffer{data: make([]*domain.MetricSample, 0, capacityHint)}
}

func (b *MemBuffer) Append(s *domain.MetricSample) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.data = append(b.data, s)
}

// Drain removes and returns up to max samples in insertion order. A
// non-positive max drains everything.
func (b *MemBuffer) Drain(max int) []*domain.MetricSample {
	b.mu.Lock()
	defer b.mu.Unlock()
	if len(b.data) == 0 {
		return nil
	}
	if max <= 0 || max > len(b.data) {
		max = len(b.data)
	}
	out := make([]*domain.MetricSample, max)
	copy(out, b.data[:max])
	b.data = append(b.data[:0], b.data[max:]...)
	return out
}

func (b *MemBuffer) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.data)
}

var _ ports.SampleBuffer = (*MemBuffer)(nil)

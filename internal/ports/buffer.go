package ports

import "github.com/yozlet/event-sender/internal/domain"

// SampleBuffer decouples sample generation from delivery. The walker
// exclusively appends, the exporter exclusively drains. Append never
// fails; Drain returns at most max samples in insertion order and every
// appended sample is eventually returned by some Drain call.
type SampleBuffer interface {
	Append(s *domain.MetricSample)
	Drain(max int) []*domain.MetricSample
	Len() int
}

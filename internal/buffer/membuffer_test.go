package buffer

import (
	"fmt"
	"testing"

	"github.com/yozlet/event-sender/internal/domain"
)

func TestMemBufferDrainOrder(t *testing.T) {
	b := NewMemBuffer(4)

	s1 := &domain.MetricSample{Name: "first"}
	s2 := &domain.MetricSample{Name: "second"}
	b.Append(s1)
	b.Append(s2)

	batch := b.Drain(1)
	if len(batch) != 1 || batch[0].Name != "first" {
		t.Fatalf("unexpected first drain: %+v", batch)
	}

	remaining := b.Drain(10)
	if len(remaining) != 1 || remaining[0].Name != "second" {
		t.Fatalf("unexpected second drain: %+v", remaining)
	}

	if b.Len() != 0 {
		t.Fatalf("buffer should be empty, got %d", b.Len())
	}
}

func TestMemBufferDrainEmpty(t *testing.T) {
	b := NewMemBuffer(0)
	if got := b.Drain(100); got != nil {
		t.Fatalf("drain of empty buffer should return nil, got %v", got)
	}
}

func TestMemBufferNeverOverReturns(t *testing.T) {
	b := NewMemBuffer(0)
	for i := 0; i < 7; i++ {
		b.Append(&domain.MetricSample{})
	}
	if got := len(b.Drain(3)); got != 3 {
		t.Fatalf("drain(3) returned %d samples", got)
	}
	if b.Len() != 4 {
		t.Fatalf("expected 4 remaining, got %d", b.Len())
	}
}

func TestMemBufferLossless(t *testing.T) {
	b := NewMemBuffer(0)

	const n = 237
	for i := 0; i < n; i++ {
		b.Append(&domain.MetricSample{Name: fmt.Sprintf("s-%03d", i)})
	}

	var drained []*domain.MetricSample
	for b.Len() > 0 {
		drained = append(drained, b.Drain(10)...)
	}

	if len(drained) != n {
		t.Fatalf("drained %d of %d samples", len(drained), n)
	}
	for i, s := range drained {
		if want := fmt.Sprintf("s-%03d", i); s.Name != want {
			t.Fatalf("position %d: got %s, want %s", i, s.Name, want)
		}
	}
}

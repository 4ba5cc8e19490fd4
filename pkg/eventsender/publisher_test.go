package eventsender

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"
)

func TestPublisherDeliversInOrder(t *testing.T) {
	var received []*MetricSample
	snk := NewCallbackSink("cb", func(batch []*MetricSample) error {
		received = append(received, batch...)
		return nil
	})

	pub, err := NewPublisher(&PublisherConfig{
		FlushInterval: 10 * time.Millisecond,
	}, snk)
	if err != nil {
		t.Fatalf("NewPublisher: %v", err)
	}

	base := time.Unix(0, 0)
	const n = 250
	for i := 0; i < n; i++ {
		s := testSample(fmt.Sprintf("sample-%d", i), base.Add(time.Duration(i)*time.Second))
		if err := pub.Publish(s); err != nil {
			t.Fatalf("publish %d: %v", i, err)
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := pub.Close(ctx); err != nil {
		t.Fatalf("close: %v", err)
	}

	if len(received) != n {
		t.Fatalf("expected %d samples delivered, got %d", n, len(received))
	}
	for i, s := range received {
		if want := fmt.Sprintf("sample-%d", i); s.Name != want {
			t.Fatalf("sample %d out of order: got %s", i, s.Name)
		}
	}
}

func TestPublisherRejectsAfterClose(t *testing.T) {
	pub, err := NewPublisher(nil, NewCallbackSink("cb", func([]*MetricSample) error { return nil }))
	if err != nil {
		t.Fatalf("NewPublisher: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := pub.Close(ctx); err != nil {
		t.Fatalf("close: %v", err)
	}

	if err := pub.Publish(testSample("late", time.Now())); !errors.Is(err, ErrPublisherClosed) {
		t.Fatalf("expected ErrPublisherClosed, got %v", err)
	}
}

func TestPublisherRequiresSink(t *testing.T) {
	if _, err := NewPublisher(nil, nil); err == nil {
		t.Fatal("expected error for nil sink")
	}
}

func TestPublisherRejectsInvalidPolicy(t *testing.T) {
	cfg := &PublisherConfig{}
	cfg.Policy.BatchSize = 500
	if _, err := NewPublisher(cfg, NewCallbackSink("cb", func([]*MetricSample) error { return nil })); err == nil {
		t.Fatal("expected error for oversized batch")
	}
}

func TestPublisherLen(t *testing.T) {
	snk := NewCallbackSink("cb", func([]*MetricSample) error { return nil })
	pub, err := NewPublisher(&PublisherConfig{FlushInterval: time.Hour}, snk)
	if err != nil {
		t.Fatalf("NewPublisher: %v", err)
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		_ = pub.Close(ctx)
	}()

	for i := 0; i < 3; i++ {
		if err := pub.Publish(testSample("s", time.Now())); err != nil {
			t.Fatalf("publish: %v", err)
		}
	}
	if pub.Len() != 3 {
		t.Fatalf("expected 3 buffered samples, got %d", pub.Len())
	}
}

package main

import (
	"context"
	"fmt"
	"log"
	"time"

	eventsender "github.com/yozlet/event-sender"
)

func main() {
	flow, err := eventsender.Conf("../../config.yaml")
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sink, batches, closeBatches := eventsender.NewChannelSink("fanout", 32)
	defer closeBatches()

	go fanoutWorker("ingest", batches)

	if _, err := flow.Run(ctx, eventsender.StreamOutSink(sink)); err != nil {
		log.Fatalf("runtime error: %v", err)
	}
}

func fanoutWorker(name string, batches <-chan []*eventsender.MetricSample) {
	for batch := range batches {
		fmt.Printf("[%s] forwarding %d samples at %s\n", name, len(batch), time.Now().Format(time.RFC3339))
	}
}

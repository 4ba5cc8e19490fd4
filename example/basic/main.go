package main

import (
	"context"
	"fmt"
	"log"
	"os/signal"
	"syscall"

	eventsender "github.com/yozlet/event-sender"
)

func main() {
	flow, err := eventsender.Conf("../../config.yaml")
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	rep, err := flow.Run(ctx)
	if err != nil {
		log.Fatalf("runtime exited: %v", err)
	}
	fmt.Printf("generated %d samples over %d ticks\n", rep.SamplesGenerated, rep.Ticks)
}

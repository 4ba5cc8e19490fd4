package main

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/yozlet/event-sender/pkg/eventsender"
)

func main() {
	flow, err := eventsender.Conf("../../config.yaml")
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	callback := func(batch []*eventsender.MetricSample) error {
		for _, sample := range batch {
			fmt.Printf("%s %s=%g service=%s endpoint=%s\n",
				sample.Timestamp.Format(time.RFC3339),
				sample.Name,
				sample.Value,
				sample.Dimensions.Service,
				sample.Dimensions.Endpoint,
			)
		}
		return nil
	}

	if _, err := flow.Run(ctx, eventsender.StreamOutCallback("stdout", callback)); err != nil {
		log.Fatalf("runtime error: %v", err)
	}
}

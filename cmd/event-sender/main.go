package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	eventsender "github.com/yozlet/event-sender"
	"github.com/yozlet/event-sender/internal/traffic"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	cmd := os.Args[1]
	var err error

	switch cmd {
	case "run":
		err = runCommand(os.Args[2:])
	case "validate":
		err = validateCommand(os.Args[2:])
	case "preview":
		err = previewCommand(os.Args[2:])
	case "stats":
		err = statsCommand(os.Args[2:])
	case "help", "-h", "--help":
		printUsage()
		return
	default:
		printUsage()
		err = fmt.Errorf("unknown command %q", cmd)
	}

	if err != nil {
		log.Fatalf("event-sender %s: %v", cmd, err)
	}
}

func runCommand(args []string) error {
	fs := flag.NewFlagSet("run", flag.ExitOnError)
	cfgPath := fs.String("config", "./config.yaml", "Path to configuration file")
	seed := fs.Int64("seed", 0, "Override the random seed (0 keeps the configured one)")
	days := fs.Int("days", 0, "Override the historical window in days")
	duration := fs.Duration("duration", 0, "Override the realtime run duration")
	if err := fs.Parse(args); err != nil {
		return err
	}

	flow, err := eventsender.Conf(*cfgPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	cfg := flow.Config()
	if *seed != 0 {
		cfg.Run.Seed = *seed
	}
	if *days != 0 {
		cfg.Run.Days = *days
	}
	if *duration != 0 {
		cfg.Run.Duration = *duration
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	rep, err := flow.Run(ctx)
	if err != nil {
		return err
	}

	fmt.Printf("run complete: ticks=%d generated=%d delivered=%d failed_batches=%d rejected_events=%d\n",
		rep.Ticks, rep.SamplesGenerated, rep.SamplesDelivered, rep.BatchesFailed, rep.EventsRejected)
	return nil
}

func validateCommand(args []string) error {
	fs := flag.NewFlagSet("validate", flag.ExitOnError)
	cfgPath := fs.String("config", "./config.yaml", "Path to configuration file to validate")
	if err := fs.Parse(args); err != nil {
		return err
	}

	if _, err := eventsender.LoadConfig(*cfgPath); err != nil {
		return err
	}
	fmt.Printf("config %s looks good\n", *cfgPath)
	return nil
}

// previewCommand prints one day's intensity curve so the traffic shape
// can be inspected without generating or sending anything.
func previewCommand(args []string) error {
	fs := flag.NewFlagSet("preview", flag.ExitOnError)
	day := fs.String("day", "", "Day to preview as YYYY-MM-DD (default today)")
	step := fs.Duration("step", time.Hour, "Sampling step for the curve")
	if err := fs.Parse(args); err != nil {
		return err
	}

	start := time.Now().UTC().Truncate(24 * time.Hour)
	if *day != "" {
		parsed, err := time.Parse("2006-01-02", *day)
		if err != nil {
			return fmt.Errorf("parse day: %w", err)
		}
		start = parsed
	}
	if *step <= 0 {
		return fmt.Errorf("step must be positive")
	}

	fmt.Printf("traffic intensity for %s (UTC ticks, Eastern business hours)\n", start.Format("2006-01-02"))
	end := start.Add(24 * time.Hour)
	for ts := start; ts.Before(end); ts = ts.Add(*step) {
		intensity := traffic.Intensity(ts)
		bar := strings.Repeat("#", int(intensity*40))
		fmt.Printf("%s  %.3f  %s\n", ts.Format("15:04"), intensity, bar)
	}
	return nil
}

func statsCommand(args []string) error {
	fs := flag.NewFlagSet("stats", flag.ExitOnError)
	url := fs.String("url", "http://localhost:9100/metrics", "Prometheus metrics endpoint")
	interval := fs.Duration("interval", 2*time.Second, "Refresh interval")
	if err := fs.Parse(args); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	ticker := time.NewTicker(*interval)
	defer ticker.Stop()

	fmt.Printf("Streaming metrics from %s (Ctrl+C to stop)\n", *url)
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if err := printMetricsSnapshot(*url); err != nil {
				fmt.Fprintf(os.Stderr, "stats error: %v\n", err)
			}
		}
	}
}

func printMetricsSnapshot(url string) error {
	resp, err := http.Get(url)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status %s", resp.Status)
	}

	targets := map[string]float64{
		"eventsender_samples_generated_total": 0,
		"eventsender_batches_delivered_total": 0,
		"eventsender_batches_failed_total":    0,
		"eventsender_buffer_length":           0,
	}

	scanner := bufio.NewScanner(resp.Body)
	for scanner.Scan() {
		line := scanner.Text()
		if strings.HasPrefix(line, "#") {
			continue
		}
		for key := range targets {
			if strings.HasPrefix(line, key+" ") {
				var value float64
				if _, err := fmt.Sscanf(line, key+" %f", &value); err == nil {
					targets[key] = value
				}
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return err
	}

	fmt.Printf("[%s] generated=%.0f delivered_batches=%.0f failed_batches=%.0f buffered=%.0f\n",
		time.Now().Format(time.RFC3339),
		targets["eventsender_samples_generated_total"],
		targets["eventsender_batches_delivered_total"],
		targets["eventsender_batches_failed_total"],
		targets["eventsender_buffer_length"],
	)
	return nil
}

func printUsage() {
	fmt.Printf(`event-sender CLI

Usage:
  event-sender <command> [flags]

Commands:
  run        Generate telemetry per the config and send it to the sink
  validate   Load and validate a config file without running
  preview    Print one day's traffic intensity curve
  stats      Poll the Prometheus metrics endpoint and print live counters

Examples:
  event-sender run -config ./config.yaml -seed 42
  event-sender run -config ./config.yaml -days 7
  event-sender validate -config ./config.yaml
  event-sender preview -day 2026-08-28 -step 30m
  event-sender stats -url http://localhost:9100/metrics -interval 1s
`)
}

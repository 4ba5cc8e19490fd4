// Package sink provides delivery backends for generated samples: the
// Honeycomb events API and a TimescaleDB archive table.
package sink

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/yozlet/event-sender/internal/adapters/observability"
	"github.com/yozlet/event-sender/internal/domain"
	"github.com/yozlet/event-sender/internal/export"
	"github.com/yozlet/event-sender/internal/ports"
)

const DefaultHoneycombURL = "https://api.honeycomb.io"

// honeycombEvent is one element of the events batch payload.
type honeycombEvent struct {
	Time string         `json:"time"`
	Data map[string]any `json:"data"`
}

// batchResponse is the per-event status array returned by the API.
type batchResponse struct {
	Status int    `json:"status"`
	Error  string `json:"error,omitempty"`
}

// HoneycombSink submits each batch as a JSON array of events to
// POST /1/batch/{dataset}. Whole-batch transport failures are
// classified for the exporter's retry logic; per-event rejections
// inside an accepted batch are counted and logged, never retried.
type HoneycombSink struct {
	client  *http.Client
	baseURL string
	dataset string
	apiKey  string
	obs     ports.Observability

	rejected int
}

func NewHoneycombSink(client *http.Client, baseURL, dataset, apiKey string, obs ports.Observability) *HoneycombSink {
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	if baseURL == "" {
		baseURL = DefaultHoneycombURL
	}
	if obs == nil {
		obs = observability.NewNop()
	}
	return &HoneycombSink{
		client:  client,
		baseURL: baseURL,
		dataset: dataset,
		apiKey:  apiKey,
		obs:     obs,
	}
}

func (h *HoneycombSink) Name() string { return "honeycomb" }

func (h *HoneycombSink) WriteBatch(ctx context.Context, samples []*domain.MetricSample) error {
	if len(samples) == 0 {
		return nil
	}

	events := make([]honeycombEvent, len(samples))
	for i, s := range samples {
		events[i] = toEvent(s)
	}

	body, err := json.Marshal(events)
	if err != nil {
		return &export.PermanentError{Err: fmt.Errorf("marshal batch: %w", err)}
	}

	url := fmt.Sprintf("%s/1/batch/%s", h.baseURL, h.dataset)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return &export.PermanentError{Err: fmt.Errorf("build request: %w", err)}
	}
	req.Header.Set("X-Honeycomb-Team", h.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := h.client.Do(req)
	if err != nil {
		return &export.TransientError{Err: fmt.Errorf("post batch: %w", err)}
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		h.recordRejections(resp.Body, len(samples))
		return nil
	case resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500:
		return &export.TransientError{Status: resp.StatusCode, Err: fmt.Errorf("batch endpoint returned %s", resp.Status)}
	default:
		return &export.PermanentError{Status: resp.StatusCode, Err: fmt.Errorf("batch endpoint returned %s", resp.Status)}
	}
}

// recordRejections scans the per-event status array of an accepted
// batch. Individual rejections are an accounting concern only.
func (h *HoneycombSink) recordRejections(body io.Reader, batchSize int) {
	var statuses []batchResponse
	if err := json.NewDecoder(body).Decode(&statuses); err != nil {
		h.obs.LogError("batch_response_unreadable", err)
		return
	}

	rejected := 0
	for _, st := range statuses {
		if st.Status < 200 || st.Status >= 300 {
			rejected++
		}
	}
	if rejected > 0 {
		h.rejected += rejected
		h.obs.IncCounter("eventsender_events_rejected_total", float64(rejected))
		h.obs.LogError("events_rejected", fmt.Errorf("%d of %d events rejected", rejected, batchSize))
	}
}

// RejectedEvents returns the count of individually rejected events
// across all accepted batches.
func (h *HoneycombSink) RejectedEvents() int { return h.rejected }

func toEvent(s *domain.MetricSample) honeycombEvent {
	data := map[string]any{
		"metric_name": s.Name,
		"metric_kind": string(s.Kind),
		"value":       s.Value,
	}
	addField(data, "service", s.Dimensions.Service)
	addField(data, "endpoint", s.Dimensions.Endpoint)
	addField(data, "method", s.Dimensions.Method)
	addField(data, "region", s.Dimensions.Region)
	addField(data, "status_class", s.Dimensions.StatusClass)
	addField(data, "query_type", s.Dimensions.QueryType)
	addField(data, "table", s.Dimensions.Table)
	addField(data, "client_class", s.Dimensions.ClientClass)
	if s.Dimensions.StatusCode != 0 {
		data["status_code"] = s.Dimensions.StatusCode
	}

	return honeycombEvent{
		Time: s.Timestamp.UTC().Format(time.RFC3339Nano),
		Data: data,
	}
}

func addField(data map[string]any, key, value string) {
	if value != "" {
		data[key] = value
	}
}

var _ ports.Sink = (*HoneycombSink)(nil)

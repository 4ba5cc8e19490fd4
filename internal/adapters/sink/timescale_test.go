package sink

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"

	"github.com/yozlet/event-sender/internal/domain"
	"github.com/yozlet/event-sender/internal/export"
)

func TestTimescaleSinkWriteBatch(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer db.Close()

	sink := NewTimescaleSink(db, "metric_samples")
	ts := time.Now()

	samples := []*domain.MetricSample{
		{
			Name:      "http_requests_total",
			Kind:      domain.KindCounter,
			Value:     1,
			Timestamp: ts,
			Dimensions: domain.Dimensions{
				Service:  "web-frontend",
				Endpoint: "/api/products",
			},
		},
	}

	expectedQuery := regexp.QuoteMeta("INSERT INTO metric_samples (ts, name, kind, value, dimensions) VALUES ($1,$2,$3,$4,$5) ON CONFLICT (ts, name, dimensions) DO NOTHING")
	mock.ExpectExec(expectedQuery).
		WithArgs(ts, "http_requests_total", "counter", float64(1), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))

	if err := sink.WriteBatch(context.Background(), samples); err != nil {
		t.Fatalf("write batch: %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestTimescaleSinkWriteBatchNoSamples(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer db.Close()

	sink := NewTimescaleSink(db, "metric_samples")
	if err := sink.WriteBatch(context.Background(), nil); err != nil {
		t.Fatalf("expected nil error for empty batch, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestTimescaleSinkDatabaseErrorIsTransient(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer db.Close()

	mock.ExpectExec("INSERT INTO metric_samples").
		WillReturnError(errors.New("connection refused"))

	sink := NewTimescaleSink(db, "metric_samples")
	samples := []*domain.MetricSample{
		{Name: "active_users", Kind: domain.KindGauge, Value: 10, Timestamp: time.Now()},
	}

	err = sink.WriteBatch(context.Background(), samples)
	if err == nil {
		t.Fatal("expected error")
	}
	if !export.IsTransient(err) {
		t.Fatalf("expected transient classification, got %v", err)
	}
}

func TestTimescaleSinkName(t *testing.T) {
	db, _, _ := sqlmock.New()
	defer db.Close()

	sink := NewTimescaleSink(db, "metric_samples")
	if sink.Name() != "timescaledb" {
		t.Fatalf("expected sink name timescaledb, got %s", sink.Name())
	}
}

package sink

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"

	_ "github.com/lib/pq"

	"github.com/yozlet/event-sender/internal/domain"
	"github.com/yozlet/event-sender/internal/export"
	"github.com/yozlet/event-sender/internal/ports"
)

// TimescaleSink archives samples into a hypertable as a multi-row
// insert. Database errors are reported as transient so the exporter
// retries the whole batch; the unique key keeps the retry idempotent.
type TimescaleSink struct {
	db        *sql.DB
	tableName string
}

func NewTimescaleSink(db *sql.DB, table string) *TimescaleSink {
	return &TimescaleSink{db: db, tableName: table}
}

func (t *TimescaleSink) Name() string { return "timescaledb" }

func (t *TimescaleSink) WriteBatch(ctx context.Context, samples []*domain.MetricSample) error {
	if len(samples) == 0 {
		return nil
	}

	var b strings.Builder
	b.WriteString("INSERT INTO ")
	b.WriteString(t.tableName)
	b.WriteString(" (ts, name, kind, value, dimensions) VALUES ")

	args := make([]any, 0, len(samples)*5)
	for i, s := range samples {
		if i > 0 {
			b.WriteString(",")
		}
		b.WriteString(fmt.Sprintf("($%d,$%d,$%d,$%d,$%d)",
			len(args)+1, len(args)+2, len(args)+3, len(args)+4, len(args)+5))

		dims, err := json.Marshal(s.Dimensions)
		if err != nil {
			return &export.PermanentError{Err: fmt.Errorf("marshal dimensions: %w", err)}
		}

		args = append(args,
			s.Timestamp,
			s.Name,
			string(s.Kind),
			s.Value,
			dims,
		)
	}

	b.WriteString(" ON CONFLICT (ts, name, dimensions) DO NOTHING")

	if _, err := t.db.ExecContext(ctx, b.String(), args...); err != nil {
		return &export.TransientError{Err: fmt.Errorf("insert batch: %w", err)}
	}
	return nil
}

var _ ports.Sink = (*TimescaleSink)(nil)

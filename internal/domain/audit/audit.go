package audit

import (
	"context"
	"log/slog"
)

const (
	ActionRecordUpsert  = "record.upsert"
	ActionRecordDelete  = "record.delete"
	ActionRecordsImport = "records.import"
)

type Event struct {
	ActorID    string
	Action     string
	EntityType string
	EntityID   string
	RequestID  string
	IP         string
	Before     any
	After      any
}

// Logger writes the audit trail of record mutations as structured log entries under the
// "audit" group.
type Logger struct {
	log *slog.Logger
}

func New(logger *slog.Logger) *Logger {
	if logger == nil {
		logger = slog.Default()
	}
	return &Logger{log: logger}
}

func (l *Logger) Record(ctx context.Context, evt Event) {
	if l == nil {
		return
	}
	attrs := []any{
		slog.String("actor", evt.ActorID),
		slog.String("action", evt.Action),
		slog.String("entityType", evt.EntityType),
		slog.String("entityId", evt.EntityID),
		slog.String("requestId", evt.RequestID),
		slog.String("ip", evt.IP),
	}
	if evt.Before != nil {
		attrs = append(attrs, slog.Any("before", evt.Before))
	}
	if evt.After != nil {
		attrs = append(attrs, slog.Any("after", evt.After))
	}
	l.log.InfoContext(ctx, "audit event", slog.Group("audit", attrs...))
}

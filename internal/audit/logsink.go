package audit

import (
	"context"
	"time"

	"github.com/dropDatabas3/scopegate/internal/observability/logger"
)

// LogSink escribe eventos al logger estructurado. Es el sink mínimo que
// siempre está disponible, incluso sin base de datos configurada.
type LogSink struct{}

func NewLogSink() *LogSink {
	return &LogSink{}
}

func (s *LogSink) LogEvent(ctx context.Context, ev Event) {
	at := ev.At
	if at.IsZero() {
		at = time.Now().UTC()
	}
	logger.From(ctx).Named("audit").Info("audit event",
		logger.EventType(ev.Type),
		logger.String("subject_id", ev.SubjectID),
		logger.String("at", at.Format(time.RFC3339Nano)),
		logger.Any("details", ev.Details),
		logger.ClientIP(ev.IPAddress),
		logger.UserAgent(ev.UserAgent),
	)
}

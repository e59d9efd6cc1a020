package logging

import (
	"context"

	"github.com/ST10067544-Thato/Gift-Card-System/domain"
	"go.uber.org/zap"
)

// ZapAuditLogger writes audit events as structured entries on the "audit" logger
type ZapAuditLogger struct {
	logger *zap.Logger
}

func NewZapAuditLogger(logger *zap.Logger) *ZapAuditLogger {
	return &ZapAuditLogger{logger: logger.Named("audit")}
}

// LogEvent implements domain.AuditLogger
func (a *ZapAuditLogger) LogEvent(_ context.Context, event *domain.AuditEvent) {
	fields := []zap.Field{
		zap.String("event", string(event.EventType)),
		zap.Bool("success", event.Success),
		zap.Time("at", event.Timestamp),
	}
	if event.UserID != 0 {
		fields = append(fields, zap.Uint("user_id", event.UserID))
	}
	if event.Email != "" {
		fields = append(fields, zap.String("email", event.Email))
	}
	if event.Actor != "" {
		fields = append(fields, zap.String("actor", event.Actor))
	}
	if event.RequestID != "" {
		fields = append(fields, zap.String("request_id", event.RequestID))
	}
	if event.IPAddress != "" {
		fields = append(fields, zap.String("client_ip", event.IPAddress))
	}
	if event.UserAgent != "" {
		fields = append(fields, zap.String("user_agent", event.UserAgent))
	}
	if len(event.Metadata) > 0 {
		fields = append(fields, zap.Any("metadata", event.Metadata))
	}

	if event.Success {
		a.logger.Info("audit event", fields...)
		return
	}
	if event.ErrorMsg != "" {
		fields = append(fields, zap.String("reason", event.ErrorMsg))
	}
	a.logger.Warn("audit event", fields...)
}

var _ domain.AuditLogger = (*ZapAuditLogger)(nil)

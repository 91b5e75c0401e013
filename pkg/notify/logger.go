package notify

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/neoxlab/notify/pkg/logger"
)

// NotificationLogger records finalized outcomes. Like StatusPublisher it is
// best-effort: errors and panics from it never change the dispatch outcome.
type NotificationLogger interface {
	Log(ctx context.Context, out Outcome)
}

// SlogNotificationLogger writes outcomes to a slog.Logger, failed ones at
// error level, everything else at info.
type SlogNotificationLogger struct {
	log *slog.Logger
}

// NewSlogNotificationLogger wraps l; a nil l falls back to slog.Default().
func NewSlogNotificationLogger(l *slog.Logger) *SlogNotificationLogger {
	if l == nil {
		l = slog.Default()
	}
	return &SlogNotificationLogger{log: l}
}

// Log implements NotificationLogger.
func (s *SlogNotificationLogger) Log(ctx context.Context, out Outcome) {
	msg := fmt.Sprintf("notification [%s] [%s]", strings.ToUpper(out.Channel), strings.ToUpper(string(out.Status)))
	if out.Message != "" {
		msg += " " + out.Message
	}

	attrs := []slog.Attr{
		logger.Component("notify"),
		logger.Channel(out.Channel),
		logger.Status(string(out.Status)),
		slog.String("uuid", out.UUID),
	}
	if id, ok := out.Metadata.Get("id"); ok {
		attrs = append(attrs, logger.MessageID(id))
	} else if out.ID != "" {
		attrs = append(attrs, logger.MessageID(out.ID))
	}
	if cid, ok := out.Metadata.Get("correlationId"); ok {
		if s, _ := cid.(string); s != "" {
			attrs = append(attrs, logger.CorrelationID(s))
		}
	}

	level := slog.LevelInfo
	if out.Status == StatusFailed {
		level = slog.LevelError
	}
	s.log.LogAttrs(ctx, level, msg, attrs...)
}

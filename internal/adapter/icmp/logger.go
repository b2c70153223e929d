package icmp

import (
	"context"
	"fmt"
	"log/slog"

	probing "github.com/prometheus-community/pro-bing"
)

var _ probing.Logger = (*slogLogger)(nil)

// slogLogger routes pro-bing's printf-style logging into slog.
type slogLogger struct {
	ctx    context.Context
	logger *slog.Logger
}

func (l *slogLogger) Fatalf(format string, v ...any) {
	l.logger.ErrorContext(l.ctx, fmt.Sprintf(format, v...))
}

func (l *slogLogger) Errorf(format string, v ...any) {
	l.logger.ErrorContext(l.ctx, fmt.Sprintf(format, v...))
}

func (l *slogLogger) Warnf(format string, v ...any) {
	l.logger.WarnContext(l.ctx, fmt.Sprintf(format, v...))
}

func (l *slogLogger) Infof(format string, v ...any) {
	l.logger.DebugContext(l.ctx, fmt.Sprintf(format, v...))
}

func (l *slogLogger) Debugf(format string, v ...any) {
	l.logger.DebugContext(l.ctx, fmt.Sprintf(format, v...))
}

package gosched

import "go.uber.org/zap"

// Logger is the ambient logging interface used by Scheduler. It uses a
// variadic key-value args shape so any slog/zap/logrus wrapper an embedder
// already has satisfies it.
type Logger interface {
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
	Debug(msg string, args ...any)
}

// NoopLogger discards everything; it's the zero value used when a
// Scheduler is constructed without WithLogger, so call sites never need a
// nil check.
type NoopLogger struct{}

func (NoopLogger) Info(string, ...any)  {}
func (NoopLogger) Warn(string, ...any)  {}
func (NoopLogger) Error(string, ...any) {}
func (NoopLogger) Debug(string, ...any) {}

// zapLogger adapts *zap.SugaredLogger to Logger.
type zapLogger struct {
	s *zap.SugaredLogger
}

// NewZapLogger wraps an existing zap logger. Pass zap.NewProduction() (or
// zap.NewDevelopment() in tests) and check its error before calling this.
func NewZapLogger(l *zap.Logger) Logger {
	return &zapLogger{s: l.Sugar()}
}

func (z *zapLogger) Info(msg string, args ...any)  { z.s.Infow(msg, args...) }
func (z *zapLogger) Warn(msg string, args ...any)  { z.s.Warnw(msg, args...) }
func (z *zapLogger) Error(msg string, args ...any) { z.s.Errorw(msg, args...) }
func (z *zapLogger) Debug(msg string, args ...any) { z.s.Debugw(msg, args...) }

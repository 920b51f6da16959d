package monitoring

import (
	"context"
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/turtacn/tgroups/internal/config"
	"github.com/turtacn/tgroups/pkg/constants"
	"github.com/turtacn/tgroups/pkg/logger"
)

// ZapLogger implements logger.Logger on zap.
type ZapLogger struct {
	*zap.Logger
}

// NewZapLogger builds the service logger from cfg. Format "console" selects a human-readable encoder.
func NewZapLogger(cfg *config.LogConfig) (*ZapLogger, error) {
	return newZapLogger(cfg, zapcore.AddSync(os.Stdout))
}

func newZapLogger(cfg *config.LogConfig, sink zapcore.WriteSyncer) (*ZapLogger, error) {
	encoderConfig := zap.NewProductionEncoderConfig()
	encoderConfig.TimeKey = "timestamp"
	encoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		level = zapcore.InfoLevel
	}

	encoder := zapcore.NewJSONEncoder(encoderConfig)
	if cfg.Format == "console" {
		encoder = zapcore.NewConsoleEncoder(encoderConfig)
	}

	core := zapcore.NewCore(encoder, sink, level)
	return &ZapLogger{zap.New(core, zap.AddCaller(), zap.AddCallerSkip(1), zap.AddStacktrace(zapcore.ErrorLevel))}, nil
}

// Zap returns the underlying logger for libraries that take a *zap.Logger.
// levelName raises the minimum level of the returned logger; an unparsable name keeps the service level.
func (l *ZapLogger) Zap(levelName string) *zap.Logger {
	level, err := zapcore.ParseLevel(levelName)
	if err != nil {
		return l.Logger.WithOptions(zap.AddCallerSkip(-1))
	}
	return l.Logger.WithOptions(zap.AddCallerSkip(-1), zap.IncreaseLevel(level))
}

func (l *ZapLogger) Debug(ctx context.Context, msg string, fields ...logger.Fields) {
	l.Logger.Debug(msg, l.convertFields(ctx, fields...)...)
}

func (l *ZapLogger) Info(ctx context.Context, msg string, fields ...logger.Fields) {
	l.Logger.Info(msg, l.convertFields(ctx, fields...)...)
}

func (l *ZapLogger) Warn(ctx context.Context, msg string, fields ...logger.Fields) {
	l.Logger.Warn(msg, l.convertFields(ctx, fields...)...)
}

func (l *ZapLogger) Error(ctx context.Context, msg string, err error, fields ...logger.Fields) {
	allFields := append(fields, logger.Error(err))
	l.Logger.Error(msg, l.convertFields(ctx, allFields...)...)
}

func (l *ZapLogger) Fatal(ctx context.Context, msg string, err error, fields ...logger.Fields) {
	allFields := append(fields, logger.Error(err))
	l.Logger.Fatal(msg, l.convertFields(ctx, allFields...)...)
}

func (l *ZapLogger) WithFields(fields logger.Fields) logger.Logger {
	return &ZapLogger{l.Logger.With(l.convertFields(context.Background(), fields)...)}
}

func (l *ZapLogger) WithComponent(component string) logger.Logger {
	return &ZapLogger{l.Logger.With(zap.String("component", component))}
}

func (l *ZapLogger) convertFields(ctx context.Context, fields ...logger.Fields) []zap.Field {
	zapFields := make([]zap.Field, 0)
	if ctx != nil {
		if traceID, ok := ctx.Value(constants.ContextKeyTraceID).(string); ok && traceID != "" {
			zapFields = append(zapFields, zap.String("trace_id", traceID))
		}
		if requestID, ok := ctx.Value(constants.ContextKeyRequestID).(string); ok && requestID != "" {
			zapFields = append(zapFields, zap.String("request_id", requestID))
		}
	}

	for _, f := range fields {
		for k, v := range f {
			zapFields = append(zapFields, zap.Any(k, logger.Sanitize(k, v)))
		}
	}
	return zapFields
}

var _ logger.Logger = (*ZapLogger)(nil)

//Personal.AI order the ending

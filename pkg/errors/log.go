package errors

import (
	"go.uber.org/zap"
)

// LogHandler is an ErrorHandler that writes reported errors to a zap logger.
type LogHandler struct {
	// Verbose attaches stack traces to logged errors.
	Verbose bool

	logger *zap.Logger
}

// NewLogHandler returns a LogHandler writing to logger. A nil logger falls
// back to a production logger on stderr.
func NewLogHandler(logger *zap.Logger) *LogHandler {
	if logger == nil {
		l, err := zap.NewProduction()
		if err != nil {
			l = zap.NewNop()
		}
		logger = l
	}
	return &LogHandler{logger: logger.Named("drift")}
}

// HandleError logs a DriftError.
func (h *LogHandler) HandleError(err *DriftError) {
	if err == nil {
		return
	}
	fields := []zap.Field{
		zap.String("op", err.Op),
		zap.Stringer("kind", err.Kind),
		zap.Error(err.Err),
		zap.Time("at", err.Timestamp),
	}
	if err.Channel != "" {
		fields = append(fields, zap.String("channel", err.Channel))
	}
	if h.Verbose && err.StackTrace != "" {
		fields = append(fields, zap.String("stack", err.StackTrace))
	}
	h.logger.Error("drift error", fields...)
}

// HandlePanic logs a PanicError.
func (h *LogHandler) HandlePanic(err *PanicError) {
	if err == nil {
		return
	}
	fields := []zap.Field{
		zap.String("op", err.Op),
		zap.Any("value", err.Value),
	}
	if h.Verbose && err.StackTrace != "" {
		fields = append(fields, zap.String("stack", err.StackTrace))
	}
	h.logger.Error("drift panic", fields...)
}

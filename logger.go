package kernel

// Logger defines the interface for kernel logging.
// The kernel uses structured logging with key-value pairs so that embedding
// applications can route framework logs through whatever logging library they
// already use (slog, zap, logrus, ...).
//
// The Logger interface uses variadic arguments in key-value pairs:
//
//	logger.Info("Module activated", "module", "device.android.install")
//
// Example implementation using Go's standard log/slog:
//
//	type SlogLogger struct {
//	    logger *slog.Logger
//	}
//
//	func (l *SlogLogger) Info(msg string, args ...any)  { l.logger.Info(msg, args...) }
//	func (l *SlogLogger) Error(msg string, args ...any) { l.logger.Error(msg, args...) }
//	func (l *SlogLogger) Warn(msg string, args ...any)  { l.logger.Warn(msg, args...) }
//	func (l *SlogLogger) Debug(msg string, args ...any) { l.logger.Debug(msg, args...) }
type Logger interface {
	// Info logs an informational message with optional key-value pairs.
	// Used for normal kernel events like boot completion or module activation.
	Info(msg string, args ...any)

	// Error logs an error message with optional key-value pairs.
	// Used for failures that do not abort the current operation, such as a
	// panicking event handler.
	Error(msg string, args ...any)

	// Warn logs a warning message with optional key-value pairs.
	Warn(msg string, args ...any)

	// Debug logs a debug message with optional key-value pairs.
	// Used for detailed diagnostics like predicate evaluation during InitAll.
	Debug(msg string, args ...any)
}

// Package logging provides structured logging for libyee.
//
// This package wraps a global zap logger with convenience functions. The
// library packages log through it; nothing is printed until the logger is
// initialized, so embedding programs stay quiet by default.
//
// # Log Levels
//
//   - Debug: Wire traffic (hex/ascii dumps), every announcement, every call
//   - Info: Discovery sessions starting and finishing, devices found
//   - Warn: Failed calls, probe send failures
//   - Error: Fatal CLI issues
//
// # Configuration
//
//	if err := logging.Initialize("debug"); err != nil {
//	    log.Fatal(err)
//	}
//	defer logging.Sync()
//
// Passing an empty level reads YEE_LOG_LEVEL; if that is empty too the
// logger stays a no-op.
//
// # Thread Safety
//
// All logging functions are safe for concurrent use. Initialize and
// SetLogger are meant to be called once at startup.
package logging

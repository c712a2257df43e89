package logger

import (
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Global logger instance, shared by all packages.
var Logger *zap.SugaredLogger

func init() {
	// Safe no-op logger at package load time so callers never hit a nil
	// logger before Initialize runs.
	Logger = zap.NewNop().Sugar()
}

// Initialize sets up the global logger. Verbosity is the CLI -v flag count;
// jsonOutput switches to machine-readable structured output.
func Initialize(verbosity int, jsonOutput bool) error {
	level := VerbosityToLevel(verbosity)

	var zapLogger *zap.Logger
	if jsonOutput {
		config := zap.NewProductionConfig()
		config.Level = zap.NewAtomicLevelAt(level)
		var err error
		zapLogger, err = config.Build()
		if err != nil {
			return err
		}
	} else {
		encCfg := zap.NewDevelopmentEncoderConfig()
		encCfg.EncodeLevel = zapcore.CapitalColorLevelEncoder
		encCfg.EncodeTime = zapcore.TimeEncoderOfLayout("15:04:05")
		zapLogger = zap.New(
			zapcore.NewCore(
				zapcore.NewConsoleEncoder(encCfg),
				zapcore.AddSync(os.Stderr),
				level,
			),
		)
	}

	Logger = zapLogger.Sugar()
	return nil
}

// InitializeWithSink routes log output to the given sink at the given
// level. Used by tests to capture output.
func InitializeWithSink(sink zapcore.WriteSyncer, level zapcore.Level) {
	encCfg := zap.NewProductionEncoderConfig()
	encCfg.TimeKey = ""
	core := zapcore.NewCore(zapcore.NewConsoleEncoder(encCfg), sink, level)
	Logger = zap.New(core).Sugar()
}

// Cleanup flushes any buffered log entries.
func Cleanup() {
	if Logger != nil {
		Logger.Sync()
	}
}

// Named returns a child logger with the given name.
func Named(name string) *zap.SugaredLogger {
	return Logger.Named(name)
}

func Info(args ...interface{})                        { Logger.Info(args...) }
func Infof(format string, args ...interface{})        { Logger.Infof(format, args...) }
func Infow(msg string, keysAndValues ...interface{})  { Logger.Infow(msg, keysAndValues...) }
func Warn(args ...interface{})                        { Logger.Warn(args...) }
func Warnf(format string, args ...interface{})        { Logger.Warnf(format, args...) }
func Warnw(msg string, keysAndValues ...interface{})  { Logger.Warnw(msg, keysAndValues...) }
func Error(args ...interface{})                       { Logger.Error(args...) }
func Errorf(format string, args ...interface{})       { Logger.Errorf(format, args...) }
func Errorw(msg string, keysAndValues ...interface{}) { Logger.Errorw(msg, keysAndValues...) }
func Debug(args ...interface{})                       { Logger.Debug(args...) }
func Debugf(format string, args ...interface{})       { Logger.Debugf(format, args...) }
func Debugw(msg string, keysAndValues ...interface{}) { Logger.Debugw(msg, keysAndValues...) }

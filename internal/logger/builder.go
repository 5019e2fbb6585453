package logger

import (
	"io"
	stdlog "log"

	"github.com/aleister1102/webwatch/internal/common/errorwrapper"
	"github.com/rs/zerolog"
)

// LoggerBuilder provides fluent interface for building loggers
type LoggerBuilder struct {
	config  LoggerConfig
	factory *WriterFactory
	err     error
}

// NewLoggerBuilder creates a new logger builder
func NewLoggerBuilder() *LoggerBuilder {
	return &LoggerBuilder{
		config:  DefaultLoggerConfig(),
		factory: NewWriterFactory(),
	}
}

// WithConfig sets the logger configuration from the file section
func (lb *LoggerBuilder) WithConfig(cfg FileLogConfig) *LoggerBuilder {
	converted, err := ConvertConfig(cfg)
	converted.DeviceID = lb.config.DeviceID
	converted.Console = lb.config.Console
	lb.config = converted
	lb.err = err
	return lb
}

// WithDeviceID tags every entry with the device id
func (lb *LoggerBuilder) WithDeviceID(deviceID string) *LoggerBuilder {
	lb.config.DeviceID = deviceID
	return lb
}

// WithConsole redirects console output
func (lb *LoggerBuilder) WithConsole(out io.Writer) *LoggerBuilder {
	lb.config.Console = out
	return lb
}

// Build creates the logger instance
func (lb *LoggerBuilder) Build() (*Logger, error) {
	if lb.err != nil {
		return nil, lb.err
	}
	if err := lb.validateConfig(); err != nil {
		return nil, err
	}

	writers, err := lb.createWriters()
	if err != nil {
		return nil, errorwrapper.WrapError(err, "failed to create log writers")
	}
	if len(writers) == 0 {
		return nil, errorwrapper.NewError("no output writers configured")
	}

	filter := newLevelFilter(zerolog.MultiLevelWriter(writers...), lb.config.Level)
	ctx := zerolog.New(filter).
		With().
		Timestamp()
	if lb.config.DeviceID != "" {
		ctx = ctx.Str("device_id", lb.config.DeviceID)
	}
	zerologInstance := ctx.Logger()

	lb.configureStandardLog(zerologInstance)

	return &Logger{
		zerolog: zerologInstance,
		config:  lb.config,
		filter:  filter,
	}, nil
}

// validateConfig validates the logger configuration
func (lb *LoggerBuilder) validateConfig() error {
	if lb.config.EnableFile && lb.config.FilePath == "" {
		return errorwrapper.NewValidationError("file_path", lb.config.FilePath, "file path required when file logging enabled")
	}
	if lb.config.MaxSizeMB <= 0 {
		return errorwrapper.NewValidationError("max_size_mb", lb.config.MaxSizeMB, "max size must be positive")
	}
	return nil
}

// createWriters creates the appropriate writers based on configuration
func (lb *LoggerBuilder) createWriters() ([]io.Writer, error) {
	var writers []io.Writer

	if lb.config.EnableConsole {
		writers = append(writers, lb.factory.CreateConsoleWriter(lb.config.Format, lb.config.Console))
	}

	if lb.config.EnableFile {
		fileWriter, err := lb.factory.CreateFileWriter(lb.config)
		if err != nil {
			return nil, err
		}
		writers = append(writers, fileWriter)
	}

	return writers, nil
}

// configureStandardLog routes the standard log package, used by paho and
// colly internals, through zerolog.
func (lb *LoggerBuilder) configureStandardLog(logger zerolog.Logger) {
	stdlog.SetOutput(logger)
	stdlog.SetFlags(0)
}

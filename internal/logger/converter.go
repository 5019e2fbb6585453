package logger

// ConvertConfig converts the file section to a LoggerConfig. An invalid
// level falls back to info and is reported alongside the result.
func ConvertConfig(cfg FileLogConfig) (LoggerConfig, error) {
	level, err := ParseLevel(cfg.LogLevel)

	out := DefaultLoggerConfig()
	out.Level = level
	out.Format = ParseFormat(cfg.LogFormat)
	out.EnableFile = cfg.LogFile != ""
	out.FilePath = cfg.LogFile
	if cfg.MaxLogSizeMB > 0 {
		out.MaxSizeMB = cfg.MaxLogSizeMB
	}
	if cfg.MaxLogBackups > 0 {
		out.MaxBackups = cfg.MaxLogBackups
	}
	return out, err
}

package logger

import (
	"time"

	gormlogger "gorm.io/gorm/logger"
)

// gormWriter adapts our Logger to gorm's logging writer
type gormWriter struct {
	logger *Logger
}

func (w *gormWriter) Printf(format string, args ...interface{}) {
	w.logger.Warnf(format, args...)
}

// GetGormLogger returns a gorm-compatible logger that reports slow queries
// and errors. Missing rows are expected lookups and stay silent.
func (l *Logger) GetGormLogger() gormlogger.Interface {
	return gormlogger.New(&gormWriter{logger: l}, gormlogger.Config{
		SlowThreshold:             200 * time.Millisecond,
		LogLevel:                  gormlogger.Warn,
		IgnoreRecordNotFoundError: true,
		Colorful:                  false,
	})
}

package gorm

import (
	"strings"
	"time"

	gormlogger "gorm.io/gorm/logger"

	"github.com/tigerroll/graphload/pkg/batch/support/util/logger"
)

// NewGormLogger creates a gorm logger at the given level.
// Unknown or empty levels are silent.
func NewGormLogger(level string) gormlogger.Interface {
	var gormLevel gormlogger.LogLevel
	switch strings.ToLower(level) {
	case "error":
		gormLevel = gormlogger.Error
	case "warn":
		gormLevel = gormlogger.Warn
	case "info":
		gormLevel = gormlogger.Info
	default:
		gormLevel = gormlogger.Silent
	}

	return gormlogger.New(
		&GormWriter{},
		gormlogger.Config{
			SlowThreshold:             200 * time.Millisecond,
			LogLevel:                  gormLevel,
			IgnoreRecordNotFoundError: true,
			Colorful:                  false,
		},
	)
}

// GormWriter forwards GORM output to the graphload logger.
type GormWriter struct{}

// Printf implements gormlogger.Writer. Statement traces go to DEBUG, the rest to INFO.
func (w *GormWriter) Printf(format string, args ...interface{}) {
	if strings.Contains(format, "[rows:") {
		logger.Debugf("[GORM] "+format, args...)
		return
	}
	logger.Infof("[GORM] "+format, args...)
}

package logger

import (
	"fmt"
	"os"
	"strings"
	"sync"

	"stock-dashboard/src/models"

	"github.com/zeromicro/go-zero/core/logx"
)

var setupOnce sync.Once

// -----------------------------------------------------------------------------

// Logger is a named, printf-style front for logx.
type Logger struct {
	name string
	log  logx.Logger
}

// -----------------------------------------------------------------------------

// NewLogger creates a new Logger instance. The first non-nil config
// configures the process-wide logx backend.
func NewLogger(cfg *models.MConfig, name string) *Logger {
	if cfg != nil {
		Setup(cfg.Name, cfg.LogLevel)
	}
	return &Logger{
		name: name,
		log:  logx.WithCallerSkip(1).WithFields(logx.Field("component", name)),
	}
}

// -----------------------------------------------------------------------------

// Setup configures logx once; later calls are ignored.
func Setup(serviceName, level string) {
	setupOnce.Do(func() {
		logx.MustSetup(logx.LogConf{
			ServiceName: serviceName,
			Mode:        "console",
			Encoding:    "plain",
			Level:       logxLevel(level),
		})
		logx.DisableStat()
	})
}

// -----------------------------------------------------------------------------

func logxLevel(level string) string {
	switch strings.ToUpper(level) {
	case "DEBUG":
		return "debug"
	case "ERROR", "CRITICAL":
		return "error"
	default:
		return "info"
	}
}

// -----------------------------------------------------------------------------

// Name returns the component name the logger was created with.
func (l *Logger) Name() string {
	return l.name
}

// -----------------------------------------------------------------------------

func (l *Logger) Debug(format string, args ...interface{}) {
	l.log.Debugf(format, args...)
}

// -----------------------------------------------------------------------------

// Warning is logged at info level; logx has no warn level.
func (l *Logger) Warning(format string, args ...interface{}) {
	l.log.Infof("WARNING: %s", fmt.Sprintf(format, args...))
}

// -----------------------------------------------------------------------------

func (l *Logger) Info(format string, args ...interface{}) {
	l.log.Infof(format, args...)
}

// -----------------------------------------------------------------------------

func (l *Logger) Error(format string, args ...interface{}) {
	l.log.Errorf(format, args...)
}

// -----------------------------------------------------------------------------

// Critical logs critical errors and exits the application
func (l *Logger) Critical(format string, args ...interface{}) {
	l.log.Errorf("CRITICAL: %s", fmt.Sprintf(format, args...))
	_ = logx.Close()
	os.Exit(1)
}

// Package logging configures the process-wide zerolog logger.
package logging

import (
	"io"
	"os"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

type LogMode string

const (
	LogModeDebug  LogMode = "debug"
	LogModePretty LogMode = "pretty"
	LogModeInfo   LogMode = "info"
	LogModeProd   LogMode = "prod"
	LogModeTest   LogMode = "test"
)

var (
	log zerolog.Logger
	mu  sync.RWMutex
)

func init() {
	InitWithMode(LogModePretty)
}

func InitWithMode(mode LogMode) {
	mu.Lock()
	defer mu.Unlock()

	var output io.Writer = os.Stdout
	level := zerolog.InfoLevel

	switch mode {
	case LogModeDebug:
		level = zerolog.DebugLevel
		output = consoleWriter()
	case LogModePretty:
		output = consoleWriter()
	case LogModeInfo:
	case LogModeProd:
		zerolog.TimeFieldFormat = time.RFC3339Nano
	case LogModeTest:
		level = zerolog.ErrorLevel
	}

	zerolog.SetGlobalLevel(level)
	log = zerolog.New(output).With().Timestamp().Logger()
	zerolog.DefaultContextLogger = &log
}

func consoleWriter() io.Writer {
	return zerolog.ConsoleWriter{
		Out:        os.Stdout,
		TimeFormat: time.RFC3339,
	}
}

func Get() zerolog.Logger {
	mu.RLock()
	defer mu.RUnlock()
	return log
}

func WithComponent(component string) zerolog.Logger {
	return Get().With().Str("component", component).Logger()
}

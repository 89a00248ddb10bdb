// Package logger configures the process-wide zerolog logger and exposes
// leveled event constructors so call sites never import zerolog directly.
package logger

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Init sets up console output for the whole process. Debug mode lowers
// the level and annotates every event with its call site.
func Init(serviceName string, debug bool) {
	zerolog.TimeFieldFormat = time.RFC3339Nano
	zerolog.DurationFieldUnit = time.Millisecond

	output := zerolog.ConsoleWriter{
		Out:        os.Stdout,
		TimeFormat: time.RFC3339,
		FormatLevel: func(i interface{}) string {
			return strings.ToUpper(fmt.Sprintf("%-5s", i))
		},
		FormatFieldName: func(i interface{}) string {
			return fmt.Sprintf("%s=", i)
		},
	}

	level := zerolog.InfoLevel
	if debug {
		level = zerolog.DebugLevel
	}

	lctx := zerolog.New(output).
		Level(level).
		With().
		Timestamp().
		Str("service", serviceName)
	if debug {
		lctx = lctx.Caller()
	}
	log.Logger = lctx.Logger()

	log.Info().Str("level", level.String()).Msg("Logger initialized")
}

func Debug() *zerolog.Event { return log.Debug() }

func Info() *zerolog.Event { return log.Info() }

func Warn() *zerolog.Event { return log.Warn() }

func Error() *zerolog.Event { return log.Error() }

// Fatal logs the event and exits the process.
func Fatal() *zerolog.Event { return log.Fatal() }

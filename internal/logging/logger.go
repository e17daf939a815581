// Package logging sets up the console logger shared by the commands.
package logging

import (
	"io"
	"os"
	"time"

	"github.com/mattn/go-isatty"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Init returns a human readable logger writing to stderr tagged with app
// and installs it as the global zerolog logger. Colors are disabled when
// stderr is not a terminal.
func Init(app string) zerolog.Logger {
	return initWriter(os.Stderr, app, !isatty.IsTerminal(os.Stderr.Fd()))
}

func initWriter(w io.Writer, app string, noColor bool) zerolog.Logger {
	output := zerolog.ConsoleWriter{
		Out:        w,
		NoColor:    noColor,
		TimeFormat: time.RFC3339,
	}
	logger := zerolog.New(output).With().Timestamp().Str("app", app).Logger()
	log.Logger = logger
	return logger
}

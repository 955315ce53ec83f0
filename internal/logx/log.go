package logx

import (
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog"
)

// Log: общий логгер проекта.
var Log = zerolog.New(os.Stderr).With().Timestamp().Logger()

// Setup настраивает общий логгер. Неизвестный уровень заменяется на info.
func Setup(level, format string) {
	lvl, err := zerolog.ParseLevel(strings.ToLower(level))
	if err != nil || lvl == zerolog.NoLevel {
		lvl = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(lvl)

	var out io.Writer = os.Stderr
	if strings.EqualFold(format, "console") {
		out = zerolog.ConsoleWriter{Out: os.Stderr}
	}
	Log = zerolog.New(out).With().Timestamp().Logger()
}

package logger

import (
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// New cria uma instância configurada de zerolog baseada no ambiente informado.
// Em desenvolvimento o nível cai para debug e a saída ganha formatação de console.
func New(env string) zerolog.Logger {
	zerolog.TimeFieldFormat = time.RFC3339Nano
	zerolog.DurationFieldUnit = time.Millisecond

	level := zerolog.InfoLevel
	dev := strings.EqualFold(env, "development")
	if dev {
		level = zerolog.DebugLevel
	}

	var out = zerolog.New(os.Stdout)
	if dev {
		out = zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.TimeOnly})
	}

	return out.
		With().
		Timestamp().
		Logger().
		Level(level)
}

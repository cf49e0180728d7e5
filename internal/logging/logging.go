// Package logging wraps zerolog with the component-tagging convention
// the teacher expresses through bare string prefixes ("[process]",
// "[chunk %d]", "[match]") in server/handlers.go and
// server/cmdHandlers.go, made structured.
package logging

import (
	"os"
	"sync"

	"github.com/rs/zerolog"
)

var (
	once sync.Once
	base zerolog.Logger
)

func root() zerolog.Logger {
	once.Do(func() {
		zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
		base = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: "15:04:05"}).
			With().Timestamp().Logger()
	})
	return base
}

// For returns a logger tagged with the given component name, the
// structured equivalent of the teacher's "[component] message" prefix.
func For(component string) zerolog.Logger {
	return root().With().Str("component", component).Logger()
}

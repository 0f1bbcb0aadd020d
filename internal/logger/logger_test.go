package logger

import (
	"testing"

	"github.com/matryer/is"
	"github.com/rs/zerolog"
)

func TestParseLevel(t *testing.T) {
	is := is.New(t)

	is.Equal(parseLevel("debug"), zerolog.DebugLevel)
	is.Equal(parseLevel("warn"), zerolog.WarnLevel)
	is.Equal(parseLevel(""), zerolog.InfoLevel)
	is.Equal(parseLevel("loud"), zerolog.InfoLevel)
}

package logger

import (
	"testing"

	"github.com/stretchr/testify/require"
)

type sink struct{ lines []string }

func (s *sink) WriteLineString(v string) { s.lines = append(s.lines, v) }
func (s *sink) WriteLineBytes(b []byte)  { s.lines = append(s.lines, string(b)) }

func TestPrefixAndLevel(t *testing.T) {
	s := &sink{}
	log := New(s, "core0").With("display")

	log.Infof("Display ready")
	log.Debugf("dropped")
	log.Errorf("apply %s: %v", "COMMAND1", "i2c nack")

	require.Equal(t, []string{
		"INFO core0/display: Display ready",
		"ERROR core0/display: apply COMMAND1: i2c nack",
	}, s.lines)
}

func TestWithLevelDebug(t *testing.T) {
	s := &sink{}
	base := New(s, "")
	dbg := base.WithLevel(LevelDebug)

	base.Debugf("hidden")
	dbg.Debugf("shown %d", 1)

	require.Equal(t, []string{"DEBUG shown 1"}, s.lines)
}

func TestNilLoggerDiscards(t *testing.T) {
	var log *Logger
	require.NotPanics(t, func() {
		log.With("x").Infof("nothing")
		log.WithLevel(LevelDebug).Warnf("nothing")
	})
	require.False(t, log.Enabled(LevelError))
	require.False(t, New(nil, "p").Enabled(LevelError))
}

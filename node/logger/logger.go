// Package logger formats leveled, prefixed lines onto a hal.Logger sink.
package logger

import (
	"fmt"

	"receiver/hal"
)

// Level orders log severities.
type Level uint8

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
)

func (l Level) String() string {
	switch l {
	case LevelDebug:
		return "DEBUG"
	case LevelInfo:
		return "INFO"
	case LevelWarn:
		return "WARN"
	case LevelError:
		return "ERROR"
	default:
		return "?"
	}
}

// Logger is a value type; With and WithLevel return modified copies.
// The zero Logger and a nil *Logger discard everything.
type Logger struct {
	sink   hal.Logger
	prefix string
	min    Level
}

// New returns a logger writing to sink at LevelInfo.
func New(sink hal.Logger, prefix string) *Logger {
	return &Logger{sink: sink, prefix: prefix, min: LevelInfo}
}

// With returns a child logger whose prefix is extended by "/name".
func (l *Logger) With(name string) *Logger {
	if l == nil {
		return nil
	}
	c := *l
	switch {
	case c.prefix == "":
		c.prefix = name
	case name != "":
		c.prefix = c.prefix + "/" + name
	}
	return &c
}

// WithLevel returns a copy that drops lines below min.
func (l *Logger) WithLevel(min Level) *Logger {
	if l == nil {
		return nil
	}
	c := *l
	c.min = min
	return &c
}

func (l *Logger) Enabled(lv Level) bool {
	return l != nil && l.sink != nil && lv >= l.min
}

func (l *Logger) Debugf(format string, args ...any) { l.logf(LevelDebug, format, args...) }
func (l *Logger) Infof(format string, args ...any)  { l.logf(LevelInfo, format, args...) }
func (l *Logger) Warnf(format string, args ...any)  { l.logf(LevelWarn, format, args...) }
func (l *Logger) Errorf(format string, args ...any) { l.logf(LevelError, format, args...) }

func (l *Logger) logf(lv Level, format string, args ...any) {
	if !l.Enabled(lv) {
		return
	}
	msg := fmt.Sprintf(format, args...)
	if l.prefix == "" {
		l.sink.WriteLineString(lv.String() + " " + msg)
		return
	}
	l.sink.WriteLineString(lv.String() + " " + l.prefix + ": " + msg)
}

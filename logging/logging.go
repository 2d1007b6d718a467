// Package logging provides the progress/diagnostic callback interface used
// by the conversion engines, so embedding them as a library carries no
// stdout coupling.
package logging

import (
	"fmt"
	"io"
	"log"
	"strings"
)

type Logger interface {
	Debug(msg string, fields ...Field)
	Info(msg string, fields ...Field)
	Warn(msg string, fields ...Field)
	Error(msg string, fields ...Field)
	With(fields ...Field) Logger
}

type Field struct {
	Key   string
	Value interface{}
}

func String(key, value string) Field          { return Field{key, value} }
func Int(key string, value int) Field         { return Field{key, value} }
func Float64(key string, value float64) Field { return Field{key, value} }
func Bool(key string, value bool) Field       { return Field{key, value} }
func Err(err error) Field                     { return Field{"error", err} }

// Nop returns a logger that discards everything. Engines fall back to it
// when no logger is configured.
func Nop() Logger { return nopLogger{} }

type nopLogger struct{}

func (nopLogger) Debug(string, ...Field) {}
func (nopLogger) Info(string, ...Field)  {}
func (nopLogger) Warn(string, ...Field)  {}
func (nopLogger) Error(string, ...Field) {}
func (nopLogger) With(...Field) Logger   { return nopLogger{} }

// New returns a Logger that writes key=value lines to w via the standard
// log package.
func New(w io.Writer) Logger {
	return &stdLogger{l: log.New(w, "", log.LstdFlags)}
}

type stdLogger struct {
	l      *log.Logger
	fields []Field
}

func (s *stdLogger) log(level, msg string, fields []Field) {
	var b strings.Builder
	b.WriteString(level)
	b.WriteByte(' ')
	b.WriteString(msg)
	for _, f := range append(s.fields, fields...) {
		fmt.Fprintf(&b, " %s=%v", f.Key, f.Value)
	}
	s.l.Print(b.String())
}

func (s *stdLogger) Debug(msg string, fields ...Field) { s.log("DEBUG", msg, fields) }
func (s *stdLogger) Info(msg string, fields ...Field)  { s.log("INFO", msg, fields) }
func (s *stdLogger) Warn(msg string, fields ...Field)  { s.log("WARN", msg, fields) }
func (s *stdLogger) Error(msg string, fields ...Field) { s.log("ERROR", msg, fields) }

func (s *stdLogger) With(fields ...Field) Logger {
	combined := make([]Field, 0, len(s.fields)+len(fields))
	combined = append(combined, s.fields...)
	combined = append(combined, fields...)
	return &stdLogger{l: s.l, fields: combined}
}

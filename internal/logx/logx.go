// Package logx is a thin, dependency-free logger: every line is tagged
// with a bracketed component name ("[main]", "[game]") rather than
// routed through a structured-logging library.
package logx

import (
	"log"
	"os"
)

// Logger prefixes every line with a bracketed component tag.
type Logger struct {
	tag string
	std *log.Logger
}

// New returns a Logger tagged with name, e.g. New("game") logs as "[game] ...".
func New(name string) *Logger {
	return &Logger{
		tag: "[" + name + "] ",
		std: log.New(os.Stderr, "", log.LstdFlags),
	}
}

func (l *Logger) Printf(format string, args ...any) {
	l.std.Printf(l.tag+format, args...)
}

func (l *Logger) Println(args ...any) {
	all := append([]any{l.tag}, args...)
	l.std.Println(all...)
}

// Warn logs a recoverable condition that is handled by warning and
// dropping (unknown switch addresses, dispatch panics).
func (l *Logger) Warn(format string, args ...any) {
	l.Printf("WARN "+format, args...)
}

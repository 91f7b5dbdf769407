// Package logging hands out named logrus loggers whose level is set in one
// place by the command line.
package logging

import (
	"fmt"
	"io"
	"os"
	"path"
	"runtime"
	"sort"
	"strings"
	"sync"

	"github.com/sirupsen/logrus"
)

// Levels lists the accepted level names.
var Levels = []string{"panic", "fatal", "error", "warn", "info", "debug", "trace"}

var (
	mu      sync.Mutex
	loggers = map[string]*logrus.Logger{}
	level   = logrus.WarnLevel
	out     io.Writer = os.Stderr
)

// NamedLogger returns the logger for a package, creating it on first use.
func NamedLogger(name string) *logrus.Logger {
	mu.Lock()
	defer mu.Unlock()
	if l, ok := loggers[name]; ok {
		return l
	}
	l := &logrus.Logger{
		Out: out,
		Formatter: &TextFormatter{
			Name: name,
			TextFormatter: logrus.TextFormatter{
				FullTimestamp:   true,
				TimestampFormat: "15:04:05.000",
			},
		},
		Hooks: make(logrus.LevelHooks),
		Level: level,
	}
	loggers[name] = l
	return l
}

// SetLevel parses name and applies it to every named logger.
func SetLevel(name string) error {
	lv, err := logrus.ParseLevel(strings.ToLower(name))
	if err != nil {
		return fmt.Errorf("logging: %w (want one of %s)", err, strings.Join(Levels, ", "))
	}
	mu.Lock()
	defer mu.Unlock()
	level = lv
	for _, l := range loggers {
		l.SetLevel(lv)
	}
	return nil
}

// SetOutput redirects every named logger.
func SetOutput(w io.Writer) {
	mu.Lock()
	defer mu.Unlock()
	out = w
	for _, l := range loggers {
		l.SetOutput(w)
	}
}

// Names returns the registered logger names in order.
func Names() []string {
	mu.Lock()
	defer mu.Unlock()
	names := make([]string, 0, len(loggers))
	for n := range loggers {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// TextFormatter prefixes each message with the logger name and the
// calling file and line.
type TextFormatter struct {
	logrus.TextFormatter
	Name string
}

// Format renders a single log entry.
func (f *TextFormatter) Format(entry *logrus.Entry) ([]byte, error) {
	// Skip logrus' own frames to reach the caller.
	if _, file, no, ok := runtime.Caller(6); ok {
		entry.Message = fmt.Sprintf("[%s %s:%d] %s", f.Name, path.Base(file), no, entry.Message)
	} else {
		entry.Message = fmt.Sprintf("[%s] %s", f.Name, entry.Message)
	}
	return f.TextFormatter.Format(entry)
}

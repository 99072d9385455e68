package utils

import (
	"fmt"
	"os"
	"path"
	"runtime"

	"github.com/sirupsen/logrus"
)

var rootLogger = &logrus.Logger{
	Out: os.Stderr,
	Formatter: &CallerTextFormatter{
		TextFormatter: logrus.TextFormatter{
			DisableTimestamp: true,
			// caller is folded into the message by Format
			CallerPrettyfier: func(*runtime.Frame) (string, string) { return "", "" },
		},
	},
	Hooks:        make(logrus.LevelHooks),
	Level:        logrus.InfoLevel,
	ReportCaller: true,
}

// NamedLogger creates a package logger sharing the process wide output and level
func NamedLogger(name string) *logrus.Entry {
	return rootLogger.WithField("pkg", name)
}

// SetLogLevel changes the level of every named logger
func SetLogLevel(level logrus.Level) {
	rootLogger.SetLevel(level)
}

// CallerTextFormatter prefixes messages with the calling file and line
type CallerTextFormatter struct {
	logrus.TextFormatter
}

// Format renders a single log entry
func (f *CallerTextFormatter) Format(entry *logrus.Entry) ([]byte, error) {
	if entry.HasCaller() {
		entry.Message = fmt.Sprintf("[%-15s:%03d]%s",
			path.Base(entry.Caller.File), entry.Caller.Line, entry.Message)
	}
	return f.TextFormatter.Format(entry)
}

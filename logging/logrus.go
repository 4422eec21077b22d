// Package logging supplies btsdp.Logger implementations: a structured
// one backed by sirupsen/logrus and a human-facing one backed by
// mgutz/logxi, following the pair the teacher's go.mod carries but
// never got around to wiring up itself.
package logging

import (
	"github.com/sirupsen/logrus"

	"github.com/corvid-labs/btsdp"
)

// LogrusLogger adapts a *logrus.Entry to btsdp.Logger. ChildLogger
// returns a new LogrusLogger built from entry.WithFields, so fields
// accumulate down a chain of children without touching the parent.
type LogrusLogger struct {
	entry *logrus.Entry
}

// NewLogrusLogger wraps l, using l.WithFields(nil) as the root entry.
func NewLogrusLogger(l *logrus.Logger) *LogrusLogger {
	return &LogrusLogger{entry: logrus.NewEntry(l)}
}

func (l *LogrusLogger) Debugf(format string, args ...interface{}) { l.entry.Debugf(format, args...) }
func (l *LogrusLogger) Infof(format string, args ...interface{})  { l.entry.Infof(format, args...) }
func (l *LogrusLogger) Warnf(format string, args ...interface{})  { l.entry.Warnf(format, args...) }
func (l *LogrusLogger) Errorf(format string, args ...interface{}) { l.entry.Errorf(format, args...) }

func (l *LogrusLogger) Debug(args ...interface{}) { l.entry.Debug(args...) }
func (l *LogrusLogger) Info(args ...interface{})  { l.entry.Info(args...) }
func (l *LogrusLogger) Warn(args ...interface{})  { l.entry.Warn(args...) }
func (l *LogrusLogger) Error(args ...interface{}) { l.entry.Error(args...) }

func (l *LogrusLogger) ChildLogger(fields map[string]interface{}) btsdp.Logger {
	return &LogrusLogger{entry: l.entry.WithFields(logrus.Fields(fields))}
}

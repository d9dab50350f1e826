// Package logrus adapts a *logrus.Entry to fncache.Logger.
package logrus

import (
	"github.com/sirupsen/logrus"

	"github.com/unkn0wn-root/fncache"
)

var _ fncache.Logger = Logger{}

type Logger struct{ E *logrus.Entry }

// New tags every entry with component=fncache.
func New(l *logrus.Logger) Logger {
	return Logger{E: l.WithField("component", "fncache")}
}

func (l Logger) Debug(msg string, f fncache.Fields) { l.with(f).Debug(msg) }
func (l Logger) Info(msg string, f fncache.Fields)  { l.with(f).Info(msg) }
func (l Logger) Warn(msg string, f fncache.Fields)  { l.with(f).Warn(msg) }
func (l Logger) Error(msg string, f fncache.Fields) { l.with(f).Error(msg) }

func (l Logger) with(f fncache.Fields) *logrus.Entry {
	if len(f) == 0 {
		return l.E
	}
	// logrus renders errors under the "error" key.
	if err, ok := f["err"].(error); ok {
		e := l.E.WithError(err)
		rest := make(logrus.Fields, len(f)-1)
		for k, v := range f {
			if k != "err" {
				rest[k] = v
			}
		}
		return e.WithFields(rest)
	}
	return l.E.WithFields(logrus.Fields(f))
}

// Package apex adapts an apex/log interface to fncache.Logger.
package apex

import (
	"github.com/apex/log"

	"github.com/unkn0wn-root/fncache"
)

var _ fncache.Logger = Logger{}

type Logger struct{ L log.Interface }

// New tags every entry with component=fncache.
func New(l log.Interface) Logger {
	return Logger{L: l.WithField("component", "fncache")}
}

func (a Logger) Debug(msg string, f fncache.Fields) { a.with(f).Debug(msg) }
func (a Logger) Info(msg string, f fncache.Fields)  { a.with(f).Info(msg) }
func (a Logger) Warn(msg string, f fncache.Fields)  { a.with(f).Warn(msg) }
func (a Logger) Error(msg string, f fncache.Fields) { a.with(f).Error(msg) }

func (a Logger) with(f fncache.Fields) log.Interface {
	if len(f) == 0 {
		return a.L
	}
	return a.L.WithFields(log.Fields(f))
}

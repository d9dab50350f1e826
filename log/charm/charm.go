// Package charm adapts a charmbracelet/log logger to fncache.Logger.
package charm

import (
	"sort"

	"github.com/charmbracelet/log"

	"github.com/unkn0wn-root/fncache"
)

var _ fncache.Logger = Logger{}

type Logger struct{ L *log.Logger }

// New prefixes every line with "fncache".
func New(l *log.Logger) Logger { return Logger{L: l.WithPrefix("fncache")} }

func (c Logger) Debug(msg string, f fncache.Fields) { c.L.Debug(msg, keyvals(f)...) }
func (c Logger) Info(msg string, f fncache.Fields)  { c.L.Info(msg, keyvals(f)...) }
func (c Logger) Warn(msg string, f fncache.Fields)  { c.L.Warn(msg, keyvals(f)...) }
func (c Logger) Error(msg string, f fncache.Fields) { c.L.Error(msg, keyvals(f)...) }

// keyvals flattens f in key order.
func keyvals(f fncache.Fields) []any {
	if len(f) == 0 {
		return nil
	}
	keys := make([]string, 0, len(f))
	for k := range f {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	out := make([]any, 0, 2*len(f))
	for _, k := range keys {
		out = append(out, k, f[k])
	}
	return out
}

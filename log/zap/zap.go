// Package zap adapts a *zap.Logger to fncache.Logger.
package zap

import (
	"sort"

	"go.uber.org/zap"

	"github.com/unkn0wn-root/fncache"
)

var _ fncache.Logger = Logger{}

type Logger struct{ L *zap.Logger }

// New names the logger "fncache".
func New(l *zap.Logger) Logger { return Logger{L: l.Named("fncache")} }

func (z Logger) Debug(msg string, f fncache.Fields) { z.L.Debug(msg, fields(f)...) }
func (z Logger) Info(msg string, f fncache.Fields)  { z.L.Info(msg, fields(f)...) }
func (z Logger) Warn(msg string, f fncache.Fields)  { z.L.Warn(msg, fields(f)...) }
func (z Logger) Error(msg string, f fncache.Fields) { z.L.Error(msg, fields(f)...) }

// fields sorts keys for stable output; error values use zap.NamedError.
func fields(f fncache.Fields) []zap.Field {
	if len(f) == 0 {
		return nil
	}
	keys := make([]string, 0, len(f))
	for k := range f {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	out := make([]zap.Field, 0, len(f))
	for _, k := range keys {
		if err, ok := f[k].(error); ok {
			out = append(out, zap.NamedError(k, err))
			continue
		}
		out = append(out, zap.Any(k, f[k]))
	}
	return out
}

// Package sloghooks logs cache events to a log/slog logger.
package sloghooks

import (
	"crypto/sha256"
	"encoding/hex"
	"log/slog"
	"sync/atomic"

	"github.com/unkn0wn-root/fncache"
)

type Options struct {
	// Sampling to avoid floods; 0/1 = log all.
	HitEvery  uint64
	MissEvery uint64
	// LogSets also logs accepted writes; rejected writes are always logged.
	LogSets bool
	// Optional key redactor. Defaults to SHA-256 prefix.
	Redact func(string) string
}

type Hooks struct {
	l    *slog.Logger
	opts Options

	hitCtr  atomic.Uint64
	missCtr atomic.Uint64
}

var _ fncache.Hooks = (*Hooks)(nil)

func New(l *slog.Logger, opts Options) *Hooks {
	return &Hooks{l: l, opts: opts}
}

func (h *Hooks) redact(k string) string {
	if h.opts.Redact != nil {
		return h.opts.Redact(k)
	}
	sum := sha256.Sum256([]byte(k))
	return hex.EncodeToString(sum[:8])
}

func sample(n uint64, ctr *atomic.Uint64) bool {
	if n == 0 || n == 1 {
		return true
	}
	return ctr.Add(1)%n == 0
}

func (h *Hooks) Hit(e fncache.Event) {
	if h.l == nil || !sample(h.opts.HitEvery, &h.hitCtr) {
		return
	}
	h.l.Debug("fncache.hit",
		"cache", e.Cache,
		"key", h.redact(e.Key),
		"elapsed", e.Elapsed)
}

func (h *Hooks) Miss(e fncache.Event) {
	if h.l == nil || !sample(h.opts.MissEvery, &h.missCtr) {
		return
	}
	h.l.Debug("fncache.miss",
		"cache", e.Cache,
		"key", h.redact(e.Key),
		"elapsed", e.Elapsed)
}

func (h *Hooks) Set(e fncache.Event, ok bool) {
	if h.l == nil {
		return
	}
	if !ok {
		h.l.Warn("fncache.set_rejected",
			"cache", e.Cache,
			"key", h.redact(e.Key))
		return
	}
	if h.opts.LogSets {
		h.l.Debug("fncache.set",
			"cache", e.Cache,
			"key", h.redact(e.Key),
			"elapsed", e.Elapsed)
	}
}

func (h *Hooks) Delete(e fncache.Event, ok bool) {
	if h.l == nil {
		return
	}
	h.l.Debug("fncache.delete",
		"cache", e.Cache,
		"key", h.redact(e.Key),
		"ok", ok)
}

func (h *Hooks) Error(e fncache.Event, op string, err error) {
	if h.l == nil {
		return
	}
	h.l.Warn("fncache.store_error",
		"cache", e.Cache,
		"op", op,
		"key", h.redact(e.Key),
		"err", err)
}

package fncache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/unkn0wn-root/fncache/codec"
	"github.com/unkn0wn-root/fncache/keyspace"
	"github.com/unkn0wn-root/fncache/locks"
	pr "github.com/unkn0wn-root/fncache/provider"
	redisprov "github.com/unkn0wn-root/fncache/provider/redis"
	"github.com/unkn0wn-root/fncache/store"
	"github.com/unkn0wn-root/fncache/store/memory"
	"github.com/unkn0wn-root/fncache/store/remote"
)

// Scope selects the version registers a key depends on.
type Scope = keyspace.Scope

// Global is the default scope: only InvalidateAll reaches it.
func Global() Scope { return keyspace.Global() }

// Subject scopes a key to one subject id (usually a user id).
func Subject(id string) Scope { return keyspace.Subject(id) }

// Options configure a Manager. Only Config is required.
type Options[V any] struct {
	Config Config

	// Name identifies the manager in logs, hooks and the Registry.
	// Defaults to Config.Prefix.
	Name string

	// Codec overrides Config.Codec for remote storage.
	Codec codec.Codec[V]
	// Provider overrides the Redis connection described by Config.Redis.
	Provider pr.Provider
	// Store bypasses storage selection entirely.
	Store store.Store[V]

	Logger   Logger
	Hooks    Hooks
	Registry *Registry // optional; the manager registers itself under Name

	// Now overrides the clock of the memory TTL store (tests).
	Now func() time.Time

	WriteWorkers int // SetAsync workers; 0 => 4
	WriteQueue   int // SetAsync queue length; 0 => 256
	LockShards   int // lock table shards; 0 => 32
}

// New validates opts.Config and builds the manager with its store.
func New[V any](opts Options[V]) (*Manager[V], error) {
	cfg := opts.Config
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	cfg.OpTimeout = coalesce(cfg.OpTimeout, defaultOpTimeout)

	m := &Manager[V]{
		name:     coalesce(opts.Name, cfg.Prefix),
		cfg:      cfg,
		remote:   cfg.StorageType == StorageRemote,
		log:      opts.Logger,
		hooks:    opts.Hooks,
		registry: opts.Registry,
	}
	if m.name == "" {
		m.name = defaultPrefix
	}
	if m.log == nil {
		m.log = NopLogger{}
	}
	if m.hooks == nil {
		m.hooks = NopHooks{}
	}

	m.versions = keyspace.NewVersions()
	m.keys = keyspace.NewComposer(cfg.Prefix, m.versions, cfg.SubjectFollowsGlobal)
	m.locks = locks.NewTable(opts.LockShards)

	s, owned := opts.Store, false
	if s == nil {
		var err error
		if s, err = m.buildStore(opts); err != nil {
			return nil, err
		}
		owned = true
	}
	m.store = s

	if m.registry != nil {
		if err := m.registry.Register(m); err != nil {
			if owned {
				_ = s.Close(context.Background())
			}
			return nil, err
		}
	}

	m.writer = newWriter(coalesce(opts.WriteWorkers, defaultWriteWorkers), coalesce(opts.WriteQueue, defaultWriteQueue), m.log)

	m.log.Debug("cache ready", Fields{
		"cache":   m.name,
		"type":    cfg.CacheType.String(),
		"storage": cfg.StorageType.String(),
		"ttl":     cfg.TTL.String(),
	})
	return m, nil
}

func (m *Manager[V]) buildStore(opts Options[V]) (store.Store[V], error) {
	cfg := m.cfg
	if cfg.StorageType == StorageMemory {
		switch cfg.CacheType {
		case CacheLRU:
			return memory.NewLRU[V](cfg.MaxSize, memory.LRUOptions[V]{
				OnEvict: func(key string, _ V) {
					m.log.Debug("lru evict", Fields{"cache": m.name, "key": key})
				},
			})
		default:
			return memory.NewTTL[V](memory.TTLOptions{
				SweepInterval: cfg.SweepInterval,
				Now:           opts.Now,
				OnError:       m.storeError,
			}), nil
		}
	}

	c := opts.Codec
	if c == nil {
		var err error
		if c, err = codecFor[V](cfg.Codec); err != nil {
			return nil, &ConfigError{Field: "codec", Reason: "cannot build codec", Err: err}
		}
	}
	p := opts.Provider
	if p == nil {
		rp, err := redisprov.Dial(redisprov.DialOptions{
			Addr:         cfg.Redis.Addr,
			Username:     cfg.Redis.Username,
			Password:     cfg.Redis.Password,
			DB:           cfg.Redis.DB,
			DialTimeout:  cfg.Redis.DialTimeout,
			ReadTimeout:  cfg.Redis.ReadTimeout,
			WriteTimeout: cfg.Redis.WriteTimeout,
		})
		if err != nil {
			return nil, &ConfigError{Field: "redis.addr", Reason: "cannot dial", Err: err}
		}
		p = rp
	}
	return remote.New[V](remote.Options[V]{
		Provider: p,
		Codec:    c,
		Timeout:  cfg.OpTimeout,
		OnError:  m.storeError,
	})
}

func codecFor[V any](k CodecKind) (codec.Codec[V], error) {
	switch k {
	case CodecJSON:
		return codec.JSON[V]{}, nil
	case CodecMsgpack:
		return codec.Msgpack[V]{}, nil
	case CodecCBOR:
		return codec.NewCBOR[V](false)
	case CodecGob:
		return codec.Gob[V]{}, nil
	}
	return nil, fmt.Errorf("fncache: unknown codec %s", k)
}

// storeError is the store.ErrorFunc of every store the manager builds.
func (m *Manager[V]) storeError(op store.Op, key string, err error) {
	f := Fields{"cache": m.name, "op": string(op), "key": key, "err": err}
	if errors.Is(err, store.ErrInvalidTTL) {
		m.log.Warn("cache write rejected", f)
	} else {
		m.log.Warn("cache store fault", f)
	}
	m.hooks.Error(Event{Cache: m.name, Key: key}, string(op), err)
}

package fncache

import (
	"fmt"
	"strings"
	"time"
)

// CacheType selects the in-process eviction policy.
type CacheType uint8

const (
	CacheTTL CacheType = iota // entries expire after a fixed ttl
	CacheLRU                  // bounded by MaxSize, least recently used goes first
)

func (t CacheType) String() string {
	switch t {
	case CacheTTL:
		return "ttl"
	case CacheLRU:
		return "lru"
	default:
		return fmt.Sprintf("CacheType(%d)", uint8(t))
	}
}

func (t CacheType) MarshalText() ([]byte, error) { return []byte(t.String()), nil }

func (t *CacheType) UnmarshalText(b []byte) error {
	switch strings.ToLower(strings.TrimSpace(string(b))) {
	case "ttl", "":
		*t = CacheTTL
	case "lru":
		*t = CacheLRU
	default:
		return &ConfigError{Field: "cache_type", Reason: fmt.Sprintf("unknown value %q", b)}
	}
	return nil
}

// StorageType selects where entries live.
type StorageType uint8

const (
	StorageMemory StorageType = iota
	StorageRemote
)

func (t StorageType) String() string {
	switch t {
	case StorageMemory:
		return "memory"
	case StorageRemote:
		return "remote"
	default:
		return fmt.Sprintf("StorageType(%d)", uint8(t))
	}
}

func (t StorageType) MarshalText() ([]byte, error) { return []byte(t.String()), nil }

func (t *StorageType) UnmarshalText(b []byte) error {
	switch strings.ToLower(strings.TrimSpace(string(b))) {
	case "memory", "":
		*t = StorageMemory
	case "remote", "redis":
		*t = StorageRemote
	default:
		return &ConfigError{Field: "storage_type", Reason: fmt.Sprintf("unknown value %q", b)}
	}
	return nil
}

// CodecKind names the value codec used by remote storage when
// Options.Codec is nil.
type CodecKind uint8

const (
	CodecJSON CodecKind = iota
	CodecMsgpack
	CodecCBOR
	CodecGob
)

func (k CodecKind) String() string {
	switch k {
	case CodecJSON:
		return "json"
	case CodecMsgpack:
		return "msgpack"
	case CodecCBOR:
		return "cbor"
	case CodecGob:
		return "gob"
	default:
		return fmt.Sprintf("CodecKind(%d)", uint8(k))
	}
}

func (k CodecKind) MarshalText() ([]byte, error) { return []byte(k.String()), nil }

func (k *CodecKind) UnmarshalText(b []byte) error {
	switch strings.ToLower(strings.TrimSpace(string(b))) {
	case "json", "":
		*k = CodecJSON
	case "msgpack", "messagepack":
		*k = CodecMsgpack
	case "cbor":
		*k = CodecCBOR
	case "gob":
		*k = CodecGob
	default:
		return &ConfigError{Field: "codec", Reason: fmt.Sprintf("unknown value %q", b)}
	}
	return nil
}

// RedisConfig is used when StorageType is StorageRemote and Options.Provider
// is nil.
type RedisConfig struct {
	Addr         string        `yaml:"addr" mapstructure:"addr" env:"ADDR" envDefault:"localhost:6379"`
	Username     string        `yaml:"username" mapstructure:"username" env:"USERNAME"`
	Password     string        `yaml:"password" mapstructure:"password" env:"PASSWORD"`
	DB           int           `yaml:"db" mapstructure:"db" env:"DB"`
	DialTimeout  time.Duration `yaml:"dial_timeout" mapstructure:"dial_timeout" env:"DIAL_TIMEOUT" envDefault:"1s"`
	ReadTimeout  time.Duration `yaml:"read_timeout" mapstructure:"read_timeout" env:"READ_TIMEOUT" envDefault:"1s"`
	WriteTimeout time.Duration `yaml:"write_timeout" mapstructure:"write_timeout" env:"WRITE_TIMEOUT" envDefault:"1s"`
}

// Config is the per-manager configuration. Start from DefaultConfig.
type Config struct {
	CacheType   CacheType     `yaml:"cache_type" mapstructure:"cache_type" env:"CACHE_TYPE" envDefault:"ttl"`
	StorageType StorageType   `yaml:"storage_type" mapstructure:"storage_type" env:"STORAGE_TYPE" envDefault:"memory"`
	TTL         time.Duration `yaml:"ttl" mapstructure:"ttl" env:"TTL" envDefault:"10m"`
	MaxSize     int           `yaml:"max_size" mapstructure:"max_size" env:"MAX_SIZE" envDefault:"1000"`
	Prefix      string        `yaml:"prefix" mapstructure:"prefix" env:"PREFIX" envDefault:"cache:"`
	Codec       CodecKind     `yaml:"codec" mapstructure:"codec" env:"CODEC" envDefault:"json"`

	// SweepInterval enables a background sweeper for the TTL store; 0 = lazy
	// expiry only.
	SweepInterval time.Duration `yaml:"sweep_interval" mapstructure:"sweep_interval" env:"SWEEP_INTERVAL"`
	// OpTimeout bounds each remote call; 0 = 1s.
	OpTimeout time.Duration `yaml:"op_timeout" mapstructure:"op_timeout" env:"OP_TIMEOUT" envDefault:"1s"`
	// SubjectFollowsGlobal makes InvalidateAll reach subject-scoped entries.
	// Physical keys are <prefix><key>:<hex(global)> for the global scope and
	// <prefix><key>:<hex(g)>_<hex(subject)> for a subject, where g is the
	// global version when this is set and always 0 when it is not. Keys in a
	// shared remote store change layout when this flag flips.
	SubjectFollowsGlobal bool `yaml:"subject_follows_global" mapstructure:"subject_follows_global" env:"SUBJECT_FOLLOWS_GLOBAL"`

	Redis RedisConfig `yaml:"redis" mapstructure:"redis" envPrefix:"REDIS_"`
}

// DefaultConfig: in-memory TTL store, 10 minute ttl, JSON codec.
func DefaultConfig() Config {
	return Config{
		CacheType:   CacheTTL,
		StorageType: StorageMemory,
		TTL:         defaultTTL,
		MaxSize:     defaultMaxSize,
		Prefix:      defaultPrefix,
		Codec:       CodecJSON,
		OpTimeout:   defaultOpTimeout,
		Redis: RedisConfig{
			Addr:         "localhost:6379",
			DialTimeout:  time.Second,
			ReadTimeout:  time.Second,
			WriteTimeout: time.Second,
		},
	}
}

// Validate reports the first invalid field as a *ConfigError.
func (c Config) Validate() error {
	switch {
	case c.CacheType > CacheLRU:
		return &ConfigError{Field: "cache_type", Reason: "unknown cache type " + c.CacheType.String()}
	case c.StorageType > StorageRemote:
		return &ConfigError{Field: "storage_type", Reason: "unknown storage type " + c.StorageType.String()}
	case c.Codec > CodecGob:
		return &ConfigError{Field: "codec", Reason: "unknown codec " + c.Codec.String()}
	case c.TTL <= 0:
		return &ConfigError{Field: "ttl", Reason: fmt.Sprintf("must be positive, got %s", c.TTL)}
	case c.MaxSize <= 0:
		return &ConfigError{Field: "max_size", Reason: fmt.Sprintf("must be positive, got %d", c.MaxSize)}
	case c.SweepInterval < 0:
		return &ConfigError{Field: "sweep_interval", Reason: "must not be negative"}
	case c.OpTimeout < 0:
		return &ConfigError{Field: "op_timeout", Reason: "must not be negative"}
	}
	return nil
}

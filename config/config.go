// Package config loads fncache.Config from the environment or from a file.
//
// Environment variables use the FNCACHE_ prefix and upper-case field tags:
// FNCACHE_TTL=30s, FNCACHE_CACHE_TYPE=lru, FNCACHE_REDIS_ADDR=host:6379.
package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/caarlos0/env/v11"
	"github.com/go-viper/mapstructure/v2"
	"github.com/spf13/viper"

	"github.com/unkn0wn-root/fncache"
)

const EnvPrefix = "FNCACHE_"

// keys lists every file key so environment overrides reach Unmarshal.
var keys = []string{
	"cache_type", "storage_type", "ttl", "max_size", "prefix", "codec",
	"sweep_interval", "op_timeout", "subject_follows_global",
	"redis.addr", "redis.username", "redis.password", "redis.db",
	"redis.dial_timeout", "redis.read_timeout", "redis.write_timeout",
}

// FromEnv builds a Config from FNCACHE_* variables. Unset variables take
// the same defaults as fncache.DefaultConfig.
func FromEnv() (fncache.Config, error) {
	cfg, err := env.ParseAsWithOptions[fncache.Config](env.Options{Prefix: EnvPrefix})
	if err != nil {
		return fncache.Config{}, fmt.Errorf("config: parse env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return fncache.Config{}, err
	}
	return cfg, nil
}

// Load reads path (YAML, TOML or JSON by extension) over fncache.DefaultConfig
// and applies FNCACHE_* overrides. An empty path reads the environment only.
func Load(path string) (fncache.Config, error) {
	v := viper.New()
	v.SetEnvPrefix(strings.TrimSuffix(EnvPrefix, "_"))
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	for _, k := range keys {
		if err := v.BindEnv(k); err != nil {
			return fncache.Config{}, fmt.Errorf("config: bind %s: %w", k, err)
		}
	}

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return fncache.Config{}, fmt.Errorf("config: read %s: %w", path, err)
		}
	}

	cfg := fncache.DefaultConfig()
	hook := viper.DecodeHook(mapstructure.ComposeDecodeHookFunc(
		mapstructure.TextUnmarshallerHookFunc(),
		mapstructure.StringToTimeDurationHookFunc(),
	))
	if err := v.Unmarshal(&cfg, hook); err != nil {
		var ce *fncache.ConfigError
		if errors.As(err, &ce) {
			return fncache.Config{}, ce
		}
		return fncache.Config{}, fmt.Errorf("config: decode: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return fncache.Config{}, err
	}
	return cfg, nil
}

package fncache

import (
	"errors"
	"testing"
	"time"
)

func TestDefaultConfig_Valid(t *testing.T) {
	cfg := DefaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config invalid: %v", err)
	}
	if cfg.TTL != 10*time.Minute || cfg.MaxSize != 1000 || cfg.Prefix != "cache:" {
		t.Fatalf("defaults=%+v", cfg)
	}
}

func TestEnums_UnmarshalText(t *testing.T) {
	var ct CacheType
	if err := ct.UnmarshalText([]byte("LRU")); err != nil || ct != CacheLRU {
		t.Fatalf("cache type=%v err=%v", ct, err)
	}
	var st StorageType
	if err := st.UnmarshalText([]byte("redis")); err != nil || st != StorageRemote {
		t.Fatalf("storage type=%v err=%v", st, err)
	}
	var ck CodecKind
	if err := ck.UnmarshalText([]byte("cbor")); err != nil || ck != CodecCBOR {
		t.Fatalf("codec=%v err=%v", ck, err)
	}

	var ce *ConfigError
	if err := ct.UnmarshalText([]byte("fifo")); !errors.As(err, &ce) || ce.Field != "cache_type" {
		t.Fatalf("err=%v", err)
	}
}

func TestEnums_TextRoundTrip(t *testing.T) {
	for _, k := range []CodecKind{CodecJSON, CodecMsgpack, CodecCBOR, CodecGob} {
		b, _ := k.MarshalText()
		var back CodecKind
		if err := back.UnmarshalText(b); err != nil || back != k {
			t.Fatalf("%s: back=%v err=%v", k, back, err)
		}
	}
}

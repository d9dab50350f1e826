package ristretto

import (
	"context"
	"testing"
	"time"
)

func newTestProvider(t *testing.T) *Provider {
	t.Helper()
	p, err := New(Config{NumCounters: 1000, MaxCost: 1 << 20, BufferItems: 64, Metrics: true, WaitOnSet: true})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	t.Cleanup(func() { _ = p.Close(context.Background()) })
	return p
}

func TestRoundTrip(t *testing.T) {
	ctx := context.Background()
	p := newTestProvider(t)

	if ok, err := p.Set(ctx, "k", []byte("v"), time.Minute); !ok || err != nil {
		t.Fatalf("Set ok=%v err=%v", ok, err)
	}
	b, ok, err := p.Get(ctx, "k")
	if err != nil || !ok || string(b) != "v" {
		t.Fatalf("Get b=%q ok=%v err=%v", b, ok, err)
	}
	if err := p.Del(ctx, "k"); err != nil {
		t.Fatalf("Del: %v", err)
	}
	if _, ok, _ := p.Get(ctx, "k"); ok {
		t.Fatalf("entry survived Del")
	}
	if p.Metrics() == nil {
		t.Fatalf("metrics disabled")
	}
}

func TestInvalidConfig(t *testing.T) {
	if _, err := New(Config{}); err == nil {
		t.Fatalf("zero config accepted")
	}
}

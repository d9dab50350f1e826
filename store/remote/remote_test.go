package remote

import (
	"context"
	"errors"
	"reflect"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"

	"github.com/unkn0wn-root/fncache/codec"
	pr "github.com/unkn0wn-root/fncache/provider"
	redisprov "github.com/unkn0wn-root/fncache/provider/redis"
	"github.com/unkn0wn-root/fncache/provider/ristretto"
	"github.com/unkn0wn-root/fncache/store"
)

type memProvider struct {
	mu     sync.Mutex
	m      map[string][]byte
	ttls   map[string]time.Duration
	getErr error
	setErr error
	delErr error
	block  bool // Get waits for ctx
}

var _ pr.Provider = (*memProvider)(nil)

func newMemProvider() *memProvider {
	return &memProvider{m: make(map[string][]byte), ttls: make(map[string]time.Duration)}
}

func (p *memProvider) Get(ctx context.Context, key string) ([]byte, bool, error) {
	if p.block {
		<-ctx.Done()
		return nil, false, ctx.Err()
	}
	if p.getErr != nil {
		return nil, false, p.getErr
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	b, ok := p.m[key]
	return b, ok, nil
}

func (p *memProvider) Set(_ context.Context, key string, value []byte, ttl time.Duration) (bool, error) {
	if p.setErr != nil {
		return false, p.setErr
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.m[key] = value
	p.ttls[key] = ttl
	return true, nil
}

func (p *memProvider) Del(_ context.Context, key string) error {
	if p.delErr != nil {
		return p.delErr
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	delete(p.m, key)
	return nil
}

func (p *memProvider) Close(context.Context) error { return nil }

type report struct {
	op  store.Op
	key string
	err error
}

type recorder struct {
	mu   sync.Mutex
	reps []report
}

func (r *recorder) fn(op store.Op, key string, err error) {
	r.mu.Lock()
	r.reps = append(r.reps, report{op, key, err})
	r.mu.Unlock()
}

func (r *recorder) last(t *testing.T) report {
	t.Helper()
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.reps) == 0 {
		t.Fatal("no error reported")
	}
	return r.reps[len(r.reps)-1]
}

type doc struct {
	ID    int               `json:"id" msgpack:"id" cbor:"id"`
	Tags  []string          `json:"tags" msgpack:"tags" cbor:"tags"`
	Attrs map[string]string `json:"attrs" msgpack:"attrs" cbor:"attrs"`
	Items []item            `json:"items" msgpack:"items" cbor:"items"`
}

type item struct {
	Name string         `json:"name" msgpack:"name" cbor:"name"`
	Qty  map[string]int `json:"qty" msgpack:"qty" cbor:"qty"`
}

func sampleDoc() doc {
	return doc{
		ID:    7,
		Tags:  []string{"a", "b"},
		Attrs: map[string]string{"k": "v"},
		Items: []item{{Name: "x", Qty: map[string]int{"red": 1}}, {Name: "y", Qty: map[string]int{"blue": 2}}},
	}
}

func newMiniredis(t *testing.T) (*miniredis.Miniredis, pr.Provider) {
	t.Helper()
	mr := miniredis.RunT(t)
	p, err := redisprov.New(redisprov.Config{
		Client:      goredis.NewClient(&goredis.Options{Addr: mr.Addr()}),
		CloseClient: true,
	})
	if err != nil {
		t.Fatalf("redis provider: %v", err)
	}
	return mr, p
}

func TestNewValidates(t *testing.T) {
	if _, err := New[int](Options[int]{Codec: codec.JSON[int]{}}); err == nil {
		t.Fatal("missing provider must fail")
	}
	if _, err := New[int](Options[int]{Provider: newMemProvider()}); err == nil {
		t.Fatal("missing codec must fail")
	}
}

func TestRoundTripEveryCodecThroughRedis(t *testing.T) {
	codecs := map[string]codec.Codec[doc]{
		"json":    codec.JSON[doc]{},
		"msgpack": codec.Msgpack[doc]{},
		"cbor":    codec.MustCBOR[doc](true),
		"gob":     codec.Gob[doc]{},
	}
	for name, c := range codecs {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			_, p := newMiniredis(t)
			r, err := New[doc](Options[doc]{Provider: p, Codec: c})
			if err != nil {
				t.Fatal(err)
			}
			defer r.Close(ctx)

			want := sampleDoc()
			if !r.Set(ctx, "cache:doc:7:0", want, time.Minute) {
				t.Fatal("Set failed")
			}
			got, ok := r.Get(ctx, "cache:doc:7:0")
			if !ok || !reflect.DeepEqual(got, want) {
				t.Fatalf("ok=%v got=%+v want=%+v", ok, got, want)
			}
		})
	}
}

func TestExpiryDelegatedToRedis(t *testing.T) {
	ctx := context.Background()
	mr, p := newMiniredis(t)
	r, _ := New[string](Options[string]{Provider: p, Codec: codec.String{}})

	r.Set(ctx, "cache:x:0", "v", 2*time.Second)
	if ttl := mr.TTL("cache:x:0"); ttl != 2*time.Second {
		t.Fatalf("redis TTL=%v", ttl)
	}
	if got, _ := mr.Get("cache:x:0"); got != "v" {
		t.Fatalf("strings are stored raw, got %q", got)
	}
	mr.FastForward(3 * time.Second)
	if _, ok := r.Get(ctx, "cache:x:0"); ok {
		t.Fatal("entry should have expired server-side")
	}
}

func TestSyncPathFailsFast(t *testing.T) {
	r, _ := New[int](Options[int]{Provider: newMemProvider(), Codec: codec.JSON[int]{}})
	if _, _, err := r.GetSync("k"); !errors.Is(err, store.ErrSyncUnsupported) {
		t.Fatalf("GetSync err=%v", err)
	}
	if _, err := r.SetSync("k", 1, time.Minute); !errors.Is(err, store.ErrSyncUnsupported) {
		t.Fatalf("SetSync err=%v", err)
	}
	if _, err := r.DeleteSync("k"); !errors.Is(err, store.ErrSyncUnsupported) {
		t.Fatalf("DeleteSync err=%v", err)
	}
}

func TestProviderFaultsBecomeMissOrFalse(t *testing.T) {
	ctx := context.Background()
	boom := errors.New("connection refused")
	mp := newMemProvider()
	rec := &recorder{}
	r, _ := New[int](Options[int]{Provider: mp, Codec: codec.JSON[int]{}, OnError: rec.fn})

	mp.getErr, mp.setErr, mp.delErr = boom, boom, boom
	if _, ok := r.Get(ctx, "k"); ok {
		t.Fatal("Get must miss on fault")
	}
	if got := rec.last(t); got.op != store.OpGet || !errors.Is(got.err, boom) {
		t.Fatalf("report=%+v", got)
	}
	if r.Set(ctx, "k", 1, time.Minute) {
		t.Fatal("Set must fail on fault")
	}
	if r.Delete(ctx, "k") {
		t.Fatal("Delete must fail on fault")
	}
	if got := rec.last(t); got.op != store.OpDelete {
		t.Fatalf("report=%+v", got)
	}
}

func TestDecodeFaultIsMissAndSelfHeals(t *testing.T) {
	ctx := context.Background()
	mp := newMemProvider()
	rec := &recorder{}
	r, _ := New[doc](Options[doc]{Provider: mp, Codec: codec.JSON[doc]{}, OnError: rec.fn})

	mp.m["k"] = []byte("\x93\x01\x02") // msgpack written by an older deploy
	if _, ok := r.Get(ctx, "k"); ok {
		t.Fatal("undecodable entry must read as absent")
	}
	var de *DecodeError
	if got := rec.last(t); !errors.As(got.err, &de) || de.Key != "k" {
		t.Fatalf("report=%+v", got)
	}
	if _, ok := mp.m["k"]; ok {
		t.Fatal("corrupt entry should be deleted")
	}
}

type failingCodec struct{ codec.JSON[int] }

func (failingCodec) Encode(int) ([]byte, error) { return nil, errors.New("unsupported value") }

func TestEncodeFaultKeepsExistingEntry(t *testing.T) {
	ctx := context.Background()
	mp := newMemProvider()
	rec := &recorder{}
	good, _ := New[int](Options[int]{Provider: mp, Codec: codec.JSON[int]{}})
	bad, _ := New[int](Options[int]{Provider: mp, Codec: failingCodec{}, OnError: rec.fn})

	good.Set(ctx, "k", 41, time.Minute)
	if bad.Set(ctx, "k", 42, time.Minute) {
		t.Fatal("encode failure must return false")
	}
	var ee *EncodeError
	if got := rec.last(t); !errors.As(got.err, &ee) {
		t.Fatalf("report=%+v", got)
	}
	if v, ok := good.Get(ctx, "k"); !ok || v != 41 {
		t.Fatalf("existing entry corrupted: ok=%v v=%d", ok, v)
	}
}

func TestTimeoutBecomesMiss(t *testing.T) {
	mp := newMemProvider()
	mp.block = true
	rec := &recorder{}
	r, _ := New[int](Options[int]{Provider: mp, Codec: codec.JSON[int]{}, Timeout: 20 * time.Millisecond, OnError: rec.fn})

	start := time.Now()
	if _, ok := r.Get(context.Background(), "k"); ok {
		t.Fatal("timed out Get must miss")
	}
	if el := time.Since(start); el > time.Second {
		t.Fatalf("timeout not honoured: %v", el)
	}
	if got := rec.last(t); !errors.Is(got.err, context.DeadlineExceeded) {
		t.Fatalf("report=%+v", got)
	}
}

func TestNonPositiveTTLRejected(t *testing.T) {
	mp := newMemProvider()
	r, _ := New[int](Options[int]{Provider: mp, Codec: codec.JSON[int]{}})
	if r.Set(context.Background(), "k", 1, 0) {
		t.Fatal("ttl=0 must be rejected")
	}
	if len(mp.m) != 0 {
		t.Fatal("nothing should be written")
	}
}

func TestDeleteAbsentSucceedsOnRedis(t *testing.T) {
	ctx := context.Background()
	_, p := newMiniredis(t)
	r, _ := New[int](Options[int]{Provider: p, Codec: codec.JSON[int]{}})
	if !r.Delete(ctx, "nope") || !r.Delete(ctx, "nope") {
		t.Fatal("delete must be idempotent")
	}
}

func TestRistrettoProviderBackend(t *testing.T) {
	ctx := context.Background()
	p, err := ristretto.New(ristretto.Config{NumCounters: 1000, MaxCost: 1 << 20, BufferItems: 64, WaitOnSet: true})
	if err != nil {
		t.Fatal(err)
	}
	r, _ := New[doc](Options[doc]{Provider: p, Codec: codec.Msgpack[doc]{}})
	defer r.Close(ctx)

	want := sampleDoc()
	if !r.Set(ctx, "k", want, time.Minute) {
		t.Fatal("Set rejected")
	}
	if got, ok := r.Get(ctx, "k"); !ok || !reflect.DeepEqual(got, want) {
		t.Fatalf("ok=%v got=%+v", ok, got)
	}
}

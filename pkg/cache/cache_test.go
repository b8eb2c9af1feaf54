package cache

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestNullCache(t *testing.T) {
	ctx := context.Background()
	c := NewNullCache()
	defer c.Close()

	if err := c.Set(ctx, "key", []byte("value"), time.Hour); err != nil {
		t.Errorf("Set error: %v", err)
	}
	data, hit, err := c.Get(ctx, "key")
	if err != nil || hit || data != nil {
		t.Errorf("Get = %v, %v, %v; want miss", data, hit, err)
	}
	if err := c.Delete(ctx, "key"); err != nil {
		t.Errorf("Delete error: %v", err)
	}
}

func TestFileCache(t *testing.T) {
	ctx := context.Background()
	c, err := NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}

	if _, hit, err := c.Get(ctx, "missing"); hit || err != nil {
		t.Fatalf("Get(missing) hit=%v err=%v", hit, err)
	}

	if err := c.Set(ctx, "placement:abc", []byte(`{"a":1}`), 0); err != nil {
		t.Fatal(err)
	}
	data, hit, err := c.Get(ctx, "placement:abc")
	if err != nil || !hit || string(data) != `{"a":1}` {
		t.Fatalf("Get = %q, %v, %v", data, hit, err)
	}

	if err := c.Delete(ctx, "placement:abc"); err != nil {
		t.Fatal(err)
	}
	if _, hit, _ := c.Get(ctx, "placement:abc"); hit {
		t.Error("entry survived Delete")
	}
	if err := c.Delete(ctx, "placement:abc"); err != nil {
		t.Errorf("second Delete: %v", err)
	}
}

func TestFileCacheExpiry(t *testing.T) {
	ctx := context.Background()
	c, err := NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return now }

	if err := c.Set(ctx, "short", []byte("x"), time.Minute); err != nil {
		t.Fatal(err)
	}
	if err := c.Set(ctx, "forever", []byte("y"), 0); err != nil {
		t.Fatal(err)
	}
	if _, hit, _ := c.Get(ctx, "short"); !hit {
		t.Fatal("fresh entry missed")
	}

	now = now.Add(2 * time.Minute)
	if _, hit, _ := c.Get(ctx, "short"); hit {
		t.Error("expired entry hit")
	}
	if _, hit, _ := c.Get(ctx, "forever"); !hit {
		t.Error("entry without ttl expired")
	}
}

func TestFileCachePruneAndClear(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	c, err := NewFileCache(dir)
	if err != nil {
		t.Fatal(err)
	}
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return now }

	for _, k := range []string{"a", "b", "c"} {
		if err := c.Set(ctx, k, []byte(k), time.Minute); err != nil {
			t.Fatal(err)
		}
	}
	if err := c.Set(ctx, "d", []byte("d"), time.Hour); err != nil {
		t.Fatal(err)
	}
	// A corrupt entry is pruned as well.
	corrupt := filepath.Join(dir, "zz", "corrupt.json")
	if err := os.MkdirAll(filepath.Dir(corrupt), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(corrupt, []byte("{"), 0o644); err != nil {
		t.Fatal(err)
	}

	n, _, err := c.Stats()
	if err != nil || n != 5 {
		t.Fatalf("Stats = %d, %v; want 5", n, err)
	}

	now = now.Add(10 * time.Minute)
	removed, err := c.Prune()
	if err != nil || removed != 4 {
		t.Fatalf("Prune = %d, %v; want 4", removed, err)
	}
	if _, hit, _ := c.Get(ctx, "d"); !hit {
		t.Error("live entry pruned")
	}

	if err := c.Clear(); err != nil {
		t.Fatal(err)
	}
	if n, _, _ := c.Stats(); n != 0 {
		t.Errorf("Stats after Clear = %d", n)
	}
}

func TestHash(t *testing.T) {
	h1 := Hash([]byte("hello"))
	if h1 != Hash([]byte("hello")) {
		t.Error("Hash should be deterministic")
	}
	if h1 == Hash([]byte("world")) {
		t.Error("Different inputs should produce different hashes")
	}
	if len(h1) != 64 {
		t.Errorf("Hash length should be 64, got %d", len(h1))
	}

	a, err := HashJSON(map[string]int{"x": 1, "y": 2})
	if err != nil {
		t.Fatal(err)
	}
	b, _ := HashJSON(map[string]int{"y": 2, "x": 1})
	if a != b {
		t.Error("HashJSON should not depend on map order")
	}
}

func TestDefaultKeyer(t *testing.T) {
	k := NewDefaultKeyer()

	p1 := k.PatternKey("c1", PatternKeyOpts{Method: "slices", TimeZeroWeight: 100, FinalTimeWeight: 20})
	p2 := k.PatternKey("c1", PatternKeyOpts{Method: "slices", TimeZeroWeight: 100, FinalTimeWeight: 10})
	if p1 == p2 {
		t.Error("Different PatternKeyOpts should produce different keys")
	}
	if p1[:len(KeyTypePattern)+1] != KeyTypePattern+":" {
		t.Errorf("PatternKey not prefixed: %s", p1)
	}

	a1 := k.AugmentKey("d1", AugmentKeyOpts{SwapGateCount: 3})
	a2 := k.AugmentKey("d1", AugmentKeyOpts{SwapGateCount: 3, ReplaceLowFidelity: true})
	if a1 == a2 {
		t.Error("Different AugmentKeyOpts should produce different keys")
	}

	l1 := k.PlacementKey("p", "a", PlacementKeyOpts{Timeout: time.Second})
	l2 := k.PlacementKey("a", "p", PlacementKeyOpts{Timeout: time.Second})
	if l1 == l2 {
		t.Error("PlacementKey should depend on argument order")
	}
}

func TestScopedKeyer(t *testing.T) {
	inner := NewDefaultKeyer()
	scoped := NewScopedKeyer(inner, "calib:1:")

	want := "calib:1:" + inner.PatternKey("c", PatternKeyOpts{})
	if got := scoped.PatternKey("c", PatternKeyOpts{}); got != want {
		t.Errorf("PatternKey = %s, want %s", got, want)
	}

	nilInner := NewScopedKeyer(nil, "x:")
	if got := nilInner.AugmentKey("d", AugmentKeyOpts{}); got != "x:"+inner.AugmentKey("d", AugmentKeyOpts{}) {
		t.Errorf("Unexpected key with nil inner: %s", got)
	}
}

func TestRetryableError(t *testing.T) {
	if Retryable(nil) != nil {
		t.Error("Retryable(nil) should return nil")
	}
	err := Retryable(ErrNetwork)
	if !IsRetryable(err) {
		t.Error("IsRetryable should return true for wrapped error")
	}
	if err.Error() != ErrNetwork.Error() {
		t.Errorf("Error message should be preserved: %s", err.Error())
	}
	if IsRetryable(ErrNetwork) {
		t.Error("IsRetryable should return false for unwrapped error")
	}
}

func TestRetryWithBackoff(t *testing.T) {
	defer func(d time.Duration) { retryDelay = d }(retryDelay)
	retryDelay = time.Millisecond
	ctx := context.Background()

	calls := 0
	err := RetryWithBackoff(ctx, func() error {
		calls++
		return ErrNetwork
	})
	if err != ErrNetwork || calls != 1 {
		t.Errorf("non-retryable: err=%v calls=%d", err, calls)
	}

	calls = 0
	err = RetryWithBackoff(ctx, func() error {
		calls++
		if calls < 2 {
			return Retryable(ErrNetwork)
		}
		return nil
	})
	if err != nil || calls != 2 {
		t.Errorf("retry once: err=%v calls=%d", err, calls)
	}

	calls = 0
	err = RetryWithBackoff(ctx, func() error {
		calls++
		return Retryable(ErrNetwork)
	})
	if !IsRetryable(err) || calls != 3 {
		t.Errorf("exhausted: err=%v calls=%d", err, calls)
	}
}

func TestRetryWithBackoffContextCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := RetryWithBackoff(ctx, func() error {
		return Retryable(ErrNetwork)
	})
	if err != context.Canceled {
		t.Errorf("Should return context error: %v", err)
	}
}

// backendRoundTrip exercises a live backend.
func backendRoundTrip(t *testing.T, c Cache) {
	t.Helper()
	ctx := context.Background()
	key := "qplace-test:" + Hash([]byte(t.Name()))
	t.Cleanup(func() { _ = c.Delete(ctx, key) })

	if err := c.Set(ctx, key, []byte("payload"), time.Minute); err != nil {
		t.Fatal(err)
	}
	data, hit, err := c.Get(ctx, key)
	if err != nil || !hit || string(data) != "payload" {
		t.Fatalf("Get = %q, %v, %v", data, hit, err)
	}
	if err := c.Delete(ctx, key); err != nil {
		t.Fatal(err)
	}
	if _, hit, _ := c.Get(ctx, key); hit {
		t.Error("entry survived Delete")
	}
}

func TestRedisCache(t *testing.T) {
	addr := os.Getenv("QPLACE_TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("QPLACE_TEST_REDIS_ADDR not set")
	}
	c, err := NewRedisCache(context.Background(), RedisConfig{Addr: addr, Prefix: "qplace:"})
	if err != nil {
		t.Fatal(err)
	}
	defer c.Close()
	backendRoundTrip(t, c)
}

func TestMongoCache(t *testing.T) {
	uri := os.Getenv("QPLACE_TEST_MONGO_URI")
	if uri == "" {
		t.Skip("QPLACE_TEST_MONGO_URI not set")
	}
	c, err := NewMongoCache(context.Background(), MongoConfig{URI: uri, Database: "qplace_test"})
	if err != nil {
		t.Fatal(err)
	}
	defer c.Close()
	backendRoundTrip(t, c)
}

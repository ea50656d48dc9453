package xlitfix

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/ZaguanLabs/xlitfix/dictionary"
)

// slowCache simulates a slow cache for testing parallel lookups
type slowCache struct {
	data    map[string]string
	mu      sync.RWMutex
	delay   time.Duration
	lookups int64
}

func newSlowCache(delay time.Duration) *slowCache {
	return &slowCache{
		data:  make(map[string]string),
		delay: delay,
	}
}

func (c *slowCache) Get(key string) (string, bool) {
	atomic.AddInt64(&c.lookups, 1)
	time.Sleep(c.delay)
	c.mu.RLock()
	defer c.mu.RUnlock()
	val, ok := c.data[key]
	return val, ok
}

func (c *slowCache) Set(key string, value string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data[key] = value
	return nil
}

func enKey(hash string) string {
	return CacheKey(hash, "en")
}

func TestParallelCacheLookup_Basic(t *testing.T) {
	cache := newSlowCache(0)
	cache.Set(enKey(HashText("ரோம்")), "rom")
	cache.Set(enKey(HashText("நகரம்")), "nagaram")

	texts := []string{"ரோம்", "நகரம்", "செல்ல"}

	found, misses := ParallelCacheLookup(cache, texts, enKey)

	if len(found) != 2 {
		t.Errorf("Expected 2 hits, got %d", len(found))
	}

	if found[HashText("ரோம்")] != "rom" {
		t.Errorf("Expected 'rom', got %q", found[HashText("ரோம்")])
	}

	if len(misses) != 1 {
		t.Fatalf("Expected 1 miss, got %d", len(misses))
	}

	if misses[0] != "செல்ல" {
		t.Errorf("Expected miss 'செல்ல', got %q", misses[0])
	}
}

func TestParallelCacheLookup_Deduplication(t *testing.T) {
	cache := newSlowCache(0)

	// Same text appears multiple times
	texts := []string{"ரோம்", "ரோம்", " ரோம் "}

	_, misses := ParallelCacheLookup(cache, texts, enKey)

	// Should only have one miss (deduplicated)
	if len(misses) != 1 {
		t.Errorf("Expected 1 deduplicated miss, got %d", len(misses))
	}
	if cache.lookups != 1 {
		t.Errorf("Expected 1 lookup, got %d", cache.lookups)
	}
}

func TestParallelCacheLookup_PreservesOrder(t *testing.T) {
	cache := newSlowCache(0)
	texts := []string{"ஒன்று", "இரண்டு", "மூன்று", "நான்கு"}

	_, misses := ParallelCacheLookup(cache, texts, enKey)

	for i := range texts {
		if misses[i] != texts[i] {
			t.Fatalf("Expected misses in input order, got %v", misses)
		}
	}
}

func TestParallelCacheLookup_NilCache(t *testing.T) {
	texts := []string{"ரோம்"}

	found, misses := ParallelCacheLookup(nil, texts, enKey)

	if len(found) != 0 {
		t.Errorf("Expected 0 hits with nil cache, got %d", len(found))
	}

	if len(misses) != 1 {
		t.Errorf("Expected all texts as misses with nil cache, got %d", len(misses))
	}
}

func TestParallelCacheLookup_EmptyTexts(t *testing.T) {
	cache := newSlowCache(0)
	found, misses := ParallelCacheLookup(cache, []string{}, enKey)

	if len(found) != 0 {
		t.Errorf("Expected 0 hits for empty texts, got %d", len(found))
	}

	if len(misses) != 0 {
		t.Errorf("Expected 0 misses for empty texts, got %d", len(misses))
	}
}

func TestParallelCacheLookup_FasterThanSequential(t *testing.T) {
	delay := 10 * time.Millisecond
	cache := newSlowCache(delay)

	texts := make([]string, 10)
	for i := range texts {
		texts[i] = fmt.Sprintf("வாக்கியம் %d", i)
		cache.Set(enKey(HashText(texts[i])), "vakkiyam")
	}

	start := time.Now()
	ParallelCacheLookup(cache, texts, enKey)
	elapsed := time.Since(start)

	// Sequential would take 10 * 10ms = 100ms
	// Parallel should be much faster (close to 10ms + overhead)
	maxExpected := 50 * time.Millisecond
	if elapsed > maxExpected {
		t.Errorf("Parallel lookup took %v, expected < %v", elapsed, maxExpected)
	}
}

func newTamilTransliterator(t testing.TB, entries map[string]string, opts ...TransliteratorOption) *Transliterator {
	t.Helper()
	dict, err := dictionary.New(entries)
	if err != nil {
		t.Fatalf("dictionary.New failed: %v", err)
	}
	r, err := NewReplacer("tam_Taml", dict)
	if err != nil {
		t.Fatalf("NewReplacer failed: %v", err)
	}
	return NewTransliterator(r, opts...)
}

func TestProcessParallel_PreservesOrder(t *testing.T) {
	tr := newTamilTransliterator(t, map[string]string{"ரோம்": "rome", "நகரம்": "nagaram"})

	batches := [][]string{
		{"ரோம்", "நகரம்"},
		{"நகரம் ரோம்"},
		{"செல்ல"},
	}

	results, err := ProcessParallel(context.Background(), tr, batches, 2)
	if err != nil {
		t.Fatalf("ProcessParallel failed: %v", err)
	}

	if len(results) != 3 {
		t.Fatalf("Expected 3 results, got %d", len(results))
	}
	if results[0].Corrected[0] != "rome" || results[0].Corrected[1] != "nagaram" {
		t.Errorf("Unexpected first batch: %v", results[0].Corrected)
	}
	if results[1].Corrected[0] != "nagaram rome" {
		t.Errorf("Unexpected second batch: %v", results[1].Corrected)
	}
	if results[2].Missing[0][0] != "செல்ல" {
		t.Errorf("Expected 'செல்ல' missing, got %v", results[2].Missing[0])
	}
}

func TestProcessParallel_ZeroWorkers(t *testing.T) {
	tr := newTamilTransliterator(t, map[string]string{"ரோம்": "rome"})

	results, err := ProcessParallel(context.Background(), tr, [][]string{{"ரோம்"}}, 0)
	if err != nil {
		t.Fatalf("ProcessParallel failed: %v", err)
	}
	if results[0].Corrected[0] != "rome" {
		t.Errorf("Expected 'rome', got %q", results[0].Corrected[0])
	}
}

func TestProcessParallel_Cancelled(t *testing.T) {
	tr := newTamilTransliterator(t, map[string]string{"ரோம்": "rome"})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := ProcessParallel(ctx, tr, [][]string{{"ரோம்"}, {"ரோம்"}}, 1)
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Expected context.Canceled, got %v", err)
	}
}

func BenchmarkParallelCacheLookup(b *testing.B) {
	cache := newSlowCache(0)
	texts := make([]string, 100)
	for i := range texts {
		texts[i] = fmt.Sprintf("வாக்கியம் %d", i)
		cache.Set(enKey(HashText(texts[i])), "vakkiyam")
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		ParallelCacheLookup(cache, texts, enKey)
	}
}

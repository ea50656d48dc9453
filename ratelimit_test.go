package xlitfix

import (
	"context"
	"sync"
	"testing"
	"time"
)

func TestRateLimiter_TryAcquire(t *testing.T) {
	limiter := NewRateLimiter(RateLimitConfig{
		RequestsPerMinute: 60, // 1 per second
		BurstSize:         3,
	})

	// Should be able to acquire burst size immediately
	for i := 0; i < 3; i++ {
		if !limiter.TryAcquire() {
			t.Errorf("Expected to acquire token %d", i)
		}
	}

	// Fourth should fail
	if limiter.TryAcquire() {
		t.Error("Expected fourth acquire to fail")
	}
}

func TestRateLimiter_Refill(t *testing.T) {
	limiter := NewRateLimiter(RateLimitConfig{
		RequestsPerMinute: 600, // 10 per second
		BurstSize:         1,
	})

	// Drain the bucket
	limiter.TryAcquire()

	// Should fail immediately
	if limiter.TryAcquire() {
		t.Error("Expected acquire to fail after drain")
	}

	// Wait for refill (100ms for 1 token at 10/sec)
	time.Sleep(150 * time.Millisecond)

	// Should succeed now
	if !limiter.TryAcquire() {
		t.Error("Expected acquire to succeed after refill")
	}
}

func TestRateLimiter_Wait(t *testing.T) {
	limiter := NewRateLimiter(RateLimitConfig{
		RequestsPerMinute: 600, // 10 per second
		BurstSize:         1,
	})

	// Drain the bucket
	limiter.TryAcquire()

	// Wait should block then succeed
	ctx := context.Background()
	start := time.Now()
	err := limiter.Wait(ctx)
	elapsed := time.Since(start)

	if err != nil {
		t.Errorf("Wait failed: %v", err)
	}

	// Should have waited ~100ms
	if elapsed < 50*time.Millisecond {
		t.Errorf("Wait returned too quickly: %v", elapsed)
	}
}

func TestRateLimiter_WaitCancelled(t *testing.T) {
	limiter := NewRateLimiter(RateLimitConfig{
		RequestsPerMinute: 1, // Very slow
		BurstSize:         1,
	})

	// Drain the bucket
	limiter.TryAcquire()

	// Cancel context quickly
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	err := limiter.Wait(ctx)
	if err == nil {
		t.Error("Expected error when context cancelled")
	}
}

func TestRateLimiter_TryAcquireN(t *testing.T) {
	limiter := NewRateLimiter(RateLimitConfig{
		RequestsPerMinute: 60,
		BurstSize:         5,
	})

	if !limiter.TryAcquireN(3) {
		t.Fatal("Expected to acquire 3 tokens")
	}
	if limiter.TryAcquireN(3) {
		t.Error("Expected acquire of 3 to fail with 2 left")
	}
	if !limiter.TryAcquireN(2) {
		t.Error("Expected to acquire the remaining 2 tokens")
	}
}

func TestRateLimiter_WaitNLargerThanBurst(t *testing.T) {
	limiter := NewRateLimiter(RateLimitConfig{
		RequestsPerMinute: 600,
		BurstSize:         2,
	})

	// A request above the burst drains a full bucket instead of blocking forever
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := limiter.WaitN(ctx, 10); err != nil {
		t.Fatalf("WaitN failed: %v", err)
	}
	if available := limiter.Available(); available > 0.5 {
		t.Errorf("Expected an empty bucket, got %f", available)
	}
}

func TestRateLimiter_Available(t *testing.T) {
	limiter := NewRateLimiter(RateLimitConfig{
		RequestsPerMinute: 60,
		BurstSize:         5,
	})

	available := limiter.Available()
	if available != 5 {
		t.Errorf("Expected 5 available, got %f", available)
	}

	limiter.TryAcquire()
	limiter.TryAcquire()

	available = limiter.Available()
	if available < 2.9 || available > 3.1 {
		t.Errorf("Expected ~3 available, got %f", available)
	}
}

func TestRateLimiter_Concurrent(t *testing.T) {
	limiter := NewRateLimiter(RateLimitConfig{
		RequestsPerMinute: 6000, // 100 per second
		BurstSize:         10,
	})

	var wg sync.WaitGroup
	acquired := int64(0)
	var mu sync.Mutex

	// Launch 20 goroutines trying to acquire
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if limiter.TryAcquire() {
				mu.Lock()
				acquired++
				mu.Unlock()
			}
		}()
	}

	wg.Wait()

	// Should have acquired exactly burst size
	if acquired != 10 {
		t.Errorf("Expected 10 acquired, got %d", acquired)
	}
}

func TestRateLimitedModel(t *testing.T) {
	inner := &countingModel{
		response: []string{"rom"},
	}

	model := NewRateLimitedModel(inner, RateLimitConfig{
		RequestsPerMinute: 600,
		BurstSize:         2,
	})

	ctx := context.Background()

	// First two should succeed immediately
	_, err := model.Transliterate(ctx, TransliterateRequest{Texts: []string{"ரோம்"}})
	if err != nil {
		t.Errorf("First call failed: %v", err)
	}

	_, err = model.Transliterate(ctx, TransliterateRequest{Texts: []string{"செல்ல"}})
	if err != nil {
		t.Errorf("Second call failed: %v", err)
	}

	// Third should wait for rate limit
	start := time.Now()
	_, err = model.Transliterate(ctx, TransliterateRequest{Texts: []string{"வேண்டும்"}})
	elapsed := time.Since(start)

	if err != nil {
		t.Errorf("Third call failed: %v", err)
	}

	// Should have waited
	if elapsed < 50*time.Millisecond {
		t.Errorf("Expected rate limit wait, but returned in %v", elapsed)
	}
}

func TestRateLimitedModel_ContextCancelled(t *testing.T) {
	inner := &countingModel{
		response: []string{"rom"},
	}

	model := NewRateLimitedModel(inner, RateLimitConfig{
		RequestsPerMinute: 1, // Very slow
		BurstSize:         1,
	})

	// Drain the bucket
	model.Transliterate(context.Background(), TransliterateRequest{Texts: []string{"ரோம்"}})

	// Try with cancelled context
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	_, err := model.Transliterate(ctx, TransliterateRequest{Texts: []string{"செல்ல"}})
	if err == nil {
		t.Fatal("Expected error when context cancelled")
	}
	if IsRetryable(err) {
		t.Error("Cancelled wait should not be retryable")
	}
	if inner.calls != 1 {
		t.Errorf("Expected 1 model call, got %d", inner.calls)
	}
}

func TestRateLimitedModel_SentenceBudget(t *testing.T) {
	inner := &countingModel{
		response: []string{"rom", "sella", "vendum"},
	}

	model := NewRateLimitedModel(inner, RateLimitConfig{
		RequestsPerMinute:  6000,
		SentencesPerMinute: 600, // 10 per second, burst 600
	})
	if model.SentenceLimiter() == nil {
		t.Fatal("Expected a sentence limiter")
	}

	ctx := context.Background()
	req := TransliterateRequest{Texts: []string{"ரோம்", "செல்ல", "வேண்டும்"}}
	if _, err := model.Transliterate(ctx, req); err != nil {
		t.Fatalf("Transliterate failed: %v", err)
	}

	available := model.SentenceLimiter().Available()
	if available < 596.9 || available > 597.1 {
		t.Errorf("Expected ~597 sentence tokens left, got %f", available)
	}
}

func TestRateLimitedModel_SentenceBudgetCancelled(t *testing.T) {
	inner := &countingModel{
		response: []string{"rom"},
	}

	model := NewRateLimitedModel(inner, RateLimitConfig{
		RequestsPerMinute:  6000,
		SentencesPerMinute: 1,
	})

	ctx := context.Background()
	if _, err := model.Transliterate(ctx, TransliterateRequest{Texts: []string{"ரோம்"}}); err != nil {
		t.Fatalf("First call failed: %v", err)
	}

	ctx, cancel := context.WithTimeout(ctx, 20*time.Millisecond)
	defer cancel()
	_, err := model.Transliterate(ctx, TransliterateRequest{Texts: []string{"செல்ல"}})
	if err == nil {
		t.Fatal("Expected error when the sentence budget is exhausted")
	}
	if inner.calls != 1 {
		t.Errorf("Expected 1 model call, got %d", inner.calls)
	}
	if available := model.Limiter().Available(); available < 5999 {
		t.Errorf("Request token should not be taken, got %f", available)
	}
}

func TestRateLimitedModel_NoSentenceBudget(t *testing.T) {
	model := NewRateLimitedModel(&countingModel{}, RateLimitConfig{RequestsPerMinute: 60})
	if model.SentenceLimiter() != nil {
		t.Error("Expected no sentence limiter by default")
	}
}

// countingModel returns a fixed response and counts calls.
type countingModel struct {
	response []string
	calls    int
}

func (m *countingModel) Transliterate(ctx context.Context, req TransliterateRequest) ([]string, error) {
	m.calls++
	return m.response, nil
}

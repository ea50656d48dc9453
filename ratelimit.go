package xlitfix

import (
	"context"
	"sync"
	"time"
)

// RateLimiter is a token bucket. Model calls draw one token per request, or
// one token per sentence when the bucket meters sentence volume.
type RateLimiter struct {
	tokens     float64
	maxTokens  float64
	refillRate float64 // tokens per second
	lastRefill time.Time
	mu         sync.Mutex
}

// RateLimitConfig configures the limits applied to model calls.
type RateLimitConfig struct {
	RequestsPerMinute int // Maximum requests per minute (default: 60)
	BurstSize         int // Maximum request burst (default: same as RPM)

	// SentencesPerMinute caps the number of sentences sent to the model,
	// summed over requests. Zero disables the sentence budget.
	SentencesPerMinute int
}

// NewRateLimiter creates a request limiter from cfg.
func NewRateLimiter(cfg RateLimitConfig) *RateLimiter {
	rpm := float64(cfg.RequestsPerMinute)
	if rpm <= 0 {
		rpm = 60
	}
	return newBucket(rpm, float64(cfg.BurstSize))
}

func newBucket(perMinute, burst float64) *RateLimiter {
	if burst <= 0 {
		burst = perMinute
	}
	return &RateLimiter{
		tokens:     burst,
		maxTokens:  burst,
		refillRate: perMinute / 60.0,
		lastRefill: time.Now(),
	}
}

// Wait blocks until a token is available or ctx is done.
func (r *RateLimiter) Wait(ctx context.Context) error {
	return r.WaitN(ctx, 1)
}

// WaitN blocks until n tokens are available or ctx is done. A request larger
// than the bucket waits for a full bucket and drains it.
func (r *RateLimiter) WaitN(ctx context.Context, n int) error {
	for {
		ok, wait := r.reserve(float64(n))
		if ok {
			return nil
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(wait):
		}
	}
}

// TryAcquire takes one token without blocking and reports whether it could.
func (r *RateLimiter) TryAcquire() bool {
	ok, _ := r.reserve(1)
	return ok
}

// TryAcquireN takes n tokens without blocking and reports whether it could.
func (r *RateLimiter) TryAcquireN(n int) bool {
	ok, _ := r.reserve(float64(n))
	return ok
}

// reserve takes n tokens if they are available. Otherwise it returns how
// long the deficit takes to refill.
func (r *RateLimiter) reserve(n float64) (bool, time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.refill()

	n = min(n, r.maxTokens)
	if r.tokens >= n {
		r.tokens -= n
		return true, 0
	}
	return false, time.Duration((n - r.tokens) / r.refillRate * float64(time.Second))
}

// refill adds tokens for the elapsed time. The caller holds mu.
func (r *RateLimiter) refill() {
	now := time.Now()
	elapsed := now.Sub(r.lastRefill).Seconds()
	r.lastRefill = now

	r.tokens += elapsed * r.refillRate
	if r.tokens > r.maxTokens {
		r.tokens = r.maxTokens
	}
}

// Available returns the current number of available tokens.
func (r *RateLimiter) Available() float64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.refill()
	return r.tokens
}

// RateLimitedModel wraps a Model with a request budget and an optional
// sentence budget.
type RateLimitedModel struct {
	model     Model
	limiter   *RateLimiter
	sentences *RateLimiter
}

// NewRateLimitedModel creates a new rate-limited model.
func NewRateLimitedModel(model Model, cfg RateLimitConfig) *RateLimitedModel {
	m := &RateLimitedModel{
		model:   model,
		limiter: NewRateLimiter(cfg),
	}
	if cfg.SentencesPerMinute > 0 {
		m.sentences = newBucket(float64(cfg.SentencesPerMinute), 0)
	}
	return m
}

// Transliterate implements Model. It waits for the sentence budget first so a
// large request does not hold a request token while it waits.
func (m *RateLimitedModel) Transliterate(ctx context.Context, req TransliterateRequest) ([]string, error) {
	if m.sentences != nil && len(req.Texts) > 0 {
		if err := m.sentences.WaitN(ctx, len(req.Texts)); err != nil {
			return nil, &ModelError{Message: "sentence budget wait cancelled", Cause: err}
		}
	}
	if err := m.limiter.Wait(ctx); err != nil {
		return nil, &ModelError{Message: "rate limit wait cancelled", Cause: err}
	}

	return m.model.Transliterate(ctx, req)
}

// Limiter returns the request limiter.
func (m *RateLimitedModel) Limiter() *RateLimiter {
	return m.limiter
}

// SentenceLimiter returns the sentence limiter, or nil when sentence volume
// is not metered.
func (m *RateLimitedModel) SentenceLimiter() *RateLimiter {
	return m.sentences
}

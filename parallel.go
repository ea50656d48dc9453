package xlitfix

import (
	"context"
	"sync"

	"golang.org/x/sync/errgroup"
)

// ParallelCacheLookup performs cache lookups in parallel using goroutines.
// Returns a map of text hash to cached value, and the distinct texts that
// missed, in input order.
func ParallelCacheLookup(cache TransliterationCache, texts []string, keyFn func(hash string) string) (map[string]string, []string) {
	if cache == nil || len(texts) == 0 {
		return make(map[string]string), texts
	}

	type lookupResult struct {
		hash  string
		value string
		found bool
	}

	// Deduplicate texts by hash first
	hashes := make(map[string]bool)
	for _, text := range texts {
		hashes[HashText(text)] = true
	}

	// Create channels for results
	results := make(chan lookupResult, len(hashes))
	var wg sync.WaitGroup

	// Launch goroutines for parallel lookups
	for hash := range hashes {
		wg.Add(1)
		go func(h string) {
			defer wg.Done()
			if val, ok := cache.Get(keyFn(h)); ok {
				results <- lookupResult{hash: h, value: val, found: true}
			} else {
				results <- lookupResult{hash: h, found: false}
			}
		}(hash)
	}

	// Close results channel when all goroutines complete
	go func() {
		wg.Wait()
		close(results)
	}()

	// Collect results
	found := make(map[string]string)
	missedHashes := make(map[string]bool)

	for result := range results {
		if result.found {
			found[result.hash] = result.value
		} else {
			missedHashes[result.hash] = true
		}
	}

	// Build cache misses slice (preserving original order)
	var misses []string
	seenMisses := make(map[string]bool)
	for _, text := range texts {
		hash := HashText(text)
		if missedHashes[hash] && !seenMisses[hash] {
			misses = append(misses, text)
			seenMisses[hash] = true
		}
	}

	return found, misses
}

// ProcessParallel runs batches through t with at most workers batches in
// flight. Results are returned in input order. The first error cancels the
// remaining batches.
func ProcessParallel(ctx context.Context, t *Transliterator, batches [][]string, workers int) ([]*ProcessedBatch, error) {
	if workers <= 0 {
		workers = 1
	}

	results := make([]*ProcessedBatch, len(batches))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for i, batch := range batches {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			res, err := t.Process(ctx, batch)
			if err != nil {
				return err
			}
			results[i] = res
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

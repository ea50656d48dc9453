package xlitfix

import (
	"context"
	"log/slog"
	"sort"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Transliterator runs the full correction pipeline: dictionary replacement,
// the transliteration model for whatever is left, then repair of the model
// output against the original sentences.
type Transliterator struct {
	replacer   *Replacer
	model      Model
	cache      TransliterationCache
	targetLang string
	processors map[string]ContentProcessor
	logger     *slog.Logger

	parallelThreshold int // Minimum texts to trigger parallel cache lookup
}

// Model is the interface for transliteration model backends.
type Model interface {
	Transliterate(ctx context.Context, req TransliterateRequest) ([]string, error)
}

// TransliterateRequest contains the parameters for a transliteration request.
type TransliterateRequest struct {
	Texts      []string
	SourceLang string // Short source language code (e.g., "ta")
	SourceName string // Human-readable source language (e.g., "Tamil")
	Script     string // Source script tag (e.g., "Taml")
	TargetLang string // Target language code (e.g., "en")
}

// TransliterationCache is the interface for caching model output.
type TransliterationCache interface {
	Get(key string) (string, bool)
	Set(key string, value string) error
}

// ContentProcessor is the interface for content processing.
type ContentProcessor interface {
	Extract(content string) (interface{}, []TextNode, error)
	Apply(parsed interface{}, nodes []TextNode, corrections map[string]string) (string, error)
	ContentType() string
}

// TransliteratorOption is a functional option for configuring the Transliterator.
type TransliteratorOption func(*Transliterator)

// WithModel sets the transliteration model. Without one, Process applies the
// dictionary only.
func WithModel(model Model) TransliteratorOption {
	return func(t *Transliterator) {
		t.model = model
	}
}

// WithCache sets the model output cache.
func WithCache(cache TransliterationCache) TransliteratorOption {
	return func(t *Transliterator) {
		t.cache = cache
	}
}

// WithTargetLang sets the target language requested from the model.
func WithTargetLang(lang string) TransliteratorOption {
	return func(t *Transliterator) {
		t.targetLang = lang
	}
}

// WithProcessor registers a content processor.
func WithProcessor(processor ContentProcessor) TransliteratorOption {
	return func(t *Transliterator) {
		t.processors[processor.ContentType()] = processor
	}
}

// WithParallelLookup enables parallel cache lookups for batches of at least
// threshold texts. Useful when the cache is remote.
func WithParallelLookup(threshold int) TransliteratorOption {
	return func(t *Transliterator) {
		t.parallelThreshold = threshold
	}
}

// WithPipelineLogger sets the logger for model fallbacks.
func WithPipelineLogger(logger *slog.Logger) TransliteratorOption {
	return func(t *Transliterator) {
		t.logger = logger
	}
}

// NewTransliterator creates a Transliterator around a Replacer.
func NewTransliterator(replacer *Replacer, opts ...TransliteratorOption) *Transliterator {
	t := &Transliterator{
		replacer:   replacer,
		targetLang: DefaultTargetLang,
		processors: make(map[string]ContentProcessor),
		logger:     slog.Default(),
	}

	for _, opt := range opts {
		opt(t)
	}

	return t
}

// Replacer returns the underlying Replacer.
func (t *Transliterator) Replacer() *Replacer {
	return t.replacer
}

// TargetLang returns the target language.
func (t *Transliterator) TargetLang() string {
	return t.targetLang
}

// Process corrects a batch of original sentences.
func (t *Transliterator) Process(ctx context.Context, batch []string) (*ProcessedBatch, error) {
	replaced, err := t.replacer.ReplaceBatch(batch)
	if err != nil {
		return nil, err
	}

	result := &ProcessedBatch{
		Corrected: replaced.Corrected,
		Missing:   replaced.Missing,
		Total:     len(batch),
	}

	// Only sentences that still hold source-script words need the model.
	var pending []int
	for i, missing := range replaced.Missing {
		if missing[0] != "" {
			pending = append(pending, i)
		}
	}
	if len(pending) == 0 || t.model == nil {
		return result, nil
	}

	texts := make([]string, len(pending))
	for i, idx := range pending {
		texts[i] = replaced.Corrected[idx]
	}

	outputs, cached, called, err := t.transliterateBatch(ctx, texts)
	if err != nil {
		return nil, err
	}
	result.CachedCount = cached
	result.ModelCount = called

	var originals, candidates []string
	var targets []int
	for i, idx := range pending {
		out, ok := outputs[HashText(texts[i])]
		if !ok {
			result.FailedCount++
			continue
		}
		originals = append(originals, batch[idx])
		candidates = append(candidates, out)
		targets = append(targets, idx)
	}

	repaired, err := t.replacer.RepairBatch(originals, candidates)
	if err != nil {
		return nil, err
	}
	for i, idx := range targets {
		result.Corrected[idx] = repaired.Corrected[i]
		result.Missing[idx] = repaired.Missing[i]
	}

	return result, nil
}

// transliterateBatch runs texts through the model, using the cache where
// possible. The result is keyed by text hash; texts the model failed on are
// absent.
func (t *Transliterator) transliterateBatch(ctx context.Context, texts []string) (map[string]string, int, int, error) {
	var outputs map[string]string
	var misses []string
	cachedCount := 0

	if t.cache != nil && t.parallelThreshold > 0 && len(texts) >= t.parallelThreshold {
		outputs, misses = ParallelCacheLookup(t.cache, texts, t.cacheKey)
		for _, text := range texts {
			if _, ok := outputs[HashText(text)]; ok {
				cachedCount++
			}
		}
	} else {
		outputs = make(map[string]string)
		seenHashes := make(map[string]bool)

		// Check cache for each text
		for _, text := range texts {
			hash := HashText(text)
			if t.cache != nil {
				if cached, ok := t.cache.Get(t.cacheKey(hash)); ok {
					outputs[hash] = cached
					cachedCount++
					continue
				}
			}

			// Deduplicate cache misses
			if !seenHashes[hash] {
				misses = append(misses, text)
				seenHashes[hash] = true
			}
		}
	}

	if len(misses) == 0 {
		return outputs, cachedCount, 0, nil
	}

	results, err := t.callModel(ctx, misses)
	if err != nil {
		if ctx.Err() != nil {
			return nil, 0, 0, ctx.Err()
		}
		t.logger.Warn("batch transliteration failed, retrying one sentence at a time",
			"lang", t.replacer.Language().Tag,
			"sentences", len(misses),
			"error", err,
		)
		results, err = t.callModelEach(ctx, misses)
		if err != nil {
			return nil, 0, 0, err
		}
	}

	modelCount := 0
	for i, text := range misses {
		if results[i] == nil {
			continue
		}
		hash := HashText(text)
		outputs[hash] = *results[i]
		if t.cache != nil {
			_ = t.cache.Set(t.cacheKey(hash), *results[i]) // Ignore cache set errors
		}
		modelCount++
	}

	return outputs, cachedCount, modelCount, nil
}

func (t *Transliterator) callModel(ctx context.Context, texts []string) ([]*string, error) {
	out, err := t.model.Transliterate(ctx, t.request(texts))
	if err != nil {
		return nil, err
	}
	if len(out) != len(texts) {
		return nil, &CountMismatchError{Expected: len(texts), Got: len(out)}
	}
	out = trimAll(out)

	results := make([]*string, len(out))
	for i := range out {
		results[i] = &out[i]
	}
	return results, nil
}

// callModelEach calls the model once per text. A failed text yields nil;
// only cancellation aborts the whole batch.
func (t *Transliterator) callModelEach(ctx context.Context, texts []string) ([]*string, error) {
	results := make([]*string, len(texts))
	for i, text := range texts {
		out, err := t.callModel(ctx, []string{text})
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			t.logger.Warn("sentence transliteration failed, keeping dictionary output",
				"lang", t.replacer.Language().Tag,
				"error", err,
			)
			continue
		}
		results[i] = out[0]
	}
	return results, nil
}

func (t *Transliterator) request(texts []string) TransliterateRequest {
	lang := t.replacer.Language()
	return TransliterateRequest{
		Texts:      texts,
		SourceLang: lang.Code,
		SourceName: lang.Name,
		Script:     lang.Script,
		TargetLang: t.targetLang,
	}
}

func (t *Transliterator) cacheKey(hash string) string {
	return CacheKeyExtended(hash, t.replacer.Language().Tag, t.targetLang)
}

// ProcessDocument corrects the source-script text of a document of the
// given content type using the registered processor.
func (t *Transliterator) ProcessDocument(ctx context.Context, content string, contentType string) (*ProcessedContent, error) {
	processor, ok := t.processors[contentType]
	if !ok {
		return nil, &ProcessorError{
			Message:     "no processor registered for content type",
			ContentType: contentType,
		}
	}

	parsed, nodes, err := processor.Extract(content)
	if err != nil {
		return nil, err
	}

	if len(nodes) == 0 {
		return &ProcessedContent{Content: content}, nil
	}

	// Correct each distinct text once
	var texts []string
	seen := make(map[string]bool)
	for _, node := range nodes {
		if !seen[node.Hash] {
			seen[node.Hash] = true
			texts = append(texts, node.Text)
		}
	}

	batch, err := t.Process(ctx, texts)
	if err != nil {
		return nil, err
	}

	corrections := make(map[string]string, len(texts))
	missing := make(map[string]bool)
	for i, text := range texts {
		corrections[HashText(text)] = batch.Corrected[i]
		for _, w := range batch.Missing[i] {
			if w != "" {
				missing[w] = true
			}
		}
	}

	out, err := processor.Apply(parsed, nodes, corrections)
	if err != nil {
		return nil, err
	}

	if contentType == "html" {
		out = t.setHTMLAttributes(out)
	}

	words := make([]string, 0, len(missing))
	for w := range missing {
		words = append(words, w)
	}
	sort.Strings(words)

	return &ProcessedContent{
		Content:     out,
		ModelCount:  batch.ModelCount,
		CachedCount: batch.CachedCount,
		TotalNodes:  len(nodes),
		Missing:     words,
	}, nil
}

// setHTMLAttributes marks the <html> tag as romanized text.
func (t *Transliterator) setHTMLAttributes(html string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return html
	}

	htmlTag := doc.Find("html")
	if htmlTag.Length() == 0 {
		return html
	}

	lang := t.replacer.Language().Tag
	htmlTag.SetAttr("lang", ToHTMLLang(lang))
	if IsRTL(lang) {
		htmlTag.SetAttr("dir", "ltr")
	}

	result, err := doc.Html()
	if err != nil {
		return html
	}

	return result
}

// ProcessHTML is a convenience method for processing HTML content.
func (t *Transliterator) ProcessHTML(ctx context.Context, html string) (*ProcessedContent, error) {
	return t.ProcessDocument(ctx, html, "html")
}

// trimAll returns a copy of texts with every element trimmed.
func trimAll(texts []string) []string {
	out := make([]string, len(texts))
	for i, text := range texts {
		out[i] = strings.TrimSpace(text)
	}
	return out
}

package xlitfix

import (
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/ZaguanLabs/xlitfix/dictionary"
	"github.com/ZaguanLabs/xlitfix/normalize"
	"github.com/ZaguanLabs/xlitfix/script"
)

// Replacer applies a dictionary to batches of source-language sentences.
// It holds no per-call state, so one Replacer may serve concurrent batches.
type Replacer struct {
	lang      script.Language
	profile   script.Profile
	norm      *normalize.Normalizer
	dict      *dictionary.Dictionary
	index     *dictionary.Index
	separator string
	indexOpts []dictionary.IndexOption
	logger    *slog.Logger
	stats     counters
}

// ReplacerOption is a functional option for configuring the Replacer.
type ReplacerOption func(*Replacer)

// WithLogger sets the logger for desync and repair diagnostics.
func WithLogger(logger *slog.Logger) ReplacerOption {
	return func(r *Replacer) {
		r.logger = logger
	}
}

// WithSeparator sets the token that joins a batch for the bulk pass.
func WithSeparator(sep string) ReplacerOption {
	return func(r *Replacer) {
		r.separator = sep
	}
}

// WithIndexOptions passes options to the dictionary index.
func WithIndexOptions(opts ...dictionary.IndexOption) ReplacerOption {
	return func(r *Replacer) {
		r.indexOpts = append(r.indexOpts, opts...)
	}
}

// NewReplacer creates a Replacer for a language tag such as "tam_Taml".
// Dictionary keys are normalized the same way input text is. A nil or empty
// dictionary yields a pass-through Replacer.
func NewReplacer(lang string, dict *dictionary.Dictionary, opts ...ReplacerOption) (*Replacer, error) {
	n, err := normalize.New(lang)
	if err != nil {
		return nil, err
	}

	r := &Replacer{
		lang:      n.Language(),
		profile:   n.Profile(),
		norm:      n,
		separator: DefaultSeparator,
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(r)
	}

	if r.separator == "" || strings.TrimSpace(r.separator) != r.separator || strings.ContainsFunc(r.separator, r.profile.Contains) {
		return nil, fmt.Errorf("invalid separator %q: must be non-empty, without surrounding space or %s runes",
			r.separator, r.profile.Tag)
	}

	r.dict = dict.Canonicalize(n.Normalize)
	r.index = dictionary.NewIndex(r.dict, r.profile, r.indexOpts...)
	if err := r.index.Err(); err != nil {
		return nil, fmt.Errorf("failed to build dictionary index: %w", err)
	}

	return r, nil
}

// Language returns the source language.
func (r *Replacer) Language() script.Language {
	return r.lang
}

// Profile returns the source script profile.
func (r *Replacer) Profile() script.Profile {
	return r.profile
}

// Dictionary returns the normalized dictionary.
func (r *Replacer) Dictionary() *dictionary.Dictionary {
	return r.dict
}

// Normalize returns the canonical form of text for the source language.
func (r *Replacer) Normalize(text string) string {
	return r.norm.Normalize(text)
}

// ReplaceBatch corrects a batch of original sentences with the dictionary and
// reports the source-script words left in each.
//
// The batch is first joined and replaced in one pass. If the result does not
// split back into one segment per sentence, the pass is discarded and every
// sentence is replaced on its own. Only a mismatch that survives that second
// phase is returned, as a *BatchDesyncError.
func (r *Replacer) ReplaceBatch(batch []string) (*BatchResult, error) {
	r.stats.batches.Add(1)
	r.stats.sentences.Add(int64(len(batch)))

	if r.dict.Len() == 0 {
		return &BatchResult{
			Corrected: append([]string(nil), batch...),
			Missing:   emptyMissing(len(batch)),
		}, nil
	}
	if len(batch) == 0 {
		return &BatchResult{Corrected: []string{}, Missing: [][]string{}}, nil
	}

	originals := make([]string, len(batch))
	for i, s := range batch {
		originals[i] = normalize.Terminators(r.profile, s)
	}

	corrected, desynced, err := r.replaceTwoPhase(originals)
	if err != nil {
		return nil, err
	}

	result := &BatchResult{
		Corrected: corrected,
		Missing:   make([][]string, len(corrected)),
		Desynced:  desynced,
	}
	for i := range corrected {
		result.Corrected[i], result.Missing[i] = r.finish(r.Repair(originals[i], corrected[i]))
	}
	return result, nil
}

// replaceTwoPhase runs the joined pass and, on desync, the per-sentence pass.
// The per-sentence pass runs at most once.
func (r *Replacer) replaceTwoPhase(batch []string) ([]string, bool, error) {
	out, err := r.replaceJoined(batch)
	if err == nil {
		return out, false, nil
	}

	var desync *BatchDesyncError
	if !errors.As(err, &desync) {
		return nil, false, err
	}

	r.stats.desyncRetries.Add(1)
	r.logger.Warn("batch desynchronized, replacing sentence by sentence",
		"lang", r.lang.Tag,
		"expected", desync.Expected,
		"got", desync.Got,
	)

	out, err = r.replaceEach(batch)
	if err != nil {
		return nil, true, err
	}
	if len(out) != len(batch) {
		return nil, true, &BatchDesyncError{Expected: len(batch), Got: len(out)}
	}
	return out, true, nil
}

func (r *Replacer) replaceJoined(batch []string) ([]string, error) {
	joined, err := r.replaceText(strings.Join(batch, r.separator))
	if err != nil {
		return nil, err
	}

	segments := strings.Split(joined, r.separator)
	if len(segments) != len(batch) {
		return nil, &BatchDesyncError{Expected: len(batch), Got: len(segments)}
	}
	for i, s := range segments {
		segments[i] = strings.TrimSpace(s)
	}
	return segments, nil
}

func (r *Replacer) replaceEach(batch []string) ([]string, error) {
	out := make([]string, len(batch))
	for i, s := range batch {
		replaced, err := r.replaceText(s)
		if err != nil {
			return nil, err
		}
		out[i] = replaced
	}
	return out, nil
}

func (r *Replacer) replaceText(text string) (string, error) {
	out, err := r.index.Replace(r.norm.Normalize(text))
	if err != nil {
		return "", fmt.Errorf("dictionary replace failed: %w", err)
	}
	return strings.TrimSpace(out), nil
}

// RepairBatch repairs model output against the original sentences it was
// produced from and reports the words left in the source script.
func (r *Replacer) RepairBatch(originals, candidates []string) (*BatchResult, error) {
	if len(originals) != len(candidates) {
		return nil, &CountMismatchError{Expected: len(originals), Got: len(candidates)}
	}

	r.stats.batches.Add(1)
	r.stats.sentences.Add(int64(len(originals)))

	result := &BatchResult{
		Corrected: make([]string, len(candidates)),
		Missing:   make([][]string, len(candidates)),
	}
	for i := range candidates {
		original := normalize.Terminators(r.profile, originals[i])
		result.Corrected[i], result.Missing[i] = r.finish(r.Repair(original, candidates[i]))
	}
	return result, nil
}

// finish applies the dictionary to any whole words the earlier passes missed
// and extracts what is still left in the source script.
func (r *Replacer) finish(sentence string) (string, []string) {
	if r.dict.Len() > 0 {
		for _, w := range r.scriptWords(sentence) {
			if v, ok := r.dict.Lookup(w); ok {
				sentence = dictionary.ReplaceBounded(r.profile, sentence, w, v)
			}
		}
	}
	missing := r.MissingWords(sentence)
	return sentence, missing
}

// MissingWords returns the distinct source-script words in sentence, with
// digits and punctuation removed. It always returns at least one element;
// a sentence with nothing missing yields [""].
func (r *Replacer) MissingWords(sentence string) []string {
	words := r.scriptWords(sentence)
	if len(words) == 0 {
		return []string{""}
	}
	r.stats.missingWords.Add(int64(len(words)))
	return words
}

// scriptWords returns the distinct source-script words of s in order of
// first appearance, after digits and punctuation are blanked out.
func (r *Replacer) scriptWords(s string) []string {
	words := r.profile.ExtractWords(script.StripSymbols(s))
	return dedupe(words)
}

// Repair reverts partially transliterated tokens in transliterated to the
// original spelling and substitutes dictionary words of original that the
// model transliterated on its own. It never fails: if the repair cannot be
// applied, transliterated is returned unchanged and the failure is counted.
func (r *Replacer) Repair(original, transliterated string) (out string) {
	defer func() {
		if rec := recover(); rec != nil {
			out = r.repairFailed(transliterated, &RepairError{
				Sentence: transliterated,
				Message:  "panic during repair",
				Cause:    fmt.Errorf("%v", rec),
			})
		}
	}()

	repaired, err := r.repair(original, transliterated)
	if err != nil {
		return r.repairFailed(transliterated, err)
	}
	return repaired
}

func (r *Replacer) repairFailed(transliterated string, err error) string {
	r.stats.repairFailures.Add(1)
	r.logger.Warn("repair failed, keeping sentence as-is",
		"lang", r.lang.Tag,
		"error", err,
	)
	return transliterated
}

func (r *Replacer) repair(original, transliterated string) (string, error) {
	original = r.norm.Normalize(original)

	out := transliterated
	if mixed := r.mixedWords(transliterated); len(mixed) > 0 {
		alignment := AlignPositional(strings.Fields(transliterated), strings.Fields(original))
		if !alignment.Complete {
			r.stats.alignmentDrift.Add(1)
			r.logger.Debug("token counts differ, positional alignment is partial",
				"lang", r.lang.Tag,
				"pairs", alignment.Pairs,
			)
		}

		for _, w := range mixed {
			src, ok := alignment.Mapping[w]
			if !ok || src == "" {
				return "", &RepairError{Sentence: transliterated, Message: fmt.Sprintf("mixed word %q", w), Cause: ErrNoAlignment}
			}
			out = dictionary.ReplaceBounded(r.profile, out, w, src)
		}
	}

	for _, w := range r.scriptWords(original) {
		if v, ok := r.dict.Lookup(w); ok {
			out = dictionary.ReplaceBounded(r.profile, out, w, v)
		}
	}

	return out, nil
}

// mixedWords returns the distinct punctuation-stripped tokens of s that hold
// both source-script and Latin letters, longest first.
func (r *Replacer) mixedWords(s string) []string {
	var words []string
	for _, tok := range r.profile.ExtractWords(s) {
		if script.ContainsLatin(tok) {
			if w := script.StripPunct(tok); w != "" {
				words = append(words, w)
			}
		}
	}
	words = dedupe(words)
	sort.SliceStable(words, func(i, j int) bool {
		return len(words[i]) > len(words[j])
	})
	return words
}

func dedupe(words []string) []string {
	if len(words) < 2 {
		return words
	}
	seen := make(map[string]bool, len(words))
	out := words[:0]
	for _, w := range words {
		if !seen[w] {
			seen[w] = true
			out = append(out, w)
		}
	}
	return out
}

func emptyMissing(n int) [][]string {
	out := make([][]string, n)
	for i := range out {
		out[i] = []string{""}
	}
	return out
}

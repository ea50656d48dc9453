// Package dictionary holds the source-word to target-word mapping used to
// correct transliterations, and the index that applies it to text.
package dictionary

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

var (
	// ErrEmptyKey is returned when a dictionary entry has an empty source word.
	ErrEmptyKey = errors.New("empty dictionary key")

	// ErrAutomaton is returned when the trie automaton cannot be built for a
	// dictionary (e.g., it exceeds the configured node capacity).
	ErrAutomaton = errors.New("automaton unavailable")

	// ErrRegex is returned when the boundary regex cannot be compiled.
	ErrRegex = errors.New("boundary regex unavailable")
)

// Dictionary is an immutable mapping from source-script word to its
// target-script replacement. The zero value is an empty dictionary.
type Dictionary struct {
	entries map[string]string
	keys    []string // sorted
}

// New copies entries into a Dictionary. Keys and values are trimmed of
// surrounding whitespace; an empty key is rejected.
func New(entries map[string]string) (*Dictionary, error) {
	m := make(map[string]string, len(entries))
	for k, v := range entries {
		key := strings.TrimSpace(k)
		if key == "" {
			return nil, fmt.Errorf("%w (value %q)", ErrEmptyKey, v)
		}
		m[key] = strings.TrimSpace(v)
	}
	return build(m), nil
}

func build(m map[string]string) *Dictionary {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return &Dictionary{entries: m, keys: keys}
}

// Len returns the number of entries.
func (d *Dictionary) Len() int {
	if d == nil {
		return 0
	}
	return len(d.keys)
}

// Lookup returns the replacement for key.
func (d *Dictionary) Lookup(key string) (string, bool) {
	if d == nil {
		return "", false
	}
	v, ok := d.entries[key]
	return v, ok
}

// Keys returns the source words in sorted order. The slice must not be modified.
func (d *Dictionary) Keys() []string {
	if d == nil {
		return nil
	}
	return d.keys
}

// Entries returns a copy of the mapping.
func (d *Dictionary) Entries() map[string]string {
	out := make(map[string]string, d.Len())
	for _, k := range d.Keys() {
		out[k] = d.entries[k]
	}
	return out
}

// Canonicalize returns a dictionary whose keys have been passed through fn.
// When two keys canonicalize to the same form, the one that sorts later wins.
// Keys that canonicalize to an empty string are dropped.
func (d *Dictionary) Canonicalize(fn func(string) string) *Dictionary {
	m := make(map[string]string, d.Len())
	for _, k := range d.Keys() {
		ck := strings.TrimSpace(fn(k))
		if ck == "" {
			continue
		}
		m[ck] = d.entries[k]
	}
	return build(m)
}

// Merge combines dictionaries left to right; entries in later dictionaries
// override earlier ones.
func Merge(dicts ...*Dictionary) *Dictionary {
	m := make(map[string]string)
	for _, d := range dicts {
		for _, k := range d.Keys() {
			m[k] = d.entries[k]
		}
	}
	return build(m)
}

// Uncovered returns the words that are not keys of d, deduplicated in
// first-seen order.
func Uncovered(d *Dictionary, words []string) []string {
	seen := make(map[string]bool, len(words))
	var out []string
	for _, w := range words {
		if w == "" || seen[w] {
			continue
		}
		seen[w] = true
		if _, ok := d.Lookup(w); !ok {
			out = append(out, w)
		}
	}
	return out
}

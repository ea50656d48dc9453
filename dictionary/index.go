package dictionary

import (
	"errors"
	"fmt"
	"regexp"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
	"unicode/utf8"

	"github.com/ZaguanLabs/xlitfix/script"
)

// Index applies a dictionary to text. A key matches only where it is not
// preceded or followed by another rune of the source script, and at each
// position the longest such key wins.
//
// An Index is built once and is safe for concurrent use.
type Index struct {
	dict     *Dictionary
	profile  script.Profile
	maxNodes int

	nodes    []trieNode
	buildErr error

	reOnce sync.Once
	re     *regexp.Regexp
	reErr  error

	fallbacks atomic.Int64
}

type trieNode struct {
	next     map[rune]int32
	value    string
	terminal bool
}

// IndexOption configures an Index.
type IndexOption func(*Index)

// WithMaxNodes caps the size of the trie automaton. Dictionaries that need
// more nodes are served by the boundary regex instead. Zero means no limit.
func WithMaxNodes(n int) IndexOption {
	return func(x *Index) {
		x.maxNodes = n
	}
}

// NewIndex builds the trie automaton for d. The boundary regex is compiled on
// first use.
func NewIndex(d *Dictionary, p script.Profile, opts ...IndexOption) *Index {
	if d == nil {
		d = build(map[string]string{})
	}
	x := &Index{dict: d, profile: p}
	for _, opt := range opts {
		opt(x)
	}
	x.buildErr = x.buildTrie()
	return x
}

func (x *Index) buildTrie() error {
	nodes := []trieNode{{}}
	for _, k := range x.dict.Keys() {
		cur := 0
		for _, r := range k {
			next, ok := nodes[cur].next[r]
			if !ok {
				if x.maxNodes > 0 && len(nodes) >= x.maxNodes {
					return fmt.Errorf("%w: more than %d trie nodes", ErrAutomaton, x.maxNodes)
				}
				if nodes[cur].next == nil {
					nodes[cur].next = make(map[rune]int32)
				}
				nodes = append(nodes, trieNode{})
				next = int32(len(nodes) - 1)
				nodes[cur].next[r] = next
			}
			cur = int(next)
		}
		nodes[cur].terminal = true
		nodes[cur].value = x.dict.entries[k]
	}
	x.nodes = nodes
	return nil
}

// Dictionary returns the indexed dictionary.
func (x *Index) Dictionary() *Dictionary {
	return x.dict
}

// Profile returns the script whose runes delimit matches.
func (x *Index) Profile() script.Profile {
	return x.profile
}

// Err reports whether the index can serve Replace at all: nil when the
// automaton was built, otherwise the boundary regex compile error if any.
func (x *Index) Err() error {
	if x.buildErr == nil || x.dict.Len() == 0 {
		return nil
	}
	_, err := x.regex()
	return err
}

// Fallbacks returns how many Replace calls were served by the boundary regex.
func (x *Index) Fallbacks() int64 {
	return x.fallbacks.Load()
}

// Replace substitutes every dictionary key in text. It uses the automaton and
// falls back to the boundary regex only when the automaton is unavailable.
func (x *Index) Replace(text string) (string, error) {
	out, err := x.ReplaceAutomaton(text)
	if err == nil {
		return out, nil
	}
	if !errors.Is(err, ErrAutomaton) {
		return "", err
	}

	x.fallbacks.Add(1)
	return x.ReplaceRegex(text)
}

// ReplaceAutomaton substitutes keys with a single left-to-right scan of the
// trie. It returns ErrAutomaton if the trie could not be built.
func (x *Index) ReplaceAutomaton(text string) (string, error) {
	if x.buildErr != nil {
		return "", x.buildErr
	}
	if x.dict.Len() == 0 {
		return text, nil
	}

	var b strings.Builder
	b.Grow(len(text))

	last := 0
	prevWord := false
	for i := 0; i < len(text); {
		if !prevWord {
			if end, value, ok := x.longest(text, i); ok {
				b.WriteString(text[last:i])
				b.WriteString(value)
				r, _ := utf8.DecodeLastRuneInString(text[i:end])
				prevWord = x.profile.IsWordRune(r)
				last, i = end, end
				continue
			}
		}
		r, size := utf8.DecodeRuneInString(text[i:])
		prevWord = x.profile.IsWordRune(r)
		i += size
	}
	b.WriteString(text[last:])

	return b.String(), nil
}

// longest returns the end offset and value of the longest key starting at i
// that ends on a boundary.
func (x *Index) longest(text string, i int) (int, string, bool) {
	cur := int32(0)
	end, value, found := 0, "", false
	for j := i; j < len(text); {
		r, size := utf8.DecodeRuneInString(text[j:])
		next, ok := x.nodes[cur].next[r]
		if !ok {
			break
		}
		cur = next
		j += size
		if x.nodes[cur].terminal && endsOnBoundary(x.profile, text, j) {
			end, value, found = j, x.nodes[cur].value, true
		}
	}
	return end, value, found
}

// ReplaceRegex substitutes keys using a compiled alternation of all keys.
// It returns ErrRegex if the alternation cannot be compiled.
func (x *Index) ReplaceRegex(text string) (string, error) {
	if x.dict.Len() == 0 {
		return text, nil
	}
	re, err := x.regex()
	if err != nil {
		return "", err
	}

	var b strings.Builder
	b.Grow(len(text))

	last := 0
	for pos := 0; pos < len(text); {
		loc := re.FindStringSubmatchIndex(text[pos:])
		if loc == nil {
			break
		}
		start, end := pos+loc[2], pos+loc[3]

		if !startsOnBoundary(x.profile, text, start) {
			_, size := utf8.DecodeRuneInString(text[start:])
			pos = start + size
			continue
		}

		b.WriteString(text[last:start])
		b.WriteString(x.dict.entries[text[start:end]])
		last, pos = end, end
	}
	b.WriteString(text[last:])

	return b.String(), nil
}

// regex compiles the alternation once. Longer keys come first so the leftmost
// alternative that matches is also the longest.
func (x *Index) regex() (*regexp.Regexp, error) {
	x.reOnce.Do(func() {
		keys := make([]string, len(x.dict.Keys()))
		copy(keys, x.dict.Keys())
		sort.SliceStable(keys, func(i, j int) bool {
			if len(keys[i]) != len(keys[j]) {
				return len(keys[i]) > len(keys[j])
			}
			return keys[i] < keys[j]
		})

		quoted := make([]string, len(keys))
		for i, k := range keys {
			quoted[i] = regexp.QuoteMeta(k)
		}

		notScript := "[^" + strings.TrimPrefix(x.profile.WordClass(), "[")
		pattern := "(" + strings.Join(quoted, "|") + ")(?:" + notScript + "|$)"

		re, err := regexp.Compile(pattern)
		if err != nil {
			x.reErr = fmt.Errorf("%w: %v", ErrRegex, err)
			return
		}
		x.re = re
	})
	return x.re, x.reErr
}

// ReplaceBounded substitutes every occurrence of word in text that is not
// adjacent to a letter or sign of the script p.
func ReplaceBounded(p script.Profile, text, word, value string) string {
	if word == "" || !strings.Contains(text, word) {
		return text
	}

	var b strings.Builder
	b.Grow(len(text))

	last := 0
	for pos := 0; pos < len(text); {
		idx := strings.Index(text[pos:], word)
		if idx < 0 {
			break
		}
		start := pos + idx
		end := start + len(word)

		if !startsOnBoundary(p, text, start) || !endsOnBoundary(p, text, end) {
			_, size := utf8.DecodeRuneInString(text[start:])
			pos = start + size
			continue
		}

		b.WriteString(text[last:start])
		b.WriteString(value)
		last, pos = end, end
	}
	b.WriteString(text[last:])

	return b.String()
}

func startsOnBoundary(p script.Profile, text string, start int) bool {
	if start == 0 {
		return true
	}
	r, _ := utf8.DecodeLastRuneInString(text[:start])
	return !p.IsWordRune(r)
}

func endsOnBoundary(p script.Profile, text string, end int) bool {
	if end >= len(text) {
		return true
	}
	r, _ := utf8.DecodeRuneInString(text[end:])
	return !p.IsWordRune(r)
}

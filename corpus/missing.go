package corpus

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"sync"

	"github.com/ZaguanLabs/xlitfix/script"
)

// MissingLog aggregates the distinct missing words of a run in first-seen
// order. It is safe for concurrent use.
type MissingLog struct {
	mu    sync.Mutex
	seen  map[string]bool
	words []string
}

// NewMissingLog creates an empty MissingLog.
func NewMissingLog() *MissingLog {
	return &MissingLog{seen: make(map[string]bool)}
}

// Add records words. Empty strings are ignored.
func (m *MissingLog) Add(words ...string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, w := range words {
		if w == "" || m.seen[w] {
			continue
		}
		m.seen[w] = true
		m.words = append(m.words, w)
	}
}

// Len returns the number of distinct words.
func (m *MissingLog) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.words)
}

// Words returns a copy of the recorded words.
func (m *MissingLog) Words() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.words...)
}

// WriteFile writes the words to <dir>/<lang>.csv under a missing_words
// header, creating dir if needed, and returns the path.
func (m *MissingLog) WriteFile(dir, lang string) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("creating missing-word dir: %w", err)
	}

	path := filepath.Join(dir, lang+".csv")
	f, err := os.Create(path) // #nosec G304 - directory is operator-provided
	if err != nil {
		return "", fmt.Errorf("creating missing-word log: %w", err)
	}

	err = WriteWords(f, "missing_words", m.Words())
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return "", fmt.Errorf("writing missing-word log: %w", err)
	}
	return path, nil
}

// WriteWords writes a single-column CSV of words under header.
func WriteWords(out io.Writer, header string, words []string) error {
	w := csv.NewWriter(out)
	if err := w.Write([]string{header}); err != nil {
		return err
	}
	for _, word := range words {
		if err := w.Write([]string{word}); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

var latinWord = regexp.MustCompile(`[A-Za-z]+`)

// UniqueWords returns the distinct words of texts in first-seen order, with
// Latin words, digits and punctuation removed.
func UniqueWords(texts []string) []string {
	seen := make(map[string]bool)
	var out []string
	for _, text := range texts {
		text = latinWord.ReplaceAllString(text, " ")
		text = script.StripSymbols(text)
		for _, w := range strings.Fields(text) {
			if !seen[w] {
				seen[w] = true
				out = append(out, w)
			}
		}
	}
	return out
}

package dictionary

import (
	"bufio"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// pairSeparator separates key and value in the line-oriented format.
const pairSeparator = "=>"

// LoadFile reads a dictionary from path, choosing the format by extension:
// .json (a single object), .txt (key=>value lines), .tsv or .csv (two columns).
func LoadFile(path string) (*Dictionary, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open dictionary: %w", err)
	}
	defer f.Close()

	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return LoadJSON(f)
	case ".txt":
		return LoadPairs(f)
	case ".tsv":
		return LoadDelimited(f, '\t')
	case ".csv":
		return LoadDelimited(f, ',')
	default:
		return nil, fmt.Errorf("unsupported dictionary format: %q", filepath.Ext(path))
	}
}

// LoadJSON reads a JSON object of string to string.
func LoadJSON(r io.Reader) (*Dictionary, error) {
	var m map[string]string
	if err := json.NewDecoder(r).Decode(&m); err != nil {
		return nil, fmt.Errorf("failed to decode dictionary: %w", err)
	}
	return New(m)
}

// LoadPairs reads one key=>value entry per line. Blank lines and lines
// starting with # are skipped. A line without a separator maps the word to
// itself.
func LoadPairs(r io.Reader) (*Dictionary, error) {
	m := make(map[string]string)
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		key, value, found := strings.Cut(line, pairSeparator)
		if !found {
			value = key
		}
		key = strings.TrimSpace(key)
		if key == "" {
			return nil, fmt.Errorf("line %d: %w", lineNo, ErrEmptyKey)
		}
		m[key] = strings.TrimSpace(value)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read dictionary: %w", err)
	}
	return New(m)
}

// LoadDelimited reads two-column records separated by comma. Extra columns
// are ignored. Later rows override earlier rows with the same key.
func LoadDelimited(r io.Reader, comma rune) (*Dictionary, error) {
	cr := csv.NewReader(r)
	cr.Comma = comma
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true

	m := make(map[string]string)
	for {
		record, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read dictionary: %w", err)
		}
		if len(record) < 2 {
			continue
		}
		m[record[0]] = record[1]
	}
	return New(m)
}

// WriteJSON writes d as an indented JSON object.
func WriteJSON(w io.Writer, d *Dictionary) error {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	return enc.Encode(d.Entries())
}

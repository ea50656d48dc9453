// Package corpus reads sentence records from CSV and JSONL corpora, writes
// corrected results back out and aggregates missing words.
package corpus

import (
	"errors"
	"io"
	"strings"

	"github.com/google/uuid"
)

// Default column names of the corpus files.
const (
	DefaultIDColumn   = "doc_id"
	DefaultTextColumn = "translated"
)

// ErrMissingColumn is returned when a corpus lacks the text column.
var ErrMissingColumn = errors.New("column not found")

// Record is one sentence of a corpus.
type Record struct {
	ID   string `json:"id"`
	Text string `json:"text"`
}

// Result is a corrected record.
type Result struct {
	Record
	Transliterated string   `json:"transliterated"`
	MissingWords   []string `json:"missing_words"`
}

// Reader yields records until io.EOF.
type Reader interface {
	Read() (Record, error)
}

// Writer persists results.
type Writer interface {
	Write(Result) error
	Flush() error
}

// ReadBatch reads up to n records with non-blank text from r. It returns
// io.EOF only when no record was read.
func ReadBatch(r Reader, n int) ([]Record, error) {
	batch := make([]Record, 0, n)
	for len(batch) < n {
		rec, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}
		if strings.TrimSpace(rec.Text) == "" {
			continue
		}
		batch = append(batch, rec)
	}
	if len(batch) == 0 {
		return nil, io.EOF
	}
	return batch, nil
}

// Texts returns the text of each record.
func Texts(records []Record) []string {
	out := make([]string, len(records))
	for i, r := range records {
		out[i] = r.Text
	}
	return out
}

type limitReader struct {
	r    Reader
	left int
}

// Limit returns a Reader that stops after n records with non-blank text.
// A non-positive n means no limit.
func Limit(r Reader, n int) Reader {
	if n <= 0 {
		return r
	}
	return &limitReader{r: r, left: n}
}

func (l *limitReader) Read() (Record, error) {
	for l.left > 0 {
		rec, err := l.r.Read()
		if err != nil {
			return Record{}, err
		}
		if strings.TrimSpace(rec.Text) == "" {
			continue
		}
		l.left--
		return rec, nil
	}
	return Record{}, io.EOF
}

func newID() string {
	return uuid.NewString()
}

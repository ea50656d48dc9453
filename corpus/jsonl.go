package corpus

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
)

const maxLine = 16 << 20

// JSONLReader reads records from newline-delimited JSON objects.
type JSONLReader struct {
	sc         *bufio.Scanner
	idColumn   string
	textColumn string
	line       int
}

// NewJSONLReader creates a reader over the named id and text fields.
func NewJSONLReader(r io.Reader, idColumn, textColumn string) *JSONLReader {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), maxLine)
	return &JSONLReader{sc: sc, idColumn: idColumn, textColumn: textColumn}
}

// Read returns the next record. Blank lines are skipped; a line that is not
// a JSON object is an error.
func (j *JSONLReader) Read() (Record, error) {
	for j.sc.Scan() {
		j.line++
		line := bytes.TrimSpace(j.sc.Bytes())
		if len(line) == 0 {
			continue
		}

		var obj map[string]any
		if err := json.Unmarshal(line, &obj); err != nil {
			return Record{}, fmt.Errorf("line %d: %w", j.line, err)
		}

		rec := Record{ID: stringify(obj[j.idColumn]), Text: stringify(obj[j.textColumn])}
		if rec.ID == "" {
			rec.ID = newID()
		}
		return rec, nil
	}
	if err := j.sc.Err(); err != nil {
		return Record{}, err
	}
	return Record{}, io.EOF
}

func stringify(v any) string {
	switch v := v.(type) {
	case nil:
		return ""
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	default:
		return fmt.Sprint(v)
	}
}

// JSONLWriter writes results as newline-delimited JSON.
type JSONLWriter struct {
	bw  *bufio.Writer
	enc *json.Encoder
}

// NewJSONLWriter creates a JSONLWriter.
func NewJSONLWriter(w io.Writer) *JSONLWriter {
	bw := bufio.NewWriter(w)
	enc := json.NewEncoder(bw)
	enc.SetEscapeHTML(false)
	return &JSONLWriter{bw: bw, enc: enc}
}

// Write writes one result.
func (j *JSONLWriter) Write(res Result) error {
	return j.enc.Encode(res)
}

// Flush flushes buffered lines.
func (j *JSONLWriter) Flush() error {
	return j.bw.Flush()
}

var (
	_ Reader = (*JSONLReader)(nil)
	_ Writer = (*JSONLWriter)(nil)
)

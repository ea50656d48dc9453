package corpus

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
)

// CSVReader reads records from a CSV file with a header row.
type CSVReader struct {
	r       *csv.Reader
	idCol   int
	textCol int
}

// NewCSVReader creates a reader over the named id and text columns. If the
// id column is absent every record gets a random id.
func NewCSVReader(r io.Reader, idColumn, textColumn string) (*CSVReader, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true

	header, err := cr.Read()
	if err != nil {
		if err == io.EOF {
			return nil, fmt.Errorf("reading header: empty input")
		}
		return nil, fmt.Errorf("reading header: %w", err)
	}

	c := &CSVReader{r: cr, idCol: -1, textCol: -1}
	for i, name := range header {
		switch name {
		case idColumn:
			c.idCol = i
		case textColumn:
			c.textCol = i
		}
	}
	if c.textCol < 0 {
		return nil, fmt.Errorf("%w: %q", ErrMissingColumn, textColumn)
	}
	return c, nil
}

// Read returns the next record.
func (c *CSVReader) Read() (Record, error) {
	row, err := c.r.Read()
	if err != nil {
		return Record{}, err
	}

	rec := Record{ID: field(row, c.idCol), Text: field(row, c.textCol)}
	if rec.ID == "" {
		rec.ID = newID()
	}
	return rec, nil
}

func field(row []string, i int) string {
	if i < 0 || i >= len(row) {
		return ""
	}
	return row[i]
}

// CSVWriter writes results as CSV with a header row. Missing words are
// stored as a JSON array.
type CSVWriter struct {
	w           *csv.Writer
	wroteHeader bool
}

// NewCSVWriter creates a CSVWriter.
func NewCSVWriter(w io.Writer) *CSVWriter {
	return &CSVWriter{w: csv.NewWriter(w)}
}

// Write writes one result.
func (c *CSVWriter) Write(res Result) error {
	if !c.wroteHeader {
		if err := c.w.Write([]string{"id", "text", "transliterated", "missing_words"}); err != nil {
			return err
		}
		c.wroteHeader = true
	}

	missing, err := json.Marshal(res.MissingWords)
	if err != nil {
		return err
	}
	return c.w.Write([]string{res.ID, res.Text, res.Transliterated, string(missing)})
}

// Flush flushes buffered rows.
func (c *CSVWriter) Flush() error {
	c.w.Flush()
	return c.w.Error()
}

var (
	_ Reader = (*CSVReader)(nil)
	_ Writer = (*CSVWriter)(nil)
)

package dictionary

import (
	"context"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
)

// DefaultTable is the table PostgresSource reads when none is configured.
const DefaultTable = "dictionary_entries"

// Querier is the subset of a pgx connection or pool used to load entries.
type Querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

// PostgresSource loads dictionary entries from a table with the columns
// lang, source_word and target_word.
type PostgresSource struct {
	db    Querier
	table string
}

// NewPostgresSource creates a source reading from table.
func NewPostgresSource(db Querier, table string) *PostgresSource {
	if table == "" {
		table = DefaultTable
	}
	return &PostgresSource{db: db, table: table}
}

// Load returns the entries for a language tag such as "tam_Taml".
func (s *PostgresSource) Load(ctx context.Context, lang string) (*Dictionary, error) {
	query, args, err := sq.Select("source_word", "target_word").
		From(s.table).
		Where(sq.Eq{"lang": lang}).
		PlaceholderFormat(sq.Dollar).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build query: %w", err)
	}

	rows, err := s.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query dictionary: %w", err)
	}
	defer rows.Close()

	m := make(map[string]string)
	for rows.Next() {
		var source, target string
		if err := rows.Scan(&source, &target); err != nil {
			return nil, fmt.Errorf("failed to scan dictionary row: %w", err)
		}
		m[source] = target
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read dictionary rows: %w", err)
	}

	return New(m)
}

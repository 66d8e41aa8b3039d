package corpus

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/lib/pq"
)

// PostgresStore is the Postgres-backed corpus store for deployments that
// share one corpus database across replicas. Schema mirrors SQLiteStore.
type PostgresStore struct {
	db *sql.DB
}

// OpenPostgresStore connects to the corpus database.
func OpenPostgresStore(dsn string) (*PostgresStore, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("open corpus db: %w", err)
	}
	s := &PostgresStore{db: db}
	if err := s.migrate(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

// NewPostgresStore wraps an existing database handle.
func NewPostgresStore(db *sql.DB) (*PostgresStore, error) {
	s := &PostgresStore{db: db}
	if err := s.migrate(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *PostgresStore) migrate() error {
	query := `
	CREATE TABLE IF NOT EXISTS rules (
		rule_id TEXT PRIMARY KEY,
		source TEXT NOT NULL,
		category TEXT NOT NULL DEFAULT '',
		regulation_text TEXT NOT NULL
	);
	CREATE TABLE IF NOT EXISTS vocabulary (
		term TEXT PRIMARY KEY,
		term_index INTEGER NOT NULL,
		doc_freq INTEGER NOT NULL
	);
	CREATE TABLE IF NOT EXISTS corpus_meta (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL
	);`
	_, err := s.db.ExecContext(context.Background(), query)
	return err
}

// Save replaces the stored corpus in one transaction.
func (s *PostgresStore) Save(ctx context.Context, ix *Index) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	for _, stmt := range []string{`DELETE FROM rules`, `DELETE FROM vocabulary`, `DELETE FROM corpus_meta`} {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}

	for _, r := range ix.Rules() {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO rules (rule_id, source, category, regulation_text) VALUES ($1, $2, $3, $4)`,
			r.RuleID, r.Source, r.Category, r.RegulationText)
		if err != nil {
			return fmt.Errorf("store rule %s: %w", r.RuleID, err)
		}
	}

	vocab := ix.Vocabulary()
	for term, idx := range vocab.Terms {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO vocabulary (term, term_index, doc_freq) VALUES ($1, $2, $3)`,
			term, idx, vocab.DocFreq[idx])
		if err != nil {
			return fmt.Errorf("store term %q: %w", term, err)
		}
	}

	meta := map[string]string{
		"num_docs": fmt.Sprintf("%d", vocab.NumDocs),
		"version":  ix.Version(),
		"built_at": ix.BuiltAt().Format(time.RFC3339Nano),
	}
	for k, v := range meta {
		if _, err := tx.ExecContext(ctx, `INSERT INTO corpus_meta (key, value) VALUES ($1, $2)`, k, v); err != nil {
			return err
		}
	}

	return tx.Commit()
}

// Load restores the index from the stored corpus.
func (s *PostgresStore) Load(ctx context.Context) (*Index, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT rule_id, source, category, regulation_text FROM rules ORDER BY rule_id`)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var rules []RuleEntry
	for rows.Next() {
		var r RuleEntry
		if err := rows.Scan(&r.RuleID, &r.Source, &r.Category, &r.RegulationText); err != nil {
			return nil, err
		}
		rules = append(rules, r)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(rules) == 0 {
		return nil, fmt.Errorf("corpus store is empty")
	}

	vrows, err := s.db.QueryContext(ctx, `SELECT term, term_index, doc_freq FROM vocabulary`)
	if err != nil {
		return nil, err
	}
	defer func() { _ = vrows.Close() }()

	terms := make(map[string]int)
	dfByIdx := make(map[int]int)
	maxIdx := -1
	for vrows.Next() {
		var term string
		var idx, df int
		if err := vrows.Scan(&term, &idx, &df); err != nil {
			return nil, err
		}
		terms[term] = idx
		dfByIdx[idx] = df
		if idx > maxIdx {
			maxIdx = idx
		}
	}
	if err := vrows.Err(); err != nil {
		return nil, err
	}

	vocab := Vocabulary{Terms: terms, DocFreq: make([]int, maxIdx+1)}
	for idx, df := range dfByIdx {
		vocab.DocFreq[idx] = df
	}
	err = s.db.QueryRowContext(ctx, `SELECT value FROM corpus_meta WHERE key = 'num_docs'`).Scan(&vocab.NumDocs)
	if err != nil {
		return nil, fmt.Errorf("corpus meta missing num_docs: %w", err)
	}

	var version string
	err = s.db.QueryRowContext(ctx, `SELECT value FROM corpus_meta WHERE key = 'version'`).Scan(&version)
	if err != nil && err != sql.ErrNoRows {
		return nil, err
	}

	return RestoreIndex(rules, vocab, version)
}

// Close releases the database handle.
func (s *PostgresStore) Close() error { return s.db.Close() }

package corpus

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"
)

// SQLiteStore persists a built corpus (rules plus fitted vocabulary) so a
// server can restore the index snapshot without refitting.
type SQLiteStore struct {
	db *sql.DB
}

// OpenSQLiteStore opens (creating if needed) a corpus database at path.
func OpenSQLiteStore(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open corpus db: %w", err)
	}
	s := &SQLiteStore{db: db}
	if err := s.migrate(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

// NewSQLiteStore wraps an existing database handle.
func NewSQLiteStore(db *sql.DB) (*SQLiteStore, error) {
	s := &SQLiteStore{db: db}
	if err := s.migrate(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *SQLiteStore) migrate() error {
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

// Save replaces the stored corpus with the given index, atomically within
// one transaction.
func (s *SQLiteStore) Save(ctx context.Context, ix *Index) error {
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
			`INSERT INTO rules (rule_id, source, category, regulation_text) VALUES (?, ?, ?, ?)`,
			r.RuleID, r.Source, r.Category, r.RegulationText)
		if err != nil {
			return fmt.Errorf("store rule %s: %w", r.RuleID, err)
		}
	}

	vocab := ix.Vocabulary()
	for term, idx := range vocab.Terms {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO vocabulary (term, term_index, doc_freq) VALUES (?, ?, ?)`,
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
		if _, err := tx.ExecContext(ctx, `INSERT INTO corpus_meta (key, value) VALUES (?, ?)`, k, v); err != nil {
			return err
		}
	}

	return tx.Commit()
}

// Load restores the index from the stored corpus.
func (s *SQLiteStore) Load(ctx context.Context) (*Index, error) {
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

	vocab, err := s.loadVocabulary(ctx)
	if err != nil {
		return nil, err
	}

	var version string
	err = s.db.QueryRowContext(ctx, `SELECT value FROM corpus_meta WHERE key = 'version'`).Scan(&version)
	if err != nil && err != sql.ErrNoRows {
		return nil, err
	}

	return RestoreIndex(rules, vocab, version)
}

func (s *SQLiteStore) loadVocabulary(ctx context.Context) (Vocabulary, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT term, term_index, doc_freq FROM vocabulary`)
	if err != nil {
		return Vocabulary{}, err
	}
	defer func() { _ = rows.Close() }()

	type entry struct {
		idx int
		df  int
	}
	byTerm := make(map[string]entry)
	maxIdx := -1
	for rows.Next() {
		var term string
		var e entry
		if err := rows.Scan(&term, &e.idx, &e.df); err != nil {
			return Vocabulary{}, err
		}
		byTerm[term] = e
		if e.idx > maxIdx {
			maxIdx = e.idx
		}
	}
	if err := rows.Err(); err != nil {
		return Vocabulary{}, err
	}

	vocab := Vocabulary{
		Terms:   make(map[string]int, len(byTerm)),
		DocFreq: make([]int, maxIdx+1),
	}
	for term, e := range byTerm {
		vocab.Terms[term] = e.idx
		vocab.DocFreq[e.idx] = e.df
	}

	var numDocs int
	err = s.db.QueryRowContext(ctx, `SELECT value FROM corpus_meta WHERE key = 'num_docs'`).Scan(&numDocs)
	if err != nil {
		return Vocabulary{}, fmt.Errorf("corpus meta missing num_docs: %w", err)
	}
	vocab.NumDocs = numDocs
	return vocab, nil
}

// Close releases the database handle.
func (s *SQLiteStore) Close() error { return s.db.Close() }

// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package retriever

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/pdiddy/lex-engine/pkg/types"
)

const (
	dbFile       = "corpus.db"
	defaultTopK  = 4
	maxChunkSize = 1200
)

// Store is a SQLite FTS5 retrieval index over ingested corpus documents.
type Store struct {
	db   *sql.DB
	topK int
}

// NewStore opens or creates the corpus database at IndexDir/corpus.db,
// creating the schema when missing.
func NewStore(cfg types.RetrieverConfig) (*Store, error) {
	if err := os.MkdirAll(cfg.IndexDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating index directory: %w", err)
	}

	dbPath := filepath.Join(cfg.IndexDir, dbFile)
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	topK := cfg.TopK
	if topK <= 0 {
		topK = defaultTopK
	}

	s := &Store{db: db, topK: topK}
	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	return s, nil
}

// Close releases the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) createSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS documents (
			id TEXT PRIMARY KEY,
			title TEXT,
			source_path TEXT,
			file_mod_time TEXT
		)`,
		`CREATE TABLE IF NOT EXISTS chunks (
			rowid INTEGER PRIMARY KEY AUTOINCREMENT,
			doc_id TEXT NOT NULL REFERENCES documents(id),
			seq INTEGER NOT NULL,
			content TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_chunks_doc_id ON chunks(doc_id)`,
	}
	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}

	var ftsExists int
	if err := s.db.QueryRow(
		`SELECT count(*) FROM sqlite_master WHERE type='table' AND name='chunks_fts'`,
	).Scan(&ftsExists); err != nil {
		return fmt.Errorf("checking FTS table: %w", err)
	}

	if ftsExists == 0 {
		ftsStatements := []string{
			`CREATE VIRTUAL TABLE chunks_fts USING fts5(content, content=chunks, content_rowid=rowid)`,
			`CREATE TRIGGER chunks_ai AFTER INSERT ON chunks BEGIN
				INSERT INTO chunks_fts(rowid, content) VALUES (new.rowid, new.content);
			END`,
			`CREATE TRIGGER chunks_ad AFTER DELETE ON chunks BEGIN
				INSERT INTO chunks_fts(chunks_fts, rowid, content) VALUES('delete', old.rowid, old.content);
			END`,
		}
		for _, stmt := range ftsStatements {
			if _, err := s.db.Exec(stmt); err != nil {
				return fmt.Errorf("creating FTS infrastructure: %w", err)
			}
		}
	}

	return nil
}

// IngestSummary holds counts from a corpus indexing run.
type IngestSummary struct {
	Indexed int
	Updated int
	Skipped int
	Failed  int
}

// Ingest reads Markdown and plain-text documents from corpusDir and
// populates the index. Unchanged files are detected by modification
// time and skipped, so re-running over a grown corpus is cheap.
func (s *Store) Ingest(ctx context.Context, corpusDir string, w io.Writer) (IngestSummary, error) {
	entries, err := os.ReadDir(corpusDir)
	if err != nil {
		return IngestSummary{}, fmt.Errorf("reading corpus directory %s: %w", corpusDir, err)
	}

	var summary IngestSummary
	for _, entry := range entries {
		ext := filepath.Ext(entry.Name())
		if entry.IsDir() || (ext != ".md" && ext != ".txt") {
			continue
		}

		select {
		case <-ctx.Done():
			return summary, ctx.Err()
		default:
		}

		docID := strings.TrimSuffix(entry.Name(), ext)
		path := filepath.Join(corpusDir, entry.Name())

		info, err := entry.Info()
		if err != nil {
			fmt.Fprintf(w, "failed  %s: %v\n", docID, err)
			summary.Failed++
			continue
		}
		modTime := info.ModTime().UTC().Format(time.RFC3339Nano)

		var storedModTime string
		err = s.db.QueryRowContext(ctx,
			`SELECT file_mod_time FROM documents WHERE id = ?`, docID,
		).Scan(&storedModTime)

		if err == nil && storedModTime == modTime {
			fmt.Fprintf(w, "skipped %s\n", docID)
			summary.Skipped++
			continue
		}
		isUpdate := err == nil

		data, err := os.ReadFile(path)
		if err != nil {
			fmt.Fprintf(w, "failed  %s: %v\n", docID, err)
			summary.Failed++
			continue
		}

		chunks := chunkDocument(string(data))
		if err := s.ingestDocument(ctx, docID, path, titleOf(string(data), docID), modTime, chunks, isUpdate); err != nil {
			fmt.Fprintf(w, "failed  %s: %v\n", docID, err)
			summary.Failed++
			continue
		}

		if isUpdate {
			fmt.Fprintf(w, "updated %s (%d chunks)\n", docID, len(chunks))
			summary.Updated++
		} else {
			fmt.Fprintf(w, "indexing %s (%d chunks)\n", docID, len(chunks))
			summary.Indexed++
		}
	}

	fmt.Fprintf(w, "\nindexed: %d, updated: %d, skipped: %d, failed: %d\n",
		summary.Indexed, summary.Updated, summary.Skipped, summary.Failed)

	return summary, nil
}

func (s *Store) ingestDocument(ctx context.Context, docID, path, title, modTime string, chunks []string, isUpdate bool) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if isUpdate {
		if _, err := tx.ExecContext(ctx, `DELETE FROM chunks WHERE doc_id = ?`, docID); err != nil {
			return fmt.Errorf("deleting old chunks: %w", err)
		}
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO documents (id, title, source_path, file_mod_time) VALUES (?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
			title=excluded.title, source_path=excluded.source_path,
			file_mod_time=excluded.file_mod_time`,
		docID, title, path, modTime,
	)
	if err != nil {
		return fmt.Errorf("upserting document: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO chunks (doc_id, seq, content) VALUES (?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("preparing insert: %w", err)
	}
	defer stmt.Close()

	for i, chunk := range chunks {
		if _, err := stmt.ExecContext(ctx, docID, i, chunk); err != nil {
			return fmt.Errorf("inserting chunk %d: %w", i, err)
		}
	}

	return tx.Commit()
}

// Retrieve returns the k best-matching excerpts ranked by bm25. A
// non-positive k uses the configured default.
func (s *Store) Retrieve(ctx context.Context, query string, k int) ([]Excerpt, error) {
	if k <= 0 {
		k = s.topK
	}

	match := matchExpression(query)
	if match == "" {
		return nil, nil
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT c.doc_id, d.title, c.content, -chunks_fts.rank
		 FROM chunks_fts
		 JOIN chunks c ON c.rowid = chunks_fts.rowid
		 LEFT JOIN documents d ON c.doc_id = d.id
		 WHERE chunks_fts MATCH ?
		 ORDER BY chunks_fts.rank
		 LIMIT ?`,
		match, k)
	if err != nil {
		return nil, fmt.Errorf("querying corpus: %w", err)
	}
	defer rows.Close()

	var excerpts []Excerpt
	for rows.Next() {
		var (
			e     Excerpt
			title sql.NullString
		)
		if err := rows.Scan(&e.DocID, &title, &e.Text, &e.Score); err != nil {
			return nil, fmt.Errorf("scanning row: %w", err)
		}
		if title.Valid {
			e.Title = title.String
		}
		excerpts = append(excerpts, e)
	}
	return excerpts, rows.Err()
}

// matchExpression turns free text into an FTS5 match string. Terms are
// quoted individually and OR-joined, so question punctuation cannot
// break the match syntax.
func matchExpression(query string) string {
	var terms []string
	for _, f := range strings.Fields(query) {
		f = strings.Trim(f, `"?!.,;:()`)
		if f == "" {
			continue
		}
		terms = append(terms, `"`+f+`"`)
	}
	return strings.Join(terms, " OR ")
}

// chunkDocument splits a document on blank lines and packs paragraphs
// into chunks of bounded size.
func chunkDocument(content string) []string {
	paragraphs := strings.Split(content, "\n\n")

	var (
		chunks  []string
		current strings.Builder
	)
	flush := func() {
		if current.Len() > 0 {
			chunks = append(chunks, strings.TrimSpace(current.String()))
			current.Reset()
		}
	}

	for _, p := range paragraphs {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		if current.Len() > 0 && current.Len()+len(p) > maxChunkSize {
			flush()
		}
		if current.Len() > 0 {
			current.WriteString("\n\n")
		}
		current.WriteString(p)
	}
	flush()

	return chunks
}

// titleOf extracts a document title from its first Markdown heading,
// falling back to the document ID.
func titleOf(content, docID string) string {
	for _, line := range strings.Split(content, "\n") {
		line = strings.TrimSpace(line)
		if strings.HasPrefix(line, "# ") {
			return strings.TrimSpace(strings.TrimPrefix(line, "# "))
		}
		if line != "" && !strings.HasPrefix(line, "#") {
			break
		}
	}
	return docID
}

package vectorstore

import (
	"database/sql"
	"fmt"
	"os"

	_ "github.com/mattn/go-sqlite3"

	"talkdocs/internal/domain"
)

const chunkSchema = `
CREATE TABLE chunks (
    position    INTEGER PRIMARY KEY,
    chunk_id    TEXT NOT NULL,
    text        TEXT NOT NULL,
    source_file TEXT NOT NULL,
    start_char  INTEGER NOT NULL,
    end_char    INTEGER NOT NULL
);
CREATE INDEX idx_chunks_source ON chunks(source_file);
`

// SQLiteMetadata stores chunks in a SQLite database, one row per vector.
type SQLiteMetadata struct {
	path string
}

func NewSQLiteMetadata(path string) *SQLiteMetadata { return &SQLiteMetadata{path: path} }

func (m *SQLiteMetadata) Path() string { return m.path }

// Write builds a fresh database next to the target and renames it into place.
func (m *SQLiteMetadata) Write(chunks []domain.Chunk) error {
	tmp := m.path + ".tmp"
	if err := removeIfExists(tmp); err != nil {
		return err
	}
	if err := m.writeDB(tmp, chunks); err != nil {
		os.Remove(tmp)
		return err
	}
	return os.Rename(tmp, m.path)
}

func (m *SQLiteMetadata) writeDB(path string, chunks []domain.Chunk) error {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return fmt.Errorf("open db: %w", err)
	}
	defer db.Close()

	if _, err := db.Exec(chunkSchema); err != nil {
		return fmt.Errorf("init schema: %w", err)
	}

	tx, err := db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(
		"INSERT INTO chunks (position, chunk_id, text, source_file, start_char, end_char) VALUES (?, ?, ?, ?, ?, ?)",
	)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for i, c := range chunks {
		if _, err := stmt.Exec(i, c.ChunkID, c.Text, c.SourceFile, c.StartChar, c.EndChar); err != nil {
			return fmt.Errorf("insert chunk %s: %w", c.ChunkID, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	return db.Close()
}

func (m *SQLiteMetadata) Read() ([]domain.Chunk, error) {
	if _, err := os.Stat(m.path); err != nil {
		return nil, err
	}
	db, err := sql.Open("sqlite3", m.path)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	defer db.Close()

	rows, err := db.Query("SELECT chunk_id, text, source_file, start_char, end_char FROM chunks ORDER BY position")
	if err != nil {
		return nil, fmt.Errorf("query chunks: %w", err)
	}
	defer rows.Close()

	var chunks []domain.Chunk
	for rows.Next() {
		var c domain.Chunk
		if err := rows.Scan(&c.ChunkID, &c.Text, &c.SourceFile, &c.StartChar, &c.EndChar); err != nil {
			return nil, err
		}
		chunks = append(chunks, c)
	}
	return chunks, rows.Err()
}

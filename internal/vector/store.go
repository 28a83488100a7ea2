// Package vector implements the retrieval store: markdown documents are
// chunked, embedded, and kept in a sqlite database; queries recall the
// most similar chunks by cosine similarity.
package vector

import (
	"context"
	"database/sql"
	"encoding/binary"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sort"

	_ "modernc.org/sqlite"
)

// DefaultTopK is the number of chunks recalled when unspecified.
const DefaultTopK = 5

// Embedder produces embedding vectors for texts, in input order.
type Embedder interface {
	Embed(ctx context.Context, texts []string) ([][]float64, error)
}

// Store is a sqlite-backed vector store.
type Store struct {
	db       *sql.DB
	embedder Embedder
}

// CollectionInfo summarizes one collection.
type CollectionInfo struct {
	Name   string
	Chunks int
}

// Result is one recalled chunk with its similarity score.
type Result struct {
	Source  string
	Content string
	Score   float64
}

const schema = `
CREATE TABLE IF NOT EXISTS chunks (
	id         INTEGER PRIMARY KEY AUTOINCREMENT,
	collection TEXT NOT NULL,
	source     TEXT NOT NULL,
	content    TEXT NOT NULL,
	embedding  BLOB NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_chunks_collection ON chunks(collection);
`

// Open opens (or creates) the store at path.
func Open(path string, embedder Embedder) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("creating store directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening vector store: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("initializing vector store: %w", err)
	}

	return &Store{db: db, embedder: embedder}, nil
}

// Close releases the database handle.
func (s *Store) Close() error {
	return s.db.Close()
}

// Collections lists all collections with their chunk counts.
func (s *Store) Collections(ctx context.Context) ([]CollectionInfo, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT collection, COUNT(*) FROM chunks GROUP BY collection ORDER BY collection`)
	if err != nil {
		return nil, fmt.Errorf("listing collections: %w", err)
	}
	defer rows.Close()

	var out []CollectionInfo
	for rows.Next() {
		var ci CollectionInfo
		if err := rows.Scan(&ci.Name, &ci.Chunks); err != nil {
			return nil, err
		}
		out = append(out, ci)
	}
	return out, rows.Err()
}

// StoreMarkdown chunks a markdown file, embeds the chunks, and inserts
// them into the collection. Returns the number of chunks stored.
func (s *Store) StoreMarkdown(ctx context.Context, collection, path string, size, overlap int) (int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, fmt.Errorf("reading %s: %w", path, err)
	}

	chunks := ChunkMarkdown(string(data), size, overlap)
	if len(chunks) == 0 {
		return 0, fmt.Errorf("%s produced no chunks", path)
	}

	vectors, err := s.embedder.Embed(ctx, chunks)
	if err != nil {
		return 0, fmt.Errorf("embedding %s: %w", path, err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	source := filepath.Base(path)
	for i, chunk := range chunks {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO chunks (collection, source, content, embedding) VALUES (?, ?, ?, ?)`,
			collection, source, chunk, encodeVector(vectors[i])); err != nil {
			return 0, fmt.Errorf("inserting chunk: %w", err)
		}
	}
	if err := tx.Commit(); err != nil {
		return 0, err
	}
	return len(chunks), nil
}

// Search embeds the query and returns the topK most similar chunks from
// the collection, highest score first.
func (s *Store) Search(ctx context.Context, collection, query string, topK int) ([]Result, error) {
	if topK <= 0 {
		topK = DefaultTopK
	}

	vectors, err := s.embedder.Embed(ctx, []string{query})
	if err != nil {
		return nil, fmt.Errorf("embedding query: %w", err)
	}
	qv := vectors[0]

	rows, err := s.db.QueryContext(ctx,
		`SELECT source, content, embedding FROM chunks WHERE collection = ?`, collection)
	if err != nil {
		return nil, fmt.Errorf("querying collection %s: %w", collection, err)
	}
	defer rows.Close()

	var results []Result
	for rows.Next() {
		var r Result
		var blob []byte
		if err := rows.Scan(&r.Source, &r.Content, &blob); err != nil {
			return nil, err
		}
		r.Score = cosineSimilarity(qv, decodeVector(blob))
		results = append(results, r)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	sort.Slice(results, func(i, j int) bool { return results[i].Score > results[j].Score })
	if len(results) > topK {
		results = results[:topK]
	}
	return results, nil
}

// cosineSimilarity returns the cosine of the angle between a and b, or
// 0 when either vector is empty or zero.
func cosineSimilarity(a, b []float64) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	var dot, na, nb float64
	for i := range a {
		dot += a[i] * b[i]
		na += a[i] * a[i]
		nb += b[i] * b[i]
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}

// encodeVector packs a float64 slice as little-endian bytes.
func encodeVector(v []float64) []byte {
	buf := make([]byte, 8*len(v))
	for i, f := range v {
		binary.LittleEndian.PutUint64(buf[i*8:], math.Float64bits(f))
	}
	return buf
}

// decodeVector unpacks a blob written by encodeVector.
func decodeVector(b []byte) []float64 {
	v := make([]float64, len(b)/8)
	for i := range v {
		v[i] = math.Float64frombits(binary.LittleEndian.Uint64(b[i*8:]))
	}
	return v
}

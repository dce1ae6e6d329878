package vectorstore

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"talkdocs/internal/domain"
)

// Metadata formats accepted by Config.MetadataFormat.
const (
	FormatJSON   = "json"
	FormatSQLite = "sqlite"
)

// Config locates the persisted artifacts of one named index.
type Config struct {
	Dir            string
	Name           string
	MetadataFormat string
}

// Index is an exact inner-product vector index with parallel chunk metadata.
// It is safe for concurrent readers; writers must be serialised by the caller.
type Index struct {
	mu        sync.RWMutex
	dimension int
	vectors   [][]float32
	chunks    []domain.Chunk

	name       string
	vectorPath string
	meta       MetadataStore
	logger     *slog.Logger
}

func New(cfg Config, logger *slog.Logger) (*Index, error) {
	if cfg.Name == "" {
		return nil, fmt.Errorf("%w: index name must not be empty", domain.ErrConfiguration)
	}
	base := filepath.Join(cfg.Dir, cfg.Name)
	var meta MetadataStore
	switch cfg.MetadataFormat {
	case FormatJSON, "":
		meta = NewJSONMetadata(base + ".json")
	case FormatSQLite:
		meta = NewSQLiteMetadata(base + ".db")
	default:
		return nil, fmt.Errorf("%w: unknown metadata format: %s", domain.ErrConfiguration, cfg.MetadataFormat)
	}
	return &Index{
		name:       cfg.Name,
		vectorPath: base + ".vec",
		meta:       meta,
		logger:     logger,
	}, nil
}

// Add appends vectors and their chunks. The first non-empty add fixes the
// index dimension. Nothing is appended unless every row is valid.
func (x *Index) Add(vectors [][]float32, chunks []domain.Chunk) error {
	if len(vectors) != len(chunks) {
		return fmt.Errorf("%w: %d vectors for %d chunks", domain.ErrShapeMismatch, len(vectors), len(chunks))
	}
	if len(vectors) == 0 {
		return nil
	}
	x.mu.Lock()
	defer x.mu.Unlock()

	dim := x.dimension
	if dim == 0 {
		dim = len(vectors[0])
		if dim == 0 {
			return fmt.Errorf("%w: empty vector", domain.ErrDimensionMismatch)
		}
	}
	for i, v := range vectors {
		if len(v) != dim {
			return fmt.Errorf("%w: vector %d has width %d, index expects %d", domain.ErrDimensionMismatch, i, len(v), dim)
		}
	}

	for _, v := range vectors {
		row := make([]float32, dim)
		copy(row, v)
		x.vectors = append(x.vectors, row)
	}
	x.chunks = append(x.chunks, chunks...)
	x.dimension = dim
	return nil
}

// Search returns up to topK hits for a single query vector.
func (x *Index) Search(query []float32, topK int) ([]domain.SearchHit, error) {
	res, err := x.SearchBatch([][]float32{query}, topK)
	if err != nil {
		return nil, err
	}
	return res[0], nil
}

// SearchBatch runs one exact scan per query row. Results are ordered by
// descending score and never padded: an index with fewer than topK entries
// returns what it has, an empty index returns empty rows.
func (x *Index) SearchBatch(queries [][]float32, topK int) ([][]domain.SearchHit, error) {
	x.mu.RLock()
	defer x.mu.RUnlock()

	out := make([][]domain.SearchHit, len(queries))
	if len(x.vectors) == 0 || topK <= 0 {
		for i := range out {
			out[i] = []domain.SearchHit{}
		}
		return out, nil
	}
	for i, q := range queries {
		if len(q) != x.dimension {
			return nil, fmt.Errorf("%w: query %d has width %d, index expects %d", domain.ErrDimensionMismatch, i, len(q), x.dimension)
		}
	}

	scores, labels := searchKernel(x.vectors, queries, topK)
	for qi := range queries {
		hits := make([]domain.SearchHit, 0, topK)
		for slot, label := range labels[qi] {
			if label == noLabel {
				continue
			}
			hits = append(hits, domain.SearchHit{Chunk: x.chunks[label], Score: scores[qi][slot]})
		}
		out[qi] = hits
	}
	return out, nil
}

// Save writes both artifacts. An index that holds nothing is not written.
func (x *Index) Save() error {
	x.mu.RLock()
	defer x.mu.RUnlock()
	if len(x.vectors) == 0 {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(x.vectorPath), 0o755); err != nil {
		return fmt.Errorf("create index dir: %w", err)
	}
	if err := writeVectorFile(x.vectorPath, x.dimension, x.vectors); err != nil {
		return fmt.Errorf("save vectors: %w", err)
	}
	if err := x.meta.Write(x.chunks); err != nil {
		return fmt.Errorf("save metadata: %w", err)
	}
	x.logger.Info("persisted index", "name", x.name, "chunks", len(x.chunks), "path", x.vectorPath)
	return nil
}

// Load restores a previously saved index. It reports false, leaving the
// in-memory state untouched, when either artifact is missing.
func (x *Index) Load() (bool, error) {
	if !fileExists(x.vectorPath) || !fileExists(x.meta.Path()) {
		return false, nil
	}
	dim, vectors, err := readVectorFile(x.vectorPath)
	if err != nil {
		return false, fmt.Errorf("load vectors: %w", err)
	}
	chunks, err := x.meta.Read()
	if err != nil {
		return false, fmt.Errorf("load metadata: %w", err)
	}
	if len(vectors) != len(chunks) {
		return false, fmt.Errorf("%w: vector file holds %d rows, metadata holds %d chunks", domain.ErrShapeMismatch, len(vectors), len(chunks))
	}

	x.mu.Lock()
	x.dimension = dim
	if len(vectors) == 0 {
		x.dimension = 0
	}
	x.vectors = vectors
	x.chunks = chunks
	x.mu.Unlock()

	x.logger.Info("loaded index", "name", x.name, "chunks", len(chunks), "dimension", dim)
	return true, nil
}

// Clear empties the index and deletes its artifacts. Clearing an empty index
// is not an error.
func (x *Index) Clear() error {
	x.mu.Lock()
	x.dimension = 0
	x.vectors = nil
	x.chunks = nil
	x.mu.Unlock()

	err := errors.Join(removeIfExists(x.vectorPath), removeIfExists(x.meta.Path()))
	if err != nil {
		return fmt.Errorf("clear index: %w", err)
	}
	x.logger.Info("cleared index", "name", x.name)
	return nil
}

// Len is the number of indexed vectors.
func (x *Index) Len() int {
	x.mu.RLock()
	defer x.mu.RUnlock()
	return len(x.vectors)
}

// Dimension is zero until the first vector is added or loaded.
func (x *Index) Dimension() int {
	x.mu.RLock()
	defer x.mu.RUnlock()
	return x.dimension
}

// Paths returns the vector file and metadata document locations.
func (x *Index) Paths() (string, string) {
	return x.vectorPath, x.meta.Path()
}

func (x *Index) Status() domain.IndexStatus {
	vecPath, metaPath := x.Paths()
	return domain.IndexStatus{
		Name:         x.name,
		Chunks:       x.Len(),
		Dimension:    x.Dimension(),
		VectorPath:   vecPath,
		MetadataPath: metaPath,
	}
}

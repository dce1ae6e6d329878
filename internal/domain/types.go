package domain

// Chunk is a contiguous span of cleaned text from one source document.
// StartChar and EndChar are rune offsets into the cleaned text.
type Chunk struct {
	ChunkID    string `json:"chunk_id"`
	Text       string `json:"text"`
	SourceFile string `json:"source_file"`
	StartChar  int    `json:"start_char"`
	EndChar    int    `json:"end_char"`
}

// SearchHit pairs stored chunk metadata with its similarity to a query vector.
type SearchHit struct {
	Chunk Chunk
	Score float32
}

// RetrievedChunk is a chunk that cleared the relevance threshold for one query.
type RetrievedChunk struct {
	Text       string
	SourceFile string
	Score      float32
}

// IngestionResult summarises a successful ingestion.
type IngestionResult struct {
	FileName      string `json:"file_name"`
	ChunksIndexed int    `json:"chunks_indexed"`
}

// Citation references one retrieved chunk used as answer context.
type Citation struct {
	Rank   int     `json:"rank"`
	Source string  `json:"source"`
	Score  float64 `json:"score"`
}

// Answer is the generated reply together with the citations that grounded it.
type Answer struct {
	Text      string     `json:"answer"`
	Citations []Citation `json:"citations"`
}

// IndexStatus describes the vector index for status displays.
type IndexStatus struct {
	Name         string
	Chunks       int
	Dimension    int
	VectorPath   string
	MetadataPath string
}

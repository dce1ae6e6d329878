package config

import (
	"fmt"
	"strconv"
	"strings"

	"talkdocs/internal/domain"
)

// LookupFunc matches os.LookupEnv.
type LookupFunc func(key string) (string, bool)

// ApplyEnv overrides cfg with any of the recognised environment variables
// that are set.
func ApplyEnv(cfg *AppConfig, lookup LookupFunc) error {
	str := func(key string, dst *string, lower bool) {
		if v, ok := lookup(key); ok && strings.TrimSpace(v) != "" {
			v = strings.TrimSpace(v)
			if lower {
				v = strings.ToLower(v)
			}
			*dst = v
		}
	}
	var errs []string
	num := func(key string, dst *int) {
		v, ok := lookup(key)
		if !ok || strings.TrimSpace(v) == "" {
			return
		}
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			errs = append(errs, fmt.Sprintf("%s=%q is not an integer", key, v))
			return
		}
		*dst = n
	}

	str("LLM_PROVIDER", &cfg.LLM.Type, true)
	str("EMBEDDING_PROVIDER", &cfg.Embedder.Type, true)
	str("OPENAI_LLM_MODEL", &cfg.OpenAI.LLMModel, false)
	str("OPENAI_EMBEDDING_MODEL", &cfg.OpenAI.EmbeddingModel, false)
	str("OLLAMA_URL", &cfg.Ollama.URL, false)
	str("DATA_DIR", &cfg.Storage.DataDir, false)
	str("UPLOAD_DIR", &cfg.Storage.UploadDir, false)
	str("INDEX_DIR", &cfg.Storage.IndexDir, false)
	str("INDEX_NAME", &cfg.Storage.IndexName, false)
	str("LOG_LEVEL", &cfg.Log.Level, true)
	num("MAX_FILE_SIZE_MB", &cfg.Storage.MaxFileSizeMB)
	num("CHUNK_SIZE", &cfg.Chunker.ChunkSize)
	num("CHUNK_OVERLAP", &cfg.Chunker.ChunkOverlap)
	num("RETRIEVER_TOP_K", &cfg.Retriever.TopK)

	if v, ok := lookup("RETRIEVER_SCORE_THRESHOLD"); ok && strings.TrimSpace(v) != "" {
		f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			errs = append(errs, fmt.Sprintf("RETRIEVER_SCORE_THRESHOLD=%q is not a number", v))
		} else {
			cfg.Retriever.ScoreThreshold = f
		}
	}
	if cfg.Embedder.Type == "hashing" && cfg.Embedder.Dimension == 0 {
		cfg.Embedder.Dimension = defaultConfig().Embedder.Dimension
	}

	if len(errs) > 0 {
		return fmt.Errorf("%w: %s", domain.ErrConfiguration, strings.Join(errs, "; "))
	}
	return nil
}

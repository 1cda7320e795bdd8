package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)

	assert.Equal(t, "docs", cfg.Corpus.Dir)
	assert.Equal(t, []string{".pdf"}, cfg.Corpus.Extensions)
	assert.Equal(t, 1000, cfg.Chunker.ChunkSize)
	assert.Equal(t, 200, cfg.Chunker.ChunkOverlap)
	assert.Equal(t, 4, cfg.Retrieval.TopK)
	assert.Equal(t, 12000, cfg.Retrieval.FallbackChars)
	assert.Equal(t, 5, cfg.Retrieval.HistoryWindow)
	assert.Equal(t, "tfidf", cfg.Embedder.Type)
	assert.Equal(t, "memory", cfg.VectorStore.Type)
	assert.Equal(t, "llama-3.3-70b-versatile", cfg.Gateway.Model)
	assert.Equal(t, "GROQ_API_KEY", cfg.Gateway.APIKeyEnv)
	assert.InDelta(t, 0.3, cfg.Gateway.Temperature, 1e-9)
	require.NoError(t, cfg.Validate())
}

func TestLoadAppliesDefaultsToPartialFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "groundchat.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
corpus:
  dir: /srv/refs
embedder:
  type: openai
retrieval:
  top_k: 3
`), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "/srv/refs", cfg.Corpus.Dir)
	assert.Equal(t, 3, cfg.Retrieval.TopK)
	require.NotNil(t, cfg.Embedder.OpenAI)
	assert.Equal(t, "OPENAI_API_KEY", cfg.Embedder.OpenAI.APIKeyEnv)
	assert.Equal(t, "text-embedding-3-small", cfg.Embedder.OpenAI.Model)
	assert.Equal(t, 32, cfg.Embedder.OpenAI.BatchSize)
}

func TestLoadRejectsInvalidSettings(t *testing.T) {
	cases := map[string]string{
		"overlap too large":  "chunker:\n  chunk_size: 100\n  chunk_overlap: 100\n",
		"unknown embedder":   "embedder:\n  type: magic\n",
		"qdrant without url": "vector_store:\n  type: qdrant\n",
		"hot temperature":    "gateway:\n  temperature: 3.5\n",
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "c.yaml")
			require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
			_, err := Load(path)
			assert.Error(t, err)
		})
	}
}

func TestSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")
	cfg := defaultConfig()
	cfg.Metrics.Addr = ":9100"
	require.NoError(t, Save(path, cfg))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, loaded)
}

package vectorstore

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"groundchat/internal/config"
	"groundchat/internal/domain"
	"groundchat/internal/vectorstore/memory"
	"groundchat/internal/vectorstore/qdrant"
)

var (
	_ domain.VectorStore = (*memory.Storage)(nil)
	_ domain.VectorStore = (*qdrant.Storage)(nil)
)

func TestNew(t *testing.T) {
	tests := []struct {
		name    string
		cfg     config.VectorStoreConfig
		wantErr bool
	}{
		{"default", config.VectorStoreConfig{}, false},
		{"memory", config.VectorStoreConfig{Type: "memory"}, false},
		{"qdrant", config.VectorStoreConfig{Type: "qdrant", Qdrant: &config.QdrantConfig{URL: "http://localhost:6333", Collection: "kb"}}, false},
		{"qdrant without url", config.VectorStoreConfig{Type: "qdrant"}, true},
		{"unknown", config.VectorStoreConfig{Type: "faiss"}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.cfg)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

package model

import (
	"strings"
	"time"

	"github.com/mut-digital/mutbot/pkg/domain/types"
)

// EmbeddingDimension is the fixed dimension of document and query embeddings
const EmbeddingDimension = 256

// VectorCacheSchemaVersion tags the serialized cache layout. Bump it when the
// document or metadata shape changes so stale disk files are discarded.
const VectorCacheSchemaVersion = "v1"

// Metadata keys recognized on knowledge-base documents.
const (
	MetaTitle    = "titulo"
	MetaType     = "tipo"
	MetaFloor    = "nivel"
	MetaPlace    = "lugar"
	MetaHours    = "horario"
	MetaWeb      = "web"
	MetaLink     = "link"
	MetaCategory = "category"
)

// EmbeddedDocument is a knowledge-base document with its embedding vector.
// Instances are immutable once built; the similarity index owns them and
// never mutates them after embedding.
type EmbeddedDocument struct {
	DocumentID string            `json:"document_id"`
	Content    string            `json:"content"`
	Metadata   map[string]string `json:"metadata"`
	Embedding  []float32         `json:"embedding"`
	SearchText string            `json:"search_text"`
}

// Category returns the document category stored in metadata.
func (x *EmbeddedDocument) Category() types.Category {
	return types.Category(x.Metadata[MetaCategory])
}

// RawDocument is a knowledge-base document as decoded from a JSONL line,
// before embedding.
type RawDocument struct {
	DocumentID string            `json:"document_id"`
	Content    string            `json:"content"`
	Metadata   map[string]string `json:"metadata"`
}

// EmbeddingInput derives the text that is embedded for this document:
// title, content, type, place and hours concatenated with single spaces.
// Returns "" when the document carries no usable text.
func (x *RawDocument) EmbeddingInput() string {
	parts := []string{
		x.Metadata[MetaTitle],
		x.Content,
		x.Metadata[MetaType],
		x.Metadata[MetaPlace],
		x.Metadata[MetaHours],
	}

	var sb strings.Builder
	for _, p := range parts {
		if p == "" {
			continue
		}
		if sb.Len() > 0 {
			sb.WriteByte(' ')
		}
		sb.WriteString(p)
	}
	return sb.String()
}

// VectorCacheMetadata summarizes a built document collection.
type VectorCacheMetadata struct {
	TotalDocuments   int       `json:"total_documents"`
	RestaurantsCount int       `json:"restaurants_count"`
	StoresCount      int       `json:"stores_count"`
	CreatedAt        time.Time `json:"created_at"`
	SchemaVersion    string    `json:"schema_version"`
}

// VectorCache is the embedded-document collection persisted by the tiered
// cache store. The whole value is replaced on refresh, never patched.
type VectorCache struct {
	Documents []EmbeddedDocument  `json:"documents"`
	Metadata  VectorCacheMetadata `json:"metadata"`
}

// ScoredDocument pairs a document with its similarity to a query.
type ScoredDocument struct {
	Document   *EmbeddedDocument
	Similarity float64
}

// Warmth reports whether the vector store is ready to serve without a cold
// build, and where the cached collection came from.
type Warmth struct {
	Active     bool   `json:"active"`
	Source     string `json:"source"`
	AgeSeconds int    `json:"age_seconds"`
	Documents  int    `json:"documents"`
}

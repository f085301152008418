package vectorstore

import (
	"context"
	"sync"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/gollem"
	"github.com/mut-digital/mutbot/pkg/domain/interfaces"
	"github.com/mut-digital/mutbot/pkg/domain/model"
	"github.com/mut-digital/mutbot/pkg/domain/types"
	"github.com/mut-digital/mutbot/pkg/utils/logging"
	"golang.org/x/sync/errgroup"
)

// TagRetrievalUnavailable marks errors that mean the knowledge base cannot
// be served at all. The chat pipeline converts these into a canned fallback
// reply instead of surfacing a raw error to the user.
var TagRetrievalUnavailable = goerr.NewTag("retrieval_unavailable")

// embedBatchSize caps how many documents are sent per embedding request
const embedBatchSize = 32

// Manager builds and serves the embedded-document collection, hiding the
// cold-start cost behind the tiered cache. A cold Init lists every document
// of every category, embeds them, and persists the result; that can take
// tens of seconds and carries no internal timeout; the source and the LLM
// client own their own deadlines.
type Manager struct {
	source interfaces.DocumentSource
	llm    gollem.LLMClient
	cache  *TieredCache

	// buildMu serializes cold builds so concurrent cold searches trigger
	// a single fetch+embed pass.
	buildMu sync.Mutex
}

// New creates a vector store Manager
func New(source interfaces.DocumentSource, llm gollem.LLMClient, cache *TieredCache) *Manager {
	return &Manager{
		source: source,
		llm:    llm,
		cache:  cache,
	}
}

// Init returns the embedded-document collection, building and caching it if
// no tier holds a valid copy. A failure in either category fails the whole
// build; there is no partial index.
func (x *Manager) Init(ctx context.Context) (*model.VectorCache, error) {
	if cached, ok := x.cache.Get(ctx); ok {
		return cached, nil
	}

	x.buildMu.Lock()
	defer x.buildMu.Unlock()

	// Another caller may have finished the build while we waited
	if cached, ok := x.cache.Get(ctx); ok {
		return cached, nil
	}

	startedAt := time.Now()
	logging.From(ctx).Info("vector cache miss, building from document source")

	categories := types.AllCategories()
	perCategory := make([][]model.EmbeddedDocument, len(categories))

	eg, egCtx := errgroup.WithContext(ctx)
	for i, category := range categories {
		eg.Go(func() error {
			docs, err := x.buildCategory(egCtx, category)
			if err != nil {
				return err
			}
			perCategory[i] = docs
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, goerr.Wrap(err, "failed to build vector store", goerr.T(TagRetrievalUnavailable))
	}

	cache := &model.VectorCache{
		Metadata: model.VectorCacheMetadata{
			CreatedAt:     time.Now().UTC(),
			SchemaVersion: model.VectorCacheSchemaVersion,
		},
	}
	for i, docs := range perCategory {
		cache.Documents = append(cache.Documents, docs...)
		switch categories[i] {
		case types.CategoryRestaurants:
			cache.Metadata.RestaurantsCount = len(docs)
		case types.CategoryStores:
			cache.Metadata.StoresCount = len(docs)
		}
	}
	cache.Metadata.TotalDocuments = len(cache.Documents)

	x.cache.Set(ctx, cache)

	logging.From(ctx).Info("vector store built",
		"documents", cache.Metadata.TotalDocuments,
		"restaurants", cache.Metadata.RestaurantsCount,
		"stores", cache.Metadata.StoresCount,
		"duration", time.Since(startedAt).String())

	return cache, nil
}

// Search embeds queryText and returns the topK most similar documents,
// optionally restricted to one category. Triggers a full build when cold.
func (x *Manager) Search(ctx context.Context, queryText string, topK int, category types.Category) ([]model.ScoredDocument, error) {
	cache, err := x.Init(ctx)
	if err != nil {
		return nil, err
	}

	query, err := x.embed(ctx, []string{queryText})
	if err != nil {
		return nil, goerr.Wrap(err, "failed to embed query", goerr.T(TagRetrievalUnavailable))
	}

	return NewIndex(cache.Documents).Search(query[0], topK, category), nil
}

// Invalidate drops all cache tiers; the next Search rebuilds from source.
func (x *Manager) Invalidate(ctx context.Context) {
	x.cache.Invalidate(ctx)
}

// Warmth reports whether a request can be served without a cold build.
func (x *Manager) Warmth() model.Warmth {
	return x.cache.Warmth()
}

// buildCategory lists one category's raw documents and embeds them. Documents
// with no usable text are skipped; a fetch or embedding failure aborts.
func (x *Manager) buildCategory(ctx context.Context, category types.Category) ([]model.EmbeddedDocument, error) {
	raws, err := x.source.ListDocuments(ctx, category)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list documents", goerr.V("category", category))
	}

	// Collect embedding inputs first so requests can be batched
	kept := make([]*model.RawDocument, 0, len(raws))
	inputs := make([]string, 0, len(raws))
	for _, raw := range raws {
		text := raw.EmbeddingInput()
		if text == "" {
			continue
		}
		kept = append(kept, raw)
		inputs = append(inputs, text)
	}

	docs := make([]model.EmbeddedDocument, 0, len(kept))
	for start := 0; start < len(kept); start += embedBatchSize {
		end := min(start+embedBatchSize, len(kept))

		vectors, err := x.embed(ctx, inputs[start:end])
		if err != nil {
			return nil, goerr.Wrap(err, "failed to embed documents",
				goerr.V("category", category),
				goerr.V("offset", start))
		}

		for i, raw := range kept[start:end] {
			metadata := make(map[string]string, len(raw.Metadata)+1)
			for k, v := range raw.Metadata {
				metadata[k] = v
			}
			metadata[model.MetaCategory] = category.String()

			docs = append(docs, model.EmbeddedDocument{
				DocumentID: raw.DocumentID,
				Content:    raw.Content,
				Metadata:   metadata,
				Embedding:  vectors[i],
				SearchText: inputs[start+i],
			})
		}
	}

	logging.From(ctx).Info("category embedded",
		"category", category,
		"documents", len(docs),
		"skipped", len(raws)-len(docs))

	return docs, nil
}

// embed generates embeddings for a batch of texts
func (x *Manager) embed(ctx context.Context, texts []string) ([][]float32, error) {
	embeddings, err := x.llm.GenerateEmbedding(ctx, model.EmbeddingDimension, texts)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to generate embeddings")
	}
	if len(embeddings) != len(texts) {
		return nil, goerr.New("embedding count mismatch",
			goerr.V("want", len(texts)),
			goerr.V("got", len(embeddings)))
	}

	vectors := make([][]float32, len(embeddings))
	for i, emb := range embeddings {
		vec := make([]float32, len(emb))
		for j, v := range emb {
			vec[j] = float32(v)
		}
		vectors[i] = vec
	}
	return vectors, nil
}

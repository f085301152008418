package config

import (
	"context"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/gollem"
	"github.com/mut-digital/mutbot/pkg/service/gcs"
	"github.com/mut-digital/mutbot/pkg/service/vectorstore"
	"github.com/urfave/cli/v3"
)

// Knowledge holds CLI flags for the knowledge base: the GCS bucket that
// publishes the store/restaurant catalogs and the local embedding cache.
type Knowledge struct {
	bucket    string
	prefix    string
	cachePath string
}

// Flags returns CLI flags for knowledge base configuration
func (k *Knowledge) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "knowledge-bucket",
			Usage:       "GCS bucket holding the catalog JSONL files",
			Sources:     cli.EnvVars("MUTBOT_KNOWLEDGE_BUCKET"),
			Destination: &k.bucket,
		},
		&cli.StringFlag{
			Name:        "knowledge-prefix",
			Usage:       "Object prefix under the knowledge bucket",
			Value:       "catalog",
			Sources:     cli.EnvVars("MUTBOT_KNOWLEDGE_PREFIX"),
			Destination: &k.prefix,
		},
		&cli.StringFlag{
			Name:        "vector-cache-path",
			Usage:       "Path of the embedding cache file (memory-only when empty)",
			Value:       "/tmp/mutbot-vector-cache.json",
			Sources:     cli.EnvVars("MUTBOT_VECTOR_CACHE_PATH"),
			Destination: &k.cachePath,
		},
	}
}

// CachePath returns the configured embedding cache file path
func (k *Knowledge) CachePath() string {
	return k.cachePath
}

// Configure builds the vector store manager over the configured GCS bucket.
func (k *Knowledge) Configure(ctx context.Context, llm gollem.LLMClient) (*vectorstore.Manager, error) {
	if k.bucket == "" {
		return nil, goerr.New("knowledge-bucket is required")
	}

	source, err := gcs.New(ctx, k.bucket, k.prefix)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create knowledge source")
	}

	cache := vectorstore.NewTieredCache(k.cachePath)
	return vectorstore.New(source, llm, cache), nil
}

package gcs

import (
	"bufio"
	"context"
	"encoding/json"
	"io"
	"path"
	"strings"

	"cloud.google.com/go/storage"
	"github.com/m-mizutani/goerr/v2"
	"github.com/mut-digital/mutbot/pkg/domain/model"
	"github.com/mut-digital/mutbot/pkg/domain/types"
	"github.com/mut-digital/mutbot/pkg/utils/logging"
	"github.com/mut-digital/mutbot/pkg/utils/safe"
	"google.golang.org/api/iterator"
)

// maxLineSize bounds a single JSONL line; knowledge-base documents carry a
// few KB of text at most.
const maxLineSize = 1024 * 1024

// Source lists knowledge-base documents stored as JSONL objects in a Cloud
// Storage bucket, one category per prefix:
//
//	{prefix}/{category}/*.jsonl
type Source struct {
	client *storage.Client
	bucket string
	prefix string
}

// New creates a Source over the given bucket and base prefix.
func New(ctx context.Context, bucket, prefix string) (*Source, error) {
	client, err := storage.NewClient(ctx)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create storage client")
	}

	return &Source{
		client: client,
		bucket: bucket,
		prefix: strings.TrimSuffix(prefix, "/"),
	}, nil
}

// ListDocuments reads every JSONL object under the category's prefix and
// decodes one RawDocument per line. A malformed line is logged and skipped;
// a missing or unreadable object fails the whole listing.
func (x *Source) ListDocuments(ctx context.Context, category types.Category) ([]*model.RawDocument, error) {
	prefix := x.prefix + "/" + category.String() + "/"
	bucket := x.client.Bucket(x.bucket)

	var docs []*model.RawDocument
	it := bucket.Objects(ctx, &storage.Query{Prefix: prefix})
	for {
		attrs, err := it.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, goerr.Wrap(err, "failed to list knowledge-base objects",
				goerr.V("bucket", x.bucket),
				goerr.V("prefix", prefix))
		}
		if path.Ext(attrs.Name) != ".jsonl" {
			continue
		}

		batch, err := x.readObject(ctx, attrs.Name)
		if err != nil {
			return nil, err
		}
		docs = append(docs, batch...)
	}

	logging.From(ctx).Info("knowledge-base documents listed",
		"category", category,
		"documents", len(docs))

	return docs, nil
}

func (x *Source) readObject(ctx context.Context, name string) ([]*model.RawDocument, error) {
	reader, err := x.client.Bucket(x.bucket).Object(name).NewReader(ctx)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to open knowledge-base object", goerr.V("object", name))
	}
	defer safe.Close(ctx, reader)

	return parseDocuments(ctx, reader, name)
}

// parseDocuments decodes one RawDocument per non-empty JSONL line.
func parseDocuments(ctx context.Context, reader io.Reader, name string) ([]*model.RawDocument, error) {
	var docs []*model.RawDocument
	scanner := bufio.NewScanner(reader)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)

	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		var doc model.RawDocument
		if err := json.Unmarshal([]byte(line), &doc); err != nil {
			// One bad line must not sink the batch
			logging.From(ctx).Warn("skipping malformed knowledge-base line",
				"object", name,
				"line", lineNo,
				"error", err)
			continue
		}
		docs = append(docs, &doc)
	}
	if err := scanner.Err(); err != nil {
		return nil, goerr.Wrap(err, "failed to read knowledge-base object", goerr.V("object", name))
	}

	return docs, nil
}

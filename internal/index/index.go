package index

import (
	"context"
	"fmt"
	"runtime"
	"sort"
	"strconv"
	"sync/atomic"

	"github.com/philippgille/chromem-go"
	"github.com/rs/zerolog/log"

	"github.com/Johel506/intelligent-pdf-chatbot/internal/config"
	"github.com/Johel506/intelligent-pdf-chatbot/internal/embedding"
	"github.com/Johel506/intelligent-pdf-chatbot/internal/models"
)

const compress = false

// ScoredChunk is one retrieval hit.
type ScoredChunk struct {
	Chunk models.Chunk
	Score float32
}

// Index stores chunk embeddings in a chromem-go collection and serves
// nearest-neighbour queries. Build runs once at startup; after that the
// index is read-only.
type Index struct {
	db         *chromem.DB
	collection *chromem.Collection
	embedder   embedding.Embedder
	chunks     []models.Chunk
	ready      atomic.Bool
}

// New creates the index backing store. With cfg.Persist the chromem
// collection is written under cfg.Path; the default is fully in-memory.
func New(cfg *config.IndexConfig, embedder embedding.Embedder) (*Index, error) {
	var db *chromem.DB
	var err error
	if cfg.Persist {
		db, err = chromem.NewPersistentDB(cfg.Path, compress)
		if err != nil {
			return nil, fmt.Errorf("failed to create database: %w", err)
		}
	} else {
		db = chromem.NewDB()
	}

	collection, err := db.GetOrCreateCollection(cfg.Collection, nil, chromem.EmbeddingFunc(embedder.EmbedQuery))
	if err != nil {
		return nil, fmt.Errorf("failed to create/get collection: %w", err)
	}

	return &Index{
		db:         db,
		collection: collection,
		embedder:   embedder,
	}, nil
}

// Build embeds every chunk and stores it. One embedding call per chunk;
// any failure aborts the build (the caller treats that as fatal startup).
func (i *Index) Build(ctx context.Context, chunks []models.Chunk) error {
	if len(chunks) == 0 {
		return fmt.Errorf("no chunks to index: document produced no text")
	}

	docs := make([]chromem.Document, 0, len(chunks))
	for _, chunk := range chunks {
		emb, err := i.embedder.EmbedQuery(ctx, chunk.Content)
		if err != nil {
			return fmt.Errorf("embedding chunk %d: %w", chunk.Ordinal, err)
		}
		docs = append(docs, chromem.Document{
			ID:        strconv.Itoa(chunk.Ordinal),
			Content:   chunk.Content,
			Metadata:  map[string]string{"ordinal": strconv.Itoa(chunk.Ordinal)},
			Embedding: emb,
		})
	}

	if err := i.collection.AddDocuments(ctx, docs, runtime.NumCPU()); err != nil {
		return fmt.Errorf("failed to add documents: %w", err)
	}

	i.chunks = chunks
	i.ready.Store(true)
	log.Info().Int("chunks", len(chunks)).Msg("Vector index built")
	return nil
}

// Ready reports whether Build has completed.
func (i *Index) Ready() bool {
	return i.ready.Load()
}

// Search embeds the query and returns the min(k, indexed) most similar
// chunks, best first. Equal scores keep original chunk order.
func (i *Index) Search(ctx context.Context, query string, k int) ([]ScoredChunk, error) {
	if !i.ready.Load() {
		return nil, fmt.Errorf("index not ready")
	}
	if k > len(i.chunks) {
		k = len(i.chunks)
	}
	if k <= 0 {
		return nil, nil
	}

	queryEmbedding, err := i.embedder.EmbedQuery(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embedding query: %w", err)
	}

	results, err := i.collection.QueryWithOptions(ctx, chromem.QueryOptions{
		QueryEmbedding: queryEmbedding,
		NResults:       k,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to query by similarity: %w", err)
	}

	scored := make([]ScoredChunk, 0, len(results))
	for _, r := range results {
		ordinal, err := strconv.Atoi(r.Metadata["ordinal"])
		if err != nil || ordinal < 0 || ordinal >= len(i.chunks) {
			return nil, fmt.Errorf("corrupt result metadata: %q", r.Metadata["ordinal"])
		}
		scored = append(scored, ScoredChunk{Chunk: i.chunks[ordinal], Score: r.Similarity})
	}
	sort.SliceStable(scored, func(a, b int) bool {
		if scored[a].Score != scored[b].Score {
			return scored[a].Score > scored[b].Score
		}
		return scored[a].Chunk.Ordinal < scored[b].Chunk.Ordinal
	})
	return scored, nil
}

// Count reports the number of indexed chunks.
func (i *Index) Count() int {
	return len(i.chunks)
}

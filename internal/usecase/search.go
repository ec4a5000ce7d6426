package usecase

import (
	"fmt"
	"strings"

	"mlcatalog/internal/domain"
	"mlcatalog/internal/port"
)

// SearchUseCase answers free-text similarity queries against the embedding
// index built by reembed.
type SearchUseCase struct {
	store    port.CatalogStore
	embedder port.Embedder
	vectors  port.VectorStore
}

func NewSearchUseCase(store port.CatalogStore, embedder port.Embedder, vectors port.VectorStore) *SearchUseCase {
	return &SearchUseCase{
		store:    store,
		embedder: embedder,
		vectors:  vectors,
	}
}

// SearchHit pairs a stored record with its similarity score.
type SearchHit struct {
	Function domain.EnhancedFunction
	Score    float64
}

// Similar embeds the query text and returns up to k catalog records ranked
// by similarity. Vectors whose record has since been deleted are skipped.
func (u *SearchUseCase) Similar(query string, k int) ([]SearchHit, error) {
	if n, err := u.vectors.Count(); err != nil {
		return nil, fmt.Errorf("failed to count vectors: %w", err)
	} else if n == 0 {
		return nil, fmt.Errorf("embedding index is empty, run reembed first")
	}

	qv, err := u.embedder.Embed([]string{query})
	if err != nil {
		return nil, fmt.Errorf("failed to embed query: %w", err)
	}
	if len(qv) != 1 {
		return nil, fmt.Errorf("embedder returned %d vectors for one query", len(qv))
	}

	results, err := u.vectors.Search(qv[0], k)
	if err != nil {
		return nil, fmt.Errorf("search failed: %w", err)
	}

	hits := make([]SearchHit, 0, len(results))
	for _, r := range results {
		stem, name, ok := strings.Cut(r.ID, "|")
		if !ok {
			continue
		}
		fn, err := u.store.GetFunction(stem, name)
		if err != nil {
			continue
		}
		hits = append(hits, SearchHit{Function: fn, Score: r.Score})
	}
	return hits, nil
}

package usecase

import (
	"fmt"
	"strings"

	"mlcatalog/internal/domain"
	"mlcatalog/internal/port"
)

// ReembedUseCase rebuilds the embedding index from the stored catalog.
type ReembedUseCase struct {
	store    port.CatalogStore
	embedder port.Embedder
	vectors  port.VectorStore
}

func NewReembedUseCase(store port.CatalogStore, embedder port.Embedder, vectors port.VectorStore) *ReembedUseCase {
	return &ReembedUseCase{
		store:    store,
		embedder: embedder,
		vectors:  vectors,
	}
}

// ReembedResult summarizes a re-embedding pass.
type ReembedResult struct {
	FunctionsEmbedded int
	Model             string
	Dimension         int
}

// Clearer is implemented by vector stores that can drop all entries before
// a rebuild.
type Clearer interface {
	Clear() error
}

// Reembed embeds every stored function's documentation text and upserts
// the vectors keyed by file|function.
func (u *ReembedUseCase) Reembed(progress func(done, total int)) (*ReembedResult, error) {
	fns, err := u.store.ListFunctions()
	if err != nil {
		return nil, fmt.Errorf("failed to list functions: %w", err)
	}

	if c, ok := u.vectors.(Clearer); ok {
		if err := c.Clear(); err != nil {
			return nil, fmt.Errorf("failed to clear vectors: %w", err)
		}
	}

	result := &ReembedResult{
		Model:     u.embedder.ModelName(),
		Dimension: u.embedder.Dimension(),
	}
	if len(fns) == 0 {
		return result, nil
	}

	texts := make([]string, len(fns))
	for i, fn := range fns {
		texts[i] = embeddingText(fn)
	}

	vectors, err := u.embedder.Embed(texts)
	if err != nil {
		return nil, fmt.Errorf("embedding failed: %w", err)
	}
	if len(vectors) != len(fns) {
		return nil, fmt.Errorf("embedder returned %d vectors for %d texts", len(vectors), len(fns))
	}

	items := make([]port.VectorItem, len(fns))
	for i, fn := range fns {
		items[i] = port.VectorItem{
			ID:     fileStem(fn.ParentFile) + "|" + fn.Name,
			Vector: vectors[i],
			Metadata: map[string]string{
				"name":     fn.Name,
				"file":     fn.ParentFile,
				"category": string(fn.Category),
			},
		}
		if progress != nil {
			progress(i+1, len(fns))
		}
	}

	if err := u.vectors.Upsert(items); err != nil {
		return nil, fmt.Errorf("failed to store vectors: %w", err)
	}
	result.FunctionsEmbedded = len(items)

	return result, nil
}

// embeddingText flattens a record into the text that gets embedded:
// signature, description, and parameter docs.
func embeddingText(fn domain.EnhancedFunction) string {
	var b strings.Builder
	b.WriteString(fn.Name)
	b.WriteString("\n")
	b.WriteString(fn.RawSignature)
	if fn.CallingPattern != "" {
		b.WriteString("\n")
		b.WriteString(fn.CallingPattern)
	}
	if fn.Description != "" {
		b.WriteString("\n")
		b.WriteString(fn.Description)
	} else if fn.HelpText != "" {
		b.WriteString("\n")
		b.WriteString(fn.HelpText)
	}
	for _, p := range fn.ParamDocs {
		b.WriteString("\n")
		b.WriteString(p.Name)
		if p.Description != "" {
			b.WriteString(": ")
			b.WriteString(p.Description)
		}
	}
	return b.String()
}

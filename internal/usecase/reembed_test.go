package usecase

import (
	"testing"

	"mlcatalog/internal/adapter/embedding"
	"mlcatalog/internal/adapter/memstore"
	"mlcatalog/internal/domain"
	"mlcatalog/internal/port"
)

// fakeVectorStore records upserts in memory and answers searches with a
// canned result list.
type fakeVectorStore struct {
	items   map[string]port.VectorItem
	results []port.VectorResult
	cleared bool
}

func newFakeVectorStore() *fakeVectorStore {
	return &fakeVectorStore{items: make(map[string]port.VectorItem)}
}

func (f *fakeVectorStore) Upsert(items []port.VectorItem) error {
	for _, it := range items {
		f.items[it.ID] = it
	}
	return nil
}

func (f *fakeVectorStore) Search(_ []float32, k int) ([]port.VectorResult, error) {
	if k > len(f.results) {
		k = len(f.results)
	}
	return f.results[:k], nil
}

func (f *fakeVectorStore) Delete(ids []string) error {
	for _, id := range ids {
		delete(f.items, id)
	}
	return nil
}

func (f *fakeVectorStore) Count() (int, error) {
	return len(f.items), nil
}

func (f *fakeVectorStore) Clear() error {
	f.items = make(map[string]port.VectorItem)
	f.cleared = true
	return nil
}

func TestReembed(t *testing.T) {
	store := memstore.NewMemoryStore()
	store.UpsertFunction("calcAngle", domain.EnhancedFunction{
		FunctionRecord: domain.FunctionRecord{
			Name:         "calcAngle",
			Category:     domain.CategoryMain,
			RawSignature: "function ang = calcAngle(v1, v2)",
			ParentFile:   "calcAngle.m",
		},
		Description: "Angle between two vectors.",
	})
	store.UpsertFunction("recon", domain.EnhancedFunction{
		FunctionRecord: domain.FunctionRecord{
			Name:         "recon",
			Category:     domain.CategoryMain,
			RawSignature: "function img = recon(kdata)",
			ParentFile:   "recon.m",
		},
	})

	vs := newFakeVectorStore()
	// Stale entry from a previous model must not survive the rebuild.
	vs.items["gone|gone"] = port.VectorItem{ID: "gone|gone"}

	uc := NewReembedUseCase(store, embedding.NewMockEmbedder(8), vs)

	var progressCalls int
	result, err := uc.Reembed(func(done, total int) { progressCalls++ })
	if err != nil {
		t.Fatal(err)
	}

	if result.FunctionsEmbedded != 2 {
		t.Errorf("embedded = %d, want 2", result.FunctionsEmbedded)
	}
	if result.Model != "mock" || result.Dimension != 8 {
		t.Errorf("model = %s/%d", result.Model, result.Dimension)
	}
	if !vs.cleared {
		t.Error("vector store not cleared before rebuild")
	}
	if _, ok := vs.items["gone|gone"]; ok {
		t.Error("stale vector survived")
	}
	if progressCalls != 2 {
		t.Errorf("progress calls = %d", progressCalls)
	}

	item, ok := vs.items["calcAngle|calcAngle"]
	if !ok {
		t.Fatal("calcAngle vector missing")
	}
	if item.Metadata["category"] != "main" || item.Metadata["file"] != "calcAngle.m" {
		t.Errorf("metadata = %v", item.Metadata)
	}
	if len(item.Vector) != 8 {
		t.Errorf("vector dimension = %d", len(item.Vector))
	}
}

func TestReembedEmptyCatalog(t *testing.T) {
	uc := NewReembedUseCase(memstore.NewMemoryStore(), embedding.NewMockEmbedder(4), newFakeVectorStore())
	result, err := uc.Reembed(nil)
	if err != nil {
		t.Fatal(err)
	}
	if result.FunctionsEmbedded != 0 {
		t.Errorf("embedded = %d, want 0", result.FunctionsEmbedded)
	}
}

package usecase

import (
	"fmt"

	"mlcatalog/internal/domain"
	"mlcatalog/internal/port"
)

// VerifyUseCase checks the stored catalog against a fresh extraction pass
// without writing anything.
type VerifyUseCase struct {
	selector  port.FileSelector
	reader    port.FileReader
	extractor port.Extractor
	store     port.CatalogStore
}

func NewVerifyUseCase(
	selector port.FileSelector,
	reader port.FileReader,
	extractor port.Extractor,
	store port.CatalogStore,
) *VerifyUseCase {
	return &VerifyUseCase{
		selector:  selector,
		reader:    reader,
		extractor: extractor,
		store:     store,
	}
}

// VerifyResult reports catalog health.
type VerifyResult struct {
	StoredFunctions int
	ByCategory      map[string]int
	FilesChecked    int
	Missing         []string // extracted but absent from the catalog
	Stale           []string // stored records that no longer extract
	Mismatched      []string // category or parameter count drifted
}

func (r *VerifyResult) Clean() bool {
	return len(r.Missing) == 0 && len(r.Stale) == 0 && len(r.Mismatched) == 0
}

// Verify re-extracts every candidate file in dir and compares the results
// with the stored records.
func (u *VerifyUseCase) Verify(dir string) (*VerifyResult, error) {
	result := &VerifyResult{ByCategory: make(map[string]int)}

	stored, err := u.store.ListFunctions()
	if err != nil {
		return nil, fmt.Errorf("failed to list stored functions: %w", err)
	}
	result.StoredFunctions = len(stored)

	storedKeys := make(map[string]domain.EnhancedFunction, len(stored))
	for _, fn := range stored {
		result.ByCategory[string(fn.Category)]++
		storedKeys[fileStem(fn.ParentFile)+"|"+fn.Name] = fn
	}

	paths, err := u.selector.Select(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to select files: %w", err)
	}

	extractedKeys := make(map[string]bool)
	for _, path := range paths {
		content, err := u.reader.ReadFile(path)
		if err != nil {
			continue
		}
		sf, _, err := u.extractor.Extract(path, content)
		if err != nil {
			continue
		}
		result.FilesChecked++

		stem := fileStem(path)
		for _, fn := range sf.Functions {
			key := stem + "|" + fn.Name
			extractedKeys[key] = true

			got, ok := storedKeys[key]
			if !ok {
				result.Missing = append(result.Missing, key)
				continue
			}
			if got.Category != fn.Category {
				result.Mismatched = append(result.Mismatched,
					fmt.Sprintf("%s: category %s, stored %s", key, fn.Category, got.Category))
			} else if len(got.Parameters) != len(fn.Parameters) {
				result.Mismatched = append(result.Mismatched,
					fmt.Sprintf("%s: %d parameters, stored %d", key, len(fn.Parameters), len(got.Parameters)))
			}
		}
	}

	for key := range storedKeys {
		if !extractedKeys[key] {
			result.Stale = append(result.Stale, key)
		}
	}

	return result, nil
}

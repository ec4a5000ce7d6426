package port

import "mlcatalog/internal/domain"

// Extractor turns one MATLAB file's text into structured function records.
type Extractor interface {
	// Extract parses content read from path. It returns the per-file result
	// and any diagnostics raised; it only errors on conditions that make the
	// whole file unusable.
	Extract(path, content string) (domain.SourceFile, []domain.Diagnostic, error)
}

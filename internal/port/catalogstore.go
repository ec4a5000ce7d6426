package port

import "mlcatalog/internal/domain"

// CatalogStore persists enhanced function records keyed by (file, function).
type CatalogStore interface {
	UpsertFunction(fileStem string, fn domain.EnhancedFunction) error

	GetFunction(fileStem, name string) (domain.EnhancedFunction, error)

	// FindByName returns every record whose function name matches, across files.
	FindByName(name string) ([]domain.EnhancedFunction, error)

	ListFunctions() ([]domain.EnhancedFunction, error)

	DeleteFile(fileStem string) error

	GetStats() (domain.Stats, error)

	UpdateStats(stats domain.Stats) error

	Close() error
}

package port

import (
	"context"

	"mlcatalog/internal/domain"
)

// Enhancer generates documentation for an extracted function. It reads the
// record and never mutates extraction output.
type Enhancer interface {
	Enhance(ctx context.Context, fn domain.FunctionRecord) (domain.EnhancedFunction, error)

	// ModelName returns the name of the underlying model.
	ModelName() string
}

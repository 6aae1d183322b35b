package catalog

import (
	"errors"
	"fmt"
)

// Sentinel errors. Use with errors.Is().
var (
	// ErrNotFound is returned when a referenced catalog entity is absent.
	ErrNotFound = errors.New("not found")

	// ErrNoComposition is returned when manufacturing is requested for a
	// product with an empty bill of materials.
	ErrNoComposition = errors.New("no composition defined")
)

// NotFoundError identifies which entity was missing.
type NotFoundError struct {
	Kind string // "raw material", "product", "client", ...
	ID   int64
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %d not found", e.Kind, e.ID)
}

func (e *NotFoundError) Unwrap() error { return ErrNotFound }

// NoCompositionError reports a manufacturing request against a product
// that has no bill of materials.
type NoCompositionError struct {
	ProductID int64
	Name      string
}

func (e *NoCompositionError) Error() string {
	return fmt.Sprintf("product %d (%s) has no composition defined", e.ProductID, e.Name)
}

func (e *NoCompositionError) Unwrap() error { return ErrNoComposition }

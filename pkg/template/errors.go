package template

import "errors"

var (
	// ErrNotFound is returned when no matching template exists.
	ErrNotFound = errors.New("template not found")

	// ErrMissingName is returned when persisting a template without a name.
	ErrMissingName = errors.New("template name is required")

	// ErrInvalidCatalog is returned when a YAML catalog cannot be parsed.
	ErrInvalidCatalog = errors.New("invalid template catalog")
)

package catalog

import "errors"

var (
	// ErrNotFound is returned when no entry has the name.
	ErrNotFound = errors.New("catalog: sound not found")
	// ErrExists is returned when creating an entry under a used name.
	ErrExists = errors.New("catalog: sound already exists")
	// ErrInvalidEntry is returned for an entry without a name or path.
	ErrInvalidEntry = errors.New("catalog: name and path are required")
)

package media

import "errors"

var (
	// ErrInvalidPath is returned for absolute paths and paths that leave
	// the media root.
	ErrInvalidPath = errors.New("media: invalid path")
	// ErrUnsupported is returned for an extension outside media.extensions.
	ErrUnsupported = errors.New("media: unsupported format")
	// ErrNotFound is returned when the file does not exist.
	ErrNotFound = errors.New("media: file not found")
	// ErrCorrupt is returned when the header cannot be decoded.
	ErrCorrupt = errors.New("media: corrupt file")
)

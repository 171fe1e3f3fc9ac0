package host

import "errors"

var (
	// ErrNodeExists is returned when adding a node under a used id.
	ErrNodeExists = errors.New("host: node already exists")
	// ErrNodeNotFound is returned for an unknown node or target.
	ErrNodeNotFound = errors.New("host: node not found")
	// ErrInvalidNode is returned for an empty id or a cycle.
	ErrInvalidNode = errors.New("host: invalid node")
	// ErrStopped is returned by Do once the loop has exited.
	ErrStopped = errors.New("host: loop stopped")
)

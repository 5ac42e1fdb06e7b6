// Package nerrors collects the small vocabulary of error kinds every layer of
// NanoDB raises, so callers can use errors.Is uniformly instead of each
// package declaring its own near-duplicate sentinels.
package nerrors

import "errors"

var (
	// ErrIoError wraps any backing-file failure. Fatal to the current
	// operation; surfaced up unchanged.
	ErrIoError = errors.New("io error")

	// ErrInvalidArg marks a precondition violation: out-of-range offset,
	// wrong slot state, duplicate name, varchar too long, write to a free
	// page. Field type mismatches use ErrTypeMismatch instead.
	ErrInvalidArg = errors.New("invalid argument")

	// ErrNoFreePage means the disk bitmap is exhausted.
	ErrNoFreePage = errors.New("no free page")

	// ErrBufferFull means the buffer pool is at capacity. Distinct from
	// ErrNoFreePage: the disk may still have room.
	ErrBufferFull = errors.New("buffer full")

	// ErrPageNotFound means unpin/flush targeted a non-resident page.
	ErrPageNotFound = errors.New("page not found")

	// ErrRelationNotFound means a catalog lookup missed.
	ErrRelationNotFound = errors.New("relation not found")

	// ErrEmptyRecord marks a tuple-level decode over a slot with no data.
	ErrEmptyRecord = errors.New("empty record")

	// ErrTypeMismatch marks a tuple-level type validation failure.
	ErrTypeMismatch = errors.New("type mismatch")
)

package pincol

import (
	"errors"

	"github.com/hupe1980/pincol/storage"
)

var (
	// ErrClosed is returned when a collection is used after Close.
	ErrClosed = errors.New("pincol: collection closed")

	// ErrNegativeIndex is returned for negative slot indices.
	ErrNegativeIndex = errors.New("pincol: negative index")

	// ErrGrowthAborted is the cause of the allocation error handed to every
	// waiter of a growth episode whose grower panicked inside the storage.
	ErrGrowthAborted = errors.New("pincol: growth aborted")

	// ErrMaximumCapacity is the cause of allocation errors raised when the
	// storage cannot grow any further.
	ErrMaximumCapacity = storage.ErrMaximumCapacity
)

// AllocationError reports a failed growth. It is the only error a growth
// episode produces, so callers may retry after freeing memory or reserving
// more capacity.
//
// The original underlying error can be accessed via errors.Unwrap.
type AllocationError = storage.AllocationError

// IsAllocationError reports whether err is, or wraps, an AllocationError.
func IsAllocationError(err error) bool {
	var allocErr *AllocationError
	return errors.As(err, &allocErr)
}

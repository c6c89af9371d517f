package policy

import "github.com/cockroachdb/errors"

// Outcomes reported by containers under the error-returning policies.
var (
	ErrInvalidPolicy   = errors.New("invalid container policy")
	ErrEmpty           = errors.New("container is empty")
	ErrIndexOutOfRange = errors.New("index out of range")
	ErrForeignNode     = errors.New("node handle does not belong to this list")
	ErrClosed          = errors.New("container is closed")
	ErrCapacity        = errors.New("capacity exhausted")
	ErrSentinelType    = errors.New("sentinel type does not match element type")
)

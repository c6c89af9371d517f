package vector

import (
	"math"

	"fortio.org/safecast"
	"github.com/cockroachdb/errors"
	"github.com/cockroachdb/redact"
)

// nextCap returns max(ceil(cur*factor), cur+1).
func nextCap(cur int, factor float64) (int, error) {
	if cur == math.MaxInt {
		return 0, errors.Newf("capacity %d cannot grow", redact.Safe(cur))
	}
	scaled := math.Ceil(float64(cur) * factor)
	if scaled >= math.MaxInt {
		return 0, errors.Newf("capacity %d * %v overflows int", redact.Safe(cur), redact.Safe(factor))
	}
	c, err := safecast.Convert[int](scaled)
	if err != nil {
		return 0, errors.Wrapf(err, "capacity %d * %v", redact.Safe(cur), redact.Safe(factor))
	}
	return max(c, cur+1), nil
}

// shrinkCap returns the capacity to shrink to once n elements remain, or
// cur when no shrink is due. It never goes below floor or n.
func shrinkCap(cur, n, floor int, factor float64) int {
	if cur <= floor {
		return cur
	}
	if float64(n) > float64(cur)/(factor*factor) {
		return cur
	}
	c := int(math.Ceil(float64(cur) / factor))
	return max(c, floor, n)
}

// allocate makes a slice of length n and capacity c, turning the runtime's
// size panics into errors.
func allocate[T any](n, c int) (buf []T, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = errors.Newf("allocating %d elements: %v", redact.Safe(c), r)
		}
	}()
	return make([]T, n, c), nil
}

package policy

import (
	"strings"

	"github.com/cockroachdb/errors"
)

// Bounds governs out-of-range index access and foreign-handle detection.
type Bounds uint8

const (
	// BoundsDisabled leaves out-of-range access unspecified.
	BoundsDisabled Bounds = iota
	// BoundsCheckedAbort terminates through the diagnostics bridge.
	BoundsCheckedAbort
	// BoundsCheckedResult returns an error outcome.
	BoundsCheckedResult
)

func (b Bounds) valid() bool { return b <= BoundsCheckedResult }

func (b Bounds) String() string {
	switch b {
	case BoundsDisabled:
		return "disabled"
	case BoundsCheckedAbort:
		return "checked-abort"
	case BoundsCheckedResult:
		return "checked-result"
	}
	return "unknown"
}

// ParseBounds converts a manifest spelling to Bounds.
func ParseBounds(s string) (Bounds, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "disabled", "off", "none":
		return BoundsDisabled, nil
	case "checked-abort", "abort":
		return BoundsCheckedAbort, nil
	case "checked-result", "result", "error":
		return BoundsCheckedResult, nil
	}
	return BoundsDisabled, errors.Newf("invalid bounds checking %q (expected: disabled|checked-abort|checked-result)", s)
}

// EmptyPop governs popping from an empty container.
type EmptyPop uint8

const (
	// PopSentinel returns the designated sentinel without failing.
	PopSentinel EmptyPop = iota
	// PopAbort terminates through the diagnostics bridge.
	PopAbort
	// PopError returns an "empty" error outcome.
	PopError
)

func (p EmptyPop) valid() bool { return p <= PopError }

func (p EmptyPop) String() string {
	switch p {
	case PopSentinel:
		return "sentinel"
	case PopAbort:
		return "abort"
	case PopError:
		return "error"
	}
	return "unknown"
}

// ParseEmptyPop converts a manifest spelling to EmptyPop.
func ParseEmptyPop(s string) (EmptyPop, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "sentinel", "return-sentinel":
		return PopSentinel, nil
	case "abort":
		return PopAbort, nil
	case "error", "return-error":
		return PopError, nil
	}
	return PopSentinel, errors.Newf("invalid empty pop policy %q (expected: sentinel|abort|error)", s)
}

// Linkage selects the traversal directions of a list.
type Linkage uint8

const (
	// Doubly links every node to both neighbours.
	Doubly Linkage = iota
	// Singly links nodes forward only.
	Singly
)

func (l Linkage) valid() bool { return l <= Singly }

func (l Linkage) String() string {
	switch l {
	case Doubly:
		return "doubly"
	case Singly:
		return "singly"
	}
	return "unknown"
}

// ParseLinkage converts a manifest spelling to Linkage. Empty means Doubly.
func ParseLinkage(s string) (Linkage, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "doubly", "double":
		return Doubly, nil
	case "singly", "single":
		return Singly, nil
	}
	return Doubly, errors.Newf("invalid linkage %q (expected: singly|doubly)", s)
}

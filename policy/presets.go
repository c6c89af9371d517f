package policy

// Checked returns error outcomes for both bounds and empty pops.
type Checked struct{ Defaults }

func (Checked) Bounds() Bounds     { return BoundsCheckedResult }
func (Checked) EmptyPop() EmptyPop { return PopError }

// Strict aborts on any violation.
type Strict struct{ Defaults }

func (Strict) Bounds() Bounds     { return BoundsCheckedAbort }
func (Strict) EmptyPop() EmptyPop { return PopAbort }

// Lenient performs no bounds checking and pops the sentinel on empty.
type Lenient struct{ Defaults }

func (Lenient) Bounds() Bounds     { return BoundsDisabled }
func (Lenient) EmptyPop() EmptyPop { return PopSentinel }

// Forward is Checked over a singly linked list.
type Forward struct{ Defaults }

func (Forward) Bounds() Bounds     { return BoundsCheckedResult }
func (Forward) EmptyPop() EmptyPop { return PopError }
func (Forward) Linkage() Linkage   { return Singly }

// Compile-time checks.
var (
	_ Policy = Checked{}
	_ Policy = Strict{}
	_ Policy = Lenient{}
	_ Policy = Forward{}
)

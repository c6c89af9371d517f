// Package policy defines the configuration surface of blop containers.
//
// A policy is a zero-size struct type passed as a type parameter to the
// container engines. Its methods return constants, so each instantiation is
// fixed at compile time:
//
//	type IntPolicy struct{ policy.Defaults }
//
//	func (IntPolicy) Bounds() policy.Bounds     { return policy.BoundsCheckedResult }
//	func (IntPolicy) EmptyPop() policy.EmptyPop { return policy.PopError }
//
//	l, err := list.New[int, IntPolicy]()
//
// Bounds and EmptyPop are required. Defaults supplies the optional methods
// (Linkage, GrowthFactor, Shrink) and nothing else, so a policy type missing
// a required method does not satisfy Policy and fails to compile.
package policy

import (
	"math"
	"strconv"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/cockroachdb/redact"
)

// DefaultGrowthFactor is the vector capacity multiplier used by Defaults.
const DefaultGrowthFactor = 2.0

// Policy is the type constraint every container policy satisfies.
type Policy interface {
	Bounds() Bounds
	EmptyPop() EmptyPop
	Linkage() Linkage
	GrowthFactor() float64
	Shrink() bool
}

// Defaults provides the optional half of a Policy. Embed it in a policy
// struct and declare Bounds and EmptyPop yourself.
type Defaults struct{}

// Linkage returns Doubly.
func (Defaults) Linkage() Linkage { return Doubly }

// GrowthFactor returns DefaultGrowthFactor.
func (Defaults) GrowthFactor() float64 { return DefaultGrowthFactor }

// Shrink returns false.
func (Defaults) Shrink() bool { return false }

// Config is the plain-data record of a policy.
type Config struct {
	Bounds       Bounds
	EmptyPop     EmptyPop
	Linkage      Linkage
	GrowthFactor float64
	Shrink       bool
}

// Of reads the configuration of policy type P.
func Of[P Policy]() Config {
	var p P
	return Config{
		Bounds:       p.Bounds(),
		EmptyPop:     p.EmptyPop(),
		Linkage:      p.Linkage(),
		GrowthFactor: p.GrowthFactor(),
		Shrink:       p.Shrink(),
	}
}

// Validate checks the values a policy reports. Method presence is checked
// by the compiler; value ranges cannot be.
func (c Config) Validate() error {
	if !c.Bounds.valid() {
		return errors.Wrapf(ErrInvalidPolicy, "bounds checking %d", redact.Safe(uint8(c.Bounds)))
	}
	if !c.EmptyPop.valid() {
		return errors.Wrapf(ErrInvalidPolicy, "empty pop policy %d", redact.Safe(uint8(c.EmptyPop)))
	}
	if !c.Linkage.valid() {
		return errors.Wrapf(ErrInvalidPolicy, "linkage %d", redact.Safe(uint8(c.Linkage)))
	}
	if math.IsNaN(c.GrowthFactor) || math.IsInf(c.GrowthFactor, 0) || c.GrowthFactor <= 1.0 {
		return errors.WithHint(
			errors.Wrapf(ErrInvalidPolicy, "growth factor %v", redact.Safe(c.GrowthFactor)),
			"the growth factor must be a finite number greater than 1.0",
		)
	}
	return nil
}

// Checked reports whether out-of-range and ownership violations are detected.
func (c Config) Checked() bool { return c.Bounds != BoundsDisabled }

// Key returns a stable textual identity, used to key instantiations.
func (c Config) Key() string {
	var b strings.Builder
	b.WriteString(c.Bounds.String())
	b.WriteByte('/')
	b.WriteString(c.EmptyPop.String())
	b.WriteByte('/')
	b.WriteString(c.Linkage.String())
	b.WriteByte('/')
	b.WriteString(strconv.FormatFloat(c.GrowthFactor, 'g', -1, 64))
	if c.Shrink {
		b.WriteString("/shrink")
	}
	return b.String()
}

func (c Config) String() string { return c.Key() }

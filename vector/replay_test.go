package vector_test

import (
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/require"

	"blop/diag"
	"blop/internal/testkit"
	"blop/policy"
	"blop/vector"
)

type shrinking struct{ policy.Defaults }

func (shrinking) Bounds() policy.Bounds     { return policy.BoundsCheckedResult }
func (shrinking) EmptyPop() policy.EmptyPop { return policy.PopSentinel }
func (shrinking) GrowthFactor() float64     { return 1.5 }
func (shrinking) Shrink() bool              { return true }

func TestReplayAgainstDeque(t *testing.T) {
	quiet := vector.WithBridge(diag.Nop)
	for name, mk := range map[string]func() (vector.Ops[int], error){
		"checked":   func() (vector.Ops[int], error) { return vector.New[int, policy.Checked](quiet) },
		"shrinking": func() (vector.Ops[int], error) { return vector.New[int, shrinking](quiet, vector.WithCapacity(2)) },
	} {
		t.Run(name, func(t *testing.T) {
			v, err := mk()
			require.NoError(t, err)
			require.NoError(t, testkit.ReplayVector(v, rand.New(rand.NewPCG(3, 4)), 2000))
			require.NoError(t, v.Close())
		})
	}
}

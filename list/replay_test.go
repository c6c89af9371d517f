package list_test

import (
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/require"

	"blop/diag"
	"blop/internal/testkit"
	"blop/list"
	"blop/policy"
)

func TestReplayAgainstDeque(t *testing.T) {
	quiet := list.WithBridge(diag.Nop)
	for name, mk := range map[string]func() (list.Ops[int], error){
		"checked": func() (list.Ops[int], error) { return list.New[int, policy.Checked](quiet) },
		"forward": func() (list.Ops[int], error) { return list.New[int, policy.Forward](quiet) },
		"lenient": func() (list.Ops[int], error) { return list.New[int, policy.Lenient](quiet) },
	} {
		t.Run(name, func(t *testing.T) {
			l, err := mk()
			require.NoError(t, err)
			require.NoError(t, testkit.ReplayList(l, rand.New(rand.NewPCG(1, 2)), 2000))
			require.NoError(t, l.Close())
		})
	}
}

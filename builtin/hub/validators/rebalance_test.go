// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package validators

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vechain/stakehub/builtin/hub/delta"
	"github.com/vechain/stakehub/builtin/hub/reverts"
)

func val(name string, delegated int64, status Status) *Validator {
	return &Validator{Address: addr(name), Delegated: big.NewInt(delegated), Status: status}
}

func apply(vals []*Validator, moves delta.Moves) {
	for _, m := range moves {
		for _, v := range vals {
			if v.Address == m.From {
				v.Delegated = new(big.Int).Sub(v.Delegated, m.Amount)
			}
			if v.Address == m.To {
				v.Delegated = new(big.Int).Add(v.Delegated, m.Amount)
			}
		}
	}
}

func amounts(vals []*Validator) []int64 {
	out := make([]int64, len(vals))
	for i, v := range vals {
		out[i] = v.Delegated.Int64()
	}
	return out
}

func TestSplitDelegation(t *testing.T) {
	// evenly when nothing is delegated, remainder to the lowest address
	vals := []*Validator{val("c", 0, StatusActive), val("a", 0, StatusActive), val("b", 0, StatusActive)}
	allocs, err := SplitDelegation(vals, big.NewInt(100))
	require.NoError(t, err)
	require.Len(t, allocs, 3)
	assert.Equal(t, addr("a"), allocs[0].Validator)
	assert.Equal(t, big.NewInt(34), allocs[0].Amount)
	assert.Equal(t, big.NewInt(33), allocs[1].Amount)
	assert.Equal(t, big.NewInt(100), allocs.Total())

	// proportionally otherwise, paused validators excluded
	vals = []*Validator{val("a", 300, StatusActive), val("b", 100, StatusActive), val("p", 1000, StatusPaused)}
	allocs, err = SplitDelegation(vals, big.NewInt(101))
	require.NoError(t, err)
	require.Len(t, allocs, 2)
	assert.Equal(t, big.NewInt(76), allocs[0].Amount) // 75 + remainder 1
	assert.Equal(t, big.NewInt(25), allocs[1].Amount)

	// a new validator with nothing gets nothing from a proportional split
	vals = []*Validator{val("a", 10, StatusActive), val("b", 0, StatusActive)}
	allocs, err = SplitDelegation(vals, big.NewInt(5))
	require.NoError(t, err)
	require.Len(t, allocs, 1)
	assert.Equal(t, addr("a"), allocs[0].Validator)

	_, err = SplitDelegation([]*Validator{val("p", 0, StatusPaused)}, big.NewInt(5))
	assert.True(t, reverts.Is(err, reverts.NotFound))
}

func TestSplitUndelegation(t *testing.T) {
	vals := []*Validator{val("a", 100, StatusActive), val("b", 50, StatusPaused), val("c", 0, StatusActive)}

	allocs, err := SplitUndelegation(vals, big.NewInt(100))
	require.NoError(t, err)
	require.Len(t, allocs, 2)
	assert.Equal(t, big.NewInt(67), allocs[0].Amount) // 66 + leftover
	assert.Equal(t, big.NewInt(33), allocs[1].Amount)

	allocs, err = SplitUndelegation(vals, big.NewInt(150))
	require.NoError(t, err)
	assert.Equal(t, big.NewInt(100), allocs[0].Amount)
	assert.Equal(t, big.NewInt(50), allocs[1].Amount)

	allocs, err = SplitUndelegation(vals, new(big.Int))
	require.NoError(t, err)
	assert.Empty(t, allocs)

	_, err = SplitUndelegation(vals, big.NewInt(151))
	assert.True(t, reverts.Is(err, reverts.InsufficientBalance))
}

func TestSmallestLargest(t *testing.T) {
	vals := []*Validator{val("b", 10, StatusActive), val("a", 10, StatusActive), val("c", 50, StatusPaused), val("d", 5, StatusPaused)}
	assert.Equal(t, addr("a"), Smallest(vals).Address)
	assert.Equal(t, addr("c"), Largest(vals).Address)

	vals[2].Delegated = big.NewInt(10)
	assert.Equal(t, addr("a"), Largest(vals).Address)

	assert.Nil(t, Smallest([]*Validator{val("p", 0, StatusPaused)}))
	assert.Nil(t, Largest(nil))
}

func TestPlan(t *testing.T) {
	vals := []*Validator{val("a", 500, StatusActive), val("b", 100, StatusActive), val("c", 0, StatusActive)}
	moves := Plan(vals, nil)
	require.Len(t, moves, 2)
	assert.Equal(t, delta.Move{From: addr("a"), To: addr("c"), Amount: big.NewInt(200)}, moves[0])
	assert.Equal(t, delta.Move{From: addr("a"), To: addr("b"), Amount: big.NewInt(100)}, moves[1])

	apply(vals, moves)
	assert.Equal(t, []int64{200, 200, 200}, amounts(vals))
	assert.Empty(t, Plan(vals, nil))
}

func TestPlan_Remainder(t *testing.T) {
	vals := []*Validator{val("c", 0, StatusActive), val("b", 0, StatusActive), val("a", 10, StatusActive)}
	moves := Plan(vals, nil)
	apply(vals, moves)
	// 10 = 4 + 3 + 3, the extra unit on the lowest address
	assert.Equal(t, []int64{3, 3, 4}, amounts(vals))
	assert.Equal(t, big.NewInt(6), moves.Total())
	assert.Empty(t, Plan(vals, nil))
}

func TestPlan_TieBreak(t *testing.T) {
	// equal surpluses and deficits resolve by address
	vals := []*Validator{val("d", 0, StatusActive), val("b", 20, StatusActive), val("a", 20, StatusActive), val("c", 0, StatusActive)}
	moves := Plan(vals, nil)
	require.Len(t, moves, 2)
	assert.Equal(t, addr("a"), moves[0].From)
	assert.Equal(t, addr("c"), moves[0].To)
	assert.Equal(t, addr("b"), moves[1].From)
	assert.Equal(t, addr("d"), moves[1].To)
}

func TestPlan_PausedDrained(t *testing.T) {
	vals := []*Validator{val("a", 100, StatusActive), val("p", 60, StatusPaused)}
	moves := Plan(vals, nil)
	require.Len(t, moves, 1)
	assert.Equal(t, delta.Move{From: addr("p"), To: addr("a"), Amount: big.NewInt(60)}, moves[0])

	// nowhere to go
	assert.Empty(t, Plan([]*Validator{val("p", 60, StatusPaused)}, nil))
	assert.Empty(t, Plan(nil, nil))
}

func TestPlan_Minimum(t *testing.T) {
	vals := []*Validator{val("a", 110, StatusActive), val("b", 95, StatusActive), val("c", 95, StatusActive)}
	assert.Empty(t, Plan(vals, big.NewInt(11)))

	moves := Plan(vals, big.NewInt(5))
	apply(vals, moves)
	assert.Len(t, moves, 2)
	assert.Equal(t, []int64{100, 100, 100}, amounts(vals))

	// a fixed point for any minimum
	vals = []*Validator{val("a", 107, StatusActive), val("b", 100, StatusActive), val("c", 90, StatusActive)}
	minimum := big.NewInt(5)
	apply(vals, Plan(vals, minimum))
	assert.Empty(t, Plan(vals, minimum))
}

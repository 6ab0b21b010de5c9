// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package delta

import (
	"math/big"

	"github.com/vechain/stakehub/thor"
)

// Allocation is an amount assigned to one validator.
type Allocation struct {
	Validator thor.Address
	Amount    *big.Int
}

type Allocations []Allocation

// Total sums all allocated amounts.
func (a Allocations) Total() *big.Int {
	total := new(big.Int)
	for _, alloc := range a {
		total.Add(total, alloc.Amount)
	}
	return total
}

// NonZero drops allocations with a zero amount.
func (a Allocations) NonZero() Allocations {
	out := make(Allocations, 0, len(a))
	for _, alloc := range a {
		if alloc.Amount.Sign() > 0 {
			out = append(out, alloc)
		}
	}
	return out
}

// Move is a redelegation of Amount from one validator to another.
type Move struct {
	From   thor.Address
	To     thor.Address
	Amount *big.Int
}

type Moves []Move

func (m Moves) Total() *big.Int {
	total := new(big.Int)
	for _, mv := range m {
		total.Add(total, mv.Amount)
	}
	return total
}

// Settlement compares what was expected with what was received, for a matured batch or a
// reconciled delegation.
type Settlement struct {
	Expected  *big.Int
	Received  *big.Int
	Shortfall *big.Int
	Surplus   *big.Int
}

func NewSettlement(expected, received *big.Int) *Settlement {
	s := &Settlement{
		Expected:  new(big.Int).Set(expected),
		Received:  new(big.Int).Set(received),
		Shortfall: new(big.Int),
		Surplus:   new(big.Int),
	}
	switch diff := new(big.Int).Sub(received, expected); diff.Sign() {
	case -1:
		s.Shortfall.Neg(diff)
	case 1:
		s.Surplus.Set(diff)
	}
	return s
}

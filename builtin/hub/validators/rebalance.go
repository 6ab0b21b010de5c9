// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package validators

import (
	"math/big"
	"slices"

	"github.com/vechain/stakehub/builtin/hub/delta"
)

// Targets returns the equal-weight allocation of the members' total delegation. Active
// validators share it evenly with the remainder on the lexicographically first one, paused
// validators get nothing. With no active validator every target is the current delegation.
func Targets(vals []*Validator) map[*Validator]*big.Int {
	targets := make(map[*Validator]*big.Int, len(vals))
	total := new(big.Int)
	for _, v := range vals {
		total.Add(total, v.Delegated)
		targets[v] = new(big.Int)
	}
	act := active(vals)
	if len(act) == 0 {
		for _, v := range vals {
			targets[v].Set(v.Delegated)
		}
		return targets
	}
	slices.SortFunc(act, byAddress)

	each, rem := new(big.Int).DivMod(total, big.NewInt(int64(len(act))), new(big.Int))
	for _, v := range act {
		targets[v].Set(each)
	}
	targets[act[0]].Add(targets[act[0]], rem)
	return targets
}

type gap struct {
	v      *Validator
	amount *big.Int
}

// largest returns the index of the biggest gap, ties to the lowest address.
func largest(gaps []*gap) int {
	best := -1
	for i, g := range gaps {
		if g.amount.Sign() == 0 {
			continue
		}
		if best < 0 {
			best = i
			continue
		}
		if c := g.amount.Cmp(gaps[best].amount); c > 0 || (c == 0 && byAddress(g.v, gaps[best].v) < 0) {
			best = i
		}
	}
	return best
}

// Plan computes the redelegations moving the set toward its targets. Each step pairs the
// largest surplus with the largest deficit. Planning stops once the best pair moves less
// than minimum, so applying the plan and planning again yields nothing.
func Plan(vals []*Validator, minimum *big.Int) delta.Moves {
	if minimum == nil || minimum.Sign() <= 0 {
		minimum = big.NewInt(1)
	}
	targets := Targets(vals)

	var sources, sinks []*gap
	for _, v := range vals {
		switch diff := new(big.Int).Sub(v.Delegated, targets[v]); diff.Sign() {
		case 1:
			sources = append(sources, &gap{v, diff})
		case -1:
			sinks = append(sinks, &gap{v, diff.Neg(diff)})
		}
	}

	var moves delta.Moves
	for {
		si, di := largest(sources), largest(sinks)
		if si < 0 || di < 0 {
			break
		}
		src, dst := sources[si], sinks[di]
		amount := new(big.Int).Set(src.amount)
		if dst.amount.Cmp(amount) < 0 {
			amount.Set(dst.amount)
		}
		if amount.Cmp(minimum) < 0 {
			break
		}
		moves = append(moves, delta.Move{From: src.v.Address, To: dst.v.Address, Amount: amount})
		src.amount.Sub(src.amount, amount)
		dst.amount.Sub(dst.amount, amount)
	}
	return moves
}

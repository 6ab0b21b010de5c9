// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package validators

import (
	"math/big"
	"slices"

	"github.com/vechain/stakehub/builtin/hub/delta"
	"github.com/vechain/stakehub/builtin/hub/reverts"
	"github.com/vechain/stakehub/thor"
)

func byAddress(a, b *Validator) int {
	return a.Address.Compare(b.Address)
}

func active(vals []*Validator) []*Validator {
	out := make([]*Validator, 0, len(vals))
	for _, v := range vals {
		if v.IsActive() {
			out = append(out, v)
		}
	}
	return out
}

// SplitDelegation divides amount across active validators in proportion to their
// delegation, or evenly when none holds any. The rounding remainder goes to the
// lexicographically first active validator.
func SplitDelegation(vals []*Validator, amount *big.Int) (delta.Allocations, error) {
	targets := active(vals)
	if len(targets) == 0 {
		return nil, reverts.New(reverts.NotFound, "no active validator")
	}
	slices.SortFunc(targets, byAddress)

	total := new(big.Int)
	for _, v := range targets {
		total.Add(total, v.Delegated)
	}

	allocs := make(delta.Allocations, len(targets))
	assigned := new(big.Int)
	for i, v := range targets {
		var share *big.Int
		if total.Sign() == 0 {
			share = new(big.Int).Div(amount, big.NewInt(int64(len(targets))))
		} else {
			share, _ = thor.MulDiv(amount, v.Delegated, total)
		}
		allocs[i] = delta.Allocation{Validator: v.Address, Amount: share}
		assigned.Add(assigned, share)
	}
	allocs[0].Amount.Add(allocs[0].Amount, new(big.Int).Sub(amount, assigned))
	return allocs.NonZero(), nil
}

// SplitUndelegation takes amount from member validators in proportion to their delegation,
// never more than a validator holds. Rounding leftovers are taken in address order.
func SplitUndelegation(vals []*Validator, amount *big.Int) (delta.Allocations, error) {
	sources := make([]*Validator, 0, len(vals))
	total := new(big.Int)
	for _, v := range vals {
		if v.IsMember() && v.Delegated.Sign() > 0 {
			sources = append(sources, v)
			total.Add(total, v.Delegated)
		}
	}
	if total.Cmp(amount) < 0 {
		return nil, reverts.Newf(reverts.InsufficientBalance, "undelegate %v of %v delegated", amount, total)
	}
	if amount.Sign() == 0 {
		return nil, nil
	}
	slices.SortFunc(sources, byAddress)

	allocs := make(delta.Allocations, len(sources))
	left := new(big.Int).Set(amount)
	for i, v := range sources {
		share, _ := thor.MulDiv(amount, v.Delegated, total)
		allocs[i] = delta.Allocation{Validator: v.Address, Amount: share}
		left.Sub(left, share)
	}
	for i, v := range sources {
		if left.Sign() == 0 {
			break
		}
		room := new(big.Int).Sub(v.Delegated, allocs[i].Amount)
		take := thor.MinAmount(room, left)
		allocs[i].Amount.Add(allocs[i].Amount, take)
		left.Sub(left, take)
	}
	return allocs.NonZero(), nil
}

// Smallest returns the active validator with the least delegation, ties to the lowest address.
func Smallest(vals []*Validator) *Validator {
	var best *Validator
	for _, v := range active(vals) {
		if best == nil {
			best = v
			continue
		}
		if c := v.Delegated.Cmp(best.Delegated); c < 0 || (c == 0 && byAddress(v, best) < 0) {
			best = v
		}
	}
	return best
}

// Largest returns the member validator with the most delegation, ties to the lowest address.
func Largest(vals []*Validator) *Validator {
	var best *Validator
	for _, v := range vals {
		if !v.IsMember() {
			continue
		}
		if best == nil {
			best = v
			continue
		}
		if c := v.Delegated.Cmp(best.Delegated); c > 0 || (c == 0 && byAddress(v, best) < 0) {
			best = v
		}
	}
	return best
}

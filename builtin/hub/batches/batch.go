// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package batches

import (
	"math/big"
)

type State = uint8

const (
	StateAccepting = State(iota) // the current batch, admits requests
	StateSubmitted               // closed, undelegation issued
	StateMatured                 // funds received, open for claims
)

func StateName(s State) string {
	switch s {
	case StateAccepting:
		return "accepting"
	case StateSubmitted:
		return "submitted"
	case StateMatured:
		return "matured"
	default:
		return "unknown"
	}
}

// Batch groups the unbond requests undelegated together at one epoch boundary.
type Batch struct {
	ID               uint64
	Burned           *big.Int // derivative burned by all member requests
	Expected         *big.Int // native expected, fixed at close
	Received         *big.Int // native reported at maturity
	UnclaimedShares  *big.Int
	UnclaimedNative  *big.Int
	State            State
	SubmittedAtEpoch uint64
	EstUnbondEndTime uint64
}

func newBatch(id uint64) *Batch {
	b := &Batch{ID: id}
	b.normalize()
	return b
}

func (b *Batch) normalize() {
	for _, p := range []**big.Int{&b.Burned, &b.Expected, &b.Received, &b.UnclaimedShares, &b.UnclaimedNative} {
		if *p == nil {
			*p = new(big.Int)
		}
	}
}

func (b *Batch) IsEmpty() bool {
	return b.Burned.Sign() == 0
}

// payout is the native owed for shares of this matured batch. The last claimant takes the rest.
func (b *Batch) payout(shares *big.Int) *big.Int {
	if shares.Cmp(b.UnclaimedShares) >= 0 {
		return new(big.Int).Set(b.UnclaimedNative)
	}
	return new(big.Int).Div(new(big.Int).Mul(shares, b.UnclaimedNative), b.UnclaimedShares)
}

// Request is one user's stake in one batch.
type Request struct {
	BatchID   uint64
	Shares    *big.Int
	State     State
	Claimable *big.Int // zero until the batch matures
	EndTime   uint64
}

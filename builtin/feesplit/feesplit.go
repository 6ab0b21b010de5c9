// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package feesplit computes how harvested rewards are shared with fee recipients.
package feesplit

import (
	"math/big"

	"github.com/pkg/errors"

	"github.com/vechain/stakehub/thor"
)

// Recipient receives a share of fees proportional to its weight.
type Recipient struct {
	Address thor.Address
	Weight  uint64
}

// Payout is the fee owed to one recipient.
type Payout struct {
	Recipient thor.Address
	Amount    *big.Int
}

// Total sums payouts.
func Total(payouts []Payout) *big.Int {
	total := new(big.Int)
	for _, p := range payouts {
		total.Add(total, p.Amount)
	}
	return total
}

// Splitter distributes the fee part of a reward. The payouts never sum above total.
type Splitter interface {
	Split(total *big.Int, rateBps uint64) ([]Payout, error)
}

// Weighted splits rateBps of the total among fixed recipients by weight. The rounding
// dust goes to the first recipient.
type Weighted struct {
	recipients  []Recipient
	totalWeight uint64
}

func NewWeighted(recipients []Recipient) (*Weighted, error) {
	if len(recipients) == 0 {
		return nil, errors.New("no fee recipient")
	}
	seen := make(map[thor.Address]bool, len(recipients))
	var total uint64
	for _, r := range recipients {
		if r.Address.IsZero() {
			return nil, errors.New("zero fee recipient")
		}
		if seen[r.Address] {
			return nil, errors.Errorf("duplicated fee recipient %v", r.Address)
		}
		if r.Weight == 0 {
			return nil, errors.Errorf("fee recipient %v has zero weight", r.Address)
		}
		seen[r.Address] = true
		if total+r.Weight < total {
			return nil, errors.New("fee weights overflow")
		}
		total += r.Weight
	}
	return &Weighted{
		recipients:  append([]Recipient(nil), recipients...),
		totalWeight: total,
	}, nil
}

func (w *Weighted) Recipients() []Recipient {
	return append([]Recipient(nil), w.recipients...)
}

func (w *Weighted) Split(total *big.Int, rateBps uint64) ([]Payout, error) {
	if rateBps > thor.BasisPoints {
		return nil, errors.Errorf("fee rate %d above %d", rateBps, thor.BasisPoints)
	}
	if !thor.IsAmount(total) {
		return nil, errors.Errorf("reward %v out of range", total)
	}
	fee, _ := thor.MulDiv(total, new(big.Int).SetUint64(rateBps), new(big.Int).SetUint64(thor.BasisPoints))
	if fee.Sign() == 0 {
		return nil, nil
	}

	sumWeight := new(big.Int).SetUint64(w.totalWeight)
	payouts := make([]Payout, len(w.recipients))
	paid := new(big.Int)
	for i, r := range w.recipients {
		amount, _ := thor.MulDiv(fee, new(big.Int).SetUint64(r.Weight), sumWeight)
		payouts[i] = Payout{Recipient: r.Address, Amount: amount}
		paid.Add(paid, amount)
	}
	payouts[0].Amount.Add(payouts[0].Amount, new(big.Int).Sub(fee, paid))

	out := payouts[:0]
	for _, p := range payouts {
		if p.Amount.Sign() > 0 {
			out = append(out, p)
		}
	}
	return out, nil
}

// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package hub

import (
	"math/big"

	"github.com/vechain/stakehub/builtin/feesplit"
	"github.com/vechain/stakehub/builtin/hub/operations"
	"github.com/vechain/stakehub/builtin/hub/rewards"
	"github.com/vechain/stakehub/builtin/hub/validators"
	"github.com/vechain/stakehub/stakemsg"
	"github.com/vechain/stakehub/thor"
)

// Distribution is the outcome of a fully confirmed reward round.
type Distribution struct {
	Round      uint64
	Harvested  *big.Int
	Fees       []feesplit.Payout
	Reinvested *big.Int
}

// Harvest opens a reward round with one withdrawal per validator holding delegation.
// It returns the opened round, or nil when a round is still open or nothing is delegated.
func (h *Hub) Harvest() (*rewards.Round, error) {
	latest, err := h.rewards.Latest()
	if err != nil {
		return nil, err
	}
	if latest != nil && latest.IsOpen() {
		logger.Debug("harvest skipped, round still open", "round", latest.ID, "outstanding", latest.Outstanding)
		return nil, nil
	}

	vals, err := h.validators.List()
	if err != nil {
		return nil, err
	}
	var sources []thor.Address
	for _, v := range vals {
		if v.Delegated.Sign() > 0 {
			sources = append(sources, v.Address)
		}
	}
	if len(sources) == 0 {
		return nil, nil
	}

	round, err := h.rewards.Open(uint64(len(sources)))
	if err != nil {
		return nil, err
	}
	for _, addr := range sources {
		if _, err := h.issue(
			&operations.Operation{Validator: addr, RoundID: round.ID},
			&stakemsg.WithdrawReward{Delegator: h.addr, Validator: addr},
		); err != nil {
			return nil, err
		}
	}
	h.effects.emit("stakehub/harvest_started", "round", round.ID, "withdrawals", len(sources))
	logger.Info("harvest started", "round", round.ID, "withdrawals", len(sources))
	return round, nil
}

// distribute pays the fee of a completed round and reinvests the rest together with idle native.
// Without outstanding shares there is nobody to accrue to, so the recipients take it all. Whatever
// no recipient takes stays in the pool.
func (h *Hub) distribute(round *rewards.Round) (*Distribution, error) {
	d := &Distribution{
		Round:      round.ID,
		Harvested:  new(big.Int).Set(round.Accumulated),
		Reinvested: new(big.Int),
	}
	pool, err := h.ledger.Pool()
	if err != nil {
		return nil, err
	}
	rate, err := FeeRate.Get(h.sctx)
	if err != nil {
		return nil, err
	}
	if pool.Supply.Sign() == 0 {
		rate = thor.BasisPoints
	}
	if h.splitter != nil {
		if d.Fees, err = h.splitter.Split(d.Harvested, rate); err != nil {
			return nil, err
		}
	}
	fees := feesplit.Total(d.Fees)
	for _, p := range d.Fees {
		if err := h.send(&operations.Operation{Recipient: p.Recipient, Amount: p.Amount, RoundID: round.ID}); err != nil {
			return nil, err
		}
	}

	if err := h.ledger.Absorb(new(big.Int).Sub(d.Harvested, fees)); err != nil {
		return nil, err
	}
	if err := h.reinvest(d); err != nil {
		return nil, err
	}
	if err := h.rewards.Account(d.Harvested, fees, d.Reinvested); err != nil {
		return nil, err
	}

	h.effects.emit("stakehub/harvested",
		"round", round.ID,
		"harvested", d.Harvested,
		"fees", fees,
		"reinvested", d.Reinvested,
	)
	logger.Info("rewards distributed", "round", round.ID, "harvested", d.Harvested, "fees", fees, "reinvested", d.Reinvested)
	return d, nil
}

// reinvest delegates all idle native to the active validator with the smallest delegation.
func (h *Hub) reinvest(d *Distribution) error {
	vals, err := h.validators.List()
	if err != nil {
		return err
	}
	target := validators.Smallest(vals)
	if target == nil {
		return nil
	}
	idle, err := h.ledger.TakeIdle(nil)
	if err != nil {
		return err
	}
	if idle.Sign() == 0 {
		return nil
	}
	if err := h.delegate(target.Address, idle); err != nil {
		return err
	}
	d.Reinvested.Set(idle)
	return nil
}

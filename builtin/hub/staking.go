// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package hub

import (
	"math/big"

	"github.com/vechain/stakehub/builtin/hub/validators"
	"github.com/vechain/stakehub/thor"
)

// Bond takes amount of native from sender, delegates it across the active validators
// and mints the derivative to receiver, or to sender when receiver is nil.
func (h *Hub) Bond(sender thor.Address, receiver *thor.Address, amount *big.Int) (*big.Int, error) {
	to := sender
	if receiver != nil && !receiver.IsZero() {
		to = *receiver
	}
	minted, err := h.ledger.Bond(amount)
	if err != nil {
		return nil, err
	}

	vals, err := h.validators.List()
	if err != nil {
		return nil, err
	}
	allocs, err := validators.SplitDelegation(vals, amount)
	if err != nil {
		return nil, err
	}
	for _, a := range allocs {
		if err := h.delegate(a.Validator, a.Amount); err != nil {
			return nil, err
		}
	}
	if err := h.token.Mint(to, minted); err != nil {
		return nil, err
	}

	h.effects.emit("stakehub/bonded",
		"sender", sender,
		"receiver", to,
		"amount", amount,
		"minted", minted,
	)
	logger.Info("bonded", "sender", sender, "receiver", to, "amount", amount, "minted", minted)
	return minted, nil
}

// Unbond burns shares of sender and queues them in the accepting batch. It returns the
// native value of the shares at the current rate, which the batch may still revise.
func (h *Hub) Unbond(sender thor.Address, shares *big.Int) (*big.Int, error) {
	estimate, err := h.ledger.UnbondValue(shares)
	if err != nil {
		return nil, err
	}
	if err := h.token.Burn(sender, shares); err != nil {
		return nil, err
	}
	b, err := h.batches.Request(sender, shares)
	if err != nil {
		return nil, err
	}

	h.effects.emit("stakehub/unbond_requested",
		"sender", sender,
		"batch_id", b.ID,
		"shares", shares,
		"estimate", estimate,
	)
	logger.Info("unbond requested", "sender", sender, "batch", b.ID, "shares", shares, "estimate", estimate)
	return estimate, nil
}

// TransferShares moves derivative between holders.
func (h *Hub) TransferShares(sender, to thor.Address, amount *big.Int) error {
	if err := h.token.Transfer(sender, to, amount); err != nil {
		return err
	}
	h.effects.emit("stakehub/transferred", "from", sender, "to", to, "amount", amount)
	return nil
}

// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package hub

import (
	"math/big"

	"github.com/vechain/stakehub/builtin/hub/delta"
	"github.com/vechain/stakehub/builtin/hub/reverts"
	"github.com/vechain/stakehub/builtin/hub/validators"
	"github.com/vechain/stakehub/thor"
)

func (h *Hub) AddValidator(sender, validator thor.Address) error {
	if err := h.requireAdmin(sender); err != nil {
		return err
	}
	if err := h.validators.Add(validator); err != nil {
		return err
	}
	h.effects.emit("stakehub/validator_added", "validator", validator)
	return nil
}

func (h *Hub) RemoveValidator(sender, validator thor.Address) error {
	if err := h.requireAdmin(sender); err != nil {
		return err
	}
	if err := h.validators.Remove(validator); err != nil {
		return err
	}
	h.effects.emit("stakehub/validator_removed", "validator", validator)
	return nil
}

func (h *Hub) PauseValidator(sender, validator thor.Address) error {
	if err := h.requireAdmin(sender); err != nil {
		return err
	}
	if err := h.validators.Pause(validator); err != nil {
		return err
	}
	h.effects.emit("stakehub/validator_paused", "validator", validator)
	return nil
}

func (h *Hub) ResumeValidator(sender, validator thor.Address) error {
	if err := h.requireAdmin(sender); err != nil {
		return err
	}
	if err := h.validators.Resume(validator); err != nil {
		return err
	}
	h.effects.emit("stakehub/validator_resumed", "validator", validator)
	return nil
}

// Rebalance moves delegation toward an equal split over active validators. Moves smaller than
// minimum are skipped; a nil minimum uses the configured one.
func (h *Hub) Rebalance(sender thor.Address, minimum *big.Int) (delta.Moves, error) {
	if err := h.requireAdmin(sender); err != nil {
		return nil, err
	}
	if minimum == nil {
		n, err := MinRebalanceMove.Get(h.sctx)
		if err != nil {
			return nil, err
		}
		minimum = new(big.Int).SetUint64(n)
	} else if !thor.IsAmount(minimum) {
		return nil, reverts.Newf(reverts.InvalidAmount, "rebalance minimum %v", minimum)
	}

	vals, err := h.validators.List()
	if err != nil {
		return nil, err
	}
	moves := validators.Plan(vals, minimum)
	for _, m := range moves {
		if err := h.redelegate(m.From, m.To, m.Amount); err != nil {
			return nil, err
		}
	}
	h.effects.emit("stakehub/rebalanced", "moves", len(moves), "amount", moves.Total())
	logger.Info("rebalanced", "moves", len(moves), "amount", moves.Total())
	return moves, nil
}

func (h *Hub) SetUnbondPeriod(sender thor.Address, seconds uint64) error {
	if err := h.requireAdmin(sender); err != nil {
		return err
	}
	UnbondPeriod.Override(h.sctx, seconds)
	h.effects.emit("stakehub/unbond_period_updated", "seconds", seconds)
	return nil
}

// UpdateFee sets the fee rate in basis points, capped by the configured maximum.
func (h *Hub) UpdateFee(sender thor.Address, rate uint64) error {
	if err := h.requireAdmin(sender); err != nil {
		return err
	}
	limit, err := MaxFeeRate.Get(h.sctx)
	if err != nil {
		return err
	}
	if rate > limit {
		return reverts.Newf(reverts.InvalidAmount, "fee rate %d above max %d", rate, limit)
	}
	FeeRate.Override(h.sctx, rate)
	h.effects.emit("stakehub/fee_updated", "rate", rate)
	return nil
}

// TransferOwnership proposes a new owner, who takes over with AcceptOwnership.
func (h *Hub) TransferOwnership(sender, newOwner thor.Address) error {
	if err := h.requireAdmin(sender); err != nil {
		return err
	}
	if newOwner.IsZero() {
		return reverts.New(reverts.EncodingError, "zero owner address")
	}
	h.pendingOwner.Set(&newOwner)
	h.effects.emit("stakehub/ownership_proposed", "owner", sender, "pending", newOwner)
	return nil
}

func (h *Hub) AcceptOwnership(sender thor.Address) error {
	pending, err := h.pendingOwner.Get()
	if err != nil {
		return err
	}
	if pending.IsZero() || sender != pending {
		return reverts.Newf(reverts.Unauthorized, "%v is not the pending owner", sender)
	}
	h.admin.Set(&pending)
	h.pendingOwner.Set(nil)
	h.effects.emit("stakehub/ownership_transferred", "owner", pending)
	logger.Info("ownership transferred", "owner", pending)
	return nil
}

func (h *Hub) AcknowledgeRegression(sender thor.Address) error {
	if err := h.requireAdmin(sender); err != nil {
		return err
	}
	if err := h.ledger.Acknowledge(); err != nil {
		return err
	}
	h.effects.emit("stakehub/regression_acknowledged")
	return nil
}

// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package hub

import (
	"math/big"
	"slices"

	"github.com/pkg/errors"

	"github.com/vechain/stakehub/builtin/hub/delta"
	"github.com/vechain/stakehub/builtin/hub/operations"
	"github.com/vechain/stakehub/builtin/hub/reverts"
	"github.com/vechain/stakehub/builtin/hub/validators"
	"github.com/vechain/stakehub/stakemsg"
	"github.com/vechain/stakehub/thor"
)

// Confirmation is the outcome of applying one staking subsystem reply.
type Confirmation struct {
	Operation    *operations.Operation
	Distribution *Distribution // set when the reply completed a reward round
}

// Confirm resolves the operation a reply correlates to. Each reply only touches the records of
// its own operation, so replies of one batch or rebalance may arrive in any order.
func (h *Hub) Confirm(payload []byte) (*Confirmation, error) {
	c, err := stakemsg.DecodeConfirmation(payload)
	if err != nil {
		return nil, err
	}
	op, err := h.operations.Resolve(c.OpID, c.Success, c.Amount)
	if err != nil {
		return nil, err
	}
	outcome := "confirmed"
	if !c.Success {
		outcome = "reverted"
	}
	metricConfirmations().AddWithLabel(1, map[string]string{"kind": op.Kind.String(), "outcome": outcome})

	res := &Confirmation{Operation: op}
	switch op.Kind {
	case stakemsg.KindDelegate:
		if !c.Success {
			err = h.delegateFailed(op)
		}
	case stakemsg.KindUndelegate:
		if !c.Success {
			err = h.undelegateFailed(op)
		}
	case stakemsg.KindBeginRedelegate:
		if !c.Success {
			err = h.redelegateFailed(op)
		}
	case stakemsg.KindWithdrawReward:
		res.Distribution, err = h.rewardWithdrawn(op, c)
	case stakemsg.KindSend:
		if !c.Success {
			err = h.sendFailed(op)
		}
	default:
		err = errors.Errorf("operation %v has unexpected kind %v", op.ID, op.Kind)
	}
	if err != nil {
		return nil, err
	}

	h.effects.emit("stakehub/operation_"+outcome,
		"id", op.ID,
		"kind", op.Kind,
		"amount", op.Amount,
	)
	logger.Debug("operation "+outcome, "id", op.ID, "kind", op.Kind, "validator", op.Validator, "amount", op.Amount)
	return res, nil
}

// delegateFailed takes back the provisional credit. The native stays with the hub as idle.
func (h *Hub) delegateFailed(op *operations.Operation) error {
	amount, err := h.debitUpTo(op.Validator, op.Amount)
	if err != nil {
		return err
	}
	return h.ledger.AddIdle(amount)
}

// undelegateFailed restores the debit and undelegates the amount from the other
// validators, preferring the one holding the most. The refusing validator is only
// asked again when the others cannot cover the amount together.
func (h *Hub) undelegateFailed(op *operations.Operation) error {
	if err := h.validators.Restore(op.Validator, op.Amount); err != nil {
		return err
	}
	vals, err := h.validators.List()
	if err != nil {
		return err
	}
	others := slices.DeleteFunc(slices.Clone(vals), func(v *validators.Validator) bool {
		return v.Address == op.Validator
	})
	if largest := validators.Largest(others); largest != nil && largest.Delegated.Cmp(op.Amount) >= 0 {
		return h.undelegate(largest.Address, op.Amount, op.BatchID)
	}
	allocs, err := validators.SplitUndelegation(others, op.Amount)
	if reverts.Is(err, reverts.InsufficientBalance) {
		allocs, err = validators.SplitUndelegation(vals, op.Amount)
	}
	if err != nil {
		return err
	}
	for _, a := range allocs {
		if err := h.undelegate(a.Validator, a.Amount, op.BatchID); err != nil {
			return err
		}
	}
	return nil
}

// sendFailed keeps a refused transfer with the hub. A claim payout becomes owed to its
// recipient and is paid with the next withdrawal, a fee payout goes back to the pool as idle.
func (h *Hub) sendFailed(op *operations.Operation) error {
	logger.Warn("transfer refused", "op", op.ID, "to", op.Recipient, "amount", op.Amount, "batches", op.Batches, "round", op.RoundID)
	if op.RoundID != 0 {
		return h.ledger.Absorb(op.Amount)
	}
	return h.batches.Owe(op.Recipient, op.Amount)
}

// redelegateFailed reverts a single move.
func (h *Hub) redelegateFailed(op *operations.Operation) error {
	amount, err := h.debitUpTo(op.DstValidator, op.Amount)
	if err != nil {
		return err
	}
	return h.validators.Restore(op.Validator, amount)
}

func (h *Hub) rewardWithdrawn(op *operations.Operation, c *stakemsg.Confirmation) (*Distribution, error) {
	reward := new(big.Int)
	if c.Success && c.Amount != nil {
		reward.Set(c.Amount)
	}
	round, done, err := h.rewards.Record(op.RoundID, reward)
	if err != nil {
		return nil, err
	}
	if !done {
		return nil, nil
	}
	return h.distribute(round)
}

// debitUpTo debits at most amount from validator, less when a slash has already taken part of it.
func (h *Hub) debitUpTo(validator thor.Address, amount *big.Int) (*big.Int, error) {
	v, err := h.validators.Get(validator)
	if err != nil {
		return nil, err
	}
	amount = thor.MinAmount(amount, v.Delegated)
	if err := h.validators.Debit(validator, amount); err != nil {
		return nil, err
	}
	return amount, nil
}

// ReportSlash accounts a loss observed on validator. The loss is capped by its delegation.
func (h *Hub) ReportSlash(validator thor.Address, amount *big.Int) (*big.Int, error) {
	if !thor.IsPositiveAmount(amount) {
		return nil, reverts.Newf(reverts.InvalidAmount, "slash amount %v", amount)
	}
	loss, err := h.debitUpTo(validator, amount)
	if err != nil {
		return nil, err
	}
	if err := h.ledger.Slash(loss); err != nil {
		return nil, err
	}
	h.effects.emit("stakehub/slashed", "validator", validator, "reported", amount, "loss", loss)
	logger.Warn("slash reported", "validator", validator, "reported", amount, "loss", loss)
	return loss, nil
}

// SyncDelegation reconciles the recorded delegation of validator with the amount the staking
// subsystem holds. The host reports settled amounts, after every operation on validator resolved.
// A shortfall no slash accounted for lowers the rate against its floor, an excess accrues to the pool.
func (h *Hub) SyncDelegation(validator thor.Address, observed *big.Int) (*delta.Settlement, error) {
	if !thor.IsAmount(observed) {
		return nil, reverts.Newf(reverts.InvalidAmount, "observed delegation %v", observed)
	}
	v, err := h.validators.Get(validator)
	if err != nil {
		return nil, err
	}
	settlement := delta.NewSettlement(v.Delegated, observed)
	if settlement.Shortfall.Sign() > 0 {
		if err := h.validators.Debit(validator, settlement.Shortfall); err != nil {
			return nil, err
		}
		if err := h.ledger.Lose(settlement.Shortfall); err != nil {
			return nil, err
		}
	}
	if settlement.Surplus.Sign() > 0 {
		if err := h.validators.Credit(validator, settlement.Surplus); err != nil {
			return nil, err
		}
		if err := h.ledger.Gain(settlement.Surplus); err != nil {
			return nil, err
		}
	}
	h.effects.emit("stakehub/delegation_synced",
		"validator", validator,
		"recorded", settlement.Expected,
		"observed", settlement.Received,
	)
	return settlement, nil
}

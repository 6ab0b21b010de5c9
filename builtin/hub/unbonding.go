// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package hub

import (
	"math/big"

	"github.com/vechain/stakehub/builtin/hub/batches"
	"github.com/vechain/stakehub/builtin/hub/delta"
	"github.com/vechain/stakehub/builtin/hub/operations"
	"github.com/vechain/stakehub/builtin/hub/reverts"
	"github.com/vechain/stakehub/builtin/hub/validators"
	"github.com/vechain/stakehub/stakemsg"
	"github.com/vechain/stakehub/thor"
)

// Tick closes the accepting batch at an epoch boundary. The batch's native is paid from idle
// first and the rest is undelegated. It returns the submitted batch, or nil when the epoch was
// already seen or nobody unbonded.
func (h *Hub) Tick(epoch, now uint64) (*batches.Batch, error) {
	fresh, err := h.batches.Advance(epoch)
	if err != nil || !fresh {
		return nil, err
	}
	current, err := h.batches.Current()
	if err != nil {
		return nil, err
	}
	if current.IsEmpty() {
		return nil, nil
	}

	expected, err := h.ledger.Release(current.Burned)
	if err != nil {
		return nil, err
	}
	period, err := UnbondPeriod.Get(h.sctx)
	if err != nil {
		return nil, err
	}
	b, err := h.batches.Close(epoch, expected, now+period)
	if err != nil {
		return nil, err
	}

	fromIdle, err := h.ledger.TakeIdle(expected)
	if err != nil {
		return nil, err
	}
	fromStake := new(big.Int).Sub(expected, fromIdle)
	vals, err := h.validators.List()
	if err != nil {
		return nil, err
	}
	allocs, err := validators.SplitUndelegation(vals, fromStake)
	if err != nil {
		return nil, err
	}
	for _, a := range allocs {
		if err := h.undelegate(a.Validator, a.Amount, b.ID); err != nil {
			return nil, err
		}
	}

	h.effects.emit("stakehub/batch_submitted",
		"batch_id", b.ID,
		"epoch", epoch,
		"burned", b.Burned,
		"expected", expected,
		"from_idle", fromIdle,
		"est_unbond_end_time", b.EstUnbondEndTime,
	)
	logger.Info("batch submitted", "batch", b.ID, "epoch", epoch, "expected", expected, "undelegations", len(allocs))
	return b, nil
}

// BatchConfirmed settles a submitted batch with the native the staking subsystem returned.
// While shares are outstanding, anything above the expected amount goes back to the pool.
func (h *Hub) BatchConfirmed(payload []byte, now uint64) (*delta.Settlement, error) {
	c, err := stakemsg.DecodeUnbondCompletion(payload)
	if err != nil {
		return nil, err
	}
	pool, err := h.ledger.Pool()
	if err != nil {
		return nil, err
	}
	settlement, err := h.batches.Mature(c.BatchID, c.Amount, now, pool.Supply.Sign() > 0)
	if err != nil {
		return nil, err
	}
	if settlement.Surplus.Sign() > 0 {
		if err := h.ledger.Accrue(settlement.Surplus); err != nil {
			return nil, err
		}
		if err := h.ledger.AddIdle(settlement.Surplus); err != nil {
			return nil, err
		}
	}
	if settlement.Shortfall.Sign() > 0 {
		logger.Warn("batch received less than expected", "batch", c.BatchID, "shortfall", settlement.Shortfall)
	}

	h.effects.emit("stakehub/batch_matured",
		"batch_id", c.BatchID,
		"expected", settlement.Expected,
		"received", settlement.Received,
		"shortfall", settlement.Shortfall,
		"surplus", settlement.Surplus,
	)
	return settlement, nil
}

// WithdrawUnbonded pays sender's share of a matured batch together with any payout owed to
// sender. It reverts with NothingToClaim only when both are empty.
func (h *Hub) WithdrawUnbonded(sender thor.Address, batchID uint64) (*big.Int, error) {
	ids := []uint64{batchID}
	amount, err := h.batches.Claim(sender, batchID)
	if reverts.Is(err, reverts.NothingToClaim) {
		owed, oerr := h.batches.Owed(sender)
		if oerr != nil {
			return nil, oerr
		}
		if owed.Sign() > 0 {
			amount, ids, err = new(big.Int), nil, nil
		}
	}
	if err != nil {
		return nil, err
	}
	owed, err := h.batches.TakeOwed(sender)
	if err != nil {
		return nil, err
	}
	amount.Add(amount, owed)
	if err := h.payClaim(sender, amount, ids); err != nil {
		return nil, err
	}
	return amount, nil
}

// WithdrawAllUnbonded pays every matured request of sender in one transfer.
func (h *Hub) WithdrawAllUnbonded(sender thor.Address) (*big.Int, error) {
	return h.withdrawAll(sender)
}

// WithdrawUnbondedAdmin settles on behalf of user. A nil batchID claims every matured request.
func (h *Hub) WithdrawUnbondedAdmin(sender, user thor.Address, batchID *uint64) (*big.Int, error) {
	if err := h.requireAdmin(sender); err != nil {
		return nil, err
	}
	if user.IsZero() {
		return nil, reverts.New(reverts.EncodingError, "zero user address")
	}
	if batchID == nil {
		return h.withdrawAll(user)
	}
	return h.WithdrawUnbonded(user, *batchID)
}

func (h *Hub) withdrawAll(user thor.Address) (*big.Int, error) {
	amount, ids, err := h.batches.ClaimAll(user)
	if err != nil {
		return nil, err
	}
	if err := h.payClaim(user, amount, ids); err != nil {
		return nil, err
	}
	return amount, nil
}

func (h *Hub) payClaim(user thor.Address, amount *big.Int, ids []uint64) error {
	if err := h.send(&operations.Operation{Recipient: user, Amount: amount, Batches: ids}); err != nil {
		return err
	}
	h.effects.emit("stakehub/unbonded_withdrawn",
		"user", user,
		"batches", ids,
		"amount", amount,
	)
	logger.Info("unbonded withdrawn", "user", user, "batches", len(ids), "amount", amount)
	return nil
}

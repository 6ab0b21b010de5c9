// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package runtime

import (
	"math/big"
	"sync"
	"time"

	"github.com/pkg/errors"

	"github.com/vechain/stakehub/builtin/hub"
	"github.com/vechain/stakehub/builtin/hub/reverts"
	"github.com/vechain/stakehub/log"
	"github.com/vechain/stakehub/state"
	"github.com/vechain/stakehub/thor"
)

var logger = log.WithContext("pkg", "runtime")

// Runtime executes requests against the hub state one at a time. A request either
// commits every change it made or none of them.
type Runtime struct {
	mu     sync.Mutex
	state  *state.State
	params hub.Params
}

func New(st *state.State, params hub.Params) *Runtime {
	return &Runtime{state: st, params: params}
}

func (rt *Runtime) Params() hub.Params { return rt.params }

// Execute runs req in env. A request failing with a revert yields a reverted receipt and leaves
// the state untouched. Any other failure is returned as an error.
func (rt *Runtime) Execute(req *Request, env Env) (*Receipt, error) {
	rt.mu.Lock()
	defer rt.mu.Unlock()

	start := time.Now()
	h := hub.New(rt.state, rt.params)
	checkpoint := rt.state.NewCheckpoint()

	outputs, err := dispatch(h, req, env)
	if err != nil {
		rt.state.RevertTo(checkpoint)
		if !reverts.IsRevertErr(err) {
			metricRequests().AddWithLabel(1, map[string]string{"type": req.Type, "outcome": "error"})
			return nil, errors.Wrapf(err, "execute %s", req.Type)
		}
		h.Effects().Reset()
		receipt := newReceipt(req.Type, h.Effects())
		receipt.Reverted = true
		receipt.RevertKind = reverts.KindOf(err).String()
		receipt.RevertMessage = err.Error()

		metricRequests().AddWithLabel(1, map[string]string{"type": req.Type, "outcome": "reverted"})
		logger.Warn("request reverted", "type", req.Type, "host", IsHostType(req.Type), "sender", req.Sender, "err", err)
		return receipt, nil
	}

	if err := rt.state.Commit(); err != nil {
		rt.state.Discard()
		metricRequests().AddWithLabel(1, map[string]string{"type": req.Type, "outcome": "error"})
		return nil, errors.Wrapf(err, "commit %s", req.Type)
	}

	receipt := newReceipt(req.Type, h.Effects())
	receipt.Outputs = outputs
	rt.observe(h)

	elapsed := time.Since(start)
	metricRequests().AddWithLabel(1, map[string]string{"type": req.Type, "outcome": "ok"})
	metricRequestDuration().ObserveWithLabels(elapsed.Milliseconds(), map[string]string{"type": req.Type})
	logger.Debug("request executed",
		"type", req.Type,
		"host", IsHostType(req.Type),
		"sender", req.Sender,
		"ops", len(receipt.Operations),
		"events", len(receipt.Events),
		"elapsed", elapsed,
	)
	return receipt, nil
}

// View runs fn against a hub reading the committed state. Changes fn makes are discarded.
func (rt *Runtime) View(fn func(h *hub.Hub) error) error {
	rt.mu.Lock()
	defer rt.mu.Unlock()

	checkpoint := rt.state.NewCheckpoint()
	defer rt.state.RevertTo(checkpoint)
	return fn(hub.New(rt.state, rt.params))
}

// observe exports the pool totals after a committed request.
func (rt *Runtime) observe(h *hub.Hub) {
	pool, err := h.Ledger().Pool()
	if err != nil {
		logger.Warn("failed to read pool", "err", err)
		return
	}
	for name, v := range map[string]*big.Int{
		"native": pool.Native,
		"supply": pool.Supply,
		"idle":   pool.Idle,
	} {
		if v.IsInt64() {
			metricPool().SetWithLabel(v.Int64(), map[string]string{"total": name})
		}
	}
}

func dispatch(h *hub.Hub, req *Request, env Env) (*Outputs, error) {
	switch req.Type {
	case TypeBond:
		amount, err := req.amount()
		if err != nil {
			return nil, err
		}
		minted, err := h.Bond(req.Sender, req.Receiver, amount)
		if err != nil {
			return nil, err
		}
		return &Outputs{Minted: amountOf(minted)}, nil

	case TypeUnbond:
		amount, err := req.amount()
		if err != nil {
			return nil, err
		}
		native, err := h.Unbond(req.Sender, amount)
		if err != nil {
			return nil, err
		}
		return &Outputs{Native: amountOf(native)}, nil

	case TypeWithdrawUnbonded:
		id, err := requireUint64("batchId", req.BatchID)
		if err != nil {
			return nil, err
		}
		paid, err := h.WithdrawUnbonded(req.Sender, id)
		if err != nil {
			return nil, err
		}
		return &Outputs{Native: amountOf(paid), BatchID: uint64Of(id)}, nil

	case TypeWithdrawAllUnbonded:
		paid, err := h.WithdrawAllUnbonded(req.Sender)
		if err != nil {
			return nil, err
		}
		return &Outputs{Native: amountOf(paid)}, nil

	case TypeWithdrawUnbondedAdmin:
		user, err := requireAddress("user", req.User)
		if err != nil {
			return nil, err
		}
		var id *uint64
		if req.BatchID != nil {
			n := uint64(*req.BatchID)
			id = &n
		}
		paid, err := h.WithdrawUnbondedAdmin(req.Sender, user, id)
		if err != nil {
			return nil, err
		}
		return &Outputs{Native: amountOf(paid)}, nil

	case TypeHarvest:
		round, err := h.Harvest()
		if err != nil {
			return nil, err
		}
		out := &Outputs{Distributed: amountOf(new(big.Int))}
		if round != nil {
			out.Round = uint64Of(round.ID)
		}
		return out, nil

	case TypeRebalance:
		moves, err := h.Rebalance(req.Sender, req.minimum())
		if err != nil {
			return nil, err
		}
		return &Outputs{Moves: convertMoves(moves)}, nil

	case TypeAddValidator, TypeRemoveValidator, TypePauseValidator, TypeResumeValidator:
		validator, err := requireAddress("validator", req.Validator)
		if err != nil {
			return nil, err
		}
		fn := map[string]func(sender, validator thor.Address) error{
			TypeAddValidator:    h.AddValidator,
			TypeRemoveValidator: h.RemoveValidator,
			TypePauseValidator:  h.PauseValidator,
			TypeResumeValidator: h.ResumeValidator,
		}[req.Type]
		return &Outputs{}, fn(req.Sender, validator)

	case TypeSetUnbondPeriod:
		seconds, err := requireUint64("seconds", req.Seconds)
		if err != nil {
			return nil, err
		}
		return &Outputs{}, h.SetUnbondPeriod(req.Sender, seconds)

	case TypeUpdateFee:
		rate, err := requireUint64("rate", req.Rate)
		if err != nil {
			return nil, err
		}
		return &Outputs{}, h.UpdateFee(req.Sender, rate)

	case TypeTransferOwnership:
		owner, err := requireAddress("newOwner", req.NewOwner)
		if err != nil {
			return nil, err
		}
		return &Outputs{}, h.TransferOwnership(req.Sender, owner)

	case TypeAcceptOwnership:
		return &Outputs{}, h.AcceptOwnership(req.Sender)

	case TypeAcknowledgeRegression:
		return &Outputs{}, h.AcknowledgeRegression(req.Sender)

	case TypeTransferShares:
		to, err := requireAddress("to", req.To)
		if err != nil {
			return nil, err
		}
		amount, err := req.amount()
		if err != nil {
			return nil, err
		}
		return &Outputs{}, h.TransferShares(req.Sender, to, amount)

	case TypeTick:
		epoch, err := requireUint64("epoch", req.Epoch)
		if err != nil {
			return nil, err
		}
		b, err := h.Tick(epoch, env.Time)
		if err != nil {
			return nil, err
		}
		out := &Outputs{}
		if b != nil {
			out.BatchID = uint64Of(b.ID)
			out.Native = amountOf(b.Expected)
		}
		return out, nil

	case TypeConfirm:
		payload, err := req.payload()
		if err != nil {
			return nil, err
		}
		res, err := h.Confirm(payload)
		if err != nil {
			return nil, err
		}
		out := &Outputs{}
		if d := res.Distribution; d != nil {
			out.Distributed = amountOf(d.Harvested)
			out.Round = uint64Of(d.Round)
		}
		return out, nil

	case TypeBatchConfirmed:
		payload, err := req.payload()
		if err != nil {
			return nil, err
		}
		settlement, err := h.BatchConfirmed(payload, env.Time)
		if err != nil {
			return nil, err
		}
		return &Outputs{Native: amountOf(settlement.Received)}, nil

	case TypeReportSlash:
		validator, err := requireAddress("validator", req.Validator)
		if err != nil {
			return nil, err
		}
		amount, err := req.amount()
		if err != nil {
			return nil, err
		}
		loss, err := h.ReportSlash(validator, amount)
		if err != nil {
			return nil, err
		}
		return &Outputs{Native: amountOf(loss)}, nil

	case TypeSyncDelegation:
		validator, err := requireAddress("validator", req.Validator)
		if err != nil {
			return nil, err
		}
		amount, err := req.amount()
		if err != nil {
			return nil, err
		}
		settlement, err := h.SyncDelegation(validator, amount)
		if err != nil {
			return nil, err
		}
		return &Outputs{Native: amountOf(settlement.Received)}, nil

	default:
		return nil, reverts.Newf(reverts.EncodingError, "unknown request type %q", req.Type)
	}
}

// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package hub

import (
	"math/big"

	"github.com/pkg/errors"

	"github.com/vechain/stakehub/builtin/feesplit"
	"github.com/vechain/stakehub/builtin/hub/batches"
	"github.com/vechain/stakehub/builtin/hub/ledger"
	"github.com/vechain/stakehub/builtin/hub/operations"
	"github.com/vechain/stakehub/builtin/hub/reverts"
	"github.com/vechain/stakehub/builtin/hub/rewards"
	"github.com/vechain/stakehub/builtin/hub/validators"
	"github.com/vechain/stakehub/builtin/solidity"
	"github.com/vechain/stakehub/builtin/token"
	"github.com/vechain/stakehub/log"
	"github.com/vechain/stakehub/stakemsg"
	"github.com/vechain/stakehub/state"
	"github.com/vechain/stakehub/thor"
)

var logger = log.WithContext("pkg", "hub")

var (
	slotAdmin        = thor.BytesToBytes32([]byte("hub-admin"))
	slotPendingOwner = thor.BytesToBytes32([]byte("hub-pending-owner"))

	UnbondPeriod     = solidity.NewConfigVariable("unbond-period", thor.InitialUnbondPeriod)
	FeeRate          = solidity.NewConfigVariable("fee-rate", thor.InitialFeeRate)
	MaxFeeRate       = solidity.NewConfigVariable("max-fee-rate", thor.InitialMaxFeeRate)
	MinRebalanceMove = solidity.NewConfigVariable("min-rebalance-move", 1)
)

// Params is the static configuration of a hub.
type Params struct {
	Address  thor.Address
	Token    thor.Address
	Denom    string
	Splitter feesplit.Splitter
}

// Hub executes liquid staking requests against one state. A Hub serves a single
// request and collects the outbound operations and events it produces.
type Hub struct {
	addr     thor.Address
	denom    string
	splitter feesplit.Splitter

	sctx         *solidity.Context
	admin        *solidity.Address
	pendingOwner *solidity.Address

	token      *token.Token
	ledger     *ledger.Service
	validators *validators.Service
	batches    *batches.Service
	rewards    *rewards.Service
	operations *operations.Service

	effects Effects
}

func New(st *state.State, params Params) *Hub {
	sctx := solidity.NewContext(params.Address, st)
	return &Hub{
		addr:     params.Address,
		denom:    params.Denom,
		splitter: params.Splitter,

		sctx:         sctx,
		admin:        solidity.NewAddress(sctx, slotAdmin),
		pendingOwner: solidity.NewAddress(sctx, slotPendingOwner),

		token:      token.New(params.Token, st),
		ledger:     ledger.New(sctx),
		validators: validators.New(sctx),
		batches:    batches.New(sctx),
		rewards:    rewards.New(sctx),
		operations: operations.New(sctx),
	}
}

func (h *Hub) Address() thor.Address           { return h.addr }
func (h *Hub) Denom() string                   { return h.denom }
func (h *Hub) Context() *solidity.Context      { return h.sctx }
func (h *Hub) Token() *token.Token             { return h.token }
func (h *Hub) Ledger() *ledger.Service         { return h.ledger }
func (h *Hub) Validators() *validators.Service { return h.validators }
func (h *Hub) Batches() *batches.Service       { return h.batches }
func (h *Hub) Rewards() *rewards.Service       { return h.rewards }
func (h *Hub) Operations() *operations.Service { return h.operations }
func (h *Hub) Effects() *Effects               { return &h.effects }

// Admin returns the current owner.
func (h *Hub) Admin() (thor.Address, error) {
	return h.admin.Get()
}

// PendingOwner returns the proposed owner, zero when none.
func (h *Hub) PendingOwner() (thor.Address, error) {
	return h.pendingOwner.Get()
}

// SetAdmin installs the owner at genesis.
func (h *Hub) SetAdmin(addr thor.Address) {
	h.admin.Set(&addr)
}

func (h *Hub) requireAdmin(sender thor.Address) error {
	admin, err := h.admin.Get()
	if err != nil {
		return err
	}
	if admin.IsZero() || sender != admin {
		return reverts.Newf(reverts.Unauthorized, "%v is not the owner", sender)
	}
	return nil
}

// Config is a snapshot of the admin tunables.
type Config struct {
	UnbondPeriod     uint64
	FeeRate          uint64
	MaxFeeRate       uint64
	MinRebalanceMove uint64
	RateTolerance    uint64
}

func (h *Hub) Config() (*Config, error) {
	var (
		cfg Config
		err error
	)
	for _, v := range []struct {
		dst *uint64
		src *solidity.ConfigVariable
	}{
		{&cfg.UnbondPeriod, UnbondPeriod},
		{&cfg.FeeRate, FeeRate},
		{&cfg.MaxFeeRate, MaxFeeRate},
		{&cfg.MinRebalanceMove, MinRebalanceMove},
		{&cfg.RateTolerance, ledger.RateTolerance},
	} {
		if *v.dst, err = v.src.Get(h.sctx); err != nil {
			return nil, errors.Wrapf(err, "failed to get %s", v.src.Name())
		}
	}
	return &cfg, nil
}

// issue records op as provisional and queues the encoded message for the staking subsystem.
func (h *Hub) issue(op *operations.Operation, msg stakemsg.Msg) (*operations.Operation, error) {
	if err := msg.Validate(); err != nil {
		return nil, err
	}
	op.Kind = msg.Kind()
	op, err := h.operations.Issue(op)
	if err != nil {
		return nil, err
	}
	data, err := stakemsg.Encode(&stakemsg.Envelope{OpID: op.ID, Msg: msg})
	if err != nil {
		return nil, err
	}
	h.effects.addOp(op, data)
	metricOperations().AddWithLabel(1, map[string]string{"kind": op.Kind.String()})
	return op, nil
}

func (h *Hub) coin(amount *big.Int) stakemsg.Coin {
	return stakemsg.NewCoin(h.denom, amount)
}

func (h *Hub) delegate(validator thor.Address, amount *big.Int) error {
	if err := h.validators.Credit(validator, amount); err != nil {
		return err
	}
	_, err := h.issue(
		&operations.Operation{Validator: validator, Amount: amount},
		&stakemsg.Delegate{Delegator: h.addr, Validator: validator, Amount: h.coin(amount)},
	)
	return err
}

func (h *Hub) undelegate(validator thor.Address, amount *big.Int, batchID uint64) error {
	if err := h.validators.Debit(validator, amount); err != nil {
		return err
	}
	_, err := h.issue(
		&operations.Operation{Validator: validator, Amount: amount, BatchID: batchID},
		&stakemsg.Undelegate{Delegator: h.addr, Validator: validator, Amount: h.coin(amount)},
	)
	return err
}

func (h *Hub) redelegate(from, to thor.Address, amount *big.Int) error {
	if err := h.validators.Debit(from, amount); err != nil {
		return err
	}
	if err := h.validators.Credit(to, amount); err != nil {
		return err
	}
	_, err := h.issue(
		&operations.Operation{Validator: from, DstValidator: to, Amount: amount},
		&stakemsg.BeginRedelegate{Delegator: h.addr, ValidatorSrc: from, ValidatorDst: to, Amount: h.coin(amount)},
	)
	return err
}

// send transfers op.Amount to op.Recipient. A zero amount sends nothing.
func (h *Hub) send(op *operations.Operation) error {
	if op.Amount.Sign() == 0 {
		return nil
	}
	_, err := h.issue(op, &stakemsg.Send{From: h.addr, To: op.Recipient, Amount: h.coin(op.Amount)})
	return err
}

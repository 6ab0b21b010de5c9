// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package staking

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common/math"

	"github.com/vechain/stakehub/builtin/hub"
	"github.com/vechain/stakehub/builtin/hub/batches"
	"github.com/vechain/stakehub/builtin/hub/ledger"
	"github.com/vechain/stakehub/builtin/hub/operations"
	"github.com/vechain/stakehub/builtin/hub/rewards"
	"github.com/vechain/stakehub/builtin/hub/validators"
	"github.com/vechain/stakehub/thor"
)

func amount(v *big.Int) *math.HexOrDecimal256 {
	if v == nil {
		v = new(big.Int)
	}
	return (*math.HexOrDecimal256)(new(big.Int).Set(v))
}

type Pool struct {
	Denom     string                `json:"denom"`
	Native    *math.HexOrDecimal256 `json:"native"`
	Supply    *math.HexOrDecimal256 `json:"supply"`
	Idle      *math.HexOrDecimal256 `json:"idle"`
	Delegated *math.HexOrDecimal256 `json:"delegated"`
	RateNum   *math.HexOrDecimal256 `json:"rateNum"`
	RateDen   *math.HexOrDecimal256 `json:"rateDen"`
	Halted    bool                  `json:"halted"`
	Issued    uint64                `json:"operationsIssued"`
	Pending   uint64                `json:"operationsPending"`
}

func convertPool(denom string, p *ledger.Pool, delegated *big.Int, issued, pending uint64) *Pool {
	num, den := p.Rate()
	return &Pool{
		Denom:     denom,
		Native:    amount(p.Native),
		Supply:    amount(p.Supply),
		Idle:      amount(p.Idle),
		RateNum:   amount(num),
		RateDen:   amount(den),
		Halted:    p.Halted,
		Issued:    issued,
		Pending:   pending,
		Delegated: amount(delegated),
	}
}

type Config struct {
	Admin            thor.Address  `json:"admin"`
	PendingOwner     *thor.Address `json:"pendingOwner"`
	UnbondPeriod     uint64        `json:"unbondPeriod"`
	FeeRate          uint64        `json:"feeRate"`
	MaxFeeRate       uint64        `json:"maxFeeRate"`
	MinRebalanceMove uint64        `json:"minRebalanceMove"`
	RateTolerance    uint64        `json:"rateTolerance"`
}

func convertConfig(admin, pending thor.Address, cfg *hub.Config) *Config {
	c := &Config{
		Admin:            admin,
		UnbondPeriod:     cfg.UnbondPeriod,
		FeeRate:          cfg.FeeRate,
		MaxFeeRate:       cfg.MaxFeeRate,
		MinRebalanceMove: cfg.MinRebalanceMove,
		RateTolerance:    cfg.RateTolerance,
	}
	if !pending.IsZero() {
		c.PendingOwner = &pending
	}
	return c
}

type Validator struct {
	Address   thor.Address          `json:"address"`
	Delegated *math.HexOrDecimal256 `json:"delegated"`
	Status    string                `json:"status"`
}

func convertValidator(v *validators.Validator) *Validator {
	return &Validator{
		Address:   v.Address,
		Delegated: amount(v.Delegated),
		Status:    validators.StatusName(v.Status),
	}
}

type Batch struct {
	ID               uint64                `json:"id"`
	State            string                `json:"state"`
	Burned           *math.HexOrDecimal256 `json:"burned"`
	Expected         *math.HexOrDecimal256 `json:"expected"`
	Received         *math.HexOrDecimal256 `json:"received"`
	UnclaimedShares  *math.HexOrDecimal256 `json:"unclaimedShares"`
	UnclaimedNative  *math.HexOrDecimal256 `json:"unclaimedNative"`
	SubmittedAtEpoch uint64                `json:"submittedAtEpoch"`
	EstUnbondEndTime uint64                `json:"estUnbondEndTime"`
}

func convertBatch(b *batches.Batch) *Batch {
	return &Batch{
		ID:               b.ID,
		State:            batches.StateName(b.State),
		Burned:           amount(b.Burned),
		Expected:         amount(b.Expected),
		Received:         amount(b.Received),
		UnclaimedShares:  amount(b.UnclaimedShares),
		UnclaimedNative:  amount(b.UnclaimedNative),
		SubmittedAtEpoch: b.SubmittedAtEpoch,
		EstUnbondEndTime: b.EstUnbondEndTime,
	}
}

type Request struct {
	BatchID   uint64                `json:"batchId"`
	Shares    *math.HexOrDecimal256 `json:"shares"`
	State     string                `json:"state"`
	Claimable *math.HexOrDecimal256 `json:"claimable"`
	EndTime   uint64                `json:"estUnbondEndTime"`
}

func convertRequests(reqs []*batches.Request) []*Request {
	out := make([]*Request, 0, len(reqs))
	for _, r := range reqs {
		out = append(out, &Request{
			BatchID:   r.BatchID,
			Shares:    amount(r.Shares),
			State:     batches.StateName(r.State),
			Claimable: amount(r.Claimable),
			EndTime:   r.EndTime,
		})
	}
	return out
}

type Operation struct {
	ID           thor.Bytes32          `json:"id"`
	Kind         string                `json:"kind"`
	Validator    *thor.Address         `json:"validator,omitempty"`
	DstValidator *thor.Address         `json:"dstValidator,omitempty"`
	Amount       *math.HexOrDecimal256 `json:"amount"`
	BatchID      uint64                `json:"batchId,omitempty"`
	RoundID      uint64                `json:"roundId,omitempty"`
	Status       string                `json:"status"`
	Result       *math.HexOrDecimal256 `json:"result"`
	Recipient    *thor.Address         `json:"recipient,omitempty"`
	Batches      []uint64              `json:"batches,omitempty"`
}

func optional(addr thor.Address) *thor.Address {
	if addr.IsZero() {
		return nil
	}
	return &addr
}

func convertOperation(op *operations.Operation) *Operation {
	return &Operation{
		ID:           op.ID,
		Kind:         op.Kind.String(),
		Validator:    optional(op.Validator),
		DstValidator: optional(op.DstValidator),
		Amount:       amount(op.Amount),
		BatchID:      op.BatchID,
		RoundID:      op.RoundID,
		Status:       operations.StatusName(op.Status),
		Result:       amount(op.Result),
		Recipient:    optional(op.Recipient),
		Batches:      op.Batches,
	}
}

type Round struct {
	ID          uint64                `json:"id"`
	Outstanding uint64                `json:"outstanding"`
	Accumulated *math.HexOrDecimal256 `json:"accumulated"`
	Distributed bool                  `json:"distributed"`
}

type Rewards struct {
	Latest     *Round                `json:"latest"`
	Harvested  *math.HexOrDecimal256 `json:"harvested"`
	Fees       *math.HexOrDecimal256 `json:"fees"`
	Reinvested *math.HexOrDecimal256 `json:"reinvested"`
}

func convertRewards(latest *rewards.Round, totals *rewards.Totals) *Rewards {
	r := &Rewards{
		Harvested:  amount(totals.Harvested),
		Fees:       amount(totals.Fees),
		Reinvested: amount(totals.Reinvested),
	}
	if latest != nil {
		r.Latest = &Round{
			ID:          latest.ID,
			Outstanding: latest.Outstanding,
			Accumulated: amount(latest.Accumulated),
			Distributed: latest.Distributed,
		}
	}
	return r
}

type Balance struct {
	Address thor.Address          `json:"address"`
	Balance *math.HexOrDecimal256 `json:"balance"`
	Owed    *math.HexOrDecimal256 `json:"owed"` // refused payouts, paid with the next withdrawal
}

// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package runtime

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/common/math"

	"github.com/vechain/stakehub/builtin/hub/reverts"
	"github.com/vechain/stakehub/thor"
)

// Request types.
const (
	TypeBond                  = "bond"
	TypeUnbond                = "unbond"
	TypeWithdrawUnbonded      = "withdraw_unbonded"
	TypeWithdrawAllUnbonded   = "withdraw_all_unbonded"
	TypeWithdrawUnbondedAdmin = "withdraw_unbonded_admin"
	TypeHarvest               = "harvest"
	TypeRebalance             = "rebalance"
	TypeAddValidator          = "add_validator"
	TypeRemoveValidator       = "remove_validator"
	TypePauseValidator        = "pause_validator"
	TypeResumeValidator       = "resume_validator"
	TypeSetUnbondPeriod       = "set_unbond_period"
	TypeUpdateFee             = "update_fee"
	TypeTransferOwnership     = "transfer_ownership"
	TypeAcceptOwnership       = "accept_ownership"
	TypeAcknowledgeRegression = "acknowledge_regression"
	TypeTransferShares        = "transfer_shares"

	// delivered by the host
	TypeTick           = "tick"
	TypeConfirm        = "confirm"
	TypeBatchConfirmed = "batch_confirmed"
	TypeReportSlash    = "report_slash"
	TypeSyncDelegation = "sync_delegation"
)

var hostTypes = map[string]bool{
	TypeTick:           true,
	TypeConfirm:        true,
	TypeBatchConfirmed: true,
	TypeReportSlash:    true,
	TypeSyncDelegation: true,
}

// IsHostType reports whether requests of type t originate from the host rather than a user.
func IsHostType(t string) bool {
	return hostTypes[t]
}

// Request is one atomic call into the hub. Which fields are read depends on Type.
type Request struct {
	Type      string                `json:"type"`
	Sender    thor.Address          `json:"sender"`
	Amount    *math.HexOrDecimal256 `json:"amount,omitempty"`
	Minimum   *math.HexOrDecimal256 `json:"minimum,omitempty"`
	Receiver  *thor.Address         `json:"receiver,omitempty"`
	User      *thor.Address         `json:"user,omitempty"`
	Validator *thor.Address         `json:"validator,omitempty"`
	NewOwner  *thor.Address         `json:"newOwner,omitempty"`
	To        *thor.Address         `json:"to,omitempty"`
	BatchID   *math.HexOrDecimal64  `json:"batchId,omitempty"`
	Seconds   *math.HexOrDecimal64  `json:"seconds,omitempty"`
	Rate      *math.HexOrDecimal64  `json:"rate,omitempty"`
	Epoch     *math.HexOrDecimal64  `json:"epoch,omitempty"`
	Payload   hexutil.Bytes         `json:"payload,omitempty"`
}

// Env is the host context a request executes in.
type Env struct {
	Time   uint64 `json:"time"`
	Height uint64 `json:"height"`
}

func missing(field string) error {
	return reverts.Newf(reverts.EncodingError, "missing %s", field)
}

func (r *Request) amount() (*big.Int, error) {
	if r.Amount == nil {
		return nil, missing("amount")
	}
	return (*big.Int)(r.Amount), nil
}

func (r *Request) minimum() *big.Int {
	if r.Minimum == nil {
		return nil
	}
	return (*big.Int)(r.Minimum)
}

func requireAddress(field string, v *thor.Address) (thor.Address, error) {
	if v == nil || v.IsZero() {
		return thor.Address{}, missing(field)
	}
	return *v, nil
}

func requireUint64(field string, v *math.HexOrDecimal64) (uint64, error) {
	if v == nil {
		return 0, missing(field)
	}
	return uint64(*v), nil
}

func (r *Request) payload() ([]byte, error) {
	if len(r.Payload) == 0 {
		return nil, missing("payload")
	}
	return r.Payload, nil
}

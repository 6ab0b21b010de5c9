// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package operations

import (
	"encoding/binary"
	"math/big"

	"github.com/pkg/errors"

	"github.com/vechain/stakehub/builtin/hub/reverts"
	"github.com/vechain/stakehub/builtin/solidity"
	"github.com/vechain/stakehub/log"
	"github.com/vechain/stakehub/stakemsg"
	"github.com/vechain/stakehub/thor"
)

var logger = log.WithContext("pkg", "operations")

var (
	slotOperations = thor.BytesToBytes32([]byte("operations"))
	slotNonce      = thor.BytesToBytes32([]byte("operations-nonce"))
	slotPending    = thor.BytesToBytes32([]byte("operations-pending"))
)

type Status = uint8

const (
	StatusUnknown     = Status(iota)
	StatusProvisional // issued, effects applied optimistically
	StatusConfirmed
	StatusReverted // effects undone
)

func StatusName(s Status) string {
	switch s {
	case StatusProvisional:
		return "provisional"
	case StatusConfirmed:
		return "confirmed"
	case StatusReverted:
		return "reverted"
	default:
		return "unknown"
	}
}

// Operation is the record of one outbound staking operation.
type Operation struct {
	ID           thor.Bytes32
	Kind         stakemsg.Kind
	Validator    thor.Address
	DstValidator thor.Address
	Amount       *big.Int
	BatchID      uint64
	RoundID      uint64
	Status       Status
	Result       *big.Int     // amount reported by the confirmation
	Recipient    thor.Address // payee of a send
	Batches      []uint64     // batches a claim payout settled
}

// Service keeps operation records keyed by id.
type Service struct {
	records *solidity.Mapping[thor.Bytes32, *Operation]
	nonce   *solidity.Uint256
	pending *solidity.Uint256
}

func New(sctx *solidity.Context) *Service {
	return &Service{
		records: solidity.NewMapping[thor.Bytes32, *Operation](sctx, slotOperations),
		nonce:   solidity.NewUint256(sctx, slotNonce),
		pending: solidity.NewUint256(sctx, slotPending),
	}
}

// ID derives the id of the operation issued at nonce.
func ID(nonce uint64) thor.Bytes32 {
	return thor.Blake2b([]byte("op"), binary.BigEndian.AppendUint64(nil, nonce))
}

// Issue assigns the next id to op and records it as provisional.
func (s *Service) Issue(op *Operation) (*Operation, error) {
	nonce, err := s.nonce.GetUint64()
	if err != nil {
		return nil, err
	}
	op.ID = ID(nonce)
	op.Status = StatusProvisional
	if op.Amount == nil {
		op.Amount = new(big.Int)
	}
	op.Result = new(big.Int)
	if err := s.save(op); err != nil {
		return nil, err
	}
	s.nonce.SetUint64(nonce + 1)
	if err := s.pending.Add(big.NewInt(1)); err != nil {
		return nil, err
	}
	logger.Trace("operation issued", "id", op.ID, "kind", op.Kind, "validator", op.Validator, "amount", op.Amount)
	return op, nil
}

func (s *Service) Get(id thor.Bytes32) (*Operation, error) {
	op, err := s.records.Get(id)
	if err != nil {
		return nil, errors.Wrap(err, "failed to get operation")
	}
	if op.Status == StatusUnknown {
		return nil, reverts.Newf(reverts.NotFound, "operation %v", id)
	}
	if op.Amount == nil {
		op.Amount = new(big.Int)
	}
	if op.Result == nil {
		op.Result = new(big.Int)
	}
	return op, nil
}

// Resolve finalizes a provisional operation. Resolving twice is InvalidState.
func (s *Service) Resolve(id thor.Bytes32, success bool, result *big.Int) (*Operation, error) {
	op, err := s.Get(id)
	if err != nil {
		return nil, err
	}
	if op.Status != StatusProvisional {
		return nil, reverts.Newf(reverts.InvalidState, "operation %v already %s", id, StatusName(op.Status))
	}
	op.Status = StatusReverted
	if success {
		op.Status = StatusConfirmed
	}
	if result != nil {
		op.Result = new(big.Int).Set(result)
	}
	if err := s.save(op); err != nil {
		return nil, err
	}
	if err := s.pending.Sub(big.NewInt(1)); err != nil {
		return nil, err
	}
	logger.Debug("operation resolved", "id", op.ID, "kind", op.Kind, "status", StatusName(op.Status))
	return op, nil
}

// Counts returns the number of issued and still provisional operations.
func (s *Service) Counts() (issued uint64, pending uint64, err error) {
	if issued, err = s.nonce.GetUint64(); err != nil {
		return 0, 0, err
	}
	if pending, err = s.pending.GetUint64(); err != nil {
		return 0, 0, err
	}
	return issued, pending, nil
}

func (s *Service) save(op *Operation) error {
	if err := s.records.Set(op.ID, op); err != nil {
		return errors.Wrap(err, "failed to set operation")
	}
	return nil
}

// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package batches

import (
	"encoding/binary"
	"math/big"
	"slices"

	"github.com/pkg/errors"

	"github.com/vechain/stakehub/builtin/hub/delta"
	"github.com/vechain/stakehub/builtin/hub/reverts"
	"github.com/vechain/stakehub/builtin/solidity"
	"github.com/vechain/stakehub/log"
	"github.com/vechain/stakehub/thor"
)

var logger = log.WithContext("pkg", "batches")

var (
	slotBatches   = thor.BytesToBytes32([]byte("batches"))
	slotCurrent   = thor.BytesToBytes32([]byte("batches-current"))
	slotLastEpoch = thor.BytesToBytes32([]byte("batches-last-epoch"))
	slotRequests  = thor.BytesToBytes32([]byte("batches-requests"))
	slotUserIndex = thor.BytesToBytes32([]byte("batches-user-index"))
	slotOwed      = thor.BytesToBytes32([]byte("batches-owed"))
)

// Service is the unbonding batch queue.
type Service struct {
	batches   *solidity.Mapping[solidity.Uint64Key, *Batch]
	current   *solidity.Uint256
	lastEpoch *solidity.Uint256
	requests  *solidity.Mapping[thor.Bytes32, *big.Int]
	userIndex *solidity.Mapping[thor.Address, []uint64]
	owed      *solidity.Mapping[thor.Address, *big.Int] // payouts refused on transfer, claimable again
}

func New(sctx *solidity.Context) *Service {
	return &Service{
		batches:   solidity.NewMapping[solidity.Uint64Key, *Batch](sctx, slotBatches),
		current:   solidity.NewUint256(sctx, slotCurrent),
		lastEpoch: solidity.NewUint256(sctx, slotLastEpoch),
		requests:  solidity.NewMapping[thor.Bytes32, *big.Int](sctx, slotRequests),
		userIndex: solidity.NewMapping[thor.Address, []uint64](sctx, slotUserIndex),
		owed:      solidity.NewMapping[thor.Address, *big.Int](sctx, slotOwed),
	}
}

func requestKey(id uint64, user thor.Address) thor.Bytes32 {
	return thor.Blake2b(binary.BigEndian.AppendUint64(nil, id), user.Bytes())
}

// CurrentID returns the id of the accepting batch. Ids start at 1.
func (s *Service) CurrentID() (uint64, error) {
	id, err := s.current.GetUint64()
	if err != nil {
		return 0, err
	}
	if id == 0 {
		id = 1
	}
	return id, nil
}

func (s *Service) Current() (*Batch, error) {
	id, err := s.CurrentID()
	if err != nil {
		return nil, err
	}
	return s.load(id)
}

// Get returns batch id. Ids beyond the accepting batch are NotFound.
func (s *Service) Get(id uint64) (*Batch, error) {
	current, err := s.CurrentID()
	if err != nil {
		return nil, err
	}
	if id == 0 || id > current {
		return nil, reverts.Newf(reverts.NotFound, "batch %d", id)
	}
	return s.load(id)
}

func (s *Service) load(id uint64) (*Batch, error) {
	b, err := s.batches.Get(solidity.Uint64Key(id))
	if err != nil {
		return nil, errors.Wrap(err, "failed to get batch")
	}
	b.ID = id
	b.normalize()
	return b, nil
}

func (s *Service) save(b *Batch) error {
	if err := s.batches.Set(solidity.Uint64Key(b.ID), b); err != nil {
		return errors.Wrap(err, "failed to set batch")
	}
	return nil
}

// Request records shares already burned by user into the accepting batch.
func (s *Service) Request(user thor.Address, shares *big.Int) (*Batch, error) {
	if !thor.IsPositiveAmount(shares) {
		return nil, reverts.Newf(reverts.InvalidAmount, "unbond amount %v", shares)
	}
	b, err := s.Current()
	if err != nil {
		return nil, err
	}

	key := requestKey(b.ID, user)
	prev, err := s.requests.Get(key)
	if err != nil {
		return nil, errors.Wrap(err, "failed to get request")
	}
	if prev == nil || prev.Sign() == 0 {
		prev = new(big.Int)
		ids, err := s.userIndex.Get(user)
		if err != nil {
			return nil, errors.Wrap(err, "failed to get user batches")
		}
		if err := s.userIndex.Set(user, append(ids, b.ID)); err != nil {
			return nil, errors.Wrap(err, "failed to set user batches")
		}
	}
	if err := s.requests.Set(key, new(big.Int).Add(prev, shares)); err != nil {
		return nil, errors.Wrap(err, "failed to set request")
	}

	b.Burned.Add(b.Burned, shares)
	b.UnclaimedShares.Add(b.UnclaimedShares, shares)
	if err := s.save(b); err != nil {
		return nil, err
	}
	logger.Debug("unbond requested", "batch", b.ID, "user", user, "shares", shares, "burned", b.Burned)
	return b, nil
}

// Advance admits each epoch once. It returns false for an epoch at or before the last admitted one.
func (s *Service) Advance(epoch uint64) (bool, error) {
	last, err := s.lastEpoch.GetUint64()
	if err != nil {
		return false, err
	}
	if epoch <= last {
		return false, nil
	}
	s.lastEpoch.SetUint64(epoch)
	return true, nil
}

// LastEpoch returns the last admitted epoch.
func (s *Service) LastEpoch() (uint64, error) {
	return s.lastEpoch.GetUint64()
}

// Close submits the accepting batch with its expected native and opens the next one.
func (s *Service) Close(epoch uint64, expected *big.Int, endTime uint64) (*Batch, error) {
	b, err := s.Current()
	if err != nil {
		return nil, err
	}
	if b.IsEmpty() {
		return nil, reverts.Newf(reverts.InvalidState, "batch %d is empty", b.ID)
	}
	b.State = StateSubmitted
	b.Expected = new(big.Int).Set(expected)
	b.SubmittedAtEpoch = epoch
	b.EstUnbondEndTime = endTime
	if err := s.save(b); err != nil {
		return nil, err
	}
	s.current.SetUint64(b.ID + 1)
	logger.Debug("batch submitted", "batch", b.ID, "epoch", epoch, "burned", b.Burned, "expected", expected, "end", endTime)
	return b, nil
}

// Mature records the native received for a submitted batch. With surplusToPool the
// claimants are paid the expected amount and any excess is left to the caller,
// otherwise they share everything received.
func (s *Service) Mature(id uint64, received *big.Int, now uint64, surplusToPool bool) (*delta.Settlement, error) {
	if !thor.IsAmount(received) {
		return nil, reverts.Newf(reverts.InvalidAmount, "received %v", received)
	}
	b, err := s.Get(id)
	if err != nil {
		return nil, err
	}
	if b.State != StateSubmitted {
		return nil, reverts.Newf(reverts.InvalidState, "batch %d is %s", id, StateName(b.State))
	}
	if now < b.EstUnbondEndTime {
		return nil, reverts.Newf(reverts.BatchNotMatured, "batch %d matures at %d", id, b.EstUnbondEndTime)
	}

	settlement := delta.NewSettlement(b.Expected, received)
	b.State = StateMatured
	b.Received = new(big.Int).Set(received)
	b.UnclaimedNative = new(big.Int).Set(received)
	if surplusToPool && settlement.Surplus.Sign() > 0 {
		b.UnclaimedNative.Set(b.Expected)
	} else {
		settlement.Surplus.SetInt64(0)
	}
	if err := s.save(b); err != nil {
		return nil, err
	}
	logger.Debug("batch matured", "batch", id, "expected", b.Expected, "received", received, "payable", b.UnclaimedNative)
	return settlement, nil
}

// Claim settles user's request in batch id and returns the native owed.
func (s *Service) Claim(user thor.Address, id uint64) (*big.Int, error) {
	b, err := s.Get(id)
	if err != nil {
		if reverts.Is(err, reverts.NotFound) {
			return nil, reverts.Newf(reverts.NothingToClaim, "no request in batch %d", id)
		}
		return nil, err
	}
	key := requestKey(id, user)
	shares, err := s.requests.Get(key)
	if err != nil {
		return nil, errors.Wrap(err, "failed to get request")
	}
	if shares == nil || shares.Sign() == 0 {
		return nil, reverts.Newf(reverts.NothingToClaim, "no request in batch %d", id)
	}
	if b.State != StateMatured {
		return nil, reverts.Newf(reverts.BatchNotMatured, "batch %d is %s", id, StateName(b.State))
	}

	amount := b.payout(shares)
	b.UnclaimedShares.Sub(b.UnclaimedShares, shares)
	b.UnclaimedNative.Sub(b.UnclaimedNative, amount)
	if err := s.save(b); err != nil {
		return nil, err
	}
	s.requests.Delete(key)
	if err := s.unindex(user, id); err != nil {
		return nil, err
	}
	logger.Debug("unbond claimed", "batch", id, "user", user, "shares", shares, "amount", amount)
	return amount, nil
}

// ClaimAll settles every matured request of user together with any owed payout.
func (s *Service) ClaimAll(user thor.Address) (*big.Int, []uint64, error) {
	ids, err := s.UserBatches(user)
	if err != nil {
		return nil, nil, err
	}
	total := new(big.Int)
	var claimed []uint64
	for _, id := range ids {
		b, err := s.load(id)
		if err != nil {
			return nil, nil, err
		}
		if b.State != StateMatured {
			continue
		}
		amount, err := s.Claim(user, id)
		if err != nil {
			return nil, nil, err
		}
		total.Add(total, amount)
		claimed = append(claimed, id)
	}
	owed, err := s.TakeOwed(user)
	if err != nil {
		return nil, nil, err
	}
	if len(claimed) == 0 && owed.Sign() == 0 {
		return nil, nil, reverts.New(reverts.NothingToClaim, "no matured request")
	}
	return total.Add(total, owed), claimed, nil
}

// Owe credits user with a payout that could not be delivered.
func (s *Service) Owe(user thor.Address, amount *big.Int) error {
	owed, err := s.Owed(user)
	if err != nil {
		return err
	}
	owed.Add(owed, amount)
	if err := s.owed.Set(user, owed); err != nil {
		return errors.Wrap(err, "failed to set owed payout")
	}
	logger.Debug("payout owed", "user", user, "amount", amount, "owed", owed)
	return nil
}

// Owed returns the undelivered payouts of user.
func (s *Service) Owed(user thor.Address) (*big.Int, error) {
	owed, err := s.owed.Get(user)
	if err != nil {
		return nil, errors.Wrap(err, "failed to get owed payout")
	}
	if owed == nil {
		owed = new(big.Int)
	}
	return owed, nil
}

// TakeOwed clears and returns the undelivered payouts of user.
func (s *Service) TakeOwed(user thor.Address) (*big.Int, error) {
	owed, err := s.Owed(user)
	if err != nil {
		return nil, err
	}
	if owed.Sign() > 0 {
		s.owed.Delete(user)
	}
	return owed, nil
}

// UserBatches returns the ids of batches holding an unclaimed request of user, increasing.
func (s *Service) UserBatches(user thor.Address) ([]uint64, error) {
	ids, err := s.userIndex.Get(user)
	if err != nil {
		return nil, errors.Wrap(err, "failed to get user batches")
	}
	return ids, nil
}

// Requests returns user's unclaimed requests with what each would pay now.
func (s *Service) Requests(user thor.Address) ([]*Request, error) {
	ids, err := s.UserBatches(user)
	if err != nil {
		return nil, err
	}
	out := make([]*Request, 0, len(ids))
	for _, id := range ids {
		b, err := s.load(id)
		if err != nil {
			return nil, err
		}
		shares, err := s.requests.Get(requestKey(id, user))
		if err != nil {
			return nil, errors.Wrap(err, "failed to get request")
		}
		req := &Request{BatchID: id, Shares: shares, State: b.State, Claimable: new(big.Int), EndTime: b.EstUnbondEndTime}
		if b.State == StateMatured {
			req.Claimable = b.payout(shares)
		}
		out = append(out, req)
	}
	return out, nil
}

func (s *Service) unindex(user thor.Address, id uint64) error {
	ids, err := s.UserBatches(user)
	if err != nil {
		return err
	}
	ids = slices.DeleteFunc(ids, func(v uint64) bool { return v == id })
	if len(ids) == 0 {
		s.userIndex.Delete(user)
		return nil
	}
	if err := s.userIndex.Set(user, ids); err != nil {
		return errors.Wrap(err, "failed to set user batches")
	}
	return nil
}

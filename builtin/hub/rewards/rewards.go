// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package rewards

import (
	"math/big"

	"github.com/pkg/errors"

	"github.com/vechain/stakehub/builtin/hub/reverts"
	"github.com/vechain/stakehub/builtin/solidity"
	"github.com/vechain/stakehub/log"
	"github.com/vechain/stakehub/thor"
)

var logger = log.WithContext("pkg", "rewards")

var (
	slotRounds     = thor.BytesToBytes32([]byte("reward-rounds"))
	slotLatest     = thor.BytesToBytes32([]byte("reward-latest-round"))
	slotHarvested  = thor.BytesToBytes32([]byte("reward-total-harvested"))
	slotFees       = thor.BytesToBytes32([]byte("reward-total-fees"))
	slotReinvested = thor.BytesToBytes32([]byte("reward-total-reinvested"))
)

// Round is one harvest: a reward withdrawal per active validator, distributed once all resolve.
type Round struct {
	ID          uint64
	Outstanding uint64   // withdrawals not yet confirmed
	Accumulated *big.Int // rewards reported so far
	Distributed bool
}

func (r *Round) IsOpen() bool {
	return !r.Distributed && r.Outstanding > 0
}

// Totals are lifetime harvest statistics.
type Totals struct {
	Harvested  *big.Int
	Fees       *big.Int
	Reinvested *big.Int
}

type Service struct {
	rounds     *solidity.Mapping[solidity.Uint64Key, *Round]
	latest     *solidity.Uint256
	harvested  *solidity.Uint256
	fees       *solidity.Uint256
	reinvested *solidity.Uint256
}

func New(sctx *solidity.Context) *Service {
	return &Service{
		rounds:     solidity.NewMapping[solidity.Uint64Key, *Round](sctx, slotRounds),
		latest:     solidity.NewUint256(sctx, slotLatest),
		harvested:  solidity.NewUint256(sctx, slotHarvested),
		fees:       solidity.NewUint256(sctx, slotFees),
		reinvested: solidity.NewUint256(sctx, slotReinvested),
	}
}

// Latest returns the most recent round, nil before the first harvest.
func (s *Service) Latest() (*Round, error) {
	id, err := s.latest.GetUint64()
	if err != nil || id == 0 {
		return nil, err
	}
	return s.Get(id)
}

func (s *Service) Get(id uint64) (*Round, error) {
	r, err := s.rounds.Get(solidity.Uint64Key(id))
	if err != nil {
		return nil, errors.Wrap(err, "failed to get reward round")
	}
	if r.ID == 0 {
		return nil, reverts.Newf(reverts.NotFound, "reward round %d", id)
	}
	if r.Accumulated == nil {
		r.Accumulated = new(big.Int)
	}
	return r, nil
}

func (s *Service) save(r *Round) error {
	if err := s.rounds.Set(solidity.Uint64Key(r.ID), r); err != nil {
		return errors.Wrap(err, "failed to set reward round")
	}
	return nil
}

// Open starts a round awaiting the given number of withdrawals. It returns nil while the
// previous round is still open.
func (s *Service) Open(withdrawals uint64) (*Round, error) {
	latest, err := s.Latest()
	if err != nil {
		return nil, err
	}
	if latest != nil && latest.IsOpen() {
		return nil, nil
	}
	if withdrawals == 0 {
		return nil, reverts.New(reverts.InvalidState, "reward round without withdrawals")
	}
	id := uint64(1)
	if latest != nil {
		id = latest.ID + 1
	}
	r := &Round{ID: id, Outstanding: withdrawals, Accumulated: new(big.Int)}
	if err := s.save(r); err != nil {
		return nil, err
	}
	s.latest.SetUint64(id)
	logger.Debug("reward round opened", "round", id, "withdrawals", withdrawals)
	return r, nil
}

// Record resolves one withdrawal of round id with the reward it reported, zero for a failed
// one. It returns the round and whether this was the last outstanding withdrawal.
func (s *Service) Record(id uint64, reward *big.Int) (*Round, bool, error) {
	r, err := s.Get(id)
	if err != nil {
		return nil, false, err
	}
	if !r.IsOpen() {
		return nil, false, reverts.Newf(reverts.InvalidState, "reward round %d is closed", id)
	}
	r.Accumulated = new(big.Int).Add(r.Accumulated, reward)
	if !thor.IsAmount(r.Accumulated) {
		return nil, false, reverts.Newf(reverts.InvalidAmount, "reward %v out of range", reward)
	}
	r.Outstanding--
	done := r.Outstanding == 0
	if done {
		r.Distributed = true
	}
	if err := s.save(r); err != nil {
		return nil, false, err
	}
	return r, done, nil
}

// Account adds a distributed round to the lifetime totals.
func (s *Service) Account(harvested, fees, reinvested *big.Int) error {
	if err := s.harvested.Add(harvested); err != nil {
		return err
	}
	if err := s.fees.Add(fees); err != nil {
		return err
	}
	return s.reinvested.Add(reinvested)
}

func (s *Service) Totals() (*Totals, error) {
	harvested, err := s.harvested.Get()
	if err != nil {
		return nil, err
	}
	fees, err := s.fees.Get()
	if err != nil {
		return nil, err
	}
	reinvested, err := s.reinvested.Get()
	if err != nil {
		return nil, err
	}
	return &Totals{Harvested: harvested, Fees: fees, Reinvested: reinvested}, nil
}

// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package validators

import (
	"math/big"

	"github.com/vechain/stakehub/builtin/hub/reverts"
	"github.com/vechain/stakehub/builtin/solidity"
	"github.com/vechain/stakehub/log"
	"github.com/vechain/stakehub/thor"
)

var logger = log.WithContext("pkg", "validators")

// Service is the validator set manager.
type Service struct {
	storage *storage
}

func New(sctx *solidity.Context) *Service {
	return &Service{storage: newStorage(sctx)}
}

// Get returns the record of addr. Unknown validators are reported as NotFound.
func (s *Service) Get(addr thor.Address) (*Validator, error) {
	v, err := s.storage.get(addr)
	if err != nil {
		return nil, err
	}
	if v.Status == StatusUnknown {
		return nil, reverts.Newf(reverts.NotFound, "validator %v", addr)
	}
	return v, nil
}

// Member is like Get but also reports removed validators as NotFound.
func (s *Service) Member(addr thor.Address) (*Validator, error) {
	v, err := s.Get(addr)
	if err != nil {
		return nil, err
	}
	if !v.IsMember() {
		return nil, reverts.Newf(reverts.NotFound, "validator %v removed", addr)
	}
	return v, nil
}

// List returns the member validators in insertion order.
func (s *Service) List() ([]*Validator, error) {
	return s.storage.list()
}

// TotalDelegated sums the delegation of every member.
func (s *Service) TotalDelegated() (*big.Int, error) {
	vals, err := s.List()
	if err != nil {
		return nil, err
	}
	total := new(big.Int)
	for _, v := range vals {
		total.Add(total, v.Delegated)
	}
	return total, nil
}

// Add admits addr with zero delegation. A removed validator is reactivated with its retained record.
func (s *Service) Add(addr thor.Address) error {
	if addr.IsZero() {
		return reverts.New(reverts.EncodingError, "zero validator address")
	}
	v, err := s.storage.get(addr)
	if err != nil {
		return err
	}
	if v.IsMember() {
		return reverts.Newf(reverts.AlreadyExists, "validator %v", addr)
	}
	v.Status = StatusActive
	if err := s.storage.set(v); err != nil {
		return err
	}
	if err := s.storage.members.Add(addr); err != nil {
		return err
	}
	logger.Debug("validator added", "validator", addr, "delegated", v.Delegated)
	return nil
}

// Remove deactivates addr. Its delegation must be drained first.
func (s *Service) Remove(addr thor.Address) error {
	v, err := s.Member(addr)
	if err != nil {
		return err
	}
	if v.Delegated.Sign() > 0 {
		return reverts.Newf(reverts.StillDelegated, "validator %v holds %v", addr, v.Delegated)
	}
	v.Status = StatusRemoved
	if err := s.storage.set(v); err != nil {
		return err
	}
	if err := s.storage.members.Remove(addr); err != nil {
		return err
	}
	logger.Debug("validator removed", "validator", addr)
	return nil
}

func (s *Service) Pause(addr thor.Address) error {
	return s.setStatus(addr, StatusActive, StatusPaused)
}

func (s *Service) Resume(addr thor.Address) error {
	return s.setStatus(addr, StatusPaused, StatusActive)
}

func (s *Service) setStatus(addr thor.Address, from, to Status) error {
	v, err := s.Member(addr)
	if err != nil {
		return err
	}
	if v.Status != from {
		return reverts.Newf(reverts.InvalidState, "validator %v is %s", addr, StatusName(v.Status))
	}
	v.Status = to
	logger.Debug("validator status changed", "validator", addr, "status", StatusName(to))
	return s.storage.set(v)
}

// Credit increases the delegation of a member.
func (s *Service) Credit(addr thor.Address, amount *big.Int) error {
	v, err := s.Member(addr)
	if err != nil {
		return err
	}
	v.Delegated = new(big.Int).Add(v.Delegated, amount)
	if !thor.IsAmount(v.Delegated) {
		return reverts.Newf(reverts.InvalidAmount, "delegation of %v overflows", addr)
	}
	return s.storage.set(v)
}

// Debit decreases the delegation of a known validator, removed ones included.
func (s *Service) Debit(addr thor.Address, amount *big.Int) error {
	v, err := s.Get(addr)
	if err != nil {
		return err
	}
	if v.Delegated.Cmp(amount) < 0 {
		return reverts.Newf(reverts.InsufficientBalance, "validator %v holds %v, debit %v", addr, v.Delegated, amount)
	}
	v.Delegated = new(big.Int).Sub(v.Delegated, amount)
	return s.storage.set(v)
}

// Restore gives back a debit that the staking subsystem refused. A validator removed in the
// meantime still holds the stake, so it rejoins as paused and is drained by the next rebalance.
func (s *Service) Restore(addr thor.Address, amount *big.Int) error {
	v, err := s.Get(addr)
	if err != nil {
		return err
	}
	if v.Status == StatusRemoved {
		v.Status = StatusPaused
		if err := s.storage.members.Add(addr); err != nil {
			return err
		}
		logger.Info("removed validator rejoined as paused", "validator", addr, "amount", amount)
	}
	v.Delegated = new(big.Int).Add(v.Delegated, amount)
	if !thor.IsAmount(v.Delegated) {
		return reverts.Newf(reverts.InvalidAmount, "delegation of %v overflows", addr)
	}
	return s.storage.set(v)
}

// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package ledger

import (
	"math/big"

	"github.com/vechain/stakehub/builtin/hub/reverts"
	"github.com/vechain/stakehub/builtin/solidity"
	"github.com/vechain/stakehub/log"
	"github.com/vechain/stakehub/thor"
)

var logger = log.WithContext("pkg", "ledger")

var (
	slotNative      = thor.BytesToBytes32([]byte("pool-native"))
	slotSupply      = thor.BytesToBytes32([]byte("pool-supply"))
	slotIdle        = thor.BytesToBytes32([]byte("pool-idle"))
	slotHalted      = thor.BytesToBytes32([]byte("pool-halted"))
	slotFloorNative = thor.BytesToBytes32([]byte("pool-floor-native"))
	slotFloorSupply = thor.BytesToBytes32([]byte("pool-floor-supply"))

	// RateTolerance is the unaccounted rate decrease in basis points tolerated before bonding halts.
	RateTolerance = solidity.NewConfigVariable("rate-tolerance", thor.InitialRateTolerance)
)

// Pool is a snapshot of the pool totals.
type Pool struct {
	Native *big.Int // native under management, idle included
	Supply *big.Int // derivative supply, shares burned into the accepting batch included
	Idle   *big.Int // native not delegated to any validator
	Halted bool
}

// Rate returns the exchange rate as numerator and denominator. An empty pool has the initial 1:1 rate.
func (p *Pool) Rate() (*big.Int, *big.Int) {
	if p.Supply.Sign() == 0 {
		return big.NewInt(1), big.NewInt(1)
	}
	return new(big.Int).Set(p.Native), new(big.Int).Set(p.Supply)
}

// Service is the exchange-rate ledger.
type Service struct {
	sctx        *solidity.Context
	native      *solidity.Uint256
	supply      *solidity.Uint256
	idle        *solidity.Uint256
	halted      *solidity.Uint256
	floorNative *solidity.Uint256
	floorSupply *solidity.Uint256
}

func New(sctx *solidity.Context) *Service {
	return &Service{
		sctx:        sctx,
		native:      solidity.NewUint256(sctx, slotNative),
		supply:      solidity.NewUint256(sctx, slotSupply),
		idle:        solidity.NewUint256(sctx, slotIdle),
		halted:      solidity.NewUint256(sctx, slotHalted),
		floorNative: solidity.NewUint256(sctx, slotFloorNative),
		floorSupply: solidity.NewUint256(sctx, slotFloorSupply),
	}
}

func (s *Service) Pool() (*Pool, error) {
	native, err := s.native.Get()
	if err != nil {
		return nil, err
	}
	supply, err := s.supply.Get()
	if err != nil {
		return nil, err
	}
	idle, err := s.idle.Get()
	if err != nil {
		return nil, err
	}
	halted, err := s.halted.GetUint64()
	if err != nil {
		return nil, err
	}
	return &Pool{Native: native, Supply: supply, Idle: idle, Halted: halted != 0}, nil
}

// Bond adds amount to the pool and returns the derivative amount to mint, rounded down.
func (s *Service) Bond(amount *big.Int) (*big.Int, error) {
	if !thor.IsPositiveAmount(amount) {
		return nil, reverts.Newf(reverts.InvalidAmount, "bond amount %v", amount)
	}
	pool, err := s.Pool()
	if err != nil {
		return nil, err
	}
	if pool.Halted {
		return nil, reverts.New(reverts.RateRegression, "bonding halted until the rate regression is acknowledged")
	}

	minted := new(big.Int).Set(amount)
	if pool.Supply.Sign() > 0 {
		var ok bool
		if minted, ok = thor.MulDiv(amount, pool.Supply, pool.Native); !ok {
			return nil, reverts.Newf(reverts.InvalidAmount, "bond amount %v out of range", amount)
		}
		if minted.Sign() == 0 {
			return nil, reverts.Newf(reverts.InvalidAmount, "bond amount %v mints nothing", amount)
		}
	}

	native := new(big.Int).Add(pool.Native, amount)
	supply := new(big.Int).Add(pool.Supply, minted)
	if !thor.IsAmount(native) || !thor.IsAmount(supply) {
		return nil, reverts.Newf(reverts.InvalidAmount, "bond amount %v overflows the pool", amount)
	}
	if err := s.setTotals(native, supply); err != nil {
		return nil, err
	}
	logger.Debug("bonded", "amount", amount, "minted", minted, "native", native, "supply", supply)
	return minted, nil
}

// UnbondValue returns the native value of shares at the current rate, rounded down.
func (s *Service) UnbondValue(shares *big.Int) (*big.Int, error) {
	if !thor.IsPositiveAmount(shares) {
		return nil, reverts.Newf(reverts.InvalidAmount, "unbond amount %v", shares)
	}
	pool, err := s.Pool()
	if err != nil {
		return nil, err
	}
	if shares.Cmp(pool.Supply) > 0 {
		return nil, reverts.Newf(reverts.InsufficientBalance, "unbond amount %v exceeds supply %v", shares, pool.Supply)
	}
	value, _ := thor.MulDiv(shares, pool.Native, pool.Supply)
	return value, nil
}

// Release removes burned shares and their native value from the pool when a batch closes.
// The last shares out take whatever native remains. Idle is left to the caller, which
// decides how much of the release is undelegated and how much is paid from idle.
func (s *Service) Release(burned *big.Int) (*big.Int, error) {
	if burned.Sign() == 0 {
		return new(big.Int), nil
	}
	pool, err := s.Pool()
	if err != nil {
		return nil, err
	}
	if burned.Cmp(pool.Supply) > 0 {
		return nil, reverts.Newf(reverts.InsufficientBalance, "release %v exceeds supply %v", burned, pool.Supply)
	}

	expected := new(big.Int).Set(pool.Native)
	if burned.Cmp(pool.Supply) < 0 {
		expected, _ = thor.MulDiv(burned, pool.Native, pool.Supply)
	}
	native := new(big.Int).Sub(pool.Native, expected)
	supply := new(big.Int).Sub(pool.Supply, burned)
	if err := s.setTotals(native, supply); err != nil {
		return nil, err
	}
	logger.Debug("released", "burned", burned, "expected", expected, "native", native, "supply", supply)
	return expected, nil
}

// Accrue adds native to the pool without minting, raising the rate. It requires outstanding shares.
func (s *Service) Accrue(amount *big.Int) error {
	if amount.Sign() == 0 {
		return nil
	}
	pool, err := s.Pool()
	if err != nil {
		return err
	}
	if pool.Supply.Sign() == 0 {
		return reverts.New(reverts.InvalidState, "accrue into an empty pool")
	}
	native := new(big.Int).Add(pool.Native, amount)
	if !thor.IsAmount(native) {
		return reverts.Newf(reverts.InvalidAmount, "accrual %v overflows the pool", amount)
	}
	logger.Debug("accrued", "amount", amount, "native", native)
	return s.setTotals(native, pool.Supply)
}

// Absorb takes native the hub holds for nobody into the pool as idle. With outstanding shares the
// rate rises, otherwise the native waits in the pool for the next bond.
func (s *Service) Absorb(amount *big.Int) error {
	if amount.Sign() == 0 {
		return nil
	}
	if err := s.Gain(amount); err != nil {
		return err
	}
	idle, err := s.idle.Get()
	if err != nil {
		return err
	}
	return s.idle.Set(idle.Add(idle, amount))
}

// Gain adds native found on a validator beyond what was recorded.
func (s *Service) Gain(amount *big.Int) error {
	if amount.Sign() == 0 {
		return nil
	}
	pool, err := s.Pool()
	if err != nil {
		return err
	}
	native := new(big.Int).Add(pool.Native, amount)
	if !thor.IsAmount(native) {
		return reverts.Newf(reverts.InvalidAmount, "gain %v overflows the pool", amount)
	}
	logger.Debug("gained", "amount", amount, "native", native, "supply", pool.Supply)
	return s.setTotals(native, pool.Supply)
}

// Lose removes delegated native that disappeared without being reported as a slash.
// Unlike Slash the floor stays, so a loss beyond the tolerance halts bonding.
func (s *Service) Lose(loss *big.Int) error {
	if loss.Sign() == 0 {
		return nil
	}
	pool, err := s.Pool()
	if err != nil {
		return err
	}
	native := new(big.Int).Sub(pool.Native, loss)
	if native.Cmp(pool.Idle) < 0 {
		return reverts.Newf(reverts.InsufficientBalance, "loss %v exceeds delegated %v", loss, new(big.Int).Sub(pool.Native, pool.Idle))
	}
	logger.Warn("unaccounted loss", "loss", loss, "native", native, "supply", pool.Supply)
	return s.setTotals(native, pool.Supply)
}

// Slash records an externally observed loss. The floor follows the reduced rate.
func (s *Service) Slash(loss *big.Int) error {
	if loss.Sign() == 0 {
		return nil
	}
	pool, err := s.Pool()
	if err != nil {
		return err
	}
	native := new(big.Int).Sub(pool.Native, loss)
	if native.Sign() < 0 {
		return reverts.Newf(reverts.InsufficientBalance, "slash %v exceeds pool %v", loss, pool.Native)
	}
	if err := s.native.Set(native); err != nil {
		return err
	}
	logger.Info("slash accounted", "loss", loss, "native", native, "supply", pool.Supply)
	return s.setFloor(native, pool.Supply)
}

// Acknowledge resumes bonding after a regression and takes the current rate as the new floor.
func (s *Service) Acknowledge() error {
	pool, err := s.Pool()
	if err != nil {
		return err
	}
	if !pool.Halted {
		return reverts.New(reverts.InvalidState, "no rate regression to acknowledge")
	}
	s.halted.SetUint64(0)
	logger.Info("rate regression acknowledged", "native", pool.Native, "supply", pool.Supply)
	return s.setFloor(pool.Native, pool.Supply)
}

// AddIdle marks native already in the pool as undelegated.
func (s *Service) AddIdle(amount *big.Int) error {
	pool, err := s.Pool()
	if err != nil {
		return err
	}
	idle := new(big.Int).Add(pool.Idle, amount)
	if idle.Cmp(pool.Native) > 0 {
		return reverts.Newf(reverts.InvalidState, "idle %v exceeds pool %v", idle, pool.Native)
	}
	return s.idle.Set(idle)
}

// TakeIdle removes up to limit from idle and returns the amount taken. A nil limit takes everything.
func (s *Service) TakeIdle(limit *big.Int) (*big.Int, error) {
	idle, err := s.idle.Get()
	if err != nil {
		return nil, err
	}
	taken := idle
	if limit != nil {
		taken = thor.MinAmount(idle, limit)
	}
	if err := s.idle.Sub(taken); err != nil {
		return nil, err
	}
	return taken, nil
}

func (s *Service) setTotals(native, supply *big.Int) error {
	if err := s.native.Set(native); err != nil {
		return err
	}
	if err := s.supply.Set(supply); err != nil {
		return err
	}
	return s.checkRate(native, supply)
}

func (s *Service) setFloor(native, supply *big.Int) error {
	if err := s.floorNative.Set(native); err != nil {
		return err
	}
	return s.floorSupply.Set(supply)
}

// checkRate compares the rate against its high-water mark. A decrease beyond the
// tolerance halts bonding, an increase moves the mark up.
func (s *Service) checkRate(native, supply *big.Int) error {
	if supply.Sign() == 0 {
		return s.setFloor(new(big.Int), new(big.Int))
	}
	floorNative, err := s.floorNative.Get()
	if err != nil {
		return err
	}
	floorSupply, err := s.floorSupply.Get()
	if err != nil {
		return err
	}
	if floorSupply.Sign() == 0 {
		return s.setFloor(native, supply)
	}

	// native/supply vs floorNative/floorSupply
	current := new(big.Int).Mul(native, floorSupply)
	floor := new(big.Int).Mul(floorNative, supply)
	switch current.Cmp(floor) {
	case 1:
		return s.setFloor(native, supply)
	case 0:
		return nil
	}

	tolerance, err := RateTolerance.Get(s.sctx)
	if err != nil {
		return err
	}
	drop := new(big.Int).Sub(floor, current)
	drop.Mul(drop, new(big.Int).SetUint64(thor.BasisPoints))
	if drop.Cmp(new(big.Int).Mul(floor, new(big.Int).SetUint64(tolerance))) <= 0 {
		return nil
	}
	halted, err := s.halted.GetUint64()
	if err != nil {
		return err
	}
	if halted == 0 {
		s.halted.SetUint64(1)
		logger.Error("rate regression detected, bonding halted",
			"native", native, "supply", supply, "floorNative", floorNative, "floorSupply", floorSupply)
		metricRegressions().Add(1)
	}
	return nil
}

// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package token is the derivative token ledger.
package token

import (
	"math/big"

	"github.com/pkg/errors"

	"github.com/vechain/stakehub/builtin/hub/reverts"
	"github.com/vechain/stakehub/builtin/solidity"
	"github.com/vechain/stakehub/state"
	"github.com/vechain/stakehub/thor"
)

var (
	slotBalances = thor.BytesToBytes32([]byte("token-balances"))
	slotSupply   = thor.BytesToBytes32([]byte("token-supply"))
)

type Token struct {
	balances *solidity.Mapping[thor.Address, *big.Int]
	supply   *solidity.Uint256
}

// New returns the token stored at addr.
func New(addr thor.Address, st *state.State) *Token {
	sctx := solidity.NewContext(addr, st)
	return &Token{
		balances: solidity.NewMapping[thor.Address, *big.Int](sctx, slotBalances),
		supply:   solidity.NewUint256(sctx, slotSupply),
	}
}

func (t *Token) TotalSupply() (*big.Int, error) {
	return t.supply.Get()
}

func (t *Token) BalanceOf(addr thor.Address) (*big.Int, error) {
	bal, err := t.balances.Get(addr)
	if err != nil {
		return nil, errors.Wrap(err, "failed to get balance")
	}
	return bal, nil
}

func (t *Token) setBalance(addr thor.Address, bal *big.Int) error {
	if bal.Sign() == 0 {
		t.balances.Delete(addr)
		return nil
	}
	if err := t.balances.Set(addr, bal); err != nil {
		return errors.Wrap(err, "failed to set balance")
	}
	return nil
}

// Mint credits amount to addr.
func (t *Token) Mint(addr thor.Address, amount *big.Int) error {
	if !thor.IsPositiveAmount(amount) {
		return reverts.Newf(reverts.InvalidAmount, "mint %v", amount)
	}
	if addr.IsZero() {
		return reverts.New(reverts.EncodingError, "mint to zero address")
	}
	supply, err := t.supply.Get()
	if err != nil {
		return err
	}
	supply.Add(supply, amount)
	if !thor.IsAmount(supply) {
		return reverts.Newf(reverts.InvalidAmount, "mint %v overflows supply", amount)
	}
	bal, err := t.BalanceOf(addr)
	if err != nil {
		return err
	}
	if err := t.setBalance(addr, bal.Add(bal, amount)); err != nil {
		return err
	}
	return t.supply.Set(supply)
}

// Burn destroys amount held by addr.
func (t *Token) Burn(addr thor.Address, amount *big.Int) error {
	if !thor.IsPositiveAmount(amount) {
		return reverts.Newf(reverts.InvalidAmount, "burn %v", amount)
	}
	bal, err := t.BalanceOf(addr)
	if err != nil {
		return err
	}
	if bal.Cmp(amount) < 0 {
		return reverts.Newf(reverts.InsufficientBalance, "balance %v, burn %v", bal, amount)
	}
	if err := t.setBalance(addr, bal.Sub(bal, amount)); err != nil {
		return err
	}
	return t.supply.Sub(amount)
}

// Transfer moves amount from one holder to another.
func (t *Token) Transfer(from, to thor.Address, amount *big.Int) error {
	if !thor.IsPositiveAmount(amount) {
		return reverts.Newf(reverts.InvalidAmount, "transfer %v", amount)
	}
	if to.IsZero() {
		return reverts.New(reverts.EncodingError, "transfer to zero address")
	}
	bal, err := t.BalanceOf(from)
	if err != nil {
		return err
	}
	if bal.Cmp(amount) < 0 {
		return reverts.Newf(reverts.InsufficientBalance, "balance %v, transfer %v", bal, amount)
	}
	if err := t.setBalance(from, bal.Sub(bal, amount)); err != nil {
		return err
	}
	dst, err := t.BalanceOf(to)
	if err != nil {
		return err
	}
	return t.setBalance(to, dst.Add(dst, amount))
}

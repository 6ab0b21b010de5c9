// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package stakemsg encodes the operations sent to the native staking subsystem and decodes
// the confirmations it delivers back. It holds no state.
package stakemsg

import (
	"fmt"
	"math/big"

	"github.com/vechain/stakehub/builtin/hub/reverts"
	"github.com/vechain/stakehub/thor"
)

// Kind is the leading byte of an encoded operation.
type Kind uint8

const (
	KindDelegate Kind = iota + 1
	KindUndelegate
	KindBeginRedelegate
	KindWithdrawReward
	KindSend
)

func (k Kind) String() string {
	switch k {
	case KindDelegate:
		return "delegate"
	case KindUndelegate:
		return "undelegate"
	case KindBeginRedelegate:
		return "begin_redelegate"
	case KindWithdrawReward:
		return "withdraw_reward"
	case KindSend:
		return "send"
	default:
		return fmt.Sprintf("kind(%d)", uint8(k))
	}
}

// Coin is an amount of one denomination.
type Coin struct {
	Denom  string
	Amount *big.Int
}

func NewCoin(denom string, amount *big.Int) Coin {
	return Coin{Denom: denom, Amount: new(big.Int).Set(amount)}
}

func (c Coin) validate() error {
	if c.Denom == "" {
		return reverts.New(reverts.EncodingError, "empty denom")
	}
	if !thor.IsPositiveAmount(c.Amount) {
		return reverts.Newf(reverts.EncodingError, "invalid amount %v", c.Amount)
	}
	return nil
}

func (c Coin) String() string {
	return fmt.Sprintf("%v%s", c.Amount, c.Denom)
}

func requireAddress(name string, addr thor.Address) error {
	if addr.IsZero() {
		return reverts.Newf(reverts.EncodingError, "zero %s address", name)
	}
	return nil
}

// Msg is one operation understood by the staking subsystem.
type Msg interface {
	Kind() Kind
	Validate() error
}

type Delegate struct {
	Delegator thor.Address
	Validator thor.Address
	Amount    Coin
}

func (m *Delegate) Kind() Kind { return KindDelegate }

func (m *Delegate) Validate() error {
	if err := requireAddress("delegator", m.Delegator); err != nil {
		return err
	}
	if err := requireAddress("validator", m.Validator); err != nil {
		return err
	}
	return m.Amount.validate()
}

type Undelegate struct {
	Delegator thor.Address
	Validator thor.Address
	Amount    Coin
}

func (m *Undelegate) Kind() Kind { return KindUndelegate }

func (m *Undelegate) Validate() error {
	if err := requireAddress("delegator", m.Delegator); err != nil {
		return err
	}
	if err := requireAddress("validator", m.Validator); err != nil {
		return err
	}
	return m.Amount.validate()
}

type BeginRedelegate struct {
	Delegator    thor.Address
	ValidatorSrc thor.Address
	ValidatorDst thor.Address
	Amount       Coin
}

func (m *BeginRedelegate) Kind() Kind { return KindBeginRedelegate }

func (m *BeginRedelegate) Validate() error {
	if err := requireAddress("delegator", m.Delegator); err != nil {
		return err
	}
	if err := requireAddress("source validator", m.ValidatorSrc); err != nil {
		return err
	}
	if err := requireAddress("destination validator", m.ValidatorDst); err != nil {
		return err
	}
	if m.ValidatorSrc == m.ValidatorDst {
		return reverts.Newf(reverts.EncodingError, "redelegate %v to itself", m.ValidatorSrc)
	}
	return m.Amount.validate()
}

type WithdrawReward struct {
	Delegator thor.Address
	Validator thor.Address
}

func (m *WithdrawReward) Kind() Kind { return KindWithdrawReward }

func (m *WithdrawReward) Validate() error {
	if err := requireAddress("delegator", m.Delegator); err != nil {
		return err
	}
	return requireAddress("validator", m.Validator)
}

// Send transfers liquid native out of the hub, used for fee payouts and claims.
type Send struct {
	From   thor.Address
	To     thor.Address
	Amount Coin
}

func (m *Send) Kind() Kind { return KindSend }

func (m *Send) Validate() error {
	if err := requireAddress("sender", m.From); err != nil {
		return err
	}
	if err := requireAddress("recipient", m.To); err != nil {
		return err
	}
	return m.Amount.validate()
}

func newMsg(kind Kind) (Msg, error) {
	switch kind {
	case KindDelegate:
		return &Delegate{}, nil
	case KindUndelegate:
		return &Undelegate{}, nil
	case KindBeginRedelegate:
		return &BeginRedelegate{}, nil
	case KindWithdrawReward:
		return &WithdrawReward{}, nil
	case KindSend:
		return &Send{}, nil
	default:
		return nil, reverts.Newf(reverts.EncodingError, "unknown operation %v", kind)
	}
}

// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package stakemsg

import (
	"math/big"

	"github.com/ethereum/go-ethereum/rlp"

	"github.com/vechain/stakehub/builtin/hub/reverts"
	"github.com/vechain/stakehub/thor"
)

const (
	tagConfirmation byte = 0xF0
	tagCompletion   byte = 0xF1
)

// Envelope is an operation correlated to its outbound record.
type Envelope struct {
	OpID thor.Bytes32
	Msg  Msg
}

type wireEnvelope struct {
	OpID thor.Bytes32
	Body rlp.RawValue
}

// Encode validates env and returns its wire form: the kind byte followed by the RLP envelope.
func Encode(env *Envelope) ([]byte, error) {
	if env == nil || env.Msg == nil {
		return nil, reverts.New(reverts.EncodingError, "empty operation")
	}
	if err := env.Msg.Validate(); err != nil {
		return nil, err
	}
	body, err := rlp.EncodeToBytes(env.Msg)
	if err != nil {
		return nil, reverts.Newf(reverts.EncodingError, "encode %v: %v", env.Msg.Kind(), err)
	}
	data, err := rlp.EncodeToBytes(&wireEnvelope{OpID: env.OpID, Body: body})
	if err != nil {
		return nil, reverts.Newf(reverts.EncodingError, "encode %v: %v", env.Msg.Kind(), err)
	}
	return append([]byte{byte(env.Msg.Kind())}, data...), nil
}

// Decode parses and validates an encoded operation.
func Decode(data []byte) (*Envelope, error) {
	if len(data) == 0 {
		return nil, reverts.New(reverts.EncodingError, "empty payload")
	}
	msg, err := newMsg(Kind(data[0]))
	if err != nil {
		return nil, err
	}
	var wire wireEnvelope
	if err := rlp.DecodeBytes(data[1:], &wire); err != nil {
		return nil, reverts.Newf(reverts.EncodingError, "decode %v: %v", msg.Kind(), err)
	}
	if err := rlp.DecodeBytes(wire.Body, msg); err != nil {
		return nil, reverts.Newf(reverts.EncodingError, "decode %v: %v", msg.Kind(), err)
	}
	if err := msg.Validate(); err != nil {
		return nil, err
	}
	return &Envelope{OpID: wire.OpID, Msg: msg}, nil
}

// Confirmation reports the outcome of one operation. Amount carries the reward of a
// successful withdrawal and is zero otherwise.
type Confirmation struct {
	OpID    thor.Bytes32
	Success bool
	Amount  *big.Int
}

func EncodeConfirmation(c *Confirmation) ([]byte, error) {
	amount := c.Amount
	if amount == nil {
		amount = new(big.Int)
	}
	if !thor.IsAmount(amount) {
		return nil, reverts.Newf(reverts.EncodingError, "invalid amount %v", amount)
	}
	data, err := rlp.EncodeToBytes(&Confirmation{OpID: c.OpID, Success: c.Success, Amount: amount})
	if err != nil {
		return nil, reverts.Newf(reverts.EncodingError, "encode confirmation: %v", err)
	}
	return append([]byte{tagConfirmation}, data...), nil
}

func DecodeConfirmation(data []byte) (*Confirmation, error) {
	if len(data) == 0 || data[0] != tagConfirmation {
		return nil, reverts.New(reverts.EncodingError, "not a confirmation")
	}
	var c Confirmation
	if err := rlp.DecodeBytes(data[1:], &c); err != nil {
		return nil, reverts.Newf(reverts.EncodingError, "decode confirmation: %v", err)
	}
	if c.OpID.IsZero() {
		return nil, reverts.New(reverts.EncodingError, "zero operation id")
	}
	if !thor.IsAmount(c.Amount) {
		return nil, reverts.Newf(reverts.EncodingError, "invalid amount %v", c.Amount)
	}
	return &c, nil
}

// UnbondCompletion reports that a batch's undelegations have completed and its funds are liquid.
type UnbondCompletion struct {
	BatchID uint64
	Amount  *big.Int
}

func EncodeUnbondCompletion(c *UnbondCompletion) ([]byte, error) {
	if c.BatchID == 0 {
		return nil, reverts.New(reverts.EncodingError, "zero batch id")
	}
	if !thor.IsAmount(c.Amount) {
		return nil, reverts.Newf(reverts.EncodingError, "invalid amount %v", c.Amount)
	}
	data, err := rlp.EncodeToBytes(c)
	if err != nil {
		return nil, reverts.Newf(reverts.EncodingError, "encode completion: %v", err)
	}
	return append([]byte{tagCompletion}, data...), nil
}

func DecodeUnbondCompletion(data []byte) (*UnbondCompletion, error) {
	if len(data) == 0 || data[0] != tagCompletion {
		return nil, reverts.New(reverts.EncodingError, "not an unbond completion")
	}
	var c UnbondCompletion
	if err := rlp.DecodeBytes(data[1:], &c); err != nil {
		return nil, reverts.Newf(reverts.EncodingError, "decode completion: %v", err)
	}
	if c.BatchID == 0 {
		return nil, reverts.New(reverts.EncodingError, "zero batch id")
	}
	return &c, nil
}

// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package runtime

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/common/math"

	"github.com/vechain/stakehub/builtin/hub"
	"github.com/vechain/stakehub/builtin/hub/delta"
	"github.com/vechain/stakehub/thor"
)

// Receipt is the result of one executed request.
type Receipt struct {
	Type          string       `json:"type"`
	Reverted      bool         `json:"reverted"`
	RevertKind    string       `json:"revertKind,omitempty"`
	RevertMessage string       `json:"revertMessage,omitempty"`
	Outputs       *Outputs     `json:"outputs,omitempty"`
	Operations    []*Operation `json:"operations"`
	Events        []*Event     `json:"events"`
}

// Outputs are the values a request returns. Only the ones a request produces are set.
type Outputs struct {
	Minted      *math.HexOrDecimal256 `json:"minted,omitempty"`
	Native      *math.HexOrDecimal256 `json:"native,omitempty"`
	Distributed *math.HexOrDecimal256 `json:"distributed,omitempty"`
	BatchID     *math.HexOrDecimal64  `json:"batchId,omitempty"`
	Round       *math.HexOrDecimal64  `json:"round,omitempty"`
	Moves       []*Move               `json:"moves,omitempty"`
}

type Move struct {
	From   thor.Address          `json:"from"`
	To     thor.Address          `json:"to"`
	Amount *math.HexOrDecimal256 `json:"amount"`
}

// Operation is an encoded outbound staking operation.
type Operation struct {
	ID   thor.Bytes32  `json:"id"`
	Kind string        `json:"kind"`
	Data hexutil.Bytes `json:"data"`
}

type Attr struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

type Event struct {
	Name  string       `json:"name"`
	Topic thor.Bytes32 `json:"topic"`
	Attrs []Attr       `json:"attrs"`
}

func amountOf(v *big.Int) *math.HexOrDecimal256 {
	if v == nil {
		return nil
	}
	return (*math.HexOrDecimal256)(new(big.Int).Set(v))
}

func uint64Of(v uint64) *math.HexOrDecimal64 {
	n := math.HexOrDecimal64(v)
	return &n
}

func convertMoves(moves delta.Moves) []*Move {
	out := make([]*Move, 0, len(moves))
	for _, m := range moves {
		out = append(out, &Move{From: m.From, To: m.To, Amount: amountOf(m.Amount)})
	}
	return out
}

// EventTopic is the Keccak256 of an event name.
func EventTopic(name string) thor.Bytes32 {
	return thor.Keccak256([]byte(name))
}

func newReceipt(typ string, effects *hub.Effects) *Receipt {
	r := &Receipt{
		Type:       typ,
		Operations: make([]*Operation, 0, len(effects.Ops)),
		Events:     make([]*Event, 0, len(effects.Events)),
	}
	for _, op := range effects.Ops {
		r.Operations = append(r.Operations, &Operation{ID: op.ID, Kind: op.Kind.String(), Data: op.Data})
	}
	for _, ev := range effects.Events {
		e := &Event{Name: ev.Name, Topic: EventTopic(ev.Name), Attrs: make([]Attr, 0, len(ev.Attrs))}
		for _, a := range ev.Attrs {
			e.Attrs = append(e.Attrs, Attr{Key: a.Key, Value: a.Value})
		}
		r.Events = append(r.Events, e)
	}
	return r
}

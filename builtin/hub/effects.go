// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package hub

import (
	"fmt"

	"github.com/vechain/stakehub/builtin/hub/operations"
	"github.com/vechain/stakehub/stakemsg"
	"github.com/vechain/stakehub/thor"
)

// Outbound is an encoded operation for the staking subsystem.
type Outbound struct {
	ID   thor.Bytes32
	Kind stakemsg.Kind
	Data []byte
}

type Attr struct {
	Key   string
	Value string
}

// Event is emitted by a request for off-chain observers.
type Event struct {
	Name  string
	Attrs []Attr
}

// Effects are the side outputs of one request.
type Effects struct {
	Ops    []Outbound
	Events []Event
}

func (e *Effects) addOp(op *operations.Operation, data []byte) {
	e.Ops = append(e.Ops, Outbound{ID: op.ID, Kind: op.Kind, Data: data})
}

// emit records an event. kv holds alternating keys and values.
func (e *Effects) emit(name string, kv ...any) {
	ev := Event{Name: name}
	for i := 0; i+1 < len(kv); i += 2 {
		ev.Attrs = append(ev.Attrs, Attr{Key: fmt.Sprint(kv[i]), Value: fmt.Sprint(kv[i+1])})
	}
	e.Events = append(e.Events, ev)
}

// Reset drops everything collected so far.
func (e *Effects) Reset() {
	e.Ops = nil
	e.Events = nil
}

// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package linkedlist

import (
	"math/big"

	"github.com/pkg/errors"

	"github.com/vechain/stakehub/builtin/solidity"
	"github.com/vechain/stakehub/thor"
)

// LinkedList is a persistent doubly linked list of unique non-zero addresses, kept in insertion order.
type LinkedList struct {
	head  *solidity.Address
	tail  *solidity.Address
	count *solidity.Uint256
	next  *solidity.Mapping[thor.Address, thor.Address]
	prev  *solidity.Mapping[thor.Address, thor.Address]
}

// New creates a list rooted at the given slots. The head and tail slots double as the
// base positions of the next and prev mappings.
func New(sctx *solidity.Context, headPos, tailPos, countPos thor.Bytes32) *LinkedList {
	return &LinkedList{
		head:  solidity.NewAddress(sctx, headPos),
		tail:  solidity.NewAddress(sctx, tailPos),
		count: solidity.NewUint256(sctx, countPos),
		next:  solidity.NewMapping[thor.Address, thor.Address](sctx, headPos),
		prev:  solidity.NewMapping[thor.Address, thor.Address](sctx, tailPos),
	}
}

// Contains reports whether address is linked.
func (l *LinkedList) Contains(address thor.Address) (bool, error) {
	if address.IsZero() {
		return false, nil
	}
	head, err := l.head.Get()
	if err != nil {
		return false, err
	}
	if head == address {
		return true, nil
	}
	return l.prev.Has(address)
}

// Add appends address to the tail.
func (l *LinkedList) Add(address thor.Address) error {
	if address.IsZero() {
		return errors.New("zero address")
	}
	linked, err := l.Contains(address)
	if err != nil {
		return err
	}
	if linked {
		return errors.Errorf("address %v already linked", address)
	}

	tail, err := l.tail.Get()
	if err != nil {
		return err
	}
	if tail.IsZero() {
		l.head.Set(&address)
	} else {
		if err := l.next.Set(tail, address); err != nil {
			return err
		}
		if err := l.prev.Set(address, tail); err != nil {
			return err
		}
	}
	l.tail.Set(&address)
	return l.count.Add(big.NewInt(1))
}

// Remove unlinks address. Removing an address that is not linked is a no-op.
func (l *LinkedList) Remove(address thor.Address) error {
	linked, err := l.Contains(address)
	if err != nil || !linked {
		return err
	}

	prev, err := l.prev.Get(address)
	if err != nil {
		return err
	}
	next, err := l.next.Get(address)
	if err != nil {
		return err
	}

	if prev.IsZero() {
		l.head.Set(&next)
	} else if next.IsZero() {
		l.next.Delete(prev)
	} else if err := l.next.Set(prev, next); err != nil {
		return err
	}

	if next.IsZero() {
		l.tail.Set(&prev)
	} else if prev.IsZero() {
		l.prev.Delete(next)
	} else if err := l.prev.Set(next, prev); err != nil {
		return err
	}

	l.next.Delete(address)
	l.prev.Delete(address)
	return l.count.Sub(big.NewInt(1))
}

// Head returns the first address, zero when empty.
func (l *LinkedList) Head() (thor.Address, error) {
	return l.head.Get()
}

// Next returns the successor of address, zero at the tail.
func (l *LinkedList) Next(address thor.Address) (thor.Address, error) {
	return l.next.Get(address)
}

// Len returns the number of linked addresses.
func (l *LinkedList) Len() (uint64, error) {
	return l.count.GetUint64()
}

// Iter visits addresses head to tail until callback returns an error.
func (l *LinkedList) Iter(callback func(thor.Address) error) error {
	ptr, err := l.head.Get()
	if err != nil {
		return err
	}
	for !ptr.IsZero() {
		if err := callback(ptr); err != nil {
			return err
		}
		if ptr, err = l.next.Get(ptr); err != nil {
			return err
		}
	}
	return nil
}

// All returns every linked address in order.
func (l *LinkedList) All() ([]thor.Address, error) {
	var out []thor.Address
	err := l.Iter(func(addr thor.Address) error {
		out = append(out, addr)
		return nil
	})
	return out, err
}

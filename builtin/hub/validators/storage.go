// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package validators

import (
	"github.com/pkg/errors"

	"github.com/vechain/stakehub/builtin/hub/linkedlist"
	"github.com/vechain/stakehub/builtin/solidity"
	"github.com/vechain/stakehub/thor"
)

var (
	slotValidators = thor.BytesToBytes32([]byte("validators"))

	// member validators (active and paused) in insertion order
	slotMembersHead = thor.BytesToBytes32([]byte("validators-members-head"))
	slotMembersTail = thor.BytesToBytes32([]byte("validators-members-tail"))
	slotMembersSize = thor.BytesToBytes32([]byte("validators-members-size"))
)

type storage struct {
	records *solidity.Mapping[thor.Address, *Validator]
	members *linkedlist.LinkedList
}

func newStorage(sctx *solidity.Context) *storage {
	return &storage{
		records: solidity.NewMapping[thor.Address, *Validator](sctx, slotValidators),
		members: linkedlist.New(sctx, slotMembersHead, slotMembersTail, slotMembersSize),
	}
}

func (s *storage) get(addr thor.Address) (*Validator, error) {
	v, err := s.records.Get(addr)
	if err != nil {
		return nil, errors.Wrap(err, "failed to get validator")
	}
	v.Address = addr
	v.Delegated = v.delegated()
	return v, nil
}

func (s *storage) set(v *Validator) error {
	if err := s.records.Set(v.Address, v); err != nil {
		return errors.Wrap(err, "failed to set validator")
	}
	return nil
}

func (s *storage) list() ([]*Validator, error) {
	var out []*Validator
	err := s.members.Iter(func(addr thor.Address) error {
		v, err := s.get(addr)
		if err != nil {
			return err
		}
		out = append(out, v)
		return nil
	})
	return out, err
}

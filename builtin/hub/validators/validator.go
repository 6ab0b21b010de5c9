// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package validators

import (
	"math/big"

	"github.com/vechain/stakehub/thor"
)

type Status = uint8

const (
	StatusUnknown = Status(iota) // 0 -> never added
	StatusActive                 // receives delegations and rebalance targets
	StatusPaused                 // drained by rebalance, receives nothing new
	StatusRemoved                // retained for audit, may be re-added
)

// StatusName returns the lower case name of status.
func StatusName(s Status) string {
	switch s {
	case StatusActive:
		return "active"
	case StatusPaused:
		return "paused"
	case StatusRemoved:
		return "removed"
	default:
		return "unknown"
	}
}

// Validator is the hub's record of one validator.
type Validator struct {
	Address   thor.Address
	Delegated *big.Int
	Status    Status
}

func (v *Validator) IsMember() bool {
	return v.Status == StatusActive || v.Status == StatusPaused
}

func (v *Validator) IsActive() bool {
	return v.Status == StatusActive
}

func (v *Validator) delegated() *big.Int {
	if v.Delegated == nil {
		return new(big.Int)
	}
	return v.Delegated
}

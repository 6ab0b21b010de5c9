// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package thor

import (
	"math/big"

	"github.com/holiman/uint256"
)

// MaxAmount is the largest native or derivative amount, 2^128-1.
var MaxAmount = new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), 128), big.NewInt(1))

// IsAmount reports whether v is a non-negative value that fits in 128 bits.
func IsAmount(v *big.Int) bool {
	return v != nil && v.Sign() >= 0 && v.Cmp(MaxAmount) <= 0
}

// IsPositiveAmount is like IsAmount but excludes zero.
func IsPositiveAmount(v *big.Int) bool {
	return IsAmount(v) && v.Sign() > 0
}

// MulDiv returns floor(x*y/d). ok is false when d is zero, an operand is out of
// the amount range, or the result does not fit in an amount.
func MulDiv(x, y, d *big.Int) (result *big.Int, ok bool) {
	if !IsAmount(x) || !IsAmount(y) || !IsPositiveAmount(d) {
		return nil, false
	}
	ux, _ := uint256.FromBig(x)
	uy, _ := uint256.FromBig(y)
	ud, _ := uint256.FromBig(d)

	z, overflow := new(uint256.Int).MulDivOverflow(ux, uy, ud)
	if overflow {
		return nil, false
	}
	result = z.ToBig()
	if result.Cmp(MaxAmount) > 0 {
		return nil, false
	}
	return result, true
}

// MinAmount returns a copy of the smaller of a and b.
func MinAmount(a, b *big.Int) *big.Int {
	if a.Cmp(b) <= 0 {
		return new(big.Int).Set(a)
	}
	return new(big.Int).Set(b)
}

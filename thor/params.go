// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package thor

// Protocol defaults. Genesis config may override the tunable ones.
const (
	BasisPoints uint64 = 10_000

	InitialUnbondPeriod  uint64 = 21 * 24 * 3600 // seconds between batch submission and expected maturity
	InitialMaxFeeRate    uint64 = 1_000          // 10%
	InitialFeeRate       uint64 = 500            // 5%
	InitialRateTolerance uint64 = 0              // bps of allowed unaccounted rate decrease
	MaxRateTolerance     uint64 = 1_000

	DefaultDenom = "uvet"
)

var (
	// HubAddress is the default storage address of the hub.
	HubAddress = BytesToAddress([]byte("StakeHub"))
	// TokenAddress is the default storage address of the derivative token ledger.
	TokenAddress = BytesToAddress([]byte("StakeToken"))
)

// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package genesis

import (
	"github.com/ethereum/go-ethereum/crypto"

	"github.com/vechain/stakehub/log"
	"github.com/vechain/stakehub/thor"
)

var logger = log.WithContext("pkg", "genesis")

// development keys of the thor solo network
var devKeys = []string{
	"dce1443bd2ef0c2631adc1c67e5c93f13dc23a41c18b536effbbdcbcdb96fb65",
	"321d6443bc6177273b5abf54210fe806d451d6b7973bccc2384ef78bbcd0bf51",
	"2d7c882bad2a01105e36dda3646693bc1aaaa45b0ed63fb0ce23c060294f3af2",
	"593537225b037191d322c3b1df585fb1e5100811b71a6f7fc7e29cca1333483e",
}

// DevAccounts returns the addresses of the development keys.
func DevAccounts() []thor.Address {
	accs := make([]thor.Address, 0, len(devKeys))
	for _, hex := range devKeys {
		key, err := crypto.HexToECDSA(hex)
		if err != nil {
			panic(err)
		}
		accs = append(accs, thor.Address(crypto.PubkeyToAddress(key.PublicKey)))
	}
	return accs
}

// Default returns the development genesis: the first dev account administers the hub,
// the second collects fees and the other two are validators.
func Default() *Genesis {
	accs := DevAccounts()
	return &Genesis{
		Hub:              thor.HubAddress,
		Token:            thor.TokenAddress,
		Admin:            accs[0],
		Denom:            "uvet",
		UnbondPeriod:     thor.InitialUnbondPeriod,
		RateTolerance:    thor.InitialRateTolerance,
		MinRebalanceMove: 1,
		FeeRate:          thor.InitialFeeRate,
		MaxFeeRate:       thor.InitialMaxFeeRate,
		FeeRecipients:    []Recipient{{Address: accs[1], Weight: 1}},
		Validators:       accs[2:],
	}
}

// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package hub

import "github.com/vechain/stakehub/metrics"

var (
	metricOperations    = metrics.LazyLoadCounterVec("hub_operations_count", []string{"kind"})
	metricConfirmations = metrics.LazyLoadCounterVec("hub_confirmations_count", []string{"kind", "outcome"})
)

// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package runtime

import "github.com/vechain/stakehub/metrics"

var (
	metricRequests        = metrics.LazyLoadCounterVec("runtime_requests_count", []string{"type", "outcome"})
	metricRequestDuration = metrics.LazyLoadHistogramVec("runtime_request_duration_ms", []string{"type"}, metrics.BucketRequests)
	metricPool            = metrics.LazyLoadGaugeVec("runtime_pool", []string{"total"})
)

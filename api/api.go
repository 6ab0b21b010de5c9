// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package api

import (
	"net/http"
	"strings"
	"sync/atomic"
	"time"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/jonboulle/clockwork"

	"github.com/vechain/stakehub/api/middleware"
	"github.com/vechain/stakehub/api/requests"
	"github.com/vechain/stakehub/api/staking"
	"github.com/vechain/stakehub/log"
	"github.com/vechain/stakehub/runtime"
)

var logger = log.WithContext("pkg", "api")

type Options struct {
	AllowedOrigins    string
	HostToken         string
	EnableReqLogger   *atomic.Bool
	SlowQueriesThresh time.Duration
	EnableMetrics     bool
	Clock             clockwork.Clock
}

// New return api router
func New(rt *runtime.Runtime, opts Options) http.HandlerFunc {
	origins := strings.Split(strings.TrimSpace(opts.AllowedOrigins), ",")
	for i, o := range origins {
		origins[i] = strings.ToLower(strings.TrimSpace(o))
	}
	clock := opts.Clock
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	enabled := opts.EnableReqLogger
	if enabled == nil {
		enabled = new(atomic.Bool)
	}

	router := mux.NewRouter()
	staking.New(rt).
		Mount(router, "/hub")
	requests.New(rt, clock, opts.HostToken).
		Mount(router, "/requests")

	if opts.EnableMetrics {
		router.Use(metricsMiddleware)
	}
	router.Use(middleware.RequestLoggerMiddleware(logger, enabled, opts.SlowQueriesThresh))

	handler := handlers.CompressHandler(router)
	handler = handlers.CORS(
		handlers.AllowedOrigins(origins),
		handlers.AllowedHeaders([]string{"content-type", strings.ToLower(requests.HostTokenHeader), strings.ToLower(middleware.RequestIDHeader)}),
		handlers.ExposedHeaders([]string{strings.ToLower(middleware.RequestIDHeader)}),
	)(handler)

	return handler.ServeHTTP
}

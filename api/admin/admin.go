// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package admin

import (
	"log/slog"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"

	healthAPI "github.com/vechain/stakehub/api/admin/health"

	"github.com/vechain/stakehub/api/admin/apilogs"
	"github.com/vechain/stakehub/api/admin/loglevel"
	"github.com/vechain/stakehub/health"
)

func New(logLevel *slog.LevelVar, apiLogs *atomic.Bool, health *health.Health, maxTimeBetweenTicks time.Duration) http.HandlerFunc {
	router := mux.NewRouter()
	sub := router.PathPrefix("/admin").Subrouter()

	loglevel.New(logLevel).Mount(sub, "/loglevel")
	apilogs.New(apiLogs).Mount(sub, "/apilogs")
	healthAPI.NewAPI(health, maxTimeBetweenTicks).Mount(sub, "/health")

	handler := handlers.CompressHandler(router)

	return handler.ServeHTTP
}

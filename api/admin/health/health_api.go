// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package health

import (
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/vechain/stakehub/api/utils"
	"github.com/vechain/stakehub/health"
)

type API struct {
	healthStatus        *health.Health
	maxTimeBetweenTicks time.Duration
}

// NewAPI returns the health endpoint. maxTimeBetweenTicks is the default keeper
// liveness bound, zero when no keeper runs.
func NewAPI(healthStatus *health.Health, maxTimeBetweenTicks time.Duration) *API {
	return &API{
		healthStatus:        healthStatus,
		maxTimeBetweenTicks: maxTimeBetweenTicks,
	}
}

func (h *API) handleGetHealth(w http.ResponseWriter, r *http.Request) error {
	maxTimeBetweenTicks := h.maxTimeBetweenTicks
	if query := r.URL.Query().Get("maxTimeBetweenTicks"); query != "" {
		if parsed, err := time.ParseDuration(query); err == nil {
			maxTimeBetweenTicks = parsed
		}
	}

	status, err := h.healthStatus.Status(maxTimeBetweenTicks)
	if err != nil {
		return err
	}

	w.Header().Set("Content-Type", utils.JSONContentType)
	if !status.Healthy {
		w.WriteHeader(http.StatusServiceUnavailable)
	} else {
		w.WriteHeader(http.StatusOK)
	}
	return utils.WriteJSON(w, status)
}

func (h *API) Mount(root *mux.Router, pathPrefix string) {
	sub := root.PathPrefix(pathPrefix).Subrouter()

	sub.Path("").
		Methods(http.MethodGet).
		Name("health").
		HandlerFunc(utils.WrapHandlerFunc(h.handleGetHealth))
}

// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package staking

import (
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"github.com/pkg/errors"

	"github.com/vechain/stakehub/api/utils"
	"github.com/vechain/stakehub/builtin/hub"
	"github.com/vechain/stakehub/runtime"
	"github.com/vechain/stakehub/thor"
)

// Hub serves read-only views of the hub state.
type Hub struct {
	rt *runtime.Runtime
}

func New(rt *runtime.Runtime) *Hub {
	return &Hub{rt: rt}
}

// view runs fn under the runtime lock and writes its result.
func (h *Hub) view(w http.ResponseWriter, fn func(h *hub.Hub) (any, error)) error {
	var out any
	if err := h.rt.View(func(hb *hub.Hub) (err error) {
		out, err = fn(hb)
		return err
	}); err != nil {
		return utils.StatusOf(err)
	}
	return utils.WriteJSON(w, out)
}

func addressVar(req *http.Request, name string) (thor.Address, error) {
	addr, err := thor.ParseAddress(mux.Vars(req)[name])
	if err != nil {
		return thor.Address{}, utils.BadRequest(errors.WithMessage(err, name))
	}
	return addr, nil
}

func (h *Hub) handleGetPool(w http.ResponseWriter, _ *http.Request) error {
	return h.view(w, func(hb *hub.Hub) (any, error) {
		pool, err := hb.Ledger().Pool()
		if err != nil {
			return nil, err
		}
		delegated, err := hb.Validators().TotalDelegated()
		if err != nil {
			return nil, err
		}
		issued, pending, err := hb.Operations().Counts()
		if err != nil {
			return nil, err
		}
		return convertPool(hb.Denom(), pool, delegated, issued, pending), nil
	})
}

func (h *Hub) handleGetConfig(w http.ResponseWriter, _ *http.Request) error {
	return h.view(w, func(hb *hub.Hub) (any, error) {
		admin, err := hb.Admin()
		if err != nil {
			return nil, err
		}
		pending, err := hb.PendingOwner()
		if err != nil {
			return nil, err
		}
		cfg, err := hb.Config()
		if err != nil {
			return nil, err
		}
		return convertConfig(admin, pending, cfg), nil
	})
}

func (h *Hub) handleGetValidators(w http.ResponseWriter, _ *http.Request) error {
	return h.view(w, func(hb *hub.Hub) (any, error) {
		vals, err := hb.Validators().List()
		if err != nil {
			return nil, err
		}
		out := make([]*Validator, 0, len(vals))
		for _, v := range vals {
			out = append(out, convertValidator(v))
		}
		return out, nil
	})
}

func (h *Hub) handleGetValidator(w http.ResponseWriter, req *http.Request) error {
	addr, err := addressVar(req, "address")
	if err != nil {
		return err
	}
	return h.view(w, func(hb *hub.Hub) (any, error) {
		v, err := hb.Validators().Get(addr)
		if err != nil {
			return nil, err
		}
		return convertValidator(v), nil
	})
}

func (h *Hub) handleGetCurrentBatch(w http.ResponseWriter, _ *http.Request) error {
	return h.view(w, func(hb *hub.Hub) (any, error) {
		b, err := hb.Batches().Current()
		if err != nil {
			return nil, err
		}
		return convertBatch(b), nil
	})
}

func (h *Hub) handleGetBatch(w http.ResponseWriter, req *http.Request) error {
	id, err := strconv.ParseUint(mux.Vars(req)["id"], 10, 64)
	if err != nil {
		return utils.BadRequest(errors.WithMessage(err, "id"))
	}
	return h.view(w, func(hb *hub.Hub) (any, error) {
		b, err := hb.Batches().Get(id)
		if err != nil {
			return nil, err
		}
		return convertBatch(b), nil
	})
}

func (h *Hub) handleGetRequests(w http.ResponseWriter, req *http.Request) error {
	addr, err := addressVar(req, "address")
	if err != nil {
		return err
	}
	return h.view(w, func(hb *hub.Hub) (any, error) {
		reqs, err := hb.Batches().Requests(addr)
		if err != nil {
			return nil, err
		}
		return convertRequests(reqs), nil
	})
}

func (h *Hub) handleGetBalance(w http.ResponseWriter, req *http.Request) error {
	addr, err := addressVar(req, "address")
	if err != nil {
		return err
	}
	return h.view(w, func(hb *hub.Hub) (any, error) {
		bal, err := hb.Token().BalanceOf(addr)
		if err != nil {
			return nil, err
		}
		owed, err := hb.Batches().Owed(addr)
		if err != nil {
			return nil, err
		}
		return &Balance{Address: addr, Balance: amount(bal), Owed: amount(owed)}, nil
	})
}

func (h *Hub) handleGetOperation(w http.ResponseWriter, req *http.Request) error {
	id, err := thor.ParseBytes32(mux.Vars(req)["id"])
	if err != nil {
		return utils.BadRequest(errors.WithMessage(err, "id"))
	}
	return h.view(w, func(hb *hub.Hub) (any, error) {
		op, err := hb.Operations().Get(id)
		if err != nil {
			return nil, err
		}
		return convertOperation(op), nil
	})
}

func (h *Hub) handleGetRewards(w http.ResponseWriter, _ *http.Request) error {
	return h.view(w, func(hb *hub.Hub) (any, error) {
		latest, err := hb.Rewards().Latest()
		if err != nil {
			return nil, err
		}
		totals, err := hb.Rewards().Totals()
		if err != nil {
			return nil, err
		}
		return convertRewards(latest, totals), nil
	})
}

func (h *Hub) Mount(root *mux.Router, pathPrefix string) {
	sub := root.PathPrefix(pathPrefix).Subrouter()

	sub.Path("/pool").
		Methods(http.MethodGet).
		Name("hub_get_pool").
		HandlerFunc(utils.WrapHandlerFunc(h.handleGetPool))
	sub.Path("/config").
		Methods(http.MethodGet).
		Name("hub_get_config").
		HandlerFunc(utils.WrapHandlerFunc(h.handleGetConfig))
	sub.Path("/validators").
		Methods(http.MethodGet).
		Name("hub_get_validators").
		HandlerFunc(utils.WrapHandlerFunc(h.handleGetValidators))
	sub.Path("/validators/{address}").
		Methods(http.MethodGet).
		Name("hub_get_validator").
		HandlerFunc(utils.WrapHandlerFunc(h.handleGetValidator))
	sub.Path("/batches/current").
		Methods(http.MethodGet).
		Name("hub_get_current_batch").
		HandlerFunc(utils.WrapHandlerFunc(h.handleGetCurrentBatch))
	sub.Path("/batches/{id:[0-9]+}").
		Methods(http.MethodGet).
		Name("hub_get_batch").
		HandlerFunc(utils.WrapHandlerFunc(h.handleGetBatch))
	sub.Path("/users/{address}/requests").
		Methods(http.MethodGet).
		Name("hub_get_user_requests").
		HandlerFunc(utils.WrapHandlerFunc(h.handleGetRequests))
	sub.Path("/users/{address}/balance").
		Methods(http.MethodGet).
		Name("hub_get_user_balance").
		HandlerFunc(utils.WrapHandlerFunc(h.handleGetBalance))
	sub.Path("/operations/{id}").
		Methods(http.MethodGet).
		Name("hub_get_operation").
		HandlerFunc(utils.WrapHandlerFunc(h.handleGetOperation))
	sub.Path("/rewards").
		Methods(http.MethodGet).
		Name("hub_get_rewards").
		HandlerFunc(utils.WrapHandlerFunc(h.handleGetRewards))
}

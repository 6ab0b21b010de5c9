// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package requests

import (
	"crypto/subtle"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/jonboulle/clockwork"
	"github.com/pkg/errors"

	"github.com/vechain/stakehub/api/utils"
	"github.com/vechain/stakehub/runtime"
)

// HostTokenHeader carries the host credential. The host vouches for the sender of every
// request it forwards, so no request is executed without it.
const HostTokenHeader = "X-Host-Token"

// Requests submits requests to the runtime.
type Requests struct {
	rt        *runtime.Runtime
	clock     clockwork.Clock
	hostToken string
}

// New returns the request endpoint. Every request is refused when hostToken is empty.
func New(rt *runtime.Runtime, clock clockwork.Clock, hostToken string) *Requests {
	return &Requests{rt: rt, clock: clock, hostToken: hostToken}
}

func (r *Requests) authorize(req *http.Request) error {
	if r.hostToken == "" {
		return utils.Forbidden(errors.New("requests disabled"))
	}
	token := req.Header.Get(HostTokenHeader)
	if subtle.ConstantTimeCompare([]byte(token), []byte(r.hostToken)) != 1 {
		return utils.Forbidden(errors.New("invalid host token"))
	}
	return nil
}

func (r *Requests) handleExecute(w http.ResponseWriter, req *http.Request) error {
	if err := r.authorize(req); err != nil {
		return err
	}
	var body runtime.Request
	if err := utils.ParseJSON(req.Body, &body); err != nil {
		return utils.BadRequest(errors.WithMessage(err, "body"))
	}
	if body.Type == "" {
		return utils.BadRequest(errors.New("body: missing type"))
	}

	receipt, err := r.rt.Execute(&body, runtime.Env{Time: uint64(r.clock.Now().Unix())})
	if err != nil {
		return err
	}
	return utils.WriteJSON(w, receipt)
}

func (r *Requests) Mount(root *mux.Router, pathPrefix string) {
	sub := root.PathPrefix(pathPrefix).Subrouter()

	sub.Path("").
		Methods(http.MethodPost).
		Name("requests_execute").
		HandlerFunc(utils.WrapHandlerFunc(r.handleExecute))
}

// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package requests

import (
	"bytes"
	"encoding/json"
	"math/big"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vechain/stakehub/builtin/hub"
	"github.com/vechain/stakehub/builtin/hub/reverts"
	"github.com/vechain/stakehub/genesis"
	"github.com/vechain/stakehub/lvldb"
	"github.com/vechain/stakehub/runtime"
	"github.com/vechain/stakehub/state"
	"github.com/vechain/stakehub/thor"
)

const token = "secret"

var start = time.Unix(1_700_000_000, 0)

func initServer(t *testing.T, hostToken string) (*httptest.Server, *runtime.Runtime) {
	db, err := lvldb.NewMem()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	gen := genesis.Default()
	st := state.New(db, 0)
	require.NoError(t, gen.Build(st))
	params, err := gen.Params()
	require.NoError(t, err)
	rt := runtime.New(st, params)

	router := mux.NewRouter()
	New(rt, clockwork.NewFakeClockAt(start), hostToken).Mount(router, "/requests")
	ts := httptest.NewServer(router)
	t.Cleanup(ts.Close)
	return ts, rt
}

func post(t *testing.T, ts *httptest.Server, body string, hostToken string) (int, *runtime.Receipt) {
	req, err := http.NewRequest(http.MethodPost, ts.URL+"/requests", bytes.NewBufferString(body))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	if hostToken != "" {
		req.Header.Set(HostTokenHeader, hostToken)
	}
	res, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		return res.StatusCode, nil
	}
	var receipt runtime.Receipt
	require.NoError(t, json.NewDecoder(res.Body).Decode(&receipt))
	return res.StatusCode, &receipt
}

func TestExecute(t *testing.T) {
	ts, rt := initServer(t, token)
	alice := genesis.DevAccounts()[3]

	code, receipt := post(t, ts, `{"type":"bond","sender":"`+alice.String()+`","amount":"1000"}`, token)
	require.Equal(t, http.StatusOK, code)
	require.False(t, receipt.Reverted, receipt.RevertMessage)
	assert.Equal(t, big.NewInt(1000), (*big.Int)(receipt.Outputs.Minted))
	assert.NotEmpty(t, receipt.Operations)

	require.NoError(t, rt.View(func(h *hub.Hub) error {
		bal, err := h.Token().BalanceOf(alice)
		assert.Equal(t, big.NewInt(1000), bal)
		return err
	}))

	// reverts are receipts, not http failures
	code, receipt = post(t, ts, `{"type":"unbond","sender":"`+alice.String()+`","amount":"5000"}`, token)
	require.Equal(t, http.StatusOK, code)
	assert.True(t, receipt.Reverted)
	assert.NotEmpty(t, receipt.RevertKind)
}

func TestExecute_Tick(t *testing.T) {
	ts, _ := initServer(t, token)
	alice := genesis.DevAccounts()[3]

	_, receipt := post(t, ts, `{"type":"bond","sender":"`+alice.String()+`","amount":"1000"}`, token)
	require.False(t, receipt.Reverted, receipt.RevertMessage)
	_, receipt = post(t, ts, `{"type":"unbond","sender":"`+alice.String()+`","amount":"100"}`, token)
	require.False(t, receipt.Reverted, receipt.RevertMessage)

	_, receipt = post(t, ts, `{"type":"tick","epoch":"1"}`, token)
	require.False(t, receipt.Reverted, receipt.RevertMessage)
	require.NotNil(t, receipt.Outputs.BatchID)
}

func TestExecute_BadRequests(t *testing.T) {
	ts, _ := initServer(t, token)

	code, _ := post(t, ts, `{"type":`, token)
	assert.Equal(t, http.StatusBadRequest, code)

	code, _ = post(t, ts, `{"amount":"1"}`, token)
	assert.Equal(t, http.StatusBadRequest, code)

	code, _ = post(t, ts, `{"type":"bond","unknown":1}`, token)
	assert.Equal(t, http.StatusBadRequest, code)

	// credentials are checked before the body is looked at
	code, _ = post(t, ts, `{"type":`, "")
	assert.Equal(t, http.StatusForbidden, code)
}

func TestExecute_HostRequests(t *testing.T) {
	ts, _ := initServer(t, token)

	code, _ := post(t, ts, `{"type":"tick","epoch":"1"}`, "")
	assert.Equal(t, http.StatusForbidden, code)

	code, _ = post(t, ts, `{"type":"tick","epoch":"1"}`, "wrong")
	assert.Equal(t, http.StatusForbidden, code)

	code, receipt := post(t, ts, `{"type":"tick","epoch":"1"}`, token)
	require.Equal(t, http.StatusOK, code)
	assert.False(t, receipt.Reverted, receipt.RevertMessage)

	disabled, _ := initServer(t, "")
	code, _ = post(t, disabled, `{"type":"tick","epoch":"1"}`, token)
	assert.Equal(t, http.StatusForbidden, code)
}

func TestExecute_SenderNeedsHostCredential(t *testing.T) {
	ts, rt := initServer(t, token)
	admin := genesis.DevAccounts()[0]
	alice := genesis.DevAccounts()[3]
	validator := thor.BytesToAddress([]byte("newcomer"))

	addValidator := `{"type":"add_validator","sender":"` + admin.String() + `","validator":"` + validator.String() + `"}`
	for _, credential := range []string{"", "wrong"} {
		code, _ := post(t, ts, addValidator, credential)
		assert.Equal(t, http.StatusForbidden, code)
	}
	require.NoError(t, rt.View(func(h *hub.Hub) error {
		_, err := h.Validators().Get(validator)
		assert.True(t, reverts.Is(err, reverts.NotFound))
		return nil
	}))

	// user funds cannot be moved by an anonymous caller either
	_, receipt := post(t, ts, `{"type":"bond","sender":"`+alice.String()+`","amount":"1000"}`, token)
	require.False(t, receipt.Reverted, receipt.RevertMessage)
	code, _ := post(t, ts, `{"type":"unbond","sender":"`+alice.String()+`","amount":"1000"}`, "")
	assert.Equal(t, http.StatusForbidden, code)
	code, _ = post(t, ts, `{"type":"transfer_shares","sender":"`+alice.String()+`","to":"`+admin.String()+`","amount":"1000"}`, "")
	assert.Equal(t, http.StatusForbidden, code)
	require.NoError(t, rt.View(func(h *hub.Hub) error {
		bal, err := h.Token().BalanceOf(alice)
		assert.Equal(t, big.NewInt(1000), bal)
		return err
	}))

	code, receipt = post(t, ts, addValidator, token)
	require.Equal(t, http.StatusOK, code)
	assert.False(t, receipt.Reverted, receipt.RevertMessage)
}

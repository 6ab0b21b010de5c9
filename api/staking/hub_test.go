// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package staking

import (
	"encoding/json"
	"math/big"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/ethereum/go-ethereum/common/math"
	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vechain/stakehub/genesis"
	"github.com/vechain/stakehub/lvldb"
	"github.com/vechain/stakehub/runtime"
	"github.com/vechain/stakehub/state"
	"github.com/vechain/stakehub/thor"
)

var alice = thor.BytesToAddress([]byte("alice"))

func initServer(t *testing.T) (*httptest.Server, *runtime.Runtime) {
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
	New(rt).Mount(router, "/hub")
	ts := httptest.NewServer(router)
	t.Cleanup(ts.Close)
	return ts, rt
}

func httpGet(t *testing.T, url string, out any) int {
	res, err := http.Get(url) //#nosec G107
	require.NoError(t, err)
	defer res.Body.Close()
	if out != nil && res.StatusCode == http.StatusOK {
		require.NoError(t, json.NewDecoder(res.Body).Decode(out))
	}
	return res.StatusCode
}

func bond(t *testing.T, rt *runtime.Runtime, amount int64) *runtime.Receipt {
	receipt, err := rt.Execute(&runtime.Request{
		Type:   runtime.TypeBond,
		Sender: alice,
		Amount: (*math.HexOrDecimal256)(big.NewInt(amount)),
	}, runtime.Env{Time: 100})
	require.NoError(t, err)
	require.False(t, receipt.Reverted, receipt.RevertMessage)
	return receipt
}

func TestPoolAndConfig(t *testing.T) {
	ts, rt := initServer(t)

	var pool Pool
	require.Equal(t, http.StatusOK, httpGet(t, ts.URL+"/hub/pool", &pool))
	assert.Equal(t, "uvet", pool.Denom)
	assert.Equal(t, 0, (*big.Int)(pool.Supply).Sign())
	assert.False(t, pool.Halted)

	receipt := bond(t, rt, 1000)
	require.Equal(t, http.StatusOK, httpGet(t, ts.URL+"/hub/pool", &pool))
	assert.Equal(t, big.NewInt(1000), (*big.Int)(pool.Native))
	assert.Equal(t, big.NewInt(1000), (*big.Int)(pool.Supply))
	assert.Equal(t, big.NewInt(1000), (*big.Int)(pool.Delegated))
	assert.Equal(t, uint64(len(receipt.Operations)), pool.Pending)

	var cfg Config
	require.Equal(t, http.StatusOK, httpGet(t, ts.URL+"/hub/config", &cfg))
	assert.Equal(t, genesis.DevAccounts()[0], cfg.Admin)
	assert.Nil(t, cfg.PendingOwner)
	assert.Equal(t, thor.InitialUnbondPeriod, cfg.UnbondPeriod)
	assert.Equal(t, thor.InitialFeeRate, cfg.FeeRate)
}

func TestValidators(t *testing.T) {
	ts, _ := initServer(t)
	accs := genesis.DevAccounts()

	var vals []*Validator
	require.Equal(t, http.StatusOK, httpGet(t, ts.URL+"/hub/validators", &vals))
	assert.Len(t, vals, 2)

	var v Validator
	require.Equal(t, http.StatusOK, httpGet(t, ts.URL+"/hub/validators/"+accs[2].String(), &v))
	assert.Equal(t, accs[2], v.Address)
	assert.Equal(t, "active", v.Status)

	assert.Equal(t, http.StatusNotFound, httpGet(t, ts.URL+"/hub/validators/"+alice.String(), nil))
	assert.Equal(t, http.StatusBadRequest, httpGet(t, ts.URL+"/hub/validators/0xzz", nil))
}

func TestBatchesAndRequests(t *testing.T) {
	ts, rt := initServer(t)
	bond(t, rt, 1000)
	receipt, err := rt.Execute(&runtime.Request{
		Type:   runtime.TypeUnbond,
		Sender: alice,
		Amount: (*math.HexOrDecimal256)(big.NewInt(400)),
	}, runtime.Env{Time: 100})
	require.NoError(t, err)
	require.False(t, receipt.Reverted, receipt.RevertMessage)

	var batch Batch
	require.Equal(t, http.StatusOK, httpGet(t, ts.URL+"/hub/batches/current", &batch))
	assert.Equal(t, uint64(1), batch.ID)
	assert.Equal(t, "accepting", batch.State)
	assert.Equal(t, big.NewInt(400), (*big.Int)(batch.Burned))

	require.Equal(t, http.StatusOK, httpGet(t, ts.URL+"/hub/batches/1", &batch))
	assert.Equal(t, uint64(1), batch.ID)
	assert.Equal(t, http.StatusNotFound, httpGet(t, ts.URL+"/hub/batches/7", nil))

	var reqs []*Request
	require.Equal(t, http.StatusOK, httpGet(t, ts.URL+"/hub/users/"+alice.String()+"/requests", &reqs))
	require.Len(t, reqs, 1)
	assert.Equal(t, uint64(1), reqs[0].BatchID)
	assert.Equal(t, big.NewInt(400), (*big.Int)(reqs[0].Shares))

	var bal Balance
	require.Equal(t, http.StatusOK, httpGet(t, ts.URL+"/hub/users/"+alice.String()+"/balance", &bal))
	assert.Equal(t, big.NewInt(600), (*big.Int)(bal.Balance))
	assert.Equal(t, 0, (*big.Int)(bal.Owed).Sign())
}

func TestOperationsAndRewards(t *testing.T) {
	ts, rt := initServer(t)
	receipt := bond(t, rt, 1000)
	require.NotEmpty(t, receipt.Operations)

	var op Operation
	require.Equal(t, http.StatusOK, httpGet(t, ts.URL+"/hub/operations/"+receipt.Operations[0].ID.String(), &op))
	assert.Equal(t, "delegate", op.Kind)
	assert.Equal(t, "provisional", op.Status)
	require.NotNil(t, op.Validator)

	assert.Equal(t, http.StatusNotFound, httpGet(t, ts.URL+"/hub/operations/"+thor.Bytes32{1}.String(), nil))
	assert.Equal(t, http.StatusBadRequest, httpGet(t, ts.URL+"/hub/operations/0x01", nil))

	var rewards Rewards
	require.Equal(t, http.StatusOK, httpGet(t, ts.URL+"/hub/rewards", &rewards))
	assert.Nil(t, rewards.Latest)
	assert.Equal(t, 0, (*big.Int)(rewards.Harvested).Sign())
}
